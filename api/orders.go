package api

import (
	"context"
	"fmt"
	"net/http"

	"shopfront.io/storefront/models"
)

// CreateOrder places an order for the authenticated user's remote cart
// with the given shipping address. The server builds the order from the
// cart it holds; the client does not submit line items.
func (c *Client) CreateOrder(ctx context.Context, addr models.ShippingAddress) error {
	in := struct {
		ShippingAddress models.ShippingAddress `json:"shipping_address"`
	}{ShippingAddress: addr}
	return c.do(ctx, http.MethodPost, "/v1/orders", in, nil)
}

// ListOrders returns the authenticated user's order history, newest first
// per the server's ordering.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/v1/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id uint64) (models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/v1/orders/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}
