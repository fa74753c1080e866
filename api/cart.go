package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"shopfront.io/storefront/models"
)

type cartItemPayload struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint64 `json:"quantity,omitempty"`
}

// FetchCart retrieves the authoritative server-side cart. Failures are
// logged and degraded to an empty cart rather than surfaced; a real outage
// is therefore indistinguishable from an empty cart at this layer.
func (c *Client) FetchCart(ctx context.Context) models.Cart {
	var cart models.Cart
	if err := c.do(ctx, http.MethodGet, "/v1/cart", nil, &cart); err != nil {
		c.logger.Warn("Failed to fetch remote cart, treating as empty", zap.Error(err))
		return models.Cart{}
	}

	cart.Normalize()
	return cart
}

// AddItem asks the server to add quantity of a product to the cart. The
// server merges with any existing line for the product.
func (c *Client) AddItem(ctx context.Context, productID, quantity uint64) error {
	err := c.do(ctx, http.MethodPost, "/v1/cart/add_item",
		cartItemPayload{ProductID: productID, Quantity: quantity}, nil)
	if err != nil {
		c.logger.Error("Failed to add remote cart item",
			zap.Uint64("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

// UpdateItem sets the absolute quantity of an existing line.
func (c *Client) UpdateItem(ctx context.Context, productID, quantity uint64) error {
	err := c.do(ctx, http.MethodPut, "/v1/cart/update_item",
		cartItemPayload{ProductID: productID, Quantity: quantity}, nil)
	if err != nil {
		c.logger.Error("Failed to update remote cart item",
			zap.Uint64("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

// RemoveItem deletes the line for a product. The wire contract carries the
// identifier in the request body, not the path.
func (c *Client) RemoveItem(ctx context.Context, productID uint64) error {
	err := c.do(ctx, http.MethodDelete, "/v1/cart/remove_item",
		cartItemPayload{ProductID: productID}, nil)
	if err != nil {
		c.logger.Error("Failed to remove remote cart item",
			zap.Uint64("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}
