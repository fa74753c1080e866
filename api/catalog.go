package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"shopfront.io/storefront/models"
)

// ListProductsParams filters and pages the product listing. Zero values are
// omitted from the query.
type ListProductsParams struct {
	Page       int
	PerPage    int
	CategoryID uint64
	Search     string
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	TotalPages int              `json:"total_pages"`
}

func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) (ProductPage, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if params.CategoryID > 0 {
		query.Set("category_id", strconv.FormatUint(params.CategoryID, 10))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	path := "/v1/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return ProductPage{}, err
	}
	if page.TotalPages == 0 {
		page.TotalPages = 1
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id uint64) (models.Product, error) {
	var product models.Product
	path := fmt.Sprintf("/v1/products/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Categories []models.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}
