package models

// Product 代表商品目錄中的單個商品
//
// The catalog owns this data; the cart treats it as an opaque, immutable
// reference and never mutates its fields.
type Product struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	CategoryID  uint64  `json:"category_id,omitempty"`
}

// Category 代表商品分類
type Category struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
