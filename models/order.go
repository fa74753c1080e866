package models

import (
	"time"

	"shopfront.io/storefront/models/enum"
)

// Order 代表訂單
//
// Orders are created server-side from the authenticated remote cart; the
// client only reads them back for history display.
type Order struct {
	ID         uint64           `json:"id"`
	Status     enum.OrderStatus `json:"status"`
	TotalPrice float64          `json:"total_price"`
	Items      []OrderItem      `json:"order_items,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// OrderItem 代表訂單中的單個商品項目
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity uint64  `json:"quantity"`
}

// ShippingAddress 代表結帳時的收件資訊
type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}
