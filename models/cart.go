package models

// CartLine 代表購物車中的單個商品項目
//
// Quantity is always at least 1; a line that would drop to zero is removed
// from the cart instead.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity uint64  `json:"quantity"`
}

// Cart 代表購物車
//
// A cart is an ordered sequence of lines with unique product ids. Depending
// on the session state it mirrors either the anonymous visitor's local slot
// or the authenticated user's server-side cart.
type Cart struct {
	Lines []CartLine `json:"cart_items"`
}

func NewCart() *Cart {
	return new(Cart)
}

// Find returns the index of the line holding productID, or -1.
func (c *Cart) Find(productID uint64) int {
	for i, line := range c.Lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// TotalQuantity sums the quantities of all lines.
func (c *Cart) TotalQuantity() uint64 {
	var total uint64
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Subtotal sums price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}

// Clone returns a deep copy, so callers can hold a snapshot while the
// engine keeps mutating its own state.
func (c *Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// Normalize drops lines with zero quantity and merges duplicate product
// ids into the first occurrence. Insertion order is preserved.
func (c *Cart) Normalize() {
	seen := make(map[uint64]int, len(c.Lines))
	normalized := make([]CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.Quantity == 0 {
			continue
		}
		if i, ok := seen[line.Product.ID]; ok {
			normalized[i].Quantity += line.Quantity
			continue
		}
		seen[line.Product.ID] = len(normalized)
		normalized = append(normalized, line)
	}
	c.Lines = normalized
}
