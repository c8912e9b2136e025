package domain

import "slices"

// CartLine is one entry in the pending order, keyed by product. LineTotal is
// always Quantity times the UnitPrice captured when the line was created.
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// Cart holds the lines of a pending order in insertion order. At most one
// line exists per product ID.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Clone returns a copy with its own line slice, safe to read or marshal
// after the original has been mutated in place.
func (c *Cart) Clone() Cart {
	return Cart{Lines: slices.Clone(c.Lines)}
}

// TotalAmount returns the sum of all line totals in minor currency units.
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.LineTotal
	}
	return total
}

// LineCount returns the number of distinct lines.
func (c *Cart) LineCount() int {
	return len(c.Lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// FindLineIndex returns the index of the line for the given product ID, or -1.
func (c *Cart) FindLineIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
