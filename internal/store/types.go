package store

import (
	"fmt"
	"strings"
)

// qtyEpsilon absorbs float64 noise when comparing stock quantities.
const qtyEpsilon = 1e-9

// BOMLine is one bill-of-materials entry: a raw-material code and the
// quantity consumed per unit produced.
type BOMLine struct {
	Code   string  `json:"mp_id" binding:"required"`
	QtyPer float64 `json:"qty_per_product" binding:"required"`
}

// Shortage reports one component an order cannot be covered for.
type Shortage struct {
	Code      string  `json:"mp_id"`
	Required  float64 `json:"required"`
	Available float64 `json:"available"`
}

// InsufficientStockError aggregates every short component of an order. The
// order is checked in full before any stock is touched, so the caller always
// sees the complete shortage list.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = fmt.Sprintf("%s (need %g, have %g)", s.Code, s.Required, s.Available)
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}
