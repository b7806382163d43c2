// Package pricing derives checkout totals from price lines. It has no I/O and no error
// paths: malformed input is coerced so a total can always be rendered.
package pricing

import "math"

// Line is one priced row of a checkout.
type Line struct {
	Label     string `json:"label"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Amount is UnitPrice × Quantity with negative values coerced to zero.
func (l Line) Amount() int64 {
	if l.UnitPrice <= 0 || l.Quantity <= 0 {
		return 0
	}
	return l.UnitPrice * int64(l.Quantity)
}

// Breakdown is the full derivation shown on the price summary.
type Breakdown struct {
	Lines       []Line  `json:"lines"`
	Subtotal    int64   `json:"subtotal"`
	DiscountPct float64 `json:"discount_pct"`
	Discount    int64   `json:"discount"`
	Total       int64   `json:"total"`
}

// Subtotal is the undiscounted sum of lines.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Amount()
	}
	return sum
}

// Total = round(Σ unitPrice×quantity × (1 − discountPct/100)).
func Total(lines []Line, discountPct float64) int64 {
	sub := Subtotal(lines)
	pct := ClampDiscount(discountPct)
	if pct == 0 {
		return sub
	}
	return int64(math.Round(float64(sub) * (1 - pct/100)))
}

// Compute returns the breakdown for lines; Total always equals Total(lines, discountPct).
func Compute(lines []Line, discountPct float64) Breakdown {
	sub := Subtotal(lines)
	total := Total(lines, discountPct)
	out := make([]Line, len(lines))
	copy(out, lines)
	return Breakdown{
		Lines:       out,
		Subtotal:    sub,
		DiscountPct: ClampDiscount(discountPct),
		Discount:    sub - total,
		Total:       total,
	}
}

// ClampDiscount maps NaN and out-of-range percentages into [0, 100].
func ClampDiscount(pct float64) float64 {
	switch {
	case math.IsNaN(pct), pct <= 0:
		return 0
	case pct >= 100:
		return 100
	default:
		return pct
	}
}
