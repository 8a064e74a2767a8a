package billing

import "math"

// All monetary values are integer minor units (cents).

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

type Line struct {
	UnitPrice    int64
	Quantity     int
	PaidQuantity int
}

// ComputeTotals prices the full order, paid or not.
func ComputeTotals(lines []Line, taxRate float64) Totals {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	tax := int64(math.Round(float64(subtotal) * taxRate))

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

func PaidAmount(lines []Line) int64 {
	var paid int64
	for _, line := range lines {
		paid += line.UnitPrice * int64(line.PaidQuantity)
	}
	return paid
}
