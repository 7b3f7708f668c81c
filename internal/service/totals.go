package service

import "github.com/shopspring/decimal"

// Totals returns round(Σ price×quantity, 2) and round(amount − total, 2) over
// the unrounded inputs. Rest may be negative.
func Totals(products []ProductInput, amount decimal.Decimal) (total, rest decimal.Decimal) {
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(p.Price.Mul(p.Quantity))
	}
	total = sum.Round(2)
	return total, amount.Sub(total).Round(2)
}
