// Package billing holds the invoice money arithmetic. Everything here is a
// pure function over decimals; persistence and validation live in the
// services layer.
package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals computes an invoice's financial summary from the unit prices of its
// attached applications, a flat discount, and a tax rate in percent.
//
//	subtotal  = sum(unitPrices)
//	taxAmount = (subtotal - discount) * taxRate / 100, rounded to 2 places
//	total     = (subtotal - discount) + taxAmount
//
// The function does not clamp: callers validate discount <= subtotal and
// taxRate >= 0 before invoking it. Calling it again with the same inputs
// yields identical decimals.
func Totals(unitPrices []decimal.Decimal, discount, taxRate decimal.Decimal) (subtotal, taxAmount, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, p := range unitPrices {
		subtotal = subtotal.Add(p)
	}
	subtotal = subtotal.Round(2)
	afterDiscount := subtotal.Sub(discount)
	taxAmount = afterDiscount.Mul(taxRate).Div(hundred).Round(2)
	total = afterDiscount.Add(taxAmount)
	return subtotal, taxAmount, total
}

// FinalAmount is the payment-side counterpart: amount minus discount,
// floored at zero.
func FinalAmount(amount, discount decimal.Decimal) decimal.Decimal {
	final := amount.Sub(discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}
