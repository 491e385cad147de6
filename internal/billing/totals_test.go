package billing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTotalsNoDiscountNoTax(t *testing.T) {
	sub, tax, total := Totals([]decimal.Decimal{dec("150"), dec("125")}, decimal.Zero, decimal.Zero)
	if !sub.Equal(dec("275.00")) {
		t.Errorf("subtotal = %s, want 275.00", sub)
	}
	if !tax.Equal(dec("0.00")) {
		t.Errorf("tax = %s, want 0.00", tax)
	}
	if !total.Equal(dec("275.00")) {
		t.Errorf("total = %s, want 275.00", total)
	}
}

func TestTotalsDiscountAndTax(t *testing.T) {
	sub, tax, total := Totals([]decimal.Decimal{dec("100")}, dec("10"), dec("20"))
	if !sub.Equal(dec("100.00")) {
		t.Errorf("subtotal = %s, want 100.00", sub)
	}
	if !tax.Equal(dec("18.00")) {
		t.Errorf("tax = %s, want 18.00", tax)
	}
	if !total.Equal(dec("108.00")) {
		t.Errorf("total = %s, want 108.00", total)
	}
}

func TestTotalsRounding(t *testing.T) {
	// (33.33 * 17.5%) = 5.83275 -> 5.83
	sub, tax, total := Totals([]decimal.Decimal{dec("33.33")}, decimal.Zero, dec("17.5"))
	if !sub.Equal(dec("33.33")) {
		t.Errorf("subtotal = %s, want 33.33", sub)
	}
	if !tax.Equal(dec("5.83")) {
		t.Errorf("tax = %s, want 5.83", tax)
	}
	if !total.Equal(dec("39.16")) {
		t.Errorf("total = %s, want 39.16", total)
	}
}

func TestTotalsEmpty(t *testing.T) {
	sub, tax, total := Totals(nil, decimal.Zero, dec("20"))
	if !sub.IsZero() || !tax.IsZero() || !total.IsZero() {
		t.Errorf("empty set: got %s/%s/%s, want zeros", sub, tax, total)
	}
}

func TestTotalsIdempotent(t *testing.T) {
	prices := []decimal.Decimal{dec("125.50"), dec("150.25"), dec("99.99")}
	s1, t1, tt1 := Totals(prices, dec("25"), dec("12.5"))
	s2, t2, tt2 := Totals(prices, dec("25"), dec("12.5"))
	if s1.String() != s2.String() || t1.String() != t2.String() || tt1.String() != tt2.String() {
		t.Errorf("recompute changed results: %s/%s/%s vs %s/%s/%s", s1, t1, tt1, s2, t2, tt2)
	}
}

func TestTotalsDoesNotClamp(t *testing.T) {
	// discount above subtotal is a caller validation defect; the calculator
	// reports the negative result as-is.
	sub, _, total := Totals([]decimal.Decimal{dec("50")}, dec("80"), decimal.Zero)
	if !sub.Equal(dec("50")) {
		t.Errorf("subtotal = %s, want 50", sub)
	}
	if !total.Equal(dec("-30")) {
		t.Errorf("total = %s, want -30", total)
	}
}

func TestFinalAmount(t *testing.T) {
	tests := []struct {
		amount, discount, want string
	}{
		{"150.00", "0", "150.00"},
		{"150.00", "25.00", "125.00"},
		{"100.00", "100.00", "0.00"},
		{"50.00", "80.00", "0.00"}, // floored at zero
	}
	for _, tt := range tests {
		if got := FinalAmount(dec(tt.amount), dec(tt.discount)); !got.Equal(dec(tt.want)) {
			t.Errorf("FinalAmount(%s, %s) = %s, want %s", tt.amount, tt.discount, got, tt.want)
		}
	}
}
