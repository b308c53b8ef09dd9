// Package money implements the document amount arithmetic. All values are
// shopspring decimals so repeated quantity/price/VAT math never drifts at
// the satang level; rounding happens once, on the final total.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Line is a (quantity, unit price) pair from a document line item.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Total returns quantity x unit price, exact.
func (l Line) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Totals holds the computed amounts for a document.
type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// CalculateTotals computes subtotal, VAT and total for a set of line items.
// The discount is a flat amount applied before VAT and is clamped to
// [0, subtotal], so the total can never go negative. Only the final total is
// rounded (2 places); intermediate values stay exact.
func CalculateTotals(lines []Line, discount, vatRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	net := subtotal.Sub(discount)
	vatAmount := net.Mul(vatRate).Div(oneHundred)

	return Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		VATAmount: vatAmount,
		Total:     net.Add(vatAmount).Round(2),
	}
}

var thaiPrinter = message.NewPrinter(language.Thai)

// FormatTHB renders an amount as a Thai Baht display string.
func FormatTHB(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return fmt.Sprintf("฿%v", thaiPrinter.Sprint(number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	)))
}
