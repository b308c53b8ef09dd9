package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateTotalsStandardVAT(t *testing.T) {
	lines := []Line{
		{Quantity: dec("2"), UnitPrice: dec("100")},
		{Quantity: dec("1"), UnitPrice: dec("50")},
	}

	totals := CalculateTotals(lines, decimal.Zero, dec("7"))

	assert.True(t, totals.Subtotal.Equal(dec("250")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.VATAmount.Equal(dec("17.5")), "vat = %s", totals.VATAmount)
	assert.True(t, totals.Total.Equal(dec("267.5")), "total = %s", totals.Total)
}

func TestCalculateTotalsWithDiscount(t *testing.T) {
	lines := []Line{{Quantity: dec("3"), UnitPrice: dec("1000")}}

	totals := CalculateTotals(lines, dec("500"), dec("7"))

	assert.True(t, totals.Subtotal.Equal(dec("3000")))
	assert.True(t, totals.Discount.Equal(dec("500")))
	assert.True(t, totals.VATAmount.Equal(dec("175")))
	assert.True(t, totals.Total.Equal(dec("2675")))
}

func TestCalculateTotalsClampsExcessDiscount(t *testing.T) {
	lines := []Line{{Quantity: dec("1"), UnitPrice: dec("100")}}

	totals := CalculateTotals(lines, dec("250"), dec("7"))

	assert.True(t, totals.Discount.Equal(dec("100")), "discount clamped to subtotal")
	assert.True(t, totals.Total.IsZero(), "total never negative, got %s", totals.Total)
}

func TestCalculateTotalsNegativeDiscountIgnored(t *testing.T) {
	lines := []Line{{Quantity: dec("1"), UnitPrice: dec("100")}}

	totals := CalculateTotals(lines, dec("-40"), decimal.Zero)

	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.Equal(dec("100")))
}

func TestCalculateTotalsNoRoundingDriftPerLine(t *testing.T) {
	// Three lines of 33.335 each: per-line rounding would give 100.01,
	// exact math gives 100.005 -> 100.01 only at the final rounding step.
	lines := []Line{
		{Quantity: dec("1"), UnitPrice: dec("33.335")},
		{Quantity: dec("1"), UnitPrice: dec("33.335")},
		{Quantity: dec("1"), UnitPrice: dec("33.335")},
	}

	totals := CalculateTotals(lines, decimal.Zero, decimal.Zero)

	assert.True(t, totals.Subtotal.Equal(dec("100.005")), "subtotal stays exact")
	assert.True(t, totals.Total.Equal(dec("100.01")), "rounded once at the end")
}

func TestLineTotal(t *testing.T) {
	line := Line{Quantity: dec("4"), UnitPrice: dec("12.25")}
	assert.True(t, line.Total().Equal(dec("49")))
}

func TestFormatTHB(t *testing.T) {
	assert.Equal(t, "฿1,250.50", FormatTHB(dec("1250.5")))
	assert.Equal(t, "฿0.00", FormatTHB(decimal.Zero))
}
