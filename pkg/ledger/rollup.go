package ledger

import (
	"github.com/shopspring/decimal"

	"p9e.in/procurement/pkg/apperr"
)

var hundred = decimal.NewFromInt(100)

// Adjustments are the optional document level inputs of a rollup. A null
// value has no effect.
type Adjustments struct {
	DiscountPercentage decimal.NullDecimal
	TaxPercentage      decimal.NullDecimal
	AdditionalCharges  decimal.NullDecimal
}

// Totals is the stored financial summary of a priced document.
type Totals struct {
	SumOfSubTotal       decimal.Decimal
	DiscountAmount      decimal.Decimal
	AmountAfterDiscount decimal.Decimal
	TaxAmount           decimal.Decimal
	AdditionalCharges   decimal.Decimal
	TotalAmount         decimal.Decimal
}

// Validate rejects percentages outside [0, 100] and negative charges.
func (a Adjustments) Validate() error {
	if err := checkPercentage("discountPercentage", a.DiscountPercentage); err != nil {
		return err
	}
	if err := checkPercentage("taxPercentage", a.TaxPercentage); err != nil {
		return err
	}
	if a.AdditionalCharges.Valid && a.AdditionalCharges.Decimal.IsNegative() {
		return apperr.Invalid("additionalCharges", "additionalCharges cannot be negative")
	}
	return nil
}

func checkPercentage(field string, p decimal.NullDecimal) error {
	if !p.Valid {
		return nil
	}
	if p.Decimal.IsNegative() || p.Decimal.GreaterThan(hundred) {
		return apperr.Invalid(field, "%s must be between 0 and 100, got %s", field, p.Decimal.String())
	}
	return nil
}

func valueOrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

// Rollup applies discount, then additional charges, then tax. Tax is levied
// on the discounted amount only. Every step is rounded before the next one
// reads it.
func Rollup(sumOfSubTotal decimal.Decimal, adj Adjustments) (Totals, error) {
	if err := adj.Validate(); err != nil {
		return Totals{}, err
	}

	sum := Round(sumOfSubTotal)
	discount := Round(sum.Mul(valueOrZero(adj.DiscountPercentage)).Div(hundred))
	afterDiscount := Round(sum.Sub(discount))
	tax := Round(afterDiscount.Mul(valueOrZero(adj.TaxPercentage)).Div(hundred))
	charges := Round(valueOrZero(adj.AdditionalCharges))

	return Totals{
		SumOfSubTotal:       sum,
		DiscountAmount:      discount,
		AmountAfterDiscount: afterDiscount,
		TaxAmount:           tax,
		AdditionalCharges:   charges,
		TotalAmount:         Round(afterDiscount.Add(charges).Add(tax)),
	}, nil
}
