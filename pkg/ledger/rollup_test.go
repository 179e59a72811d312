package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/pkg/apperr"
)

func some(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func TestRollup(t *testing.T) {
	tests := []struct {
		name                                       string
		sum                                        string
		adj                                        Adjustments
		discount, afterDiscount, tax, charges, tot string
	}{
		{
			name:          "discount then charges then tax",
			sum:           "1000",
			adj:           Adjustments{DiscountPercentage: some("10"), TaxPercentage: some("5"), AdditionalCharges: some("20")},
			discount:      "100",
			afterDiscount: "900",
			tax:           "45",
			charges:       "20",
			tot:           "965",
		},
		{
			name:          "no adjustments",
			sum:           "250.50",
			adj:           Adjustments{},
			discount:      "0",
			afterDiscount: "250.5",
			tax:           "0",
			charges:       "0",
			tot:           "250.5",
		},
		{
			name:          "tax only rounds",
			sum:           "99.99",
			adj:           Adjustments{TaxPercentage: some("18")},
			discount:      "0",
			afterDiscount: "99.99",
			tax:           "18",
			charges:       "0",
			tot:           "117.99",
		},
		{
			name:          "discount rounds before tax",
			sum:           "33.33",
			adj:           Adjustments{DiscountPercentage: some("12.5"), TaxPercentage: some("7.5")},
			discount:      "4.17",
			afterDiscount: "29.16",
			tax:           "2.19",
			charges:       "0",
			tot:           "31.35",
		},
		{
			name:          "full discount",
			sum:           "500",
			adj:           Adjustments{DiscountPercentage: some("100"), AdditionalCharges: some("15.25")},
			discount:      "500",
			afterDiscount: "0",
			tax:           "0",
			charges:       "15.25",
			tot:           "15.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rollup(dec(tt.sum), tt.adj)
			require.NoError(t, err)
			assert.True(t, dec(tt.discount).Equal(got.DiscountAmount), "discount = %s", got.DiscountAmount)
			assert.True(t, dec(tt.afterDiscount).Equal(got.AmountAfterDiscount), "afterDiscount = %s", got.AmountAfterDiscount)
			assert.True(t, dec(tt.tax).Equal(got.TaxAmount), "tax = %s", got.TaxAmount)
			assert.True(t, dec(tt.charges).Equal(got.AdditionalCharges), "charges = %s", got.AdditionalCharges)
			assert.True(t, dec(tt.tot).Equal(got.TotalAmount), "total = %s", got.TotalAmount)
		})
	}
}

func TestRollupRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		adj   Adjustments
		field string
	}{
		{"negative discount", Adjustments{DiscountPercentage: some("-1")}, "discountPercentage"},
		{"discount over 100", Adjustments{DiscountPercentage: some("100.01")}, "discountPercentage"},
		{"tax over 100", Adjustments{TaxPercentage: some("250")}, "taxPercentage"},
		{"negative charges", Adjustments{AdditionalCharges: some("-5")}, "additionalCharges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rollup(dec("100"), tt.adj)
			require.Error(t, err)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindBadRequest, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}
