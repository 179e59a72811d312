package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/lifecycle"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPricedRows(t *testing.T) {
	key := uuid.New()
	rows, sum := pricedRows([]itemInput{
		{ProductName: " Bolt ", Quantity: "2", UnitPrice: 10.5, LineKey: &key},
		{ProductName: "Nut", Quantity: 3.333, UnitPrice: "1.10"},
		{ProductName: "Washer", Quantity: nil, UnitPrice: "abc"},
	})
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].SerialNumber)
	assert.Equal(t, "Bolt", rows[0].ProductName)
	assert.Equal(t, key, rows[0].LineKey)
	assert.True(t, dec("21").Equal(rows[0].SubTotal), rows[0].SubTotal.String())

	assert.Equal(t, 2, rows[1].SerialNumber)
	assert.Equal(t, uuid.Nil, rows[1].LineKey)

	assert.Equal(t, 3, rows[2].SerialNumber)
	assert.True(t, rows[2].SubTotal.IsZero())

	var want decimal.Decimal
	for _, r := range rows {
		want = want.Add(r.SubTotal)
	}
	assert.True(t, want.Equal(sum))
}

func TestDerivedRowsKeepKeysAndRenumber(t *testing.T) {
	key := uuid.New()
	lines := []models.Line{
		{LineItem: models.LineItem{ID: uuid.New(), SerialNumber: 7, LineKey: key, ProductName: "Cable", Quantity: dec("4")},
			Priced: true, UnitPrice: dec("2.5")},
		{LineItem: models.LineItem{ID: uuid.New(), SerialNumber: 9, ProductName: "Clamp", Quantity: dec("1")}},
	}
	rows, sum := derivedRows(lines)
	require.Len(t, rows, 2)

	assert.Equal(t, uuid.Nil, rows[0].ID)
	assert.Equal(t, 1, rows[0].SerialNumber)
	assert.Equal(t, key, rows[0].LineKey)
	assert.True(t, dec("10").Equal(rows[0].SubTotal))

	assert.Equal(t, 2, rows[1].SerialNumber)
	assert.NotEqual(t, uuid.Nil, rows[1].LineKey)
	assert.True(t, rows[1].SubTotal.IsZero())
	assert.True(t, dec("10").Equal(sum))

	// the source is untouched
	assert.Equal(t, 7, lines[0].SerialNumber)
}

func TestPriceInheritsMissingAdjustments(t *testing.T) {
	inherited := &models.Financials{
		Currency:           "USD",
		DiscountPercentage: decimal.NewNullDecimal(dec("10")),
		TaxPercentage:      decimal.NewNullDecimal(dec("18")),
	}
	in := &financialInput{TaxPercentage: decimal.NewNullDecimal(dec("5"))}

	var f models.Financials
	require.NoError(t, price(&f, dec("1000"), in, inherited))
	assert.Equal(t, "USD", f.Currency)
	assert.True(t, dec("10").Equal(f.DiscountPercentage.Decimal))
	assert.True(t, dec("5").Equal(f.TaxPercentage.Decimal))
	assert.True(t, dec("100").Equal(f.DiscountAmount), f.DiscountAmount.String())
	assert.True(t, dec("900").Equal(f.AmountAfterDiscount))
	assert.True(t, dec("45").Equal(f.TaxAmount), f.TaxAmount.String())
	assert.True(t, dec("945").Equal(f.TotalAmount), f.TotalAmount.String())
}

func TestCurrencyDefault(t *testing.T) {
	assert.Equal(t, "INR", (&financialInput{}).currency(nil))
	assert.Equal(t, "EUR", (&financialInput{Currency: " EUR "}).currency(&models.Financials{Currency: "USD"}))
}

func TestPackageCount(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{3, 3},
		{"12", 12},
		{float64(4), 4},
		{-2, 0},
		{"many", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, packageCount(tt.in), "%v", tt.in)
	}
}

func TestInheritCopiesPartiesVerbatim(t *testing.T) {
	sellerID := uuid.New()
	src := &models.Quotation{
		DocumentHeader: models.DocumentHeader{
			Status:          lifecycle.Accepted,
			SellerCompanyID: &sellerID,
			Buyer:           models.PartySnapshot{CompanyName: "Acme Buyers", City: "Pune"},
			Seller:          models.PartySnapshot{CompanyName: "Steel Co", TaxID: "GST1"},
		},
		Financials: models.Financials{Currency: "INR", TaxPercentage: decimal.NewNullDecimal(dec("18"))},
		Items: []models.QuotationItem{
			{LineItem: models.LineItem{SerialNumber: 1, LineKey: uuid.New(), ProductName: "Beam", Quantity: dec("2")},
				PricedLine: models.PricedLine{UnitPrice: dec("50"), SubTotal: dec("100")}},
		},
	}

	var dst models.Contract
	in := inherit(&dst.DocumentHeader, src)
	assert.Equal(t, src.Buyer, dst.Buyer)
	assert.Equal(t, src.Seller, dst.Seller)
	require.NotNil(t, dst.SellerCompanyID)
	assert.Equal(t, sellerID, *dst.SellerCompanyID)

	// later edits to the source do not leak into the child
	src.Seller.CompanyName = "Renamed"
	src.Financials.Currency = "USD"
	assert.Equal(t, "Steel Co", dst.Seller.CompanyName)
	require.NotNil(t, in.financials)
	assert.Equal(t, "INR", in.financials.Currency)

	rows, sum := in.lines(nil)
	require.Len(t, rows, 1)
	assert.Equal(t, src.Items[0].LineKey, rows[0].LineKey)
	assert.True(t, dec("100").Equal(sum))

	rows, _ = in.lines([]itemInput{{ProductName: "Other", Quantity: 1, UnitPrice: 1}, {ProductName: "More", Quantity: 1, UnitPrice: 1}})
	assert.Len(t, rows, 2)
}

func TestMergeSnapshot(t *testing.T) {
	base := models.PartySnapshot{CompanyName: "Registered Name", Email: "office@acme.test", City: "Pune"}
	override := models.PartySnapshot{CompanyName: "typed name", Email: " ", ContactName: "Ravi", City: "Mumbai"}

	got := mergeSnapshot(base, override)
	assert.Equal(t, "Registered Name", got.CompanyName)
	assert.Equal(t, "office@acme.test", got.Email)
	assert.Equal(t, "Ravi", got.ContactName)
	assert.Equal(t, "Mumbai", got.City)
}

func TestOrStoredKeepsOmittedText(t *testing.T) {
	tests := []struct {
		name         string
		sent, stored string
		want         string
	}{
		{"omitted keeps stored", "", "Net 30", "Net 30"},
		{"blank keeps stored", "   ", "Net 30", "Net 30"},
		{"sent replaces stored", "Net 45", "Net 30", "Net 45"},
		{"nothing stored", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orStored(tt.sent, tt.stored))
		})
	}
}
