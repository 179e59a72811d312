package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/pkg/ledger"
	"p9e.in/procurement/pkg/lifecycle"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestJSONTimeLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-01-01"`, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{`"2024-01-01T10:30:00Z"`, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
		{`"2024-01-01T10:30:00"`, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
		{`"2024-01-01T10:30:00.000"`, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var jt JSONTime
		require.NoError(t, json.Unmarshal([]byte(tt.in), &jt), tt.in)
		assert.True(t, tt.want.Equal(jt.Time()), tt.in)
	}

	var jt JSONTime
	assert.Error(t, json.Unmarshal([]byte(`"01/02/2024"`), &jt))
	require.NoError(t, json.Unmarshal([]byte(`null`), &jt))
	assert.True(t, jt.IsZero())

	out, err := json.Marshal(JSONTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestJSONTimeDay(t *testing.T) {
	jt := NewJSONTime(time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), jt.Day())
}

func TestDecimalsMarshalAsNumbers(t *testing.T) {
	f := Financials{TotalAmount: d("965.00"), DiscountPercentage: decimal.NewNullDecimal(d("10"))}
	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"totalAmount":965`)
	assert.Contains(t, string(out), `"discountPercentage":10`)
	assert.Contains(t, string(out), `"taxPercentage":null`)
}

func TestFinancialsApply(t *testing.T) {
	adj := ledger.Adjustments{
		DiscountPercentage: decimal.NewNullDecimal(d("10")),
		TaxPercentage:      decimal.NewNullDecimal(d("5")),
		AdditionalCharges:  decimal.NewNullDecimal(d("20")),
	}
	totals, err := ledger.Rollup(d("1000"), adj)
	require.NoError(t, err)

	f := Financials{Currency: " usd "}
	f.Apply(adj, totals)
	assert.Equal(t, "USD", f.Currency)
	assert.True(t, d("965").Equal(f.TotalAmount))

	again, err := ledger.Rollup(f.SumOfSubTotal, f.Adjustments())
	require.NoError(t, err)
	assert.True(t, again.TotalAmount.Equal(f.TotalAmount))
}

func TestHeaderParties(t *testing.T) {
	buyerID := uuid.New()
	h := DocumentHeader{
		BuyerCompanyID: &buyerID,
		Buyer:          PartySnapshot{CompanyName: "Marine Asia Resources"},
		Seller:         PartySnapshot{CompanyName: "North Star Steel"},
	}
	p := h.Parties()
	assert.True(t, p.Buyer.IsResolved())
	assert.False(t, p.Seller.IsResolved())
	assert.Equal(t, "North Star Steel", p.Seller.Name)

	var copyHeader DocumentHeader
	copyHeader.CopyPartiesFrom(&h)
	assert.Equal(t, h.Buyer, copyHeader.Buyer)
	require.NotNil(t, copyHeader.BuyerCompanyID)
	assert.Equal(t, buyerID, *copyHeader.BuyerCompanyID)
	assert.NotSame(t, h.BuyerCompanyID, copyHeader.BuyerCompanyID)

	// later edits to the source do not leak into the copy
	h.Buyer.CompanyName = "MAR Holdings"
	assert.Equal(t, "Marine Asia Resources", copyHeader.Buyer.CompanyName)
}

func TestContractNegotiationFields(t *testing.T) {
	c := &Contract{}
	first := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, c.ApplyTransition(&TransitionInput{Action: lifecycle.ActionSuggestChanges, Suggestions: "reduce price", At: first}))
	require.NoError(t, c.ApplyTransition(&TransitionInput{Action: lifecycle.ActionSuggestChanges, Suggestions: "extend warranty", At: second}))
	assert.Equal(t, "extend warranty", c.BuyerSuggestions)
	assert.True(t, second.Equal(c.BuyerSuggestionsAt.Time()))

	require.NoError(t, c.ApplyTransition(&TransitionInput{Action: lifecycle.ActionRespond, Response: "agreed", At: second}))
	assert.Equal(t, "agreed", c.SellerResponse)
}

func TestInvoicePayments(t *testing.T) {
	inv := &Invoice{Financials: Financials{TotalAmount: d("965")}}
	inv.Rebalance()
	assert.True(t, d("965").Equal(inv.RemainingAmount))

	in := &TransitionInput{Action: lifecycle.ActionRecordPayment, From: lifecycle.Pending, To: lifecycle.Pending,
		Amount: decimal.NewNullDecimal(d("500")), At: time.Now()}
	require.NoError(t, inv.ApplyTransition(in))
	assert.Equal(t, lifecycle.Pending, in.To)
	assert.True(t, d("465").Equal(inv.RemainingAmount))

	over := &TransitionInput{Action: lifecycle.ActionRecordPayment, Amount: decimal.NewNullDecimal(d("465.01"))}
	err := inv.ApplyTransition(over)
	assert.ErrorIs(t, err, ErrOverpayment)
	assert.True(t, d("500").Equal(inv.PaidAmount))

	zero := &TransitionInput{Action: lifecycle.ActionRecordPayment, Amount: decimal.NewNullDecimal(decimal.Zero)}
	assert.Error(t, inv.ApplyTransition(zero))

	rest := &TransitionInput{Action: lifecycle.ActionRecordPayment, From: lifecycle.Overdue, To: lifecycle.Overdue,
		Amount: decimal.NewNullDecimal(d("465")), At: time.Now()}
	require.NoError(t, inv.ApplyTransition(rest))
	assert.Equal(t, lifecycle.Paid, rest.To)
	assert.True(t, inv.RemainingAmount.IsZero())
	assert.False(t, inv.PaidAt.IsZero())
}

func TestInvoiceMarkPaid(t *testing.T) {
	inv := &Invoice{Financials: Financials{TotalAmount: d("120.50")}}
	inv.Rebalance()
	require.NoError(t, inv.ApplyTransition(&TransitionInput{Action: lifecycle.ActionMarkPaid, At: time.Now()}))
	assert.True(t, d("120.50").Equal(inv.PaidAmount))
	assert.True(t, inv.RemainingAmount.IsZero())
}

func TestPackingListTotals(t *testing.T) {
	pl := &PackingList{Items: []PackingListItem{
		{GrossWeight: d("10.255"), NetWeight: d("9.5"), PackageCount: 2},
		{GrossWeight: d("4.1"), NetWeight: d("3.9"), PackageCount: 1},
	}}
	pl.RecomputeTotals()
	assert.True(t, d("14.36").Equal(pl.TotalGrossWeight), pl.TotalGrossWeight.String())
	assert.True(t, d("13.4").Equal(pl.TotalNetWeight))
	assert.Equal(t, 3, pl.TotalPackages)
}

func TestDocumentsImplementInterfaces(t *testing.T) {
	docs := []Document{&RFQ{}, &Quotation{}, &Contract{}, &PurchaseOrder{}, &SalesOrder{}, &DeliveryNote{}, &PackingList{}, &Invoice{}}
	seen := map[lifecycle.DocType]bool{}
	for _, doc := range docs {
		seen[doc.DocType()] = true
		assert.NotNil(t, doc.Header())
	}
	assert.Len(t, seen, len(lifecycle.DocTypes))

	var _ Priced = &Quotation{}
	var _ Priced = &Invoice{}
	var _ TransitionHook = &Contract{}
}
