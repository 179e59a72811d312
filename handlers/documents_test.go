package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/lifecycle"
)

var at = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func move(t *testing.T, doc models.Document, side lifecycle.Side, req transitionRequest) (models.TransitionInput, error) {
	t.Helper()
	in := models.TransitionInput{At: at}
	err := applyTransition(doc, &req, side, &in)
	return in, err
}

func TestContractNegotiation(t *testing.T) {
	c := &models.Contract{DocumentHeader: models.DocumentHeader{Status: lifecycle.Sent}}

	_, err := move(t, c, lifecycle.Buyer, transitionRequest{Action: "suggest_changes"})
	require.Error(t, err)
	assert.Equal(t, lifecycle.Sent, c.Status, "failed action must not change status")

	in, err := move(t, c, lifecycle.Buyer, transitionRequest{Action: "suggest_changes", Suggestions: "lower the price"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.PendingChanges, c.Status)
	assert.Equal(t, lifecycle.Sent, in.From)
	assert.Equal(t, "lower the price", c.BuyerSuggestions)

	// suggesting again while changes are pending replaces the text
	_, err = move(t, c, lifecycle.Buyer, transitionRequest{Action: "SUGGEST_CHANGES", Suggestions: "and extend warranty"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.PendingChanges, c.Status)
	assert.Equal(t, "and extend warranty", c.BuyerSuggestions)

	_, err = move(t, c, lifecycle.Buyer, transitionRequest{Action: "respond", Response: "ok"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = move(t, c, lifecycle.Seller, transitionRequest{Action: "respond", Response: "price revised"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Sent, c.Status)
	assert.Equal(t, "price revised", c.SellerResponse)
	assert.Equal(t, at, c.SellerResponseAt.Time())
}

func TestApplyTransitionRejectsUnknownAndIllegal(t *testing.T) {
	tests := []struct {
		name   string
		doc    models.Document
		side   lifecycle.Side
		action lifecycle.Action
		kind   apperr.Kind
	}{
		{"unknown action", &models.RFQ{DocumentHeader: models.DocumentHeader{Status: lifecycle.Pending}}, lifecycle.Buyer, "explode", apperr.KindBadRequest},
		{"wrong state", &models.RFQ{DocumentHeader: models.DocumentHeader{Status: lifecycle.Rejected}}, lifecycle.Buyer, "accept", apperr.KindBadRequest},
		{"wrong side", &models.Quotation{DocumentHeader: models.DocumentHeader{Status: lifecycle.Sent}}, lifecycle.Seller, "accept", apperr.KindForbidden},
		{"po accepted by buyer", &models.PurchaseOrder{DocumentHeader: models.DocumentHeader{Status: lifecycle.Pending}}, lifecycle.Buyer, "accept", apperr.KindForbidden},
		{"dispute without comment", &models.DeliveryNote{DocumentHeader: models.DocumentHeader{Status: lifecycle.InTransit}}, lifecycle.Buyer, "dispute", apperr.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.doc.Header().Status
			_, err := move(t, tt.doc, tt.side, transitionRequest{Action: tt.action})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, before, tt.doc.Header().Status)
		})
	}
}

func TestInvoicePayments(t *testing.T) {
	inv := &models.Invoice{
		DocumentHeader: models.DocumentHeader{Status: lifecycle.Pending},
		Financials:     models.Financials{TotalAmount: dec("1000")},
	}
	inv.Rebalance()

	pay := func(amount string) error {
		_, err := move(t, inv, lifecycle.Seller, transitionRequest{
			Action: "record_payment",
			Amount: decimal.NewNullDecimal(dec(amount)),
		})
		return err
	}

	_, err := move(t, inv, lifecycle.Seller, transitionRequest{Action: "record_payment"})
	assert.Error(t, err, "amount is required")

	require.NoError(t, pay("400"))
	assert.Equal(t, lifecycle.Pending, inv.Status)
	assert.True(t, dec("600").Equal(inv.RemainingAmount))

	assert.ErrorIs(t, pay("700"), models.ErrOverpayment)
	assert.True(t, dec("400").Equal(inv.PaidAmount))

	require.NoError(t, pay("600"))
	assert.Equal(t, lifecycle.Paid, inv.Status)
	assert.True(t, inv.RemainingAmount.IsZero())
	assert.Equal(t, at, inv.PaidAt.Time())
}

func TestInvoiceOverdueThenPaid(t *testing.T) {
	inv := &models.Invoice{
		DocumentHeader: models.DocumentHeader{Status: lifecycle.Pending},
		Financials:     models.Financials{TotalAmount: dec("250")},
	}
	inv.Rebalance()

	_, err := move(t, inv, lifecycle.Seller, transitionRequest{Action: "mark_overdue"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Overdue, inv.Status)

	_, err = move(t, inv, lifecycle.Seller, transitionRequest{Action: "mark_paid"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Paid, inv.Status)
	assert.True(t, dec("250").Equal(inv.PaidAmount))
}

func TestDocumentView(t *testing.T) {
	q := &models.Quotation{DocumentHeader: models.DocumentHeader{DisplayID: "QUO-ACM-00001", Status: lifecycle.Sent}}

	view, err := documentView(q, lifecycle.Buyer)
	require.NoError(t, err)

	var actions []lifecycle.Action
	require.NoError(t, json.Unmarshal(view["availableActions"], &actions))
	assert.ElementsMatch(t, []lifecycle.Action{lifecycle.ActionAccept, lifecycle.ActionReject}, actions)
	assert.JSONEq(t, `"BUYER"`, string(view["viewerSide"]))
	assert.JSONEq(t, `"QUOTATION"`, string(view["documentType"]))
	assert.JSONEq(t, `"QUO-ACM-00001"`, string(view["displayId"]))

	view, err = documentView(q, lifecycle.Seller)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(view["availableActions"]))
}
