package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/pkg/apperr"
)

func TestEveryTypeHasAMachine(t *testing.T) {
	for _, dt := range DocTypes {
		m, err := For(dt)
		require.NoError(t, err, dt)
		assert.Equal(t, dt, m.Type)
		assert.True(t, m.Has(m.Default), "%s default %s is not a status", dt, m.Default)
		for _, s := range m.Initial {
			assert.True(t, m.Has(s), "%s initial %s is not a status", dt, s)
		}
		for _, tr := range m.Transitions {
			for _, from := range tr.From {
				assert.True(t, m.Has(from), "%s %s from unknown %s", dt, tr.Action, from)
			}
			if tr.To != "" {
				assert.True(t, m.Has(tr.To), "%s %s to unknown %s", dt, tr.Action, tr.To)
			}
			assert.NotEmpty(t, tr.By)
		}
	}

	_, err := For(DocType("WAYBILL"))
	assert.Error(t, err)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		doc    DocType
		from   Status
		action Action
		side   Side
		want   Status
		kind   apperr.Kind
	}{
		{"rfq accepted by seller", RFQ, Pending, ActionAccept, Seller, Approved, 0},
		{"rfq rejected by buyer", RFQ, Draft, ActionReject, Buyer, Rejected, 0},
		{"rfq completed after approval", RFQ, Approved, ActionComplete, Buyer, Completed, 0},
		{"rfq cannot complete while open", RFQ, Pending, ActionComplete, Buyer, "", apperr.KindBadRequest},
		{"quotation sent", Quotation, Draft, ActionSend, Seller, Sent, 0},
		{"quotation accepted", Quotation, Sent, ActionAccept, Buyer, Accepted, 0},
		{"seller cannot accept own quotation", Quotation, Sent, ActionAccept, Seller, "", apperr.KindForbidden},
		{"contract accepted", Contract, Sent, ActionAccept, Buyer, Approved, 0},
		{"accept on rejected contract", Contract, Rejected, ActionAccept, Buyer, "", apperr.KindBadRequest},
		{"reject on approved contract", Contract, Approved, ActionReject, Buyer, "", apperr.KindBadRequest},
		{"contract changes suggested", Contract, Sent, ActionSuggestChanges, Buyer, PendingChanges, 0},
		{"changes suggested again", Contract, PendingChanges, ActionSuggestChanges, Buyer, PendingChanges, 0},
		{"seller responds", Contract, PendingChanges, ActionRespond, Seller, Sent, 0},
		{"buyer cannot respond", Contract, PendingChanges, ActionRespond, Buyer, "", apperr.KindForbidden},
		{"contract signed", Contract, Approved, ActionSign, Seller, Signed, 0},
		{"po approved by seller", PurchaseOrder, Pending, ActionAccept, Seller, Approved, 0},
		{"buyer cannot approve po", PurchaseOrder, Pending, ActionAccept, Buyer, "", apperr.KindForbidden},
		{"po submitted", PurchaseOrder, Draft, ActionSubmit, Buyer, Pending, 0},
		{"so shipped", SalesOrder, Confirmed, ActionShip, Seller, Shipped, 0},
		{"so cannot ship from draft", SalesOrder, Draft, ActionShip, Seller, "", apperr.KindBadRequest},
		{"dn acknowledged", DeliveryNote, InTransit, ActionAcknowledge, Buyer, Acknowledged, 0},
		{"dn disputed", DeliveryNote, Pending, ActionDispute, Buyer, Disputed, 0},
		{"dn completed regardless of ack", DeliveryNote, Pending, ActionComplete, Seller, Completed, 0},
		{"dn cannot cancel after completion", DeliveryNote, Completed, ActionCancel, Seller, "", apperr.KindBadRequest},
		{"pl acknowledged from received", PackingList, Received, ActionAcknowledge, Buyer, Acknowledged, 0},
		{"pl rejected from approved", PackingList, Approved, ActionReject, Buyer, Rejected, 0},
		{"invoice issued", Invoice, Draft, ActionSubmit, Seller, Pending, 0},
		{"invoice paid", Invoice, Overdue, ActionMarkPaid, Seller, Paid, 0},
		{"payment keeps status", Invoice, Pending, ActionRecordPayment, Seller, Pending, 0},
		{"buyer cannot mark paid", Invoice, Pending, ActionMarkPaid, Buyer, "", apperr.KindForbidden},
		{"unknown action", Invoice, Pending, Action("refund"), Seller, "", apperr.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := MustFor(tt.doc).Next(tt.from, tt.action, tt.side)
			if tt.want == "" {
				require.Error(t, err)
				assert.Equal(t, tt.kind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.Target(tt.from))
		})
	}
}

func TestNextMessages(t *testing.T) {
	_, err := MustFor(Contract).Next(Rejected, ActionAccept, Buyer)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "cannot accept a contract in status REJECTED", apperr.PublicMessage(err))

	_, err = MustFor(PurchaseOrder).Next(Pending, ActionAccept, Buyer)
	assert.ErrorIs(t, err, ErrWrongSide)
	assert.Equal(t, "only the seller can accept a purchase order", apperr.PublicMessage(err))

	_, err = MustFor(Invoice).Next(Pending, ActionMarkPaid, Buyer)
	assert.Equal(t, "only the seller can mark_paid an invoice", apperr.PublicMessage(err))
}

func TestCheckInput(t *testing.T) {
	m := MustFor(Contract)

	tr, err := m.Next(Sent, ActionSuggestChanges, Buyer)
	require.NoError(t, err)
	assert.Error(t, tr.CheckInput("  ", false))
	assert.NoError(t, tr.CheckInput("lower the price", false))

	tr, err = m.Next(PendingChanges, ActionRespond, Seller)
	require.NoError(t, err)
	err = tr.CheckInput("", false)
	require.Error(t, err)
	assert.Equal(t, "response is required to respond", apperr.PublicMessage(err))

	tr, err = MustFor(Invoice).Next(Pending, ActionRecordPayment, Seller)
	require.NoError(t, err)
	assert.Error(t, tr.CheckInput("", false))
	assert.NoError(t, tr.CheckInput("", true))
}

func TestAvailable(t *testing.T) {
	c := MustFor(Contract)

	assert.ElementsMatch(t, []Action{ActionAccept, ActionReject, ActionSuggestChanges}, c.Available(Sent, Buyer))
	assert.ElementsMatch(t, []Action{ActionSuggestChanges}, c.Available(PendingChanges, Buyer))
	assert.ElementsMatch(t, []Action{ActionRespond}, c.Available(PendingChanges, Seller))
	assert.Empty(t, c.Available(Approved, Buyer))
	assert.Empty(t, c.Available(Rejected, Buyer))
	assert.True(t, c.Terminal(Rejected))
	assert.True(t, c.Terminal(Signed))
	assert.False(t, c.Terminal(Approved))

	// after the seller responds the buyer's accept and reject come back
	tr, err := c.Next(PendingChanges, ActionRespond, Seller)
	require.NoError(t, err)
	assert.Contains(t, c.Available(tr.Target(PendingChanges), Buyer), ActionAccept)
	assert.Contains(t, c.Available(tr.Target(PendingChanges), Buyer), ActionReject)
}

func TestInitialStatus(t *testing.T) {
	rfq := MustFor(RFQ)

	s, err := rfq.InitialStatus("")
	require.NoError(t, err)
	assert.Equal(t, Pending, s)

	s, err = rfq.InitialStatus("draft")
	require.NoError(t, err)
	assert.Equal(t, Draft, s)

	_, err = rfq.InitialStatus(Approved)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = MustFor(Invoice).InitialStatus(Paid)
	assert.Error(t, err)
}

func TestCanEdit(t *testing.T) {
	assert.True(t, MustFor(Contract).CanEdit(PendingChanges))
	assert.False(t, MustFor(Contract).CanEdit(Signed))
	assert.True(t, MustFor(Invoice).CanEdit(Draft))
	assert.False(t, MustFor(Invoice).CanEdit(Pending))
}

func TestIssuerSide(t *testing.T) {
	assert.Equal(t, Buyer, IssuerSide(RFQ))
	assert.Equal(t, Buyer, IssuerSide(PurchaseOrder))
	assert.Equal(t, Seller, IssuerSide(Quotation))
	assert.Equal(t, Seller, IssuerSide(Invoice))
	assert.Equal(t, Seller, Buyer.Opposite())
}
