// Package lifecycle holds the closed status workflow of every document type.
package lifecycle

import "strings"

// DocType names a document kind in the procurement chain.
type DocType string

const (
	RFQ           DocType = "RFQ"
	Quotation     DocType = "QUOTATION"
	Contract      DocType = "CONTRACT"
	PurchaseOrder DocType = "PURCHASE_ORDER"
	SalesOrder    DocType = "SALES_ORDER"
	DeliveryNote  DocType = "DELIVERY_NOTE"
	PackingList   DocType = "PACKING_LIST"
	Invoice       DocType = "INVOICE"
)

// DocTypes lists the chain in order.
var DocTypes = []DocType{RFQ, Quotation, Contract, PurchaseOrder, SalesOrder, DeliveryNote, PackingList, Invoice}

// Label is the human name used in messages.
func (t DocType) Label() string {
	switch t {
	case RFQ:
		return "RFQ"
	case PurchaseOrder:
		return "purchase order"
	default:
		return strings.ToLower(strings.ReplaceAll(string(t), "_", " "))
	}
}

// Article prefixes the label with "a" or "an".
func (t DocType) Article() string {
	l := t.Label()
	if strings.ContainsRune("aeiouAEIOU", rune(l[0])) || t == RFQ {
		return "an " + l
	}
	return "a " + l
}

// Status values. The same label can mean different things for different
// types; a Machine decides which ones are legal for its type.
type Status string

const (
	Draft          Status = "DRAFT"
	Pending        Status = "PENDING"
	Sent           Status = "SENT"
	Approved       Status = "APPROVED"
	Accepted       Status = "ACCEPTED"
	Rejected       Status = "REJECTED"
	Completed      Status = "COMPLETED"
	Signed         Status = "SIGNED"
	PendingChanges Status = "PENDING_CHANGES"
	Confirmed      Status = "CONFIRMED"
	Shipped        Status = "SHIPPED"
	Cancelled      Status = "CANCELLED"
	InTransit      Status = "IN_TRANSIT"
	Acknowledged   Status = "ACKNOWLEDGED"
	Disputed       Status = "DISPUTED"
	Received       Status = "RECEIVED"
	Paid           Status = "PAID"
	Overdue        Status = "OVERDUE"
)

// Action is the token a client sends to move a document.
type Action string

const (
	ActionAccept         Action = "accept"
	ActionReject         Action = "reject"
	ActionSend           Action = "send"
	ActionSuggestChanges Action = "suggest_changes"
	ActionRespond        Action = "respond"
	ActionSign           Action = "sign"
	ActionSubmit         Action = "submit"
	ActionComplete       Action = "complete"
	ActionConfirm        Action = "confirm"
	ActionShip           Action = "ship"
	ActionCancel         Action = "cancel"
	ActionDispatch       Action = "dispatch"
	ActionAcknowledge    Action = "acknowledge"
	ActionDispute        Action = "dispute"
	ActionApprove        Action = "approve"
	ActionRecordPayment  Action = "record_payment"
	ActionMarkPaid       Action = "mark_paid"
	ActionMarkOverdue    Action = "mark_overdue"
)

// Side is the role a company plays on a document.
type Side string

const (
	Buyer  Side = "BUYER"
	Seller Side = "SELLER"
)

func (s Side) Valid() bool {
	return s == Buyer || s == Seller
}

func (s Side) Label() string {
	return strings.ToLower(string(s))
}

// Opposite returns the counterpart side.
func (s Side) Opposite() Side {
	if s == Buyer {
		return Seller
	}
	return Buyer
}

// IssuerSide is the side that authors documents of type t.
func IssuerSide(t DocType) Side {
	switch t {
	case RFQ, PurchaseOrder:
		return Buyer
	default:
		return Seller
	}
}
