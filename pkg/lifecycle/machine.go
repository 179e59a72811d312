package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"p9e.in/procurement/pkg/apperr"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrWrongSide         = errors.New("action not allowed for this side")
	ErrMissingInput      = errors.New("missing action input")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Transition is one row of a machine's table. An empty To keeps the
// current status; the caller may still promote it (see Invoice payments).
type Transition struct {
	From        []Status
	Action      Action
	By          []Side
	To          Status
	TextField   string // request field that must be non-empty, if any
	NeedsAmount bool
}

// Target resolves the status a document lands in.
func (t Transition) Target(from Status) Status {
	if t.To == "" {
		return from
	}
	return t.To
}

// CheckInput validates the free text and amount carried with the action.
func (t Transition) CheckInput(text string, hasAmount bool) error {
	if t.TextField != "" && strings.TrimSpace(text) == "" {
		return apperr.Wrap(apperr.KindBadRequest, ErrMissingInput, "%s is required to %s", t.TextField, t.Action)
	}
	if t.NeedsAmount && !hasAmount {
		return apperr.Wrap(apperr.KindBadRequest, ErrMissingInput, "amount is required to %s", t.Action)
	}
	return nil
}

// Machine is the closed workflow of one document type.
type Machine struct {
	Type        DocType
	Statuses    []Status
	Initial     []Status
	Default     Status
	Editable    []Status
	Transitions []Transition
}

// Has reports whether s is a status of this type.
func (m *Machine) Has(s Status) bool {
	return slices.Contains(m.Statuses, s)
}

// InitialStatus validates the status a client asked to create with.
func (m *Machine) InitialStatus(requested Status) (Status, error) {
	if requested == "" {
		return m.Default, nil
	}
	requested = Status(strings.ToUpper(strings.TrimSpace(string(requested))))
	if !slices.Contains(m.Initial, requested) {
		return "", apperr.Wrap(apperr.KindBadRequest, ErrInvalidStatus,
			"a new %s cannot start in status %s (allowed: %s)", m.Type.Label(), requested, joinStatuses(m.Initial))
	}
	return requested, nil
}

// CanEdit reports whether header and items may still be rewritten.
func (m *Machine) CanEdit(s Status) bool {
	return slices.Contains(m.Editable, s)
}

// Next finds the transition for action taken by side from the given
// status. Nothing is mutated; the caller applies the result.
func (m *Machine) Next(from Status, action Action, side Side) (Transition, error) {
	known := false
	for _, t := range m.Transitions {
		if t.Action != action {
			continue
		}
		known = true
		if !slices.Contains(t.From, from) {
			continue
		}
		if !slices.Contains(t.By, side) {
			return Transition{}, apperr.Wrap(apperr.KindForbidden, ErrWrongSide,
				"only the %s can %s %s", sidesLabel(t.By), action, m.Type.Article())
		}
		return t, nil
	}
	if !known {
		return Transition{}, apperr.Wrap(apperr.KindBadRequest, ErrInvalidTransition,
			"unknown action %q for %s", action, m.Type.Label())
	}
	return Transition{}, apperr.Wrap(apperr.KindBadRequest, ErrInvalidTransition,
		"cannot %s %s in status %s", action, m.Type.Article(), from)
}

// Available lists the actions side may take from status s.
func (m *Machine) Available(s Status, side Side) []Action {
	var out []Action
	for _, t := range m.Transitions {
		if slices.Contains(t.From, s) && slices.Contains(t.By, side) && !slices.Contains(out, t.Action) {
			out = append(out, t.Action)
		}
	}
	return out
}

// Terminal reports whether no side can move a document out of s.
func (m *Machine) Terminal(s Status) bool {
	return len(m.Available(s, Buyer)) == 0 && len(m.Available(s, Seller)) == 0
}

func sidesLabel(sides []Side) string {
	labels := make([]string, 0, len(sides))
	for _, s := range sides {
		labels = append(labels, s.Label())
	}
	return strings.Join(labels, " or ")
}

func joinStatuses(ss []Status) string {
	parts := make([]string, 0, len(ss))
	for _, s := range ss {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

// For returns the machine of t.
func For(t DocType) (*Machine, error) {
	m, ok := machines[t]
	if !ok {
		return nil, fmt.Errorf("no lifecycle for document type %q", t)
	}
	return m, nil
}

// MustFor is For for statically known types.
func MustFor(t DocType) *Machine {
	m, err := For(t)
	if err != nil {
		panic(err)
	}
	return m
}

var (
	both       = []Side{Buyer, Seller}
	buyerOnly  = []Side{Buyer}
	sellerOnly = []Side{Seller}
)

var machines = map[DocType]*Machine{
	// DRAFT and PENDING are both open; there is no action between them.
	RFQ: {
		Type:     RFQ,
		Statuses: []Status{Draft, Pending, Approved, Rejected, Completed},
		Initial:  []Status{Draft, Pending},
		Default:  Pending,
		Editable: []Status{Draft, Pending},
		Transitions: []Transition{
			{From: []Status{Draft, Pending}, Action: ActionAccept, By: both, To: Approved},
			{From: []Status{Draft, Pending}, Action: ActionReject, By: both, To: Rejected},
			{From: []Status{Approved}, Action: ActionComplete, By: buyerOnly, To: Completed},
		},
	},
	Quotation: {
		Type:     Quotation,
		Statuses: []Status{Draft, Sent, Pending, Accepted, Rejected},
		Initial:  []Status{Draft, Sent, Pending},
		Default:  Draft,
		Editable: []Status{Draft, Sent, Pending},
		Transitions: []Transition{
			{From: []Status{Draft}, Action: ActionSend, By: sellerOnly, To: Sent},
			{From: []Status{Sent, Pending}, Action: ActionAccept, By: buyerOnly, To: Accepted},
			{From: []Status{Sent, Pending}, Action: ActionReject, By: buyerOnly, To: Rejected},
		},
	},
	Contract: {
		Type:     Contract,
		Statuses: []Status{Draft, Sent, Signed, Approved, Rejected, PendingChanges},
		Initial:  []Status{Draft, Sent},
		Default:  Draft,
		Editable: []Status{Draft, Sent, PendingChanges},
		Transitions: []Transition{
			{From: []Status{Draft}, Action: ActionSend, By: sellerOnly, To: Sent},
			{From: []Status{Draft, Sent}, Action: ActionAccept, By: buyerOnly, To: Approved},
			{From: []Status{Draft, Sent}, Action: ActionReject, By: buyerOnly, To: Rejected},
			{From: []Status{Draft, Sent, PendingChanges}, Action: ActionSuggestChanges, By: buyerOnly, To: PendingChanges, TextField: "suggestions"},
			{From: []Status{PendingChanges}, Action: ActionRespond, By: sellerOnly, To: Sent, TextField: "response"},
			{From: []Status{Approved}, Action: ActionSign, By: sellerOnly, To: Signed},
		},
	},
	PurchaseOrder: {
		Type:     PurchaseOrder,
		Statuses: []Status{Draft, Pending, Approved, Rejected},
		Initial:  []Status{Draft, Pending},
		Default:  Pending,
		Editable: []Status{Draft, Pending},
		Transitions: []Transition{
			{From: []Status{Draft}, Action: ActionSubmit, By: buyerOnly, To: Pending},
			{From: []Status{Draft, Pending}, Action: ActionAccept, By: sellerOnly, To: Approved},
			{From: []Status{Draft, Pending}, Action: ActionReject, By: sellerOnly, To: Rejected},
		},
	},
	SalesOrder: {
		Type:     SalesOrder,
		Statuses: []Status{Draft, Confirmed, Shipped, Completed, Cancelled},
		Initial:  []Status{Draft, Confirmed},
		Default:  Draft,
		Editable: []Status{Draft, Confirmed},
		Transitions: []Transition{
			{From: []Status{Draft}, Action: ActionConfirm, By: sellerOnly, To: Confirmed},
			{From: []Status{Confirmed}, Action: ActionShip, By: sellerOnly, To: Shipped},
			{From: []Status{Shipped}, Action: ActionComplete, By: sellerOnly, To: Completed},
			{From: []Status{Draft, Confirmed}, Action: ActionCancel, By: sellerOnly, To: Cancelled},
		},
	},
	DeliveryNote: {
		Type:     DeliveryNote,
		Statuses: []Status{Pending, InTransit, Acknowledged, Disputed, Completed, Cancelled},
		Initial:  []Status{Pending, InTransit},
		Default:  Pending,
		Editable: []Status{Pending, InTransit},
		Transitions: []Transition{
			{From: []Status{Pending}, Action: ActionDispatch, By: sellerOnly, To: InTransit},
			{From: []Status{Pending, InTransit}, Action: ActionAcknowledge, By: buyerOnly, To: Acknowledged},
			{From: []Status{Pending, InTransit}, Action: ActionDispute, By: buyerOnly, To: Disputed, TextField: "comment"},
			{From: []Status{Pending, InTransit, Acknowledged, Disputed}, Action: ActionComplete, By: sellerOnly, To: Completed},
			{From: []Status{Pending, InTransit, Disputed}, Action: ActionCancel, By: sellerOnly, To: Cancelled},
		},
	},
	PackingList: {
		Type:     PackingList,
		Statuses: []Status{Received, Pending, Approved, Acknowledged, Rejected},
		Initial:  []Status{Pending, Received},
		Default:  Pending,
		Editable: []Status{Received, Pending},
		Transitions: []Transition{
			{From: []Status{Received, Pending}, Action: ActionApprove, By: sellerOnly, To: Approved},
			{From: []Status{Received, Pending, Approved}, Action: ActionAcknowledge, By: buyerOnly, To: Acknowledged},
			{From: []Status{Received, Pending, Approved}, Action: ActionReject, By: buyerOnly, To: Rejected},
		},
	},
	// OVERDUE is set by hand; nothing in the service watches due dates.
	Invoice: {
		Type:     Invoice,
		Statuses: []Status{Draft, Pending, Paid, Overdue},
		Initial:  []Status{Draft, Pending},
		Default:  Draft,
		Editable: []Status{Draft},
		Transitions: []Transition{
			{From: []Status{Draft}, Action: ActionSubmit, By: sellerOnly, To: Pending},
			{From: []Status{Pending, Overdue}, Action: ActionRecordPayment, By: sellerOnly, NeedsAmount: true},
			{From: []Status{Pending, Overdue}, Action: ActionMarkPaid, By: sellerOnly, To: Paid},
			{From: []Status{Pending}, Action: ActionMarkOverdue, By: sellerOnly, To: Overdue},
		},
	},
}
