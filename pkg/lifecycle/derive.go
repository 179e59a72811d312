package lifecycle

import (
	"errors"
	"slices"

	"p9e.in/procurement/pkg/apperr"
)

var ErrDerivationBlocked = errors.New("derivation blocked")

// derivations lists the document types that can be created from each
// source type.
var derivations = map[DocType][]DocType{
	RFQ:           {Quotation, Contract},
	Quotation:     {Contract, PurchaseOrder},
	Contract:      {PurchaseOrder},
	PurchaseOrder: {SalesOrder, DeliveryNote, PackingList, Invoice},
}

// gates are source statuses a derivation requires. Pairs not listed only
// need a source that is not dead.
var gates = map[[2]DocType][]Status{
	{Contract, PurchaseOrder}:   {Approved, Signed},
	{PurchaseOrder, SalesOrder}: {Approved},
}

var dead = []Status{Rejected, Cancelled}

// Derivable lists the child types of t.
func Derivable(t DocType) []DocType {
	return derivations[t]
}

// CanDerive checks that a child of type child may be created from a
// source of type parent currently in status.
func CanDerive(parent DocType, status Status, child DocType) error {
	if !slices.Contains(derivations[parent], child) {
		return apperr.Wrap(apperr.KindBadRequest, ErrDerivationBlocked,
			"%s cannot be created from %s", child.Article(), parent.Article())
	}
	if slices.Contains(dead, status) {
		return apperr.Wrap(apperr.KindBadRequest, ErrDerivationBlocked,
			"cannot create %s from %s in status %s", child.Article(), parent.Article(), status)
	}
	if required, ok := gates[[2]DocType{parent, child}]; ok && !slices.Contains(required, status) {
		return apperr.Wrap(apperr.KindBadRequest, ErrDerivationBlocked,
			"cannot create %s from %s in status %s: it must be %s",
			child.Article(), parent.Article(), status, joinOr(required))
	}
	return nil
}

func joinOr(ss []Status) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " or "
		}
		out += string(s)
	}
	return out
}
