// Package party resolves which side of a document a company is on.
package party

import (
	"strings"

	"github.com/google/uuid"

	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/lifecycle"
)

// Ref identifies a counterparty. It is resolved when the company has an
// account, otherwise it only carries the name typed in when the document
// was written.
type Ref struct {
	CompanyID *uuid.UUID
	Name      string
}

func Resolved(id uuid.UUID, name string) Ref {
	return Ref{CompanyID: &id, Name: name}
}

func Unresolved(name string) Ref {
	return Ref{Name: name}
}

func (r Ref) IsResolved() bool {
	return r.CompanyID != nil && *r.CompanyID != uuid.Nil
}

// SameName compares company names ignoring case and outer whitespace.
func SameName(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// Matches reports whether actor is the company behind r.
func (r Ref) Matches(a Actor) bool {
	if r.IsResolved() {
		return *r.CompanyID == a.CompanyID
	}
	return SameName(r.Name, a.CompanyName)
}

// Actor is the authenticated company making a request.
type Actor struct {
	CompanyID   uuid.UUID
	CompanyName string
	Side        lifecycle.Side
	UserID      uuid.UUID
}

// Parties is the buyer and seller of record of a document.
type Parties struct {
	Buyer  Ref
	Seller Ref
}

func (p Parties) Ref(side lifecycle.Side) Ref {
	if side == lifecycle.Buyer {
		return p.Buyer
	}
	return p.Seller
}

// SideOf returns the side actor holds on the document. A company only ever
// acts on the side of its registered type.
func SideOf(p Parties, a Actor) (lifecycle.Side, bool) {
	if !a.Side.Valid() {
		return "", false
	}
	if p.Ref(a.Side).Matches(a) {
		return a.Side, true
	}
	return "", false
}

// Authorize allows either party of record and returns its side.
func Authorize(p Parties, a Actor, t lifecycle.DocType) (lifecycle.Side, error) {
	side, ok := SideOf(p, a)
	if !ok {
		return "", apperr.Forbidden("your company is neither the buyer nor the seller of record for this %s", t.Label())
	}
	return side, nil
}

// Require allows only the party of record on side.
func Require(p Parties, a Actor, side lifecycle.Side, t lifecycle.DocType) error {
	if a.Side != side {
		return apperr.Forbidden("only %s companies can do this on %s", side.Label(), t.Article())
	}
	if !p.Ref(side).Matches(a) {
		return apperr.Forbidden("your company is not the %s of record for this %s", side.Label(), t.Label())
	}
	return nil
}
