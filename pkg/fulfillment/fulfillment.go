// Package fulfillment tracks how much of each purchase order line is still
// to be delivered.
package fulfillment

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/ledger"
)

var (
	ErrOverDelivery = errors.New("quantity exceeds remaining")
	ErrUnknownLine  = errors.New("line not on purchase order")
)

// OrderLine is a purchase order line.
type OrderLine struct {
	SerialNumber int
	LineKey      string
	ProductName  string
	SKU          string
	Quantity     decimal.Decimal
}

// DeliveryLine is one line of a delivery note.
type DeliveryLine struct {
	LineKey           string
	ProductName       string
	SKU               string
	QuantityDelivered decimal.Decimal
}

// Balance is the delivery position of one order line.
type Balance struct {
	SerialNumber int             `json:"serialNumber"`
	LineKey      string          `json:"lineKey"`
	ProductName  string          `json:"productName"`
	SKU          string          `json:"sku"`
	Ordered      decimal.Decimal `json:"ordered"`
	Delivered    decimal.Decimal `json:"delivered"`
	Remaining    decimal.Decimal `json:"remaining"`
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// match finds the order line a delivery line belongs to: by line key when
// both carry one, otherwise by product name and, when both have one, SKU.
func match(lines []OrderLine, d DeliveryLine) int {
	if d.LineKey != "" {
		for i, l := range lines {
			if l.LineKey != "" && l.LineKey == d.LineKey {
				return i
			}
		}
	}
	name, sku := normalize(d.ProductName), normalize(d.SKU)
	if name == "" {
		return -1
	}
	for i, l := range lines {
		if normalize(l.ProductName) != name {
			continue
		}
		if ls := normalize(l.SKU); ls != "" && sku != "" && ls != sku {
			continue
		}
		return i
	}
	return -1
}

// Match returns the index of the order line d belongs to.
func Match(lines []OrderLine, d DeliveryLine) (int, bool) {
	i := match(lines, d)
	return i, i >= 0
}

// Remaining computes max(0, ordered - delivered) for every order line,
// counting every prior delivery line that matches it.
func Remaining(lines []OrderLine, prior []DeliveryLine) []Balance {
	delivered := make([]decimal.Decimal, len(lines))
	for _, d := range prior {
		if i := match(lines, d); i >= 0 {
			delivered[i] = delivered[i].Add(d.QuantityDelivered)
		}
	}

	out := make([]Balance, 0, len(lines))
	for i, l := range lines {
		rem := ledger.Round(l.Quantity.Sub(delivered[i]))
		if rem.IsNegative() {
			rem = decimal.Zero
		}
		out = append(out, Balance{
			SerialNumber: l.SerialNumber,
			LineKey:      l.LineKey,
			ProductName:  l.ProductName,
			SKU:          l.SKU,
			Ordered:      l.Quantity,
			Delivered:    ledger.Round(delivered[i]),
			Remaining:    rem,
		})
	}
	return out
}

// Check validates a new delivery against what is left. Quantities for the
// same order line are summed before comparing.
func Check(lines []OrderLine, prior []DeliveryLine, next []DeliveryLine) error {
	balances := Remaining(lines, prior)
	requested := make([]decimal.Decimal, len(lines))
	touched := make([]bool, len(lines))

	for _, d := range next {
		if d.QuantityDelivered.IsNegative() {
			return apperr.Invalid("items", "quantityDelivered for %q cannot be negative", d.ProductName)
		}
		i := match(lines, d)
		if i < 0 {
			return apperr.Wrap(apperr.KindBadRequest, ErrUnknownLine,
				"%q is not a line of the purchase order", d.ProductName)
		}
		requested[i] = requested[i].Add(d.QuantityDelivered)
		touched[i] = true
	}

	for i, b := range balances {
		if !touched[i] {
			continue
		}
		if requested[i].GreaterThan(b.Remaining) {
			return apperr.Wrap(apperr.KindBadRequest, ErrOverDelivery,
				"cannot deliver %s of %q: only %s remaining", requested[i].String(), b.ProductName, b.Remaining.String())
		}
	}
	return nil
}

// Settled reports whether every line has been delivered in full.
func Settled(balances []Balance) bool {
	for _, b := range balances {
		if b.Remaining.IsPositive() {
			return false
		}
	}
	return true
}
