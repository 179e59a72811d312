// Package docid formats the human readable numbers printed on documents.
//
// Numbers are derived from a count of the issuer's existing documents of
// the same type, so two concurrent creates for one issuer can be handed
// the same number. The display number is not a key and is not unique in
// storage.
package docid

import (
	"fmt"
	"strings"
	"unicode"

	"p9e.in/procurement/pkg/lifecycle"
)

const (
	sequenceWidth = 4
	initialsWidth = 3
)

var fixedPrefixes = map[lifecycle.DocType]string{
	lifecycle.RFQ:           "RFQ-",
	lifecycle.Quotation:     "QT-",
	lifecycle.PurchaseOrder: "PO-",
	lifecycle.SalesOrder:    "SO-",
	lifecycle.DeliveryNote:  "DN-",
}

var typeCodes = map[lifecycle.DocType]string{
	lifecycle.PackingList: "PL",
	lifecycle.Invoice:     "INV",
	lifecycle.Contract:    "CON",
}

// Initials takes the first letter of each word of name, upper cased, and
// cuts or pads the result with X to three characters.
func Initials(name string) string {
	out := make([]rune, 0, initialsWidth)
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == ','
	}) {
		if len(out) == initialsWidth {
			break
		}
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
	}
	for len(out) < initialsWidth {
		out = append(out, 'X')
	}
	return string(out)
}

// Prefix returns the part of the number before the sequence.
func Prefix(t lifecycle.DocType, issuerName string) (string, error) {
	if p, ok := fixedPrefixes[t]; ok {
		return p, nil
	}
	if code, ok := typeCodes[t]; ok {
		return Initials(issuerName) + code, nil
	}
	return "", fmt.Errorf("docid: no numbering scheme for %q", t)
}

// Generate formats the next number given how many documents of this type
// the issuer already has, soft deleted ones included.
func Generate(t lifecycle.DocType, issuerName string, existing int64) (string, error) {
	prefix, err := Prefix(t, issuerName)
	if err != nil {
		return "", err
	}
	if existing < 0 {
		existing = 0
	}
	return fmt.Sprintf("%s%0*d", prefix, sequenceWidth, existing+1), nil
}
