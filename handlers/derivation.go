package handlers

import (
	"github.com/shopspring/decimal"

	"p9e.in/procurement/models"
)

// inheritance is what a derived document takes over from its source.
type inheritance struct {
	rows       []pricedRow
	sum        decimal.Decimal
	financials *models.Financials
}

// inherit copies both parties of src onto dst and prepares src's lines
// for the new document. Snapshots are copied as they are on the source,
// not re-read from the companies.
func inherit(dst *models.DocumentHeader, src models.Document) inheritance {
	dst.CopyPartiesFrom(src.Header())
	rows, sum := derivedRows(src.Lines())
	out := inheritance{rows: rows, sum: sum}
	if p, ok := src.(models.Priced); ok {
		f := *p.Money()
		out.financials = &f
	}
	return out
}

// lines picks the request items when given, the inherited ones otherwise.
func (in *inheritance) lines(items []itemInput) ([]pricedRow, decimal.Decimal) {
	if len(items) > 0 {
		return pricedRows(items)
	}
	return in.rows, in.sum
}

// current makes a stored document the source of its own edit, so a PUT
// without items keeps the lines it has.
func current(doc models.Document, f *models.Financials) inheritance {
	rows, sum := derivedRows(doc.Lines())
	out := inheritance{rows: rows, sum: sum}
	if f != nil {
		c := *f
		out.financials = &c
	}
	return out
}
