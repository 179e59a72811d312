package handlers

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shockerli/cvt"
	"github.com/shopspring/decimal"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/ledger"
)

// partyInput names a counterpart. CompanyID links a registered company;
// otherwise CompanyName is kept as the name hint.
type partyInput struct {
	CompanyID   *uuid.UUID `json:"companyId"`
	CompanyName string     `json:"companyName"`
	ContactName string     `json:"contactName"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Country     string     `json:"country"`
	PostalCode  string     `json:"postalCode"`
	TaxID       string     `json:"taxId"`
}

func (p *partyInput) snapshot() models.PartySnapshot {
	return models.PartySnapshot{
		CompanyName: strings.TrimSpace(p.CompanyName),
		ContactName: p.ContactName,
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		Country:     p.Country,
		PostalCode:  p.PostalCode,
		TaxID:       p.TaxID,
	}
}

// itemInput is one line as clients send it. Numbers may arrive as JSON
// numbers, numeric strings or null.
type itemInput struct {
	LineKey           *uuid.UUID `json:"lineKey"`
	ProductName       string     `json:"productName" validate:"required"`
	Description       string     `json:"description"`
	SKU               string     `json:"sku"`
	HSNCode           string     `json:"hsnCode"`
	UnitOfMeasure     string     `json:"unitOfMeasure"`
	Quantity          any        `json:"quantity"`
	UnitPrice         any        `json:"unitPrice"`
	QuantityDelivered any        `json:"quantityDelivered"`
	GrossWeight       any        `json:"grossWeight"`
	NetWeight         any        `json:"netWeight"`
	PackageCount      any        `json:"packageCount"`
	PackageType       string     `json:"packageType"`
}

func (in *itemInput) lineItem(serial int) models.LineItem {
	li := models.LineItem{
		SerialNumber:  serial,
		ProductName:   strings.TrimSpace(in.ProductName),
		Description:   in.Description,
		SKU:           strings.TrimSpace(in.SKU),
		HSNCode:       in.HSNCode,
		UnitOfMeasure: in.UnitOfMeasure,
		Quantity:      ledger.Round(ledger.Coerce(in.Quantity)),
	}
	if in.LineKey != nil {
		li.LineKey = *in.LineKey
	}
	return li
}

// financialInput carries the rollup adjustments of a priced document.
// Absent fields are inherited from the source document when deriving.
type financialInput struct {
	Currency           string              `json:"currency" validate:"omitempty,len=3"`
	DiscountPercentage decimal.NullDecimal `json:"discountPercentage"`
	TaxPercentage      decimal.NullDecimal `json:"taxPercentage"`
	AdditionalCharges  decimal.NullDecimal `json:"additionalCharges"`
}

func (f *financialInput) adjustments(inherited *models.Financials) ledger.Adjustments {
	var adj ledger.Adjustments
	if inherited != nil {
		adj = inherited.Adjustments()
	}
	if f.DiscountPercentage.Valid {
		adj.DiscountPercentage = f.DiscountPercentage
	}
	if f.TaxPercentage.Valid {
		adj.TaxPercentage = f.TaxPercentage
	}
	if f.AdditionalCharges.Valid {
		adj.AdditionalCharges = f.AdditionalCharges
	}
	return adj
}

func (f *financialInput) currency(inherited *models.Financials) string {
	if c := strings.TrimSpace(f.Currency); c != "" {
		return c
	}
	if inherited != nil && inherited.Currency != "" {
		return inherited.Currency
	}
	return "INR"
}

// price stores the rollup of sum on f.
func price(f *models.Financials, sum decimal.Decimal, in *financialInput, inherited *models.Financials) error {
	adj := in.adjustments(inherited)
	totals, err := ledger.Rollup(sum, adj)
	if err != nil {
		return err
	}
	f.Currency = in.currency(inherited)
	f.Apply(adj, totals)
	return nil
}

// pricedRow is a computed line of a priced document.
type pricedRow struct {
	models.LineItem
	models.PricedLine
}

// pricedRows runs request items through the ledger.
func pricedRows(items []itemInput) ([]pricedRow, decimal.Decimal) {
	inputs := make([]ledger.Input, len(items))
	for i := range items {
		inputs[i] = ledger.Input{Quantity: items[i].Quantity, UnitPrice: items[i].UnitPrice}
	}
	l := ledger.Compute(inputs)
	rows := make([]pricedRow, len(items))
	for i, line := range l.Lines {
		li := items[i].lineItem(line.SerialNumber)
		li.Quantity = line.Quantity
		rows[i] = pricedRow{
			LineItem:   li,
			PricedLine: models.PricedLine{UnitPrice: line.UnitPrice, SubTotal: line.SubTotal},
		}
	}
	return rows, l.SumOfSubTotal
}

// derivedRows copies source lines into fresh rows: new ids and serial
// numbers, same line keys, prices kept where the source had them.
func derivedRows(lines []models.Line) ([]pricedRow, decimal.Decimal) {
	inputs := make([]ledger.Input, len(lines))
	for i, l := range lines {
		inputs[i] = ledger.Input{Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	l := ledger.Compute(inputs)
	rows := make([]pricedRow, len(lines))
	for i, line := range l.Lines {
		li := lines[i].LineItem
		li.ID = uuid.Nil
		li.SerialNumber = line.SerialNumber
		if li.LineKey == uuid.Nil {
			li.LineKey = uuid.New()
		}
		rows[i] = pricedRow{
			LineItem:   li,
			PricedLine: models.PricedLine{UnitPrice: line.UnitPrice, SubTotal: line.SubTotal},
		}
	}
	return rows, l.SumOfSubTotal
}

// plainRows numbers request items for documents without prices.
func plainRows(items []itemInput) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i := range items {
		out[i] = items[i].lineItem(i + 1)
	}
	return out
}

func derivedPlainRows(lines []models.Line) []models.LineItem {
	rows, _ := derivedRows(lines)
	out := make([]models.LineItem, len(rows))
	for i, r := range rows {
		out[i] = r.LineItem
	}
	return out
}

// orStored keeps the stored text when the request leaves a field out.
func orStored(sent, stored string) string {
	if strings.TrimSpace(sent) == "" {
		return stored
	}
	return sent
}

func mapRows[R, I any](rows []R, mk func(R) I) []I {
	out := make([]I, len(rows))
	for i, r := range rows {
		out[i] = mk(r)
	}
	return out
}

func packageCount(v any) int {
	n, err := cvt.IntE(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
