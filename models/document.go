package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"p9e.in/procurement/pkg/ledger"
	"p9e.in/procurement/pkg/lifecycle"
	"p9e.in/procurement/pkg/party"
)

func init() {
	// money and quantities go out as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// PartySnapshot is a copy of a company's details taken when a document is
// written. Later edits to the company do not touch it.
type PartySnapshot struct {
	CompanyName string `gorm:"size:255" json:"companyName"`
	ContactName string `gorm:"size:255" json:"contactName"`
	Email       string `gorm:"size:255" json:"email"`
	Phone       string `gorm:"size:32" json:"phone"`
	Address     string `gorm:"type:text" json:"address"`
	City        string `gorm:"size:100" json:"city"`
	State       string `gorm:"size:100" json:"state"`
	Country     string `gorm:"size:100" json:"country"`
	PostalCode  string `gorm:"size:20" json:"postalCode"`
	TaxID       string `gorm:"column:tax_id;size:50" json:"taxId"`
}

// DocumentHeader is shared by every document in the chain.
type DocumentHeader struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayID       string           `gorm:"size:32;index" json:"displayId"`
	Status          lifecycle.Status `gorm:"size:32;index;not null" json:"status"`
	IssuerCompanyID uuid.UUID        `gorm:"type:uuid;index;not null" json:"issuerCompanyId"`
	CreatedByUserID uuid.UUID        `gorm:"type:uuid" json:"createdByUserId"`

	// nil until the counterpart has an account; the snapshot name is the hint
	BuyerCompanyID  *uuid.UUID    `gorm:"type:uuid;index" json:"buyerCompanyId"`
	SellerCompanyID *uuid.UUID    `gorm:"type:uuid;index" json:"sellerCompanyId"`
	Buyer           PartySnapshot `gorm:"embedded;embeddedPrefix:buyer_" json:"buyer"`
	Seller          PartySnapshot `gorm:"embedded;embeddedPrefix:seller_" json:"seller"`

	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (h *DocumentHeader) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}

func (h *DocumentHeader) Header() *DocumentHeader {
	return h
}

// Parties returns the buyer and seller of record.
func (h *DocumentHeader) Parties() party.Parties {
	return party.Parties{
		Buyer:  party.Ref{CompanyID: h.BuyerCompanyID, Name: h.Buyer.CompanyName},
		Seller: party.Ref{CompanyID: h.SellerCompanyID, Name: h.Seller.CompanyName},
	}
}

// Snapshot returns the party snapshot of side.
func (h *DocumentHeader) Snapshot(side lifecycle.Side) *PartySnapshot {
	if side == lifecycle.Buyer {
		return &h.Buyer
	}
	return &h.Seller
}

// SetParty records side's company link and snapshot.
func (h *DocumentHeader) SetParty(side lifecycle.Side, companyID *uuid.UUID, snap PartySnapshot) {
	if side == lifecycle.Buyer {
		h.BuyerCompanyID = cloneID(companyID)
		h.Buyer = snap
		return
	}
	h.SellerCompanyID = cloneID(companyID)
	h.Seller = snap
}

// CopyPartiesFrom takes over both parties of src verbatim.
func (h *DocumentHeader) CopyPartiesFrom(src *DocumentHeader) {
	h.Buyer = src.Buyer
	h.Seller = src.Seller
	h.BuyerCompanyID = cloneID(src.BuyerCompanyID)
	h.SellerCompanyID = cloneID(src.SellerCompanyID)
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

// LineItem is the part of an item row shared by all document types.
type LineItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SerialNumber  int             `gorm:"not null" json:"serialNumber"`
	LineKey       uuid.UUID       `gorm:"type:uuid;index" json:"lineKey"`
	ProductName   string          `gorm:"size:255;not null" json:"productName"`
	Description   string          `gorm:"type:text" json:"description"`
	SKU           string          `gorm:"column:sku;size:100" json:"sku"`
	HSNCode       string          `gorm:"column:hsn_code;size:32" json:"hsnCode"`
	UnitOfMeasure string          `gorm:"size:32" json:"unitOfMeasure"`
	Quantity      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"quantity"`
}

func (li *LineItem) BeforeCreate(tx *gorm.DB) (err error) {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	if li.LineKey == uuid.Nil {
		li.LineKey = uuid.New()
	}
	return
}

// PricedLine adds price columns to an item row.
type PricedLine struct {
	UnitPrice decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"unitPrice"`
	SubTotal  decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subTotal"`
}

// Line is a flattened view of any item row.
type Line struct {
	LineItem
	Priced            bool
	UnitPrice         decimal.Decimal
	SubTotal          decimal.Decimal
	QuantityDelivered decimal.Decimal
}

// Financials is the stored rollup of a priced document.
type Financials struct {
	Currency            string              `gorm:"size:3;default:'INR'" json:"currency"`
	SumOfSubTotal       decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0" json:"sumOfSubTotal"`
	DiscountPercentage  decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"discountPercentage"`
	DiscountAmount      decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0" json:"discountAmount"`
	AmountAfterDiscount decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0" json:"amountAfterDiscount"`
	AdditionalCharges   decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0" json:"additionalCharges"`
	TaxPercentage       decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"taxPercentage"`
	TaxAmount           decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0" json:"taxAmount"`
	TotalAmount         decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0" json:"totalAmount"`
}

func (f *Financials) Money() *Financials {
	return f
}

// Adjustments returns the rollup inputs stored on the document.
func (f *Financials) Adjustments() ledger.Adjustments {
	adj := ledger.Adjustments{
		DiscountPercentage: f.DiscountPercentage,
		TaxPercentage:      f.TaxPercentage,
	}
	if !f.AdditionalCharges.IsZero() {
		adj.AdditionalCharges = decimal.NewNullDecimal(f.AdditionalCharges)
	}
	return adj
}

// Apply stores a rollup result.
func (f *Financials) Apply(adj ledger.Adjustments, t ledger.Totals) {
	f.DiscountPercentage = adj.DiscountPercentage
	f.TaxPercentage = adj.TaxPercentage
	f.SumOfSubTotal = t.SumOfSubTotal
	f.DiscountAmount = t.DiscountAmount
	f.AmountAfterDiscount = t.AmountAfterDiscount
	f.AdditionalCharges = t.AdditionalCharges
	f.TaxAmount = t.TaxAmount
	f.TotalAmount = t.TotalAmount
	f.Currency = strings.ToUpper(strings.TrimSpace(f.Currency))
}

// Document is implemented by every document type in the chain.
type Document interface {
	Header() *DocumentHeader
	DocType() lifecycle.DocType
	Lines() []Line
}

// Priced documents carry a financial rollup.
type Priced interface {
	Document
	Money() *Financials
}

// TransitionInput is what a status action carries once validated. A hook
// may change To.
type TransitionInput struct {
	Action      lifecycle.Action
	From        lifecycle.Status
	To          lifecycle.Status
	Suggestions string
	Response    string
	Comment     string
	Amount      decimal.NullDecimal
	At          time.Time
}

// TransitionHook records the side fields of an action on the document.
type TransitionHook interface {
	ApplyTransition(in *TransitionInput) error
}
