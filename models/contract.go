package models

import (
	"github.com/google/uuid"

	"p9e.in/procurement/pkg/lifecycle"
)

// Contract fixes the legal terms between a buyer and a seller. TotalAmount
// is the agreed contract value.
type Contract struct {
	DocumentHeader
	Financials
	QuotationID   *uuid.UUID `gorm:"type:uuid;index" json:"quotationId"`
	RFQID         *uuid.UUID `gorm:"column:rfq_id;type:uuid;index" json:"rfqId"`
	Title         string     `gorm:"size:255" json:"title"`
	EffectiveDate JSONTime   `gorm:"not null" json:"effectiveDate"`
	EndDate       JSONTime   `gorm:"not null" json:"endDate"`

	ScopeOfWork           string `gorm:"type:text" json:"scopeOfWork"`
	PaymentTerms          string `gorm:"type:text" json:"paymentTerms"`
	DeliveryTerms         string `gorm:"type:text" json:"deliveryTerms"`
	WarrantyTerms         string `gorm:"type:text" json:"warrantyTerms"`
	TerminationClause     string `gorm:"type:text" json:"terminationClause"`
	ConfidentialityClause string `gorm:"type:text" json:"confidentialityClause"`
	DisputeResolution     string `gorm:"type:text" json:"disputeResolution"`
	GoverningLaw          string `gorm:"size:255" json:"governingLaw"`
	AdditionalTerms       string `gorm:"type:text" json:"additionalTerms"`

	// one suggestion and one response at a time; newer text replaces older
	BuyerSuggestions   string   `gorm:"type:text" json:"buyerSuggestions"`
	BuyerSuggestionsAt JSONTime `json:"buyerSuggestionsAt"`
	SellerResponse     string   `gorm:"type:text" json:"sellerResponse"`
	SellerResponseAt   JSONTime `json:"sellerResponseAt"`
	DecidedAt          JSONTime `json:"decidedAt"`
	SignedAt           JSONTime `json:"signedAt"`

	Items []ContractItem `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Contract) TableName() string {
	return "contracts"
}

func (Contract) DocType() lifecycle.DocType {
	return lifecycle.Contract
}

func (c *Contract) Lines() []Line {
	out := make([]Line, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, Line{LineItem: it.LineItem, Priced: true, UnitPrice: it.UnitPrice, SubTotal: it.SubTotal})
	}
	return out
}

func (c *Contract) ApplyTransition(in *TransitionInput) error {
	switch in.Action {
	case lifecycle.ActionSuggestChanges:
		c.BuyerSuggestions = in.Suggestions
		c.BuyerSuggestionsAt = JSONTime(in.At)
	case lifecycle.ActionRespond:
		c.SellerResponse = in.Response
		c.SellerResponseAt = JSONTime(in.At)
	case lifecycle.ActionAccept, lifecycle.ActionReject:
		c.DecidedAt = JSONTime(in.At)
	case lifecycle.ActionSign:
		c.SignedAt = JSONTime(in.At)
	}
	return nil
}

type ContractItem struct {
	LineItem
	PricedLine
	ContractID uuid.UUID `gorm:"type:uuid;index;not null" json:"contractId"`
}

func (ContractItem) TableName() string {
	return "contract_items"
}
