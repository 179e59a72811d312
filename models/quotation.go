package models

import (
	"github.com/google/uuid"

	"p9e.in/procurement/pkg/lifecycle"
)

// Quotation is a seller's priced answer, usually to an RFQ.
type Quotation struct {
	DocumentHeader
	Financials
	RFQID         *uuid.UUID      `gorm:"column:rfq_id;type:uuid;index" json:"rfqId"`
	QuotationDate JSONTime        `gorm:"not null" json:"quotationDate"`
	ValidUntil    JSONTime        `json:"validUntil"`
	Terms         string          `gorm:"type:text" json:"terms"`
	DecidedAt     JSONTime        `json:"decidedAt"`
	Items         []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Quotation) TableName() string {
	return "quotations"
}

func (Quotation) DocType() lifecycle.DocType {
	return lifecycle.Quotation
}

func (q *Quotation) Lines() []Line {
	out := make([]Line, 0, len(q.Items))
	for _, it := range q.Items {
		out = append(out, Line{LineItem: it.LineItem, Priced: true, UnitPrice: it.UnitPrice, SubTotal: it.SubTotal})
	}
	return out
}

func (q *Quotation) ApplyTransition(in *TransitionInput) error {
	switch in.Action {
	case lifecycle.ActionAccept, lifecycle.ActionReject:
		q.DecidedAt = JSONTime(in.At)
	}
	return nil
}

type QuotationItem struct {
	LineItem
	PricedLine
	QuotationID uuid.UUID `gorm:"type:uuid;index;not null" json:"quotationId"`
}

func (QuotationItem) TableName() string {
	return "quotation_items"
}
