package models

import (
	"github.com/google/uuid"

	"p9e.in/procurement/pkg/lifecycle"
)

// RFQ is a buyer's request for quotation.
type RFQ struct {
	DocumentHeader
	DateIssued       JSONTime  `gorm:"not null" json:"dateIssued"`
	DueDate          JSONTime  `gorm:"not null" json:"dueDate"`
	ProjectName      string    `gorm:"size:255" json:"projectName"`
	ProjectCode      string    `gorm:"size:64" json:"projectCode"`
	DeliveryLocation string    `gorm:"size:255" json:"deliveryLocation"`
	Remarks          string    `gorm:"type:text" json:"remarks"`
	Items            []RFQItem `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE" json:"items"`
}

func (RFQ) TableName() string {
	return "rfqs"
}

func (RFQ) DocType() lifecycle.DocType {
	return lifecycle.RFQ
}

func (r *RFQ) Lines() []Line {
	out := make([]Line, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, Line{LineItem: it.LineItem})
	}
	return out
}

type RFQItem struct {
	LineItem
	RFQID uuid.UUID `gorm:"column:rfq_id;type:uuid;index;not null" json:"rfqId"`
}

func (RFQItem) TableName() string {
	return "rfq_items"
}
