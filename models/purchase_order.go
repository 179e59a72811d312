package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"p9e.in/procurement/pkg/lifecycle"
)

// Address is a delivery address copied onto an order.
type Address struct {
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PostalCode  string `json:"postalCode"`
}

// PurchaseOrder is issued by the buyer, typically from a contract or a
// quotation.
type PurchaseOrder struct {
	DocumentHeader
	Financials
	ContractID           *uuid.UUID                 `gorm:"type:uuid;index" json:"contractId"`
	QuotationID          *uuid.UUID                 `gorm:"type:uuid;index" json:"quotationId"`
	PoIssuedDate         JSONTime                   `gorm:"not null" json:"poIssuedDate"`
	ExpectedDeliveryDate JSONTime                   `gorm:"not null" json:"expectedDeliveryDate"`
	DeliveryAddress      datatypes.JSONType[Address] `gorm:"type:jsonb" json:"deliveryAddress"`
	PaymentTerms         string                     `gorm:"type:text" json:"paymentTerms"`
	DecidedAt            JSONTime                   `json:"decidedAt"`
	Items                []PurchaseOrderItem        `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

func (PurchaseOrder) DocType() lifecycle.DocType {
	return lifecycle.PurchaseOrder
}

func (p *PurchaseOrder) Lines() []Line {
	out := make([]Line, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, Line{LineItem: it.LineItem, Priced: true, UnitPrice: it.UnitPrice, SubTotal: it.SubTotal})
	}
	return out
}

func (p *PurchaseOrder) ApplyTransition(in *TransitionInput) error {
	switch in.Action {
	case lifecycle.ActionAccept, lifecycle.ActionReject:
		p.DecidedAt = JSONTime(in.At)
	}
	return nil
}

type PurchaseOrderItem struct {
	LineItem
	PricedLine
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"purchaseOrderId"`
}

func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}
