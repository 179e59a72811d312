package models

import (
	"github.com/google/uuid"

	"p9e.in/procurement/pkg/lifecycle"
)

// SalesOrder is the seller's mirror of an approved purchase order.
type SalesOrder struct {
	DocumentHeader
	Financials
	PurchaseOrderID uuid.UUID        `gorm:"type:uuid;index;not null" json:"purchaseOrderId"`
	SoCreatedDate   JSONTime         `gorm:"not null" json:"soCreatedDate"`
	PlannedShipDate JSONTime         `gorm:"not null" json:"plannedShipDate"`
	ShippedAt       JSONTime         `json:"shippedAt"`
	Items           []SalesOrderItem `gorm:"foreignKey:SalesOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (SalesOrder) TableName() string {
	return "sales_orders"
}

func (SalesOrder) DocType() lifecycle.DocType {
	return lifecycle.SalesOrder
}

func (s *SalesOrder) Lines() []Line {
	out := make([]Line, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, Line{LineItem: it.LineItem, Priced: true, UnitPrice: it.UnitPrice, SubTotal: it.SubTotal})
	}
	return out
}

func (s *SalesOrder) ApplyTransition(in *TransitionInput) error {
	if in.Action == lifecycle.ActionShip {
		s.ShippedAt = JSONTime(in.At)
	}
	return nil
}

type SalesOrderItem struct {
	LineItem
	PricedLine
	SalesOrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"salesOrderId"`
}

func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}
