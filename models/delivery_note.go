package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"p9e.in/procurement/pkg/lifecycle"
)

// DeliveryNote records one shipment against a purchase order.
type DeliveryNote struct {
	DocumentHeader
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;index;not null" json:"purchaseOrderId"`
	SalesOrderID    *uuid.UUID         `gorm:"type:uuid;index" json:"salesOrderId"`
	DeliveryDate    JSONTime           `gorm:"not null" json:"deliveryDate"`
	CarrierName     string             `gorm:"size:255" json:"carrierName"`
	TrackingNumber  string             `gorm:"size:100" json:"trackingNumber"`
	VehicleNumber   string             `gorm:"size:50" json:"vehicleNumber"`
	BuyerRemarks    string             `gorm:"type:text" json:"buyerRemarks"`
	DispatchedAt    JSONTime           `json:"dispatchedAt"`
	AcknowledgedAt  JSONTime           `json:"acknowledgedAt"`
	Items           []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID;constraint:OnDelete:CASCADE" json:"items"`
}

func (DeliveryNote) TableName() string {
	return "delivery_notes"
}

func (DeliveryNote) DocType() lifecycle.DocType {
	return lifecycle.DeliveryNote
}

func (d *DeliveryNote) Lines() []Line {
	out := make([]Line, 0, len(d.Items))
	for _, it := range d.Items {
		out = append(out, Line{LineItem: it.LineItem, QuantityDelivered: it.QuantityDelivered})
	}
	return out
}

func (d *DeliveryNote) ApplyTransition(in *TransitionInput) error {
	switch in.Action {
	case lifecycle.ActionDispatch:
		d.DispatchedAt = JSONTime(in.At)
	case lifecycle.ActionAcknowledge:
		d.AcknowledgedAt = JSONTime(in.At)
		if in.Comment != "" {
			d.BuyerRemarks = in.Comment
		}
	case lifecycle.ActionDispute:
		d.BuyerRemarks = in.Comment
	}
	return nil
}

// DeliveryNoteItem carries the ordered quantity of the purchase order line
// next to what this shipment delivers.
type DeliveryNoteItem struct {
	LineItem
	QuantityDelivered decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"quantityDelivered"`
	DeliveryNoteID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"deliveryNoteId"`
}

func (DeliveryNoteItem) TableName() string {
	return "delivery_note_items"
}
