package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"p9e.in/procurement/pkg/ledger"
	"p9e.in/procurement/pkg/lifecycle"
)

// PackingList describes how a shipment was packed.
type PackingList struct {
	DocumentHeader
	PurchaseOrderID  uuid.UUID         `gorm:"type:uuid;index;not null" json:"purchaseOrderId"`
	DeliveryNoteID   *uuid.UUID        `gorm:"type:uuid;index" json:"deliveryNoteId"`
	SalesOrderID     *uuid.UUID        `gorm:"type:uuid;index" json:"salesOrderId"`
	PackingDate      JSONTime          `gorm:"not null" json:"packingDate"`
	ShippingMarks    pq.StringArray    `gorm:"type:text[]" json:"shippingMarks"`
	WeightUnit       string            `gorm:"size:10;default:'kg'" json:"weightUnit"`
	TotalGrossWeight decimal.Decimal   `gorm:"type:numeric(18,2);not null;default:0" json:"totalGrossWeight"`
	TotalNetWeight   decimal.Decimal   `gorm:"type:numeric(18,2);not null;default:0" json:"totalNetWeight"`
	TotalPackages    int               `gorm:"not null;default:0" json:"totalPackages"`
	BuyerRemarks     string            `gorm:"type:text" json:"buyerRemarks"`
	AcknowledgedAt   JSONTime          `json:"acknowledgedAt"`
	Items            []PackingListItem `gorm:"foreignKey:PackingListID;constraint:OnDelete:CASCADE" json:"items"`
}

func (PackingList) TableName() string {
	return "packing_lists"
}

func (PackingList) DocType() lifecycle.DocType {
	return lifecycle.PackingList
}

func (p *PackingList) Lines() []Line {
	out := make([]Line, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, Line{LineItem: it.LineItem})
	}
	return out
}

// RecomputeTotals sums weights and package counts from the items.
func (p *PackingList) RecomputeTotals() {
	gross, net := decimal.Zero, decimal.Zero
	packages := 0
	for _, it := range p.Items {
		gross = gross.Add(it.GrossWeight)
		net = net.Add(it.NetWeight)
		packages += it.PackageCount
	}
	p.TotalGrossWeight = ledger.Round(gross)
	p.TotalNetWeight = ledger.Round(net)
	p.TotalPackages = packages
}

func (p *PackingList) ApplyTransition(in *TransitionInput) error {
	switch in.Action {
	case lifecycle.ActionAcknowledge:
		p.AcknowledgedAt = JSONTime(in.At)
		if in.Comment != "" {
			p.BuyerRemarks = in.Comment
		}
	case lifecycle.ActionReject:
		p.BuyerRemarks = in.Comment
	}
	return nil
}

type PackingListItem struct {
	LineItem
	GrossWeight   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"grossWeight"`
	NetWeight     decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"netWeight"`
	PackageCount  int             `gorm:"not null;default:0" json:"packageCount"`
	PackageType   string          `gorm:"size:50" json:"packageType"`
	PackingListID uuid.UUID       `gorm:"type:uuid;index;not null" json:"packingListId"`
}

func (PackingListItem) TableName() string {
	return "packing_list_items"
}
