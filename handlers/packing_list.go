package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/ledger"
	"p9e.in/procurement/pkg/lifecycle"
)

type packingListRequest struct {
	Status          lifecycle.Status `json:"status"`
	PurchaseOrderID *uuid.UUID       `json:"purchaseOrderId"`
	DeliveryNoteID  *uuid.UUID       `json:"deliveryNoteId"`
	SalesOrderID    *uuid.UUID       `json:"salesOrderId"`
	PackingDate     models.JSONTime  `json:"packingDate"`
	ShippingMarks   []string         `json:"shippingMarks"`
	WeightUnit      string           `json:"weightUnit" validate:"omitempty,oneof=kg lb g t"`
	Notes           string           `json:"notes"`
	Items           []itemInput      `json:"items" validate:"dive"`
}

func packingItems(items []itemInput) []models.PackingListItem {
	rows := plainRows(items)
	out := make([]models.PackingListItem, len(rows))
	for i, li := range rows {
		out[i] = models.PackingListItem{
			LineItem:     li,
			GrossWeight:  ledger.Round(ledger.Coerce(items[i].GrossWeight)),
			NetWeight:    ledger.Round(ledger.Coerce(items[i].NetWeight)),
			PackageCount: packageCount(items[i].PackageCount),
			PackageType:  items[i].PackageType,
		}
	}
	return out
}

func cleanMarks(marks []string) pq.StringArray {
	out := pq.StringArray{}
	for _, m := range marks {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// linked checks an optional reference belongs to the same purchase order.
func linked[T any, P docPtr[T]](tx *gorm.DB, id *uuid.UUID, poID uuid.UUID, poOf func(P) uuid.UUID, field string) (*uuid.UUID, P, error) {
	var none P
	if id == nil {
		return nil, none, nil
	}
	doc := P(new(T))
	if err := load(tx, doc, *id, false); err != nil {
		return nil, none, err
	}
	if poOf(doc) != poID {
		return nil, none, apperr.Invalid(field, "%s %s belongs to a different purchase order", doc.DocType().Label(), doc.Header().DisplayID)
	}
	out := doc.Header().ID
	return &out, doc, nil
}

// packedLines copies the lines of the packing source. A delivery note
// contributes what it shipped, not what was ordered.
func packedLines(src models.Document) []models.LineItem {
	lines := src.Lines()
	if _, ok := src.(*models.DeliveryNote); ok {
		shipped := lines[:0]
		for _, l := range lines {
			if !l.QuantityDelivered.IsPositive() {
				continue
			}
			l.Quantity = l.QuantityDelivered
			shipped = append(shipped, l)
		}
		lines = shipped
	}
	return derivedPlainRows(lines)
}

func (req *packingListRequest) apply(c *writeCtx, doc *models.PackingList, editing bool) error {
	var source models.Document
	poID := doc.PurchaseOrderID
	if !editing {
		if req.PurchaseOrderID == nil {
			return apperr.Invalid("purchaseOrderId", "purchaseOrderId is required")
		}
		var po models.PurchaseOrder
		if err := c.fromSource(&po, *req.PurchaseOrderID, lifecycle.PackingList); err != nil {
			return err
		}
		doc.CopyPartiesFrom(&po.DocumentHeader)
		doc.PurchaseOrderID = po.ID
		poID = po.ID
		source = &po
	}

	dnID, dn, err := linked(c.tx, req.DeliveryNoteID, poID,
		func(d *models.DeliveryNote) uuid.UUID { return d.PurchaseOrderID }, "deliveryNoteId")
	if err != nil {
		return err
	}
	soID, _, err := linked(c.tx, req.SalesOrderID, poID,
		func(s *models.SalesOrder) uuid.UUID { return s.PurchaseOrderID }, "salesOrderId")
	if err != nil {
		return err
	}
	doc.DeliveryNoteID = dnID
	doc.SalesOrderID = soID
	if dn != nil {
		// packing follows the shipment when one is named
		source = dn
	}

	if err := requireDate("packingDate", req.PackingDate); err != nil {
		return err
	}
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.PackingList, nil, true); err != nil {
		return err
	}

	switch {
	case len(req.Items) > 0:
		doc.Items = packingItems(req.Items)
	case editing:
		for i := range doc.Items {
			doc.Items[i].ID = uuid.Nil
		}
	case source != nil:
		doc.Items = mapRows(packedLines(source), func(li models.LineItem) models.PackingListItem {
			return models.PackingListItem{LineItem: li}
		})
	}
	if err := requireItems(len(doc.Items)); err != nil {
		return err
	}
	for i := range doc.Items {
		doc.Items[i].PackingListID = doc.ID
	}
	doc.RecomputeTotals()

	doc.PackingDate = req.PackingDate
	doc.ShippingMarks = cleanMarks(req.ShippingMarks)
	doc.WeightUnit = "kg"
	if req.WeightUnit != "" {
		doc.WeightUnit = req.WeightUnit
	}
	doc.Notes = req.Notes
	return nil
}

// CreatePackingList records how a purchase order shipment was packed.
// POST /api/v1/packing-lists
func (e *Engine) CreatePackingList(w http.ResponseWriter, r *http.Request) {
	var req packingListRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.PackingList
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Seller)
}

// UpdatePackingList rewrites a packing list before the buyer signs off.
// PUT /api/v1/packing-lists/{id}
func (e *Engine) UpdatePackingList(w http.ResponseWriter, r *http.Request) {
	var req packingListRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.PackingList
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "packing_list_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Seller)
}
