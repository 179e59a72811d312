package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/fulfillment"
	"p9e.in/procurement/pkg/ledger"
	"p9e.in/procurement/pkg/lifecycle"
	"p9e.in/procurement/pkg/party"
)

type deliveryNoteRequest struct {
	Status          lifecycle.Status `json:"status"`
	PurchaseOrderID *uuid.UUID       `json:"purchaseOrderId"`
	SalesOrderID    *uuid.UUID       `json:"salesOrderId"`
	DeliveryDate    models.JSONTime  `json:"deliveryDate"`
	CarrierName     string           `json:"carrierName"`
	TrackingNumber  string           `json:"trackingNumber"`
	VehicleNumber   string           `json:"vehicleNumber"`
	Notes           string           `json:"notes"`
	Items           []itemInput      `json:"items" validate:"dive"`
}

func orderLines(po *models.PurchaseOrder) []fulfillment.OrderLine {
	out := make([]fulfillment.OrderLine, len(po.Items))
	for i, it := range po.Items {
		out[i] = fulfillment.OrderLine{
			SerialNumber: it.SerialNumber,
			LineKey:      it.LineKey.String(),
			ProductName:  it.ProductName,
			SKU:          it.SKU,
			Quantity:     it.Quantity,
		}
	}
	return out
}

func deliveryLines(items []models.DeliveryNoteItem) []fulfillment.DeliveryLine {
	out := make([]fulfillment.DeliveryLine, len(items))
	for i, it := range items {
		out[i] = fulfillment.DeliveryLine{
			LineKey:           it.LineKey.String(),
			ProductName:       it.ProductName,
			SKU:               it.SKU,
			QuantityDelivered: it.QuantityDelivered,
		}
	}
	return out
}

// priorDeliveries returns every delivered line booked against the purchase
// order by live delivery notes, whatever their status. exclude leaves out
// the note being edited.
func priorDeliveries(tx *gorm.DB, poID, exclude uuid.UUID) ([]fulfillment.DeliveryLine, error) {
	var items []models.DeliveryNoteItem
	q := tx.Joins("JOIN delivery_notes ON delivery_notes.id = delivery_note_items.delivery_note_id AND delivery_notes.deleted_at IS NULL").
		Where("delivery_notes.purchase_order_id = ?", poID)
	if exclude != uuid.Nil {
		q = q.Where("delivery_notes.id <> ?", exclude)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return deliveryLines(items), nil
}

// shipmentLines turns the request into delivery lines tied to purchase
// order lines. Without items the whole remaining balance is shipped.
func shipmentLines(lines []fulfillment.OrderLine, balances []fulfillment.Balance, po *models.PurchaseOrder, items []itemInput) []models.DeliveryNoteItem {
	var out []models.DeliveryNoteItem
	if len(items) == 0 {
		for i, b := range balances {
			if !b.Remaining.IsPositive() {
				continue
			}
			li := po.Items[i].LineItem
			li.ID = uuid.Nil
			li.SerialNumber = len(out) + 1
			out = append(out, models.DeliveryNoteItem{LineItem: li, QuantityDelivered: b.Remaining})
		}
		return out
	}

	for i := range items {
		li := items[i].lineItem(i + 1)
		delivered := ledger.Round(ledger.Coerce(items[i].QuantityDelivered))
		d := fulfillment.DeliveryLine{ProductName: li.ProductName, SKU: li.SKU, QuantityDelivered: delivered}
		if items[i].LineKey != nil {
			d.LineKey = items[i].LineKey.String()
		}
		if j, ok := fulfillment.Match(lines, d); ok {
			// the line carries the ordered quantity and the order's key
			li.LineKey = po.Items[j].LineKey
			li.Quantity = po.Items[j].Quantity
			if li.SKU == "" {
				li.SKU = po.Items[j].SKU
			}
		}
		out = append(out, models.DeliveryNoteItem{LineItem: li, QuantityDelivered: delivered})
	}
	return out
}

// keptLines reuses the stored lines of a note edited without items.
func keptLines(items []models.DeliveryNoteItem) []models.DeliveryNoteItem {
	out := make([]models.DeliveryNoteItem, len(items))
	for i, it := range items {
		it.ID = uuid.Nil
		out[i] = it
	}
	return out
}

func (req *deliveryNoteRequest) apply(c *writeCtx, doc *models.DeliveryNote, editing bool) error {
	poID := doc.PurchaseOrderID
	var po models.PurchaseOrder
	if editing {
		if err := load(c.tx, &po, poID, true); err != nil {
			return err
		}
	} else {
		if req.PurchaseOrderID == nil {
			return apperr.Invalid("purchaseOrderId", "purchaseOrderId is required")
		}
		if err := c.fromSource(&po, *req.PurchaseOrderID, lifecycle.DeliveryNote); err != nil {
			return err
		}
		doc.CopyPartiesFrom(&po.DocumentHeader)
		doc.PurchaseOrderID = po.ID
		poID = po.ID
	}

	if req.SalesOrderID != nil {
		var so models.SalesOrder
		if err := c.tx.First(&so, "id = ?", *req.SalesOrderID).Error; err != nil {
			return apperr.NotFound("sales order not found")
		}
		if so.PurchaseOrderID != poID {
			return apperr.Invalid("salesOrderId", "sales order %s belongs to a different purchase order", so.DisplayID)
		}
		doc.SalesOrderID = &so.ID
	}

	if err := requireDate("deliveryDate", req.DeliveryDate); err != nil {
		return err
	}
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.DeliveryNote, nil, true); err != nil {
		return err
	}

	prior, err := priorDeliveries(c.tx, poID, doc.ID)
	if err != nil {
		return err
	}
	lines := orderLines(&po)
	var items []models.DeliveryNoteItem
	if editing && len(req.Items) == 0 {
		items = keptLines(doc.Items)
	} else {
		items = shipmentLines(lines, fulfillment.Remaining(lines, prior), &po, req.Items)
	}
	if err := requireItems(len(items)); err != nil {
		return err
	}
	if err := fulfillment.Check(lines, prior, deliveryLines(items)); err != nil {
		return err
	}

	doc.DeliveryDate = req.DeliveryDate
	doc.CarrierName = req.CarrierName
	doc.TrackingNumber = req.TrackingNumber
	doc.VehicleNumber = req.VehicleNumber
	doc.Notes = req.Notes
	for i := range items {
		items[i].DeliveryNoteID = doc.ID
	}
	doc.Items = items
	return nil
}

// CreateDeliveryNote books a shipment against a purchase order. Quantities
// may not exceed what is still undelivered.
// POST /api/v1/delivery-notes
func (e *Engine) CreateDeliveryNote(w http.ResponseWriter, r *http.Request) {
	var req deliveryNoteRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.DeliveryNote
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Seller)
}

// UpdateDeliveryNote rewrites a delivery note that is not yet closed.
// PUT /api/v1/delivery-notes/{id}
func (e *Engine) UpdateDeliveryNote(w http.ResponseWriter, r *http.Request) {
	var req deliveryNoteRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.DeliveryNote
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "delivery_note_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Seller)
}

type deliverableResponse struct {
	PurchaseOrderID uuid.UUID             `json:"purchaseOrderId"`
	DisplayID       string                `json:"displayId"`
	Lines           []fulfillment.Balance `json:"lines"`
	TotalRemaining  decimal.Decimal       `json:"totalRemaining"`
	Settled         bool                  `json:"settled"`
}

func deliverable(po *models.PurchaseOrder, prior []fulfillment.DeliveryLine) deliverableResponse {
	balances := fulfillment.Remaining(orderLines(po), prior)
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Remaining)
	}
	return deliverableResponse{
		PurchaseOrderID: po.ID,
		DisplayID:       po.DisplayID,
		Lines:           balances,
		TotalRemaining:  ledger.Round(total),
		Settled:         fulfillment.Settled(balances),
	}
}

// Deliverable reports what is left to deliver on each purchase order line.
// GET /api/v1/purchase-orders/{id}/deliverable
func (e *Engine) Deliverable(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	db := e.conn(r.Context())
	var po models.PurchaseOrder
	if err := load(db, &po, id, false); err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := party.Authorize(po.Parties(), actor, lifecycle.PurchaseOrder); err != nil {
		respondError(w, r, err)
		return
	}
	prior, err := priorDeliveries(db, po.ID, uuid.Nil)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deliverable(&po, prior))
}
