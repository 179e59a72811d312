package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/lifecycle"
)

type salesOrderRequest struct {
	Status          lifecycle.Status `json:"status"`
	PurchaseOrderID *uuid.UUID       `json:"purchaseOrderId"`
	SoCreatedDate   models.JSONTime  `json:"soCreatedDate"`
	PlannedShipDate models.JSONTime  `json:"plannedShipDate"`
	Notes           string           `json:"notes"`
	financialInput
	Items []itemInput `json:"items" validate:"dive"`
}

func (req *salesOrderRequest) apply(c *writeCtx, doc *models.SalesOrder, editing bool) error {
	var src inheritance
	if editing {
		src = current(doc, &doc.Financials)
	} else {
		if req.PurchaseOrderID == nil {
			return apperr.Invalid("purchaseOrderId", "purchaseOrderId is required")
		}
		var po models.PurchaseOrder
		if err := c.fromSource(&po, *req.PurchaseOrderID, lifecycle.SalesOrder); err != nil {
			return err
		}
		src = inherit(&doc.DocumentHeader, &po)
		doc.PurchaseOrderID = po.ID
	}

	if req.SoCreatedDate.IsZero() {
		req.SoCreatedDate = models.NewJSONTime(c.now)
	}
	if err := checkSalesOrderDates(req.SoCreatedDate, req.PlannedShipDate); err != nil {
		return err
	}
	// parties always come from the purchase order
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.SalesOrder, nil, true); err != nil {
		return err
	}

	rows, sum := src.lines(req.Items)
	if err := requireItems(len(rows)); err != nil {
		return err
	}
	if err := price(&doc.Financials, sum, &req.financialInput, src.financials); err != nil {
		return err
	}

	doc.SoCreatedDate = req.SoCreatedDate
	doc.PlannedShipDate = req.PlannedShipDate
	doc.Notes = req.Notes
	doc.Items = mapRows(rows, func(r pricedRow) models.SalesOrderItem {
		return models.SalesOrderItem{LineItem: r.LineItem, PricedLine: r.PricedLine, SalesOrderID: doc.ID}
	})
	return nil
}

// CreateSalesOrder mirrors an approved purchase order on the seller side.
// POST /api/v1/sales-orders
func (e *Engine) CreateSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req salesOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.SalesOrder
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Seller)
}

// UpdateSalesOrder rewrites a sales order before it ships.
// PUT /api/v1/sales-orders/{id}
func (e *Engine) UpdateSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req salesOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.SalesOrder
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "sales_order_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Seller)
}
