package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/lifecycle"
)

type invoiceRequest struct {
	Status          lifecycle.Status `json:"status"`
	PurchaseOrderID *uuid.UUID       `json:"purchaseOrderId"`
	InvoiceDate     models.JSONTime  `json:"invoiceDate"`
	DueDate         models.JSONTime  `json:"dueDate"`
	PaymentTerms    string           `json:"paymentTerms"`
	Notes           string           `json:"notes"`
	financialInput
	Items []itemInput `json:"items" validate:"dive"`
}

func (req *invoiceRequest) apply(c *writeCtx, doc *models.Invoice, editing bool) error {
	var src inheritance
	paymentTerms := orStored(req.PaymentTerms, doc.PaymentTerms)
	if editing {
		src = current(doc, &doc.Financials)
	} else {
		if req.PurchaseOrderID == nil {
			return apperr.Invalid("purchaseOrderId", "purchaseOrderId is required")
		}
		var po models.PurchaseOrder
		if err := c.fromSource(&po, *req.PurchaseOrderID, lifecycle.Invoice); err != nil {
			return err
		}
		src = inherit(&doc.DocumentHeader, &po)
		doc.PurchaseOrderID = po.ID
		paymentTerms = orStored(paymentTerms, po.PaymentTerms)
	}

	if err := checkInvoiceDates(req.InvoiceDate, req.DueDate); err != nil {
		return err
	}
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.Invoice, nil, true); err != nil {
		return err
	}

	rows, sum := src.lines(req.Items)
	if err := requireItems(len(rows)); err != nil {
		return err
	}
	if err := price(&doc.Financials, sum, &req.financialInput, src.financials); err != nil {
		return err
	}
	if doc.TotalAmount.LessThan(doc.PaidAmount) {
		return apperr.Invalid("items", "total %s is below the %s already paid", doc.TotalAmount.StringFixed(2), doc.PaidAmount.StringFixed(2))
	}
	doc.Rebalance()

	doc.InvoiceDate = req.InvoiceDate
	doc.DueDate = req.DueDate
	doc.PaymentTerms = paymentTerms
	doc.Notes = req.Notes
	doc.Items = mapRows(rows, func(r pricedRow) models.InvoiceItem {
		return models.InvoiceItem{LineItem: r.LineItem, PricedLine: r.PricedLine, InvoiceID: doc.ID}
	})
	return nil
}

// CreateInvoice bills the buyer for a purchase order.
// POST /api/v1/invoices
func (e *Engine) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.Invoice
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Seller)
}

// UpdateInvoice rewrites a draft invoice.
// PUT /api/v1/invoices/{id}
func (e *Engine) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.Invoice
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "invoice_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Seller)
}
