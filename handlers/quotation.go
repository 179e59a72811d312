package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/lifecycle"
)

type quotationRequest struct {
	Status        lifecycle.Status `json:"status"`
	RFQID         *uuid.UUID       `json:"rfqId"`
	Buyer         partyInput       `json:"buyer"`
	QuotationDate models.JSONTime  `json:"quotationDate"`
	ValidUntil    models.JSONTime  `json:"validUntil"`
	Terms         string           `json:"terms"`
	Notes         string           `json:"notes"`
	financialInput
	Items []itemInput `json:"items" validate:"dive"`
}

func (req *quotationRequest) apply(c *writeCtx, doc *models.Quotation, editing bool) error {
	var src inheritance
	derived := editing
	if editing {
		src = current(doc, &doc.Financials)
	} else if req.RFQID != nil {
		var rfq models.RFQ
		if err := c.fromSource(&rfq, *req.RFQID, lifecycle.Quotation); err != nil {
			return err
		}
		src = inherit(&doc.DocumentHeader, &rfq)
		doc.RFQID = &rfq.ID
		derived = true
	}

	if err := requireDate("quotationDate", req.QuotationDate); err != nil {
		return err
	}
	if !req.ValidUntil.IsZero() {
		if err := checkNotBefore("quotationDate", req.QuotationDate, "validUntil", req.ValidUntil); err != nil {
			return err
		}
	}
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.Quotation, &req.Buyer, derived); err != nil {
		return err
	}

	rows, sum := src.lines(req.Items)
	if err := requireItems(len(rows)); err != nil {
		return err
	}
	if err := price(&doc.Financials, sum, &req.financialInput, src.financials); err != nil {
		return err
	}

	doc.QuotationDate = req.QuotationDate
	doc.ValidUntil = req.ValidUntil
	doc.Terms = req.Terms
	doc.Notes = req.Notes
	doc.Items = mapRows(rows, func(r pricedRow) models.QuotationItem {
		return models.QuotationItem{LineItem: r.LineItem, PricedLine: r.PricedLine, QuotationID: doc.ID}
	})
	return nil
}

// CreateQuotation creates a quotation, from an RFQ when rfqId is given.
// POST /api/v1/quotations
func (e *Engine) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	var req quotationRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.Quotation
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Seller)
}

// UpdateQuotation rewrites a quotation.
// PUT /api/v1/quotations/{id}
func (e *Engine) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	var req quotationRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.Quotation
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "quotation_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Seller)
}
