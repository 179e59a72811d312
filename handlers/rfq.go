package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/lifecycle"
)

type rfqRequest struct {
	Status           lifecycle.Status `json:"status"`
	Seller           partyInput       `json:"seller"`
	DateIssued       models.JSONTime  `json:"dateIssued"`
	DueDate          models.JSONTime  `json:"dueDate"`
	ProjectName      string           `json:"projectName"`
	ProjectCode      string           `json:"projectCode"`
	DeliveryLocation string           `json:"deliveryLocation"`
	Remarks          string           `json:"remarks"`
	Notes            string           `json:"notes"`
	Items            []itemInput      `json:"items" validate:"dive"`
}

// apply writes the request onto doc. An RFQ may have no items yet.
func (req *rfqRequest) apply(c *writeCtx, doc *models.RFQ, editing bool) error {
	if err := checkRFQDates(req.DateIssued, req.DueDate, c.now); err != nil {
		return err
	}
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.RFQ, &req.Seller, editing); err != nil {
		return err
	}

	doc.DateIssued = req.DateIssued
	doc.DueDate = req.DueDate
	doc.ProjectName = req.ProjectName
	doc.ProjectCode = req.ProjectCode
	doc.DeliveryLocation = req.DeliveryLocation
	doc.Remarks = req.Remarks
	doc.Notes = req.Notes
	doc.Items = mapRows(plainRows(req.Items), func(li models.LineItem) models.RFQItem {
		return models.RFQItem{LineItem: li, RFQID: doc.ID}
	})
	return nil
}

// CreateRFQ creates an RFQ issued by the calling buyer.
// POST /api/v1/rfqs
func (e *Engine) CreateRFQ(w http.ResponseWriter, r *http.Request) {
	var req rfqRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.RFQ
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Buyer)
}

// UpdateRFQ rewrites an RFQ while it is still open.
// PUT /api/v1/rfqs/{id}
func (e *Engine) UpdateRFQ(w http.ResponseWriter, r *http.Request) {
	var req rfqRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.RFQ
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "rfq_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Buyer)
}
