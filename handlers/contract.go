package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/lifecycle"
)

type contractRequest struct {
	Status        lifecycle.Status `json:"status"`
	QuotationID   *uuid.UUID       `json:"quotationId"`
	RFQID         *uuid.UUID       `json:"rfqId"`
	Buyer         partyInput       `json:"buyer"`
	Title         string           `json:"title" validate:"required"`
	EffectiveDate models.JSONTime  `json:"effectiveDate"`
	EndDate       models.JSONTime  `json:"endDate"`

	ScopeOfWork           string `json:"scopeOfWork"`
	PaymentTerms          string `json:"paymentTerms"`
	DeliveryTerms         string `json:"deliveryTerms"`
	WarrantyTerms         string `json:"warrantyTerms"`
	TerminationClause     string `json:"terminationClause"`
	ConfidentialityClause string `json:"confidentialityClause"`
	DisputeResolution     string `json:"disputeResolution"`
	GoverningLaw          string `json:"governingLaw"`
	AdditionalTerms       string `json:"additionalTerms"`
	Notes                 string `json:"notes"`

	financialInput
	Items []itemInput `json:"items" validate:"dive"`
}

// source derives from the quotation when given, else from the RFQ.
func (req *contractRequest) source(c *writeCtx, doc *models.Contract) (inheritance, bool, error) {
	switch {
	case req.QuotationID != nil:
		var q models.Quotation
		if err := c.fromSource(&q, *req.QuotationID, lifecycle.Contract); err != nil {
			return inheritance{}, false, err
		}
		doc.QuotationID = &q.ID
		doc.RFQID = q.RFQID
		return inherit(&doc.DocumentHeader, &q), true, nil
	case req.RFQID != nil:
		var rfq models.RFQ
		if err := c.fromSource(&rfq, *req.RFQID, lifecycle.Contract); err != nil {
			return inheritance{}, false, err
		}
		doc.RFQID = &rfq.ID
		return inherit(&doc.DocumentHeader, &rfq), true, nil
	}
	return inheritance{}, false, nil
}

func (req *contractRequest) apply(c *writeCtx, doc *models.Contract, editing bool) error {
	var src inheritance
	derived := editing
	if editing {
		src = current(doc, &doc.Financials)
	} else {
		var err error
		if src, derived, err = req.source(c, doc); err != nil {
			return err
		}
	}

	if err := checkContractDates(req.EffectiveDate, req.EndDate); err != nil {
		return err
	}
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.Contract, &req.Buyer, derived); err != nil {
		return err
	}

	rows, sum := src.lines(req.Items)
	if err := requireItems(len(rows)); err != nil {
		return err
	}
	if err := price(&doc.Financials, sum, &req.financialInput, src.financials); err != nil {
		return err
	}

	doc.Title = req.Title
	doc.EffectiveDate = req.EffectiveDate
	doc.EndDate = req.EndDate
	doc.ScopeOfWork = req.ScopeOfWork
	doc.PaymentTerms = req.PaymentTerms
	doc.DeliveryTerms = req.DeliveryTerms
	doc.WarrantyTerms = req.WarrantyTerms
	doc.TerminationClause = req.TerminationClause
	doc.ConfidentialityClause = req.ConfidentialityClause
	doc.DisputeResolution = req.DisputeResolution
	doc.GoverningLaw = req.GoverningLaw
	doc.AdditionalTerms = req.AdditionalTerms
	doc.Notes = req.Notes
	doc.Items = mapRows(rows, func(r pricedRow) models.ContractItem {
		return models.ContractItem{LineItem: r.LineItem, PricedLine: r.PricedLine, ContractID: doc.ID}
	})
	return nil
}

// CreateContract drafts a contract, optionally from a quotation or an RFQ.
// POST /api/v1/contracts
func (e *Engine) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.Contract
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Seller)
}

// UpdateContract rewrites a contract during negotiation.
// PUT /api/v1/contracts/{id}
func (e *Engine) UpdateContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.Contract
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "contract_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Seller)
}
