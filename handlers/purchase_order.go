package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/lifecycle"
)

type purchaseOrderRequest struct {
	Status               lifecycle.Status `json:"status"`
	ContractID           *uuid.UUID       `json:"contractId"`
	QuotationID          *uuid.UUID       `json:"quotationId"`
	Seller               partyInput       `json:"seller"`
	PoIssuedDate         models.JSONTime  `json:"poIssuedDate"`
	ExpectedDeliveryDate models.JSONTime  `json:"expectedDeliveryDate"`
	DeliveryAddress      *models.Address  `json:"deliveryAddress"`
	PaymentTerms         string           `json:"paymentTerms"`
	Notes                string           `json:"notes"`
	financialInput
	Items []itemInput `json:"items" validate:"dive"`
}

func (req *purchaseOrderRequest) source(c *writeCtx, doc *models.PurchaseOrder) (inheritance, bool, error) {
	switch {
	case req.ContractID != nil:
		var ct models.Contract
		if err := c.fromSource(&ct, *req.ContractID, lifecycle.PurchaseOrder); err != nil {
			return inheritance{}, false, err
		}
		doc.ContractID = &ct.ID
		doc.QuotationID = ct.QuotationID
		if doc.PaymentTerms == "" {
			doc.PaymentTerms = ct.PaymentTerms
		}
		return inherit(&doc.DocumentHeader, &ct), true, nil
	case req.QuotationID != nil:
		var q models.Quotation
		if err := c.fromSource(&q, *req.QuotationID, lifecycle.PurchaseOrder); err != nil {
			return inheritance{}, false, err
		}
		doc.QuotationID = &q.ID
		if doc.PaymentTerms == "" {
			doc.PaymentTerms = q.Terms
		}
		return inherit(&doc.DocumentHeader, &q), true, nil
	}
	return inheritance{}, false, nil
}

// addressFromSnapshot builds a delivery address from the buyer snapshot.
func addressFromSnapshot(s models.PartySnapshot) models.Address {
	return models.Address{
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Line1:       s.Address,
		City:        s.City,
		State:       s.State,
		Country:     s.Country,
		PostalCode:  s.PostalCode,
	}
}

func (req *purchaseOrderRequest) apply(c *writeCtx, doc *models.PurchaseOrder, editing bool) error {
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

	if err := checkPurchaseOrderDates(req.PoIssuedDate, req.ExpectedDeliveryDate); err != nil {
		return err
	}
	if err := c.fillParties(&doc.DocumentHeader, lifecycle.PurchaseOrder, &req.Seller, derived); err != nil {
		return err
	}

	rows, sum := src.lines(req.Items)
	if err := requireItems(len(rows)); err != nil {
		return err
	}
	if err := price(&doc.Financials, sum, &req.financialInput, src.financials); err != nil {
		return err
	}

	addr := addressFromSnapshot(doc.Buyer)
	if req.DeliveryAddress != nil {
		addr = *req.DeliveryAddress
	}
	doc.DeliveryAddress = datatypes.NewJSONType(addr)
	doc.PaymentTerms = orStored(req.PaymentTerms, doc.PaymentTerms)
	doc.PoIssuedDate = req.PoIssuedDate
	doc.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	doc.Notes = req.Notes
	doc.Items = mapRows(rows, func(r pricedRow) models.PurchaseOrderItem {
		return models.PurchaseOrderItem{LineItem: r.LineItem, PricedLine: r.PricedLine, PurchaseOrderID: doc.ID}
	})
	return nil
}

// CreatePurchaseOrder issues a purchase order, from a contract or a
// quotation when one is referenced.
// POST /api/v1/purchase-orders
func (e *Engine) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.PurchaseOrder
	if err := e.create(r, &doc, req.Status, func(c *writeCtx) error {
		return req.apply(c, &doc, false)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusCreated, &doc, lifecycle.Buyer)
}

// UpdatePurchaseOrder rewrites a purchase order before the seller decides.
// PUT /api/v1/purchase-orders/{id}
func (e *Engine) UpdatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	var doc models.PurchaseOrder
	err := e.update(r, &doc,
		func(c *writeCtx) error { return req.apply(c, &doc, true) },
		func(tx *gorm.DB) error { return replaceItems(tx, "purchase_order_id", doc.ID, doc.Items) },
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDocument(w, r, http.StatusOK, &doc, lifecycle.Buyer)
}
