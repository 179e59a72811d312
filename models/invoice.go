package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/ledger"
	"p9e.in/procurement/pkg/lifecycle"
)

var ErrOverpayment = errors.New("payment exceeds remaining amount")

// Invoice bills the buyer for a purchase order.
type Invoice struct {
	DocumentHeader
	Financials
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;index;not null" json:"purchaseOrderId"`
	InvoiceDate     JSONTime        `gorm:"not null" json:"invoiceDate"`
	DueDate         JSONTime        `gorm:"not null" json:"dueDate"`
	PaymentTerms    string          `gorm:"type:text" json:"paymentTerms"`
	PaidAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"paidAmount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"remainingAmount"`
	PaidAt          JSONTime        `json:"paidAt"`
	Items           []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (Invoice) DocType() lifecycle.DocType {
	return lifecycle.Invoice
}

func (inv *Invoice) Lines() []Line {
	out := make([]Line, 0, len(inv.Items))
	for _, it := range inv.Items {
		out = append(out, Line{LineItem: it.LineItem, Priced: true, UnitPrice: it.UnitPrice, SubTotal: it.SubTotal})
	}
	return out
}

// Rebalance recomputes what is still owed after the total changed.
func (inv *Invoice) Rebalance() {
	rem := ledger.Round(inv.TotalAmount.Sub(inv.PaidAmount))
	if rem.IsNegative() {
		rem = decimal.Zero
	}
	inv.RemainingAmount = rem
}

// RecordPayment books a partial or full payment and reports whether the
// invoice is now settled.
func (inv *Invoice) RecordPayment(amount decimal.Decimal) (bool, error) {
	amount = ledger.Round(amount)
	if !amount.IsPositive() {
		return false, apperr.Invalid("amount", "amount must be greater than 0")
	}
	if amount.GreaterThan(inv.RemainingAmount) {
		return false, apperr.Wrap(apperr.KindBadRequest, ErrOverpayment,
			"payment of %s exceeds the remaining %s", amount.String(), inv.RemainingAmount.String())
	}
	inv.PaidAmount = ledger.Round(inv.PaidAmount.Add(amount))
	inv.Rebalance()
	return inv.RemainingAmount.IsZero(), nil
}

func (inv *Invoice) ApplyTransition(in *TransitionInput) error {
	switch in.Action {
	case lifecycle.ActionRecordPayment:
		settled, err := inv.RecordPayment(in.Amount.Decimal)
		if err != nil {
			return err
		}
		if settled {
			in.To = lifecycle.Paid
			inv.PaidAt = JSONTime(in.At)
		}
	case lifecycle.ActionMarkPaid:
		inv.PaidAmount = inv.TotalAmount
		inv.RemainingAmount = decimal.Zero
		inv.PaidAt = JSONTime(in.At)
	}
	return nil
}

type InvoiceItem struct {
	LineItem
	PricedLine
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
