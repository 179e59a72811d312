package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"p9e.in/procurement/pkg/lifecycle"
)

func TestReconcileSQL(t *testing.T) {
	assert.Equal(t,
		"UPDATE rfqs SET seller_company_id = ? WHERE seller_company_id IS NULL AND LOWER(seller_company_name) = LOWER(?) AND deleted_at IS NULL",
		reconcileSQL("rfqs", lifecycle.Seller))
	assert.Contains(t, reconcileSQL("invoices", lifecycle.Buyer), "SET buyer_company_id = ?")
}

func TestSummarize(t *testing.T) {
	s := summarize(lifecycle.Invoice, []statusCount{{Status: lifecycle.Draft, Count: 2}, {Status: lifecycle.Paid, Count: 3}})
	assert.Equal(t, int64(5), s.Total)
	assert.Len(t, s.ByStatus, 2)

	empty := summarize(lifecycle.RFQ, nil)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.ByStatus)
}
