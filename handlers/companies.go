package handlers

import (
	"net/http"
	"strings"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/lifecycle"
)

const companyLookupLimit = 50

// ListCompanies is the counterpart picker: registered companies filtered
// by type and a name fragment.
// GET /api/v1/companies?type=SELLER&q=acme
func (e *Engine) ListCompanies(w http.ResponseWriter, r *http.Request) {
	q := e.conn(r.Context()).Model(&models.Company{})

	if t := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type"))); t != "" {
		side := lifecycle.Side(t)
		if !side.Valid() {
			respondError(w, r, apperr.Invalid("type", "type must be BUYER or SELLER"))
			return
		}
		q = q.Where("type = ?", side)
	}
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	var companies []models.Company
	if err := q.Order("name").Limit(companyLookupLimit).Find(&companies).Error; err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}
