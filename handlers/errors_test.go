package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"p9e.in/procurement/pkg/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperr.Kind
		msg  string
	}{
		{"app error kept", apperr.Forbidden("nope"), apperr.KindForbidden, "nope"},
		{"record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), apperr.KindNotFound, "not found"},
		{"duplicate email", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, apperr.KindConflict, "a record with the same email already exists"},
		{"duplicate company", &pgconn.PgError{Code: "23505", ConstraintName: "idx_companies_lower_name"}, apperr.KindConflict, "a record with the same company name already exists"},
		{"other pg error", &pgconn.PgError{Code: "23503"}, apperr.KindInternal, ""},
		{"plain error", errors.New("boom"), apperr.KindInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			if tt.msg != "" {
				assert.Equal(t, tt.msg, apperr.PublicMessage(err))
			}
		})
	}
}

func TestRespondErrorWritesPlainText(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/rfqs/x", nil)
	respondError(w, r, apperr.NotFound("RFQ not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RFQ not found\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
