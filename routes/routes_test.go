package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/handlers"
	"p9e.in/procurement/pkg/storage"
)

func TestArchivesAreNotServedPublicly(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewLocalStore(dir)
	key := "archive/INVOICE/11111111-1111-1111-1111-111111111111/20261015T000000-MARINV0001.xlsx"
	require.NoError(t, store.Put(context.Background(), key, "", strings.NewReader("invoice")))

	router := RegisterRoutes(handlers.NewEngine(nil, store))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"directory listing", "/uploads/archive/", http.StatusNotFound},
		{"raw file path", "/uploads/" + key, http.StatusNotFound},
		{"download without token", "/api/v1/invoices/11111111-1111-1111-1111-111111111111/archive/20261015T000000-MARINV0001.xlsx", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), "invoice")
		})
	}
}

func TestHealth(t *testing.T) {
	router := RegisterRoutes(handlers.NewEngine(nil, nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
