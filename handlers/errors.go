package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"p9e.in/procurement/config"
	"p9e.in/procurement/pkg/apperr"
)

const pgUniqueViolation = "23505"

// classify turns storage errors into application errors and leaves
// everything else alone.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Wrap(apperr.KindConflict, err, "a record with the same %s already exists", uniqueSubject(pgErr))
	}
	return err
}

func uniqueSubject(pgErr *pgconn.PgError) string {
	switch pgErr.ConstraintName {
	case "idx_users_email":
		return "email"
	case "idx_companies_lower_name":
		return "company name"
	}
	return "key"
}

// respondError writes err as plain text with the status of its kind.
// Internal causes are logged and hidden unless DEBUG_ERRORS is on.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	err = classify(err)
	kind := apperr.KindOf(err)
	msg := apperr.PublicMessage(err)

	if kind == apperr.KindInternal {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if config.App.DebugErrors {
			msg = msg + ": " + err.Error()
		}
	}
	http.Error(w, msg, kind.HTTPStatus())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
