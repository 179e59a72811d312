package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/lifecycle"
	"p9e.in/procurement/pkg/party"
)

// docPtr is a pointer to one of the document models.
type docPtr[T any] interface {
	*T
	models.Document
}

// visibleTo keeps rows where the actor is the party of record on its own
// side, by company id or, while unresolved, by snapshot name.
func visibleTo(db *gorm.DB, a party.Actor) *gorm.DB {
	col := strings.ToLower(string(a.Side))
	return db.Where(
		"("+col+"_company_id = ? OR ("+col+"_company_id IS NULL AND LOWER("+col+"_company_name) = LOWER(?)))",
		a.CompanyID, strings.TrimSpace(a.CompanyName),
	)
}

// List returns the documents of type T the caller is a party to.
// Optional filters: status, q (display id or counterpart name).
func List[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorOf(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		q := visibleTo(e.conn(r.Context()).Preload("Items", byItemOrder), actor)
		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			q = q.Where("status = ?", strings.ToUpper(status))
		}
		if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
			other := strings.ToLower(string(actor.Side.Opposite()))
			like := "%" + strings.ToLower(term) + "%"
			q = q.Where("(LOWER(display_id) LIKE ? OR LOWER("+other+"_company_name) LIKE ?)", like, like)
		}

		var docs []T
		if err := q.Order("created_at DESC").Find(&docs).Error; err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

// documentView is a document plus what the caller can do with it.
func documentView(doc models.Document, side lifecycle.Side) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	view := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, err
	}

	actions := lifecycle.MustFor(doc.DocType()).Available(doc.Header().Status, side)
	if actions == nil {
		actions = []lifecycle.Action{}
	}
	a, _ := json.Marshal(actions)
	s, _ := json.Marshal(side)
	t, _ := json.Marshal(doc.DocType())
	view["availableActions"] = a
	view["viewerSide"] = s
	view["documentType"] = t
	return view, nil
}

func writeDocument(w http.ResponseWriter, r *http.Request, status int, doc models.Document, side lifecycle.Side) {
	view, err := documentView(doc, side)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

// Get returns one document to either of its parties.
func Get[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorOf(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		id, err := pathID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		doc := P(new(T))
		if err := load(e.conn(r.Context()), doc, id, false); err != nil {
			respondError(w, r, err)
			return
		}
		side, err := party.Authorize(doc.Header().Parties(), actor, doc.DocType())
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeDocument(w, r, http.StatusOK, doc, side)
	}
}

// Delete soft-deletes a document. Only the issuer can, and only while the
// document is still editable.
func Delete[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorOf(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		id, err := pathID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		doc := P(new(T))
		t := doc.DocType()
		err = e.withTx(r.Context(), func(tx *gorm.DB) error {
			if err := load(tx, doc, id, true); err != nil {
				return err
			}
			h := doc.Header()
			side, err := party.Authorize(h.Parties(), actor, t)
			if err != nil {
				return err
			}
			if h.IssuerCompanyID != actor.CompanyID {
				return apperr.Forbidden("only the issuer can delete this %s", t.Label())
			}
			if !lifecycle.MustFor(t).CanEdit(h.Status) {
				return apperr.BadRequest("cannot delete %s in status %s", t.Article(), h.Status)
			}
			if err := tx.Omit(clause.Associations).Delete(doc).Error; err != nil {
				return err
			}
			return recordTransition(tx, doc, actor, side, e.now(), auditEntry{action: actionDelete, from: h.Status, to: h.Status})
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		slog.Info("document deleted", "type", t, "id", id, "company", actor.CompanyID)
		w.WriteHeader(http.StatusNoContent)
	}
}

type transitionRequest struct {
	Action      lifecycle.Action    `json:"action" validate:"required"`
	Suggestions string              `json:"suggestions"`
	Response    string              `json:"response"`
	Comment     string              `json:"comment"`
	Amount      decimal.NullDecimal `json:"amount"`
}

// text returns the free text the transition asks for.
func (req *transitionRequest) text(field string) string {
	switch field {
	case "suggestions":
		return req.Suggestions
	case "response":
		return req.Response
	}
	return req.Comment
}

// applyTransition moves doc by req on behalf of side. doc is changed in
// memory only; the caller persists it.
func applyTransition(doc models.Document, req *transitionRequest, side lifecycle.Side, in *models.TransitionInput) error {
	h := doc.Header()
	m := lifecycle.MustFor(doc.DocType())
	action := lifecycle.Action(strings.ToLower(strings.TrimSpace(string(req.Action))))

	tr, err := m.Next(h.Status, action, side)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(req.text(tr.TextField))
	if err := tr.CheckInput(text, req.Amount.Valid); err != nil {
		return err
	}

	in.Action = action
	in.From = h.Status
	in.To = tr.Target(h.Status)
	switch tr.TextField {
	case "suggestions":
		in.Suggestions = text
	case "response":
		in.Response = text
	default:
		in.Comment = strings.TrimSpace(req.Comment)
	}
	if tr.NeedsAmount {
		in.Amount = req.Amount
	}

	if hook, ok := doc.(models.TransitionHook); ok {
		if err := hook.ApplyTransition(in); err != nil {
			return err
		}
	}
	h.Status = in.To
	return nil
}

// Transition applies a status action: PATCH {action, suggestions?,
// response?, comment?, amount?}.
func Transition[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorOf(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		id, err := pathID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		var req transitionRequest
		if err := decode(r, &req); err != nil {
			respondError(w, r, err)
			return
		}

		doc := P(new(T))
		t := doc.DocType()
		var side lifecycle.Side
		in := models.TransitionInput{At: e.now()}
		err = e.withTx(r.Context(), func(tx *gorm.DB) error {
			if err := load(tx, doc, id, true); err != nil {
				return err
			}
			if side, err = party.Authorize(doc.Header().Parties(), actor, t); err != nil {
				return err
			}
			if err := applyTransition(doc, &req, side, &in); err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Save(doc).Error; err != nil {
				return err
			}

			entry := auditEntry{action: in.Action, from: in.From, to: in.To, comment: in.Suggestions + in.Response + in.Comment}
			if in.Amount.Valid {
				entry.meta = map[string]any{"amount": in.Amount.Decimal.StringFixed(2)}
			}
			return recordTransition(tx, doc, actor, side, in.At, entry)
		})
		if err != nil {
			respondError(w, r, err)
			return
		}

		documentTransitions.WithLabelValues(string(t), string(in.Action), string(in.To)).Inc()
		slog.Info("document transitioned", "type", t, "id", id, "action", in.Action,
			"from", in.From, "to", in.To, "company", actor.CompanyID)
		writeDocument(w, r, http.StatusOK, doc, side)
	}
}

// History lists the audit trail of a document, oldest first.
func History[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorOf(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		id, err := pathID(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		db := e.conn(r.Context())
		doc := P(new(T))
		if err := load(db, doc, id, false); err != nil {
			respondError(w, r, err)
			return
		}
		if _, err := party.Authorize(doc.Header().Parties(), actor, doc.DocType()); err != nil {
			respondError(w, r, err)
			return
		}

		var rows []models.DocumentTransition
		if err := db.Where("document_type = ? AND document_id = ?", doc.DocType(), id).
			Order("transitioned_at ASC").Find(&rows).Error; err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
