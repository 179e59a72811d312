package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/procurement/middleware"
	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/docid"
	"p9e.in/procurement/pkg/lifecycle"
	"p9e.in/procurement/pkg/party"
	"p9e.in/procurement/pkg/storage"
)

// Engine runs document writes. Every create, update and transition is a
// single transaction.
type Engine struct {
	db    *gorm.DB
	store storage.BlobStore
	now   func() time.Time
}

// NewEngine creates an engine over db. store may be nil when archiving is
// not configured.
func NewEngine(db *gorm.DB, store storage.BlobStore) *Engine {
	return &Engine{db: db, store: store, now: time.Now}
}

func (e *Engine) conn(ctx context.Context) *gorm.DB {
	return e.db.WithContext(ctx)
}

// withTx runs fn inside a transaction and rolls back on error or panic.
func (e *Engine) withTx(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := e.conn(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", r)
		}
	}()

	if err = fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err = tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func actorOf(r *http.Request) (party.Actor, error) {
	a, ok := middleware.GetActor(r)
	if !ok {
		return party.Actor{}, apperr.Unauthorized("unauthorized")
	}
	return a, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid id")
	}
	return id, nil
}

// byItemOrder preloads items in serial order.
func byItemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("serial_number")
}

// load fetches a document with its items. lock takes a row lock for the
// rest of the transaction.
func load(tx *gorm.DB, doc models.Document, id uuid.UUID, lock bool) error {
	q := tx.Preload("Items", byItemOrder)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("%s not found", doc.DocType().Label())
		}
		return err
	}
	return nil
}

// loadCompany fetches the acting company inside tx.
func loadCompany(tx *gorm.DB, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	if err := tx.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("company not found")
		}
		return nil, err
	}
	return &c, nil
}

// resolveCounterpart links a named counterpart to a registered company of
// the given side when one exists. The request's contact details win over
// the registered ones.
func resolveCounterpart(tx *gorm.DB, side lifecycle.Side, in *partyInput) (*uuid.UUID, models.PartySnapshot, error) {
	snap := in.snapshot()
	var c models.Company
	q := tx.Where("type = ?", side)
	switch {
	case in.CompanyID != nil && *in.CompanyID != uuid.Nil:
		q = q.Where("id = ?", *in.CompanyID)
	case snap.CompanyName != "":
		q = q.Where("LOWER(name) = LOWER(?)", snap.CompanyName)
	default:
		return nil, snap, apperr.Invalid(string(side), "%s company name is required", side.Label())
	}

	err := q.First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if in.CompanyID != nil && *in.CompanyID != uuid.Nil {
			return nil, snap, apperr.NotFound("%s company not found", side.Label())
		}
		return nil, snap, nil
	}
	if err != nil {
		return nil, snap, err
	}
	return &c.ID, mergeSnapshot(c.Snapshot(), snap), nil
}

// mergeSnapshot fills the blanks of override from base.
func mergeSnapshot(base, override models.PartySnapshot) models.PartySnapshot {
	pick := func(a, b string) string {
		if strings.TrimSpace(b) != "" {
			return b
		}
		return a
	}
	return models.PartySnapshot{
		CompanyName: base.CompanyName,
		ContactName: pick(base.ContactName, override.ContactName),
		Email:       pick(base.Email, override.Email),
		Phone:       pick(base.Phone, override.Phone),
		Address:     pick(base.Address, override.Address),
		City:        pick(base.City, override.City),
		State:       pick(base.State, override.State),
		Country:     pick(base.Country, override.Country),
		PostalCode:  pick(base.PostalCode, override.PostalCode),
		TaxID:       pick(base.TaxID, override.TaxID),
	}
}

// nextDisplayID counts every document of the type the issuer ever created,
// deleted ones included. Two concurrent creates can read the same count.
func nextDisplayID(tx *gorm.DB, doc models.Document, issuer *models.Company) (string, error) {
	var n int64
	if err := tx.Unscoped().Model(doc).Where("issuer_company_id = ?", issuer.ID).Count(&n).Error; err != nil {
		return "", err
	}
	return docid.Generate(doc.DocType(), issuer.Name, n)
}

// writeCtx is what a type-specific builder sees while a document is
// written.
type writeCtx struct {
	tx     *gorm.DB
	actor  party.Actor
	issuer *models.Company
	now    time.Time
}

// fillParties sets the issuer's own side from its company record and the
// other side from the request. A derived document keeps the parties it
// inherited unless the request names a counterpart.
func (c *writeCtx) fillParties(h *models.DocumentHeader, t lifecycle.DocType, counterpart *partyInput, derived bool) error {
	issuerSide := lifecycle.IssuerSide(t)
	other := issuerSide.Opposite()

	id := c.issuer.ID
	switch {
	case !derived:
		h.SetParty(issuerSide, &id, c.issuer.Snapshot())
	case !h.Parties().Ref(issuerSide).IsResolved():
		// matched by name on the source; link it now, snapshot unchanged
		h.SetParty(issuerSide, &id, *h.Snapshot(issuerSide))
	}

	if counterpart != nil && (counterpart.CompanyID != nil || strings.TrimSpace(counterpart.CompanyName) != "") {
		id, snap, err := resolveCounterpart(c.tx, other, counterpart)
		if err != nil {
			return err
		}
		h.SetParty(other, id, snap)
	}
	if strings.TrimSpace(h.Snapshot(other).CompanyName) == "" {
		return apperr.Invalid(string(other), "%s company name is required", other.Label())
	}
	return nil
}

// lockSource reports whether deriving child holds the source row until
// commit. Delivery notes are checked against the other notes of the same
// purchase order, so concurrent ones must queue on that order.
func lockSource(child lifecycle.DocType) bool {
	return child == lifecycle.DeliveryNote
}

// fromSource loads a source document, checks the actor may derive from it
// and that its status allows a child of type child.
func (c *writeCtx) fromSource(src models.Document, id uuid.UUID, child lifecycle.DocType) error {
	if err := load(c.tx, src, id, lockSource(child)); err != nil {
		return err
	}
	h := src.Header()
	if err := party.Require(h.Parties(), c.actor, lifecycle.IssuerSide(child), src.DocType()); err != nil {
		return err
	}
	return lifecycle.CanDerive(src.DocType(), h.Status, child)
}

const (
	actionCreate lifecycle.Action = "create"
	actionDelete lifecycle.Action = "delete"
)

type auditEntry struct {
	action  lifecycle.Action
	from    lifecycle.Status
	to      lifecycle.Status
	comment string
	meta    map[string]any
}

func recordTransition(tx *gorm.DB, doc models.Document, actor party.Actor, side lifecycle.Side, at time.Time, a auditEntry) error {
	meta := datatypes.JSON([]byte("{}"))
	if len(a.meta) > 0 {
		b, err := json.Marshal(a.meta)
		if err != nil {
			return err
		}
		meta = b
	}
	row := models.DocumentTransition{
		DocumentType:   doc.DocType(),
		DocumentID:     doc.Header().ID,
		FromStatus:     a.from,
		ToStatus:       a.to,
		Action:         a.action,
		ActorCompanyID: actor.CompanyID,
		ActorUserID:    actor.UserID,
		ActorSide:      side,
		Comment:        a.comment,
		Metadata:       meta,
		TransitionedAt: at,
	}
	return tx.Create(&row).Error
}

// create runs build and persists the document with its items.
func (e *Engine) create(r *http.Request, doc models.Document, requested lifecycle.Status, build func(c *writeCtx) error) error {
	actor, err := actorOf(r)
	if err != nil {
		return err
	}
	t := doc.DocType()
	if actor.Side != lifecycle.IssuerSide(t) {
		return apperr.Forbidden("only %s companies can create %s", lifecycle.IssuerSide(t).Label(), t.Article())
	}
	m := lifecycle.MustFor(t)
	status, err := m.InitialStatus(requested)
	if err != nil {
		return err
	}

	err = e.withTx(r.Context(), func(tx *gorm.DB) error {
		issuer, err := loadCompany(tx, actor.CompanyID)
		if err != nil {
			return err
		}
		c := &writeCtx{tx: tx, actor: actor, issuer: issuer, now: e.now()}
		if err := build(c); err != nil {
			return err
		}

		h := doc.Header()
		h.Status = status
		h.IssuerCompanyID = issuer.ID
		h.CreatedByUserID = actor.UserID
		if h.DisplayID, err = nextDisplayID(tx, doc, issuer); err != nil {
			return err
		}
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return recordTransition(tx, doc, actor, actor.Side, c.now, auditEntry{action: actionCreate, to: status})
	})
	if err != nil {
		return err
	}

	documentsCreated.WithLabelValues(string(t)).Inc()
	slog.Info("document created", "type", t, "id", doc.Header().ID, "displayId", doc.Header().DisplayID, "company", actor.CompanyID)
	return nil
}

// update locks the document, checks the actor may edit it and hands it to
// build. Items are replaced by whatever build leaves on the document.
func (e *Engine) update(r *http.Request, doc models.Document, build func(c *writeCtx) error, writeItems func(tx *gorm.DB) error) error {
	actor, err := actorOf(r)
	if err != nil {
		return err
	}
	id, err := pathID(r)
	if err != nil {
		return err
	}
	t := doc.DocType()

	err = e.withTx(r.Context(), func(tx *gorm.DB) error {
		if err := load(tx, doc, id, true); err != nil {
			return err
		}
		h := doc.Header()
		if _, err := party.Authorize(h.Parties(), actor, t); err != nil {
			return err
		}
		if h.IssuerCompanyID != actor.CompanyID {
			return apperr.Forbidden("only the issuer can edit this %s", t.Label())
		}
		if !lifecycle.MustFor(t).CanEdit(h.Status) {
			return apperr.BadRequest("cannot edit %s in status %s", t.Article(), h.Status)
		}

		issuer, err := loadCompany(tx, actor.CompanyID)
		if err != nil {
			return err
		}
		c := &writeCtx{tx: tx, actor: actor, issuer: issuer, now: e.now()}
		if err := build(c); err != nil {
			return err
		}
		if err := writeItems(tx); err != nil {
			return err
		}
		// full rewrite of the header row
		return tx.Omit(clause.Associations).Save(doc).Error
	})
	if err != nil {
		return err
	}
	slog.Info("document updated", "type", t, "id", id, "company", actor.CompanyID)
	return nil
}

// replaceItems deletes the stored items of a document and inserts items.
func replaceItems[I any](tx *gorm.DB, fk string, docID uuid.UUID, items []I) error {
	var zero I
	if err := tx.Where(fk+" = ?", docID).Delete(&zero).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}
