// handlers/auth.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"p9e.in/procurement/config"
	"p9e.in/procurement/middleware"
	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/lifecycle"
)

type companyPayload struct {
	Name        string         `json:"name" validate:"required"`
	Type        lifecycle.Side `json:"type" validate:"required,oneof=BUYER SELLER"`
	ContactName string         `json:"contactName"`
	Email       string         `json:"email" validate:"omitempty,email"`
	Phone       string         `json:"phone"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	State       string         `json:"state"`
	Country     string         `json:"country"`
	PostalCode  string         `json:"postalCode"`
	TaxID       string         `json:"taxId"`
}

type userPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerReq struct {
	Company companyPayload `json:"company"`
	User    userPayload    `json:"user"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
	Company *models.Company `json:"company"`
	// documents linked to the new company by name
	Reconciled int64 `json:"reconciled,omitempty"`
}

// reconcileSQL links documents that named the company before it had an
// account. Only the foreign key is set; the snapshots stay as written.
func reconcileSQL(table string, side lifecycle.Side) string {
	col := strings.ToLower(string(side))
	return "UPDATE " + table + " SET " + col + "_company_id = ? WHERE " + col + "_company_id IS NULL" +
		" AND LOWER(" + col + "_company_name) = LOWER(?) AND deleted_at IS NULL"
}

func reconcile(tx *gorm.DB, c *models.Company) (int64, error) {
	var total int64
	for _, table := range config.DocumentTables() {
		res := tx.Exec(reconcileSQL(table, c.Type), c.ID, c.Name)
		if res.Error != nil {
			return 0, res.Error
		}
		total += res.RowsAffected
	}
	return total, nil
}

func issueToken(u *models.User, c *models.Company) (string, error) {
	return middleware.GenerateToken(middleware.TokenSubject{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		CompanyID:   c.ID,
		CompanyName: c.Name,
		CompanyType: c.Type,
	})
}

// Register creates a company with its first user and links documents that
// already name the company.
// POST /api/v1/auth/register
func (e *Engine) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.User.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, r, apperr.Internal(err, "error hashing password"))
		return
	}

	p := req.Company
	company := models.Company{
		Name:        strings.TrimSpace(p.Name),
		Type:        p.Type,
		ContactName: p.ContactName,
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		Country:     p.Country,
		PostalCode:  p.PostalCode,
		TaxID:       p.TaxID,
	}
	user := models.User{
		Name:         req.User.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.User.Email)),
		Phone:        req.User.Phone,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	var linked int64
	err = e.withTx(r.Context(), func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		user.CompanyID = company.ID
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		linked, err = reconcile(tx, &company)
		return err
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := issueToken(&user, &company)
	if err != nil {
		respondError(w, r, apperr.Internal(err, "couldn't create token"))
		return
	}
	slog.Info("company registered", "company", company.ID, "type", company.Type, "reconciled", linked)
	writeJSON(w, http.StatusCreated, authResp{Token: token, User: &user, Company: &company, Reconciled: linked})
}

// Login exchanges email and password for a token.
// POST /api/v1/auth/login
func (e *Engine) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var u models.User
	err := e.conn(r.Context()).Preload("Company").
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, r, apperr.Unauthorized("invalid credentials"))
			return
		}
		respondError(w, r, err)
		return
	}
	if !u.IsActive {
		respondError(w, r, apperr.Unauthorized("account is disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, r, apperr.Unauthorized("invalid credentials"))
		return
	}

	if u.Company == nil {
		respondError(w, r, apperr.Unauthorized("account has no company"))
		return
	}

	token, err := issueToken(&u, u.Company)
	if err != nil {
		respondError(w, r, apperr.Internal(err, "couldn't create token"))
		return
	}
	writeJSON(w, http.StatusOK, authResp{Token: token, User: &u, Company: u.Company})
}

// Me returns the calling user and company.
// GET /api/v1/me
func (e *Engine) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		respondError(w, r, apperr.Unauthorized("unauthorized"))
		return
	}
	var u models.User
	if err := e.conn(r.Context()).Preload("Company").First(&u, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, r, apperr.NotFound("user not found"))
			return
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &u)
}
