// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/procurement/pkg/lifecycle"
)

// Company is a registered buyer or seller organisation.
type Company struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Type        lifecycle.Side `gorm:"size:10;not null;index" json:"type"`
	ContactName string         `gorm:"size:255" json:"contactName"`
	Email       string         `gorm:"size:255" json:"email"`
	Phone       string         `gorm:"size:32" json:"phone"`
	Address     string         `gorm:"type:text" json:"address"`
	City        string         `gorm:"size:100" json:"city"`
	State       string         `gorm:"size:100" json:"state"`
	Country     string         `gorm:"size:100" json:"country"`
	PostalCode  string         `gorm:"size:20" json:"postalCode"`
	TaxID       string         `gorm:"column:tax_id;size:50" json:"taxId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// Snapshot copies the company's current details for a document.
func (c *Company) Snapshot() PartySnapshot {
	return PartySnapshot{
		CompanyName: c.Name,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		Country:     c.Country,
		PostalCode:  c.PostalCode,
		TaxID:       c.TaxID,
	}
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	Company      *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:15" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = uuid.New()
	return
}
