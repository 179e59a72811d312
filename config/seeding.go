package config

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/lifecycle"
)

type demoAccount struct {
	company  models.Company
	userName string
	email    string
	password string
}

var demoAccounts = []demoAccount{
	{
		company: models.Company{
			Name: "Marine Asia Resources", Type: lifecycle.Buyer,
			ContactName: "Priya Raman", Email: "procurement@marineasia.example", Phone: "+91 22 4000 1000",
			Address: "14 Harbour Road", City: "Mumbai", State: "Maharashtra", Country: "India", PostalCode: "400001",
		},
		userName: "Priya Raman",
		email:    "buyer@marineasia.example",
		password: "buyer123",
	},
	{
		company: models.Company{
			Name: "North Star Steel", Type: lifecycle.Seller,
			ContactName: "Arjun Mehta", Email: "sales@northstar.example", Phone: "+91 80 4100 2000",
			Address: "Plot 7, Peenya Industrial Area", City: "Bengaluru", State: "Karnataka", Country: "India", PostalCode: "560058",
		},
		userName: "Arjun Mehta",
		email:    "seller@northstar.example",
		password: "seller123",
	},
}

// SeedDemo creates one buyer and one seller account. Existing accounts are
// left alone.
func SeedDemo(db *gorm.DB) error {
	for _, acc := range demoAccounts {
		var existing models.User
		err := db.Where("email = ?", acc.email).First(&existing).Error
		if err == nil {
			slog.Info("demo user already exists, skipping", "email", acc.email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			company := acc.company
			if err := tx.Where("LOWER(name) = LOWER(?)", company.Name).FirstOrCreate(&company).Error; err != nil {
				return err
			}
			return tx.Create(&models.User{
				CompanyID:    company.ID,
				Name:         acc.userName,
				Email:        acc.email,
				PasswordHash: string(hash),
				IsActive:     true,
			}).Error
		})
		if err != nil {
			return err
		}
		slog.Info("created demo account", "email", acc.email, "company", acc.company.Name)
	}
	return nil
}
