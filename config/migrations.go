package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"p9e.in/procurement/models"
)

// documentTables are the header tables that carry buyer_/seller_ party
// columns.
var documentTables = []string{
	"rfqs", "quotations", "contracts", "purchase_orders",
	"sales_orders", "delivery_notes", "packing_lists", "invoices",
}

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "01032024_create_identity_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Company{}, &models.User{})
			},
		},
		{
			ID: "01032024_create_document_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.RFQ{}, &models.RFQItem{},
					&models.Quotation{}, &models.QuotationItem{},
					&models.Contract{}, &models.ContractItem{},
					&models.PurchaseOrder{}, &models.PurchaseOrderItem{},
					&models.SalesOrder{}, &models.SalesOrderItem{},
					&models.DeliveryNote{}, &models.DeliveryNoteItem{},
					&models.PackingList{}, &models.PackingListItem{},
					&models.Invoice{}, &models.InvoiceItem{},
				)
			},
		},
		{
			ID: "01032024_create_document_transitions",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.DocumentTransition{})
			},
		},
		{
			ID: "15032024_company_name_lookup_indexes",
			Migrate: func(tx *gorm.DB) error {
				// one live company per name, compared case-insensitively
				if err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_lower_name
					ON companies (LOWER(name)) WHERE deleted_at IS NULL`).Error; err != nil {
					return err
				}
				// unresolved counterparts are looked up by snapshot name
				for _, table := range documentTables {
					for _, side := range []string{"buyer", "seller"} {
						sql := "CREATE INDEX IF NOT EXISTS idx_" + table + "_" + side + "_lower_name ON " + table +
							" (LOWER(" + side + "_company_name)) WHERE " + side + "_company_id IS NULL"
						if err := tx.Exec(sql).Error; err != nil {
							return err
						}
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				for _, table := range documentTables {
					for _, side := range []string{"buyer", "seller"} {
						if err := tx.Exec("DROP INDEX IF EXISTS idx_" + table + "_" + side + "_lower_name").Error; err != nil {
							return err
						}
					}
				}
				return tx.Exec("DROP INDEX IF EXISTS idx_companies_lower_name").Error
			},
		},
	})
	return m.Migrate()
}

// DocumentTables lists the header tables in chain order.
func DocumentTables() []string {
	return append([]string(nil), documentTables...)
}
