// Package seed bootstraps demo data for local environments.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/gstbill/gstbill/internal/category/domain"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
	productdomain "github.com/gstbill/gstbill/internal/product/domain"
	"gorm.io/gorm"
)

// EnsureDemoData seeds a small catalog and one customer when the
// database is empty. Safe to run on every startup.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&categorydomain.Category{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		category := categorydomain.Category{
			ID:          node.Generate(),
			Name:        "General",
			Description: "Default catalog category",
		}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}

		products := []productdomain.Product{
			{
				ID:         node.Generate(),
				Name:       "Copper Wire 1.5mm",
				Price:      450,
				Quantity:   100,
				TaxRate:    18,
				CategoryID: category.ID,
			},
			{
				ID:         node.Generate(),
				Name:       "PVC Conduit 20mm",
				Price:      85,
				Quantity:   500,
				TaxRate:    12,
				CategoryID: category.ID,
			},
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}

		customer := customerdomain.Customer{
			ID:             node.Generate(),
			Name:           "Acme Traders",
			GSTIN:          "29AACCA1234B1Z8",
			Address:        "12 Market Road, Bengaluru",
			BillingAddress: "12 Market Road, Bengaluru",
		}
		return tx.Create(&customer).Error
	})
}
