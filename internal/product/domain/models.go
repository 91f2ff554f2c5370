// Package domain contains persistence models for the product catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Product is a catalog entry. Price and tax rate are snapshotted onto
// invoice lines at invoicing time, so later edits never change history.
type Product struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Price       float64      `gorm:"not null" json:"price"`
	Quantity    int64        `gorm:"not null;default:0" json:"quantity"`
	TaxRate     float64      `gorm:"not null;default:0" json:"tax_rate"`
	Discount    float64      `gorm:"not null;default:0" json:"discount"`
	CategoryID  snowflake.ID `gorm:"not null;index" json:"category_id"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }
