// Package domain contains persistence models for customers.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is a registered buyer. Receivables is a denormalized running
// balance: it must always equal the sum of balances of the customer's
// unpaid invoices. Every mutation path adjusts it by an exact delta
// inside the same transaction as the invoice or payment write.
type Customer struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"type:text;not null;index" json:"name"`
	GSTIN          string       `gorm:"column:gstin;type:text;not null" json:"gstin"`
	Address        string       `gorm:"type:text;not null" json:"address"`
	BillingAddress string       `gorm:"type:text;not null" json:"billing_address"`
	Receivables    float64      `gorm:"not null;default:0" json:"receivables"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
