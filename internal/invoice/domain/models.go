// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice payment states.
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "Pending"
	InvoiceStatusPartiallyPaid InvoiceStatus = "Partially Paid"
	InvoiceStatusPaid          InvoiceStatus = "Paid"
)

// Invoice is an issued bill. Customer identity and addresses are
// snapshotted at issuance: later edits to the Customer record never
// change historical invoices. CustomerID is nil for walk-in buyers.
type Invoice struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID      *snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	CustomerName    string        `gorm:"type:text;not null" json:"customer_name"`
	CustomerGSTIN   string        `gorm:"column:customer_gstin;type:text" json:"customer_gstin"`
	CustomerAddress string        `gorm:"type:text" json:"customer_address"`
	BillingAddress  string        `gorm:"type:text" json:"billing_address"`
	Amount          float64       `gorm:"not null" json:"amount"`
	Status          InvoiceStatus `gorm:"type:text;not null;default:'Pending'" json:"status"`
	InvoiceDate     time.Time     `gorm:"not null" json:"invoice_date"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one catalog line on an invoice, carrying the product
// snapshot and the computed tax breakdown. The split is mutually
// exclusive: either CGST+SGST are set, or IGST is.
type InvoiceItem struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID    snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	ProductID    snowflake.ID `gorm:"not null;index" json:"product_id"`
	ProductName  string       `gorm:"type:text;not null" json:"product_name"`
	Quantity     int64        `gorm:"not null" json:"quantity"`
	UnitPrice    float64      `gorm:"not null" json:"unit_price"`
	TaxRate      float64      `gorm:"not null" json:"tax_rate"`
	TaxableValue float64      `gorm:"not null" json:"taxable_value"`
	CGST         float64      `gorm:"column:cgst;not null;default:0" json:"cgst"`
	SGST         float64      `gorm:"column:sgst;not null;default:0" json:"sgst"`
	IGST         float64      `gorm:"column:igst;not null;default:0" json:"igst"`
	Total        float64      `gorm:"not null" json:"total"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
