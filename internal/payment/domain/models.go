// Package domain contains persistence models for payments.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Payment is an amount applied against one invoice. CustomerID is nil
// when the invoice belongs to a walk-in buyer with no customer record.
type Payment struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	PaymentNo  string        `gorm:"column:payment_no;type:text;not null;uniqueIndex:ux_payments_payment_no" json:"payment_no"`
	SeqNo      int64         `gorm:"column:seq_no;not null;index" json:"-"`
	InvoiceID  snowflake.ID  `gorm:"not null;index" json:"invoice_id"`
	CustomerID *snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	Amount     float64       `gorm:"not null" json:"amount"`
	Mode       string        `gorm:"type:text" json:"mode"`
	Reference  string        `gorm:"type:text" json:"reference"`
	PaidAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"paid_at"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// FormatPaymentNo renders a sequence as the externally visible payment number.
func FormatPaymentNo(seq int64) string {
	return fmt.Sprintf("PAY-%05d", seq)
}
