// Package domain contains persistence models for sales orders.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrderStatus represents sales-order fulfillment states.
type OrderStatus string

const (
	OrderStatusOpen              OrderStatus = "Open"
	OrderStatusPartiallyInvoiced OrderStatus = "Partially Invoiced"
	OrderStatusCompleted         OrderStatus = "Completed"
)

// SalesOrder is a customer purchase commitment invoiced against over time.
type SalesOrder struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	SONumber         string       `gorm:"column:so_number;type:text;not null;uniqueIndex:ux_sales_orders_so_number" json:"so_number"`
	SeqNo            int64        `gorm:"column:seq_no;not null;index" json:"-"`
	CustomerPONumber string       `gorm:"column:customer_po_number;type:text;not null" json:"customer_po_number"`
	CustomerID       snowflake.ID `gorm:"not null;index" json:"customer_id"`
	TotalValue       float64      `gorm:"not null;default:0" json:"total_value"`
	Status           OrderStatus  `gorm:"type:text;not null;default:'Open'" json:"status"`
	OrderDate        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"order_date"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Items []SalesOrderItem `gorm:"foreignKey:SalesOrderID" json:"items,omitempty"`
}

// TableName sets the database table name.
func (SalesOrder) TableName() string { return "sales_orders" }

// SalesOrderItem is one ordered product line. InvoicedQty is monotonically
// non-decreasing and never exceeds OrderedQty.
type SalesOrderItem struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	SalesOrderID snowflake.ID `gorm:"not null;index" json:"sales_order_id"`
	ProductID    snowflake.ID `gorm:"not null;index" json:"product_id"`
	ProductName  string       `gorm:"type:text;not null" json:"product_name"`
	OrderedQty   int64        `gorm:"not null" json:"ordered_qty"`
	InvoicedQty  int64        `gorm:"not null;default:0" json:"invoiced_qty"`
	UnitPrice    float64      `gorm:"not null" json:"unit_price"`
}

// TableName sets the database table name.
func (SalesOrderItem) TableName() string { return "sales_order_items" }

// FormatSONumber renders a sequence as the externally visible order number.
func FormatSONumber(seq int64) string {
	return fmt.Sprintf("SO-%05d", seq)
}

// DeriveStatus computes the fulfillment status from line quantities.
// Orders are created with at least one line, so the empty case only
// arises transiently and maps back to Open.
func DeriveStatus(items []SalesOrderItem) OrderStatus {
	if len(items) == 0 {
		return OrderStatusOpen
	}

	completed := true
	invoiced := false
	for _, item := range items {
		if item.InvoicedQty > 0 {
			invoiced = true
		}
		if item.InvoicedQty < item.OrderedQty {
			completed = false
		}
	}

	switch {
	case completed:
		return OrderStatusCompleted
	case invoiced:
		return OrderStatusPartiallyInvoiced
	default:
		return OrderStatusOpen
	}
}
