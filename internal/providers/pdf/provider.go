// Package pdf renders invoices as PDF documents.
package pdf

import (
	"context"
	"io"
)

// Provider renders a printable document for an invoice.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
}
