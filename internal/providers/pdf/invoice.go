package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData is the render input for one invoice document.
type InvoiceData struct {
	SellerName  string
	SellerGSTIN string

	InvoiceID   string
	InvoiceDate string
	Status      string

	CustomerName    string
	CustomerGSTIN   string
	CustomerAddress string
	BillingAddress  string

	Items []InvoiceItem

	Amount  string
	Paid    string
	Balance string
}

// InvoiceItem is one rendered line with its tax split.
type InvoiceItem struct {
	ProductName string
	Qty         int64
	UnitPrice   string
	Taxable     string
	CGST        string
	SGST        string
	IGST        string
	Total       string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) (io.Reader, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Tax Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice: "+invoice.InvoiceID, props.Text{Top: 0}),
			text.New("Date: "+invoice.InvoiceDate, props.Text{Top: 4}),
			text.New("Status: "+invoice.Status, props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(35,
		col.New(6).Add(
			text.New(invoice.SellerName, props.Text{Style: fontstyle.Bold}),
			text.New("GSTIN: "+invoice.SellerGSTIN, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.CustomerName, props.Text{Top: 5}),
			text.New("GSTIN: "+invoice.CustomerGSTIN, props.Text{Top: 9}),
			text.New(invoice.CustomerAddress, props.Text{Top: 13}),
			text.New(invoice.BillingAddress, props.Text{Top: 17}),
		),
	)

	m.AddRow(10,
		text.NewCol(3, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Taxable", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "CGST", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "SGST/IGST", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range invoice.Items {
		other := item.SGST
		if item.IGST != "0.00" {
			other = item.IGST
		}
		m.AddRow(12,
			text.NewCol(3, item.ProductName, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Taxable, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.CGST, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, other, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Total, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Amount", props.Text{Size: 9}),
		text.NewCol(2, invoice.Amount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Paid", props.Text{Size: 9}),
		text.NewCol(2, invoice.Paid, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Balance due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, invoice.Balance, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
