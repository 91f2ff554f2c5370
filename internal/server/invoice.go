package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	"github.com/gstbill/gstbill/internal/providers/pdf"
	"go.uber.org/zap"
)

type invoiceLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type createInvoiceRequest struct {
	CustomerID      string               `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	CustomerGSTIN   string               `json:"customer_gstin"`
	CustomerAddress string               `json:"customer_address"`
	BillingAddress  string               `json:"billing_address"`
	Status          string               `json:"status"`
	InvoiceDate     string               `json:"invoice_date"`
	SalesOrderID    string               `json:"sales_order_id"`
	Lines           []invoiceLineRequest `json:"lines"`
}

type updateInvoiceRequest struct {
	CustomerName    string  `json:"customer_name"`
	CustomerGSTIN   string  `json:"customer_gstin"`
	CustomerAddress string  `json:"customer_address"`
	BillingAddress  string  `json:"billing_address"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	invoiceDate := time.Now()
	if strings.TrimSpace(req.InvoiceDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(req.InvoiceDate))
		if err != nil {
			AbortWithError(c, errInvalidRequest)
			return
		}
		invoiceDate = parsed
	}

	lines := make([]invoicedomain.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, invoicedomain.LineRequest{
			ProductID: strings.TrimSpace(line.ProductID),
			Quantity:  line.Quantity,
		})
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerGSTIN:   strings.TrimSpace(req.CustomerGSTIN),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		BillingAddress:  strings.TrimSpace(req.BillingAddress),
		Status:          invoicedomain.InvoiceStatus(strings.TrimSpace(req.Status)),
		InvoiceDate:     invoiceDate,
		SalesOrderID:    strings.TrimSpace(req.SalesOrderID),
		Lines:           lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), invoicedomain.UpdateInvoiceRequest{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerGSTIN:   strings.TrimSpace(req.CustomerGSTIN),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		BillingAddress:  strings.TrimSpace(req.BillingAddress),
		Amount:          req.Amount,
		Status:          invoicedomain.InvoiceStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoicePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.invoiceSvc.BalanceOf(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.pdfProvider.GenerateInvoice(c.Request.Context(), buildInvoicePDFData(s.cfg.AppName, s.cfg.SellerGSTIN, inv, balance))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=invoice-%s.pdf", inv.ID.String()))
	if _, err := io.Copy(c.Writer, doc); err != nil {
		s.log.Warn("invoice pdf write failed", zap.Error(err))
	}
}

func buildInvoicePDFData(sellerName, sellerGSTIN string, inv invoicedomain.Invoice, balance float64) pdf.InvoiceData {
	items := make([]pdf.InvoiceItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, pdf.InvoiceItem{
			ProductName: item.ProductName,
			Qty:         item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			Taxable:     money(item.TaxableValue),
			CGST:        money(item.CGST),
			SGST:        money(item.SGST),
			IGST:        money(item.IGST),
			Total:       money(item.Total),
		})
	}

	return pdf.InvoiceData{
		SellerName:      sellerName,
		SellerGSTIN:     sellerGSTIN,
		InvoiceID:       inv.ID.String(),
		InvoiceDate:     inv.InvoiceDate.Format("2006-01-02"),
		Status:          string(inv.Status),
		CustomerName:    inv.CustomerName,
		CustomerGSTIN:   inv.CustomerGSTIN,
		CustomerAddress: inv.CustomerAddress,
		BillingAddress:  inv.BillingAddress,
		Items:           items,
		Amount:          money(inv.Amount),
		Paid:            money(inv.Amount - balance),
		Balance:         money(balance),
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
