package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	salesorderdomain "github.com/gstbill/gstbill/internal/salesorder/domain"
)

type orderLineRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type createSalesOrderRequest struct {
	CustomerID       string             `json:"customer_id"`
	CustomerPONumber string             `json:"customer_po_number"`
	Lines            []orderLineRequest `json:"lines"`
}

func (s *Server) CreateSalesOrder(c *gin.Context) {
	var req createSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	lines := make([]salesorderdomain.OrderLineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, salesorderdomain.OrderLineRequest{
			ProductID: strings.TrimSpace(line.ProductID),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	resp, err := s.salesOrderSvc.Create(c.Request.Context(), salesorderdomain.CreateOrderRequest{
		CustomerID:       strings.TrimSpace(req.CustomerID),
		CustomerPONumber: strings.TrimSpace(req.CustomerPONumber),
		Lines:            lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSalesOrders(c *gin.Context) {
	resp, err := s.salesOrderSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSalesOrderByID(c *gin.Context) {
	resp, err := s.salesOrderSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
