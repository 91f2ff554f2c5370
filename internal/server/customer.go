package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
)

type customerRequest struct {
	Name           string  `json:"name"`
	GSTIN          string  `json:"gstin"`
	Address        string  `json:"address"`
	BillingAddress string  `json:"billing_address"`
	Receivables    float64 `json:"receivables"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:           strings.TrimSpace(req.Name),
		GSTIN:          strings.TrimSpace(req.GSTIN),
		Address:        strings.TrimSpace(req.Address),
		BillingAddress: strings.TrimSpace(req.BillingAddress),
		Receivables:    req.Receivables,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	resp, err := s.customerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), customerdomain.UpdateCustomerRequest{
		Name:           strings.TrimSpace(req.Name),
		GSTIN:          strings.TrimSpace(req.GSTIN),
		Address:        strings.TrimSpace(req.Address),
		BillingAddress: strings.TrimSpace(req.BillingAddress),
		Receivables:    req.Receivables,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.customerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
