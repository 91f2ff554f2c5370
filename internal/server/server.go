package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gstbill/gstbill/internal/category"
	categorydomain "github.com/gstbill/gstbill/internal/category/domain"
	"github.com/gstbill/gstbill/internal/config"
	"github.com/gstbill/gstbill/internal/customer"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
	"github.com/gstbill/gstbill/internal/dashboard"
	dashboarddomain "github.com/gstbill/gstbill/internal/dashboard/domain"
	"github.com/gstbill/gstbill/internal/invoice"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	obsmetrics "github.com/gstbill/gstbill/internal/observability/metrics"
	"github.com/gstbill/gstbill/internal/payment"
	paymentdomain "github.com/gstbill/gstbill/internal/payment/domain"
	"github.com/gstbill/gstbill/internal/product"
	productdomain "github.com/gstbill/gstbill/internal/product/domain"
	"github.com/gstbill/gstbill/internal/providers/pdf"
	"github.com/gstbill/gstbill/internal/salesorder"
	salesorderdomain "github.com/gstbill/gstbill/internal/salesorder/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	fx.Provide(registerGin),
	category.Module,
	product.Module,
	customer.Module,
	salesorder.Module,
	invoice.Module,
	payment.Module,
	dashboard.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	categorySvc   categorydomain.Service
	productSvc    productdomain.Service
	customerSvc   customerdomain.Service
	salesOrderSvc salesorderdomain.Service
	invoiceSvc    invoicedomain.Service
	paymentSvc    paymentdomain.Service
	dashboardSvc  dashboarddomain.Service
	pdfProvider   pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	CategorySvc   categorydomain.Service
	ProductSvc    productdomain.Service
	CustomerSvc   customerdomain.Service
	SalesOrderSvc salesorderdomain.Service
	InvoiceSvc    invoicedomain.Service
	PaymentSvc    paymentdomain.Service
	DashboardSvc  dashboarddomain.Service
	PDFProvider   pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		categorySvc:   p.CategorySvc,
		productSvc:    p.ProductSvc,
		customerSvc:   p.CustomerSvc,
		salesOrderSvc: p.SalesOrderSvc,
		invoiceSvc:    p.InvoiceSvc,
		paymentSvc:    p.PaymentSvc,
		dashboardSvc:  p.DashboardSvc,
		pdfProvider:   p.PDFProvider,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	categories := v1.Group("/categories")
	categories.POST("", s.CreateCategory)
	categories.GET("", s.ListCategories)
	categories.GET("/:id", s.GetCategoryByID)
	categories.PUT("/:id", s.UpdateCategory)
	categories.DELETE("/:id", s.DeleteCategory)

	products := v1.Group("/products")
	products.POST("", s.CreateProduct)
	products.GET("", s.ListProducts)
	products.GET("/:id", s.GetProductByID)
	products.PUT("/:id", s.UpdateProduct)
	products.DELETE("/:id", s.DeleteProduct)

	customers := v1.Group("/customers")
	customers.POST("", s.CreateCustomer)
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomerByID)
	customers.PUT("/:id", s.UpdateCustomer)
	customers.DELETE("/:id", s.DeleteCustomer)

	salesOrders := v1.Group("/sales-orders")
	salesOrders.POST("", s.CreateSalesOrder)
	salesOrders.GET("", s.ListSalesOrders)
	salesOrders.GET("/:id", s.GetSalesOrderByID)

	invoices := v1.Group("/invoices")
	invoices.POST("", s.CreateInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.PUT("/:id", s.UpdateInvoice)
	invoices.GET("/:id/pdf", s.GetInvoicePDF)

	payments := v1.Group("/payments")
	payments.POST("", s.CreatePayment)
	payments.GET("", s.ListPayments)
	payments.GET("/:id", s.GetPaymentByID)
	payments.PATCH("/:id", s.RevisePayment)

	v1.GET("/dashboard", s.GetDashboard)
}
