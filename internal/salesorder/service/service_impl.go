package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
	"github.com/gstbill/gstbill/internal/gst"
	productdomain "github.com/gstbill/gstbill/internal/product/domain"
	salesorderdomain "github.com/gstbill/gstbill/internal/salesorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p ServiceParam) salesorderdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("salesorder.service"),
		genID: p.GenID,
	}
}

// Create opens a sales order. Empty line sets are rejected outright so
// the fulfillment status can never be vacuously Completed.
func (s *Service) Create(ctx context.Context, req salesorderdomain.CreateOrderRequest) (salesorderdomain.SalesOrder, error) {
	if len(req.Lines) == 0 {
		return salesorderdomain.SalesOrder{}, salesorderdomain.ErrNoLines
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return salesorderdomain.SalesOrder{}, salesorderdomain.ErrCustomerNotFound
	}

	var created salesorderdomain.SalesOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer customerdomain.Customer
		if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return salesorderdomain.ErrCustomerNotFound
			}
			return err
		}

		seq, err := s.nextSeqNo(ctx, tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		order := salesorderdomain.SalesOrder{
			ID:               s.genID.Generate(),
			SONumber:         salesorderdomain.FormatSONumber(seq),
			SeqNo:            seq,
			CustomerPONumber: strings.TrimSpace(req.CustomerPONumber),
			CustomerID:       customerID,
			Status:           salesorderdomain.OrderStatusOpen,
			OrderDate:        now,
			CreatedAt:        now,
		}

		var total float64
		for _, line := range req.Lines {
			if line.Quantity <= 0 {
				return salesorderdomain.ErrInvalidQuantity
			}

			productID, err := snowflake.ParseString(strings.TrimSpace(line.ProductID))
			if err != nil {
				return salesorderdomain.ErrProductNotFound
			}
			var product productdomain.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return salesorderdomain.ErrProductNotFound
				}
				return err
			}

			order.Items = append(order.Items, salesorderdomain.SalesOrderItem{
				ID:           s.genID.Generate(),
				SalesOrderID: order.ID,
				ProductID:    product.ID,
				ProductName:  product.Name,
				OrderedQty:   line.Quantity,
				UnitPrice:    line.UnitPrice,
			})
			total += float64(line.Quantity) * line.UnitPrice
		}
		order.TotalValue = gst.Round2(total)

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return salesorderdomain.SalesOrder{}, err
	}

	s.log.Info("sales order created",
		zap.String("so_number", created.SONumber),
		zap.Int("lines", len(created.Items)),
		zap.Float64("total_value", created.TotalValue),
	)
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]salesorderdomain.SalesOrder, error) {
	var orders []salesorderdomain.SalesOrder
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

func (s *Service) GetByID(ctx context.Context, id string) (salesorderdomain.SalesOrder, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return salesorderdomain.SalesOrder{}, salesorderdomain.ErrInvalidID
	}

	var order salesorderdomain.SalesOrder
	err = s.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return salesorderdomain.SalesOrder{}, salesorderdomain.ErrNotFound
		}
		return salesorderdomain.SalesOrder{}, err
	}
	return order, nil
}

// nextSeqNo computes the next order sequence inside the creating
// transaction. Sequence rows are never deleted, so MAX+1 never reuses
// a number.
func (s *Service) nextSeqNo(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM sales_orders`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
