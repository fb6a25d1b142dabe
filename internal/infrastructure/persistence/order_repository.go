package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fulfilhub/backend/internal/domain/fulfilment"
	"github.com/fulfilhub/backend/internal/domain/shared"
	"github.com/fulfilhub/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByOrderNumber finds an order with its items by the externally
// assigned order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*fulfilment.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new order and assigns its ID
func (r *GormOrderRepository) Create(ctx context.Context, order *fulfilment.Order) error {
	var model models.OrderModel
	model.FromDomain(order)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// Update persists changes to an existing order
func (r *GormOrderRepository) Update(ctx context.Context, order *fulfilment.Order) error {
	var model models.OrderModel
	model.FromDomain(order)

	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", order.ID).
		Select("customer_name", "customer_email", "delivery_address", "country",
			"store", "platform", "order_date", "delivery_date", "order_status",
			"status", "total", "item_count", "user_id").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateItemIfAbsent inserts an order item unless one with the same
// (order, EAN) already exists. The conflict is resolved by the database so
// concurrent reconciliations cannot double-create the row. Returns true
// when a row was inserted.
func (r *GormOrderRepository) CreateItemIfAbsent(ctx context.Context, item *fulfilment.OrderItem) (bool, error) {
	var model models.OrderItemModel
	model.FromDomain(item)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "ean"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	return true, nil
}

// MarkShipped updates both status axes of an order after a shipment was
// pushed to the marketplace
func (r *GormOrderRepository) MarkShipped(ctx context.Context, orderNumber string) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_number = ?", orderNumber).
		Updates(map[string]any{
			"order_status": "verzonden",
			"status":       fulfilment.StatusShipped.String(),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ fulfilment.OrderRepository = (*GormOrderRepository)(nil)
