package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fulfilhub/backend/internal/domain/fulfilment"
)

// OrderModel is the persistence model for the Order entity. The order
// number is unique system-wide; it is the idempotency key of the
// marketplace sync.
type OrderModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	OrderNumber    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	InstallationID int64  `gorm:"not null;index"`
	UserID         *int64
	CustomerName   string `gorm:"type:varchar(200);not null;default:''"`
	CustomerEmail  string `gorm:"type:varchar(200);not null;default:''"`
	DeliveryAddr   string `gorm:"column:delivery_address;type:text;not null;default:''"`
	Country        string `gorm:"type:varchar(2);not null;default:''"`
	Store          string `gorm:"type:varchar(100);not null;default:''"`
	Platform       string `gorm:"type:varchar(50);not null;default:''"`
	OrderDate      time.Time
	DeliveryDate   *time.Time
	OrderStatus    string           `gorm:"type:varchar(50);not null;default:'openstaand'"`
	Status         string           `gorm:"type:varchar(50);not null;default:'open'"`
	Total          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ItemCount      int              `gorm:"not null;default:0"`
	Items          []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for the OrderItem entity.
// The (order_id, ean) pair is unique so repeated syncs can insert-or-ignore
// at the database level.
type OrderItemModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"not null;uniqueIndex:idx_order_item_order_ean,priority:1"`
	Name      string          `gorm:"type:varchar(500);not null;default:''"`
	ImageURL  string          `gorm:"type:text;not null;default:''"`
	EAN       string          `gorm:"column:ean;type:varchar(20);not null;uniqueIndex:idx_order_item_order_ean,priority:2"`
	SKU       string          `gorm:"column:sku;type:varchar(100);not null;default:''"`
	Quantity  int             `gorm:"not null;default:1"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order entity
func (m *OrderModel) ToDomain() *fulfilment.Order {
	items := make([]fulfilment.OrderItem, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, *item.ToDomain())
	}

	return &fulfilment.Order{
		ID:             m.ID,
		OrderNumber:    m.OrderNumber,
		InstallationID: m.InstallationID,
		UserID:         m.UserID,
		CustomerName:   m.CustomerName,
		CustomerEmail:  m.CustomerEmail,
		DeliveryAddr:   m.DeliveryAddr,
		Country:        m.Country,
		Store:          m.Store,
		Platform:       m.Platform,
		OrderDate:      m.OrderDate,
		DeliveryDate:   m.DeliveryDate,
		OrderStatus:    m.OrderStatus,
		Status:         fulfilment.Status(m.Status),
		Total:          m.Total,
		ItemCount:      m.ItemCount,
		Items:          items,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
// Items are managed separately and not copied.
func (m *OrderModel) FromDomain(order *fulfilment.Order) {
	m.ID = order.ID
	m.OrderNumber = order.OrderNumber
	m.InstallationID = order.InstallationID
	m.UserID = order.UserID
	m.CustomerName = order.CustomerName
	m.CustomerEmail = order.CustomerEmail
	m.DeliveryAddr = order.DeliveryAddr
	m.Country = order.Country
	m.Store = order.Store
	m.Platform = order.Platform
	m.OrderDate = order.OrderDate
	m.DeliveryDate = order.DeliveryDate
	m.OrderStatus = order.OrderStatus
	m.Status = order.Status.String()
	m.Total = order.Total
	m.ItemCount = order.ItemCount
	m.CreatedAt = order.CreatedAt
	m.UpdatedAt = order.UpdatedAt
}

// ToDomain converts the persistence model to a domain OrderItem entity
func (m *OrderItemModel) ToDomain() *fulfilment.OrderItem {
	return &fulfilment.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Name:      m.Name,
		ImageURL:  m.ImageURL,
		EAN:       m.EAN,
		SKU:       m.SKU,
		Quantity:  m.Quantity,
		Price:     m.Price,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem entity
func (m *OrderItemModel) FromDomain(item *fulfilment.OrderItem) {
	m.ID = item.ID
	m.OrderID = item.OrderID
	m.Name = item.Name
	m.ImageURL = item.ImageURL
	m.EAN = item.EAN
	m.SKU = item.SKU
	m.Quantity = item.Quantity
	m.Price = item.Price
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
}
