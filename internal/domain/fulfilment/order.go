package fulfilment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the reconciliation target for marketplace synchronization.
// The externally assigned order number is unique system-wide and acts as
// the idempotency key: an order is created on first sight of its number
// and only updated afterwards, never re-created.
//
// Orders carry two parallel status axes: OrderStatus holds the
// marketplace-native vocabulary ("openstaand", "verzonden", ...) while
// Status holds the internal fulfilment-stage vocabulary ("open",
// "shipped", ...). The two have overlapping but not identical semantics
// and are updated independently.
type Order struct {
	ID             int64
	OrderNumber    string
	InstallationID int64
	UserID         *int64
	CustomerName   string
	CustomerEmail  string
	DeliveryAddr   string
	Country        string
	Store          string
	Platform       string
	OrderDate      time.Time
	DeliveryDate   *time.Time
	OrderStatus    string
	Status         Status
	Total          decimal.Decimal
	ItemCount      int
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem is a line item under an Order. Within one order, items are
// keyed by EAN: repeated syncs must not import the same line twice.
type OrderItem struct {
	ID        int64
	OrderID   int64
	Name      string
	ImageURL  string
	EAN       string
	SKU       string
	Quantity  int
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Value returns the monetary value of the line (unit price times quantity).
func (i *OrderItem) Value() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRepository defines persistence operations for orders and their items
type OrderRepository interface {
	// FindByOrderNumber finds an order by its externally assigned number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// Create persists a new order and assigns its ID
	Create(ctx context.Context, order *Order) error

	// Update persists changes to an existing order
	Update(ctx context.Context, order *Order) error

	// CreateItemIfAbsent inserts an order item unless one with the same
	// (order, EAN) already exists. The insert-or-ignore happens at the
	// database level so concurrent reconciliations cannot double-create
	// the row. Returns true when a row was inserted.
	CreateItemIfAbsent(ctx context.Context, item *OrderItem) (bool, error)

	// MarkShipped updates both status axes of an order after a shipment
	// was pushed to the marketplace
	MarkShipped(ctx context.Context, orderNumber string) error
}
