package integration

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MarketplaceOrder is one marketplace order as seen by the reconciler:
// the open-orders summary, optionally enriched with detail, item and
// shipment sub-calls. Enrichment is best-effort, so every field beyond
// OrderID and Items may be zero-valued.
type MarketplaceOrder struct {
	OrderID     string
	PlacedAt    time.Time
	FirstName   string
	Surname     string
	Email       string
	Street      string
	HouseNumber string
	ZipCode     string
	City        string
	CountryCode string
	// LatestDeliveryDate is the promised delivery date, when known
	LatestDeliveryDate *time.Time
	Items              []MarketplaceOrderItem
}

// MarketplaceOrderItem is a line item of a marketplace order
type MarketplaceOrderItem struct {
	OrderItemID      string
	EAN              string
	SKU              string
	Title            string
	ImageURL         string
	Quantity         int
	UnitPrice        decimal.Decimal
	FulfilmentStatus string
}

// MarketplaceShipment is a shipment registered on the marketplace for an order
type MarketplaceShipment struct {
	ShipmentID      string
	TransporterCode string
	TrackAndTrace   string
	ShippedAt       *time.Time
}

// ShipmentRequest asks the marketplace to register a shipment for all
// open items of an order
type ShipmentRequest struct {
	OrderID         string
	TransporterCode string
	TrackAndTrace   string
}

// ReturnHandlingRequest carries a return-handling decision to the marketplace
type ReturnHandlingRequest struct {
	HandlingResult   string
	QuantityReturned int
}

// BolGateway is the port to the bol.com retailer API. Implementations
// authenticate per credential set; callers pass the installation's typed
// credentials on every call so reconciliations for different installations
// never share an identity.
type BolGateway interface {
	// FetchOpenOrders returns one page of open FBR orders
	FetchOpenOrders(ctx context.Context, creds BolCredentials, page int) ([]MarketplaceOrder, error)

	// FetchOrder returns the order detail for one marketplace order
	FetchOrder(ctx context.Context, creds BolCredentials, orderID string) (*MarketplaceOrder, error)

	// FetchOrderItems returns the item detail for one marketplace order
	FetchOrderItems(ctx context.Context, creds BolCredentials, orderID string) ([]MarketplaceOrderItem, error)

	// FetchShipments returns the shipments registered for one marketplace order
	FetchShipments(ctx context.Context, creds BolCredentials, orderID string) ([]MarketplaceShipment, error)

	// CreateShipment registers a shipment on the marketplace
	CreateShipment(ctx context.Context, creds BolCredentials, req ShipmentRequest) (json.RawMessage, error)

	// FetchReturns returns one page of marketplace returns, passed through
	// to the caller unmodified
	FetchReturns(ctx context.Context, creds BolCredentials, page int) (json.RawMessage, error)

	// HandleReturn submits a return-handling decision
	HandleReturn(ctx context.Context, creds BolCredentials, returnID string, req ReturnHandlingRequest) (json.RawMessage, error)
}
