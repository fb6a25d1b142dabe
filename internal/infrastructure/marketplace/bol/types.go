package bol

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fulfilhub/backend/internal/domain/integration"
)

// tokenResponse is the response of the bol.com token endpoint
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// apiErrorResponse is the problem-detail body returned on API errors
type apiErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// ordersResponse is the response of GET /orders
type ordersResponse struct {
	Orders []orderSummary `json:"orders"`
}

// orderSummary is the reduced order shape of the open-orders listing
type orderSummary struct {
	OrderID             string      `json:"orderId"`
	OrderPlacedDateTime string      `json:"orderPlacedDateTime"`
	OrderItems          []orderItem `json:"orderItems"`
}

// orderDetail is the response of GET /orders/{orderId}
type orderDetail struct {
	OrderID             string           `json:"orderId"`
	OrderPlacedDateTime string           `json:"orderPlacedDateTime"`
	ShipmentDetails     *shipmentDetails `json:"shipmentDetails"`
	OrderItems          []orderItem      `json:"orderItems"`
}

// shipmentDetails holds the delivery address of an order
type shipmentDetails struct {
	FirstName   string `json:"firstName"`
	Surname     string `json:"surname"`
	StreetName  string `json:"streetName"`
	HouseNumber string `json:"houseNumber"`
	ZipCode     string `json:"zipCode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	Email       string `json:"email"`
}

// orderItemsResponse is the response of GET /orders/{orderId}/order-items
type orderItemsResponse struct {
	OrderItems []orderItem `json:"orderItems"`
}

// orderItem is a line item. The listing carries only the reduced fields;
// the detail and order-items endpoints fill in the rest.
type orderItem struct {
	OrderItemID        string          `json:"orderItemId"`
	EAN                string          `json:"ean"`
	Product            *productRef     `json:"product"`
	Offer              *offerRef       `json:"offer"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	FulfilmentStatus   string          `json:"fulfilmentStatus"`
	LatestDeliveryDate string          `json:"latestDeliveryDate"`
}

type productRef struct {
	EAN      string `json:"ean"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

type offerRef struct {
	Reference string `json:"reference"`
}

// shipmentsResponse is the response of GET /shipments
type shipmentsResponse struct {
	Shipments []shipment `json:"shipments"`
}

type shipment struct {
	ShipmentID       string     `json:"shipmentId"`
	ShipmentDateTime string     `json:"shipmentDateTime"`
	Transport        *transport `json:"transport"`
}

type transport struct {
	TransporterCode string `json:"transporterCode"`
	TrackAndTrace   string `json:"trackAndTrace"`
}

// shipmentRequest is the body of PUT /orders/shipment
type shipmentRequest struct {
	OrderID   string         `json:"orderId"`
	Transport *transportInfo `json:"transport,omitempty"`
}

type transportInfo struct {
	TransporterCode string `json:"transporterCode"`
	TrackAndTrace   string `json:"trackAndTrace"`
}

// returnHandlingRequest is the body of PUT /returns/{returnId}
type returnHandlingRequest struct {
	HandlingResult   string `json:"handlingResult"`
	QuantityReturned int    `json:"quantityReturned"`
}

func (s orderSummary) toDomain() integration.MarketplaceOrder {
	order := integration.MarketplaceOrder{
		OrderID:  s.OrderID,
		PlacedAt: parseDateTime(s.OrderPlacedDateTime),
		Items:    make([]integration.MarketplaceOrderItem, 0, len(s.OrderItems)),
	}
	for _, item := range s.OrderItems {
		order.Items = append(order.Items, item.toDomain())
	}
	return order
}

func (d orderDetail) toDomain() integration.MarketplaceOrder {
	order := integration.MarketplaceOrder{
		OrderID:  d.OrderID,
		PlacedAt: parseDateTime(d.OrderPlacedDateTime),
		Items:    make([]integration.MarketplaceOrderItem, 0, len(d.OrderItems)),
	}
	if sd := d.ShipmentDetails; sd != nil {
		order.FirstName = sd.FirstName
		order.Surname = sd.Surname
		order.Email = sd.Email
		order.Street = sd.StreetName
		order.HouseNumber = sd.HouseNumber
		order.ZipCode = sd.ZipCode
		order.City = sd.City
		order.CountryCode = sd.CountryCode
	}
	for _, item := range d.OrderItems {
		converted := item.toDomain()
		order.Items = append(order.Items, converted)
		if order.LatestDeliveryDate == nil && item.LatestDeliveryDate != "" {
			if t, err := time.Parse("2006-01-02", item.LatestDeliveryDate); err == nil {
				order.LatestDeliveryDate = &t
			}
		}
	}
	return order
}

func (i orderItem) toDomain() integration.MarketplaceOrderItem {
	item := integration.MarketplaceOrderItem{
		OrderItemID:      i.OrderItemID,
		EAN:              i.EAN,
		Quantity:         i.Quantity,
		UnitPrice:        i.UnitPrice,
		FulfilmentStatus: i.FulfilmentStatus,
	}
	if i.Product != nil {
		if item.EAN == "" {
			item.EAN = i.Product.EAN
		}
		item.Title = i.Product.Title
		item.ImageURL = i.Product.ImageURL
	}
	if i.Offer != nil {
		item.SKU = i.Offer.Reference
	}
	return item
}

func (s shipment) toDomain() integration.MarketplaceShipment {
	out := integration.MarketplaceShipment{
		ShipmentID: s.ShipmentID,
	}
	if s.Transport != nil {
		out.TransporterCode = s.Transport.TransporterCode
		out.TrackAndTrace = s.Transport.TrackAndTrace
	}
	if s.ShipmentDateTime != "" {
		if t, err := time.Parse(time.RFC3339, s.ShipmentDateTime); err == nil {
			out.ShippedAt = &t
		}
	}
	return out
}

// parseDateTime parses a marketplace timestamp, returning the zero time on
// malformed input
func parseDateTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
