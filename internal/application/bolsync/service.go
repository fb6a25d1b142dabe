package bolsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/domain/fulfilment"
	"github.com/fulfilhub/backend/internal/domain/integration"
	"github.com/fulfilhub/backend/internal/domain/shared"
)

// maxPages caps the open-orders pagination so a misbehaving marketplace
// response cannot keep a sync cycle running forever
const maxPages = 100

// unknownCustomerName is stored when the marketplace provides no name parts
const unknownCustomerName = "Unknown"

// Service reconciles marketplace orders into the local order store. Each
// call resolves the installation's own credentials, so concurrent callers
// for different installations never mix identities.
type Service struct {
	integrations integration.IntegrationRepository
	orders       fulfilment.OrderRepository
	gateway      integration.BolGateway
	logger       *zap.Logger
}

// NewService creates a new sync service
func NewService(
	integrations integration.IntegrationRepository,
	orders fulfilment.OrderRepository,
	gateway integration.BolGateway,
	logger *zap.Logger,
) *Service {
	return &Service{
		integrations: integrations,
		orders:       orders,
		gateway:      gateway,
		logger:       logger.Named("bolsync"),
	}
}

// resolveCredentials loads and parses the installation's bol.com credentials
func (s *Service) resolveCredentials(ctx context.Context, installationID int64) (integration.BolCredentials, error) {
	integ, err := s.integrations.FindActiveByInstallationAndPlatform(ctx, installationID, integration.PlatformBol)
	if err != nil {
		return integration.BolCredentials{}, err
	}

	creds, err := integ.ParseCredentials()
	if err != nil {
		return integration.BolCredentials{}, err
	}

	bolCreds, ok := creds.(integration.BolCredentials)
	if !ok {
		return integration.BolCredentials{}, integration.ErrInvalidCredentialBlob
	}
	return bolCreds, nil
}

// Reconcile pulls all open marketplace orders for one installation and
// upserts them locally. Orders are created on first sight of their number
// and updated afterwards; items are insert-or-ignore per (order, EAN).
// A persistence error aborts the run so the next cycle retries the batch.
func (s *Service) Reconcile(ctx context.Context, installationID int64) (*Result, error) {
	creds, err := s.resolveCredentials(ctx, installationID)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for page := 1; page <= maxPages; page++ {
		orders, err := s.gateway.FetchOpenOrders(ctx, creds, page)
		if err != nil {
			return nil, fmt.Errorf("fetching open orders page %d: %w", page, err)
		}
		if len(orders) == 0 {
			break
		}

		for _, summary := range orders {
			enriched := s.enrich(ctx, creds, summary)
			imported, err := s.upsertOrder(ctx, installationID, enriched)
			if err != nil {
				return nil, fmt.Errorf("upserting order %s: %w", summary.OrderID, err)
			}
			if imported {
				result.Imported++
			} else {
				result.Updated++
			}
			result.Total++
		}
	}

	s.logger.Info("reconciliation finished",
		zap.Int64("installation_id", installationID),
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// enrich upgrades the open-orders summary with the detail, item and
// shipment sub-resources. Enrichment is best-effort: a failing sub-call is
// logged and the order is processed with what is available.
func (s *Service) enrich(ctx context.Context, creds integration.BolCredentials, summary integration.MarketplaceOrder) integration.MarketplaceOrder {
	order := summary

	if detail, err := s.gateway.FetchOrder(ctx, creds, summary.OrderID); err != nil {
		s.logger.Warn("order detail fetch failed",
			zap.String("order_id", summary.OrderID), zap.Error(err))
	} else if detail != nil {
		if len(detail.Items) == 0 {
			detail.Items = order.Items
		}
		order = *detail
	}

	if items, err := s.gateway.FetchOrderItems(ctx, creds, summary.OrderID); err != nil {
		s.logger.Warn("order items fetch failed",
			zap.String("order_id", summary.OrderID), zap.Error(err))
	} else if len(items) > 0 {
		order.Items = items
	}

	if shipments, err := s.gateway.FetchShipments(ctx, creds, summary.OrderID); err != nil {
		s.logger.Warn("shipments fetch failed",
			zap.String("order_id", summary.OrderID), zap.Error(err))
	} else if len(shipments) > 0 {
		// A registered shipment can precede the item status catching up.
		// Promote items that are still in a pre-shipment stage.
		for i, item := range order.Items {
			switch fulfilment.StatusFromFulfilment(item.FulfilmentStatus) {
			case fulfilment.StatusShipped, fulfilment.StatusDelivered, fulfilment.StatusCancelled:
			default:
				order.Items[i].FulfilmentStatus = "SHIPPED"
			}
		}
	}

	return order
}

// upsertOrder writes one marketplace order into the local store. Returns
// true when the order was newly imported.
func (s *Service) upsertOrder(ctx context.Context, installationID int64, m integration.MarketplaceOrder) (bool, error) {
	status, label := deriveStatuses(m)

	order := &fulfilment.Order{
		OrderNumber:    m.OrderID,
		InstallationID: installationID,
		CustomerName:   deriveCustomerName(m),
		CustomerEmail:  m.Email,
		DeliveryAddr:   deriveDeliveryAddress(m),
		Country:        m.CountryCode,
		Store:          integration.PlatformBol.String(),
		Platform:       integration.PlatformBol.String(),
		OrderDate:      m.PlacedAt,
		DeliveryDate:   m.LatestDeliveryDate,
		OrderStatus:    label,
		Status:         status,
		Total:          deriveTotal(m),
		ItemCount:      len(m.Items),
	}

	imported := false
	existing, err := s.orders.FindByOrderNumber(ctx, m.OrderID)
	switch {
	case err == nil:
		order.ID = existing.ID
		order.InstallationID = existing.InstallationID
		order.UserID = existing.UserID
		if err := s.orders.Update(ctx, order); err != nil {
			return false, err
		}
	case errors.Is(err, shared.ErrNotFound):
		if err := s.orders.Create(ctx, order); err != nil {
			return false, err
		}
		imported = true
	default:
		return false, err
	}

	for _, item := range m.Items {
		if item.EAN == "" {
			s.logger.Warn("order item without EAN skipped",
				zap.String("order_id", m.OrderID))
			continue
		}
		_, err := s.orders.CreateItemIfAbsent(ctx, &fulfilment.OrderItem{
			OrderID:  order.ID,
			Name:     item.Title,
			ImageURL: item.ImageURL,
			EAN:      item.EAN,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		})
		if err != nil {
			return imported, err
		}
	}

	return imported, nil
}

// ShipOrder registers a shipment on the marketplace and marks the local
// order shipped. A missing local order does not undo the marketplace
// shipment; it is logged and the raw marketplace response still returned.
func (s *Service) ShipOrder(ctx context.Context, installationID int64, req integration.ShipmentRequest) (json.RawMessage, error) {
	creds, err := s.resolveCredentials(ctx, installationID)
	if err != nil {
		return nil, err
	}

	raw, err := s.gateway.CreateShipment(ctx, creds, req)
	if err != nil {
		return nil, err
	}

	if err := s.orders.MarkShipped(ctx, req.OrderID); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("shipped order unknown locally",
			zap.String("order_id", req.OrderID),
			zap.Int64("installation_id", installationID))
	}

	return raw, nil
}

// GetReturns fetches one page of marketplace returns, passed through unmodified
func (s *Service) GetReturns(ctx context.Context, installationID int64, page int) (json.RawMessage, error) {
	creds, err := s.resolveCredentials(ctx, installationID)
	if err != nil {
		return nil, err
	}
	return s.gateway.FetchReturns(ctx, creds, page)
}

// HandleReturn submits a return-handling decision, passed through unmodified
func (s *Service) HandleReturn(ctx context.Context, installationID int64, returnID string, req integration.ReturnHandlingRequest) (json.RawMessage, error) {
	creds, err := s.resolveCredentials(ctx, installationID)
	if err != nil {
		return nil, err
	}
	return s.gateway.HandleReturn(ctx, creds, returnID, req)
}

// deriveCustomerName joins the marketplace name parts, falling back to a
// placeholder when both are absent
func deriveCustomerName(m integration.MarketplaceOrder) string {
	name := strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.Surname))
	if name == "" {
		return unknownCustomerName
	}
	return name
}

// deriveDeliveryAddress joins the available address parts, dropping the
// ones the marketplace did not provide
func deriveDeliveryAddress(m integration.MarketplaceOrder) string {
	street := strings.TrimSpace(strings.TrimSpace(m.Street) + " " + strings.TrimSpace(m.HouseNumber))

	parts := make([]string, 0, 3)
	for _, part := range []string{street, strings.TrimSpace(m.ZipCode), strings.TrimSpace(m.City)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// deriveTotal sums unit price times quantity over all items
func deriveTotal(m integration.MarketplaceOrder) decimal.Decimal {
	total := decimal.Zero
	for _, item := range m.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// deriveStatuses maps the first item's fulfilment status onto both status
// axes. Orders without items stay open.
func deriveStatuses(m integration.MarketplaceOrder) (fulfilment.Status, string) {
	if len(m.Items) == 0 {
		return fulfilment.StatusOpen, fulfilment.MarketplaceLabelFromFulfilment("")
	}
	first := m.Items[0].FulfilmentStatus
	return fulfilment.StatusFromFulfilment(first), fulfilment.MarketplaceLabelFromFulfilment(first)
}
