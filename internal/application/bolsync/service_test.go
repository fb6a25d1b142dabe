package bolsync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/domain/fulfilment"
	"github.com/fulfilhub/backend/internal/domain/integration"
	"github.com/fulfilhub/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeIntegrationRepo struct {
	integrations map[int64]*integration.Integration
}

func (f *fakeIntegrationRepo) FindActiveByInstallationAndPlatform(ctx context.Context, installationID int64, platform integration.PlatformCode) (*integration.Integration, error) {
	integ, ok := f.integrations[installationID]
	if !ok {
		return nil, integration.ErrIntegrationNotFound
	}
	return integ, nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*fulfilment.Order
	items     map[int64]map[string]*fulfilment.OrderItem
	nextID    int64
	createErr error
	itemErr   error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*fulfilment.Order),
		items:  make(map[int64]map[string]*fulfilment.OrderItem),
	}
}

func (f *fakeOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*fulfilment.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNumber]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *fulfilment.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	copied := *order
	f.orders[order.OrderNumber] = &copied
	return nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, order *fulfilment.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *order
	f.orders[order.OrderNumber] = &copied
	return nil
}

func (f *fakeOrderRepo) CreateItemIfAbsent(ctx context.Context, item *fulfilment.OrderItem) (bool, error) {
	if f.itemErr != nil {
		return false, f.itemErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	byEAN, ok := f.items[item.OrderID]
	if !ok {
		byEAN = make(map[string]*fulfilment.OrderItem)
		f.items[item.OrderID] = byEAN
	}
	if _, exists := byEAN[item.EAN]; exists {
		return false, nil
	}
	copied := *item
	byEAN[item.EAN] = &copied
	return true, nil
}

func (f *fakeOrderRepo) MarkShipped(ctx context.Context, orderNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNumber]
	if !ok {
		return shared.ErrNotFound
	}
	order.OrderStatus = "verzonden"
	order.Status = fulfilment.StatusShipped
	return nil
}

type fakeGateway struct {
	mu            sync.Mutex
	seenCreds     []integration.BolCredentials
	openOrders    []integration.MarketplaceOrder
	orderDetails  map[string]*integration.MarketplaceOrder
	detailErr     error
	itemsErr      error
	shipments     []integration.MarketplaceShipment
	shipmentsErr  error
	shipmentsBody json.RawMessage
	returnsBody   json.RawMessage
}

func (f *fakeGateway) record(creds integration.BolCredentials) {
	f.mu.Lock()
	f.seenCreds = append(f.seenCreds, creds)
	f.mu.Unlock()
}

func (f *fakeGateway) FetchOpenOrders(ctx context.Context, creds integration.BolCredentials, page int) ([]integration.MarketplaceOrder, error) {
	f.record(creds)
	if page > 1 {
		return nil, nil
	}
	return f.openOrders, nil
}

func (f *fakeGateway) FetchOrder(ctx context.Context, creds integration.BolCredentials, orderID string) (*integration.MarketplaceOrder, error) {
	f.record(creds)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if detail, ok := f.orderDetails[orderID]; ok {
		copied := *detail
		return &copied, nil
	}
	return nil, &integration.APIError{Status: 404, Detail: "order not found"}
}

func (f *fakeGateway) FetchOrderItems(ctx context.Context, creds integration.BolCredentials, orderID string) ([]integration.MarketplaceOrderItem, error) {
	f.record(creds)
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	if detail, ok := f.orderDetails[orderID]; ok {
		return detail.Items, nil
	}
	return nil, nil
}

func (f *fakeGateway) FetchShipments(ctx context.Context, creds integration.BolCredentials, orderID string) ([]integration.MarketplaceShipment, error) {
	f.record(creds)
	if f.shipmentsErr != nil {
		return nil, f.shipmentsErr
	}
	return f.shipments, nil
}

func (f *fakeGateway) CreateShipment(ctx context.Context, creds integration.BolCredentials, req integration.ShipmentRequest) (json.RawMessage, error) {
	f.record(creds)
	if f.shipmentsBody != nil {
		return f.shipmentsBody, nil
	}
	return json.RawMessage(`{"status":"PENDING"}`), nil
}

func (f *fakeGateway) FetchReturns(ctx context.Context, creds integration.BolCredentials, page int) (json.RawMessage, error) {
	f.record(creds)
	if f.returnsBody != nil {
		return f.returnsBody, nil
	}
	return json.RawMessage(`{"returns":[]}`), nil
}

func (f *fakeGateway) HandleReturn(ctx context.Context, creds integration.BolCredentials, returnID string, req integration.ReturnHandlingRequest) (json.RawMessage, error) {
	f.record(creds)
	return json.RawMessage(`{"status":"PENDING"}`), nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func bolIntegration(installationID int64, clientID string) *integration.Integration {
	return &integration.Integration{
		ID:             installationID,
		InstallationID: installationID,
		Platform:       integration.PlatformBol,
		Active:         true,
		Credentials:    `{"clientId":"` + clientID + `","clientSecret":"secret"}`,
	}
}

func openOrder42() integration.MarketplaceOrder {
	placed := time.Date(2024, 3, 1, 10, 22, 1, 0, time.UTC)
	return integration.MarketplaceOrder{
		OrderID:  "1043946570",
		PlacedAt: placed,
		Items: []integration.MarketplaceOrderItem{
			{EAN: "111", Quantity: 2, UnitPrice: decimal.RequireFromString("12.99"), FulfilmentStatus: "SHIPPED"},
		},
	}
}

func orderDetail42() *integration.MarketplaceOrder {
	order := openOrder42()
	order.FirstName = "Jans"
	order.Surname = "Janssen"
	order.Email = "jans@example.com"
	order.Street = "Dorpstraat"
	order.HouseNumber = "1"
	order.ZipCode = "1111ZZ"
	order.City = "Utrecht"
	order.CountryCode = "NL"
	order.Items[0].Title = "Dobbelspel"
	order.Items[0].SKU = "DOB-1"
	return &order
}

func newTestService(repo *fakeOrderRepo, gateway *fakeGateway, integrations map[int64]*integration.Integration) *Service {
	return NewService(&fakeIntegrationRepo{integrations: integrations}, repo, gateway, zap.NewNop())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestService_Reconcile_ImportsNewOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	gateway := &fakeGateway{
		openOrders:   []integration.MarketplaceOrder{openOrder42()},
		orderDetails: map[string]*integration.MarketplaceOrder{"1043946570": orderDetail42()},
	}
	svc := newTestService(repo, gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	result, err := svc.Reconcile(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &Result{Imported: 1, Updated: 0, Total: 1}, result)

	order, err := repo.FindByOrderNumber(context.Background(), "1043946570")
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.InstallationID)
	assert.Equal(t, "Jans Janssen", order.CustomerName)
	assert.Equal(t, "Dorpstraat 1, 1111ZZ, Utrecht", order.DeliveryAddr)
	assert.Equal(t, "NL", order.Country)
	assert.Equal(t, fulfilment.StatusShipped, order.Status)
	assert.Equal(t, "verzonden", order.OrderStatus)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25.98")))
	assert.Equal(t, 1, order.ItemCount)

	items := repo.items[order.ID]
	require.Len(t, items, 1)
	assert.Equal(t, "Dobbelspel", items["111"].Name)
	assert.Equal(t, 2, items["111"].Quantity)
}

func TestService_Reconcile_IsIdempotent(t *testing.T) {
	repo := newFakeOrderRepo()
	gateway := &fakeGateway{
		openOrders:   []integration.MarketplaceOrder{openOrder42()},
		orderDetails: map[string]*integration.MarketplaceOrder{"1043946570": orderDetail42()},
	}
	svc := newTestService(repo, gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	first, err := svc.Reconcile(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &Result{Imported: 1, Updated: 0, Total: 1}, first)

	second, err := svc.Reconcile(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &Result{Imported: 0, Updated: 1, Total: 1}, second)

	assert.Len(t, repo.orders, 1)
	order, _ := repo.FindByOrderNumber(context.Background(), "1043946570")
	assert.Len(t, repo.items[order.ID], 1, "items must not be duplicated")
}

func TestService_Reconcile_UsesInstallationCredentials(t *testing.T) {
	repo := newFakeOrderRepo()
	gateway := &fakeGateway{}
	svc := newTestService(repo, gateway, map[int64]*integration.Integration{
		42: bolIntegration(42, "client-42"),
		57: bolIntegration(57, "client-57"),
	})

	_, err := svc.Reconcile(context.Background(), 42)
	require.NoError(t, err)
	_, err = svc.Reconcile(context.Background(), 57)
	require.NoError(t, err)

	require.NotEmpty(t, gateway.seenCreds)
	assert.Equal(t, "client-42", gateway.seenCreds[0].ClientID)
	assert.Equal(t, "client-57", gateway.seenCreds[len(gateway.seenCreds)-1].ClientID)
}

func TestService_Reconcile_ShipmentPromotesOpenItems(t *testing.T) {
	open := openOrder42()
	open.Items[0].FulfilmentStatus = "OPEN"
	detail := orderDetail42()
	detail.Items[0].FulfilmentStatus = "OPEN"

	repo := newFakeOrderRepo()
	gateway := &fakeGateway{
		openOrders:   []integration.MarketplaceOrder{open},
		orderDetails: map[string]*integration.MarketplaceOrder{"1043946570": detail},
		shipments: []integration.MarketplaceShipment{
			{ShipmentID: "914", TransporterCode: "TNT", TrackAndTrace: "3SABC123"},
		},
	}
	svc := newTestService(repo, gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	_, err := svc.Reconcile(context.Background(), 42)
	require.NoError(t, err)

	order, err := repo.FindByOrderNumber(context.Background(), "1043946570")
	require.NoError(t, err)
	assert.Equal(t, fulfilment.StatusShipped, order.Status)
	assert.Equal(t, "verzonden", order.OrderStatus)
}

func TestService_Reconcile_ShipmentFetchFailureIsNotFatal(t *testing.T) {
	open := openOrder42()
	open.Items[0].FulfilmentStatus = "OPEN"

	repo := newFakeOrderRepo()
	gateway := &fakeGateway{
		openOrders:   []integration.MarketplaceOrder{open},
		orderDetails: map[string]*integration.MarketplaceOrder{"1043946570": orderDetail42()},
		shipmentsErr: &integration.APIError{Status: 500},
	}
	svc := newTestService(repo, gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	result, err := svc.Reconcile(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &Result{Imported: 1, Updated: 0, Total: 1}, result)
}

func TestService_Reconcile_DetailFailureIsNotFatal(t *testing.T) {
	repo := newFakeOrderRepo()
	gateway := &fakeGateway{
		openOrders: []integration.MarketplaceOrder{openOrder42()},
		detailErr:  &integration.APIError{Status: 500},
		itemsErr:   &integration.APIError{Status: 500},
	}
	svc := newTestService(repo, gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	result, err := svc.Reconcile(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &Result{Imported: 1, Updated: 0, Total: 1}, result)

	order, err := repo.FindByOrderNumber(context.Background(), "1043946570")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", order.CustomerName, "missing name parts fall back to placeholder")
	assert.Empty(t, order.DeliveryAddr)
}

func TestService_Reconcile_MissingIntegration(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), &fakeGateway{}, map[int64]*integration.Integration{})

	_, err := svc.Reconcile(context.Background(), 42)
	assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
}

func TestService_Reconcile_MalformedCredentialBlob(t *testing.T) {
	integ := bolIntegration(42, "x")
	integ.Credentials = `{"clientId":`
	svc := newTestService(newFakeOrderRepo(), &fakeGateway{}, map[int64]*integration.Integration{42: integ})

	_, err := svc.Reconcile(context.Background(), 42)
	assert.ErrorIs(t, err, integration.ErrInvalidCredentialBlob)
}

func TestService_Reconcile_PersistenceErrorAborts(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.createErr = errors.New("disk full")
	gateway := &fakeGateway{openOrders: []integration.MarketplaceOrder{openOrder42()}}
	svc := newTestService(repo, gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	_, err := svc.Reconcile(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_ShipOrder(t *testing.T) {
	t.Run("registers shipment and marks local order shipped", func(t *testing.T) {
		repo := newFakeOrderRepo()
		require.NoError(t, repo.Create(context.Background(), &fulfilment.Order{
			OrderNumber: "1043946570",
			Status:      fulfilment.StatusOpen,
			OrderStatus: "openstaand",
		}))

		gateway := &fakeGateway{shipmentsBody: json.RawMessage(`{"processStatusId":"1234567"}`)}
		svc := newTestService(repo, gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

		raw, err := svc.ShipOrder(context.Background(), 42, integration.ShipmentRequest{
			OrderID:         "1043946570",
			TransporterCode: "TNT",
			TrackAndTrace:   "3SABCD123",
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"processStatusId":"1234567"}`, string(raw))

		order, _ := repo.FindByOrderNumber(context.Background(), "1043946570")
		assert.Equal(t, fulfilment.StatusShipped, order.Status)
		assert.Equal(t, "verzonden", order.OrderStatus)
	})

	t.Run("order unknown locally still returns marketplace response", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), &fakeGateway{}, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

		raw, err := svc.ShipOrder(context.Background(), 42, integration.ShipmentRequest{OrderID: "unknown"})
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
	})
}

func TestService_GetReturns(t *testing.T) {
	gateway := &fakeGateway{returnsBody: json.RawMessage(`{"returns":[{"returnId":"12345"}]}`)}
	svc := newTestService(newFakeOrderRepo(), gateway, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	raw, err := svc.GetReturns(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"returns":[{"returnId":"12345"}]}`, string(raw))
}

func TestService_HandleReturn(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), &fakeGateway{}, map[int64]*integration.Integration{42: bolIntegration(42, "client-42")})

	raw, err := svc.HandleReturn(context.Background(), 42, "12345", integration.ReturnHandlingRequest{
		HandlingResult:   "RETURN_RECEIVED",
		QuantityReturned: 1,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"PENDING"}`, string(raw))
}

func TestDeriveDeliveryAddress(t *testing.T) {
	tests := []struct {
		name  string
		order integration.MarketplaceOrder
		want  string
	}{
		{
			"full address",
			integration.MarketplaceOrder{Street: "Dorpstraat", HouseNumber: "1", ZipCode: "1111ZZ", City: "Utrecht"},
			"Dorpstraat 1, 1111ZZ, Utrecht",
		},
		{
			"missing zip",
			integration.MarketplaceOrder{Street: "Dorpstraat", HouseNumber: "1", City: "Utrecht"},
			"Dorpstraat 1, Utrecht",
		},
		{
			"city only",
			integration.MarketplaceOrder{City: "Utrecht"},
			"Utrecht",
		},
		{
			"empty",
			integration.MarketplaceOrder{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveDeliveryAddress(tt.order))
		})
	}
}
