package bol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/domain/integration"
	"github.com/fulfilhub/backend/internal/infrastructure/cache"
)

// maxResponseSize is the maximum allowed response size from the bol.com API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// contentType is the versioned media type of the retailer API
const contentType = "application/vnd.retailer.v10+json"

// tokenTTLMargin is subtracted from the token lifetime reported by the
// marketplace so a cached token is never used right at its expiry.
const tokenTTLMargin = 60 * time.Second

// ErrMissingBaseURL indicates an incomplete client configuration
var ErrMissingBaseURL = errors.New("bol: token URL and API base URL are required")

// Config holds the bol.com client configuration
type Config struct {
	TokenURL   string
	APIBaseURL string
	Timeout    time.Duration
	PageSize   int
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.TokenURL == "" || c.APIBaseURL == "" {
		return ErrMissingBaseURL
	}
	return nil
}

// Client implements the BolGateway port against the bol.com retailer API.
// It is credential-agnostic: callers pass the installation's credentials on
// every call, and access tokens are cached per credential fingerprint.
type Client struct {
	config     *Config
	httpClient *http.Client
	tokens     cache.TokenCache
	logger     *zap.Logger
}

// NewClient creates a new bol.com client
func NewClient(config *Config, tokens cache.TokenCache, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.PageSize == 0 {
		config.PageSize = 50
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		tokens:     tokens,
		logger:     logger.Named("bol"),
	}, nil
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// Authenticate returns an access token for the credential pair, reusing a
// cached token when one is available.
func (c *Client) Authenticate(ctx context.Context, creds integration.BolCredentials) (string, error) {
	fingerprint := creds.Fingerprint()

	if token, ok, err := c.tokens.Get(ctx, fingerprint); err == nil && ok {
		return token, nil
	} else if err != nil {
		c.logger.Warn("token cache read failed", zap.Error(err))
	}

	return c.requestToken(ctx, creds)
}

// requestToken performs the client-credentials grant against the token
// endpoint and caches the result.
func (c *Client) requestToken(ctx context.Context, creds integration.BolCredentials) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("bol: failed to create token request: %w", err)
	}
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bol: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("bol: failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", integration.ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &integration.AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("bol: failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", &integration.AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	ttl := time.Duration(token.ExpiresIn)*time.Second - tokenTTLMargin
	if ttl > 0 {
		if err := c.tokens.Set(ctx, creds.Fingerprint(), token.AccessToken, ttl); err != nil {
			c.logger.Warn("token cache write failed", zap.Error(err))
		}
	}

	return token.AccessToken, nil
}

// ---------------------------------------------------------------------------
// Request plumbing
// ---------------------------------------------------------------------------

// call performs an authenticated request against the retailer API. A 401
// invalidates the cached token and retries once with a fresh one; a 403
// means the marketplace account is inactive.
func (c *Client) call(ctx context.Context, creds integration.BolCredentials, method, path string, query url.Values, payload any) ([]byte, error) {
	token, err := c.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	body, status, err := c.doRequest(ctx, token, method, path, query, payload)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		// Token expired between cache read and use. Drop it and retry once.
		if err := c.tokens.Invalidate(ctx, creds.Fingerprint()); err != nil {
			c.logger.Warn("token cache invalidation failed", zap.Error(err))
		}
		token, err = c.requestToken(ctx, creds)
		if err != nil {
			return nil, err
		}
		body, status, err = c.doRequest(ctx, token, method, path, query, payload)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, integration.ErrInvalidCredentials
		}
	}

	if status == http.StatusForbidden {
		return nil, integration.ErrAccountInactive
	}
	if status < 200 || status > 299 {
		apiErr := &integration.APIError{Status: status}
		var problem apiErrorResponse
		if jsonErr := json.Unmarshal(body, &problem); jsonErr == nil {
			apiErr.Detail = problem.Detail
		}
		return nil, apiErr
	}

	return body, nil
}

// doRequest performs a single HTTP request and returns body and status
func (c *Client) doRequest(ctx context.Context, token, method, path string, query url.Values, payload any) ([]byte, int, error) {
	endpoint := c.config.APIBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("bol: failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("bol: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", contentType)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("bol: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("bol: failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// FetchOpenOrders returns one page of open FBR orders
func (c *Client) FetchOpenOrders(ctx context.Context, creds integration.BolCredentials, page int) ([]integration.MarketplaceOrder, error) {
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("status", "OPEN")
	query.Set("fulfilment-method", "FBR")
	query.Set("page", strconv.Itoa(page))

	body, err := c.call(ctx, creds, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var resp ordersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bol: failed to parse orders response: %w", err)
	}

	orders := make([]integration.MarketplaceOrder, 0, len(resp.Orders))
	for _, summary := range resp.Orders {
		orders = append(orders, summary.toDomain())
	}
	return orders, nil
}

// FetchOrder returns the order detail for one marketplace order
func (c *Client) FetchOrder(ctx context.Context, creds integration.BolCredentials, orderID string) (*integration.MarketplaceOrder, error) {
	body, err := c.call(ctx, creds, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, nil)
	if err != nil {
		return nil, err
	}

	var detail orderDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("bol: failed to parse order response: %w", err)
	}

	order := detail.toDomain()
	return &order, nil
}

// FetchOrderItems returns the item detail for one marketplace order
func (c *Client) FetchOrderItems(ctx context.Context, creds integration.BolCredentials, orderID string) ([]integration.MarketplaceOrderItem, error) {
	body, err := c.call(ctx, creds, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/order-items", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp orderItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bol: failed to parse order items response: %w", err)
	}

	items := make([]integration.MarketplaceOrderItem, 0, len(resp.OrderItems))
	for _, item := range resp.OrderItems {
		items = append(items, item.toDomain())
	}
	return items, nil
}

// ---------------------------------------------------------------------------
// Shipment Operations
// ---------------------------------------------------------------------------

// FetchShipments returns the shipments registered for one marketplace order
func (c *Client) FetchShipments(ctx context.Context, creds integration.BolCredentials, orderID string) ([]integration.MarketplaceShipment, error) {
	query := url.Values{}
	query.Set("order-id", orderID)

	body, err := c.call(ctx, creds, http.MethodGet, "/shipments", query, nil)
	if err != nil {
		return nil, err
	}

	var resp shipmentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bol: failed to parse shipments response: %w", err)
	}

	shipments := make([]integration.MarketplaceShipment, 0, len(resp.Shipments))
	for _, s := range resp.Shipments {
		shipments = append(shipments, s.toDomain())
	}
	return shipments, nil
}

// CreateShipment registers a shipment on the marketplace and returns the
// marketplace response unmodified
func (c *Client) CreateShipment(ctx context.Context, creds integration.BolCredentials, req integration.ShipmentRequest) (json.RawMessage, error) {
	payload := shipmentRequest{OrderID: req.OrderID}
	if req.TransporterCode != "" || req.TrackAndTrace != "" {
		payload.Transport = &transportInfo{
			TransporterCode: req.TransporterCode,
			TrackAndTrace:   req.TrackAndTrace,
		}
	}

	body, err := c.call(ctx, creds, http.MethodPut, "/orders/shipment", nil, payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ---------------------------------------------------------------------------
// Return Operations
// ---------------------------------------------------------------------------

// FetchReturns returns one page of marketplace returns unmodified
func (c *Client) FetchReturns(ctx context.Context, creds integration.BolCredentials, page int) (json.RawMessage, error) {
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("handled", "false")
	query.Set("fulfilment-method", "FBR")
	query.Set("page", strconv.Itoa(page))

	body, err := c.call(ctx, creds, http.MethodGet, "/returns", query, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// HandleReturn submits a return-handling decision and returns the
// marketplace response unmodified
func (c *Client) HandleReturn(ctx context.Context, creds integration.BolCredentials, returnID string, req integration.ReturnHandlingRequest) (json.RawMessage, error) {
	payload := returnHandlingRequest{
		HandlingResult:   req.HandlingResult,
		QuantityReturned: req.QuantityReturned,
	}

	body, err := c.call(ctx, creds, http.MethodPut, "/returns/"+url.PathEscape(returnID), nil, payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Ensure Client implements the BolGateway interface
var _ integration.BolGateway = (*Client)(nil)
