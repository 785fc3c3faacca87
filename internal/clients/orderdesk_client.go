package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"shipment-relay-service/internal/models"
)

// StoreCredentials authenticates a request against one Orderdesk store.
type StoreCredentials struct {
	StoreID string
	APIKey  string
}

// OrderdeskClient handles communication with the Orderdesk v2 API. Every call
// is a single attempt with an explicit timeout; callers decide what a failure
// means for their batch.
type OrderdeskClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *logrus.Entry
}

// NewOrderdeskClient creates a new Orderdesk API client
func NewOrderdeskClient(baseURL string, timeout time.Duration, logger *logrus.Entry) *OrderdeskClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &OrderdeskClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(10), 5), // Orderdesk allows bursts but throttles sustained traffic
		logger:      logger,
	}
}

// LookupOrderBySourceID fetches orders filtered by source id. The raw response
// body and status code are returned so the caller can both decode the order
// list and embed the upstream body verbatim in its results.
func (c *OrderdeskClient) LookupOrderBySourceID(ctx context.Context, creds StoreCredentials, sourceID string) ([]byte, int, error) {
	endpoint := fmt.Sprintf("%s/api/v2/orders?source_id=%s", c.baseURL, url.QueryEscape(sourceID))
	return c.doRequest(ctx, http.MethodGet, endpoint, creds, nil)
}

// CreateShipment attaches tracking/carrier information to a resolved order.
func (c *OrderdeskClient) CreateShipment(ctx context.Context, creds StoreCredentials, orderID string, shipment models.ShipmentRequest) ([]byte, int, error) {
	endpoint := fmt.Sprintf("%s/api/v2/orders/%s/shipments", c.baseURL, url.PathEscape(orderID))
	return c.doRequest(ctx, http.MethodPost, endpoint, creds, shipment)
}

// doRequest performs an authenticated HTTP request against Orderdesk
func (c *OrderdeskClient) doRequest(ctx context.Context, method, endpoint string, creds StoreCredentials, body interface{}) ([]byte, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("ORDERDESK-STORE-ID", creds.StoreID)
	req.Header.Set("ORDERDESK-API-KEY", creds.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method":   method,
			"store_id": creds.StoreID,
		}).Warn("Orderdesk request failed")
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return respBody, resp.StatusCode, nil
}
