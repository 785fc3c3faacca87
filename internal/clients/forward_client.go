package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"shipment-relay-service/internal/models"
)

// ForwardClient posts order payloads to the single-order ship endpoint used
// by the direct-forward path.
type ForwardClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewForwardClient creates a new forward client
func NewForwardClient(endpoint string, timeout time.Duration, logger *logrus.Entry) *ForwardClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &ForwardClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ShipOrder forwards one payload. The raw response body and status code are
// returned; a non-nil error means the request never completed.
func (c *ForwardClient) ShipOrder(ctx context.Context, payload models.OrderPayload) ([]byte, int, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("order_number", payload.OrderNumber()).Warn("forward request failed")
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return respBody, resp.StatusCode, nil
}
