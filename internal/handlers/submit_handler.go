package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shipment-relay-service/internal/models"
	"shipment-relay-service/internal/services"
)

// SubmitHandler handles HTTP requests for the Orderdesk submit flow
type SubmitHandler struct {
	submitService *services.SubmitService
	logger        *logrus.Entry
}

// NewSubmitHandler creates a new submit handler
func NewSubmitHandler(submitService *services.SubmitService, logger *logrus.Entry) *SubmitHandler {
	return &SubmitHandler{
		submitService: submitService,
		logger:        logger,
	}
}

// Submit handles POST /submit
func (h *SubmitHandler) Submit(c *gin.Context) {
	orders, err := decodeOrders(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Error processing orders",
			Error:   err.Error(),
		})
		return
	}

	h.logger.WithField("count", len(orders)).Info("processing submit batch")

	results := h.submitService.ProcessBatch(c.Request.Context(), orders)

	hasErrors := false
	for _, result := range results {
		if result.Failed() {
			hasErrors = true
			break
		}
	}

	statusCode := http.StatusOK
	message := "Orders processed"
	if hasErrors {
		statusCode = http.StatusBadRequest
		message = "Not OKAY"
	}

	c.JSON(statusCode, models.SubmitBatchResponse{
		Message: message,
		Results: results,
	})
}

// decodeOrders reads the request body as either a single order object or an
// array of orders.
func decodeOrders(body io.Reader) ([]models.OrderPayload, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty request body")
	}

	if trimmed[0] == '[' {
		var orders []models.OrderPayload
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		return orders, nil
	}

	var order models.OrderPayload
	if err := json.Unmarshal(trimmed, &order); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return []models.OrderPayload{order}, nil
}
