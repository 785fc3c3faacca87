package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shipment-relay-service/internal/models"
	"shipment-relay-service/internal/services"
)

// ForwardHandler handles HTTP requests for the direct-forward flow
type ForwardHandler struct {
	forwardService *services.ForwardService
	logger         *logrus.Entry
}

// NewForwardHandler creates a new forward handler
func NewForwardHandler(forwardService *services.ForwardService, logger *logrus.Entry) *ForwardHandler {
	return &ForwardHandler{
		forwardService: forwardService,
		logger:         logger,
	}
}

// Forward handles POST /
func (h *ForwardHandler) Forward(c *gin.Context) {
	orders, err := decodeOrders(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	h.logger.WithField("count", len(orders)).Info("forwarding order batch")

	results, ok := h.forwardService.ForwardBatch(c.Request.Context(), orders)

	statusCode := http.StatusOK
	message := "All orders processed successfully"
	if !ok {
		statusCode = http.StatusBadRequest
		message = "Some orders failed to process"
	}

	c.JSON(statusCode, models.ForwardBatchResponse{
		Message: message,
		Results: results,
	})
}
