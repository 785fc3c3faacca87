package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"shipment-relay-service/internal/clients"
	"shipment-relay-service/internal/models"
)

// ForwardService relays order payloads to the downstream shipping endpoint.
// Source ids are scrubbed of redo/reship suffixes before sending and every
// outbound payload is forced onto UPS Ground.
type ForwardService struct {
	client *clients.ForwardClient
	logger *logrus.Entry
}

// NewForwardService creates a new forward service
func NewForwardService(client *clients.ForwardClient, logger *logrus.Entry) *ForwardService {
	return &ForwardService{
		client: client,
		logger: logger,
	}
}

// ForwardBatch sends each order downstream sequentially. The returned results
// mirror the input order; ok reports whether every record succeeded.
func (s *ForwardService) ForwardBatch(ctx context.Context, orders []models.OrderPayload) (results []models.ForwardResult, ok bool) {
	ok = true
	results = make([]models.ForwardResult, 0, len(orders))
	for _, order := range orders {
		result := s.forwardOrder(ctx, order)
		if result.Error != nil {
			ok = false
		}
		results = append(results, result)
	}
	return results, ok
}

func (s *ForwardService) forwardOrder(ctx context.Context, order models.OrderPayload) models.ForwardResult {
	sanitizeSourceID(order)

	outbound := order.Clone()
	outbound["carrier_code"] = "UPS"
	outbound["shipment_method"] = "Ground"
	delete(outbound, "shipment_date")

	body, status, err := s.client.ShipOrder(ctx, outbound)
	if err != nil {
		s.logger.WithField("order_number", order.OrderNumber()).WithError(err).Warn("forward request failed")
		return models.ForwardResult{
			Order: order,
			Error: &models.ForwardError{Message: err.Error()},
		}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		s.logger.WithFields(logrus.Fields{
			"order_number": order.OrderNumber(),
			"status":       status,
		}).Warn("forward rejected downstream")
		return models.ForwardResult{
			Order: order,
			Error: &models.ForwardError{Status: status, Message: rawBody(body)},
		}
	}

	return models.ForwardResult{
		Order:    order,
		Response: rawBody(body),
	}
}

// sanitizeSourceID strips the first " REDO" and "-RESHIP" marker from the
// order's source_id, mutating the payload so the echoed order reflects the
// value actually sent.
func sanitizeSourceID(order models.OrderPayload) {
	raw, ok := order["source_id"].(string)
	if !ok {
		return
	}
	cleaned := strings.Replace(raw, " REDO", "", 1)
	cleaned = strings.Replace(cleaned, "-RESHIP", "", 1)
	order["source_id"] = cleaned
}
