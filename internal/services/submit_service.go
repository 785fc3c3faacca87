package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"shipment-relay-service/internal/clients"
	"shipment-relay-service/internal/config"
	"shipment-relay-service/internal/models"
)

// Per-record failure reasons. Upstream error bodies are embedded verbatim
// instead of these literals.
const (
	errMissingOrderNumber    = "Order payload is missing order_number"
	errInvalidStoreID        = "Invalid store ID"
	errMissingAPIKey         = "API key not found for the store"
	errNoOrdersFound         = "No orders found in GET response"
	errMissingOrderID        = "Order does not contain an id"
	errMissingShippingMethod = "Order does not contain shipping_method"
)

// SubmitService resolves inbound shipment records against Orderdesk and
// attaches tracking information: one GET to look the order up by source id,
// one POST to create the shipment. Records are processed strictly in order
// and every failure is converted into a per-record result, so a bad record
// never aborts the rest of the batch.
type SubmitService struct {
	client *clients.OrderdeskClient
	stores config.StoreRegistry
	logger *logrus.Entry
}

// NewSubmitService creates a new submit service
func NewSubmitService(client *clients.OrderdeskClient, stores config.StoreRegistry, logger *logrus.Entry) *SubmitService {
	return &SubmitService{
		client: client,
		stores: stores,
		logger: logger,
	}
}

// ProcessBatch submits each order sequentially, preserving input order in the
// returned results.
func (s *SubmitService) ProcessBatch(ctx context.Context, orders []models.OrderPayload) []models.SubmitResult {
	results := make([]models.SubmitResult, 0, len(orders))
	for _, order := range orders {
		results = append(results, s.processOrder(ctx, order))
	}
	return results
}

// processOrder performs one resolve-then-update round trip.
func (s *SubmitService) processOrder(ctx context.Context, payload models.OrderPayload) models.SubmitResult {
	orderNumber := payload.OrderNumber()
	if orderNumber == "" {
		return errorResult(payload, errMissingOrderNumber)
	}

	// The store id prefixes the order number; the full order number doubles
	// as the Orderdesk source id.
	storeID := payload.StoreID()
	sourceID := orderNumber

	log := s.logger.WithFields(logrus.Fields{
		"store_id":  storeID,
		"source_id": sourceID,
	})

	apiKey, known := s.stores.Lookup(storeID)
	if !known {
		log.Warn("order references an unknown store")
		return errorResult(payload, errInvalidStoreID)
	}
	if apiKey == "" {
		log.Warn("store has no API key configured")
		return errorResult(payload, errMissingAPIKey)
	}

	creds := clients.StoreCredentials{StoreID: storeID, APIKey: apiKey}

	getBody, status, err := s.client.LookupOrderBySourceID(ctx, creds, sourceID)
	if err != nil {
		return errorResult(payload, err.Error())
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		log.WithField("status", status).Warn("order lookup rejected by Orderdesk")
		return errorResult(payload, rawBody(getBody))
	}

	var lookup models.OrderLookupResponse
	if err := json.Unmarshal(getBody, &lookup); err != nil {
		return errorResult(payload, fmt.Sprintf("Invalid JSON in GET response: %v", err))
	}
	if len(lookup.Orders) == 0 {
		return errorResult(payload, errNoOrdersFound)
	}

	// No tie-break beyond "first": Orderdesk returns the best match first.
	order := lookup.Orders[0]
	orderID, ok := order.IDString()
	if !ok {
		return errorResult(payload, errMissingOrderID)
	}
	if order.ShippingMethod == "" {
		return errorResult(payload, errMissingShippingMethod)
	}

	carrierCode, shipmentMethod := splitShippingMethod(order.ShippingMethod)

	shipment := models.ShipmentRequest{
		TrackingNumber: payload.TrackingNumber(),
		CarrierCode:    carrierCode,
		ShipmentMethod: shipmentMethod,
		ShipmentDate:   payload.ShipmentDate(),
	}

	postBody, _, err := s.client.CreateShipment(ctx, creds, orderID, shipment)
	if err != nil {
		return errorResult(payload, err.Error())
	}

	log.Info("shipment submitted")

	// The POST body is embedded verbatim whatever its status; Orderdesk
	// reports per-shipment failures inside the body itself.
	return models.SubmitResult{
		Order:        payload,
		GetResponse:  rawBody(getBody),
		PostResponse: rawBody(postBody),
	}
}

// splitShippingMethod splits a remote "<carrier> <method>" value on spaces,
// reading only the first two tokens.
func splitShippingMethod(shippingMethod string) (carrierCode, shipmentMethod string) {
	parts := strings.Split(shippingMethod, " ")
	carrierCode = parts[0]
	if len(parts) > 1 {
		shipmentMethod = parts[1]
	}
	return carrierCode, shipmentMethod
}

// errorResult builds a failure entry for one record.
func errorResult(payload models.OrderPayload, reason interface{}) models.SubmitResult {
	return models.SubmitResult{
		Order: payload,
		Error: reason,
	}
}

// rawBody keeps an upstream body verbatim when it is valid JSON and falls
// back to a plain string otherwise, so encoding the result can never fail.
func rawBody(body []byte) interface{} {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
