package models

import (
	"encoding/json"
	"strings"
)

// OrderPayload is a single inbound order record. Payloads arrive as free-form
// JSON from warehouse systems, so the full object is kept and echoed back in
// results; the typed accessors below cover the fields the relay itself reads.
type OrderPayload map[string]interface{}

// stringField returns the named field when it is a string, "" otherwise.
func (p OrderPayload) stringField(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// OrderNumber returns the order_number field ("<store_id>-<source_suffix>").
func (p OrderPayload) OrderNumber() string {
	return p.stringField("order_number")
}

// TrackingNumber returns the tracking_number field.
func (p OrderPayload) TrackingNumber() string {
	return p.stringField("tracking_number")
}

// ShipmentDate returns the shipment_date field.
func (p OrderPayload) ShipmentDate() string {
	return p.stringField("shipment_date")
}

// SourceID returns the source_id field.
func (p OrderPayload) SourceID() string {
	return p.stringField("source_id")
}

// StoreID returns the portion of order_number before the first "-".
// The full order_number doubles as the Orderdesk source id.
func (p OrderPayload) StoreID() string {
	orderNumber := p.OrderNumber()
	if idx := strings.Index(orderNumber, "-"); idx >= 0 {
		return orderNumber[:idx]
	}
	return orderNumber
}

// Clone returns a shallow copy of the payload.
func (p OrderPayload) Clone() OrderPayload {
	clone := make(OrderPayload, len(p))
	for k, v := range p {
		clone[k] = v
	}
	return clone
}

// ShipmentUpdate is a canonical shipment-update record in Orderdesk field
// naming, independent of vendor export quirks.
type ShipmentUpdate struct {
	ShipmentDate   string `json:"shipment_date"`
	CarrierCode    string `json:"carrier_code"`
	ShipmentMethod string `json:"shipment_method"`
	TrackingNumber string `json:"tracking_number"`
	OrderNumber    string `json:"order_number"`
}

// AsPayload converts the canonical record into the payload shape consumed by
// the submit pipeline.
func (u ShipmentUpdate) AsPayload() OrderPayload {
	return OrderPayload{
		"shipment_date":   u.ShipmentDate,
		"carrier_code":    u.CarrierCode,
		"shipment_method": u.ShipmentMethod,
		"tracking_number": u.TrackingNumber,
		"order_number":    u.OrderNumber,
	}
}

// RemoteOrder is an order resource returned by the Orderdesk lookup endpoint.
// Only the fields the relay reads are decoded; ids are kept raw since the API
// has returned both numeric and string ids.
type RemoteOrder struct {
	ID             json.RawMessage `json:"id"`
	ShippingMethod string          `json:"shipping_method"`
}

// IDString renders the order id for use in a URL path. The second return is
// false when the id is absent, null, an empty string, or numeric zero; any of
// those would otherwise produce a malformed shipments path.
func (o RemoteOrder) IDString() (string, bool) {
	raw := strings.TrimSpace(string(o.ID))
	switch raw {
	case "", "null", `""`, "0":
		return "", false
	}
	return strings.Trim(raw, `"`), true
}

// OrderLookupResponse is the body of a successful Orderdesk order lookup.
type OrderLookupResponse struct {
	Orders []RemoteOrder `json:"orders"`
}

// ShipmentRequest is the body posted to the Orderdesk shipments endpoint.
type ShipmentRequest struct {
	TrackingNumber string `json:"tracking_number"`
	CarrierCode    string `json:"carrier_code"`
	ShipmentMethod string `json:"shipment_method,omitempty"`
	ShipmentDate   string `json:"shipment_date,omitempty"`
}
