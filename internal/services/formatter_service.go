package services

import (
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"shipment-relay-service/internal/models"
)

// Cannon Hill export column names, after header normalization.
const (
	colPONumber       = "Cust_PO_Number"
	colShippedVia     = "Shipped_VIA"
	colDate           = "Date"
	colCustomerNumber = "Customer_Number"
	colTrackingNumber = "Tracking_Number"
)

// shipmentDateLayout renders dates the way Orderdesk expects them: an RFC 1123
// style UTC timestamp without the trailing " GMT".
const shipmentDateLayout = "Mon, 02 Jan 2006 15:04:05"

// dateLayouts are the formats seen in Cannon Hill exports, most common first.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"1/2/06",
	"Jan 2, 2006",
}

// FormatterService turns normalized Cannon Hill export rows into canonical
// shipment updates.
type FormatterService struct {
	logger *logrus.Entry
}

// NewFormatterService creates a new formatter service
func NewFormatterService(logger *logrus.Entry) *FormatterService {
	return &FormatterService{logger: logger}
}

// FormatCannonHillRows converts export rows into shipment updates. The
// formatter is best effort: rows without a usable PO number are dropped, and
// only the first row per sanitized PO number survives. Output order follows
// input order.
func (s *FormatterService) FormatCannonHillRows(rows []map[string]string) []models.ShipmentUpdate {
	seenOrderIDs := make(map[string]struct{})
	formatted := make([]models.ShipmentUpdate, 0, len(rows))

	for _, row := range rows {
		if row[colPONumber] == "" {
			continue
		}

		sanitized := SanitizePONumber(row[colPONumber])
		if sanitized == "" {
			continue
		}
		if _, seen := seenOrderIDs[sanitized]; seen {
			s.logger.WithField("po_number", sanitized).Debug("skipping duplicate PO number")
			continue
		}

		carrierCode, shipmentMethod := splitShippedVia(row[colShippedVia])

		formatted = append(formatted, models.ShipmentUpdate{
			ShipmentDate:   formatShipmentDate(row[colDate]),
			CarrierCode:    carrierCode,
			ShipmentMethod: MapShipmentMethod(shipmentMethod),
			TrackingNumber: row[colTrackingNumber],
			OrderNumber:    MapStoreID(row[colCustomerNumber]) + "-" + sanitized,
		})
		seenOrderIDs[sanitized] = struct{}{}
	}

	return formatted
}

// SanitizePONumber reduces a raw PO field to its digits: everything after the
// first "/" is dropped, then all non-digit characters are stripped.
func SanitizePONumber(po string) string {
	if idx := strings.Index(po, "/"); idx >= 0 {
		po = po[:idx]
	}

	var digits strings.Builder
	for _, r := range po {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	return strings.TrimSpace(digits.String())
}

// splitShippedVia splits a "CARRIER - METHOD" value into its trimmed parts.
// Only the first two "-"-separated tokens are read; a value without a "-"
// yields the whole value as the carrier and an empty method, and a missing
// value yields two empty strings.
func splitShippedVia(shippedVia string) (carrierCode, shipmentMethod string) {
	parts := strings.Split(shippedVia, "-")
	carrierCode = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		shipmentMethod = strings.TrimSpace(parts[1])
	}
	return carrierCode, shipmentMethod
}

// formatShipmentDate renders an export date as a UTC calendar string without
// the " GMT" suffix. Unparseable values pass through so a bad cell surfaces in
// the Orderdesk error rather than vanishing here.
func formatShipmentDate(raw string) string {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(shipmentDateLayout)
		}
	}
	return value
}
