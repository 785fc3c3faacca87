package services

import (
	"encoding/json"
	"fmt"

	"shipment-relay-service/internal/models"
)

// Simplify projects submit results down to the fields batch callers care
// about: order number plus the status, message, and execution time reported
// by the shipment POST. Failed records get status "error" with the failure
// reason as the message.
func Simplify(results []models.SubmitResult) []models.SimplifiedResult {
	simplified := make([]models.SimplifiedResult, 0, len(results))
	for _, result := range results {
		entry := models.SimplifiedResult{
			OrderNumber: result.Order.OrderNumber(),
		}
		if result.Failed() {
			entry.Status = "error"
			entry.Message = stringifyReason(result.Error)
		} else {
			entry.Status, entry.Message, entry.ExecutionTime = postResponseFields(result.PostResponse)
		}
		simplified = append(simplified, entry)
	}
	return simplified
}

// postResponseFields pulls status/message/execution_time out of a shipment
// POST body. Non-JSON or non-object bodies yield empty fields.
func postResponseFields(postResponse interface{}) (status, message, executionTime string) {
	raw, ok := postResponse.(json.RawMessage)
	if !ok {
		return "", "", ""
	}
	var decoded struct {
		Status        string `json:"status"`
		Message       string `json:"message"`
		ExecutionTime string `json:"execution_time"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", "", ""
	}
	return decoded.Status, decoded.Message, decoded.ExecutionTime
}

func stringifyReason(reason interface{}) string {
	switch v := reason.(type) {
	case string:
		return v
	case json.RawMessage:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
