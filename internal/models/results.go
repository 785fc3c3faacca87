package models

// SubmitResult is the outcome of one resolve-then-update round trip. Success
// entries carry both upstream bodies verbatim; failures carry Error instead,
// either a literal reason string or the upstream error body. Results are
// created once per record and never mutated afterwards.
type SubmitResult struct {
	Order        OrderPayload `json:"order"`
	GetResponse  interface{}  `json:"getResponse,omitempty"`
	PostResponse interface{}  `json:"postResponse,omitempty"`
	Error        interface{}  `json:"error,omitempty"`
}

// Failed reports whether the result is error-tagged.
func (r SubmitResult) Failed() bool {
	return r.Error != nil
}

// ForwardError describes a direct-forward failure. Status is set for upstream
// HTTP failures and zero for transport-level ones.
type ForwardError struct {
	Status  int         `json:"status,omitempty"`
	Message interface{} `json:"message"`
}

// ForwardResult is the outcome of forwarding one order to the single-order
// ship endpoint.
type ForwardResult struct {
	Order    OrderPayload  `json:"order"`
	Response interface{}   `json:"response,omitempty"`
	Error    *ForwardError `json:"error,omitempty"`
}

// SubmitBatchResponse is the envelope returned by the submit endpoint.
type SubmitBatchResponse struct {
	Message string         `json:"message"`
	Results []SubmitResult `json:"results"`
}

// ForwardBatchResponse is the envelope returned by the direct-forward endpoint.
type ForwardBatchResponse struct {
	Message string          `json:"message"`
	Results []ForwardResult `json:"results"`
}

// SimplifiedResult is the compact projection of a SubmitResult used when a
// batch outcome is relayed between stages; full request/response bodies are
// dropped to keep the payload small.
type SimplifiedResult struct {
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status,omitempty"`
	Message       string `json:"message,omitempty"`
	ExecutionTime string `json:"execution_time,omitempty"`
}

// CannonHillResponse is the envelope returned by the Cannon Hill import
// endpoint. CSVData is populated only when at least one record failed, so the
// raw export is available for diagnosis.
type CannonHillResponse struct {
	Message                 string              `json:"message"`
	FormattedCannonHillData []ShipmentUpdate    `json:"formattedCannonHillData"`
	SubmitResponse          []SimplifiedResult  `json:"submitResponse"`
	CSVData                 []map[string]string `json:"csvData,omitempty"`
}

// ErrorResponse is the generic error envelope.
type ErrorResponse struct {
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
}
