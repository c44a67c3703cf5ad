package models

// StrategyRequest is the inbound request for one report.
type StrategyRequest struct {
	Prompt      string `json:"prompt" validate:"required"`
	ContentType string `json:"content_type" validate:"omitempty,oneof=shorts videos both"`
	RegionCode  string `json:"region_code"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessResponse wraps a report for the client.
type SuccessResponse struct {
	Status string         `json:"status"`
	Data   ReportDocument `json:"data"`
}

// ErrorResponse carries a human-readable message and optional diagnostics.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
