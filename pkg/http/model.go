package http

// ErrorBody is the fault payload of every endpoint.
type ErrorBody struct {
	Error string `json:"error" example:"invalid input"`
}

// HealthResponse is returned by liveness endpoints.
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string `json:"code,omitempty" example:"ERR_GTE"`
	Field   string `json:"field,omitempty" example:"credit_score"`
	Message string `json:"message,omitempty" example:"credit_score must be greater than or equal to 300"`
}

// ListDataResponse represents a list response.
type ListDataResponse struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}
