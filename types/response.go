package types

// ApiResponse is the envelope every endpoint replies with.
type ApiResponse struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	// Conflict flags soft scheduling conflicts: the write succeeded but
	// the request needs human review.
	Conflict bool `json:"conflict,omitempty"`
}

// ErrorResponse is a reduced envelope for failures with field details.
type ErrorResponse struct {
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Fields  []string `json:"fields,omitempty"`
}
