package postgrest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-success response from PostgREST.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest: %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest: %d: %s", e.StatusCode, e.Message)
}

// parseError decodes the {code, message, details, hint} error body.
// The message falls back to the raw body, then the status text.
func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		apiErr.Details = payload.Details
		apiErr.Hint = payload.Hint
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
