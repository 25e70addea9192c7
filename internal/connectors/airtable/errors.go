package airtable

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken indicates no bearer token was supplied.
	ErrMissingToken = errors.New("airtable: token is required")

	// ErrInvalidResponse indicates a 2xx response whose body could not be decoded.
	ErrInvalidResponse = errors.New("airtable: invalid response body")
)

// APIError represents a non-success response from the source API.
type APIError struct {
	StatusCode int
	StatusText string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Airtable API error: %d %s - %s", e.StatusCode, e.StatusText, e.Message)
}

// IsNotFound checks if the error indicates a missing base or table.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized checks if the error indicates an invalid token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// errorBody covers both error shapes the API returns:
// {"error": {"type": "...", "message": "..."}} and {"error": "NOT_FOUND"}.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

// parseErrorMessage extracts a human readable message from an error body.
// Returns the status text when the body carries no usable message.
func parseErrorMessage(body []byte, statusCode int) string {
	fallback := http.StatusText(statusCode)
	if fallback == "" {
		fallback = "Unknown error"
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Error) == 0 {
		return fallback
	}

	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(eb.Error, &detailed); err == nil {
		if detailed.Message != "" {
			return detailed.Message
		}
		if detailed.Type != "" {
			return detailed.Type
		}
		return fallback
	}

	var code string
	if err := json.Unmarshal(eb.Error, &code); err == nil && strings.TrimSpace(code) != "" {
		return code
	}
	return fallback
}
