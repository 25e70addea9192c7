package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown sink driver or secrets provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// Sync Errors.

	// ErrConfiguration indicates a required configuration value is absent.
	ErrConfiguration = errors.New("configuration error")

	// ErrSourceFetch indicates the source system rejected a request or was unreachable.
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrSinkWrite indicates the sink rejected the batch.
	ErrSinkWrite = errors.New("sink write failed")

	// ErrPageLimit indicates pagination exceeded the configured maximum page count.
	ErrPageLimit = errors.New("page limit exceeded")
)

// ConfigurationError reports missing configuration values.
// It is raised before any network call and is never retried.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return "Missing required environment variables."
	}
	return fmt.Sprintf("Missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// SourceFetchError reports a failed fetch from the source system.
// The whole fetch is aborted; partial results are discarded.
type SourceFetchError struct {
	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int
	Err        error
}

func (e *SourceFetchError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSourceFetch) succeed.
func (e *SourceFetchError) Is(target error) bool {
	return target == ErrSourceFetch
}

// SinkWriteError reports a rejected upsert batch.
type SinkWriteError struct {
	Table   string
	Message string
	Err     error
}

func (e *SinkWriteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("Sink upsert error: %s", msg)
}

// Unwrap returns the underlying cause.
func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSinkWrite) succeed.
func (e *SinkWriteError) Is(target error) bool {
	return target == ErrSinkWrite
}

// NewSinkWriteError wraps a store failure for the given table.
func NewSinkWriteError(table string, err error) *SinkWriteError {
	return &SinkWriteError{Table: table, Message: err.Error(), Err: err}
}
