package domain

import "time"

// NoRecordsMessage is reported when the source returned nothing to sync.
const NoRecordsMessage = "No records to sync."

// SyncResult is the contract returned to the caller of a sync invocation.
type SyncResult struct {
	Success bool   `json:"success"`
	Synced  int    `json:"synced"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is the failure form of the response contract.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// Run records the outcome of one sync invocation.
// It carries metadata only; synced records are never persisted locally.
type Run struct {
	ID         string    `json:"id"`
	Table      string    `json:"table"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Synced     int       `json:"synced"`
	Error      string    `json:"error,omitempty"`
}

// Succeeded reports whether the run finished without error.
func (r Run) Succeeded() bool {
	return r.Error == ""
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
