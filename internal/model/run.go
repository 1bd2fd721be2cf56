package model

import "time"

// RunStatus represents the current state of an export run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one export invocation for the run-history store.
type Run struct {
	ID           string    `json:"id"`
	InputPath    string    `json:"input_path"`
	TickerCount  int       `json:"ticker_count"`
	FetchedCount int       `json:"fetched_count"`
	OutputPath   string    `json:"output_path,omitempty"`
	Status       RunStatus `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
