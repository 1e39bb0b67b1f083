package models

import "time"

const (
	ConversionSucceeded = "succeeded"
	ConversionFailed    = "failed"
)

// ConversionRecord is the metadata kept about a finished /convert request.
type ConversionRecord struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Mode       string    `json:"mode"`
	FileName   string    `json:"file_name"`
	Size       int64     `json:"size"`
	Summarize  bool      `json:"summarize"`
	Status     string    `json:"status"`
	ErrorCode  string    `json:"error_code,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
