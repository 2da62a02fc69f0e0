package entity

import (
	"time"

	"github.com/google/uuid"
)

// Extraction is one recorded run of the extractor, kept for audit and export.
type Extraction struct {
	ID           uuid.UUID      `json:"id"`
	RequestID    string         `json:"request_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Provider     string         `json:"provider"`
	Model        string         `json:"model"`
	ParseMode    string         `json:"parse_mode"`
	InputText    string         `json:"input_text"`
	RawOutput    string         `json:"raw_output,omitempty"`
	Record       PropertyRecord `json:"record"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	ElapsedMs    int64          `json:"elapsed_ms"`
}
