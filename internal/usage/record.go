// Package usage records per-call metadata for auditing: which provider
// answered, how big the file was, how long the call took, and how it
// ended. It never sees the question, the answer, or the file content;
// the gateway's statelessness invariant binds content, not telemetry.
package usage

import (
	"time"

	"github.com/google/uuid"
)

// Record is one call's worth of metadata.
type Record struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RequestID  string    `db:"request_id" json:"request_id"`
	Provider   string    `db:"provider" json:"provider"`
	Model      string    `db:"model" json:"model,omitempty"`
	FileBytes  int64     `db:"file_bytes" json:"file_bytes"`
	Outcome    string    `db:"outcome" json:"outcome"` // "ok" or a gateway error kind
	HTTPStatus int       `db:"http_status" json:"http_status"`
	GatewayMs  int64     `db:"gateway_ms" json:"gateway_ms"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NewRecord stamps identity and time on a record.
func NewRecord(requestID string) *Record {
	return &Record{
		ID:        uuid.New(),
		RequestID: requestID,
		CreatedAt: time.Now().UTC(),
	}
}
