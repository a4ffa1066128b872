package model

import (
	"time"
)

// WebhookEvent records a billing event that was applied successfully. Replays
// of a recorded event id short-circuit to an acknowledgement without touching
// subscription state.
type WebhookEvent struct {
	ID          string    `db:"id" json:"id"`
	EventType   string    `db:"event_type" json:"eventType"`
	ProcessedAt time.Time `db:"processed_at" json:"processedAt"`
}
