package jobs

import (
	"encoding/json"
	"time"
)

const (
	TaskRecordEvent = "analytics:record_event"
	QueueAnalytics  = "analytics"
)

type RecordEventPayload struct {
	EventID    string          `json:"event_id"`
	ClientID   string          `json:"client_id"`
	Name       string          `json:"name"`
	Props      json.RawMessage `json:"props,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
