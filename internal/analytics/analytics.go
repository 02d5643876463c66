// Package analytics records user interaction events. Sinks are fire and
// forget: delivery problems are logged and never reach the caller.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event names.
const (
	RowClicked          = "row_clicked"
	ButtonClicked       = "button_clicked"
	SidePanelClosed     = "side_panel_closed"
	FilterApplied       = "filter_applied"
	TabChanged          = "tab_changed"
	ColorChanged        = "color_changed"
	FileUploadOpened    = "file_upload_opened"
	FileUploadStarted   = "file_upload_started"
	FileUploadSucceeded = "file_upload_succeeded"
	ViewDetailsClicked  = "view_details_clicked"
	MapReset            = "map_reset"
	SettingsOpened      = "settings_opened"
)

type Event struct {
	ID       uuid.UUID      `json:"id"`
	ClientID string         `json:"client_id"`
	Name     string         `json:"name"`
	Props    map[string]any `json:"props,omitempty"`
	At       time.Time      `json:"at"`
}

// NewEvent stamps a new event with a fresh ID and the current time.
func NewEvent(clientID, name string, props map[string]any) Event {
	return Event{
		ID:       uuid.New(),
		ClientID: clientID,
		Name:     name,
		Props:    props,
		At:       time.Now().UTC(),
	}
}

// Sink receives events.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// Multi fans an event out to every sink in order.
type Multi []Sink

func (m Multi) Record(ctx context.Context, e Event) {
	for _, s := range m {
		if s != nil {
			s.Record(ctx, e)
		}
	}
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, e Event)

func (f SinkFunc) Record(ctx context.Context, e Event) { f(ctx, e) }
