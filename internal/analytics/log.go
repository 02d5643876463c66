package analytics

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Record(_ context.Context, e Event) {
	s.Log.Info().
		Str("event", e.Name).
		Str("event_id", e.ID.String()).
		Str("client_id", e.ClientID).
		Fields(e.Props).
		Msg("analytics")
}
