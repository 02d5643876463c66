package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/tcxview/internal/db"
)

// EventStore persists analytics events.
type EventStore interface {
	InsertEvent(ctx context.Context, arg db.InsertEventParams) error
}

// RecordEventHandler stores one analytics event per task. Payloads that
// cannot be decoded are dropped without retry; store errors are retried.
func RecordEventHandler(store EventStore, log zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p RecordEventPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			log.Error().Err(err).Msg("bad record_event payload")
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		id, err := uuid.Parse(p.EventID)
		if err != nil {
			log.Error().Err(err).Str("event_id", p.EventID).Msg("bad event id")
			return fmt.Errorf("parse event id: %v: %w", err, asynq.SkipRetry)
		}

		props := []byte(p.Props)
		if len(props) == 0 {
			props = []byte("{}")
		}
		start := time.Now()
		if err := store.InsertEvent(ctx, db.InsertEventParams{
			ID:         id,
			ClientID:   p.ClientID,
			Name:       p.Name,
			Props:      props,
			OccurredAt: pgtype.Timestamptz{Time: p.OccurredAt, Valid: !p.OccurredAt.IsZero()},
		}); err != nil {
			log.Warn().Err(err).Str("event", p.Name).Msg("insert event failed, will retry")
			return fmt.Errorf("insert event: %w", err)
		}
		log.Debug().
			Str("event", p.Name).
			Str("client_id", p.ClientID).
			Dur("duration", time.Since(start)).
			Msg("event recorded")
		return nil
	}
}
