package analytics

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/tcxview/internal/jobs"
)

// Enqueuer is the part of *asynq.Client the queue sink needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultEnqueueTimeout bounds a single enqueue attempt.
const DefaultEnqueueTimeout = 5 * time.Second

// QueueSink hands events to the worker through asynq. Record returns
// immediately; the enqueue runs in the background under a timeout.
type QueueSink struct {
	q       Enqueuer
	log     zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewQueueSink(q Enqueuer, log zerolog.Logger) *QueueSink {
	return &QueueSink{q: q, log: log, timeout: DefaultEnqueueTimeout}
}

// WithTimeout overrides the per-event enqueue timeout.
func (s *QueueSink) WithTimeout(d time.Duration) *QueueSink {
	s.timeout = d
	return s
}

func (s *QueueSink) Record(ctx context.Context, e Event) {
	task, err := newRecordTask(e)
	if err != nil {
		s.log.Error().Err(err).Str("event", e.Name).Msg("marshal analytics event")
		return
	}

	// delivery outlives the request that triggered it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.enqueue(ctx, task, e.Name)
	}()
}

// Wait blocks until every pending enqueue has finished or timed out.
func (s *QueueSink) Wait() {
	s.wg.Wait()
}

func (s *QueueSink) enqueue(ctx context.Context, task *asynq.Task, name string) {
	info, err := s.q.EnqueueContext(ctx, task,
		asynq.Queue(jobs.QueueAnalytics),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("event", name).Msg("[asynq] enqueue failed")
		return
	}
	s.log.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Str("event", name).Msg("[asynq] enqueued")
}

func newRecordTask(e Event) (*asynq.Task, error) {
	var props json.RawMessage
	if len(e.Props) > 0 {
		b, err := json.Marshal(e.Props)
		if err != nil {
			return nil, err
		}
		props = b
	}
	payload, err := json.Marshal(jobs.RecordEventPayload{
		EventID:    e.ID.String(),
		ClientID:   e.ClientID,
		Name:       e.Name,
		Props:      props,
		OccurredAt: e.At,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(jobs.TaskRecordEvent, payload), nil
}
