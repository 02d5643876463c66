package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/tcxview/internal/metrics"
	"github.com/briangreenhill/tcxview/tcx"
)

// DefaultDelay is the pacing pause between accepting a file and parsing it.
const DefaultDelay = 1500 * time.Millisecond

// User-facing messages for the two failure kinds.
const (
	MessageInvalidExtension = "Please upload a .tcx file"
	MessageProcessingFailed = "Error processing TCX file. Please try again."
)

// UserMessage maps a pipeline error to the message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, tcx.ErrInvalidExtension):
		return MessageInvalidExtension
	default:
		return MessageProcessingFailed
	}
}

// Processor runs one upload at a time through validation, the pacing delay,
// parsing and aggregation. It holds no state between calls.
type Processor struct {
	delay    time.Duration
	log      zerolog.Logger
	observer Observer
	metrics  *metrics.Uploads
	aggOpts  []tcx.Option
}

// Option configures a Processor.
type Option func(*Processor)

// WithDelay overrides the pacing delay. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(p *Processor) { p.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// WithObserver sets the receiver of upload signals.
func WithObserver(o Observer) Option {
	return func(p *Processor) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Uploads) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithAggregateOptions passes options through to tcx.Aggregate.
func WithAggregateOptions(opts ...tcx.Option) Option {
	return func(p *Processor) { p.aggOpts = append(p.aggOpts, opts...) }
}

// NewProcessor creates a processor with the default delay and no-op
// observer, logger and metrics.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		delay:    DefaultDelay,
		log:      zerolog.Nop(),
		observer: NopObserver{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Open signals that the user opened the file picker.
func (p *Processor) Open(ctx context.Context) {
	p.observer.UploadOpened(ctx)
}

// Process validates, parses and aggregates f. It returns an error wrapping
// tcx.ErrInvalidExtension or tcx.ErrMalformedDocument, or the context error
// when ctx is cancelled before the result is delivered. A cancelled upload
// still fires UploadFailed unless its cause is ErrSuperseded.
func (p *Processor) Process(ctx context.Context, f File) (*tcx.Statistics, error) {
	name := f.Name()
	log := p.log.With().Str("file", name).Int64("size", f.Size()).Logger()

	if err := tcx.ValidateFileName(name); err != nil {
		log.Info().Msg("upload rejected: invalid extension")
		p.metrics.Outcome(metrics.OutcomeInvalidExtension)
		p.observer.UploadFailed(ctx, MessageInvalidExtension)
		return nil, err
	}

	p.observer.UploadStarted(ctx, name)
	log.Debug().Dur("delay", p.delay).Msg("upload started")

	if err := p.wait(ctx); err != nil {
		log.Info().Err(err).Msg("upload cancelled during delay")
		return nil, p.cancelled(ctx, err)
	}

	start := time.Now()
	stats, err := p.parse(f)

	// a cancelled upload never delivers, even if parsing finished
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Info().Err(ctxErr).Msg("upload cancelled, dropping result")
		return nil, p.cancelled(ctx, ctxErr)
	}

	if err != nil {
		log.Warn().Err(err).Msg("upload failed")
		p.metrics.Outcome(metrics.OutcomeMalformed)
		p.observer.UploadFailed(ctx, MessageProcessingFailed)
		return nil, err
	}

	elapsed := time.Since(start)
	log.Info().
		Dur("elapsed", elapsed).
		Int("route_points", len(stats.Route)).
		Str("distance", stats.Distance).
		Msg("upload processed")
	p.metrics.Outcome(metrics.OutcomeSuccess)
	p.metrics.Processed(elapsed, len(stats.Route))
	p.observer.UploadSucceeded(ctx, stats)
	return stats, nil
}

// cancelled settles an upload whose context ended before delivery. A
// superseded upload stays silent since its replacement owns the outcome;
// any other cancellation, such as a client disconnect, is reported as a
// failure so observers do not stay in the uploading state.
func (p *Processor) cancelled(ctx context.Context, err error) error {
	p.metrics.Outcome(metrics.OutcomeCancelled)
	if !errors.Is(context.Cause(ctx), ErrSuperseded) {
		p.observer.UploadFailed(context.WithoutCancel(ctx), MessageProcessingFailed)
	}
	return err
}

func (p *Processor) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// parse reads and aggregates f. Every failure, panics included, comes back
// as tcx.ErrMalformedDocument.
func (p *Processor) parse(f File) (stats *tcx.Statistics, err error) {
	defer func() {
		if r := recover(); r != nil {
			stats, err = nil, fmt.Errorf("%w: panic: %v", tcx.ErrMalformedDocument, r)
		}
	}()

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", tcx.ErrMalformedDocument, err)
	}
	defer rc.Close() //nolint:errcheck

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", tcx.ErrMalformedDocument, err)
	}

	doc, err := tcx.ParseDocument(string(raw))
	if err != nil {
		return nil, err
	}
	return tcx.Aggregate(doc, f.Name(), f.Size(), p.aggOpts...), nil
}
