package upload

import (
	"context"
	"errors"
	"sync"

	"github.com/briangreenhill/tcxview/tcx"
)

// ErrSuperseded is returned to an upload that was replaced by a newer one
// for the same key before it finished.
var ErrSuperseded = errors.New("upload superseded by a newer upload")

// Supervisor keeps at most one upload in flight per key. Submitting a new
// file for a key cancels the previous upload for that key, so a slow older
// upload can never deliver after a newer one.
type Supervisor struct {
	proc *Processor

	mu       sync.Mutex
	seq      uint64
	inflight map[string]flight
}

type flight struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// NewSupervisor creates a supervisor around proc.
func NewSupervisor(proc *Processor) *Supervisor {
	return &Supervisor{
		proc:     proc,
		inflight: make(map[string]flight),
	}
}

// Submit processes f for key, cancelling any upload already in flight for
// the same key.
func (s *Supervisor) Submit(ctx context.Context, key string, f File) (*tcx.Statistics, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	s.seq++
	id := s.seq
	if prev, ok := s.inflight[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.inflight[key] = flight{id: id, cancel: cancel}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if cur, ok := s.inflight[key]; ok && cur.id == id {
			delete(s.inflight, key)
		}
		s.mu.Unlock()
		cancel(nil)
	}()

	stats, err := s.proc.Process(ctx, f)
	if err != nil && errors.Is(context.Cause(ctx), ErrSuperseded) {
		return nil, ErrSuperseded
	}
	return stats, err
}

// InFlight reports whether an upload is running for key.
func (s *Supervisor) InFlight(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[key]
	return ok
}
