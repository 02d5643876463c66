package state

import (
	"context"
	"sync"
	"time"

	"github.com/briangreenhill/tcxview/internal/analytics"
	"github.com/briangreenhill/tcxview/tcx"
)

// Store owns one client's AppState. Dispatch is safe for concurrent use.
// The analytics sink is called after each transition and never affects it.
type Store struct {
	clientID string
	sink     analytics.Sink

	mu       sync.Mutex
	state    AppState
	lastSeen time.Time
}

// NewStore creates a store in the initial state. A nil sink drops events.
func NewStore(clientID string, sink analytics.Sink) *Store {
	if sink == nil {
		sink = analytics.Nop{}
	}
	return &Store{
		clientID: clientID,
		sink:     sink,
		state:    Initial(),
		lastSeen: time.Now(),
	}
}

// State returns a snapshot of the current state and marks the store as seen.
func (s *Store) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.state
}

// Dispatch applies a and returns the resulting state. Changing to the tab
// that is already current is a no-op with no event. A button click also
// switches to the tab for the button's content.
func (s *Store) Dispatch(ctx context.Context, a Action) AppState {
	s.mu.Lock()
	if ct, ok := a.(ChangeTab); ok && ct.TabName == s.state.CurrentTabName {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.state = Reduce(s.state, a)
	s.lastSeen = time.Now()
	st := s.state
	s.mu.Unlock()

	if name, props, ok := eventFor(a); ok {
		s.sink.Record(ctx, analytics.NewEvent(s.clientID, name, props))
	}

	if b, ok := a.(ButtonClicked); ok {
		return s.Dispatch(ctx, ChangeTab{TabName: string(ContentFor(b.ButtonName))})
	}
	return st
}

func eventFor(a Action) (string, map[string]any, bool) {
	switch a := a.(type) {
	case RowClicked:
		if a.Row == nil {
			return "", nil, false
		}
		return analytics.RowClicked, map[string]any{
			"id":          a.RowID,
			"title":       a.Row.Name,
			"description": a.Row.Description,
		}, true
	case ButtonClicked:
		return analytics.ButtonClicked, map[string]any{"id": a.ButtonID}, true
	case CloseSidePanel:
		return analytics.SidePanelClosed, nil, true
	case SetFilter:
		return analytics.FilterApplied, map[string]any{"text": a.FilterText, "results": a.ResultCount}, true
	case ChangeTab:
		return analytics.TabChanged, map[string]any{"tab": a.TabName}, true
	case SetPrimaryColor:
		return analytics.ColorChanged, map[string]any{"color": a.Color}, true
	case UploadOpened:
		return analytics.FileUploadOpened, nil, true
	case UploadStarted:
		return analytics.FileUploadStarted, map[string]any{"file": a.FileName}, true
	case UploadSucceeded:
		if a.Stats == nil {
			return analytics.FileUploadSucceeded, nil, true
		}
		return analytics.FileUploadSucceeded, map[string]any{"file": a.Stats.FileName, "size": a.Stats.FileSize}, true
	case ViewDetails:
		return analytics.ViewDetailsClicked, nil, true
	case MapReset:
		return analytics.MapReset, nil, true
	case OpenSettings:
		return analytics.SettingsOpened, nil, true
	}
	// upload failures are not tracked
	return "", nil, false
}

// UploadOpened and the other Upload methods let a Store observe the upload
// pipeline directly.
func (s *Store) UploadOpened(ctx context.Context) {
	s.Dispatch(ctx, UploadOpened{})
}

func (s *Store) UploadStarted(ctx context.Context, fileName string) {
	s.Dispatch(ctx, UploadStarted{FileName: fileName})
}

func (s *Store) UploadSucceeded(ctx context.Context, stats *tcx.Statistics) {
	s.Dispatch(ctx, UploadSucceeded{Stats: stats})
}

func (s *Store) UploadFailed(ctx context.Context, message string) {
	s.Dispatch(ctx, UploadFailed{Error: message})
}

func (s *Store) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Registry hands out one Store per client and forgets clients that have
// been idle too long.
type Registry struct {
	sink analytics.Sink

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry whose stores record to sink.
func NewRegistry(sink analytics.Sink) *Registry {
	return &Registry{sink: sink, stores: make(map[string]*Store)}
}

// Get returns the store for clientID, creating it on first use.
func (r *Registry) Get(clientID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[clientID]
	if !ok {
		s = NewStore(clientID, r.sink)
		r.stores[clientID] = s
	}
	return s
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep drops stores idle for longer than maxIdle and returns how many
// were dropped.
func (r *Registry) Sweep(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.stores {
		if s.idleSince(now) > maxIdle {
			delete(r.stores, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now, maxIdle)
		}
	}
}
