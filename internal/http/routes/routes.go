package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/tcxview/internal/config"
	"github.com/briangreenhill/tcxview/internal/db"
	appmw "github.com/briangreenhill/tcxview/internal/http/middleware"
	"github.com/briangreenhill/tcxview/internal/metrics"
	"github.com/briangreenhill/tcxview/internal/state"
	"github.com/briangreenhill/tcxview/internal/upload"
	"github.com/briangreenhill/tcxview/tcx"
)

// Events reads stored analytics events.
type Events interface {
	ListRecentEvents(ctx context.Context, arg db.ListRecentEventsParams) ([]db.AnalyticsEvent, error)
	CountEventsByName(ctx context.Context, clientID string) ([]db.CountEventsByNameRow, error)
}

type Server struct {
	Router  *chi.Mux
	Sess    *scs.SessionManager
	Q       Events // nil without a database
	States  *state.Registry
	Uploads *upload.Supervisor
	MaxBody int64

	log  zerolog.Logger
	cors *cors.Cors
}

type ServerOptions struct {
	Sess     *scs.SessionManager
	Q        Events
	States   *state.Registry
	Cfg      *config.Config
	Log      zerolog.Logger
	Metrics  *metrics.Uploads
	Gatherer prometheus.Gatherer
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Log))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chimw.Recoverer)

	loc, _ := opts.Cfg.Location() // checked by config.Validate
	states := opts.States
	if states == nil {
		states = state.NewRegistry(nil)
	}
	proc := upload.NewProcessor(
		upload.WithDelay(opts.Cfg.Upload.ProcessingDelay),
		upload.WithLogger(opts.Log.With().Str("component", "upload").Logger()),
		upload.WithObserver(storeObserver{states: states}),
		upload.WithMetrics(opts.Metrics),
		upload.WithAggregateOptions(tcx.WithLocation(loc)),
	)

	s := &Server{
		Router:  r,
		Sess:    opts.Sess,
		Q:       opts.Q,
		States:  states,
		Uploads: upload.NewSupervisor(proc),
		MaxBody: opts.Cfg.Upload.MaxBytes,
		log:     opts.Log,
		cors: cors.New(cors.Options{
			AllowedOrigins:   opts.Cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(cr chi.Router) {
		cr.Use(s.Sess.LoadAndSave)
		cr.Use(appmw.ClientID(s.Sess))
		cr.Use(appmw.RequireClientID)

		cr.Post("/uploads/open", s.handleUploadOpen)
		cr.Post("/uploads", s.handleUpload)
		cr.Get("/uploads/latest", s.handleLatest)
		cr.Get("/uploads/latest/route", s.handleLatestRoute)
		cr.Get("/uploads/latest/rows", s.handleLatestRows)
		cr.Get("/state", s.handleState)
		cr.Post("/actions", s.handleAction)
		cr.Get("/content", s.handleContent)
		cr.Get("/events", s.handleEvents)
	})

	return s
}

// Handler returns the router wrapped for cross-origin browser clients.
func (s *Server) Handler() http.Handler {
	return s.cors.Handler(s.Router)
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// storeObserver forwards upload signals to the requesting client's store.
type storeObserver struct {
	states *state.Registry
}

func (o storeObserver) store(ctx context.Context) *state.Store {
	return o.states.Get(appmw.ClientIDFrom(ctx))
}

func (o storeObserver) UploadOpened(ctx context.Context) { o.store(ctx).UploadOpened(ctx) }
func (o storeObserver) UploadStarted(ctx context.Context, name string) {
	o.store(ctx).UploadStarted(ctx, name)
}
func (o storeObserver) UploadSucceeded(ctx context.Context, stats *tcx.Statistics) {
	o.store(ctx).UploadSucceeded(ctx, stats)
}
func (o storeObserver) UploadFailed(ctx context.Context, msg string) {
	o.store(ctx).UploadFailed(ctx, msg)
}

func (s *Server) clientStore(r *http.Request) *state.Store {
	return s.States.Get(appmw.ClientIDFrom(r.Context()))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func (s *Server) handleUploadOpen(w http.ResponseWriter, r *http.Request) {
	s.clientStore(r).UploadOpened(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// formFile adapts a multipart file part to upload.File.
type formFile struct {
	fh *multipart.FileHeader
}

func (f formFile) Name() string { return f.fh.Filename }
func (f formFile) Size() int64  { return f.fh.Size }
func (f formFile) Open() (io.ReadCloser, error) {
	return f.fh.Open()
}

const multipartMemory = 8 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	if r.ContentLength > s.MaxBody {
		writeError(w, r, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		log.Info().Err(err).Msg("bad multipart body")
		writeError(w, r, http.StatusBadRequest, "multipart form with a file field required")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, r, http.StatusBadRequest, "file required")
		return
	}
	if len(files) > 1 {
		log.Debug().Int("files", len(files)).Msg("multiple files, using the first")
	}

	clientID := appmw.ClientIDFrom(r.Context())
	stats, err := s.Uploads.Submit(r.Context(), clientID, formFile{fh: files[0]})
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, stats)
	case errors.Is(err, upload.ErrSuperseded):
		writeError(w, r, http.StatusConflict, "superseded by a newer upload")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info().Err(err).Msg("client went away during upload")
	default:
		writeError(w, r, http.StatusBadRequest, upload.UserMessage(err))
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	stats := s.clientStore(r).State().UploadedStats
	if stats == nil {
		writeError(w, r, http.StatusNotFound, "no activity uploaded")
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

type routeResponse struct {
	Points []tcx.RoutePoint  `json:"points"`
	Bounds *tcx.BoundingBox `json:"bounds,omitempty"`
}

func (s *Server) handleLatestRoute(w http.ResponseWriter, r *http.Request) {
	stats := s.clientStore(r).State().UploadedStats
	if stats == nil {
		writeError(w, r, http.StatusNotFound, "no activity uploaded")
		return
	}
	resp := routeResponse{Points: stats.Route}
	if b, ok := tcx.Bounds(stats.Route); ok {
		resp.Bounds = &b
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleLatestRows(w http.ResponseWriter, r *http.Request) {
	stats := s.clientStore(r).State().UploadedStats
	if stats == nil {
		writeError(w, r, http.StatusNotFound, "no activity uploaded")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]tcx.Row{
		"summary": tcx.SummaryRows(stats),
		"details": tcx.DetailRows(stats),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.clientStore(r).State())
}

type actionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid action body")
		return
	}
	a, err := state.Decode(req.Type, req.Payload)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, s.clientStore(r).Dispatch(r.Context(), a))
}

type contentResponse struct {
	ContentType state.ContentType `json:"contentType"`
	FilterText  string            `json:"filterText"`
	Total       int               `json:"total"`
	Rows        []state.Row       `json:"rows"`
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	st := s.clientStore(r).State()
	all := state.Rows(st.CurrentContentType)
	writeJSON(w, r, http.StatusOK, contentResponse{
		ContentType: st.CurrentContentType,
		FilterText:  st.FilterText,
		Total:       len(all),
		Rows:        state.Filter(all, st.FilterText),
	})
}

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.Q == nil {
		writeError(w, r, http.StatusServiceUnavailable, "analytics storage not configured")
		return
	}
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}

	clientID := appmw.ClientIDFrom(r.Context())
	events, err := s.Q.ListRecentEvents(r.Context(), db.ListRecentEventsParams{ClientID: clientID, Limit: int32(limit)})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list events")
		writeError(w, r, http.StatusInternalServerError, "could not load events")
		return
	}
	counts, err := s.Q.CountEventsByName(r.Context(), clientID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("count events")
		writeError(w, r, http.StatusInternalServerError, "could not load events")
		return
	}

	totals := make(map[string]int64, len(counts))
	for _, c := range counts {
		totals[c.Name] = c.Total
	}
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView{
			ID:         e.ID.String(),
			Name:       e.Name,
			Props:      json.RawMessage(e.Props),
			OccurredAt: e.OccurredAt.Time,
		})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"events": views,
		"totals": totals,
	})
}

type eventView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Props      json.RawMessage `json:"props,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}
