package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/tcxview/internal/metrics"
	"github.com/briangreenhill/tcxview/tcx"
)

type recorder struct {
	mu      sync.Mutex
	events  []string
	stats   *tcx.Statistics
	message string
	started chan struct{}
}

func newRecorder() *recorder {
	return &recorder{started: make(chan struct{}, 8)}
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) UploadOpened(context.Context) { r.add("opened") }
func (r *recorder) UploadStarted(_ context.Context, name string) {
	r.add("started:" + name)
	r.started <- struct{}{}
}
func (r *recorder) UploadSucceeded(_ context.Context, s *tcx.Statistics) {
	r.mu.Lock()
	r.stats = s
	r.mu.Unlock()
	r.add("succeeded")
}
func (r *recorder) UploadFailed(_ context.Context, msg string) {
	r.mu.Lock()
	r.message = msg
	r.mu.Unlock()
	r.add("failed")
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../tcx/testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestProcessSuccess(t *testing.T) {
	rec := newRecorder()
	reg := prometheus.NewRegistry()
	m := metrics.NewUploads(reg)
	p := NewProcessor(WithDelay(0), WithObserver(rec), WithMetrics(m))

	data := readFixture(t, "run.tcx")
	stats, err := p.Process(context.Background(), FromBytes("morning.tcx", data))
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, "morning.tcx", stats.FileName)
	assert.Equal(t, int64(len(data)), stats.FileSize)
	assert.Equal(t, "3.0 km", stats.Distance)
	assert.Equal(t, []string{"started:morning.tcx", "succeeded"}, rec.Events())
	assert.Same(t, stats, rec.stats)

	n, err := testutil.GatherAndCount(reg, "tcxview_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcessInvalidExtension(t *testing.T) {
	rec := newRecorder()
	p := NewProcessor(WithDelay(time.Hour), WithObserver(rec))

	stats, err := p.Process(context.Background(), FromBytes("run.gpx", []byte("<x/>")))
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, tcx.ErrInvalidExtension)
	assert.Equal(t, []string{"failed"}, rec.Events())
	assert.Equal(t, MessageInvalidExtension, rec.message)
}

func TestProcessMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", readFixture(t, "truncated.tcx")},
		{"not xml", []byte("this is not xml")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			p := NewProcessor(WithDelay(0), WithObserver(rec))

			stats, err := p.Process(context.Background(), FromBytes("bad.tcx", tt.data))
			assert.Nil(t, stats)
			assert.ErrorIs(t, err, tcx.ErrMalformedDocument)
			assert.Equal(t, []string{"started:bad.tcx", "failed"}, rec.Events())
			assert.Equal(t, MessageProcessingFailed, rec.message)
		})
	}
}

type failingFile struct{ err error }

func (failingFile) Name() string                  { return "broken.TCX" }
func (failingFile) Size() int64                   { return 0 }
func (f failingFile) Open() (io.ReadCloser, error) { return nil, f.err }

type panickingFile struct{}

func (panickingFile) Name() string                { return "boom.tcx" }
func (panickingFile) Size() int64                 { return 1 }
func (panickingFile) Open() (io.ReadCloser, error) { panic("reader exploded") }

func TestProcessNormalizesUnexpectedFailures(t *testing.T) {
	p := NewProcessor(WithDelay(0))

	_, err := p.Process(context.Background(), failingFile{err: errors.New("disk gone")})
	assert.ErrorIs(t, err, tcx.ErrMalformedDocument)

	_, err = p.Process(context.Background(), panickingFile{})
	assert.ErrorIs(t, err, tcx.ErrMalformedDocument)
	assert.Equal(t, MessageProcessingFailed, UserMessage(err))
}

func TestProcessDelayIsCancellable(t *testing.T) {
	rec := newRecorder()
	p := NewProcessor(WithDelay(time.Hour), WithObserver(rec))

	f := FromBytes("run.tcx", readFixture(t, "run.tcx"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Process(ctx, f)
		done <- err
	}()

	<-rec.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Process did not return after cancel")
	}
	assert.Equal(t, []string{"started:run.tcx", "failed"}, rec.Events())
	assert.Equal(t, MessageProcessingFailed, rec.message)
}

func TestProcessWaitsForDelay(t *testing.T) {
	p := NewProcessor(WithDelay(20 * time.Millisecond))
	start := time.Now()
	_, err := p.Process(context.Background(), FromBytes("run.tcx", readFixture(t, "run.tcx")))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestOpen(t *testing.T) {
	rec := newRecorder()
	NewProcessor(WithObserver(rec)).Open(context.Background())
	assert.Equal(t, []string{"opened"}, rec.Events())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{tcx.ErrInvalidExtension, MessageInvalidExtension},
		{tcx.ErrMalformedDocument, MessageProcessingFailed},
		{errors.New("anything else"), MessageProcessingFailed},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFromPath(t *testing.T) {
	f, err := FromPath("../../tcx/testdata/run.tcx")
	require.NoError(t, err)
	assert.Equal(t, "run.tcx", f.Name())
	assert.Greater(t, f.Size(), int64(0))

	_, err = FromPath("../../tcx/testdata/missing.tcx")
	assert.Error(t, err)
}
