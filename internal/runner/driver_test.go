package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	started  []Scenario
	waits    []time.Duration
	results  []RequestResult
	finished []*Outcome
}

func (r *recorder) ScenarioStarted(sc Scenario) { r.started = append(r.started, sc) }
func (r *recorder) Waiting(d time.Duration) { r.waits = append(r.waits, d) }
func (r *recorder) Aligned(time.Time) {}
func (r *recorder) RequestDone(res RequestResult) { r.results = append(r.results, res) }
func (r *recorder) ScenarioFinished(out *Outcome) { r.finished = append(r.finished, out) }

// cappedServer answers 200 for the first k requests and 429 afterwards.
func cappedServer(t *testing.T, k int64, check func(*http.Request)) *httptest.Server {
	t.Helper()
	var n int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		if atomic.AddInt64(&n, 1) > k {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDriver(baseURL string, rep Reporter) *Driver {
	r := NewRunner(Config{BaseURL: baseURL, Token: "tok", UserAgent: "ratecheck-test", Delay: time.Millisecond})
	d := NewDriver(r, rep)
	d.Aligner = Aligner{Now: func() time.Time { return time.Now().Truncate(time.Minute) }}
	return d
}

func TestDriver_CapReproducesMinKN(t *testing.T) {
	tests := []struct {
		name     string
		k, total int
	}{
		{"cap below total", 5, 12},
		{"cap equals total", 8, 8},
		{"cap above total", 20, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := cappedServer(t, int64(tt.k), nil)
			rec := &recorder{}
			d := newTestDriver(srv.URL, rec)

			out, err := d.Run(context.Background(), Scenario{Name: "demo", Path: "/demo", Total: tt.total, ExpectedSuccess: tt.k})
			require.NoError(t, err)

			assert.Equal(t, min(tt.k, tt.total), out.SuccessCount())
			assert.Equal(t, max(0, tt.total-tt.k), out.RateLimitedCount())
			assert.Zero(t, out.ErrorCount())
			assert.Len(t, rec.results, tt.total)
			assert.Empty(t, rec.waits)

			for i, res := range rec.results {
				assert.Equal(t, i+1, res.Seq)
			}
		})
	}
}

func TestDriver_AuthenticatedScenario(t *testing.T) {
	srv := cappedServer(t, 60, func(r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
	})
	rec := &recorder{}
	d := newTestDriver(srv.URL, rec)

	sc := Scenario{Name: "api", Path: "/api/auth/me", Total: 110, ExpectedSuccess: 60, Auth: true}
	out, err := d.Run(context.Background(), sc)
	require.NoError(t, err)

	var ok, limited int
	for _, res := range rec.results {
		if res.Success {
			ok++
		}
		if res.RateLimited {
			limited++
		}
	}
	assert.Equal(t, 60, ok)
	assert.Equal(t, 50, limited)
	assert.Equal(t, VerdictCorrect, out.Verdict)
	require.Len(t, rec.finished, 1)
	assert.Same(t, out, rec.finished[0])
	assert.Equal(t, []Scenario{sc}, rec.started)
	assert.False(t, out.End.Before(out.Start))
}

func TestDriver_NoLimiting(t *testing.T) {
	srv := cappedServer(t, 100, nil)
	d := newTestDriver(srv.URL, &recorder{})

	out, err := d.Run(context.Background(), Scenario{Path: "/demo", Total: 10, ExpectedSuccess: 10})
	require.NoError(t, err)
	assert.Equal(t, VerdictNoLimiting, out.Verdict)
}

func TestDriver_TransportErrorsDoNotAbort(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &recorder{}
	d := newTestDriver(url, rec)

	out, err := d.Run(context.Background(), Scenario{Path: "/demo", Total: 3, ExpectedSuccess: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, out.ErrorCount())
	assert.Len(t, rec.results, 3)
	assert.Equal(t, VerdictIncorrect, out.Verdict)
}

func TestDriver_Cancelled(t *testing.T) {
	srv := cappedServer(t, 100, nil)
	d := newTestDriver(srv.URL, &recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := d.Run(ctx, Scenario{Path: "/demo", Total: 10, ExpectedSuccess: 10})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)
	assert.True(t, out.Interrupted)
	assert.Zero(t, out.Stats.RequestCount())
}

func TestDriver_CancelledInFlightIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&n, 1) > 2 {
			cancel()
			<-r.Context().Done()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	rec := &recorder{}
	d := newTestDriver(srv.URL, rec)

	out, err := d.Run(ctx, Scenario{Path: "/demo", Total: 10, ExpectedSuccess: 10})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)
	assert.True(t, out.Interrupted)
	assert.Equal(t, uint64(2), out.Stats.SuccessCount())
	assert.Zero(t, out.Stats.ErrorCount())
	assert.Len(t, rec.results, 2)
}
