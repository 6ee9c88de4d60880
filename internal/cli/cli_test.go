package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratecheck/internal/config"
	"ratecheck/internal/dummy"
	"ratecheck/internal/runner"
	"ratecheck/internal/storage"
)

var windowStart = time.Date(2026, 10, 17, 9, 0, 1, 0, time.UTC)

func fixedNow() time.Time { return windowStart }

func newDummy(t *testing.T, general, api int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(dummy.NewServer(dummy.ServerConfig{
		GeneralLimit: general,
		APILimit:     api,
		Now:          fixedNow,
	}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func testOptions(baseURL string, out *bytes.Buffer, scenarios ...runner.Scenario) Options {
	return Options{
		Runner: runner.Config{
			BaseURL:   baseURL,
			Token:     config.DefaultToken,
			UserAgent: "ratecheck-test",
			Delay:     time.Millisecond,
			Scenarios: scenarios,
		},
		NoBanner: true,
		Aligner:  &runner.Aligner{Now: fixedNow},
		Out:      out,
	}
}

func countLines(s, marker string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, marker) {
			n++
		}
	}
	return n
}

func TestStart_AuthenticatedScenario(t *testing.T) {
	srv := newDummy(t, 200, 60)
	var buf bytes.Buffer

	sc := runner.Scenario{Name: "api", Path: "/api/auth/me", Total: 110, ExpectedSuccess: 60, Auth: true}
	report := Start(context.Background(), testOptions(srv.URL, &buf, sc))

	require.True(t, report.Probe.Reachable)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, runner.VerdictCorrect, report.Outcomes[0].Verdict)

	text := buf.String()
	assert.Equal(t, 60, countLines(text, "SUCCESS (200)"))
	assert.Equal(t, 50, countLines(text, "RATE LIMITED (429)"))
	assert.Contains(t, text, "🎯 VERDICT: CORRECT! 60 success, 50 rate limited")
	assert.Contains(t, text, "🎉 All tests finished!")
	assert.NotContains(t, text, "❌ ERROR:")
}

func TestStart_BothScenarios(t *testing.T) {
	srv := newDummy(t, 20, 6)
	var buf bytes.Buffer

	report := Start(context.Background(), testOptions(srv.URL, &buf,
		runner.Scenario{Name: "demo", Path: "/demo", Total: 25, ExpectedSuccess: 20},
		runner.Scenario{Name: "api", Path: "/api/auth/me", Total: 11, ExpectedSuccess: 6, Auth: true},
	))

	require.Len(t, report.Outcomes, 2)
	for _, out := range report.Outcomes {
		assert.Equal(t, runner.VerdictCorrect, out.Verdict, out.Scenario.Name)
	}

	text := buf.String()
	assert.Contains(t, text, "TEST 1: /demo endpoint (limit: 20 req/min)")
	assert.Contains(t, text, "TEST 2: /api/auth/me endpoint (limit: 6 req/min)")
	assert.Contains(t, text, "Expected: 20 success, 5 rate limited")
}

func TestStart_WrongThreshold(t *testing.T) {
	srv := newDummy(t, 15, 60)
	var buf bytes.Buffer

	report := Start(context.Background(), testOptions(srv.URL, &buf,
		runner.Scenario{Name: "demo", Path: "/demo", Total: 25, ExpectedSuccess: 20}))

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, runner.VerdictWrongThreshold, report.Outcomes[0].Verdict)
	assert.Contains(t, buf.String(), "⚠️  VERDICT: 15 success (expected 20), 10 rate limited")
}

func TestStart_NoLimiting(t *testing.T) {
	srv := newDummy(t, 100, 60)
	var buf bytes.Buffer

	Start(context.Background(), testOptions(srv.URL, &buf,
		runner.Scenario{Name: "demo", Path: "/demo", Total: 10, ExpectedSuccess: 10}))

	assert.Contains(t, buf.String(), "⚠️  VERDICT: 10 success but nothing was rate limited")
}

func TestStart_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	report := Start(context.Background(), testOptions(url, &buf,
		runner.Scenario{Name: "demo", Path: "/demo", Total: 10, ExpectedSuccess: 10}))

	assert.False(t, report.Probe.Reachable)
	assert.Empty(t, report.Outcomes)
	assert.Contains(t, buf.String(), "❌ Cannot connect to server at "+url)
	assert.Contains(t, buf.String(), "❌ Server is not reachable")
	assert.NotContains(t, buf.String(), "TEST 1")
}

func TestStart_HealthNon200StillRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	report := Start(context.Background(), testOptions(srv.URL, &buf,
		runner.Scenario{Name: "demo", Path: "/demo", Total: 3, ExpectedSuccess: 2}))

	assert.Contains(t, buf.String(), "⚠️  Server responded with status 404")
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, runner.VerdictWrongThreshold, report.Outcomes[0].Verdict)
}

func TestStart_HistoryAndExport(t *testing.T) {
	srv := newDummy(t, 5, 60)
	dir := t.TempDir()

	st, err := storage.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer st.Close()

	var buf bytes.Buffer
	opts := testOptions(srv.URL, &buf, runner.Scenario{Name: "demo", Path: "/demo", Total: 8, ExpectedSuccess: 5})
	opts.History = st
	opts.OutPrefix = filepath.Join(dir, "run")
	Start(context.Background(), opts)

	items, err := st.List(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(5), items[0].Summary.Success)
	assert.Equal(t, uint64(3), items[0].Summary.RateLimited)
	assert.Equal(t, runner.VerdictCorrect, items[0].Summary.Verdict)

	_, err = os.Stat(filepath.Join(dir, "run_demo.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "run_demo_summary.json"))
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "💾 Reports saved to")
}

func TestStart_Cancelled(t *testing.T) {
	srv := newDummy(t, 200, 60)
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	opts := testOptions(srv.URL, &buf,
		runner.Scenario{Name: "demo", Path: "/demo", Total: 10, ExpectedSuccess: 10},
		runner.Scenario{Name: "api", Path: "/api/auth/me", Total: 10, ExpectedSuccess: 10, Auth: true},
	)
	// second 30 forces a wait, which the sleep cancels
	opts.Aligner = &runner.Aligner{
		Now: func() time.Time { return windowStart.Add(29 * time.Second) },
		Sleep: func(context.Context, time.Duration) error {
			cancel()
			return context.Canceled
		},
	}

	report := Start(ctx, opts)
	assert.Empty(t, report.Outcomes)
	assert.Contains(t, buf.String(), "⏰ Waiting 31 seconds")
	assert.Contains(t, buf.String(), "🛑 Run stopped")
	assert.NotContains(t, buf.String(), "TEST 2")
}
