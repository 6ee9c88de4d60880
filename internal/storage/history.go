package storage

import (
	"time"

	"github.com/google/uuid"

	"ratecheck/internal/runner"
)

type HistoryItem struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	BaseURL   string          `json:"base_url"`
	Scenario  runner.Scenario `json:"scenario"`
	Summary   RunSummary      `json:"summary"`
}

type RunSummary struct {
	TotalRequests uint64         `json:"total_requests"`
	Success       uint64         `json:"success"`
	RateLimited   uint64         `json:"rate_limited"`
	Errors        uint64         `json:"errors"`
	ElapsedSec    float64        `json:"elapsed_sec"`
	P50LatencyMs  float64        `json:"p50_latency_ms"`
	P99LatencyMs  float64        `json:"p99_latency_ms"`
	MaxLatencyMs  float64        `json:"max_latency_ms"`
	LimitedPct    float64        `json:"rate_limited_pct"`
	Verdict       runner.Verdict `json:"verdict"`
	Interrupted   bool           `json:"interrupted,omitempty"`
}

// Summarize reduces an outcome to the fields kept in history and exports.
func Summarize(out *runner.Outcome) RunSummary {
	s := out.Stats
	return RunSummary{
		TotalRequests: s.RequestCount(),
		Success:       s.SuccessCount(),
		RateLimited:   s.RateLimitedCount(),
		Errors:        s.ErrorCount(),
		ElapsedSec:    out.Elapsed().Seconds(),
		P50LatencyMs:  s.GetP50Service(),
		P99LatencyMs:  s.GetP99Service(),
		MaxLatencyMs:  s.MaxServiceMs(),
		LimitedPct:    s.RateLimitedRatio(),
		Verdict:       out.Verdict,
		Interrupted:   out.Interrupted,
	}
}

func NewHistoryItem(baseURL string, out *runner.Outcome) HistoryItem {
	return HistoryItem{
		ID:        uuid.New().String(),
		Timestamp: out.Start,
		BaseURL:   baseURL,
		Scenario:  out.Scenario,
		Summary:   Summarize(out),
	}
}
