package runner

import (
	"time"

	"ratecheck/internal/stats"
)

type Config struct {
	BaseURL    string
	Token      string
	UserAgent  string
	TimeoutSec int
	Delay      time.Duration // pause between consecutive requests

	Scenarios []Scenario
}

// Scenario is one fixed test run against a single endpoint.
type Scenario struct {
	Name            string `json:"name"`
	Path            string `json:"path"`
	Total           int    `json:"total"`
	ExpectedSuccess int    `json:"expected_success"`
	Auth            bool   `json:"auth"`
}

// ExpectedFailures is the number of requests the server should reject.
func (s Scenario) ExpectedFailures() int {
	if s.Total < s.ExpectedSuccess {
		return 0
	}
	return s.Total - s.ExpectedSuccess
}

type RequestResult struct {
	Seq         int           `json:"seq"`
	URL         string        `json:"url"`
	TimeStamp   time.Time     `json:"timestamp"`
	Latency     time.Duration `json:"latency"`
	Status      int           `json:"status"`
	Success     bool          `json:"success"`
	RateLimited bool          `json:"rate_limited"`
	Err         error         `json:"-"`
	Error       string        `json:"error,omitempty"`
}

// Clock returns the timestamp in the HH:MM:SS.mmm form used in log lines.
func (r RequestResult) Clock() string {
	return r.TimeStamp.Format("15:04:05.000")
}

// Outcome is the fold of every RequestResult of one scenario run.
type Outcome struct {
	Scenario Scenario
	Start    time.Time
	End      time.Time
	Stats    *stats.Stats
	Verdict  Verdict
	Results  []RequestResult

	// Interrupted is set when the run stopped before Total requests.
	Interrupted bool
}

func NewOutcome(sc Scenario, start time.Time) *Outcome {
	return &Outcome{
		Scenario: sc,
		Start:    start,
		Stats:    stats.NewStats(),
		Results:  make([]RequestResult, 0, sc.Total),
	}
}

func (o *Outcome) Add(res RequestResult) {
	o.Results = append(o.Results, res)
	o.Stats.AddRequest(res.Success, res.RateLimited, res.Err != nil, res.Latency)
}

func (o *Outcome) Elapsed() time.Duration {
	return o.End.Sub(o.Start)
}

func (o *Outcome) SuccessCount() int {
	return int(o.Stats.SuccessCount())
}

func (o *Outcome) RateLimitedCount() int {
	return int(o.Stats.RateLimitedCount())
}

func (o *Outcome) ErrorCount() int {
	return int(o.Stats.ErrorCount())
}
