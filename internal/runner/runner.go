package runner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeoutSec = 5
	DefaultDelay      = 10 * time.Millisecond

	acceptHeader = "application/json, text/plain, */*"
)

type Runner struct {
	Cfg    Config
	Client *http.Client
}

func NewRunner(cfg Config) *Runner {
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = DefaultTimeoutSec
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4

	client := &http.Client{
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		Transport: t,
	}

	return &Runner{
		Cfg:    cfg,
		Client: client,
	}
}

// URL joins the configured base URL and an endpoint path.
func (r *Runner) URL(path string) string {
	return strings.TrimRight(r.Cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Classify maps a response status or transport error to the success and
// rate-limited flags.
func Classify(status int, err error) (success, rateLimited bool) {
	if err != nil {
		return false, false
	}
	if status == http.StatusTooManyRequests {
		return false, true
	}
	return true, false
}

// Do performs one GET against url. It never retries; every failure is folded
// into the returned result.
func (r *Runner) Do(ctx context.Context, url string, seq int, auth bool) RequestResult {
	res := RequestResult{Seq: seq, URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.TimeStamp = time.Now()
		res.Err = fmt.Errorf("build request: %w", err)
		res.Error = res.Err.Error()
		return res
	}
	r.setHeaders(req, auth)

	start := time.Now()
	resp, err := r.Client.Do(req)
	end := time.Now()

	res.TimeStamp = end
	res.Latency = end.Sub(start)

	if err != nil {
		res.Err = err
		res.Error = err.Error()
		return res
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	res.Status = resp.StatusCode
	res.Success, res.RateLimited = Classify(resp.StatusCode, nil)
	return res
}

func (r *Runner) setHeaders(req *http.Request, auth bool) {
	req.Header.Set("User-Agent", r.Cfg.UserAgent)
	if !auth {
		return
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+r.Cfg.Token)
	req.Header.Set("Content-Type", "application/json")
}
