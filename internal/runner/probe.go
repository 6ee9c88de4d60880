package runner

import (
	"context"
	"io"
	"net/http"
)

// ProbeResult is the answer of the connectivity check.
type ProbeResult struct {
	URL       string
	Reachable bool
	Status    int
	Err       error
}

// Probe sends one GET to /health. Any HTTP response counts as reachable, a
// transport failure does not.
func (r *Runner) Probe(ctx context.Context) ProbeResult {
	res := ProbeResult{URL: r.URL("/health")}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, nil)
	if err != nil {
		res.Err = err
		return res
	}
	req.Header.Set("User-Agent", r.Cfg.UserAgent)

	resp, err := r.Client.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	res.Reachable = true
	res.Status = resp.StatusCode
	return res
}
