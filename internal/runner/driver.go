package runner

import (
	"context"
	"errors"
	"time"
)

// Reporter receives the progress of a scenario run.
type Reporter interface {
	ScenarioStarted(sc Scenario)
	Waiting(d time.Duration)
	Aligned(start time.Time)
	RequestDone(res RequestResult)
	ScenarioFinished(out *Outcome)
}

// Driver runs one scenario: align, send Total requests in order, judge.
type Driver struct {
	Runner   *Runner
	Aligner  Aligner
	Reporter Reporter
}

func NewDriver(r *Runner, rep Reporter) *Driver {
	return &Driver{
		Runner:   r,
		Aligner:  NewAligner(),
		Reporter: rep,
	}
}

// Run returns the outcome even when ctx is cancelled midway; the error is
// non-nil only when the run did not start or was cut short.
func (d *Driver) Run(ctx context.Context, sc Scenario) (*Outcome, error) {
	d.Reporter.ScenarioStarted(sc)

	start, err := d.Aligner.Align(ctx, d.Reporter.Waiting)
	if err != nil {
		return nil, err
	}
	d.Reporter.Aligned(start)

	url := d.Runner.URL(sc.Path)
	out := NewOutcome(sc, start)

	for i := 1; i <= sc.Total; i++ {
		if ctx.Err() != nil {
			out.Interrupted = true
			break
		}

		res := d.Runner.Do(ctx, url, i, sc.Auth)
		// a request cut short by cancellation says nothing about the server
		if errors.Is(res.Err, context.Canceled) && ctx.Err() != nil {
			out.Interrupted = true
			break
		}
		out.Add(res)
		d.Reporter.RequestDone(res)

		if err := Sleep(ctx, d.Runner.Cfg.Delay); err != nil {
			out.Interrupted = i < sc.Total
			break
		}
	}

	out.End = d.now()
	out.Verdict = Judge(out.SuccessCount(), out.RateLimitedCount(), sc.ExpectedSuccess)
	d.Reporter.ScenarioFinished(out)

	if out.Interrupted {
		return out, ctx.Err()
	}
	return out, nil
}

func (d *Driver) now() time.Time {
	if d.Aligner.Now != nil {
		return d.Aligner.Now()
	}
	return time.Now()
}
