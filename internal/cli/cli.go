package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"ratecheck/internal/banner"
	"ratecheck/internal/export"
	"ratecheck/internal/runner"
	"ratecheck/internal/storage"
	"ratecheck/internal/tui/countdown"
)

type Options struct {
	Runner runner.Config

	// Countdown shows a progress bar instead of sleeping silently while
	// waiting for the next window.
	Countdown bool
	NoBanner  bool

	// Aligner overrides the wall-clock minute alignment when set.
	Aligner *runner.Aligner

	// OutPrefix enables CSV/JSON export per scenario.
	OutPrefix string

	// History, when set, receives one item per finished scenario.
	History *storage.Store

	Logger *zap.Logger
	Out    io.Writer
}

// Report is what a smoke run observed. Callers print it; it never changes
// the exit code.
type Report struct {
	Probe    runner.ProbeResult
	Outcomes []*runner.Outcome
}

// Start probes the server and, when it answers, runs every scenario in order.
func Start(ctx context.Context, opts Options) Report {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	console := NewConsole(opts.Out, opts.Logger)

	if !opts.NoBanner {
		fmt.Fprintln(opts.Out, banner.GetString())
	}
	fmt.Fprintf(opts.Out, "🚀 Testing rate limiting on %s\n", opts.Runner.BaseURL)
	fmt.Fprintf(opts.Out, "%s\n", strings.Repeat("=", 50))

	r := runner.NewRunner(opts.Runner)

	var report Report
	report.Probe = probe(ctx, r, opts.Out)
	if !report.Probe.Reachable {
		fmt.Fprintf(opts.Out, "\n❌ Server is not reachable\n")
		return report
	}
	fmt.Fprintln(opts.Out)

	d := runner.NewDriver(r, console)
	if opts.Aligner != nil {
		d.Aligner = *opts.Aligner
	}
	if opts.Countdown {
		d.Aligner.Sleep = countdown.Wait
	}

	for i, sc := range opts.Runner.Scenarios {
		fmt.Fprintf(opts.Out, "TEST %d: %s endpoint (limit: %d req/min)\n", i+1, sc.Path, sc.ExpectedSuccess)

		out, err := d.Run(ctx, sc)
		if out != nil {
			report.Outcomes = append(report.Outcomes, out)
			persist(opts, out)
		}
		if err != nil {
			opts.Logger.Warn("scenario stopped", zap.String("scenario", sc.Name), zap.Error(err))
			fmt.Fprintf(opts.Out, "\n🛑 Run stopped: %v\n", err)
			return report
		}
		fmt.Fprintln(opts.Out)
	}

	fmt.Fprintf(opts.Out, "🎉 All tests finished!\n")
	return report
}

func probe(ctx context.Context, r *runner.Runner, out io.Writer) runner.ProbeResult {
	fmt.Fprintf(out, "🔌 Testing server connectivity...\n")

	res := r.Probe(ctx)
	switch {
	case !res.Reachable:
		fmt.Fprintf(out, "   ❌ Cannot connect to server at %s\n", r.Cfg.BaseURL)
		fmt.Fprintf(out, "   %v\n", res.Err)
		fmt.Fprintf(out, "   Make sure the server is running\n")
	case res.Status == 200:
		fmt.Fprintf(out, "   ✅ Server is running at %s\n", r.Cfg.BaseURL)
	default:
		fmt.Fprintf(out, "   ⚠️  Server responded with status %d\n", res.Status)
	}
	return res
}

func persist(opts Options, out *runner.Outcome) {
	if opts.History != nil {
		item := storage.NewHistoryItem(opts.Runner.BaseURL, out)
		if err := opts.History.Save(item); err != nil {
			opts.Logger.Warn("save history", zap.String("path", opts.History.Path()), zap.Error(err))
		} else {
			opts.Logger.Debug("history saved", zap.String("id", item.ID))
		}
	}

	if opts.OutPrefix == "" || len(out.Results) == 0 {
		return
	}
	files, err := export.Outcome(opts.OutPrefix, out)
	if err != nil {
		opts.Logger.Warn("export results", zap.String("prefix", opts.OutPrefix), zap.Error(err))
		return
	}
	fmt.Fprintf(opts.Out, "💾 Reports saved to %s\n", strings.Join(files, ", "))
}
