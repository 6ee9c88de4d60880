package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"ratecheck/internal/runner"
	"ratecheck/internal/tui/styles"
)

// Console prints scenario progress as emoji-tagged lines.
type Console struct {
	Out    io.Writer
	Logger *zap.Logger
}

func NewConsole(out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{Out: out, Logger: logger}
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.Out, format, a...)
}

func (c *Console) ScenarioStarted(sc runner.Scenario) {
	c.printf("%s\n", styles.Title.Render("🧪 Testing "+sc.Path))
	c.printf("   Expected: %d success, %d rate limited\n", sc.ExpectedSuccess, sc.ExpectedFailures())
	c.printf("   Total requests: %d\n", sc.Total)
}

func (c *Console) Waiting(d time.Duration) {
	c.printf("⏰ Waiting %d seconds to start at second 1 of the next minute...\n", int(d.Seconds()))
}

func (c *Console) Aligned(start time.Time) {
	c.printf("✅ Starting at %s (second %d)\n", start.Format("15:04:05"), start.Second())
}

func (c *Console) RequestDone(res runner.RequestResult) {
	switch {
	case res.Err != nil:
		c.printf("   ❌ Request %3d [%s]: %s\n", res.Seq, res.Clock(), styles.Error.Render("ERROR - "+res.Error))
	case res.RateLimited:
		c.printf("   🛑 Request %3d [%s]: %s\n", res.Seq, res.Clock(), styles.Limited.Render("RATE LIMITED (429)"))
	default:
		c.printf("   ✅ Request %3d [%s]: %s\n", res.Seq, res.Clock(), styles.Success.Render(fmt.Sprintf("SUCCESS (%d)", res.Status)))
	}

	c.Logger.Debug("request done",
		zap.Int("seq", res.Seq),
		zap.String("url", res.URL),
		zap.Int("status", res.Status),
		zap.Duration("latency", res.Latency),
		zap.Error(res.Err),
	)
}

func (c *Console) ScenarioFinished(out *runner.Outcome) {
	sc := out.Scenario
	ok, limited, errs := out.SuccessCount(), out.RateLimitedCount(), out.ErrorCount()

	c.printf("\n%s\n", styles.Title.Render("📊 RESULTS "+sc.Path))
	c.printf("   Total requests: %d\n", sc.Total)
	if out.Interrupted {
		c.printf("   %s\n", styles.Warn.Render(fmt.Sprintf("Interrupted after %d requests", len(out.Results))))
	}
	c.printf("   Elapsed: %.2f seconds\n", out.Elapsed().Seconds())
	c.printf("   ✅ SUCCESS: %s\n", styles.Value.Render(fmt.Sprint(ok)))
	c.printf("   🛑 RATE LIMITED: %s\n", styles.Value.Render(fmt.Sprint(limited)))
	if errs > 0 {
		c.printf("   ❌ ERROR: %s\n", styles.Error.Render(fmt.Sprint(errs)))
	}
	if out.Stats.ServiceTime.TotalCount() > 0 {
		c.printf("   ⏱️  Latency mean / P50 / P90 / P99: %.2f / %.2f / %.2f / %.2f ms\n",
			out.Stats.GetMeanService(), out.Stats.GetP50Service(), out.Stats.GetP90Service(), out.Stats.GetP99Service())
	}

	c.printf("   %s\n", verdictLine(out.Verdict, ok, limited, sc.ExpectedSuccess))
	c.printf("%s\n", strings.Repeat("-", 60))
}

func verdictLine(v runner.Verdict, ok, limited, expected int) string {
	var line string
	switch v {
	case runner.VerdictCorrect:
		line = fmt.Sprintf("🎯 VERDICT: CORRECT! %d success, %d rate limited", expected, limited)
	case runner.VerdictNoLimiting:
		line = fmt.Sprintf("⚠️  VERDICT: %d success but nothing was rate limited", expected)
	case runner.VerdictWrongThreshold:
		line = fmt.Sprintf("⚠️  VERDICT: %d success (expected %d), %d rate limited", ok, expected, limited)
	default:
		line = fmt.Sprintf("❌ VERDICT: WRONG! %d success, %d rate limited (expected %d success, 1+ rate limited)", ok, limited, expected)
	}
	return styles.ForVerdict(v == runner.VerdictCorrect, v.Partial()).Render(line)
}
