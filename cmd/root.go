package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"ratecheck/internal/banner"
	"ratecheck/internal/cli"
	"ratecheck/internal/config"
	"ratecheck/internal/logging"
	"ratecheck/internal/runner"
	"ratecheck/internal/storage"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "ratecheck",
	Short: "ratecheck - rate limit smoke check",
	Long: `
ratecheck verifies that an HTTP service enforces its rate limits.

It probes {base_url}/health, waits for second 1 of the next minute and then
sends sequential GETs to two endpoints:
1. /demo          (no auth)      expecting 200 successes out of 250
2. /api/auth/me   (bearer token) expecting 60 successes out of 110

Every response is classified as success or rate limited (429) and each run
ends with a verdict. The exit code is 0 whatever the verdict.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(v)
		if err != nil {
			return err
		}
		runCheck(cmd.Context(), settings, cmd.OutOrStdout())
		return nil
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := executeContext(ctx, os.Stderr)
	stop()
	os.Exit(code)
}

// executeContext runs the root command and returns the process exit code.
// Only command errors (flags, configuration) produce a non-zero code.
func executeContext(ctx context.Context, errOut io.Writer) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(dummyCmd, historyCmd, tokenCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ratecheck.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose diagnostics on stderr")
	rootCmd.PersistentFlags().String("history", "", "bbolt file that keeps run summaries")

	rootCmd.Flags().StringP("url", "u", config.DefaultBaseURL, "Base URL of the server under test")
	rootCmd.Flags().StringP("token", "t", config.DefaultToken, "Bearer token for authenticated endpoints")
	rootCmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header")
	rootCmd.Flags().Int("timeout", runner.DefaultTimeoutSec, "Request timeout in seconds")
	rootCmd.Flags().Duration("delay", runner.DefaultDelay, "Pause between requests")
	rootCmd.Flags().Bool("countdown", false, "Show a progress bar while waiting for the next minute")
	rootCmd.Flags().Bool("no-banner", false, "Skip the startup banner")
	rootCmd.Flags().StringP("out", "o", "", "Output filename prefix for CSV/JSON reports")

	bind(rootCmd.PersistentFlags(), config.KeyDebug, "debug")
	bind(rootCmd.PersistentFlags(), config.KeyHistory, "history")
	bind(rootCmd.Flags(), config.KeyBaseURL, "url")
	bind(rootCmd.Flags(), config.KeyToken, "token")
	bind(rootCmd.Flags(), config.KeyUserAgent, "user-agent")
	bind(rootCmd.Flags(), config.KeyTimeout, "timeout")
	bind(rootCmd.Flags(), config.KeyDelay, "delay")
	bind(rootCmd.Flags(), config.KeyCountdown, "countdown")
	bind(rootCmd.Flags(), config.KeyNoBanner, "no-banner")
	bind(rootCmd.Flags(), config.KeyOut, "out")
}

// bind ties a flag to a viper key. Unset flags fall through to the config
// file, the environment and the compiled defaults.
func bind(fs *pflag.FlagSet, key, flag string) {
	if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	if err := config.ReadFile(v, cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCheck(ctx context.Context, s config.Settings, out io.Writer) {
	logger := logging.Must(s.Debug)
	defer logger.Sync()

	opts := cli.Options{
		Runner:    s.Runner,
		Countdown: s.Countdown,
		NoBanner:  s.NoBanner,
		OutPrefix: s.OutPrefix,
		Logger:    logger,
		Out:       out,
	}

	if s.HistoryPath != "" {
		st, err := storage.Open(s.HistoryPath)
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
		} else {
			defer st.Close()
			opts.History = st
		}
	}

	cli.Start(ctx, opts)
}
