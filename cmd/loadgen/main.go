package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/pcbvalues/internal/loadgen"
	"github.com/okian/pcbvalues/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	cfg := loadgen.Config{
		BaseURL: "http://localhost:9080",
		Count:   loadgen.DefaultCount,
		Workers: runtime.NumCPU() * 2,
		Timeout: loadgen.DefaultTimeout,
		Axes:    loadgen.DefaultAxes,
	}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Submit generated results to a score store and verify matching",
		Long: `loadgen submits generated, correctly signed results to a running score
store, replays some of them to check replay detection and asks /api/match
for each stored score to check it comes back as its own closest match.

  loadgen --count 5000 --replays 500 --workers 16 --output runs/payloads.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				_ = logger.SetLevelString("debug")
			}
			_, err := loadgen.Run(cmd.Context(), cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	f.IntVar(&cfg.Count, "count", cfg.Count, "Number of results to generate and submit")
	f.IntVar(&cfg.Replays, "replays", cfg.Replays, "Number of results submitted a second time")
	f.IntVar(&cfg.Verify, "verify", cfg.Verify, "Number of results to look up through /api/match (0 checks all)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent requests")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.IntVar(&cfg.Axes, "axes", cfg.Axes, "Score vector length")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one from the clock)")
	f.StringVar(&cfg.Output, "output", "", "File the generated payloads are written to")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log every failed request")
	return cmd
}
