package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/vidmatch/internal/adapters/catalog"
	"github.com/okian/vidmatch/internal/adapters/http/api"
	"github.com/okian/vidmatch/internal/adapters/progress"
	"github.com/okian/vidmatch/internal/adapters/search"
	"github.com/okian/vidmatch/internal/adapters/sink"
	service "github.com/okian/vidmatch/internal/app"
	"github.com/okian/vidmatch/internal/config"
	"github.com/okian/vidmatch/internal/domain/types"
	"github.com/okian/vidmatch/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type runFlags struct {
	output       string
	workers      int
	queueSize    int
	queryTimeout time.Duration
	results      int
	ytdlp        string
	metricsAddr  string
	progress     string
	keepBest     bool
	requireKnown bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [catalog.jsonl]",
		Short: "Match every catalog record and append confident matches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.InputPath = args[0]
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			return runCatalog(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Match output JSONL path")
	f.IntVarP(&flags.workers, "workers", "w", 0, "Records processed concurrently")
	f.IntVar(&flags.queueSize, "queue-size", 0, "Record queue capacity")
	f.DurationVar(&flags.queryTimeout, "query-timeout", 0, "Timeout for one search query")
	f.IntVar(&flags.results, "results", 0, "Search results requested per query")
	f.StringVar(&flags.ytdlp, "ytdlp", "", "yt-dlp executable")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve /healthz, /metrics and /stats on this address")
	f.StringVar(&flags.progress, "progress", "", "Progress output: auto, bar, log or off")
	f.BoolVar(&flags.keepBest, "keep-best", false, "Keep the best score of a duplicated candidate")
	f.BoolVar(&flags.requireKnown, "require-duration", false, "Reject candidates without a known duration")

	return cmd
}

// apply overlays explicitly set flags on cfg and revalidates it.
func (r *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputPath = r.output
	}
	if f.Changed("workers") {
		cfg.WorkerCount = r.workers
	}
	if f.Changed("queue-size") {
		cfg.QueueSize = r.queueSize
	}
	if f.Changed("query-timeout") {
		cfg.QueryTimeout = r.queryTimeout
	}
	if f.Changed("results") {
		cfg.ResultsPerQuery = r.results
	}
	if f.Changed("ytdlp") {
		cfg.YTDLPPath = r.ytdlp
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = r.metricsAddr
	}
	if f.Changed("progress") {
		cfg.Progress = r.progress
	}
	if f.Changed("keep-best") {
		cfg.KeepBestDuplicate = r.keepBest
	}
	if f.Changed("require-duration") {
		cfg.RequireKnownDuration = r.requireKnown
	}
	if cfg.InputPath == "" {
		return fmt.Errorf("%w: input_path is required", config.ErrInvalidConfig)
	}
	return cfg.Validate()
}

// runCatalog performs the startup checks, runs the batch and prints the
// summary. Startup failures are returned before any record is processed.
func runCatalog(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	log := logger.Get().Named("run").With(logger.String("run_id", runID))

	executable, err := search.CheckBinary(cfg.YTDLPPath)
	if err != nil {
		return err
	}

	entries, err := catalog.ReadFile(cfg.InputPath)
	if err != nil {
		return err
	}

	out, err := sink.Open(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Error(ctx, "closing sink", logger.Error(err))
		}
	}()

	reporter := progress.New(cfg.Progress, stderr, cfg.ProgressInterval)
	svc := service.New(newProcessor(cfg, newProvider(cfg, executable), out),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithProgress(reporter),
		service.WithLogger(log),
		service.WithRunID(runID),
		service.WithDrainTimeout(shutdownTimeout),
	)

	if cfg.MetricsAddr != "" {
		status, err := api.Listen(ctx, cfg.MetricsAddr, api.NewServer(svc))
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := status.Shutdown(sctx); err != nil {
				log.Error(ctx, "status server shutdown", logger.Error(err))
			}
		}()
	}

	log.Info(ctx, "starting batch",
		logger.String("input", cfg.InputPath),
		logger.String("output", out.Path()),
		logger.String("ytdlp", executable),
		logger.Int("records", len(entries)))

	summary, runErr := svc.Run(ctx, entries)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, service.ErrNoRecords) {
		return runErr
	}
	fmt.Fprint(stdout, renderSummary(summary, out.Path()))
	if errors.Is(runErr, service.ErrNoRecords) {
		log.Warn(ctx, "catalog is empty", logger.String("input", cfg.InputPath))
		return nil
	}
	return runErr
}

func renderSummary(s types.Summary, output string) string {
	rows := [][]string{
		{"Records", strconv.Itoa(s.Total)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"Matched", strconv.Itoa(s.Matched)},
		{"Unmatched", strconv.Itoa(s.Unmatched)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Matches written", strconv.Itoa(s.Persisted)},
		{"Queries", strconv.Itoa(s.Queries)},
		{"Candidates kept", strconv.Itoa(s.Candidates)},
		{"Match rate", strconv.FormatFloat(s.MatchRate()*100, 'f', 1, 64) + "%"},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
		{"Output", output},
	}
	if s.Cancelled {
		rows = append(rows, []string{"Interrupted", strconv.Itoa(s.Remaining()) + " records not processed"})
	}
	return renderTable([]string{"Run " + s.RunID, ""}, rows, []columnAlignment{alignLeft, alignRight})
}
