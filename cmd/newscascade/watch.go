package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/hhton/newscascade/internal/monitor"
	"github.com/hhton/newscascade/internal/types"
)

// watchCmd creates the "watch" subcommand.
func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [category...]",
		Short: "Re-run categories on a schedule and print new headlines",
		Long: `Watch runs the given categories (all of them by default) immediately and
then on a cron schedule, printing headlines that were not in the previous run.`,
		RunE: runWatch,
	}
	cmd.Flags().StringVarP(&schedule, "schedule", "s", "", `cron schedule (default from config, e.g. "*/30 * * * *")`)
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of records per run (0 = use config)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cats := types.Categories()
	if len(args) > 0 {
		cats = nil
		for _, a := range args {
			c := types.Category(a)
			if !isKnown(c) {
				return unknownCategory(c)
			}
			cats = append(cats, c)
		}
	}

	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()
	logger := setupLogger(cfg).With("component", "watch")

	ctx, stop := signalContext()
	defer stop()

	if cfg.Metrics.Enabled {
		if err := client.Metrics().StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	detector := monitor.NewChangeDetector(logger)
	notifier := monitor.NewNotifier(logger)
	notifier.AddChannel(&monitor.WriterChannel{W: os.Stdout, JSON: jsonOut})

	runAll := func() {
		for _, cat := range cats {
			if ctx.Err() != nil {
				return
			}
			res := client.LatestNews(ctx, string(cat))
			changes := detector.Detect(res)
			logger.Info("category checked",
				"category", string(cat),
				"unique", res.Statistics.TotalUnique,
				"changes", len(changes),
			)
			notifier.Notify(ctx, monitor.Added(changes))
		}
	}

	c := cron.New(
		cron.WithLogger(cronLogger{logger: logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger})),
	)
	if _, err := c.AddFunc(cfg.Watch.Schedule, runAll); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Watch.Schedule, err)
	}

	logger.Info("watching", "categories", cats, "schedule", cfg.Watch.Schedule)
	runAll()
	c.Start()

	<-ctx.Done()
	logger.Info("received signal, shutting down...")
	<-c.Stop().Done()
	return nil
}

func isKnown(c types.Category) bool {
	for _, known := range types.Categories() {
		if known == c {
			return true
		}
	}
	return false
}

// unknownCategory reports a category missing from the source table.
func unknownCategory(c types.Category) error {
	return fmt.Errorf("%w: %q", types.ErrUnknownCategory, string(c))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
