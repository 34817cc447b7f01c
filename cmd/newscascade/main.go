package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/engine"
	"github.com/hhton/newscascade/internal/types"
	"github.com/hhton/newscascade/pkg/newscascade"
)

var (
	cfgFile    string
	verbose    bool
	jsonOut    bool
	noBrowser  bool
	renderer   string
	maxResults int
	length     int
	schedule   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "newscascade",
		Short: "NewsCascade — latest Russian news on politics, science and health",
		Long: `NewsCascade collects the latest headlines from RIA Novosti, TASS, Interfax
and Doctor Piter, falling back from feeds to static markup to a headless
browser per source.

Features:
  • Category runs with per-source statistics and deduplication
  • Full article text and reading previews
  • Scheduled watching with change notifications
  • Prometheus metrics endpoint`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&noBrowser, "no-browser", false, "never start a headless browser")
	rootCmd.PersistentFlags().StringVar(&renderer, "renderer", "", "headless renderer: rod, chromedp")

	rootCmd.AddCommand(latestCmd())
	rootCmd.AddCommand(articleCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// latestCmd creates the "latest" subcommand.
func latestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "latest [category]",
		Short:     "Collect the latest news of a category",
		Args:      cobra.ExactArgs(1),
		ValidArgs: categoryNames(),
		RunE:      runLatest,
	}
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of records (0 = use config)")
	return cmd
}

func runLatest(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signalContext()
	defer stop()

	res := client.LatestNews(ctx, args[0])
	if jsonOut {
		data, err := res.ToJSON()
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	st := res.Statistics
	if st.Error != "" {
		return fmt.Errorf("%s: %q (known: %s)", st.Error, args[0], strings.Join(categoryNames(), ", "))
	}

	for i, n := range res.News {
		fmt.Printf("%2d. %s\n", i+1, n.Title)
		fmt.Printf("    %s %s | %s\n", n.Date, n.Time, n.Source)
		fmt.Printf("    %s\n", n.Link)
		if n.Description != "" {
			fmt.Printf("    %s\n", n.Description)
		}
	}

	fmt.Printf("\n✅ %s: %d unique of %d collected, %d/%d sources answered\n\n",
		res.Category, st.TotalUnique, st.TotalCollected, st.SuccessfulSources, st.TotalSources)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "URL", "Records"})
	for _, src := range mustSources(res.Category) {
		t.AppendRow(table.Row{src.Key(), src.URL, st.Sources[src.Key()]})
	}
	t.AppendFooter(table.Row{"", "Total", st.TotalCollected})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// articleCmd creates the "article" subcommand.
func articleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "article [url]",
		Short: "Print the full text of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateURL(args[0]); err != nil {
				return fmt.Errorf("invalid URL %q: %w", args[0], err)
			}
			client, _, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signalContext()
			defer stop()

			art, err := client.Article(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(art)
			}
			if art.Title != "" {
				fmt.Printf("%s\n", art.Title)
				if art.Published != "" {
					fmt.Printf("%s\n", art.Published)
				}
				fmt.Println()
			}
			fmt.Println(art.Text)
			return nil
		},
	}
}

// previewCmd creates the "preview" subcommand.
func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [url]",
		Short: "Print a short reading preview of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateURL(args[0]); err != nil {
				return fmt.Errorf("invalid URL %q: %w", args[0], err)
			}
			client, _, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signalContext()
			defer stop()

			preview := client.ArticlePreview(ctx, args[0], length)
			if jsonOut {
				return printJSON(map[string]string{"url": args[0], "preview": preview})
			}
			if preview == "" {
				return fmt.Errorf("no article text found at %s", args[0])
			}
			fmt.Println(preview)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", 0, "preview length in characters (0 = use config)")
	return cmd
}

// sourcesCmd creates the "sources" subcommand.
func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources [category]",
		Short: "List configured sources",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := types.Categories()
			if len(args) == 1 {
				cats = []types.Category{types.Category(args[0])}
			}

			listing := make(map[types.Category][]engine.SourceConfig, len(cats))
			for _, cat := range cats {
				srcs, ok := engine.Sources(cat)
				if !ok {
					return unknownCategory(cat)
				}
				listing[cat] = srcs
			}

			if jsonOut {
				return printJSON(listing)
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Category", "Key", "Format", "URL"})
			for _, cat := range cats {
				for _, src := range listing[cat] {
					t.AppendRow(table.Row{cat, src.Key(), src.Format, src.URL})
				}
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("NewsCascade %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Fetcher:\n")
			fmt.Printf("  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Request Delay:     %s–%s\n", cfg.Fetcher.DelayMin, cfg.Fetcher.DelayMax)
			fmt.Printf("  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Browser.Enabled)
			fmt.Printf("  Renderer:          %s\n", cfg.Browser.Renderer)
			fmt.Printf("  Page Load Timeout: %s\n", cfg.Browser.PageLoadTimeout)
			fmt.Printf("  Stealth:           %v\n", cfg.Browser.Stealth)
			fmt.Printf("\nAggregator:\n")
			fmt.Printf("  Source Delay:      %s–%s\n", cfg.Aggregator.SourceDelayMin, cfg.Aggregator.SourceDelayMax)
			fmt.Printf("  Max Results:       %d\n", cfg.Aggregator.MaxResults)
			fmt.Printf("\nFeed:\n")
			fmt.Printf("  Max Entries:       %d\n", cfg.Feed.MaxEntries)
			fmt.Printf("  Description:       %d chars\n", cfg.Feed.DescriptionLength)
			fmt.Printf("\nArticle:\n")
			fmt.Printf("  Preview Length:    %d\n", cfg.Article.PreviewLength)
			fmt.Printf("\nLogging:\n")
			fmt.Printf("  Level:             %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:            %s\n", cfg.Logging.Format)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:              %d\n", cfg.Metrics.Port)
			fmt.Printf("\nWatch:\n")
			fmt.Printf("  Schedule:          %s\n", cfg.Watch.Schedule)
			return nil
		},
	}
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newClient builds an SDK client from the effective configuration.
func newClient() (*newscascade.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := newscascade.NewWithConfig(cfg, setupLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// setupLogger creates a structured logger in the configured format.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case "tint":
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if noBrowser {
		cfg.Browser.Enabled = false
	}
	if renderer != "" {
		cfg.Browser.Renderer = strings.ToLower(renderer)
	}
	if maxResults > 0 {
		cfg.Aggregator.MaxResults = maxResults
	}
	if length > 0 {
		cfg.Article.PreviewLength = length
	}
	if schedule != "" {
		cfg.Watch.Schedule = schedule
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func categoryNames() []string {
	var names []string
	for _, c := range types.Categories() {
		names = append(names, string(c))
	}
	return names
}

func mustSources(cat types.Category) []engine.SourceConfig {
	srcs, _ := engine.Sources(cat)
	return srcs
}
