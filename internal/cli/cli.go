package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ticket-tracker/internal/analyzer"
	"github.com/pfrederiksen/ticket-tracker/internal/config"
	"github.com/pfrederiksen/ticket-tracker/internal/fixtures"
	"github.com/pfrederiksen/ticket-tracker/internal/logger"
	"github.com/pfrederiksen/ticket-tracker/internal/pipeline"
	"github.com/pfrederiksen/ticket-tracker/internal/reconcile"
	"github.com/pfrederiksen/ticket-tracker/internal/record"
	"github.com/pfrederiksen/ticket-tracker/internal/scraper"
	"github.com/pfrederiksen/ticket-tracker/internal/storage"
	"github.com/pfrederiksen/ticket-tracker/internal/telegram"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagFormat  string
	flagSort    string
	flagVerbose bool
	flagDryRun  bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket-tracker",
		Short: "Track football fixtures and ticket release dates",
		Long: `A batch tool that seeds a spreadsheet with upcoming fixtures of tracked
clubs and scrapes club ticket pages for the date the ticket sale starts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./config.yaml or ./config/config.yaml if present)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output and debug logging")
	cmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Read the store but write all changes to memory only")

	cmd.AddCommand(newFixturesCmd(), newScrapeCmd(), newSourcesCmd())
	return cmd
}

func newFixturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fixtures",
		Short: "Import scheduled fixtures of the tracked teams",
		Args:  cobra.NoArgs,
		RunE:  runFixtures,
	}
}

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape source pages for ticket release dates",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort results: url, date or status (default: processing order)")
	return cmd
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured source URLs",
		Args:  cobra.NoArgs,
		RunE:  runSources,
	}
}

// run holds what every command needs.
type run struct {
	cfg     *config.Config
	log     *logger.Logger
	id      string
	started time.Time
	format  OutputFormat
}

func setup(cmd *cobra.Command, job config.Job) (*run, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(job); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	// logs go to stderr so stdout stays parseable
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	id := uuid.NewString()
	log := logger.Default().WithRun(id)
	log.Info("Starting run", logger.Fields{"job": string(job), "backend": cfg.StoreBackend, "dry_run": flagDryRun})

	return &run{cfg: cfg, log: log, id: id, started: time.Now().UTC(), format: format}, nil
}

func (r *run) result(job config.Job) *OutputResult {
	return &OutputResult{
		RunID:     r.id,
		Job:       string(job),
		StartedAt: r.started,
		Duration:  time.Since(r.started).Round(time.Millisecond).String(),
		DryRun:    flagDryRun,
	}
}

// outputTable opens the output tab, or an in-memory copy of it in dry-run
// mode.
func (r *run) outputTable(ctx context.Context, b *backend) (storage.Table, error) {
	return b.open(ctx, r.cfg.OutputSheet, record.Header)
}

func runFixtures(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := setup(cmd, config.JobFixtures)
	if err != nil {
		return err
	}

	b := newBackend(r.cfg, r.log, flagDryRun)
	defer b.Close()

	table, err := r.outputTable(ctx, b)
	if err != nil {
		return err
	}

	im := fixtures.NewImporter(fixtures.NewClient(r.cfg.FootballDataAPIKey, r.cfg.FootballDataBaseURL))
	im.Competitions = r.cfg.Competitions
	im.SetRequestInterval(r.cfg.FixtureRequestInterval)
	im.Log = r.log

	sum, err := im.Import(ctx, table, r.cfg.Teams)
	if err != nil {
		return fmt.Errorf("importing fixtures: %w", err)
	}
	r.log.Info("Fixture import finished", logger.Fields{"inserted": sum.Inserted, "skipped": sum.Skipped, "feed_errors": sum.FeedErrors})

	result := r.result(config.JobFixtures)
	result.Fixtures = &sum
	result.Metrics = im.Metrics.GetSnapshot()
	return WriteOutput(cmd.OutOrStdout(), result, r.format, flagVerbose)
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := setup(cmd, config.JobScrape)
	if err != nil {
		return err
	}
	order := SortOrder(strings.ToLower(flagSort))
	if !order.valid() {
		return fmt.Errorf("invalid sort: %s (must be 'url', 'date' or 'status')", flagSort)
	}

	b := newBackend(r.cfg, r.log, flagDryRun)
	defer b.Close()

	urls, err := b.sourceURLs(ctx, r.cfg.SourcesSheetName)
	if err != nil {
		return err
	}
	table, err := r.outputTable(ctx, b)
	if err != nil {
		return err
	}

	extractCfg, err := r.cfg.ExtractConfig()
	if err != nil {
		return err
	}

	fetcher, closeFetcher := newFetcher(r.cfg)
	defer closeFetcher()

	s := pipeline.NewScraper(fetcher, analyzer.New(extractCfg), reconcile.New(), r.cfg.SourceDelay)
	s.Log = r.log
	if r.cfg.NotificationsEnabled() && !flagDryRun {
		client, err := telegram.NewClient(r.cfg.TelegramBotToken, r.cfg.TelegramChatID)
		if err != nil {
			// notifications are optional
			r.log.Warn("Telegram disabled", logger.Fields{"error": err.Error()})
		} else {
			s.Notifier = client
		}
	}

	r.log.Info("Scraping sources", logger.Fields{"sources": len(urls)})
	sum, err := s.Run(ctx, table, urls)
	if err != nil {
		return fmt.Errorf("scraping: %w", err)
	}
	r.log.Info("Scrape finished", logger.Fields{
		"inserted": sum.Inserted,
		"updated":  sum.Updated,
		"empty":    sum.Empty,
		"failed":   sum.Failed,
	})

	sortResults(sum.Results, order)

	result := r.result(config.JobScrape)
	result.Scrape = sum
	result.Metrics = s.Metrics.GetSnapshot()
	return WriteOutput(cmd.OutOrStdout(), result, r.format, flagVerbose)
}

func runSources(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := setup(cmd, config.JobSources)
	if err != nil {
		return err
	}

	b := newBackend(r.cfg, r.log, flagDryRun)
	defer b.Close()

	urls, err := b.sourceURLs(ctx, r.cfg.SourcesSheetName)
	if err != nil {
		return err
	}

	result := r.result(config.JobSources)
	result.Sources = urls
	return WriteOutput(cmd.OutOrStdout(), result, r.format, flagVerbose)
}

// newFetcher returns the configured page fetcher and its cleanup func.
func newFetcher(cfg *config.Config) (scraper.Fetcher, func()) {
	if cfg.Fetcher == config.FetcherHTTP {
		return scraper.NewHTTPFetcher(cfg.RenderTimeout), func() {}
	}
	b := scraper.NewBrowserFetcher(scraper.BrowserOptions{
		Headless: cfg.Headless,
		Timeout:  cfg.RenderTimeout,
		Settle:   cfg.RenderSettle,
	})
	return b, func() { _ = b.Close() }
}

// Execute runs the CLI
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the root command with args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
