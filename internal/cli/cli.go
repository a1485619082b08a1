package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cricscore/internal/config"
	"github.com/pfrederiksen/cricscore/internal/extractor"
	"github.com/pfrederiksen/cricscore/internal/filter"
	"github.com/pfrederiksen/cricscore/internal/logger"
	"github.com/pfrederiksen/cricscore/internal/match"
	"github.com/pfrederiksen/cricscore/internal/scraper"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitFetchFailed = 2
)

// Version is reported by --version
var Version = "dev"

// app carries state shared by the subcommands
type app struct {
	configPath string
	logLevel   string
	url        string
	ttlSeconds int
	browser    bool

	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{stdout: os.Stdout, stderr: os.Stderr})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cricscore",
		Short: "Live cricket scores from the ESPNcricinfo front page",
		Long: `A tool that scrapes the live scores strip from ESPNcricinfo and shows
the matches in a browser dashboard, in the terminal or as notifications.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.url, "url", "", "Page to scrape (default "+scraper.LiveScoresURL+")")
	flags.IntVar(&a.ttlSeconds, "ttl", 0, "Seconds to reuse a scraped result, 0 disables")
	flags.BoolVar(&a.browser, "browser", false, "Render the page in headless Chrome before extracting")

	cmd.AddCommand(
		newServeCmd(a),
		newWatchCmd(a),
		newOnceCmd(a),
		newExtractCmd(a),
		newNotifyCmd(a),
	)

	return cmd
}

// setup loads configuration and applies flag overrides. Flags win over the
// environment, which wins over the config file.
func (a *app) setup(cmd *cobra.Command) error {
	if path := config.LoadDotEnv(); path != "" {
		fmt.Fprintf(a.stderr, "Loaded environment from %s\n", path)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("url") {
		cfg.Source.URL = a.url
	}
	if flags.Changed("ttl") {
		cfg.Refresh.CacheTTLSeconds = a.ttlSeconds
	}
	if flags.Changed("browser") {
		cfg.Source.Browser = a.browser
	}
	if flags.Changed("interval") {
		seconds, err := flags.GetInt("interval")
		if err != nil {
			return err
		}
		cfg.Refresh.IntervalSeconds = seconds
	}
	if flags.Changed("addr") {
		addr, err := flags.GetString("addr")
		if err != nil {
			return err
		}
		cfg.Server.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, a.stderr))

	a.cfg = cfg
	return nil
}

// newExtractor builds the extractor described by the config
func (a *app) newExtractor() (*extractor.Extractor, error) {
	selectors, err := extractor.CompileSelectors(a.cfg.Extract.Selectors)
	if err != nil {
		return nil, err
	}
	return extractor.New(
		extractor.WithPolicy(a.cfg.Extract.Policy),
		extractor.WithSelectors(selectors),
	), nil
}

// newScraper builds a scraper for the configured source
func (a *app) newScraper() (*scraper.Scraper, error) {
	ex, err := a.newExtractor()
	if err != nil {
		return nil, err
	}

	var src scraper.Source
	if a.cfg.Source.Browser {
		src = scraper.NewBrowserSource(a.cfg.Source.Timeout)
	} else {
		src = scraper.NewHTTPSource(a.cfg.Source.Timeout)
	}

	return scraper.New(src, ex,
		scraper.WithURL(a.cfg.Source.URL),
		scraper.WithHeaders(a.cfg.RequestHeaders()),
		scraper.WithCacheTTL(a.cfg.CacheTTL()),
	), nil
}

// fetch runs one fetch and extract pass and folds the outcome into a snapshot.
// FetchedAt stays zero when the source could not be reached.
func fetch(ctx context.Context, sc *scraper.Scraper) match.Snapshot {
	res, err := sc.FetchMatches(ctx)
	if err != nil {
		logger.IncrCounter("refresh.fetch_errors")
		logger.Warn("could not reach the score source", logger.Fields{"url": sc.URL(), "error": err.Error()})
		return match.Snapshot{Matches: []*match.Match{}, Err: err}
	}

	logger.Info("refresh complete", logger.Fields{
		"matches": len(res.Matches),
		"cached":  res.Cached,
	})
	return match.Snapshot{Matches: res.Matches, FetchedAt: res.FetchedAt, Cached: res.Cached}
}

// parseFormat validates an --format value
func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// parseFilter parses a --filter query; an empty query keeps every match
func parseFilter(query string) (*filter.Filter, error) {
	f, err := filter.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, scraper.ErrFetchFailed):
		return ExitFetchFailed
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	stop()
	os.Exit(exitCode(err))
}
