// Package config loads the tracker configuration from an optional YAML
// file, a .env file and the environment.
//
// Environment variables use the upper-case key names (SHEET_ID,
// OUTPUT_SHEET, FOOTBALL_DATA_API_KEY, ...) and take precedence over the
// file. Tracked teams and the competition table can only be overridden in
// the file.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/ticket-tracker/internal/extract"
	"github.com/pfrederiksen/ticket-tracker/internal/fixtures"
)

// Store backends.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

// Page fetchers.
const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// Job names a command that needs configuration.
type Job string

const (
	JobFixtures Job = "fixtures"
	JobScrape   Job = "scrape"
	JobSources  Job = "sources"
)

var (
	ErrMissingSheetID     = errors.New("SHEET_ID is required for the sheets backend")
	ErrMissingAPIKey      = errors.New("FOOTBALL_DATA_API_KEY is required for the fixtures import")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres backend")
	ErrUnknownBackend     = errors.New("unknown store backend")
	ErrUnknownFetcher     = errors.New("unknown fetcher")
	ErrNoTeams            = errors.New("no teams configured")
)

// Config is the tracker configuration.
type Config struct {
	SheetID            string `mapstructure:"sheet_id"`
	ServiceAccountFile string `mapstructure:"service_account_file"`
	SourcesSheetName   string `mapstructure:"sources_sheet_name"`
	OutputSheet        string `mapstructure:"output_sheet"`

	FootballDataAPIKey     string        `mapstructure:"football_data_api_key"`
	FootballDataBaseURL    string        `mapstructure:"football_data_base_url"`
	FixtureRequestInterval time.Duration `mapstructure:"fixture_request_interval"`

	StoreBackend string `mapstructure:"store_backend"`
	DatabaseURL  string `mapstructure:"database_url"`
	DataDir      string `mapstructure:"data_dir"`

	Fetcher       string        `mapstructure:"fetcher"`
	Headless      bool          `mapstructure:"headless"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
	RenderSettle  time.Duration `mapstructure:"render_settle"`
	SourceDelay   time.Duration `mapstructure:"source_delay"`

	MinReleaseDate string `mapstructure:"min_release_date"`
	TicketKeywords string `mapstructure:"ticket_keywords"`

	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	TelegramChatID   string `mapstructure:"telegram_chat_id"`

	LogLevel string `mapstructure:"log_level"`

	Teams        []fixtures.Team   `mapstructure:"teams"`
	Competitions map[string]string `mapstructure:"competitions"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sheet_id", "")
	v.SetDefault("service_account_file", "service_account.json")
	v.SetDefault("sources_sheet_name", "Sources")
	v.SetDefault("output_sheet", "Games")
	v.SetDefault("football_data_api_key", "")
	v.SetDefault("football_data_base_url", fixtures.DefaultBaseURL)
	v.SetDefault("fixture_request_interval", 6*time.Second)
	v.SetDefault("store_backend", BackendSheets)
	v.SetDefault("database_url", "")
	v.SetDefault("data_dir", "~/.local/share/ticket-tracker")
	v.SetDefault("fetcher", FetcherBrowser)
	v.SetDefault("headless", true)
	v.SetDefault("render_timeout", 60*time.Second)
	v.SetDefault("render_settle", 2*time.Second)
	v.SetDefault("source_delay", 2*time.Second)
	v.SetDefault("min_release_date", extract.DefaultMinDate.Format(extract.ISOLayout))
	v.SetDefault("ticket_keywords", "")
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_chat_id", "")
	v.SetDefault("log_level", "info")
}

// Load reads configuration. A non-empty path names the config file, which
// must then exist; otherwise config.yaml is looked up in . and ./config and
// may be absent. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.Fetcher = strings.ToLower(strings.TrimSpace(c.Fetcher))

	if len(c.Teams) == 0 {
		c.Teams = fixtures.DefaultTeams()
	}

	// viper lower-cases map keys
	competitions := fixtures.DefaultCompetitions()
	for code, name := range c.Competitions {
		competitions[strings.ToUpper(code)] = name
	}
	c.Competitions = competitions
}

// Validate checks that everything job needs is configured.
func (c *Config) Validate(job Job) error {
	switch c.StoreBackend {
	case BackendSheets:
		if c.SheetID == "" {
			return ErrMissingSheetID
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	case BackendFile:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StoreBackend)
	}

	switch job {
	case JobFixtures:
		if c.FootballDataAPIKey == "" {
			return ErrMissingAPIKey
		}
		if len(c.Teams) == 0 {
			return ErrNoTeams
		}
	case JobScrape:
		if c.Fetcher != FetcherBrowser && c.Fetcher != FetcherHTTP {
			return fmt.Errorf("%w: %q", ErrUnknownFetcher, c.Fetcher)
		}
		if _, err := c.ExtractConfig(); err != nil {
			return err
		}
	}
	return nil
}

// ExtractConfig builds the date and keyword tables.
func (c *Config) ExtractConfig() (extract.Config, error) {
	ec := extract.DefaultConfig()

	if c.TicketKeywords != "" {
		expr := c.TicketKeywords
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return ec, fmt.Errorf("invalid ticket_keywords: %w", err)
		}
		ec.TicketKeywords = re
	}

	if c.MinReleaseDate != "" {
		min, err := time.Parse(extract.ISOLayout, c.MinReleaseDate)
		if err != nil {
			return ec, fmt.Errorf("invalid min_release_date: %w", err)
		}
		ec.MinDate = min
	}
	return ec, nil
}

// NotificationsEnabled reports whether a Telegram bot is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}
