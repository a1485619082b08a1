// Package config loads cricscore settings from defaults, a YAML file, a .env file and
// the environment, in that order of precedence (CLI flags are applied on top by the
// cli package).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/cricscore/internal/extractor"
	"github.com/pfrederiksen/cricscore/internal/logger"
	"github.com/pfrederiksen/cricscore/internal/scraper"
)

const (
	MinIntervalSeconds     = 10
	MaxIntervalSeconds     = 600
	IntervalStepSeconds    = 10
	DefaultIntervalSeconds = 60
	DefaultCacheTTLSeconds = 600
)

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Refresh RefreshConfig `yaml:"refresh"`
	Extract ExtractConfig `yaml:"extract"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Notify  NotifyConfig  `yaml:"notify"`
}

type SourceConfig struct {
	URL       string            `yaml:"url"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	Timeout   time.Duration     `yaml:"timeout"`
	Browser   bool              `yaml:"browser"` // render with headless Chrome instead of a plain GET
}

type RefreshConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"` // 0 disables the memo
}

type ExtractConfig struct {
	extractor.Policy `yaml:",inline"`
	Selectors        extractor.Selectors `yaml:"selectors"` // blank entries keep the defaults
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type NotifyConfig struct {
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	TelegramToken  string `yaml:"-"` // env only
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:       scraper.LiveScoresURL,
			UserAgent: scraper.UserAgent,
			Headers:   map[string]string{},
			Timeout:   scraper.Timeout,
		},
		Refresh: RefreshConfig{
			IntervalSeconds: DefaultIntervalSeconds,
			CacheTTLSeconds: DefaultCacheTTLSeconds,
		},
		Extract: ExtractConfig{
			Policy: extractor.StrictPolicy,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: string(logger.LevelInfo),
		},
	}
}

// Load builds a configuration from defaults, the optional YAML file at path and
// the environment. It does not validate: callers apply their own overrides
// first and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads the first .env file found among paths. Variables already set
// in the environment win. It returns the file that was loaded, or "".
func LoadDotEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnv overlays CRICSCORE_* and notifier variables
func (c *Config) applyEnv() error {
	if v := os.Getenv("CRICSCORE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("CRICSCORE_USER_AGENT"); v != "" {
		c.Source.UserAgent = v
	}
	if v := os.Getenv("CRICSCORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing CRICSCORE_TIMEOUT: %w", err)
		}
		c.Source.Timeout = d
	}
	if v := os.Getenv("CRICSCORE_BROWSER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing CRICSCORE_BROWSER: %w", err)
		}
		c.Source.Browser = b
	}
	if v := os.Getenv("CRICSCORE_REFRESH_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing CRICSCORE_REFRESH_INTERVAL: %w", err)
		}
		c.Refresh.IntervalSeconds = n
	}
	if v := os.Getenv("CRICSCORE_CACHE_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing CRICSCORE_CACHE_TTL: %w", err)
		}
		c.Refresh.CacheTTLSeconds = n
	}
	if v := os.Getenv("CRICSCORE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CRICSCORE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notify.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing TELEGRAM_CHAT_ID: %w", err)
		}
		c.Notify.TelegramChatID = id
	}
	return nil
}

// Validate checks ranges and required values
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Source.URL) == "" {
		errs = append(errs, errors.New("source url is required"))
	} else if u, err := url.Parse(c.Source.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid source url: %q", c.Source.URL))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("source timeout must be positive, got %s", c.Source.Timeout))
	}
	if err := ValidateInterval(c.Refresh.IntervalSeconds); err != nil {
		errs = append(errs, err)
	}
	if c.Refresh.CacheTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("cache ttl must not be negative, got %d", c.Refresh.CacheTTLSeconds))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := extractor.CompileSelectors(c.Extract.Selectors); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateInterval checks a refresh interval in seconds against the allowed
// range and step
func ValidateInterval(seconds int) error {
	if seconds < MinIntervalSeconds || seconds > MaxIntervalSeconds {
		return fmt.Errorf("refresh interval must be between %d and %d seconds, got %d",
			MinIntervalSeconds, MaxIntervalSeconds, seconds)
	}
	if seconds%IntervalStepSeconds != 0 {
		return fmt.Errorf("refresh interval must be a multiple of %d seconds, got %d",
			IntervalStepSeconds, seconds)
	}
	return nil
}

// Interval returns the refresh interval
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}

// CacheTTL returns the memo lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Refresh.CacheTTLSeconds) * time.Second
}

// RequestHeaders returns the headers sent to the source, User-Agent included
func (c *Config) RequestHeaders() map[string]string {
	headers := make(map[string]string, len(c.Source.Headers)+1)
	for k, v := range c.Source.Headers {
		if c.Source.UserAgent != "" && strings.EqualFold(k, "User-Agent") {
			continue
		}
		headers[k] = v
	}
	if c.Source.UserAgent != "" {
		headers["User-Agent"] = c.Source.UserAgent
	}
	return headers
}
