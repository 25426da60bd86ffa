package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Defaults applied before any file or environment source.
const (
	DefaultLabel           = "backport-pending"
	DefaultTargetBranch    = "master"
	DefaultAgeThreshold    = 7
	DefaultReminderPeriod  = 7
	DefaultMarker          = "[backport-pending-reminder]"
	DefaultUnit            = 24 * time.Hour
	DefaultPostDelay       = time.Second
	DefaultRateLimitMargin = 5 * time.Second
	DefaultAPIURL          = "https://api.github.com/"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the run parameters. It is built once by Load and must not be
// mutated afterwards; components receive the sub-structs by value.
type Config struct {
	GitHub    GitHubConfig    `toml:"github"`
	Reminder  ReminderConfig  `toml:"reminder"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Logging   LoggingConfig   `toml:"logging"`
	DryRun    bool            `toml:"dry_run" env:"DRY_RUN"`
}

// GitHubConfig identifies the repository and the credential used to reach it.
type GitHubConfig struct {
	Token      string `toml:"-" env:"GITHUB_TOKEN"`
	Repository string `toml:"repository" env:"GITHUB_REPOSITORY"`
	APIURL     string `toml:"api_url" env:"GITHUB_API_URL"`

	// Owner and Name are split out of Repository by Load.
	Owner string `toml:"-"`
	Name  string `toml:"-"`
}

// ReminderConfig drives the reminder policy.
type ReminderConfig struct {
	Label        string `toml:"label" env:"BACKPORT_LABEL"`
	TargetBranch string `toml:"target_branch" env:"TARGET_BRANCH"`
	// AgeThreshold and Interval are counted in Units.
	AgeThreshold int           `toml:"age_threshold" env:"DAYS_THRESHOLD"`
	Interval     int           `toml:"interval" env:"REMINDER_INTERVAL_DAYS"`
	Marker       string        `toml:"marker" env:"REMINDER_MARKER"`
	Unit         time.Duration `toml:"unit" env:"DAY_DURATION"`
	PostDelay    time.Duration `toml:"post_delay" env:"POST_DELAY"`
}

// ThresholdDuration is the minimum label age as a duration.
func (r ReminderConfig) ThresholdDuration() time.Duration {
	return time.Duration(r.AgeThreshold) * r.Unit
}

// IntervalDuration is the minimum gap between two reminders as a duration.
func (r ReminderConfig) IntervalDuration() time.Duration {
	return time.Duration(r.Interval) * r.Unit
}

// RateLimitConfig tunes the backoff applied when the API quota is exhausted.
type RateLimitConfig struct {
	Margin time.Duration `toml:"margin" env:"RATE_LIMIT_MARGIN"`
	// MaxRetries of 0 retries until the quota resets, however long it takes.
	MaxRetries int `toml:"max_retries" env:"RATE_LIMIT_MAX_RETRIES"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level      string `toml:"level" env:"LOG_LEVEL"`
	JSONFormat bool   `toml:"json" env:"LOG_JSON"`
}

// LoadOptions names the optional sources consulted by Load.
type LoadOptions struct {
	// ConfigFile is an optional TOML file.
	ConfigFile string
	// EnvFile is an optional dotenv file; real environment variables win over it.
	EnvFile string
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Default returns the configuration used when no source overrides anything.
func Default() Config {
	return Config{
		GitHub: GitHubConfig{APIURL: DefaultAPIURL},
		Reminder: ReminderConfig{
			Label:        DefaultLabel,
			TargetBranch: DefaultTargetBranch,
			AgeThreshold: DefaultAgeThreshold,
			Interval:     DefaultReminderPeriod,
			Marker:       DefaultMarker,
			Unit:         DefaultUnit,
			PostDelay:    DefaultPostDelay,
		},
		RateLimit: RateLimitConfig{Margin: DefaultRateLimitMargin},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional TOML file, the
// optional dotenv file and the environment, in increasing precedence.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if _, err := toml.DecodeFile(opts.ConfigFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", opts.ConfigFile, err)
		}
	}

	environ := opts.Environ
	if environ == nil {
		environ = fromOS()
	}
	if opts.EnvFile != "" {
		fileVars, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
		environ = merge(fileVars, environ)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	owner, name, err := ParseRepository(cfg.GitHub.Repository)
	if err != nil {
		return nil, err
	}
	cfg.GitHub.Owner = owner
	cfg.GitHub.Name = name

	return &cfg, nil
}

// ParseRepository splits an "owner/name" slug.
func ParseRepository(slug string) (string, string, error) {
	slug = strings.TrimSpace(slug)
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("%w: repository %q, expected owner/name", ErrInvalid, slug)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// validateConfig checks if the required configuration is present
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.GitHub.Token) == "" {
		return fmt.Errorf("%w: GITHUB_TOKEN is required", ErrInvalid)
	}
	if strings.TrimSpace(cfg.GitHub.Repository) == "" {
		return fmt.Errorf("%w: GITHUB_REPOSITORY is required", ErrInvalid)
	}
	if cfg.Reminder.Label == "" {
		return fmt.Errorf("%w: label must not be empty", ErrInvalid)
	}
	if cfg.Reminder.TargetBranch == "" {
		return fmt.Errorf("%w: target branch must not be empty", ErrInvalid)
	}
	if cfg.Reminder.Marker == "" {
		return fmt.Errorf("%w: reminder marker must not be empty", ErrInvalid)
	}
	if cfg.Reminder.AgeThreshold < 0 {
		return fmt.Errorf("%w: age threshold must not be negative", ErrInvalid)
	}
	if cfg.Reminder.Interval < 0 {
		return fmt.Errorf("%w: reminder interval must not be negative", ErrInvalid)
	}
	if cfg.Reminder.Unit <= 0 {
		return fmt.Errorf("%w: time unit must be positive", ErrInvalid)
	}
	if cfg.Reminder.PostDelay < 0 || cfg.RateLimit.Margin < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalid)
	}
	if cfg.RateLimit.MaxRetries < 0 {
		return fmt.Errorf("%w: rate limit retries must not be negative", ErrInvalid)
	}
	return nil
}

// fromOS reads the process environment. Empty variables count as unset, which
// is how workflow runners pass inputs that were not provided.
func fromOS() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// merge returns a new map with later sets overriding earlier keys.
func merge(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}
