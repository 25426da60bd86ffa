package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"GITHUB_TOKEN":      "github-token",
		"GITHUB_REPOSITORY": "acme/widgets",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{Environ: requiredEnv()})
	require.NoError(t, err)

	assert.Equal(t, "github-token", cfg.GitHub.Token)
	assert.Equal(t, "acme", cfg.GitHub.Owner)
	assert.Equal(t, "widgets", cfg.GitHub.Name)
	assert.Equal(t, DefaultAPIURL, cfg.GitHub.APIURL)
	assert.Equal(t, "backport-pending", cfg.Reminder.Label)
	assert.Equal(t, "master", cfg.Reminder.TargetBranch)
	assert.Equal(t, 7, cfg.Reminder.AgeThreshold)
	assert.Equal(t, 7, cfg.Reminder.Interval)
	assert.Equal(t, "[backport-pending-reminder]", cfg.Reminder.Marker)
	assert.Equal(t, 24*time.Hour, cfg.Reminder.Unit)
	assert.Equal(t, 7*24*time.Hour, cfg.Reminder.ThresholdDuration())
	assert.False(t, cfg.DryRun)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	environ := requiredEnv()
	environ["BACKPORT_LABEL"] = "needs-backport"
	environ["TARGET_BRANCH"] = "main"
	environ["DAYS_THRESHOLD"] = "3"
	environ["REMINDER_INTERVAL_DAYS"] = "2"
	environ["REMINDER_MARKER"] = "<!-- nag -->"
	environ["DAY_DURATION"] = "5m"
	environ["POST_DELAY"] = "0s"
	environ["RATE_LIMIT_MAX_RETRIES"] = "4"
	environ["DRY_RUN"] = "true"

	cfg, err := Load(LoadOptions{Environ: environ})
	require.NoError(t, err)

	assert.Equal(t, "needs-backport", cfg.Reminder.Label)
	assert.Equal(t, "main", cfg.Reminder.TargetBranch)
	assert.Equal(t, 3, cfg.Reminder.AgeThreshold)
	assert.Equal(t, 2, cfg.Reminder.Interval)
	assert.Equal(t, "<!-- nag -->", cfg.Reminder.Marker)
	assert.Equal(t, 5*time.Minute, cfg.Reminder.Unit)
	assert.Equal(t, 10*time.Minute, cfg.Reminder.IntervalDuration())
	assert.Equal(t, time.Duration(0), cfg.Reminder.PostDelay)
	assert.Equal(t, 4, cfg.RateLimit.MaxRetries)
	assert.True(t, cfg.DryRun)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr string
	}{
		{
			name:    "missing token",
			mutate:  func(e map[string]string) { delete(e, "GITHUB_TOKEN") },
			wantErr: "GITHUB_TOKEN is required",
		},
		{
			name:    "missing repository",
			mutate:  func(e map[string]string) { delete(e, "GITHUB_REPOSITORY") },
			wantErr: "GITHUB_REPOSITORY is required",
		},
		{
			name:    "malformed repository",
			mutate:  func(e map[string]string) { e["GITHUB_REPOSITORY"] = "acme" },
			wantErr: "expected owner/name",
		},
		{
			name:    "unparseable threshold",
			mutate:  func(e map[string]string) { e["DAYS_THRESHOLD"] = "seven" },
			wantErr: "AgeThreshold",
		},
		{
			name:    "zero unit",
			mutate:  func(e map[string]string) { e["DAY_DURATION"] = "0s" },
			wantErr: "time unit must be positive",
		},
		{
			name:    "negative interval",
			mutate:  func(e map[string]string) { e["REMINDER_INTERVAL_DAYS"] = "-1" },
			wantErr: "reminder interval must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := requiredEnv()
			tt.mutate(environ)

			_, err := Load(LoadOptions{Environ: environ})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "error should wrap ErrInvalid: %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFileSources(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
[github]
repository = "acme/from-file"

[reminder]
label = "backport-me"
age_threshold = 14
unit = "1h"
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("GITHUB_TOKEN=dotenv-token\nTARGET_BRANCH=release\nBACKPORT_LABEL=from-dotenv\n"), 0o600))

	// The process environment beats the dotenv file, which beats the TOML file.
	environ := map[string]string{"BACKPORT_LABEL": "from-env"}

	cfg, err := Load(LoadOptions{ConfigFile: tomlPath, EnvFile: envPath, Environ: environ})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-token", cfg.GitHub.Token)
	assert.Equal(t, "acme", cfg.GitHub.Owner)
	assert.Equal(t, "from-file", cfg.GitHub.Name)
	assert.Equal(t, "from-env", cfg.Reminder.Label)
	assert.Equal(t, "release", cfg.Reminder.TargetBranch)
	assert.Equal(t, 14, cfg.Reminder.AgeThreshold)
	assert.Equal(t, time.Hour, cfg.Reminder.Unit)
	assert.Equal(t, DefaultReminderPeriod, cfg.Reminder.Interval)
}

func TestParseRepository(t *testing.T) {
	owner, name, err := ParseRepository(" acme/widgets ")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", name)

	for _, bad := range []string{"", "acme", "acme/", "/widgets", "a/b/c"} {
		_, _, err := ParseRepository(bad)
		assert.Error(t, err, "slug %q", bad)
	}
}
