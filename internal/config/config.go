// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinCronSecretLength is the minimum required length for the reminder
// trigger secret.
const MinCronSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"EXAMDAY_DB_PATH" envDefault:"./data/examday.db"`
	ServerHost string `env:"EXAMDAY_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"EXAMDAY_SERVER_PORT" envDefault:"3000"`
	Env        string `env:"EXAMDAY_ENV" envDefault:"development"`
	LogLevel   string `env:"EXAMDAY_LOG_LEVEL" envDefault:"info"`

	// Slack credentials
	SlackBotToken      string `env:"SLACK_BOT_TOKEN,required"`
	SlackSigningSecret string `env:"SLACK_SIGNING_SECRET,required"`

	// RootAdminID is always an operator and cannot be removed through the
	// admin allow-list.
	RootAdminID string `env:"EXAMDAY_ROOT_ADMIN_ID,required"`

	// CronSecret authenticates the external reminder trigger.
	CronSecret string `env:"EXAMDAY_CRON_SECRET,required"`

	// ReminderCron optionally runs the reminder cycle in-process on a cron
	// schedule. Empty means reminders only run via the HTTP trigger.
	ReminderCron string `env:"EXAMDAY_REMINDER_CRON"`

	// LeadDays are the reminder lead times in days before a tracked date.
	LeadDays []int `env:"EXAMDAY_LEAD_DAYS" envDefault:"0,1,2,3"`

	// Seeding configuration
	DoSeed bool `env:"EXAMDAY_DO_SEED" envDefault:"true"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.CronSecret) < MinCronSecretLength {
		return nil, fmt.Errorf("EXAMDAY_CRON_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinCronSecretLength, len(cfg.CronSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.CronSecret == weak {
			return nil, fmt.Errorf("EXAMDAY_CRON_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !strings.HasPrefix(cfg.SlackBotToken, "xoxb-") {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN does not look like a bot token (expected xoxb- prefix)")
	}

	for _, d := range cfg.LeadDays {
		if d < 0 {
			return nil, fmt.Errorf("EXAMDAY_LEAD_DAYS must be non-negative, got %d", d)
		}
	}

	return cfg, nil
}
