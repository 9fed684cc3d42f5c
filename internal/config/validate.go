package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks values that would make the server unable to start.
// Absent credentials are not errors; see Missing.
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("env must be development or production, got %q", c.Env)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	for name, raw := range map[string]string{
		"daemon.url":     c.Daemon.URL,
		"github.api_url": c.GitHub.APIURL,
		"newsletter.url": c.Newsletter.URL,
	} {
		if err := validateURL(name, raw); err != nil {
			return err
		}
	}

	if c.GitHub.RefreshInterval < 0 {
		return errors.New("github.refresh_interval must be >= 0")
	}

	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
	}
	return nil
}

// Missing lists optional settings that are unset. The features behind
// them degrade to no-ops.
func (c *Config) Missing() []string {
	var missing []string
	if c.GitHub.Token == "" {
		missing = append(missing, "GitHub token")
	}
	if c.Redis.URL == "" {
		missing = append(missing, "Redis client URL")
	}
	if c.Daemon.AccessToken == "" {
		missing = append(missing, "Daemon access token")
	}
	if c.Alerts.SlackWebhookURL == "" {
		missing = append(missing, "Slack webhook URL")
	}
	if c.Ops.JWTSecret == "" {
		missing = append(missing, "Ops JWT secret")
	}
	return missing
}
