package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultEnv             = "production"
	DefaultIP              = "0.0.0.0"
	DefaultPort            = 8080
	DefaultDaemonURL       = "http://daemon.lbry.tech"
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultGitHubAPIURL    = "https://api.github.com"
	DefaultGitHubOrg       = "lbryio"
	DefaultRefreshInterval = 5 * time.Minute
	DefaultNewsletterURL   = "https://api.lbry.io/list/subscribe"
)

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = DefaultEnv
	}

	if c.Server.IP == "" {
		c.Server.IP = DefaultIP
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Daemon.URL == "" {
		c.Daemon.URL = DefaultDaemonURL
	}
	if c.Daemon.Timeout == 0 {
		c.Daemon.Timeout = DefaultUpstreamTimeout
	}

	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = DefaultGitHubAPIURL
	}
	if c.GitHub.Org == "" {
		c.GitHub.Org = DefaultGitHubOrg
	}
	if c.GitHub.RefreshInterval == 0 {
		c.GitHub.RefreshInterval = DefaultRefreshInterval
	}
	if c.GitHub.Timeout == 0 {
		c.GitHub.Timeout = DefaultUpstreamTimeout
	}

	if c.Newsletter.URL == "" {
		c.Newsletter.URL = DefaultNewsletterURL
	}
	if c.Newsletter.Timeout == 0 {
		c.Newsletter.Timeout = DefaultUpstreamTimeout
	}
}
