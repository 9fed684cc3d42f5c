package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a config from the environment variables the site has
// always been deployed with.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env: os.Getenv("NODE_ENV"),
		Server: ServerConfig{
			IP:        os.Getenv("IP"),
			StaticDir: os.Getenv("STATIC_DIR"),
		},
		Daemon: DaemonConfig{
			URL:         os.Getenv("LBRY_DAEMON_URL"),
			AccessToken: os.Getenv("LBRY_DAEMON_ACCESS_TOKEN"),
			ImagesPath:  os.Getenv("LBRY_DAEMON_IMAGES_PATH"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDISCLOUD_URL"),
		},
		GitHub: GitHubConfig{
			Token: os.Getenv("GITHUB_OAUTH_TOKEN"),
			Org:   os.Getenv("GITHUB_ORG"),
		},
		Newsletter: NewsletterConfig{
			URL: os.Getenv("NEWSLETTER_URL"),
		},
		Alerts: AlertsConfig{
			SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			DatabaseDSN:     os.Getenv("DB_DSN"),
		},
		Ops: OpsConfig{
			JWTSecret: os.Getenv("OPS_JWT_SECRET"),
		},
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse PORT %q: %w", p, err)
		}
		cfg.Server.Port = port
	}

	return cfg, nil
}

// LoadAndValidate loads config (from path, or the environment when path is
// empty), applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg, err = FromEnv()
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
