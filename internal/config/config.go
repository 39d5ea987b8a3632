package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const redacted = "[REDACTED]"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName               string        `mapstructure:"app_name"`
	Env                   string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	SourcesFile           string        `mapstructure:"sources_file"`
	PublishersFile        string        `mapstructure:"publishers_file"`
	ProbeIntervalSeconds  int64         `mapstructure:"probe_interval"`
	ProbeInterval         time.Duration `mapstructure:"-"`
	ProbeSchedule         string        `mapstructure:"probe_schedule"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	MaxConcurrency        int           `mapstructure:"max_concurrency"`
	SecretNames           string        `mapstructure:"secret_names"`
	SourceIDsRaw          string        `mapstructure:"source_ids"`

	// SourceIDs restricts probing to these sources; empty probes all of them.
	SourceIDs []string `mapstructure:"-"`

	// Secrets holds values for every name in SecretNames, read once at load time.
	Secrets map[string]string `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "collection-probe")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/museums.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("probe_interval", 0) // seconds; 0 runs a single pass
	v.SetDefault("probe_schedule", "") // cron spec; takes precedence over probe_interval
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("secret_names", "RIJKS_API_KEY")
	v.SetDefault("source_ids", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ProbeIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid probe_interval (must be zero or positive seconds)")
	}
	cfg.ProbeInterval = time.Duration(cfg.ProbeIntervalSeconds) * time.Second

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.MaxConcurrency <= 0 {
		return nil, fmt.Errorf("invalid max_concurrency (must be positive)")
	}

	cfg.Secrets = loadSecrets(cfg.SecretNames, os.LookupEnv)
	cfg.SourceIDs = splitList(cfg.SourceIDsRaw)

	return &cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// loadSecrets resolves the comma separated secret names. Missing values are
// stored as empty strings; callers decide whether that matters.
func loadSecrets(names string, lookup func(string) (string, bool)) map[string]string {
	out := make(map[string]string)
	for _, name := range splitList(names) {
		val, _ := lookup(name)
		out[name] = strings.TrimSpace(val)
	}
	return out
}

// Secret returns the value loaded for name, or "" if it was not configured.
func (c *Config) Secret(name string) string {
	if c == nil || c.Secrets == nil {
		return ""
	}
	return c.Secrets[strings.TrimSpace(name)]
}

// MarshalJSON hides secret values so the config can be logged at startup.
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	out := plain(c)
	if len(c.Secrets) > 0 {
		out.Secrets = make(map[string]string, len(c.Secrets))
		for name, val := range c.Secrets {
			if val == "" {
				out.Secrets[name] = ""
				continue
			}
			out.Secrets[name] = redacted
		}
	}
	return json.Marshal(out)
}
