package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the meridian client.
type Config struct {
	Backend  Backend        `yaml:"backend"`
	Polling  Polling        `yaml:"polling"`
	Logging  Logging        `yaml:"logging"`
	Storage  Storage        `yaml:"storage"`
	Alpaca   Alpaca         `yaml:"alpaca"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// Backend holds connection parameters for the analysis backend.
type Backend struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	StreamEndpoint string `yaml:"stream_endpoint"` // optional WebSocket path for live updates
}

// Polling controls the session refresh loop.
type Polling struct {
	IntervalSec int  `yaml:"interval_sec"`
	AutoRefresh bool `yaml:"auto_refresh"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage holds paths for local persistence (report archive, exports).
type Storage struct {
	ArchivePath string `yaml:"archive_path"`
	ExportDir   string `yaml:"export_dir"`
}

// Alpaca holds credentials for the direct market-data fallback used when the
// backend news endpoints are unreachable. Optional; leave empty to disable.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// AnalysisConfig holds default parameters for new analysis sessions. CLI
// flags override these per invocation.
type AnalysisConfig struct {
	Analysts           []string `yaml:"analysts"`
	ResearchDepth      int      `yaml:"research_depth"`
	Provider           string   `yaml:"provider"`
	QuickModel         string   `yaml:"quick_model"`
	DeepModel          string   `yaml:"deep_model"`
	CustomInstructions string   `yaml:"custom_instructions"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyDefaults fills in values the backend contract assumes when the YAML
// omits them.
func applyDefaults(cfg *Config) {
	if cfg.Backend.TimeoutSec <= 0 {
		cfg.Backend.TimeoutSec = 30
	}
	if cfg.Polling.IntervalSec <= 0 {
		cfg.Polling.IntervalSec = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Analysis.ResearchDepth <= 0 {
		cfg.Analysis.ResearchDepth = 1
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MERIDIAN_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("MERIDIAN_USERNAME"); v != "" {
		cfg.Backend.Username = v
	}
	if v := os.Getenv("MERIDIAN_PASSWORD"); v != "" {
		cfg.Backend.Password = v
	}
	if v := os.Getenv("MERIDIAN_ARCHIVE_PATH"); v != "" {
		cfg.Storage.ArchivePath = v
	}
	if v := os.Getenv("MERIDIAN_EXPORT_DIR"); v != "" {
		cfg.Storage.ExportDir = v
	}
	if v := os.Getenv("MERIDIAN_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Polling.IntervalSec = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
