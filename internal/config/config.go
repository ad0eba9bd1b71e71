package config

import (
	"os"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanPaths []string `toml:"scan_paths"`
	Exclude   Exclude  `toml:"exclude"`
	Scan      Scan     `toml:"scan"`
	Watch     Watch    `toml:"watch"`
	Output    Output   `toml:"output"`
	History   History  `toml:"history"`
	Observe   Observe  `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Scan struct {
	// Workers bounds the number of files parsed concurrently.
	Workers int `toml:"workers"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// RescansPerSecond caps how often file events may trigger a rescan;
	// bursts beyond Burst are coalesced into the next allowed slot.
	RescansPerSecond float64 `toml:"rescans_per_second"`
	Burst            int     `toml:"burst"`
}

type Output struct {
	JSON string `toml:"json"`
	TSV  string `toml:"tsv"`
}

type History struct {
	// Path of the sqlite snapshot database. Empty disables history.
	Path string `toml:"path"`
	Keep int    `toml:"keep"`
}

type Observe struct {
	// MetricsAddr serves /metrics and /health when set, e.g. ":9090".
	MetricsAddr string `toml:"metrics_addr"`
	// OTLPEndpoint enables trace export over OTLP/gRPC when set.
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.ScanPaths) == 0 {
		c.ScanPaths = []string{"."}
	}
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = []string{".*", "__pycache__", "node_modules", "venv"}
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = runtime.NumCPU()
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Watch.RescansPerSecond <= 0 {
		c.Watch.RescansPerSecond = 2
	}
	if c.Watch.Burst <= 0 {
		c.Watch.Burst = 4
	}
	if c.History.Keep <= 0 {
		c.History.Keep = 100
	}
}
