// Package config implements the watcher's configuration layer: a YAML
// file decoded with gopkg.in/yaml.v3, defaults filled in with
// dario.cat/mergo, then overlaid with environment variables via
// kelseyhightower/envconfig -- the same two-phase load the teacher's
// utils.ReadConfig performs, trimmed to this watcher's much smaller
// surface.
package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for cmd/evmwatch. cmd/evmwatchctl
// does not read it; it takes its store path from its --store flag.
type Config struct {
	RPC       RPCConfig       `yaml:"rpc"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Store     StoreConfig     `yaml:"store"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type RPCConfig struct {
	Endpoint string            `yaml:"endpoint" envconfig:"RPC_ENDPOINT"`
	Headers  map[string]string `yaml:"headers"`
	Timeout  time.Duration     `yaml:"timeout" envconfig:"RPC_TIMEOUT"`
}

type WatcherConfig struct {
	PollInterval      time.Duration `yaml:"pollInterval" envconfig:"WATCHER_POLL_INTERVAL"`
	ContractCacheSize int           `yaml:"contractCacheSize" envconfig:"WATCHER_CONTRACT_CACHE_SIZE"`
}

type StoreConfig struct {
	Path      string `yaml:"path" envconfig:"STORE_PATH"`
	CacheSize int64  `yaml:"cacheSize" envconfig:"STORE_CACHE_SIZE"`
}

type WatchlistConfig struct {
	AddressesFile string `yaml:"addressesFile" envconfig:"WATCHLIST_ADDRESSES_FILE"`
	TokensFile    string `yaml:"tokensFile" envconfig:"WATCHLIST_TOKENS_FILE"`
}

type LoggingConfig struct {
	OutputLevel  string `yaml:"outputLevel" envconfig:"LOGGING_OUTPUT_LEVEL"`
	OutputFormat string `yaml:"outputFormat" envconfig:"LOGGING_OUTPUT_FORMAT"`
	FilePath     string `yaml:"filePath" envconfig:"LOGGING_FILE_PATH"`
	FileLevel    string `yaml:"fileLevel" envconfig:"LOGGING_FILE_LEVEL"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"METRICS_ENABLED"`
	Host    string `yaml:"host" envconfig:"METRICS_HOST"`
	Port    string `yaml:"port" envconfig:"METRICS_PORT"`
}

// defaultConfig mirrors the teacher's DefaultConfigYml constant, but as a
// literal struct since this watcher has no need for an embedded chain
// preset library.
func defaultConfig() *Config {
	return &Config{
		RPC: RPCConfig{
			Timeout: 10 * time.Second,
		},
		Watcher: WatcherConfig{
			PollInterval: 12 * time.Second,
		},
		Store: StoreConfig{
			Path: "./data/evmwatch",
		},
		Logging: LoggingConfig{
			OutputLevel:  "info",
			OutputFormat: "text",
		},
		Metrics: MetricsConfig{
			Host: "127.0.0.1",
			Port: "9090",
		},
	}
}

// ReadConfig loads defaults, merges path's YAML contents over them
// (mergo.WithOverride, so an explicit zero-value in the file never wins
// over a real default unless the field is actually set), then overlays
// environment variables, mirroring the teacher's two-phase
// ReadConfig/readConfigEnv split.
func ReadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config file %v: %w", path, err)
		}
		defer f.Close()

		var fromFile Config
		if err := yaml.NewDecoder(f).Decode(&fromFile); err != nil {
			return nil, fmt.Errorf("decode config file %v: %w", path, err)
		}
		if err := mergo.Merge(cfg, fromFile, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge config file %v: %w", path, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}

	if cfg.RPC.Endpoint == "" {
		return nil, fmt.Errorf("rpc.endpoint is required")
	}

	return cfg, nil
}
