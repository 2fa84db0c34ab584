package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds all orderparse settings.
// Field tags match the keys of ~/.orderparse/config.yaml.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// CatalogConfig says where the product master comes from.
// Path wins when both a path and a DSN are set.
type CatalogConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`     // .yaml, .yml or .json file
	Driver     string `yaml:"driver" mapstructure:"driver"` // sqlite or pgx
	DSN        string `yaml:"dsn" mapstructure:"dsn"`
	ActiveOnly bool   `yaml:"active_only" mapstructure:"active_only"`
}

// CacheConfig controls the parse-result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ExtractConfig tunes the bare "name quantity" recognizer
type ExtractConfig struct {
	StatusWords     []string `yaml:"status_words" mapstructure:"status_words"`
	MaxBareQuantity int      `yaml:"max_bare_quantity" mapstructure:"max_bare_quantity"`
}

// ServerConfig controls the HTTP surface
type ServerConfig struct {
	Addr              string  `yaml:"addr" mapstructure:"addr"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	ClientRates []ClientRate `yaml:"client_rates" mapstructure:"client_rates"`
}

// ClientRate overrides the request rate for one client IP.
// RequestsPerSecond <= 0 exempts the client.
type ClientRate struct {
	Client            string  `yaml:"client" mapstructure:"client"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// OutputConfig controls rendering and logging
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
	LogFormat     string `yaml:"log_format" mapstructure:"log_format"` // text or json
}

// DefaultStatusWords are words of status-summary lines that look like "name quantity" items
var DefaultStatusWords = []string{
	"완료", "확정", "접수", "취소",
	"complete", "confirmed", "received", "cancelled",
}

// DefaultMaxBareQuantity is the smallest trailing number not read as a bare quantity
const DefaultMaxBareQuantity = 100

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "orderparse-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".orderparse", "cache")
	}

	return &Config{
		Catalog: CatalogConfig{
			Driver:     "sqlite",
			ActiveOnly: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Extract: ExtractConfig{
			StatusWords:     append([]string(nil), DefaultStatusWords...),
			MaxBareQuantity: DefaultMaxBareQuantity,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			RequestsPerSecond: 5,
			BurstSize:         10,
			MaxBodyBytes:      256 << 10,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			LogFormat:     "text",
		},
	}
}
