package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/orderparse/internal/catalog"
	"github.com/ppiankov/orderparse/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.3.0"

var (
	cfgFile     string
	verbose     bool
	logFormat   string
	catalogPath string
	noCache     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "orderparse",
	Short: "orderparse - structured orders from catering order text",
	Long: `orderparse turns the free text of catering orders (reservation
notifications, messenger pastes, forwarded emails) into structured orders:
customer, contact, fulfillment, address, schedule, items and amounts.

Items are resolved against the product catalog, the order total is
re-derived from the items, and anything that looks off (a total that does
not add up, an unpriced item, a delivery without an address) is flagged
for review rather than silently corrected.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command; commands stop when ctx is done
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of orderparse.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "orderparse %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.orderparse/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "product catalog file (.yaml, .yml or .json)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the parse cache")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".orderparse"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ORDERPARSE_*
	viper.SetEnvPrefix("ORDERPARSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars can override keys
// that are absent from the config file.
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("catalog.path", cfg.Catalog.Path)
	v.SetDefault("catalog.driver", cfg.Catalog.Driver)
	v.SetDefault("catalog.dsn", cfg.Catalog.DSN)
	v.SetDefault("catalog.active_only", cfg.Catalog.ActiveOnly)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	v.SetDefault("extract.status_words", cfg.Extract.StatusWords)
	v.SetDefault("extract.max_bare_quantity", cfg.Extract.MaxBareQuantity)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.requests_per_second", cfg.Server.RequestsPerSecond)
	v.SetDefault("server.burst_size", cfg.Server.BurstSize)
	v.SetDefault("server.max_body_bytes", cfg.Server.MaxBodyBytes)

	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.include_footer", cfg.Output.IncludeFooter)
	v.SetDefault("output.log_format", cfg.Output.LogFormat)
}

// loadConfig resolves defaults, config file, env vars and flags into a Config
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cfg.Output.LogFormat != "text" && cfg.Output.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q (want text or json)", cfg.Output.LogFormat)
	}
	return cfg, nil
}

// newLogger builds the slog logger; verbose output drops the level to debug
func newLogger(w io.Writer, cfg *model.Config, level slog.Level) *slog.Logger {
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Output.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// setup loads config, logger and catalog for a command
func setup(ctx context.Context, level slog.Level) (*model.Config, *slog.Logger, []model.CatalogProduct, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(os.Stderr, cfg, level)
	slog.SetDefault(logger)

	products, err := catalog.Load(ctx, cfg.Catalog)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(products) == 0 {
		logger.Warn("catalog.empty", "hint", "set --catalog or catalog.path; items stay unpriced unless the text prices them")
	} else {
		logger.Debug("catalog.loaded", "products", len(products))
	}
	return cfg, logger, products, nil
}
