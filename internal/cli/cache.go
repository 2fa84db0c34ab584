package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/orderparse/internal/cache"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the parse cache",
	Long: `Manage the on-disk parse cache (cache.dir).

Entries are keyed by the order text, the catalog contents and the extract
settings, so a changed catalog never serves a stale parse.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached parse",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dir, err := openCache()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Cleared cache: %s\n", dir)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cached parses",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dir, err := openCache()
		if err != nil {
			return err
		}
		removed, err := store.Prune()
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Pruned %d expired entries from %s\n", removed, dir)
		return nil
	},
}

func openCache() (*cache.Store, string, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, "", err
	}
	// the cache commands work on the directory even when parsing skips it
	cfg.Cache.Enabled = true
	store := cache.NewStore(cfg.Cache)
	if store == nil {
		return nil, "", fmt.Errorf("no cache directory configured")
	}
	return store, cfg.Cache.Dir, nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}
