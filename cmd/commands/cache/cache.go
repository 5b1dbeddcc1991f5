package cache

import (
	"fmt"
	"os"
	"time"

	"dsadmin/internal/config"
	"dsadmin/internal/dircache"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewCommand returns the "cache" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the directory cache",
		Long: "Inspect and manage the local cache of directory listings.\n\n" +
			"The cache database lives in the per-user cache directory and is a\n" +
			"disposable copy of directory data; clearing it only forces the next\n" +
			"listing to refetch.",
		SilenceUsage: true,
	}

	cmd.AddCommand(StatsCommand())
	cmd.AddCommand(ClearCommand())

	return cmd
}

// openCache opens the cache with the configured TTL.
func openCache() (*dircache.Cache, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	ttl := time.Duration(cfg.CacheTTLMinutesOrDefault()) * time.Minute
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return dircache.Open(ttl, logger)
}
