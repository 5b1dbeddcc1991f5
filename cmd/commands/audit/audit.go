package audit

import (
	"fmt"
	"os"
	"time"

	"dsadmin/internal/auditlog"
	"dsadmin/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewCommand returns the "audit" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "View and manage the audit trail",
		Long: "Query, export, and prune the append-only record of administrative actions.\n\n" +
			"The audit database lives in ~/.config/dsadmin/ by default, or on a shared\n" +
			"path when audit-storage-mode is set to network.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(ExportCommand())
	cmd.AddCommand(PurgeCommand())
	cmd.AddCommand(StatsCommand())

	return cmd
}

// newTrail builds a Trail whose settings track the config file, so a path
// reconfigured between invocations takes effect without restart.
func newTrail() *auditlog.Trail {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	settings := func() auditlog.Settings {
		cfg, err := config.Load()
		if err != nil {
			cfg = &config.Config{}
		}
		return auditlog.Settings{
			Enabled:       cfg.AuditEnabledOrDefault(),
			RetentionDays: cfg.AuditRetentionDays,
			StorageMode:   cfg.AuditStorageMode,
			NetworkPath:   cfg.AuditNetworkPath,
		}
	}
	return auditlog.New(settings, logger)
}

// parseDate accepts YYYY-MM-DD or RFC 3339 timestamps from CLI flags.
func parseDate(input string) (*time.Time, error) {
	if input == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", input)
	}
	return &t, nil
}
