package audit

import (
	"fmt"

	"dsadmin/internal/config"

	"github.com/spf13/cobra"
)

func PurgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete audit records older than the retention window",
		Long: `Delete audit records older than the retention window.

With no flag, uses the configured audit-retention-days. A retention of 0
keeps records forever, so purge does nothing.

Examples:
  dsadmin audit purge
  dsadmin audit purge --retention-days 90`,
		RunE:         runPurge,
		SilenceUsage: true,
	}

	cmd.Flags().Int("retention-days", 0, "Override the configured retention window")

	return cmd
}

func runPurge(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("retention-days")
	if days < 0 {
		return fmt.Errorf("retention-days must not be negative")
	}

	if !cmd.Flags().Changed("retention-days") {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		days = cfg.AuditRetentionDays
	}

	if days <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retention is unlimited; nothing to purge.")
		return nil
	}

	trail := newTrail()
	removed := trail.Purge(cmd.Context(), days)
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit record(s) older than %d day(s).\n", removed, days)
	return nil
}
