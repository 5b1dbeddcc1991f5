package audit

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func ExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export audit records as CSV",
		Long: `Export audit records as CSV, newest first.

Examples:
  dsadmin audit export --output audit.csv
  dsadmin audit export --start 2026-01-01 --end 2026-06-30 --output h1.csv
  dsadmin audit export > audit.csv`,
		RunE:         runExport,
		SilenceUsage: true,
	}

	cmd.Flags().String("start", "", "Export records at or after this date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Export records at or before this date (YYYY-MM-DD)")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	startRaw, _ := cmd.Flags().GetString("start")
	start, err := parseDate(startRaw)
	if err != nil {
		return err
	}
	endRaw, _ := cmd.Flags().GetString("end")
	end, err := parseDate(endRaw)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	path, _ := cmd.Flags().GetString("output")
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	trail := newTrail()
	if err := trail.ExportCSV(cmd.Context(), out, start, end); err != nil {
		return err
	}

	if path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported audit records to %s\n", path)
	}
	return nil
}
