package audit

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"dsadmin/internal/auditlog"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent audit records",
		Long: `List recent audit records, newest first.

Examples:
  dsadmin audit list
  dsadmin audit list --limit 50
  dsadmin audit list --operator jsmith --action disable
  dsadmin audit list --start 2026-08-01 --end 2026-08-31
  dsadmin audit list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of records to display")
	cmd.Flags().String("operator", "", "Filter by operator username (substring match)")
	cmd.Flags().String("action", "", "Filter by exact action")
	cmd.Flags().String("entity-type", "", "Filter by entity type (principal, group, system)")
	cmd.Flags().String("entity-id", "", "Filter by entity identifier")
	cmd.Flags().String("start", "", "Include records at or after this date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Include records at or before this date (YYYY-MM-DD)")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}

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

	operator, _ := cmd.Flags().GetString("operator")
	action, _ := cmd.Flags().GetString("action")
	entityType, _ := cmd.Flags().GetString("entity-type")
	entityID, _ := cmd.Flags().GetString("entity-id")

	trail := newTrail()
	records, err := trail.Query(cmd.Context(), auditlog.Filter{
		Start:      start,
		End:        end,
		Operator:   operator,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audit records found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOPERATOR\tACTION\tENTITY\tRESULT\tERROR")
	fmt.Fprintln(w, "----\t--------\t------\t------\t------\t-----")
	for _, rec := range records {
		timeStr := rec.Timestamp.Local().Format("2006-01-02 15:04:05")
		errMsg := rec.ErrorMessage
		if errMsg == "" {
			errMsg = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			timeStr,
			rec.Username,
			rec.Action,
			formatEntity(rec),
			rec.Result,
			errMsg,
		)
	}
	w.Flush()
	return nil
}

func formatEntity(rec auditlog.Record) string {
	if rec.EntityType == "" && rec.EntityID == "" && rec.EntityName == "" {
		return "-"
	}

	entity := rec.EntityType
	if rec.EntityID != "" {
		if entity != "" {
			entity += ":" + rec.EntityID
		} else {
			entity = rec.EntityID
		}
	}
	if rec.EntityName != "" {
		if entity != "" {
			entity += " (" + rec.EntityName + ")"
		} else {
			entity = rec.EntityName
		}
	}
	return entity
}
