package audit

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func StatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stats",
		Short:        "Show audit store statistics",
		RunE:         runStats,
		SilenceUsage: true,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	trail := newTrail()
	stats := trail.GetStats(cmd.Context())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total records\t%d\n", stats.Total)
	fmt.Fprintf(w, "Today\t%d\n", stats.Today)
	fmt.Fprintf(w, "Last 7 days\t%d\n", stats.LastWeek)
	fmt.Fprintf(w, "Oldest record\t%s\n", formatStatTime(stats.Oldest))
	fmt.Fprintf(w, "Newest record\t%s\n", formatStatTime(stats.Newest))
	return w.Flush()
}

func formatStatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
