package cache

import (
	"fmt"
	"text/tabwriter"

	"dsadmin/internal/dircache"

	"github.com/spf13/cobra"
)

func StatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stats",
		Short:        "Show cache freshness and row counts",
		RunE:         runStats,
		SilenceUsage: true,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	stats := c.GetStats()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tITEMS\tLAST REFRESH\tFRESH")
	fmt.Fprintln(w, "------\t-----\t------------\t-----")
	writeBucket(w, "principals", stats.Principals, c.Valid(dircache.BucketPrincipals))
	writeBucket(w, "groups", stats.Groups, c.Valid(dircache.BucketGroups))
	return w.Flush()
}

func writeBucket(w *tabwriter.Writer, name string, b dircache.BucketStats, fresh bool) {
	refresh := "-"
	if b.LastRefresh != nil {
		refresh = b.LastRefresh.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(w, "%s\t%d\t%s\t%t\n", name, b.ItemCount, refresh, fresh)
}
