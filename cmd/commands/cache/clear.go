package cache

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "clear",
		Short:        "Discard all cached directory listings",
		Long:         "Discard all cached directory listings. The next listing refetches from the directory service.",
		RunE:         runClear,
		SilenceUsage: true,
	}

	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	c.Clear()
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}
