package cmd

import (
	"os"

	"dsadmin/cmd/commands/audit"
	"dsadmin/cmd/commands/cache"
	cfgcmd "dsadmin/cmd/commands/config"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "dsadmin",
		Short: "A CLI tool for directory service administration data",
		Long: `dsadmin manages the local data layer of a directory administration
workstation: a TTL-bounded cache of directory listings and an append-only
audit trail of administrative actions.

Quick start:
  dsadmin cache stats              # Show cache freshness
  dsadmin cache clear              # Force the next listing to refetch
  dsadmin audit list               # Recent administrative actions
  dsadmin audit export -o out.csv  # Export the trail for review
  dsadmin config get               # Show current settings`,
	}

	cmd.AddCommand(audit.NewCommand())
	cmd.AddCommand(cache.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
