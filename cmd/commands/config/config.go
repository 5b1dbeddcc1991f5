package config

import (
	"dsadmin/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dsadmin configuration",
		Long: "View and modify persistent dsadmin settings.\n\n" +
			"Configuration is stored at ~/.config/dsadmin/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(GetCommand())
	cmd.AddCommand(SetCommand())

	return cmd
}
