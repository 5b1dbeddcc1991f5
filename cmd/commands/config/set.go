package config

import (
	"fmt"

	"dsadmin/internal/config"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" subcommand.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a configuration value and persist it.\n\n" +
			config.KeysHelp(),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			spec := config.Lookup(key)
			if spec == nil {
				return fmt.Errorf("unknown key %q (known keys: %v)", key, config.KeyNames())
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if err := spec.Set(cfg, value); err != nil {
				return err
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			fmt.Printf("%s = %s\n", spec.Name, spec.Get(cfg))
			return nil
		},
	}

	return cmd
}
