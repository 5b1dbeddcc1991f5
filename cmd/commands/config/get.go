package config

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"dsadmin/internal/config"

	"github.com/spf13/cobra"
)

// GetCommand returns the "config get" subcommand.
func GetCommand() *cobra.Command {
	var key string
	var output string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show configuration values",
		Long: "Show the current configuration. With --key, prints only that value.\n\n" +
			config.KeysHelp(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if key != "" {
				spec := config.Lookup(key)
				if spec == nil {
					return fmt.Errorf("unknown key %q (known keys: %v)", key, config.KeyNames())
				}
				fmt.Println(spec.Get(cfg))
				return nil
			}

			if output == "json" {
				values := make(map[string]string, len(config.Keys))
				for _, spec := range config.Keys {
					values[spec.Name] = spec.Get(cfg)
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(values)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE")
			for _, spec := range config.Keys {
				fmt.Fprintf(w, "%s\t%s\n", spec.Name, spec.Get(cfg))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "print a single key's value")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table|json)")

	return cmd
}
