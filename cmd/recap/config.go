package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(root *rootOptions) *cobra.Command {
	var asJSON, showPath bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration recap would run with after merging defaults,
the config file, RECAP_* environment variables and flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if showPath {
				source := cfg.Source
				if source == "" {
					source = "(none)"
				}
				_, err := fmt.Fprintln(out, source)
				return err
			}

			var data []byte
			if asJSON {
				data, err = json.MarshalIndent(cfg, "", "  ")
				data = append(data, '\n')
			} else {
				data, err = yaml.Marshal(cfg)
			}
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			if _, err := out.Write(data); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	cmd.Flags().BoolVar(&showPath, "path", false, "print only the config file that was read")
	return cmd
}
