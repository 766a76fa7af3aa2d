package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rv32sim/config"
)

func newConfigCmd(configPath *string) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath, cmd.Flags())
			if err != nil {
				return err
			}

			if save != "" {
				if err := cfg.Save(save); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", save)
				return nil
			}

			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVar(&save, "save", "", "write the configuration to this file")

	return cmd
}
