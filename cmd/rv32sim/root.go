package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/rv32sim/config"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "rv32sim",
		Short: "A functional RV32I emulator",
		Long: `rv32sim loads a raw binary or ELF32 RISC-V program and runs it under a
line-oriented monitor with console peripherals and EBREAK semihosting.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (yaml, json or toml)")

	root.AddCommand(
		newRunCmd(&configPath),
		newDumpCmd(&configPath),
		newConfigCmd(&configPath),
	)

	return root
}

// loadConfig merges defaults, the config file, the environment and the flags
// in fs, then validates the result.
func loadConfig(path string, fs *pflag.FlagSet) (*config.Config, error) {
	v := config.NewViper()
	if err := config.BindFlags(v, fs); err != nil {
		return nil, err
	}

	cfg, err := config.FromViper(v, path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
