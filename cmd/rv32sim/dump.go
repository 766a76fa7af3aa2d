package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rv32sim/config"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
)

func newDumpCmd(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump <program>",
		Short: "Write the loaded program as CSV rows from the reset address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, cmd.Flags())
			if err != nil {
				return err
			}

			img, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			mem := emu.NewMemory(cfg.MemSize)
			if n := mem.LoadProgram(img.Data); n < len(img.Data) {
				newLogger(cfg.Log).Warn("program image truncated",
					"image_bytes", len(img.Data), "memory_bytes", cfg.MemSize)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			return loader.WriteCSV(w, loader.DumpRows(mem, cfg.ResetAddr))
		},
	}

	config.RegisterMemoryFlags(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to this file instead of stdout")

	return cmd
}
