package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rv32sim/config"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/session"
)

var headerColor = color.New(color.FgCyan, color.Bold)

func newRunCmd(configPath *string) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run a program under the monitor",
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

			out := cmd.OutOrStdout()
			logger := newLogger(cfg.Log)

			sess, err := session.New(cfg,
				session.WithStdout(out),
				session.WithStderr(cmd.ErrOrStderr()),
				session.WithLineSource(newLineSource(cmd.InOrStdin(), out)),
				session.WithLogger(logger))
			if err != nil {
				return err
			}

			report, err := sess.Run(img)
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}

			if !quiet {
				_, _ = headerColor.Fprintln(out, "\n=== Summary ===")
				report.WriteSummary(out)
			}

			return nil
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the run summary")

	return cmd
}
