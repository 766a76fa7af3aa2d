package main

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sarchlab/rv32sim/config"
)

// newLogger builds the process logger. Logs go to stderr unless a log file
// is configured, in which case the file is rotated by size.
func newLogger(cfg config.LogConfig) hclog.Logger {
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "rv32sim",
		Level:  hclog.LevelFromString(cfg.Level),
		Output: out,
	})
}
