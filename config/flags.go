package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"reset-addr":       "reset_addr",
	"mem-size":         "mem_size",
	"step":             "step",
	"peripherals":      "peripherals",
	"semihosting":      "semihosting",
	"reorder":          "reorder",
	"max-instructions": "max_instructions",
	"trace":            "trace",
	"icache":           "icache.enabled",
	"dcache":           "dcache.enabled",
	"log-level":        "log.level",
	"log-file":         "log.file",
}

// RegisterFlags defines the run flags on fs. Numeric flags accept a 0x
// prefix.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	RegisterMemoryFlags(fs)
	fs.Bool("step", d.Step, "start in step-by-step mode")
	fs.Bool("peripherals", d.Peripherals, "enable the console peripherals")
	fs.Bool("semihosting", d.Semihosting, "enable EBREAK semihosting")
	fs.Bool("reorder", d.Reorder, "run the reorder pass before execution")
	fs.Uint64("max-instructions", d.MaxInstructions, "stop after this many instructions (0 = no limit)")
	fs.Bool("trace", d.Trace, "log every executed instruction at debug level")
	fs.Bool("icache", d.ICache.Enabled, "collect instruction cache statistics")
	fs.Bool("dcache", d.DCache.Enabled, "collect data cache statistics")
	fs.String("log-level", d.Log.Level, "log level (trace, debug, info, warn, error)")
	fs.String("log-file", d.Log.File, "write logs to a rotating file instead of stderr")
}

// RegisterMemoryFlags defines only the flags that shape the address space.
func RegisterMemoryFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	fs.Uint32("reset-addr", d.ResetAddr, "reset address")
	fs.Uint32("mem-size", d.MemSize, "memory size in bytes")
}

// BindFlags binds the flags defined by RegisterFlags to their keys on v.
// Flags the user did not set leave file and environment values in place.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}
