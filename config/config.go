// Package config provides run configuration for the emulator: defaults,
// file and flag loading, validation and YAML export.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/rv32sim/cache"
	"github.com/sarchlab/rv32sim/emu"
)

// EnvPrefix prefixes environment variables that override configuration
// keys, e.g. RV32SIM_MEM_SIZE.
const EnvPrefix = "RV32SIM"

// DefaultResetAddr is where execution starts unless configured otherwise.
const DefaultResetAddr uint32 = 0x100

// CacheConfig enables and sizes one cache statistics model.
type CacheConfig struct {
	Enabled      bool `mapstructure:"enabled" yaml:"enabled"`
	cache.Config `mapstructure:",squash" yaml:",inline"`
}

// LogConfig controls the run log.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// File is the log file path. Logs go to stderr when empty.
	File string `mapstructure:"file" yaml:"file"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// Config holds the settings of one emulation run.
type Config struct {
	// ResetAddr is the PC at the start of the run and after a reset command.
	ResetAddr uint32 `mapstructure:"reset_addr" yaml:"reset_addr"`

	// MemSize is the size of the emulated address space in bytes.
	MemSize uint32 `mapstructure:"mem_size" yaml:"mem_size"`

	// Step starts the controller in stepping mode.
	Step bool `mapstructure:"step" yaml:"step"`

	// Peripherals enables the console peripherals.
	Peripherals bool `mapstructure:"peripherals" yaml:"peripherals"`

	// Semihosting enables the EBREAK console trap.
	Semihosting bool `mapstructure:"semihosting" yaml:"semihosting"`

	// Reorder runs the reorder pass before execution.
	Reorder bool `mapstructure:"reorder" yaml:"reorder"`

	// MaxInstructions stops the run after this many instructions. 0 means
	// no limit.
	MaxInstructions uint64 `mapstructure:"max_instructions" yaml:"max_instructions"`

	// Trace logs every executed instruction at debug level.
	Trace bool `mapstructure:"trace" yaml:"trace"`

	ICache CacheConfig `mapstructure:"icache" yaml:"icache"`
	DCache CacheConfig `mapstructure:"dcache" yaml:"dcache"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		ResetAddr:   DefaultResetAddr,
		MemSize:     emu.DefaultMemorySize,
		Peripherals: true,
		Semihosting: true,
		ICache:      CacheConfig{Config: cache.DefaultL1IConfig()},
		DCache:      CacheConfig{Config: cache.DefaultL1DConfig()},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers every key of DefaultConfig on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("reset_addr", d.ResetAddr)
	v.SetDefault("mem_size", d.MemSize)
	v.SetDefault("step", d.Step)
	v.SetDefault("peripherals", d.Peripherals)
	v.SetDefault("semihosting", d.Semihosting)
	v.SetDefault("reorder", d.Reorder)
	v.SetDefault("max_instructions", d.MaxInstructions)
	v.SetDefault("trace", d.Trace)

	setCacheDefaults(v, "icache", d.ICache)
	setCacheDefaults(v, "dcache", d.DCache)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
}

func setCacheDefaults(v *viper.Viper, prefix string, c CacheConfig) {
	v.SetDefault(prefix+".enabled", c.Enabled)
	v.SetDefault(prefix+".size", c.Size)
	v.SetDefault(prefix+".associativity", c.Associativity)
	v.SetDefault(prefix+".block_size", c.BlockSize)
}

// NewViper returns a viper instance with defaults registered and
// environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path over the defaults. An empty
// path yields the defaults with environment overrides applied. The format
// follows the file extension (yaml, json, toml).
func Load(path string) (*Config, error) {
	return FromViper(NewViper(), path)
}

// FromViper reads the configuration file at path, if any, into v and
// decodes the merged result. Flags bound to v take precedence over the file.
func FromViper(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a runnable machine.
func (c *Config) Validate() error {
	if c.MemSize == 0 {
		return fmt.Errorf("mem_size must be > 0")
	}
	if c.MemSize%4 != 0 {
		return fmt.Errorf("mem_size must be a multiple of 4, got %d", c.MemSize)
	}
	if c.ResetAddr%4 != 0 {
		return fmt.Errorf("reset_addr 0x%x is not 4-byte aligned", c.ResetAddr)
	}
	if c.ResetAddr >= c.MemSize {
		return fmt.Errorf("reset_addr 0x%x is outside memory of size 0x%x", c.ResetAddr, c.MemSize)
	}
	if c.ICache.Enabled {
		if err := c.ICache.Validate(); err != nil {
			return fmt.Errorf("icache: %w", err)
		}
	}
	if c.DCache.Enabled {
		if err := c.DCache.Validate(); err != nil {
			return fmt.Errorf("dcache: %w", err)
		}
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// WriteYAML writes the configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := c.WriteYAML(&buf); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
