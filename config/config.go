// Package config handles regvm.toml host configuration.
package config

import (
	"errors"
	"iter"
	"maps"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/regvm/internal"
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

const (
	DEFAULT_TICK_LIMIT = 1_000_000 // Tick budget when no configuration is given.
)

var (
	ErrTickLimitNegative = errors.New(f("tick-limit must not be negative"))
)

// ErrConfigKey lists configuration keys that are not understood.
type ErrConfigKey []string

func (err ErrConfigKey) Error() string {
	return f("unknown configuration keys: %v", strings.Join(err, ", "))
}

// ErrConfigFile indicates the configuration file that failed to load.
type ErrConfigFile struct {
	Path string
	Err  error
}

func (err *ErrConfigFile) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrConfigFile) Unwrap() error {
	return err.Err
}

// Config represents a regvm.toml configuration.
type Config struct {
	Machine   Machine   `toml:"machine"`
	Assembler Assembler `toml:"assembler"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
}

// Machine configures program execution.
type Machine struct {
	TickLimit int  `toml:"tick-limit"` // Zero for unlimited.
	Strict    bool `toml:"strict"`
	Verbose   bool `toml:"verbose"`
	Trace     bool `toml:"trace"`
}

// Assembler configures the program front-ends.
type Assembler struct {
	Equates map[string]string `toml:"equates"`
}

// Default returns the configuration used when no file is given.
func Default() (cfg *Config) {
	cfg = &Config{
		Machine: Machine{
			TickLimit: DEFAULT_TICK_LIMIT,
		},
	}

	return
}

// Load parses a configuration file on top of the defaults.
func Load(path string) (cfg *Config, err error) {
	defer func() {
		if err != nil {
			cfg = nil
			err = &ErrConfigFile{Path: path, Err: err}
		}
	}()

	cfg = Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return
	}

	err = cfg.check(md)
	if err != nil {
		return
	}

	cfg.Path = path

	return
}

// Parse parses configuration text on top of the defaults.
func Parse(text string) (cfg *Config, err error) {
	cfg = Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		cfg = nil
		return
	}

	err = cfg.check(md)
	if err != nil {
		cfg = nil
	}

	return
}

func (cfg *Config) check(md toml.MetaData) (err error) {
	undecoded := md.Undecoded()
	if len(undecoded) > 0 {
		var keys ErrConfigKey
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		err = keys
		return
	}

	if cfg.Machine.TickLimit < 0 {
		err = ErrTickLimitNegative
		return
	}

	return
}

// Equates returns the configured assembler equates, in name order.
func (cfg *Config) Equates() iter.Seq2[string, string] {
	return internal.Sorted2(maps.All(cfg.Assembler.Equates))
}
