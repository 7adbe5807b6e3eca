// Package config loads the optional TOML configuration file for the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
)

// Defaults applied when neither the config file nor a flag sets a value.
const (
	DefaultOutput  = "extracted"
	DefaultLogFile = "errors.log"

	// DefaultMaxEntrySize bounds a single transformed entry (256 MiB).
	DefaultMaxEntrySize ByteSize = 256 << 20

	// MaxVerbose is the highest accepted verbosity.
	MaxVerbose = 2
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds extraction settings.
type Config struct {
	Output       string   `toml:"output"`
	LogFile      string   `toml:"log_file"`
	Verbose      int      `toml:"verbose"`
	MaxEntrySize ByteSize `toml:"max_entry_size"`
	NoClobber    bool     `toml:"no_clobber"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output:       DefaultOutput,
		LogFile:      DefaultLogFile,
		MaxEntrySize: DefaultMaxEntrySize,
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals TOML data into cfg, leaving unset keys untouched.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.Output == "":
		return fmt.Errorf("%w: output directory is empty", ErrInvalid)
	case c.Verbose < 0 || c.Verbose > MaxVerbose:
		return fmt.Errorf("%w: verbose must be between 0 and %d, got %d", ErrInvalid, MaxVerbose, c.Verbose)
	}
	return nil
}

// ByteSize is a size in bytes written either as a plain count or in
// human-readable form such as "64MiB" or "10 MB".
type ByteSize uint64

// ParseByteSize parses s as a ByteSize.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// UnmarshalText accepts TOML strings and integers alike.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = n
	return nil
}

// String formats b in IEC units.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Set implements pflag.Value.
func (b *ByteSize) Set(s string) error {
	return b.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (b *ByteSize) Type() string {
	return "size"
}
