/*
Package config loads the node configuration from a TOML file.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/multierr"

	"github.com/crowdfund-org/crowdfund-go-base/rent"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

const (
	DefaultConfigFile = "config.toml"
	stateDBFile       = "state.db"
)

var ErrConfigNotFound = errors.New("config file not found")

// DefaultProgramID is the program ID of the crowdfund program unless configured otherwise.
var DefaultProgramID = types.Address{0xcf, 0x01}

type Config struct {
	// DataDir is the directory of the record store. Relative path is
	// resolved against the directory of the config file.
	DataDir   string        `toml:"data_dir"`
	ProgramID types.Address `toml:"program_id"`
	LogLevel  string        `toml:"log_level"`
	Rent      rent.Rent     `toml:"rent"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:   "data",
		ProgramID: DefaultProgramID,
		LogLevel:  "info",
		Rent:      rent.Default(),
	}
}

// StatePath returns the path of the record store database.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, stateDBFile)
}

/*
LoadConfig reads the config from file at path, fields missing from the file
keep their default values. Returns ErrConfigNotFound when the file doesn't
exist.
*/
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read only

	cfg, err := FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(filepath.Dir(path), cfg.DataDir)
	}
	return cfg, nil
}

// FromReader decodes TOML config over the defaults and validates the result.
func FromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the config to path, creating the parent directories as needed.
func SaveConfig(path string, cfg *Config) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate returns all the problems of the config combined into one error.
func (c *Config) Validate() error {
	var err error
	if c.DataDir == "" {
		err = multierr.Append(err, errors.New("data_dir is not set"))
	}
	if c.ProgramID.IsZero() {
		err = multierr.Append(err, errors.New("program_id must not be the system program ID"))
	}
	if _, lvlErr := logging.LevelFromString(c.LogLevel); lvlErr != nil {
		err = multierr.Append(err, fmt.Errorf("log_level: %w", lvlErr))
	}
	if c.Rent.PricePerByteYear == 0 {
		err = multierr.Append(err, errors.New("rent.price_per_byte_year must be positive"))
	}
	if c.Rent.ExemptionYears == 0 {
		err = multierr.Append(err, errors.New("rent.exemption_years must be positive"))
	}
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
