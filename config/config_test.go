package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/crowdfund-org/crowdfund-go-base/rent"
)

func Test_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home", DefaultConfigFile)

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrConfigNotFound)

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.Rent.ExemptionYears = 3
	cfg.ProgramID[31] = 0x42
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ProgramID, loaded.ProgramID)
	require.Equal(t, cfg.Rent, loaded.Rent)
	require.Equal(t, "debug", loaded.LogLevel)
	// relative data dir is resolved against the config file location
	require.Equal(t, filepath.Join(filepath.Dir(path), "data"), loaded.DataDir)
	require.Equal(t, filepath.Join(filepath.Dir(path), "data", "state.db"), loaded.StatePath())
}

func Test_FromReader(t *testing.T) {
	t.Run("defaults for missing keys", func(t *testing.T) {
		cfg, err := FromReader(strings.NewReader(`log_level = "warn"`))
		require.NoError(t, err)
		exp := DefaultConfig()
		exp.LogLevel = "warn"
		require.Equal(t, exp, cfg)
	})

	t.Run("program ID and rent", func(t *testing.T) {
		cfg, err := FromReader(strings.NewReader(`
data_dir = "/var/lib/crowdfund"
program_id = "0x00000000000000000000000000000000000000000000000000000000000000ff"

[rent]
price_per_byte_year = 1
exemption_years = 1
storage_overhead = 0
`))
		require.NoError(t, err)
		require.Equal(t, "/var/lib/crowdfund", cfg.DataDir)
		require.EqualValues(t, 0xff, cfg.ProgramID[31])
		require.Equal(t, rent.Rent{PricePerByteYear: 1, ExemptionYears: 1}, cfg.Rent)
		require.EqualValues(t, 48, cfg.Rent.MinimumBalance(48))
	})

	t.Run("invalid program ID", func(t *testing.T) {
		_, err := FromReader(strings.NewReader(`program_id = "0xcf01"`))
		require.ErrorContains(t, err, "address length must be 32 bytes, got 2 bytes")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := FromReader(strings.NewReader(`data_directory = "x"`))
		require.ErrorContains(t, err, "unknown config keys: [data_directory]")
	})

	t.Run("not TOML", func(t *testing.T) {
		_, err := FromReader(strings.NewReader(`{"data_dir": "x"}`))
		require.ErrorContains(t, err, "decoding config")
	})
}

func Test_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.DataDir = ""
	cfg.ProgramID = [32]byte{}
	cfg.LogLevel = "chatty"
	cfg.Rent = rent.Rent{}
	err := cfg.Validate()
	require.ErrorContains(t, err, "invalid config: ")
	require.Len(t, multierr.Errors(errors.Unwrap(err)), 5)
	require.ErrorContains(t, err, "data_dir is not set")
	require.ErrorContains(t, err, "log_level")
	require.ErrorContains(t, err, "rent.exemption_years must be positive")
}

func Test_LoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`log_level = "chatty"`), 0600))
	_, err := LoadConfig(path)
	require.ErrorContains(t, err, "invalid config")
}
