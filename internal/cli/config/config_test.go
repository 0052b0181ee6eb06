package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Timezone:      "UTC",
			SiteURL:       DefaultSiteURL,
			SnapshotWidth: DefaultSnapshotWidth,
			CardsDir:      DefaultCardsDir,
			Port:          DefaultPort,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errSubstr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:      "empty timezone",
			mutate:    func(c *Config) { c.Timezone = "" },
			wantErr:   true,
			errSubstr: "timezone is required",
		},
		{
			name:      "bogus timezone",
			mutate:    func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr:   true,
			errSubstr: "invalid timezone",
		},
		{
			name:    "named timezone",
			mutate:  func(c *Config) { c.Timezone = "America/New_York" },
			wantErr: false,
		},
		{
			name:      "zero snapshot width",
			mutate:    func(c *Config) { c.SnapshotWidth = 0 },
			wantErr:   true,
			errSubstr: "snapshot_width must be positive",
		},
		{
			name:      "negative port",
			mutate:    func(c *Config) { c.Port = -1 },
			wantErr:   true,
			errSubstr: "port must be in 1-65535",
		},
		{
			name:      "port too large",
			mutate:    func(c *Config) { c.Port = 70000 },
			wantErr:   true,
			errSubstr: "port must be in 1-65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{Timezone: "America/New_York"}
	loc := cfg.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "America/New_York", loc.String())

	cfg = &Config{Timezone: "not-a-zone"}
	assert.Equal(t, time.UTC, cfg.Location())
}

// TestLoad_Defaults tests loading with no file, env vars, or flags.
func TestLoad_Defaults(t *testing.T) {
	ResetConfig()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err, "explicit config path must exist")

	ResetConfig()
	cfg, err = Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultSiteURL, cfg.SiteURL)
	assert.Equal(t, DefaultSnapshotWidth, cfg.SnapshotWidth)
	assert.Equal(t, DefaultCardsDir, cfg.CardsDir)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.True(t, cfg.IncludeTitle)
	assert.True(t, cfg.IncludeButtons)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.RasterizerURL)
}

// TestLoad_File tests that a config file overrides defaults.
func TestLoad_File(t *testing.T) {
	ResetConfig()

	cfgPath := filepath.Join(t.TempDir(), "cardsnap.yaml")
	cfgContent := `timezone: America/Chicago
site_url: https://bi.example.com
snapshot_width: 600
include_title: false
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0600))

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, "https://bi.example.com", cfg.SiteURL)
	assert.Equal(t, 600, cfg.SnapshotWidth)
	assert.False(t, cfg.IncludeTitle)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

// TestLoad_EnvPrecedenceOverFile tests that env vars override the config file.
func TestLoad_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	cfgPath := filepath.Join(t.TempDir(), "cardsnap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("site_url: https://from-file\n"), 0600))

	require.NoError(t, os.Setenv("CARDSNAP_SITE_URL", "https://from-env"))
	defer func() { _ = os.Unsetenv("CARDSNAP_SITE_URL") }()

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env", cfg.SiteURL, "env var should override config file")
}

// TestLoad_FlagPrecedence tests that flags override env vars and the config file.
func TestLoad_FlagPrecedence(t *testing.T) {
	ResetConfig()

	cfgPath := filepath.Join(t.TempDir(), "cardsnap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("site_url: https://from-file\n"), 0600))

	require.NoError(t, os.Setenv("CARDSNAP_SITE_URL", "https://from-env"))
	defer func() { _ = os.Unsetenv("CARDSNAP_SITE_URL") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("site-url", "", "site base URL")
	require.NoError(t, flags.Set("site-url", "https://from-flag"))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "https://from-flag", cfg.SiteURL, "flag value should override config file and env var")
}

// TestLoad_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoad_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	require.NoError(t, os.Setenv("CARDSNAP_CARDS_DIR", "from_env"))
	defer func() { _ = os.Unsetenv("CARDSNAP_CARDS_DIR") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("cards-dir", "", "cards directory")
	// Note: not calling flags.Set(), so Changed is false.

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.CardsDir, "env var should be used when flag is not set")
}

// TestLoad_InvalidFileValue tests that validation rejects bad file values.
func TestLoad_InvalidFileValue(t *testing.T) {
	ResetConfig()

	cfgPath := filepath.Join(t.TempDir(), "cardsnap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("snapshot_width: -5\n"), 0600))

	_, err := Load(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot_width must be positive")
}
