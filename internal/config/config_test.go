package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/locator"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid config",
			yaml: "accounts:\n  admin:\n    password: secret\n",
		},
		{
			name:    "missing admin password fails validation",
			yaml:    `log_level: info`,
			wantErr: "config validation failed",
		},
		{
			name:    "unknown tier fails validation",
			yaml:    "tier: enterprise\naccounts:\n  admin:\n    password: secret\n",
			wantErr: "config validation failed",
		},
		{
			name:    "relative base url fails validation",
			yaml:    "base_url: /shop\naccounts:\n  admin:\n    password: secret\n",
			wantErr: "base_url must be an absolute",
		},
		{
			name:    "zero parallelism fails validation",
			yaml:    "run:\n  parallel: 0\naccounts:\n  admin:\n    password: secret\n",
			wantErr: "run.parallel",
		},
		{
			name:    "invalid yaml syntax",
			yaml:    `invalid: [yaml: content`,
			wantErr: "failed to unmarshal config file",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			path := writeTestConfig(t, test.yaml)
			cfg, err := Load(path)

			if test.wantErr != "" {
				require.ErrorContains(t, err, test.wantErr)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	path := writeTestConfig(t, "tier: PRO\nrun:\n  scenario_timeout: 90s\naccounts:\n  admin:\n    password: secret\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, locator.Pro, cfg.ParsedTier())
	assert.Equal(t, 90*time.Second, cfg.Run.ScenarioTimeout)
	assert.Equal(t, def.Run.Parallel, cfg.Run.Parallel)
	assert.Equal(t, def.BaseURL, cfg.BaseURL)
	assert.Equal(t, "admin", cfg.Accounts.Admin.Username)
	assert.Equal(t, "secret", cfg.Accounts.Admin.Password)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, def.Browser.AuthDir, cfg.BrowserConfig().AuthDir)
	assert.Equal(t, def.Browser.Timeout, cfg.BrowserConfig().Page.Timeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MERCATO_BASE_URL", "https://shop.example.com/")
	t.Setenv("MERCATO_ACCOUNTS_ADMIN_PASSWORD", "from-env")
	t.Setenv("MERCATO_RUN_PARALLEL", "4")

	cfg, err := Load(writeTestConfig(t, "base_url: http://localhost:9000/\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/", cfg.BaseURL)
	assert.Equal(t, "from-env", cfg.Accounts.Admin.Password)
	assert.Equal(t, 4, cfg.Run.Parallel)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	require.ErrorContains(t, err, "failed to read config file")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, cfg)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Accounts.Admin.Password = "secret"
	cfg.Run.ScenarioTimeout = 2 * time.Minute
	path := filepath.Join(t.TempDir(), "nested", "mercato.yaml")
	require.NoError(t, Write(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLevel(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.LogLevel = "DEBUG"
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())

	cfg.LogLevel = "loud"
	_, err = cfg.Level()
	require.ErrorContains(t, err, "invalid log_level")
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)
	return path
}
