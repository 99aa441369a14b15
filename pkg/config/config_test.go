package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadWithoutEnvFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "PORT=9090\nDB_NAME=etut_test\nENABLE_REPORTS=false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	chdir(t, dir)
	// godotenv exports the file into the process env; scrub it afterwards.
	t.Cleanup(func() {
		for _, key := range []string{"PORT", "DB_NAME", "ENABLE_REPORTS"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "etut_test", cfg.Database.Name)
	assert.False(t, cfg.Reports.Enabled)
}
