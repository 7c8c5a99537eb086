package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every recognised variable so tests see only what they set.
func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	creds := cfg.Credentials()
	assert.Equal(t, "mysql", creds.Host)
	assert.Equal(t, "3306", creds.Port)
	assert.Equal(t, "curso", creds.Database)
	assert.Equal(t, "alumno", creds.User)
	assert.Equal(t, "", creds.Password)

	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/data/datasets", cfg.Datasets.Dir)
	assert.False(t, cfg.MinioEnabled())
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PASSWORD", "secreto")
	t.Setenv("TABLERO_DATASETS_DIR", "/srv/datasets")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, "secreto", cfg.MySQL.Password)
	assert.Equal(t, "/srv/datasets", cfg.Datasets.Dir)
	// Untouched values keep their defaults.
	assert.Equal(t, "curso", cfg.MySQL.Database)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	content := "mysql:\n  host: filehost\n  database: otros\nserver:\n  addr: \":9090\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "filehost", cfg.MySQL.Host)
	assert.Equal(t, "otros", cfg.MySQL.Database)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestConfigFileDoesNotOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_HOST", "envhost")

	dir := t.TempDir()
	content := "mysql:\n  host: filehost\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "envhost", cfg.MySQL.Host)
}

func TestFindConfigFileWalksAncestors(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}"), 0o644))

	assert.Equal(t, filepath.Join(root, ConfigFileName), findConfigFile(nested))
}

func TestFindConfigFileMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x", "y", "z")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	assert.Equal(t, "", findConfigFile(dir))
}

func TestPostgresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("TABLERO_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "pg.internal")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	creds := cfg.Credentials()
	assert.Equal(t, "pg.internal", creds.Host)
	assert.Equal(t, "5432", creds.Port)
}
