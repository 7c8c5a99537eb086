// Package config resolves the dashboard configuration.
//
// Precedence, lowest to highest: built-in defaults, an optional
// tablero.yaml found in the working directory or one of its two nearest
// ancestors, then environment variables. A config file never overrides
// a variable that is already set in the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the optional local config file loaded at startup.
const ConfigFileName = "tablero.yaml"

// Credentials is the flat connection record for one database backend.
// Port stays a string: it is only ever formatted into URLs and DSNs.
type Credentials struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// DatasetsConfig holds the flat-file dataset source settings.
type DatasetsConfig struct {
	Dir string `koanf:"dir"`
}

// MinioConfig holds the optional object-store dataset source.
// The source is enabled only when Endpoint is non-empty.
type MinioConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Config is the full resolved dashboard configuration. It is read once
// at startup and immutable for the process lifetime.
type Config struct {
	Driver   string         `koanf:"driver"` // "mysql" or "postgres"
	Server   ServerConfig   `koanf:"server"`
	MySQL    Credentials    `koanf:"mysql"`
	Postgres Credentials    `koanf:"postgres"`
	Datasets DatasetsConfig `koanf:"datasets"`
	Minio    MinioConfig    `koanf:"minio"`
	Log      LogConfig      `koanf:"log"`
}

// Credentials returns the connection record for the configured driver.
func (c *Config) Credentials() Credentials {
	if c.Driver == "postgres" {
		return c.Postgres
	}
	return c.MySQL
}

// MinioEnabled reports whether the object-store dataset source is configured.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != ""
}

// defaults mirrors the fixed fallbacks the dashboard ships with. The
// MySQL tuple matches the docker-compose environment of the course
// deployment this dashboard was built for.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"driver":            "mysql",
		"server.addr":       ":8080",
		"mysql.host":        "mysql",
		"mysql.port":        "3306",
		"mysql.database":    "curso",
		"mysql.user":        "alumno",
		"mysql.password":    "",
		"postgres.host":     "postgres",
		"postgres.port":     "5432",
		"postgres.database": "curso",
		"postgres.user":     "alumno",
		"postgres.password": "",
		"datasets.dir":      "/data/datasets",
		"minio.endpoint":    "",
		"minio.access_key":  "",
		"minio.secret_key":  "",
		"minio.bucket":      "datasets",
		"log.level":         "info",
		"log.format":        "console",
	}
}

// envKeys maps recognised environment variables to config keys.
// Unlisted variables are ignored.
var envKeys = map[string]string{
	"MYSQL_HOST":           "mysql.host",
	"MYSQL_PORT":           "mysql.port",
	"MYSQL_DATABASE":       "mysql.database",
	"MYSQL_USER":           "mysql.user",
	"MYSQL_PASSWORD":       "mysql.password",
	"POSTGRES_HOST":        "postgres.host",
	"POSTGRES_PORT":        "postgres.port",
	"POSTGRES_DATABASE":    "postgres.database",
	"POSTGRES_USER":        "postgres.user",
	"POSTGRES_PASSWORD":    "postgres.password",
	"MINIO_ENDPOINT":       "minio.endpoint",
	"MINIO_ACCESS_KEY":     "minio.access_key",
	"MINIO_SECRET_KEY":     "minio.secret_key",
	"MINIO_BUCKET":         "minio.bucket",
	"TABLERO_DRIVER":       "driver",
	"TABLERO_ADDR":         "server.addr",
	"TABLERO_DATASETS_DIR": "datasets.dir",
	"TABLERO_LOG_LEVEL":    "log.level",
	"TABLERO_LOG_FORMAT":   "log.format",
}

// Load resolves the configuration starting from startDir (usually the
// working directory). Resolution never fails on missing sources: no
// config file and no environment variables still yield the defaults.
func Load(startDir string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(startDir); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Environment last: a file never overrides an already-set variable.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// findConfigFile looks for tablero.yaml in dir and its two nearest
// ancestors, matching the original deployment's search path.
// Returns "" when no file is found.
func findConfigFile(dir string) string {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	candidates := []string{
		abs,
		filepath.Dir(abs),
		filepath.Dir(filepath.Dir(abs)),
	}
	for _, d := range candidates {
		path := filepath.Join(d, ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
