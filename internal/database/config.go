package database

import (
	"fmt"
	"time"
)

// Driver identifies the database engine.
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
)

// Config holds all settings needed to connect to and pool a database.
// It is populated once from the resolved credentials and is immutable
// for the process lifetime.
type Config struct {
	Driver Driver

	// Connection record. Port stays a string: it is only ever
	// formatted into URLs and DSNs, never used numerically.
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// Pool tuning
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration // forced connection recycling interval
	MaxConnIdleTime time.Duration

	// Timeouts
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration // per-call deadline applied by the explorer
}

// DefaultConfig returns pool settings tuned for a small read-only
// dashboard: few connections, hourly recycling to survive idle
// connection staleness behind NAT and proxies.
func DefaultConfig(driver Driver, host, port, db, user, password string) *Config {
	return &Config{
		Driver:          driver,
		Host:            host,
		Port:            port,
		Database:        db,
		User:            user,
		Password:        password,
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 10 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}

// URL renders the connection record as a canonical URL. It is the key
// for the process-lifetime handle cache and the form the deployment's
// compose files document. User and password are included verbatim;
// escaping them is deliberately not attempted because the URL is never
// dialed, only compared. Anything user-facing goes through RedactedURL.
func (c *Config) URL() string {
	return c.url(c.Password)
}

// RedactedURL is the canonical URL with the password masked. This is
// the only form that may reach pages or logs.
func (c *Config) RedactedURL() string {
	return c.url("***")
}

func (c *Config) url(password string) string {
	scheme := "mysql+pymysql"
	if c.Driver == DriverPostgres {
		scheme = "postgresql"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s",
		scheme, c.User, password, c.Host, c.Port, c.Database)
}

// DSN renders the driver-native data source name used to open the pool.
func (c *Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			c.User, c.Password, c.Host, c.Port, c.Database)
	}
	// go-sql-driver format; parseTime makes DATETIME scan as time.Time.
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Database)
}
