// Package clickhousedb configures the ClickHouse connection backing the
// span store (spec §4.A-§4.D). It mirrors the three-stage
// defaults/env-overlay/validate shape internal/database uses for the
// Postgres side tables; ClickHouse is deliberately its own package since it
// is reached exclusively through pkg/spanstore, never through sqlx.
package clickhousedb

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Config is the ClickHouse connection configuration.
type Config struct {
	Addr            string
	Database        string
	User            string
	Password        string
	DialTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the archlens defaults for a local ClickHouse
// instance, matching the single-node docker-compose topology used in
// development.
func DefaultConfig() *Config {
	return &Config{
		Addr:            "localhost:9000",
		Database:        "archlens",
		User:            "default",
		Password:        "",
		DialTimeout:     5 * time.Second,
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// LoadFromEnv overlays CLICKHOUSE_* environment variables onto c, leaving
// fields whose variable is absent or malformed untouched.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("CLICKHOUSE_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("CLICKHOUSE_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("CLICKHOUSE_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxOpenConns = n
		}
	}
}

// Validate checks the configuration is usable before a connection is opened.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("clickhouse address is required")
	}
	if c.Database == "" {
		return fmt.Errorf("clickhouse database is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be greater than 0")
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections must be non-negative")
	}
	return nil
}

// Open validates c and returns a pooled ClickHouse connection. The span
// store wraps every call through it in a gobreaker circuit breaker, so a
// flaky ClickHouse node degrades ingestion and reads rather than cascading.
func Open(c *Config) (clickhouse.Conn, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{c.Addr},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.User,
			Password: c.Password,
		},
		DialTimeout:     c.DialTimeout,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}
	return conn, nil
}
