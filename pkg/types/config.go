// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DatabaseConfig holds settings for the SQL evidence repository.
type DatabaseConfig struct {
	// Driver selects the database/sql driver: postgres or sqlite3.
	Driver string `json:"driver" yaml:"driver"`

	// URL is the driver-specific data source name. For postgres a
	// connection URL, for sqlite3 a file path or ":memory:".
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// MaxOpenConns caps open connections (default 10).
	MaxOpenConns int `json:"max_open_conns" yaml:"max_open_conns"`

	// MaxIdleConns caps idle connections (default 5).
	MaxIdleConns int `json:"max_idle_conns" yaml:"max_idle_conns"`

	// ConnMaxIdleTime closes connections idle for longer than this.
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`

	// PingRetries is the number of extra connection attempts at startup (default 5).
	PingRetries int `json:"ping_retries" yaml:"ping_retries"`
}

// WorkbookConfig holds settings for the spreadsheet evidence repository.
type WorkbookConfig struct {
	// Path is the .xlsx file with one sheet per evidence table.
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// EngineConfig holds settings for the evidence engine.
type EngineConfig struct {
	// Parallel is the number of sources evaluated concurrently. Zero or
	// one evaluates sources one after another.
	Parallel int `json:"parallel" yaml:"parallel"`
}

// AppConfig groups all configuration for the relational-matrix binary.
type AppConfig struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
	Workbook WorkbookConfig `json:"workbook" yaml:"workbook"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Engine   EngineConfig   `json:"engine" yaml:"engine"`

	// LogLevel is one of debug, info, warn, error (default info).
	LogLevel string `json:"log_level" yaml:"log_level"`
}
