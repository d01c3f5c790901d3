package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	CreateDemoData  bool
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string
	Env             string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JWTSecret    string
	AccessExpiry time.Duration
	BcryptCost   int
}

// CatalogConfig holds package catalog settings
type CatalogConfig struct {
	PackagesFile string
}
