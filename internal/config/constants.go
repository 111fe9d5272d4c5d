// internal/config/constants.go
package config

import "time"

// Application info
const (
	AppName    = "kata_lens"
	AppVersion = "0.3.0"
)

// Deployment modes
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Storage drivers and modes
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	StorageModeLocal  = "local"
	StorageModeRemote = "remote"
)

// Recognition modes
const (
	RecognitionDirect  = "direct"
	RecognitionProxied = "proxied"
)

// Defaults
const (
	DefaultServerPort      = ":8080"
	DefaultLogLevel        = "info"
	DefaultHistoryLimit    = 100
	DefaultHistoryPageSize = 10
	DefaultTimeZone        = "Asia/Shanghai"
	DefaultSQLitePath      = "kata_lens.db"
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4o"
	DefaultMaxTokens       = 8000
	DefaultTemperature     = 0.6
	DefaultOpenAITimeout   = 120 * time.Second
	DefaultBackendURL      = "http://localhost:8080"
)
