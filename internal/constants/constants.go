package constants

import "time"

const (
	PlayerRefreshTTL = 5 * time.Minute
	AnalyticsWindow  = 30 * 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultMatchHistorySize = 20
	MaxMatchHistorySize     = 100
	DefaultPageSize         = 20
	MaxPageSize             = 100
	MaxHistogramDays        = 365
)

const (
	ModeCompetitive = "competitive"
	PlatformPC      = "pc"
)
