package constants

import "time"

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
)

const (
	// BulkChunkSize bounds one transactional pass when reading report files.
	BulkChunkSize = 500
	// PersonaChunkSize matches the remote user-lookup limit of 100 ids.
	PersonaChunkSize = 100
)

const (
	// RetryDelay is the fixed delay before the single ingest retry and
	// between empty pagination attempts.
	RetryDelay = 500 * time.Millisecond
	// MaxPageAttempts bounds the "fetch more reports" loop, counting
	// successful pages and empty attempts together.
	MaxPageAttempts = 6
	// MaxParticipantFetches caps the concurrent per-participant fetch
	// fan-out for a single report.
	MaxParticipantFetches = 64
	// PersonaChunkDelay spaces out consecutive bulk user lookups.
	PersonaChunkDelay = 100 * time.Millisecond
)

const (
	ShutdownTimeout = 5 * time.Second
)
