package logger

import (
	"testing"

	"battlereport-logger/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewUsesConfiguredLevel(t *testing.T) {
	logger := New(&config.Config{LogLevel: "warn"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = New(&config.Config{LogLevel: "debug"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewFallsBackToInfo(t *testing.T) {
	logger := New(&config.Config{LogLevel: "bogus"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = New(&config.Config{})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
