package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// Startup run modes for the bulk ingestion entry points.
	UpdatePersonas bool
	ReportFilePath string
	ReportIDsPath  string
}

// Load runs before the leveled logger exists (the logger's level comes from
// the config), so it logs through a bootstrap logger.
func Load() (*Config, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:         getEnv("DATABASE_PATH", "battlereports.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UpdatePersonas: getBoolEnv("UPDATE_PERSONAS"),
		ReportFilePath: getEnv("BRR_PATH", ""),
		ReportIDsPath:  getEnv("REPORT_IDS_PATH", ""),
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("update_personas", cfg.UpdatePersonas).
		Str("report_file", cfg.ReportFilePath).
		Str("report_ids_file", cfg.ReportIDsPath).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}

var Module = fx.Provide(Load)
