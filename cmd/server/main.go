package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"battlereport-logger/internal/config"
	"battlereport-logger/internal/constants"
	fxmodules "battlereport-logger/internal/fx"
	"battlereport-logger/internal/middleware"
	"battlereport-logger/internal/server"
	"battlereport-logger/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runStartupJobs),
		fx.Invoke(runServer),
	).Run()
}

// runStartupJobs kicks off the optional one-shot work configured through the
// environment: the persona refresh and the two file-based ingestion paths.
// They run sequentially in the background so the server can come up first.
func runStartupJobs(
	lc fx.Lifecycle,
	cfg *config.Config,
	updater *service.PersonaUpdater,
	reader *service.BulkReader,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				jobCtx := context.Background()

				if cfg.UpdatePersonas {
					if err := updater.UpdateStalePersonas(jobCtx); err != nil {
						logger.Error().Err(err).Msg("persona refresh failed")
					}
				}
				if cfg.ReportFilePath != "" {
					if err := reader.ReadReportFile(jobCtx, cfg.ReportFilePath); err != nil {
						logger.Error().Err(err).Msg("report file ingestion failed")
					}
				}
				if cfg.ReportIDsPath != "" {
					if err := reader.ReadReportIDFile(jobCtx, cfg.ReportIDsPath); err != nil {
						logger.Error().Err(err).Msg("report id file ingestion failed")
					}
				}
			}()
			return nil
		},
	})
}

func runServer(
	lc fx.Lifecycle,
	reportServer *server.ReportServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()
	reportServer.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	requestIDMiddleware := middleware.RequestID(logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: requestIDMiddleware(c.Handler(mux)),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
