package fx

import (
	"battlereport-logger/internal/api"
	"battlereport-logger/internal/config"
	"battlereport-logger/internal/database"
	"battlereport-logger/internal/logger"
	"battlereport-logger/internal/repository"
	"battlereport-logger/internal/server"
	"battlereport-logger/internal/service"

	"go.uber.org/fx"
)

func ProvideFetcher(client *api.BattlelogClient) service.ReportFetcher {
	return client
}

func ProvideChunkPersister(persister *service.BatchPersister) service.ChunkPersister {
	return persister
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewServerRepository),
	fx.Provide(repository.NewPersonaRepository),
	fx.Provide(repository.NewPersonaInfoRepository),
	fx.Provide(repository.NewBattleReportRepository),
	fx.Provide(repository.NewPlayerReportRepository),
	// api client
	fx.Provide(api.NewBattlelogClient),
	fx.Provide(ProvideFetcher),
	// svc
	fx.Provide(service.NewBatchPersister),
	fx.Provide(ProvideChunkPersister),
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewReportFeed),
	fx.Provide(service.NewBulkReader),
	fx.Provide(service.NewPersonaUpdater),
	// server
	fx.Provide(server.NewReportServer),
)
