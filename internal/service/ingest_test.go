package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/domain"
	"battlereport-logger/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestEnv struct {
	db            *sql.DB
	svc           *IngestService
	servers       *repository.ServerRepository
	personas      *repository.PersonaRepository
	reports       *repository.BattleReportRepository
	playerReports *repository.PlayerReportRepository
}

func newIngestEnv(t *testing.T, client ReportFetcher) *ingestEnv {
	t.Helper()
	db := openTestDB(t)

	env := &ingestEnv{
		db:            db,
		servers:       repository.NewServerRepository(db, zerolog.Nop()),
		personas:      repository.NewPersonaRepository(db, zerolog.Nop()),
		reports:       repository.NewBattleReportRepository(db, zerolog.Nop()),
		playerReports: repository.NewPlayerReportRepository(db, zerolog.Nop()),
	}
	env.svc = NewIngestService(db, client, env.servers, env.personas, env.reports, env.playerReports, zerolog.Nop())
	return env
}

func TestIngestReport(t *testing.T) {
	client := &fakeFetcher{
		battleReports: func(ctx context.Context, reportID string) (*api.ReportResponse, error) {
			return sampleReport(reportID), nil
		},
		playerReports: func(ctx context.Context, reportID, personaID string) (*api.PlayerReportResponse, error) {
			return samplePlayerSection(10, personaID == "10"), nil
		},
	}
	env := newIngestEnv(t, client)
	ctx := context.Background()

	result, err := env.svc.IngestReport(ctx, "903271423")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int64(903271423), result.Report.ID)

	stored, err := env.reports.GetByID(ctx, 903271423)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(1), stored.Processed)
	assert.Equal(t, int64(2), stored.Winner)

	server, err := env.servers.GetByID(ctx, stored.ServerID)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, "=XP= Metro 24/7", server.Name)

	persona, err := env.personas.GetByID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, persona)
	require.NotNil(t, persona.Name)
	assert.Equal(t, "SgtMetro", *persona.Name)

	// The fetch for persona 11 carried no detail; the row is a bare id.
	persona, err = env.personas.GetByID(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, persona)
	assert.Nil(t, persona.Name)

	for _, personaID := range []int64{10, 11} {
		pr, err := env.playerReports.GetByKey(ctx, 903271423, personaID)
		require.NoError(t, err)
		require.NotNil(t, pr)
	}
}

func TestIngestReportAlreadyProcessed(t *testing.T) {
	fetches := 0
	client := &fakeFetcher{
		battleReports: func(ctx context.Context, reportID string) (*api.ReportResponse, error) {
			fetches++
			return nil, errors.New("should not be called")
		},
	}
	env := newIngestEnv(t, client)
	ctx := context.Background()

	serverID, err := env.servers.Insert(ctx, &domain.Server{Name: "Server A", GUID: "guid-a"})
	require.NoError(t, err)
	_, err = env.reports.Insert(ctx, &domain.BattleReport{ID: 42, ServerID: serverID, CreatedAt: 1700000000})
	require.NoError(t, err)
	changed, err := env.reports.Update(ctx, &domain.BattleReport{ID: 42, ServerID: serverID, CreatedAt: 1700000000, Processed: 1})
	require.NoError(t, err)
	require.True(t, changed)

	result, err := env.svc.IngestReport(ctx, "42")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(42), result.Report.ID)
	assert.Zero(t, fetches)
}

func TestIngestReportPartialFailure(t *testing.T) {
	client := &fakeFetcher{
		battleReports: func(ctx context.Context, reportID string) (*api.ReportResponse, error) {
			return sampleReport(reportID), nil
		},
		playerReports: func(ctx context.Context, reportID, personaID string) (*api.PlayerReportResponse, error) {
			if personaID == "11" {
				return nil, errors.New("gateway timeout")
			}
			return samplePlayerSection(10, true), nil
		},
	}
	env := newIngestEnv(t, client)
	ctx := context.Background()

	result, err := env.svc.IngestReport(ctx, "903271423")
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "gateway timeout")

	// The report stays unprocessed so a later run picks it up again.
	stored, err := env.reports.GetByID(ctx, 903271423)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Processed)

	// The successful fetch was persisted anyway.
	pr, err := env.playerReports.GetByKey(ctx, 903271423, 10)
	require.NoError(t, err)
	assert.NotNil(t, pr)
	pr, err = env.playerReports.GetByKey(ctx, 903271423, 11)
	require.NoError(t, err)
	assert.Nil(t, pr)

	// Once the remote recovers, re-running completes the report.
	client.playerReports = func(ctx context.Context, reportID, personaID string) (*api.PlayerReportResponse, error) {
		return samplePlayerSection(10, personaID == "10"), nil
	}
	result, err = env.svc.IngestReport(ctx, "903271423")
	require.NoError(t, err)
	assert.True(t, result.Success)

	stored, err = env.reports.GetByID(ctx, 903271423)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Processed)
}

func TestIngestReportInvalidID(t *testing.T) {
	env := newIngestEnv(t, &fakeFetcher{})
	_, err := env.svc.IngestReport(context.Background(), "not-a-number")
	require.Error(t, err)
}

func TestIngestReportFetchError(t *testing.T) {
	client := &fakeFetcher{
		battleReports: func(ctx context.Context, reportID string) (*api.ReportResponse, error) {
			return nil, errors.New("remote unavailable")
		},
	}
	env := newIngestEnv(t, client)

	_, err := env.svc.IngestReport(context.Background(), "903271423")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote unavailable")
}
