package service

import (
	"context"

	"battlereport-logger/internal/api"
)

// ReportFetcher is the remote battlelog surface the ingestion pipeline
// depends on.
type ReportFetcher interface {
	GetBattleReport(ctx context.Context, reportID string) (*api.ReportResponse, error)
	GetPlayerReport(ctx context.Context, reportID, personaID string) (*api.PlayerReportResponse, error)
	GetMoreReports(ctx context.Context, personaID, timestamp string) (*api.MoreReportsResponse, error)
	GetUsersByPersonaIDs(ctx context.Context, personaIDs []string) ([]api.UserResult, error)
}
