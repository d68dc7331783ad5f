package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"battlereport-logger/internal/constants"
	"battlereport-logger/internal/service"

	"github.com/rs/zerolog"
)

// ReportServer exposes the JSON request surface over the ingestion core.
type ReportServer struct {
	ingest *service.IngestService
	feed   *service.ReportFeed
	client service.ReportFetcher
	logger zerolog.Logger
}

func NewReportServer(ingest *service.IngestService, feed *service.ReportFeed, client service.ReportFetcher, logger zerolog.Logger) *ReportServer {
	return &ReportServer{ingest: ingest, feed: feed, client: client, logger: logger}
}

// Register mounts every route on mux.
func (s *ReportServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /battlereport/{reportID}", s.getBattleReport)
	mux.HandleFunc("GET /battlereport/{reportID}/{personaID}", s.getPlayerReport)
	mux.HandleFunc("POST /battlereport/{reportID}", s.postBattleReport)
	mux.HandleFunc("GET /battlereports/{personaID}", s.getMoreReports)
	mux.HandleFunc("GET /battlereports/text/{personaID}", s.getMoreReportsText)
}

func (s *ReportServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *ReportServer) getBattleReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.ExternalAPITimeout)
	defer cancel()

	report, err := s.client.GetBattleReport(ctx, r.PathValue("reportID"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (s *ReportServer) getPlayerReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.ExternalAPITimeout)
	defer cancel()

	report, err := s.client.GetPlayerReport(ctx, r.PathValue("reportID"), r.PathValue("personaID"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (s *ReportServer) postBattleReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	result, err := s.ingest.IngestReport(ctx, r.PathValue("reportID"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (s *ReportServer) getMoreReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	reports, err := s.feed.FetchReportsForPersona(ctx, r.PathValue("personaID"), r.URL.Query().Get("timestamp"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, reports)
}

func (s *ReportServer) getMoreReportsText(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	reports, err := s.feed.FetchReportsForPersona(ctx, r.PathValue("personaID"), r.URL.Query().Get("timestamp"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	lines := make([]string, len(reports))
	for i, report := range reports {
		lines[i] = fmt.Sprintf("%s $ %s", report.GameReportID, report.Name)
	}
	writeJSON(w, lines)
}

func (s *ReportServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, fmt.Sprintf("Error %v", err), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
