package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/constants"
	"battlereport-logger/internal/domain"
	"battlereport-logger/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// IngestResult reports the outcome of one on-demand ingestion. Success is
// false when any participant fetch failed or the processed flag could not
// be flipped; re-running ingestion for the same id is always safe.
type IngestResult struct {
	Success bool                `json:"success"`
	Report  domain.BattleReport `json:"report"`
	Errors  []string            `json:"errors,omitempty"`
}

// IngestService performs the full fetch, normalize, resolve and persist
// sequence for a single report id.
type IngestService struct {
	db            *sql.DB
	client        ReportFetcher
	servers       *repository.ServerRepository
	personas      *repository.PersonaRepository
	reports       *repository.BattleReportRepository
	playerReports *repository.PlayerReportRepository
	logger        zerolog.Logger
}

func NewIngestService(
	sqlDB *sql.DB,
	client ReportFetcher,
	servers *repository.ServerRepository,
	personas *repository.PersonaRepository,
	reports *repository.BattleReportRepository,
	playerReports *repository.PlayerReportRepository,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		db:            sqlDB,
		client:        client,
		servers:       servers,
		personas:      personas,
		reports:       reports,
		playerReports: playerReports,
		logger:        logger,
	}
}

func (s *IngestService) IngestReport(ctx context.Context, reportID string) (*IngestResult, error) {
	id, err := strconv.ParseInt(reportID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid report id %q: %w", reportID, err)
	}

	stored, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.Processed > 0 {
		s.logger.Info().Int64("report_id", id).Msg("battle report already processed")
		return &IngestResult{Success: true, Report: *stored}, nil
	}

	raw, err := s.client.GetBattleReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch battle report %d: %w", id, err)
	}

	if raw.GameServer.GUID == nil {
		return nil, fmt.Errorf("%w: server guid missing from report %d", ErrMalformedReport, id)
	}

	resolver := NewServerResolver(s.servers, s.logger)
	serverID, err := resolver.Resolve(ctx, *raw.GameServer.GUID, stringOr(raw.GameServer.Name, ""))
	if err != nil {
		return nil, err
	}

	report := newBattleReport(id, raw, serverID)
	if err := s.upsertReport(ctx, report); err != nil {
		return nil, err
	}

	if len(raw.Players) == 0 {
		s.logger.Error().Int64("report_id", id).Msg("no players in battle report")
		return nil, fmt.Errorf("no players in battle report %d", id)
	}

	fetches, errTexts := s.fetchParticipants(ctx, reportID, raw)

	if err := s.persistParticipants(ctx, id, raw, fetches); err != nil {
		return nil, err
	}

	persisted, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(errTexts) > 0 {
		s.logger.Warn().Int64("report_id", id).Int("failed", len(errTexts)).Msg("participant fetches failed")
		return &IngestResult{Success: false, Report: *persisted, Errors: errTexts}, nil
	}

	persisted.Processed = 1
	changed, err := s.reports.Update(ctx, persisted)
	if err != nil || !changed {
		return &IngestResult{
			Success: false,
			Report:  *persisted,
			Errors:  []string{"failed to update processed flag"},
		}, nil
	}

	s.logger.Info().Int64("report_id", id).Msg("battle report ingested")
	return &IngestResult{Success: true, Report: *persisted}, nil
}

func (s *IngestService) upsertReport(ctx context.Context, report *domain.BattleReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.reports.WithTx(tx).UpsertIgnore(ctx, report); err != nil {
		return err
	}
	return tx.Commit()
}

type participantFetch struct {
	personaID int64
	section   *api.PlayerReportResponse
}

// fetchParticipants fans out one fetch per roster entry, bounded by the
// participant limit, and joins them all; a failed fetch contributes an
// error text instead of aborting the others.
func (s *IngestService) fetchParticipants(ctx context.Context, reportID string, raw *api.ReportResponse) ([]participantFetch, []string) {
	personaIDs := make([]int64, 0, len(raw.Players))
	for _, player := range raw.Players {
		personaIDs = append(personaIDs, player.PersonaID)
	}

	sections := make([]*api.PlayerReportResponse, len(personaIDs))
	fetchErrs := make([]error, len(personaIDs))

	var g errgroup.Group
	g.SetLimit(constants.MaxParticipantFetches)
	for i, personaID := range personaIDs {
		g.Go(func() error {
			sections[i], fetchErrs[i] = s.client.GetPlayerReport(ctx, reportID, strconv.FormatInt(personaID, 10))
			return nil
		})
	}
	g.Wait()

	var fetches []participantFetch
	var errTexts []string
	for i, personaID := range personaIDs {
		if fetchErrs[i] != nil {
			s.logger.Warn().
				Err(fetchErrs[i]).
				Str("report_id", reportID).
				Int64("persona_id", personaID).
				Msg("failed to get player report")
			errTexts = append(errTexts, fetchErrs[i].Error())
			continue
		}
		fetches = append(fetches, participantFetch{personaID: personaID, section: sections[i]})
	}
	return fetches, errTexts
}

// persistParticipants upserts personas and player reports for every
// successful fetch inside one transaction. Personas are strictly additive:
// a new id is insert-ignored, an existing row is only updated when the
// fetch carried persona detail, and then from the loaded row.
func (s *IngestService) persistParticipants(ctx context.Context, reportID int64, raw *api.ReportResponse, fetches []participantFetch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	personasTx := s.personas.WithTx(tx)
	playerReportsTx := s.playerReports.WithTx(tx)

	for _, fetch := range fetches {
		existing, err := s.personas.GetByID(ctx, fetch.personaID)
		if err != nil {
			return err
		}

		incoming := newPersona(fetch.personaID, fetch.section.Persona, gravatarOf(raw, fetch.personaID))
		if existing == nil {
			if err := personasTx.UpsertIgnore(ctx, &incoming); err != nil {
				return err
			}
		} else if fetch.section.Persona != nil {
			existing.Name = incoming.Name
			existing.ClanTag = incoming.ClanTag
			existing.GravatarMD5 = incoming.GravatarMD5
			if _, err := personasTx.Update(ctx, existing); err != nil {
				return err
			}
		}

		player := raw.GetPlayerByPersonaID(fetch.personaID)
		if player == nil {
			s.logger.Warn().
				Int64("report_id", reportID).
				Int64("persona_id", fetch.personaID).
				Msg("participant missing from report roster")
			continue
		}

		pr := newPlayerReport(reportID, fetch.personaID, fetch.section, player)
		if err := playerReportsTx.UpsertIgnore(ctx, &pr); err != nil {
			return err
		}
	}

	return tx.Commit()
}
