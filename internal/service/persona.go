package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/constants"
	"battlereport-logger/internal/domain"
	"battlereport-logger/internal/repository"

	"github.com/rs/zerolog"
)

// PersonaUpdater enriches personas that were only ever seen as id
// references, resolving their profile detail in bulk.
type PersonaUpdater struct {
	db       *sql.DB
	client   ReportFetcher
	personas *repository.PersonaRepository
	infos    *repository.PersonaInfoRepository
	logger   zerolog.Logger
}

func NewPersonaUpdater(
	sqlDB *sql.DB,
	client ReportFetcher,
	personas *repository.PersonaRepository,
	infos *repository.PersonaInfoRepository,
	logger zerolog.Logger,
) *PersonaUpdater {
	return &PersonaUpdater{
		db:       sqlDB,
		client:   client,
		personas: personas,
		infos:    infos,
		logger:   logger,
	}
}

// UpdateStalePersonas looks up every persona without a last_updated stamp
// against the remote user endpoint, 100 ids at a time. Each chunk commits
// in its own transaction; a failed chunk fetch is logged and skipped.
func (u *PersonaUpdater) UpdateStalePersonas(ctx context.Context) error {
	stale, err := u.personas.GetWithoutLastUpdated(ctx)
	if err != nil {
		return err
	}
	u.logger.Info().Int("count", len(stale)).Msg("personas to be refreshed")

	ids := make([]string, len(stale))
	for i, persona := range stale {
		ids[i] = strconv.FormatInt(persona.ID, 10)
	}

	total := len(ids)
	processed := 0
	for start := 0; start < total; start += constants.PersonaChunkSize {
		end := min(start+constants.PersonaChunkSize, total)
		chunk := ids[start:end]
		processed += len(chunk)

		results, err := u.client.GetUsersByPersonaIDs(ctx, chunk)
		if err != nil {
			u.logger.Error().Err(err).Msg("failed to fetch users, skipping chunk")
			continue
		}
		if len(results) != len(chunk) {
			u.logger.Warn().Int("got", len(results)).Int("want", len(chunk)).Msg("partial user lookup")
		}

		if err := u.applyUserResults(ctx, results); err != nil {
			u.logger.Error().Err(err).Msg("failed to update personas")
			continue
		}
		u.logger.Info().Int("processed", processed).Int("total", total).Msg("personas updated")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(constants.PersonaChunkDelay):
		}
	}

	return nil
}

// applyUserResults commits one chunk of user lookups: persona info is
// insert-ignored when new or load-and-mutate updated when present, and the
// persona's last_updated stamp is advanced.
func (u *PersonaUpdater) applyUserResults(ctx context.Context, results []api.UserResult) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	personasTx := u.personas.WithTx(tx)
	infosTx := u.infos.WithTx(tx)

	now := time.Now().Unix()
	for _, result := range results {
		personaID, err := strconv.ParseInt(result.PersonaID, 10, 64)
		if err != nil {
			u.logger.Warn().Str("persona_id", result.PersonaID).Msg("invalid persona id in user result")
			continue
		}

		persona, err := u.personas.GetByID(ctx, personaID)
		if err != nil {
			return err
		}
		if persona == nil {
			u.logger.Warn().Int64("persona_id", personaID).Msg("persona not found in database")
			continue
		}

		if result.Info != nil {
			if err := u.applyPersonaInfo(ctx, infosTx, personaID, result.Info); err != nil {
				return err
			}
		}

		persona.LastUpdated = &now
		if _, err := personasTx.Update(ctx, persona); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (u *PersonaUpdater) applyPersonaInfo(ctx context.Context, infosTx *repository.PersonaInfoRepository, personaID int64, userInfo *api.UserInfo) error {
	info, err := u.infos.GetByPersonaID(ctx, personaID)
	if err != nil {
		return err
	}

	if info == nil {
		return infosTx.UpsertIgnore(ctx, &domain.PersonaInfo{
			PersonaID:    personaID,
			Locality:     userInfo.Locality,
			Location:     userInfo.Location,
			Presentation: userInfo.Presentation,
			LoginCounter: userInfo.LoginCounter,
			LastLogin:    userInfo.LastLogin,
		})
	}

	info.Locality = userInfo.Locality
	info.Location = userInfo.Location
	info.Presentation = userInfo.Presentation
	info.LoginCounter = userInfo.LoginCounter
	info.LastLogin = userInfo.LastLogin
	_, err = infosTx.Update(ctx, info)
	return err
}
