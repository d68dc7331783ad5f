package service

import (
	"context"
	"database/sql"
	"fmt"

	"battlereport-logger/internal/domain"
	"battlereport-logger/internal/repository"

	"github.com/rs/zerolog"
)

// Chunk is one bounded batch of normalized records headed for the store.
type Chunk struct {
	Personas      []domain.Persona
	BattleReports []domain.BattleReport
	PlayerReports []domain.PlayerReport
}

func (c *Chunk) Empty() bool {
	return len(c.Personas) == 0 && len(c.BattleReports) == 0 && len(c.PlayerReports) == 0
}

// ChunkPersister commits one normalized chunk to the store.
type ChunkPersister interface {
	Persist(ctx context.Context, chunk *Chunk) error
}

// BatchPersister commits a chunk in three independent transactional passes:
// personas, then battle reports, then player reports. A failing pass rolls
// back alone; earlier passes stay committed. Everything is upsert-ignore,
// so re-running a chunk after a crash is safe.
type BatchPersister struct {
	db            *sql.DB
	personas      *repository.PersonaRepository
	reports       *repository.BattleReportRepository
	playerReports *repository.PlayerReportRepository
	logger        zerolog.Logger
}

func NewBatchPersister(
	sqlDB *sql.DB,
	personas *repository.PersonaRepository,
	reports *repository.BattleReportRepository,
	playerReports *repository.PlayerReportRepository,
	logger zerolog.Logger,
) *BatchPersister {
	return &BatchPersister{
		db:            sqlDB,
		personas:      personas,
		reports:       reports,
		playerReports: playerReports,
		logger:        logger,
	}
}

func (b *BatchPersister) Persist(ctx context.Context, chunk *Chunk) error {
	if chunk.Empty() {
		return nil
	}

	err := b.inTx(ctx, func(tx *sql.Tx) error {
		personas := b.personas.WithTx(tx)
		for i := range chunk.Personas {
			if err := personas.UpsertIgnore(ctx, &chunk.Personas[i]); err != nil {
				return fmt.Errorf("failed to upsert persona %d: %w", chunk.Personas[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persona pass: %w", err)
	}

	err = b.inTx(ctx, func(tx *sql.Tx) error {
		reports := b.reports.WithTx(tx)
		for i := range chunk.BattleReports {
			if err := reports.UpsertIgnore(ctx, &chunk.BattleReports[i]); err != nil {
				return fmt.Errorf("failed to upsert battle report %d: %w", chunk.BattleReports[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("battle report pass: %w", err)
	}

	err = b.inTx(ctx, func(tx *sql.Tx) error {
		playerReports := b.playerReports.WithTx(tx)
		for i := range chunk.PlayerReports {
			pr := &chunk.PlayerReports[i]
			if err := playerReports.UpsertIgnore(ctx, pr); err != nil {
				return fmt.Errorf("failed to upsert player report %d/%d: %w", pr.ReportID, pr.PersonaID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("player report pass: %w", err)
	}

	b.logger.Debug().
		Int("personas", len(chunk.Personas)).
		Int("battle_reports", len(chunk.BattleReports)).
		Int("player_reports", len(chunk.PlayerReports)).
		Msg("chunk persisted")

	return nil
}

func (b *BatchPersister) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
