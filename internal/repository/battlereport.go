package repository

import (
	"context"
	"database/sql"
	"errors"

	"battlereport-logger/internal/domain"

	"github.com/rs/zerolog"
)

type BattleReportRepository struct {
	q      DBTX
	logger zerolog.Logger
}

func NewBattleReportRepository(sqlDB *sql.DB, logger zerolog.Logger) *BattleReportRepository {
	return &BattleReportRepository{
		q:      sqlDB,
		logger: logger,
	}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *BattleReportRepository) WithTx(tx *sql.Tx) *BattleReportRepository {
	c := *r
	c.q = tx
	return &c
}

func (r *BattleReportRepository) GetByID(ctx context.Context, id int64) (*domain.BattleReport, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, duration, winner, server_id, map, mode, created_at, processed FROM battlereports WHERE id = ?`, id)

	var report domain.BattleReport
	err := row.Scan(&report.ID, &report.Duration, &report.Winner, &report.ServerID,
		&report.Map, &report.Mode, &report.CreatedAt, &report.Processed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *BattleReportRepository) Insert(ctx context.Context, report *domain.BattleReport) (int64, error) {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO battlereports (id, duration, winner, server_id, map, mode, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.Duration, report.Winner, report.ServerID, report.Map, report.Mode, report.CreatedAt)
	if err != nil {
		return 0, err
	}
	return report.ID, nil
}

func (r *BattleReportRepository) Update(ctx context.Context, report *domain.BattleReport) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE battlereports SET duration = ?, winner = ?, server_id = ?, map = ?, mode = ?, created_at = ?, processed = ? WHERE id = ?`,
		report.Duration, report.Winner, report.ServerID, report.Map, report.Mode,
		report.CreatedAt, report.Processed, report.ID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpsertIgnore inserts the report only when its id is new. The processed
// column is left to its default; only Update ever flips it.
func (r *BattleReportRepository) UpsertIgnore(ctx context.Context, report *domain.BattleReport) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO battlereports (id, duration, winner, server_id, map, mode, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.Duration, report.Winner, report.ServerID, report.Map, report.Mode, report.CreatedAt)
	return err
}
