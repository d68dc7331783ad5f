package repository

import (
	"context"
	"database/sql"
	"errors"

	"battlereport-logger/internal/domain"

	"github.com/rs/zerolog"
)

type PersonaInfoRepository struct {
	q      DBTX
	logger zerolog.Logger
}

func NewPersonaInfoRepository(sqlDB *sql.DB, logger zerolog.Logger) *PersonaInfoRepository {
	return &PersonaInfoRepository{
		q:      sqlDB,
		logger: logger,
	}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *PersonaInfoRepository) WithTx(tx *sql.Tx) *PersonaInfoRepository {
	c := *r
	c.q = tx
	return &c
}

func (r *PersonaInfoRepository) GetByPersonaID(ctx context.Context, personaID int64) (*domain.PersonaInfo, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT persona_id, locality, location, presentation, login_counter, last_login FROM persona_infos WHERE persona_id = ?`,
		personaID)

	var info domain.PersonaInfo
	err := row.Scan(&info.PersonaID, &info.Locality, &info.Location, &info.Presentation,
		&info.LoginCounter, &info.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *PersonaInfoRepository) Insert(ctx context.Context, info *domain.PersonaInfo) (int64, error) {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO persona_infos (persona_id, locality, location, presentation, login_counter, last_login) VALUES (?, ?, ?, ?, ?, ?)`,
		info.PersonaID, info.Locality, info.Location, info.Presentation, info.LoginCounter, info.LastLogin)
	if err != nil {
		return 0, err
	}
	return info.PersonaID, nil
}

func (r *PersonaInfoRepository) Update(ctx context.Context, info *domain.PersonaInfo) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE persona_infos SET locality = ?, location = ?, presentation = ?, login_counter = ?, last_login = ? WHERE persona_id = ?`,
		info.Locality, info.Location, info.Presentation, info.LoginCounter, info.LastLogin, info.PersonaID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PersonaInfoRepository) UpsertIgnore(ctx context.Context, info *domain.PersonaInfo) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO persona_infos (persona_id, locality, location, presentation, login_counter, last_login) VALUES (?, ?, ?, ?, ?, ?)`,
		info.PersonaID, info.Locality, info.Location, info.Presentation, info.LoginCounter, info.LastLogin)
	return err
}
