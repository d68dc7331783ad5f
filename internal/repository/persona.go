package repository

import (
	"context"
	"database/sql"
	"errors"

	"battlereport-logger/internal/domain"

	"github.com/rs/zerolog"
)

type PersonaRepository struct {
	q      DBTX
	logger zerolog.Logger
}

func NewPersonaRepository(sqlDB *sql.DB, logger zerolog.Logger) *PersonaRepository {
	return &PersonaRepository{
		q:      sqlDB,
		logger: logger,
	}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *PersonaRepository) WithTx(tx *sql.Tx) *PersonaRepository {
	c := *r
	c.q = tx
	return &c
}

func (r *PersonaRepository) GetByID(ctx context.Context, id int64) (*domain.Persona, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, clan_tag, gravatar_md5, processed, last_updated FROM personas WHERE id = ?`, id)

	var persona domain.Persona
	err := row.Scan(&persona.ID, &persona.Name, &persona.ClanTag, &persona.GravatarMD5,
		&persona.Processed, &persona.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &persona, nil
}

// GetWithoutLastUpdated returns the personas never touched by the detail
// updater.
func (r *PersonaRepository) GetWithoutLastUpdated(ctx context.Context) ([]domain.Persona, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, clan_tag, gravatar_md5, processed, last_updated FROM personas WHERE last_updated IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var personas []domain.Persona
	for rows.Next() {
		var persona domain.Persona
		if err := rows.Scan(&persona.ID, &persona.Name, &persona.ClanTag, &persona.GravatarMD5,
			&persona.Processed, &persona.LastUpdated); err != nil {
			return nil, err
		}
		personas = append(personas, persona)
	}
	return personas, rows.Err()
}

func (r *PersonaRepository) Insert(ctx context.Context, persona *domain.Persona) (int64, error) {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO personas (id, name, clan_tag, gravatar_md5, processed, last_updated) VALUES (?, ?, ?, ?, ?, ?)`,
		persona.ID, persona.Name, persona.ClanTag, persona.GravatarMD5, persona.Processed, persona.LastUpdated)
	if err != nil {
		return 0, err
	}
	return persona.ID, nil
}

func (r *PersonaRepository) Update(ctx context.Context, persona *domain.Persona) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE personas SET name = ?, clan_tag = ?, gravatar_md5 = ?, processed = ?, last_updated = ? WHERE id = ?`,
		persona.Name, persona.ClanTag, persona.GravatarMD5, persona.Processed, persona.LastUpdated, persona.ID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpsertIgnore inserts the persona only when its id is new. An existing row
// keeps whatever detail it already has.
func (r *PersonaRepository) UpsertIgnore(ctx context.Context, persona *domain.Persona) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO personas (id, name, clan_tag, gravatar_md5, processed, last_updated) VALUES (?, ?, ?, ?, ?, ?)`,
		persona.ID, persona.Name, persona.ClanTag, persona.GravatarMD5, persona.Processed, persona.LastUpdated)
	return err
}
