package repository

import (
	"context"
	"database/sql"
	"errors"

	"battlereport-logger/internal/domain"

	"github.com/rs/zerolog"
)

type ServerRepository struct {
	q      DBTX
	logger zerolog.Logger
}

func NewServerRepository(sqlDB *sql.DB, logger zerolog.Logger) *ServerRepository {
	return &ServerRepository{
		q:      sqlDB,
		logger: logger,
	}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *ServerRepository) WithTx(tx *sql.Tx) *ServerRepository {
	c := *r
	c.q = tx
	return &c
}

func (r *ServerRepository) GetByID(ctx context.Context, id int64) (*domain.Server, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, name, guid FROM servers WHERE id = ?`, id)
	return scanServer(row)
}

func (r *ServerRepository) GetByGUID(ctx context.Context, guid string) (*domain.Server, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, name, guid FROM servers WHERE guid = ?`, guid)
	return scanServer(row)
}

func (r *ServerRepository) Insert(ctx context.Context, server *domain.Server) (int64, error) {
	res, err := r.q.ExecContext(ctx, `INSERT INTO servers (name, guid) VALUES (?, ?)`, server.Name, server.GUID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ServerRepository) Update(ctx context.Context, server *domain.Server) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE servers SET name = ?, guid = ? WHERE id = ?`,
		server.Name, server.GUID, server.ID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ServerRepository) UpsertIgnore(ctx context.Context, server *domain.Server) error {
	_, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO servers (name, guid) VALUES (?, ?)`,
		server.Name, server.GUID)
	return err
}

func scanServer(row *sql.Row) (*domain.Server, error) {
	var server domain.Server
	err := row.Scan(&server.ID, &server.Name, &server.GUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &server, nil
}
