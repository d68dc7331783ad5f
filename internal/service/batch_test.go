package service

import (
	"context"
	"database/sql"
	"testing"

	"battlereport-logger/internal/domain"
	"battlereport-logger/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatchEnv(t *testing.T) (*BatchPersister, *sql.DB, int64) {
	t.Helper()
	db := openTestDB(t)

	servers := repository.NewServerRepository(db, zerolog.Nop())
	serverID, err := servers.Insert(context.Background(), &domain.Server{Name: "Server A", GUID: "guid-a"})
	require.NoError(t, err)

	persister := NewBatchPersister(
		db,
		repository.NewPersonaRepository(db, zerolog.Nop()),
		repository.NewBattleReportRepository(db, zerolog.Nop()),
		repository.NewPlayerReportRepository(db, zerolog.Nop()),
		zerolog.Nop(),
	)
	return persister, db, serverID
}

func sampleChunk(serverID int64) *Chunk {
	name := "SgtMetro"
	return &Chunk{
		Personas: []domain.Persona{
			{ID: 10, Name: &name, Processed: true},
			{ID: 11},
		},
		BattleReports: []domain.BattleReport{
			{ID: 100, Duration: 1800, Winner: 2, ServerID: serverID, Map: "XP0_Metro", Mode: "ConquestLarge0", CreatedAt: 1700000000},
			{ID: 101, Duration: 900, Winner: -1, ServerID: serverID, Map: "MP_Prison", Mode: "TeamDeathMatch0", CreatedAt: 1700000900},
		},
		PlayerReports: []domain.PlayerReport{
			{ReportID: 100, PersonaID: 10, Kills: 21, Deaths: 9},
			{ReportID: 101, PersonaID: 11, Kills: 3, Deaths: 15},
		},
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestPersistChunk(t *testing.T) {
	persister, db, serverID := newBatchEnv(t)
	ctx := context.Background()

	require.NoError(t, persister.Persist(ctx, sampleChunk(serverID)))

	assert.Equal(t, 2, countRows(t, db, "personas"))
	assert.Equal(t, 2, countRows(t, db, "battlereports"))
	assert.Equal(t, 2, countRows(t, db, "playerreports"))
}

func TestPersistChunkIdempotent(t *testing.T) {
	persister, db, serverID := newBatchEnv(t)
	ctx := context.Background()

	require.NoError(t, persister.Persist(ctx, sampleChunk(serverID)))

	// Replaying the same chunk with different persona detail must not
	// overwrite what the first run stored.
	replay := sampleChunk(serverID)
	other := "Impostor"
	replay.Personas[0].Name = &other
	require.NoError(t, persister.Persist(ctx, replay))

	assert.Equal(t, 2, countRows(t, db, "personas"))
	assert.Equal(t, 2, countRows(t, db, "battlereports"))
	assert.Equal(t, 2, countRows(t, db, "playerreports"))

	personas := repository.NewPersonaRepository(db, zerolog.Nop())
	persona, err := personas.GetByID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, persona.Name)
	assert.Equal(t, "SgtMetro", *persona.Name)
}

func TestPersistEmptyChunk(t *testing.T) {
	persister, _, _ := newBatchEnv(t)
	require.NoError(t, persister.Persist(context.Background(), &Chunk{}))
}

func TestPersistKeepsEarlierPasses(t *testing.T) {
	persister, db, serverID := newBatchEnv(t)
	ctx := context.Background()

	chunk := sampleChunk(serverID)
	// A player report pointing at a report id that never lands makes the
	// third pass fail on its foreign key.
	chunk.PlayerReports = append(chunk.PlayerReports, domain.PlayerReport{ReportID: 999, PersonaID: 10})

	err := persister.Persist(ctx, chunk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player report pass")

	// The persona and battle report passes committed on their own.
	assert.Equal(t, 2, countRows(t, db, "personas"))
	assert.Equal(t, 2, countRows(t, db, "battlereports"))
	assert.Equal(t, 0, countRows(t, db, "playerreports"))
}
