package service

import (
	"context"
	"testing"
	"time"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/domain"
	"battlereport-logger/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStalePersonas(t *testing.T) {
	db := openTestDB(t)
	personas := repository.NewPersonaRepository(db, zerolog.Nop())
	infos := repository.NewPersonaInfoRepository(db, zerolog.Nop())
	ctx := context.Background()

	name := "SgtMetro"
	_, err := personas.Insert(ctx, &domain.Persona{ID: 10, Name: &name})
	require.NoError(t, err)
	_, err = personas.Insert(ctx, &domain.Persona{ID: 11})
	require.NoError(t, err)

	// Already refreshed; must not be looked up again.
	stamp := time.Now().Unix() - 3600
	_, err = personas.Insert(ctx, &domain.Persona{ID: 12, LastUpdated: &stamp})
	require.NoError(t, err)

	var requested []string
	client := &fakeFetcher{
		users: func(ctx context.Context, personaIDs []string) ([]api.UserResult, error) {
			requested = append(requested, personaIDs...)
			return []api.UserResult{
				{PersonaID: "10", Info: &api.UserInfo{Location: strPtr("Hamburg")}},
				{PersonaID: "11"},
			}, nil
		},
	}

	updater := NewPersonaUpdater(db, client, personas, infos, zerolog.Nop())
	require.NoError(t, updater.UpdateStalePersonas(ctx))

	assert.ElementsMatch(t, []string{"10", "11"}, requested)

	for _, id := range []int64{10, 11} {
		persona, err := personas.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, persona)
		assert.NotNil(t, persona.LastUpdated, "persona %d should carry a refresh stamp", id)
	}

	info, err := infos.GetByPersonaID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, info)
	require.NotNil(t, info.Location)
	assert.Equal(t, "Hamburg", *info.Location)

	// Persona 11 came back without presentation detail.
	info, err = infos.GetByPersonaID(ctx, 11)
	require.NoError(t, err)
	assert.Nil(t, info)

	// The old stamp on persona 12 is untouched.
	persona, err := personas.GetByID(ctx, 12)
	require.NoError(t, err)
	require.NotNil(t, persona.LastUpdated)
	assert.Equal(t, stamp, *persona.LastUpdated)
}

func TestUpdateStalePersonasLookupFailureSkipsChunk(t *testing.T) {
	db := openTestDB(t)
	personas := repository.NewPersonaRepository(db, zerolog.Nop())
	infos := repository.NewPersonaInfoRepository(db, zerolog.Nop())
	ctx := context.Background()

	_, err := personas.Insert(ctx, &domain.Persona{ID: 10})
	require.NoError(t, err)

	client := &fakeFetcher{}
	updater := NewPersonaUpdater(db, client, personas, infos, zerolog.Nop())
	require.NoError(t, updater.UpdateStalePersonas(ctx))

	persona, err := personas.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, persona.LastUpdated)
}
