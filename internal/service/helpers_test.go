package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeFetcher satisfies ReportFetcher with per-call hooks. Unset hooks fail
// the call so tests notice unexpected traffic.
type fakeFetcher struct {
	battleReports func(ctx context.Context, reportID string) (*api.ReportResponse, error)
	playerReports func(ctx context.Context, reportID, personaID string) (*api.PlayerReportResponse, error)
	moreReports   func(ctx context.Context, personaID, timestamp string) (*api.MoreReportsResponse, error)
	users         func(ctx context.Context, personaIDs []string) ([]api.UserResult, error)
}

func (f *fakeFetcher) GetBattleReport(ctx context.Context, reportID string) (*api.ReportResponse, error) {
	if f.battleReports == nil {
		return nil, errors.New("unexpected GetBattleReport call")
	}
	return f.battleReports(ctx, reportID)
}

func (f *fakeFetcher) GetPlayerReport(ctx context.Context, reportID, personaID string) (*api.PlayerReportResponse, error) {
	if f.playerReports == nil {
		return nil, errors.New("unexpected GetPlayerReport call")
	}
	return f.playerReports(ctx, reportID, personaID)
}

func (f *fakeFetcher) GetMoreReports(ctx context.Context, personaID, timestamp string) (*api.MoreReportsResponse, error) {
	if f.moreReports == nil {
		return nil, errors.New("unexpected GetMoreReports call")
	}
	return f.moreReports(ctx, personaID, timestamp)
}

func (f *fakeFetcher) GetUsersByPersonaIDs(ctx context.Context, personaIDs []string) ([]api.UserResult, error) {
	if f.users == nil {
		return nil, errors.New("unexpected GetUsersByPersonaIDs call")
	}
	return f.users(ctx, personaIDs)
}

func strPtr(s string) *string { return &s }

// sampleReport builds a raw payload with two roster entries and the winning
// team flagged. The persona detail and gravatar chain hang off persona 10.
func sampleReport(id string) *api.ReportResponse {
	return &api.ReportResponse{
		ID:        id,
		Duration:  1800,
		CreatedAt: 1700000000,
		GameServer: api.GameServer{
			GUID:    strPtr("b3a7cfb2-0001-4f32-a285-0f1c8b0e3d11"),
			Name:    strPtr("=XP= Metro 24/7"),
			Map:     strPtr("XP0_Metro"),
			MapMode: strPtr("ConquestLarge0"),
		},
		Teams: map[string]api.Team{
			"1": {ID: 1},
			"2": {ID: 2, IsWinner: true},
		},
		Players: map[string]api.ReportPlayer{
			"10": {
				PersonaID:  10,
				Kills:      21,
				Deaths:     9,
				Heals:      4,
				Revives:    2,
				Team:       2,
				KillStreak: 7,
				SquadID:    3,
				Accuracy:   18.4,
				IsSoldier:  true,
				Persona: &api.RawPersona{
					PersonaID:   10,
					PersonaName: "SgtMetro",
					ClanTag:     strPtr("XP"),
					User:        &api.RawUser{GravatarMD5: strPtr("d41d8cd98f00b204e9800998ecf8427e")},
				},
			},
			"11": {
				PersonaID: 11,
				Kills:     3,
				Deaths:    15,
				Team:      1,
				IsSoldier: true,
			},
		},
	}
}

func samplePlayerSection(personaID int64, withDetail bool) *api.PlayerReportResponse {
	section := &api.PlayerReportResponse{
		PersonaID: strconv.FormatInt(personaID, 10),
		Stats: api.ReportStats{
			ShotsHit:          120,
			ShotsFired:        650,
			VehiclesDestroyed: 1,
			Assists:           5,
			Spm:               512.6,
			KDRatio:           2.33,
			Skill:             301,
			VehicleAssists:    2,
			Accuracy:          18,
		},
		Scores: api.ReportScores{
			ScAssault: 4200,
			ScTotal:   9800,
		},
	}
	if withDetail {
		section.Persona = &api.RawPersona{
			PersonaID:   personaID,
			PersonaName: "SgtMetro",
			ClanTag:     strPtr("XP"),
		}
	}
	return section
}
