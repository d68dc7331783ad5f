package service

import (
	"errors"
	"fmt"
	"strconv"

	"battlereport-logger/internal/api"
	"battlereport-logger/internal/domain"
)

// ErrMalformedReport marks a raw payload that cannot yield any records.
// Normalization is all-or-nothing per report.
var ErrMalformedReport = errors.New("malformed battle report")

// Normalize turns a raw battle report payload into the persisted record
// shapes. The returned BattleReport carries no server id; resolving the
// server row is the caller's concern. Bulk payloads embed exactly one
// participant's report section, so the persona and player report slices
// hold one element each.
func Normalize(raw *api.ReportResponse) (*domain.BattleReport, []domain.Persona, []domain.PlayerReport, error) {
	reportID, err := strconv.ParseInt(raw.ID, 10, 64)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: invalid report id %q", ErrMalformedReport, raw.ID)
	}

	if raw.GameServer.GUID == nil {
		return nil, nil, nil, fmt.Errorf("%w: server guid missing from report %d", ErrMalformedReport, reportID)
	}

	if raw.PlayerReport == nil {
		return nil, nil, nil, fmt.Errorf("%w: player report missing from report %d", ErrMalformedReport, reportID)
	}

	personaID, err := personaIDOf(raw.PlayerReport)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: invalid persona id in report %d", ErrMalformedReport, reportID)
	}

	player := raw.GetPlayerByPersonaID(personaID)
	if player == nil {
		return nil, nil, nil, fmt.Errorf("%w: persona %d missing from roster of report %d", ErrMalformedReport, personaID, reportID)
	}

	report := newBattleReport(reportID, raw, 0)
	persona := newPersona(personaID, raw.PlayerReport.Persona, gravatarOf(raw, personaID))
	playerReport := newPlayerReport(reportID, personaID, raw.PlayerReport, player)

	return report, []domain.Persona{persona}, []domain.PlayerReport{playerReport}, nil
}

// Winner returns the id of the first team flagged as winner, or -1 when no
// team is flagged (draw/unknown).
func Winner(raw *api.ReportResponse) int64 {
	for _, team := range raw.Teams {
		if team.IsWinner {
			return team.ID
		}
	}
	return -1
}

func newBattleReport(reportID int64, raw *api.ReportResponse, serverID int64) *domain.BattleReport {
	return &domain.BattleReport{
		ID:        reportID,
		Duration:  raw.Duration,
		Winner:    Winner(raw),
		ServerID:  serverID,
		Map:       stringOr(raw.GameServer.Map, ""),
		Mode:      stringOr(raw.GameServer.MapMode, ""),
		CreatedAt: raw.CreatedAt,
		Processed: 0,
	}
}

// newPersona builds a persona record from an embedded persona object. A
// payload that references the persona only by id yields an unprocessed
// record with no detail.
func newPersona(personaID int64, rawPersona *api.RawPersona, gravatar *string) domain.Persona {
	if rawPersona == nil {
		return domain.Persona{ID: personaID}
	}
	name := rawPersona.PersonaName
	return domain.Persona{
		ID:          personaID,
		Name:        &name,
		ClanTag:     rawPersona.ClanTag,
		GravatarMD5: gravatar,
		Processed:   true,
	}
}

func newPlayerReport(reportID, personaID int64, section *api.PlayerReportResponse, player *api.ReportPlayer) domain.PlayerReport {
	return domain.PlayerReport{
		ReportID:          reportID,
		PersonaID:         personaID,
		Kills:             player.Kills,
		Deaths:            player.Deaths,
		ShotsHit:          section.Stats.ShotsHit,
		ShotsFired:        section.Stats.ShotsFired,
		VehiclesDestroyed: section.Stats.VehiclesDestroyed,
		Assists:           section.Stats.Assists,
		SPM:               section.Stats.SPM(),
		KDRatio:           section.Stats.KDRatio,
		Skill:             section.Stats.Skill,
		VehicleAssists:    section.Stats.VehicleAssists,
		Accuracy:          section.Stats.Accuracy,
		ScUnlock:          section.Scores.ScUnlock,
		ScBomber:          section.Scores.ScBomber,
		ScVehicleSH:       section.Scores.ScVehicleSH,
		ScVehicleAJet:     section.Scores.ScVehicleAJet,
		ScEngineer:        section.Scores.ScEngineer,
		ScCommander:       section.Scores.ScCommander,
		ScAssault:         section.Scores.ScAssault,
		ScVehicle:         section.Scores.ScVehicle,
		ScVehicleAA:       section.Scores.ScVehicleAA,
		ScAward:           section.Scores.ScAward,
		ScVehicleIFV:      section.Scores.ScVehicleIFV,
		ScRecon:           section.Scores.ScRecon,
		ScVehicleAH:       section.Scores.ScVehicleAH,
		ScSupport:         section.Scores.ScSupport,
		ScVehicleSJet:     section.Scores.ScVehicleSJet,
		ScTotal:           section.Scores.ScTotal,
		ScVehicleMBT:      section.Scores.ScVehicleMBT,
		ScVehicleABoat:    section.Scores.ScVehicleABoat,
		Heals:             player.Heals,
		Revives:           player.Revives,
		Team:              player.Team,
		KillStreak:        player.KillStreak,
		SquadID:           player.SquadID,
		AccuracyDetailed:  player.Accuracy,
		DNF:               player.DNF,
		IsCommander:       player.IsCommander,
		IsSoldier:         player.IsSoldier,
	}
}

// gravatarOf walks persona -> user -> gravatar for one roster entry. Any
// missing link means unknown, never an error.
func gravatarOf(raw *api.ReportResponse, personaID int64) *string {
	player := raw.GetPlayerByPersonaID(personaID)
	if player == nil || player.Persona == nil || player.Persona.User == nil {
		return nil
	}
	return player.Persona.User.GravatarMD5
}

func personaIDOf(section *api.PlayerReportResponse) (int64, error) {
	if section.Persona != nil {
		return section.Persona.PersonaID, nil
	}
	return strconv.ParseInt(section.PersonaID, 10, 64)
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
