package api

import "math"

// ReportResponse is the raw battle report payload. Bulk report files carry
// the same shape, with playerReport holding only the primary participant's
// section.
type ReportResponse struct {
	ID           string                  `json:"id"`
	Duration     int64                   `json:"duration"`
	CreatedAt    int64                   `json:"createdAt"`
	GameServer   GameServer              `json:"gameServer"`
	Teams        map[string]Team         `json:"teams"`
	Players      map[string]ReportPlayer `json:"players"`
	PlayerReport *PlayerReportResponse   `json:"playerReport"`
}

type GameServer struct {
	GUID    *string `json:"guid"`
	Name    *string `json:"name"`
	Map     *string `json:"map"`
	MapMode *string `json:"mapMode"`
}

type Team struct {
	ID       int64 `json:"id"`
	IsWinner bool  `json:"isWinner"`
}

// ReportPlayer is one participant's entry in the report roster.
type ReportPlayer struct {
	PersonaID   int64       `json:"personaId"`
	Kills       int64       `json:"kills"`
	Deaths      int64       `json:"deaths"`
	Heals       int64       `json:"heals"`
	Revives     int64       `json:"revives"`
	Team        int64       `json:"team"`
	KillStreak  int64       `json:"killStreak"`
	SquadID     int64       `json:"squadId"`
	Accuracy    float64     `json:"accuracy"`
	DNF         bool        `json:"dnf"`
	IsCommander bool        `json:"isCommander"`
	IsSoldier   bool        `json:"isSoldier"`
	Persona     *RawPersona `json:"persona"`
}

type RawPersona struct {
	PersonaID   int64    `json:"personaId"`
	PersonaName string   `json:"personaName"`
	ClanTag     *string  `json:"clanTag"`
	User        *RawUser `json:"user"`
}

type RawUser struct {
	GravatarMD5 *string `json:"gravatarMd5"`
}

// PlayerReportResponse is one participant's detailed report, either embedded
// in a bulk payload or fetched per-participant.
type PlayerReportResponse struct {
	PersonaID string       `json:"personaId"`
	Persona   *RawPersona  `json:"persona"`
	Stats     ReportStats  `json:"stats"`
	Scores    ReportScores `json:"scores"`
}

type ReportStats struct {
	ShotsHit          float64 `json:"shotsHit"`
	ShotsFired        float64 `json:"shotsFired"`
	VehiclesDestroyed int64   `json:"vehiclesDestroyed"`
	Assists           int64   `json:"assists"`
	Spm               float64 `json:"spm"`
	KDRatio           float64 `json:"kdRatio"`
	Skill             int64   `json:"skill"`
	VehicleAssists    int64   `json:"vehicleAssists"`
	Accuracy          int64   `json:"accuracy"`
}

// SPM rounds the payload's own per-minute score; the value is copied
// through, never recomputed from raw counters.
func (s ReportStats) SPM() int64 {
	return int64(math.Round(s.Spm))
}

type ReportScores struct {
	ScUnlock       int64 `json:"sc_unlock"`
	ScBomber       int64 `json:"sc_bomber"`
	ScVehicleSH    int64 `json:"sc_vehiclesh"`
	ScVehicleAJet  int64 `json:"sc_vehicleajet"`
	ScEngineer     int64 `json:"sc_engineer"`
	ScCommander    int64 `json:"sc_commander"`
	ScAssault      int64 `json:"sc_assault"`
	ScVehicle      int64 `json:"vehicle"`
	ScVehicleAA    int64 `json:"sc_vehicleaa"`
	ScAward        int64 `json:"sc_award"`
	ScVehicleIFV   int64 `json:"sc_vehicleifv"`
	ScRecon        int64 `json:"sc_recon"`
	ScVehicleAH    int64 `json:"sc_vehicleah"`
	ScSupport      int64 `json:"sc_support"`
	ScVehicleSJet  int64 `json:"sc_vehiclesjet"`
	ScTotal        int64 `json:"total"`
	ScVehicleMBT   int64 `json:"sc_vehiclembt"`
	ScVehicleABoat int64 `json:"sc_vehicleaboat"`
}

// MoreReportsResponse is the paginated "load more reports" payload.
type MoreReportsResponse struct {
	Type string          `json:"type"`
	Data MoreReportsData `json:"data"`
}

type MoreReportsData struct {
	GameReports []GameReport `json:"gameReports"`
}

type GameReport struct {
	GameReportID string `json:"gameReportId"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"createdAt"`
}

// UserResult is one entry of the bulk user lookup.
type UserResult struct {
	PersonaID string    `json:"personaId"`
	Info      *UserInfo `json:"presentation"`
}

type UserInfo struct {
	Locality     *string `json:"locality"`
	Location     *string `json:"location"`
	Presentation *string `json:"presentation"`
	LoginCounter *int64  `json:"loginCounter"`
	LastLogin    *int64  `json:"lastLogin"`
}

// GetPlayerByPersonaID returns the roster entry for a persona, or nil when
// the persona did not participate.
func (r *ReportResponse) GetPlayerByPersonaID(personaID int64) *ReportPlayer {
	for _, player := range r.Players {
		if player.PersonaID == personaID {
			p := player
			return &p
		}
	}
	return nil
}
