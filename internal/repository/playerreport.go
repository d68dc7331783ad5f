package repository

import (
	"context"
	"database/sql"
	"errors"

	"battlereport-logger/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerReportRepository struct {
	q      DBTX
	logger zerolog.Logger
}

func NewPlayerReportRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerReportRepository {
	return &PlayerReportRepository{
		q:      sqlDB,
		logger: logger,
	}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *PlayerReportRepository) WithTx(tx *sql.Tx) *PlayerReportRepository {
	c := *r
	c.q = tx
	return &c
}

const playerReportColumns = `report_id, persona_id, kills, deaths, shots_hit, shots_fired,
	vehicles_destroyed, assists, spm, kd_ratio, skill, vehicle_assists, accuracy,
	sc_unlock, sc_bomber, sc_vehiclesh, sc_vehicleajet, sc_engineer, sc_commander,
	sc_assault, sc_vehicle, sc_vehicleaa, sc_award, sc_vehicleifv, sc_recon,
	sc_vehicleah, sc_support, sc_vehiclesjet, sc_total, sc_vehiclembt, sc_vehicleaboat,
	heals, revives, team, kill_streak, squad_id, accuracy_detailed, dnf, is_commander, is_soldier`

const playerReportPlaceholders = `?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`

func playerReportArgs(pr *domain.PlayerReport) []any {
	return []any{
		pr.ReportID, pr.PersonaID, pr.Kills, pr.Deaths, pr.ShotsHit, pr.ShotsFired,
		pr.VehiclesDestroyed, pr.Assists, pr.SPM, pr.KDRatio, pr.Skill, pr.VehicleAssists, pr.Accuracy,
		pr.ScUnlock, pr.ScBomber, pr.ScVehicleSH, pr.ScVehicleAJet, pr.ScEngineer, pr.ScCommander,
		pr.ScAssault, pr.ScVehicle, pr.ScVehicleAA, pr.ScAward, pr.ScVehicleIFV, pr.ScRecon,
		pr.ScVehicleAH, pr.ScSupport, pr.ScVehicleSJet, pr.ScTotal, pr.ScVehicleMBT, pr.ScVehicleABoat,
		pr.Heals, pr.Revives, pr.Team, pr.KillStreak, pr.SquadID, pr.AccuracyDetailed,
		pr.DNF, pr.IsCommander, pr.IsSoldier,
	}
}

func (r *PlayerReportRepository) GetByKey(ctx context.Context, reportID, personaID int64) (*domain.PlayerReport, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+playerReportColumns+` FROM playerreports WHERE report_id = ? AND persona_id = ?`,
		reportID, personaID)

	var pr domain.PlayerReport
	err := row.Scan(
		&pr.ReportID, &pr.PersonaID, &pr.Kills, &pr.Deaths, &pr.ShotsHit, &pr.ShotsFired,
		&pr.VehiclesDestroyed, &pr.Assists, &pr.SPM, &pr.KDRatio, &pr.Skill, &pr.VehicleAssists, &pr.Accuracy,
		&pr.ScUnlock, &pr.ScBomber, &pr.ScVehicleSH, &pr.ScVehicleAJet, &pr.ScEngineer, &pr.ScCommander,
		&pr.ScAssault, &pr.ScVehicle, &pr.ScVehicleAA, &pr.ScAward, &pr.ScVehicleIFV, &pr.ScRecon,
		&pr.ScVehicleAH, &pr.ScSupport, &pr.ScVehicleSJet, &pr.ScTotal, &pr.ScVehicleMBT, &pr.ScVehicleABoat,
		&pr.Heals, &pr.Revives, &pr.Team, &pr.KillStreak, &pr.SquadID, &pr.AccuracyDetailed,
		&pr.DNF, &pr.IsCommander, &pr.IsSoldier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *PlayerReportRepository) Insert(ctx context.Context, pr *domain.PlayerReport) (int64, error) {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO playerreports (`+playerReportColumns+`) VALUES (`+playerReportPlaceholders+`)`,
		playerReportArgs(pr)...)
	if err != nil {
		return 0, err
	}
	return pr.ReportID, nil
}

func (r *PlayerReportRepository) Update(ctx context.Context, pr *domain.PlayerReport) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE playerreports SET kills = ?, deaths = ?, shots_hit = ?, shots_fired = ?,
			vehicles_destroyed = ?, assists = ?, spm = ?, kd_ratio = ?, skill = ?, vehicle_assists = ?,
			accuracy = ?, sc_unlock = ?, sc_bomber = ?, sc_vehiclesh = ?, sc_vehicleajet = ?,
			sc_engineer = ?, sc_commander = ?, sc_assault = ?, sc_vehicle = ?, sc_vehicleaa = ?,
			sc_award = ?, sc_vehicleifv = ?, sc_recon = ?, sc_vehicleah = ?, sc_support = ?,
			sc_vehiclesjet = ?, sc_total = ?, sc_vehiclembt = ?, sc_vehicleaboat = ?,
			heals = ?, revives = ?, team = ?, kill_streak = ?, squad_id = ?, accuracy_detailed = ?,
			dnf = ?, is_commander = ?, is_soldier = ?
		WHERE report_id = ? AND persona_id = ?`,
		pr.Kills, pr.Deaths, pr.ShotsHit, pr.ShotsFired,
		pr.VehiclesDestroyed, pr.Assists, pr.SPM, pr.KDRatio, pr.Skill, pr.VehicleAssists,
		pr.Accuracy, pr.ScUnlock, pr.ScBomber, pr.ScVehicleSH, pr.ScVehicleAJet,
		pr.ScEngineer, pr.ScCommander, pr.ScAssault, pr.ScVehicle, pr.ScVehicleAA,
		pr.ScAward, pr.ScVehicleIFV, pr.ScRecon, pr.ScVehicleAH, pr.ScSupport,
		pr.ScVehicleSJet, pr.ScTotal, pr.ScVehicleMBT, pr.ScVehicleABoat,
		pr.Heals, pr.Revives, pr.Team, pr.KillStreak, pr.SquadID, pr.AccuracyDetailed,
		pr.DNF, pr.IsCommander, pr.IsSoldier,
		pr.ReportID, pr.PersonaID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpsertIgnore inserts the row only when (report_id, persona_id) is new, so
// retried ingestion never duplicates a participant.
func (r *PlayerReportRepository) UpsertIgnore(ctx context.Context, pr *domain.PlayerReport) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO playerreports (`+playerReportColumns+`) VALUES (`+playerReportPlaceholders+`)`,
		playerReportArgs(pr)...)
	return err
}
