package domain

// Server is a game server resolved by its guid. The guid and surrogate id
// are immutable once created; the display name is refreshed on re-sight.
type Server struct {
	ID   int64
	Name string
	GUID string
}

// Persona is a player's external identity. Processed=false means the persona
// has only been seen as an id reference and its detail was never resolved.
type Persona struct {
	ID          int64
	Name        *string
	ClanTag     *string
	GravatarMD5 *string
	Processed   bool
	LastUpdated *int64
}

// PersonaInfo carries profile detail populated by the persona updater.
type PersonaInfo struct {
	PersonaID    int64
	Locality     *string
	Location     *string
	Presentation *string
	LoginCounter *int64
	LastLogin    *int64
}

// BattleReport is one completed match. Processed is a two-state flag:
// 0 = participants not fully recorded, 1 = report and all player reports
// committed.
type BattleReport struct {
	ID        int64
	Duration  int64
	Winner    int64 // winning team id, -1 for draw/unknown
	ServerID  int64
	Map       string
	Mode      string
	CreatedAt int64 // epoch seconds
	Processed int64
}

// PlayerReport is one participant's per-match statistics, keyed by
// (report id, persona id).
type PlayerReport struct {
	ReportID          int64
	PersonaID         int64
	Kills             int64
	Deaths            int64
	ShotsHit          float64
	ShotsFired        float64
	VehiclesDestroyed int64
	Assists           int64
	SPM               int64
	KDRatio           float64
	Skill             int64
	VehicleAssists    int64
	Accuracy          int64
	ScUnlock          int64
	ScBomber          int64
	ScVehicleSH       int64
	ScVehicleAJet     int64
	ScEngineer        int64
	ScCommander       int64
	ScAssault         int64
	ScVehicle         int64
	ScVehicleAA       int64
	ScAward           int64
	ScVehicleIFV      int64
	ScRecon           int64
	ScVehicleAH       int64
	ScSupport         int64
	ScVehicleSJet     int64
	ScTotal           int64
	ScVehicleMBT      int64
	ScVehicleABoat    int64
	Heals             int64
	Revives           int64
	Team              int64
	KillStreak        int64
	SquadID           int64
	AccuracyDetailed  float64
	DNF               bool
	IsCommander       bool
	IsSoldier         bool
}
