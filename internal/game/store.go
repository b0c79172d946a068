package game

// Store :
// Describes the persistence contract needed by the
// engine. The snapshot of the mutable world is written
// back in one transaction by a single writer process
// while the report tables are appended to directly by
// the handlers.
//
// The `Save` persists a snapshot of the mutable state of
// the world. Fleets and debris fields absent from the
// snapshot are removed from the persisted set.
//
// The `AppendBattleReport`, `AppendFleetReport`,
// `AppendMessage` and `AppendScoreSnapshot` append a row
// to the corresponding event table.
//
// The `ListBattleReports`, `ListFleetReports`,
// `ListMessages` and `ListScoreHistory` fetch the most
// recent rows addressed to an agent, newest first.
type Store interface {
	Save(snap Snapshot) error

	AppendBattleReport(report BattleReport) error
	AppendFleetReport(report FleetReport) error
	AppendMessage(message Message) error
	AppendScoreSnapshot(snapshot ScoreSnapshot) error

	ListBattleReports(agent string, limit int) ([]BattleReport, error)
	ListFleetReports(agent string, limit int) ([]FleetReport, error)
	ListMessages(agent string, limit int) ([]Message, error)
	ListScoreHistory(agent string, limit int) ([]ScoreSnapshot, error)
}
