package data

import (
	"encoding/json"
	"fmt"
	"starhold_server/internal/game"
)

// Number of rows returned by the report queries when the
// caller does not bound them.
const defaultReportsLimit = 50

// AppendBattleReport :
// Persists a battle report.
//
// The `report` defines the report to persist.
//
// Returns any error.
func (s *Store) AppendBattleReport(report game.BattleReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal battle report \"%s\" (err: %v)", report.ID, err)
	}

	_, err = s.proxy.DBExecute(
		"INSERT INTO battle_reports (id, at, attacker, defender, data) VALUES ($1, $2, $3, $4, $5)",
		report.ID, report.At, report.Attacker, report.Defender, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save battle report \"%s\" (err: %v)", report.ID, err)
	}

	return nil
}

// AppendFleetReport :
// Persists a fleet report.
//
// The `report` defines the report to persist.
//
// Returns any error.
func (s *Store) AppendFleetReport(report game.FleetReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal fleet report \"%s\" (err: %v)", report.ID, err)
	}

	_, err = s.proxy.DBExecute(
		"INSERT INTO fleet_reports (id, at, owner, data) VALUES ($1, $2, $3, $4)",
		report.ID, report.At, report.Owner, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save fleet report \"%s\" (err: %v)", report.ID, err)
	}

	return nil
}

// AppendMessage :
// Persists a message addressed to an agent.
//
// The `message` defines the message to persist.
//
// Returns any error.
func (s *Store) AppendMessage(message game.Message) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message \"%s\" (err: %v)", message.ID, err)
	}

	_, err = s.proxy.DBExecute(
		"INSERT INTO messages (id, at, recipient, data) VALUES ($1, $2, $3, $4)",
		message.ID, message.At, message.Recipient, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save message \"%s\" (err: %v)", message.ID, err)
	}

	return nil
}

// AppendScoreSnapshot :
// Persists a score snapshot of an agent.
//
// The `snapshot` defines the snapshot to persist.
//
// Returns any error.
func (s *Store) AppendScoreSnapshot(snapshot game.ScoreSnapshot) error {
	_, err := s.proxy.DBExecute(
		"INSERT INTO score_history (at, agent, score, planets) VALUES ($1, $2, $3, $4)",
		snapshot.At, snapshot.Agent, snapshot.Score, snapshot.Planets,
	)
	if err != nil {
		return fmt.Errorf("failed to save score snapshot for \"%s\" (err: %v)", snapshot.Agent, err)
	}

	return nil
}

// listBlobs :
// Fetches and decodes the most recent blobs of an event
// table matching the input condition, newest first.
//
// The `query` defines the select statement. It is meant
// to take the agent as first parameter and the limit as
// second.
//
// The `agent` and `limit` define the parameters.
//
// The `decode` defines the per-row decoder.
//
// Returns any error.
func (s *Store) listBlobs(query string, agent string, limit int, decode func(raw []byte) error) error {
	if limit <= 0 {
		limit = defaultReportsLimit
	}

	rows, err := s.proxy.DBQuery(query, agent, limit)
	if err != nil {
		return fmt.Errorf("failed to query reports for \"%s\" (err: %v)", agent, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("failed to scan report for \"%s\" (err: %v)", agent, err)
		}

		if err := decode(raw); err != nil {
			return fmt.Errorf("failed to decode report for \"%s\" (err: %v)", agent, err)
		}
	}

	return rows.Err()
}

// ListBattleReports :
// Fetches the most recent battle reports involving an
// agent, as attacker or defender.
//
// The `agent` defines the agent.
//
// The `limit` defines the maximum number of rows.
//
// Returns the reports along with any error.
func (s *Store) ListBattleReports(agent string, limit int) ([]game.BattleReport, error) {
	out := make([]game.BattleReport, 0)

	err := s.listBlobs(
		"SELECT data FROM battle_reports WHERE attacker = $1 OR defender = $1 ORDER BY at DESC LIMIT $2",
		agent, limit,
		func(raw []byte) error {
			var report game.BattleReport
			if err := json.Unmarshal(raw, &report); err != nil {
				return err
			}
			out = append(out, report)
			return nil
		},
	)

	return out, err
}

// ListFleetReports :
// Fetches the most recent fleet reports of an agent.
//
// The `agent` defines the agent.
//
// The `limit` defines the maximum number of rows.
//
// Returns the reports along with any error.
func (s *Store) ListFleetReports(agent string, limit int) ([]game.FleetReport, error) {
	out := make([]game.FleetReport, 0)

	err := s.listBlobs(
		"SELECT data FROM fleet_reports WHERE owner = $1 ORDER BY at DESC LIMIT $2",
		agent, limit,
		func(raw []byte) error {
			var report game.FleetReport
			if err := json.Unmarshal(raw, &report); err != nil {
				return err
			}
			out = append(out, report)
			return nil
		},
	)

	return out, err
}

// ListMessages :
// Fetches the most recent messages addressed to an
// agent.
//
// The `agent` defines the agent.
//
// The `limit` defines the maximum number of rows.
//
// Returns the messages along with any error.
func (s *Store) ListMessages(agent string, limit int) ([]game.Message, error) {
	out := make([]game.Message, 0)

	err := s.listBlobs(
		"SELECT data FROM messages WHERE recipient = $1 ORDER BY at DESC LIMIT $2",
		agent, limit,
		func(raw []byte) error {
			var message game.Message
			if err := json.Unmarshal(raw, &message); err != nil {
				return err
			}
			out = append(out, message)
			return nil
		},
	)

	return out, err
}

// ListScoreHistory :
// Fetches the most recent score snapshots of an agent.
//
// The `agent` defines the agent.
//
// The `limit` defines the maximum number of rows.
//
// Returns the snapshots along with any error.
func (s *Store) ListScoreHistory(agent string, limit int) ([]game.ScoreSnapshot, error) {
	if limit <= 0 {
		limit = defaultReportsLimit
	}

	rows, err := s.proxy.DBQuery(
		"SELECT at, agent, score, planets FROM score_history WHERE agent = $1 ORDER BY at DESC LIMIT $2",
		agent, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history for \"%s\" (err: %v)", agent, err)
	}
	defer rows.Close()

	out := make([]game.ScoreSnapshot, 0)

	for rows.Next() {
		var snapshot game.ScoreSnapshot
		if err := rows.Scan(&snapshot.At, &snapshot.Agent, &snapshot.Score, &snapshot.Planets); err != nil {
			return nil, fmt.Errorf("failed to scan score snapshot for \"%s\" (err: %v)", agent, err)
		}
		out = append(out, snapshot)
	}

	return out, rows.Err()
}
