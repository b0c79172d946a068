package data

import (
	"encoding/json"
	"fmt"
	"starhold_server/internal/game"
	"starhold_server/pkg/db"
	"starhold_server/pkg/logger"
	"strconv"
)

// getModuleName :
// Returns the name of the module to use in the logs.
func getModuleName() string {
	return "data"
}

// Store :
// Implements the persistence contract of the engine on
// top of a postgres database. The mutable entities are
// stored as JSON blobs keyed by identifier; the event
// tables are plain relational tables with timestamp and
// recipient indexes.
//
// The `proxy` defines the database connection.
//
// The `log` allows to notify errors and information.
type Store struct {
	proxy *db.DB
	log   logger.Logger
}

// NewStore :
// Creates a store working on the input database.
//
// The `proxy` defines the database connection.
//
// The `log` defines the logging device.
//
// Returns the created store.
func NewStore(proxy *db.DB, log logger.Logger) *Store {
	return &Store{
		proxy: proxy,
		log:   log,
	}
}

// Migrate :
// Creates the tables needed by the store when they do
// not exist yet.
//
// Returns any error.
func (s *Store) Migrate() error {
	for _, stmt := range schema {
		if _, err := s.proxy.DBExecute(stmt); err != nil {
			return fmt.Errorf("failed to apply schema (err: %v)", err)
		}
	}

	return nil
}

// Load :
// Reads the whole persisted state into the input world.
// Legacy blob shapes are coerced on the fly. A failure
// here is meant to be fatal to the boot sequence.
//
// The `w` defines the world to populate.
//
// Returns any error.
func (s *Store) Load(w *game.World) error {
	agents, err := s.loadAgents()
	if err != nil {
		return err
	}

	planets := make([]*game.Planet, 0)
	if err := s.loadBlobs("planets", func(raw []byte) error {
		var p game.Planet
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		planets = append(planets, &p)
		return nil
	}); err != nil {
		return err
	}

	fleets := make([]*game.Fleet, 0)
	if err := s.loadBlobs("fleets", func(raw []byte) error {
		var f game.Fleet
		if err := json.Unmarshal(raw, &f); err != nil {
			return err
		}
		fleets = append(fleets, &f)
		return nil
	}); err != nil {
		return err
	}

	debris := make([]*game.DebrisField, 0)
	if err := s.loadBlobs("debris_fields", func(raw []byte) error {
		var df game.DebrisField
		if err := json.Unmarshal(raw, &df); err != nil {
			return err
		}
		debris = append(debris, &df)
		return nil
	}); err != nil {
		return err
	}

	systems := make([]*game.StarSystem, 0)
	if err := s.loadBlobs("systems", func(raw []byte) error {
		var sys game.StarSystem
		if err := json.Unmarshal(raw, &sys); err != nil {
			return err
		}
		systems = append(systems, &sys)
		return nil
	}); err != nil {
		return err
	}

	tick, err := s.loadTick()
	if err != nil {
		return err
	}

	w.Restore(agents, planets, fleets, debris, systems, tick)

	s.log.Trace(logger.Info, getModuleName(), fmt.Sprintf("Loaded %d agent(s), %d planet(s), %d fleet(s) at tick %d", len(agents), len(planets), len(fleets), tick))

	return nil
}

// loadBlobs :
// Fetches all the blobs of a table and feeds them one by
// one to the input decoder.
//
// The `table` defines the table to read.
//
// The `decode` defines the per-row decoder.
//
// Returns any error.
func (s *Store) loadBlobs(table string, decode func(raw []byte) error) error {
	rows, err := s.proxy.DBQuery(fmt.Sprintf("SELECT data FROM %s", table))
	if err != nil {
		return fmt.Errorf("failed to read table \"%s\" (err: %v)", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("failed to scan row of \"%s\" (err: %v)", table, err)
		}

		if err := decode(raw); err != nil {
			return fmt.Errorf("failed to decode row of \"%s\" (err: %v)", table, err)
		}
	}

	return rows.Err()
}

// loadAgents :
// Fetches and decodes the persisted agents, coercing the
// legacy blob shapes.
//
// Returns the agents along with any error.
func (s *Store) loadAgents() ([]*game.Agent, error) {
	agents := make([]*game.Agent, 0)

	err := s.loadBlobs("agents", func(raw []byte) error {
		a, err := decodeAgent(raw)
		if err != nil {
			return err
		}

		agents = append(agents, a)
		return nil
	})

	return agents, err
}

// loadTick :
// Fetches the persisted tick counter, defaulting to `0`
// when the universe has never been saved.
//
// Returns the tick along with any error.
func (s *Store) loadTick() (uint64, error) {
	rows, err := s.proxy.DBQuery("SELECT value FROM globals WHERE key = 'tick'")
	if err != nil {
		return 0, fmt.Errorf("failed to read tick (err: %v)", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, rows.Err()
	}

	var value string
	if err := rows.Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to scan tick (err: %v)", err)
	}

	tick, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse tick \"%s\" (err: %v)", value, err)
	}

	return tick, nil
}

// Save :
// Persists a snapshot of the world in one transaction.
// The entities come in already serialized so that no
// live state is touched here. The agents, planets and
// systems tables are upserted; the fleets and debris
// tables are fully reconciled so that entities gone from
// the snapshot disappear from the persisted set.
//
// The `snap` defines the snapshot to persist.
//
// Returns any error.
func (s *Store) Save(snap game.Snapshot) error {
	tx, err := s.proxy.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save transaction (err: %v)", err)
	}

	defer func() {
		if err != nil {
			if errRb := tx.Rollback(); errRb != nil {
				s.log.Trace(logger.Error, getModuleName(), fmt.Sprintf("Failed to rollback save transaction (err: %v)", errRb))
			}
		}
	}()

	upsert := "INSERT INTO %s (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data = excluded.data"

	for _, blob := range snap.Agents {
		if _, err = tx.Exec(fmt.Sprintf(upsert, "agents"), blob.ID, blob.Data); err != nil {
			return fmt.Errorf("failed to save agent \"%s\" (err: %v)", blob.ID, err)
		}
	}

	for _, blob := range snap.Planets {
		if _, err = tx.Exec(fmt.Sprintf(upsert, "planets"), blob.ID, blob.Data); err != nil {
			return fmt.Errorf("failed to save planet \"%s\" (err: %v)", blob.ID, err)
		}
	}

	for _, blob := range snap.Systems {
		if _, err = tx.Exec(fmt.Sprintf(upsert, "systems"), blob.ID, blob.Data); err != nil {
			return fmt.Errorf("failed to save system \"%s\" (err: %v)", blob.ID, err)
		}
	}

	if _, err = tx.Exec("DELETE FROM fleets"); err != nil {
		return fmt.Errorf("failed to reconcile fleets (err: %v)", err)
	}
	for _, blob := range snap.Fleets {
		if _, err = tx.Exec("INSERT INTO fleets (id, data) VALUES ($1, $2)", blob.ID, blob.Data); err != nil {
			return fmt.Errorf("failed to save fleet \"%s\" (err: %v)", blob.ID, err)
		}
	}

	if _, err = tx.Exec("DELETE FROM debris_fields"); err != nil {
		return fmt.Errorf("failed to reconcile debris fields (err: %v)", err)
	}
	for _, blob := range snap.Debris {
		if _, err = tx.Exec("INSERT INTO debris_fields (id, data) VALUES ($1, $2)", blob.ID, blob.Data); err != nil {
			return fmt.Errorf("failed to save debris field \"%s\" (err: %v)", blob.ID, err)
		}
	}

	tick := strconv.FormatUint(snap.Tick, 10)
	if _, err = tx.Exec("INSERT INTO globals (key, value) VALUES ('tick', $1) ON CONFLICT (key) DO UPDATE SET value = excluded.value", tick); err != nil {
		return fmt.Errorf("failed to save tick (err: %v)", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save transaction (err: %v)", err)
	}

	return nil
}

// decodeAgent :
// Unmarshals an agent blob, coercing the legacy shapes:
// officer and booster sets were once stored as plain
// identifier lists and older blobs miss the premium
// fields entirely.
//
// The `raw` defines the blob to decode.
//
// Returns the agent along with any error.
func decodeAgent(raw []byte) (*game.Agent, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	coerceStatusList(fields, "officers")
	coerceStatusList(fields, "boosters")

	patched, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	var a game.Agent
	if err := json.Unmarshal(patched, &a); err != nil {
		return nil, err
	}

	if a.Officers == nil {
		a.Officers = make(map[string]game.OfficerStatus)
	}
	if a.Boosters == nil {
		a.Boosters = make(map[string]game.BoosterStatus)
	}
	if a.Stakes == nil {
		a.Stakes = make([]game.Stake, 0)
	}
	if a.Technologies == nil {
		a.Technologies = make(map[string]int)
	}

	return &a, nil
}

// coerceStatusList :
// Rewrites a field persisted as a plain list of
// identifiers into the map shape expected today. The
// statuses of the listed entries come out zeroed, which
// marks them as expired.
//
// The `fields` define the decoded blob.
//
// The `key` defines the field to coerce.
func coerceStatusList(fields map[string]json.RawMessage, key string) {
	raw, ok := fields[key]
	if !ok || len(raw) == 0 || raw[0] != '[' {
		return
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return
	}

	coerced := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		coerced[id] = struct{}{}
	}

	patched, err := json.Marshal(coerced)
	if err != nil {
		return
	}

	fields[key] = patched
}
