package game

import (
	"encoding/json"
	"fmt"
)

// SnapshotBlob :
// One serialized entity of a snapshot: its identifier
// along with its persisted state.
//
// The `ID` defines the identifier of the entity.
//
// The `Data` defines the serialized state.
type SnapshotBlob struct {
	ID   string
	Data []byte
}

// Snapshot :
// A consistent serialized image of the mutable state of
// the universe, built while the simulation is paused so
// that no entity is caught mid-mutation. The persistence
// layer writes the blobs as they are: the image stays
// valid no matter what happens to the live world after
// it was taken.
//
// The `Agents`, `Planets`, `Fleets`, `Debris` and
// `Systems` define the serialized entities.
//
// The `Tick` defines the tick counter at the time of the
// snapshot.
type Snapshot struct {
	Agents  []SnapshotBlob
	Planets []SnapshotBlob
	Fleets  []SnapshotBlob
	Debris  []SnapshotBlob
	Systems []SnapshotBlob

	Tick uint64
}

// Snapshot :
// Builds a consistent serialized image of the world. The
// locks of every planet are held while the image is
// built: the tick loop and the command handlers mutate
// the entities under these locks, so none of them can
// change an entity in the middle of its serialization.
//
// Returns the snapshot along with any error.
func (e *Engine) Snapshot() (Snapshot, error) {
	planets := e.world.ListPlanets()

	ids := make([]string, 0, len(planets))
	for _, p := range planets {
		ids = append(ids, p.ID)
	}

	if err := e.locks.AcquireAll(ids); err != nil {
		return Snapshot{}, newError(Conflict, "planets are busy")
	}
	defer e.locks.ReleaseAll(ids)

	return e.world.snapshot()
}

// snapshot :
// Serializes every entity of the registries. The caller
// holds the locks of every planet; the registry lock
// taken here excludes registrations and renames for the
// duration of the serialization.
//
// Returns the snapshot along with any error.
func (w *World) snapshot() (Snapshot, error) {
	w.locker.Lock()
	defer w.locker.Unlock()

	out := Snapshot{Tick: w.tick}

	encode := func(id string, entity interface{}, dst *[]SnapshotBlob) error {
		raw, err := json.Marshal(entity)
		if err != nil {
			return fmt.Errorf("failed to marshal \"%s\" (err: %v)", id, err)
		}

		*dst = append(*dst, SnapshotBlob{ID: id, Data: raw})

		return nil
	}

	for _, a := range w.agents {
		if err := encode(a.ID, a, &out.Agents); err != nil {
			return Snapshot{}, err
		}
	}
	for _, p := range w.planets {
		if err := encode(p.ID, p, &out.Planets); err != nil {
			return Snapshot{}, err
		}
	}
	for _, f := range w.fleets {
		if err := encode(f.ID, f, &out.Fleets); err != nil {
			return Snapshot{}, err
		}
	}
	for _, df := range w.debris {
		if err := encode(df.ID, df, &out.Debris); err != nil {
			return Snapshot{}, err
		}
	}
	for _, s := range w.systems {
		if err := encode(s.ID, s, &out.Systems); err != nil {
			return Snapshot{}, err
		}
	}

	return out, nil
}
