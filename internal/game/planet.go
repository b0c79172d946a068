package game

import (
	"starhold_server/internal/model"
	"time"
)

// BuildJob :
// Describes a pending or running construction on a
// planet. Jobs are strict FIFO: only the head of the
// queue makes progress.
//
// The `Building` defines the building being upgraded.
//
// The `TargetLevel` defines the level reached when the
// job completes.
//
// The `Cost` defines the resources deducted when the
// job was queued. Used for the cancellation refund and
// for the score awarded on completion.
//
// The `StartedAt` defines when the job started.
//
// The `CompletesAt` defines when the job finishes.
type BuildJob struct {
	Building    string          `json:"building"`
	TargetLevel int             `json:"target_level"`
	Cost        model.Resources `json:"cost"`
	StartedAt   time.Time       `json:"started_at"`
	CompletesAt time.Time       `json:"completes_at"`
}

// ShipyardJob :
// Describes the units currently produced by the shipyard
// of a planet. At most one job can run at a time.
//
// The `Item` defines the ship or defense produced.
//
// The `IsDefense` indicates whether the item refers to
// the defenses table rather than the ships one.
//
// The `Count` defines how many units are produced.
//
// The `Cost` defines the resources deducted when the
// job was queued.
//
// The `StartedAt` defines when the job started.
//
// The `CompletesAt` defines when all the units are
// delivered.
type ShipyardJob struct {
	Item        string          `json:"item"`
	IsDefense   bool            `json:"is_defense"`
	Count       int             `json:"count"`
	Cost        model.Resources `json:"cost"`
	StartedAt   time.Time       `json:"started_at"`
	CompletesAt time.Time       `json:"completes_at"`
}

// Planet :
// Describes a position of the universe that can be owned
// by an agent. Planets are never destroyed: a conquered
// planet changes owner, a colonized one gains an owner.
//
// The `ID` defines the identifier of the planet, built
// from its coordinates as `galaxy:system:position`.
//
// The `Owner` defines the identifier of the owning agent
// or an empty string for an uncolonized position.
//
// The `Coordinates` define the position of the planet.
//
// The `Name` defines the optional display name.
//
// The `MinTemperature` and `MaxTemperature` define the
// temperature range. The maximum drives the deuterium
// synthesis rate.
//
// The `Resources` define the stored resources.
//
// The `Buildings` define the level of each building.
//
// The `Ships` define the docked ships by type.
//
// The `Defenses` define the defense systems by type.
//
// The `BuildQueue` defines the pending constructions in
// FIFO order.
//
// The `ShipyardQueue` defines the pending shipyard jobs.
// At most one entry.
type Planet struct {
	ID          string           `json:"id"`
	Owner       string           `json:"owner,omitempty"`
	Coordinates model.Coordinate `json:"coordinates"`
	Name        string           `json:"name,omitempty"`

	MinTemperature float64 `json:"min_temperature"`
	MaxTemperature float64 `json:"max_temperature"`

	Resources model.Resources `json:"resources"`

	Buildings map[string]int `json:"buildings"`
	Ships     map[string]int `json:"ships"`
	Defenses  map[string]int `json:"defenses"`

	BuildQueue    []BuildJob    `json:"build_queue"`
	ShipyardQueue []ShipyardJob `json:"shipyard_queue"`
}

// newPlanet :
// Creates an uncolonized planet at the input coordinates.
// The temperature is derived from the position: planets
// closer to their star are hotter.
//
// The `coords` define the position of the planet.
//
// Returns the created planet.
func newPlanet(coords model.Coordinate) *Planet {
	// Temperature ranges linearly from 140 at position 1
	// down to -130 at position 15, with a 40 degrees span
	// between the minimum and the maximum.
	max := 150.0 - 19.0*float64(coords.Position)

	return &Planet{
		ID:          coords.Key(),
		Coordinates: coords,

		MinTemperature: max - 40.0,
		MaxTemperature: max,

		Buildings: make(map[string]int),
		Ships:     make(map[string]int),
		Defenses:  make(map[string]int),

		BuildQueue:    make([]BuildJob, 0),
		ShipyardQueue: make([]ShipyardJob, 0),
	}
}

// colonize :
// Turns this planet into a colony of the input agent:
// starter resources, empty infrastructure and queues.
// Any resources previously stored on the uncolonized
// position are replaced.
//
// The `owner` defines the identifier of the new owner.
func (p *Planet) colonize(owner string) {
	p.Owner = owner
	p.Resources = starterResources()

	p.Buildings = make(map[string]int)
	p.Ships = make(map[string]int)
	p.Defenses = make(map[string]int)

	p.BuildQueue = make([]BuildJob, 0)
	p.ShipyardQueue = make([]ShipyardJob, 0)
}

// starterResources :
// Returns the resources granted to a fresh home world or
// colony.
func starterResources() model.Resources {
	return model.NewResources(500, 300, 100)
}

// StorageCaps :
// Computes the storage capacity of each resource given
// the storage buildings of the planet.
//
// The `cat` defines the catalog holding the capacity
// formula.
//
// Returns the capacity for metal, crystal and deuterium.
func (p *Planet) StorageCaps(cat *model.Catalog) model.Resources {
	return model.NewResources(
		cat.StorageCapacity(p.Buildings[model.MetalStorage]),
		cat.StorageCapacity(p.Buildings[model.CrystalStorage]),
		cat.StorageCapacity(p.Buildings[model.DeuteriumTank]),
	)
}

// addShips :
// Merges the input composition into the docked ships of
// the planet.
//
// The `ships` define the composition to merge.
func (p *Planet) addShips(ships map[string]int) {
	for id, count := range ships {
		if count > 0 {
			p.Ships[id] += count
		}
	}
}

// removeShips :
// Removes the input composition from the docked ships,
// deleting the entries that reach zero.
//
// The `ships` define the composition to remove. Callers
// must have verified availability beforehand.
func (p *Planet) removeShips(ships map[string]int) {
	for id, count := range ships {
		p.Ships[id] -= count

		if p.Ships[id] <= 0 {
			delete(p.Ships, id)
		}
	}
}
