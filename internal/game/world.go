package game

import (
	"fmt"
	"math/rand"
	"sort"
	"starhold_server/internal/model"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// worldConfiguration :
// Regroups the customizable properties of the universe.
//
// The `Galaxies` defines the number of galaxies.
// The default value is `5`.
//
// The `Systems` defines the number of systems per galaxy.
// The default value is `200`.
//
// The `Positions` defines the number of positions per
// system.
// The default value is `15`.
//
// The `WalletsPerIP` defines how many distinct wallets
// can register from a single address.
// The default value is `3`.
//
// The `SpyReportCap` defines the size of the per-agent
// spy report ring.
// The default value is `50`.
//
// The `DecisionCap` defines the size of the per-agent
// decision log ring.
// The default value is `50`.
type worldConfiguration struct {
	Galaxies     int
	Systems      int
	Positions    int
	WalletsPerIP int
	SpyReportCap int
	DecisionCap  int
}

// parseWorldConfiguration :
// Used to fetch the universe settings from the shared
// configuration, relying on defaults when nothing is
// provided.
//
// Returns the parsed configuration.
func parseWorldConfiguration() worldConfiguration {
	config := worldConfiguration{
		Galaxies:     5,
		Systems:      200,
		Positions:    15,
		WalletsPerIP: 3,
		SpyReportCap: 50,
		DecisionCap:  50,
	}

	if viper.IsSet("Universe.Galaxies") {
		config.Galaxies = viper.GetInt("Universe.Galaxies")
	}
	if viper.IsSet("Universe.Systems") {
		config.Systems = viper.GetInt("Universe.Systems")
	}
	if viper.IsSet("Universe.Positions") {
		config.Positions = viper.GetInt("Universe.Positions")
	}
	if viper.IsSet("Universe.WalletsPerIP") {
		config.WalletsPerIP = viper.GetInt("Universe.WalletsPerIP")
	}
	if viper.IsSet("Universe.SpyReportCap") {
		config.SpyReportCap = viper.GetInt("Universe.SpyReportCap")
	}
	if viper.IsSet("Universe.DecisionCap") {
		config.DecisionCap = viper.GetInt("Universe.DecisionCap")
	}

	if config.Galaxies <= 0 || config.Systems <= 0 || config.Positions <= 0 {
		panic(fmt.Errorf("invalid universe bounds fetched from configuration (%d/%d/%d)", config.Galaxies, config.Systems, config.Positions))
	}

	return config
}

// World :
// The in-memory authoritative state of the simulation:
// the registries of every entity along with the tick
// counter. All the invariants on entity shape and on
// cross-references live here. Mutations of a planet or
// of its owner's queues must happen under the planet's
// lock which is owned by the engine: the world itself
// only guards the registry maps so that entries can be
// added and removed while readers iterate.
//
// The `locker` protects the registry maps themselves.
//
// The `agents`, `planets`, `fleets`, `debris` and
// `systems` define the entity registries keyed by their
// identifier.
//
// The `tick` defines the monotonic tick counter.
//
// The `ipWallets` defines the wallets registered from
// each address, used to enforce the per-address cap.
//
// The `names` defines the star name generator sharing
// the universe-wide uniqueness set.
//
// The `config` defines the universe bounds and caps.
type World struct {
	locker sync.RWMutex

	agents  map[string]*Agent
	planets map[string]*Planet
	fleets  map[string]*Fleet
	debris  map[string]*DebrisField
	systems map[string]*StarSystem

	tick uint64

	ipWallets map[string]map[string]bool
	names     *nameForge

	config worldConfiguration
}

// NewWorld :
// Creates an empty universe with the bounds fetched from
// the configuration.
//
// The `rng` defines the source of randomness used by the
// star name generator and by the home world placement.
//
// Returns the created world.
func NewWorld(rng *rand.Rand) *World {
	config := parseWorldConfiguration()

	return &World{
		agents:  make(map[string]*Agent),
		planets: make(map[string]*Planet),
		fleets:  make(map[string]*Fleet),
		debris:  make(map[string]*DebrisField),
		systems: make(map[string]*StarSystem),

		ipWallets: make(map[string]map[string]bool),
		names:     newNameForge(rng, make(map[string]bool)),

		config: config,
	}
}

// Bounds :
// Returns the dimensions of the universe as the number
// of galaxies, systems per galaxy and positions per
// system.
func (w *World) Bounds() (int, int, int) {
	return w.config.Galaxies, w.config.Systems, w.config.Positions
}

// Tick :
// Returns the current value of the tick counter.
func (w *World) Tick() uint64 {
	w.locker.RLock()
	defer w.locker.RUnlock()

	return w.tick
}

// advanceTick :
// Increments the tick counter and returns its new value.
func (w *World) advanceTick() uint64 {
	w.locker.Lock()
	defer w.locker.Unlock()

	w.tick++

	return w.tick
}

// GetAgent :
// Fetches the agent with the input identifier.
//
// The `id` defines the identifier to search for.
//
// Returns the agent along with a status indicating
// whether it exists.
func (w *World) GetAgent(id string) (*Agent, bool) {
	w.locker.RLock()
	defer w.locker.RUnlock()

	a, ok := w.agents[id]

	return a, ok
}

// GetPlanet :
// Fetches the planet with the input identifier.
//
// The `id` defines the identifier to search for.
//
// Returns the planet along with a status indicating
// whether it exists.
func (w *World) GetPlanet(id string) (*Planet, bool) {
	w.locker.RLock()
	defer w.locker.RUnlock()

	p, ok := w.planets[id]

	return p, ok
}

// GetFleet :
// Fetches the fleet with the input identifier.
//
// The `id` defines the identifier to search for.
//
// Returns the fleet along with a status indicating
// whether it exists.
func (w *World) GetFleet(id string) (*Fleet, bool) {
	w.locker.RLock()
	defer w.locker.RUnlock()

	f, ok := w.fleets[id]

	return f, ok
}

// GetDebris :
// Fetches the debris field at the input coordinates.
//
// The `coords` define the position to search.
//
// Returns the field along with a status indicating
// whether one exists.
func (w *World) GetDebris(coords model.Coordinate) (*DebrisField, bool) {
	w.locker.RLock()
	defer w.locker.RUnlock()

	df, ok := w.debris[coords.Key()]

	return df, ok
}

// GetSystem :
// Fetches the naming entry of the input system.
//
// The `key` defines the system key (`galaxy:system`).
//
// Returns the entry along with a status indicating
// whether it exists.
func (w *World) GetSystem(key string) (*StarSystem, bool) {
	w.locker.RLock()
	defer w.locker.RUnlock()

	s, ok := w.systems[key]

	return s, ok
}

// ListFleetsByOwner :
// Returns the fleets owned by the input agent, ordered
// by arrival time.
//
// The `owner` defines the identifier of the agent.
func (w *World) ListFleetsByOwner(owner string) []*Fleet {
	w.locker.RLock()
	defer w.locker.RUnlock()

	out := make([]*Fleet, 0)

	for _, f := range w.fleets {
		if f.Owner == owner {
			out = append(out, f)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ArrivesAt.Before(out[j].ArrivesAt)
	})

	return out
}

// ListSystemPlanets :
// Returns the planets of the input system ordered by
// position.
//
// The `galaxy` and `system` define the system to list.
func (w *World) ListSystemPlanets(galaxy int, system int) []*Planet {
	w.locker.RLock()
	defer w.locker.RUnlock()

	out := make([]*Planet, 0)

	for _, p := range w.planets {
		if p.Coordinates.Galaxy == galaxy && p.Coordinates.System == system {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Coordinates.Position < out[j].Coordinates.Position
	})

	return out
}

// ListAgents :
// Returns every agent of the universe in no particular
// order.
func (w *World) ListAgents() []*Agent {
	w.locker.RLock()
	defer w.locker.RUnlock()

	out := make([]*Agent, 0, len(w.agents))

	for _, a := range w.agents {
		out = append(out, a)
	}

	return out
}

// ListPlanets :
// Returns every planet of the universe in no particular
// order.
func (w *World) ListPlanets() []*Planet {
	w.locker.RLock()
	defer w.locker.RUnlock()

	out := make([]*Planet, 0, len(w.planets))

	for _, p := range w.planets {
		out = append(out, p)
	}

	return out
}

// ListFleets :
// Returns every fleet of the universe in no particular
// order.
func (w *World) ListFleets() []*Fleet {
	w.locker.RLock()
	defer w.locker.RUnlock()

	out := make([]*Fleet, 0, len(w.fleets))

	for _, f := range w.fleets {
		out = append(out, f)
	}

	return out
}

// ListDebris :
// Returns every debris field of the universe in no
// particular order.
func (w *World) ListDebris() []*DebrisField {
	w.locker.RLock()
	defer w.locker.RUnlock()

	out := make([]*DebrisField, 0, len(w.debris))

	for _, df := range w.debris {
		out = append(out, df)
	}

	return out
}

// ListSystems :
// Returns every named system of the universe in no
// particular order.
func (w *World) ListSystems() []*StarSystem {
	w.locker.RLock()
	defer w.locker.RUnlock()

	out := make([]*StarSystem, 0, len(w.systems))

	for _, s := range w.systems {
		out = append(out, s)
	}

	return out
}

// addFleet :
// Registers the input fleet in the universe.
//
// The `f` defines the fleet to register.
func (w *World) addFleet(f *Fleet) {
	w.locker.Lock()
	defer w.locker.Unlock()

	w.fleets[f.ID] = f
}

// addPlanet :
// Registers the input planet in the universe.
//
// The `p` defines the planet to register.
func (w *World) addPlanet(p *Planet) {
	w.locker.Lock()
	defer w.locker.Unlock()

	w.planets[p.ID] = p
}

// removeFleet :
// Deletes the fleet with the input identifier from the
// universe.
//
// The `id` defines the identifier of the fleet.
func (w *World) removeFleet(id string) {
	w.locker.Lock()
	defer w.locker.Unlock()

	delete(w.fleets, id)
}

// upsertDebris :
// Registers or replaces the input debris field.
//
// The `df` defines the field to register.
func (w *World) upsertDebris(df *DebrisField) {
	w.locker.Lock()
	defer w.locker.Unlock()

	w.debris[df.ID] = df
}

// removeDebris :
// Deletes the debris field with the input identifier.
//
// The `id` defines the identifier of the field.
func (w *World) removeDebris(id string) {
	w.locker.Lock()
	defer w.locker.Unlock()

	delete(w.debris, id)
}

// RegisterAgent :
// Creates an agent for the input wallet along with its
// home world at a randomly chosen empty position. The
// registration is idempotent: calling it again with a
// known wallet returns the existing agent untouched. A
// single address can register a bounded number of
// distinct wallets.
//
// The `wallet` defines the wallet identifier.
//
// The `name` defines the display name.
//
// The `ip` defines the address of the caller.
//
// The `now` defines the registration time.
//
// The `rng` defines the source of randomness used to
// pick the home world position.
//
// Returns the agent along with any error.
func (w *World) RegisterAgent(wallet string, name string, ip string, now time.Time, rng *rand.Rand) (*Agent, error) {
	if err := model.CheckIdentifier(wallet); err != nil {
		return nil, newError(InvalidArgument, "invalid wallet identifier \"%s\"", wallet)
	}

	w.locker.Lock()
	defer w.locker.Unlock()

	if existing, ok := w.agents[wallet]; ok {
		return existing, nil
	}

	wallets := w.ipWallets[ip]
	if len(wallets) >= w.config.WalletsPerIP && !wallets[wallet] {
		return nil, newError(Forbidden, "too many wallets registered from this address").
			withDetail("max_wallets", w.config.WalletsPerIP)
	}

	coords, err := w.pickEmptyPosition(rng)
	if err != nil {
		return nil, err
	}

	agent := newAgent(wallet, name, ip, now)

	home := newPlanet(coords)
	home.colonize(wallet)
	home.Buildings[model.MetalMine] = 1
	home.Buildings[model.SolarPlant] = 1

	agent.Planets = append(agent.Planets, home.ID)

	w.agents[wallet] = agent
	w.planets[home.ID] = home

	if wallets == nil {
		wallets = make(map[string]bool)
		w.ipWallets[ip] = wallets
	}
	wallets[wallet] = true

	w.ensureSystemNamedLocked(coords.Galaxy, coords.System, now)

	return agent, nil
}

// pickEmptyPosition :
// Chooses an unowned position of the universe. Random
// draws are attempted first; when they keep landing on
// occupied positions the universe is scanned in order.
// Callers must hold the registry lock.
//
// The `rng` defines the source of randomness.
//
// Returns the coordinates along with any error.
func (w *World) pickEmptyPosition(rng *rand.Rand) (model.Coordinate, error) {
	for attempt := 0; attempt < 200; attempt++ {
		coords := model.NewCoordinate(
			1+rng.Intn(w.config.Galaxies),
			1+rng.Intn(w.config.Systems),
			1+rng.Intn(w.config.Positions),
		)

		if p, ok := w.planets[coords.Key()]; !ok || p.Owner == "" {
			return coords, nil
		}
	}

	for g := 1; g <= w.config.Galaxies; g++ {
		for s := 1; s <= w.config.Systems; s++ {
			for pos := 1; pos <= w.config.Positions; pos++ {
				coords := model.NewCoordinate(g, s, pos)

				if p, ok := w.planets[coords.Key()]; !ok || p.Owner == "" {
					return coords, nil
				}
			}
		}
	}

	return model.Coordinate{}, newError(Precondition, "the universe is full")
}

// EnsureSystemNamed :
// Guarantees that the input system has a name: either a
// pre-seeded one or a freshly generated one.
//
// The `galaxy` and `system` define the system.
//
// The `now` defines the naming time used when an entry
// is created.
//
// Returns the naming entry of the system.
func (w *World) EnsureSystemNamed(galaxy int, system int, now time.Time) *StarSystem {
	w.locker.Lock()
	defer w.locker.Unlock()

	return w.ensureSystemNamedLocked(galaxy, system, now)
}

// ensureSystemNamedLocked :
// Same as `EnsureSystemNamed` for callers that already
// hold the registry lock.
func (w *World) ensureSystemNamedLocked(galaxy int, system int, now time.Time) *StarSystem {
	key := fmt.Sprintf("%d:%d", galaxy, system)

	if existing, ok := w.systems[key]; ok {
		return existing
	}

	entry := &StarSystem{
		ID:      key,
		NamedAt: now,
	}

	if seeded, ok := seededSystemNames[key]; ok && w.names.reserve(seeded) {
		entry.Name = seeded
		entry.Provenance = NameSeeded
	} else {
		entry.Name = w.names.generate(key)
		entry.Provenance = NameGenerated
	}

	w.systems[key] = entry

	return entry
}

// NameSystem :
// Renames a system on behalf of an agent. The new name
// must be unique among all the names ever issued in the
// universe; previous names of the system stay reserved.
//
// The `galaxy` and `system` define the system.
//
// The `name` defines the new name.
//
// The `agent` defines the naming agent.
//
// The `now` defines the naming time.
//
// Returns any error.
func (w *World) NameSystem(galaxy int, system int, name string, agent string, now time.Time) error {
	w.locker.Lock()
	defer w.locker.Unlock()

	if !w.names.reserve(name) {
		return newError(Conflict, "name \"%s\" is already taken", name)
	}

	entry := w.ensureSystemNamedLocked(galaxy, system, now)

	entry.Name = name
	entry.Provenance = NameByAgent
	entry.NamedBy = agent
	entry.NamedAt = now

	return nil
}

// Restore :
// Replaces the content of the registries with the input
// entities. Used by the store when loading a snapshot at
// boot. The star name uniqueness set and the per-address
// wallet table are rebuilt from the loaded entities.
//
// The `agents`, `planets`, `fleets`, `debris` and
// `systems` define the entities to install.
//
// The `tick` defines the restored tick counter.
func (w *World) Restore(agents []*Agent, planets []*Planet, fleets []*Fleet, debris []*DebrisField, systems []*StarSystem, tick uint64) {
	w.locker.Lock()
	defer w.locker.Unlock()

	w.agents = make(map[string]*Agent)
	w.planets = make(map[string]*Planet)
	w.fleets = make(map[string]*Fleet)
	w.debris = make(map[string]*DebrisField)
	w.systems = make(map[string]*StarSystem)
	w.ipWallets = make(map[string]map[string]bool)

	for _, a := range agents {
		w.agents[a.ID] = a

		if a.IP != "" {
			if w.ipWallets[a.IP] == nil {
				w.ipWallets[a.IP] = make(map[string]bool)
			}
			w.ipWallets[a.IP][a.ID] = true
		}
	}

	for _, p := range planets {
		w.planets[p.ID] = p
	}
	for _, f := range fleets {
		w.fleets[f.ID] = f
	}
	for _, df := range debris {
		w.debris[df.ID] = df
	}
	for _, s := range systems {
		w.systems[s.ID] = s
		w.names.reserve(s.Name)
	}

	w.tick = tick
}
