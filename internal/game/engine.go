package game

import (
	"fmt"
	"math/rand"
	"starhold_server/internal/locker"
	"starhold_server/internal/model"
	"starhold_server/pkg/background"
	"starhold_server/pkg/logger"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// getModuleName :
// Returns the name of the module to use in the logs.
func getModuleName() string {
	return "engine"
}

// engineConfiguration :
// Regroups the customizable pacing and protection knobs
// of the engine.
//
// The `TickPeriod` defines the wall clock duration of a
// tick.
// The default value is `1s`.
//
// The `SaveDebounce` defines the interval at which the
// persistence writer checks for pending work.
// The default value is `100ms`.
//
// The `SaveInterval` defines how many ticks elapse
// between two scheduled persistence flushes.
// The default value is `10`.
//
// The `ScoreInterval` defines how many ticks elapse
// between two score snapshots.
// The default value is `100`.
//
// The `NewbieScore` defines the score under which an
// agent cannot be attacked.
// The default value is `1000`.
//
// The `NewbieAge` defines the account age under which an
// agent cannot be attacked.
// The default value is `48h`.
//
// The `NewbieRatio` defines the maximum score ratio of
// an attacker over its target.
// The default value is `10`.
//
// The `Seed` defines the seed of the internal sources of
// randomness. A value of `0` seeds from the clock.
type engineConfiguration struct {
	TickPeriod   time.Duration
	SaveDebounce time.Duration

	SaveInterval  uint64
	ScoreInterval uint64

	NewbieScore float64
	NewbieAge   time.Duration
	NewbieRatio float64

	Seed int64
}

// parseEngineConfiguration :
// Used to fetch the engine settings from the shared
// configuration, relying on defaults when nothing is
// provided.
//
// Returns the parsed configuration.
func parseEngineConfiguration() engineConfiguration {
	config := engineConfiguration{
		TickPeriod:   1 * time.Second,
		SaveDebounce: 100 * time.Millisecond,

		SaveInterval:  10,
		ScoreInterval: 100,

		NewbieScore: 1000,
		NewbieAge:   48 * time.Hour,
		NewbieRatio: 10,
	}

	if viper.IsSet("Engine.TickPeriod") {
		config.TickPeriod = viper.GetDuration("Engine.TickPeriod")
	}
	if viper.IsSet("Engine.SaveDebounce") {
		config.SaveDebounce = viper.GetDuration("Engine.SaveDebounce")
	}
	if viper.IsSet("Engine.SaveInterval") {
		config.SaveInterval = uint64(viper.GetInt("Engine.SaveInterval"))
	}
	if viper.IsSet("Engine.ScoreInterval") {
		config.ScoreInterval = uint64(viper.GetInt("Engine.ScoreInterval"))
	}
	if viper.IsSet("Engine.NewbieScore") {
		config.NewbieScore = viper.GetFloat64("Engine.NewbieScore")
	}
	if viper.IsSet("Engine.NewbieAge") {
		config.NewbieAge = viper.GetDuration("Engine.NewbieAge")
	}
	if viper.IsSet("Engine.NewbieRatio") {
		config.NewbieRatio = viper.GetFloat64("Engine.NewbieRatio")
	}
	if viper.IsSet("Engine.Seed") {
		config.Seed = viper.GetInt64("Engine.Seed")
	}

	if config.TickPeriod <= 0 || config.SaveInterval == 0 || config.ScoreInterval == 0 {
		panic(fmt.Errorf("invalid engine configuration fetched from environment"))
	}

	return config
}

// Engine :
// The heart of the simulation: owns the tick loop, the
// command handlers and the persistence scheduling. Every
// mutation of the universe flows through the engine so
// that the invariants of the world hold under concurrent
// commands and restarts.
//
// The `world` defines the authoritative state.
//
// The `cat` defines the immutable content catalog.
//
// The `locks` define the per-planet mutual exclusion
// shared by the tick loop and the command handlers.
//
// The `store` defines the persistence layer.
//
// The `bus` defines the sink receiving the events of the
// simulation.
//
// The `log` allows to notify errors and information.
//
// The `config` defines the pacing and protection knobs.
//
// The `rngLock` protects the sources of randomness: the
// tick loop and the handlers can roll dice concurrently.
//
// The `rng` defines the seedable source of randomness
// used by combat, espionage and placement so that runs
// can be replayed from a fixed seed.
//
// The `dirty` defines the pending-save signal consumed
// by the single persistence writer.
//
// The `tickProcess` and `saveProcess` define the
// background processes driving the simulation.
type Engine struct {
	world *World
	cat   *model.Catalog
	locks *locker.PlanetLocker
	store Store
	bus   *EventBus
	log   logger.Logger

	config engineConfiguration

	rngLock sync.Mutex
	rng     *rand.Rand

	dirty chan struct{}

	tickProcess *background.Process
	saveProcess *background.Process
}

// NewEngine :
// Creates an engine operating on the input world with
// the configuration fetched from the environment.
//
// The `world` defines the state to operate on.
//
// The `cat` defines the content catalog.
//
// The `locks` define the planet locker.
//
// The `store` defines the persistence layer.
//
// The `bus` defines the event sink.
//
// The `log` defines the logging mean.
//
// Returns the created engine.
func NewEngine(world *World, cat *model.Catalog, locks *locker.PlanetLocker, store Store, bus *EventBus, log logger.Logger) *Engine {
	config := parseEngineConfiguration()

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		world: world,
		cat:   cat,
		locks: locks,
		store: store,
		bus:   bus,
		log:   log,

		config: config,

		rng: rand.New(rand.NewSource(seed)),

		dirty: make(chan struct{}, 1),
	}
}

// World :
// Returns the world operated by the engine. Queries go
// through it directly: reads are lock-free.
func (e *Engine) World() *World {
	return e.world
}

// Catalog :
// Returns the content catalog of the engine.
func (e *Engine) Catalog() *model.Catalog {
	return e.cat
}

// Bus :
// Returns the event bus of the engine so that adapters
// can subscribe to the simulation events.
func (e *Engine) Bus() *EventBus {
	return e.bus
}

// Start :
// Launches the tick loop and the persistence writer.
//
// Returns any error.
func (e *Engine) Start() error {
	e.tickProcess = background.NewProcess(e.config.TickPeriod, e.log).
		WithModule("tick").
		WithOperation(func() (bool, error) {
			e.Tick(time.Now())
			return true, nil
		})

	e.saveProcess = background.NewProcess(e.config.SaveDebounce, e.log).
		WithModule("save").
		WithOperation(func() (bool, error) {
			return true, e.flushIfDirty()
		})

	if err := e.tickProcess.Start(); err != nil {
		return err
	}

	return e.saveProcess.Start()
}

// Stop :
// Terminates the background processes and performs a
// final save so that no progress is lost on a graceful
// shutdown.
func (e *Engine) Stop() {
	if e.tickProcess != nil {
		e.tickProcess.Stop()
	}
	if e.saveProcess != nil {
		e.saveProcess.Stop()
	}

	snap, err := e.Snapshot()
	if err == nil {
		err = e.store.Save(snap)
	}
	if err != nil {
		e.log.Trace(logger.Error, getModuleName(), fmt.Sprintf("Failed to save world on shutdown (err: %v)", err))
	}
}

// markDirty :
// Signals the persistence writer that the world changed.
// Never blocks: a signal already pending covers this
// change as well.
func (e *Engine) markDirty() {
	select {
	case e.dirty <- struct{}{}:
	default:
	}
}

// flushIfDirty :
// Persists the world when a change was signalled since
// the last flush. A failure keeps the signal raised so
// that the next window retries.
//
// Returns any error.
func (e *Engine) flushIfDirty() error {
	select {
	case <-e.dirty:
	default:
		return nil
	}

	snap, err := e.Snapshot()
	if err != nil {
		e.markDirty()
		return err
	}

	if err := e.store.Save(snap); err != nil {
		e.markDirty()
		return err
	}

	return nil
}

// random :
// Runs the input function with the engine's source of
// randomness under the protection of its lock.
//
// The `fn` defines the dice rolls to perform.
func (e *Engine) random(fn func(rng *rand.Rand)) {
	e.rngLock.Lock()
	defer e.rngLock.Unlock()

	fn(e.rng)
}

// withPlanetLock :
// Runs the input function while holding the lock of the
// input planet. The lock is released on every path. A
// failed acquisition is reported as a conflict.
//
// The `planet` defines the identifier of the planet.
//
// The `fn` defines the critical section.
//
// Returns any error.
func (e *Engine) withPlanetLock(planet string, fn func() error) error {
	if err := e.locks.Acquire(planet); err != nil {
		return newError(Conflict, "planet \"%s\" is busy", planet)
	}
	defer e.locks.Release(planet)

	return fn()
}

// withPlanetLocks :
// Runs the input function while holding the locks of the
// input planets, acquired in canonical order.
//
// The `planets` define the identifiers of the planets.
//
// The `fn` defines the critical section.
//
// Returns any error.
func (e *Engine) withPlanetLocks(planets []string, fn func() error) error {
	if err := e.locks.AcquireAll(planets); err != nil {
		return newError(Conflict, "planets are busy")
	}
	defer e.locks.ReleaseAll(planets)

	return fn()
}

// withAgentLock :
// Runs the input function while holding the lock of the
// home world of the agent. Agent level state is mutated
// under this lock so that a snapshot, which holds every
// planet lock, never catches it mid-change.
//
// The `a` defines the agent.
//
// The `fn` defines the critical section.
//
// Returns any error.
func (e *Engine) withAgentLock(a *Agent, fn func() error) error {
	if len(a.Planets) == 0 {
		return fn()
	}

	return e.withPlanetLock(a.Planets[0], fn)
}

// Tick :
// Advances the simulation by one step at the input time:
// production and queue completions on every planet, the
// arrivals of the fleets that reached their destination,
// the research completions of every agent, and the
// scheduled persistence and score snapshot work. Each
// unit of work runs under the locks it needs and its
// failures are logged without aborting the pass.
//
// The `now` defines the time of the tick. The loop feeds
// the wall clock; tests can feed an artificial one.
func (e *Engine) Tick(now time.Time) {
	tick := e.world.advanceTick()

	for _, p := range e.world.ListPlanets() {
		planet := p

		err := e.withPlanetLock(planet.ID, func() error {
			e.stepPlanet(planet, now)
			return nil
		})

		if err != nil {
			e.log.Trace(logger.Error, getModuleName(), fmt.Sprintf("Failed to step planet \"%s\" (err: %v)", planet.ID, err))
		}
	}

	for _, f := range e.world.ListFleets() {
		if f.ArrivesAt.After(now) {
			continue
		}

		if err := e.handleFleetArrival(f, now); err != nil {
			e.log.Trace(logger.Error, getModuleName(), fmt.Sprintf("Failed to process arrival of fleet \"%s\" (err: %v)", f.ID, err))
		}
	}

	for _, a := range e.world.ListAgents() {
		agent := a

		if len(agent.ResearchQueue) == 0 {
			continue
		}

		job := agent.ResearchQueue[0]
		if job.CompletesAt.After(now) {
			continue
		}

		err := e.withPlanetLock(job.Planet, func() error {
			e.completeResearch(agent, now)
			return nil
		})

		if err != nil {
			e.log.Trace(logger.Error, getModuleName(), fmt.Sprintf("Failed to complete research for \"%s\" (err: %v)", agent.ID, err))
		}
	}

	if tick%e.config.SaveInterval == 0 {
		e.markDirty()
	}

	if tick%e.config.ScoreInterval == 0 {
		e.snapshotScores(now)
	}

	e.bus.emit(EventTick, now, map[string]interface{}{
		"tick": tick,
	})
}

// stepPlanet :
// Advances a single planet: production first, then the
// completion of the build and shipyard queue heads. The
// caller holds the planet's lock.
//
// The `p` defines the planet to advance.
//
// The `now` defines the time of the tick.
func (e *Engine) stepPlanet(p *Planet, now time.Time) {
	e.applyProduction(p, now)

	if len(p.BuildQueue) > 0 && !p.BuildQueue[0].CompletesAt.After(now) {
		job := p.BuildQueue[0]
		p.BuildQueue = p.BuildQueue[1:]

		p.Buildings[job.Building] = job.TargetLevel

		if owner, ok := e.world.GetAgent(p.Owner); ok {
			owner.Score = model.SafeAdd(owner.Score, job.Cost.Total())
		}

		e.bus.emit(EventBuildComplete, now, map[string]interface{}{
			"planet":   p.ID,
			"building": job.Building,
			"level":    job.TargetLevel,
		})

		e.markDirty()
	}

	if len(p.ShipyardQueue) > 0 && !p.ShipyardQueue[0].CompletesAt.After(now) {
		job := p.ShipyardQueue[0]
		p.ShipyardQueue = p.ShipyardQueue[1:]

		kind := EventShipComplete
		if job.IsDefense {
			p.Defenses[job.Item] += job.Count
			kind = EventDefenseComplete
		} else {
			p.Ships[job.Item] += job.Count
		}

		// Military units count towards no score: only the
		// buildings and the researches do.

		e.bus.emit(kind, now, map[string]interface{}{
			"planet": p.ID,
			"item":   job.Item,
			"count":  job.Count,
		})

		e.markDirty()
	}
}

// applyProduction :
// Adds one tick worth of production to the resources of
// the planet. A resource already at or above its storage
// cap receives nothing; an addition that would cross the
// cap is clamped at it. The fusion reactor's deuterium
// consumption is debited even when the synthesizer is
// capped. The caller holds the planet's lock.
//
// The `p` defines the planet to update.
//
// The `now` defines the time of the tick, used to check
// the officer and booster activity of the owner.
func (e *Engine) applyProduction(p *Planet, now time.Time) {
	if p.Owner == "" {
		return
	}

	owner, ok := e.world.GetAgent(p.Owner)
	if !ok {
		return
	}

	officers := owner.ActiveOfficers(now)
	boosters := owner.ActiveBoosters(now)

	out := e.cat.Production(model.ProductionInput{
		Buildings:      p.Buildings,
		MaxTemperature: p.MaxTemperature,
		EnergyTech:     owner.Technologies[model.EnergyTech],
		Multipliers: map[string]float64{
			model.BoostMetal:     e.cat.ProductionMultiplier(model.BoostMetal, officers, boosters),
			model.BoostCrystal:   e.cat.ProductionMultiplier(model.BoostCrystal, officers, boosters),
			model.BoostDeuterium: e.cat.ProductionMultiplier(model.BoostDeuterium, officers, boosters),
		},
	})

	seconds := e.config.TickPeriod.Seconds()
	caps := p.StorageCaps(e.cat)

	p.Resources.Metal = addBelowCap(p.Resources.Metal, out.PerSecond.Metal*seconds, caps.Metal)
	p.Resources.Crystal = addBelowCap(p.Resources.Crystal, out.PerSecond.Crystal*seconds, caps.Crystal)

	deut := out.PerSecond.Deuterium * seconds
	if deut >= 0 {
		p.Resources.Deuterium = addBelowCap(p.Resources.Deuterium, deut, caps.Deuterium)
	} else {
		p.Resources.Deuterium = model.SafeSub(p.Resources.Deuterium, -deut)
	}
}

// addBelowCap :
// Adds the input amount to the current value while the
// value sits strictly below the cap, clamping the result
// at the cap. A value already at or above the cap is
// returned unchanged: overflow obtained through loot or
// purchases is kept but stops further production.
//
// The `current` defines the stored amount.
//
// The `amount` defines the production to add.
//
// The `cap` defines the storage capacity.
//
// Returns the updated amount.
func addBelowCap(current float64, amount float64, cap float64) float64 {
	if current >= cap {
		return current
	}

	next := model.SafeAdd(current, amount)
	if next > cap {
		return cap
	}

	return next
}

// completeResearch :
// Pops the research queue head of the agent and applies
// the technology level. The caller holds the lock of the
// planet that paid for the research.
//
// The `a` defines the agent to update.
//
// The `now` defines the time of the tick.
func (e *Engine) completeResearch(a *Agent, now time.Time) {
	if len(a.ResearchQueue) == 0 {
		return
	}

	job := a.ResearchQueue[0]
	if job.CompletesAt.After(now) {
		return
	}

	a.ResearchQueue = a.ResearchQueue[1:]
	a.Technologies[job.Technology] = job.TargetLevel
	a.Score = model.SafeAdd(a.Score, job.Cost.Total())

	e.bus.emit(EventResearchComplete, now, map[string]interface{}{
		"agent":      a.ID,
		"technology": job.Technology,
		"level":      job.TargetLevel,
	})

	e.markDirty()
}

// snapshotScores :
// Appends a score snapshot for every agent of the
// universe.
//
// The `now` defines the snapshot time.
func (e *Engine) snapshotScores(now time.Time) {
	for _, a := range e.world.ListAgents() {
		snapshot := ScoreSnapshot{
			At:      now,
			Agent:   a.ID,
			Score:   a.Score,
			Planets: len(a.Planets),
		}

		if err := e.store.AppendScoreSnapshot(snapshot); err != nil {
			e.log.Trace(logger.Error, getModuleName(), fmt.Sprintf("Failed to snapshot score for \"%s\" (err: %v)", a.ID, err))
		}
	}
}

// recordOutcome :
// Appends an entry to the decision log of the agent.
//
// The `agent` defines the identifier of the agent.
//
// The `command` defines the command verb.
//
// The `err` defines the failure, or `nil` on success.
//
// The `now` defines the time of the decision.
func (e *Engine) recordOutcome(agent string, command string, err error, now time.Time) {
	a, ok := e.world.GetAgent(agent)
	if !ok {
		return
	}

	entry := DecisionEntry{
		At:      now,
		Command: command,
		Status:  "success",
	}

	if err != nil {
		entry.Status = string(KindOf(err))
		entry.Message = err.Error()
	}

	errLock := e.withAgentLock(a, func() error {
		a.recordDecision(entry, e.world.config.DecisionCap)
		return nil
	})

	if errLock != nil {
		e.log.Trace(logger.Error, getModuleName(), fmt.Sprintf("Failed to record outcome for \"%s\" (err: %v)", agent, errLock))
	}
}
