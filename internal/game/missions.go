package game

import (
	"fmt"
	"math"
	"math/rand"
	"starhold_server/internal/model"
	"starhold_server/pkg/logger"
	"time"

	"github.com/google/uuid"
)

// Fraction of the metal and crystal value of destroyed
// ships dispersed into a debris field.
const debrisRatio = 0.30

// Chance for a destroyed defense unit to be rebuilt from
// its wreckage after a fight.
const defenseRebuildChance = 0.70

// Fraction of the defender's resources that an attacker
// can plunder at most.
const lootRatio = 0.50

// handleFleetArrival :
// Dispatches a fleet that reached the end of its current
// leg to the handler of its mission, or to the return
// handler when the fleet is on its way home. Runs under
// the locks of the affected planets.
//
// The `f` defines the fleet to process.
//
// The `now` defines the time of the tick.
//
// Returns any error.
func (e *Engine) handleFleetArrival(f *Fleet, now time.Time) error {
	if f.Returning {
		return e.withPlanetLock(f.Origin, func() error {
			e.completeReturn(f, now)
			return nil
		})
	}

	// A fleet recalled past the midpoint of its trip turns
	// around at its destination instead of acting there.
	if f.RecalledAt != nil {
		e.sendHome(f, now)
		return nil
	}

	switch f.Mission {
	case MissionTransport:
		return e.withPlanetLock(f.Destination, func() error {
			e.arriveTransport(f, now)
			return nil
		})
	case MissionDeploy:
		return e.withPlanetLock(f.Destination, func() error {
			e.arriveDeploy(f, now)
			return nil
		})
	case MissionAttack:
		return e.withPlanetLock(f.Destination, func() error {
			e.arriveAttack(f, now)
			return nil
		})
	case MissionRecycle:
		return e.withPlanetLock(f.Destination, func() error {
			e.arriveRecycle(f, now)
			return nil
		})
	case MissionEspionage:
		return e.withPlanetLock(f.Destination, func() error {
			e.arriveEspionage(f, now)
			return nil
		})
	case MissionColonize:
		return e.withPlanetLock(f.Destination, func() error {
			e.arriveColonize(f, now)
			return nil
		})
	}

	return newError(Internal, "fleet \"%s\" carries unknown mission \"%s\"", f.ID, f.Mission)
}

// returnTravel :
// Computes the duration of the trip back to the origin
// of the fleet.
//
// The `f` defines the fleet.
//
// Returns the duration of the return leg.
func (e *Engine) returnTravel(f *Fleet) time.Duration {
	from, errFrom := model.ParseCoordinate(f.Destination)
	to, errTo := model.ParseCoordinate(f.Origin)

	if errFrom != nil || errTo != nil {
		return 10 * time.Second
	}

	return e.cat.TravelTime(e.cat.Distance(from, to))
}

// sendHome :
// Flips the fleet to its return leg and notifies the
// observers.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) sendHome(f *Fleet, now time.Time) {
	f.flipToReturn(now, e.returnTravel(f))

	e.bus.emit(EventFleetReturning, now, map[string]interface{}{
		"fleet":  f.ID,
		"origin": f.Origin,
	})
}

// completeReturn :
// Lands a returning fleet on its origin: the ships are
// merged back, the cargo is unloaded and the fleet is
// deleted. The caller holds the origin's lock.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) completeReturn(f *Fleet, now time.Time) {
	origin, ok := e.world.GetPlanet(f.Origin)
	if ok {
		origin.addShips(f.Ships)
		origin.Resources = origin.Resources.Add(f.Cargo)
	}

	e.world.removeFleet(f.ID)

	e.appendFleetReport(f, FleetReturned, now)

	e.bus.emit(EventFleetReturned, now, map[string]interface{}{
		"fleet":  f.ID,
		"origin": f.Origin,
	})

	e.markDirty()
}

// arriveTransport :
// Unloads the cargo of a transport on its destination
// and sends the fleet home. The caller holds the lock
// of the destination.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) arriveTransport(f *Fleet, now time.Time) {
	dest, ok := e.world.GetPlanet(f.Destination)
	if ok {
		dest.Resources = dest.Resources.Add(f.Cargo)
	}

	f.Cargo = model.Resources{}

	e.appendFleetReport(f, FleetArrived, now)

	e.bus.emit(EventFleetArrived, now, map[string]interface{}{
		"fleet":       f.ID,
		"destination": f.Destination,
	})

	e.sendHome(f, now)
	e.markDirty()
}

// arriveDeploy :
// Merges a deploying fleet into its destination when it
// is still owned by the sender, and sends it home
// otherwise. The caller holds the destination's lock.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) arriveDeploy(f *Fleet, now time.Time) {
	dest, ok := e.world.GetPlanet(f.Destination)
	if !ok || dest.Owner != f.Owner {
		e.sendHome(f, now)
		return
	}

	dest.addShips(f.Ships)
	dest.Resources = dest.Resources.Add(f.Cargo)

	e.world.removeFleet(f.ID)

	e.appendFleetReport(f, FleetDeployed, now)

	e.bus.emit(EventFleetDeployed, now, map[string]interface{}{
		"fleet":       f.ID,
		"destination": f.Destination,
	})

	e.markDirty()
}

// arriveAttack :
// Resolves a fight between the fleet and its destination
// and applies the outcome: losses on both sides, loot,
// debris and defense rebuilding. The caller holds the
// destination's lock.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) arriveAttack(f *Fleet, now time.Time) {
	dest, ok := e.world.GetPlanet(f.Destination)
	if !ok || dest.Owner == "" {
		e.sendHome(f, now)
		return
	}

	attacker, okA := e.world.GetAgent(f.Owner)
	defender, okD := e.world.GetAgent(dest.Owner)
	if !okA || !okD {
		e.sendHome(f, now)
		return
	}

	var result CombatResult
	rebuilt := make(map[string]int)

	e.random(func(rng *rand.Rand) {
		result = resolveCombat(
			e.cat,
			CombatSide{Ships: f.Ships, Technologies: attacker.Technologies},
			CombatSide{Ships: dest.Ships, Defenses: dest.Defenses, Technologies: defender.Technologies},
			rng,
		)

		for kind, count := range result.DefenderDefenseLosses {
			for i := 0; i < count; i++ {
				if rng.Float64() < defenseRebuildChance {
					rebuilt[kind]++
				}
			}
		}
	})

	// Apply the defender's losses, keeping the rebuilt
	// defense units.
	dest.Ships = copyCounts(result.DefenderShipSurvivors)
	dest.Defenses = copyCounts(result.DefenderDefenseSurvivors)
	for kind, count := range rebuilt {
		dest.Defenses[kind] += count
	}

	// Disperse part of the destroyed ships of both sides
	// into a debris field. Defenses leave no debris.
	debris := e.shipDebris(result.AttackerLosses).Add(e.shipDebris(result.DefenderShipLosses))
	if debris.Metal > 0 || debris.Crystal > 0 {
		e.augmentDebris(dest.Coordinates, debris, now)
	}

	loot := model.Resources{}

	switch result.Outcome {
	case BattleWon:
		loot = e.plunder(dest, result.AttackerSurvivors, f.Cargo)
		dest.Resources = dest.Resources.Sub(loot)

		f.Ships = copyCounts(result.AttackerSurvivors)
		f.Cargo = f.Cargo.Add(loot)
		e.sendHome(f, now)
	case BattleLost:
		e.world.removeFleet(f.ID)
	default:
		// A drawn attack flies home empty handed: the cargo
		// loaded at dispatch is considered lost in the fight.
		f.Ships = copyCounts(result.AttackerSurvivors)
		f.Cargo = model.Resources{}
		e.sendHome(f, now)
	}

	report := BattleReport{
		ID:       uuid.New().String(),
		At:       now,
		Attacker: attacker.ID,
		Defender: defender.ID,
		Planet:   dest.ID,

		Rounds:  result.Rounds,
		Outcome: result.Outcome,

		AttackerLosses:    result.AttackerLosses,
		DefenderLosses:    mergeCounts(result.DefenderShipLosses, result.DefenderDefenseLosses),
		AttackerSurvivors: result.AttackerSurvivors,
		RebuiltDefenses:   rebuilt,

		Loot:   loot,
		Debris: debris,
	}

	if err := e.store.AppendBattleReport(report); err != nil {
		e.log.Trace(logger.Error, getModuleName(), "Failed to persist battle report (err: "+err.Error()+")")
	}

	e.bus.emit(EventBattleReport, now, map[string]interface{}{
		"report":   report.ID,
		"attacker": report.Attacker,
		"defender": report.Defender,
		"planet":   report.Planet,
		"outcome":  report.Outcome,
	})

	e.notify(
		defender.ID,
		fmt.Sprintf("Battle at %s", dest.ID),
		fmt.Sprintf("Your planet \"%s\" was attacked by \"%s\": %s after %d round(s).", dest.Name, attacker.Name, result.Outcome, result.Rounds),
		now,
	)

	e.markDirty()
}

// shipDebris :
// Computes the resources dispersed into a debris field
// by the input ship losses.
//
// The `losses` define the destroyed ships by type.
//
// Returns the dispersed metal and crystal.
func (e *Engine) shipDebris(losses map[string]int) model.Resources {
	out := model.Resources{}

	for kind, count := range losses {
		desc, ok := e.cat.Ships.Get(kind)
		if !ok {
			continue
		}

		out.Metal += debrisRatio * desc.Cost.Metal * float64(count)
		out.Crystal += debrisRatio * desc.Cost.Crystal * float64(count)
	}

	return out
}

// augmentDebris :
// Creates or augments the debris field at the input
// coordinates.
//
// The `coords` define the position of the field.
//
// The `amount` defines the dispersed resources.
//
// The `now` defines the time of the tick.
func (e *Engine) augmentDebris(coords model.Coordinate, amount model.Resources, now time.Time) {
	df, ok := e.world.GetDebris(coords)
	if !ok {
		df = &DebrisField{
			ID:          coords.Key(),
			Coordinates: coords,
			CreatedAt:   now,
		}
	}

	df.Metal = model.SafeAdd(df.Metal, amount.Metal)
	df.Crystal = model.SafeAdd(df.Crystal, amount.Crystal)
	df.CreatedAt = now

	e.world.upsertDebris(df)

	e.bus.emit(EventDebrisCreated, now, map[string]interface{}{
		"position": coords.Key(),
		"metal":    df.Metal,
		"crystal":  df.Crystal,
	})
}

// plunder :
// Computes the loot extracted from the input planet by
// the surviving attackers: at most half of each stored
// resource, bounded by the free cargo capacity of the
// survivors. When the capacity cannot take everything
// the loot is distributed proportionally and the
// remaining space is filled greedily.
//
// The `dest` defines the plundered planet.
//
// The `survivors` define the surviving attackers.
//
// The `carried` defines the resources already loaded.
//
// Returns the loot.
func (e *Engine) plunder(dest *Planet, survivors map[string]int, carried model.Resources) model.Resources {
	want := model.NewResources(
		math.Floor(lootRatio*dest.Resources.Metal),
		math.Floor(lootRatio*dest.Resources.Crystal),
		math.Floor(lootRatio*dest.Resources.Deuterium),
	)

	capacity := e.cat.CargoCapacity(survivors) - carried.Total()
	if capacity <= 0 {
		return model.Resources{}
	}

	total := want.Total()
	if total <= capacity {
		return want
	}

	scale := capacity / total
	loot := model.NewResources(
		math.Floor(want.Metal*scale),
		math.Floor(want.Crystal*scale),
		math.Floor(want.Deuterium*scale),
	)

	// Fill the rounding leftovers greedily.
	free := capacity - loot.Total()
	for free >= 1 {
		switch {
		case loot.Metal < want.Metal:
			loot.Metal++
		case loot.Crystal < want.Crystal:
			loot.Crystal++
		case loot.Deuterium < want.Deuterium:
			loot.Deuterium++
		default:
			return loot
		}
		free--
	}

	return loot
}

// arriveRecycle :
// Collects the debris field at the destination of the
// fleet, limited by the cargo capacity of its recyclers,
// and sends the fleet home. The caller holds the lock of
// the destination.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) arriveRecycle(f *Fleet, now time.Time) {
	coords, err := model.ParseCoordinate(f.Destination)
	if err != nil {
		e.sendHome(f, now)
		return
	}

	df, ok := e.world.GetDebris(coords)
	if !ok || df.empty() {
		e.sendHome(f, now)
		return
	}

	capacity := e.cat.CargoCapacity(map[string]int{
		model.Recycler: f.Ships[model.Recycler],
	}) - f.Cargo.Total()

	if capacity > 0 {
		collected := df.total()
		if collected > capacity {
			collected = capacity
		}

		// Collect proportionally to the composition of
		// the field.
		share := collected / df.total()
		metal := math.Floor(df.Metal * share)
		crystal := math.Floor(df.Crystal * share)

		df.Metal = model.SafeSub(df.Metal, metal)
		df.Crystal = model.SafeSub(df.Crystal, crystal)

		f.Cargo = f.Cargo.Add(model.NewResources(metal, crystal, 0))

		if df.empty() {
			e.world.removeDebris(df.ID)
		} else {
			e.world.upsertDebris(df)
		}

		e.bus.emit(EventDebrisCollected, now, map[string]interface{}{
			"position": df.ID,
			"metal":    metal,
			"crystal":  crystal,
		})
	}

	e.sendHome(f, now)
	e.markDirty()
}

// arriveEspionage :
// Probes the destination of the fleet: the amount of
// information gathered grows with the number of probes
// and the espionage technology edge, while every probe
// risks being shot down. The report lands in the ring
// of the fleet owner. The caller holds the lock of the
// destination.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) arriveEspionage(f *Fleet, now time.Time) {
	dest, ok := e.world.GetPlanet(f.Destination)
	if !ok || dest.Owner == "" {
		e.sendHome(f, now)
		return
	}

	attacker, okA := e.world.GetAgent(f.Owner)
	defender, okD := e.world.GetAgent(dest.Owner)
	if !okA || !okD {
		e.sendHome(f, now)
		return
	}

	probes := f.Ships[model.EspionageProbe]
	techDelta := attacker.Technologies[model.EspionageTech] - defender.Technologies[model.EspionageTech]

	infoLevel := 2 + probes/2 + techDelta
	if infoLevel < 1 {
		infoLevel = 1
	}
	if infoLevel > 5 {
		infoLevel = 5
	}

	// Every probe can be detected and shot down over the
	// target.
	defenderProbes := dest.Ships[model.EspionageProbe]
	lossChance := math.Min(0.95, float64(defenderProbes)*0.02*float64(probes)*math.Pow(1.1, -float64(techDelta)))

	lost := 0
	e.random(func(rng *rand.Rand) {
		for i := 0; i < probes; i++ {
			if rng.Float64() < lossChance {
				lost++
			}
		}
	})

	report := SpyReport{
		ID:     uuid.New().String(),
		At:     now,
		Planet: dest.ID,

		InfoLevel: infoLevel,
		Resources: dest.Resources,

		ProbesLost: lost,
	}

	if infoLevel >= 2 {
		report.Ships = copyCounts(dest.Ships)
	}
	if infoLevel >= 3 {
		report.Defenses = copyCounts(dest.Defenses)
	}
	if infoLevel >= 4 {
		report.Buildings = copyCounts(dest.Buildings)
	}
	if infoLevel >= 5 {
		report.Technologies = copyCounts(defender.Technologies)
	}

	attacker.recordSpyReport(report, e.world.config.SpyReportCap)

	// Shot down probes give the operation away.
	if lost > 0 {
		e.notify(
			defender.ID,
			fmt.Sprintf("Espionage at %s", dest.ID),
			fmt.Sprintf("%d probe(s) of \"%s\" were shot down over your planet \"%s\".", lost, attacker.Name, dest.Name),
			now,
		)
	}

	f.Ships[model.EspionageProbe] = probes - lost
	if f.Ships[model.EspionageProbe] <= 0 {
		delete(f.Ships, model.EspionageProbe)
	}

	if f.shipCount() == 0 {
		e.world.removeFleet(f.ID)
	} else {
		e.sendHome(f, now)
	}

	e.markDirty()
}

// arriveColonize :
// Settles the destination of the fleet when it is still
// unowned and the sender has colony headroom, and sends
// the fleet home otherwise. The caller holds the lock of
// the destination.
//
// The `f` defines the fleet.
//
// The `now` defines the time of the tick.
func (e *Engine) arriveColonize(f *Fleet, now time.Time) {
	owner, okO := e.world.GetAgent(f.Owner)
	if !okO {
		e.world.removeFleet(f.ID)
		return
	}

	dest, ok := e.world.GetPlanet(f.Destination)
	if ok && dest.Owner != "" {
		e.sendHome(f, now)
		return
	}

	// The colony limit is revalidated on arrival: another
	// colonization may have landed since the dispatch.
	if len(owner.Planets) >= owner.ColonyLimit() {
		e.sendHome(f, now)
		return
	}

	coords, err := model.ParseCoordinate(f.Destination)
	if err != nil {
		e.sendHome(f, now)
		return
	}

	if !ok {
		dest = newPlanet(coords)
		e.world.addPlanet(dest)
	}

	dest.colonize(f.Owner)
	dest.Resources = dest.Resources.Add(f.Cargo)
	owner.Planets = append(owner.Planets, dest.ID)

	// The colony ship is consumed by the settlement; the
	// rest of the fleet docks at the new colony.
	f.Ships[model.ColonyShip]--
	if f.Ships[model.ColonyShip] <= 0 {
		delete(f.Ships, model.ColonyShip)
	}
	dest.addShips(f.Ships)

	e.world.removeFleet(f.ID)

	e.world.EnsureSystemNamed(coords.Galaxy, coords.System, now)

	e.appendFleetReport(f, FleetDeployed, now)

	e.bus.emit(EventPlanetColonized, now, map[string]interface{}{
		"planet": dest.ID,
		"owner":  f.Owner,
	})

	e.markDirty()
}

// appendFleetReport :
// Persists a fleet report for the input milestone.
//
// The `f` defines the fleet.
//
// The `kind` defines the milestone.
//
// The `now` defines the time of the milestone.
func (e *Engine) appendFleetReport(f *Fleet, kind string, now time.Time) {
	report := FleetReport{
		ID:    uuid.New().String(),
		At:    now,
		Owner: f.Owner,
		Fleet: f.ID,

		Kind:        kind,
		Mission:     f.Mission,
		Origin:      f.Origin,
		Destination: f.Destination,

		Ships: copyCounts(f.Ships),
		Cargo: f.Cargo,
	}

	if err := e.store.AppendFleetReport(report); err != nil {
		e.log.Trace(logger.Error, getModuleName(), "Failed to persist fleet report (err: "+err.Error()+")")
	}
}

// notify :
// Persists a system message addressed to an agent.
//
// The `recipient` defines the addressed agent.
//
// The `subject` defines the subject line.
//
// The `body` defines the content.
//
// The `now` defines the time of the message.
func (e *Engine) notify(recipient string, subject string, body string, now time.Time) {
	message := Message{
		ID:        uuid.New().String(),
		At:        now,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}

	if err := e.store.AppendMessage(message); err != nil {
		e.log.Trace(logger.Error, getModuleName(), "Failed to persist message (err: "+err.Error()+")")
	}
}

// copyCounts :
// Returns a copy of the input count map, skipping the
// entries at zero.
//
// The `in` defines the map to copy.
func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int)

	for key, count := range in {
		if count > 0 {
			out[key] = count
		}
	}

	return out
}

// mergeCounts :
// Returns the union of the two input count maps, the
// counts of shared keys being added.
//
// The `a` and `b` define the maps to merge.
func mergeCounts(a map[string]int, b map[string]int) map[string]int {
	out := copyCounts(a)

	for key, count := range b {
		if count > 0 {
			out[key] += count
		}
	}

	return out
}
