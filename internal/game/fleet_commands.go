package game

import (
	"math"
	"starhold_server/internal/model"
	"time"

	"github.com/google/uuid"
)

// SendFleet :
// Dispatches a fleet from a planet of the agent towards
// a destination. The pre-flight validation covers the
// composition, the fleet slots, the mission-specific
// rules and the affordability of the cargo and the fuel;
// nothing is mutated when any check fails.
//
// The `agentID` defines the caller.
//
// The `fromID` defines the origin planet.
//
// The `toID` defines the destination planet.
//
// The `ships` define the composition of the fleet.
//
// The `mission` defines the mission of the fleet.
//
// The `cargo` defines the loaded resources.
//
// The `now` defines the time of the command.
//
// Returns the identifier of the created fleet along with
// any error.
func (e *Engine) SendFleet(agentID string, fromID string, toID string, ships map[string]int, mission string, cargo model.Resources, now time.Time) (string, error) {
	id, err := e.sendFleet(agentID, fromID, toID, ships, mission, cargo, now)
	e.recordOutcome(agentID, "sendFleet", err, now)

	return id, err
}

func (e *Engine) sendFleet(agentID string, fromID string, toID string, ships map[string]int, mission string, cargo model.Resources, now time.Time) (string, error) {
	if !validMission(mission) {
		return "", newError(InvalidArgument, "unknown mission \"%s\"", mission)
	}

	if fromID == toID {
		return "", newError(Forbidden, "cannot dispatch a fleet to its own origin")
	}

	if len(ships) == 0 {
		return "", newError(InvalidArgument, "a fleet needs at least one ship")
	}

	for kind, count := range ships {
		if err := model.CheckIdentifier(kind); err != nil {
			return "", newError(InvalidArgument, "invalid ship identifier \"%s\"", kind)
		}
		if _, ok := e.cat.Ships.Get(kind); !ok {
			return "", newError(NotFound, "ship \"%s\" does not exist", kind)
		}
		if count <= 0 {
			return "", newError(InvalidArgument, "invalid count %d for ship \"%s\"", count, kind)
		}
	}

	if !cargo.Valid() {
		return "", newError(InvalidArgument, "invalid cargo amounts")
	}

	agent, origin, err := e.ownedPlanet(agentID, fromID)
	if err != nil {
		return "", err
	}

	galaxies, systems, positions := e.world.Bounds()

	to, errTo := model.ParseCoordinate(toID)
	if errTo != nil || !to.Valid(galaxies, systems, positions) {
		return "", newError(InvalidArgument, "invalid destination \"%s\"", toID)
	}

	if err := e.checkMission(agent, toID, ships, mission, now); err != nil {
		return "", err
	}

	slots := agent.FleetSlots(e.cat, now)
	if len(e.world.ListFleetsByOwner(agentID)) >= slots {
		return "", newError(Precondition, "no fleet slot left for \"%s\"", agentID).
			withDetail("slots", slots)
	}

	var fleetID string

	err = e.withPlanetLock(fromID, func() error {
		for kind, count := range ships {
			if origin.Ships[kind] < count {
				return newError(Insufficient, "not enough \"%s\" on planet \"%s\"", kind, fromID).
					withDetail("requested", count).
					withDetail("available", origin.Ships[kind])
			}
		}

		capacity := e.cat.CargoCapacity(ships)
		if cargo.Total() > capacity {
			return newError(Precondition, "cargo exceeds the capacity of the fleet").
				withDetail("capacity", capacity).
				withDetail("cargo", cargo.Total())
		}

		distance := e.cat.Distance(origin.Coordinates, to)
		fuel := e.cat.FuelConsumption(ships, distance)

		// The fuel comes on top of the loaded deuterium.
		needed := cargo.Add(model.NewResources(0, 0, fuel))
		if !origin.Resources.CanAfford(needed) {
			return newError(Insufficient, "not enough resources to load and fuel the fleet").
				withDetail("needed", needed).
				withDetail("available", origin.Resources)
		}

		origin.removeShips(ships)
		origin.Resources = origin.Resources.Sub(needed)

		travel := e.cat.TravelTime(distance)

		fleet := &Fleet{
			ID:    uuid.New().String(),
			Owner: agentID,
			Ships: copyCounts(ships),

			Mission:     mission,
			Origin:      fromID,
			Destination: toID,

			Cargo: cargo,
			Fuel:  fuel,

			DepartedAt: now,
			ArrivesAt:  now.Add(travel),
		}

		e.world.addFleet(fleet)
		fleetID = fleet.ID

		e.appendFleetReport(fleet, FleetDispatched, now)

		e.bus.emit(EventFleetLaunched, now, map[string]interface{}{
			"fleet":       fleet.ID,
			"mission":     mission,
			"origin":      fromID,
			"destination": toID,
		})

		e.markDirty()

		return nil
	})

	return fleetID, err
}

// checkMission :
// Verifies the mission-specific dispatch rules: target
// ownership, newbie protection, required ship kinds and
// colony headroom.
//
// The `agent` defines the dispatching agent.
//
// The `toID` defines the destination planet.
//
// The `ships` define the composition of the fleet.
//
// The `mission` defines the mission to check.
//
// Returns any error.
func (e *Engine) checkMission(agent *Agent, toID string, ships map[string]int, mission string, now time.Time) error {
	dest, destExists := e.world.GetPlanet(toID)

	switch mission {
	case MissionTransport, MissionDeploy:
		if !destExists || dest.Owner != agent.ID {
			return newError(Forbidden, "destination \"%s\" is not owned by \"%s\"", toID, agent.ID)
		}

	case MissionAttack:
		if !destExists || dest.Owner == "" {
			return newError(NotFound, "no planet to attack at \"%s\"", toID)
		}
		if dest.Owner == agent.ID {
			return newError(Forbidden, "cannot attack an owned planet")
		}

		defender, ok := e.world.GetAgent(dest.Owner)
		if !ok {
			return newError(NotFound, "agent \"%s\" does not exist", dest.Owner)
		}

		if err := e.checkNewbieProtection(agent, defender, now); err != nil {
			return err
		}

	case MissionColonize:
		if ships[model.ColonyShip] < 1 {
			return newError(Precondition, "colonization requires a colony ship")
		}
		if destExists && dest.Owner != "" {
			return newError(Precondition, "destination \"%s\" is already colonized", toID)
		}
		if len(agent.Planets) >= agent.ColonyLimit() {
			return newError(Precondition, "colony limit reached for \"%s\"", agent.ID).
				withDetail("limit", agent.ColonyLimit())
		}

	case MissionRecycle:
		if ships[model.Recycler] < 1 {
			return newError(Precondition, "recycling requires recyclers")
		}

		coords, err := model.ParseCoordinate(toID)
		if err != nil {
			return newError(InvalidArgument, "invalid destination \"%s\"", toID)
		}

		df, ok := e.world.GetDebris(coords)
		if !ok || df.empty() {
			return newError(Precondition, "no debris to collect at \"%s\"", toID)
		}

	case MissionEspionage:
		if ships[model.EspionageProbe] < 1 {
			return newError(Precondition, "espionage requires probes")
		}
		if !destExists || dest.Owner == "" {
			return newError(NotFound, "no planet to probe at \"%s\"", toID)
		}
		if dest.Owner == agent.ID {
			return newError(Forbidden, "cannot probe an owned planet")
		}
	}

	return nil
}

// checkNewbieProtection :
// Verifies that the defender can be attacked: agents
// with a low score or a young account are shielded, and
// an attacker cannot outweigh its target by more than
// the configured ratio.
//
// The `attacker` and `defender` define the agents.
//
// Returns any error.
func (e *Engine) checkNewbieProtection(attacker *Agent, defender *Agent, now time.Time) error {
	if defender.Score < e.config.NewbieScore {
		return newError(Forbidden, "defender is under score protection").
			withDetail("shield", "scoreShield").
			withDetail("min_score", e.config.NewbieScore)
	}

	age := now.Sub(defender.CreatedAt)
	if age < e.config.NewbieAge {
		remaining := e.config.NewbieAge - age

		return newError(Forbidden, "defender is under time protection").
			withDetail("shield", "timeShield").
			withDetail("hoursRemaining", int(math.Ceil(remaining.Hours())))
	}

	if attacker.Score > e.config.NewbieRatio*defender.Score {
		return newError(Forbidden, "attacker outweighs the defender").
			withDetail("shield", "ratioShield").
			withDetail("max_ratio", e.config.NewbieRatio)
	}

	return nil
}

// RecallFleet :
// Calls a fleet back to its origin. A fleet recalled
// before the midpoint of its outbound leg turns around
// immediately and gets part of its fuel back; past the
// midpoint it completes its trip and returns right
// after its arrival.
//
// The `agentID` defines the caller.
//
// The `fleetID` defines the fleet to recall.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) RecallFleet(agentID string, fleetID string, now time.Time) error {
	err := e.recallFleet(agentID, fleetID, now)
	e.recordOutcome(agentID, "recallFleet", err, now)

	return err
}

func (e *Engine) recallFleet(agentID string, fleetID string, now time.Time) error {
	fleet, ok := e.world.GetFleet(fleetID)
	if !ok {
		return newError(NotFound, "fleet \"%s\" does not exist", fleetID)
	}

	if fleet.Owner != agentID {
		return newError(Forbidden, "fleet \"%s\" is not owned by \"%s\"", fleetID, agentID)
	}

	if fleet.Returning {
		return newError(Precondition, "fleet \"%s\" is already returning", fleetID)
	}

	return e.withPlanetLock(fleet.Origin, func() error {
		progress := fleet.progress(now)
		recalled := now
		fleet.RecalledAt = &recalled

		if progress < 0.5 {
			// Turn around: the way back takes as long as
			// the way out so far.
			elapsed := now.Sub(fleet.DepartedAt)

			fleet.Returning = true
			fleet.DepartedAt = now
			fleet.ArrivesAt = now.Add(elapsed)

			refund := math.Floor((1.0 - progress) * cancelRefundRatio * fleet.Fuel)
			if origin, ok := e.world.GetPlanet(fleet.Origin); ok {
				origin.Resources = origin.Resources.Add(model.NewResources(0, 0, refund))
			}
		}

		e.bus.emit(EventFleetRecalled, now, map[string]interface{}{
			"fleet": fleetID,
		})

		e.markDirty()

		return nil
	})
}

// NameSystem :
// Renames a star system on behalf of an agent. Naming
// requires presence in the system through an owned
// planet, and the name must be unique across the whole
// universe.
//
// The `agentID` defines the caller.
//
// The `galaxy` and `system` define the system to name.
//
// The `name` defines the new name.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) NameSystem(agentID string, galaxy int, system int, name string, now time.Time) error {
	err := e.nameSystem(agentID, galaxy, system, name, now)
	e.recordOutcome(agentID, "nameSystem", err, now)

	return err
}

func (e *Engine) nameSystem(agentID string, galaxy int, system int, name string, now time.Time) error {
	if len(name) == 0 || len(name) > 32 {
		return newError(InvalidArgument, "invalid system name")
	}

	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	present := false
	for _, id := range agent.Planets {
		if p, ok := e.world.GetPlanet(id); ok {
			if p.Coordinates.Galaxy == galaxy && p.Coordinates.System == system {
				present = true
				break
			}
		}
	}

	if !present {
		return newError(Forbidden, "agent \"%s\" has no planet in system %d:%d", agentID, galaxy, system)
	}

	if err := e.world.NameSystem(galaxy, system, name, agentID, now); err != nil {
		return err
	}

	e.bus.emit(EventSystemNamed, now, map[string]interface{}{
		"system": coordinateSystemKey(galaxy, system),
		"name":   name,
		"agent":  agentID,
	})

	e.markDirty()

	return nil
}

// coordinateSystemKey :
// Builds the key of a system from its coordinates.
func coordinateSystemKey(galaxy int, system int) string {
	return model.NewCoordinate(galaxy, system, 1).SystemKey()
}
