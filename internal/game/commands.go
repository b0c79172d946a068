package game

import (
	"starhold_server/internal/model"
	"time"
)

// Fraction of the invested resources refunded when a
// queued job is cancelled, applied to the part of the
// job not yet completed.
const cancelRefundRatio = 0.5

// ownedPlanet :
// Resolves the input agent and planet and verifies the
// ownership link between them.
//
// The `agentID` defines the identifier of the agent.
//
// The `planetID` defines the identifier of the planet.
//
// Returns the agent and the planet along with any error.
func (e *Engine) ownedPlanet(agentID string, planetID string) (*Agent, *Planet, error) {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return nil, nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	planet, ok := e.world.GetPlanet(planetID)
	if !ok {
		return nil, nil, newError(NotFound, "planet \"%s\" does not exist", planetID)
	}

	if planet.Owner != agentID {
		return nil, nil, newError(Forbidden, "planet \"%s\" is not owned by \"%s\"", planetID, agentID)
	}

	return agent, planet, nil
}

// affordOrFail :
// Verifies that the planet can pay the input cost.
//
// The `p` defines the paying planet.
//
// The `cost` defines the cost to check.
//
// Returns an error describing the deficit when the
// planet cannot afford the cost.
func affordOrFail(p *Planet, cost model.Resources) error {
	if p.Resources.CanAfford(cost) {
		return nil
	}

	return newError(Insufficient, "not enough resources on planet \"%s\"", p.ID).
		withDetail("cost", cost).
		withDetail("available", p.Resources)
}

// Build :
// Queues the upgrade of a building on a planet of the
// agent. The cost of the next level is deducted when
// the job is queued; jobs beyond the running one start
// when their predecessor completes.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the planet to build on.
//
// The `building` defines the building to upgrade.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) Build(agentID string, planetID string, building string, now time.Time) error {
	err := e.build(agentID, planetID, building, now)
	e.recordOutcome(agentID, "build", err, now)

	return err
}

func (e *Engine) build(agentID string, planetID string, building string, now time.Time) error {
	return e.withPlanetLock(planetID, func() error {
		return e.buildLocked(agentID, planetID, building, now)
	})
}

// buildLocked :
// Same as `build` for callers already holding the lock
// of the planet.
func (e *Engine) buildLocked(agentID string, planetID string, building string, now time.Time) error {
	if err := model.CheckIdentifier(building); err != nil {
		return newError(InvalidArgument, "invalid building identifier \"%s\"", building)
	}

	desc, ok := e.cat.Buildings.Get(building)
	if !ok {
		return newError(NotFound, "building \"%s\" does not exist", building)
	}

	agent, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return err
	}

	slots := agent.BuildQueueSlots(e.cat, now)
	if len(planet.BuildQueue) >= slots {
		return newError(Precondition, "build queue of planet \"%s\" is full", planetID).
			withDetail("slots", slots)
	}

	// The target level accounts for the upgrades that
	// are already queued.
	level := planet.Buildings[building]
	for _, job := range planet.BuildQueue {
		if job.Building == building && job.TargetLevel > level {
			level = job.TargetLevel
		}
	}

	if err := e.cat.CheckPrerequisites(desc.Prerequisites, planet.Buildings, agent.Technologies); err != nil {
		return newError(Precondition, "requirements not met for \"%s\": %v", building, err)
	}

	cost, err := e.cat.BuildingCost(building, level)
	if err != nil {
		return newError(Internal, "failed to cost \"%s\": %v", building, err)
	}

	if err := affordOrFail(planet, cost); err != nil {
		return err
	}

	planet.Resources = planet.Resources.Sub(cost)

	start := now
	if len(planet.BuildQueue) > 0 {
		start = planet.BuildQueue[len(planet.BuildQueue)-1].CompletesAt
	}

	duration := e.cat.BuildTime(cost, planet.Buildings[model.RoboticsFactory], planet.Buildings[model.NaniteFactory])

	planet.BuildQueue = append(planet.BuildQueue, BuildJob{
		Building:    building,
		TargetLevel: level + 1,
		Cost:        cost,
		StartedAt:   start,
		CompletesAt: start.Add(duration),
	})

	e.bus.emit(EventBuildStarted, now, map[string]interface{}{
		"planet":   planetID,
		"building": building,
		"level":    level + 1,
	})

	e.markDirty()

	return nil
}

// CancelBuild :
// Cancels the construction at the head of the build
// queue of a planet. Half of the not-yet-invested part
// of the cost comes back, floored per resource; the
// following jobs move up.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the planet.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) CancelBuild(agentID string, planetID string, now time.Time) error {
	err := e.cancelBuild(agentID, planetID, now)
	e.recordOutcome(agentID, "cancelBuild", err, now)

	return err
}

func (e *Engine) cancelBuild(agentID string, planetID string, now time.Time) error {
	return e.withPlanetLock(planetID, func() error {
		return e.cancelBuildLocked(agentID, planetID, now)
	})
}

// cancelBuildLocked :
// Same as `cancelBuild` for callers already holding the
// lock of the planet.
func (e *Engine) cancelBuildLocked(agentID string, planetID string, now time.Time) error {
	_, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return err
	}

	if len(planet.BuildQueue) == 0 {
		return newError(Precondition, "no construction to cancel on planet \"%s\"", planetID)
	}

	job := planet.BuildQueue[0]
	planet.BuildQueue = planet.BuildQueue[1:]

	refund := job.Cost.Scale((1.0 - jobProgress(job.StartedAt, job.CompletesAt, now)) * cancelRefundRatio)
	planet.Resources = planet.Resources.Add(refund)

	// The following jobs move up by the time the head
	// would still have needed.
	if remaining := job.CompletesAt.Sub(now); remaining > 0 {
		for id := range planet.BuildQueue {
			planet.BuildQueue[id].StartedAt = planet.BuildQueue[id].StartedAt.Add(-remaining)
			planet.BuildQueue[id].CompletesAt = planet.BuildQueue[id].CompletesAt.Add(-remaining)
		}
	}

	e.markDirty()

	return nil
}

// jobProgress :
// Returns the completed fraction of a job at the input
// time, clamped to `[0; 1]`.
//
// The `start` and `end` define the window of the job.
//
// The `now` defines the reference time.
func jobProgress(start time.Time, end time.Time, now time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 1
	}

	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 1
	}

	return float64(elapsed) / float64(total)
}

// Research :
// Starts the research of the next level of a technology
// on behalf of the agent. The planet provides both the
// laboratory driving the duration and the resources
// paying the cost. A single research can run at a time
// per agent.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the paying planet.
//
// The `tech` defines the technology to research.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) Research(agentID string, planetID string, tech string, now time.Time) error {
	err := e.research(agentID, planetID, tech, now)
	e.recordOutcome(agentID, "research", err, now)

	return err
}

func (e *Engine) research(agentID string, planetID string, tech string, now time.Time) error {
	return e.withPlanetLock(planetID, func() error {
		return e.researchLocked(agentID, planetID, tech, now)
	})
}

// researchLocked :
// Same as `research` for callers already holding the
// lock of the planet.
func (e *Engine) researchLocked(agentID string, planetID string, tech string, now time.Time) error {
	if err := model.CheckIdentifier(tech); err != nil {
		return newError(InvalidArgument, "invalid technology identifier \"%s\"", tech)
	}

	desc, ok := e.cat.Technologies.Get(tech)
	if !ok {
		return newError(NotFound, "technology \"%s\" does not exist", tech)
	}

	agent, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return err
	}

	if planet.Buildings[model.ResearchLab] < 1 {
		return newError(Precondition, "planet \"%s\" has no research lab", planetID)
	}

	if len(agent.ResearchQueue) > 0 {
		return newError(Precondition, "a research is already in progress for \"%s\"", agentID)
	}

	if err := e.cat.CheckPrerequisites(desc.Prerequisites, planet.Buildings, agent.Technologies); err != nil {
		return newError(Precondition, "requirements not met for \"%s\": %v", tech, err)
	}

	level := agent.Technologies[tech]

	cost, err := e.cat.ResearchCost(tech, level)
	if err != nil {
		return newError(Internal, "failed to cost \"%s\": %v", tech, err)
	}

	if err := affordOrFail(planet, cost); err != nil {
		return err
	}

	planet.Resources = planet.Resources.Sub(cost)

	duration := e.cat.ResearchTime(cost, planet.Buildings[model.ResearchLab], agent.Technologies[model.EnergyTech])

	agent.ResearchQueue = append(agent.ResearchQueue, ResearchJob{
		Technology:  tech,
		TargetLevel: level + 1,
		Cost:        cost,
		Planet:      planetID,
		StartedAt:   now,
		CompletesAt: now.Add(duration),
	})

	e.bus.emit(EventResearchStarted, now, map[string]interface{}{
		"agent":      agentID,
		"technology": tech,
		"level":      level + 1,
	})

	e.markDirty()

	return nil
}

// CancelResearch :
// Cancels the running research of the agent. Half of
// the not-yet-invested part of the cost comes back to
// the planet that paid for it.
//
// The `agentID` defines the caller.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) CancelResearch(agentID string, now time.Time) error {
	err := e.cancelResearch(agentID, now)
	e.recordOutcome(agentID, "cancelResearch", err, now)

	return err
}

func (e *Engine) cancelResearch(agentID string, now time.Time) error {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	if len(agent.ResearchQueue) == 0 {
		return newError(Precondition, "no research to cancel for \"%s\"", agentID)
	}

	job := agent.ResearchQueue[0]

	return e.withPlanetLock(job.Planet, func() error {
		return e.cancelResearchLocked(agentID, job.Planet, now)
	})
}

// cancelResearchLocked :
// Same as `cancelResearch` for callers already holding
// the lock of the paying planet. Fails when the running
// research is not funded by that planet.
func (e *Engine) cancelResearchLocked(agentID string, planetID string, now time.Time) error {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	if len(agent.ResearchQueue) == 0 {
		return newError(Precondition, "no research to cancel for \"%s\"", agentID)
	}

	job := agent.ResearchQueue[0]
	if job.Planet != planetID {
		return newError(Precondition, "the research of \"%s\" is not funded by planet \"%s\"", agentID, planetID)
	}

	agent.ResearchQueue = agent.ResearchQueue[1:]

	refund := job.Cost.Scale((1.0 - jobProgress(job.StartedAt, job.CompletesAt, now)) * cancelRefundRatio)

	if planet, ok := e.world.GetPlanet(job.Planet); ok {
		planet.Resources = planet.Resources.Add(refund)
	}

	e.markDirty()

	return nil
}

// BuildShip :
// Queues the production of ships in the shipyard of a
// planet. A single shipyard job can run at a time.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the producing planet.
//
// The `ship` defines the ship type.
//
// The `count` defines how many units to produce.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) BuildShip(agentID string, planetID string, ship string, count int, now time.Time) error {
	err := e.buildUnit(agentID, planetID, ship, count, false, now)
	e.recordOutcome(agentID, "buildShip", err, now)

	return err
}

// BuildDefense :
// Queues the production of defense systems on a planet.
// Shares the shipyard with the ships production and
// honours the per-kind caps.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the producing planet.
//
// The `defense` defines the defense type.
//
// The `count` defines how many units to produce.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) BuildDefense(agentID string, planetID string, defense string, count int, now time.Time) error {
	err := e.buildUnit(agentID, planetID, defense, count, true, now)
	e.recordOutcome(agentID, "buildDefense", err, now)

	return err
}

func (e *Engine) buildUnit(agentID string, planetID string, item string, count int, isDefense bool, now time.Time) error {
	return e.withPlanetLock(planetID, func() error {
		return e.buildUnitLocked(agentID, planetID, item, count, isDefense, now)
	})
}

// buildUnitLocked :
// Same as `buildUnit` for callers already holding the
// lock of the planet.
func (e *Engine) buildUnitLocked(agentID string, planetID string, item string, count int, isDefense bool, now time.Time) error {
	if err := model.CheckIdentifier(item); err != nil {
		return newError(InvalidArgument, "invalid item identifier \"%s\"", item)
	}

	if count <= 0 {
		return newError(InvalidArgument, "invalid count %d", count)
	}

	var cost model.Resources
	var unitCost model.Resources
	var prereqs map[string]int
	capLimit := 0

	if isDefense {
		desc, ok := e.cat.Defenses.Get(item)
		if !ok {
			return newError(NotFound, "defense \"%s\" does not exist", item)
		}

		unitCost = desc.Cost
		prereqs = desc.Prerequisites
		capLimit = desc.Cap

		var err error
		cost, err = e.cat.DefenseCost(item, count)
		if err != nil {
			return newError(Internal, "failed to cost \"%s\": %v", item, err)
		}
	} else {
		desc, ok := e.cat.Ships.Get(item)
		if !ok {
			return newError(NotFound, "ship \"%s\" does not exist", item)
		}

		unitCost = desc.Cost
		prereqs = desc.Prerequisites

		var err error
		cost, err = e.cat.ShipCost(item, count)
		if err != nil {
			return newError(Internal, "failed to cost \"%s\": %v", item, err)
		}
	}

	agent, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return err
	}

	if planet.Buildings[model.Shipyard] < 1 {
		return newError(Precondition, "planet \"%s\" has no shipyard", planetID)
	}

	if len(planet.ShipyardQueue) > 0 {
		return newError(Precondition, "the shipyard of planet \"%s\" is busy", planetID)
	}

	if err := e.cat.CheckPrerequisites(prereqs, planet.Buildings, agent.Technologies); err != nil {
		return newError(Precondition, "requirements not met for \"%s\": %v", item, err)
	}

	if capLimit > 0 && planet.Defenses[item]+count > capLimit {
		return newError(Precondition, "defense \"%s\" is capped at %d on a planet", item, capLimit)
	}

	if err := affordOrFail(planet, cost); err != nil {
		return err
	}

	planet.Resources = planet.Resources.Sub(cost)

	perUnit := e.cat.ShipyardTime(unitCost, planet.Buildings[model.Shipyard], planet.Buildings[model.NaniteFactory])
	duration := time.Duration(count) * perUnit

	planet.ShipyardQueue = append(planet.ShipyardQueue, ShipyardJob{
		Item:        item,
		IsDefense:   isDefense,
		Count:       count,
		Cost:        cost,
		StartedAt:   now,
		CompletesAt: now.Add(duration),
	})

	e.markDirty()

	return nil
}
