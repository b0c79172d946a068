package game

import (
	"sort"
	"starhold_server/internal/model"
	"starhold_server/pkg/duration"
	"time"
)

// AgentSummaryView :
// A read-only snapshot of an agent as exposed to the
// external surface.
type AgentSummaryView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Score    float64  `json:"score"`
	Currency float64  `json:"currency"`
	Planets  []string `json:"planets"`

	Technologies  map[string]int `json:"technologies"`
	ResearchQueue []ResearchJob  `json:"research_queue,omitempty"`

	Officers map[string]OfficerStatus `json:"officers,omitempty"`
	Boosters map[string]BoosterStatus `json:"boosters,omitempty"`

	ColonyLimit int `json:"colony_limit"`
	FleetSlots  int `json:"fleet_slots"`
	FleetsInUse int `json:"fleets_in_use"`
}

// AgentSummary :
// Assembles the summary of an agent.
//
// The `agentID` defines the agent to describe.
//
// The `now` defines the reference time for the officer
// and booster activity.
//
// Returns the summary along with any error.
func (e *Engine) AgentSummary(agentID string, now time.Time) (AgentSummaryView, error) {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return AgentSummaryView{}, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return AgentSummaryView{
		ID:        agent.ID,
		Name:      agent.Name,
		CreatedAt: agent.CreatedAt,

		Score:    agent.Score,
		Currency: agent.Currency,
		Planets:  append([]string{}, agent.Planets...),

		Technologies:  agent.Technologies,
		ResearchQueue: agent.ResearchQueue,

		Officers: agent.ActiveOfficerStatuses(now),
		Boosters: agent.ActiveBoosterStatuses(now),

		ColonyLimit: agent.ColonyLimit(),
		FleetSlots:  agent.FleetSlots(e.cat, now),
		FleetsInUse: len(e.world.ListFleetsByOwner(agentID)),
	}, nil
}

// PlanetDetailView :
// A read-only snapshot of a planet of the agent with its
// production and storage breakdown.
type PlanetDetailView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Coordinates model.Coordinate `json:"coordinates"`

	MinTemperature float64 `json:"min_temperature"`
	MaxTemperature float64 `json:"max_temperature"`

	Resources   model.Resources `json:"resources"`
	StorageCaps model.Resources `json:"storage_caps"`

	Production     model.Resources `json:"production_per_second"`
	EnergyProduced float64         `json:"energy_produced"`
	EnergyConsumed float64         `json:"energy_consumed"`
	Efficiency     float64         `json:"efficiency"`

	Buildings map[string]int `json:"buildings"`
	Ships     map[string]int `json:"ships"`
	Defenses  map[string]int `json:"defenses"`

	BuildQueue    []BuildJob    `json:"build_queue,omitempty"`
	ShipyardQueue []ShipyardJob `json:"shipyard_queue,omitempty"`
}

// PlanetDetail :
// Assembles the detailed view of a planet of the agent.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the planet to describe.
//
// The `now` defines the reference time for the officer
// and booster activity of the owner.
//
// Returns the view along with any error.
func (e *Engine) PlanetDetail(agentID string, planetID string, now time.Time) (PlanetDetailView, error) {
	agent, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return PlanetDetailView{}, err
	}

	officers := agent.ActiveOfficers(now)
	boosters := agent.ActiveBoosters(now)

	out := e.cat.Production(model.ProductionInput{
		Buildings:      planet.Buildings,
		MaxTemperature: planet.MaxTemperature,
		EnergyTech:     agent.Technologies[model.EnergyTech],
		Multipliers: map[string]float64{
			model.BoostMetal:     e.cat.ProductionMultiplier(model.BoostMetal, officers, boosters),
			model.BoostCrystal:   e.cat.ProductionMultiplier(model.BoostCrystal, officers, boosters),
			model.BoostDeuterium: e.cat.ProductionMultiplier(model.BoostDeuterium, officers, boosters),
		},
	})

	return PlanetDetailView{
		ID:          planet.ID,
		Name:        planet.Name,
		Coordinates: planet.Coordinates,

		MinTemperature: planet.MinTemperature,
		MaxTemperature: planet.MaxTemperature,

		Resources:   planet.Resources,
		StorageCaps: planet.StorageCaps(e.cat),

		Production:     out.PerSecond,
		EnergyProduced: out.EnergyProduced,
		EnergyConsumed: out.EnergyConsumed,
		Efficiency:     out.Efficiency,

		Buildings: planet.Buildings,
		Ships:     planet.Ships,
		Defenses:  planet.Defenses,

		BuildQueue:    planet.BuildQueue,
		ShipyardQueue: planet.ShipyardQueue,
	}, nil
}

// UpgradeOption :
// Describes one buildable item on a planet: its next
// level or unit cost, the time it would take and whether
// the planet can start it right away.
type UpgradeOption struct {
	ID    string `json:"id"`
	Level int    `json:"level,omitempty"`

	Cost     model.Resources   `json:"cost"`
	Duration duration.Duration `json:"duration"`

	Affordable      bool `json:"affordable"`
	RequirementsMet bool `json:"requirements_met"`
}

// AvailableActionsView :
// The buildable content of a planet: the next level of
// every building and technology along with the unit
// costs of ships and defenses.
type AvailableActionsView struct {
	Buildings    []UpgradeOption `json:"buildings"`
	Technologies []UpgradeOption `json:"technologies"`
	Ships        []UpgradeOption `json:"ships"`
	Defenses     []UpgradeOption `json:"defenses"`
}

// AvailableActions :
// Assembles the buildable content of a planet of the
// agent with costs, durations and feasibility flags.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the planet.
//
// Returns the view along with any error.
func (e *Engine) AvailableActions(agentID string, planetID string) (AvailableActionsView, error) {
	agent, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return AvailableActionsView{}, err
	}

	var view AvailableActionsView

	for _, id := range e.cat.Buildings.IDs() {
		desc, _ := e.cat.Buildings.Get(id)
		level := planet.Buildings[id]

		cost, err := e.cat.BuildingCost(id, level)
		if err != nil {
			continue
		}

		view.Buildings = append(view.Buildings, UpgradeOption{
			ID:              id,
			Level:           level + 1,
			Cost:            cost,
			Duration:        duration.NewDuration(e.cat.BuildTime(cost, planet.Buildings[model.RoboticsFactory], planet.Buildings[model.NaniteFactory])),
			Affordable:      planet.Resources.CanAfford(cost),
			RequirementsMet: e.cat.CheckPrerequisites(desc.Prerequisites, planet.Buildings, agent.Technologies) == nil,
		})
	}

	for _, id := range e.cat.Technologies.IDs() {
		desc, _ := e.cat.Technologies.Get(id)
		level := agent.Technologies[id]

		cost, err := e.cat.ResearchCost(id, level)
		if err != nil {
			continue
		}

		view.Technologies = append(view.Technologies, UpgradeOption{
			ID:              id,
			Level:           level + 1,
			Cost:            cost,
			Duration:        duration.NewDuration(e.cat.ResearchTime(cost, planet.Buildings[model.ResearchLab], agent.Technologies[model.EnergyTech])),
			Affordable:      planet.Resources.CanAfford(cost),
			RequirementsMet: e.cat.CheckPrerequisites(desc.Prerequisites, planet.Buildings, agent.Technologies) == nil,
		})
	}

	for _, id := range e.cat.Ships.IDs() {
		desc, _ := e.cat.Ships.Get(id)

		view.Ships = append(view.Ships, UpgradeOption{
			ID:              id,
			Cost:            desc.Cost,
			Duration:        duration.NewDuration(e.cat.ShipyardTime(desc.Cost, planet.Buildings[model.Shipyard], planet.Buildings[model.NaniteFactory])),
			Affordable:      planet.Resources.CanAfford(desc.Cost),
			RequirementsMet: e.cat.CheckPrerequisites(desc.Prerequisites, planet.Buildings, agent.Technologies) == nil,
		})
	}

	for _, id := range e.cat.Defenses.IDs() {
		desc, _ := e.cat.Defenses.Get(id)

		view.Defenses = append(view.Defenses, UpgradeOption{
			ID:              id,
			Cost:            desc.Cost,
			Duration:        duration.NewDuration(e.cat.ShipyardTime(desc.Cost, planet.Buildings[model.Shipyard], planet.Buildings[model.NaniteFactory])),
			Affordable:      planet.Resources.CanAfford(desc.Cost),
			RequirementsMet: e.cat.CheckPrerequisites(desc.Prerequisites, planet.Buildings, agent.Technologies) == nil,
		})
	}

	return view, nil
}

// FleetView :
// A read-only snapshot of a fleet in flight.
type FleetView struct {
	ID      string `json:"id"`
	Mission string `json:"mission"`

	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	Ships map[string]int  `json:"ships"`
	Cargo model.Resources `json:"cargo"`

	Returning bool `json:"returning"`

	DepartedAt time.Time `json:"departed_at"`
	ArrivesAt  time.Time `json:"arrives_at"`
	Progress   float64   `json:"progress"`
}

// Fleets :
// Lists the fleets of an agent, ordered by arrival time.
//
// The `agentID` defines the agent.
//
// The `now` defines the reference time for the progress
// of the fleets.
//
// Returns the views along with any error.
func (e *Engine) Fleets(agentID string, now time.Time) ([]FleetView, error) {
	if _, ok := e.world.GetAgent(agentID); !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	fleets := e.world.ListFleetsByOwner(agentID)

	out := make([]FleetView, 0, len(fleets))
	for _, f := range fleets {
		out = append(out, FleetView{
			ID:      f.ID,
			Mission: f.Mission,

			Origin:      f.Origin,
			Destination: f.Destination,

			Ships: f.Ships,
			Cargo: f.Cargo,

			Returning: f.Returning,

			DepartedAt: f.DepartedAt,
			ArrivesAt:  f.ArrivesAt,
			Progress:   f.progress(now),
		})
	}

	return out, nil
}

// LeaderboardEntry :
// One row of the score leaderboard.
type LeaderboardEntry struct {
	Rank    int     `json:"rank"`
	Agent   string  `json:"agent"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Planets int     `json:"planets"`
}

// Leaderboard :
// Ranks the agents of the universe by score.
//
// The `limit` defines the maximum number of rows, with
// `0` returning everything.
//
// Returns the ranking.
func (e *Engine) Leaderboard(limit int) []LeaderboardEntry {
	agents := e.world.ListAgents()

	sort.Slice(agents, func(i, j int) bool {
		if agents[i].Score != agents[j].Score {
			return agents[i].Score > agents[j].Score
		}
		return agents[i].ID < agents[j].ID
	})

	if limit > 0 && limit < len(agents) {
		agents = agents[:limit]
	}

	out := make([]LeaderboardEntry, 0, len(agents))
	for id, a := range agents {
		out = append(out, LeaderboardEntry{
			Rank:    id + 1,
			Agent:   a.ID,
			Name:    a.Name,
			Score:   a.Score,
			Planets: len(a.Planets),
		})
	}

	return out
}

// SystemPlanetView :
// One position of a star system as seen from the galaxy
// view.
type SystemPlanetView struct {
	Position int    `json:"position"`
	Planet   string `json:"planet,omitempty"`
	Name     string `json:"name,omitempty"`
	Owner    string `json:"owner,omitempty"`

	Debris model.Resources `json:"debris,omitempty"`
}

// SystemView :
// The public view of a star system: its name and the
// occupied positions.
type SystemView struct {
	Galaxy int `json:"galaxy"`
	System int `json:"system"`

	Name       string `json:"name"`
	Provenance string `json:"provenance"`

	Planets []SystemPlanetView `json:"planets"`
}

// ViewSystem :
// Assembles the public view of a star system.
//
// The `galaxy` and `system` define the system.
//
// The `now` defines the time used when the system gets
// its name generated on first sight.
//
// Returns the view along with any error.
func (e *Engine) ViewSystem(galaxy int, system int, now time.Time) (SystemView, error) {
	galaxies, systems, _ := e.world.Bounds()

	if galaxy < 1 || galaxy > galaxies || system < 1 || system > systems {
		return SystemView{}, newError(InvalidArgument, "invalid system %d:%d", galaxy, system)
	}

	entry := e.world.EnsureSystemNamed(galaxy, system, now)

	view := SystemView{
		Galaxy: galaxy,
		System: system,

		Name:       entry.Name,
		Provenance: entry.Provenance,
	}

	for _, p := range e.world.ListSystemPlanets(galaxy, system) {
		slot := SystemPlanetView{
			Position: p.Coordinates.Position,
			Planet:   p.ID,
			Name:     p.Name,
			Owner:    p.Owner,
		}

		if df, ok := e.world.GetDebris(p.Coordinates); ok {
			slot.Debris = model.NewResources(df.Metal, df.Crystal, 0)
		}

		view.Planets = append(view.Planets, slot)
	}

	return view, nil
}

// StakeStatusView :
// The state of a stake of an agent: its principal, the
// pending yield and when it unlocks.
type StakeStatusView struct {
	ID   string `json:"id"`
	Pool string `json:"pool"`

	Amount       float64 `json:"amount"`
	PendingYield float64 `json:"pending_yield"`

	StakedAt    time.Time  `json:"staked_at"`
	LastClaimAt time.Time  `json:"last_claim_at"`
	UnlocksAt   *time.Time `json:"unlocks_at,omitempty"`
}

// StakingStatus :
// Lists the stakes of an agent with their pending yield.
//
// The `agentID` defines the agent.
//
// The `now` defines the reference time for the yield
// computation.
//
// Returns the views along with any error.
func (e *Engine) StakingStatus(agentID string, now time.Time) ([]StakeStatusView, error) {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	out := make([]StakeStatusView, 0, len(agent.Stakes))

	for _, stake := range agent.Stakes {
		view := StakeStatusView{
			ID:   stake.ID,
			Pool: stake.Pool,

			Amount: stake.Amount,

			StakedAt:    stake.StakedAt,
			LastClaimAt: stake.LastClaimAt,
		}

		if pool, ok := e.cat.Premium.GetPool(stake.Pool); ok {
			view.PendingYield = stakeYield(stake, pool, now)

			if pool.LockDuration > 0 {
				unlock := stake.StakedAt.Add(pool.LockDuration)
				view.UnlocksAt = &unlock
			}
		}

		out = append(out, view)
	}

	return out, nil
}

// SpyReports :
// Returns the recent spy reports of an agent, most
// recent first.
//
// The `agentID` defines the agent.
//
// Returns the reports along with any error.
func (e *Engine) SpyReports(agentID string) ([]SpyReport, error) {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return agent.SpyReports, nil
}

// BattleReports :
// Returns the persisted battle reports involving an
// agent.
//
// The `agentID` defines the agent.
//
// The `limit` defines the maximum number of reports.
//
// Returns the reports along with any error.
func (e *Engine) BattleReports(agentID string, limit int) ([]BattleReport, error) {
	if _, ok := e.world.GetAgent(agentID); !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.store.ListBattleReports(agentID, limit)
}

// FleetReports :
// Returns the persisted fleet reports of an agent.
//
// The `agentID` defines the agent.
//
// The `limit` defines the maximum number of reports.
//
// Returns the reports along with any error.
func (e *Engine) FleetReports(agentID string, limit int) ([]FleetReport, error) {
	if _, ok := e.world.GetAgent(agentID); !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.store.ListFleetReports(agentID, limit)
}

// Messages :
// Returns the persisted messages addressed to an agent,
// newest first.
//
// The `agentID` defines the agent.
//
// The `limit` defines the maximum number of messages.
//
// Returns the messages along with any error.
func (e *Engine) Messages(agentID string, limit int) ([]Message, error) {
	if _, ok := e.world.GetAgent(agentID); !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.store.ListMessages(agentID, limit)
}

// ScoreHistory :
// Returns the persisted score snapshots of an agent.
//
// The `agentID` defines the agent.
//
// The `limit` defines the maximum number of snapshots.
//
// Returns the snapshots along with any error.
func (e *Engine) ScoreHistory(agentID string, limit int) ([]ScoreSnapshot, error) {
	if _, ok := e.world.GetAgent(agentID); !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.store.ListScoreHistory(agentID, limit)
}

// DecisionLog :
// Returns the recent command outcomes of an agent, most
// recent first.
//
// The `agentID` defines the agent.
//
// Returns the entries along with any error.
func (e *Engine) DecisionLog(agentID string) ([]DecisionEntry, error) {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return nil, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return agent.Decisions, nil
}
