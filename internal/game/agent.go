package game

import (
	"math"
	"starhold_server/internal/model"
	"time"
)

// OfficerStatus :
// Describes an active officer of an agent.
//
// The `HiredAt` defines when the officer was first hired
// for the current activity period.
//
// The `ExpiresAt` defines when the officer stops giving
// its bonuses. Hiring the officer again while it is still
// active extends this time.
type OfficerStatus struct {
	HiredAt   time.Time `json:"hired_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BoosterStatus :
// Describes an active production booster of an agent.
//
// The `ActivatedAt` defines when the booster was bought.
//
// The `ExpiresAt` defines when its effect stops. Unlike
// officers a booster cannot be stacked on itself while
// still active.
type BoosterStatus struct {
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Stake :
// Describes an amount of premium currency locked in one
// of the staking pools.
//
// The `ID` defines the identifier of the stake.
//
// The `Pool` defines the pool in which the currency is
// locked.
//
// The `Amount` defines the staked amount.
//
// The `StakedAt` defines when the stake was created.
//
// The `LastClaimAt` defines the last time the accrued
// rewards were claimed or compounded. The yield accrues
// from this time.
type Stake struct {
	ID          string    `json:"id"`
	Pool        string    `json:"pool"`
	Amount      float64   `json:"amount"`
	StakedAt    time.Time `json:"staked_at"`
	LastClaimAt time.Time `json:"last_claim_at"`
}

// ResearchJob :
// Describes the research currently performed by an agent.
// At most one research can be running at any time.
//
// The `Technology` defines the technology being improved.
//
// The `TargetLevel` defines the level reached when the
// research completes.
//
// The `Cost` defines the resources invested: it is used
// to compute the refund when the research is cancelled.
//
// The `Planet` defines the planet that paid the cost and
// whose laboratory drives the research time.
//
// The `StartedAt` defines when the research started.
//
// The `CompletesAt` defines when the research finishes.
type ResearchJob struct {
	Technology  string          `json:"technology"`
	TargetLevel int             `json:"target_level"`
	Cost        model.Resources `json:"cost"`
	Planet      string          `json:"planet"`
	StartedAt   time.Time       `json:"started_at"`
	CompletesAt time.Time       `json:"completes_at"`
}

// DecisionEntry :
// Describes the outcome of a command issued by an agent.
// Kept in a bounded ring so that the recent activity of
// an agent can be audited.
//
// The `At` defines when the command was handled.
//
// The `Command` defines the command verb.
//
// The `Status` defines the outcome (`success` or the
// error kind).
//
// The `Message` defines a short description of what
// happened.
type DecisionEntry struct {
	At      time.Time `json:"at"`
	Command string    `json:"command"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
}

// Agent :
// Describes a participant of the game. An agent is keyed
// by its wallet identifier and owns planets, fleets, a
// premium currency balance and a technology set. Agents
// are created at registration and never deleted.
//
// The `ID` defines the wallet identifier of the agent.
//
// The `Name` defines the display name.
//
// The `CreatedAt` defines the registration time. It is
// used by the newbie protection rules.
//
// The `IP` defines the address used at registration so
// that the per-address wallet cap survives a restart.
//
// The `Planets` defines the identifiers of the owned
// planets.
//
// The `Score` defines the cumulative score, increased by
// completed constructions and researches.
//
// The `Currency` defines the premium currency balance.
// Always a finite non-negative number below the safe
// cap: anything else is treated as corruption.
//
// The `Officers` define the active officers keyed by
// their identifier.
//
// The `Boosters` define the active boosters keyed by
// their identifier.
//
// The `Stakes` define the currency locked in staking
// pools, ordered by creation.
//
// The `Technologies` define the level reached in each
// technology.
//
// The `ResearchQueue` defines the pending research. At
// most one entry.
//
// The `SpyReports` define the most recent espionage
// reports received by the agent, newest first, bounded.
//
// The `Decisions` define the bounded ring of command
// outcomes, newest first.
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	IP        string    `json:"ip,omitempty"`

	Planets  []string `json:"planets"`
	Score    float64  `json:"score"`
	Currency float64  `json:"currency"`

	Officers map[string]OfficerStatus `json:"officers"`
	Boosters map[string]BoosterStatus `json:"boosters"`
	Stakes   []Stake                  `json:"stakes"`

	Technologies  map[string]int `json:"technologies"`
	ResearchQueue []ResearchJob  `json:"research_queue"`

	SpyReports []SpyReport     `json:"spy_reports"`
	Decisions  []DecisionEntry `json:"decisions"`
}

// newAgent :
// Creates an agent with empty collections.
//
// The `id` defines the wallet identifier.
//
// The `name` defines the display name.
//
// The `ip` defines the registration address.
//
// The `now` defines the creation time.
//
// Returns the created agent.
func newAgent(id string, name string, ip string, now time.Time) *Agent {
	return &Agent{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		IP:        ip,

		Planets: make([]string, 0),

		Officers: make(map[string]OfficerStatus),
		Boosters: make(map[string]BoosterStatus),
		Stakes:   make([]Stake, 0),

		Technologies:  make(map[string]int),
		ResearchQueue: make([]ResearchJob, 0),

		SpyReports: make([]SpyReport, 0),
		Decisions:  make([]DecisionEntry, 0),
	}
}

// ActiveOfficers :
// Returns the identifiers of the officers active at the
// input time.
//
// The `now` defines the reference time.
func (a *Agent) ActiveOfficers(now time.Time) []string {
	out := make([]string, 0, len(a.Officers))

	for id, status := range a.Officers {
		if status.ExpiresAt.After(now) {
			out = append(out, id)
		}
	}

	return out
}

// ActiveBoosters :
// Returns the identifiers of the boosters active at the
// input time.
//
// The `now` defines the reference time.
func (a *Agent) ActiveBoosters(now time.Time) []string {
	out := make([]string, 0, len(a.Boosters))

	for id, status := range a.Boosters {
		if status.ExpiresAt.After(now) {
			out = append(out, id)
		}
	}

	return out
}

// ActiveOfficerStatuses :
// Returns the officers active at the input time along
// with their hiring status.
//
// The `now` defines the reference time.
func (a *Agent) ActiveOfficerStatuses(now time.Time) map[string]OfficerStatus {
	out := make(map[string]OfficerStatus)

	for id, status := range a.Officers {
		if status.ExpiresAt.After(now) {
			out[id] = status
		}
	}

	return out
}

// ActiveBoosterStatuses :
// Returns the boosters active at the input time along
// with their activation status.
//
// The `now` defines the reference time.
func (a *Agent) ActiveBoosterStatuses(now time.Time) map[string]BoosterStatus {
	out := make(map[string]BoosterStatus)

	for id, status := range a.Boosters {
		if status.ExpiresAt.After(now) {
			out[id] = status
		}
	}

	return out
}

// ColonyLimit :
// Returns the maximum number of planets this agent can
// own. The limit grows with the astrophysics technology.
func (a *Agent) ColonyLimit() int {
	return 1 + a.Technologies[model.AstrophysicsTech]/2
}

// FleetSlots :
// Returns the maximum number of simultaneously active
// fleets of this agent, including the returning ones.
//
// The `cat` defines the catalog used to resolve officer
// bonuses.
//
// The `now` defines the reference time for the officer
// activity check.
func (a *Agent) FleetSlots(cat *model.Catalog, now time.Time) int {
	return 2 + a.Technologies[model.ComputerTech] + cat.SlotBonus(a.ActiveOfficers(now), model.BonusFleetSlots)
}

// BuildQueueSlots :
// Returns the maximum length of the build queue of the
// planets owned by this agent.
//
// The `cat` defines the catalog used to resolve officer
// bonuses.
//
// The `now` defines the reference time for the officer
// activity check.
func (a *Agent) BuildQueueSlots(cat *model.Catalog, now time.Time) int {
	return 1 + cat.SlotBonus(a.ActiveOfficers(now), model.BonusBuildQueueSlots)
}

// ValidBalance :
// Determines whether the currency balance of the agent is
// a usable number. A balance that fails this check makes
// every purchase fail with a corruption error.
func (a *Agent) ValidBalance() bool {
	if math.IsNaN(a.Currency) || math.IsInf(a.Currency, 0) {
		return false
	}

	return a.Currency >= 0 && a.Currency <= model.SafeAmountMax
}

// recordDecision :
// Prepends an entry to the decision ring of the agent,
// evicting the oldest entry when the ring is full.
//
// The `entry` defines the outcome to record.
//
// The `cap` defines the maximum size of the ring.
func (a *Agent) recordDecision(entry DecisionEntry, cap int) {
	a.Decisions = append([]DecisionEntry{entry}, a.Decisions...)

	if len(a.Decisions) > cap {
		a.Decisions = a.Decisions[:cap]
	}
}

// recordSpyReport :
// Prepends a report to the spy report ring of the agent,
// evicting the oldest report when the ring is full.
//
// The `report` defines the report to record.
//
// The `cap` defines the maximum size of the ring.
func (a *Agent) recordSpyReport(report SpyReport, cap int) {
	a.SpyReports = append([]SpyReport{report}, a.SpyReports...)

	if len(a.SpyReports) > cap {
		a.SpyReports = a.SpyReports[:cap]
	}
}
