package game

import (
	"starhold_server/internal/model"
	"time"
)

// Outcomes of a battle from the attacker's point of view.
const (
	BattleWon  = "attacker_won"
	BattleLost = "defender_won"
	BattleDraw = "draw"
)

// BattleReport :
// Describes the outcome of a fight between a fleet and a
// planet. A copy is addressed to both involved agents and
// the report is persisted in an append-only table.
//
// The `ID` defines the identifier of the report.
//
// The `At` defines when the fight took place.
//
// The `Attacker` and `Defender` define the identifiers
// of the involved agents.
//
// The `Planet` defines the identifier of the attacked
// planet.
//
// The `Rounds` defines how many rounds were fought.
//
// The `Outcome` defines the result of the fight.
//
// The `AttackerLosses` and `DefenderLosses` define the
// destroyed units by type. Defender losses include the
// defense systems.
//
// The `AttackerSurvivors` define the attacking units
// that flew home.
//
// The `RebuiltDefenses` define the defense units that
// were rebuilt from their wreckage after the fight.
//
// The `Loot` defines the resources plundered by the
// attacker.
//
// The `Debris` defines the resources added to the
// debris field by the destroyed ships.
type BattleReport struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	Attacker string    `json:"attacker"`
	Defender string    `json:"defender"`
	Planet   string    `json:"planet"`

	Rounds  int    `json:"rounds"`
	Outcome string `json:"outcome"`

	AttackerLosses    map[string]int `json:"attacker_losses"`
	DefenderLosses    map[string]int `json:"defender_losses"`
	AttackerSurvivors map[string]int `json:"attacker_survivors"`
	RebuiltDefenses   map[string]int `json:"rebuilt_defenses"`

	Loot   model.Resources `json:"loot"`
	Debris model.Resources `json:"debris"`
}

// Kinds of fleet reports.
const (
	FleetDispatched = "dispatched"
	FleetArrived    = "arrived"
	FleetReturned   = "returned"
	FleetDeployed   = "deployed"
)

// FleetReport :
// Describes a milestone in the life of a fleet. Reports
// are persisted in an append-only table addressed to the
// fleet owner.
//
// The `ID` defines the identifier of the report.
//
// The `At` defines when the milestone occurred.
//
// The `Owner` defines the identifier of the fleet owner.
//
// The `Fleet` defines the identifier of the fleet.
//
// The `Kind` defines the milestone.
//
// The `Mission` defines the mission of the fleet.
//
// The `Origin` and `Destination` define the endpoints of
// the trip.
//
// The `Ships` define the composition at the time of the
// milestone.
//
// The `Cargo` defines the carried resources at the time
// of the milestone.
type FleetReport struct {
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
	Owner string    `json:"owner"`
	Fleet string    `json:"fleet"`

	Kind        string `json:"kind"`
	Mission     string `json:"mission"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	Ships map[string]int  `json:"ships"`
	Cargo model.Resources `json:"cargo"`
}

// SpyReport :
// Describes what an espionage mission managed to learn
// about a planet. The amount of revealed information
// depends on the info level reached by the probes: each
// level adds a layer on top of the previous ones.
//
// The `ID` defines the identifier of the report.
//
// The `At` defines when the planet was probed.
//
// The `Planet` defines the identifier of the probed
// planet.
//
// The `InfoLevel` defines the reached level, in `[1; 5]`.
//
// The `Resources` define the stored resources. Always
// present (level 1).
//
// The `Ships` define the docked ships (level 2).
//
// The `Defenses` define the defense systems (level 3).
//
// The `Buildings` define the building levels (level 4).
//
// The `Technologies` define the technology levels of the
// owner (level 5).
//
// The `ProbesLost` defines how many probes were shot
// down over the target.
type SpyReport struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Planet string    `json:"planet"`

	InfoLevel int `json:"info_level"`

	Resources    model.Resources `json:"resources"`
	Ships        map[string]int  `json:"ships,omitempty"`
	Defenses     map[string]int  `json:"defenses,omitempty"`
	Buildings    map[string]int  `json:"buildings,omitempty"`
	Technologies map[string]int  `json:"technologies,omitempty"`

	ProbesLost int `json:"probes_lost"`
}

// ScoreSnapshot :
// Describes the standing of an agent at a point in time.
// Snapshots are appended periodically so that the score
// progression of every agent can be charted.
//
// The `At` defines when the snapshot was taken.
//
// The `Agent` defines the identifier of the agent.
//
// The `Score` defines the score at that time.
//
// The `Planets` defines the number of owned planets.
type ScoreSnapshot struct {
	At      time.Time `json:"at"`
	Agent   string    `json:"agent"`
	Score   float64   `json:"score"`
	Planets int       `json:"planets"`
}

// Message :
// Describes a private message addressed to an agent by
// the system (out-of-scope adapters may add their own
// senders).
//
// The `ID` defines the identifier of the message.
//
// The `At` defines when the message was sent.
//
// The `Recipient` defines the addressed agent.
//
// The `Subject` defines the subject line.
//
// The `Body` defines the content.
type Message struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}
