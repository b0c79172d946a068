package game

import (
	"starhold_server/internal/model"
	"time"
)

// Missions that a fleet can be tasked with. The mission
// determines the handler executed when the fleet reaches
// its destination.
const (
	MissionTransport = "transport"
	MissionDeploy    = "deploy"
	MissionAttack    = "attack"
	MissionRecycle   = "recycle"
	MissionEspionage = "espionage"
	MissionColonize  = "colonize"
)

// validMission :
// Determines whether the input string refers to one of
// the missions of the game.
//
// The `mission` defines the value to check.
//
// Returns `true` for a known mission.
func validMission(mission string) bool {
	switch mission {
	case MissionTransport, MissionDeploy, MissionAttack, MissionRecycle, MissionEspionage, MissionColonize:
		return true
	}

	return false
}

// Fleet :
// Describes a group of ships travelling between two
// planets. A fleet is created by a dispatch command and
// deleted when it returns to its origin, delivers itself
// (deploy, colonize) or is annihilated in a fight.
//
// The `ID` defines the identifier of the fleet.
//
// The `Owner` defines the identifier of the owning
// agent.
//
// The `Ships` define the composition by ship type. All
// the counts are positive.
//
// The `Mission` defines the purpose of the fleet.
//
// The `Origin` defines the identifier of the planet the
// fleet departed from.
//
// The `Destination` defines the identifier of the planet
// the fleet is headed to.
//
// The `Cargo` defines the carried resources.
//
// The `Fuel` defines the deuterium consumed at dispatch.
// Used to compute the refund when the fleet is recalled
// before the midpoint of its trip.
//
// The `DepartedAt` defines the departure time of the
// current leg.
//
// The `ArrivesAt` defines the arrival time of the
// current leg.
//
// The `Returning` indicates whether the fleet is on its
// way back to its origin.
//
// The `RecalledAt` defines when the fleet was recalled,
// if it was.
type Fleet struct {
	ID    string         `json:"id"`
	Owner string         `json:"owner"`
	Ships map[string]int `json:"ships"`

	Mission     string `json:"mission"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	Cargo model.Resources `json:"cargo"`
	Fuel  float64         `json:"fuel"`

	DepartedAt time.Time  `json:"departed_at"`
	ArrivesAt  time.Time  `json:"arrives_at"`
	Returning  bool       `json:"returning"`
	RecalledAt *time.Time `json:"recalled_at,omitempty"`
}

// flipToReturn :
// Sends the fleet back to its origin: the returning flag
// is raised and a new leg starts now with the input
// duration.
//
// The `now` defines the departure time of the return
// leg.
//
// The `travel` defines the duration of the return leg.
func (f *Fleet) flipToReturn(now time.Time, travel time.Duration) {
	f.Returning = true
	f.DepartedAt = now
	f.ArrivesAt = now.Add(travel)
}

// progress :
// Returns the fraction of the current leg already flown
// at the input time, clamped to `[0; 1]`.
//
// The `now` defines the reference time.
func (f *Fleet) progress(now time.Time) float64 {
	total := f.ArrivesAt.Sub(f.DepartedAt)
	if total <= 0 {
		return 1
	}

	elapsed := now.Sub(f.DepartedAt)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 1
	}

	return float64(elapsed) / float64(total)
}

// shipCount :
// Returns the total number of ships of the fleet.
func (f *Fleet) shipCount() int {
	total := 0

	for _, count := range f.Ships {
		total += count
	}

	return total
}
