package model

import (
	"fmt"

	"github.com/spf13/viper"
)

// configuration :
// Regroups the values that can be customized through the
// configuration file to alter the pacing of the game.
//
// The `GameSpeed` defines the global acceleration factor
// applied to production and to the time-to-complete
// formulas.
// The default value is 10.
type configuration struct {
	GameSpeed float64
}

// parseConfiguration :
// Used to fetch the catalog settings from the configuration
// file, relying on defaults when nothing is provided.
//
// Returns the parsed configuration.
func parseConfiguration() configuration {
	config := configuration{
		GameSpeed: 10,
	}

	if viper.IsSet("Game.Speed") {
		config.GameSpeed = viper.GetFloat64("Game.Speed")
	}

	if config.GameSpeed <= 0 {
		panic(fmt.Errorf("invalid game speed fetched from configuration %f", config.GameSpeed))
	}

	return config
}

// Catalog :
// Aggregates all the immutable content tables of the game
// along with the pure formulas deriving costs, durations
// and production rates from them. The catalog is built
// once at startup and shared by every component: it holds
// no mutable state so no locking is ever needed to access
// it.
//
// The `Buildings` exposes the buildings table.
//
// The `Ships` exposes the ships table.
//
// The `Defenses` exposes the defenses table.
//
// The `Technologies` exposes the technologies table.
//
// The `Premium` exposes the premium content (officers,
// boosters, crates and staking pools).
//
// The `speed` defines the global game speed applied to
// the formulas.
type Catalog struct {
	Buildings    *BuildingsModule
	Ships        *ShipsModule
	Defenses     *DefensesModule
	Technologies *TechnologiesModule
	Premium      *PremiumModule

	speed float64
}

// NewCatalog :
// Creates the catalog of the game with the configuration
// fetched from the environment.
//
// Returns the created catalog.
func NewCatalog() *Catalog {
	config := parseConfiguration()

	return &Catalog{
		Buildings:    NewBuildingsModule(),
		Ships:        NewShipsModule(),
		Defenses:     NewDefensesModule(),
		Technologies: NewTechnologiesModule(),
		Premium:      NewPremiumModule(),

		speed: config.GameSpeed,
	}
}

// NewCatalogWithSpeed :
// Creates a catalog with an explicit game speed instead of
// fetching it from the configuration. This is mostly used
// by the tests to pin the pacing of the formulas.
//
// The `speed` defines the game speed to use.
//
// Returns the created catalog.
func NewCatalogWithSpeed(speed float64) *Catalog {
	if speed <= 0 {
		panic(fmt.Errorf("invalid game speed %f", speed))
	}

	return &Catalog{
		Buildings:    NewBuildingsModule(),
		Ships:        NewShipsModule(),
		Defenses:     NewDefensesModule(),
		Technologies: NewTechnologiesModule(),
		Premium:      NewPremiumModule(),

		speed: speed,
	}
}

// GameSpeed :
// Returns the global game speed used by the formulas.
func (c *Catalog) GameSpeed() float64 {
	return c.speed
}

// CheckPrerequisites :
// Verifies that the input level maps satisfy the specified
// prerequisites. Each key of the requirements refers either
// to a building (checked against the planet's levels) or to
// a technology (checked against the agent's levels). The
// prerequisites of the required items themselves don't need
// to be revisited: a level can only have been reached by
// satisfying them in the first place.
//
// The `reqs` define the required levels.
//
// The `buildings` define the building levels of the planet.
//
// The `techs` define the technology levels of the agent.
//
// Returns an error naming the first missing requirement or
// `nil` when everything is satisfied.
func (c *Catalog) CheckPrerequisites(reqs map[string]int, buildings map[string]int, techs map[string]int) error {
	for id, level := range reqs {
		if c.Buildings.Exists(id) {
			if buildings[id] < level {
				return fmt.Errorf("requirement not met: %s level %d", id, level)
			}

			continue
		}

		if c.Technologies.Exists(id) {
			if techs[id] < level {
				return fmt.Errorf("requirement not met: %s level %d", id, level)
			}

			continue
		}

		return fmt.Errorf("unknown requirement \"%s\"", id)
	}

	return nil
}
