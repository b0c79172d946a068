package model

import "time"

// Bonus types granted by officers. Slot bonuses extend the
// structural limits of an agent while production bonuses
// multiply the output of the mines.
const (
	BonusBuildQueueSlots = "buildQueueSlots"
	BonusFleetSlots      = "fleetSlots"
)

// Resource selectors used by boosters. A booster either
// targets a single resource or all of them at once.
const (
	BoostMetal         = "metal"
	BoostCrystal       = "crystal"
	BoostDeuterium     = "deuterium"
	BoostAllProduction = "allProduction"
)

// OfficerDesc :
// Defines the static description of an officer that can
// be hired by an agent with premium currency. An officer
// is active for a fixed duration and is extended when it
// is hired again before expiring.
//
// The `ID` defines the identifier of the officer.
//
// The `Name` defines the human readable name.
//
// The `Price` defines the premium currency cost to hire
// the officer for one duration.
//
// The `Duration` defines for how long a single hire keeps
// the officer active.
//
// The `SlotBonuses` define the structural bonuses granted
// while the officer is active, keyed by bonus type.
//
// The `ProductionBonus` defines per-resource production
// multipliers granted while the officer is active. Keys
// are the resource selectors defined above.
type OfficerDesc struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Price           float64            `json:"price"`
	Duration        time.Duration      `json:"duration"`
	SlotBonuses     map[string]int     `json:"slot_bonuses,omitempty"`
	ProductionBonus map[string]float64 `json:"production_bonus,omitempty"`
}

// BoosterDesc :
// Defines the static description of a production booster.
// A booster multiplies the production of a resource for a
// short duration and cannot be stacked on itself.
//
// The `ID` defines the identifier of the booster.
//
// The `Name` defines the human readable name.
//
// The `Price` defines the premium currency cost.
//
// The `Duration` defines for how long the booster stays
// active once activated.
//
// The `Resource` defines which production is multiplied.
// The `allProduction` selector applies to every resource.
//
// The `Multiplier` defines the factor applied.
type BoosterDesc struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Price      float64       `json:"price"`
	Duration   time.Duration `json:"duration"`
	Resource   string        `json:"resource"`
	Multiplier float64       `json:"multiplier"`
}

// CrateDesc :
// Defines a purchasable crate of resources. The crate is
// delivered instantly to a planet of the buying agent.
//
// The `ID` defines the identifier of the crate.
//
// The `Price` defines the premium currency cost.
//
// The `Content` defines the delivered resources.
type CrateDesc struct {
	ID      string    `json:"id"`
	Price   float64   `json:"price"`
	Content Resources `json:"content"`
}

// PoolDesc :
// Defines a staking pool in which agents can lock premium
// currency to earn a yield over time.
//
// The `ID` defines the identifier of the pool.
//
// The `Name` defines the human readable name.
//
// The `APR` defines the yearly rate served by the pool.
//
// The `LockDuration` defines for how long a stake cannot
// be withdrawn. A value of `0` allows to unstake at any
// time.
//
// The `MinStake` defines the minimum amount that can be
// staked in one operation.
type PoolDesc struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	APR          float64       `json:"apr"`
	LockDuration time.Duration `json:"lock_duration"`
	MinStake     float64       `json:"min_stake"`
}

// Identifiers for the premium content of the game.
const (
	OfficerOverseer   = "overseer"
	OfficerAdmiral    = "admiral"
	OfficerEngineer   = "engineer"
	OfficerTechnocrat = "technocrat"
	OfficerProspector = "prospector"

	BoosterMetal      = "metalBooster"
	BoosterCrystal    = "crystalBooster"
	BoosterDeuterium  = "deuteriumBooster"
	BoosterProduction = "productionBooster"

	CrateSmall  = "smallCrate"
	CrateMedium = "mediumCrate"
	CrateLarge  = "largeCrate"

	PoolFlexible = "flexible"
	PoolEpoch30  = "epoch30"
	PoolEpoch90  = "epoch90"
)

// Premium currency rates charged to complete one remaining
// hour of the corresponding queue instantly.
const (
	SpeedupBuildingRate = 50.0
	SpeedupResearchRate = 75.0
	SpeedupShipyardRate = 40.0
)

// PremiumModule :
// Regroups the premium content of the game: officers,
// boosters, resource crates and staking pools.
type PremiumModule struct {
	officers map[string]OfficerDesc
	boosters map[string]BoosterDesc
	crates   map[string]CrateDesc
	pools    map[string]PoolDesc
}

// NewPremiumModule :
// Creates the module and populates the static description
// of the premium content.
//
// Returns the created module.
func NewPremiumModule() *PremiumModule {
	m := &PremiumModule{
		officers: make(map[string]OfficerDesc),
		boosters: make(map[string]BoosterDesc),
		crates:   make(map[string]CrateDesc),
		pools:    make(map[string]PoolDesc),
	}

	week := 7 * 24 * time.Hour
	day := 24 * time.Hour

	m.officers[OfficerOverseer] = OfficerDesc{
		ID:       OfficerOverseer,
		Name:     "Overseer",
		Price:    500,
		Duration: week,
		SlotBonuses: map[string]int{
			BonusBuildQueueSlots: 2,
		},
	}
	m.officers[OfficerAdmiral] = OfficerDesc{
		ID:       OfficerAdmiral,
		Name:     "Admiral",
		Price:    500,
		Duration: week,
		SlotBonuses: map[string]int{
			BonusFleetSlots: 2,
		},
	}
	m.officers[OfficerEngineer] = OfficerDesc{
		ID:       OfficerEngineer,
		Name:     "Engineer",
		Price:    350,
		Duration: week,
		ProductionBonus: map[string]float64{
			BoostDeuterium: 1.1,
		},
	}
	m.officers[OfficerTechnocrat] = OfficerDesc{
		ID:       OfficerTechnocrat,
		Name:     "Technocrat",
		Price:    350,
		Duration: week,
	}
	m.officers[OfficerProspector] = OfficerDesc{
		ID:       OfficerProspector,
		Name:     "Prospector",
		Price:    750,
		Duration: week,
		ProductionBonus: map[string]float64{
			BoostMetal:   1.25,
			BoostCrystal: 1.25,
		},
	}

	m.boosters[BoosterMetal] = BoosterDesc{
		ID:         BoosterMetal,
		Name:       "Metal booster",
		Price:      200,
		Duration:   day,
		Resource:   BoostMetal,
		Multiplier: 1.3,
	}
	m.boosters[BoosterCrystal] = BoosterDesc{
		ID:         BoosterCrystal,
		Name:       "Crystal booster",
		Price:      200,
		Duration:   day,
		Resource:   BoostCrystal,
		Multiplier: 1.3,
	}
	m.boosters[BoosterDeuterium] = BoosterDesc{
		ID:         BoosterDeuterium,
		Name:       "Deuterium booster",
		Price:      250,
		Duration:   day,
		Resource:   BoostDeuterium,
		Multiplier: 1.3,
	}
	m.boosters[BoosterProduction] = BoosterDesc{
		ID:         BoosterProduction,
		Name:       "Production booster",
		Price:      500,
		Duration:   day,
		Resource:   BoostAllProduction,
		Multiplier: 1.2,
	}

	m.crates[CrateSmall] = CrateDesc{
		ID:      CrateSmall,
		Price:   100,
		Content: NewResources(5000, 3000, 1000),
	}
	m.crates[CrateMedium] = CrateDesc{
		ID:      CrateMedium,
		Price:   450,
		Content: NewResources(25000, 15000, 5000),
	}
	m.crates[CrateLarge] = CrateDesc{
		ID:      CrateLarge,
		Price:   2000,
		Content: NewResources(125000, 75000, 25000),
	}

	m.pools[PoolFlexible] = PoolDesc{
		ID:       PoolFlexible,
		Name:     "Flexible pool",
		APR:      0.05,
		MinStake: 10,
	}
	m.pools[PoolEpoch30] = PoolDesc{
		ID:           PoolEpoch30,
		Name:         "30 days epoch",
		APR:          0.12,
		LockDuration: 30 * day,
		MinStake:     100,
	}
	m.pools[PoolEpoch90] = PoolDesc{
		ID:           PoolEpoch90,
		Name:         "90 days epoch",
		APR:          0.25,
		LockDuration: 90 * day,
		MinStake:     100,
	}

	return m
}

// GetOfficer :
// Retrieves the description of the officer with the input
// key.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *PremiumModule) GetOfficer(id string) (OfficerDesc, bool) {
	desc, ok := m.officers[id]
	return desc, ok
}

// GetBooster :
// Retrieves the description of the booster with the input
// key.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *PremiumModule) GetBooster(id string) (BoosterDesc, bool) {
	desc, ok := m.boosters[id]
	return desc, ok
}

// GetCrate :
// Retrieves the description of the crate with the input
// key.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *PremiumModule) GetCrate(id string) (CrateDesc, bool) {
	desc, ok := m.crates[id]
	return desc, ok
}

// GetPool :
// Retrieves the description of the staking pool with the
// input key.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *PremiumModule) GetPool(id string) (PoolDesc, bool) {
	desc, ok := m.pools[id]
	return desc, ok
}

// Officers :
// Returns the descriptions of all the officers.
func (m *PremiumModule) Officers() map[string]OfficerDesc {
	return m.officers
}

// Boosters :
// Returns the descriptions of all the boosters.
func (m *PremiumModule) Boosters() map[string]BoosterDesc {
	return m.boosters
}

// Pools :
// Returns the descriptions of all the staking pools.
func (m *PremiumModule) Pools() map[string]PoolDesc {
	return m.pools
}
