package model

// ShipDesc :
// Defines the static description of a ship. The cost is
// linear in the number of ships to build. The combat
// values are the base ones: the engine scales them with
// the technologies of the owning agent when a fight is
// resolved.
//
// The `ID` defines the identifier of the ship. It is used
// as the key of the ships map of planets and fleets.
//
// The `Name` defines the human readable name.
//
// The `Cost` defines the cost of a single unit.
//
// The `Cargo` defines the amount of resources that one
// unit can carry.
//
// The `Speed` defines the base speed of the ship. It is
// only used to compare and display, the travel time being
// driven by the distance between the coordinates.
//
// The `Fuel` defines the base deuterium consumption of a
// single unit for a reference distance.
//
// The `Weapon` defines the base weapon value.
//
// The `Shield` defines the base shield value.
//
// The `Hull` defines the base structural integrity. The
// effective hit points used in a fight derive from this
// value and the armour technology.
//
// The `RapidFire` defines for each target type (ship or
// defense) the rapid fire value `r`: after a shot at such
// a target the attacker fires again with a probability of
// `(r-1)/r`.
//
// The `Prerequisites` define the levels of buildings and
// technologies required to build this unit.
type ShipDesc struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Cost          Resources      `json:"cost"`
	Cargo         float64        `json:"cargo"`
	Speed         int            `json:"speed"`
	Fuel          float64        `json:"fuel"`
	Weapon        float64        `json:"weapon"`
	Shield        float64        `json:"shield"`
	Hull          float64        `json:"hull"`
	RapidFire     map[string]int `json:"rapid_fire,omitempty"`
	Prerequisites map[string]int `json:"prerequisites,omitempty"`
}

// Identifiers for the ships of the game.
const (
	SmallCargo     = "smallCargo"
	LargeCargo     = "largeCargo"
	LightFighter   = "lightFighter"
	HeavyFighter   = "heavyFighter"
	Cruiser        = "cruiser"
	Battleship     = "battleship"
	ColonyShip     = "colonyShip"
	Recycler       = "recycler"
	EspionageProbe = "espionageProbe"
	Bomber         = "bomber"
	Destroyer      = "destroyer"
	Battlecruiser  = "battlecruiser"
)

// ShipsModule :
// Regroups the descriptions of all the ships that can be
// built in the game.
type ShipsModule struct {
	ships map[string]ShipDesc
}

// NewShipsModule :
// Creates the module and populates the static description
// of each ship.
//
// Returns the created module.
func NewShipsModule() *ShipsModule {
	m := &ShipsModule{
		ships: make(map[string]ShipDesc),
	}

	m.register(ShipDesc{
		ID:     SmallCargo,
		Name:   "Small cargo",
		Cost:   NewResources(2000, 2000, 0),
		Cargo:  5000,
		Speed:  5000,
		Fuel:   10,
		Weapon: 5,
		Shield: 10,
		Hull:   4000,
		Prerequisites: map[string]int{
			Shipyard:            2,
			CombustionDriveTech: 2,
		},
	})
	m.register(ShipDesc{
		ID:     LargeCargo,
		Name:   "Large cargo",
		Cost:   NewResources(6000, 6000, 0),
		Cargo:  25000,
		Speed:  7500,
		Fuel:   50,
		Weapon: 5,
		Shield: 25,
		Hull:   12000,
		Prerequisites: map[string]int{
			Shipyard:            4,
			CombustionDriveTech: 6,
		},
	})
	m.register(ShipDesc{
		ID:     LightFighter,
		Name:   "Light fighter",
		Cost:   NewResources(3000, 1000, 0),
		Cargo:  50,
		Speed:  12500,
		Fuel:   20,
		Weapon: 50,
		Shield: 10,
		Hull:   4000,
		Prerequisites: map[string]int{
			Shipyard:            1,
			CombustionDriveTech: 1,
		},
	})
	m.register(ShipDesc{
		ID:     HeavyFighter,
		Name:   "Heavy fighter",
		Cost:   NewResources(6000, 4000, 0),
		Cargo:  100,
		Speed:  10000,
		Fuel:   75,
		Weapon: 150,
		Shield: 25,
		Hull:   10000,
		RapidFire: map[string]int{
			SmallCargo: 3,
		},
		Prerequisites: map[string]int{
			Shipyard:         3,
			ImpulseDriveTech: 2,
			ArmourTech:       2,
		},
	})
	m.register(ShipDesc{
		ID:     Cruiser,
		Name:   "Cruiser",
		Cost:   NewResources(20000, 7000, 2000),
		Cargo:  800,
		Speed:  15000,
		Fuel:   300,
		Weapon: 400,
		Shield: 50,
		Hull:   27000,
		RapidFire: map[string]int{
			LightFighter:   6,
			RocketLauncher: 10,
		},
		Prerequisites: map[string]int{
			Shipyard:         5,
			ImpulseDriveTech: 4,
			IonTech:          2,
		},
	})
	m.register(ShipDesc{
		ID:     Battleship,
		Name:   "Battleship",
		Cost:   NewResources(45000, 15000, 0),
		Cargo:  1500,
		Speed:  10000,
		Fuel:   500,
		Weapon: 1000,
		Shield: 200,
		Hull:   60000,
		Prerequisites: map[string]int{
			Shipyard:            7,
			HyperspaceDriveTech: 4,
		},
	})
	m.register(ShipDesc{
		ID:     ColonyShip,
		Name:   "Colony ship",
		Cost:   NewResources(10000, 20000, 10000),
		Cargo:  7500,
		Speed:  2500,
		Fuel:   1000,
		Weapon: 50,
		Shield: 100,
		Hull:   30000,
		Prerequisites: map[string]int{
			Shipyard:         4,
			ImpulseDriveTech: 3,
		},
	})
	m.register(ShipDesc{
		ID:     Recycler,
		Name:   "Recycler",
		Cost:   NewResources(10000, 6000, 2000),
		Cargo:  20000,
		Speed:  2000,
		Fuel:   300,
		Weapon: 1,
		Shield: 10,
		Hull:   16000,
		Prerequisites: map[string]int{
			Shipyard:            4,
			CombustionDriveTech: 6,
			ShieldingTech:       2,
		},
	})
	m.register(ShipDesc{
		ID:     EspionageProbe,
		Name:   "Espionage probe",
		Cost:   NewResources(0, 1000, 0),
		Cargo:  5,
		Speed:  100000000,
		Fuel:   1,
		Weapon: 0,
		Shield: 0,
		Hull:   1000,
		Prerequisites: map[string]int{
			Shipyard:            3,
			EspionageTech:       2,
			CombustionDriveTech: 3,
		},
	})
	m.register(ShipDesc{
		ID:     Bomber,
		Name:   "Bomber",
		Cost:   NewResources(50000, 25000, 15000),
		Cargo:  500,
		Speed:  4000,
		Fuel:   1000,
		Weapon: 1000,
		Shield: 500,
		Hull:   75000,
		RapidFire: map[string]int{
			RocketLauncher: 20,
			LightLaser:     20,
			HeavyLaser:     10,
		},
		Prerequisites: map[string]int{
			Shipyard:         8,
			ImpulseDriveTech: 6,
			PlasmaTech:       5,
		},
	})
	m.register(ShipDesc{
		ID:     Destroyer,
		Name:   "Destroyer",
		Cost:   NewResources(60000, 50000, 15000),
		Cargo:  2000,
		Speed:  5000,
		Fuel:   1000,
		Weapon: 2000,
		Shield: 500,
		Hull:   110000,
		RapidFire: map[string]int{
			LightLaser:     10,
			EspionageProbe: 5,
		},
		Prerequisites: map[string]int{
			Shipyard:            9,
			HyperspaceDriveTech: 6,
			HyperspaceTech:      5,
		},
	})
	m.register(ShipDesc{
		ID:     Battlecruiser,
		Name:   "Battlecruiser",
		Cost:   NewResources(30000, 40000, 15000),
		Cargo:  750,
		Speed:  10000,
		Fuel:   250,
		Weapon: 700,
		Shield: 400,
		Hull:   70000,
		RapidFire: map[string]int{
			SmallCargo:   3,
			LargeCargo:   3,
			HeavyFighter: 4,
			Cruiser:      4,
			Battleship:   7,
		},
		Prerequisites: map[string]int{
			Shipyard:            8,
			HyperspaceDriveTech: 5,
			HyperspaceTech:      4,
			LaserTech:           12,
		},
	})

	return m
}

// register :
// Adds the input description to the internal table.
//
// The `desc` defines the ship to register.
func (m *ShipsModule) register(desc ShipDesc) {
	m.ships[desc.ID] = desc
}

// Exists :
// Determines whether a ship with the specified key is
// part of the game.
//
// The `id` defines the key to search for.
//
// Returns `true` if the ship exists.
func (m *ShipsModule) Exists(id string) bool {
	_, ok := m.ships[id]
	return ok
}

// Get :
// Retrieves the description of the ship with the input
// key.
//
// The `id` defines the key to search for.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *ShipsModule) Get(id string) (ShipDesc, bool) {
	desc, ok := m.ships[id]
	return desc, ok
}

// IDs :
// Returns the list of the keys of all registered ships.
func (m *ShipsModule) IDs() []string {
	out := make([]string, 0, len(m.ships))
	for id := range m.ships {
		out = append(out, id)
	}

	return out
}
