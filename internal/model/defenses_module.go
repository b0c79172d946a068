package model

// DefenseDesc :
// Defines the static description of a defense system. The
// cost is linear in the number of systems to build. Like
// ships, the combat values are the base ones and scale
// with the technologies of the defending agent.
//
// The `ID` defines the identifier of the defense. It is
// used as the key of the defenses map of planets.
//
// The `Name` defines the human readable name.
//
// The `Cost` defines the cost of a single unit.
//
// The `Weapon` defines the base weapon value.
//
// The `Shield` defines the base shield value.
//
// The `Hull` defines the base structural integrity.
//
// The `Cap` defines the maximum number of systems of this
// kind that can exist on a single planet. A value of `0`
// indicates that the defense is not capped. This is used
// for the shield domes.
//
// The `Prerequisites` define the levels of buildings and
// technologies required to build this system.
type DefenseDesc struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Cost          Resources      `json:"cost"`
	Weapon        float64        `json:"weapon"`
	Shield        float64        `json:"shield"`
	Hull          float64        `json:"hull"`
	Cap           int            `json:"cap,omitempty"`
	Prerequisites map[string]int `json:"prerequisites,omitempty"`
}

// Identifiers for the defense systems of the game.
const (
	RocketLauncher  = "rocketLauncher"
	LightLaser      = "lightLaser"
	HeavyLaser      = "heavyLaser"
	GaussCannon     = "gaussCannon"
	IonCannon       = "ionCannon"
	PlasmaTurret    = "plasmaTurret"
	SmallShieldDome = "smallShieldDome"
	LargeShieldDome = "largeShieldDome"
)

// DefensesModule :
// Regroups the descriptions of all the defense systems
// that can be built in the game.
type DefensesModule struct {
	defenses map[string]DefenseDesc
}

// NewDefensesModule :
// Creates the module and populates the static description
// of each defense system.
//
// Returns the created module.
func NewDefensesModule() *DefensesModule {
	m := &DefensesModule{
		defenses: make(map[string]DefenseDesc),
	}

	m.register(DefenseDesc{
		ID:     RocketLauncher,
		Name:   "Rocket launcher",
		Cost:   NewResources(2000, 0, 0),
		Weapon: 80,
		Shield: 20,
		Hull:   2000,
		Prerequisites: map[string]int{
			Shipyard: 1,
		},
	})
	m.register(DefenseDesc{
		ID:     LightLaser,
		Name:   "Light laser",
		Cost:   NewResources(1500, 500, 0),
		Weapon: 100,
		Shield: 25,
		Hull:   2000,
		Prerequisites: map[string]int{
			Shipyard:  2,
			LaserTech: 3,
		},
	})
	m.register(DefenseDesc{
		ID:     HeavyLaser,
		Name:   "Heavy laser",
		Cost:   NewResources(6000, 2000, 0),
		Weapon: 250,
		Shield: 100,
		Hull:   8000,
		Prerequisites: map[string]int{
			Shipyard:   4,
			EnergyTech: 3,
			LaserTech:  6,
		},
	})
	m.register(DefenseDesc{
		ID:     GaussCannon,
		Name:   "Gauss cannon",
		Cost:   NewResources(20000, 15000, 2000),
		Weapon: 1100,
		Shield: 200,
		Hull:   35000,
		Prerequisites: map[string]int{
			Shipyard:      6,
			EnergyTech:    6,
			WeaponsTech:   3,
			ShieldingTech: 1,
		},
	})
	m.register(DefenseDesc{
		ID:     IonCannon,
		Name:   "Ion cannon",
		Cost:   NewResources(5000, 3000, 0),
		Weapon: 150,
		Shield: 500,
		Hull:   8000,
		Prerequisites: map[string]int{
			Shipyard: 4,
			IonTech:  4,
		},
	})
	m.register(DefenseDesc{
		ID:     PlasmaTurret,
		Name:   "Plasma turret",
		Cost:   NewResources(50000, 50000, 30000),
		Weapon: 3000,
		Shield: 300,
		Hull:   100000,
		Prerequisites: map[string]int{
			Shipyard:   8,
			PlasmaTech: 7,
		},
	})
	m.register(DefenseDesc{
		ID:     SmallShieldDome,
		Name:   "Small shield dome",
		Cost:   NewResources(10000, 10000, 0),
		Weapon: 1,
		Shield: 2000,
		Hull:   20000,
		Cap:    1,
		Prerequisites: map[string]int{
			Shipyard:      1,
			ShieldingTech: 2,
		},
	})
	m.register(DefenseDesc{
		ID:     LargeShieldDome,
		Name:   "Large shield dome",
		Cost:   NewResources(50000, 50000, 0),
		Weapon: 1,
		Shield: 10000,
		Hull:   100000,
		Cap:    1,
		Prerequisites: map[string]int{
			Shipyard:      6,
			ShieldingTech: 6,
		},
	})

	return m
}

// register :
// Adds the input description to the internal table.
//
// The `desc` defines the defense to register.
func (m *DefensesModule) register(desc DefenseDesc) {
	m.defenses[desc.ID] = desc
}

// Exists :
// Determines whether a defense with the specified key is
// part of the game.
//
// The `id` defines the key to search for.
//
// Returns `true` if the defense exists.
func (m *DefensesModule) Exists(id string) bool {
	_, ok := m.defenses[id]
	return ok
}

// Get :
// Retrieves the description of the defense with the input
// key.
//
// The `id` defines the key to search for.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *DefensesModule) Get(id string) (DefenseDesc, bool) {
	desc, ok := m.defenses[id]
	return desc, ok
}

// IDs :
// Returns the list of the keys of all registered defense
// systems.
func (m *DefensesModule) IDs() []string {
	out := make([]string, 0, len(m.defenses))
	for id := range m.defenses {
		out = append(out, id)
	}

	return out
}
