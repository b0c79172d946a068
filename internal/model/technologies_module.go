package model

// TechnologyDesc :
// Defines the static description of a technology that can
// be researched by an agent. Similarly to buildings, the
// cost is expressed for the first level and grows with the
// progression factor.
//
// The `ID` defines the identifier of the technology. It
// is used as the key of the technology map of agents.
//
// The `Name` defines the human readable name.
//
// The `BaseCost` defines the cost of the first level.
//
// The `CostFactor` defines the multiplier applied to the
// cost for each additional level.
//
// The `Prerequisites` define the levels of buildings and
// technologies that need to be reached on the researching
// planet (resp. by the researching agent) before this item
// becomes available.
type TechnologyDesc struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	BaseCost      Resources      `json:"base_cost"`
	CostFactor    float64        `json:"cost_factor"`
	Prerequisites map[string]int `json:"prerequisites,omitempty"`
}

// Identifiers for the fifteen technologies of the game.
const (
	EnergyTech          = "energy"
	LaserTech           = "laser"
	IonTech             = "ion"
	HyperspaceTech      = "hyperspace"
	PlasmaTech          = "plasma"
	WeaponsTech         = "weapons"
	ShieldingTech       = "shielding"
	ArmourTech          = "armour"
	EspionageTech       = "espionage"
	ComputerTech        = "computer"
	AstrophysicsTech    = "astrophysics"
	CombustionDriveTech = "combustionDrive"
	ImpulseDriveTech    = "impulseDrive"
	HyperspaceDriveTech = "hyperspaceDrive"
	GravitonTech        = "graviton"
)

// TechnologiesModule :
// Regroups the descriptions of all the technologies that
// can be researched in the game.
type TechnologiesModule struct {
	technologies map[string]TechnologyDesc
}

// NewTechnologiesModule :
// Creates the module and populates the static description
// of each technology.
//
// Returns the created module.
func NewTechnologiesModule() *TechnologiesModule {
	m := &TechnologiesModule{
		technologies: make(map[string]TechnologyDesc),
	}

	m.register(TechnologyDesc{
		ID:       EnergyTech,
		Name:     "Energy technology",
		BaseCost: NewResources(0, 800, 400),
		Prerequisites: map[string]int{
			ResearchLab: 1,
		},
	})
	m.register(TechnologyDesc{
		ID:       LaserTech,
		Name:     "Laser technology",
		BaseCost: NewResources(200, 100, 0),
		Prerequisites: map[string]int{
			ResearchLab: 1,
			EnergyTech:  2,
		},
	})
	m.register(TechnologyDesc{
		ID:       IonTech,
		Name:     "Ion technology",
		BaseCost: NewResources(1000, 300, 100),
		Prerequisites: map[string]int{
			ResearchLab: 4,
			LaserTech:   5,
			EnergyTech:  4,
		},
	})
	m.register(TechnologyDesc{
		ID:       HyperspaceTech,
		Name:     "Hyperspace technology",
		BaseCost: NewResources(0, 4000, 2000),
		Prerequisites: map[string]int{
			ResearchLab:   7,
			EnergyTech:    5,
			ShieldingTech: 5,
		},
	})
	m.register(TechnologyDesc{
		ID:       PlasmaTech,
		Name:     "Plasma technology",
		BaseCost: NewResources(2000, 4000, 1000),
		Prerequisites: map[string]int{
			ResearchLab: 4,
			EnergyTech:  8,
			LaserTech:   10,
			IonTech:     5,
		},
	})
	m.register(TechnologyDesc{
		ID:       WeaponsTech,
		Name:     "Weapons technology",
		BaseCost: NewResources(800, 200, 0),
		Prerequisites: map[string]int{
			ResearchLab: 4,
		},
	})
	m.register(TechnologyDesc{
		ID:       ShieldingTech,
		Name:     "Shielding technology",
		BaseCost: NewResources(200, 600, 0),
		Prerequisites: map[string]int{
			ResearchLab: 6,
			EnergyTech:  3,
		},
	})
	m.register(TechnologyDesc{
		ID:       ArmourTech,
		Name:     "Armour technology",
		BaseCost: NewResources(1000, 0, 0),
		Prerequisites: map[string]int{
			ResearchLab: 2,
		},
	})
	m.register(TechnologyDesc{
		ID:       EspionageTech,
		Name:     "Espionage technology",
		BaseCost: NewResources(200, 1000, 200),
		Prerequisites: map[string]int{
			ResearchLab: 3,
		},
	})
	m.register(TechnologyDesc{
		ID:       ComputerTech,
		Name:     "Computer technology",
		BaseCost: NewResources(0, 400, 600),
		Prerequisites: map[string]int{
			ResearchLab: 1,
		},
	})
	m.register(TechnologyDesc{
		ID:       AstrophysicsTech,
		Name:     "Astrophysics",
		BaseCost: NewResources(4000, 8000, 4000),
		Prerequisites: map[string]int{
			ResearchLab:      3,
			EspionageTech:    4,
			ImpulseDriveTech: 3,
		},
	})
	m.register(TechnologyDesc{
		ID:       CombustionDriveTech,
		Name:     "Combustion drive",
		BaseCost: NewResources(400, 0, 600),
		Prerequisites: map[string]int{
			ResearchLab: 1,
			EnergyTech:  1,
		},
	})
	m.register(TechnologyDesc{
		ID:       ImpulseDriveTech,
		Name:     "Impulse drive",
		BaseCost: NewResources(2000, 4000, 600),
		Prerequisites: map[string]int{
			ResearchLab: 2,
			EnergyTech:  1,
		},
	})
	m.register(TechnologyDesc{
		ID:       HyperspaceDriveTech,
		Name:     "Hyperspace drive",
		BaseCost: NewResources(10000, 20000, 6000),
		Prerequisites: map[string]int{
			ResearchLab:    7,
			HyperspaceTech: 3,
		},
	})
	m.register(TechnologyDesc{
		ID:       GravitonTech,
		Name:     "Graviton technology",
		BaseCost: NewResources(300000, 300000, 300000),
		Prerequisites: map[string]int{
			ResearchLab: 12,
		},
	})

	return m
}

// register :
// Adds the input description to the internal table while
// applying the default progression factor of 2 when none
// is provided.
//
// The `desc` defines the technology to register.
func (m *TechnologiesModule) register(desc TechnologyDesc) {
	if desc.CostFactor == 0 {
		desc.CostFactor = 2.0
	}

	m.technologies[desc.ID] = desc
}

// Exists :
// Determines whether a technology with the specified key
// is part of the game.
//
// The `id` defines the key to search for.
//
// Returns `true` if the technology exists.
func (m *TechnologiesModule) Exists(id string) bool {
	_, ok := m.technologies[id]
	return ok
}

// Get :
// Retrieves the description of the technology with the
// input key.
//
// The `id` defines the key to search for.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *TechnologiesModule) Get(id string) (TechnologyDesc, bool) {
	desc, ok := m.technologies[id]
	return desc, ok
}

// IDs :
// Returns the list of the keys of all the registered
// technologies.
func (m *TechnologiesModule) IDs() []string {
	out := make([]string, 0, len(m.technologies))
	for id := range m.technologies {
		out = append(out, id)
	}

	return out
}
