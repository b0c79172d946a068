package model

// BuildingDesc :
// Defines the static description of a building as it can
// be constructed on a planet. The costs are expressed for
// the first level and grow according to the progression
// factor.
//
// The `ID` defines the identifier of the building. It is
// used as the key of all the level maps of planets.
//
// The `Name` defines the human readable name.
//
// The `BaseCost` defines the cost of the first level of
// this building.
//
// The `CostFactor` defines the multiplier applied to the
// cost for each additional level.
//
// The `Prerequisites` define the levels of buildings and
// technologies that need to be reached before this item
// becomes available. Keys refer either to buildings or
// to technologies.
type BuildingDesc struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	BaseCost      Resources      `json:"base_cost"`
	CostFactor    float64        `json:"cost_factor"`
	Prerequisites map[string]int `json:"prerequisites,omitempty"`
}

// Identifiers for the buildings of the game. These keys
// are also the ones persisted in the planets' blobs.
const (
	MetalMine            = "metalMine"
	CrystalMine          = "crystalMine"
	DeuteriumSynthesizer = "deuteriumSynthesizer"
	SolarPlant           = "solarPlant"
	FusionReactor        = "fusionReactor"
	MetalStorage         = "metalStorage"
	CrystalStorage       = "crystalStorage"
	DeuteriumTank        = "deuteriumTank"
	RoboticsFactory      = "roboticsFactory"
	Shipyard             = "shipyard"
	ResearchLab          = "researchLab"
	NaniteFactory        = "naniteFactory"
)

// BuildingsModule :
// Regroups the descriptions of all the buildings that can
// be constructed in the game. Unlike most of the dynamic
// state this data never changes during the life of the
// server: it is assembled once at startup and shared by
// all the components that need to validate or cost an
// action.
type BuildingsModule struct {
	buildings map[string]BuildingDesc
}

// NewBuildingsModule :
// Creates the module and populates the static description
// of each building.
//
// Returns the created module.
func NewBuildingsModule() *BuildingsModule {
	m := &BuildingsModule{
		buildings: make(map[string]BuildingDesc),
	}

	// The default progression factor is 1.5: the fusion
	// reactor and the storages override it.
	m.register(BuildingDesc{
		ID:       MetalMine,
		Name:     "Metal mine",
		BaseCost: NewResources(60, 15, 0),
	})
	m.register(BuildingDesc{
		ID:       CrystalMine,
		Name:     "Crystal mine",
		BaseCost: NewResources(48, 24, 0),
	})
	m.register(BuildingDesc{
		ID:       DeuteriumSynthesizer,
		Name:     "Deuterium synthesizer",
		BaseCost: NewResources(225, 75, 0),
	})
	m.register(BuildingDesc{
		ID:       SolarPlant,
		Name:     "Solar plant",
		BaseCost: NewResources(75, 30, 0),
	})
	m.register(BuildingDesc{
		ID:         FusionReactor,
		Name:       "Fusion reactor",
		BaseCost:   NewResources(900, 360, 180),
		CostFactor: 1.8,
		Prerequisites: map[string]int{
			DeuteriumSynthesizer: 5,
			EnergyTech:           3,
		},
	})
	m.register(BuildingDesc{
		ID:         MetalStorage,
		Name:       "Metal storage",
		BaseCost:   NewResources(1000, 0, 0),
		CostFactor: 2.0,
	})
	m.register(BuildingDesc{
		ID:         CrystalStorage,
		Name:       "Crystal storage",
		BaseCost:   NewResources(1000, 500, 0),
		CostFactor: 2.0,
	})
	m.register(BuildingDesc{
		ID:         DeuteriumTank,
		Name:       "Deuterium tank",
		BaseCost:   NewResources(1000, 1000, 0),
		CostFactor: 2.0,
	})
	m.register(BuildingDesc{
		ID:       RoboticsFactory,
		Name:     "Robotics factory",
		BaseCost: NewResources(400, 120, 200),
	})
	m.register(BuildingDesc{
		ID:       Shipyard,
		Name:     "Shipyard",
		BaseCost: NewResources(400, 200, 100),
		Prerequisites: map[string]int{
			RoboticsFactory: 2,
		},
	})
	m.register(BuildingDesc{
		ID:       ResearchLab,
		Name:     "Research lab",
		BaseCost: NewResources(200, 400, 200),
	})
	m.register(BuildingDesc{
		ID:       NaniteFactory,
		Name:     "Nanite factory",
		BaseCost: NewResources(1000000, 500000, 100000),
		Prerequisites: map[string]int{
			RoboticsFactory: 10,
			ComputerTech:    10,
		},
	})

	return m
}

// register :
// Adds the input description to the internal table while
// applying the default progression factor when none is
// provided.
//
// The `desc` defines the building to register.
func (m *BuildingsModule) register(desc BuildingDesc) {
	if desc.CostFactor == 0 {
		desc.CostFactor = 1.5
	}

	m.buildings[desc.ID] = desc
}

// Exists :
// Determines whether a building with the specified key is
// part of the game.
//
// The `id` defines the key to search for.
//
// Returns `true` if the building exists.
func (m *BuildingsModule) Exists(id string) bool {
	_, ok := m.buildings[id]
	return ok
}

// Get :
// Retrieves the description of the building with the input
// key.
//
// The `id` defines the key to search for.
//
// Returns the description along with a status indicating
// whether it could be found.
func (m *BuildingsModule) Get(id string) (BuildingDesc, bool) {
	desc, ok := m.buildings[id]
	return desc, ok
}

// IDs :
// Returns the list of the keys of all registered buildings.
// The order of the returned slice is not specified.
func (m *BuildingsModule) IDs() []string {
	out := make([]string, 0, len(m.buildings))
	for id := range m.buildings {
		out = append(out, id)
	}

	return out
}
