package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Provenance of a star system name.
const (
	// NameSeeded indicates a name resolved from the
	// pre-seeded table of well known systems.
	NameSeeded = "seeded"

	// NameGenerated indicates a procedurally generated
	// name.
	NameGenerated = "generated"

	// NameByAgent indicates a name chosen by an agent
	// present in the system.
	NameByAgent = "agent"
)

// StarSystem :
// Describes the naming state of a system of the universe.
// An entry is created the first time a system is occupied
// or explicitly named.
//
// The `ID` defines the identifier of the system, built
// from its coordinates as `galaxy:system`.
//
// The `Name` defines the current name. Unique across the
// whole universe.
//
// The `Provenance` defines how the name was obtained.
//
// The `NamedBy` defines the agent that chose the name
// when the provenance is `agent`.
//
// The `NamedAt` defines when the entry was created or
// last renamed.
type StarSystem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Provenance string    `json:"provenance"`
	NamedBy    string    `json:"named_by,omitempty"`
	NamedAt    time.Time `json:"named_at"`
}

// seededSystemNames :
// Names attributed to the first systems of the first
// galaxy. Everything else receives a generated name on
// first occupancy.
var seededSystemNames = map[string]string{
	"1:1": "Sol",
	"1:2": "Alpha Centauri",
	"1:3": "Barnard",
	"1:4": "Sirius",
	"1:5": "Procyon",
	"1:6": "Altair",
	"1:7": "Vega",
	"1:8": "Arcturus",
	"1:9": "Capella",
	"1:10": "Aldebaran",
}

// Word tables used by the procedural star name generator.
var (
	namePrefixes = []string{
		"Al", "Bel", "Cor", "Den", "El", "Kel", "Mar", "Nor",
		"Or", "Pro", "Sar", "Tau", "Ul", "Vel", "Xan", "Zet",
	}

	nameRoots = []string{
		"adar", "ebos", "ion", "ara", "eth", "ophi", "una",
		"ensis", "aris", "ydra", "ocon", "ilius", "anto", "erra",
	}

	nameSuffixes = []string{
		"", "", " Prime", " Major", " Minor", " Secundus", " Tertius",
	}

	standaloneNames = []string{
		"Keid", "Mirach", "Sadr", "Thuban", "Rastaban", "Furud",
		"Wazn", "Nashira", "Sceptrum", "Azha", "Rana", "Beid",
		"Cursa", "Zaurak", "Angetenar", "Theemin", "Acamar",
	}

	nameModifiers = []string{
		"Reach", "Gate", "Haven", "Expanse", "Drift", "Verge",
	}
)

// nameForge :
// Procedural generator of unique star system names. The
// generator keeps the set of every name already issued in
// the universe and retries a bounded number of times on a
// collision before falling back to a numbered name that
// cannot collide.
//
// The `rng` defines the seeded source of randomness so
// that a universe can be regenerated identically.
//
// The `used` defines the set of issued names, shared
// with the world so that agent-chosen names also count.
type nameForge struct {
	rng  *rand.Rand
	used map[string]bool
}

// newNameForge :
// Creates a generator backed by the input source and
// uniqueness set.
//
// The `rng` defines the source of randomness.
//
// The `used` defines the shared set of issued names.
//
// Returns the created generator.
func newNameForge(rng *rand.Rand, used map[string]bool) *nameForge {
	return &nameForge{
		rng:  rng,
		used: used,
	}
}

// draw :
// Produces a single candidate name using one of the
// naming styles: composed (prefix+root+suffix), named
// star with a modifier, or a catalog numeral.
//
// Returns the candidate.
func (nf *nameForge) draw() string {
	switch nf.rng.Intn(3) {
	case 0:
		prefix := namePrefixes[nf.rng.Intn(len(namePrefixes))]
		root := nameRoots[nf.rng.Intn(len(nameRoots))]
		suffix := nameSuffixes[nf.rng.Intn(len(nameSuffixes))]
		return prefix + root + suffix
	case 1:
		star := standaloneNames[nf.rng.Intn(len(standaloneNames))]
		if nf.rng.Intn(2) == 0 {
			return star
		}
		modifier := nameModifiers[nf.rng.Intn(len(nameModifiers))]
		return star + " " + modifier
	default:
		return fmt.Sprintf("HD-%d", 1000+nf.rng.Intn(9000))
	}
}

// generate :
// Produces a name that was never issued before and marks
// it as used. After 100 unsuccessful draws the generator
// falls back to a numbered name derived from the system
// key, which is unique by construction.
//
// The `key` defines the system key used by the fallback.
//
// Returns the unique name.
func (nf *nameForge) generate(key string) string {
	for attempt := 0; attempt < 100; attempt++ {
		candidate := nf.draw()

		if !nf.used[candidate] {
			nf.used[candidate] = true
			return candidate
		}
	}

	fallback := fmt.Sprintf("System %s", key)
	nf.used[fallback] = true

	return fallback
}

// reserve :
// Marks the input name as issued. Used when loading the
// persisted systems and when an agent names a system.
//
// The `name` defines the name to reserve.
//
// Returns `true` when the name was free.
func (nf *nameForge) reserve(name string) bool {
	if nf.used[name] {
		return false
	}

	nf.used[name] = true

	return true
}
