package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestRegisterAgent_CreatesAHomeWorld(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(7)))
	rng := rand.New(rand.NewSource(3))
	now := time.Now()

	agent, err := world.RegisterAgent("alice", "Alice", "10.0.0.1", now, rng)
	require.NoError(t, err)

	require.Len(t, agent.Planets, 1)

	home, ok := world.GetPlanet(agent.Planets[0])
	require.True(t, ok)

	assert.Equal(t, "alice", home.Owner)
	assert.Equal(t, model.NewResources(500, 300, 100), home.Resources)
	assert.Equal(t, 1, home.Buildings[model.MetalMine])
	assert.Equal(t, 1, home.Buildings[model.SolarPlant])

	// The home system got a name on registration.
	_, ok = world.GetSystem(home.Coordinates.SystemKey())
	assert.True(t, ok)
}

func TestRegisterAgent_IsIdempotent(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(7)))
	rng := rand.New(rand.NewSource(3))
	now := time.Now()

	first, err := world.RegisterAgent("alice", "Alice", "10.0.0.1", now, rng)
	require.NoError(t, err)

	second, err := world.RegisterAgent("alice", "Someone Else", "10.0.0.2", now.Add(time.Hour), rng)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Alice", second.Name)
	assert.Len(t, world.ListAgents(), 1)
}

func TestRegisterAgent_BoundsWalletsPerAddress(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(7)))
	rng := rand.New(rand.NewSource(3))
	now := time.Now()

	for _, wallet := range []string{"w1", "w2", "w3"} {
		_, err := world.RegisterAgent(wallet, wallet, "10.0.0.1", now, rng)
		require.NoError(t, err)
	}

	_, err := world.RegisterAgent("w4", "w4", "10.0.0.1", now, rng)
	assert.Equal(t, Forbidden, KindOf(err))

	// Another address is not affected by the cap.
	_, err = world.RegisterAgent("w4", "w4", "10.0.0.2", now, rng)
	assert.NoError(t, err)
}

func TestRegisterAgent_RejectsInvalidWallets(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(7)))
	rng := rand.New(rand.NewSource(3))
	now := time.Now()

	for _, wallet := range []string{"", "__proto__", "has space"} {
		_, err := world.RegisterAgent(wallet, "name", "10.0.0.1", now, rng)
		assert.Equal(t, InvalidArgument, KindOf(err), wallet)
	}
}

func TestPickEmptyPosition_AvoidsOwnedPlanets(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(7)))
	rng := rand.New(rand.NewSource(3))
	now := time.Now()

	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		wallet := "wallet" + string(rune('a'+i))

		agent, err := world.RegisterAgent(wallet, "name", wallet, now, rng)
		require.NoError(t, err)

		home, ok := world.GetPlanet(agent.Planets[0])
		require.True(t, ok)

		// Every registration lands on a distinct position.
		assert.False(t, seen[home.ID])
		seen[home.ID] = true
	}
}

func TestEnsureSystemNamed(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(7)))
	now := time.Now()

	// The first systems of the first galaxy carry seeded
	// names.
	entry := world.EnsureSystemNamed(1, 1, now)
	assert.Equal(t, "Sol", entry.Name)
	assert.Equal(t, NameSeeded, entry.Provenance)

	// Elsewhere a name is generated, and asking again
	// returns the same entry.
	generated := world.EnsureSystemNamed(3, 42, now)
	assert.NotEmpty(t, generated.Name)
	assert.Equal(t, NameGenerated, generated.Provenance)

	again := world.EnsureSystemNamed(3, 42, now.Add(time.Hour))
	assert.Same(t, generated, again)
}

func TestRestore_RebuildsTheDerivedState(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(7)))
	now := time.Now()

	agent := newAgent("alice", "Alice", "10.0.0.1", now)
	planet := newPlanet(model.NewCoordinate(1, 1, 1))
	planet.colonize("alice")
	agent.Planets = append(agent.Planets, planet.ID)

	system := &StarSystem{
		ID:         "1:1",
		Name:       "Zeta Reticuli",
		Provenance: NameByAgent,
		NamedBy:    "alice",
		NamedAt:    now,
	}

	world.Restore([]*Agent{agent}, []*Planet{planet}, nil, nil, []*StarSystem{system}, 42)

	assert.Equal(t, uint64(42), world.Tick())

	restored, ok := world.GetAgent("alice")
	require.True(t, ok)
	assert.Same(t, agent, restored)

	// The restored name is reserved again: nobody else can
	// take it.
	err := world.NameSystem(1, 1, "Zeta Reticuli", "alice", now)
	assert.Equal(t, Conflict, KindOf(err))
}
