package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestArriveDeploy_MergesTheFleetIntoTheDestination(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))

	origin.Ships[model.LightFighter] = 5
	origin.Resources = model.NewResources(1000, 1000, 1000)

	id, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.LightFighter: 5}, MissionDeploy, model.NewResources(50, 0, 0), now)
	require.NoError(t, err)

	e.Tick(now.Add(11 * time.Second))

	// The ships and the cargo stay at the destination and
	// the fleet is gone.
	_, ok := e.world.GetFleet(id)
	assert.False(t, ok)
	assert.Equal(t, 5, dest.Ships[model.LightFighter])
	assert.Equal(t, model.NewResources(550, 300, 100), dest.Resources)
}

func TestArriveColonize_SettlesAnEmptyPosition(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Technologies[model.AstrophysicsTech] = 2

	origin.Ships[model.ColonyShip] = 1
	origin.Ships[model.SmallCargo] = 1
	origin.Resources = model.NewResources(1000, 1000, 10000)

	cargo := model.NewResources(200, 100, 0)

	id, err := e.SendFleet("alice", origin.ID, "1:2:4", map[string]int{model.ColonyShip: 1, model.SmallCargo: 1}, MissionColonize, cargo, now)
	require.NoError(t, err)

	fleet, _ := e.world.GetFleet(id)
	e.Tick(fleet.ArrivesAt.Add(time.Second))

	colony, ok := e.world.GetPlanet("1:2:4")
	require.True(t, ok)

	assert.Equal(t, "alice", colony.Owner)
	assert.Equal(t, model.NewResources(700, 400, 100), colony.Resources)
	assert.Len(t, agent.Planets, 2)

	// The colony ship was consumed and the escort docked
	// at the new colony.
	assert.Zero(t, colony.Ships[model.ColonyShip])
	assert.Equal(t, 1, colony.Ships[model.SmallCargo])

	_, ok = e.world.GetFleet(id)
	assert.False(t, ok)

	// Settling a system gives it a name.
	system, ok := e.world.GetSystem("1:2")
	require.True(t, ok)
	assert.Equal(t, "Alpha Centauri", system.Name)
	assert.Equal(t, NameSeeded, system.Provenance)
}

func TestArriveColonize_RevalidatesTheTargetOnArrival(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Technologies[model.AstrophysicsTech] = 2

	origin.Ships[model.ColonyShip] = 1
	origin.Resources = model.NewResources(1000, 1000, 10000)

	id, err := e.SendFleet("alice", origin.ID, "1:1:9", map[string]int{model.ColonyShip: 1}, MissionColonize, model.Resources{}, now)
	require.NoError(t, err)

	// Somebody else settles the position while the fleet
	// is in flight.
	squatter := newPlanet(model.NewCoordinate(1, 1, 9))
	squatter.colonize("bob")
	e.world.planets[squatter.ID] = squatter

	fleet, _ := e.world.GetFleet(id)
	e.Tick(fleet.ArrivesAt.Add(time.Second))

	// The fleet turned around with its colony ship.
	assert.Equal(t, "bob", squatter.Owner)
	assert.True(t, fleet.Returning)
	assert.Len(t, agent.Planets, 1)

	e.Tick(fleet.ArrivesAt.Add(time.Second))

	assert.Equal(t, 1, origin.Ships[model.ColonyShip])
}

func TestArriveEspionage_GathersIntelligence(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	alice, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, target := seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), now)

	origin.Ships[model.EspionageProbe] = 4
	origin.Resources = model.NewResources(1000, 1000, 1000)

	target.Ships[model.LightFighter] = 7
	target.Defenses[model.RocketLauncher] = 3
	target.Buildings[model.MetalMine] = 5

	id, err := e.SendFleet("alice", origin.ID, target.ID, map[string]int{model.EspionageProbe: 4}, MissionEspionage, model.Resources{}, now)
	require.NoError(t, err)

	e.Tick(now.Add(11 * time.Second))

	require.Len(t, alice.SpyReports, 1)
	report := alice.SpyReports[0]

	// Four probes against an equal espionage technology
	// reveal everything but the technologies.
	assert.Equal(t, 4, report.InfoLevel)
	assert.Equal(t, target.Resources, report.Resources)
	assert.Equal(t, 7, report.Ships[model.LightFighter])
	assert.Equal(t, 3, report.Defenses[model.RocketLauncher])
	assert.Equal(t, 5, report.Buildings[model.MetalMine])
	assert.Empty(t, report.Technologies)

	// Without counter-probes on the target nothing gets
	// shot down.
	assert.Zero(t, report.ProbesLost)

	fleet, ok := e.world.GetFleet(id)
	require.True(t, ok)
	assert.True(t, fleet.Returning)
	assert.Equal(t, 4, fleet.Ships[model.EspionageProbe])
}

func TestArriveAttack_WalkoverPlundersAndLeavesDebris(t *testing.T) {
	e, store := newTestEngine()
	created := time.Now().Add(-100 * time.Hour)
	now := time.Now()

	alice, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), created)
	bob, target := seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), created)

	alice.Score = 2000
	bob.Score = 1500

	origin.Ships[model.Battleship] = 50
	origin.Resources = model.NewResources(0, 0, 1000)

	target.Ships[model.SmallCargo] = 1
	target.Resources = model.NewResources(1000, 600, 200)

	id, err := e.SendFleet("alice", origin.ID, target.ID, map[string]int{model.Battleship: 50}, MissionAttack, model.Resources{}, now)
	require.NoError(t, err)

	e.Tick(now.Add(11 * time.Second))

	// The lone cargo cannot scratch a battleship: the
	// fight is over in one round without attacker losses.
	require.Len(t, store.battles, 1)
	battle := store.battles[0]

	assert.Equal(t, BattleWon, battle.Outcome)
	assert.Equal(t, 1, battle.Rounds)
	assert.Empty(t, battle.AttackerLosses)
	assert.Equal(t, 1, battle.DefenderLosses[model.SmallCargo])

	// Half of each stored resource was plundered.
	assert.Equal(t, model.NewResources(500, 300, 100), battle.Loot)
	assert.Equal(t, model.NewResources(500, 300, 100), target.Resources)
	assert.Empty(t, target.Ships)

	// The destroyed cargo dispersed a third of its value.
	df, ok := e.world.GetDebris(target.Coordinates)
	require.True(t, ok)
	assert.Equal(t, 600.0, df.Metal)
	assert.Equal(t, 600.0, df.Crystal)

	// The survivors fly home with the loot.
	fleet, ok := e.world.GetFleet(id)
	require.True(t, ok)
	assert.True(t, fleet.Returning)
	assert.Equal(t, model.NewResources(500, 300, 100), fleet.Cargo)

	deuterium := origin.Resources.Deuterium
	e.Tick(fleet.ArrivesAt.Add(time.Second))

	assert.Equal(t, 50, origin.Ships[model.Battleship])
	assert.Equal(t, model.NewResources(500, 300, deuterium+100), origin.Resources)

	// The defender is told about the raid.
	require.Len(t, store.messages, 1)
	assert.Equal(t, "bob", store.messages[0].Recipient)
	assert.Contains(t, store.messages[0].Body, "alice")
}

func TestArriveAttack_ADrawSendsTheFleetHomeEmptyHanded(t *testing.T) {
	e, store := newTestEngine()
	created := time.Now().Add(-100 * time.Hour)
	now := time.Now()

	alice, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), created)
	bob, target := seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), created)

	alice.Score = 2000
	bob.Score = 1500

	origin.Ships[model.Recycler] = 1
	origin.Resources = model.NewResources(1000, 1000, 1000)

	// A recycler cannot get past the shield of another one,
	// restored at every round: the fight is a guaranteed
	// draw.
	target.Ships[model.Recycler] = 1
	target.Resources = model.NewResources(1000, 600, 200)

	id, err := e.SendFleet("alice", origin.ID, target.ID, map[string]int{model.Recycler: 1}, MissionAttack, model.NewResources(100, 0, 0), now)
	require.NoError(t, err)

	e.Tick(now.Add(11 * time.Second))

	require.Len(t, store.battles, 1)
	battle := store.battles[0]

	assert.Equal(t, BattleDraw, battle.Outcome)
	assert.Equal(t, 6, battle.Rounds)
	assert.Equal(t, model.Resources{}, battle.Loot)

	// Nothing was plundered and the cargo loaded at the
	// dispatch does not come home either.
	assert.Equal(t, model.NewResources(1000, 600, 200), target.Resources)

	fleet, ok := e.world.GetFleet(id)
	require.True(t, ok)
	assert.True(t, fleet.Returning)
	assert.Equal(t, model.Resources{}, fleet.Cargo)

	e.Tick(fleet.ArrivesAt.Add(time.Second))

	// The 100 metal shipped out is lost; only the fuel was
	// debited on top of it.
	assert.Equal(t, 1, origin.Ships[model.Recycler])
	assert.Equal(t, model.NewResources(900, 1000, 991), origin.Resources)
}

func TestMessages_ListsThePersistedOnes(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), now)

	e.notify("bob", "Battle at 1:1:2", "Your planet was attacked.", now)

	messages, err := e.Messages("bob", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Equal(t, "bob", messages[0].Recipient)
	assert.Equal(t, "Battle at 1:1:2", messages[0].Subject)
	assert.NotEmpty(t, messages[0].ID)

	_, err = e.Messages("ghost", 10)
	assert.Equal(t, NotFound, KindOf(err))
}

func TestPlunder_TakesHalfWhenTheCapacityAllows(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, target := seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), now)
	target.Resources = model.NewResources(1000, 600, 200)

	loot := e.plunder(target, map[string]int{model.SmallCargo: 1}, model.Resources{})

	assert.Equal(t, model.NewResources(500, 300, 100), loot)
}

func TestPlunder_NothingWithoutFreeCapacity(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, target := seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), now)
	target.Resources = model.NewResources(1000, 600, 200)

	// The hold is already full of previously loaded cargo.
	loot := e.plunder(target, map[string]int{model.SmallCargo: 1}, model.NewResources(5000, 0, 0))

	assert.Equal(t, model.Resources{}, loot)
}

func TestPlunder_ScalesProportionallyAndFillsTheLeftovers(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, target := seedAgent(e, "bob", model.NewCoordinate(1, 1, 2), now)
	target.Resources = model.NewResources(1000, 1000, 1000)

	// A hundred probes hold 500 units: half of the stock
	// would be 1500, so the loot is scaled down and the
	// rounding leftovers go to the first resources.
	loot := e.plunder(target, map[string]int{model.EspionageProbe: 100}, model.Resources{})

	assert.Equal(t, model.NewResources(168, 166, 166), loot)
	assert.Equal(t, 500.0, loot.Total())
}

func TestArriveRecycle_CollectsUpToTheCapacity(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	origin.Ships[model.Recycler] = 1
	origin.Resources = model.NewResources(1000, 1000, 1000)

	coords := model.NewCoordinate(1, 1, 8)
	e.world.upsertDebris(&DebrisField{
		ID:          coords.Key(),
		Coordinates: coords,
		Metal:       30000,
		Crystal:     10000,
		CreatedAt:   now,
	})

	id, err := e.SendFleet("alice", origin.ID, coords.Key(), map[string]int{model.Recycler: 1}, MissionRecycle, model.Resources{}, now)
	require.NoError(t, err)

	e.Tick(now.Add(11 * time.Second))

	// A single recycler holds 20000 units: half the field,
	// collected proportionally to its composition.
	fleet, ok := e.world.GetFleet(id)
	require.True(t, ok)
	assert.True(t, fleet.Returning)
	assert.Equal(t, model.NewResources(15000, 5000, 0), fleet.Cargo)

	df, ok := e.world.GetDebris(coords)
	require.True(t, ok)
	assert.Equal(t, 15000.0, df.Metal)
	assert.Equal(t, 5000.0, df.Crystal)

	e.Tick(fleet.ArrivesAt.Add(time.Second))

	assert.Equal(t, model.NewResources(16000, 6000, 991), origin.Resources)
}

func TestSendFleet_RecycleNeedsAFieldToHarvest(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	origin.Ships[model.Recycler] = 1
	origin.Resources = model.NewResources(1000, 1000, 1000)

	_, err := e.SendFleet("alice", origin.ID, "1:1:8", map[string]int{model.Recycler: 1}, MissionRecycle, model.Resources{}, now)
	assert.Equal(t, Precondition, KindOf(err))
}
