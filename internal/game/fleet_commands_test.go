package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestSendFleet_DispatchesATransport(t *testing.T) {
	e, store := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))

	origin.Ships[model.SmallCargo] = 2
	origin.Resources = model.NewResources(1000, 1000, 1000)

	cargo := model.NewResources(100, 50, 0)

	id, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 2}, MissionTransport, cargo, now)
	require.NoError(t, err)

	fleet, ok := e.world.GetFleet(id)
	require.True(t, ok)

	assert.Equal(t, "alice", fleet.Owner)
	assert.Equal(t, MissionTransport, fleet.Mission)
	assert.Equal(t, cargo, fleet.Cargo)
	assert.Equal(t, 2.0, fleet.Fuel)
	assert.Equal(t, now.Add(10*time.Second), fleet.ArrivesAt)

	// The ships left the dock and the planet paid the
	// cargo plus the fuel.
	assert.Empty(t, origin.Ships)
	assert.Equal(t, model.NewResources(900, 950, 998), origin.Resources)

	// The dispatch was reported.
	require.Len(t, store.reports, 1)
	assert.Equal(t, FleetDispatched, store.reports[0].Kind)
}

func TestSendFleet_TransportRoundTrip(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))

	origin.Ships[model.SmallCargo] = 2
	origin.Resources = model.NewResources(1000, 1000, 1000)

	destBefore := dest.Resources

	cargo := model.NewResources(100, 50, 0)

	id, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 2}, MissionTransport, cargo, now)
	require.NoError(t, err)

	// The outbound leg delivers the cargo.
	e.Tick(now.Add(11 * time.Second))

	assert.Equal(t, destBefore.Add(cargo), dest.Resources)

	fleet, ok := e.world.GetFleet(id)
	require.True(t, ok)
	assert.True(t, fleet.Returning)

	// The return leg brings the ships home, empty handed.
	e.Tick(fleet.ArrivesAt.Add(time.Second))

	_, ok = e.world.GetFleet(id)
	assert.False(t, ok)
	assert.Equal(t, 2, origin.Ships[model.SmallCargo])
	assert.Equal(t, model.NewResources(900, 950, 998), origin.Resources)
}

func TestSendFleet_Validation(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))

	origin.Ships[model.SmallCargo] = 1

	ships := map[string]int{model.SmallCargo: 1}

	// Unknown mission.
	_, err := e.SendFleet("alice", origin.ID, dest.ID, ships, "pillage", model.Resources{}, now)
	assert.Equal(t, InvalidArgument, KindOf(err))

	// A fleet cannot target its own origin.
	_, err = e.SendFleet("alice", origin.ID, origin.ID, ships, MissionTransport, model.Resources{}, now)
	assert.Equal(t, Forbidden, KindOf(err))

	// Empty composition.
	_, err = e.SendFleet("alice", origin.ID, dest.ID, map[string]int{}, MissionTransport, model.Resources{}, now)
	assert.Equal(t, InvalidArgument, KindOf(err))

	// Destination outside of the universe bounds.
	_, err = e.SendFleet("alice", origin.ID, "9:999:99", ships, MissionTransport, model.Resources{}, now)
	assert.Equal(t, InvalidArgument, KindOf(err))

	// More ships than docked.
	_, err = e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 5}, MissionTransport, model.Resources{}, now)
	assert.Equal(t, Insufficient, KindOf(err))

	// Cargo above the capacity of the composition.
	_, err = e.SendFleet("alice", origin.ID, dest.ID, ships, MissionTransport, model.NewResources(6000, 0, 0), now)
	assert.Equal(t, Precondition, KindOf(err))
}

func TestSendFleet_BoundedByTheFleetSlots(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))

	origin.Ships[model.SmallCargo] = 10
	origin.Resources = model.NewResources(10000, 10000, 10000)

	// Two slots without the computer technology nor the
	// admiral.
	for i := 0; i < 2; i++ {
		_, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 1}, MissionTransport, model.Resources{}, now)
		require.NoError(t, err)
	}

	_, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 1}, MissionTransport, model.Resources{}, now)
	assert.Equal(t, Precondition, KindOf(err))
}

func TestSendFleet_ColonizeNeedsAColonyShipAndHeadroom(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	origin.Ships[model.SmallCargo] = 1
	origin.Ships[model.ColonyShip] = 1
	origin.Resources = model.NewResources(10000, 10000, 10000)

	// No colony ship in the composition.
	_, err := e.SendFleet("alice", origin.ID, "1:1:5", map[string]int{model.SmallCargo: 1}, MissionColonize, model.Resources{}, now)
	assert.Equal(t, Precondition, KindOf(err))

	// The colony limit of a fresh agent is already used
	// by its home world.
	_, err = e.SendFleet("alice", origin.ID, "1:1:5", map[string]int{model.ColonyShip: 1}, MissionColonize, model.Resources{}, now)
	assert.Equal(t, Precondition, KindOf(err))

	// The astrophysics technology raises the limit.
	agent, _ := e.world.GetAgent("alice")
	agent.Technologies[model.AstrophysicsTech] = 2

	_, err = e.SendFleet("alice", origin.ID, "1:1:5", map[string]int{model.ColonyShip: 1}, MissionColonize, model.Resources{}, now)
	assert.NoError(t, err)
}

func TestRecallFleet_BeforeTheMidpoint(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))

	origin.Ships[model.SmallCargo] = 100
	origin.Resources = model.NewResources(10000, 10000, 10000)

	id, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 100}, MissionTransport, model.Resources{}, now)
	require.NoError(t, err)

	fleet, _ := e.world.GetFleet(id)
	require.Equal(t, 100.0, fleet.Fuel)

	deuterium := origin.Resources.Deuterium

	// Recalled at 20% of the trip: the fleet flies back
	// over the distance already covered and part of the
	// fuel comes back.
	recallAt := now.Add(2 * time.Second)
	require.NoError(t, e.RecallFleet("alice", id, recallAt))

	assert.True(t, fleet.Returning)
	assert.Equal(t, recallAt.Add(2*time.Second), fleet.ArrivesAt)
	assert.Equal(t, deuterium+40, origin.Resources.Deuterium)

	// The return completes normally.
	e.Tick(fleet.ArrivesAt.Add(time.Second))

	_, ok := e.world.GetFleet(id)
	assert.False(t, ok)
	assert.Equal(t, 100, origin.Ships[model.SmallCargo])
}

func TestRecallFleet_AfterTheMidpointTurnsAroundAtDestination(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))

	origin.Ships[model.SmallCargo] = 2
	origin.Resources = model.NewResources(1000, 1000, 1000)

	destBefore := dest.Resources

	cargo := model.NewResources(100, 50, 0)

	id, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 2}, MissionTransport, cargo, now)
	require.NoError(t, err)

	fleet, _ := e.world.GetFleet(id)

	// Recalled at 80% of the trip: the fleet completes its
	// leg but does not act at the destination.
	require.NoError(t, e.RecallFleet("alice", id, now.Add(8*time.Second)))

	assert.False(t, fleet.Returning)
	require.NotNil(t, fleet.RecalledAt)

	e.Tick(now.Add(11 * time.Second))

	// No delivery happened and the fleet is on its way
	// home with its cargo.
	assert.Equal(t, destBefore, dest.Resources)
	assert.True(t, fleet.Returning)
	assert.Equal(t, cargo, fleet.Cargo)

	e.Tick(fleet.ArrivesAt.Add(time.Second))

	assert.Equal(t, 2, origin.Ships[model.SmallCargo])
	// The cargo came back with the ships.
	assert.Equal(t, model.NewResources(1000, 1000, 998), origin.Resources)
}

func TestRecallFleet_Validation(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, origin := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	_, dest := seedAgent2(e, "alice", agent, model.NewCoordinate(1, 1, 2))
	seedAgent(e, "bob", model.NewCoordinate(1, 1, 3), now)

	origin.Ships[model.SmallCargo] = 1
	origin.Resources = model.NewResources(1000, 1000, 1000)

	id, err := e.SendFleet("alice", origin.ID, dest.ID, map[string]int{model.SmallCargo: 1}, MissionTransport, model.Resources{}, now)
	require.NoError(t, err)

	// Unknown fleet.
	assert.Equal(t, NotFound, KindOf(e.RecallFleet("alice", "nope", now)))

	// Somebody else's fleet.
	assert.Equal(t, Forbidden, KindOf(e.RecallFleet("bob", id, now)))

	// A fleet already flying home cannot be recalled
	// again.
	require.NoError(t, e.RecallFleet("alice", id, now.Add(2*time.Second)))
	assert.Equal(t, Precondition, KindOf(e.RecallFleet("alice", id, now.Add(3*time.Second))))
}

func TestCheckNewbieProtection(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	veteran := newAgent("veteran", "veteran", "", now.Add(-100*time.Hour))
	veteran.Score = 5000

	// A low score shields the defender.
	weak := newAgent("weak", "weak", "", now.Add(-100*time.Hour))
	weak.Score = 500

	err := e.checkNewbieProtection(veteran, weak, now)
	require.Equal(t, Forbidden, KindOf(err))
	assert.Equal(t, "scoreShield", err.(*Error).Details["shield"])

	// A young account is shielded even above the score
	// threshold.
	young := newAgent("young", "young", "", now.Add(-10*time.Hour))
	young.Score = 2000

	err = e.checkNewbieProtection(veteran, young, now)
	require.Equal(t, Forbidden, KindOf(err))
	assert.Equal(t, "timeShield", err.(*Error).Details["shield"])
	assert.Equal(t, 38, err.(*Error).Details["hoursRemaining"])

	// A score gap beyond the configured ratio shields the
	// defender.
	whale := newAgent("whale", "whale", "", now.Add(-100*time.Hour))
	whale.Score = 30000

	settled := newAgent("settled", "settled", "", now.Add(-100*time.Hour))
	settled.Score = 2000

	err = e.checkNewbieProtection(whale, settled, now)
	require.Equal(t, Forbidden, KindOf(err))
	assert.Equal(t, "ratioShield", err.(*Error).Details["shield"])

	// Comparable opponents can fight.
	assert.NoError(t, e.checkNewbieProtection(veteran, settled, now))
}

func TestNameSystem(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	seedAgent(e, "bob", model.NewCoordinate(2, 5, 3), now)

	require.NoError(t, e.NameSystem("alice", 1, 1, "Zeta Reticuli", now))

	entry, ok := e.world.GetSystem("1:1")
	require.True(t, ok)
	assert.Equal(t, "Zeta Reticuli", entry.Name)
	assert.Equal(t, NameByAgent, entry.Provenance)
	assert.Equal(t, "alice", entry.NamedBy)

	// Names are unique across the whole universe, even
	// after a system was renamed.
	err := e.NameSystem("bob", 2, 5, "Zeta Reticuli", now)
	assert.Equal(t, Conflict, KindOf(err))

	// Naming requires a presence in the system.
	err = e.NameSystem("alice", 3, 7, "Far Away", now)
	assert.Equal(t, Forbidden, KindOf(err))

	// The name length is bounded.
	assert.Equal(t, InvalidArgument, KindOf(e.NameSystem("alice", 1, 1, "", now)))
}

// seedAgent2 :
// Adds a second colonized planet to an existing agent.
func seedAgent2(e *Engine, id string, agent *Agent, coords model.Coordinate) (*Agent, *Planet) {
	planet := newPlanet(coords)
	planet.colonize(id)

	agent.Planets = append(agent.Planets, planet.ID)
	e.world.planets[planet.ID] = planet

	return agent, planet
}
