package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestChargeCurrency(t *testing.T) {
	now := time.Now()

	// A corrupted balance refuses every purchase.
	agent := newAgent("alice", "alice", "", now)
	agent.Currency = math.NaN()
	assert.Equal(t, Corruption, KindOf(chargeCurrency(agent, 10)))

	// An insufficient balance reports the deficit.
	agent.Currency = 5
	err := chargeCurrency(agent, 10)
	require.Equal(t, Insufficient, KindOf(err))
	assert.Equal(t, 10.0, err.(*Error).Details["cost"])
	assert.Equal(t, 5.0, err.(*Error).Details["balance"])

	// A deduction too small to change the balance is a
	// corruption, not a free purchase.
	agent.Currency = math.Pow(2, 53)
	assert.Equal(t, Corruption, KindOf(chargeCurrency(agent, 0.4)))

	// A zero cost is a no-op.
	agent.Currency = 100
	require.NoError(t, chargeCurrency(agent, 0))
	assert.Equal(t, 100.0, agent.Currency)

	require.NoError(t, chargeCurrency(agent, 30))
	assert.Equal(t, 70.0, agent.Currency)
}

func TestHireOfficer(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 1000

	require.NoError(t, e.HireOfficer("alice", model.OfficerEngineer, now))

	assert.Equal(t, 650.0, agent.Currency)

	status := agent.Officers[model.OfficerEngineer]
	assert.Equal(t, now, status.HiredAt)
	assert.Equal(t, now.Add(7*24*time.Hour), status.ExpiresAt)

	// Rehiring an active officer extends the contract from
	// its current expiry.
	require.NoError(t, e.HireOfficer("alice", model.OfficerEngineer, now.Add(24*time.Hour)))

	assert.Equal(t, 300.0, agent.Currency)
	assert.Equal(t, now.Add(14*24*time.Hour), agent.Officers[model.OfficerEngineer].ExpiresAt)
}

func TestHireOfficer_Validation(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	assert.Equal(t, NotFound, KindOf(e.HireOfficer("alice", "chancellor", now)))

	agent.Currency = 10
	assert.Equal(t, Insufficient, KindOf(e.HireOfficer("alice", model.OfficerEngineer, now)))
}

func TestActivateBooster_DoesNotStack(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 1000

	require.NoError(t, e.ActivateBooster("alice", model.BoosterMetal, now))

	assert.Equal(t, 800.0, agent.Currency)
	assert.Equal(t, now.Add(24*time.Hour), agent.Boosters[model.BoosterMetal].ExpiresAt)

	// A running booster cannot be stacked, and the refusal
	// does not charge anything.
	err := e.ActivateBooster("alice", model.BoosterMetal, now.Add(time.Hour))
	assert.Equal(t, Precondition, KindOf(err))
	assert.Equal(t, 800.0, agent.Currency)

	// Once expired it can be bought again.
	require.NoError(t, e.ActivateBooster("alice", model.BoosterMetal, now.Add(25*time.Hour)))
	assert.Equal(t, 600.0, agent.Currency)
}

func TestSpeedup_CompletesTheHeadOfTheBuildQueue(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 10

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))

	// 100 seconds remain: the charge covers the fraction
	// of an hour, rounded up.
	require.NoError(t, e.Speedup("alice", planet.ID, SpeedupBuilding, now.Add(8*time.Second)))

	assert.Equal(t, 8.0, agent.Currency)
	assert.Equal(t, now.Add(8*time.Second), planet.BuildQueue[0].CompletesAt)

	e.Tick(now.Add(9 * time.Second))

	assert.Equal(t, 1, planet.Buildings[model.MetalMine])
}

func TestSpeedup_Validation(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	assert.Equal(t, Precondition, KindOf(e.Speedup("alice", planet.ID, SpeedupBuilding, now)))
	assert.Equal(t, Precondition, KindOf(e.Speedup("alice", planet.ID, SpeedupResearch, now)))
	assert.Equal(t, Precondition, KindOf(e.Speedup("alice", planet.ID, SpeedupShipyard, now)))
	assert.Equal(t, InvalidArgument, KindOf(e.Speedup("alice", planet.ID, "harvest", now)))
}

func TestBuyResources_DeliversTheCrate(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 150

	require.NoError(t, e.BuyResources("alice", planet.ID, model.CrateSmall, now))

	assert.Equal(t, 50.0, agent.Currency)
	assert.Equal(t, model.NewResources(5500, 3300, 1100), planet.Resources)

	assert.Equal(t, NotFound, KindOf(e.BuyResources("alice", planet.ID, "goldenCrate", now)))
	assert.Equal(t, Insufficient, KindOf(e.BuyResources("alice", planet.ID, model.CrateLarge, now)))
}

func TestGrantCurrency(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	require.NoError(t, e.GrantCurrency("alice", 500, now))
	assert.Equal(t, 500.0, agent.Currency)

	assert.Equal(t, InvalidArgument, KindOf(e.GrantCurrency("alice", 0, now)))
	assert.Equal(t, InvalidArgument, KindOf(e.GrantCurrency("alice", -5, now)))
	assert.Equal(t, InvalidArgument, KindOf(e.GrantCurrency("alice", math.NaN(), now)))
	assert.Equal(t, NotFound, KindOf(e.GrantCurrency("nobody", 10, now)))
}

func TestStakeAndClaim(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 1500

	id, err := e.Stake("alice", model.PoolFlexible, 1000, now)
	require.NoError(t, err)

	assert.Equal(t, 500.0, agent.Currency)
	require.Len(t, agent.Stakes, 1)

	// A full year at 5% on 1000.
	yield, err := e.Claim("alice", id, now.Add(365*24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 50.0, yield)
	assert.Equal(t, 550.0, agent.Currency)

	// The accrual window was reset by the claim.
	yield, err = e.Claim("alice", id, now.Add(365*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, yield)
}

func TestStake_Validation(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 1000

	_, err := e.Stake("alice", "ponzi", 100, now)
	assert.Equal(t, NotFound, KindOf(err))

	// Below the minimum of the pool.
	_, err = e.Stake("alice", model.PoolFlexible, 5, now)
	assert.Equal(t, InvalidArgument, KindOf(err))

	_, err = e.Stake("alice", model.PoolFlexible, 5000, now)
	assert.Equal(t, Insufficient, KindOf(err))

	_, err = e.Claim("alice", "missing", now)
	assert.Equal(t, NotFound, KindOf(err))
}

func TestUnstake_FlexiblePool(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 1500

	id, err := e.Stake("alice", model.PoolFlexible, 1000, now)
	require.NoError(t, err)

	// The principal and a year of yield come back.
	amount, err := e.Unstake("alice", id, now.Add(365*24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1050.0, amount)
	assert.Equal(t, 1550.0, agent.Currency)
	assert.Empty(t, agent.Stakes)
}

func TestUnstake_LockedPoolWaitsForTheEpoch(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 100

	id, err := e.Stake("alice", model.PoolEpoch30, 100, now)
	require.NoError(t, err)

	_, err = e.Unstake("alice", id, now.Add(10*24*time.Hour))
	require.Equal(t, Precondition, KindOf(err))
	assert.Equal(t, now.Add(30*24*time.Hour), err.(*Error).Details["unlock_at"])

	amount, err := e.Unstake("alice", id, now.Add(31*24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 101.0, amount)
	assert.Equal(t, 101.0, agent.Currency)
}

func TestCompound_FoldsTheYieldIntoThePrincipal(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	agent, _ := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)
	agent.Currency = 1000

	id, err := e.Stake("alice", model.PoolFlexible, 1000, now)
	require.NoError(t, err)

	later := now.Add(365 * 24 * time.Hour)
	require.NoError(t, e.Compound("alice", id, later))

	assert.Equal(t, 1050.0, agent.Stakes[0].Amount)
	assert.Equal(t, 0.0, agent.Currency)

	// Withdrawing right after returns the compounded
	// principal.
	amount, err := e.Unstake("alice", id, later)
	require.NoError(t, err)
	assert.Equal(t, 1050.0, amount)
}
