package game

import (
	"math"
	"starhold_server/internal/model"
	"time"

	"github.com/google/uuid"
)

// Reference year used to convert the yearly rate of a
// staking pool into a yield over an arbitrary window.
const stakingYear = 365 * 24 * time.Hour

// chargeCurrency :
// Deducts a premium currency cost from the balance of
// an agent. A balance that is not a usable number makes
// the purchase fail with a corruption error, as does a
// cost too small to be representable against the
// balance.
//
// The `agent` defines the paying agent.
//
// The `cost` defines the amount to deduct.
//
// Returns any error.
func chargeCurrency(agent *Agent, cost float64) error {
	if !agent.ValidBalance() {
		return newError(Corruption, "corrupted balance for \"%s\"", agent.ID)
	}

	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return newError(InvalidArgument, "invalid currency amount")
	}

	if cost == 0 {
		return nil
	}

	if agent.Currency < cost {
		return newError(Insufficient, "not enough currency for \"%s\"", agent.ID).
			withDetail("cost", cost).
			withDetail("balance", agent.Currency)
	}

	// The subtraction must be representable: a deduction
	// that leaves the balance unchanged is rejected rather
	// than silently swallowed.
	if agent.Currency-cost == agent.Currency {
		return newError(Corruption, "deduction of %f not representable against balance of \"%s\"", cost, agent.ID)
	}

	agent.Currency = model.SafeSub(agent.Currency, cost)

	return nil
}

// creditCurrency :
// Adds premium currency to the balance of an agent,
// clamped at the safe cap.
//
// The `agent` defines the credited agent.
//
// The `amount` defines the amount to add.
func creditCurrency(agent *Agent, amount float64) {
	agent.Currency = model.SafeAdd(agent.Currency, amount)
}

// HireOfficer :
// Hires an officer for the agent. Hiring an officer that
// is still active extends its expiry by one duration.
//
// The `agentID` defines the caller.
//
// The `officerID` defines the officer to hire.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) HireOfficer(agentID string, officerID string, now time.Time) error {
	err := e.hireOfficer(agentID, officerID, now)
	e.recordOutcome(agentID, "hireOfficer", err, now)

	return err
}

func (e *Engine) hireOfficer(agentID string, officerID string, now time.Time) error {
	if err := model.CheckIdentifier(officerID); err != nil {
		return newError(InvalidArgument, "invalid officer identifier \"%s\"", officerID)
	}

	desc, ok := e.cat.Premium.GetOfficer(officerID)
	if !ok {
		return newError(NotFound, "officer \"%s\" does not exist", officerID)
	}

	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.withAgentLock(agent, func() error {
		if err := chargeCurrency(agent, desc.Price); err != nil {
			return err
		}

		status, active := agent.Officers[officerID]
		if active && status.ExpiresAt.After(now) {
			status.ExpiresAt = status.ExpiresAt.Add(desc.Duration)
		} else {
			status = OfficerStatus{
				HiredAt:   now,
				ExpiresAt: now.Add(desc.Duration),
			}
		}

		agent.Officers[officerID] = status

		e.markDirty()

		return nil
	})
}

// ActivateBooster :
// Activates a production booster for the agent. A
// booster cannot be stacked on itself: activating one
// that is still running fails.
//
// The `agentID` defines the caller.
//
// The `boosterID` defines the booster to activate.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) ActivateBooster(agentID string, boosterID string, now time.Time) error {
	err := e.activateBooster(agentID, boosterID, now)
	e.recordOutcome(agentID, "activateBooster", err, now)

	return err
}

func (e *Engine) activateBooster(agentID string, boosterID string, now time.Time) error {
	if err := model.CheckIdentifier(boosterID); err != nil {
		return newError(InvalidArgument, "invalid booster identifier \"%s\"", boosterID)
	}

	desc, ok := e.cat.Premium.GetBooster(boosterID)
	if !ok {
		return newError(NotFound, "booster \"%s\" does not exist", boosterID)
	}

	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.withAgentLock(agent, func() error {
		if status, active := agent.Boosters[boosterID]; active && status.ExpiresAt.After(now) {
			return newError(Precondition, "booster \"%s\" is already active for \"%s\"", boosterID, agentID).
				withDetail("expires_at", status.ExpiresAt)
		}

		if err := chargeCurrency(agent, desc.Price); err != nil {
			return err
		}

		agent.Boosters[boosterID] = BoosterStatus{
			ActivatedAt: now,
			ExpiresAt:   now.Add(desc.Duration),
		}

		e.markDirty()

		return nil
	})
}

// Queue kinds accepted by `Speedup`.
const (
	SpeedupBuilding = "building"
	SpeedupResearch = "research"
	SpeedupShipyard = "shipyard"
)

// Speedup :
// Instantly completes the head of a queue of a planet in
// exchange for premium currency. The cost is charged per
// remaining hour, at a rate depending on the queue kind.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the planet.
//
// The `kind` defines the queue to speed up.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) Speedup(agentID string, planetID string, kind string, now time.Time) error {
	err := e.speedup(agentID, planetID, kind, now)
	e.recordOutcome(agentID, "speedup", err, now)

	return err
}

func (e *Engine) speedup(agentID string, planetID string, kind string, now time.Time) error {
	agent, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return err
	}

	return e.withPlanetLock(planetID, func() error {
		switch kind {
		case SpeedupBuilding:
			return e.speedupBuilding(agent, planet, now)
		case SpeedupResearch:
			return e.speedupResearch(agent, planetID, now)
		case SpeedupShipyard:
			return e.speedupShipyard(agent, planet, now)
		}

		return newError(InvalidArgument, "unknown speedup kind \"%s\"", kind)
	})
}

func (e *Engine) speedupBuilding(agent *Agent, planet *Planet, now time.Time) error {
	if len(planet.BuildQueue) == 0 {
		return newError(Precondition, "no construction to speed up on planet \"%s\"", planet.ID)
	}

	job := &planet.BuildQueue[0]
	remaining := job.CompletesAt.Sub(now)

	cost := e.cat.SpeedupCost(remaining, model.SpeedupBuildingRate)
	if err := chargeCurrency(agent, cost); err != nil {
		return err
	}

	job.CompletesAt = now

	// The following jobs move up by the skipped time.
	if remaining > 0 {
		for id := 1; id < len(planet.BuildQueue); id++ {
			planet.BuildQueue[id].StartedAt = planet.BuildQueue[id].StartedAt.Add(-remaining)
			planet.BuildQueue[id].CompletesAt = planet.BuildQueue[id].CompletesAt.Add(-remaining)
		}
	}

	e.markDirty()

	return nil
}

func (e *Engine) speedupResearch(agent *Agent, planetID string, now time.Time) error {
	if len(agent.ResearchQueue) == 0 {
		return newError(Precondition, "no research to speed up for \"%s\"", agent.ID)
	}

	job := &agent.ResearchQueue[0]
	if job.Planet != planetID {
		return newError(Precondition, "the research of \"%s\" is not funded by planet \"%s\"", agent.ID, planetID)
	}

	cost := e.cat.SpeedupCost(job.CompletesAt.Sub(now), model.SpeedupResearchRate)
	if err := chargeCurrency(agent, cost); err != nil {
		return err
	}

	job.CompletesAt = now

	e.markDirty()

	return nil
}

func (e *Engine) speedupShipyard(agent *Agent, planet *Planet, now time.Time) error {
	if len(planet.ShipyardQueue) == 0 {
		return newError(Precondition, "no production to speed up on planet \"%s\"", planet.ID)
	}

	job := &planet.ShipyardQueue[0]

	cost := e.cat.SpeedupCost(job.CompletesAt.Sub(now), model.SpeedupShipyardRate)
	if err := chargeCurrency(agent, cost); err != nil {
		return err
	}

	job.CompletesAt = now

	e.markDirty()

	return nil
}

// BuyResources :
// Buys a crate of resources and delivers it instantly to
// a planet of the agent. The delivery may push a stored
// amount above its storage cap, in which case the
// production of that resource stops until it falls back
// under the cap.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the receiving planet.
//
// The `crateID` defines the crate to buy.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) BuyResources(agentID string, planetID string, crateID string, now time.Time) error {
	err := e.buyResources(agentID, planetID, crateID, now)
	e.recordOutcome(agentID, "buyResources", err, now)

	return err
}

func (e *Engine) buyResources(agentID string, planetID string, crateID string, now time.Time) error {
	if err := model.CheckIdentifier(crateID); err != nil {
		return newError(InvalidArgument, "invalid crate identifier \"%s\"", crateID)
	}

	desc, ok := e.cat.Premium.GetCrate(crateID)
	if !ok {
		return newError(NotFound, "crate \"%s\" does not exist", crateID)
	}

	agent, planet, err := e.ownedPlanet(agentID, planetID)
	if err != nil {
		return err
	}

	return e.withPlanetLock(planetID, func() error {
		if err := chargeCurrency(agent, desc.Price); err != nil {
			return err
		}

		planet.Resources = planet.Resources.Add(desc.Content)

		e.markDirty()

		return nil
	})
}

// GrantCurrency :
// Credits premium currency to an agent. Reserved to the
// administrative surface; the adapter is responsible for
// the authorization.
//
// The `agentID` defines the credited agent.
//
// The `amount` defines the granted amount.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) GrantCurrency(agentID string, amount float64, now time.Time) error {
	err := e.grantCurrency(agentID, amount, now)
	e.recordOutcome(agentID, "grantCurrency", err, now)

	return err
}

func (e *Engine) grantCurrency(agentID string, amount float64, now time.Time) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return newError(InvalidArgument, "invalid currency amount")
	}

	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.withAgentLock(agent, func() error {
		if !agent.ValidBalance() {
			return newError(Corruption, "corrupted balance for \"%s\"", agentID)
		}

		creditCurrency(agent, amount)

		e.markDirty()

		return nil
	})
}

// Stake :
// Locks premium currency in a staking pool. The stake
// accrues a yield at the rate of the pool until it is
// claimed or withdrawn.
//
// The `agentID` defines the caller.
//
// The `poolID` defines the pool to stake in.
//
// The `amount` defines the staked amount.
//
// The `now` defines the time of the command.
//
// Returns the identifier of the created stake along with
// any error.
func (e *Engine) Stake(agentID string, poolID string, amount float64, now time.Time) (string, error) {
	id, err := e.stake(agentID, poolID, amount, now)
	e.recordOutcome(agentID, "stake", err, now)

	return id, err
}

func (e *Engine) stake(agentID string, poolID string, amount float64, now time.Time) (string, error) {
	if err := model.CheckIdentifier(poolID); err != nil {
		return "", newError(InvalidArgument, "invalid pool identifier \"%s\"", poolID)
	}

	pool, ok := e.cat.Premium.GetPool(poolID)
	if !ok {
		return "", newError(NotFound, "pool \"%s\" does not exist", poolID)
	}

	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return "", newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < pool.MinStake {
		return "", newError(InvalidArgument, "stake below the minimum of pool \"%s\"", poolID).
			withDetail("min_stake", pool.MinStake)
	}

	stake := Stake{
		ID:          uuid.New().String(),
		Pool:        poolID,
		Amount:      amount,
		StakedAt:    now,
		LastClaimAt: now,
	}

	err := e.withAgentLock(agent, func() error {
		if err := chargeCurrency(agent, amount); err != nil {
			return err
		}

		agent.Stakes = append(agent.Stakes, stake)

		e.markDirty()

		return nil
	})
	if err != nil {
		return "", err
	}

	return stake.ID, nil
}

// stakeYield :
// Computes the yield accrued by a stake since its last
// claim.
//
// The `stake` defines the stake.
//
// The `pool` defines the pool the stake belongs to.
//
// The `now` defines the reference time.
//
// Returns the accrued yield, floored.
func stakeYield(stake Stake, pool model.PoolDesc, now time.Time) float64 {
	window := now.Sub(stake.LastClaimAt)
	if window <= 0 {
		return 0
	}

	return math.Floor(stake.Amount * pool.APR * (float64(window) / float64(stakingYear)))
}

// findStake :
// Resolves a stake of an agent along with the pool it
// belongs to.
//
// The `agent` defines the agent.
//
// The `stakeID` defines the stake to resolve.
//
// Returns the index of the stake, the pool description
// and any error.
func (e *Engine) findStake(agent *Agent, stakeID string) (int, model.PoolDesc, error) {
	for id, stake := range agent.Stakes {
		if stake.ID != stakeID {
			continue
		}

		pool, ok := e.cat.Premium.GetPool(stake.Pool)
		if !ok {
			return 0, model.PoolDesc{}, newError(Corruption, "stake \"%s\" references unknown pool \"%s\"", stakeID, stake.Pool)
		}

		return id, pool, nil
	}

	return 0, model.PoolDesc{}, newError(NotFound, "stake \"%s\" does not exist for \"%s\"", stakeID, agent.ID)
}

// Claim :
// Credits the yield accrued by a stake to the balance of
// the agent and resets its accrual window.
//
// The `agentID` defines the caller.
//
// The `stakeID` defines the stake to claim.
//
// The `now` defines the time of the command.
//
// Returns the claimed amount along with any error.
func (e *Engine) Claim(agentID string, stakeID string, now time.Time) (float64, error) {
	amount, err := e.claim(agentID, stakeID, now)
	e.recordOutcome(agentID, "claim", err, now)

	return amount, err
}

func (e *Engine) claim(agentID string, stakeID string, now time.Time) (float64, error) {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return 0, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	var yield float64

	err := e.withAgentLock(agent, func() error {
		if !agent.ValidBalance() {
			return newError(Corruption, "corrupted balance for \"%s\"", agentID)
		}

		id, pool, err := e.findStake(agent, stakeID)
		if err != nil {
			return err
		}

		yield = stakeYield(agent.Stakes[id], pool, now)

		creditCurrency(agent, yield)
		agent.Stakes[id].LastClaimAt = now

		e.markDirty()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return yield, nil
}

// Unstake :
// Withdraws a stake: the principal and the pending yield
// come back to the balance of the agent. Pools with a
// lock duration refuse the withdrawal until the lock
// expires.
//
// The `agentID` defines the caller.
//
// The `stakeID` defines the stake to withdraw.
//
// The `now` defines the time of the command.
//
// Returns the withdrawn amount along with any error.
func (e *Engine) Unstake(agentID string, stakeID string, now time.Time) (float64, error) {
	amount, err := e.unstake(agentID, stakeID, now)
	e.recordOutcome(agentID, "unstake", err, now)

	return amount, err
}

func (e *Engine) unstake(agentID string, stakeID string, now time.Time) (float64, error) {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return 0, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	var amount float64

	err := e.withAgentLock(agent, func() error {
		if !agent.ValidBalance() {
			return newError(Corruption, "corrupted balance for \"%s\"", agentID)
		}

		id, pool, err := e.findStake(agent, stakeID)
		if err != nil {
			return err
		}

		stake := agent.Stakes[id]

		if pool.LockDuration > 0 {
			unlockAt := stake.StakedAt.Add(pool.LockDuration)
			if now.Before(unlockAt) {
				return newError(Precondition, "stake \"%s\" is locked until %v", stakeID, unlockAt).
					withDetail("unlock_at", unlockAt)
			}
		}

		amount = model.SafeAdd(stake.Amount, stakeYield(stake, pool, now))

		creditCurrency(agent, amount)
		agent.Stakes = append(agent.Stakes[:id], agent.Stakes[id+1:]...)

		e.markDirty()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return amount, nil
}

// Compound :
// Folds the pending yield of a stake back into its
// principal instead of claiming it.
//
// The `agentID` defines the caller.
//
// The `stakeID` defines the stake to compound.
//
// The `now` defines the time of the command.
//
// Returns any error.
func (e *Engine) Compound(agentID string, stakeID string, now time.Time) error {
	err := e.compound(agentID, stakeID, now)
	e.recordOutcome(agentID, "compound", err, now)

	return err
}

func (e *Engine) compound(agentID string, stakeID string, now time.Time) error {
	agent, ok := e.world.GetAgent(agentID)
	if !ok {
		return newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	return e.withAgentLock(agent, func() error {
		id, pool, err := e.findStake(agent, stakeID)
		if err != nil {
			return err
		}

		yield := stakeYield(agent.Stakes[id], pool, now)

		agent.Stakes[id].Amount = model.SafeAdd(agent.Stakes[id].Amount, yield)
		agent.Stakes[id].LastClaimAt = now

		e.markDirty()

		return nil
	})
}
