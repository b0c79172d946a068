package game

import (
	"math/rand"
	"time"
)

// Register :
// Creates an agent for a wallet along with its home
// planet on a random empty position. Registering an
// already known wallet returns the existing agent
// unchanged.
//
// The `wallet` defines the wallet identifying the agent.
//
// The `name` defines the display name of the agent.
//
// The `ip` defines the address of the caller, used to
// bound the number of wallets per address.
//
// The `now` defines the time of the command.
//
// Returns the agent along with any error.
func (e *Engine) Register(wallet string, name string, ip string, now time.Time) (*Agent, error) {
	var agent *Agent
	var err error

	e.random(func(rng *rand.Rand) {
		agent, err = e.world.RegisterAgent(wallet, name, ip, now, rng)
	})

	if err == nil {
		e.markDirty()
	}

	return agent, err
}
