package game

import (
	"math/rand"
	"starhold_server/internal/model"
)

// Maximum number of trials accepted by a simulation
// request.
const maxSimulationTrials = 1000

// Number of trials run when the caller does not specify
// one.
const defaultSimulationTrials = 100

// SimulationSummary :
// Aggregated outcome of a batch of simulated battles
// against the same defender.
//
// The `Trials` defines how many battles were fought.
//
// The `Wins`, `Losses` and `Draws` count the outcomes
// from the attacker's point of view.
//
// The `AverageRounds` defines the mean number of rounds
// fought.
//
// The `AverageAttackerLosses` and `AverageDefenderLosses`
// define the mean losses per trial, by unit type.
type SimulationSummary struct {
	Trials int `json:"trials"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`

	AverageRounds float64 `json:"average_rounds"`

	AverageAttackerLosses map[string]float64 `json:"average_attacker_losses"`
	AverageDefenderLosses map[string]float64 `json:"average_defender_losses"`
}

// SimulateCombat :
// Fights a batch of hypothetical battles between a fleet
// of the agent and the current garrison of a planet, and
// aggregates the outcomes. The simulation reads the
// state of the defender but mutates nothing; the source
// of randomness is derived only from the input seed so
// two identical requests produce the same summary.
//
// The `agentID` defines the attacking agent.
//
// The `planetID` defines the defending planet.
//
// The `ships` define the hypothetical attacking fleet.
//
// The `trials` defines how many battles to fight. A
// value of `0` selects the default.
//
// The `seed` defines the seed of the simulation.
//
// Returns the aggregated summary along with any error.
func (e *Engine) SimulateCombat(agentID string, planetID string, ships map[string]int, trials int, seed int64) (SimulationSummary, error) {
	var out SimulationSummary

	if trials == 0 {
		trials = defaultSimulationTrials
	}
	if trials < 0 || trials > maxSimulationTrials {
		return out, newError(InvalidArgument, "invalid trials count %d", trials).
			withDetail("max", maxSimulationTrials)
	}

	if len(ships) == 0 {
		return out, newError(InvalidArgument, "a simulation needs at least one ship")
	}

	for kind, count := range ships {
		if err := model.CheckIdentifier(kind); err != nil {
			return out, newError(InvalidArgument, "invalid ship identifier \"%s\"", kind)
		}
		if _, ok := e.cat.Ships.Get(kind); !ok {
			return out, newError(NotFound, "ship \"%s\" does not exist", kind)
		}
		if count <= 0 {
			return out, newError(InvalidArgument, "invalid count %d for ship \"%s\"", count, kind)
		}
	}

	attacker, ok := e.world.GetAgent(agentID)
	if !ok {
		return out, newError(NotFound, "agent \"%s\" does not exist", agentID)
	}

	planet, ok := e.world.GetPlanet(planetID)
	if !ok {
		return out, newError(NotFound, "planet \"%s\" does not exist", planetID)
	}

	defenderTechs := map[string]int{}
	if planet.Owner != "" {
		if defender, ok := e.world.GetAgent(planet.Owner); ok {
			defenderTechs = defender.Technologies
		}
	}

	attackerSide := CombatSide{
		Ships:        copyCounts(ships),
		Technologies: attacker.Technologies,
	}
	defenderSide := CombatSide{
		Ships:        copyCounts(planet.Ships),
		Defenses:     copyCounts(planet.Defenses),
		Technologies: defenderTechs,
	}

	rng := rand.New(rand.NewSource(seed))

	out.Trials = trials
	out.AverageAttackerLosses = make(map[string]float64)
	out.AverageDefenderLosses = make(map[string]float64)

	totalRounds := 0

	for i := 0; i < trials; i++ {
		result := resolveCombat(e.cat, attackerSide, defenderSide, rng)

		switch result.Outcome {
		case BattleWon:
			out.Wins++
		case BattleLost:
			out.Losses++
		default:
			out.Draws++
		}

		totalRounds += result.Rounds

		for kind, count := range result.AttackerLosses {
			out.AverageAttackerLosses[kind] += float64(count)
		}
		for kind, count := range result.DefenderShipLosses {
			out.AverageDefenderLosses[kind] += float64(count)
		}
		for kind, count := range result.DefenderDefenseLosses {
			out.AverageDefenderLosses[kind] += float64(count)
		}
	}

	out.AverageRounds = float64(totalRounds) / float64(trials)

	for kind := range out.AverageAttackerLosses {
		out.AverageAttackerLosses[kind] /= float64(trials)
	}
	for kind := range out.AverageDefenderLosses {
		out.AverageDefenderLosses[kind] /= float64(trials)
	}

	return out, nil
}
