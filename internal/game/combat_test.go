package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestResolveCombat_ReplayableFromASeed(t *testing.T) {
	cat := model.NewCatalogWithSpeed(1)

	attacker := CombatSide{
		Ships: map[string]int{
			model.LightFighter: 30,
			model.Cruiser:      5,
		},
		Technologies: map[string]int{
			model.WeaponsTech: 3,
		},
	}
	defender := CombatSide{
		Ships: map[string]int{
			model.HeavyFighter: 10,
		},
		Defenses: map[string]int{
			model.RocketLauncher: 20,
			model.LightLaser:     5,
		},
		Technologies: map[string]int{
			model.ShieldingTech: 2,
			model.ArmourTech:    1,
		},
	}

	first := resolveCombat(cat, attacker, defender, rand.New(rand.NewSource(1234)))

	// Replay a few times: a single comparison could succeed
	// by chance if the expansion of the sides depended on a
	// map iteration order.
	for i := 0; i < 10; i++ {
		second := resolveCombat(cat, attacker, defender, rand.New(rand.NewSource(1234)))
		assert.Equal(t, first, second)
	}

	// A different seed is free to diverge but still obeys
	// the structural bounds.
	other := resolveCombat(cat, attacker, defender, rand.New(rand.NewSource(99)))
	assert.LessOrEqual(t, other.Rounds, 6)
}

func TestResolveCombat_OverwhelmingForceWins(t *testing.T) {
	cat := model.NewCatalogWithSpeed(1)

	attacker := CombatSide{
		Ships: map[string]int{model.Battleship: 50},
	}
	defender := CombatSide{
		Defenses: map[string]int{model.RocketLauncher: 1},
	}

	result := resolveCombat(cat, attacker, defender, rand.New(rand.NewSource(42)))

	assert.Equal(t, BattleWon, result.Outcome)
	assert.Equal(t, 1, result.Rounds)
	assert.Equal(t, 50, result.AttackerSurvivors[model.Battleship])
	assert.Empty(t, result.AttackerLosses)
	assert.Equal(t, 1, result.DefenderDefenseLosses[model.RocketLauncher])
}

func TestResolveCombat_NoDefendersIsAWalkover(t *testing.T) {
	cat := model.NewCatalogWithSpeed(1)

	attacker := CombatSide{
		Ships: map[string]int{model.LightFighter: 3},
	}

	result := resolveCombat(cat, attacker, CombatSide{}, rand.New(rand.NewSource(1)))

	assert.Equal(t, BattleWon, result.Outcome)
	assert.Equal(t, 0, result.Rounds)
	assert.Equal(t, 3, result.AttackerSurvivors[model.LightFighter])
}

func TestResolveCombat_EmptySidesDraw(t *testing.T) {
	cat := model.NewCatalogWithSpeed(1)

	result := resolveCombat(cat, CombatSide{}, CombatSide{}, rand.New(rand.NewSource(1)))

	assert.Equal(t, BattleDraw, result.Outcome)
	assert.Equal(t, 0, result.Rounds)
}

func TestResolveCombat_StopsAfterSixRounds(t *testing.T) {
	cat := model.NewCatalogWithSpeed(1)

	// A recycler's single point of damage never gets past
	// the shield of another recycler, restored at every
	// round: the fight has to go the distance.
	attacker := CombatSide{
		Ships: map[string]int{model.Recycler: 1},
	}
	defender := CombatSide{
		Ships: map[string]int{model.Recycler: 1},
	}

	result := resolveCombat(cat, attacker, defender, rand.New(rand.NewSource(7)))

	assert.Equal(t, 6, result.Rounds)
	assert.Equal(t, BattleDraw, result.Outcome)
	assert.Equal(t, 1, result.AttackerSurvivors[model.Recycler])
	assert.Equal(t, 1, result.DefenderShipSurvivors[model.Recycler])
}

func TestResolveCombat_ConservesUnits(t *testing.T) {
	cat := model.NewCatalogWithSpeed(1)

	attacker := CombatSide{
		Ships: map[string]int{
			model.LightFighter: 20,
			model.SmallCargo:   10,
		},
	}
	defender := CombatSide{
		Ships:    map[string]int{model.HeavyFighter: 8},
		Defenses: map[string]int{model.RocketLauncher: 15},
	}

	result := resolveCombat(cat, attacker, defender, rand.New(rand.NewSource(2026)))

	countAll := func(maps ...map[string]int) int {
		total := 0
		for _, m := range maps {
			for _, count := range m {
				total += count
			}
		}
		return total
	}

	require.Equal(t, 30, countAll(result.AttackerSurvivors, result.AttackerLosses))
	require.Equal(t, 8, countAll(result.DefenderShipSurvivors, result.DefenderShipLosses))
	require.Equal(t, 15, countAll(result.DefenderDefenseSurvivors, result.DefenderDefenseLosses))
}
