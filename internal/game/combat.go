package game

import (
	"math/rand"
	"sort"
	"starhold_server/internal/model"
)

// Maximum number of rounds fought before a battle is
// declared a draw.
const maxCombatRounds = 6

// CombatSide :
// Describes one side of a fight: a composition of units
// and the technology levels scaling their stats.
//
// The `Ships` define the involved ships by type.
//
// The `Defenses` define the involved defense systems by
// type. Only the defender brings defenses.
//
// The `Technologies` define the technology levels of the
// owning agent. Weapons, shielding and armour levels are
// the ones scaling the stats.
type CombatSide struct {
	Ships        map[string]int `json:"ships"`
	Defenses     map[string]int `json:"defenses,omitempty"`
	Technologies map[string]int `json:"technologies,omitempty"`
}

// CombatResult :
// Describes the outcome of a fight.
//
// The `Rounds` defines how many rounds were fought.
//
// The `Outcome` defines the result from the attacker's
// point of view.
//
// The `AttackerSurvivors` and `AttackerLosses` define
// the attacking units that survived and died, by type.
//
// The `DefenderShipSurvivors`, `DefenderShipLosses`,
// `DefenderDefenseSurvivors` and `DefenderDefenseLosses`
// define the same for the defending side, separating the
// ships from the defense systems.
type CombatResult struct {
	Rounds  int    `json:"rounds"`
	Outcome string `json:"outcome"`

	AttackerSurvivors map[string]int `json:"attacker_survivors"`
	AttackerLosses    map[string]int `json:"attacker_losses"`

	DefenderShipSurvivors    map[string]int `json:"defender_ship_survivors"`
	DefenderShipLosses       map[string]int `json:"defender_ship_losses"`
	DefenderDefenseSurvivors map[string]int `json:"defender_defense_survivors"`
	DefenderDefenseLosses    map[string]int `json:"defender_defense_losses"`
}

// combatUnit :
// The in-fight state of a single unit.
//
// The `kind` defines the ship or defense type.
//
// The `isDefense` indicates a defense system.
//
// The `attack` defines the effective weapon value.
//
// The `shield` defines the current shield, restored to
// `maxShield` at the beginning of every round.
//
// The `hull` defines the remaining structural integrity.
//
// The `rapidFire` defines the rapid fire table of the
// unit.
//
// The `alive` indicates whether the unit still fights.
type combatUnit struct {
	kind      string
	isDefense bool

	attack    float64
	shield    float64
	maxShield float64
	hull      float64
	maxHull   float64

	rapidFire map[string]int

	alive bool
}

// sortedKinds :
// Returns the keys of a composition in lexicographic
// order. The expansion of the sides must not depend on
// the iteration order of a map, otherwise two battles
// replayed from the same seed could diverge.
//
// The `counts` define the composition.
func sortedKinds(counts map[string]int) []string {
	out := make([]string, 0, len(counts))

	for id := range counts {
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}

// buildUnits :
// Expands a side into its individual units with their
// effective stats. Weapons technology improves the
// attack, shielding the shields and armour the hull,
// each by 10% per level. The effective hull is a tenth
// of the structural integrity.
//
// The `cat` defines the catalog holding the base stats.
//
// The `side` defines the composition to expand.
//
// Returns the units.
func buildUnits(cat *model.Catalog, side CombatSide) []*combatUnit {
	weapons := 1.0 + 0.1*float64(side.Technologies[model.WeaponsTech])
	shielding := 1.0 + 0.1*float64(side.Technologies[model.ShieldingTech])
	armour := 1.0 + 0.1*float64(side.Technologies[model.ArmourTech])

	units := make([]*combatUnit, 0)

	for _, id := range sortedKinds(side.Ships) {
		desc, ok := cat.Ships.Get(id)
		if !ok {
			continue
		}

		for i := 0; i < side.Ships[id]; i++ {
			units = append(units, &combatUnit{
				kind:      id,
				attack:    desc.Weapon * weapons,
				shield:    desc.Shield * shielding,
				maxShield: desc.Shield * shielding,
				hull:      desc.Hull / 10.0 * armour,
				maxHull:   desc.Hull / 10.0 * armour,
				rapidFire: desc.RapidFire,
				alive:     true,
			})
		}
	}

	for _, id := range sortedKinds(side.Defenses) {
		desc, ok := cat.Defenses.Get(id)
		if !ok {
			continue
		}

		for i := 0; i < side.Defenses[id]; i++ {
			units = append(units, &combatUnit{
				kind:      id,
				isDefense: true,
				attack:    desc.Weapon * weapons,
				shield:    desc.Shield * shielding,
				maxShield: desc.Shield * shielding,
				hull:      desc.Hull / 10.0 * armour,
				maxHull:   desc.Hull / 10.0 * armour,
				alive:     true,
			})
		}
	}

	return units
}

// aliveUnits :
// Returns the indexes of the units still fighting.
//
// The `units` define the side to scan.
func aliveUnits(units []*combatUnit) []int {
	out := make([]int, 0, len(units))

	for id, u := range units {
		if u.alive {
			out = append(out, id)
		}
	}

	return out
}

// strike :
// Applies a single shot from the input unit to a random
// target of the opposing side. Damage goes to the shield
// first and to the hull for the remainder. A shot too
// weak to matter against the target's shielding bounces
// entirely. Once the hull of a unit fell below 70% of
// its initial value every subsequent hit can blow the
// unit up with a probability growing with the damage
// already taken.
//
// The `shooter` defines the firing unit.
//
// The `targets` define the opposing units.
//
// The `rng` defines the source of randomness.
//
// Returns the type of the unit that was hit, or an empty
// string when there was nothing left to shoot at.
func strike(shooter *combatUnit, targets []*combatUnit, rng *rand.Rand) string {
	alive := aliveUnits(targets)
	if len(alive) == 0 {
		return ""
	}

	target := targets[alive[rng.Intn(len(alive))]]

	damage := shooter.attack

	// Too weak a shot bounces off the shield entirely.
	if target.maxShield > 0 && damage < 0.01*target.maxShield {
		return target.kind
	}

	if damage <= target.shield {
		target.shield -= damage
	} else {
		damage -= target.shield
		target.shield = 0
		target.hull -= damage
	}

	if target.hull <= 0 {
		target.alive = false
		return target.kind
	}

	if target.hull < 0.7*target.maxHull {
		if rng.Float64() < 1.0-target.hull/target.maxHull {
			target.alive = false
			target.hull = 0
		}
	}

	return target.kind
}

// fireSide :
// Makes every alive unit of the firing side shoot at the
// opposing side, chaining extra shots through the rapid
// fire tables.
//
// The `shooters` define the firing side.
//
// The `targets` define the opposing side.
//
// The `rng` defines the source of randomness.
func fireSide(shooters []*combatUnit, targets []*combatUnit, rng *rand.Rand) {
	for _, shooter := range shooters {
		if !shooter.alive {
			continue
		}

		for {
			hit := strike(shooter, targets, rng)
			if hit == "" {
				return
			}

			r, ok := shooter.rapidFire[hit]
			if !ok || r <= 1 {
				break
			}

			if rng.Float64() >= float64(r-1)/float64(r) {
				break
			}
		}
	}
}

// tally :
// Counts the survivors and the losses of a side.
//
// The `units` define the side to count.
//
// The `defense` selects whether the defense systems or
// the ships are counted.
//
// Returns the survivors and the losses by type.
func tally(units []*combatUnit, defense bool) (map[string]int, map[string]int) {
	survivors := make(map[string]int)
	losses := make(map[string]int)

	for _, u := range units {
		if u.isDefense != defense {
			continue
		}

		if u.alive {
			survivors[u.kind]++
		} else {
			losses[u.kind]++
		}
	}

	return survivors, losses
}

// resolveCombat :
// Runs a full battle between the two input sides. Every
// round restores the shields, makes the attackers fire
// and then the defenders, and stops as soon as one side
// has no survivor. After six rounds the fight is a draw.
// The outcome only depends on the inputs and the state
// of the input source of randomness, so a battle can be
// replayed identically from a fixed seed.
//
// The `cat` defines the catalog holding the base stats.
//
// The `attacker` and `defender` define the two sides.
//
// The `rng` defines the source of randomness.
//
// Returns the outcome of the battle.
func resolveCombat(cat *model.Catalog, attacker CombatSide, defender CombatSide, rng *rand.Rand) CombatResult {
	attackers := buildUnits(cat, attacker)
	defenders := buildUnits(cat, defender)

	rounds := 0

	for rounds < maxCombatRounds {
		if len(aliveUnits(attackers)) == 0 || len(aliveUnits(defenders)) == 0 {
			break
		}

		rounds++

		for _, u := range attackers {
			if u.alive {
				u.shield = u.maxShield
			}
		}
		for _, u := range defenders {
			if u.alive {
				u.shield = u.maxShield
			}
		}

		fireSide(attackers, defenders, rng)
		fireSide(defenders, attackers, rng)
	}

	result := CombatResult{
		Rounds: rounds,
	}

	result.AttackerSurvivors, result.AttackerLosses = tally(attackers, false)
	result.DefenderShipSurvivors, result.DefenderShipLosses = tally(defenders, false)
	result.DefenderDefenseSurvivors, result.DefenderDefenseLosses = tally(defenders, true)

	attackersLeft := len(aliveUnits(attackers)) > 0
	defendersLeft := len(aliveUnits(defenders)) > 0

	switch {
	case attackersLeft && !defendersLeft:
		result.Outcome = BattleWon
	case !attackersLeft && defendersLeft:
		result.Outcome = BattleLost
	default:
		result.Outcome = BattleDraw
	}

	return result
}
