package model

import (
	"fmt"
	"math"
)

// SafeAmountMax :
// Defines the maximum value that any resource or currency
// amount can reach in the game. Beyond this cap additions
// stop being representable without loss of precision so
// all arithmetic performed by the engine clamps at this
// value.
const SafeAmountMax = float64(1 << 53)

// Resources :
// Regroups the amounts of each material resource that can
// be found on a planet or carried by a fleet. The energy
// is not part of this structure as it is a derived display
// value recomputed from the infrastructure of a planet and
// never stored nor transported.
//
// The `Metal` defines the amount of metal.
//
// The `Crystal` defines the amount of crystal.
//
// The `Deuterium` defines the amount of deuterium.
type Resources struct {
	Metal     float64 `json:"metal"`
	Crystal   float64 `json:"crystal"`
	Deuterium float64 `json:"deuterium"`
}

// ErrInvalidAmount : Indicates that an amount is either
// negative, infinite or not a number.
var ErrInvalidAmount = fmt.Errorf("invalid resource amount")

// NewResources :
// Convenience constructor to create a resources object
// from the individual amounts.
//
// Returns the created resources.
func NewResources(metal float64, crystal float64, deuterium float64) Resources {
	return Resources{
		Metal:     metal,
		Crystal:   crystal,
		Deuterium: deuterium,
	}
}

// IsValidAmount :
// Used to verify that the input value can be used as an
// amount for a resource or a currency. We reject negative
// values along with anything that is not a finite number.
//
// The `v` defines the value to check.
//
// Returns `true` in case the value is usable.
func IsValidAmount(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}

	return v >= 0 && v <= SafeAmountMax
}

// SafeAdd :
// Adds the two input amounts while guaranteeing that the
// output stays within the representable range. The result
// is clamped at `SafeAmountMax`.
//
// The `a` and `b` define the amounts to add.
//
// Returns the clamped sum.
func SafeAdd(a float64, b float64) float64 {
	sum := a + b

	if sum > SafeAmountMax {
		return SafeAmountMax
	}

	return sum
}

// SafeSub :
// Subtracts `b` from `a` while guaranteeing that the output
// never falls below zero.
//
// Returns the clamped difference.
func SafeSub(a float64, b float64) float64 {
	diff := a - b

	if diff < 0 {
		return 0
	}

	return diff
}

// Valid :
// Determines whether all the amounts defined by these
// resources are usable as defined by `IsValidAmount`.
//
// Returns `true` if the resources are valid.
func (r Resources) Valid() bool {
	return IsValidAmount(r.Metal) && IsValidAmount(r.Crystal) && IsValidAmount(r.Deuterium)
}

// Add :
// Produces the sum of these resources with the input ones.
// Each amount is clamped at the safe maximum.
//
// The `o` defines the resources to add.
//
// Returns the summed resources.
func (r Resources) Add(o Resources) Resources {
	return Resources{
		Metal:     SafeAdd(r.Metal, o.Metal),
		Crystal:   SafeAdd(r.Crystal, o.Crystal),
		Deuterium: SafeAdd(r.Deuterium, o.Deuterium),
	}
}

// Sub :
// Produces the difference of these resources with the input
// ones. Each amount is clamped at zero.
//
// The `o` defines the resources to subtract.
//
// Returns the subtracted resources.
func (r Resources) Sub(o Resources) Resources {
	return Resources{
		Metal:     SafeSub(r.Metal, o.Metal),
		Crystal:   SafeSub(r.Crystal, o.Crystal),
		Deuterium: SafeSub(r.Deuterium, o.Deuterium),
	}
}

// Scale :
// Produces a copy of these resources where each amount is
// multiplied by the input factor and floored.
//
// The `factor` defines the multiplier to apply.
//
// Returns the scaled resources.
func (r Resources) Scale(factor float64) Resources {
	return Resources{
		Metal:     math.Floor(r.Metal * factor),
		Crystal:   math.Floor(r.Crystal * factor),
		Deuterium: math.Floor(r.Deuterium * factor),
	}
}

// CanAfford :
// Determines whether the resources described by this object
// are sufficient to cover the input cost.
//
// The `cost` defines the amounts to compare against.
//
// Returns `true` if each amount is at least as large as the
// corresponding cost.
func (r Resources) CanAfford(cost Resources) bool {
	return r.Metal >= cost.Metal && r.Crystal >= cost.Crystal && r.Deuterium >= cost.Deuterium
}

// Total :
// Returns the sum of all the amounts defined by these
// resources. This is typically used to compare loads
// against a cargo capacity.
func (r Resources) Total() float64 {
	return r.Metal + r.Crystal + r.Deuterium
}

// String :
// Implementation of the stringer interface to make the
// logs more readable.
func (r Resources) String() string {
	return fmt.Sprintf("[metal: %.0f, crystal: %.0f, deuterium: %.0f]", r.Metal, r.Crystal, r.Deuterium)
}
