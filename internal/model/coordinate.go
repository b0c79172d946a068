package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate :
// Defines the position of a planet within the universe. It
// regroups the galaxy, the solar system within the galaxy
// and finally the position within the solar system. It is
// also the canonical identifier of a planet, serialized as
// `galaxy:system:position`.
//
// The `Galaxy` defines the galaxy of the planet. Its value
// is consistent with the maximum number of galaxies in the
// universe.
//
// The `System` defines the solar system that contains the
// planet within the galaxy.
//
// The `Position` defines the position of the planet within
// its solar system.
type Coordinate struct {
	Galaxy   int `json:"galaxy"`
	System   int `json:"system"`
	Position int `json:"position"`
}

// ErrInvalidCoordinate : Indicates that a coordinate is not
// consistent with the bounds of the universe.
var ErrInvalidCoordinate = fmt.Errorf("invalid coordinate")

// NewCoordinate :
// Used to create a new coordinate object from the input
// data. No controls are performed to verify that the input
// coordinates are actually consistent with the bounds of
// the universe.
//
// Returns the created coordinate object.
func NewCoordinate(galaxy int, system int, position int) Coordinate {
	return Coordinate{
		galaxy,
		system,
		position,
	}
}

// ParseCoordinate :
// Used to build a coordinate from its canonical string
// representation `galaxy:system:position`.
//
// The `id` defines the string to parse.
//
// Returns the parsed coordinate along with any error.
func ParseCoordinate(id string) (Coordinate, error) {
	tokens := strings.Split(id, ":")
	if len(tokens) != 3 {
		return Coordinate{}, ErrInvalidCoordinate
	}

	out := make([]int, 3)
	for i, token := range tokens {
		v, err := strconv.Atoi(token)
		if err != nil {
			return Coordinate{}, ErrInvalidCoordinate
		}

		out[i] = v
	}

	return NewCoordinate(out[0], out[1], out[2]), nil
}

// Key :
// Produces the canonical identifier for this coordinate.
// This string is used as the key of the planets registry
// and as the identifier persisted to the store.
//
// Returns the identifier for this coordinate.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%d:%d:%d", c.Galaxy, c.System, c.Position)
}

// SystemKey :
// Produces the identifier of the solar system containing
// this coordinate, serialized as `galaxy:system`.
//
// Returns the identifier of the parent system.
func (c Coordinate) SystemKey() string {
	return fmt.Sprintf("%d:%d", c.Galaxy, c.System)
}

// String :
// Implementation of the stringer interface for a coordinate.
// Helps printing this data structure to the logs.
//
// Returns the string representing the coordinates.
func (c Coordinate) String() string {
	return fmt.Sprintf("[G: %d, S: %d, P: %d]", c.Galaxy, c.System, c.Position)
}

// Valid :
// Determines whether this coordinate lies within the input
// bounds. All indices are 1-based.
//
// The `galaxies`, `systems` and `positions` define the
// dimensions of the universe.
//
// Returns `true` if the coordinate is consistent with the
// bounds.
func (c Coordinate) Valid(galaxies int, systems int, positions int) bool {
	if c.Galaxy < 1 || c.Galaxy > galaxies {
		return false
	}
	if c.System < 1 || c.System > systems {
		return false
	}
	if c.Position < 1 || c.Position > positions {
		return false
	}

	return true
}
