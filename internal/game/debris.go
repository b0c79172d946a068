package game

import (
	"starhold_server/internal/model"
	"time"
)

// DebrisField :
// Describes the recoverable resources floating at a
// position of the universe. A field is created by a
// battle when ships are destroyed and deleted once it
// has been fully harvested by recyclers. Only metal and
// crystal can be found in a field: deuterium is lost
// when a ship explodes.
//
// The `ID` defines the identifier of the field, built
// from its coordinates as `galaxy:system:position`.
//
// The `Coordinates` define the position of the field.
//
// The `Metal` defines the recoverable metal.
//
// The `Crystal` defines the recoverable crystal.
//
// The `CreatedAt` defines when the field appeared or was
// last augmented by a battle.
type DebrisField struct {
	ID          string           `json:"id"`
	Coordinates model.Coordinate `json:"coordinates"`
	Metal       float64          `json:"metal"`
	Crystal     float64          `json:"crystal"`
	CreatedAt   time.Time        `json:"created_at"`
}

// total :
// Returns the total amount of resources dispersed in
// the field.
func (df *DebrisField) total() float64 {
	return df.Metal + df.Crystal
}

// empty :
// Determines whether the field still holds anything
// worth collecting.
func (df *DebrisField) empty() bool {
	return df.Metal <= 0 && df.Crystal <= 0
}
