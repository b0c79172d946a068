package model

import "fmt"

// ErrReservedIdentifier : Indicates that the identifier is
// part of the reserved words that can never be used as a
// key for a game element.
var ErrReservedIdentifier = fmt.Errorf("reserved identifier")

// ErrMalformedIdentifier : Indicates that the identifier
// contains characters outside of the allowed set.
var ErrMalformedIdentifier = fmt.Errorf("malformed identifier")

// reservedIdentifiers :
// Defines the set of keys that can never be accepted as an
// identifier for a building, ship, defense, technology or
// any premium item. These words collide with the prototype
// machinery of loosely typed runtimes and accepting them
// would allow a client to craft keys that alias internal
// fields once the state is exported.
var reservedIdentifiers = map[string]bool{
	"__proto__":      true,
	"constructor":    true,
	"prototype":      true,
	"hasOwnProperty": true,
	"toString":       true,
	"valueOf":        true,
}

// CheckIdentifier :
// Used to verify that the input string can be used as an
// identifier to index the content tables of the game. The
// identifier should only contain ASCII letters, digits or
// underscores and should not be part of the reserved set.
// This check is performed at the boundary before any map
// lookup so that the core stays free of string key issues.
//
// The `id` defines the identifier to verify.
//
// Returns an error in case the identifier cannot be used.
func CheckIdentifier(id string) error {
	if len(id) == 0 || len(id) > 64 {
		return ErrMalformedIdentifier
	}

	for _, c := range id {
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return ErrMalformedIdentifier
		}
	}

	if reservedIdentifiers[id] {
		return ErrReservedIdentifier
	}

	return nil
}
