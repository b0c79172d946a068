package game

import "fmt"

// ErrorKind :
// Classifies the failures that the engine can report to
// its callers. Handlers return exactly one kind together
// with machine-readable details so that the transport can
// map the failure to a status code and the client can act
// on it (retry, top up resources, wait, etc.).
type ErrorKind string

// Definition of the error kinds reported by the engine.
const (
	// NotFound indicates that the designated entity does
	// not exist (agent, planet, fleet or a catalog item).
	NotFound ErrorKind = "not_found"

	// Forbidden indicates that the caller is not allowed
	// to perform the operation: ownership check failures,
	// newbie protection or dispatching to the same planet.
	Forbidden ErrorKind = "forbidden"

	// InvalidArgument indicates malformed input: unknown
	// identifiers, non-integer counts, invalid missions
	// or coordinates, reserved identifiers.
	InvalidArgument ErrorKind = "invalid_argument"

	// Precondition indicates that the operation is well
	// formed but the state does not allow it yet: missing
	// requirements, full queues, busy shipyard, colony
	// limit, exhausted fleet slots, capped defenses.
	Precondition ErrorKind = "precondition"

	// Insufficient indicates missing resources, fuel or
	// premium currency.
	Insufficient ErrorKind = "insufficient"

	// Conflict indicates a transient contention failure,
	// typically a planet lock that could not be acquired
	// within its bounded wait. Callers may retry.
	Conflict ErrorKind = "conflict"

	// Corruption indicates that a stored numeric field is
	// not usable (NaN, infinite or out of range). Nothing
	// is normalized silently: the operation fails so the
	// anomaly can be investigated.
	Corruption ErrorKind = "corruption"

	// Internal indicates an unexpected failure in the
	// handler path. The state is left untouched.
	Internal ErrorKind = "internal"
)

// Error :
// The failure type returned by every command handler of
// the engine.
//
// The `Kind` defines the class of the failure.
//
// The `Message` defines a human readable description.
//
// The `Details` regroup machine-readable context about
// the failure (costs, deficits, remaining durations or
// the set of valid identifiers).
type Error struct {
	Kind    ErrorKind              `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error :
// Implementation of the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// newError :
// Builds an error of the input kind.
//
// The `kind` defines the class of the failure.
//
// The `format` and `args` define the description.
//
// Returns the created error.
func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// withDetail :
// Attaches a detail entry to the error and returns it to
// allow chaining.
//
// The `key` and `value` define the entry to attach.
//
// Returns the error itself.
func (e *Error) withDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}

	e.Details[key] = value

	return e
}

// KindOf :
// Extracts the kind of the input error. Errors that were
// not produced by the engine are reported as `Internal`.
//
// The `err` defines the error to classify.
//
// Returns the kind of the error.
func KindOf(err error) ErrorKind {
	if gerr, ok := err.(*Error); ok {
		return gerr.Kind
	}

	return Internal
}
