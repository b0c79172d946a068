package game

import (
	"time"
)

// Maximum number of commands accepted in a single batch.
const maxQueuedActions = 10

// Commands understood by `QueueActions`.
const (
	ActionBuild          = "build"
	ActionCancelBuild    = "cancelBuild"
	ActionResearch       = "research"
	ActionCancelResearch = "cancelResearch"
	ActionBuildShip      = "buildShip"
	ActionBuildDefense   = "buildDefense"
)

// Statuses reported for each command of a batch.
const (
	ActionSuccess     = "success"
	ActionSkipped     = "skipped"
	ActionError       = "error"
	ActionNotExecuted = "not_executed"
)

// Action :
// Describes a single command of a batch targeting one
// planet.
//
// The `Kind` defines the command to run.
//
// The `Item` defines the building, technology, ship or
// defense the command applies to. Unused by the cancel
// commands.
//
// The `Count` defines the number of units to produce for
// the shipyard commands.
//
// The `AllowSkip` indicates that a failure of this
// command for a missing resource or an unmet requirement
// should not interrupt the batch.
type Action struct {
	Kind      string `json:"kind"`
	Item      string `json:"item,omitempty"`
	Count     int    `json:"count,omitempty"`
	AllowSkip bool   `json:"allow_skip,omitempty"`
}

// ActionResult :
// The outcome of a single command of a batch.
//
// The `Status` defines the outcome of the command.
//
// The `Message` describes the failure when the command
// did not succeed.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// QueueActions :
// Executes up to ten commands in order on a single
// planet, all under the same planet lock. The batch
// stops at the first error; commands after it are
// reported as not executed. A command marked as
// skippable that fails on a missing resource or an
// unmet requirement is skipped instead of stopping the
// batch.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the planet the batch applies
// to.
//
// The `actions` define the commands to run.
//
// The `now` defines the time of the batch.
//
// Returns the per-command outcomes along with any error.
func (e *Engine) QueueActions(agentID string, planetID string, actions []Action, now time.Time) ([]ActionResult, error) {
	results, err := e.queueActions(agentID, planetID, actions, now)
	e.recordOutcome(agentID, "queueActions", err, now)

	return results, err
}

func (e *Engine) queueActions(agentID string, planetID string, actions []Action, now time.Time) ([]ActionResult, error) {
	if len(actions) == 0 {
		return nil, newError(InvalidArgument, "empty action batch")
	}

	if len(actions) > maxQueuedActions {
		return nil, newError(InvalidArgument, "too many actions in batch").
			withDetail("max", maxQueuedActions).
			withDetail("requested", len(actions))
	}

	if _, _, err := e.ownedPlanet(agentID, planetID); err != nil {
		return nil, err
	}

	results := make([]ActionResult, len(actions))
	for id := range results {
		results[id] = ActionResult{Status: ActionNotExecuted}
	}

	err := e.withPlanetLock(planetID, func() error {
		for id, action := range actions {
			actionErr := e.runAction(agentID, planetID, action, now)

			if actionErr == nil {
				results[id] = ActionResult{Status: ActionSuccess}
				continue
			}

			if action.AllowSkip && skippableFailure(actionErr) {
				results[id] = ActionResult{
					Status:  ActionSkipped,
					Message: actionErr.Error(),
				}
				continue
			}

			results[id] = ActionResult{
				Status:  ActionError,
				Message: actionErr.Error(),
			}

			return actionErr
		}

		return nil
	})

	return results, err
}

// runAction :
// Runs a single command of a batch. The lock of the
// planet is expected to be held by the caller.
//
// The `agentID` defines the caller.
//
// The `planetID` defines the target planet.
//
// The `action` defines the command to run.
//
// The `now` defines the time of the batch.
//
// Returns any error.
func (e *Engine) runAction(agentID string, planetID string, action Action, now time.Time) error {
	switch action.Kind {
	case ActionBuild:
		return e.buildLocked(agentID, planetID, action.Item, now)
	case ActionCancelBuild:
		return e.cancelBuildLocked(agentID, planetID, now)
	case ActionResearch:
		return e.researchLocked(agentID, planetID, action.Item, now)
	case ActionCancelResearch:
		return e.cancelResearchLocked(agentID, planetID, now)
	case ActionBuildShip:
		return e.buildUnitLocked(agentID, planetID, action.Item, action.Count, false, now)
	case ActionBuildDefense:
		return e.buildUnitLocked(agentID, planetID, action.Item, action.Count, true, now)
	}

	return newError(InvalidArgument, "unknown action \"%s\"", action.Kind)
}

// skippableFailure :
// Tells whether a failure is benign enough for a
// skippable command to be stepped over: missing
// resources and unmet requirements qualify, anything
// else interrupts the batch.
//
// The `err` defines the failure to classify.
func skippableFailure(err error) bool {
	switch KindOf(err) {
	case Insufficient, Precondition:
		return true
	}

	return false
}
