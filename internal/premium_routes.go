package internal

import (
	"net/http"
	"starhold_server/internal/game"
	"starhold_server/pkg/handlers"
	"time"
)

// premiumRequest :
// The payload of the premium commands. The fields beyond
// `Agent` are used or ignored depending on the targeted
// command.
type premiumRequest struct {
	Agent string `json:"agent"`

	Item   string  `json:"item,omitempty"`
	Pool   string  `json:"pool,omitempty"`
	Amount float64 `json:"amount,omitempty"`
}

// handlePremium :
// Serves the premium economy: hiring officers, running
// boosters, granting currency and the staking workflow.
// The route elements select the command; stake-scoped
// commands take the stake identifier as second element.
//
// Returns the handler that can be executed to serve such
// requests.
func (s *server) handlePremium() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars, err := s.routeVars("/premium", r)
		if err != nil || len(vars.RouteElems) == 0 {
			handlers.Answer(w, http.StatusBadRequest, map[string]string{"message": "missing premium command"})
			return
		}

		var in premiumRequest
		if !s.decodeBody(w, r, &in) {
			return
		}

		now := time.Now()
		command := vars.RouteElems[0]

		var data interface{}
		var errCmd error

		switch command {
		case "officers":
			errCmd = s.engine.HireOfficer(in.Agent, in.Item, now)
		case "boosters":
			errCmd = s.engine.ActivateBooster(in.Agent, in.Item, now)
		case "grant":
			errCmd = s.engine.GrantCurrency(in.Agent, in.Amount, now)
		case "stakes":
			data, errCmd = s.handleStake(in, vars.RouteElems, now)
		default:
			handlers.Answer(w, http.StatusNotFound, map[string]string{"message": "unknown premium command \"" + command + "\""})
			return
		}

		if errCmd != nil {
			s.answerError(w, errCmd)
			return
		}

		if data == nil {
			data = map[string]string{"status": "ok"}
		}

		handlers.Answer(w, http.StatusOK, data)
	}
}

// handleStake :
// Runs one of the staking commands: creating a stake or
// claiming, compounding and withdrawing an existing one.
//
// The `in` defines the decoded payload.
//
// The `elems` define the route elements after the base
// route.
//
// The `now` defines the time of the command.
//
// Returns the answer payload along with any error.
func (s *server) handleStake(in premiumRequest, elems []string, now time.Time) (interface{}, error) {
	if len(elems) == 1 {
		id, err := s.engine.Stake(in.Agent, in.Pool, in.Amount, now)
		if err != nil {
			return nil, err
		}

		return map[string]string{"stake": id}, nil
	}

	stakeID := elems[1]

	verb := ""
	if len(elems) > 2 {
		verb = elems[2]
	}

	switch verb {
	case "claim":
		amount, err := s.engine.Claim(in.Agent, stakeID, now)
		if err != nil {
			return nil, err
		}
		return map[string]float64{"claimed": amount}, nil

	case "unstake":
		amount, err := s.engine.Unstake(in.Agent, stakeID, now)
		if err != nil {
			return nil, err
		}
		return map[string]float64{"withdrawn": amount}, nil

	case "compound":
		if err := s.engine.Compound(in.Agent, stakeID, now); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil
	}

	return nil, &game.Error{
		Kind:    game.NotFound,
		Message: "unknown staking command \"" + verb + "\"",
	}
}
