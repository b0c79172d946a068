package internal

import (
	"net/http"
	"starhold_server/internal/model"
	"starhold_server/pkg/handlers"
	"time"
)

// sendFleetRequest :
// The payload of a fleet dispatch.
type sendFleetRequest struct {
	Agent string `json:"agent"`

	From string `json:"from"`
	To   string `json:"to"`

	Ships   map[string]int  `json:"ships"`
	Mission string          `json:"mission"`
	Cargo   model.Resources `json:"cargo"`
}

// recallFleetRequest :
// The payload of a fleet recall.
type recallFleetRequest struct {
	Agent string `json:"agent"`
}

// simulateRequest :
// The payload of a combat simulation.
type simulateRequest struct {
	Agent  string `json:"agent"`
	Planet string `json:"planet"`

	Ships  map[string]int `json:"ships"`
	Trials int            `json:"trials,omitempty"`
	Seed   int64          `json:"seed"`
}

// handleFleets :
// Serves the fleet commands: a `POST` on the bare route
// dispatches a fleet while a `POST` on a fleet with the
// `recall` element calls it back.
//
// Returns the handler that can be executed to serve such
// requests.
func (s *server) handleFleets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars, err := s.routeVars("/fleets", r)
		if err != nil {
			handlers.Answer(w, http.StatusBadRequest, map[string]string{"message": "malformed fleets route"})
			return
		}

		now := time.Now()

		if len(vars.RouteElems) == 0 {
			var in sendFleetRequest
			if !s.decodeBody(w, r, &in) {
				return
			}

			id, errSend := s.engine.SendFleet(in.Agent, in.From, in.To, in.Ships, in.Mission, in.Cargo, now)
			if errSend != nil {
				s.answerError(w, errSend)
				return
			}

			handlers.Answer(w, http.StatusCreated, map[string]string{"fleet": id})
			return
		}

		if len(vars.RouteElems) == 2 && vars.RouteElems[1] == "recall" {
			var in recallFleetRequest
			if !s.decodeBody(w, r, &in) {
				return
			}

			if errRecall := s.engine.RecallFleet(in.Agent, vars.RouteElems[0], now); errRecall != nil {
				s.answerError(w, errRecall)
				return
			}

			handlers.Answer(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}

		handlers.Answer(w, http.StatusNotFound, map[string]string{"message": "unknown fleets route"})
	}
}

// simulateCombat :
// Serves the combat simulation: a pure endpoint fighting
// a batch of hypothetical battles against the garrison
// of a planet.
//
// Returns the handler to be executed to serve these
// requests.
func (s *server) simulateCombat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in simulateRequest
		if !s.decodeBody(w, r, &in) {
			return
		}

		summary, err := s.engine.SimulateCombat(in.Agent, in.Planet, in.Ships, in.Trials, in.Seed)
		if err != nil {
			s.answerError(w, err)
			return
		}

		handlers.Answer(w, http.StatusOK, summary)
	}
}
