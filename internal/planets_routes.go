package internal

import (
	"net/http"
	"starhold_server/internal/game"
	"starhold_server/pkg/handlers"
	"time"
)

// planetCommandRequest :
// The payload of the commands mutating a planet. The
// fields beyond `Agent` are used or ignored depending on
// the targeted command.
type planetCommandRequest struct {
	Agent string `json:"agent"`

	Item  string `json:"item,omitempty"`
	Count int    `json:"count,omitempty"`
	Kind  string `json:"kind,omitempty"`

	Actions []game.Action `json:"actions,omitempty"`
}

// handlePlanets :
// Serves the planet resource. A `GET` with an extra
// route element serves the detailed view of a planet or
// its buildable content; a `POST` runs one of the
// commands mutating the planet (constructions, research,
// shipyard, batches, speedups and crates).
//
// Returns the handler that can be executed to serve such
// requests.
func (s *server) handlePlanets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars, err := s.routeVars("/planets", r)
		if err != nil || len(vars.RouteElems) == 0 {
			handlers.Answer(w, http.StatusBadRequest, map[string]string{"message": "missing planet identifier"})
			return
		}

		planet := vars.RouteElems[0]

		if r.Method == http.MethodGet {
			s.servePlanetView(w, vars, planet)
			return
		}

		if len(vars.RouteElems) < 2 {
			handlers.Answer(w, http.StatusBadRequest, map[string]string{"message": "missing planet command"})
			return
		}

		s.servePlanetCommand(w, r, planet, vars.RouteElems[1])
	}
}

// servePlanetView :
// Answers the read-only views of a planet. The agent is
// identified through the `agent` query parameter.
//
// The `w` defines the response to write to.
//
// The `vars` define the extracted route variables.
//
// The `planet` defines the planet to describe.
func (s *server) servePlanetView(w http.ResponseWriter, vars handlers.RouteVars, planet string) {
	agent := vars.Params["agent"].First()

	view := ""
	if len(vars.RouteElems) > 1 {
		view = vars.RouteElems[1]
	}

	var data interface{}
	var err error

	switch view {
	case "":
		data, err = s.engine.PlanetDetail(agent, planet, time.Now())
	case "actions":
		data, err = s.engine.AvailableActions(agent, planet)
	default:
		handlers.Answer(w, http.StatusNotFound, map[string]string{"message": "unknown planet view \"" + view + "\""})
		return
	}

	if err != nil {
		s.answerError(w, err)
		return
	}

	handlers.Answer(w, http.StatusOK, data)
}

// servePlanetCommand :
// Runs a command mutating a planet on behalf of the
// agent designated by the body.
//
// The `w` and `r` define the exchange.
//
// The `planet` defines the target planet.
//
// The `command` defines the command to run.
func (s *server) servePlanetCommand(w http.ResponseWriter, r *http.Request, planet string, command string) {
	var in planetCommandRequest
	if !s.decodeBody(w, r, &in) {
		return
	}

	now := time.Now()

	var data interface{}
	var err error

	switch command {
	case "build":
		err = s.engine.Build(in.Agent, planet, in.Item, now)
	case "cancel-build":
		err = s.engine.CancelBuild(in.Agent, planet, now)
	case "research":
		err = s.engine.Research(in.Agent, planet, in.Item, now)
	case "cancel-research":
		err = s.engine.CancelResearch(in.Agent, now)
	case "ships":
		err = s.engine.BuildShip(in.Agent, planet, in.Item, in.Count, now)
	case "defenses":
		err = s.engine.BuildDefense(in.Agent, planet, in.Item, in.Count, now)
	case "actions":
		data, err = s.engine.QueueActions(in.Agent, planet, in.Actions, now)
	case "speedup":
		err = s.engine.Speedup(in.Agent, planet, in.Kind, now)
	case "crates":
		err = s.engine.BuyResources(in.Agent, planet, in.Item, now)
	default:
		handlers.Answer(w, http.StatusNotFound, map[string]string{"message": "unknown planet command \"" + command + "\""})
		return
	}

	if err != nil {
		// A partially executed batch still reports the
		// per-command outcomes along with the failure.
		if command == "actions" && data != nil {
			handlers.Answer(w, statusForError(err), map[string]interface{}{
				"error":   err,
				"results": data,
			})
			return
		}

		s.answerError(w, err)
		return
	}

	if data == nil {
		data = map[string]string{"status": "ok"}
	}

	handlers.Answer(w, http.StatusOK, data)
}
