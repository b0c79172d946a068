package internal

import (
	"net/http"
	"starhold_server/pkg/handlers"
	"strconv"
	"time"
)

// nameSystemRequest :
// The payload of a system naming.
type nameSystemRequest struct {
	Agent string `json:"agent"`
	Name  string `json:"name"`
}

// handleSystems :
// Serves the star systems: a `GET` answers the public
// view of a system while a `POST` with the `name` extra
// element renames it on behalf of an agent.
//
// Returns the handler that can be executed to serve such
// requests.
func (s *server) handleSystems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars, err := s.routeVars("/systems", r)
		if err != nil || len(vars.RouteElems) < 2 {
			handlers.Answer(w, http.StatusBadRequest, map[string]string{"message": "missing system coordinates"})
			return
		}

		galaxy, errG := strconv.Atoi(vars.RouteElems[0])
		system, errS := strconv.Atoi(vars.RouteElems[1])
		if errG != nil || errS != nil {
			handlers.Answer(w, http.StatusBadRequest, map[string]string{"message": "malformed system coordinates"})
			return
		}

		now := time.Now()

		if r.Method == http.MethodGet {
			view, errView := s.engine.ViewSystem(galaxy, system, now)
			if errView != nil {
				s.answerError(w, errView)
				return
			}

			handlers.Answer(w, http.StatusOK, view)
			return
		}

		if len(vars.RouteElems) < 3 || vars.RouteElems[2] != "name" {
			handlers.Answer(w, http.StatusNotFound, map[string]string{"message": "unknown systems route"})
			return
		}

		var in nameSystemRequest
		if !s.decodeBody(w, r, &in) {
			return
		}

		if errName := s.engine.NameSystem(in.Agent, galaxy, system, in.Name, now); errName != nil {
			s.answerError(w, errName)
			return
		}

		handlers.Answer(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
