package internal

import (
	"net"
	"net/http"
	"starhold_server/pkg/handlers"
	"strconv"
	"time"
)

// registerRequest :
// The payload of an agent registration.
type registerRequest struct {
	Wallet string `json:"wallet"`
	Name   string `json:"name"`
}

// handleAgents :
// Serves the agent resource: a `POST` registers a new
// agent while a `GET` with an extra route element serves
// one of the views attached to an agent (summary, fleets,
// reports, messages, staking, scores or decisions).
//
// Returns the handler that can be executed to serve such
// requests.
func (s *server) handleAgents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			s.registerAgent(w, r)
			return
		}

		vars, err := s.routeVars("/agents", r)
		if err != nil || len(vars.RouteElems) == 0 {
			handlers.Answer(w, http.StatusBadRequest, map[string]string{"message": "missing agent identifier"})
			return
		}

		agent := vars.RouteElems[0]
		now := time.Now()

		view := ""
		if len(vars.RouteElems) > 1 {
			view = vars.RouteElems[1]
		}

		limit := 0
		if raw := vars.Params["limit"].First(); raw != "" {
			limit, _ = strconv.Atoi(raw)
		}

		var data interface{}
		var errQuery error

		switch view {
		case "":
			data, errQuery = s.engine.AgentSummary(agent, now)
		case "fleets":
			data, errQuery = s.engine.Fleets(agent, now)
		case "battles":
			data, errQuery = s.engine.BattleReports(agent, limit)
		case "reports":
			data, errQuery = s.engine.FleetReports(agent, limit)
		case "spies":
			data, errQuery = s.engine.SpyReports(agent)
		case "messages":
			data, errQuery = s.engine.Messages(agent, limit)
		case "scores":
			data, errQuery = s.engine.ScoreHistory(agent, limit)
		case "decisions":
			data, errQuery = s.engine.DecisionLog(agent)
		case "staking":
			data, errQuery = s.engine.StakingStatus(agent, now)
		default:
			handlers.Answer(w, http.StatusNotFound, map[string]string{"message": "unknown agent view \"" + view + "\""})
			return
		}

		if errQuery != nil {
			s.answerError(w, errQuery)
			return
		}

		handlers.Answer(w, http.StatusOK, data)
	}
}

// registerAgent :
// Handles the creation of an agent from a wallet. The
// address of the caller bounds how many wallets can be
// registered from a single machine.
//
// The `w` and `r` define the exchange.
func (s *server) registerAgent(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if !s.decodeBody(w, r, &in) {
		return
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	agent, errRegister := s.engine.Register(in.Wallet, in.Name, ip, time.Now())
	if errRegister != nil {
		s.answerError(w, errRegister)
		return
	}

	handlers.Answer(w, http.StatusCreated, agent)
}

// leaderboard :
// Serves the score ranking of the universe.
//
// Returns the handler to be executed to serve these
// requests.
func (s *server) leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars, _ := s.routeVars("/leaderboard", r)

		limit := 0
		if raw := vars.Params["limit"].First(); raw != "" {
			limit, _ = strconv.Atoi(raw)
		}

		handlers.Answer(w, http.StatusOK, s.engine.Leaderboard(limit))
	}
}
