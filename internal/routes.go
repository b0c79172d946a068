package internal

import (
	"starhold_server/pkg/dispatcher"
)

// routes :
// Used to setup all the routes able to be served by this
// server. All the routes are set up with the adequate
// handler but no actual binding is done.
//
// The `router` defines the router to populate.
func (s *server) routes(router *dispatcher.Router) {
	s.routeAgents(router)
	s.routePlanets(router)
	s.routeFleets(router)
	s.routeSystems(router)
	s.routePremium(router)
}

// routeAgents :
// Used to set up the routes related to the agents: the
// registration along with the read-only views attached
// to a single agent.
//
// The `router` defines the router to populate.
func (s *server) routeAgents(router *dispatcher.Router) {
	router.HandleFunc("/agents", dispatcher.WithSafetyNet(s.log, s.handleAgents())).Methods("GET", "POST")
	router.HandleFunc("/leaderboard", dispatcher.WithSafetyNet(s.log, s.leaderboard())).Methods("GET")
}

// routePlanets :
// Used to set up the routes serving the planets: the
// detailed views and the commands mutating a planet.
//
// The `router` defines the router to populate.
func (s *server) routePlanets(router *dispatcher.Router) {
	router.HandleFunc("/planets", dispatcher.WithSafetyNet(s.log, s.handlePlanets())).Methods("GET", "POST")
}

// routeFleets :
// Used to set up the routes serving the fleets: dispatch,
// recall and the combat simulation.
//
// The `router` defines the router to populate.
func (s *server) routeFleets(router *dispatcher.Router) {
	router.HandleFunc("/fleets", dispatcher.WithSafetyNet(s.log, s.handleFleets())).Methods("POST")
	router.HandleFunc("/simulations", dispatcher.WithSafetyNet(s.log, s.simulateCombat())).Methods("POST")
}

// routeSystems :
// Used to set up the routes serving the star systems:
// the galaxy view and the naming command.
//
// The `router` defines the router to populate.
func (s *server) routeSystems(router *dispatcher.Router) {
	router.HandleFunc("/systems", dispatcher.WithSafetyNet(s.log, s.handleSystems())).Methods("GET", "POST")
}

// routePremium :
// Used to set up the routes serving the premium economy:
// officers, boosters, speedups, crates and staking.
//
// The `router` defines the router to populate.
func (s *server) routePremium(router *dispatcher.Router) {
	router.HandleFunc("/premium", dispatcher.WithSafetyNet(s.log, s.handlePremium())).Methods("POST")
}
