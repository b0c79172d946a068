package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"starhold_server/internal/game"
	"starhold_server/pkg/dispatcher"
	"starhold_server/pkg/handlers"
	"starhold_server/pkg/logger"
	"strconv"

	ghandlers "github.com/gorilla/handlers"
)

// server :
// Defines the HTTP surface of the simulation: a thin
// adapter translating requests into engine commands and
// queries. The server owns no game state; everything it
// serves comes from the engine.
//
// The `port` allows to determine which port should be
// used by the server to accept incoming requests. This
// is usually specified in the configuration so as not to
// conflict with any other API.
//
// The `engine` holds the simulation to serve.
//
// The `log` allows to perform most of the logging on any
// action done by the server such as logging clients'
// connections, errors and generally some elements useful
// to track the activity of the server.
type server struct {
	port   int
	engine *game.Engine
	log    logger.Logger
}

// NewServer :
// Create a new server with the input elements to use
// internally to serve the simulation and perform the
// logging.
// In case any of the arguments are not valid a panic is
// issued to indicate the failure.
//
// The `port` defines the port to listen to by the server.
//
// The `engine` defines the simulation to serve.
//
// The `log` is used to notify from various processes in
// the server and keep track of the activity.
func NewServer(port int, engine *game.Engine, log logger.Logger) server {
	if engine == nil {
		panic(fmt.Errorf("cannot create server from empty engine"))
	}

	return server{port, engine, log}
}

// Serve :
// Used to start listening to the port associated to this
// server and handle incoming requests. This will return
// an error in case something went wrong while listening
// to the port.
func (s *server) Serve() error {
	router := dispatcher.NewRouter(s.log)

	s.routes(router)

	// Wrap the router with the recovery and CORS layers:
	// a panicking handler answers a 500 instead of taking
	// the server down, and browser clients can reach the
	// API from another origin.
	handler := ghandlers.RecoveryHandler()(router)
	handler = ghandlers.CORS(
		ghandlers.AllowedHeaders([]string{"Content-Type"}),
		ghandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
	)(handler)

	return http.ListenAndServe(":"+strconv.FormatInt(int64(s.port), 10), handler)
}

// statusForError :
// Maps an engine failure to the HTTP status to answer
// with.
//
// The `err` defines the failure to map.
//
// Returns the HTTP status code.
func statusForError(err error) int {
	switch game.KindOf(err) {
	case game.NotFound:
		return http.StatusNotFound
	case game.Forbidden:
		return http.StatusForbidden
	case game.InvalidArgument:
		return http.StatusBadRequest
	case game.Precondition:
		return http.StatusPreconditionFailed
	case game.Insufficient:
		return http.StatusPaymentRequired
	case game.Conflict:
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// answerError :
// Answers the input request with the description of an
// engine failure: the kind, the message and the details
// are sent back as the payload.
//
// The `w` defines the response to write to.
//
// The `err` defines the failure to report.
func (s *server) answerError(w http.ResponseWriter, err error) {
	payload := err

	// Failures not produced by the engine leak no detail.
	if _, ok := err.(*game.Error); !ok {
		s.log.Trace(logger.Error, "server", fmt.Sprintf("Unexpected failure in handler (err: %v)", err))
		payload = fmt.Errorf("internal error")

		handlers.Answer(w, http.StatusInternalServerError, map[string]interface{}{
			"kind":    game.Internal,
			"message": payload.Error(),
		})

		return
	}

	handlers.Answer(w, statusForError(err), err)
}

// decodeBody :
// Decodes the JSON body of a request into the input
// destination. A malformed body answers the request with
// a bad request status.
//
// The `w` and `r` define the exchange.
//
// The `dest` defines where to decode.
//
// Returns whether the decoding succeeded.
func (s *server) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		handlers.Answer(w, http.StatusBadRequest, map[string]interface{}{
			"kind":    game.InvalidArgument,
			"message": fmt.Sprintf("malformed request body (err: %v)", err),
		})

		return false
	}

	return true
}

// routeVars :
// Extracts the route elements and query parameters of a
// request relative to the input prefix.
//
// The `prefix` defines the base route to strip.
//
// The `r` defines the request.
//
// Returns the extracted variables along with any error.
func (s *server) routeVars(prefix string, r *http.Request) (handlers.RouteVars, error) {
	return handlers.ExtractRouteVars(prefix, r)
}
