package dispatcher

import (
	"net/http"
	"starhold_server/pkg/logger"
	"strings"
)

// matching :
// Convenience define allowing to reference the possible
// matching states for a route. It is used to precisely
// determine the best match for an input request.
type matching int

// Definition of the possible match states for a route.
const (
	methodNotAllowed matching = iota
	notFound
	matched
)

// Route :
// Defines a generic route which is a path that can be used
// to target a server. The route is composed of a path and
// a set of methods, which allows to only react to specific
// verbs on a dedicated route and to serve multiple request
// types on a single endpoint.
// The route also defines a handler which is called in case
// a request is directed towards this route.
//
// The `methods` defines the HTTP verbs associated to this
// route. No request that doesn't match one of these verbs
// will be directed towards this route.
//
// The `name` of the route defines the actual endpoint to
// target to reach the route. We consider only absolute
// paths.
//
// The `handler` defines the actual processing to call in
// case this route is triggered. It is initialized with a
// default `NoOp` handler.
//
// The `log` will be used in case anything requires to
// notify the user of an error.
type Route struct {
	methods map[string]bool
	name    string
	handler http.Handler
	log     logger.Logger
}

// NewRoute :
// Used to create a new route with no associated methods
// and the specified path.
//
// The `path` indicates the path that is associated to
// the route to create.
//
// The `log` is used to create the default `NoOp` handler
// associated to this route.
//
// Returns the created route.
func NewRoute(path string, log logger.Logger) *Route {
	return &Route{
		methods: make(map[string]bool),
		name:    path,
		handler: http.Handler(NoOp(log)),
		log:     log,
	}
}

// Handler :
// Returns the handler associated to this route. Should
// never be `nil`.
func (r *Route) Handler() http.Handler {
	return r.handler
}

// Methods :
// Registers the set of methods provided in input as valid
// methods to reach this route. The input methods are
// transformed into upper case verbs internally.
//
// The `methods` define the new methods to register as
// valid for this route.
//
// Returns a reference to this route to allow chaining.
func (r *Route) Methods(methods ...string) *Route {
	for _, method := range methods {
		if len(method) == 0 {
			continue
		}

		r.methods[strings.ToUpper(method)] = true
	}

	return r
}

// HandlerFunc :
// Registers the provided handler func as the main processing
// function for this route.
//
// The `f` defines the processing function for the route.
//
// Returns a reference to this route to allow chaining.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	r.handler = http.HandlerFunc(f)

	return r
}

// match :
// Used to verify whether the input request can be served
// by this route. We first check that the path of the
// request starts with the name of the route and then
// verify the method.
//
// The `req` defines the request to match against this
// route.
//
// Returns the matching state for this route.
func (r *Route) match(req *http.Request) matching {
	// The path should start with the name of the route.
	if !strings.HasPrefix(req.URL.Path, r.name) {
		return notFound
	}

	// The method should be part of the registered ones.
	// In case no methods are registered for the route,
	// any verb is served.
	if len(r.methods) > 0 && !r.methods[strings.ToUpper(req.Method)] {
		return methodNotAllowed
	}

	return matched
}
