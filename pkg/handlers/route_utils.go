package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// InternalServerErrorString :
// Used to provide a unique string that can be used in case
// an error occurs while serving a client request and we
// need to provide an answer.
//
// Returns a common string to indicate an error.
func InternalServerErrorString() string {
	return "Unexpected server error"
}

// splitRouteElements :
// Used to transform part of the route into its composing
// single elements. Typically a value of `/planets/1:15:8`
// will be split into `planets` and `1:15:8`. Any leading
// or trailing '/' character is stripped from the input
// string before it is used as a separator for tokens in
// the route.
//
// The `route` is the element which should be split on the
// '/' characters.
//
// Returns an array of all tokens formed by the '/'
// characters in the string.
func splitRouteElements(route string) []string {
	route = strings.TrimPrefix(route, "/")
	route = strings.TrimSuffix(route, "/")

	if len(route) == 0 {
		return make([]string, 0)
	}

	return strings.Split(route, "/")
}

// ExtractRouteVars :
// This helper allows to conveniently extract the information
// available in the route used to contact the server. Using
// the input route it will try to detect the query parameters
// defined for this route along with information about the
// actual extra path that may have been provided.
// In case the route used to contact the server does not
// start with the input `route` value an error is returned.
//
// The `route` represents the common route prefix that should
// be ignored to extract parameters.
//
// The `r` represents the request that should be parsed to
// extract query parameters.
//
// Returns the extracted route variables along with any
// error. The returned value should not be used in case the
// error is not `nil`.
func ExtractRouteVars(route string, r *http.Request) (RouteVars, error) {
	vars := RouteVars{
		make([]string, 0),
		make(map[string]Values),
	}

	if r == nil {
		return vars, fmt.Errorf("could not extract vars from route \"%s\" (err: invalid request)", route)
	}

	full := r.URL.String()
	if !strings.HasPrefix(full, route) {
		return vars, fmt.Errorf("could not extract vars from route \"%s\" (route is \"%s\")", route, full)
	}

	extra := strings.TrimPrefix(full, route)

	// The extra path for the route is specified until we
	// reach a '?' character. After that come the query
	// parameters.
	beginQueryParams := strings.Index(extra, "?")
	if beginQueryParams < 0 {
		vars.RouteElems = splitRouteElements(extra)

		return vars, nil
	}

	vars.RouteElems = splitRouteElements(extra[:beginQueryParams])
	queryStr := extra[beginQueryParams+1:]

	params, err := url.ParseQuery(queryStr)
	if err != nil {
		return vars, fmt.Errorf("unable to parse query parameters in route \"%s\" (err: %v)", route, err)
	}

	for key, values := range params {
		vars.Params[key] = Values(values)
	}

	return vars, nil
}

// Answer :
// Used to marshal the input data and send it as the answer
// to the client's request with the specified status code.
// In case the data cannot be marshalled a `500` error is
// produced instead.
//
// The `w` represents the response writer to use to provide
// the answer.
//
// The `status` defines the `HTTP` status code of the answer.
//
// The `data` defines the payload to marshal.
func Answer(w http.ResponseWriter, status int, data interface{}) {
	out, err := json.Marshal(data)
	if err != nil {
		http.Error(w, InternalServerErrorString(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(out)
}
