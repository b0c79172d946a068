package handlers

// Values :
// A convenience define to allow for an easy manipulation of
// a list of strings as a single element. This is mostly used
// to be able to interpret multiple values for a single query
// parameter in an easy way.
type Values []string

// First :
// Returns the first value of the list or the empty string
// in case the list is empty. Most query parameters carry a
// single value so this covers the common case.
func (v Values) First() string {
	if len(v) == 0 {
		return ""
	}

	return v[0]
}

// RouteVars :
// Defines common information passed in the route used to
// contact the server. We handle the extra path that can be
// added to the route (typically to refine the behavior
// expected from the base route) and some query parameters.
// An object of this type is extracted for each request and
// passed to the underlying handler implementation.
//
// The `RouteElems` represents the extra path added to the
// route as it was provided to target the server. Typically
// if the server receives a request on `/planets`, the
// `RouteElems` will be set to the empty slice. On the other
// hand `/planets/1:15:8` will yield a single element
// `1:15:8` in the `RouteElems` slice.
//
// The `Params` define the query parameters associated to
// the input request. Note that in some cases no parameters
// are provided.
type RouteVars struct {
	RouteElems []string
	Params     map[string]Values
}
