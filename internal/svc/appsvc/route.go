package appsvc

import (
	"errors"
	"fmt"
)

var ErrUnknownRoute = errors.New("unknown route")

// Route names a view of the application.
type Route string

const (
	RouteSignIn Route = "sign-in"
	RouteSignUp Route = "sign-up"
	RouteMain   Route = "main"
)

// ParseRoute validates a route name.
func ParseRoute(name string) (Route, error) {
	switch route := Route(name); route {
	case RouteSignIn, RouteSignUp, RouteMain:
		return route, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
}

// IsAuth reports whether the route belongs to the unauthenticated views.
func (r Route) IsAuth() bool {
	return r == RouteSignIn || r == RouteSignUp
}

// resolve applies the session guards to a requested route.
// Unauthenticated users only see auth routes, authenticated users never do.
func (r Route) resolve(loggedIn bool) Route {
	switch {
	case !loggedIn && !r.IsAuth():
		return RouteSignIn
	case loggedIn && r.IsAuth():
		return RouteMain
	default:
		return r
	}
}
