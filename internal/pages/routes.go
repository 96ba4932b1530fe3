package pages

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/bbx/internal/shared"
)

// RouteKind names a client route.
type RouteKind int

const (
	RouteHome RouteKind = iota
	RouteList
	RouteNew
	RouteDetail
	RouteEdit
	RouteCallback
	RouteLoginRequired
)

func (k RouteKind) String() string {
	switch k {
	case RouteHome:
		return "home"
	case RouteList:
		return "list"
	case RouteNew:
		return "new"
	case RouteDetail:
		return "detail"
	case RouteEdit:
		return "edit"
	case RouteCallback:
		return "callback"
	case RouteLoginRequired:
		return "login-required"
	default:
		return fmt.Sprintf("route(%d)", int(k))
	}
}

// Route is a parsed client path.
type Route struct {
	Kind     RouteKind
	PostID   int
	Provider string
	Query    url.Values
	// Next is the route a login-required route was guarding.
	Next *Route
}

// RequiresAuth reports whether the route opens a form that writes.
func (r Route) RequiresAuth() bool {
	return r.Kind == RouteNew || r.Kind == RouteEdit
}

// Path renders the route back to its path.
func (r Route) Path() string {
	switch r.Kind {
	case RouteList:
		return "/posts"
	case RouteNew:
		return "/posts/new"
	case RouteDetail:
		return fmt.Sprintf("/posts/%d", r.PostID)
	case RouteEdit:
		return fmt.Sprintf("/posts/%d/edit", r.PostID)
	case RouteCallback:
		return "/oauth/callback/" + r.Provider
	case RouteLoginRequired:
		if r.Next != nil {
			return r.Next.Path()
		}
	}
	return "/"
}

// ParseRoute maps a client path (with optional query) to a [Route].
func ParseRoute(raw string) (Route, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Route{}, fmt.Errorf("%w: route %q", shared.ErrInvalidArgument, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 1 && parts[0] == "" {
		parts = nil
	}

	switch {
	case len(parts) == 0:
		return Route{Kind: RouteHome}, nil
	case len(parts) == 1 && parts[0] == "posts":
		return Route{Kind: RouteList}, nil
	case len(parts) == 2 && parts[0] == "posts" && parts[1] == "new":
		return Route{Kind: RouteNew}, nil
	case len(parts) >= 2 && len(parts) <= 3 && parts[0] == "posts":
		id, err := strconv.Atoi(parts[1])
		if err != nil || id <= 0 {
			return Route{}, fmt.Errorf("%w: post id %q", shared.ErrInvalidArgument, parts[1])
		}
		if len(parts) == 2 {
			return Route{Kind: RouteDetail, PostID: id}, nil
		}
		if parts[2] == "edit" {
			return Route{Kind: RouteEdit, PostID: id}, nil
		}
	case len(parts) == 3 && parts[0] == "oauth" && parts[1] == "callback" && parts[2] != "":
		return Route{Kind: RouteCallback, Provider: parts[2], Query: u.Query()}, nil
	}

	return Route{}, fmt.Errorf("%w: no route for %q", shared.ErrNotFound, u.Path)
}

// Guard replaces a write route with a login-required route for anonymous viewers.
func Guard(r Route, viewer Viewer) Route {
	if r.RequiresAuth() && !viewer.LoggedIn() {
		next := r
		return Route{Kind: RouteLoginRequired, Next: &next}
	}
	return r
}

// Open parses and guards in one step.
func Open(raw string, viewer Viewer) (Route, error) {
	r, err := ParseRoute(raw)
	if err != nil {
		return Route{}, err
	}
	return Guard(r, viewer), nil
}
