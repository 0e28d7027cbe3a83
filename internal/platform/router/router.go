// Package router resolves navigation paths to screens through a declarative
// route table. Public routes are matched first; everything else belongs to a
// role and renders inside the dashboard frame.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/healthportal/portal/internal/platform/session"
	"github.com/healthportal/portal/pkg/models"
)

var (
	ErrUnauthenticated = errors.New("sign in required")
	ErrForbidden       = errors.New("not allowed for this role")
)

// Layouts a screen can render in.
const (
	LayoutPublic    = "public"
	LayoutAuth      = "auth"
	LayoutDashboard = "dashboard"
)

// Status describes how a path was resolved.
type Status string

const (
	StatusOK              Status = "ok"
	StatusUnauthenticated Status = "unauthenticated"
	StatusForbidden       Status = "forbidden"
	StatusNotFound        Status = "not_found"
	StatusError           Status = "error"
)

// Guard decides whether user may open a route.
type Guard func(user *models.User) error

// Public admits everyone.
func Public(*models.User) error { return nil }

// Authenticated admits any signed-in user.
func Authenticated(user *models.User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireRoles admits signed-in users holding one of roles.
func RequireRoles(roles ...models.Role) Guard {
	return func(user *models.User) error {
		if user == nil {
			return ErrUnauthenticated
		}
		for _, r := range roles {
			if user.Role == r {
				return nil
			}
		}
		return ErrForbidden
	}
}

// Request is what a screen builder sees.
type Request struct {
	// Path is the matched route path; Requested is what the visitor asked for.
	Path      string
	Requested string
	Query     url.Values
	User      *models.User
	Workspace *session.Workspace
}

// Builder produces the view data of a screen.
type Builder func(ctx context.Context, req *Request) (any, error)

// Route is one entry of the table.
type Route struct {
	Path   string
	Screen string
	Title  string
	// Role is empty for public routes.
	Role   models.Role
	Layout string
	// Nav is the navigation label; empty keeps the route out of the menu.
	Nav   string
	Guard Guard
	Build Builder
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Route     *Route
	Status    Status
	Requested string
	Query     url.Values
}

// Table is the route table. It is built at startup and read-only afterwards.
type Table struct {
	public      map[string]*Route
	publicOrder []string
	roles       map[models.Role]map[string]*Route
	roleOrder   map[models.Role][]string
	landing     string
	home        string
}

// NewTable returns an empty table whose unauthenticated fallback is landing
// and whose per-role fallback is home.
func NewTable(landing, home string) *Table {
	return &Table{
		public:    make(map[string]*Route),
		roles:     make(map[models.Role]map[string]*Route),
		roleOrder: make(map[models.Role][]string),
		landing:   landing,
		home:      home,
	}
}

// Add registers r. Public routes default to the Public guard, role routes to
// RequireRoles(r.Role).
func (t *Table) Add(r Route) error {
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("route %q: path must start with /", r.Path)
	}
	if r.Screen == "" {
		return fmt.Errorf("route %q: screen is required", r.Path)
	}
	if r.Role == "" {
		if _, dup := t.public[r.Path]; dup {
			return fmt.Errorf("duplicate public route %q", r.Path)
		}
		if r.Guard == nil {
			r.Guard = Public
		}
		if r.Layout == "" {
			r.Layout = LayoutPublic
		}
		t.public[r.Path] = &r
		t.publicOrder = append(t.publicOrder, r.Path)
		return nil
	}

	if !r.Role.Valid() {
		return fmt.Errorf("route %q: unknown role %q", r.Path, r.Role)
	}
	if _, dup := t.public[r.Path]; dup {
		return fmt.Errorf("route %q for %s shadows a public route", r.Path, r.Role)
	}
	routes := t.roles[r.Role]
	if routes == nil {
		routes = make(map[string]*Route)
		t.roles[r.Role] = routes
	}
	if _, dup := routes[r.Path]; dup {
		return fmt.Errorf("duplicate route %q for %s", r.Path, r.Role)
	}
	if r.Guard == nil {
		r.Guard = RequireRoles(r.Role)
	}
	if r.Layout == "" {
		r.Layout = LayoutDashboard
	}
	routes[r.Path] = &r
	t.roleOrder[r.Role] = append(t.roleOrder[r.Role], r.Path)
	return nil
}

// SplitPath separates the path of raw from its query string.
func SplitPath(raw string) (string, url.Values) {
	path, query, _ := strings.Cut(raw, "?")
	if path == "" {
		path = "/"
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	return path, values
}

// Resolve maps raw to a route for user. Matching is exact on the path; the
// query string is handed to the screen untouched.
func (t *Table) Resolve(raw string, user *models.User) Resolution {
	path, query := SplitPath(raw)
	res := Resolution{Requested: path, Query: query}

	if r, ok := t.public[path]; ok {
		res.Route, res.Status = r, StatusOK
		return res
	}
	if user == nil {
		res.Route, res.Status = t.public[t.landing], StatusUnauthenticated
		return res
	}
	routes, ok := t.roles[user.Role]
	if !ok {
		res.Route, res.Status = t.public[t.landing], StatusForbidden
		return res
	}
	if r, ok := routes[path]; ok {
		if err := r.Guard(user); err != nil {
			res.Route, res.Status = t.public[t.landing], StatusForbidden
			return res
		}
		res.Route, res.Status = r, StatusOK
		return res
	}
	res.Route, res.Status = routes[t.home], StatusNotFound
	return res
}

// PublicRoutes returns the public routes in registration order.
func (t *Table) PublicRoutes() []Route {
	out := make([]Route, 0, len(t.publicOrder))
	for _, p := range t.publicOrder {
		out = append(out, *t.public[p])
	}
	return out
}

// RoleRoutes returns role's routes in registration order.
func (t *Table) RoleRoutes(role models.Role) []Route {
	out := make([]Route, 0, len(t.roleOrder[role]))
	for _, p := range t.roleOrder[role] {
		out = append(out, *t.roles[role][p])
	}
	return out
}

// Roles returns the roles that have routes, in display order.
func (t *Table) Roles() []models.Role {
	out := make([]models.Role, 0, len(t.roles))
	for _, r := range models.Roles {
		if _, ok := t.roles[r]; ok {
			out = append(out, r)
		}
	}
	return out
}
