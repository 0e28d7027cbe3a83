package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/platform/session"
	"github.com/healthportal/portal/pkg/models"
)

// NavItem is one entry of the dashboard menu.
type NavItem struct {
	Path   string `json:"path"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Frame is the shared dashboard chrome around role screens.
type Frame struct {
	Title       string       `json:"title"`
	User        *models.User `json:"user"`
	Nav         []NavItem    `json:"nav"`
	UnreadCount int          `json:"unread_count"`
	Search      string       `json:"search"`
}

// View is a rendered screen.
type View struct {
	Path   string         `json:"path"`
	Screen string         `json:"screen"`
	Title  string         `json:"title"`
	Layout string         `json:"layout"`
	Status Status         `json:"status"`
	Frame  *Frame         `json:"frame,omitempty"`
	Data   any            `json:"data,omitempty"`
	Retry  bool           `json:"retry,omitempty"`
	Error  string         `json:"error,omitempty"`
	Toasts []models.Toast `json:"toasts,omitempty"`
}

// Fallback is the data a Boundary renders in place of a failed screen.
type Fallback struct {
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// Boundary contains errors and panics raised by build and renders a retry
// fallback instead.
func Boundary(build Builder, message string, logger zerolog.Logger) Builder {
	return func(ctx context.Context, req *Request) (data any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Str("path", req.Path).Interface("panic", r).Msg("screen panicked")
				data, err = Fallback{Message: message, Retry: true}, nil
			}
		}()
		data, err = build(ctx, req)
		if err != nil {
			logger.Error().Err(err).Str("path", req.Path).Msg("screen failed")
			return Fallback{Message: message, Retry: true}, nil
		}
		return data, nil
	}
}

// Recorder counts rendered screens.
type Recorder interface {
	ScreenRendered(role, screen, status string)
}

// Renderer turns resolutions into views.
type Renderer struct {
	table    *Table
	recorder Recorder
}

func NewRenderer(table *Table, recorder Recorder) *Renderer {
	return &Renderer{table: table, recorder: recorder}
}

func (r *Renderer) Table() *Table { return r.table }

// Render resolves raw for ws's user and builds the screen. The returned code
// is the HTTP status the view should be served with.
func (r *Renderer) Render(ctx context.Context, ws *session.Workspace, raw string) (View, int, error) {
	user := ws.User()
	res := r.table.Resolve(raw, user)
	role := ""
	if user != nil {
		role = user.Role.String()
	}
	if res.Route == nil {
		return View{}, http.StatusInternalServerError, fmt.Errorf("no route for %q and no fallback registered", raw)
	}

	route := res.Route
	view := View{
		Path:   route.Path,
		Screen: route.Screen,
		Title:  route.Title,
		Layout: route.Layout,
		Status: res.Status,
	}
	if res.Status == StatusOK {
		view.Path = raw
	}

	if route.Build != nil {
		data, err := route.Build(ctx, &Request{
			Path:      route.Path,
			Requested: res.Requested,
			Query:     res.Query,
			User:      user,
			Workspace: ws,
		})
		if err != nil {
			if r.recorder != nil {
				r.recorder.ScreenRendered(role, route.Screen, string(StatusError))
			}
			return View{}, http.StatusInternalServerError, fmt.Errorf("render %s: %w", route.Screen, err)
		}
		if fb, ok := data.(Fallback); ok {
			view.Status = StatusError
			view.Retry = fb.Retry
			view.Error = fb.Message
		}
		view.Data = data
	}

	if route.Layout == LayoutDashboard && user != nil {
		view.Frame = r.frame(ws, user, route)
	}
	view.Toasts = ws.DrainToasts()

	if r.recorder != nil {
		r.recorder.ScreenRendered(role, route.Screen, string(view.Status))
	}
	code := http.StatusOK
	if res.Status == StatusForbidden {
		code = http.StatusForbidden
	}
	return view, code, nil
}

func (r *Renderer) frame(ws *session.Workspace, user *models.User, current *Route) *Frame {
	f := &Frame{
		Title:       current.Title,
		User:        user,
		UnreadCount: ws.Notifications.UnreadCount(),
		Search:      ws.Search.Query(),
	}
	for _, rt := range r.table.RoleRoutes(user.Role) {
		if rt.Nav == "" {
			continue
		}
		f.Nav = append(f.Nav, NavItem{Path: rt.Path, Label: rt.Nav, Active: rt.Path == current.Path})
	}
	return f
}
