package session

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthportal/portal/internal/domain/account"
	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/notification"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/auth"
	"github.com/healthportal/portal/pkg/models"
)

// CookieName is the session cookie carrying the signed workspace id.
const CookieName = "portal_session"

const workspaceKey = "portal.workspace"

// MiddlewareConfig configures the session middleware.
type MiddlewareConfig struct {
	Signer  *auth.SessionSigner
	Secure  bool
	Skipper func(echo.Context) bool
}

// Middleware binds every request to a workspace. Missing or invalid cookies
// start a new workspace; cookies past half their lifetime are renewed and a
// sign-in rotates the session id before the response is written. The
// request context carries the session id and, when signed in, the user id
// and role for auth.RequireRole.
func (m *Manager) Middleware(cfg MiddlewareConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = auth.SessionSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			id, renew := "", true
			if cookie, err := c.Cookie(CookieName); err == nil {
				if claims, err := cfg.Signer.ParseClaims(cookie.Value); err == nil {
					id = claims.Subject
					renew = cfg.Signer.NeedsRenewal(claims)
				}
			}
			if id == "" {
				id = auth.NewSessionID()
			}
			if renew {
				if err := setCookie(c, cfg, id); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
				}
			}

			req := c.Request()
			ws := m.Get(req.Context(), id)
			c.Set(workspaceKey, ws)
			c.SetRequest(req.WithContext(identity(req, ws)))

			// A sign-in during this request moves the workspace to a new id.
			before := userID(ws)
			c.Response().Before(func() {
				after := userID(ws)
				if after == "" || after == before {
					return
				}
				newID, err := m.Rotate(c.Request().Context(), ws)
				if err != nil {
					m.logger.Error().Err(err).Msg("rotating session after sign-in failed")
					return
				}
				if err := setCookie(c, cfg, newID); err != nil {
					m.logger.Error().Err(err).Msg("issuing rotated session cookie failed")
				}
			})
			return next(c)
		}
	}
}

func setCookie(c echo.Context, cfg MiddlewareConfig, id string) error {
	raw, err := cfg.Signer.Issue(id)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(cfg.Signer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func userID(ws *Workspace) string {
	if u := ws.User(); u != nil {
		return u.ID
	}
	return ""
}

func identity(req *http.Request, ws *Workspace) context.Context {
	if u := ws.User(); u != nil {
		return auth.WithIdentity(req.Context(), ws.ID(), u.ID, []string{u.Role.String()})
	}
	return auth.WithIdentity(req.Context(), ws.ID(), "", nil)
}

// From returns the workspace bound to c. It panics when the session
// middleware did not run, which is a wiring bug.
func From(c echo.Context) *Workspace {
	return c.Get(workspaceKey).(*Workspace)
}

func AccountFrom(c echo.Context) *account.Container { return From(c).Account }

func SearchFrom(c echo.Context) *search.Container { return From(c).Search }

func NotificationsFrom(c echo.Context) *notification.Container { return From(c).Notifications }

func DataFrom(c echo.Context) *datastore.Container { return From(c).Data }

func UserFrom(c echo.Context) *models.User { return From(c).User() }

// SearchTerm returns the workspace's current search query.
func SearchTerm(c echo.Context) string { return From(c).Search.Query() }

// UserID identifies the signed-in user of c for the websocket handler.
func UserID(c echo.Context) (string, bool) {
	ws, ok := c.Get(workspaceKey).(*Workspace)
	if !ok {
		return "", false
	}
	u := ws.User()
	if u == nil {
		return "", false
	}
	return u.ID, true
}
