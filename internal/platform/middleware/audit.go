package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/platform/auth"
)

// AuditEntry records one state-changing portal request: who did what to
// which record, from where, and how it ended.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	SessionID  string
	Resource   string
	RecordID   string
	Action     string
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries beyond the log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every mutating request under /api/: sign-ins, record
// approvals, bookings and notification changes. Reads are not audited.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if !isAuditable(req.Method, path) {
				return next(c)
			}

			err := next(c)

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
			}
			if he, ok := err.(*echo.HTTPError); ok {
				entry.StatusCode = he.Code
			}

			// The session middleware may have re-derived the identity during
			// the request (sign-in), so read it after the handler ran.
			ctx := c.Request().Context()
			entry.UserID = auth.UserIDFromContext(ctx)
			entry.UserRoles = auth.RolesFromContext(ctx)
			entry.SessionID = auth.SessionIDFromContext(ctx)
			entry.RequestID, _ = c.Get("request_id").(string)
			entry.Resource, entry.RecordID, entry.Action = auditTarget(req.Method, path)

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			evt := logger.Info()
			if entry.StatusCode == http.StatusUnauthorized || entry.StatusCode == http.StatusForbidden {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("session_id", entry.SessionID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("record_id", entry.RecordID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("portal_change")

			return err
		}
	}
}

func isAuditable(method, path string) bool {
	if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
		return false
	}
	return strings.HasPrefix(path, "/api/")
}

// auditTarget splits an API path into the resource, record and action it
// touches. A leading version segment is skipped:
//
//	/api/v1/auth/login                 -> auth, "", login
//	/api/v1/store/doctors/42/approve   -> doctors, 42, approve
//	/api/v1/notifications/7/read       -> notifications, 7, read
//	/api/store/appointments            -> appointments, "", create
func auditTarget(method, path string) (resource, id, action string) {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/"), "/"), "/")
	if len(segs) > 1 && isVersion(segs[0]) {
		segs = segs[1:]
	}
	if len(segs) == 0 || segs[0] == "" {
		return "unknown", "", methodAction(method)
	}

	switch segs[0] {
	case "auth":
		resource = "auth"
		if len(segs) > 1 {
			action = segs[1]
		}
	case "store", "admin":
		resource = segs[0]
		if len(segs) > 1 {
			resource = segs[1]
		}
		if len(segs) > 2 {
			id = segs[2]
		}
		if len(segs) > 3 {
			action = segs[3]
		}
	default:
		resource = segs[0]
		if len(segs) > 1 {
			id = segs[1]
		}
		if len(segs) > 2 {
			action = segs[2]
		}
	}
	if action == "" {
		action = methodAction(method)
	}
	return resource, id, action
}

func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func methodAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
