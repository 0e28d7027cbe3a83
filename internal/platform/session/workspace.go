// Package session binds each visitor to a workspace: one instance of every
// state container, a navigation history and a toast queue, looked up by the
// signed session cookie.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/domain/account"
	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/notification"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/websocket"
	"github.com/healthportal/portal/pkg/models"
)

const maxToasts = 20

// Workspace is the server-side state of one visitor.
type Workspace struct {
	Account       *account.Container
	Search        *search.Container
	Notifications *notification.Container
	Data          *datastore.Container
	History       *History

	publisher websocket.EventPublisher
	logger    zerolog.Logger
	// ready is closed once the stored sign-in has been restored.
	ready     chan struct{}

	mu       sync.Mutex
	id       string
	toasts   []models.Toast
	lastSeen time.Time
}

// ID returns the session id the workspace is currently keyed by.
func (w *Workspace) ID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.id
}

func (w *Workspace) setID(id string) {
	w.mu.Lock()
	w.id = id
	w.mu.Unlock()
}

// Toast queues a transient message for the next rendered view and pushes it
// to the signed-in user's live connections.
func (w *Workspace) Toast(kind models.ToastKind, message string) {
	t := models.Toast{Kind: kind, Message: message, Time: time.Now().UTC()}

	w.mu.Lock()
	w.toasts = append(w.toasts, t)
	if len(w.toasts) > maxToasts {
		w.toasts = w.toasts[len(w.toasts)-maxToasts:]
	}
	w.mu.Unlock()

	u := w.Account.User()
	if w.publisher == nil || u == nil {
		return
	}
	event, err := websocket.NewEvent(websocket.EventToast, websocket.UserTopic(u.ID), "", t)
	if err != nil {
		w.logger.Error().Err(err).Msg("encoding toast event")
		return
	}
	if err := w.publisher.Publish(context.Background(), event); err != nil {
		w.logger.Warn().Err(err).Msg("publishing toast failed")
	}
}

// DrainToasts returns and clears the queued toasts.
func (w *Workspace) DrainToasts() []models.Toast {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.toasts
	w.toasts = nil
	return out
}

// User is shorthand for the account container's user.
func (w *Workspace) User() *models.User { return w.Account.User() }

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// onUserChange resets the user-scoped containers after sign-in and sign-out.
func (w *Workspace) onUserChange(u *models.User) {
	w.Notifications.Reset(u)
	w.Data.Reset()
	w.Search.Clear()
	if u == nil {
		w.History.Reset("/")
		w.logger.Debug().Msg("workspace signed out")
		return
	}
	w.logger.Debug().Str("user_id", u.ID).Str("role", u.Role.String()).Msg("workspace signed in")
}
