package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/domain/account"
	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/notification"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/auth"
	"github.com/healthportal/portal/internal/platform/websocket"
)

// Backend is everything the containers need from the REST client.
type Backend interface {
	account.Authenticator
	datastore.Backend
}

// Recorder receives session metrics.
type Recorder interface {
	account.Recorder
	SetActiveSessions(n int)
}

// Manager owns the live workspaces of the process.
type Manager struct {
	storage   account.Storage
	api       Backend
	publisher websocket.EventPublisher
	templates *notification.TemplateEngine
	recorder  Recorder
	logger    zerolog.Logger
	ttl       time.Duration
	now       func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// Options configures a Manager. Publisher and Recorder may be nil.
type Options struct {
	Storage   account.Storage
	Backend   Backend
	Publisher websocket.EventPublisher
	Recorder  Recorder
	Logger    zerolog.Logger
	TTL       time.Duration
}

func NewManager(opts Options) *Manager {
	if opts.Storage == nil {
		opts.Storage = account.NewMemoryStorage()
	}
	return &Manager{
		storage:    opts.Storage,
		api:        opts.Backend,
		publisher:  opts.Publisher,
		templates:  notification.NewTemplateEngine(),
		recorder:   opts.Recorder,
		logger:     opts.Logger.With().Str("component", "session").Logger(),
		ttl:        opts.TTL,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace id, creating it (and restoring a previous sign-in
// from storage) on first use. Concurrent callers for a new id wait until the
// restore has finished.
func (m *Manager) Get(ctx context.Context, id string) *Workspace {
	m.mu.Lock()
	ws, ok := m.workspaces[id]
	if !ok {
		ws = m.build(id)
		m.workspaces[id] = ws
	}
	n := len(m.workspaces)
	m.mu.Unlock()

	ws.touch(m.now())
	if ok {
		<-ws.ready
		return ws
	}

	m.setActive(n)
	if ws.Account.Restore(ctx) {
		m.logger.Debug().Str("session_id", id).Msg("restored signed-in workspace")
	}
	close(ws.ready)
	return ws
}

// Rotate moves ws to a fresh session id, carrying its stored sign-in along,
// and returns the new id. The old id no longer resolves to ws.
func (m *Manager) Rotate(ctx context.Context, ws *Workspace) (string, error) {
	oldID := ws.ID()
	newID := auth.NewSessionID()
	if err := ws.Account.Rekey(ctx, newID); err != nil {
		return "", fmt.Errorf("rekey session storage: %w", err)
	}

	m.mu.Lock()
	if m.workspaces[oldID] == ws {
		delete(m.workspaces, oldID)
	}
	m.workspaces[newID] = ws
	m.mu.Unlock()

	ws.setID(newID)
	m.logger.Debug().Str("session_id", newID).Msg("rotated session id")
	return newID, nil
}

func (m *Manager) build(id string) *Workspace {
	logger := m.logger.With().Str("session_id", id).Logger()
	acct := account.NewContainer(id, m.storage, m.api, logger)
	ws := &Workspace{
		id:            id,
		Account:       acct,
		Search:        search.NewContainer(),
		Notifications: notification.NewContainer(m.templates, m.publisher, logger),
		Data:          datastore.NewContainer(m.api, acct.Token, logger),
		History:       NewHistory("/"),
		publisher:     m.publisher,
		logger:        logger,
		ready:         make(chan struct{}),
	}
	acct.SetToaster(ws)
	ws.Data.SetToaster(ws)
	if m.recorder != nil {
		acct.SetRecorder(m.recorder)
	}
	acct.OnChange(ws.onUserChange)
	return ws
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}

// Evict drops workspaces idle for longer than the TTL. Their storage entries
// are kept, so a returning visitor with a valid cookie is restored.
func (m *Manager) Evict() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	evicted := 0
	for id, ws := range m.workspaces {
		if ws.idleSince().Before(cutoff) {
			delete(m.workspaces, id)
			evicted++
		}
	}
	n := len(m.workspaces)
	m.mu.Unlock()

	if evicted > 0 {
		m.setActive(n)
		m.logger.Debug().Int("evicted", evicted).Int("remaining", n).Msg("evicted idle workspaces")
	}
	return evicted
}

// Run evicts idle workspaces every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evict()
		}
	}
}

func (m *Manager) setActive(n int) {
	if m.recorder != nil {
		m.recorder.SetActiveSessions(n)
	}
}
