// Package notification keeps the per-user notification list of a workspace.
// Entries are seeded from role templates on sign-in and pushed to the user's
// open websocket connections when added.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/platform/websocket"
	"github.com/healthportal/portal/pkg/models"
)

// NewNotification is the caller-supplied part of a notification. Id, time and
// the unread flag are assigned by the container.
type NewNotification struct {
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      models.NotificationType `json:"type"`
	RelatedID *string                 `json:"related_id,omitempty"`
}

// Container is an ordered, newest-first notification list.
type Container struct {
	templates *TemplateEngine
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time

	mu     sync.RWMutex
	userID string
	items  []models.Notification
}

// NewContainer returns an empty container. publisher may be nil.
func NewContainer(templates *TemplateEngine, publisher websocket.EventPublisher, logger zerolog.Logger) *Container {
	if templates == nil {
		templates = NewTemplateEngine()
	}
	return &Container{
		templates: templates,
		publisher: publisher,
		logger:    logger.With().Str("component", "notification").Logger(),
		now:       time.Now,
	}
}

// Reset replaces the list with the seed data for user's role. A nil user
// empties it.
func (c *Container) Reset(user *models.User) {
	var items []models.Notification
	userID := ""
	if user != nil {
		userID = user.ID
		seeded, err := c.templates.Seed(user.Role, c.now(), newID)
		if err != nil {
			c.logger.Error().Err(err).Str("role", user.Role.String()).Msg("seeding notifications failed")
		}
		items = seeded
	}

	c.mu.Lock()
	c.userID = userID
	c.items = items
	c.mu.Unlock()
}

// Add prepends a new unread entry and returns it.
func (c *Container) Add(ctx context.Context, in NewNotification) models.Notification {
	if in.Type == "" {
		in.Type = models.NotificationSystem
	}
	n := models.Notification{
		ID:        newID(),
		Title:     in.Title,
		Message:   in.Message,
		Time:      c.now(),
		Unread:    true,
		Type:      in.Type,
		RelatedID: in.RelatedID,
	}

	c.mu.Lock()
	c.items = append([]models.Notification{n}, c.items...)
	userID := c.userID
	c.mu.Unlock()

	c.publish(ctx, userID, n)
	return n
}

// AddFromTemplate renders templateID with data and adds the result.
func (c *Container) AddFromTemplate(ctx context.Context, templateID string, data map[string]string, relatedID *string) (models.Notification, error) {
	t, err := c.templates.Render(templateID, data)
	if err != nil {
		return models.Notification{}, err
	}
	return c.Add(ctx, NewNotification{Title: t.Title, Message: t.Message, Type: t.Type, RelatedID: relatedID}), nil
}

func (c *Container) publish(ctx context.Context, userID string, n models.Notification) {
	if c.publisher == nil || userID == "" {
		return
	}
	event, err := websocket.NewEvent(websocket.EventNotification, websocket.UserTopic(userID), n.ID, n)
	if err != nil {
		c.logger.Error().Err(err).Msg("encoding notification event")
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn().Err(err).Str("notification_id", n.ID).Msg("publishing notification failed")
	}
}

// MarkAsRead clears the unread flag of id. It reports whether id exists.
func (c *Container) MarkAsRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Unread = false
			return true
		}
	}
	return false
}

func (c *Container) MarkAllAsRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].Unread = false
	}
}

// Remove deletes id. It reports whether id existed.
func (c *Container) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the entries, newest first.
func (c *Container) List() []models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// UnreadCount is derived from the list on every call.
func (c *Container) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, it := range c.items {
		if it.Unread {
			n++
		}
	}
	return n
}

func newID() string { return uuid.New().String() }
