package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthportal/portal/internal/platform/websocket"
	"github.com/healthportal/portal/pkg/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e websocket.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func newSeededContainer(t *testing.T, role models.Role) (*Container, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	c := NewContainer(NewTemplateEngine(), pub, zerolog.Nop())
	c.Reset(&models.User{ID: "u1", Role: role})
	return c, pub
}

func TestReset_SeedsEveryRole(t *testing.T) {
	for _, role := range models.Roles {
		c, _ := newSeededContainer(t, role)
		items := c.List()
		require.NotEmpty(t, items, role)
		for i := 1; i < len(items); i++ {
			assert.False(t, items[i].Time.After(items[i-1].Time), "%s seeds must be newest first", role)
		}
		for _, n := range items {
			assert.NotContains(t, n.Message, "{{", "unrendered placeholder in %s seed", role)
		}
	}
}

func TestReset_NilUserEmpties(t *testing.T) {
	c, _ := newSeededContainer(t, models.RoleDoctor)
	c.Reset(nil)
	assert.Empty(t, c.List())
	assert.Zero(t, c.UnreadCount())
}

func TestMarkAllAsRead_ZeroUnread(t *testing.T) {
	for _, role := range models.Roles {
		c, _ := newSeededContainer(t, role)
		c.Add(context.Background(), NewNotification{Title: "extra"})
		c.MarkAllAsRead()
		assert.Zero(t, c.UnreadCount(), role)
		assert.NotEmpty(t, c.List(), "mark all as read must not remove entries")
	}
}

func TestAdd_PrependsAndIncrementsUnread(t *testing.T) {
	c, pub := newSeededContainer(t, models.RolePatient)
	before := c.UnreadCount()
	beforeLen := len(c.List())

	n := c.Add(context.Background(), NewNotification{Title: "Lab results", Message: "ready", Type: models.NotificationReport})

	items := c.List()
	require.Len(t, items, beforeLen+1)
	assert.Equal(t, n.ID, items[0].ID)
	assert.True(t, items[0].Unread)
	assert.Equal(t, before+1, c.UnreadCount())

	require.Len(t, pub.events, 1)
	assert.Equal(t, websocket.EventNotification, pub.events[0].Type)
	assert.Equal(t, "user:u1", pub.events[0].Topic)
	assert.Equal(t, n.ID, pub.events[0].ID)
}

func TestAdd_UniqueIDsAndDefaultType(t *testing.T) {
	c := NewContainer(nil, nil, zerolog.Nop())
	a := c.Add(context.Background(), NewNotification{Title: "a"})
	b := c.Add(context.Background(), NewNotification{Title: "b"})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, models.NotificationSystem, a.Type)
}

func TestAdd_NoPublishWithoutUser(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewContainer(nil, pub, zerolog.Nop())
	c.Add(context.Background(), NewNotification{Title: "x"})
	assert.Empty(t, pub.events)
}

func TestMarkAsReadAndRemove(t *testing.T) {
	c := NewContainer(nil, nil, zerolog.Nop())
	n := c.Add(context.Background(), NewNotification{Title: "x"})

	assert.True(t, c.MarkAsRead(n.ID))
	assert.Zero(t, c.UnreadCount())
	assert.False(t, c.MarkAsRead("missing"))

	assert.True(t, c.Remove(n.ID))
	assert.False(t, c.Remove(n.ID))
	assert.Empty(t, c.List())
}

func TestAddFromTemplate(t *testing.T) {
	c := NewContainer(nil, nil, zerolog.Nop())
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	n, err := c.AddFromTemplate(context.Background(), "payment-received", map[string]string{"amount": "$20", "item": "chat"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Payment Received", n.Title)
	assert.Equal(t, "Payment of $20 received for chat.", n.Message)
	assert.Equal(t, models.NotificationPayment, n.Type)
	assert.Equal(t, 2026, n.Time.Year())

	_, err = c.AddFromTemplate(context.Background(), "nope", nil, nil)
	assert.Error(t, err)
}

func TestTemplateEngine_LeavesUnknownPlaceholders(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{ID: "t", Title: "Hi {{name}}", Message: "{{a}} and {{b}}"})
	out, err := e.Render("t", map[string]string{"name": "Ann", "a": "1"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ann", out.Title)
	assert.Equal(t, "1 and {{b}}", out.Message)
}
