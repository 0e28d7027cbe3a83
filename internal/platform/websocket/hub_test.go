package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newClient(id string, topics ...string) *Client {
	return &Client{ID: id, Topics: topics, Send: make(chan []byte, sendBuffer)}
}

func TestHub_RegisterClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.Register(newClient("client-1", UserTopic("u1")))

	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
	if hub.TopicCount("user:u1") != 1 {
		t.Fatalf("expected 1 client on user:u1, got %d", hub.TopicCount("user:u1"))
	}
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient("close-1", UserTopic("u1"))

	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 || hub.TopicCount(UserTopic("u1")) != 0 {
		t.Fatal("expected hub to be empty")
	}
	if _, ok := <-client.Send; ok {
		t.Fatal("expected Send channel to be closed after unregister")
	}
}

func TestHub_BroadcastToTopic(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	subscriber := newClient("sub-1", UserTopic("u1"))
	other := newClient("sub-2", UserTopic("u2"))
	hub.Register(subscriber)
	hub.Register(other)

	event, err := NewEvent(EventNotification, UserTopic("u1"), "n1", map[string]string{"title": "Hello"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	hub.Broadcast(UserTopic("u1"), event)

	select {
	case msg := <-subscriber.Send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		if received.Type != EventNotification || received.ID != "n1" {
			t.Fatalf("unexpected event: %+v", received)
		}
		if !strings.Contains(string(received.Data), "Hello") {
			t.Fatalf("expected payload, got %s", received.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-other.Send:
		t.Fatal("other user should not have received event")
	default:
	}
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := &Client{ID: "slow", Topics: []string{"user:u1"}, Send: make(chan []byte, 1)}
	hub.Register(client)

	hub.Broadcast("user:u1", Event{Type: EventToast})
	hub.Broadcast("user:u1", Event{Type: EventToast})

	if len(client.Send) != 1 {
		t.Fatalf("expected 1 buffered message, got %d", len(client.Send))
	}
}

func TestHub_PublishEvent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newClient("pub-1", UserTopic("u7"))
	hub.Register(client)

	var publisher EventPublisher = hub
	if err := publisher.Publish(context.Background(), Event{Type: EventToast, Topic: UserTopic("u7")}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-client.Send:
	case <-time.After(time.Second):
		t.Fatal("did not receive published event")
	}
}

func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	const n = 100

	clients := make([]*Client, n)
	for i := range clients {
		clients[i] = newClient("c", "user:shared")
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
			hub.Broadcast("user:shared", Event{Type: EventToast})
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://portal.example"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if !check(req) {
		t.Error("requests without Origin should pass")
	}
	req.Header.Set("Origin", "http://portal.example")
	if !check(req) {
		t.Error("listed origin should pass")
	}
	req.Header.Set("Origin", "http://evil.example")
	if check(req) {
		t.Error("unlisted origin should fail")
	}
	if !originChecker([]string{"*"})(req) {
		t.Error("wildcard should accept any origin")
	}
}

func TestHandler_RejectsAnonymous(t *testing.T) {
	h := NewHandler(NewHub(zerolog.Nop()), func(echo.Context) (string, bool) { return "", false }, nil)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ws", nil), httptest.NewRecorder())

	err := h.HandleConnect(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHandler_DeliversUserEvents(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	h := NewHandler(hub, func(echo.Context) (string, bool) { return "u42", true }, nil)

	e := echo.New()
	h.RegisterRoutes(e.Group(""))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gorillawebsocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.TopicCount(UserTopic("u42")) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	event, _ := NewEvent(EventToast, UserTopic("u42"), "", map[string]string{"message": "Saved"})
	if err := hub.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var received Event
	if err := json.Unmarshal(msg, &received); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if received.Type != EventToast || received.Topic != "user:u42" {
		t.Fatalf("unexpected event: %+v", received)
	}
}
