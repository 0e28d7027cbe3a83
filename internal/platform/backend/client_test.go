package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	codes []int
}

func (o *recordingObserver) ObserveBackendCall(method, endpoint string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, method+" "+endpoint)
	o.codes = append(o.codes, status)
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return New(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, zerolog.Nop(), WithObserver(obs)), obs
}

func TestClient_Login_Success(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "john@x.com" || body["password"] != "secret" {
			t.Errorf("unexpected body %v", body)
		}
		w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1","name":"John","email":"john@x.com","role":"patient"},"token":"tok"}}`))
	})

	res, err := c.Login(context.Background(), "john@x.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "tok" || res.User.ID != "u1" || res.User.Role != "patient" {
		t.Errorf("unexpected result %+v", res)
	}
	if len(obs.calls) != 1 || obs.calls[0] != "POST /auth/login" || obs.codes[0] != 200 {
		t.Errorf("unexpected observations %v %v", obs.calls, obs.codes)
	}
}

func TestClient_Login_BareBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"u1","email":"a@b.c","role":"doctor"},"token":"tok"}`))
	})
	res, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.User.Role != "doctor" {
		t.Errorf("expected doctor, got %s", res.User.Role)
	}
}

func TestClient_Login_MissingToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"u1"}}`))
	})
	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatal("expected error for response without token")
	}
}

func TestClient_APIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	_, err := c.Login(context.Background(), "a@b.c", "bad")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("expected errors.Is(err, ErrUnauthorized)")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("401 must not match ErrNotFound")
	}
}

func TestClient_BearerToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Write([]byte(`{"totalPatients":3,"pendingApprovals":1}`))
	})
	stats, err := c.AdminStats(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPatients != 3 || stats.PendingApprovals != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestClient_AdminList_Query(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "10" || q.Get("sort") != "name" || q.Get("order") != "asc" || q.Get("search") != "john" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"items":[{"id":"p1","name":"John"}],"total":11}`))
	})
	page, err := c.AdminList(context.Background(), "tok", "patients", ListQuery{Page: 2, Limit: 10, Sort: "name", Order: "asc", Search: "john"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 11 || len(page.Items) != 1 || page.Page != 2 || page.Limit != 10 {
		t.Errorf("unexpected page %+v", page)
	}
	if obs.calls[0] != "GET /admin/patients" {
		t.Errorf("query string should not reach the endpoint label: %s", obs.calls[0])
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	obs := &recordingObserver{}
	c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, zerolog.Nop(), WithObserver(obs))
	if err := c.ForgotPassword(context.Background(), "a@b.c"); err == nil {
		t.Fatal("expected network error")
	}
	if len(obs.codes) != 1 || obs.codes[0] != 0 {
		t.Errorf("expected a single observation with status 0, got %v", obs.codes)
	}
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"/appointments/42/confirm":     "/appointments/:id/confirm",
		"/admin/doctors/d-7a1/approve": "/admin/doctors/:id/approve",
		"/admin/patients?page=2":       "/admin/patients",
		"/auth/login":                  "/auth/login",
	}
	for in, want := range tests {
		if got := endpointLabel(in); got != want {
			t.Errorf("endpointLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListQuery_ValuesOmitsZero(t *testing.T) {
	if v := (ListQuery{}).Values(); len(v) != 0 {
		t.Errorf("expected empty values, got %v", v)
	}
}

func TestClient_ResponseTooLarge(t *testing.T) {
	old := maxResponseBytes
	maxResponseBytes = 16
	t.Cleanup(func() { maxResponseBytes = old })

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[1,2,3,4,5,6,7,8,9,10]}`))
	})
	var out []int
	err := c.Get(context.Background(), "", "/items", nil, &out)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes followed by a two-byte rune straddling the cut.
	raw := strings.Repeat("a", maxMessageBytes-1) + "é" + "tail"
	msg := errorMessage([]byte(raw))
	if !utf8.ValidString(msg) {
		t.Fatalf("truncated message is not valid UTF-8: %q", msg[len(msg)-4:])
	}
	if len(msg) != maxMessageBytes-1 {
		t.Errorf("expected %d bytes, got %d", maxMessageBytes-1, len(msg))
	}

	short := errorMessage([]byte("  gateway down  "))
	if short != "gateway down" {
		t.Errorf("expected trimmed message, got %q", short)
	}
}
