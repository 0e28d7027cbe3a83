package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-unit-tests-only"

func TestSessionSigner_RoundTrip(t *testing.T) {
	s := NewSessionSigner(testSecret, time.Hour)
	sid := NewSessionID()

	tok, err := s.Issue(sid)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != sid {
		t.Errorf("expected %s, got %s", sid, got)
	}
}

func TestSessionSigner_RejectsWrongKey(t *testing.T) {
	tok, _ := NewSessionSigner(testSecret, time.Hour).Issue(NewSessionID())

	if _, err := NewSessionSigner("another-secret", time.Hour).Parse(tok); err != ErrBadSession {
		t.Errorf("expected ErrBadSession, got %v", err)
	}
}

func TestSessionSigner_RejectsExpired(t *testing.T) {
	s := NewSessionSigner(testSecret, time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := s.Issue(NewSessionID())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s.now = time.Now
	if _, err := s.Parse(tok); err != ErrBadSession {
		t.Errorf("expected ErrBadSession for expired token, got %v", err)
	}
}

func TestSessionSigner_RejectsNonUUIDSubject(t *testing.T) {
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "../../etc/passwd",
		Issuer:    "healthportal",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	if _, err := NewSessionSigner(testSecret, time.Hour).Parse(tok); err != ErrBadSession {
		t.Errorf("expected ErrBadSession, got %v", err)
	}
}

func TestSessionSigner_RejectsAlgNone(t *testing.T) {
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: NewSessionID(),
		Issuer:  "healthportal",
	}}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)

	if _, err := NewSessionSigner(testSecret, time.Hour).Parse(tok); err == nil {
		t.Error("expected alg=none token to be rejected")
	}
}

func TestSessionSigner_IssueRequiresID(t *testing.T) {
	if _, err := NewSessionSigner(testSecret, time.Hour).Issue(""); err == nil {
		t.Error("expected error for empty session id")
	}
}

func TestWithIdentity(t *testing.T) {
	ctx := WithIdentity(context.Background(), "sid-1", "u1", []string{"doctor"})
	if SessionIDFromContext(ctx) != "sid-1" {
		t.Error("session id not carried")
	}
	if UserIDFromContext(ctx) != "u1" {
		t.Error("user id not carried")
	}
	if roles := RolesFromContext(ctx); len(roles) != 1 || roles[0] != "doctor" {
		t.Errorf("unexpected roles %v", roles)
	}

	anon := WithIdentity(context.Background(), "sid-2", "", nil)
	if UserIDFromContext(anon) != "" || RolesFromContext(anon) != nil {
		t.Error("anonymous context must not carry a user")
	}
}

func TestSessionSigner_NeedsRenewal(t *testing.T) {
	s := NewSessionSigner(testSecret, time.Hour)
	issuedAt := time.Now()
	s.now = func() time.Time { return issuedAt }
	tok, err := s.Issue(NewSessionID())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := s.ParseClaims(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.NeedsRenewal(claims) {
		t.Error("fresh token should not need renewal")
	}

	s.now = func() time.Time { return issuedAt.Add(40 * time.Minute) }
	if !s.NeedsRenewal(claims) {
		t.Error("token past half its lifetime should need renewal")
	}
	if !s.NeedsRenewal(nil) {
		t.Error("missing claims should need renewal")
	}
}
