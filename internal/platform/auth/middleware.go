package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRolesKey contextKey = "user_roles"
	SessionIDKey contextKey = "session_id"
)

// ErrBadSession is returned for session cookies that fail verification.
var ErrBadSession = errors.New("invalid session token")

// SessionClaims is the payload of the signed session cookie. The subject is
// the workspace id; nothing about the signed-in user is carried here.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionSigner issues and verifies session cookies with an HMAC key.
type SessionSigner struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	return &SessionSigner{
		key:    []byte(secret),
		issuer: "healthportal",
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (s *SessionSigner) TTL() time.Duration { return s.ttl }

// NewSessionID returns a fresh random workspace id.
func NewSessionID() string {
	return uuid.NewString()
}

// Issue signs a session token for sessionID.
func (s *SessionSigner) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies raw and returns the workspace id it carries.
func (s *SessionSigner) Parse(raw string) (string, error) {
	claims, err := s.ParseClaims(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ParseClaims verifies raw and returns its claims.
func (s *SessionSigner) ParseClaims(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSession
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrBadSession
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrBadSession
	}
	return claims, nil
}

// NeedsRenewal reports whether claims are past half of their lifetime.
func (s *SessionSigner) NeedsRenewal(claims *SessionClaims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < s.ttl/2
}

// WithIdentity returns ctx carrying the session id and, when userID is not
// empty, the signed-in user and their roles.
func WithIdentity(ctx context.Context, sessionID, userID string, roles []string) context.Context {
	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	if userID != "" {
		ctx = context.WithValue(ctx, UserIDKey, userID)
		ctx = context.WithValue(ctx, UserRolesKey, roles)
	}
	return ctx
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(UserRolesKey).([]string)
	return roles
}

func SessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(SessionIDKey).(string)
	return sid
}
