package account

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
	"github.com/healthportal/portal/pkg/validation"
)

// Authenticator is the slice of the backend API the account container uses.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResult, error)
	Register(ctx context.Context, req backend.RegisterRequest) error
	ForgotPassword(ctx context.Context, email string) error
}

// Toaster receives transient user-facing messages.
type Toaster interface {
	Toast(kind models.ToastKind, message string)
}

// Recorder counts authentication outcomes.
type Recorder interface {
	AuthAttempt(action string, ok bool)
}

// Container is the authentication state of one workspace. The signed-in user
// and token live in memory and in Storage under KeyUser and KeyToken.
type Container struct {
	sessionID string
	storage   Storage
	api       Authenticator
	logger    zerolog.Logger

	mu         sync.RWMutex
	user       *models.User
	token      string
	lastErrors validation.Result
	listeners  []func(*models.User)
	toaster    Toaster
	recorder   Recorder
}

func NewContainer(sessionID string, storage Storage, api Authenticator, logger zerolog.Logger) *Container {
	return &Container{
		sessionID: sessionID,
		storage:   storage,
		api:       api,
		logger:    logger.With().Str("component", "account").Logger(),
	}
}

func (c *Container) SetToaster(t Toaster) {
	c.mu.Lock()
	c.toaster = t
	c.mu.Unlock()
}

func (c *Container) SetRecorder(r Recorder) {
	c.mu.Lock()
	c.recorder = r
	c.mu.Unlock()
}

// OnChange registers fn to be called after every login, logout and restore.
func (c *Container) OnChange(fn func(*models.User)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// User returns a copy of the signed-in user, or nil.
func (c *Container) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Container) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Container) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil && c.token != ""
}

// LastErrors returns the field errors of the last rejected form.
func (c *Container) LastErrors() validation.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErrors
}

// Login signs the workspace in. Every failure is logged and reported as false.
func (c *Container) Login(ctx context.Context, email, password string) bool {
	ok := c.login(ctx, strings.TrimSpace(email), password)
	c.record("login", ok)
	return ok
}

func (c *Container) login(ctx context.Context, email, password string) bool {
	form := LoginForm{Email: email, Password: password}
	res := form.Validate()
	c.setErrors(res)
	if !res.Valid() {
		c.logger.Debug().Strs("fields", res.Fields()).Msg("login form rejected")
		c.toast(models.ToastError, "Please enter a valid email and password")
		return false
	}

	result, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.logger.Error().Err(err).Str("email", email).Msg("login failed")
		if errors.Is(err, backend.ErrUnauthorized) {
			c.toast(models.ToastError, "Invalid email or password")
		} else {
			c.toast(models.ToastError, "Login failed. Please try again")
		}
		return false
	}

	if err := c.persist(ctx, result.User, result.Token); err != nil {
		c.logger.Error().Err(err).Msg("persisting login failed")
		if derr := c.storage.Delete(ctx, c.sid(), KeyUser, KeyToken); derr != nil {
			c.logger.Error().Err(derr).Msg("clearing partial login failed")
		}
		c.toast(models.ToastError, "Login failed. Please try again")
		return false
	}

	user := result.User
	c.set(&user, result.Token)
	c.logger.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user signed in")
	c.toast(models.ToastSuccess, "Welcome back, "+user.Name)
	return true
}

func (c *Container) persist(ctx context.Context, user models.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := c.storage.Set(ctx, c.sid(), KeyUser, string(raw)); err != nil {
		return err
	}
	return c.storage.Set(ctx, c.sid(), KeyToken, token)
}

func (c *Container) sid() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Rekey moves the stored sign-in from the current session id to newID and
// drops the old keys, so a cookie carrying the old id no longer restores it.
func (c *Container) Rekey(ctx context.Context, newID string) error {
	c.mu.RLock()
	oldID, user, token := c.sessionID, c.user, c.token
	c.mu.RUnlock()

	if user != nil && token != "" {
		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := c.storage.Set(ctx, newID, KeyUser, string(raw)); err != nil {
			return err
		}
		if err := c.storage.Set(ctx, newID, KeyToken, token); err != nil {
			return err
		}
	}
	if err := c.storage.Delete(ctx, oldID, KeyUser, KeyToken); err != nil {
		return err
	}

	c.mu.Lock()
	c.sessionID = newID
	c.mu.Unlock()
	return nil
}

// Logout clears the in-memory state and both persistent keys.
func (c *Container) Logout(ctx context.Context) {
	if err := c.storage.Delete(ctx, c.sid(), KeyUser, KeyToken); err != nil {
		c.logger.Error().Err(err).Msg("clearing session storage failed")
	}
	c.set(nil, "")
	c.record("logout", true)
	c.logger.Info().Msg("user signed out")
}

// Register submits form and, when the backend accepts it, signs in with the
// same credentials.
func (c *Container) Register(ctx context.Context, form RegistrationForm) bool {
	res := form.Validate()
	c.setErrors(res)
	if !res.Valid() {
		c.record("register", false)
		c.toast(models.ToastError, "Please fix the highlighted fields")
		return false
	}
	req := form.request()
	if err := c.api.Register(ctx, req); err != nil {
		c.logger.Error().Err(err).Str("email", req.Email).Msg("registration failed")
		c.record("register", false)
		c.toast(models.ToastError, registrationMessage(err))
		return false
	}
	c.record("register", true)
	return c.Login(ctx, req.Email, req.Password)
}

func registrationMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Registration failed. Please try again"
}

// ForgotPassword asks the backend to send a reset link to email.
func (c *Container) ForgotPassword(ctx context.Context, email string) bool {
	form := ForgotPasswordForm{Email: email}
	res := form.Validate()
	c.setErrors(res)
	if !res.Valid() {
		c.toast(models.ToastError, "Please enter a valid email")
		return false
	}
	if err := c.api.ForgotPassword(ctx, strings.TrimSpace(email)); err != nil {
		c.logger.Error().Err(err).Msg("password reset request failed")
		c.record("forgot_password", false)
		c.toast(models.ToastError, "Could not send reset link. Please try again")
		return false
	}
	c.record("forgot_password", true)
	c.toast(models.ToastSuccess, "Password reset link sent to "+strings.TrimSpace(email))
	return true
}

// Restore rehydrates the container from Storage. Both keys must be present;
// the token is not checked for expiry.
func (c *Container) Restore(ctx context.Context) bool {
	rawUser, okUser, err := c.storage.Get(ctx, c.sid(), KeyUser)
	if err != nil {
		c.logger.Error().Err(err).Msg("reading stored user failed")
		return false
	}
	token, okToken, err := c.storage.Get(ctx, c.sid(), KeyToken)
	if err != nil {
		c.logger.Error().Err(err).Msg("reading stored token failed")
		return false
	}
	if !okUser || !okToken || token == "" {
		return false
	}
	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == "" {
		c.logger.Warn().Err(err).Msg("discarding malformed stored user")
		return false
	}
	c.set(&user, token)
	return true
}

func (c *Container) set(user *models.User, token string) {
	c.mu.Lock()
	c.user = user
	c.token = token
	listeners := append([]func(*models.User){}, c.listeners...)
	c.mu.Unlock()

	var snapshot *models.User
	if user != nil {
		u := *user
		snapshot = &u
	}
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (c *Container) setErrors(r validation.Result) {
	c.mu.Lock()
	c.lastErrors = r
	c.mu.Unlock()
}

func (c *Container) toast(kind models.ToastKind, msg string) {
	c.mu.RLock()
	t := c.toaster
	c.mu.RUnlock()
	if t != nil {
		t.Toast(kind, msg)
	}
}

func (c *Container) record(action string, ok bool) {
	c.mu.RLock()
	r := c.recorder
	c.mu.RUnlock()
	if r != nil {
		r.AuthAttempt(action, ok)
	}
}
