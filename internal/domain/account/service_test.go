package account

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/pkg/models"
)

type fakeAuth struct {
	loginCalls    int
	registerCalls int
	forgotCalls   int
	loginErr      error
	registerErr   error
	forgotErr     error
	user          models.User
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*backend.AuthResult, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	u := f.user
	if u.Email == "" {
		u.Email = email
	}
	return &backend.AuthResult{User: u, Token: "tok-123"}, nil
}

func (f *fakeAuth) Register(context.Context, backend.RegisterRequest) error {
	f.registerCalls++
	return f.registerErr
}

func (f *fakeAuth) ForgotPassword(context.Context, string) error {
	f.forgotCalls++
	return f.forgotErr
}

type toastLog struct{ kinds []models.ToastKind }

func (t *toastLog) Toast(kind models.ToastKind, _ string) { t.kinds = append(t.kinds, kind) }

type failingStorage struct{ Storage }

func (failingStorage) Set(context.Context, string, string, string) error {
	return errors.New("disk full")
}

func newTestContainer(api Authenticator, store Storage) (*Container, *toastLog) {
	c := NewContainer("sess-1", store, api, zerolog.Nop())
	toasts := &toastLog{}
	c.SetToaster(toasts)
	return c, toasts
}

func TestLogin_PersistsUserAndToken(t *testing.T) {
	api := &fakeAuth{user: models.User{ID: "u1", Name: "Jane", Role: models.RolePatient}}
	store := NewMemoryStorage()
	c, toasts := newTestContainer(api, store)

	require.True(t, c.Login(context.Background(), "jane@example.com", "secret"))
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, "tok-123", c.Token())
	assert.Equal(t, "u1", c.User().ID)

	raw, ok, err := store.Get(context.Background(), "sess-1", KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, raw, `"id":"u1"`)
	tok, ok, _ := store.Get(context.Background(), "sess-1", KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", tok)
	assert.Equal(t, []models.ToastKind{models.ToastSuccess}, toasts.kinds)
}

func TestLogin_BackendRejectionReturnsFalse(t *testing.T) {
	api := &fakeAuth{loginErr: backend.ErrUnauthorized}
	store := NewMemoryStorage()
	c, toasts := newTestContainer(api, store)

	assert.False(t, c.Login(context.Background(), "jane@example.com", "wrong"))
	assert.False(t, c.IsAuthenticated())
	assert.Nil(t, c.User())
	_, ok, _ := store.Get(context.Background(), "sess-1", KeyToken)
	assert.False(t, ok)
	assert.Equal(t, []models.ToastKind{models.ToastError}, toasts.kinds)
}

func TestLogin_InvalidFormSkipsBackend(t *testing.T) {
	api := &fakeAuth{}
	c, _ := newTestContainer(api, NewMemoryStorage())

	assert.False(t, c.Login(context.Background(), "not-an-email", ""))
	assert.Zero(t, api.loginCalls)
	assert.ElementsMatch(t, []string{"email", "password"}, c.LastErrors().Fields())
}

func TestLogin_StorageFailureLeavesSignedOut(t *testing.T) {
	api := &fakeAuth{user: models.User{ID: "u1", Role: models.RoleDoctor}}
	c, _ := newTestContainer(api, failingStorage{NewMemoryStorage()})

	assert.False(t, c.Login(context.Background(), "doc@example.com", "pw"))
	assert.False(t, c.IsAuthenticated())
}

func TestLogout_ClearsBothKeys(t *testing.T) {
	api := &fakeAuth{user: models.User{ID: "u1", Role: models.RoleAdmin}}
	store := NewMemoryStorage()
	c, _ := newTestContainer(api, store)
	require.True(t, c.Login(context.Background(), "a@example.com", "pw"))

	c.Logout(context.Background())

	assert.False(t, c.IsAuthenticated())
	for _, key := range []string{KeyUser, KeyToken} {
		_, ok, err := store.Get(context.Background(), "sess-1", key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestRestore_RequiresBothKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.Set(ctx, "sess-1", KeyUser, `{"id":"u9","name":"Sam","email":"s@example.com","role":"trainer"}`))

	c, _ := newTestContainer(&fakeAuth{}, store)
	assert.False(t, c.Restore(ctx))
	assert.False(t, c.IsAuthenticated())

	require.NoError(t, store.Set(ctx, "sess-1", KeyToken, "t"))
	assert.True(t, c.Restore(ctx))
	assert.Equal(t, models.RoleTrainer, c.User().Role)
}

func TestRestore_MalformedUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.Set(ctx, "sess-1", KeyUser, `{not json`))
	require.NoError(t, store.Set(ctx, "sess-1", KeyToken, "t"))

	c, _ := newTestContainer(&fakeAuth{}, store)
	assert.False(t, c.Restore(ctx))
}

func TestRegister_ThenLogsIn(t *testing.T) {
	api := &fakeAuth{user: models.User{ID: "u2", Name: "New", Role: models.RolePatient}}
	c, _ := newTestContainer(api, NewMemoryStorage())

	ok := c.Register(context.Background(), RegistrationForm{
		Name: "New", Email: "new@example.com", Password: "secret1", ConfirmPassword: "secret1", Role: models.RolePatient,
	})
	require.True(t, ok)
	assert.Equal(t, 1, api.registerCalls)
	assert.Equal(t, 1, api.loginCalls)
	assert.True(t, c.IsAuthenticated())
}

func TestRegister_ValidationFailureSkipsBackend(t *testing.T) {
	api := &fakeAuth{}
	c, _ := newTestContainer(api, NewMemoryStorage())

	ok := c.Register(context.Background(), RegistrationForm{
		Name: "", Email: "x@example.com", Password: "123", ConfirmPassword: "456", Role: models.RoleAdmin,
	})
	assert.False(t, ok)
	assert.Zero(t, api.registerCalls)
	assert.ElementsMatch(t, []string{"name", "password", "confirm_password", "role"}, c.LastErrors().Fields())
}

func TestRegister_BackendMessageSurfaced(t *testing.T) {
	api := &fakeAuth{registerErr: &backend.APIError{StatusCode: 409, Message: "Email already registered"}}
	c, _ := newTestContainer(api, NewMemoryStorage())

	ok := c.Register(context.Background(), RegistrationForm{
		Name: "A", Email: "a@example.com", Password: "secret1", Role: models.RoleDoctor,
	})
	assert.False(t, ok)
	assert.Zero(t, api.loginCalls)
	assert.Equal(t, "Email already registered", registrationMessage(api.registerErr))
}

func TestForgotPassword(t *testing.T) {
	api := &fakeAuth{}
	c, toasts := newTestContainer(api, NewMemoryStorage())

	assert.True(t, c.ForgotPassword(context.Background(), "a@example.com"))
	assert.False(t, c.ForgotPassword(context.Background(), ""))
	assert.Equal(t, 1, api.forgotCalls)
	assert.Equal(t, []models.ToastKind{models.ToastSuccess, models.ToastError}, toasts.kinds)
}

func TestOnChange_FiresOnLoginAndLogout(t *testing.T) {
	api := &fakeAuth{user: models.User{ID: "u1", Role: models.RoleHospital}}
	c, _ := newTestContainer(api, NewMemoryStorage())

	var seen []*models.User
	c.OnChange(func(u *models.User) { seen = append(seen, u) })

	require.True(t, c.Login(context.Background(), "h@example.com", "pw"))
	c.Logout(context.Background())

	require.Len(t, seen, 2)
	assert.Equal(t, "u1", seen[0].ID)
	assert.Nil(t, seen[1])
}

func TestRekey_MovesStoredSignIn(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{user: models.User{ID: "u1", Name: "Jane", Role: models.RolePatient}}
	store := NewMemoryStorage()
	c, _ := newTestContainer(api, store)
	require.True(t, c.Login(ctx, "jane@example.com", "secret"))

	require.NoError(t, c.Rekey(ctx, "sess-2"))

	_, ok, _ := store.Get(ctx, "sess-1", KeyToken)
	assert.False(t, ok, "old session id must not keep the token")
	tok, ok, _ := store.Get(ctx, "sess-2", KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", tok)

	fresh := NewContainer("sess-2", store, api, zerolog.Nop())
	require.True(t, fresh.Restore(ctx))
	assert.Equal(t, "u1", fresh.User().ID)

	c.Logout(ctx)
	_, ok, _ = store.Get(ctx, "sess-2", KeyUser)
	assert.False(t, ok, "logout clears the keys under the new id")
}

func TestRekey_SignedOutOnlyClearsOldKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.Set(ctx, "sess-1", KeyToken, "stale"))
	c, _ := newTestContainer(&fakeAuth{}, store)

	require.NoError(t, c.Rekey(ctx, "sess-2"))
	_, ok, _ := store.Get(ctx, "sess-1", KeyToken)
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "sess-2", KeyToken)
	assert.False(t, ok)
}
