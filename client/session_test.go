package client

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthAPI struct {
	mock.Mock
}

func (m *mockAuthAPI) Login(ctx context.Context, creds Credentials) (int, *TokenData, error) {
	args := m.Called(ctx, creds)
	var tokens *TokenData
	if args.Get(1) != nil {
		tokens = args.Get(1).(*TokenData)
	}
	return args.Int(0), tokens, args.Error(2)
}

func (m *mockAuthAPI) Register(ctx context.Context, payload RegisterPayload) (int, error) {
	args := m.Called(ctx, payload)
	return args.Int(0), args.Error(1)
}

func (m *mockAuthAPI) Logout(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockProfileAPI struct {
	mock.Mock
}

func (m *mockProfileAPI) Profile(ctx context.Context) (int, *Profile, error) {
	args := m.Called(ctx)
	var profile *Profile
	if args.Get(1) != nil {
		profile = args.Get(1).(*Profile)
	}
	return args.Int(0), profile, args.Error(2)
}

// recorder captures navigation and notification calls for assertions.
type recorder struct {
	routes        []string
	notifications []string
	severities    []string
}

func (r *recorder) navigate(route string) {
	r.routes = append(r.routes, route)
}

func (r *recorder) notify(text, severity string) {
	r.notifications = append(r.notifications, text)
	r.severities = append(r.severities, severity)
}

func sessionTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestSession(t *testing.T, auth *mockAuthAPI, users *mockProfileAPI) (*Session, *TokenStore, *recorder) {
	t.Helper()
	store := newTestTokenStore(t)
	rec := &recorder{}
	sess := NewSession(SessionConfig{
		Auth:     auth,
		Users:    users,
		Tokens:   store,
		Navigate: rec.navigate,
		Notify:   rec.notify,
		Logger:   sessionTestLogger(),
	})
	return sess, store, rec
}

// signedToken builds a token with the given expiry. The signature is
// irrelevant: the controller decodes locally without verification.
func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiry.Unix(),
		"sub": "user-1",
	})
	signed, err := token.SignedString([]byte("local-decode-only"))
	require.NoError(t, err)
	return signed
}

func adminProfile() *Profile {
	return &Profile{
		ID:        "user-1",
		Email:     "admin@example.com",
		FirstName: "Quang",
		LastName:  "Le",
		Role:      "admin",
		IsActive:  true,
	}
}

// ============================================================================
// Startup Validation Tests
// ============================================================================

func TestValidate_NoStoredToken(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, rec := newTestSession(t, auth, users)

	require.NoError(t, sess.Validate(context.Background()))

	assert.Equal(t, StateUnauthenticated, sess.State())
	assert.Nil(t, sess.CurrentUser())
	assert.Empty(t, rec.routes)
	users.AssertNotCalled(t, "Profile")
}

func TestValidate_ExpiredToken_ClearsWithoutNetworkCall(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	require.NoError(t, store.Store(signedToken(t, time.Now().Add(-time.Hour)), "refresh-1"))

	require.NoError(t, sess.Validate(context.Background()))

	assert.Equal(t, StateUnauthenticated, sess.State())
	assert.Nil(t, sess.CurrentUser())

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoToken)

	// An already-expired token must not trigger a profile fetch.
	users.AssertNotCalled(t, "Profile")
	assert.Empty(t, rec.routes)
}

func TestValidate_MalformedToken_ResetsAndRedirects(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	require.NoError(t, store.Store("not-a-jwt-at-all", ""))

	require.NoError(t, sess.Validate(context.Background()))

	assert.Equal(t, StateUnauthenticated, sess.State())
	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, []string{LoginRoute}, rec.routes)
	users.AssertNotCalled(t, "Profile")
}

func TestValidate_LiveToken_ProfileOK(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	require.NoError(t, store.Store(signedToken(t, time.Now().Add(time.Hour)), ""))
	users.On("Profile", mock.Anything).Return(200, adminProfile(), nil)

	require.NoError(t, sess.Validate(context.Background()))

	assert.Equal(t, StateAuthenticated, sess.State())
	require.NotNil(t, sess.CurrentUser())
	assert.Equal(t, "admin@example.com", sess.CurrentUser().Email)
	assert.True(t, sess.IsAuthenticated())

	// No redirect to login on the happy path.
	assert.NotContains(t, rec.routes, LoginRoute)
	users.AssertExpectations(t)
}

func TestValidate_LiveToken_ProfileRejected(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	require.NoError(t, store.Store(signedToken(t, time.Now().Add(time.Hour)), "refresh-1"))
	users.On("Profile", mock.Anything).Return(401, nil, nil)

	require.NoError(t, sess.Validate(context.Background()))

	assert.Equal(t, StateUnauthenticated, sess.State())
	assert.Nil(t, sess.CurrentUser())

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, []string{LoginRoute}, rec.routes)
}

func TestValidate_LiveToken_ProfileTransportError(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	require.NoError(t, store.Store(signedToken(t, time.Now().Add(time.Hour)), ""))
	users.On("Profile", mock.Anything).Return(0, nil, errors.New("connection refused"))

	require.NoError(t, sess.Validate(context.Background()))

	assert.Equal(t, StateUnauthenticated, sess.State())
	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, []string{LoginRoute}, rec.routes)
}

// ============================================================================
// Login Tests
// ============================================================================

func TestLogin_Success_AdminRedirect(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	creds := Credentials{Email: "admin@example.com", Password: "secret123"}
	auth.On("Login", mock.Anything, creds).
		Return(200, &TokenData{Token: "access-jwt", RefreshToken: "refresh-jwt"}, nil)
	users.On("Profile", mock.Anything).Return(200, adminProfile(), nil)

	require.NoError(t, sess.Login(context.Background(), creds))

	assert.Equal(t, StateAuthenticated, sess.State())
	assert.Equal(t, []string{"/admin/dashboard"}, rec.routes)

	access, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "access-jwt", access)

	refresh, err := store.GetRefresh()
	require.NoError(t, err)
	assert.Equal(t, "refresh-jwt", refresh)
	auth.AssertExpectations(t)
}

func TestLogin_Success_UnknownRoleRedirectsToRoot(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, rec := newTestSession(t, auth, users)

	profile := adminProfile()
	profile.Role = "customer"
	auth.On("Login", mock.Anything, mock.Anything).Return(200, &TokenData{Token: "access-jwt"}, nil)
	users.On("Profile", mock.Anything).Return(200, profile, nil)

	require.NoError(t, sess.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"}))

	assert.Equal(t, []string{"/"}, rec.routes)
}

func TestLogin_AccountDoesNotExist(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	auth.On("Login", mock.Anything, mock.Anything).Return(404, nil, nil)

	require.NoError(t, sess.Login(context.Background(), Credentials{Email: "ghost@b.com", Password: "x"}))

	assert.Contains(t, rec.notifications, "account does not exist")
	assert.Nil(t, sess.CurrentUser())
	assert.Equal(t, StateUnauthenticated, sess.State())

	// No tokens stored and no navigation on an expected rejection.
	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, rec.routes)
	users.AssertNotCalled(t, "Profile")
}

func TestLogin_IncorrectPassword(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, rec := newTestSession(t, auth, users)

	auth.On("Login", mock.Anything, mock.Anything).Return(401, nil, nil)

	require.NoError(t, sess.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"}))

	assert.Contains(t, rec.notifications, "incorrect password")
	assert.Nil(t, sess.CurrentUser())
	users.AssertNotCalled(t, "Profile")
}

func TestLogin_TransportError(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, rec := newTestSession(t, auth, users)

	auth.On("Login", mock.Anything, mock.Anything).Return(0, nil, errors.New("connection refused"))

	err := sess.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"})

	assert.Error(t, err)
	assert.Contains(t, rec.notifications, "something went wrong, please try again")
	assert.False(t, sess.LoginPending())
}

func TestLogin_PendingFlagScopedToCall(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, _ := newTestSession(t, auth, users)

	assert.False(t, sess.LoginPending())

	// Observe the flag while the login request is in flight.
	auth.On("Login", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		assert.True(t, sess.LoginPending())
	}).Return(401, nil, nil)

	require.NoError(t, sess.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"}))

	assert.False(t, sess.LoginPending())
}

func TestLogin_ProfileFetchFailsAfterSuccess(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, rec := newTestSession(t, auth, users)

	auth.On("Login", mock.Anything, mock.Anything).Return(200, &TokenData{Token: "access-jwt"}, nil)
	users.On("Profile", mock.Anything).Return(500, nil, nil)

	err := sess.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"})

	assert.Error(t, err)
	assert.Contains(t, rec.notifications, "something went wrong, please try again")
	assert.Nil(t, sess.CurrentUser())
	assert.False(t, sess.LoginPending())
}

// ============================================================================
// Register Tests
// ============================================================================

func TestRegister_Success_NavigatesToLogin(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, rec := newTestSession(t, auth, users)

	auth.On("Register", mock.Anything, mock.Anything).Return(201, nil)

	require.NoError(t, sess.Register(context.Background(), RegisterPayload{Email: "new@b.com"}))

	// No auto-login: the user signs in explicitly after registering.
	assert.Equal(t, []string{LoginRoute}, rec.routes)
	assert.Nil(t, sess.CurrentUser())
	assert.False(t, sess.RegisterPending())
}

func TestRegister_Conflict_SingleNotification(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, rec := newTestSession(t, auth, users)

	auth.On("Register", mock.Anything, mock.Anything).Return(409, nil)

	require.NoError(t, sess.Register(context.Background(), RegisterPayload{Email: "dup@b.com"}))

	// Exactly one notification on conflict.
	require.Len(t, rec.notifications, 1)
	assert.Equal(t, "this account is already registered", rec.notifications[0])
	assert.Empty(t, rec.routes)
}

func TestRegister_PendingFlagScopedToCall(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, _, _ := newTestSession(t, auth, users)

	auth.On("Register", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		assert.True(t, sess.RegisterPending())
	}).Return(201, nil)

	require.NoError(t, sess.Register(context.Background(), RegisterPayload{Email: "new@b.com"}))

	assert.False(t, sess.RegisterPending())
}

// ============================================================================
// Logout Tests
// ============================================================================

func TestLogout_CleansUpAndRedirects(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	// Establish an authenticated session first.
	require.NoError(t, store.Store(signedToken(t, time.Now().Add(time.Hour)), "refresh-1"))
	users.On("Profile", mock.Anything).Return(200, adminProfile(), nil)
	require.NoError(t, sess.Validate(context.Background()))
	require.True(t, sess.IsAuthenticated())

	auth.On("Logout", mock.Anything).Return(200, nil)

	sess.Logout(context.Background(), true)

	assert.Nil(t, sess.CurrentUser())
	assert.Equal(t, StateUnauthenticated, sess.State())
	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = store.GetRefresh()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Contains(t, rec.routes, LoginRoute)
	assert.Contains(t, rec.notifications, "logged out successfully")
}

func TestLogout_ProceedsWhenServerCallFails(t *testing.T) {
	auth := new(mockAuthAPI)
	users := new(mockProfileAPI)
	sess, store, rec := newTestSession(t, auth, users)

	require.NoError(t, store.Store(signedToken(t, time.Now().Add(time.Hour)), ""))
	users.On("Profile", mock.Anything).Return(200, adminProfile(), nil)
	require.NoError(t, sess.Validate(context.Background()))

	auth.On("Logout", mock.Anything).Return(0, errors.New("connection refused"))

	sess.Logout(context.Background(), false)

	// Local cleanup is unconditional.
	assert.Nil(t, sess.CurrentUser())
	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Contains(t, rec.routes, LoginRoute)
	// showMessage=false suppresses the success notification.
	assert.NotContains(t, rec.notifications, "logged out successfully")
}

// ============================================================================
// RedirectFor Tests
// ============================================================================

func TestRedirectFor(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", RedirectFor("admin"))
	assert.Equal(t, "/owner/dashboard", RedirectFor("owner"))
	assert.Equal(t, "/", RedirectFor("customer"))
	assert.Equal(t, "/", RedirectFor(""))
	assert.Equal(t, "/", RedirectFor("unknown-role"))
}
