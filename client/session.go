package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionState is the base state of the session controller.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateValidating
	StateAuthenticated
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Notification severities passed to the Notifier.
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// LoginRoute is where the session controller sends unauthenticated users.
const LoginRoute = "/login"

// RedirectFor maps a role name to its post-login destination. Unrecognized
// or absent roles map to the root route rather than failing.
func RedirectFor(role string) string {
	switch role {
	case "admin":
		return "/admin/dashboard"
	case "owner":
		return "/owner/dashboard"
	default:
		return "/"
	}
}

// AuthAPI is the authentication surface the session controller depends on.
// Implementations return the HTTP status and error only on transport failure.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (int, *TokenData, error)
	Register(ctx context.Context, payload RegisterPayload) (int, error)
	Logout(ctx context.Context) (int, error)
}

// ProfileAPI fetches the authenticated user's profile.
type ProfileAPI interface {
	Profile(ctx context.Context) (int, *Profile, error)
}

// Navigator is the injected navigation boundary; it receives a route path.
type Navigator func(route string)

// Notifier is the injected user-notification boundary.
type Notifier func(text, severity string)

// SessionConfig holds the collaborators for a Session.
type SessionConfig struct {
	Auth     AuthAPI
	Users    ProfileAPI
	Tokens   *TokenStore
	Navigate Navigator
	Notify   Notifier
	Logger   *slog.Logger
}

// Session owns the process-wide authentication state. All session-mutating
// operations (Validate, Login, Register, Logout) are serialized by a single
// operation mutex, so a logout can never interleave with an in-flight login.
type Session struct {
	auth     AuthAPI
	users    ProfileAPI
	tokens   *TokenStore
	navigate Navigator
	notify   Notifier
	logger   *slog.Logger
	now      func() time.Time

	opMu sync.Mutex // serializes mutating operations

	mu              sync.RWMutex // guards the fields below
	state           SessionState
	currentUser     *Profile
	loginPending    bool
	registerPending bool
}

// NewSession creates a session controller in the Unauthenticated state.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		auth:     cfg.Auth,
		users:    cfg.Users,
		tokens:   cfg.Tokens,
		navigate: cfg.Navigate,
		notify:   cfg.Notify,
		logger:   cfg.Logger,
		now:      time.Now,
		state:    StateUnauthenticated,
	}
	if s.navigate == nil {
		s.navigate = func(string) {}
	}
	if s.notify == nil {
		s.notify = func(string, string) {}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// State returns the current base state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser returns the authenticated user's profile, or nil.
func (s *Session) CurrentUser() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

// IsAuthenticated reports whether a user is currently signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser != nil
}

// LoginPending reports whether a login submission is in flight.
func (s *Session) LoginPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginPending
}

// RegisterPending reports whether a registration submission is in flight.
func (s *Session) RegisterPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registerPending
}

// Validate re-establishes the session from a stored token on startup.
// Without a stored token the session stays unauthenticated. An expired
// token is cleared without any network call. A live token triggers a
// profile fetch; any failure there fully resets the session and navigates
// to the login route.
func (s *Session) Validate(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	token, err := s.tokens.Get()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil
		}
		s.logger.Warn("token store read failed during validation", slog.String("error", err.Error()))
		s.resetAndRedirect()
		return nil
	}

	expiry, err := tokenExpiry(token)
	if err != nil {
		// Malformed token: same handling as a failed profile fetch.
		s.logger.Warn("stored token is malformed", slog.String("error", err.Error()))
		s.resetAndRedirect()
		return nil
	}

	if !expiry.After(s.now()) {
		// Already expired: clear without a network round trip.
		if err := s.tokens.Clear(); err != nil {
			s.logger.Warn("clear expired tokens failed", slog.String("error", err.Error()))
		}
		s.setState(StateUnauthenticated)
		return nil
	}

	s.setState(StateValidating)

	status, profile, err := s.users.Profile(ctx)
	if err != nil || status != http.StatusOK {
		if err != nil {
			s.logger.Warn("profile fetch failed during validation", slog.String("error", err.Error()))
		}
		s.resetAndRedirect()
		return nil
	}

	s.mu.Lock()
	s.currentUser = profile
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// Login submits credentials. On success it stores the issued tokens,
// fetches the profile, and navigates to the role's destination. Expected
// rejections (unknown account, wrong password) surface as notifications
// and leave session state untouched.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoginPending(true)
	defer s.setLoginPending(false)

	status, tokenData, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.logger.Error("login request failed", slog.String("error", err.Error()))
		s.notify("something went wrong, please try again", SeverityError)
		return err
	}

	switch status {
	case http.StatusOK:
		if err := s.tokens.Store(tokenData.Token, tokenData.RefreshToken); err != nil {
			s.logger.Error("store tokens failed", slog.String("error", err.Error()))
			s.notify("something went wrong, please try again", SeverityError)
			return err
		}
		s.notify("logged in successfully", SeveritySuccess)

		pStatus, profile, pErr := s.users.Profile(ctx)
		if pErr != nil || pStatus != http.StatusOK {
			if pErr != nil {
				s.logger.Error("profile fetch after login failed", slog.String("error", pErr.Error()))
			}
			s.notify("something went wrong, please try again", SeverityError)
			return errors.New("profile fetch after login failed")
		}

		s.mu.Lock()
		s.currentUser = profile
		s.state = StateAuthenticated
		s.mu.Unlock()

		s.navigate(RedirectFor(profile.Role))

	case http.StatusNotFound:
		s.notify("account does not exist", SeverityError)

	case http.StatusUnauthorized:
		s.notify("incorrect password", SeverityError)

	default:
		s.notify("something went wrong, please try again", SeverityError)
	}

	return nil
}

// Register submits a registration. On 201 the user is sent to the login
// route to sign in explicitly; there is no auto-login. A conflict produces
// a single "already registered" notification.
func (s *Session) Register(ctx context.Context, payload RegisterPayload) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setRegisterPending(true)
	defer s.setRegisterPending(false)

	status, err := s.auth.Register(ctx, payload)
	if err != nil {
		s.logger.Error("register request failed", slog.String("error", err.Error()))
		s.notify("something went wrong, please try again", SeverityError)
		return err
	}

	switch status {
	case http.StatusCreated:
		s.notify("registered successfully, please log in", SeveritySuccess)
		s.navigate(LoginRoute)
	case http.StatusConflict:
		s.notify("this account is already registered", SeverityError)
	default:
		s.notify("something went wrong, please try again", SeverityError)
	}

	return nil
}

// Logout tells the server to end the session, then performs local cleanup.
// Cleanup is unconditional: a failed server call is logged and the tokens,
// user, and navigation still happen.
func (s *Session) Logout(ctx context.Context, showMessage bool) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if _, err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("server-side logout failed, proceeding with local cleanup",
			slog.String("error", err.Error()))
	}

	if showMessage {
		s.notify("logged out successfully", SeveritySuccess)
	}

	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("clear tokens failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.currentUser = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	s.navigate(LoginRoute)
}

// resetAndRedirect fully resets the session and sends the user to login.
func (s *Session) resetAndRedirect() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("clear tokens failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.currentUser = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	s.navigate(LoginRoute)
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) setLoginPending(pending bool) {
	s.mu.Lock()
	s.loginPending = pending
	s.mu.Unlock()
}

func (s *Session) setRegisterPending(pending bool) {
	s.mu.Lock()
	s.registerPending = pending
	s.mu.Unlock()
}

// tokenExpiry reads the exp claim from a token without verifying its
// signature. Validation here is purely local; the server remains the
// authority on token acceptance.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if expiry == nil {
		return time.Time{}, errors.New("token has no expiry claim")
	}
	return expiry.Time, nil
}
