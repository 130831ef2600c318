package internal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrGuestNotConfigured is returned by SignInAsGuest when no guest account is configured
var ErrGuestNotConfigured = errors.New("guest account is not configured (set guest.email and guest.password)")

const (
	msgBadCredentials = "이메일 또는 비밀번호가 틀렸습니다."
	msgSignupFailed   = "회원가입에 실패했습니다."
	msgUnreachable    = "서버에 연결할 수 없습니다."
	guestUserID       = "guest"
	guestDisplayName  = "게스트"
)

// GuestCredentials is the shared, well-known guest account
type GuestCredentials struct {
	Email    string
	Password string
}

// Configured reports whether both guest fields are set
func (g GuestCredentials) Configured() bool {
	return g.Email != "" && g.Password != ""
}

// Authenticator owns the current Session. The session is replaced wholesale on
// every transition and subscribers are told about each replacement.
type Authenticator struct {
	client *Client
	store  *SessionStore
	guest  GuestCredentials

	mu          sync.RWMutex
	session     Session
	subscribers map[int]func(Session)
	nextSubID   int
}

// NewAuthenticator creates a logged-out Authenticator; call Bootstrap to restore state
func NewAuthenticator(client *Client, store *SessionStore, guest GuestCredentials) *Authenticator {
	return &Authenticator{
		client:      client,
		store:       store,
		guest:       guest,
		subscribers: make(map[int]func(Session)),
	}
}

// Session returns the current session
func (a *Authenticator) Session() Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Client returns an API client bound to the current token
func (a *Authenticator) Client() *Client {
	return a.client.WithToken(a.Session().Token)
}

// Subscribe registers fn to run after every session replacement
func (a *Authenticator) Subscribe(fn func(Session)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

// replace swaps the session and notifies subscribers outside the lock
func (a *Authenticator) replace(next func(Session) Session) Session {
	a.mu.Lock()
	a.session = next(a.session)
	current := a.session
	subs := make([]func(Session), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	for _, fn := range subs {
		fn(current)
	}
	return current
}

// Bootstrap restores the persisted session. A stored guest without a token gets
// one signup-then-login attempt. Nothing here is fatal: failures are logged and
// the returned session reflects whatever could be restored.
func (a *Authenticator) Bootstrap(ctx context.Context) Session {
	stored, err := a.store.Load()
	if err != nil {
		LogWarn("Failed to load stored session: %v", err)
		return a.Session()
	}
	if !stored.LoggedIn() {
		LogDebug("No stored user, starting logged out")
		return a.Session()
	}

	a.replace(func(Session) Session { return stored })

	if stored.HasToken() {
		return a.Session()
	}
	if stored.IsGuest(a.guest.Email) {
		LogInfo("Guest session has no token, signing in to backend")
		a.loginToBackend(ctx, a.guest.Email, a.guest.Password, guestDisplayName)
	}
	return a.Session()
}

// loginToBackend runs signup (ignoring its outcome) then login, persisting the
// token and refreshing is_admin. Every failure is swallowed.
func (a *Authenticator) loginToBackend(ctx context.Context, email, password, name string) {
	if err := a.client.Signup(ctx, email, password, name); err != nil {
		LogDebug("Signup before login failed (account may already exist): %v", err)
	}

	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		LogWarn("Backend login failed: %v", err)
		return
	}

	a.replace(func(s Session) Session { return s.WithToken(token) })
	if err := a.store.SaveToken(token); err != nil {
		LogWarn("Failed to persist token: %v", err)
	}

	profile, err := a.client.WithToken(token).Me(ctx)
	if err != nil {
		LogDebug("Admin flag lookup failed (not required): %v", err)
		return
	}
	updated := a.replace(func(s Session) Session {
		if s.User == nil {
			return s
		}
		u := *s.User
		u.IsAdmin = profile.IsAdmin
		return s.WithUser(&u)
	})
	if updated.User != nil {
		if err := a.store.SaveUser(updated.User); err != nil {
			LogWarn("Failed to persist user: %v", err)
		}
	}
	LogInfo("Backend login succeeded")
}

// SignInWithEmail logs in and stores the resulting session
func (a *Authenticator) SignInWithEmail(ctx context.Context, email, password string) error {
	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		return authFailure("login", err, msgBadCredentials)
	}

	a.replace(func(s Session) Session { return s.WithToken(token) })
	if err := a.store.SaveToken(token); err != nil {
		return err
	}

	user := &UserInfo{Email: email}
	if profile, err := a.client.WithToken(token).Me(ctx); err == nil {
		user = &UserInfo{
			ID:      profile.ID,
			Name:    profile.Name,
			Email:   profile.Email,
			IsAdmin: profile.IsAdmin,
		}
	} else {
		LogWarn("Profile lookup after login failed: %v", err)
	}

	a.replace(func(s Session) Session { return s.WithUser(user) })
	return a.store.SaveUser(user)
}

// SignUpWithEmail creates an account and then signs in with it
func (a *Authenticator) SignUpWithEmail(ctx context.Context, email, password, name string) error {
	if err := a.client.Signup(ctx, email, password, name); err != nil {
		return authFailure("signup", err, msgSignupFailed)
	}
	return a.SignInWithEmail(ctx, email, password)
}

// SignInAsGuest stores the guest user and tries to obtain a backend token.
// Backend failures are swallowed; the session stays usable offline.
func (a *Authenticator) SignInAsGuest(ctx context.Context) error {
	if !a.guest.Configured() {
		return ErrGuestNotConfigured
	}

	guest := &UserInfo{ID: guestUserID, Name: guestDisplayName, Email: a.guest.Email}
	a.replace(func(s Session) Session { return s.WithUser(guest) })
	if err := a.store.SaveUser(guest); err != nil {
		return err
	}

	a.loginToBackend(ctx, a.guest.Email, a.guest.Password, guestDisplayName)
	return nil
}

// SignOut forgets the session in memory and on disk
func (a *Authenticator) SignOut(ctx context.Context) error {
	a.replace(func(Session) Session { return Session{} })
	return a.store.Clear()
}

// FetchProfile returns the backend profile, or nil on any failure
func (a *Authenticator) FetchProfile(ctx context.Context) *Profile {
	token := a.Session().Token
	if token == "" {
		stored, err := a.store.Load()
		if err == nil {
			token = stored.Token
		}
	}
	if token == "" {
		LogDebug("No backend token available")
		return nil
	}

	profile, err := a.client.WithToken(token).Me(ctx)
	if err != nil {
		LogWarn("Failed to fetch backend profile: %v", err)
		return nil
	}
	return profile
}

// authFailure maps a client error to an AuthError with user-facing text
func authFailure(op string, err error, fallback string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &AuthError{Op: op, Message: apiErr.DetailOr(fallback), Err: err}
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return &AuthError{Op: op, Message: fallback, Err: err}
	}
	return &AuthError{Op: op, Message: msgUnreachable, Err: err}
}

// TokenExpiry reads the exp claim of a JWT without verifying it.
// ok is false for opaque tokens or tokens without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
