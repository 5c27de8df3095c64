package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/auth"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/client/store"
)

type State uint8

const (
	StateUninitialized State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// TokenStore persists the credential bundle between processes.
type TokenStore interface {
	SaveTokens(ctx context.Context, b store.Bundle) error
	Tokens(ctx context.Context) (store.Bundle, error)
	ClearTokens(ctx context.Context) error
}

// Manager is the single source of truth for "who is signed in". Feature
// code reads the member through it and never mutates identity directly.
type Manager struct {
	auth   *auth.Service
	tokens TokenStore
	log    *zap.Logger

	mu          sync.Mutex
	member      *model.Member
	pending     int
	initialized bool

	unsubscribe func()
}

func NewManager(authSvc *auth.Service, tokens TokenStore, hub *httpx.Hub, log *zap.Logger) *Manager {
	m := &Manager{
		auth:   authSvc,
		tokens: tokens,
		log:    log.Named("session"),
	}
	if hub != nil {
		// The unauthorized signal clears identity synchronously; no
		// network round trip stands between the signal and the UI
		// seeing an anonymous session.
		m.unsubscribe = hub.Subscribe(func(u httpx.Unauthorized) {
			m.mu.Lock()
			m.member = nil
			m.pending = 0
			m.mu.Unlock()
			m.log.Debug("session invalidated",
				zap.Int("status", u.Status),
				zap.String("path", u.Path),
				zap.Bool("fromInteraction", u.FromInteraction))
		})
	}
	return m
}

// Close detaches the manager from the unauthorized hub.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Manager) begin() {
	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
}

func (m *Manager) end() {
	m.mu.Lock()
	if m.pending > 0 {
		m.pending--
	}
	m.mu.Unlock()
}

// Loading is true while any auth operation is outstanding; a fast
// operation completing cannot flip it off under a slower one.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *Manager) Member() *model.Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.member == nil {
		return nil
	}
	member := *m.member
	return &member
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case !m.initialized:
		return StateUninitialized
	case m.member != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

func (m *Manager) setMember(member *model.Member) {
	m.mu.Lock()
	m.member = member
	m.mu.Unlock()
}

// Init performs the first session check: "checked and anonymous" is a
// different state from "not yet checked".
func (m *Manager) Init(ctx context.Context) (*model.Member, error) {
	defer func() {
		m.mu.Lock()
		m.initialized = true
		m.mu.Unlock()
	}()
	return m.RefreshMember(ctx)
}

// RefreshMember re-reads the identity without changing auth state on
// success. A 401 or a missing/expired stored token settles to anonymous.
func (m *Manager) RefreshMember(ctx context.Context) (*model.Member, error) {
	m.begin()
	defer m.end()

	if m.tokens != nil {
		b, err := m.tokens.Tokens(ctx)
		if err != nil || b.AccessToken == "" {
			m.setMember(nil)
			return nil, nil
		}
		if tokenExpired(b.AccessToken) {
			_ = m.tokens.ClearTokens(ctx)
			m.setMember(nil)
			return nil, nil
		}
	}

	member, err := m.auth.CurrentMember(ctx)
	if err != nil {
		if httpx.StatusOf(err) == http.StatusUnauthorized {
			if m.tokens != nil {
				_ = m.tokens.ClearTokens(ctx)
			}
			m.setMember(nil)
			return nil, nil
		}
		return nil, err
	}
	m.setMember(&member)
	return &member, nil
}

// tokenExpired peeks at the exp claim without verifying the signature;
// verification is the backend's job, this only avoids a doomed request.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().After(exp.Time)
}

func (m *Manager) SignIn(ctx context.Context, creds auth.Credentials) (model.Member, error) {
	m.begin()
	defer m.end()
	return m.completeSignIn(ctx, creds)
}

// SignUp creates the account, then immediately performs an internal
// sign-in with the same credentials to obtain a session.
func (m *Manager) SignUp(ctx context.Context, req auth.SignUpRequest) (model.Member, error) {
	m.begin()
	defer m.end()

	if _, err := m.auth.SignUp(ctx, req); err != nil {
		return model.Member{}, err
	}
	return m.completeSignIn(ctx, auth.Credentials{Email: req.Email, Password: req.Password})
}

func (m *Manager) completeSignIn(ctx context.Context, creds auth.Credentials) (model.Member, error) {
	resp, err := m.auth.SignIn(ctx, creds)
	if err != nil {
		return model.Member{}, err
	}
	if m.tokens != nil {
		if err := m.tokens.SaveTokens(ctx, store.Bundle{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			TokenType:    resp.TokenType,
		}); err != nil {
			m.log.Warn("persist tokens", zap.Error(err))
		}
	}
	m.setMember(resp.Member)
	return *resp.Member, nil
}

// SignOut is best-effort against the backend: local state clears even
// when the sign-out call fails, so the client never sticks "logged in"
// after the user asked to leave.
func (m *Manager) SignOut(ctx context.Context) error {
	m.begin()
	defer m.end()

	if err := m.auth.SignOut(ctx); err != nil {
		m.log.Warn("sign-out request failed", zap.Error(err))
	}
	if m.tokens != nil {
		_ = m.tokens.ClearTokens(ctx)
	}
	m.setMember(nil)
	return nil
}
