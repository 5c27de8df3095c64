package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/auth"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/session"
	"github.com/ai-library/ai-library/client/store"
)

type memoryTokens struct {
	mu     sync.Mutex
	bundle *store.Bundle
}

func (m *memoryTokens) SaveTokens(_ context.Context, b store.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundle = &b
	return nil
}

func (m *memoryTokens) Tokens(_ context.Context) (store.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bundle == nil {
		return store.Bundle{}, nil
	}
	return *m.bundle, nil
}

func (m *memoryTokens) ClearTokens(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundle = nil
	return nil
}

// AccessToken implements httpx.TokenSource.
func (m *memoryTokens) AccessToken(ctx context.Context) (string, bool) {
	b, err := m.Tokens(ctx)
	if err != nil || b.AccessToken == "" {
		return "", false
	}
	return b.AccessToken, true
}

const memberJSON = `{"id":"m1","email":"a@b.com","displayName":"A","role":"user"}`

func newManager(t *testing.T, handler http.HandlerFunc) (*session.Manager, *httpx.Hub, *memoryTokens, *httpx.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &memoryTokens{}
	hub := httpx.NewHub()
	client, err := httpx.NewClient(httpx.Config{BaseURL: srv.URL}, tokens, hub, nil, zap.NewNop())
	require.NoError(t, err)

	mgr := session.NewManager(auth.NewService(client, zap.NewNop()), tokens, hub, zap.NewExample())
	t.Cleanup(mgr.Close)
	return mgr, hub, tokens, client
}

func TestManager_InitAnonymousWithoutToken(t *testing.T) {
	t.Parallel()
	mgr, _, _, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no token stored, no request expected")
	})

	require.Equal(t, session.StateUninitialized, mgr.State())
	member, err := mgr.Init(context.Background())
	require.NoError(t, err)
	require.Nil(t, member)
	require.Equal(t, session.StateAnonymous, mgr.State())
	require.True(t, mgr.Initialized())
}

func TestManager_SignInInvalidCredentials(t *testing.T) {
	t.Parallel()
	mgr, _, _, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := mgr.Init(context.Background())
	require.NoError(t, err)

	_, err = mgr.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "short"})
	require.Error(t, err)
	require.Equal(t, auth.KindInvalidCredentials, auth.KindOf(err))
	require.Equal(t, session.StateAnonymous, mgr.State())
	require.Nil(t, mgr.Member())
}

func TestManager_SignInThenRefresh(t *testing.T) {
	t.Parallel()
	mgr, _, tokens, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/signin":
			_, _ = w.Write([]byte(`{"accessToken":"at","member":` + memberJSON + `}`))
		case "/auth/me":
			require.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(memberJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	_, err := mgr.Init(context.Background())
	require.NoError(t, err)

	member, err := mgr.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "m1", member.ID)
	require.Equal(t, session.StateAuthenticated, mgr.State())

	b, err := tokens.Tokens(context.Background())
	require.NoError(t, err)
	require.Equal(t, "at", b.AccessToken)

	refreshed, err := mgr.RefreshMember(context.Background())
	require.NoError(t, err)
	require.Equal(t, "m1", refreshed.ID)
	require.Equal(t, session.StateAuthenticated, mgr.State())
}

func TestManager_SignUpSignsIn(t *testing.T) {
	t.Parallel()
	var signups, signins int
	mgr, _, _, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/signup":
			signups++
			_, _ = w.Write([]byte(memberJSON))
		case "/auth/signin":
			signins++
			_, _ = w.Write([]byte(`{"accessToken":"at","member":` + memberJSON + `}`))
		}
	})

	member, err := mgr.SignUp(context.Background(), auth.SignUpRequest{
		Email:       "a@b.com",
		Password:    "longenough",
		DisplayName: "A",
	})
	require.NoError(t, err)
	require.Equal(t, "m1", member.ID)
	require.Equal(t, 1, signups)
	require.Equal(t, 1, signins)
	require.NotNil(t, mgr.Member())
}

func TestManager_SignOutClearsLocallyOnBackendFailure(t *testing.T) {
	t.Parallel()
	mgr, _, tokens, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/signin":
			_, _ = w.Write([]byte(`{"accessToken":"at","member":` + memberJSON + `}`))
		case "/auth/signout":
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	_, err := mgr.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, mgr.SignOut(context.Background()))
	require.Nil(t, mgr.Member())
	b, err := tokens.Tokens(context.Background())
	require.NoError(t, err)
	require.Empty(t, b.AccessToken)
}

func TestManager_UnauthorizedSignalClearsMember(t *testing.T) {
	t.Parallel()
	unauthorized := false
	mgr, _, _, client := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/signin":
			_, _ = w.Write([]byte(`{"accessToken":"at","member":` + memberJSON + `}`))
		default:
			if unauthorized {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}
	})

	_, err := mgr.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, session.StateAuthenticated, mgr.State())

	// some unrelated request hits a dead session
	unauthorized = true
	err = client.Get(context.Background(), "/checkouts", nil)
	require.Equal(t, http.StatusUnauthorized, httpx.StatusOf(err))

	// the member clears synchronously, without another round trip
	require.Nil(t, mgr.Member())
	require.Equal(t, session.StateAnonymous, mgr.State())
}

func TestManager_LoadingRefCount(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	mgr, _, tokens, _ := newManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/me" {
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(memberJSON))
	})
	require.NoError(t, tokens.SaveTokens(context.Background(), store.Bundle{AccessToken: "opaque-token"}))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mgr.RefreshMember(context.Background())
		}()
	}

	require.Eventually(t, mgr.Loading, time.Second, 5*time.Millisecond)

	// releasing one of two in-flight operations must keep loading true
	release <- struct{}{}
	require.True(t, mgr.Loading())

	release <- struct{}{}
	wg.Wait()
	require.False(t, mgr.Loading())
}
