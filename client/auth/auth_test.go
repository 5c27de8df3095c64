package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/auth"
	"github.com/ai-library/ai-library/client/httpx"
)

func newService(t *testing.T, handler http.HandlerFunc) (*auth.Service, *httpx.Hub) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hub := httpx.NewHub()
	client, err := httpx.NewClient(httpx.Config{BaseURL: srv.URL}, nil, hub, nil, zap.NewNop())
	require.NoError(t, err)
	return auth.NewService(client, zap.NewExample()), hub
}

func TestService_SignIn(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/signin", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"accessToken":"at","tokenType":"bearer","member":{"id":"m1","email":"a@b.com","displayName":"A","role":"user"}}`))
		})

		resp, err := svc.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "secret"})
		require.NoError(t, err)
		require.Equal(t, "at", resp.AccessToken)
		require.Equal(t, "m1", resp.Member.ID)
	})

	t.Run("invalid credentials, no broadcast", func(t *testing.T) {
		t.Parallel()
		svc, hub := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		broadcasts := 0
		cancel := hub.Subscribe(func(httpx.Unauthorized) { broadcasts++ })
		defer cancel()

		_, err := svc.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "short"})
		require.Error(t, err)
		require.Equal(t, auth.KindInvalidCredentials, auth.KindOf(err))
		require.Zero(t, broadcasts)
	})

	t.Run("validation failed", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"email is malformed"}`))
		})

		_, err := svc.SignIn(context.Background(), auth.Credentials{Email: "nope", Password: "x"})
		require.Equal(t, auth.KindValidationFailed, auth.KindOf(err))
	})

	t.Run("malformed envelope rejected", func(t *testing.T) {
		t.Parallel()
		// the member record returned directly instead of nested under
		// "member" is a shape mismatch, not a login
		svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"m1","email":"a@b.com","displayName":"A"}`))
		})

		_, err := svc.SignIn(context.Background(), auth.Credentials{Email: "a@b.com", Password: "secret"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "malformed sign-in response")
	})
}

func TestService_CurrentMember(t *testing.T) {
	t.Parallel()
	svc, hub := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	broadcasts := 0
	cancel := hub.Subscribe(func(httpx.Unauthorized) { broadcasts++ })
	defer cancel()

	_, err := svc.CurrentMember(context.Background())
	require.Equal(t, http.StatusUnauthorized, httpx.StatusOf(err))
	require.Zero(t, broadcasts, "session bootstrap must stay silent")
}
