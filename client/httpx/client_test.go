package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *Hub, *Interactions) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hub := NewHub()
	interactions := NewInteractions()
	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil, hub, interactions, zap.NewNop())
	require.NoError(t, err)
	return c, hub, interactions
}

func TestClient_ErrorMessagePriority(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "message field",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `{"message":"book already checked out","detail":"ignored"}`,
			wantMessage: "book already checked out",
		},
		{
			name:        "detail field",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"detail":"dueAt is required"}`,
			wantMessage: "dueAt is required",
		},
		{
			name:        "error field",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error":"bad input"}`,
			wantMessage: "bad input",
		},
		{
			name:        "status text fallback",
			status:      http.StatusBadGateway,
			contentType: "application/json",
			body:        `{"code":42}`,
			wantMessage: "Bad Gateway",
		},
		{
			name:        "plain text body",
			status:      http.StatusInternalServerError,
			contentType: "text/plain",
			body:        "boom",
			wantMessage: "boom",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.Get(context.Background(), "/books", nil)
			require.Error(t, err)
			he, ok := err.(*Error)
			require.True(t, ok)
			require.Equal(t, tt.status, he.Status)
			require.Equal(t, tt.wantMessage, he.Message)
		})
	}
}

func TestClient_SuccessDecoding(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"b1","name":"Dune"}`))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		}
	})

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, c.Get(context.Background(), "/json", &out))
	require.Equal(t, "b1", out.ID)
	require.Equal(t, "Dune", out.Name)

	out.ID = ""
	require.NoError(t, c.Get(context.Background(), "/empty", &out))
	require.Empty(t, out.ID)
}

func TestClient_UnauthorizedBroadcast(t *testing.T) {
	t.Parallel()
	c, hub, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var got []Unauthorized
	cancel := hub.Subscribe(func(u Unauthorized) { got = append(got, u) })
	defer cancel()

	err := c.Get(context.Background(), "/checkouts", nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, StatusOf(err))

	// exactly one broadcast per failing call, no retries
	require.Len(t, got, 1)
	require.Equal(t, http.StatusUnauthorized, got[0].Status)
	require.Equal(t, "/checkouts", got[0].Path)
	require.False(t, got[0].FromInteraction)

	err = c.Get(context.Background(), "/checkouts", nil, SuppressUnauthorized())
	require.Error(t, err)
	require.Len(t, got, 1, "suppressed request must not broadcast")
}

func TestClient_FromInteractionWindow(t *testing.T) {
	t.Parallel()
	c, hub, interactions := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var got []Unauthorized
	cancel := hub.Subscribe(func(u Unauthorized) { got = append(got, u) })
	defer cancel()

	// no interaction ever recorded
	_ = c.Get(context.Background(), "/a", nil)
	require.Len(t, got, 1)
	require.False(t, got[0].FromInteraction)

	// recent interaction
	interactions.Record()
	_ = c.Get(context.Background(), "/b", nil)
	require.Len(t, got, 2)
	require.True(t, got[1].FromInteraction)

	// stale interaction, outside the window
	interactions.recordAt(time.Now().Add(-InteractionWindow - time.Second))
	_ = c.Get(context.Background(), "/c", nil)
	require.Len(t, got, 3)
	require.False(t, got[2].FromInteraction)
}

func TestClient_TotalHeader(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/with-total" {
			w.Header().Set("x-total-count", "42")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	total := -1
	var out []struct{}
	require.NoError(t, c.Get(context.Background(), "/with-total", &out, WithTotalHeader(&total)))
	require.Equal(t, 42, total)

	total = -1
	require.NoError(t, c.Get(context.Background(), "/without-total", &out, WithTotalHeader(&total)))
	require.Equal(t, -1, total, "missing header leaves total untouched")
}

func TestClient_BearerToken(t *testing.T) {
	t.Parallel()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL}, ContextTokens{}, nil, nil, zap.NewNop())
	require.NoError(t, err)

	ctx := WithToken(context.Background(), "tok-123")
	require.NoError(t, c.Post(ctx, "/activity/heartbeat", struct{}{}, nil))
	require.Equal(t, "Bearer tok-123", gotAuth)

	require.NoError(t, c.Post(context.Background(), "/activity/heartbeat", struct{}{}, nil))
	require.Empty(t, gotAuth)
}
