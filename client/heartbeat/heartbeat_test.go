package heartbeat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/heartbeat"
	"github.com/ai-library/ai-library/client/httpx"
)

func newService(t *testing.T, handler http.HandlerFunc) *heartbeat.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := httpx.NewClient(httpx.Config{BaseURL: srv.URL}, nil, httpx.NewHub(), httpx.NewInteractions(), zap.NewNop())
	require.NoError(t, err)
	return heartbeat.NewService(client, zap.NewNop())
}

func TestSend(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/activity/heartbeat", r.URL.Path)
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, svc.Send(context.Background()))
	require.EqualValues(t, 1, hits.Load())
}

func TestSend_SwallowsUnauthorized(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	require.NoError(t, svc.Send(context.Background()))
}

func TestSend_SurfacesServerError(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := svc.Send(context.Background())
	require.Error(t, err)
	require.Equal(t, http.StatusServiceUnavailable, httpx.StatusOf(err))
}

func TestRun_SendsImmediately(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(ctx, time.Hour)
	}()

	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
