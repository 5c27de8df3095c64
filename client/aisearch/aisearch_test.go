package aisearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/aisearch"
	"github.com/ai-library/ai-library/client/errs"
	"github.com/ai-library/ai-library/client/httpx"
)

func newService(t *testing.T, handler http.HandlerFunc) *aisearch.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := httpx.NewClient(httpx.Config{BaseURL: srv.URL}, nil, nil, nil, zap.NewNop())
	require.NoError(t, err)
	return aisearch.NewService(client, zap.NewNop())
}

func TestSearch_RejectsBlankQuery(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	})
	_, err := svc.Search(context.Background(), aisearch.Query{Q: "   "})
	require.True(t, errs.IsValidation(err))
}

func TestSearch(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ai-search/query", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"queryId":"q1",
			"query":"distributed systems",
			"results":[{"id":"b1","title":"DDIA","snippet":"...","score":0.92}],
			"answer":{"text":"Try DDIA.","citations":[{"id":"b1","title":"DDIA"}]},
			"tookMs":134
		}`))
	})

	resp, err := svc.Search(context.Background(), aisearch.Query{Q: "distributed systems", TopK: 5, IncludeAnswer: true})
	require.NoError(t, err)
	require.Equal(t, "q1", resp.QueryID)
	require.Len(t, resp.Results, 1)
	require.NotNil(t, resp.Answer)
	require.Len(t, resp.Answer.Citations, 1)
}

func TestRecordIDIsEscaped(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/ai-search/records/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, svc.DeleteRecord(context.Background(), "a/b"))
}
