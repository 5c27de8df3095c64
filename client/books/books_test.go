package books_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/books"
	"github.com/ai-library/ai-library/client/httpx"
)

func newService(t *testing.T, handler http.HandlerFunc) *books.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := httpx.NewClient(httpx.Config{BaseURL: srv.URL}, nil, nil, nil, zap.NewNop())
	require.NoError(t, err)
	return books.NewService(client, zap.NewNop())
}

func TestListBooks(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/books", r.URL.Path)
		require.Equal(t, "go", r.URL.Query().Get("search"))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("x-total-count", "42")
		_, _ = w.Write([]byte(`[{"id":"b1","title":"The Go Programming Language","author":"Donovan"}]`))
	})

	list, err := svc.ListBooks(context.Background(), books.ListParams{Search: "go", Limit: 1})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "b1", list.Items[0].ID)
	require.NotNil(t, list.Total)
	require.Equal(t, 42, *list.Total)
	require.True(t, list.HasMore)
}

func TestUpdate_OmitsUnsetFields(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/books/b1", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{"title": "Renamed"}, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"b1","title":"Renamed","author":"Donovan"}`))
	})

	title := "Renamed"
	b, err := svc.Update(context.Background(), "b1", books.Update{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Renamed", b.Title)
}
