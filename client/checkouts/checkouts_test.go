package checkouts_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/checkouts"
	"github.com/ai-library/ai-library/client/errs"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
)

func newService(t *testing.T, handler http.HandlerFunc) *checkouts.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := httpx.NewClient(httpx.Config{BaseURL: srv.URL}, nil, nil, nil, zap.NewNop())
	require.NoError(t, err)
	return checkouts.NewService(client, zap.NewNop())
}

// deadBackend fails the test on any request; the operation under test
// must be rejected before a network call.
func deadBackend(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	}
}

func TestGuards(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status   model.CheckoutStatus
		ret      bool
		extend   bool
		cancel   bool
		markLost bool
	}{
		{model.StatusRequested, false, false, true, false},
		{model.StatusCheckedOut, true, true, false, true},
		{model.StatusOverdue, true, true, false, true},
		{model.StatusReturned, false, false, false, false},
		{model.StatusCancelled, false, false, false, false},
		{model.StatusLost, false, false, false, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.status), func(t *testing.T) {
			require.Equal(t, tt.ret, checkouts.CanReturn(tt.status))
			require.Equal(t, tt.extend, checkouts.CanExtend(tt.status))
			require.Equal(t, tt.cancel, checkouts.CanCancel(tt.status))
			require.Equal(t, tt.markLost, checkouts.CanMarkLost(tt.status))
		})
	}
}

func TestEndOfDay(t *testing.T) {
	t.Parallel()
	in := time.Date(2024, 1, 10, 9, 30, 0, 0, time.Local)
	got := checkouts.EndOfDay(in)
	require.Equal(t, time.Date(2024, 1, 10, 23, 59, 59, int(999*time.Millisecond), time.Local), got)
}

func TestRequest_RejectsPastDueDateWithoutNetworkCall(t *testing.T) {
	t.Parallel()
	svc := newService(t, deadBackend(t))

	_, err := svc.Request(context.Background(), "b1", "m1", time.Now().AddDate(0, 0, -1), "")
	require.True(t, errs.IsValidation(err))

	// today is rejected too, even though its end-of-day instant is
	// still ahead of the clock
	_, err = svc.Request(context.Background(), "b1", "m1", time.Now(), "")
	require.True(t, errs.IsValidation(err))

	_, err = svc.Request(context.Background(), "", "m1", time.Now().AddDate(0, 0, 3), "")
	require.True(t, errs.IsValidation(err))
}

func TestRequest_NormalizesDueDate(t *testing.T) {
	t.Parallel()
	var got struct {
		BookID string    `json:"bookId"`
		DueAt  time.Time `json:"dueAt"`
	}
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","bookId":"b1","status":"requested"}`))
	})

	day := time.Now().AddDate(0, 0, 7)
	co, err := svc.Request(context.Background(), "b1", "m1", day, "")
	require.NoError(t, err)
	require.Equal(t, "c1", co.ID)
	require.Equal(t, 23, got.DueAt.Hour())
	require.Equal(t, 59, got.DueAt.Minute())
}

func TestReturn_GuardBlocksTerminalStatus(t *testing.T) {
	t.Parallel()
	svc := newService(t, deadBackend(t))
	_, err := svc.Return(context.Background(), model.Checkout{ID: "c1", Status: model.StatusReturned})
	require.True(t, errs.IsValidation(err))
	_, err = svc.Cancel(context.Background(), model.Checkout{ID: "c1", Status: model.StatusCheckedOut})
	require.True(t, errs.IsValidation(err))
}

func TestReturn_SendsAction(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/checkouts/c1", r.URL.Path)
		var p map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		require.Equal(t, "return", p["action"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","status":"returned"}`))
	})

	co, err := svc.Return(context.Background(), model.Checkout{ID: "c1", Status: model.StatusOverdue})
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, co.Status)
}

func TestExtend_Validation(t *testing.T) {
	t.Parallel()
	svc := newService(t, deadBackend(t))
	active := model.Checkout{ID: "c1", Status: model.StatusCheckedOut, DueAt: time.Now().AddDate(0, 0, 10)}

	// both or neither mode
	_, err := svc.Extend(context.Background(), active, checkouts.Extension{})
	require.True(t, errs.IsValidation(err))
	_, err = svc.Extend(context.Background(), active, checkouts.Extension{Days: 7, NewDueAt: time.Now().AddDate(0, 0, 20)})
	require.True(t, errs.IsValidation(err))

	_, err = svc.Extend(context.Background(), active, checkouts.Extension{Days: -3})
	require.True(t, errs.IsValidation(err))

	// absolute date today: end-of-day would still be ahead of the
	// clock, but the picked day itself must be in the future
	overdue := model.Checkout{ID: "c2", Status: model.StatusOverdue, DueAt: time.Now().AddDate(0, 0, -5)}
	_, err = svc.Extend(context.Background(), overdue, checkouts.Extension{NewDueAt: time.Now()})
	require.True(t, errs.IsValidation(err))

	// absolute date not after the current due date
	_, err = svc.Extend(context.Background(), active, checkouts.Extension{NewDueAt: time.Now().AddDate(0, 0, 5)})
	require.True(t, errs.IsValidation(err))

	// terminal status
	_, err = svc.Extend(context.Background(), model.Checkout{ID: "c1", Status: model.StatusLost}, checkouts.Extension{Days: 7})
	require.True(t, errs.IsValidation(err))
}

func TestExtend_ByDays(t *testing.T) {
	t.Parallel()
	due := time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		var p struct {
			Action string `json:"action"`
			Days   *int   `json:"days"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		require.Equal(t, "extend", p.Action)
		require.NotNil(t, p.Days)
		require.Equal(t, 7, *p.Days)

		// the new due date is the backend's computation
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":"c1","status":"checked_out","dueAt":%q}`,
			due.AddDate(0, 0, 7).Format(time.RFC3339))
	})

	co, err := svc.Extend(context.Background(),
		model.Checkout{ID: "c1", Status: model.StatusCheckedOut, DueAt: due},
		checkouts.Extension{Days: 7})
	require.NoError(t, err)
	require.True(t, co.DueAt.After(due))
}

func TestListCheckouts_Paging(t *testing.T) {
	t.Parallel()
	page := func(n int) string {
		out := "["
		for i := 0; i < n; i++ {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf(`{"id":"c%d","status":"checked_out"}`, i)
		}
		return out + "]"
	}

	t.Run("full page without total implies more", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "10", r.URL.Query().Get("limit"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(page(10)))
		})
		list, err := svc.ListCheckouts(context.Background(), checkouts.ListParams{Limit: 10})
		require.NoError(t, err)
		require.Len(t, list.Items, 10)
		require.Nil(t, list.Total)
		require.True(t, list.HasMore)
	})

	t.Run("short page implies no more", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(page(7)))
		})
		list, err := svc.ListCheckouts(context.Background(), checkouts.ListParams{Limit: 10})
		require.NoError(t, err)
		require.Len(t, list.Items, 7)
		require.False(t, list.HasMore)
	})

	t.Run("total header is authoritative", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("x-total-count", "10")
			_, _ = w.Write([]byte(page(10)))
		})
		list, err := svc.ListCheckouts(context.Background(), checkouts.ListParams{Limit: 10})
		require.NoError(t, err)
		require.NotNil(t, list.Total)
		require.Equal(t, 10, *list.Total)
		require.False(t, list.HasMore)
	})

	t.Run("filters land in the query", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, "overdue", q.Get("status"))
			require.Equal(t, "m1", q.Get("memberId"))
			require.Equal(t, "20", q.Get("skip"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		})
		_, err := svc.ListCheckouts(context.Background(), checkouts.ListParams{
			Status:   model.StatusOverdue,
			MemberID: "m1",
			Skip:     20,
			Limit:    10,
		})
		require.NoError(t, err)
	})
}

func TestBatch(t *testing.T) {
	t.Parallel()
	items := make([]model.Checkout, 6)
	for i := range items {
		items[i] = model.Checkout{ID: "c" + strconv.Itoa(i), Status: model.StatusCheckedOut}
	}

	var inFlight, peak atomic.Int32
	results := checkouts.Batch(context.Background(), items, 2,
		func(ctx context.Context, co model.Checkout) (model.Checkout, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)

			if co.ID == "c3" {
				return model.Checkout{}, fmt.Errorf("boom")
			}
			co.Status = model.StatusReturned
			return co, nil
		})

	require.Len(t, results, len(items))
	require.LessOrEqual(t, peak.Load(), int32(2))
	for i, res := range results {
		require.Equal(t, items[i].ID, res.ID)
		if res.ID == "c3" {
			require.Error(t, res.Err)
			continue
		}
		require.NoError(t, res.Err)
		require.Equal(t, model.StatusReturned, res.Checkout.Status)
	}
}
