// Package checkouts encapsulates the loan lifecycle: which status
// transitions are allowed, the validation that must pass before a
// transition request leaves the process, and the list/query surface.
// The backend stays authoritative for persisted state; the guards here
// only keep the client from issuing requests that are doomed to fail.
package checkouts

import (
	"context"
	"net/url"
	"path"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/errs"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
)

// Action names carried in the update payload.
const (
	ActionReturn   = "return"
	ActionExtend   = "extend"
	ActionCancel   = "cancel"
	ActionMarkLost = "mark_lost"
)

// CanReturn reports whether a return may be requested for a checkout
// in the given status.
func CanReturn(s model.CheckoutStatus) bool {
	return s == model.StatusCheckedOut || s == model.StatusOverdue
}

// CanExtend mirrors CanReturn: only an active loan that actually holds
// the book can be extended.
func CanExtend(s model.CheckoutStatus) bool {
	return s == model.StatusCheckedOut || s == model.StatusOverdue
}

// CanCancel is true only before the book has been handed out.
func CanCancel(s model.CheckoutStatus) bool {
	return s == model.StatusRequested
}

func CanMarkLost(s model.CheckoutStatus) bool {
	return s == model.StatusCheckedOut || s == model.StatusOverdue
}

// EndOfDay normalizes a chosen calendar day to 23:59:59.999 local time,
// the instant actually transmitted as the due date.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// futureDay reports whether t's calendar day lands strictly after now's.
// The raw picked day is compared, not the end-of-day instant: today's
// end-of-day is still ahead of the clock, but "today" is not a valid
// due date.
func futureDay(t, now time.Time) bool {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty != ny {
		return ty > ny
	}
	if tm != nm {
		return tm > nm
	}
	return td > nd
}

// Extension selects exactly one of the two extension modes: relative
// (the backend adds Days to the current due date) or absolute (the
// client supplies the new calendar day).
type Extension struct {
	Days     int
	NewDueAt time.Time
}

type updatePayload struct {
	Action   string     `json:"action"`
	Days     *int       `json:"days,omitempty"`
	NewDueAt *time.Time `json:"newDueAt,omitempty"`
}

type requestPayload struct {
	BookID   string    `json:"bookId"`
	MemberID string    `json:"memberId,omitempty"`
	DueAt    time.Time `json:"dueAt"`
	Notes    string    `json:"notes,omitempty"`
}

// ListParams are ANDed filters plus skip/limit paging.
type ListParams struct {
	Search   string
	Status   model.CheckoutStatus
	MemberID string
	BookID   string
	From     *time.Time
	To       *time.Time
	Skip     int
	Limit    int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.MemberID != "" {
		q.Set("memberId", p.MemberID)
	}
	if p.BookID != "" {
		q.Set("bookId", p.BookID)
	}
	if p.From != nil {
		q.Set("from", p.From.Format(time.RFC3339))
	}
	if p.To != nil {
		q.Set("to", p.To.Format(time.RFC3339))
	}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// List is one page of checkouts. Total is nil when the backend sent no
// count header; HasMore then falls back to the page-size heuristic.
type List struct {
	Items   []model.Checkout
	Total   *int
	HasMore bool
}

type Service struct {
	client *httpx.Client
	base   string
	log    *zap.Logger
}

// NewService targets the self-service endpoints.
func NewService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{client: client, base: "/checkouts", log: log.Named("checkouts")}
}

// NewAdminService targets the admin loan endpoints; the lifecycle rules
// are identical, only the path prefix differs.
func NewAdminService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{client: client, base: "/admin/loans", log: log.Named("admin-loans")}
}

func (s *Service) item(id string) string {
	return path.Join(s.base, id)
}

// Request creates a new checkout. The chosen day must be strictly
// after today or the request is rejected without a network call; only
// then is it normalized to end-of-day for transmission. Book
// availability conflicts are the backend's call, not ours.
func (s *Service) Request(ctx context.Context, bookID, memberID string, dueAt time.Time, notes string) (model.Checkout, error) {
	if bookID == "" {
		return model.Checkout{}, errs.Validation("bookId", "required")
	}
	if !futureDay(dueAt, time.Now()) {
		return model.Checkout{}, errs.Validation("dueAt", "must be a future date")
	}
	due := EndOfDay(dueAt)

	var co model.Checkout
	err := s.client.Post(ctx, s.base, requestPayload{
		BookID:   bookID,
		MemberID: memberID,
		DueAt:    due,
		Notes:    notes,
	}, &co)
	if err != nil {
		return model.Checkout{}, err
	}
	s.log.Debug("checkout requested", zap.String("id", co.ID), zap.String("bookId", bookID))
	return co, nil
}

// Return requests the checked_out/overdue -> returned transition.
func (s *Service) Return(ctx context.Context, co model.Checkout) (model.Checkout, error) {
	if !CanReturn(co.Status) {
		return model.Checkout{}, errs.Validation("status", "cannot return a checkout in status "+string(co.Status))
	}
	return s.update(ctx, co.ID, updatePayload{Action: ActionReturn})
}

// Cancel withdraws a request that has not been handed out yet.
func (s *Service) Cancel(ctx context.Context, co model.Checkout) (model.Checkout, error) {
	if !CanCancel(co.Status) {
		return model.Checkout{}, errs.Validation("status", "cannot cancel a checkout in status "+string(co.Status))
	}
	return s.update(ctx, co.ID, updatePayload{Action: ActionCancel})
}

func (s *Service) MarkLost(ctx context.Context, co model.Checkout) (model.Checkout, error) {
	if !CanMarkLost(co.Status) {
		return model.Checkout{}, errs.Validation("status", "cannot mark lost a checkout in status "+string(co.Status))
	}
	return s.update(ctx, co.ID, updatePayload{Action: ActionMarkLost})
}

// Extend pushes the due date out. Relative mode ships only the day
// count; the new due date is computed server-side against the current
// one. Absolute mode requires a day strictly after today and, once
// normalized to end-of-day, strictly after the known current due date.
func (s *Service) Extend(ctx context.Context, co model.Checkout, ext Extension) (model.Checkout, error) {
	if !CanExtend(co.Status) {
		return model.Checkout{}, errs.Validation("status", "cannot extend a checkout in status "+string(co.Status))
	}
	hasDays, hasDate := ext.Days != 0, !ext.NewDueAt.IsZero()
	if hasDays == hasDate {
		return model.Checkout{}, errs.Validation("extension", "exactly one of days or newDueAt is required")
	}

	p := updatePayload{Action: ActionExtend}
	if hasDays {
		if ext.Days < 0 {
			return model.Checkout{}, errs.Validation("days", "must be a positive integer")
		}
		days := ext.Days
		p.Days = &days
	} else {
		if !futureDay(ext.NewDueAt, time.Now()) {
			return model.Checkout{}, errs.Validation("newDueAt", "must be a future date")
		}
		due := EndOfDay(ext.NewDueAt)
		if !co.DueAt.IsZero() && !due.After(co.DueAt) {
			return model.Checkout{}, errs.Validation("newDueAt", "must be after the current due date")
		}
		p.NewDueAt = &due
	}
	return s.update(ctx, co.ID, p)
}

// update issues the transition and never retries: a duplicated loan
// mutation is worse than a surfaced failure.
func (s *Service) update(ctx context.Context, id string, p updatePayload) (model.Checkout, error) {
	var co model.Checkout
	if err := s.client.Patch(ctx, s.item(id), p, &co); err != nil {
		return model.Checkout{}, err
	}
	s.log.Debug("checkout updated",
		zap.String("id", co.ID),
		zap.String("action", p.Action),
		zap.String("status", string(co.Status)))
	return co, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Checkout, error) {
	var co model.Checkout
	if err := s.client.Get(ctx, s.item(id), &co); err != nil {
		return model.Checkout{}, err
	}
	return co, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, s.item(id), nil)
}

// ListCheckouts fetches one page. When the backend reports a total via
// header there is a next page iff skip+len < total; without the header
// a full page is read as "possibly more".
func (s *Service) ListCheckouts(ctx context.Context, p ListParams) (List, error) {
	var (
		items []model.Checkout
		total = -1
	)
	err := s.client.Get(ctx, s.base, &items,
		httpx.WithQuery(p.query()),
		httpx.WithTotalHeader(&total),
	)
	if err != nil {
		return List{}, err
	}

	out := List{Items: items}
	if total >= 0 {
		t := total
		out.Total = &t
		out.HasMore = p.Skip+len(items) < total
	} else {
		out.HasMore = p.Limit > 0 && len(items) == p.Limit
	}
	return out, nil
}
