// Package loans fronts the checkout lifecycle, both self-service and
// the admin loan endpoints.
package loans

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/checkouts"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/gateway/internal/errs"
	"github.com/ai-library/ai-library/pkg/circuit_breaker"
)

// batchLimit bounds concurrent backend calls during a bulk action.
const batchLimit = 4

type Service struct {
	log   *zap.Logger
	self  *checkouts.Service
	admin *checkouts.Service
	cb    circuit_breaker.CircuitBreaker
}

func NewService(log *zap.Logger, client *httpx.Client) *Service {
	return &Service{
		log:   log,
		self:  checkouts.NewService(client, log),
		admin: checkouts.NewAdminService(client, log),
		cb:    circuit_breaker.New(100, time.Second, 0.2, 2),
	}
}

func (s *Service) CB() circuit_breaker.CircuitBreaker {
	return s.cb
}

func (s *Service) svc(admin bool) *checkouts.Service {
	if admin {
		return s.admin
	}
	return s.self
}

func (s *Service) ListCheckouts(ctx context.Context, admin bool, p checkouts.ListParams) (checkouts.List, int, error) {
	list, err := s.svc(admin).ListCheckouts(ctx, p)
	if err != nil {
		return checkouts.List{}, errs.Status(err), err
	}
	return list, http.StatusOK, nil
}

func (s *Service) GetCheckout(ctx context.Context, admin bool, id string) (model.Checkout, int, error) {
	co, err := s.svc(admin).Get(ctx, id)
	if err != nil {
		return model.Checkout{}, errs.Status(err), err
	}
	return co, http.StatusOK, nil
}

func (s *Service) RequestCheckout(ctx context.Context, admin bool, bookID, memberID string, dueAt time.Time, notes string) (model.Checkout, int, error) {
	co, err := s.svc(admin).Request(ctx, bookID, memberID, dueAt, notes)
	if err != nil {
		return model.Checkout{}, errs.Status(err), err
	}
	return co, http.StatusCreated, nil
}

func (s *Service) ReturnCheckout(ctx context.Context, admin bool, co model.Checkout) (model.Checkout, int, error) {
	updated, err := s.svc(admin).Return(ctx, co)
	if err != nil {
		return model.Checkout{}, errs.Status(err), err
	}
	return updated, http.StatusOK, nil
}

func (s *Service) CancelCheckout(ctx context.Context, admin bool, co model.Checkout) (model.Checkout, int, error) {
	updated, err := s.svc(admin).Cancel(ctx, co)
	if err != nil {
		return model.Checkout{}, errs.Status(err), err
	}
	return updated, http.StatusOK, nil
}

func (s *Service) MarkLost(ctx context.Context, admin bool, co model.Checkout) (model.Checkout, int, error) {
	updated, err := s.svc(admin).MarkLost(ctx, co)
	if err != nil {
		return model.Checkout{}, errs.Status(err), err
	}
	return updated, http.StatusOK, nil
}

func (s *Service) ExtendCheckout(ctx context.Context, admin bool, co model.Checkout, ext checkouts.Extension) (model.Checkout, int, error) {
	updated, err := s.svc(admin).Extend(ctx, co, ext)
	if err != nil {
		return model.Checkout{}, errs.Status(err), err
	}
	return updated, http.StatusOK, nil
}

func (s *Service) DeleteCheckout(ctx context.Context, admin bool, id string) (int, error) {
	if err := s.svc(admin).Delete(ctx, id); err != nil {
		return errs.Status(err), err
	}
	return http.StatusNoContent, nil
}

// BatchReturn applies a return to every selected checkout with bounded
// concurrency and a per-item verdict.
func (s *Service) BatchReturn(ctx context.Context, admin bool, items []model.Checkout) []checkouts.BatchResult {
	return checkouts.Batch(ctx, items, batchLimit, s.svc(admin).Return)
}

// BatchExtend extends every selected checkout by the same number of
// days.
func (s *Service) BatchExtend(ctx context.Context, admin bool, items []model.Checkout, days int) []checkouts.BatchResult {
	svc := s.svc(admin)
	return checkouts.Batch(ctx, items, batchLimit,
		func(ctx context.Context, co model.Checkout) (model.Checkout, error) {
			return svc.Extend(ctx, co, checkouts.Extension{Days: days})
		})
}
