package search

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/aisearch"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/gateway/internal/errs"
	"github.com/ai-library/ai-library/pkg/circuit_breaker"
)

type Service struct {
	log    *zap.Logger
	search *aisearch.Service
	cb     circuit_breaker.CircuitBreaker
}

func NewService(log *zap.Logger, client *httpx.Client) *Service {
	return &Service{
		log:    log,
		search: aisearch.NewService(client, log),
		cb:     circuit_breaker.New(100, time.Second, 0.2, 2),
	}
}

func (s *Service) CB() circuit_breaker.CircuitBreaker {
	return s.cb
}

func (s *Service) Search(ctx context.Context, q aisearch.Query) (aisearch.Response, int, error) {
	resp, err := s.search.Search(ctx, q)
	if err != nil {
		return aisearch.Response{}, errs.Status(err), err
	}
	return resp, http.StatusOK, nil
}

func (s *Service) ListRecords(ctx context.Context, skip, limit int) ([]aisearch.SavedSearch, int, error) {
	records, err := s.search.ListRecords(ctx, skip, limit)
	if err != nil {
		return nil, errs.Status(err), err
	}
	return records, http.StatusOK, nil
}

func (s *Service) GetRecord(ctx context.Context, id string) (aisearch.Response, int, error) {
	resp, err := s.search.GetRecord(ctx, id)
	if err != nil {
		return aisearch.Response{}, errs.Status(err), err
	}
	return resp, http.StatusOK, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id string) (int, error) {
	if err := s.search.DeleteRecord(ctx, id); err != nil {
		return errs.Status(err), err
	}
	return http.StatusNoContent, nil
}
