package activity

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/heartbeat"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/gateway/internal/errs"
	"github.com/ai-library/ai-library/pkg/circuit_breaker"
)

type Service struct {
	log       *zap.Logger
	heartbeat *heartbeat.Service
	cb        circuit_breaker.CircuitBreaker
}

func NewService(log *zap.Logger, client *httpx.Client) *Service {
	return &Service{
		log:       log,
		heartbeat: heartbeat.NewService(client, log),
		cb:        circuit_breaker.New(100, time.Second, 0.2, 2),
	}
}

func (s *Service) CB() circuit_breaker.CircuitBreaker {
	return s.cb
}

func (s *Service) Heartbeat(ctx context.Context) (int, error) {
	if err := s.heartbeat.Send(ctx); err != nil {
		return errs.Status(err), err
	}
	return http.StatusNoContent, nil
}
