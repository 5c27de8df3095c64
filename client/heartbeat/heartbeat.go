// Package heartbeat reports member activity so the backend can expire
// idle sessions on its own schedule.
package heartbeat

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/httpx"
)

const heartbeatPath = "/activity/heartbeat"

// DefaultInterval matches the backend's idle-session window with room
// to spare.
const DefaultInterval = 7 * time.Minute

type Service struct {
	client *httpx.Client
	log    *zap.Logger
}

func NewService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log.Named("heartbeat")}
}

// Send posts one heartbeat. A 401/419 is already handled globally by
// the unauthorized signal, so it is not an error worth surfacing here.
func (s *Service) Send(ctx context.Context) error {
	err := s.client.Post(ctx, heartbeatPath, struct{}{}, nil)
	if err != nil {
		switch httpx.StatusOf(err) {
		case http.StatusUnauthorized, 419:
			return nil
		}
		return err
	}
	return nil
}

// Run sends a heartbeat immediately and then on every tick until the
// context is cancelled. Failures are logged and the loop keeps going.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if err := s.Send(ctx); err != nil {
		s.log.Warn("heartbeat failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Send(ctx); err != nil {
				s.log.Warn("heartbeat failed", zap.Error(err))
			}
		}
	}
}
