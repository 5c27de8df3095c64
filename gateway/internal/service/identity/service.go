// Package identity fronts the backend auth and profile endpoints for
// the gateway.
package identity

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/auth"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/client/profile"
	"github.com/ai-library/ai-library/gateway/internal/errs"
	"github.com/ai-library/ai-library/pkg/circuit_breaker"
)

type Service struct {
	log     *zap.Logger
	auth    *auth.Service
	profile *profile.Service
	cb      circuit_breaker.CircuitBreaker
}

func NewService(log *zap.Logger, client *httpx.Client) *Service {
	return &Service{
		log:     log,
		auth:    auth.NewService(client, log),
		profile: profile.NewService(client, log),
		cb:      circuit_breaker.New(100, time.Second, 0.2, 2),
	}
}

func (s *Service) CB() circuit_breaker.CircuitBreaker {
	return s.cb
}

func (s *Service) SignIn(ctx context.Context, creds auth.Credentials) (auth.SignInResponse, int, error) {
	resp, err := s.auth.SignIn(ctx, creds)
	if err != nil {
		return auth.SignInResponse{}, errs.Status(err), err
	}
	return resp, http.StatusOK, nil
}

func (s *Service) SignUp(ctx context.Context, req auth.SignUpRequest) (model.Member, int, error) {
	member, err := s.auth.SignUp(ctx, req)
	if err != nil {
		return model.Member{}, errs.Status(err), err
	}
	return member, http.StatusCreated, nil
}

func (s *Service) SignOut(ctx context.Context) (int, error) {
	if err := s.auth.SignOut(ctx); err != nil {
		return errs.Status(err), err
	}
	return http.StatusNoContent, nil
}

func (s *Service) CurrentMember(ctx context.Context) (model.Member, int, error) {
	member, err := s.auth.CurrentMember(ctx)
	if err != nil {
		return model.Member{}, errs.Status(err), err
	}
	return member, http.StatusOK, nil
}

func (s *Service) GetProfile(ctx context.Context) (model.Member, int, error) {
	member, err := s.profile.Get(ctx)
	if err != nil {
		return model.Member{}, errs.Status(err), err
	}
	return member, http.StatusOK, nil
}

func (s *Service) UpdateProfile(ctx context.Context, upd profile.Update) (model.Member, int, error) {
	member, err := s.profile.Update(ctx, upd)
	if err != nil {
		return model.Member{}, errs.Status(err), err
	}
	return member, http.StatusOK, nil
}

func (s *Service) DeleteProfile(ctx context.Context) (int, error) {
	if err := s.profile.Delete(ctx); err != nil {
		return errs.Status(err), err
	}
	return http.StatusNoContent, nil
}
