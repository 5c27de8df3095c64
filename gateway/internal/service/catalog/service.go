// Package catalog fronts the book CRUD and the admin member directory.
package catalog

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/books"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/members"
	"github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/gateway/internal/errs"
	"github.com/ai-library/ai-library/pkg/circuit_breaker"
)

type Service struct {
	log     *zap.Logger
	books   *books.Service
	members *members.Service
	cb      circuit_breaker.CircuitBreaker
}

func NewService(log *zap.Logger, client *httpx.Client) *Service {
	return &Service{
		log:     log,
		books:   books.NewService(client, log),
		members: members.NewService(client, log),
		cb:      circuit_breaker.New(100, time.Second, 0.2, 2),
	}
}

func (s *Service) CB() circuit_breaker.CircuitBreaker {
	return s.cb
}

func (s *Service) ListBooks(ctx context.Context, p books.ListParams) (books.List, int, error) {
	list, err := s.books.ListBooks(ctx, p)
	if err != nil {
		return books.List{}, errs.Status(err), err
	}
	return list, http.StatusOK, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, int, error) {
	b, err := s.books.Get(ctx, id)
	if err != nil {
		return model.Book{}, errs.Status(err), err
	}
	return b, http.StatusOK, nil
}

func (s *Service) CreateBook(ctx context.Context, b model.Book) (model.Book, int, error) {
	created, err := s.books.Create(ctx, b)
	if err != nil {
		return model.Book{}, errs.Status(err), err
	}
	return created, http.StatusCreated, nil
}

func (s *Service) UpdateBook(ctx context.Context, id string, upd books.Update) (model.Book, int, error) {
	b, err := s.books.Update(ctx, id, upd)
	if err != nil {
		return model.Book{}, errs.Status(err), err
	}
	return b, http.StatusOK, nil
}

func (s *Service) DeleteBook(ctx context.Context, id string) (int, error) {
	if err := s.books.Delete(ctx, id); err != nil {
		return errs.Status(err), err
	}
	return http.StatusNoContent, nil
}

func (s *Service) ListMembers(ctx context.Context, p members.ListParams) (members.List, int, error) {
	list, err := s.members.ListMembers(ctx, p)
	if err != nil {
		return members.List{}, errs.Status(err), err
	}
	return list, http.StatusOK, nil
}

func (s *Service) GetMember(ctx context.Context, id string) (model.Member, int, error) {
	m, err := s.members.Get(ctx, id)
	if err != nil {
		return model.Member{}, errs.Status(err), err
	}
	return m, http.StatusOK, nil
}

func (s *Service) CreateMember(ctx context.Context, in members.Create) (model.Member, int, error) {
	m, err := s.members.Create(ctx, in)
	if err != nil {
		return model.Member{}, errs.Status(err), err
	}
	return m, http.StatusCreated, nil
}

func (s *Service) UpdateMember(ctx context.Context, id string, upd members.Update) (model.Member, int, error) {
	m, err := s.members.Update(ctx, id, upd)
	if err != nil {
		return model.Member{}, errs.Status(err), err
	}
	return m, http.StatusOK, nil
}

func (s *Service) DeleteMember(ctx context.Context, id string) (int, error) {
	if err := s.members.Delete(ctx, id); err != nil {
		return errs.Status(err), err
	}
	return http.StatusNoContent, nil
}
