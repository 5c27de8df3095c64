// Package books is the catalog client. Reads are open to any member;
// create/update/delete are admin calls and the backend enforces that.
package books

import (
	"context"
	"net/url"
	"path"
	"strconv"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
)

const basePath = "/books"

type ListParams struct {
	Search   string
	Category string
	Skip     int
	Limit    int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

type List struct {
	Items   []model.Book
	Total   *int
	HasMore bool
}

// Update carries only the fields to change; nil pointers are omitted
// from the PATCH body.
type Update struct {
	Title         *string   `json:"title,omitempty"`
	Author        *string   `json:"author,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Publisher     *string   `json:"publisher,omitempty"`
	Description   *string   `json:"description,omitempty"`
	CoverImageURL *string   `json:"coverImageUrl,omitempty"`
	ISBN          *string   `json:"isbn,omitempty"`
	Language      *string   `json:"language,omitempty"`
	PageCount     *int      `json:"pageCount,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
}

type Service struct {
	client *httpx.Client
	log    *zap.Logger
}

func NewService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log.Named("books")}
}

func (s *Service) ListBooks(ctx context.Context, p ListParams) (List, error) {
	var (
		items []model.Book
		total = -1
	)
	err := s.client.Get(ctx, basePath, &items,
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

func (s *Service) Get(ctx context.Context, id string) (model.Book, error) {
	var b model.Book
	if err := s.client.Get(ctx, path.Join(basePath, id), &b); err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, book model.Book) (model.Book, error) {
	var created model.Book
	if err := s.client.Post(ctx, basePath, book, &created); err != nil {
		return model.Book{}, err
	}
	s.log.Debug("book created", zap.String("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, upd Update) (model.Book, error) {
	var b model.Book
	if err := s.client.Patch(ctx, path.Join(basePath, id), upd, &b); err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, path.Join(basePath, id), nil)
}
