// Package aisearch wraps the semantic catalog search endpoints and the
// per-member saved-search records they produce.
package aisearch

import (
	"context"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/errs"
	"github.com/ai-library/ai-library/client/httpx"
)

const (
	queryPath   = "/ai-search/query"
	recordsPath = "/ai-search/records"
)

type Query struct {
	Q             string         `json:"q" validate:"required"`
	TopK          int            `json:"topK,omitempty"`
	Rerank        bool           `json:"rerank,omitempty"`
	IncludeAnswer bool           `json:"includeAnswer,omitempty"`
	Filters       map[string]any `json:"filters,omitempty"`
}

type ResultItem struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Snippet  string         `json:"snippet"`
	Score    float64        `json:"score,omitempty"`
	URL      string         `json:"url,omitempty"`
	Source   string         `json:"source,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Citation struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	ID    string `json:"id,omitempty"`
}

type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

type Response struct {
	QueryID string       `json:"queryId,omitempty"`
	Query   string       `json:"query"`
	Results []ResultItem `json:"results"`
	Answer  *Answer      `json:"answer,omitempty"`
	TookMs  int64        `json:"tookMs,omitempty"`
}

// SavedSearch is the stored record of a past query.
type SavedSearch struct {
	ID        string     `json:"id"`
	MemberID  string     `json:"memberId,omitempty"`
	Query     string     `json:"query"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type Service struct {
	client *httpx.Client
	log    *zap.Logger
}

func NewService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log.Named("ai-search")}
}

// Search executes a query. An empty query string never leaves the
// process.
func (s *Service) Search(ctx context.Context, q Query) (Response, error) {
	if strings.TrimSpace(q.Q) == "" {
		return Response{}, errs.Validation("q", "required")
	}
	var resp Response
	if err := s.client.Post(ctx, queryPath, q, &resp); err != nil {
		return Response{}, err
	}
	s.log.Debug("search executed",
		zap.String("queryId", resp.QueryID),
		zap.Int("results", len(resp.Results)))
	return resp, nil
}

func (s *Service) ListRecords(ctx context.Context, skip, limit int) ([]SavedSearch, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var records []SavedSearch
	if err := s.client.Get(ctx, recordsPath, &records, httpx.WithQuery(q)); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord replays a saved search: the backend returns the full
// response, not just the stored query.
func (s *Service) GetRecord(ctx context.Context, id string) (Response, error) {
	var resp Response
	if err := s.client.Get(ctx, path.Join(recordsPath, url.PathEscape(id)), &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	return s.client.Delete(ctx, path.Join(recordsPath, url.PathEscape(id)), nil)
}
