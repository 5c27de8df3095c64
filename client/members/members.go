// Package members is the admin-only member directory client.
package members

import (
	"context"
	"net/url"
	"path"
	"strconv"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
)

const basePath = "/admin/members"

type ListParams struct {
	Search string
	Role   model.Role
	Skip   int
	Limit  int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Role != "" {
		q.Set("role", string(p.Role))
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
	Items   []model.Member
	Total   *int
	HasMore bool
}

type Create struct {
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8"`
	DisplayName string     `json:"displayName" validate:"required"`
	Role        model.Role `json:"role,omitempty"`
}

// Update changes profile fields and, for privileged callers, the role.
type Update struct {
	DisplayName     *string     `json:"displayName,omitempty"`
	Role            *model.Role `json:"role,omitempty"`
	AvatarURL       *string     `json:"avatarUrl,omitempty"`
	Bio             *string     `json:"bio,omitempty"`
	Location        *string     `json:"location,omitempty"`
	Website         *string     `json:"website,omitempty"`
	PreferredGenres *[]string   `json:"preferredGenres,omitempty"`
}

type Service struct {
	client *httpx.Client
	log    *zap.Logger
}

func NewService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log.Named("members")}
}

func (s *Service) ListMembers(ctx context.Context, p ListParams) (List, error) {
	var (
		items []model.Member
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

func (s *Service) Get(ctx context.Context, id string) (model.Member, error) {
	var m model.Member
	if err := s.client.Get(ctx, path.Join(basePath, id), &m); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, in Create) (model.Member, error) {
	var m model.Member
	if err := s.client.Post(ctx, basePath, in, &m); err != nil {
		return model.Member{}, err
	}
	s.log.Debug("member created", zap.String("id", m.ID), zap.String("role", string(m.Role)))
	return m, nil
}

func (s *Service) Update(ctx context.Context, id string, upd Update) (model.Member, error) {
	var m model.Member
	if err := s.client.Patch(ctx, path.Join(basePath, id), upd, &m); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, path.Join(basePath, id), nil)
}
