// Package profile is the self-service view of the signed-in member.
// Role changes are not accepted here; only an admin path can do that.
package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
)

const mePath = "/profile/me"

type Update struct {
	DisplayName     *string   `json:"displayName,omitempty"`
	AvatarURL       *string   `json:"avatarUrl,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Website         *string   `json:"website,omitempty"`
	PreferredGenres *[]string `json:"preferredGenres,omitempty"`
}

type Service struct {
	client *httpx.Client
	log    *zap.Logger
}

func NewService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log.Named("profile")}
}

func (s *Service) Get(ctx context.Context) (model.Member, error) {
	var m model.Member
	if err := s.client.Get(ctx, mePath, &m); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, upd Update) (model.Member, error) {
	var m model.Member
	if err := s.client.Patch(ctx, mePath, upd, &m); err != nil {
		return model.Member{}, err
	}
	s.log.Debug("profile updated", zap.String("id", m.ID))
	return m, nil
}

// Delete removes the account. Callers should follow up with a session
// sign-out since the backend invalidates the credentials.
func (s *Service) Delete(ctx context.Context) error {
	return s.client.Delete(ctx, mePath, nil)
}
