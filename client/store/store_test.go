package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/errs"
	"github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/client/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "session.db"), zap.NewExample())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Tokens(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Tokens(ctx)
	require.ErrorIs(t, err, errs.ErrNoToken)

	_, ok := s.AccessToken(ctx)
	require.False(t, ok)

	b := store.Bundle{AccessToken: "at-1", RefreshToken: "rt-1", TokenType: "bearer"}
	require.NoError(t, s.SaveTokens(ctx, b))

	got, err := s.Tokens(ctx)
	require.NoError(t, err)
	require.Equal(t, b, got)

	token, ok := s.AccessToken(ctx)
	require.True(t, ok)
	require.Equal(t, "at-1", token)

	// saving again replaces the single bundle
	require.NoError(t, s.SaveTokens(ctx, store.Bundle{AccessToken: "at-2"}))
	got, err = s.Tokens(ctx)
	require.NoError(t, err)
	require.Equal(t, "at-2", got.AccessToken)
	require.Empty(t, got.RefreshToken)

	require.NoError(t, s.ClearTokens(ctx))
	_, err = s.Tokens(ctx)
	require.ErrorIs(t, err, errs.ErrNoToken)
}

func TestStore_MemberCache(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Member(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)

	m := model.Member{
		ID:          "m-1",
		Email:       "reader@example.com",
		DisplayName: "Reader",
		Role:        model.RoleUser,
	}
	require.NoError(t, s.SaveMember(ctx, m))

	got, err := s.Member(ctx)
	require.NoError(t, err)
	require.Equal(t, m.ID, got.ID)
	require.Equal(t, m.Email, got.Email)

	require.NoError(t, s.ClearMember(ctx))
	_, err = s.Member(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
