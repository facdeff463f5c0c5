package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/models"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
)

type mockUserListRepo struct {
	users map[string]*models.User
	links map[string]string
}

func newMockUserListRepo() *mockUserListRepo {
	return &mockUserListRepo{users: map[string]*models.User{}, links: map[string]string{}}
}

func (m *mockUserListRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserListRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (m *mockUserListRepo) LinkProfile(ctx context.Context, id, profileID string) error {
	m.links[id] = profileID
	return nil
}

type mockProfileExists struct {
	existing map[string]bool
	err      error
}

func (m *mockProfileExists) Exists(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.existing[id], nil
}

func TestLinkProfile(t *testing.T) {
	repo := newMockUserListRepo()
	repo.users["u1"] = &models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin}
	profiles := &mockProfileExists{existing: map[string]bool{"p1": true}}
	svc := NewUserService(repo, profiles, zap.NewNop())

	user, err := svc.LinkProfile(context.Background(), "u1", "p1")
	require.NoError(t, err)
	require.NotNil(t, user.ProfileID)
	assert.Equal(t, "p1", *user.ProfileID)
	assert.Equal(t, "p1", repo.links["u1"])
}

func TestLinkProfileUnknownProfile(t *testing.T) {
	repo := newMockUserListRepo()
	repo.users["u1"] = &models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin}
	profiles := &mockProfileExists{existing: map[string]bool{}}
	svc := NewUserService(repo, profiles, zap.NewNop())

	_, err := svc.LinkProfile(context.Background(), "u1", "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.links, "a user must never point at a missing profile")
}

func TestLinkProfileUnknownUser(t *testing.T) {
	profiles := &mockProfileExists{existing: map[string]bool{"p1": true}}
	svc := NewUserService(newMockUserListRepo(), profiles, zap.NewNop())

	_, err := svc.LinkProfile(context.Background(), "missing", "p1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestLinkProfileEmptyID(t *testing.T) {
	svc := NewUserService(newMockUserListRepo(), &mockProfileExists{}, zap.NewNop())

	_, err := svc.LinkProfile(context.Background(), "u1", "  ")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
