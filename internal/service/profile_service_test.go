package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/dto"
	"github.com/hrms-io/hrms-api/internal/models"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
)

type mockProfileRepo struct {
	profiles map[string]*models.Profile
	deleted  []string
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: map[string]*models.Profile{}}
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = "p-" + profile.Email
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	if _, ok := m.profiles[profile.ID]; !ok {
		return sql.ErrNoRows
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.profiles[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.profiles, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockProfileRepo) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	var out []models.Profile
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	return out, len(out), nil
}

type mockCertCounter struct {
	counts map[string]int
}

func (m *mockCertCounter) CountByProfileName(ctx context.Context, profileName string) (int, error) {
	return m.counts[profileName], nil
}

func newProfileService(repo *mockProfileRepo, counter *mockCertCounter) *ProfileService {
	if counter == nil {
		counter = &mockCertCounter{}
	}
	return NewProfileService(repo, counter, validator.New(), zap.NewNop())
}

func TestCreateProfile(t *testing.T) {
	repo := newMockProfileRepo()
	svc := newProfileService(repo, nil)

	profile, err := svc.Create(context.Background(), dto.CreateProfileRequest{
		FirstName: "Jo",
		LastName:  "Field",
		Email:     "Jo@Example.com",
		JobRole:   "Technician",
	})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", profile.Email)
	assert.NotEmpty(t, profile.ID)
}

func TestCreateProfileInvalid(t *testing.T) {
	svc := newProfileService(newMockProfileRepo(), nil)

	_, err := svc.Create(context.Background(), dto.CreateProfileRequest{FirstName: "Jo"})
	require.Error(t, err)
}

func TestDeleteProfileBlockedByCertificates(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles["p1"] = &models.Profile{ID: "p1", FirstName: "Jo", LastName: "Field"}
	counter := &mockCertCounter{counts: map[string]int{"Jo Field": 2}}
	svc := newProfileService(repo, counter)

	err := svc.Delete(context.Background(), "p1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.deleted, "referenced profile must not be deleted")
}

func TestDeleteProfileUnreferenced(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles["p1"] = &models.Profile{ID: "p1", FirstName: "Jo", LastName: "Field"}
	svc := newProfileService(repo, &mockCertCounter{})

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.Equal(t, []string{"p1"}, repo.deleted)
}

func TestDeleteProfileNotFound(t *testing.T) {
	svc := newProfileService(newMockProfileRepo(), nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles["p1"] = &models.Profile{ID: "p1", FirstName: "Jo", LastName: "Field", Email: "jo@example.com", JobRole: "Technician"}
	svc := newProfileService(repo, nil)

	updated, err := svc.Update(context.Background(), "p1", dto.UpdateProfileRequest{
		FirstName: "Jo",
		LastName:  "Field",
		Email:     "jo@example.com",
		JobRole:   "Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "Engineer", updated.JobRole)
}
