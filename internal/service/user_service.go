package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/models"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
)

type userListRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	LinkProfile(ctx context.Context, id, profileID string) error
}

type profileExistenceChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// UserService exposes login identities to administrators: read access plus
// the link between a user and its HR profile.
type UserService struct {
	repo     userListRepository
	profiles profileExistenceChecker
	logger   *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userListRepository, profiles profileExistenceChecker, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, profiles: profiles, logger: logger}
}

// Get fetches one user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}

// LinkProfile attaches an HR profile to a user. The profile must exist; a
// user must never reference a profile id with no backing record.
func (s *UserService) LinkProfile(ctx context.Context, userID, profileID string) (*models.User, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "profileId is required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	exists, err := s.profiles.Exists(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check profile")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "profileId does not reference an existing profile")
	}

	if err := s.repo.LinkProfile(ctx, user.ID, profileID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link profile")
	}

	user.ProfileID = &profileID
	s.logger.Info("profile linked", zap.String("user_id", user.ID), zap.String("profile_id", profileID))
	return user, nil
}

// List returns users matching the provided filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
