package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/models"
	"github.com/hrms-io/hrms-api/pkg/config"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
)

type mockAdminRepo struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	usersByToken map[string]*models.User
	createErr    error
	approvalErr  error
	created      []*models.User
	approvals    []struct {
		id     string
		status models.ApprovalStatus
		active bool
	}
	verified  []string
	auditLogs []*models.AuditLog
	pending   []models.PendingAdmin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{
		usersByEmail: map[string]*models.User{},
		usersByID:    map[string]*models.User{},
		usersByToken: map[string]*models.User{},
	}
}

func (m *mockAdminRepo) addUser(user *models.User) {
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	if user.VerificationToken != nil {
		m.usersByToken[*user.VerificationToken] = user
	}
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockAdminRepo) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	user, ok := m.usersByToken[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAdminRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = "u-" + user.Email
	}
	m.created = append(m.created, user)
	m.addUser(user)
	return nil
}

func (m *mockAdminRepo) UpdateApproval(ctx context.Context, id string, status models.ApprovalStatus, active bool, updatedAt time.Time) error {
	if m.approvalErr != nil {
		return m.approvalErr
	}
	m.approvals = append(m.approvals, struct {
		id     string
		status models.ApprovalStatus
		active bool
	}{id, status, active})
	if user, ok := m.usersByID[id]; ok {
		user.ApprovalStatus = status
		user.Active = active
	}
	return nil
}

func (m *mockAdminRepo) MarkEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	m.verified = append(m.verified, id)
	if user, ok := m.usersByID[id]; ok {
		user.EmailVerified = true
		user.VerificationToken = nil
	}
	return nil
}

func (m *mockAdminRepo) ListPendingAdmins(ctx context.Context) ([]models.PendingAdmin, error) {
	return m.pending, nil
}

func (m *mockAdminRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockMailer struct {
	verifications []string
	approvalAsks  [][]string
	decisions     []models.ApprovalAction
}

func (m *mockMailer) SendVerification(user *models.User, token string) {
	m.verifications = append(m.verifications, user.Email)
}

func (m *mockMailer) SendApprovalRequest(superAdmins []string, user *models.User) {
	m.approvalAsks = append(m.approvalAsks, superAdmins)
}

func (m *mockMailer) SendDecision(user *models.User, action models.ApprovalAction) {
	m.decisions = append(m.decisions, action)
}

func newAdminService(repo *mockAdminRepo, mailer *mockMailer) *AdminService {
	return NewAdminService(repo, mailer, validator.New(), zap.NewNop(), config.AdminConfig{
		SuperAdminEmails:   []string{"root@hrms.local"},
		VerificationExpiry: 24 * time.Hour,
	})
}

func TestRequestAdminAccountCreatesPendingUser(t *testing.T) {
	repo := newMockAdminRepo()
	mailer := &mockMailer{}
	svc := newAdminService(repo, mailer)

	res, err := svc.RequestAdminAccount(context.Background(), models.AdminSignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserID)

	require.Len(t, repo.created, 1)
	user := repo.created[0]
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.ApprovalPending, user.ApprovalStatus)
	assert.False(t, user.Active)
	assert.False(t, user.EmailVerified)
	require.NotNil(t, user.VerificationToken)
	assert.NotEmpty(t, *user.VerificationToken)

	assert.Equal(t, []string{"ada@example.com"}, mailer.verifications)
	require.Len(t, mailer.approvalAsks, 1)
	assert.Equal(t, []string{"root@hrms.local"}, mailer.approvalAsks[0])
}

func TestRequestAdminAccountDuplicateEmail(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com"})
	svc := newAdminService(repo, &mockMailer{})

	_, err := svc.RequestAdminAccount(context.Background(), models.AdminSignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.created, "conflicting signup must not create a user")
}

func TestRequestAdminAccountInvalidPayload(t *testing.T) {
	repo := newMockAdminRepo()
	svc := newAdminService(repo, &mockMailer{})

	_, err := svc.RequestAdminAccount(context.Background(), models.AdminSignupRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestDecideApprove(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending})
	mailer := &mockMailer{}
	svc := newAdminService(repo, mailer)

	user, err := svc.Decide(context.Background(), "root@hrms.local", "u1", models.ApprovalDecisionRequest{Action: models.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, user.ApprovalStatus)
	assert.True(t, user.Active)

	require.Len(t, repo.approvals, 1)
	assert.Equal(t, models.ApprovalApproved, repo.approvals[0].status)
	assert.True(t, repo.approvals[0].active)
	assert.Equal(t, []models.ApprovalAction{models.ActionApprove}, mailer.decisions)
}

func TestDecideReject(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending, Active: false})
	mailer := &mockMailer{}
	svc := newAdminService(repo, mailer)

	user, err := svc.Decide(context.Background(), "ROOT@hrms.local", "u1", models.ApprovalDecisionRequest{Action: models.ActionReject})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, user.ApprovalStatus)
	assert.False(t, user.Active)
	assert.Equal(t, []models.ApprovalAction{models.ActionReject}, mailer.decisions)
}

func TestDecideRequiresSuperAdmin(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending})
	svc := newAdminService(repo, &mockMailer{})

	_, err := svc.Decide(context.Background(), "someone@example.com", "u1", models.ApprovalDecisionRequest{Action: models.ActionApprove})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.approvals)
}

func TestDecideApproveIsIdempotent(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending})
	mailer := &mockMailer{}
	svc := newAdminService(repo, mailer)

	first, err := svc.Decide(context.Background(), "root@hrms.local", "u1", models.ApprovalDecisionRequest{Action: models.ActionApprove})
	require.NoError(t, err)

	second, err := svc.Decide(context.Background(), "root@hrms.local", "u1", models.ApprovalDecisionRequest{Action: models.ActionApprove})
	require.NoError(t, err, "repeating an approve must not error")
	assert.Equal(t, first.ApprovalStatus, second.ApprovalStatus)
	assert.Equal(t, models.ApprovalApproved, second.ApprovalStatus)
	assert.True(t, second.Active)

	assert.Len(t, repo.approvals, 1, "the repeat must not write again")
	assert.Len(t, mailer.decisions, 1, "the repeat must not notify again")
}

func TestDecideConflictingDecision(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalApproved, Active: true})
	svc := newAdminService(repo, &mockMailer{})

	_, err := svc.Decide(context.Background(), "root@hrms.local", "u1", models.ApprovalDecisionRequest{Action: models.ActionReject})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.approvals, "a decided account must not transition to the opposite state")
}

func TestDecideUnknownUser(t *testing.T) {
	svc := newAdminService(newMockAdminRepo(), &mockMailer{})

	_, err := svc.Decide(context.Background(), "root@hrms.local", "missing", models.ApprovalDecisionRequest{Action: models.ActionApprove})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDecideNonAdminAccount(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "jo@example.com", Role: models.RoleUser, ApprovalStatus: models.ApprovalPending})
	svc := newAdminService(repo, &mockMailer{})

	_, err := svc.Decide(context.Background(), "root@hrms.local", "u1", models.ApprovalDecisionRequest{Action: models.ActionApprove})
	require.Error(t, err)
}

func TestDecidePersistFailureDoesNotNotify(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending})
	repo.approvalErr = errors.New("db down")
	mailer := &mockMailer{}
	svc := newAdminService(repo, mailer)

	_, err := svc.Decide(context.Background(), "root@hrms.local", "u1", models.ApprovalDecisionRequest{Action: models.ActionApprove})
	require.Error(t, err)
	assert.Empty(t, mailer.decisions, "no notification before the transition is persisted")
}

func TestPendingApprovals(t *testing.T) {
	repo := newMockAdminRepo()
	repo.pending = []models.PendingAdmin{{ID: "u1", Email: "ada@example.com"}}
	svc := newAdminService(repo, &mockMailer{})

	pending, err := svc.PendingApprovals(context.Background(), "root@hrms.local")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.PendingApprovals(context.Background(), "someone@example.com")
	require.Error(t, err)
}

func TestLoginDiagnostics(t *testing.T) {
	repo := newMockAdminRepo()
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending, EmailVerified: true})
	svc := newAdminService(repo, &mockMailer{})

	diag, err := svc.LoginDiagnostics(context.Background(), "root@hrms.local", "u1")
	require.NoError(t, err)
	assert.False(t, diag.Eligibility.Eligible)
	assert.True(t, diag.Eligibility.AdminRole)
	assert.True(t, diag.Eligibility.EmailVerified)
	assert.Equal(t, []string{"approval_status", "active"}, diag.Failed)
}

func TestVerifyEmail(t *testing.T) {
	token := "tok-123"
	repo := newMockAdminRepo()
	expiry := time.Now().UTC().Add(time.Hour)
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", VerificationToken: &token, VerificationExpiry: &expiry})
	svc := newAdminService(repo, &mockMailer{})

	require.NoError(t, svc.VerifyEmail(context.Background(), "tok-123"))
	assert.Equal(t, []string{"u1"}, repo.verified)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	token := "tok-123"
	repo := newMockAdminRepo()
	expiry := time.Now().UTC().Add(-time.Hour)
	repo.addUser(&models.User{ID: "u1", Email: "ada@example.com", VerificationToken: &token, VerificationExpiry: &expiry})
	svc := newAdminService(repo, &mockMailer{})

	err := svc.VerifyEmail(context.Background(), "tok-123")
	require.Error(t, err)
	assert.Empty(t, repo.verified)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc := newAdminService(newMockAdminRepo(), &mockMailer{})

	err := svc.VerifyEmail(context.Background(), "nope")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestIsSuperAdminCaseInsensitive(t *testing.T) {
	svc := newAdminService(newMockAdminRepo(), &mockMailer{})

	assert.True(t, svc.IsSuperAdmin("root@hrms.local"))
	assert.True(t, svc.IsSuperAdmin("Root@HRMS.local"))
	assert.False(t, svc.IsSuperAdmin("other@hrms.local"))
}
