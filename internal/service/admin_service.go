package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hrms-io/hrms-api/internal/dto"
	"github.com/hrms-io/hrms-api/internal/models"
	"github.com/hrms-io/hrms-api/pkg/config"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
)

type adminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateApproval(ctx context.Context, id string, status models.ApprovalStatus, active bool, updatedAt time.Time) error
	MarkEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error
	ListPendingAdmins(ctx context.Context) ([]models.PendingAdmin, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type decisionMailer interface {
	SendVerification(user *models.User, token string)
	SendApprovalRequest(superAdmins []string, user *models.User)
	SendDecision(user *models.User, action models.ApprovalAction)
}

// AdminService owns the admin account lifecycle: signup, email verification,
// and the pending -> approved/rejected decision taken by a super-admin.
type AdminService struct {
	repo      adminUserRepository
	mailer    decisionMailer
	validator *validator.Validate
	logger    *zap.Logger
	config    config.AdminConfig
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(repo adminUserRepository, mailer decisionMailer, validate *validator.Validate, logger *zap.Logger, cfg config.AdminConfig) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{repo: repo, mailer: mailer, validator: validate, logger: logger, config: cfg}
}

// IsSuperAdmin reports whether the given email belongs to the configured
// super-admin allow-list. Matching is case-insensitive.
func (s *AdminService) IsSuperAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range s.config.SuperAdminEmails {
		if allowed == email {
			return true
		}
	}
	return false
}

// RequestAdminAccount registers a new admin account in the pending state. The
// account cannot sign in until its email is verified and a super-admin
// approves it.
func (s *AdminService) RequestAdminAccount(ctx context.Context, req models.AdminSignupRequest) (*models.AdminSignupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing account")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate verification token")
	}

	now := time.Now().UTC()
	expiry := now.Add(s.config.VerificationExpiry)
	user := &models.User{
		Email:              email,
		PasswordHash:       string(passwordHash),
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Role:               models.RoleAdmin,
		Active:             false,
		EmailVerified:      false,
		ApprovalStatus:     models.ApprovalPending,
		VerificationToken:  &token,
		VerificationExpiry: &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionAdminSignup,
		Resource:   "users",
		ResourceID: &user.ID,
		NewValues:  mustJSON(map[string]string{"email": user.Email, "approval_status": string(user.ApprovalStatus)}),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record signup audit log", zap.Error(err))
	}

	if s.mailer != nil {
		s.mailer.SendVerification(user, token)
		s.mailer.SendApprovalRequest(s.config.SuperAdminEmails, user)
	}

	s.logger.Info("admin account requested",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))

	return &models.AdminSignupResponse{
		UserID:  user.ID,
		Message: "account created and awaiting approval; check your inbox to verify your email",
	}, nil
}

// Decide applies a super-admin decision to a pending admin account. Approving
// sets approval_status=approved and active=true; rejecting sets
// approval_status=rejected and active=false. Both flags change in a single
// statement so callers never observe a half-applied decision. Repeating a
// decision that already holds returns the current state without another
// write or notification.
func (s *AdminService) Decide(ctx context.Context, deciderEmail, userID string, req models.ApprovalDecisionRequest) (*models.User, error) {
	if !s.IsSuperAdmin(deciderEmail) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super-admins may decide approval requests")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if user.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "account is not an admin account")
	}

	status := models.ApprovalApproved
	active := true
	auditAction := models.AuditActionAdminApprove
	if req.Action == models.ActionReject {
		status = models.ApprovalRejected
		active = false
		auditAction = models.AuditActionAdminReject
	}

	if user.ApprovalStatus != models.ApprovalPending {
		// Repeating the decision that already holds is a no-op; only a
		// contradictory decision is a conflict.
		if user.ApprovalStatus == status {
			return user, nil
		}
		return nil, appErrors.Clone(appErrors.ErrConflict,
			"account has already been "+string(user.ApprovalStatus))
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateApproval(ctx, user.ID, status, active, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply decision")
	}

	oldStatus := user.ApprovalStatus
	user.ApprovalStatus = status
	user.Active = active
	user.UpdatedAt = now

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     auditAction,
		Resource:   "users",
		ResourceID: &user.ID,
		OldValues:  mustJSON(map[string]string{"approval_status": string(oldStatus)}),
		NewValues:  mustJSON(map[string]string{"approval_status": string(status), "decided_by": strings.ToLower(deciderEmail)}),
	}); err != nil {
		s.logger.Warn("failed to record decision audit log", zap.Error(err))
	}

	if s.mailer != nil {
		s.mailer.SendDecision(user, req.Action)
	}

	s.logger.Info("admin approval decided",
		zap.String("user_id", user.ID),
		zap.String("action", string(req.Action)),
		zap.String("decided_by", strings.ToLower(deciderEmail)))

	return user, nil
}

// PendingApprovals lists the admin accounts still awaiting a decision.
func (s *AdminService) PendingApprovals(ctx context.Context, requesterEmail string) ([]models.PendingAdmin, error) {
	if !s.IsSuperAdmin(requesterEmail) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super-admins may view the approvals queue")
	}
	pending, err := s.repo.ListPendingAdmins(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending approvals")
	}
	if pending == nil {
		pending = []models.PendingAdmin{}
	}
	return pending, nil
}

// LoginDiagnostics reports every eligibility flag for one account so a
// super-admin can see exactly why a sign-in is blocked.
func (s *AdminService) LoginDiagnostics(ctx context.Context, requesterEmail, userID string) (*dto.LoginDiagnosticsResponse, error) {
	if !s.IsSuperAdmin(requesterEmail) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super-admins may inspect login diagnostics")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	report := user.AdminLoginEligibility()
	return &dto.LoginDiagnosticsResponse{
		UserID:      user.ID,
		Email:       user.Email,
		Eligibility: report,
		Failed:      report.FailedChecks(),
	}, nil
}

// VerifyEmail consumes a verification token, flipping the account's
// email_verified flag. Expired tokens are rejected.
func (s *AdminService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return appErrors.Clone(appErrors.ErrValidation, "verification token is required")
	}

	user, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "verification token is invalid")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up verification token")
	}

	if user.VerificationExpiry != nil && time.Now().UTC().After(*user.VerificationExpiry) {
		return appErrors.Clone(appErrors.ErrValidation, "verification token has expired")
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark email verified")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionEmailVerified,
		Resource:   "users",
		ResourceID: &user.ID,
		NewValues:  mustJSON(map[string]bool{"email_verified": true}),
	}); err != nil {
		s.logger.Warn("failed to record verification audit log", zap.Error(err))
	}

	return nil
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func mustJSON(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
