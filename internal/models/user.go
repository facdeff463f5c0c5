package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// ApprovalStatus tracks where an admin account sits in the approval workflow.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// User represents a login identity stored in the users table. It is the
// credential/authorization record; the person's HR data lives in Profile.
type User struct {
	ID                 string         `db:"id" json:"id"`
	Email              string         `db:"email" json:"email"`
	PasswordHash       string         `db:"password_hash" json:"-"`
	FirstName          string         `db:"first_name" json:"first_name"`
	LastName           string         `db:"last_name" json:"last_name"`
	Role               UserRole       `db:"role" json:"role"`
	Active             bool           `db:"active" json:"active"`
	EmailVerified      bool           `db:"email_verified" json:"email_verified"`
	ApprovalStatus     ApprovalStatus `db:"approval_status" json:"approval_status"`
	VerificationToken  *string        `db:"verification_token" json:"-"`
	VerificationExpiry *time.Time     `db:"verification_expiry" json:"-"`
	ResetToken         *string        `db:"reset_token" json:"-"`
	ResetExpiry        *time.Time     `db:"reset_expiry" json:"-"`
	ProfileID          *string        `db:"profile_id" json:"profile_id,omitempty"`
	LastLogin          *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display and notifications.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// LoginEligibility reports each admin sign-in gate independently so
// diagnostics can name exactly which flag(s) block an account.
type LoginEligibility struct {
	AdminRole     bool `json:"adminRole"`
	EmailVerified bool `json:"emailVerified"`
	Approved      bool `json:"approved"`
	Active        bool `json:"active"`
	Eligible      bool `json:"eligible"`
}

// AdminLoginEligibility evaluates the four independent conditions gating an
// admin login. Eligible is true only when every condition holds.
func (u *User) AdminLoginEligibility() LoginEligibility {
	report := LoginEligibility{
		AdminRole:     u.Role == RoleAdmin,
		EmailVerified: u.EmailVerified,
		Approved:      u.ApprovalStatus == ApprovalApproved,
		Active:        u.Active,
	}
	report.Eligible = report.AdminRole && report.EmailVerified && report.Approved && report.Active
	return report
}

// FailedChecks lists the names of the conditions that are not satisfied.
func (r LoginEligibility) FailedChecks() []string {
	var failed []string
	if !r.AdminRole {
		failed = append(failed, "role")
	}
	if !r.EmailVerified {
		failed = append(failed, "email_verified")
	}
	if !r.Approved {
		failed = append(failed, "approval_status")
	}
	if !r.Active {
		failed = append(failed, "active")
	}
	return failed
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role           *UserRole
	Active         *bool
	ApprovalStatus *ApprovalStatus
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// PendingAdmin is the reduced projection returned by the approvals queue.
type PendingAdmin struct {
	ID        string    `db:"id" json:"userId"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
