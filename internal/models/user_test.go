package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminLoginEligibilityAllFlags(t *testing.T) {
	cases := []struct {
		name     string
		user     User
		eligible bool
		failed   []string
	}{
		{
			name:     "all satisfied",
			user:     User{Role: RoleAdmin, EmailVerified: true, ApprovalStatus: ApprovalApproved, Active: true},
			eligible: true,
		},
		{
			name:     "wrong role",
			user:     User{Role: RoleUser, EmailVerified: true, ApprovalStatus: ApprovalApproved, Active: true},
			eligible: false,
			failed:   []string{"role"},
		},
		{
			name:     "unverified email",
			user:     User{Role: RoleAdmin, EmailVerified: false, ApprovalStatus: ApprovalApproved, Active: true},
			eligible: false,
			failed:   []string{"email_verified"},
		},
		{
			name:     "still pending",
			user:     User{Role: RoleAdmin, EmailVerified: true, ApprovalStatus: ApprovalPending, Active: true},
			eligible: false,
			failed:   []string{"approval_status"},
		},
		{
			name:     "rejected",
			user:     User{Role: RoleAdmin, EmailVerified: true, ApprovalStatus: ApprovalRejected, Active: false},
			eligible: false,
			failed:   []string{"approval_status", "active"},
		},
		{
			name:     "inactive",
			user:     User{Role: RoleAdmin, EmailVerified: true, ApprovalStatus: ApprovalApproved, Active: false},
			eligible: false,
			failed:   []string{"active"},
		},
		{
			name:     "everything failing",
			user:     User{Role: RoleUser},
			eligible: false,
			failed:   []string{"role", "email_verified", "approval_status", "active"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := tc.user.AdminLoginEligibility()
			assert.Equal(t, tc.eligible, report.Eligible)
			assert.Equal(t, tc.failed, report.FailedChecks())
		})
	}
}

func TestAdminLoginEligibilityExhaustive(t *testing.T) {
	// Walk every combination of the four flags: only the all-true corner is
	// eligible, and FailedChecks names exactly the flags that are off.
	for _, adminRole := range []bool{false, true} {
		for _, verified := range []bool{false, true} {
			for _, approved := range []bool{false, true} {
				for _, active := range []bool{false, true} {
					user := User{
						Role:           RoleUser,
						EmailVerified:  verified,
						ApprovalStatus: ApprovalPending,
						Active:         active,
					}
					if adminRole {
						user.Role = RoleAdmin
					}
					if approved {
						user.ApprovalStatus = ApprovalApproved
					}

					report := user.AdminLoginEligibility()
					wantEligible := adminRole && verified && approved && active
					assert.Equalf(t, wantEligible, report.Eligible,
						"role=%t verified=%t approved=%t active=%t", adminRole, verified, approved, active)

					var wantFailed []string
					if !adminRole {
						wantFailed = append(wantFailed, "role")
					}
					if !verified {
						wantFailed = append(wantFailed, "email_verified")
					}
					if !approved {
						wantFailed = append(wantFailed, "approval_status")
					}
					if !active {
						wantFailed = append(wantFailed, "active")
					}
					assert.Equalf(t, wantFailed, report.FailedChecks(),
						"role=%t verified=%t approved=%t active=%t", adminRole, verified, approved, active)
				}
			}
		}
	}
}

func TestAdminLoginEligibilityIndependentFlags(t *testing.T) {
	// Each condition must be reported on its own even when others fail too.
	user := User{Role: RoleAdmin, EmailVerified: false, ApprovalStatus: ApprovalPending, Active: true}
	report := user.AdminLoginEligibility()
	assert.True(t, report.AdminRole)
	assert.False(t, report.EmailVerified)
	assert.False(t, report.Approved)
	assert.True(t, report.Active)
	assert.False(t, report.Eligible)
}

func TestFullName(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.FullName())

	u = User{FirstName: "Ada"}
	assert.Equal(t, "Ada", u.FullName())

	u = User{LastName: "Lovelace"}
	assert.Equal(t, "Lovelace", u.FullName())
}
