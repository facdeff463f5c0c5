package dto

import "github.com/hrms-io/hrms-api/internal/models"

// ExpiringCertificate decorates a certificate with its day distance to
// expiry. Zero means the certificate expires today and is still counted as
// expiring, not expired.
type ExpiringCertificate struct {
	models.Certificate
	DaysUntilExpiry int `json:"daysUntilExpiry"`
}

// DashboardStatsResponse aggregates the certificate lifecycle classification
// for the dashboard. A certificate may appear both active and expiring; the
// categories are separate passes, not a partition.
type DashboardStatsResponse struct {
	TotalCount           int                   `json:"totalCount"`
	ActiveCount          int                   `json:"activeCount"`
	ExpiringCertificates []ExpiringCertificate `json:"expiringCertificates"`
	ExpiredCertificates  []models.Certificate  `json:"expiredCertificates"`
	CategoryCounts       map[string]int        `json:"categoryCounts"`
	JobRoleCounts        map[string]int        `json:"jobRoleCounts"`
}

// LoginDiagnosticsResponse surfaces the independent login-eligibility flags
// for one account.
type LoginDiagnosticsResponse struct {
	UserID      string                  `json:"userId"`
	Email       string                  `json:"email"`
	Eligibility models.LoginEligibility `json:"eligibility"`
	Failed      []string                `json:"failedChecks,omitempty"`
}
