package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/dto"
	"github.com/hrms-io/hrms-api/internal/models"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
)

const (
	dashboardCacheKeyFormat = "dashboard:stats:%s:%d"
	certificateCachePattern = "dashboard:stats:*"
)

type certificateRepository interface {
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	Create(ctx context.Context, cert *models.Certificate) error
	Update(ctx context.Context, cert *models.Certificate) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Certificate, error)
	List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, int, error)
}

// CertificateService owns certificate CRUD and the dashboard lifecycle
// classification.
type CertificateService struct {
	repo           certificateRepository
	cache          *CacheService
	validator      *validator.Validate
	logger         *zap.Logger
	expiringWindow int
	cacheTTL       time.Duration
	now            func() time.Time
}

// NewCertificateService constructs a CertificateService instance.
// expiringWindow is the default look-ahead in days for the expiring-soon
// bucket when a request does not specify one.
func NewCertificateService(repo certificateRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, expiringWindow int, cacheTTL time.Duration) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if expiringWindow <= 0 {
		expiringWindow = 30
	}
	return &CertificateService{
		repo:           repo,
		cache:          cache,
		validator:      validate,
		logger:         logger,
		expiringWindow: expiringWindow,
		cacheTTL:       cacheTTL,
		now:            time.Now,
	}
}

// parseDates validates both wire dates and their ordering.
func (s *CertificateService) parseDates(issuedRaw, expiryRaw string) (models.CertDate, models.CertDate, error) {
	issued, err := models.ParseCertDate(issuedRaw)
	if err != nil {
		return models.CertDate{}, models.CertDate{}, appErrors.Wrap(err, appErrors.ErrInvalidDate.Code, appErrors.ErrInvalidDate.Status, "issuedDate: "+err.Error())
	}
	expiry, err := models.ParseCertDate(expiryRaw)
	if err != nil {
		return models.CertDate{}, models.CertDate{}, appErrors.Wrap(err, appErrors.ErrInvalidDate.Code, appErrors.ErrInvalidDate.Status, "expiryDate: "+err.Error())
	}
	if expiry.Time.Before(issued.Time) {
		return models.CertDate{}, models.CertDate{}, appErrors.Clone(appErrors.ErrValidation, "expiryDate must not precede issuedDate")
	}
	return issued, expiry, nil
}

// Create registers a new certificate.
func (s *CertificateService) Create(ctx context.Context, req dto.CreateCertificateRequest) (*models.Certificate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certificate payload")
	}

	issued, expiry, err := s.parseDates(req.IssuedDate, req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	cert := &models.Certificate{
		CertificateName: req.CertificateName,
		ProfileName:     req.ProfileName,
		Category:        req.Category,
		JobRole:         req.JobRole,
		IssuedDate:      issued,
		ExpiryDate:      expiry,
	}

	if err := s.repo.Create(ctx, cert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create certificate")
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("certificate created", zap.String("certificate_id", cert.ID), zap.String("profile", cert.ProfileName))
	return cert, nil
}

// Get fetches one certificate by id.
func (s *CertificateService) Get(ctx context.Context, id string) (*models.Certificate, error) {
	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch certificate")
	}
	return cert, nil
}

// Update rewrites an existing certificate.
func (s *CertificateService) Update(ctx context.Context, id string, req dto.UpdateCertificateRequest) (*models.Certificate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certificate payload")
	}

	issued, expiry, err := s.parseDates(req.IssuedDate, req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch certificate")
	}

	cert.CertificateName = req.CertificateName
	cert.ProfileName = req.ProfileName
	cert.Category = req.Category
	cert.JobRole = req.JobRole
	cert.IssuedDate = issued
	cert.ExpiryDate = expiry

	if err := s.repo.Update(ctx, cert); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update certificate")
	}

	s.invalidateDashboard(ctx)
	return cert, nil
}

// Delete removes a certificate.
func (s *CertificateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete certificate")
	}
	s.invalidateDashboard(ctx)
	s.logger.Info("certificate deleted", zap.String("certificate_id", id))
	return nil
}

// List returns certificates for the provided filter along with pagination
// metadata.
func (s *CertificateService) List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, *models.Pagination, error) {
	certs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	if certs == nil {
		certs = []models.Certificate{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return certs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// DashboardStats classifies every certificate against today's date.
//
// A certificate is active while today falls between its issued date and the
// end of its expiry day, expired once its expiry date lies strictly in the
// past, and expiring when its expiry is between zero and windowDays days
// ahead. Active and expiring overlap on purpose; expiring today never counts
// as expired.
//
// A nil windowDays means the caller did not specify one and the configured
// default applies; an explicit zero narrows the expiring bucket to the
// certificates expiring today.
func (s *CertificateService) DashboardStats(ctx context.Context, windowDays *int) (*dto.DashboardStatsResponse, error) {
	window := s.expiringWindow
	if windowDays != nil {
		if *windowDays < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "days must not be negative")
		}
		window = *windowDays
	}

	// Keyed by day as well as window so a cached result never leaks across
	// midnight.
	cacheKey := fmt.Sprintf(dashboardCacheKeyFormat, s.now().UTC().Format("2006-01-02"), window)
	var cached dto.DashboardStatsResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	certs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificates")
	}

	stats := s.Classify(certs, window)

	if err := s.cache.Set(ctx, cacheKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}

	return stats, nil
}

// Classify runs the lifecycle classification over the given certificates.
// Exposed separately so exports reuse the same pass the dashboard serves.
func (s *CertificateService) Classify(certs []models.Certificate, windowDays int) *dto.DashboardStatsResponse {
	today := s.now().UTC()
	todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	stats := &dto.DashboardStatsResponse{
		TotalCount:           len(certs),
		ExpiringCertificates: []dto.ExpiringCertificate{},
		ExpiredCertificates:  []models.Certificate{},
		CategoryCounts:       map[string]int{},
		JobRoleCounts:        map[string]int{},
	}

	for _, cert := range certs {
		stats.CategoryCounts[cert.Category]++
		stats.JobRoleCounts[cert.JobRole]++

		daysUntil := cert.ExpiryDate.DaysUntil(todayMidnight)

		// Active runs through the end of the expiry day, so a certificate
		// expiring today is still active.
		if !todayMidnight.Before(cert.IssuedDate.Time) && daysUntil >= 0 {
			stats.ActiveCount++
		}

		switch {
		case daysUntil < 0:
			stats.ExpiredCertificates = append(stats.ExpiredCertificates, cert)
		case daysUntil <= windowDays:
			stats.ExpiringCertificates = append(stats.ExpiringCertificates, dto.ExpiringCertificate{
				Certificate:     cert,
				DaysUntilExpiry: daysUntil,
			})
		}
	}

	sort.Slice(stats.ExpiringCertificates, func(i, j int) bool {
		return stats.ExpiringCertificates[i].DaysUntilExpiry < stats.ExpiringCertificates[j].DaysUntilExpiry
	})
	sort.Slice(stats.ExpiredCertificates, func(i, j int) bool {
		return stats.ExpiredCertificates[i].ExpiryDate.Time.After(stats.ExpiredCertificates[j].ExpiryDate.Time)
	})

	return stats
}

// WithNow overrides the clock. Intended for tests.
func (s *CertificateService) WithNow(now func() time.Time) *CertificateService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *CertificateService) invalidateDashboard(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, certificateCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
