package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrms-io/hrms-api/internal/models"
)

const certificateColumns = `id, certificate_name, profile_name, category, job_role, issued_date, expiry_date, created_at, updated_at`

// CertificateRepository provides database access for certificate records.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository creates a new instance of CertificateRepository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// FindByID returns a certificate by identifier.
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificates WHERE id = $1 LIMIT 1`, certificateColumns)
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find certificate by id: %w", err)
	}
	return &cert, nil
}

// Create inserts a new certificate record.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if cert.CreatedAt.IsZero() {
		cert.CreatedAt = now
	}
	cert.UpdatedAt = now

	const query = `INSERT INTO certificates (id, certificate_name, profile_name, category, job_role, issued_date, expiry_date, created_at, updated_at) VALUES (:id, :certificate_name, :profile_name, :category, :job_role, :issued_date, :expiry_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a certificate. It reports
// sql.ErrNoRows when the id is unknown.
func (r *CertificateRepository) Update(ctx context.Context, cert *models.Certificate) error {
	cert.UpdatedAt = time.Now().UTC()
	const query = `UPDATE certificates SET certificate_name = :certificate_name, profile_name = :profile_name, category = :category, job_role = :job_role, issued_date = :issued_date, expiry_date = :expiry_date, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, cert)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a certificate record. It reports sql.ErrNoRows when the id
// is unknown.
func (r *CertificateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM certificates WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAll returns every certificate record for dashboard classification.
func (r *CertificateRepository) ListAll(ctx context.Context) ([]models.Certificate, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificates`, certificateColumns)
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query); err != nil {
		return nil, fmt.Errorf("list all certificates: %w", err)
	}
	return certs, nil
}

// CountByProfileName reports how many certificates still reference a profile.
func (r *CertificateRepository) CountByProfileName(ctx context.Context, profileName string) (int, error) {
	const query = `SELECT COUNT(*) FROM certificates WHERE profile_name = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, profileName); err != nil {
		return 0, fmt.Errorf("count certificates by profile: %w", err)
	}
	return count, nil
}

// List returns certificates based on filters with total count.
func (r *CertificateRepository) List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, int, error) {
	baseQuery := `FROM certificates WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.JobRole != "" {
		conditions = append(conditions, fmt.Sprintf("job_role = $%d", len(args)+1))
		args = append(args, filter.JobRole)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(certificate_name) LIKE $%d OR LOWER(profile_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "expiry_date"
	}
	allowedSorts := map[string]bool{
		"certificate_name": true,
		"profile_name":     true,
		"category":         true,
		"job_role":         true,
		"issued_date":      true,
		"expiry_date":      true,
		"created_at":       true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "expiry_date"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", certificateColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list certificates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count certificates: %w", err)
	}

	return certs, total, nil
}
