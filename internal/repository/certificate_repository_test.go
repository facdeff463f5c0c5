package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrms-io/hrms-api/internal/models"
)

func certificateRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "certificate_name", "profile_name", "category", "job_role",
		"issued_date", "expiry_date", "created_at", "updated_at",
	}).AddRow(
		"c1", "Forklift Licence", "Jo Field", "Safety", "Technician",
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		now, now,
	)
}

func TestFindCertificateByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM certificates WHERE id = $1 LIMIT 1")).
		WithArgs("c1").
		WillReturnRows(certificateRows(time.Now()))

	cert, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Forklift Licence", cert.CertificateName)
	assert.Equal(t, "01/06/2024", cert.IssuedDate.String())
	assert.Equal(t, "01/06/2026", cert.ExpiryDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCertificate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectExec("INSERT INTO certificates").WillReturnResult(sqlmock.NewResult(1, 1))

	cert := &models.Certificate{
		CertificateName: "Forklift Licence",
		ProfileName:     "Jo Field",
		Category:        "Safety",
		JobRole:         "Technician",
		IssuedDate:      models.NewCertDate(2024, time.June, 1),
		ExpiryDate:      models.NewCertDate(2026, time.June, 1),
	}
	require.NoError(t, repo.Create(context.Background(), cert))
	assert.NotEmpty(t, cert.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCertificateNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectExec("UPDATE certificates SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Certificate{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteCertificate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM certificates WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCertificateNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM certificates WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListAllCertificates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectQuery("FROM certificates").WillReturnRows(certificateRows(time.Now()))

	certs, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, certs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByProfileName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM certificates WHERE profile_name = $1")).
		WithArgs("Jo Field").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByProfileName(context.Background(), "Jo Field")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCertificatesDefaultSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectQuery("FROM certificates WHERE 1=1 ORDER BY expiry_date ASC LIMIT 20 OFFSET 0").
		WillReturnRows(certificateRows(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM certificates WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	certs, total, err := repo.List(context.Background(), models.CertificateFilter{})
	require.NoError(t, err)
	assert.Len(t, certs, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
