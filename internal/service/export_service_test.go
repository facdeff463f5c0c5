package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/models"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
)

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	repo := newMockCertRepo()
	repo.all = []models.Certificate{
		cert("forklift", models.NewCertDate(2024, time.March, 10), models.NewCertDate(2025, time.March, 15)),
		cert("expired", models.NewCertDate(2023, time.January, 1), models.NewCertDate(2024, time.January, 1)),
	}
	certSvc := newCertService(repo).WithNow(fixedNow(2025, time.March, 10))
	return NewExportService(certSvc, zap.NewNop())
}

func TestExportCSV(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.ExpiringCertificates(context.Background(), FormatCSV, window(30))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "expiring-certificates.csv", result.Filename)

	records, err := csv.NewReader(bytes.NewReader(result.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus the one expiring certificate")
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, "forklift", records[1][0])
	assert.Equal(t, "15/03/2025", records[1][5])
	assert.Equal(t, "5", records[1][6])
}

func TestExportPDF(t *testing.T) {
	svc := newExportFixture(t)

	result, err := svc.ExpiringCertificates(context.Background(), FormatPDF, window(30))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "expiring-certificates.pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.ExpiringCertificates(context.Background(), ExportFormat("xlsx"), window(30))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
