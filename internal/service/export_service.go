package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hrms-io/hrms-api/internal/dto"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
	"github.com/hrms-io/hrms-api/pkg/export"
)

// ExportFormat names a supported certificate export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document plus its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the expiring-certificate report as CSV or PDF. It
// reuses the dashboard classification so both surfaces always agree on which
// certificates are expiring.
type ExportService struct {
	certs  *CertificateService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(certs *CertificateService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		certs:  certs,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

var exportHeaders = []string{"Certificate", "Profile", "Category", "Job Role", "Issued", "Expires", "Days Left"}

// ExpiringCertificates renders the certificates expiring within windowDays in
// the requested format. A nil windowDays uses the dashboard's default window.
func (s *ExportService) ExpiringCertificates(ctx context.Context, format ExportFormat, windowDays *int) (*ExportResult, error) {
	stats, err := s.certs.DashboardStats(ctx, windowDays)
	if err != nil {
		return nil, err
	}

	dataset := buildExpiringDataset(stats.ExpiringCertificates)

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    "expiring-certificates.csv",
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Expiring Certificates")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    "expiring-certificates.pdf",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("unsupported export format %q, expected csv or pdf", format))
	}
}

func buildExpiringDataset(certs []dto.ExpiringCertificate) export.Dataset {
	rows := make([]map[string]string, 0, len(certs))
	for _, cert := range certs {
		rows = append(rows, map[string]string{
			"Certificate": cert.CertificateName,
			"Profile":     cert.ProfileName,
			"Category":    cert.Category,
			"Job Role":    cert.JobRole,
			"Issued":      cert.IssuedDate.String(),
			"Expires":     cert.ExpiryDate.String(),
			"Days Left":   strconv.Itoa(cert.DaysUntilExpiry),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
