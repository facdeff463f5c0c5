package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hrms-io/hrms-api/internal/dto"
	"github.com/hrms-io/hrms-api/internal/models"
	"github.com/hrms-io/hrms-api/internal/service"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
	"github.com/hrms-io/hrms-api/pkg/response"
)

// CertificateHandler wires HTTP endpoints to the certificate service.
type CertificateHandler struct {
	service *service.CertificateService
	export  *service.ExportService
}

// NewCertificateHandler creates a new handler.
func NewCertificateHandler(svc *service.CertificateService, export *service.ExportService) *CertificateHandler {
	return &CertificateHandler{service: svc, export: export}
}

// List godoc
// @Summary List certificates
// @Description Returns certificates with filtering and pagination
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Param jobRole query string false "Filter by job role"
// @Param search query string false "Search by certificate or profile name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /certificates [get]
func (h *CertificateHandler) List(c *gin.Context) {
	filter := models.CertificateFilter{
		Category:  c.Query("category"),
		JobRole:   c.Query("jobRole"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	certs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, certs, pagination)
}

// Get godoc
// @Summary Get certificate
// @Description Returns one certificate by id
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/{id} [get]
func (h *CertificateHandler) Get(c *gin.Context) {
	cert, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// Create godoc
// @Summary Create certificate
// @Description Registers a certificate; dates are DD/MM/YYYY
// @Tags Certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCertificateRequest true "Certificate payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /certificates [post]
func (h *CertificateHandler) Create(c *gin.Context) {
	var req dto.CreateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid certificate payload"))
		return
	}

	cert, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, cert)
}

// Update godoc
// @Summary Update certificate
// @Description Rewrites a certificate; dates are DD/MM/YYYY
// @Tags Certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Param payload body dto.UpdateCertificateRequest true "Certificate payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/{id} [put]
func (h *CertificateHandler) Update(c *gin.Context) {
	var req dto.UpdateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid certificate payload"))
		return
	}

	cert, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cert, nil)
}

// Delete godoc
// @Summary Delete certificate
// @Description Removes a certificate
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/{id} [delete]
func (h *CertificateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DashboardStats godoc
// @Summary Certificate dashboard statistics
// @Description Classifies certificates into active, expiring, and expired buckets
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param days query int false "Expiring look-ahead window in days"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /certificates/dashboard-stats [get]
func (h *CertificateHandler) DashboardStats(c *gin.Context) {
	days, err := windowQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.service.DashboardStats(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export expiring certificates
// @Description Renders the expiring-certificates report as CSV or PDF
// @Tags Certificates
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string true "Export format (csv or pdf)"
// @Param days query int false "Expiring look-ahead window in days"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /certificates/export [get]
func (h *CertificateHandler) Export(c *gin.Context) {
	days, err := windowQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.export.ExpiringCertificates(c.Request.Context(), format, days)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// windowQuery reads the optional days parameter. Absence means "use the
// configured default window", which is distinct from an explicit days=0
// (expiring today only).
func windowQuery(c *gin.Context) (*int, error) {
	raw := c.Query("days")
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "days must be an integer")
	}
	return &parsed, nil
}
