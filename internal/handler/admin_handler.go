package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrms-io/hrms-api/internal/middleware"
	"github.com/hrms-io/hrms-api/internal/models"
	"github.com/hrms-io/hrms-api/internal/service"
	appErrors "github.com/hrms-io/hrms-api/pkg/errors"
	"github.com/hrms-io/hrms-api/pkg/response"
)

// AdminHandler exposes the super-admin approval workflow.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// ListApprovals godoc
// @Summary List pending admin approvals
// @Description Returns admin accounts awaiting a decision, oldest first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/approvals [get]
func (h *AdminHandler) ListApprovals(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pending, err := h.service.PendingApprovals(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, pending, nil)
}

// Decide godoc
// @Summary Approve or reject a pending admin account
// @Description Applies a super-admin decision; approve activates the account, reject deactivates it
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param payload body models.ApprovalDecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/approvals/{userId} [post]
func (h *AdminHandler) Decide(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ApprovalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	user, err := h.service.Decide(c.Request.Context(), claims.Email, c.Param("userId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"userId":         user.ID,
		"approvalStatus": user.ApprovalStatus,
		"active":         user.Active,
	}, nil)
}

// LoginDiagnostics godoc
// @Summary Inspect login eligibility for an account
// @Description Reports each independent sign-in flag so a blocked login can be traced
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/login-diagnostics [get]
func (h *AdminHandler) LoginDiagnostics(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	diag, err := h.service.LoginDiagnostics(c.Request.Context(), claims.Email, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, diag, nil)
}
