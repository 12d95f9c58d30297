package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"garagehub/internal/core/domain"
	"garagehub/internal/core/services"
	"garagehub/internal/pkg/pagination"
	"garagehub/internal/pkg/response"
)

// AdminHandler handles admin KYC review and user administration endpoints
type AdminHandler struct {
	providerService  *services.ProviderService
	dashboardService *services.DashboardService
	userService      *services.UserService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	providerService *services.ProviderService,
	dashboardService *services.DashboardService,
	userService *services.UserService,
) *AdminHandler {
	return &AdminHandler{
		providerService:  providerService,
		dashboardService: dashboardService,
		userService:      userService,
	}
}

// ReviewKYCRequest represents a KYC review decision body
type ReviewKYCRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// ListPendingKYC lists KYC submissions awaiting review
// @Summary List pending KYC submissions
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/kyc/pending [get]
func (h *AdminHandler) ListPendingKYC(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	profiles, total, err := h.providerService.ListPendingKYC(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending submissions")
	}

	return response.Success(c, "Pending submissions retrieved successfully",
		pagination.NewResponse(profiles, params, total))
}

// ReviewKYC approves or rejects a pending KYC submission
// @Summary Review a KYC submission
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Provider profile id"
// @Param body body ReviewKYCRequest true "Decision"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/kyc/{id}/review [patch]
func (h *AdminHandler) ReviewKYC(c *fiber.Ctx) error {
	profileID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid profile id")
	}

	var req ReviewKYCRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !req.Approve && req.Note == "" {
		return response.BadRequest(c, "A rejection note is required")
	}

	profile, err := h.providerService.ReviewKYC(c.Context(), uint(profileID), req.Approve, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProviderNotFound):
			return response.NotFound(c, "Submission not found")
		case errors.Is(err, domain.ErrKYCAlreadyReviewed):
			return response.Conflict(c, "Submission already reviewed")
		default:
			return response.InternalServerError(c, "Failed to review submission")
		}
	}

	return response.Success(c, "Submission reviewed", profile)
}

// ListUsers lists all users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param role query string false "Filter by role"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	role := domain.Role(c.Query("role"))

	users, total, err := h.userService.List(c.Context(), role, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Invalid role filter")
		}
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully",
		pagination.NewResponse(users, params, total))
}

// GetKYCStats returns KYC workload counters for the admin dashboard
// @Summary Get KYC statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/stats/kyc [get]
func (h *AdminHandler) GetKYCStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetKYCStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}
