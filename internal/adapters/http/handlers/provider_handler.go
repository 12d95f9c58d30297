package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"garagehub/internal/core/domain"
	"garagehub/internal/core/services"
	"garagehub/internal/pkg/password"
	"garagehub/internal/pkg/response"
)

// ProviderHandler handles provider onboarding and mechanic roster endpoints
type ProviderHandler struct {
	providerService *services.ProviderService
	authService     *services.AuthService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(providerService *services.ProviderService, authService *services.AuthService) *ProviderHandler {
	return &ProviderHandler{
		providerService: providerService,
		authService:     authService,
	}
}

// SubmitOnboarding creates or resubmits the garage profile
// @Summary Submit provider onboarding
// @Description Create or resubmit the garage profile; resubmission after rejection reopens KYC review
// @Tags Provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.OnboardingInput true "Garage details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /provider/onboarding [post]
func (h *ProviderHandler) SubmitOnboarding(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.OnboardingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.GarageName == "" {
		return response.BadRequest(c, "Garage name is required")
	}
	if input.Address == "" {
		return response.BadRequest(c, "Address is required")
	}

	profile, err := h.providerService.SubmitOnboarding(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only providers can submit onboarding")
		default:
			return response.InternalServerError(c, "Failed to submit onboarding")
		}
	}

	// The caller should re-fetch the user so the session reflects the
	// onboarding flags before the next redirect resolution.
	user, err := h.authService.RefreshUser(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to reload user")
	}

	return response.Success(c, "Onboarding submitted, pending review", fiber.Map{
		"profile": profile,
		"user":    user,
	})
}

// GetProfile returns the caller's garage profile
// @Summary Get own garage profile
// @Tags Provider
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /provider/profile [get]
func (h *ProviderHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.providerService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotFound) {
			return response.NotFound(c, "Garage profile not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, "Profile retrieved successfully", profile)
}

// CreateMechanic adds a mechanic to the provider's roster
// @Summary Add a mechanic
// @Description Register a mechanic under the garage, or register the provider as their own mechanic with self=true
// @Tags Provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MechanicInput true "Mechanic details"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /provider/mechanics [post]
func (h *ProviderHandler) CreateMechanic(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.MechanicInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !input.Self {
		if input.Name == "" {
			return response.BadRequest(c, "Name is required")
		}
		if input.Phone == "" {
			return response.BadRequest(c, "Phone number is required")
		}
		if !password.Validate(input.Password) {
			return response.BadRequest(c, "Password must be at least 8 characters")
		}
	}

	profile, err := h.providerService.CreateMechanic(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProviderNotFound):
			return response.NotFound(c, "Garage profile not found")
		case errors.Is(err, domain.ErrDuplicateEntry), errors.Is(err, domain.ErrDuplicateAccount):
			return response.Conflict(c, "Email or phone already registered")
		case errors.Is(err, domain.ErrInvalidPhone):
			return response.BadRequest(c, "Invalid phone number")
		default:
			return response.InternalServerError(c, "Failed to add mechanic")
		}
	}

	return response.Created(c, "Mechanic added", profile)
}

// ListMechanics returns the garage roster
// @Summary List mechanics
// @Tags Provider
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /provider/mechanics [get]
func (h *ProviderHandler) ListMechanics(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	mechanics, err := h.providerService.ListMechanics(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotFound) {
			return response.NotFound(c, "Garage profile not found")
		}
		return response.InternalServerError(c, "Failed to list mechanics")
	}

	return response.Success(c, "Mechanics retrieved successfully", mechanics)
}

// RemoveMechanic removes a mechanic from the roster
// @Summary Remove a mechanic
// @Tags Provider
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mechanic profile id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /provider/mechanics/{id} [delete]
func (h *ProviderHandler) RemoveMechanic(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	mechanicID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid mechanic id")
	}

	if err := h.providerService.RemoveMechanic(c.Context(), userID, uint(mechanicID)); err != nil {
		switch {
		case errors.Is(err, domain.ErrMechanicNotFound):
			return response.NotFound(c, "Mechanic not found")
		case errors.Is(err, domain.ErrProviderNotFound):
			return response.NotFound(c, "Garage profile not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Mechanic belongs to another garage")
		default:
			return response.InternalServerError(c, "Failed to remove mechanic")
		}
	}

	return response.Success(c, "Mechanic removed", nil)
}
