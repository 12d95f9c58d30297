package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"garagehub/internal/config"
	"garagehub/internal/core/domain"
	"garagehub/internal/core/redirect"
	"garagehub/internal/core/services"
	"garagehub/internal/pkg/password"
	"garagehub/internal/pkg/phone"
	"garagehub/internal/pkg/response"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService    *services.AuthService
	sessionService *services.SessionService
	otpService     *services.OTPService
	cfg            *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *services.AuthService,
	sessionService *services.SessionService,
	otpService *services.OTPService,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		otpService:     otpService,
		cfg:            cfg,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ChallengeRequest represents an OTP challenge request body
type ChallengeRequest struct {
	Phone string `json:"phone"`
}

// ConfirmCodeRequest represents an OTP code confirmation body
type ConfirmCodeRequest struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
}

// VerifyOTPRequest represents the assertion exchange body
type VerifyOTPRequest struct {
	Assertion string `json:"assertion"`
}

// SetPasswordRequest represents the forced password-set body
type SetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RoleSwitchRequest represents an active-role switch body
type RoleSwitchRequest struct {
	Role string `json:"role"`
}

// Login handles user login
// @Summary Login with email or phone
// @Description Authenticate and return the {user, token, next?} envelope
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Identifier == "" {
		return response.BadRequest(c, "Email or phone is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.LoginInput{
		Identifier: strings.TrimSpace(req.Identifier),
		Password:   req.Password,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email/phone or password")
		case errors.Is(err, services.ErrAccountInactive):
			return response.Forbidden(c, "Account is inactive")
		case errors.Is(err, domain.ErrInvalidPhone):
			return response.BadRequest(c, "Invalid phone number")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"user":  result.User,
		"token": result.Token,
		"next":  result.Next,
	})
}

// Register handles account registration and opens the OTP window
// @Summary Register a new account
// @Description Create an account and issue a phone verification challenge
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return response.BadRequest(c, "A valid email is required")
	}
	if req.Phone == "" {
		return response.BadRequest(c, "Phone number is required")
	}
	if !password.Validate(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	input := &services.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}

	result, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateAccount):
			return response.Conflict(c, "Email or phone already registered")
		case errors.Is(err, domain.ErrInvalidPhone):
			return response.BadRequest(c, "Invalid phone number")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid role")
		default:
			return response.InternalServerError(c, "Failed to register")
		}
	}

	// Registration succeeded; the OTP challenge is issued here, outside the
	// dispatcher. A delivery failure leaves the resend path available.
	payload := fiber.Map{
		"tempUser":       result.TempUser,
		"registrationId": result.RegistrationID,
		"registerStatus": result.RegisterStatus,
	}
	if handle, err := h.otpService.RequestChallenge(c.Context(), result.TempUser.Phone); err == nil {
		payload["challenge"] = handle
	}

	return response.Created(c, "Registered, verification code sent", payload)
}

// RequestChallenge issues (or resends) an OTP challenge
// @Summary Request a phone verification challenge
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ChallengeRequest true "Phone number"
// @Success 200 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/otp/challenge [post]
func (h *AuthHandler) RequestChallenge(c *fiber.Ctx) error {
	var req ChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Phone == "" {
		return response.BadRequest(c, "Phone number is required")
	}

	handle, err := h.otpService.RequestChallenge(c.Context(), req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhone):
			return response.BadRequest(c, "Invalid phone number")
		case errors.Is(err, domain.ErrResendThrottled):
			return response.TooManyRequests(c, "Please wait before requesting a new code")
		case errors.Is(err, domain.ErrChallengeSetup):
			return response.InternalServerError(c, "Could not send verification code")
		default:
			return response.InternalServerError(c, "Could not send verification code")
		}
	}

	return response.Success(c, "Verification code sent", handle)
}

// ConfirmCode exchanges a 6-digit code for an identity assertion
// @Summary Confirm a verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ConfirmCodeRequest true "Challenge id and code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /auth/otp/confirm [post]
func (h *AuthHandler) ConfirmCode(c *fiber.Ctx) error {
	var req ConfirmCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ChallengeID == "" {
		return response.BadRequest(c, "Challenge id is required")
	}
	if !phone.IsCompleteCode(req.Code) {
		return response.BadRequest(c, "A complete 6-digit code is required")
	}

	assertion, err := h.otpService.ConfirmChallenge(c.Context(), req.ChallengeID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			return response.BadRequest(c, "Incorrect verification code")
		case errors.Is(err, domain.ErrChallengeExpired), errors.Is(err, domain.ErrChallengeNotFound):
			return response.Error(c, fiber.StatusGone, "Verification code expired, request a new one")
		case errors.Is(err, domain.ErrTooManyAttempts):
			return response.TooManyRequests(c, "Too many attempts, request a new code")
		default:
			return response.InternalServerError(c, "Verification failed")
		}
	}

	return response.Success(c, "Phone verified", fiber.Map{"assertion": assertion})
}

// TeardownChallenge releases challenge state when the client navigates away
// @Summary Release a verification challenge
// @Tags Auth
// @Produce json
// @Param id path string true "Challenge id"
// @Success 200 {object} response.Response
// @Router /auth/otp/challenge/{id} [delete]
func (h *AuthHandler) TeardownChallenge(c *fiber.Ctx) error {
	h.otpService.Teardown(c.Params("id"))
	return response.Success(c, "Challenge released", nil)
}

// VerifyOTP exchanges an identity assertion for a backend session
// @Summary Exchange an identity assertion for a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body VerifyOTPRequest true "Identity assertion"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/otp [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Assertion == "" {
		return response.BadRequest(c, "Identity assertion is required")
	}

	result, err := h.authService.VerifyOTP(c.Context(), req.Assertion)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionExpired):
			return response.Unauthorized(c, "Verification expired, please verify again")
		case errors.Is(err, services.ErrOTPMismatch):
			return response.Unauthorized(c, "Verification could not be confirmed")
		case errors.Is(err, services.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, services.ErrAccountInactive):
			return response.Forbidden(c, "Account is inactive")
		default:
			return response.InternalServerError(c, "Failed to verify")
		}
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)

	return response.Success(c, "Verification successful", fiber.Map{
		"user":  result.User,
		"token": result.Token,
		"next":  result.Next,
	})
}

// Me returns the current user, re-fetched from storage
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.RefreshUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			// Stale token: the session is torn down and the client must
			// return to login.
			token, _ := c.Locals("accessToken").(string)
			_ = h.sessionService.Logout(c.Context(), token)
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Session expired, please sign in again")
		}
		return response.InternalServerError(c, "Failed to load user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{"user": user})
}

// Redirect resolves the caller's single post-auth destination
// @Summary Resolve the post-auth destination
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/redirect [get]
func (h *AuthHandler) Redirect(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Success(c, "Destination resolved", fiber.Map{
			"destination": redirect.RouteLogin,
		})
	}

	user, err := h.authService.GetUser(c.Context(), userID)
	if err != nil {
		return response.Success(c, "Destination resolved", fiber.Map{
			"destination": redirect.RouteLogin,
		})
	}

	next := services.ResolveNextStep(user)
	dest := redirect.Resolve(user.ToResponse(), next)

	token, _ := c.Locals("accessToken").(string)
	view, err := h.sessionService.Hydrate(c.Context(), token)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve destination")
	}

	return response.Success(c, "Destination resolved", fiber.Map{
		"destination": dest,
		"next":        next,
		"activeRole":  view.ActiveRole,
	})
}

// SetPassword sets a new password and clears the forced-reset flag
// @Summary Set a new password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param target query string false "Role dashboard to continue to" Enums(provider, mechanic, customer)
// @Param body body SetPasswordRequest true "New password"
// @Success 200 {object} response.Response
// @Router /auth/set-password [post]
func (h *AuthHandler) SetPassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !password.Validate(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}
	if req.Password != req.ConfirmPassword {
		return response.BadRequest(c, "Passwords do not match")
	}

	user, err := h.authService.SetPassword(c.Context(), userID, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return response.Unauthorized(c, "Unauthorized")
		}
		return response.InternalServerError(c, "Failed to set password")
	}

	// The reset flag is cleared now, so resolve the destination for the
	// role the client asked to continue as. Only roles the account actually
	// holds are honored; anything else falls back to the stored role.
	view := *user
	switch target := domain.Role(c.Query("target")); {
	case target == domain.RoleProvider && user.HasProviderProfile:
		view.Role = target
	case target == domain.RoleMechanic && user.HasMechanicProfile:
		view.Role = target
	}
	dest := redirect.Resolve(&view, domain.NextNone)

	return response.Success(c, "Password updated", fiber.Map{
		"user":        user,
		"destination": dest,
	})
}

// RefreshToken rotates the refresh token pair
// @Summary Refresh access token
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired),
			errors.Is(err, services.ErrTokenRevoked),
			errors.Is(err, services.ErrInvalidToken):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Session expired, please sign in again")
		case errors.Is(err, services.ErrAccountInactive):
			h.clearAuthCookies(c)
			return response.Forbidden(c, "Account is inactive")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"user":  result.User,
		"token": result.Token,
		"next":  result.Next,
	})
}

// Logout tears the session down
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies("access_token")
	if token == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	// Safe when already logged out.
	_ = h.sessionService.Logout(c.Context(), token)

	h.clearAuthCookies(c)
	return response.Success(c, "Logged out successfully", nil)
}

// RequestRoleSwitch marks a workspace switch as pending confirmation
// @Summary Request an active-role switch
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RoleSwitchRequest true "Target role"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/active-role/request [post]
func (h *AuthHandler) RequestRoleSwitch(c *fiber.Ctx) error {
	token, ok := c.Locals("accessToken").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req RoleSwitchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.sessionService.RequestRoleSwitch(c.Context(), token, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Role switching requires both profiles")
		case errors.Is(err, domain.ErrRoleNotHeld):
			return response.Forbidden(c, "Role not held")
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Unauthorized(c, "Unauthorized")
		default:
			return response.InternalServerError(c, "Failed to request switch")
		}
	}

	return response.Success(c, "Switch pending confirmation", fiber.Map{
		"pendingRole": req.Role,
	})
}

// ConfirmRoleSwitch commits the pending switch. The session write completes
// before this responds, so the target dashboard reads the committed role.
// @Summary Confirm the pending active-role switch
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/active-role/confirm [post]
func (h *AuthHandler) ConfirmRoleSwitch(c *fiber.Ctx) error {
	token, ok := c.Locals("accessToken").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	committed, err := h.sessionService.ConfirmRoleSwitch(c.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoPendingRoleSwitch):
			return response.BadRequest(c, "No role switch pending")
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Unauthorized(c, "Unauthorized")
		default:
			return response.InternalServerError(c, "Failed to confirm switch")
		}
	}

	var dest redirect.Route
	switch committed {
	case domain.RoleMechanic:
		dest = redirect.RouteMechanicDashboard
	default:
		dest = redirect.RouteProviderDashboard
	}

	return response.Success(c, "Active role switched", fiber.Map{
		"activeRole":  committed,
		"destination": dest,
	})
}

// CancelRoleSwitch rolls the pending switch back; last committed value wins
// @Summary Cancel the pending active-role switch
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/active-role/cancel [post]
func (h *AuthHandler) CancelRoleSwitch(c *fiber.Ctx) error {
	token, ok := c.Locals("accessToken").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	committed, err := h.sessionService.CancelRoleSwitch(c.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return response.Unauthorized(c, "Unauthorized")
		}
		return response.InternalServerError(c, "Failed to cancel switch")
	}

	return response.Success(c, "Switch cancelled", fiber.Map{
		"activeRole": committed,
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
