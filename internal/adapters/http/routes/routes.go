package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"

	"garagehub/internal/adapters/http/handlers"
	"garagehub/internal/adapters/http/middleware"
	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/config"
	"garagehub/internal/core/services"
)

// Setup configures all routes for the application and returns the cleanup
// service so the caller controls its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CleanupService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	providerRepo := repositories.NewProviderRepository(db)
	mechanicRepo := repositories.NewMechanicRepository(db)

	// Initialize services
	smsService := services.NewTwilioService(
		cfg.Twilio.AccountSID,
		cfg.Twilio.AuthToken,
		cfg.Twilio.FromNumber,
	)

	otpConfig := services.DefaultOTPConfig(cfg.JWT.AssertionSecret)
	if cfg.OTP.TTLMinutes > 0 {
		otpConfig.TTL = time.Duration(cfg.OTP.TTLMinutes) * time.Minute
	}
	if cfg.OTP.ResendSeconds > 0 {
		otpConfig.ResendCooldown = time.Duration(cfg.OTP.ResendSeconds) * time.Second
	}
	if cfg.OTP.MaxAttempts > 0 {
		otpConfig.MaxAttempts = cfg.OTP.MaxAttempts
	}
	otpService := services.NewOTPService(smsService, otpConfig)

	sessionService := services.NewSessionService(sessionRepo, userRepo, refreshTokenRepo, cfg.JWT.RefreshTokenDays)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, sessionService, cfg)
	providerService := services.NewProviderService(providerRepo, mechanicRepo, userRepo, refreshTokenRepo)
	dashboardService := services.NewDashboardService(providerRepo)
	userService := services.NewUserService(userRepo)
	cleanupService := services.NewCleanupService(refreshTokenRepo, sessionRepo, otpService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, sessionService, otpService, cfg)
	providerHandler := handlers.NewProviderHandler(providerService, authService)
	adminHandler := handlers.NewAdminHandler(providerService, dashboardService, userService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, providerHandler, adminHandler, cfg)

	return cleanupService
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	providerHandler *handlers.ProviderHandler,
	adminHandler *handlers.AdminHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Provider routes (provider role only)
	providerRoutes := router.Group("/provider")
	providerRoutes.Use(middleware.AuthMiddleware(cfg))
	providerRoutes.Use(middleware.ProviderOnly())
	setupProviderRoutes(providerRoutes, providerHandler)

	// Admin routes (admin role only)
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupAuthRoutes configures authentication routes.
// StrictRateLimiter = 3 req/min/IP (register, OTP issue/confirm)
// AuthRateLimiter   = 5 req/min/IP (login, assertion exchange)
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.StrictRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// OTP verification channel
	router.Post("/otp/challenge", middleware.StrictRateLimiter(), handler.RequestChallenge)
	router.Post("/otp/confirm", middleware.StrictRateLimiter(), handler.ConfirmCode)
	router.Delete("/otp/challenge/:id", handler.TeardownChallenge)
	router.Post("/otp", middleware.AuthRateLimiter(), handler.VerifyOTP)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Get("/redirect", middleware.AuthMiddleware(cfg), handler.Redirect)
	router.Post("/set-password", middleware.AuthMiddleware(cfg), handler.SetPassword)
	router.Post("/active-role/request", middleware.AuthMiddleware(cfg), handler.RequestRoleSwitch)
	router.Post("/active-role/confirm", middleware.AuthMiddleware(cfg), handler.ConfirmRoleSwitch)
	router.Post("/active-role/cancel", middleware.AuthMiddleware(cfg), handler.CancelRoleSwitch)
}

// setupProviderRoutes configures provider onboarding and roster routes
func setupProviderRoutes(router fiber.Router, handler *handlers.ProviderHandler) {
	router.Post("/onboarding", handler.SubmitOnboarding)
	router.Get("/profile", handler.GetProfile)
	router.Post("/mechanics", handler.CreateMechanic)
	router.Get("/mechanics", handler.ListMechanics)
	router.Delete("/mechanics/:id", handler.RemoveMechanic)
}

// setupAdminRoutes configures admin KYC review routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Get("/kyc/pending", handler.ListPendingKYC)
	router.Patch("/kyc/:id/review", handler.ReviewKYC)
	router.Get("/users", handler.ListUsers)
	router.Get("/stats/kyc", handler.GetKYCStats)
}
