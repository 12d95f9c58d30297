package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"garagehub/internal/adapters/persistence/repositories"
)

// CleanupService runs scheduled expiry sweeps: refresh tokens and sessions
// nightly, OTP challenges every five minutes.
type CleanupService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	sessionRepo      repositories.SessionRepository
	otp              *OTPService
	cron             *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	sessionRepo repositories.SessionRepository,
	otp *OTPService,
) *CleanupService {
	return &CleanupService{
		refreshTokenRepo: refreshTokenRepo,
		sessionRepo:      sessionRepo,
		otp:              otp,
		cron:             cron.New(),
	}
}

// Start registers the jobs and launches the scheduler
func (s *CleanupService) Start() {
	s.cron.AddFunc("0 3 * * *", s.sweepExpired)
	s.cron.AddFunc("@every 5m", s.sweepChallenges)
	s.cron.Start()
	log.Println("🚀 CleanupService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CleanupService stopped")
}

func (s *CleanupService) sweepExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Refresh token sweep failed: %v", err)
	}
	if err := s.sessionRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Session sweep failed: %v", err)
	}
}

func (s *CleanupService) sweepChallenges() {
	if n := s.otp.PruneExpired(); n > 0 {
		log.Printf("🧹 Pruned %d expired OTP challenges", n)
	}
}
