package services

import (
	"context"
	"time"

	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/core/domain"
)

// KYCStats summarizes the admin review queue
type KYCStats struct {
	Pending           int64 `json:"pending"`
	Verified          int64 `json:"verified"`
	Rejected          int64 `json:"rejected"`
	ReviewedLast7Days int64 `json:"reviewedLast7Days"`
}

// DashboardService aggregates counters for the admin dashboard
type DashboardService struct {
	providerRepo repositories.ProviderRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(providerRepo repositories.ProviderRepository) *DashboardService {
	return &DashboardService{providerRepo: providerRepo}
}

// GetKYCStats returns the current review-queue counters
func (s *DashboardService) GetKYCStats(ctx context.Context) (*KYCStats, error) {
	stats := &KYCStats{}

	var err error
	if stats.Pending, err = s.providerRepo.CountByKYCStatus(ctx, domain.KYCPending); err != nil {
		return nil, err
	}
	if stats.Verified, err = s.providerRepo.CountByKYCStatus(ctx, domain.KYCVerified); err != nil {
		return nil, err
	}
	if stats.Rejected, err = s.providerRepo.CountByKYCStatus(ctx, domain.KYCRejected); err != nil {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if stats.ReviewedLast7Days, err = s.providerRepo.CountReviewedSince(ctx, weekAgo); err != nil {
		return nil, err
	}

	return stats, nil
}
