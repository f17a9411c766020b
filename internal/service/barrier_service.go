package service

import (
	"context"
	"time"

	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

// BarrierService owns the single lock-down flag of each family
type BarrierService struct {
	repos   *repository.Repositories
	logg    *logger.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewBarrierService creates a new barrier service
func NewBarrierService(deps Deps, collector *metrics.Collector) *BarrierService {
	return &BarrierService{repos: deps.Repos, logg: deps.logger(), metrics: collector, now: utcNow}
}

// GetOrCreateStatus returns the family's barrier, creating an inactive one
// on first use. Creation is an insert that does nothing on conflict, so
// concurrent first reads still leave exactly one row.
func (s *BarrierService) GetOrCreateStatus(ctx context.Context, familyID int64) (*models.BarrierStatus, error) {
	status := &models.BarrierStatus{
		FamilyID:             familyID,
		IsActive:             false,
		CheckIntervalSeconds: models.DefaultCheckIntervalSeconds,
		UpdatedAt:            s.now(),
	}
	if err := s.repos.BarrierStatus.InsertIfAbsent(ctx, status, "family_id"); err != nil {
		return nil, err
	}
	return status, nil
}

// Toggle writes the barrier state in a single upsert. Deactivating keeps
// the last activated_at and activated_by.
func (s *BarrierService) Toggle(ctx context.Context, familyID int64, isActive bool, actingUserID *int64) (*models.BarrierStatus, error) {
	now := s.now()
	status := &models.BarrierStatus{
		FamilyID:             familyID,
		IsActive:             isActive,
		CheckIntervalSeconds: models.DefaultCheckIntervalSeconds,
		UpdatedAt:            now,
	}
	update := []string{"is_active", "check_interval_seconds", "updated_at"}
	if isActive {
		status.ActivatedAt = &now
		update = append(update, "activated_at")
		if actingUserID != nil {
			status.ActivatedBy = actingUserID
			update = append(update, "activated_by")
		}
	}

	if err := s.repos.BarrierStatus.Upsert(ctx, status, "family_id", update...); err != nil {
		return nil, err
	}

	s.metrics.BarrierToggled(isActive)
	logCtx := s.logg.WithFields(ctx, map[string]any{"family_id": familyID, "is_active": isActive})
	s.logg.Info(logCtx, "barrier toggled")
	return status, nil
}
