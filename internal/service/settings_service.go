package service

import (
	"context"
	"time"

	"studyguard/internal/apperr"
	"studyguard/internal/logger"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

// SettingsService reads and writes per-child lock and screen time settings
type SettingsService struct {
	repos *repository.Repositories
	logg  *logger.Logger
	now   func() time.Time
}

// NewSettingsService creates a new settings service
func NewSettingsService(deps Deps) *SettingsService {
	return &SettingsService{repos: deps.Repos, logg: deps.logger(), now: utcNow}
}

// Get returns the child's settings, or the locked defaults when none are stored
func (s *SettingsService) Get(ctx context.Context, childID int64) (*models.ChildSettings, error) {
	return childSettings(ctx, s.repos, childID)
}

func childSettings(ctx context.Context, repos *repository.Repositories, childID int64) (*models.ChildSettings, error) {
	settings, err := repos.ChildSettings.SelectOne(ctx, repository.Eq("child_id", childID))
	if err != nil {
		if apperr.IsNotFound(err) {
			defaults := models.DefaultChildSettings(childID)
			return &defaults, nil
		}
		return nil, err
	}
	return settings, nil
}

// Save upserts the full settings row for settings.ChildID
func (s *SettingsService) Save(ctx context.Context, settings models.ChildSettings) (*models.ChildSettings, error) {
	return saveChildSettings(ctx, s.repos, settings, s.now())
}

func saveChildSettings(ctx context.Context, repos *repository.Repositories, settings models.ChildSettings, now time.Time) (*models.ChildSettings, error) {
	if settings.TimeEarned < 0 || settings.TimeUsed < 0 {
		return nil, apperr.Validation("time values cannot be negative")
	}
	settings.UpdatedAt = now
	if err := repos.ChildSettings.Upsert(ctx, &settings, "child_id",
		"is_locked", "timer_running", "time_earned", "time_used", "updated_at"); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SettingsPatch changes only the fields that are set
type SettingsPatch struct {
	IsLocked     *bool `json:"is_locked"`
	TimerRunning *bool `json:"timer_running"`
	TimeEarned   *int  `json:"time_earned" validate:"omitempty,min=0"`
	TimeUsed     *int  `json:"time_used" validate:"omitempty,min=0"`
}

// Update applies patch on top of the current (or default) settings
func (s *SettingsService) Update(ctx context.Context, childID int64, patch SettingsPatch) (*models.ChildSettings, error) {
	current, err := s.Get(ctx, childID)
	if err != nil {
		return nil, err
	}
	if patch.IsLocked != nil {
		current.IsLocked = *patch.IsLocked
	}
	if patch.TimerRunning != nil {
		current.TimerRunning = *patch.TimerRunning
	}
	if patch.TimeEarned != nil {
		current.TimeEarned = *patch.TimeEarned
	}
	if patch.TimeUsed != nil {
		current.TimeUsed = *patch.TimeUsed
	}

	saved, err := s.Save(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "child_id", childID), "child settings updated")
	return saved, nil
}
