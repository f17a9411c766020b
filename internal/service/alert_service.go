package service

import (
	"context"
	"strings"
	"time"

	"studyguard/internal/apperr"
	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

// AlertNotifier tells parents about a new alert
type AlertNotifier interface {
	NotifyBarrierAlert(ctx context.Context, parents []models.User, child models.User, alert models.BarrierAlert) error
}

// RaiseAlertInput describes an alert. Type defaults to app_closed.
type RaiseAlertInput struct {
	ChildID  int64  `json:"-"`
	FamilyID int64  `json:"-"`
	Type     string `json:"alert_type" validate:"max=50"`
	Message  string `json:"alert_message" validate:"max=1000"`
}

// AlertService appends barrier alerts and lets parents review them
type AlertService struct {
	repos     *repository.Repositories
	household *HouseholdService
	notifier  AlertNotifier
	logg      *logger.Logger
	metrics   *metrics.Collector
	now       func() time.Time
}

// NewAlertService creates a new alert service. notifier may be nil.
func NewAlertService(deps Deps, household *HouseholdService, notifier AlertNotifier, collector *metrics.Collector) *AlertService {
	return &AlertService{
		repos:     deps.Repos,
		household: household,
		notifier:  notifier,
		logg:      deps.logger(),
		metrics:   collector,
		now:       utcNow,
	}
}

// Raise appends an unacknowledged alert, then notifies the family's parents.
// Notification failures are logged and never returned.
func (s *AlertService) Raise(ctx context.Context, input RaiseAlertInput) (*models.BarrierAlert, error) {
	alertType := strings.TrimSpace(input.Type)
	if alertType == "" {
		alertType = models.AlertTypeAppClosed
	}

	alert := &models.BarrierAlert{
		ChildID:      input.ChildID,
		FamilyID:     input.FamilyID,
		AlertType:    alertType,
		AlertMessage: input.Message,
		TriggeredAt:  s.now(),
	}
	if err := s.repos.Alerts.Insert(ctx, alert); err != nil {
		return nil, err
	}

	s.metrics.AlertRaised(alertType)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"alert_id":   alert.ID,
		"alert_type": alertType,
		"child_id":   alert.ChildID,
		"family_id":  alert.FamilyID,
	})
	s.logg.Warn(logCtx, "barrier alert raised")

	if err := s.notify(ctx, *alert); err != nil {
		s.logg.Error(logCtx, "failed to notify parents", err)
	}
	return alert, nil
}

func (s *AlertService) notify(ctx context.Context, alert models.BarrierAlert) error {
	if s.notifier == nil {
		return nil
	}
	parents, err := s.household.ListParents(ctx, alert.FamilyID)
	if err != nil {
		return err
	}
	if len(parents) == 0 {
		return nil
	}
	child, err := s.household.GetUser(ctx, alert.ChildID)
	if err != nil {
		return err
	}
	return s.notifier.NotifyBarrierAlert(ctx, parents, *child, alert)
}

// List returns the family's alerts newest first
func (s *AlertService) List(ctx context.Context, familyID int64, unacknowledgedOnly bool) ([]models.BarrierAlert, error) {
	where := []repository.Cond{repository.Eq("family_id", familyID)}
	if unacknowledgedOnly {
		where = append(where, repository.Eq("acknowledged", false))
	}
	alerts, err := s.repos.Alerts.SelectMany(ctx, repository.Query{
		Where:   where,
		OrderBy: []repository.Order{{Column: "triggered_at", Desc: true}, {Column: "id", Desc: true}},
	})
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []models.BarrierAlert{}
	}
	return alerts, nil
}

// Acknowledge marks an alert of familyID as reviewed. Acknowledging twice
// keeps the first acknowledged_at.
func (s *AlertService) Acknowledge(ctx context.Context, familyID, alertID int64) (*models.BarrierAlert, error) {
	_, err := s.repos.Alerts.Update(ctx,
		[]repository.Cond{repository.Eq("acknowledged", true), repository.Eq("acknowledged_at", s.now())},
		repository.Eq("id", alertID),
		repository.Eq("family_id", familyID),
		repository.Eq("acknowledged", false),
	)
	if err != nil {
		return nil, err
	}

	alert, err := s.repos.Alerts.SelectOne(ctx, repository.Eq("id", alertID), repository.Eq("family_id", familyID))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("alert %d not found", alertID)
		}
		return nil, err
	}
	return alert, nil
}
