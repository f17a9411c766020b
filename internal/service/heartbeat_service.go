package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000

	// latestLookupConcurrency bounds the per-child lookups in flight at once.
	latestLookupConcurrency = 8
)

// HeartbeatService records child liveness pings and summarises them per family
type HeartbeatService struct {
	repos     *repository.Repositories
	household *HouseholdService
	logg      *logger.Logger
	metrics   *metrics.Collector
	now       func() time.Time
	// latest fetches one child's newest heartbeat; nil when there is none.
	latest func(ctx context.Context, childID int64) (*models.HeartbeatLog, error)
}

// NewHeartbeatService creates a new heartbeat service
func NewHeartbeatService(deps Deps, household *HouseholdService, collector *metrics.Collector) *HeartbeatService {
	s := &HeartbeatService{
		repos:     deps.Repos,
		household: household,
		logg:      deps.logger(),
		metrics:   collector,
		now:       utcNow,
	}
	s.latest = s.latestHeartbeat
	return s
}

// Record appends an alive heartbeat stamped now
func (s *HeartbeatService) Record(ctx context.Context, childID, familyID int64) (*models.HeartbeatLog, error) {
	now := s.now()
	hb := &models.HeartbeatLog{
		ChildID:     childID,
		FamilyID:    familyID,
		HeartbeatAt: now,
		Status:      models.HeartbeatAlive,
		CreatedAt:   now,
	}
	if err := s.repos.Heartbeats.Insert(ctx, hb); err != nil {
		return nil, err
	}
	s.metrics.HeartbeatRecorded()
	return hb, nil
}

// LatestPerChild reports each child's newest heartbeat in the family's child
// order. Lookups run concurrently and a failed lookup only marks that child
// unknown.
func (s *HeartbeatService) LatestPerChild(ctx context.Context, familyID int64) ([]models.ChildHeartbeatStatus, error) {
	children, err := s.household.ListChildren(ctx, familyID)
	if err != nil {
		return nil, err
	}

	results := make([]models.ChildHeartbeatStatus, len(children))
	var g errgroup.Group
	g.SetLimit(latestLookupConcurrency)

	for i, child := range children {
		g.Go(func() error {
			entry := models.ChildHeartbeatStatus{
				ChildID:    child.ID,
				ChildName:  child.Name,
				ChildEmail: child.Email,
			}

			hb, err := s.latest(ctx, child.ID)
			switch {
			case err != nil:
				entry.Status = models.LivenessUnknown
				logCtx := s.logg.WithFields(ctx, map[string]any{"family_id": familyID, "child_id": child.ID})
				s.logg.Error(logCtx, "heartbeat lookup failed", err)
			case hb == nil:
				entry.Status = models.LivenessNever
			default:
				at := hb.HeartbeatAt
				entry.LastHeartbeat = &at
				entry.Status = hb.Status
			}

			results[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (s *HeartbeatService) latestHeartbeat(ctx context.Context, childID int64) (*models.HeartbeatLog, error) {
	rows, err := s.repos.Heartbeats.SelectMany(ctx, repository.Query{
		Where:   []repository.Cond{repository.Eq("child_id", childID)},
		OrderBy: []repository.Order{{Column: "heartbeat_at", Desc: true}, {Column: "id", Desc: true}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// History returns a child's heartbeats newest first. limit <= 0 means the
// default page size; larger values are capped.
func (s *HeartbeatService) History(ctx context.Context, childID int64, limit int) ([]models.HeartbeatLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	rows, err := s.repos.Heartbeats.SelectMany(ctx, repository.Query{
		Where:   []repository.Cond{repository.Eq("child_id", childID)},
		OrderBy: []repository.Order{{Column: "heartbeat_at", Desc: true}, {Column: "id", Desc: true}},
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.HeartbeatLog{}
	}
	return rows, nil
}
