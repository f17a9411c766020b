package service

import (
	"context"
	"time"

	"studyguard/internal/apperr"
	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

const (
	DefaultRetentionDays = 7
	defaultPurgeBatch    = 500
	defaultPurgeInterval = time.Hour

	retentionJobName = "heartbeat-retention"
)

// RetentionOptions configure the heartbeat sweeper
type RetentionOptions struct {
	Days      int
	BatchSize int
	Interval  time.Duration
}

// RetentionService removes old heartbeats so the log stays bounded
type RetentionService struct {
	repos    *repository.Repositories
	logg     *logger.Logger
	metrics  *metrics.Collector
	days     int
	batch    int
	interval time.Duration
	now      func() time.Time
}

// NewRetentionService creates a new retention service
func NewRetentionService(deps Deps, opts RetentionOptions, collector *metrics.Collector) *RetentionService {
	days := opts.Days
	if days <= 0 {
		days = DefaultRetentionDays
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultPurgeBatch
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &RetentionService{
		repos:    deps.Repos,
		logg:     deps.logger(),
		metrics:  collector,
		days:     days,
		batch:    batch,
		interval: interval,
		now:      utcNow,
	}
}

// PurgeHeartbeats deletes heartbeats created strictly before now minus
// olderThanDays, one bounded batch at a time, and returns the count removed.
func (s *RetentionService) PurgeHeartbeats(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, apperr.Validation("retention days must be positive, got %d", olderThanDays)
	}
	cutoff := s.now().UTC().Add(-time.Duration(olderThanDays) * 24 * time.Hour)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch, err := s.repos.Heartbeats.SelectMany(ctx, repository.Query{
			Where:   []repository.Cond{repository.Lt("created_at", cutoff)},
			OrderBy: []repository.Order{{Column: "id"}},
			Limit:   s.batch,
		})
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			break
		}

		deleted, err := s.repos.Heartbeats.Delete(ctx, repository.In("id", heartbeatIDs(batch)))
		if err != nil {
			return total, err
		}
		total += deleted

		if len(batch) < s.batch {
			break
		}
	}

	s.metrics.HeartbeatsPurged(total)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": olderThanDays,
		"rows_deleted":   total,
	})
	s.logg.Info(logCtx, "heartbeat retention complete")
	return total, nil
}

// Run purges once immediately and then on every interval until ctx is done.
func (s *RetentionService) Run(ctx context.Context) error {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "retention sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *RetentionService) runOnce(ctx context.Context) {
	jobCtx := s.logg.WithField(ctx, "job", retentionJobName)
	start := time.Now()
	_, err := s.PurgeHeartbeats(jobCtx, s.days)
	s.metrics.ObserveJob(retentionJobName, time.Since(start), err)
	if err != nil && ctx.Err() == nil {
		s.logg.Error(jobCtx, "heartbeat retention failed", err)
	}
}

func heartbeatIDs(rows []models.HeartbeatLog) []int64 {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}
