package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"studyguard/internal/database"
	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

type testEnv struct {
	db         *database.DB
	repos      *repository.Repositories
	registry   *prometheus.Registry
	household  *HouseholdService
	accounts   *AccountService
	settings   *SettingsService
	barrier    *BarrierService
	heartbeats *HeartbeatService
	alerts     *AlertService
	retention  *RetentionService
	coursework *CourseworkService
	notifier   *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err)

	deps := Deps{DB: db, Repos: repository.New(db), Logger: logger.Nop()}
	registry := prometheus.NewRegistry()
	collector := metrics.New(registry)
	notifier := &recordingNotifier{}

	household := NewHouseholdService(deps)
	return &testEnv{
		db:         db,
		repos:      deps.Repos,
		registry:   registry,
		household:  household,
		accounts:   NewAccountService(deps, household),
		settings:   NewSettingsService(deps),
		barrier:    NewBarrierService(deps, collector),
		heartbeats: NewHeartbeatService(deps, household, collector),
		alerts:     NewAlertService(deps, household, notifier, collector),
		retention:  NewRetentionService(deps, RetentionOptions{Days: 7, BatchSize: 2, Interval: time.Hour}, collector),
		coursework: NewCourseworkService(deps, household),
		notifier:   notifier,
	}
}

// family registers a parent who creates a household and returns both
func (e *testEnv) family(t *testing.T, parentEmail string) (*models.Family, *models.User) {
	t.Helper()
	res, err := e.accounts.Register(context.Background(), RegisterInput{
		Email:  parentEmail,
		Name:   "Parent " + parentEmail,
		Role:   "parent",
		Action: ActionCreate,
	})
	require.NoError(t, err)
	return &res.Family, &res.User
}

// child joins a child account to family
func (e *testEnv) child(t *testing.T, family *models.Family, email, name string) *models.User {
	t.Helper()
	res, err := e.accounts.Register(context.Background(), RegisterInput{
		Email: email,
		Name:  name,
		Role:  "child",
		Code:  family.Code,
	})
	require.NoError(t, err)
	return &res.User
}

func (e *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// codeSequence returns the given codes in order, then repeats the last one
func codeSequence(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}

type notification struct {
	parents []models.User
	child   models.User
	alert   models.BarrierAlert
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) NotifyBarrierAlert(_ context.Context, parents []models.User, child models.User, alert models.BarrierAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{parents: parents, child: child, alert: alert})
	return n.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
