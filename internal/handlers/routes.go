package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studyguard/internal/database"
	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/models"
	"studyguard/internal/security"
	"studyguard/internal/service"
)

// Services bundles what the HTTP layer calls into
type Services struct {
	Accounts   *service.AccountService
	Household  *service.HouseholdService
	Barrier    *service.BarrierService
	Heartbeats *service.HeartbeatService
	Alerts     *service.AlertService
	Settings   *service.SettingsService
	Coursework *service.CourseworkService
}

// RouterOptions carries the shared infrastructure for NewRouter
type RouterOptions struct {
	DB               *database.DB
	Tokens           *security.TokenService
	Logger           *logger.Logger
	Metrics          *metrics.Collector
	Gatherer         prometheus.Gatherer
	HeartbeatLimiter *security.RateLimiter
	SignupLimiter    *security.RateLimiter
}

// NewRouter wires every route and wraps the mux in the request middleware chain
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	mw := NewMiddleware(opts.Tokens, opts.Logger, opts.Metrics)

	accountHandler := NewAccountHandler(svc.Accounts, opts.Tokens, opts.Logger)
	familyHandler := NewFamilyHandler(svc.Household, opts.Logger)
	barrierHandler := NewBarrierHandler(svc.Barrier, opts.Logger)
	heartbeatHandler := NewHeartbeatHandler(svc.Heartbeats, svc.Household, opts.Logger)
	alertHandler := NewAlertHandler(svc.Alerts, opts.Logger)
	settingsHandler := NewSettingsHandler(svc.Settings, svc.Household, opts.Logger)
	courseworkHandler := NewCourseworkHandler(svc.Coursework, svc.Household, opts.Logger)
	healthHandler := NewHealthHandler(opts.DB, opts.Logger)

	parent := func(h http.HandlerFunc) http.HandlerFunc { return mw.RequireRole(models.RoleParent, h) }
	child := func(h http.HandlerFunc) http.HandlerFunc { return mw.RequireRole(models.RoleChild, h) }

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// Accounts
	register := accountHandler.Register
	if opts.SignupLimiter != nil {
		register = mw.LimitByIP(opts.SignupLimiter, register)
	}
	mux.HandleFunc("POST /api/accounts", register)

	// Family
	mux.HandleFunc("GET /api/family", parent(familyHandler.Show))
	mux.HandleFunc("PATCH /api/family", parent(familyHandler.Rename))
	mux.HandleFunc("GET /api/family/children", parent(familyHandler.Children))

	// Barrier
	mux.HandleFunc("GET /api/barrier", mw.RequireAuth(barrierHandler.Status))
	mux.HandleFunc("PUT /api/barrier", parent(barrierHandler.Toggle))

	// Heartbeats
	record := heartbeatHandler.Record
	if opts.HeartbeatLimiter != nil {
		record = mw.LimitByUser(opts.HeartbeatLimiter, record)
	}
	mux.HandleFunc("POST /api/heartbeats", child(record))
	mux.HandleFunc("GET /api/heartbeats/latest", parent(heartbeatHandler.Latest))
	mux.HandleFunc("GET /api/children/{id}/heartbeats", parent(heartbeatHandler.History))

	// Alerts
	mux.HandleFunc("POST /api/alerts", child(alertHandler.Raise))
	mux.HandleFunc("GET /api/alerts", parent(alertHandler.List))
	mux.HandleFunc("POST /api/alerts/{id}/acknowledge", parent(alertHandler.Acknowledge))

	// Settings
	mux.HandleFunc("GET /api/me/settings", child(settingsHandler.Mine))
	mux.HandleFunc("GET /api/children/{id}/settings", parent(settingsHandler.Show))
	mux.HandleFunc("PATCH /api/children/{id}/settings", parent(settingsHandler.Update))

	// Coursework
	mux.HandleFunc("POST /api/subjects", parent(courseworkHandler.CreateSubject))
	mux.HandleFunc("GET /api/subjects", parent(courseworkHandler.ListSubjects))
	mux.HandleFunc("POST /api/courses", parent(courseworkHandler.CreateCourse))
	mux.HandleFunc("GET /api/courses", parent(courseworkHandler.ListCourses))
	mux.HandleFunc("POST /api/assignments", parent(courseworkHandler.Assign))
	mux.HandleFunc("GET /api/children/{id}/assignments", parent(courseworkHandler.ChildAssignments))
	mux.HandleFunc("GET /api/me/assignments", child(courseworkHandler.MyAssignments))
	mux.HandleFunc("POST /api/me/assignments/{id}/complete", child(courseworkHandler.Complete))

	return mw.RequestID(mw.Logging(mw.Recoverer(mux)))
}
