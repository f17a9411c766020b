package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyguard/internal/apperr"
	"studyguard/internal/logger"
	"studyguard/internal/metrics"
	"studyguard/internal/models"
	"studyguard/internal/security"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const claimsContextKey contextKey = "claims"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.TokenService
	logg    *logger.Logger
	metrics *metrics.Collector
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenService, logg *logger.Logger, collector *metrics.Collector) *Middleware {
	return &Middleware{tokens: tokens, logg: logg, metrics: collector}
}

// RequestID tags the request context and response with an id
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(m.logg.WithRequestID(r.Context(), reqID)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each request on completion and counts it by route
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.metrics.RequestServed(route, strconv.Itoa(rec.status))

		ctx := m.logg.WithFields(r.Context(), map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		m.logg.Info(ctx, "request.complete")
	})
}

// Recoverer turns a handler panic into a 500 response
func (m *Middleware) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				respondWithError(r.Context(), m.logg, w, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequireAuth validates the bearer token and stores its claims in the context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		token := raw
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			token = strings.TrimSpace(raw[7:])
		}
		if token == "" {
			respondWithError(r.Context(), m.logg, w, apperr.New(apperr.KindUnauthorized, "missing credentials"))
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			respondWithError(r.Context(), m.logg, w, apperr.Wrap(apperr.KindUnauthorized, err, "invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		ctx = m.logg.WithUserID(ctx, claims.UserID)
		ctx = m.logg.WithFamilyID(ctx, claims.FamilyID)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole allows only authenticated accounts with role
func (m *Middleware) RequireRole(role models.Role, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if claims := ClaimsFromContext(r.Context()); claims == nil || claims.Role != role {
			respondWithError(r.Context(), m.logg, w, apperr.New(apperr.KindForbidden, fmt.Sprintf("%s account required", role)))
			return
		}
		next(w, r)
	})
}

// LimitByUser rejects requests once the authenticated user exceeds limiter
func (m *Middleware) LimitByUser(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims != nil && !limiter.Allow("user:"+strconv.FormatInt(claims.UserID, 10)) {
			respondWithError(r.Context(), m.logg, w, apperr.New(apperr.KindRateLimited, "too many requests"))
			return
		}
		next(w, r)
	}
}

// LimitByIP rejects requests once the client address exceeds limiter
func (m *Middleware) LimitByIP(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow("ip:" + security.ClientIP(r)) {
			respondWithError(r.Context(), m.logg, w, apperr.New(apperr.KindRateLimited, "too many requests"))
			return
		}
		next(w, r)
	}
}

// ClaimsFromContext returns the authenticated claims, or nil
func ClaimsFromContext(ctx context.Context) *security.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*security.Claims)
	return claims
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}
