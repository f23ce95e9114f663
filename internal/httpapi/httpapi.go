package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/logger"
	"vendorhub/backend/internal/metrics"
	"vendorhub/backend/internal/service"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	metrics       *metrics.Metrics
	log           *zap.Logger
	allowedOrigin string
	development   bool
	loginLimiter  *attemptLimiter
	readiness     func(context.Context) error
}

func New(svc *service.Service, auth *AuthManager, m *metrics.Metrics, log *zap.Logger, allowedOrigin string, development bool) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		service:       svc,
		auth:          auth,
		metrics:       m,
		log:           log,
		allowedOrigin: allowedOrigin,
		development:   development,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

// WithReadiness makes /healthz report 503 while check fails.
func (a *API) WithReadiness(check func(context.Context) error) *API {
	a.readiness = check
	return a
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
	}
	r.Use(a.securityHeaders)

	r.Get("/healthz", a.handleHealth)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(a.rateLimited).Post("/signup", a.handleSignup)
			r.With(a.rateLimited).Post("/login", a.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(a.requireAuth())
				r.Get("/me", a.handleMe)
				r.Put("/profile", a.handleUpdateProfile)
				r.Put("/change-password", a.handleChangePassword)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(a.requireAuth())
			r.Post("/", a.handleCreateProduct)
			r.Get("/", a.handleListProducts)
			r.Get("/low-stock", a.handleLowStock)
			r.Get("/{id}", a.handleGetProduct)
			r.Put("/{id}", a.handleUpdateProduct)
			r.Delete("/{id}", a.handleDeleteProduct)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Use(a.requireAuth(domain.RoleVendor))
			r.Post("/adjust", a.handleAdjustInventory)
			r.Get("/adjustments", a.handleListAdjustments)
			r.Get("/low-stock-summary", a.handleLowStockSummary)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(a.requireAuth(domain.RoleVendor))
			r.Post("/", a.handleCreateSale)
			r.Get("/", a.handleListSales)
			r.Get("/summary", a.handleSalesSummary)
		})

		r.Route("/waste", func(r chi.Router) {
			r.Use(a.requireAuth())
			r.Post("/", a.handleLogWaste)
			r.Get("/", a.handleListWaste)
			r.Get("/stats", a.handleWasteStats)
			r.Get("/product/{productId}", a.handleWasteByProduct)
			r.Delete("/{id}", a.handleDeleteWaste)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(a.requireAuth())
			r.Get("/", a.handleSalesAnalytics)
			r.Get("/dashboard", a.handleDashboard)
			r.Get("/monthly", a.handleMonthlyComparison)
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(a.requireAuth())
				r.Post("/", a.handleRequestForecast)
				r.Post("/batch", a.handleBatchForecast)
				r.Get("/product/{productId}", a.handleProductPredictions)
				r.Get("/vendor", a.handleVendorPredictions)
			})
			r.Group(func(r chi.Router) {
				r.Use(a.optionalAuth)
				r.Get("/models", a.handleForecastModels)
				r.Get("/metrics", a.handleForecastMetrics)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, apperr.NotFound("Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("Method Not Allowed", "method not allowed"))
	})

	return r
}

// requireAuth resolves the bearer token into an actor. With roles given, the
// actor's role must be one of them.
func (a *API) requireAuth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				a.writeError(w, r, apperr.Unauthorized("No token provided"))
				return
			}

			actor, err := a.auth.ParseToken(token)
			if err != nil {
				a.writeError(w, r, err)
				return
			}

			if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
				a.writeError(w, r, apperr.Forbidden("You do not have permission to access this resource"))
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
		})
	}
}

func (a *API) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if actor, err := a.auth.ParseToken(token); err == nil {
				r = r.WithContext(service.WithActor(r.Context(), actor))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authorization[len("Bearer "):])
	return token, token != ""
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.loginLimiter.Allow(clientKey(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorBody("Too Many Requests", "Too many attempts, please try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := a.log.With(zap.String("request_id", middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()

		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

		reqLog.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(startedAt)))
	})
}

func (a *API) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if a.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.readiness(ctx); err != nil {
			logger.FromContext(r.Context(), a.log).Warn("readiness check failed", zap.Error(err))
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]any{
		"success": code == http.StatusOK,
		"status":  status,
		"at":      time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Wrap(apperr.KindValidation, "Invalid request body: "+err.Error(), err)
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func parseOffset(raw string) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && parsed > 0 {
		return parsed
	}
	return 0
}

// parseThreshold reads an optional decimal query value.
func parseThreshold(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Validation("threshold must be a number")
	}
	return &v, nil
}

func errorBody(label string, message string) map[string]any {
	return map[string]any{
		"success": false,
		"error":   label,
		"message": message,
	}
}

// writeError renders err in the standard envelope. Server-side failures are
// logged and, outside development, their detail is withheld.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()

	msg := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= 500 {
		logger.FromContext(r.Context(), a.log).Error("request failed",
			zap.Int("status", status),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		if kind == apperr.KindServer && !a.development {
			msg = "Internal server error"
		}
	}
	writeJSON(w, status, errorBody(kind.Label(), msg))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
