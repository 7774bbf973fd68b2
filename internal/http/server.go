package http

import (
	"context"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledger/internal/backend"
	applog "ledger/internal/log"
	"ledger/internal/metrics"
	"ledger/internal/resources"
	appweb "ledger/web"
)

// DefaultPageSize is the list page size used when none is configured.
const DefaultPageSize = 20

// Options tunes a Server. The zero value is usable.
type Options struct {
	PageSize int
	Logger   *applog.Logger
	// Templates overrides the embedded templates; it must hold templates/*.html.
	Templates fs.FS
}

type Server struct {
	http.Server
	templates   *template.Template
	backends    backend.Backends
	pageSize    int
	logger      *applog.Logger
	structured  *applog.StructuredLogger
	rateLimiter *rateLimiter
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, backends backend.Backends, opts Options) *Server {
	mux := http.NewServeMux()

	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		backends:    backends,
		pageSize:    pageSize,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		structured:  applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(),
		started:     time.Now(),
	}

	templatesFS := opts.Templates
	if templatesFS == nil {
		templatesFS = appweb.TemplatesFS
	}
	t, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("GET /404", s.withSecurityHeaders(s.handleNotFound))

	if backends.Incomes != nil {
		registerEntity(s, mux, resources.Incomes(), backends.Incomes)
	}
	if backends.Monies != nil {
		registerEntity(s, mux, resources.Monies(), backends.Monies)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleNotFound))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, request IDs and
// request logging to page handlers
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := requestIDFrom(r)
		ctx := applog.WithRequestID(r.Context(), requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, s.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		if reason := suspiciousReason(r); reason != "" {
			metrics.SuspiciousRequests.WithLabelValues(reason).Inc()
			s.logger.WithComponent(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request",
				"reason", reason,
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		s.structured.LogHTTPStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			metrics.PageRequestsTotal.WithLabelValues(r.Method, metrics.StatusClass(rw.statusCode)).Inc()
			s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
		}()

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			TooManyRequestsError(int(rateLimitWindow / time.Second)).Write(rw)
			return
		}

		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")
		rw.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		rw.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(rw, r)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	wrote      bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wrote {
		rw.statusCode = code
		rw.wrote = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wrote = true
	return rw.ResponseWriter.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether templates are loaded and every resource has a
// backend. The remote API itself is not probed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]interface{}{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	for name, configured := range map[string]bool{
		resources.MoneyRoute:  s.backends.Monies != nil,
		resources.IncomeRoute: s.backends.Incomes != nil,
	} {
		if configured {
			checks[name] = "ok"
		} else {
			checks[name] = "not_configured"
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleNotFound renders the not-found page, or a fragment for htmx.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		NotFoundError("Page not found").Write(w)
		return
	}
	s.render(w, r, http.StatusNotFound, "notfound", newLayout("Page not found", ""))
}

// render executes a named template, answering 500 when templates are missing.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate,
			"error_type", applog.ErrorTypeConfiguration)
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "", ""))
	}
}

// redirect sends the browser to target: through HX-Redirect for htmx
// requests, with a 303 otherwise. Triggers on b are kept for htmx.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string, b *HTMXResponseBuilder) {
	if isHTMX(r) {
		if b == nil {
			b = NewHTMXResponse()
		}
		b.Redirect(target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
