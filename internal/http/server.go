package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"listrik/internal/log"
	"listrik/internal/middleware/ratelimit"
	"listrik/internal/middleware/security"
	"listrik/internal/middleware/trace"
	"listrik/internal/services"
	"listrik/internal/session"
	appweb "listrik/web"
)

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// Deps are the collaborators of the dashboard server.
type Deps struct {
	Sessions           *session.Store
	Ledger             *services.LedgerService
	Logger             *log.Logger
	RateLimitPerMinute int
	// ReadyChecks are reported on /readyz under their map key.
	ReadyChecks map[string]ReadyCheck
}

type appMetrics struct {
	uptime          time.Time
	appliancesAdded int64
	tariffChanges   int64
	renderFailures  int64
}

type Server struct {
	http.Server
	templates *template.Template
	sessions  *session.Store
	ledger    *services.LedgerService
	logger    *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	readyChecks      map[string]ReadyCheck
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:   t,
		sessions:    deps.Sessions,
		ledger:      deps.Ledger,
		logger:      logger,
		readyChecks: deps.ReadyChecks,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		securityDetector: security.NewDetector(logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	withSession := s.sessions.Middleware
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)
	// only writes count against the limit
	limitPOST := func(next http.Handler) http.Handler {
		throttled := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				throttled.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	mux.Handle("/", withSession(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/appliances", limitPOST(withSession(http.HandlerFunc(s.handleAppliances))))
	mux.Handle("/usage", withSession(http.HandlerFunc(s.handleUsage)))
	mux.Handle("/cost", withSession(http.HandlerFunc(s.handleCost)))
	mux.Handle("/suggestions", withSession(http.HandlerFunc(s.handleSuggestions)))
	mux.Handle("/tariff", limitPOST(withSession(http.HandlerFunc(s.handleSelectTariff))))

	mux.Handle("GET /api/summary", withSession(http.HandlerFunc(s.handleAPISummary)))
	mux.Handle("GET /api/charts/{name}", withSession(http.HandlerFunc(s.handleAPIChart)))
	mux.Handle("POST /api/appliances", limited(withSession(http.HandlerFunc(s.handleAPIAddAppliance))))

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var h http.Handler = mux
	h = s.securityDetector.Middleware(h)
	h = headers.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return h
}

// onRateLimit answers throttled form posts so htmx can show a notice.
func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	TooManyRequestsError("Too many requests, please slow down").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
