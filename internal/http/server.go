package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"dompet/internal/cache"
	"dompet/internal/ledger"
	"dompet/internal/log"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/middleware/security"
	"dompet/internal/middleware/trace"
	"dompet/internal/services"
)

// Options tunes a Server. Zero values pick the defaults.
type Options struct {
	PageSize           int
	RateLimitPerMinute int
	BlockSuspicious    bool
	Logger             *log.Logger
}

// Server is the JSON API in front of the ledger. Reads are answered from a
// per-user snapshot cache; writes go through the ledger, whose notifier is
// expected to invalidate that cache once the store confirms the change.
type Server struct {
	http.Server

	ledger    *services.Ledger
	snapshots *cache.LoadingCache[services.Snapshot]
	pageSize  int

	log       *log.Logger
	logger    *log.StructuredLogger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	startedAt time.Time

	onboarded    sync.Map
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, l *services.Ledger, snapshots *cache.LoadingCache[services.Snapshot], opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = ledger.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(context.Background())
	}
	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	httpLogger := opts.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		ledger:    l,
		snapshots: snapshots,
		pageSize:  opts.PageSize,
		log:       httpLogger,
		logger:    log.NewStructuredLogger(httpLogger),
		limiter:   ratelimit.NewLimiter(limitCfg),
		detector:  security.NewDetector(opts.BlockSuspicious),
		startedAt: time.Now(),
	}
	s.tracer = trace.NewMiddleware(httpLogger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/stats/summary", s.handleSummary)
	mux.HandleFunc("GET /api/stats/daily", s.handleDaily)
	mux.HandleFunc("GET /api/stats/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/stats/categories", s.handleCategoryBreakdown)

	mux.HandleFunc("GET /api/wallets", s.handleListWallets)
	mux.HandleFunc("POST /api/wallets", s.handleCreateWallet)
	mux.HandleFunc("DELETE /api/wallets/{id}", s.handleDeleteWallet)
	mux.HandleFunc("POST /api/wallets/{id}/adjust", s.handleAdjustWallet)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("POST /api/budgets/reset", s.handleResetBudgets)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("POST /api/goals/{id}/savings", s.handleAddSavings)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.log.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later").Write(w)
	})

	var handler http.Handler = mux
	handler = s.withOnboarding(handler)
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// withOnboarding gives a signed-in user the default wallets the first time
// this process sees them. Failures are logged and retried on the next
// request; they never fail the request itself.
func (s *Server) withOnboarding(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid != "" && strings.HasPrefix(r.URL.Path, "/api/") {
			if _, seen := s.onboarded.LoadOrStore(uid, struct{}{}); !seen {
				created, err := s.ledger.EnsureDefaultWallets(r.Context(), uid)
				if err != nil {
					s.onboarded.Delete(uid)
					s.logger.LogError(r.Context(), "Default wallets not created", err, log.ComponentLedger, log.OpCreate, log.NewFields().WithUser(uid))
				} else if len(created) > 0 {
					s.log.InfoContext(r.Context(), "Created default wallets", log.FieldUserID, uid, "count", len(created))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser answers 401 for anonymous mutations.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := userID(r)
	if uid == "" {
		UnauthorizedError().Write(w)
		return "", false
	}
	return uid, true
}

// parseBody reads and parses the request body, answering 400 on failure.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return nil, false
	}
	return p, true
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
