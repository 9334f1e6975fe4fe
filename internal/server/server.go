package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/blob"
	"github.com/jasonbahil/portfolio/internal/config"
	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/highlights"
	"github.com/jasonbahil/portfolio/internal/metrics"
	"github.com/jasonbahil/portfolio/internal/server/middleware"
	"github.com/jasonbahil/portfolio/internal/server/ratelimit"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Store is the content persistence the handlers need; *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	ListProjects(ctx context.Context) ([]db.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*db.Project, error)
	CreateProject(ctx context.Context, in db.ProjectInput) (*db.Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, in db.ProjectInput) (*db.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	ReorderProjects(ctx context.Context, updates []db.OrderUpdate) error

	ListExperiences(ctx context.Context) ([]db.Experience, error)
	GetExperience(ctx context.Context, id uuid.UUID) (*db.Experience, error)
	CreateExperience(ctx context.Context, in db.ExperienceInput) (*db.Experience, error)
	UpdateExperience(ctx context.Context, id uuid.UUID, in db.ExperienceInput) (*db.Experience, error)
	DeleteExperience(ctx context.Context, id uuid.UUID) error

	ListTrainings(ctx context.Context) ([]db.Training, error)
	GetTraining(ctx context.Context, id uuid.UUID) (*db.Training, error)
	CreateTraining(ctx context.Context, in db.TrainingInput) (*db.Training, error)
	UpdateTraining(ctx context.Context, id uuid.UUID, in db.TrainingInput) (*db.Training, error)
	DeleteTraining(ctx context.Context, id uuid.UUID) error
	ReorderTrainings(ctx context.Context, updates []db.OrderUpdate) error

	ListTech(ctx context.Context) ([]db.Tech, error)
	CreateTech(ctx context.Context, in db.TechInput) (*db.Tech, error)
	UpdateTech(ctx context.Context, id uuid.UUID, in db.TechInput) (*db.Tech, error)
	DeleteTech(ctx context.Context, id uuid.UUID) error

	ListMedia(ctx context.Context) ([]db.Media, error)
	CreateMedia(ctx context.Context, in db.MediaInput) (*db.Media, error)
	UpdateMedia(ctx context.Context, id uuid.UUID, in db.MediaInput) (*db.Media, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error

	ListLinks(ctx context.Context) ([]db.Link, error)
	CreateLink(ctx context.Context, in db.LinkInput) (*db.Link, error)
	UpdateLink(ctx context.Context, id uuid.UUID, in db.LinkInput) (*db.Link, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error

	RecordVisit(ctx context.Context, v db.Visit) error
	VisitorStats(ctx context.Context) (*db.VisitorStats, error)

	EncodedListColumn(name string) (highlights.Store, error)
}

var _ Store = (*db.DB)(nil)

// Options are the server's collaborators. Config, Store and Blobs are
// required.
type Options struct {
	Config  *config.Config
	Store   Store
	Blobs   blob.Store
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Server is the HTTP API server
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	store       Store
	blobs       blob.Store
	logger      *zap.Logger
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler

	repairMu  sync.Mutex
	repairers map[string]*highlights.Repairer
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Store == nil || opts.Blobs == nil {
		return nil, fmt.Errorf("server requires config, store and blob store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	adminHash, err := opts.Config.AdminPasswordHash()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare admin credentials: %w", err)
	}

	s := &Server{
		cfg:         opts.Config,
		store:       opts.Store,
		blobs:       opts.Blobs,
		logger:      logger,
		metrics:     m,
		rateLimiter: ratelimit.NewLimiter(ratelimit.NewConfig(opts.Config.RateLimit)),
		jwtService:  NewJWTService(&opts.Config.JWT),
		repairers:   make(map[string]*highlights.Repairer),
	}
	s.authHandler = NewAuthHandler(s, opts.Config.Admin.Username, adminHash)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Config.Port),
		Handler:      s.withRateLimit(s.withMetrics(s.withLogging(s.withCORS(s.routes())))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Site plumbing
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
	mux.HandleFunc("GET /images/{name}", s.handleServeImage)

	// Auth
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.Logout)
	mux.HandleFunc("GET /api/auth/check", s.authHandler.Check)

	// Public content
	mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/experience", s.handleListExperience)
	mux.HandleFunc("GET /api/trainings", s.handleListTrainings)
	mux.HandleFunc("GET /api/tech", s.handleListTech)
	mux.HandleFunc("GET /api/links", s.handleListLinks)
	mux.HandleFunc("GET /api/media", s.handleListMedia)
	mux.HandleFunc("POST /api/visitor", s.handleRecordVisit)

	// Admin endpoints require a session
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	admin := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	admin("GET /api/admin/projects", s.handleListProjects)
	admin("POST /api/admin/projects", s.handleCreateProject)
	admin("PATCH /api/admin/projects", s.handleReorderProjects)
	admin("GET /api/admin/projects/{id}", s.handleGetProject)
	admin("PUT /api/admin/projects/{id}", s.handleUpdateProject)
	admin("DELETE /api/admin/projects/{id}", s.handleDeleteProject)

	admin("GET /api/admin/experience", s.handleAdminListExperience)
	admin("POST /api/admin/experience", s.handleCreateExperience)
	admin("GET /api/admin/experience/{id}", s.handleGetExperience)
	admin("PUT /api/admin/experience/{id}", s.handleUpdateExperience)
	admin("DELETE /api/admin/experience/{id}", s.handleDeleteExperience)

	admin("GET /api/admin/trainings", s.handleListTrainings)
	admin("POST /api/admin/trainings", s.handleCreateTraining)
	admin("PATCH /api/admin/trainings", s.handleReorderTrainings)
	admin("GET /api/admin/trainings/{id}", s.handleGetTraining)
	admin("PUT /api/admin/trainings/{id}", s.handleUpdateTraining)
	admin("DELETE /api/admin/trainings/{id}", s.handleDeleteTraining)

	admin("POST /api/admin/tech", s.handleCreateTech)
	admin("PUT /api/admin/tech/{id}", s.handleUpdateTech)
	admin("DELETE /api/admin/tech/{id}", s.handleDeleteTech)

	admin("POST /api/admin/media", s.handleCreateMedia)
	admin("PUT /api/admin/media/{id}", s.handleUpdateMedia)
	admin("DELETE /api/admin/media/{id}", s.handleDeleteMedia)

	admin("POST /api/admin/links", s.handleCreateLink)
	admin("PUT /api/admin/links/{id}", s.handleUpdateLink)
	admin("DELETE /api/admin/links/{id}", s.handleDeleteLink)

	admin("POST /api/admin/upload", s.handleUpload)
	admin("GET /api/admin/check-image", s.handleCheckImage)
	admin("GET /api/admin/visitors", s.handleVisitorStats)

	admin("GET /api/admin/repair", s.handleListRepairCollections)
	admin("POST /api/admin/repair/{collection}", s.handleRepair)

	return mux
}

// Handler returns the fully wrapped handler, as served by Start.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving; used by tests.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers. Credentials are only allowed for the site's
// own origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Add("Vary", "Origin")
		if origin := r.Header.Get("Origin"); origin != "" && origin == s.cfg.SiteURL {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		} else {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

func (rec *statusRecorder) code() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// withMetrics records request counts and latency by route pattern. The
// pattern is set on the request by the mux further down the chain.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		s.metrics.ObserveRequest(r.Pattern, r.Method, rec.code(), time.Since(start))
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.code()),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		}
		if rec.code() >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// storeError maps a store error to a response. what names the resource for
// 404 bodies.
func (s *Server) storeError(w http.ResponseWriter, err error, what string) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusNotFound:
		s.errorResponse(w, status, what+" not found")
	case http.StatusConflict:
		s.errorResponse(w, status, err.Error())
	default:
		s.logger.Error("store error", zap.String("resource", what), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

type validatable interface {
	Validate() error
}

// decodeRequest decodes a JSON body into req and validates it. On failure a
// 400 has already been written.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, req validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationError(err).Error())
		return false
	}
	return true
}

// pathID parses the {id} path value
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// extractClientID extracts the client identifier (IP address) from the request.
func (s *Server) extractClientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// setRateLimitHeaders sets rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

// rateLimitResponse sends a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "Rate limit exceeded",
		"retry_after": retryAfter,
	})
}
