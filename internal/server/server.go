package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/user/tootube/internal/config"
	"github.com/user/tootube/internal/service"
	"github.com/user/tootube/internal/store"
	"golang.org/x/time/rate"
)

var (
	operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tootube_operations_total",
		Help: "Total number of operations by name and status code",
	}, []string{"op", "status"})

	operationDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tootube_operation_duration_seconds",
		Help:    "Duration of operations in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	videosTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tootube_videos_total",
		Help: "Number of videos in the current snapshot",
	})

	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tootube_rate_limited_total",
		Help: "Total number of write requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(operationsTotal)
	prometheus.MustRegister(operationDurationSeconds)
	prometheus.MustRegister(videosTotal)
	prometheus.MustRegister(rateLimitedTotal)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Uptime  string `json:"uptime"`
}

// Server exposes the operation layer over HTTP: the JSON/multipart API
// routes, byte serving for locally stored uploads, health and metrics.
type Server struct {
	svc        *service.Service
	store      *store.Store
	uploadsDir string // empty when media lives in a remote backend
	maxUpload  int64
	limiter    *rate.Limiter
	router     *http.ServeMux
	server     *http.Server
	startTime  time.Time
}

// NewServer creates the HTTP server. uploadsDir is the local media directory
// to byte-serve, or "" when the blob backend is remote and serves its own
// URLs.
func NewServer(svc *service.Service, st *store.Store, cfg *config.ServerConfig, uploadsDir string) *Server {
	s := &Server{
		svc:        svc,
		store:      st,
		uploadsDir: uploadsDir,
		maxUpload:  cfg.MaxUploadBytes,
		limiter:    rate.NewLimiter(rate.Limit(cfg.WriteRateLimit), cfg.WriteRateBurst),
		router:     http.NewServeMux(),
		startTime:  time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/data", s.instrument("data", s.handleData))
	s.router.HandleFunc("POST /api/upload", s.instrument("upload", s.handleUpload))
	s.router.HandleFunc("POST /api/register", s.instrument("register", s.handleRegister))
	s.router.HandleFunc("POST /api/login", s.instrument("login", s.handleLogin))
	s.router.HandleFunc("POST /api/like", s.instrument("like", s.handleLike))
	s.router.HandleFunc("POST /api/view", s.instrument("view", s.handleView))
	s.router.HandleFunc("POST /api/comment", s.instrument("comment", s.handleComment))
	s.router.HandleFunc("POST /api/comment/like", s.instrument("comment_like", s.handleCommentLike))
	s.router.HandleFunc("POST /api/subscribe", s.instrument("subscribe", s.handleSubscribe))
	s.router.HandleFunc("POST /api/user/update", s.instrument("user_update", s.handleUserUpdate))
	s.router.HandleFunc("DELETE /api/video/{id}", s.instrument("video_delete", s.handleVideoDelete))
	s.router.HandleFunc("DELETE /api/user/{id}", s.instrument("user_delete", s.handleUserDelete))

	if s.uploadsDir != "" {
		s.router.HandleFunc("GET /uploads/{name}", s.handleUploads)
	}

	s.router.HandleFunc("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.middleware(s.router)
}

// middleware applies CORS headers to every response, answers preflight
// requests, and token-buckets the write path.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			if !s.limiter.Allow() {
				rateLimitedTotal.Inc()
				writeJSON(w, http.StatusTooManyRequests, errorBody("too many requests"))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// Start begins listening on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Minute, // uploads can be large
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Int("port", port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth reports backend connectivity and uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	backendStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		backendStatus = fmt.Sprintf("unhealthy: %v", err)
	}

	status := "healthy"
	if backendStatus != "healthy" {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:  status,
		Backend: backendStatus,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

// handleUploads byte-serves locally stored media. http.ServeFile handles
// Range requests, so partial playback works without hand-rolled ranges.
func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.PathValue("name"))
	http.ServeFile(w, r, filepath.Join(s.uploadsDir, name))
}

// instrument wraps a handler with the operation counter and duration
// histogram.
func (s *Server) instrument(op string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		operationsTotal.WithLabelValues(op, fmt.Sprintf("%d", rec.status)).Inc()
		operationDurationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// readBody reads the whole request body, capped at max bytes.
func readBody(w http.ResponseWriter, r *http.Request, max int64) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, max))
}

// decodeJSON decodes a JSON body into v, tolerating malformed input: a body
// that does not parse leaves v zero-valued, and missing required fields then
// fail validation downstream.
func decodeJSON(r *http.Request, v any) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return
	}
	_ = json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
