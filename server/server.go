package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/devpulse/pkg/domain"
	"github.com/umputun/devpulse/pkg/repository"
)

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	store     Store
	scheduler Scheduler
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Store provides read access to persisted snapshots
type Store interface {
	GetLatest(ctx context.Context) (*domain.Snapshot, error)
}

// Scheduler interface for on-demand operations
type Scheduler interface {
	UpdateNow(ctx context.Context) error
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetUpdateSecret() string
}

// New initializes a new server instance
func New(cfg ConfigProvider, store Store, scheduler Scheduler, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		store:     store,
		scheduler: scheduler,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("devpulse", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /dashboard", s.dashboardHandler)
		r.HandleFunc("POST /update", s.updateHandler)
	})
}

// statusHandler returns server status with the latest snapshot timestamp
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}

	if snap, err := s.store.GetLatest(r.Context()); err == nil {
		status["snapshot_updated_at"] = snap.UpdatedAt
	}

	RenderJSON(w, r, http.StatusOK, status)
}

// dashboardHandler returns the latest stored snapshot
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.GetLatest(r.Context())
	if errors.Is(err, repository.ErrNoSnapshot) {
		RenderError(w, r, fmt.Errorf("no data found, run an update first"), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[ERROR] failed to load snapshot: %v", err)
		RenderError(w, r, fmt.Errorf("failed to load dashboard data"), http.StatusInternalServerError)
		return
	}

	RenderJSON(w, r, http.StatusOK, snap)
}

// updateHandler triggers an immediate aggregation cycle. Authorized by
// a bearer secret, requests without the correct secret get 401.
func (s *Server) updateHandler(w http.ResponseWriter, r *http.Request) {
	secret := s.config.GetUpdateSecret()
	auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if secret == "" || subtle.ConstantTimeCompare([]byte(auth), []byte(secret)) != 1 {
		RenderError(w, r, fmt.Errorf("unauthorized"), http.StatusUnauthorized)
		return
	}

	if err := s.scheduler.UpdateNow(r.Context()); err != nil {
		log.Printf("[ERROR] on-demand update failed: %v", err)
		RenderError(w, r, fmt.Errorf("update failed: %w", err), http.StatusInternalServerError)
		return
	}

	RenderJSON(w, r, http.StatusOK, map[string]string{"message": "dashboard data updated successfully"})
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
