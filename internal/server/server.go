// Package server provides the HTTP surface of the gesture pipeline: the
// REST API, the camera stream, the landmark feed and the document sync hub.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/replicated"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration. Nil fields disable the routes
// that depend on them.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Doc       *replicated.Doc
	Arbiter   *arbiter.Arbiter
}

// Server is the HTTP server for the application.
type Server struct {
	config Config
	mux    *http.ServeMux
	sync   *SyncHandler
	start  time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessionHandler := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)
	}

	if s.config.Arbiter != nil {
		brushHandler := api.NewBrushHandler(s.config.Arbiter)
		s.mux.Handle("/api/brushes", brushHandler)
		s.mux.Handle("/api/brushes/", brushHandler)
	}

	if s.config.App != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App.Camera()))
		s.mux.Handle("/api/landmarks", NewDetectionsHandler(s.config.App))
	}

	if s.config.Doc != nil {
		s.sync = NewSyncHandler(s.config.Doc)
		s.mux.Handle("/api/sync", s.sync)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close releases the server's background resources.
func (s *Server) Close() {
	if s.sync != nil {
		s.sync.Close()
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
