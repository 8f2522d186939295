package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/hochfrequenz/nudge/internal/config"
	"github.com/hochfrequenz/nudge/internal/domain"
	"github.com/hochfrequenz/nudge/internal/engine"
)

// History is the store interface the API reads and amends.
type History interface {
	Records() []domain.Record
	Clear()
	UpdateNote(timestamp, note string) (domain.Record, error)
	EnrichIntervals() []domain.Record
}

// Encourager produces an encouragement line from history records.
type Encourager interface {
	Encourage(records []domain.Record) (string, error)
}

// Server is the HTTP API server
type Server struct {
	engine    *engine.Engine
	history   History
	encourage Encourager
	addr      string
	mux       *http.ServeMux
	sseHub    *SSEHub

	cfgMu      sync.RWMutex
	cfg        *config.Config
	configPath string
}

// NewServer creates a new API server. encourage may be nil when no LLM is
// configured.
func NewServer(eng *engine.Engine, history History, encourage Encourager, cfg *config.Config, configPath, addr string) *Server {
	s := &Server{
		engine:     eng,
		history:    history,
		encourage:  encourage,
		addr:       addr,
		mux:        http.NewServeMux(),
		sseHub:     NewSSEHub(),
		cfg:        cfg,
		configPath: configPath,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API routes
	s.mux.HandleFunc("/api/config", s.configHandler())
	s.mux.HandleFunc("/api/start", s.startHandler())
	s.mux.HandleFunc("/api/stop", s.stopHandler())
	s.mux.HandleFunc("/api/status", s.statusHandler())
	s.mux.HandleFunc("/api/history", s.historyHandler())
	s.mux.HandleFunc("/api/history/clear", s.clearHistoryHandler())
	s.mux.HandleFunc("/api/history/note", s.noteHandler())
	s.mux.HandleFunc("/api/llm/encourage", s.encourageHandler())
	s.mux.HandleFunc("/api/events", s.sseHandler())
	s.mux.HandleFunc("/api/ws", s.wsHandler())

	// Static files (web front-end)
	s.mux.Handle("/", http.FileServer(http.Dir(s.staticDir())))
}

func (s *Server) staticDir() string {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Web.StaticDir
}

func (s *Server) sessionDefaults() domain.SessionConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Session
}

// SetConfig swaps the live config, used by the config file watcher.
func (s *Server) SetConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

// Start starts the HTTP server and the engine event bridge.
func (s *Server) Start() error {
	go s.sseHub.Run()
	go s.watchEngine()
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// watchEngine forwards engine events to push subscribers.
func (s *Server) watchEngine() {
	events := s.engine.Subscribe(16)
	for event := range events {
		s.sseHub.Broadcast(toSSEEvent(event))
	}
}

func toSSEEvent(event engine.Event) SSEEvent {
	name := "status"
	switch event.Type {
	case engine.EventFired:
		name = "fired"
	case engine.EventCompleted:
		name = "completed"
	case engine.EventStopped:
		name = "stopped"
	}
	data := map[string]interface{}{"snapshot": event.Snapshot}
	if event.Record != nil {
		data["record"] = event.Record
	}
	return SSEEvent{Type: name, Data: data}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
