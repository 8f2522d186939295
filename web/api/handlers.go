package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hochfrequenz/nudge/internal/config"
	"github.com/hochfrequenz/nudge/internal/domain"
)

// historyResponseLimit caps how many records the history endpoint returns.
const historyResponseLimit = 200

// NotePayload is the request body for note updates. An empty timestamp
// targets the most recent record.
type NotePayload struct {
	Note      string `json:"note"`
	Timestamp string `json:"timestamp,omitempty"`
}

// OKResponse is the generic success envelope.
type OKResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) configHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, s.sessionDefaults())

		case http.MethodPost:
			var session domain.SessionConfig
			if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			session = config.MergeSession(session, s.sessionDefaults())
			if err := session.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			s.cfgMu.Lock()
			s.cfg.Session = session
			cfg := *s.cfg
			s.cfgMu.Unlock()

			if err := cfg.Save(s.configPath); err != nil {
				writeError(w, http.StatusInternalServerError, "saving config: "+err.Error())
				return
			}
			writeJSON(w, OKResponse{OK: true})

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) startHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var session domain.SessionConfig
		if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		session = config.MergeSession(session, s.sessionDefaults())

		if err := s.engine.Start(session); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, OKResponse{OK: true})
	}
}

func (s *Server) stopHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.engine.Stop()
		writeJSON(w, OKResponse{OK: true})
	}
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, s.engine.Status())
	}
}

func (s *Server) historyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		records := s.history.EnrichIntervals()
		if len(records) > historyResponseLimit {
			records = records[len(records)-historyResponseLimit:]
		}
		writeJSON(w, map[string]interface{}{"records": records})
	}
}

func (s *Server) clearHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.history.Clear()
		writeJSON(w, OKResponse{OK: true})
	}
}

func (s *Server) noteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var payload NotePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		record, err := s.history.UpdateNote(payload.Timestamp, payload.Note)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no record matches that timestamp")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, map[string]interface{}{"ok": true, "record": record})
	}
}

func (s *Server) encourageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if s.encourage == nil {
			writeError(w, http.StatusBadRequest, "llm not configured")
			return
		}

		message, err := s.encourage.Encourage(s.history.Records())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, map[string]interface{}{"ok": true, "message": message})
	}
}
