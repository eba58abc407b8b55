// Package server is the HTTP façade over pkg/game: create games, step
// and undo them, and run ad-hoc relation queries against a game's
// current predicted timeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rfielding/chronicle/pkg/document"
	"github.com/rfielding/chronicle/pkg/game"
	"github.com/rfielding/chronicle/pkg/query"
	"github.com/rfielding/chronicle/pkg/relation"
)

// Server holds the game table and request metrics.
type Server struct {
	log *zap.Logger
	mux *http.ServeMux

	mu    sync.RWMutex
	games map[string]*gameSession

	metricsMu  sync.RWMutex
	counters   map[string]int64
	timeSeries []TimePoint
}

type gameSession struct {
	mu     sync.Mutex
	game   *game.Game
	engine *query.Engine
}

// TimePoint is one sample of a named counter, for /api/metrics.
type TimePoint struct {
	Time    time.Time `json:"time"`
	Counter string    `json:"counter"`
	Value   int64     `json:"value"`
}

func (s *Server) incCounter(name string) {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	s.counters[name]++
	s.timeSeries = append(s.timeSeries, TimePoint{Time: time.Now(), Counter: name, Value: s.counters[name]})
	if len(s.timeSeries) > 1000 {
		s.timeSeries = s.timeSeries[len(s.timeSeries)-1000:]
	}
}

func (s *Server) getCounters() map[string]int64 {
	s.metricsMu.RLock()
	defer s.metricsMu.RUnlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

func (s *Server) getTimeSeries() []TimePoint {
	s.metricsMu.RLock()
	defer s.metricsMu.RUnlock()
	out := make([]TimePoint, len(s.timeSeries))
	copy(out, s.timeSeries)
	return out
}

// New creates a server with an empty game table.
func New(log *zap.Logger) *Server {
	return &Server{
		log:      log,
		games:    make(map[string]*gameSession),
		counters: make(map[string]int64),
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/games", s.handleNewGame)
	mux.HandleFunc("/api/games/step", s.handleStep)
	mux.HandleFunc("/api/games/undo", s.handleUndo)
	mux.HandleFunc("/api/games/query", s.handleQuery)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	s.mux = mux

	s.log.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// handleNewGame creates a game from a posted document and returns its
// id and initial observation.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raw document.RawDocument
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	g, err := game.New(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	obs, _ := g.Reset()

	id := uuid.NewString()
	s.mu.Lock()
	s.games[id] = &gameSession{game: g}
	s.mu.Unlock()

	s.incCounter("games_created")
	s.log.Debug("game created", zap.String("game_id", id))
	writeJSON(w, map[string]interface{}{"game_id": id, "observation": obs})
}

func (s *Server) session(id string) (*gameSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.games[id]
	return sess, ok
}

// handleStep applies one annotation action to a game.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		GameID string          `json:"game_id"`
		I      int             `json:"i"`
		J      int             `json:"j"`
		Rel    relation.Symbol `json:"rel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, ok := s.session(req.GameID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("server: unknown game_id %q", req.GameID))
		return
	}

	sess.mu.Lock()
	obs, reward, terminated, info, err := sess.game.Step(game.Action{I: req.I, J: req.J, Rel: req.Rel})
	sess.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.incCounter("steps")
	writeJSON(w, map[string]interface{}{
		"observation": obs,
		"reward":      reward,
		"terminated":  terminated,
		"info":        info,
	})
}

// handleUndo pops one step off a game's history.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, ok := s.session(req.GameID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("server: unknown game_id %q", req.GameID))
		return
	}

	sess.mu.Lock()
	obs, info, undone := sess.game.Undo()
	sess.mu.Unlock()

	s.incCounter("undos")
	writeJSON(w, map[string]interface{}{"observation": obs, "info": info, "undone": undone})
}

// handleQuery runs an ad-hoc Prolog query over a game's current
// predicted timeline (pkg/query), rebuilding its fact base on demand.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		GameID string `json:"game_id"`
		Query  string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, ok := s.session(req.GameID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("server: unknown game_id %q", req.GameID))
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.engine == nil {
		e, err := query.New()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		sess.engine = e
	}
	if err := sess.engine.LoadTimeline(sess.game.PredictedTimeline()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	result, err := sess.engine.RawQuery(ctx, req.Query)
	if err != nil {
		writeJSON(w, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	s.incCounter("queries")
	writeJSON(w, map[string]interface{}{"success": true, "result": result})
}

// handleMetrics returns request counters and their time series.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"counters":    s.getCounters(),
		"time_series": s.getTimeSeries(),
	})
}
