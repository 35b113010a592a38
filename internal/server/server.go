package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/draftlens/draftlens/internal/draft"
	"github.com/draftlens/draftlens/internal/layout"
	"github.com/draftlens/draftlens/internal/trace"
)

// Detector is the slice of the draft detector the server consumes.
type Detector interface {
	Snapshot() draft.Snapshot
	Events() <-chan draft.Event
	CorrectPlayerHero(team layout.TeamColor, slot int, hero string) error
	CorrectBan(team layout.TeamColor, slot int, hero string) error
	PendingBan(team layout.TeamColor, slot int) ([]byte, bool)
	Clear()
}

// Message types.
type Message struct {
	Type string `json:"type"`
}

type SnapshotMessage struct {
	Type     string         `json:"type"`
	Snapshot draft.Snapshot `json:"snapshot"`
}

type EventMessage struct {
	Type  string      `json:"type"`
	Event draft.Event `json:"event"`
}

type CorrectionMessage struct {
	Type string `json:"type"`
	Team string `json:"team"`
	Slot int    `json:"slot"`
	Hero string `json:"hero"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server pushes incremental draft updates to connected UIs and accepts
// manual corrections back.
type Server struct {
	detector   Detector
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter
}

// New creates a server and starts the event broadcaster.
func New(detector Detector) *Server {
	s := &Server{
		detector:   detector,
		conns:      make(map[*websocket.Conn]struct{}),
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
	}
	go s.broadcastEvents()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/draft", s.handleDraft)
	mux.HandleFunc("GET /api/ban-image", s.handleBanImage)
	mux.HandleFunc("POST /api/clear", s.handleClear)

	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// New clients start from the full current state.
	s.write(baseCtx, conn, SnapshotMessage{Type: "snapshot", Snapshot: s.detector.Snapshot()})

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			s.write(baseCtx, conn, ErrorMessage{Type: "error", Message: "rate limit exceeded"})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		switch base.Type {
		case "correct_hero", "correct_ban":
			var corr CorrectionMessage
			if err := json.Unmarshal(msg, &corr); err != nil {
				continue
			}
			s.handleCorrection(baseCtx, conn, corr)
		}
	}
}

func (s *Server) handleCorrection(ctx context.Context, conn *websocket.Conn, corr CorrectionMessage) {
	ctx, span := trace.StartSpan(ctx, "handle_correction")
	defer span.End()

	log := trace.Logger(ctx)
	log.Info("manual correction", "type", corr.Type, "team", corr.Team, "slot", corr.Slot, "hero", corr.Hero)

	team := layout.TeamColor(corr.Team)
	var err error
	switch corr.Type {
	case "correct_hero":
		err = s.detector.CorrectPlayerHero(team, corr.Slot, corr.Hero)
	case "correct_ban":
		err = s.detector.CorrectBan(team, corr.Slot, corr.Hero)
	}
	if err != nil {
		span.SetAttr("error", err.Error())
		log.Warn("correction rejected", "error", err)
		s.write(ctx, conn, ErrorMessage{Type: "error", Message: err.Error()})
		return
	}
	s.write(ctx, conn, SnapshotMessage{Type: "snapshot", Snapshot: s.detector.Snapshot()})
}

// broadcastEvents fans detector events out to every client, following each
// completed pass with a fresh snapshot.
func (s *Server) broadcastEvents() {
	for evt := range s.detector.Events() {
		s.broadcast(EventMessage{Type: "event", Event: evt})
		if evt.Kind == draft.EventPassDone {
			s.broadcast(SnapshotMessage{Type: "snapshot", Snapshot: s.detector.Snapshot()})
		}
	}
}

func (s *Server) broadcast(msg any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.conns {
		go func(c *websocket.Conn) {
			s.write(context.Background(), c, msg)
		}(conn)
	}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, msg any) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = wsjson.Write(ctx, conn, msg)
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.detector.Snapshot())
}

func (s *Server) handleBanImage(w http.ResponseWriter, r *http.Request) {
	team := layout.TeamColor(r.URL.Query().Get("team"))
	slot, err := strconv.Atoi(r.URL.Query().Get("slot"))
	if err != nil {
		http.Error(w, "invalid slot", http.StatusBadRequest)
		return
	}
	img, ok := s.detector.PendingBan(team, slot)
	if !ok {
		http.Error(w, "no pending image", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.detector.Clear()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
}
