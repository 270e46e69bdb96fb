// Package server exposes the refinement loop over HTTP. Each API
// session wraps its own refinement state machine, so concurrent
// clients refine independently.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"JokeSmith/internal/archive"
	"JokeSmith/internal/feedback"
	"JokeSmith/internal/llm"
	"JokeSmith/internal/refine"
)

// SessionFactory builds a fresh refinement session for one API client.
type SessionFactory func() *refine.Session

// Handler serves the refinement API.
type Handler struct {
	newSession SessionFactory
	store      *archive.Archive // optional
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*refine.Session
}

// NewHandler creates a Handler. store may be nil to disable archiving.
func NewHandler(factory SessionFactory, store *archive.Archive, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		newSession: factory,
		store:      store,
		logger:     logger,
		sessions:   make(map[string]*refine.Session),
	}
}

// Router mounts the API routes.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.handleSubmit)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/submit", h.handleResubmit)
			r.Post("/revise", h.handleRevise)
			r.Post("/reevaluate", h.handleReevaluate)
			r.Post("/complete", h.handleComplete)
			r.Get("/history", h.handleHistory)
		})
	})
	return r
}

type submitRequest struct {
	Topic string `json:"topic"`
}

type cycleResponse struct {
	SessionID string       `json:"session_id"`
	Cycle     refine.Cycle `json:"cycle"`
}

type historyResponse struct {
	SessionID  string      `json:"session_id"`
	Topic      string      `json:"topic"`
	Terminated bool        `json:"terminated"`
	Cycles     []cycleView `json:"cycles"`
}

// cycleView decorates a cycle with the display helpers so API clients
// do not recompute them.
type cycleView struct {
	refine.Cycle
	Summary     string                `json:"summary"`
	Category    string                `json:"category"`
	Improvement *feedback.Improvement `json:"improvement,omitempty"`
}

func historyView(cycles []refine.Cycle) []cycleView {
	out := make([]cycleView, len(cycles))
	for i, cycle := range cycles {
		out[i] = cycleView{
			Cycle:    cycle,
			Summary:  cycle.Feedback.Summary(),
			Category: feedback.ScoreCategory(cycle.Feedback.Score),
		}
		if i > 0 {
			imp := feedback.CompareScores(cycles[i-1].Feedback.Score, cycle.Feedback.Score)
			out[i].Improvement = &imp
		}
	}
	return out
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := h.newSession()
	cycle, err := sess.Submit(r.Context(), req.Topic)
	if err != nil {
		h.writeActionError(w, err)
		return
	}

	id := newSessionID()
	h.mu.Lock()
	h.sessions[id] = sess
	h.mu.Unlock()

	h.archiveCycle(id, sess.Topic(), 0, cycle)
	JSON(w, http.StatusCreated, cycleResponse{SessionID: id, Cycle: cycle})
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.session(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cycle, err := sess.Submit(r.Context(), req.Topic)
	if err != nil {
		h.writeActionError(w, err)
		return
	}
	h.archiveCycle(id, sess.Topic(), len(sess.History())-1, cycle)
	JSON(w, http.StatusOK, cycleResponse{SessionID: id, Cycle: cycle})
}

func (h *Handler) handleRevise(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, func(sess *refine.Session) (refine.Cycle, error) {
		return sess.Revise(r.Context())
	})
}

func (h *Handler) handleReevaluate(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, func(sess *refine.Session) (refine.Cycle, error) {
		return sess.Reevaluate(r.Context())
	})
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, act func(*refine.Session) (refine.Cycle, error)) {
	sess, id, ok := h.session(w, r)
	if !ok {
		return
	}
	cycle, err := act(sess)
	if err != nil {
		h.writeActionError(w, err)
		return
	}
	h.archiveCycle(id, sess.Topic(), len(sess.History())-1, cycle)
	JSON(w, http.StatusOK, cycleResponse{SessionID: id, Cycle: cycle})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Complete()
	JSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "terminated": true})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.session(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, historyResponse{
		SessionID:  id,
		Topic:      sess.Topic(),
		Terminated: sess.Terminated(),
		Cycles:     historyView(sess.History()),
	})
}

// session resolves the {sessionID} route parameter, replying 404 when
// it is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*refine.Session, string, bool) {
	id := chi.URLParam(r, "sessionID")
	h.mu.Lock()
	sess, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		Error(w, http.StatusNotFound, "unknown session")
		return nil, "", false
	}
	return sess, id, true
}

// writeActionError maps the refinement error taxonomy onto HTTP status
// codes.
func (h *Handler) writeActionError(w http.ResponseWriter, err error) {
	var transport *llm.TransportError
	switch {
	case errors.Is(err, refine.ErrInvalidInput):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, refine.ErrNoHistory), errors.Is(err, refine.ErrSessionComplete):
		Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &transport):
		Error(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("unexpected action error", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

// archiveCycle records the cycle off the request path. An archive write
// failure is logged, never surfaced to the client.
func (h *Handler) archiveCycle(sessionID, topic string, seq int, cycle refine.Cycle) {
	if h.store == nil {
		return
	}
	go func() {
		if err := h.store.RecordCycle(sessionID, topic, seq, cycle); err != nil {
			h.logger.Error("failed to archive cycle", "session_id", sessionID, "error", err)
		}
	}()
}

func newSessionID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}
