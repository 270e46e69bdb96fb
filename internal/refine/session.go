// Package refine implements the iterative refinement state machine: an
// append-only history of generate/evaluate cycles driven by explicit
// user actions.
package refine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"JokeSmith/internal/feedback"
)

// CycleKind tags how a cycle entered the history.
type CycleKind string

const (
	CycleInitial     CycleKind = "initial"
	CycleRevised     CycleKind = "revised"
	CycleReevaluated CycleKind = "reevaluated"
)

// Cycle is one immutable step of the refinement history. The session is
// the only writer; nothing edits a cycle after it is appended.
type Cycle struct {
	Joke      string            `json:"joke"`
	Feedback  feedback.Feedback `json:"feedback"`
	Kind      CycleKind         `json:"cycle_kind"`
	CreatedAt time.Time         `json:"created_at"`
}

// Generator is the performer capability the session drives.
type Generator interface {
	Produce(ctx context.Context, topic string) (string, error)
	Revise(ctx context.Context, joke string, fb feedback.Feedback) (string, error)
}

// Evaluator is the critic capability the session drives.
type Evaluator interface {
	Evaluate(ctx context.Context, joke string) (feedback.Feedback, error)
	Reevaluate(ctx context.Context, joke string) (feedback.Feedback, error)
}

var (
	// ErrInvalidInput rejects an empty topic before any network call.
	ErrInvalidInput = errors.New("topic must not be empty")
	// ErrNoHistory rejects revise/reevaluate before the first submit.
	ErrNoHistory = errors.New("no history: submit a topic first")
	// ErrSessionComplete rejects actions after Complete until a new
	// topic resets the session.
	ErrSessionComplete = errors.New("session complete: submit a new topic to continue")
)

// Session owns one refinement history and enforces the legal transition
// set. Actions are processed one at a time; a failed action leaves the
// history exactly as it was, so the caller can retry safely.
type Session struct {
	gen    Generator
	eval   Evaluator
	logger *slog.Logger

	mu         sync.Mutex
	topic      string
	history    []Cycle
	terminated bool
}

// NewSession creates an empty session over the given roles.
func NewSession(gen Generator, eval Evaluator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{gen: gen, eval: eval, logger: logger}
}

// Submit starts a refinement conversation for a topic: produce a joke,
// evaluate it, and record the initial cycle. Submitting while a history
// exists (terminated or not) discards it and starts over.
func (s *Session) Submit(ctx context.Context, topic string) (Cycle, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Cycle{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	joke, err := s.gen.Produce(ctx, topic)
	if err != nil {
		s.logger.Error("joke generation failed", "topic", topic, "error", err)
		return Cycle{}, err
	}
	fb, err := s.eval.Evaluate(ctx, joke)
	if err != nil {
		s.logger.Error("joke evaluation failed", "topic", topic, "error", err)
		return Cycle{}, err
	}

	// Both calls succeeded; only now reset and record.
	s.topic = topic
	s.history = s.history[:0]
	s.terminated = false

	cycle := s.append(joke, fb, CycleInitial)
	s.logger.Info("initial cycle recorded", "topic", topic, "score", fb.Score)
	return cycle, nil
}

// Revise asks the performer to rewrite the latest joke using its
// feedback, then evaluates the result as a new cycle.
func (s *Session) Revise(ctx context.Context) (Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.last()
	if err != nil {
		return Cycle{}, err
	}

	revised, err := s.gen.Revise(ctx, last.Joke, last.Feedback)
	if err != nil {
		s.logger.Error("joke revision failed", "error", err)
		return Cycle{}, err
	}
	fb, err := s.eval.Evaluate(ctx, revised)
	if err != nil {
		s.logger.Error("revised joke evaluation failed", "error", err)
		return Cycle{}, err
	}

	cycle := s.append(revised, fb, CycleRevised)
	s.logger.Info("revised cycle recorded", "score", fb.Score, "previous_score", last.Feedback.Score)
	return cycle, nil
}

// Reevaluate asks the critic for a second opinion on the latest joke.
// The joke text carries over unchanged.
func (s *Session) Reevaluate(ctx context.Context) (Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.last()
	if err != nil {
		return Cycle{}, err
	}

	fb, err := s.eval.Reevaluate(ctx, last.Joke)
	if err != nil {
		s.logger.Error("reevaluation failed", "error", err)
		return Cycle{}, err
	}

	cycle := s.append(last.Joke, fb, CycleReevaluated)
	s.logger.Info("reevaluated cycle recorded", "score", fb.Score, "previous_score", last.Feedback.Score)
	return cycle, nil
}

// Complete ends the conversation. Further revise/reevaluate calls are
// rejected until a new topic is submitted. Idempotent.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = true
}

// History returns a snapshot of the cycles recorded so far.
func (s *Session) History() []Cycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Cycle, len(s.history))
	copy(out, s.history)
	return out
}

// Topic returns the topic of the current conversation.
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Terminated reports whether Complete has been called.
func (s *Session) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

// last validates that the session can act on an existing cycle. Caller
// holds the lock.
func (s *Session) last() (Cycle, error) {
	if s.terminated {
		return Cycle{}, ErrSessionComplete
	}
	if len(s.history) == 0 {
		return Cycle{}, ErrNoHistory
	}
	return s.history[len(s.history)-1], nil
}

// append records a cycle. Caller holds the lock.
func (s *Session) append(joke string, fb feedback.Feedback, kind CycleKind) Cycle {
	cycle := Cycle{
		Joke:      joke,
		Feedback:  fb,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	s.history = append(s.history, cycle)
	return cycle
}
