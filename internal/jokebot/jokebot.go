// Package jokebot is the interactive driver: a terminal loop where the
// user names a topic, reads the joke and its critique, and steers the
// refinement with commands.
package jokebot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"JokeSmith/internal/archive"
	"JokeSmith/internal/config"
	"JokeSmith/internal/feedback"
	"JokeSmith/internal/llm"
	"JokeSmith/internal/refine"
)

// JokeBot represents the interactive application.
type JokeBot struct {
	config  config.Config
	session *refine.Session
	store   *archive.Archive // nil disables archiving
	logger  *slog.Logger

	out       io.Writer
	sessionID string
	seq       int
}

// NewJokeBot creates a new JokeBot instance over an existing session.
func NewJokeBot(cfg config.Config, session *refine.Session, store *archive.Archive, logger *slog.Logger) *JokeBot {
	if logger == nil {
		logger = slog.Default()
	}
	return &JokeBot{
		config:  cfg,
		session: session,
		store:   store,
		logger:  logger,
		out:     os.Stdout,
	}
}

// Run starts the interactive loop.
func (jb *JokeBot) Run() error {
	fmt.Fprintln(jb.out, "=== JokeSmith ===")
	fmt.Fprintf(jb.out, "Performer: %s/%s\n", jb.config.Performer.Provider, jb.config.Performer.Model)
	fmt.Fprintf(jb.out, "Critic:    %s/%s\n", jb.config.Critic.Provider, jb.config.Critic.Model)
	fmt.Fprintln(jb.out, "Type a topic to get a joke, /help for commands, /quit to exit")
	fmt.Fprintln(jb.out)

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Fprint(jb.out, "Topic: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := jb.handleCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(jb.out, "Error: %v\n", err)
				jb.logger.Error("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		jb.startTopic(ctx, input)
	}

	fmt.Fprintln(jb.out, "Goodbye!")
	return nil
}

// startTopic submits a new topic, replacing any running conversation.
func (jb *JokeBot) startTopic(ctx context.Context, topic string) {
	cycle, err := jb.session.Submit(ctx, topic)
	if err != nil {
		fmt.Fprintf(jb.out, "Error: %v\n", err)
		jb.logger.Error("submit failed", "topic", topic, "error", err)
		return
	}

	jb.sessionID = fmt.Sprintf("session_%d", time.Now().Unix())
	jb.seq = 0
	jb.archiveCycle(cycle)
	jb.printCycle(cycle, nil)
}

// handleCommand handles special commands.
func (jb *JokeBot) handleCommand(ctx context.Context, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/revise":
		previous := jb.lastCycle()
		cycle, err := jb.session.Revise(ctx)
		if err != nil {
			return false, err
		}
		jb.archiveCycle(cycle)
		jb.printCycle(cycle, previous)
		return false, nil

	case "/reevaluate":
		previous := jb.lastCycle()
		cycle, err := jb.session.Reevaluate(ctx)
		if err != nil {
			return false, err
		}
		jb.archiveCycle(cycle)
		jb.printCycle(cycle, previous)
		return false, nil

	case "/done":
		jb.session.Complete()
		fmt.Fprintln(jb.out, "Conversation closed. Type a new topic to start over.")
		return false, nil

	case "/new":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /new <topic>")
		}
		jb.startTopic(ctx, strings.Join(parts[1:], " "))
		return false, nil

	case "/history":
		history := jb.session.History()
		if len(history) == 0 {
			fmt.Fprintln(jb.out, "No history yet. Type a topic first.")
			return false, nil
		}
		fmt.Fprintf(jb.out, "\nTopic: %s\n", jb.session.Topic())
		for i, cycle := range history {
			fmt.Fprintf(jb.out, "%d. [%s] %s\n", i+1, cycle.Kind, cycle.Feedback.Summary())
			fmt.Fprintf(jb.out, "   %s\n", cycle.Joke)
		}
		fmt.Fprintln(jb.out)
		return false, nil

	case "/sessions":
		if jb.store == nil {
			fmt.Fprintln(jb.out, "Archiving is disabled.")
			return false, nil
		}
		sessions, err := jb.store.RecentSessions(10)
		if err != nil {
			return false, fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(jb.out, "No archived sessions.")
			return false, nil
		}
		fmt.Fprintln(jb.out, "\nRecent sessions:")
		for i, s := range sessions {
			fmt.Fprintf(jb.out, "%d. %s - %q, %d cycles, best %d/100\n", i+1, s.ID, s.Topic, s.Cycles, s.BestScore)
		}
		fmt.Fprintln(jb.out)
		return false, nil

	case "/list-ollama-models":
		models, err := llm.ListOllamaModels(ctx, jb.config.OllamaURL)
		if err != nil {
			return false, fmt.Errorf("failed to list Ollama models: %w", err)
		}
		fmt.Fprintln(jb.out, "\nAvailable Ollama models:")
		for i, model := range models {
			sizeGB := float64(model.Size) / (1024 * 1024 * 1024)
			fmt.Fprintf(jb.out, "%d. %s - %.2f GB\n", i+1, model.Name, sizeGB)
		}
		fmt.Fprintln(jb.out)
		return false, nil

	case "/help":
		fmt.Fprintln(jb.out, "Type any topic to generate and evaluate a joke about it.")
		fmt.Fprintln(jb.out, "Available commands:")
		fmt.Fprintln(jb.out, "  /revise              - Rewrite the latest joke using its feedback")
		fmt.Fprintln(jb.out, "  /reevaluate          - Get a fresh critique of the latest joke")
		fmt.Fprintln(jb.out, "  /new <topic>         - Drop the current conversation and start over")
		fmt.Fprintln(jb.out, "  /history             - Show all cycles of this conversation")
		fmt.Fprintln(jb.out, "  /done                - Close this conversation")
		fmt.Fprintln(jb.out, "  /sessions            - List archived sessions")
		fmt.Fprintln(jb.out, "  /list-ollama-models  - List locally installed Ollama models")
		fmt.Fprintln(jb.out, "  /help                - Show this help message")
		fmt.Fprintln(jb.out, "  /quit, /exit         - Exit")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", parts[0])
	}
}

// printCycle renders a joke and its critique. previous, when set, adds
// the score movement since the last cycle.
func (jb *JokeBot) printCycle(cycle refine.Cycle, previous *refine.Cycle) {
	fb := cycle.Feedback

	fmt.Fprintf(jb.out, "\nJoke: %s\n\n", cycle.Joke)
	fmt.Fprintf(jb.out, "[%s] %s (%s)\n", cycle.Kind, fb.Summary(), feedback.ScoreCategory(fb.Score))
	printList(jb.out, "Strengths", fb.Strengths)
	printList(jb.out, "Weaknesses", fb.Weaknesses)
	printList(jb.out, "Suggestions", fb.Suggestions)

	if previous != nil {
		imp := feedback.CompareScores(previous.Feedback.Score, fb.Score)
		switch {
		case imp.Improved:
			fmt.Fprintf(jb.out, "Improved by %d points (%+.1f%%)\n", imp.Delta, imp.PercentageChange)
		case imp.Declined:
			fmt.Fprintf(jb.out, "Dropped by %d points (%+.1f%%)\n", -imp.Delta, imp.PercentageChange)
		default:
			fmt.Fprintln(jb.out, "Score unchanged")
		}
	}

	if fb.Degraded() {
		fmt.Fprintln(jb.out, "Note: the critic's response could not be fully parsed; scores are placeholders.")
	}
	if fb.Acceptable(feedback.DefaultAcceptableScore) {
		fmt.Fprintln(jb.out, "Good enough to tell! /revise to push further, /done to stop.")
	} else {
		fmt.Fprintln(jb.out, "Needs work. /revise to try again.")
	}
	fmt.Fprintln(jb.out)
}

func printList(w io.Writer, label string, items []string) {
	fmt.Fprintf(w, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

// lastCycle snapshots the latest cycle for score comparison, or nil.
func (jb *JokeBot) lastCycle() *refine.Cycle {
	history := jb.session.History()
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}

// archiveCycle records the cycle without blocking the prompt.
func (jb *JokeBot) archiveCycle(cycle refine.Cycle) {
	if jb.store == nil {
		return
	}
	id, topic, seq := jb.sessionID, jb.session.Topic(), jb.seq
	jb.seq++
	go func() {
		if err := jb.store.RecordCycle(id, topic, seq, cycle); err != nil {
			jb.logger.Error("failed to archive cycle", "session_id", id, "error", err)
		}
	}()
}
