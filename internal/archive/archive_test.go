package archive

import (
	"path/filepath"
	"testing"
	"time"

	"JokeSmith/internal/feedback"
	"JokeSmith/internal/refine"
)

func testCycle(kind refine.CycleKind, joke string, score int) refine.Cycle {
	return refine.Cycle{
		Joke: joke,
		Feedback: feedback.Feedback{
			Score:       score,
			Audience:    feedback.RatingTeen,
			Strengths:   []string{"s"},
			Weaknesses:  []string{"w"},
			Suggestions: []string{"x"},
			Verdict:     "v",
		},
		Kind:      kind,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRecordAndLoadCycles(t *testing.T) {
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if err := a.RecordCycle("s1", "cats", 0, testCycle(refine.CycleInitial, "first joke", 70)); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}
	if err := a.RecordCycle("s1", "cats", 1, testCycle(refine.CycleRevised, "second joke", 85)); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}

	cycles, err := a.Cycles("s1")
	if err != nil {
		t.Fatalf("Cycles: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("got %d cycles, want 2", len(cycles))
	}
	if cycles[0].Kind != refine.CycleInitial || cycles[1].Kind != refine.CycleRevised {
		t.Errorf("kinds = %q, %q", cycles[0].Kind, cycles[1].Kind)
	}
	if cycles[1].Joke != "second joke" {
		t.Errorf("joke = %q", cycles[1].Joke)
	}
	if cycles[1].Feedback.Score != 85 {
		t.Errorf("score = %d, want 85", cycles[1].Feedback.Score)
	}
	if len(cycles[0].Feedback.Suggestions) != 1 {
		t.Errorf("feedback lists not round-tripped: %+v", cycles[0].Feedback)
	}
}

func TestRecentSessions(t *testing.T) {
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	old := testCycle(refine.CycleInitial, "old joke", 40)
	old.CreatedAt = time.Now().Add(-time.Hour)
	if err := a.RecordCycle("s1", "cats", 0, old); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}
	if err := a.RecordCycle("s2", "dogs", 0, testCycle(refine.CycleInitial, "new joke", 55)); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}
	if err := a.RecordCycle("s2", "dogs", 1, testCycle(refine.CycleRevised, "better joke", 80)); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}

	sessions, err := a.RecentSessions(10)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "s2" {
		t.Errorf("newest first: got %q", sessions[0].ID)
	}
	if sessions[0].Topic != "dogs" || sessions[0].Cycles != 2 || sessions[0].BestScore != 80 {
		t.Errorf("summary = %+v", sessions[0])
	}

	sessions, err = a.RecentSessions(1)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("limit ignored, got %d", len(sessions))
	}
}
