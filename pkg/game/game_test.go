package game

import (
	"testing"

	"github.com/rfielding/chronicle/pkg/board"
	"github.com/rfielding/chronicle/pkg/document"
	"github.com/rfielding/chronicle/pkg/endpoint"
	"github.com/rfielding/chronicle/pkg/relation"
)

func twoIntervalDoc() document.RawDocument {
	return document.RawDocument{
		Text: "A happened before B.",
		Entities: []document.RawEntity{
			{ID: "ent-a", Text: "A", Offsets: [2]int{0, 1}, Kind: endpoint.Interval},
			{ID: "ent-b", Text: "B", Offsets: [2]int{19, 20}, Kind: endpoint.Interval},
		},
		Relations: []document.RawRelation{
			{Source: "start ent-a", Target: "start ent-b", Rel: relation.Before},
		},
	}
}

func findPair(t *testing.T, g *Game, src, tgt string) (int, int) {
	t.Helper()
	i, j, ok := g.PairIndex().IndexOf(src, tgt)
	if !ok {
		t.Fatalf("no orderable pair for (%s, %s)", src, tgt)
	}
	return i, j
}

func TestNewGameStartsFullyUnclassified(t *testing.T) {
	g, err := New(twoIntervalDoc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	obs, _ := g.Reset()
	n := len(obs.Endpoints)
	if n != 4 {
		t.Fatalf("expected 4 endpoints for two intervals, got %d", n)
	}
	if obs.Board[0][1] != board.Masked {
		t.Fatalf("same-entity cell should be masked, got %d", obs.Board[0][1])
	}
	unclassified := 0
	for _, row := range obs.Board {
		for _, v := range row {
			if v == board.Unclassified {
				unclassified++
			}
		}
	}
	if unclassified != g.PairIndex().NRelations() {
		t.Fatalf("unclassified cells = %d, want every orderable pair (%d)", unclassified, g.PairIndex().NRelations())
	}
}

func TestStepCorrectRelationYieldsPositiveReward(t *testing.T) {
	g, err := New(twoIntervalDoc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	i, j := findPair(t, g, "start e0", "start e1")
	_, reward, _, info, err := g.Step(Action{I: i, J: j, Rel: relation.Before})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if reward <= 0 {
		t.Fatalf("expected positive reward for a correct annotation, got %v", reward)
	}
	if info.NAnnotatedCorrect == 0 {
		t.Fatal("expected at least one correct annotation to be counted")
	}
}

func TestStepContradictionTerminatesWithNegativeReward(t *testing.T) {
	g, err := New(twoIntervalDoc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	i, j := findPair(t, g, "start e0", "start e1")
	if _, _, _, _, err := g.Step(Action{I: i, J: j, Rel: relation.Before}); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	// Assert the opposite relation on the same pair: direct contradiction.
	_, reward, terminated, info, err := g.Step(Action{I: i, J: j, Rel: relation.After})
	if err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if !terminated {
		t.Fatal("expected contradictory assertion to terminate the episode")
	}
	if reward != RewardInvalid {
		t.Fatalf("reward = %v, want %v", reward, RewardInvalid)
	}
	if info.IsSuccess {
		t.Fatal("a contradiction must never be reported as success")
	}
}

func TestUndoRestoresPriorBoardAndDoesNotRollBackReward(t *testing.T) {
	g, err := New(twoIntervalDoc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before, _ := g.Reset()

	i, j := findPair(t, g, "start e0", "start e1")
	_, reward, _, _, err := g.Step(Action{I: i, J: j, Rel: relation.Before})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	rewardAfterStep := g.CumulativeReward()
	if rewardAfterStep != reward {
		t.Fatalf("cumulative reward = %v, want %v", rewardAfterStep, reward)
	}

	after, _, ok := g.Undo()
	if !ok {
		t.Fatal("expected Undo to succeed with one entry on the stack")
	}
	if !boardsEqual(after.Board, before.Board) {
		t.Fatalf("Undo did not restore the pre-step board: got %v, want %v", after.Board, before.Board)
	}
	if g.CumulativeReward() != rewardAfterStep {
		t.Fatalf("Undo must not roll back cumulative reward: got %v, want %v", g.CumulativeReward(), rewardAfterStep)
	}
}

func TestUndoOnEmptyStackIsNoop(t *testing.T) {
	g, err := New(twoIntervalDoc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, ok := g.Undo()
	if ok {
		t.Fatal("expected Undo on an empty history stack to report false")
	}
}

func TestStepAddsInferredClosureRelations(t *testing.T) {
	raw := document.RawDocument{
		Text: "A before B, B before C.",
		Entities: []document.RawEntity{
			{ID: "ea", Text: "A", Offsets: [2]int{0, 1}, Kind: endpoint.Interval},
			{ID: "eb", Text: "B", Offsets: [2]int{10, 11}, Kind: endpoint.Interval},
			{ID: "ec", Text: "C", Offsets: [2]int{20, 21}, Kind: endpoint.Interval},
		},
		Relations: []document.RawRelation{
			{Source: "start ea", Target: "start eb", Rel: relation.Before},
			{Source: "start eb", Target: "start ec", Rel: relation.Before},
		},
	}
	g, err := New(raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	i1, j1 := findPair(t, g, "start e0", "start e1")
	if _, _, _, _, err := g.Step(Action{I: i1, J: j1, Rel: relation.Before}); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	i2, j2 := findPair(t, g, "start e1", "start e2")
	_, _, _, info, err := g.Step(Action{I: i2, J: j2, Rel: relation.Before})
	if err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if info.NInferred == 0 {
		t.Fatal("expected asserting the second link to infer start e0 < start e2 transitively")
	}
}

func TestStepFullBoardYieldsSuccessAndTerminalObservation(t *testing.T) {
	raw := document.RawDocument{
		Text: "A happened, then B happened.",
		Entities: []document.RawEntity{
			{ID: "ea", Text: "A", Offsets: [2]int{0, 1}, Kind: endpoint.InstantK},
			{ID: "eb", Text: "B", Offsets: [2]int{20, 21}, Kind: endpoint.InstantK},
		},
		Relations: []document.RawRelation{
			{Source: "instant ea", Target: "instant eb", Rel: relation.Before},
		},
	}
	g, err := New(raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	i, j := findPair(t, g, "instant e0", "instant e1")
	_, reward, terminated, info, err := g.Step(Action{I: i, J: j, Rel: relation.Before})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !terminated {
		t.Fatal("expected the only orderable pair to finish the episode")
	}
	if !info.IsSuccess {
		t.Fatal("expected a fully and correctly classified board to report success")
	}
	if reward <= 0 {
		t.Fatalf("expected a positive reward for the winning move, got %v", reward)
	}
	if info.TerminalObs == nil {
		t.Fatal("expected a terminal observation on a winning step")
	}
	if info.TrueBoard == nil {
		t.Fatal("expected the true board to be populated on termination")
	}
	if info.TrueBoard[i][j] != board.EncBefore {
		t.Fatalf("true board cell (%d,%d) = %d, want %d", i, j, info.TrueBoard[i][j], board.EncBefore)
	}
	if info.TerminalObs.Board[i][j] != board.EncBefore {
		t.Fatalf("terminal observation cell (%d,%d) = %d, want %d", i, j, info.TerminalObs.Board[i][j], board.EncBefore)
	}
}

func boardsEqual(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
