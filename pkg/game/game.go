// Package game implements the episode state machine: a predicted
// timeline, an observation board, an undo stack, and a reward signal
// derived from comparison to a hidden ground-truth timeline.
package game

import (
	"fmt"

	"github.com/rfielding/chronicle/pkg/board"
	"github.com/rfielding/chronicle/pkg/document"
	"github.com/rfielding/chronicle/pkg/endpoint"
	"github.com/rfielding/chronicle/pkg/relation"
	"github.com/rfielding/chronicle/pkg/timeline"
)

// Reward constants.
const (
	RewardCorrect = 1
	RewardInvalid = -1
	RewardSuccess = 0
)

// Action is a player's assertion of one point relation on one orderable
// endpoint pair, addressed by board index.
type Action struct {
	I, J int
	Rel  relation.Symbol
}

// Observation is the external view of the game state.
type Observation struct {
	Context   string   `json:"context"`
	Board     [][]int  `json:"board"`
	Endpoints []string `json:"endpoints"`
	Entities  []string `json:"entities"`
}

// Info carries the step/undo metadata.
type Info struct {
	NInferred         int          `json:"n_inferred"`
	NAnnotated        int          `json:"n_annotated"`
	NAnnotatedCorrect int          `json:"n_annotated_correct"`
	IsSuccess         bool         `json:"is_success"`
	TerminalObs       *Observation `json:"terminal_observation,omitempty"`
	TrueBoard         [][]int      `json:"true_board,omitempty"`
}

// Game owns exactly one immutable ground-truth document and one mutable
// predicted timeline. All mutable state is exclusively owned by the
// Game; callers observe read-only snapshots via Observation.
type Game struct {
	trueDoc *document.Document

	endpoints   []endpoint.Endpoint
	pairIndex   *endpoint.PairIndex
	entityOrder map[string]int
	entityPairs map[string]struct{}

	trueTimeline *timeline.Timeline

	predRelations []relation.PointRelation // mirrors predTimeline.Explicit(), the "pred_doc"
	predTimeline  *timeline.Timeline
	board         *board.Board

	tracker          *Tracker
	cumulativeReward float64
}

// New constructs a game from a raw input document.
func New(raw document.RawDocument) (*Game, error) {
	doc, err := document.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	eps := endpoint.Sequence(doc.EndpointRefs())
	pairIndex := endpoint.NewPairIndex(eps)

	entityOrder := make(map[string]int, len(doc.Entities))
	for i, e := range doc.Entities {
		entityOrder[e.ID] = i
	}

	trueTimeline := timeline.FromRelations(doc.Relations)

	entityPairs := make(map[string]struct{})
	for _, r := range doc.Relations {
		entityPairs[r.PairKey()] = struct{}{}
	}

	g := &Game{
		trueDoc:      doc,
		endpoints:    eps,
		pairIndex:    pairIndex,
		entityOrder:  entityOrder,
		entityPairs:  entityPairs,
		trueTimeline: trueTimeline,
		tracker:      newTracker(),
	}
	g.resetMutableState()
	return g, nil
}

func (g *Game) resetMutableState() {
	g.predTimeline = timeline.New()
	g.predRelations = nil
	g.board = board.Make(g.pairIndex, nil)
	g.tracker.reset()
	g.cumulativeReward = 0
}

func (g *Game) endpointLabels() []string {
	labels := make([]string, len(g.endpoints))
	for i, e := range g.endpoints {
		labels[i] = e.Label()
	}
	return labels
}

func (g *Game) observation() Observation {
	return Observation{
		Context:   g.trueDoc.TaggedContext(),
		Board:     g.board.AsRows(),
		Endpoints: g.endpointLabels(),
		Entities:  g.trueDoc.EntityTexts(),
	}
}

// Reset reinitializes the episode: empty predicted timeline, a board
// with every orderable cell Unclassified, and zeroed counters.
func (g *Game) Reset() (Observation, Info) {
	g.resetMutableState()
	return g.observation(), Info{}
}

// Step applies one action: insert the asserted relation, recompute
// closure, re-encode the board, score the move, and check termination.
func (g *Game) Step(action Action) (Observation, float64, bool, Info, error) {
	srcName, tgtName, ok := g.pairIndex.NamesAt(action.I, action.J)
	if !ok {
		return Observation{}, 0, false, Info{}, fmt.Errorf("game: unknown pair index (%d,%d)", action.I, action.J)
	}
	r, err := relation.New(srcName, tgtName, action.Rel)
	if err != nil {
		return Observation{}, 0, false, Info{}, fmt.Errorf("game: step: %w", err)
	}

	g.tracker.push(g.predTimeline, g.board)
	g.tracker.StepID++

	beforeExplicit := g.predTimeline.ExplicitSet().Clone()
	g.predTimeline.Add(r)

	newRelations := timeline.NewRelationSet()
	inferred := 0
	for _, cr := range g.predTimeline.Closure() {
		if !beforeExplicit.Has(cr) {
			newRelations.Add(cr)
			inferred++
		}
	}
	newRelations.Add(r)

	g.tracker.NInferred += inferred
	g.tracker.NAnnotated += newRelations.Len()
	g.tracker.NewRelations = newRelations.Items()

	g.predTimeline = g.predTimeline.Sort(g.entityOrder)
	g.predRelations = g.predTimeline.Explicit()
	g.board = board.Make(g.pairIndex, g.predRelations)

	isValid := g.predTimeline.IsValid()
	terminated := false
	isSuccess := false

	switch {
	case !isValid:
		terminated = true
		isSuccess = false
	case g.board.CountUnclassified() == 0:
		terminated = true
		isSuccess = g.predTimeline.ClosureSet().Contains(g.trueTimeline.ClosureSet())
	}

	reward := g.score(terminated, isSuccess, newRelations.Items())
	g.cumulativeReward += reward

	info := Info{
		NInferred:         g.tracker.NInferred,
		NAnnotated:        g.tracker.NAnnotated,
		NAnnotatedCorrect: g.tracker.NAnnotatedCorrect,
		IsSuccess:         isSuccess,
	}
	obs := g.observation()
	if terminated {
		o := obs
		info.TerminalObs = &o
		info.TrueBoard = board.Make(g.pairIndex, g.trueTimeline.Closure()).AsRows()
	}
	return obs, reward, terminated, info, nil
}

func (g *Game) score(terminated, isSuccess bool, newRelations []relation.PointRelation) float64 {
	if terminated && !isSuccess {
		return RewardInvalid
	}
	trueExplicit := g.trueTimeline.ExplicitSet()

	correct := 0
	wrong := 0
	for _, r := range newRelations {
		if trueExplicit.Has(r) {
			correct++
			continue
		}
		if _, scored := g.entityPairs[r.PairKey()]; scored {
			wrong++
		}
	}
	g.tracker.NAnnotatedCorrect += correct

	reward := float64(correct - wrong)
	if isSuccess {
		reward += RewardSuccess
	}
	return reward
}

// Undo pops one entry from the undo stack and restores the predicted
// timeline and board verbatim. When the stack is empty it returns the
// current observation unchanged and false. Cumulative reward is
// deliberately not rolled back.
func (g *Game) Undo() (Observation, Info, bool) {
	tl, b, ok := g.tracker.pop()
	if !ok {
		return g.observation(), Info{
			NInferred:         g.tracker.NInferred,
			NAnnotated:        g.tracker.NAnnotated,
			NAnnotatedCorrect: g.tracker.NAnnotatedCorrect,
		}, false
	}
	g.predTimeline = tl
	g.predRelations = tl.Explicit()
	g.board = b
	if g.tracker.StepID > 0 {
		g.tracker.StepID--
	}
	info := Info{
		NInferred:         g.tracker.NInferred,
		NAnnotated:        g.tracker.NAnnotated,
		NAnnotatedCorrect: g.tracker.NAnnotatedCorrect,
	}
	return g.observation(), info, true
}

// CumulativeReward returns the score accumulated so far this episode
// (not reset by Undo).
func (g *Game) CumulativeReward() float64 { return g.cumulativeReward }

// StepID returns the current step counter.
func (g *Game) StepID() int { return g.tracker.StepID }

// PredictedTimeline exposes the current predicted timeline, e.g. for
// pkg/query's ad-hoc relation console.
func (g *Game) PredictedTimeline() *timeline.Timeline { return g.predTimeline }

// TrueTimeline exposes the ground-truth timeline.
func (g *Game) TrueTimeline() *timeline.Timeline { return g.trueTimeline }

// PairIndex exposes the orderable-pair index, e.g. for validating an
// action's (i,j) before calling Step.
func (g *Game) PairIndex() *endpoint.PairIndex { return g.pairIndex }
