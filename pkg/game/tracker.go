package game

import (
	"github.com/rfielding/chronicle/pkg/board"
	"github.com/rfielding/chronicle/pkg/relation"
	"github.com/rfielding/chronicle/pkg/timeline"
)

// Tracker holds per-episode counters and the undo history.
// TimelineHistory and BoardHistory are a matched pair of LIFO stacks:
// Undo pops one entry off each.
type Tracker struct {
	StepID            int
	NInferred         int
	NAnnotated        int
	NAnnotatedCorrect int
	NewRelations      []relation.PointRelation

	TimelineHistory []*timeline.Timeline
	BoardHistory    []*board.Board
}

func newTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) reset() {
	*t = Tracker{}
}

func (t *Tracker) push(tl *timeline.Timeline, b *board.Board) {
	t.TimelineHistory = append(t.TimelineHistory, tl.Clone())
	t.BoardHistory = append(t.BoardHistory, b.Clone())
}

// pop removes and returns the most recent history entry, reporting
// whether one was available.
func (t *Tracker) pop() (*timeline.Timeline, *board.Board, bool) {
	n := len(t.TimelineHistory)
	if n == 0 {
		return nil, nil, false
	}
	tl := t.TimelineHistory[n-1]
	b := t.BoardHistory[n-1]
	t.TimelineHistory = t.TimelineHistory[:n-1]
	t.BoardHistory = t.BoardHistory[:n-1]
	return tl, b, true
}
