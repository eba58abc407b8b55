// Package query provides an ad-hoc Prolog console over a timeline's
// relations, independent of the deterministic Go closure in
// pkg/timeline. It exists for interactive exploration ("what entities
// come after e3?") and is never consulted by pkg/game's scoring path.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ichiban/prolog"

	"github.com/rfielding/chronicle/pkg/relation"
	"github.com/rfielding/chronicle/pkg/timeline"
)

// Engine wraps an ichiban/prolog interpreter loaded with the point
// relations of one timeline, asserted as rel/3 facts.
type Engine struct {
	mu          sync.RWMutex
	interpreter *prolog.Interpreter
	nFacts      int
}

// New creates a query engine with the core relation predicates loaded.
func New() (*Engine, error) {
	e := &Engine{interpreter: prolog.New(nil, nil)}
	if err := e.loadCore(); err != nil {
		return nil, fmt.Errorf("query: loading core predicates: %w", err)
	}
	return e, nil
}

// loadCore loads predicates for point-relation reachability. before/2
// and after/2 walk rel/3 facts transitively, mirroring (but not
// replacing) pkg/timeline's closure; equal/2 is symmetric and
// transitive over "=" facts.
func (e *Engine) loadCore() error {
	core := `
rel_before(X, Y) :- rel(X, Y, '<').
rel_before(X, Y) :- rel(Y, X, '>').
rel_after(X, Y) :- rel(X, Y, '>').
rel_after(X, Y) :- rel(Y, X, '<').
rel_equal(X, Y) :- rel(X, Y, '=').
rel_equal(X, Y) :- rel(Y, X, '=').

before(X, Y) :- rel_before(X, Y).
before(X, Y) :- rel_equal(X, Z), before(Z, Y).
before(X, Y) :- rel_before(X, Z), before(Z, Y).

after(X, Y) :- before(Y, X).

equal(X, Y) :- rel_equal(X, Y).
equal(X, Y) :- rel_equal(X, Z), equal(Z, Y).

member(X, [X|_]).
member(X, [_|T]) :- member(X, T).
`
	return e.interpreter.Exec(core)
}

// LoadTimeline replaces the engine's fact base with the closure of t.
func (e *Engine) LoadTimeline(t *timeline.Timeline) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.interpreter = prolog.New(nil, nil)
	if err := e.loadCore(); err != nil {
		return fmt.Errorf("query: reloading core predicates: %w", err)
	}

	var b strings.Builder
	n := 0
	for _, r := range t.Closure() {
		fmt.Fprintf(&b, "rel(%s, %s, '%s').\n", atomize(r.Source), atomize(r.Target), string(r.Rel))
		n++
	}
	e.nFacts = n
	if b.Len() == 0 {
		return nil
	}
	return e.interpreter.Exec(b.String())
}

// atomize turns an endpoint name like "start e3" into a single-quoted
// Prolog atom, escaping embedded quotes, for use as a functor argument.
func atomize(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "\\'") + "'"
}

// QueryOne reports whether query has at least one solution.
func (e *Engine) QueryOne(ctx context.Context, query string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sols, err := e.interpreter.QueryContext(ctx, query)
	if err != nil {
		return false, err
	}
	defer sols.Close()
	return sols.Next(), sols.Err()
}

// Relation runs a fixed-shape query asking whether rel holds between
// two endpoint names under the loaded timeline's closure, e.g.
// Relation(ctx, "start e0", "start e1", relation.Before).
func (e *Engine) Relation(ctx context.Context, a, b string, rel relation.Symbol) (bool, error) {
	var pred string
	switch rel {
	case relation.Before:
		pred = "before"
	case relation.After:
		pred = "after"
	case relation.Equal:
		pred = "equal"
	default:
		return false, fmt.Errorf("query: cannot query unresolved relation %q", rel)
	}
	q := fmt.Sprintf("%s(%s, %s).", pred, atomize(a), atomize(b))
	return e.QueryOne(ctx, q)
}

// RawQuery runs an arbitrary query and returns "true"/"false" or the
// solution count, for an interactive console (cmd/chronicle query).
func (e *Engine) RawQuery(ctx context.Context, q string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sols, err := e.interpreter.QueryContext(ctx, q)
	if err != nil {
		return "", err
	}
	defer sols.Close()

	n := 0
	for sols.Next() {
		n++
	}
	if err := sols.Err(); err != nil {
		return "", err
	}
	if n == 0 {
		return "false", nil
	}
	return fmt.Sprintf("true (%d solution(s))", n), nil
}

// NFacts returns the number of rel/3 facts currently loaded.
func (e *Engine) NFacts() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nFacts
}
