// Package macro compiles parameterized document templates into a form that
// can be instantiated without re-resolving names: calls are inlined,
// trees are normalized, and parameter references become positional slots
// with precomputed occurrence paths.
package macro

import (
	"fmt"
	"io"
)

// Engine runs the compilation pipeline. It holds only configuration, so one
// Engine may compile independent template sets concurrently.
type Engine struct {
	catalogue Catalogue
	trace     io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTrace makes the engine write one line per completed pass to w.
func WithTrace(w io.Writer) Option {
	return func(e *Engine) { e.trace = w }
}

func NewEngine(cat Catalogue, opts ...Option) *Engine {
	e := &Engine{catalogue: cat}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile compiles a closed set of templates. Either every template compiles
// and the full table is returned, or the first failure is returned and no
// table at all.
func (e *Engine) Compile(templates []Template) (Table, error) {
	reg, err := checkWellFormedness(templates)
	if err != nil {
		return nil, err
	}
	e.tracef(PhaseWellFormed, len(templates))

	annotated := extractCalls(templates)
	e.tracef(PhaseCalls, len(annotated))

	if err := checkDanglingCalls(annotated, reg); err != nil {
		return nil, err
	}
	e.tracef(PhaseDangling, len(annotated))

	sorted, err := sortTemplates(annotated)
	if err != nil {
		return nil, err
	}
	e.tracef(PhaseSort, len(sorted))

	inlined, err := inlineCalls(sorted)
	if err != nil {
		return nil, err
	}
	e.tracef(PhaseInline, len(inlined))

	unnested := unnestContainers(inlined, e.catalogue)
	e.tracef(PhaseUnnest, len(unnested))

	merged := mergeNeighbours(unnested, e.catalogue)
	e.tracef(PhaseMerge, len(merged))

	converted, err := convertVariables(merged)
	if err != nil {
		return nil, err
	}
	e.tracef(PhaseVariables, len(converted))

	leveled := computeLevelDeltas(converted, e.catalogue)
	e.tracef(PhaseLevelDelta, len(leveled))

	compiled, err := computeUsePaths(leveled)
	if err != nil {
		return nil, err
	}
	e.tracef(PhaseUsePaths, len(compiled))

	table := make(Table, len(compiled))
	for _, c := range compiled {
		table[c.name] = c
	}
	return table, nil
}

// CompileTemplate compiles t on its own, as a set of one. t may therefore
// only call itself, which is rejected as a cycle.
func (e *Engine) CompileTemplate(t Template) (*CompiledTemplate, error) {
	table, err := e.Compile([]Template{t})
	if err != nil {
		return nil, err
	}
	return table[t.Name], nil
}

func (e *Engine) tracef(phase string, n int) {
	if e.trace == nil {
		return
	}
	fmt.Fprintf(e.trace, "phase=%s templates=%d\n", phase, n)
}
