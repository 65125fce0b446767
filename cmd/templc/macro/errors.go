package macro

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateTemplate = errors.New("duplicate template name")
	ErrDuplicateParam    = errors.New("duplicate parameter")
	ErrUnboundVariable   = errors.New("unbound variable")
	ErrDanglingCall      = errors.New("call to undefined template")
	ErrArityMismatch     = errors.New("argument count mismatch")
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrArgumentCount     = errors.New("wrong number of arguments")
	ErrInternal          = errors.New("internal compiler error")
)

// Phase names, as they appear in error messages and trace output.
const (
	PhaseWellFormed  = "wellformed"
	PhaseCalls       = "calls"
	PhaseDangling    = "dangling"
	PhaseSort        = "sort"
	PhaseInline      = "inline"
	PhaseUnnest      = "unnest"
	PhaseMerge       = "merge"
	PhaseVariables   = "variables"
	PhaseLevelDelta  = "leveldelta"
	PhaseUsePaths    = "usepaths"
	PhaseInstantiate = "instantiate"
)

// Error is the failure value returned by every pass.
// Kind is one of the sentinel errors above and is what errors.Is matches.
type Error struct {
	Phase    string
	Kind     error
	Template Identifier
	// Name is the offending identifier: a parameter, a variable or a callee.
	Name   Identifier
	Cycle  []Identifier
	Hint   string
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "phase=%s", e.Phase)
	if e.Template != "" {
		fmt.Fprintf(&b, " template=%s", e.Template)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	switch {
	case len(e.Cycle) > 0:
		parts := make([]string, len(e.Cycle))
		for i, id := range e.Cycle {
			parts[i] = string(id)
		}
		fmt.Fprintf(&b, ": %s", strings.Join(parts, " -> "))
	case e.Name != "":
		fmt.Fprintf(&b, ": %s", e.Name)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "; did you mean %q?", e.Hint)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

// IsInternal reports whether err signals a defect in the pipeline rather
// than a problem with the templates it was given.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func internalf(phase string, tmpl Identifier, format string, args ...any) error {
	return &Error{Phase: phase, Kind: ErrInternal, Template: tmpl, Detail: fmt.Sprintf(format, args...)}
}
