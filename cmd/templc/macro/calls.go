package macro

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// annotatedTemplate is a template together with the distinct names it calls,
// in the order they are first seen.
type annotatedTemplate struct {
	Template
	calls []Identifier
}

// extractCalls collects, for every template, the templates its body calls.
// Calls nested inside call arguments count as calls of the enclosing template.
func extractCalls(templates []Template) []annotatedTemplate {
	out := make([]annotatedTemplate, len(templates))
	for i, t := range templates {
		seen := map[Identifier]struct{}{}
		var calls []Identifier
		collectCalls(t.Body, seen, &calls)
		out[i] = annotatedTemplate{Template: t, calls: calls}
	}
	return out
}

func collectCalls(list []Expr, seen map[Identifier]struct{}, calls *[]Identifier) {
	for _, e := range list {
		switch x := e.(type) {
		case *Container:
			collectCalls(x.Children, seen, calls)
		case *Apply:
			if _, ok := seen[x.Template]; !ok {
				seen[x.Template] = struct{}{}
				*calls = append(*calls, x.Template)
			}
			for _, arg := range x.Args {
				collectCalls(arg, seen, calls)
			}
		}
	}
}

// checkDanglingCalls verifies that every callee is part of the set and that
// every call site passes exactly one argument list per callee parameter.
func checkDanglingCalls(templates []annotatedTemplate, reg *Registry) error {
	for _, t := range templates {
		for _, callee := range t.calls {
			if _, ok := reg.Get(callee); !ok {
				return &Error{
					Phase: PhaseDangling, Kind: ErrDanglingCall, Template: t.Name, Name: callee,
					Hint: closestName(callee, reg.Names()),
				}
			}
		}
		if err := checkArity(t.Name, t.Body, reg); err != nil {
			return err
		}
	}
	return nil
}

func checkArity(caller Identifier, list []Expr, reg *Registry) error {
	for _, e := range list {
		switch x := e.(type) {
		case *Container:
			if err := checkArity(caller, x.Children, reg); err != nil {
				return err
			}
		case *Apply:
			callee, _ := reg.Get(x.Template)
			if len(x.Args) != len(callee.Params) {
				return &Error{
					Phase: PhaseDangling, Kind: ErrArityMismatch, Template: caller, Name: x.Template,
					Detail: fmt.Sprintf("want %d, got %d", len(callee.Params), len(x.Args)),
				}
			}
			for _, arg := range x.Args {
				if err := checkArity(caller, arg, reg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// closestName returns the defined name that best matches target, or "" when
// nothing is close.
func closestName(target Identifier, names []Identifier) string {
	if len(names) == 0 {
		return ""
	}
	candidates := make([]string, len(names))
	for i, n := range names {
		candidates[i] = string(n)
	}
	ranks := fuzzy.RankFindFold(string(target), candidates)
	if len(ranks) == 0 {
		// RankFindFold only matches when target is a subsequence of a
		// candidate; also try the other direction for truncated typos.
		for _, c := range candidates {
			if 2*len(c) >= len(target) && fuzzy.MatchFold(c, string(target)) {
				return c
			}
		}
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
