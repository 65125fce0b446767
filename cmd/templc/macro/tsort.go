package macro

type color uint8

const (
	white color = iota // unvisited
	grey               // on the DFS stack
	black              // finished
)

// sortTemplates orders templates so that every template comes after all the
// templates it calls. Templates that do not depend on each other keep their
// input order. Any cycle, including a template calling itself, is an error:
// inlining a recursive template would never terminate.
func sortTemplates(templates []annotatedTemplate) ([]annotatedTemplate, error) {
	index := make(map[Identifier]int, len(templates))
	for i, t := range templates {
		index[t.Name] = i
	}

	colors := make([]color, len(templates))
	out := make([]annotatedTemplate, 0, len(templates))
	var stack []Identifier

	var visit func(i int) error
	visit = func(i int) error {
		t := templates[i]
		colors[i] = grey
		stack = append(stack, t.Name)
		for _, callee := range t.calls {
			j, ok := index[callee]
			if !ok {
				return internalf(PhaseSort, t.Name, "callee %s not in template set", callee)
			}
			switch colors[j] {
			case grey:
				return &Error{Phase: PhaseSort, Kind: ErrCyclicDependency, Template: t.Name, Cycle: cycleFrom(stack, callee)}
			case white:
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[i] = black
		out = append(out, t)
		return nil
	}

	for i := range templates {
		if colors[i] == white {
			if err := visit(i); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// cycleFrom returns the part of stack starting at name, closed by name again:
// a -> b -> a.
func cycleFrom(stack []Identifier, name Identifier) []Identifier {
	start := 0
	for i, s := range stack {
		if s == name {
			start = i
			break
		}
	}
	cycle := append([]Identifier(nil), stack[start:]...)
	return append(cycle, name)
}
