package macro

// unnestContainers removes redundant wrappers: a container that the
// catalogue reports as transparent at its position is replaced by its own
// (already unnested) children.
func unnestContainers(templates []Template, cat Catalogue) []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = t.withBody(unnestList("", t.Body, cat))
	}
	return out
}

func unnestList(parent string, list []Expr, cat Catalogue) []Expr {
	if list == nil {
		return nil
	}
	out := make([]Expr, 0, len(list))
	for _, e := range list {
		c, ok := e.(*Container)
		if !ok {
			out = append(out, Clone(e))
			continue
		}
		children := unnestList(c.Kind, c.Children, cat)
		if cat.transparent(parent, c.Kind) {
			out = append(out, children...)
			continue
		}
		out = append(out, &Container{Kind: c.Kind, Children: children})
	}
	return out
}

// mergeNeighbours fuses adjacent siblings the catalogue allows to merge, so
// that equivalent expansions end up with identical trees.
func mergeNeighbours(templates []Template, cat Catalogue) []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = t.withBody(mergeList(t.Body, cat))
	}
	return out
}

func mergeList(list []Expr, cat Catalogue) []Expr {
	if list == nil {
		return nil
	}
	out := make([]Expr, 0, len(list))
	for _, e := range list {
		var next Expr
		if c, ok := e.(*Container); ok {
			next = &Container{Kind: c.Kind, Children: mergeList(c.Children, cat)}
		} else {
			next = Clone(e)
		}
		if n := len(out); n > 0 {
			if merged, ok := mergePair(out[n-1], next, cat); ok {
				out[n-1] = merged
				continue
			}
		}
		out = append(out, next)
	}
	return out
}

// mergePair combines two already-merged neighbours.
func mergePair(a, b Expr, cat Catalogue) (Expr, bool) {
	switch x := a.(type) {
	case *Leaf:
		y, ok := b.(*Leaf)
		if !ok {
			return nil, false
		}
		merged, ok := cat.mergeLeaves(x, y)
		if !ok {
			return nil, false
		}
		return merged, true
	case *Container:
		y, ok := b.(*Container)
		if !ok || !cat.mergeContainers(x, y) {
			return nil, false
		}
		return &Container{Kind: x.Kind, Children: joinLists(x.Children, y.Children, cat)}, true
	}
	return nil, false
}

// joinLists concatenates two merged lists, merging across the seam.
func joinLists(a, b []Expr, cat Catalogue) []Expr {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]Expr, 0, len(a)+len(b))
	out = append(out, a[:len(a)-1]...)
	if merged, ok := mergePair(a[len(a)-1], b[0], cat); ok {
		out = append(out, merged)
	} else {
		out = append(out, a[len(a)-1], b[0])
	}
	return append(out, b[1:]...)
}
