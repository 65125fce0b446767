package macro

// leveledTemplate carries the template-wide level delta to packaging.
type leveledTemplate struct {
	Template
	levelDelta int
}

// computeLevelDeltas records on every CompiledVariable how many level-raising
// containers enclose it. A template's own delta is the deepest of these, so
// a template that wraps its parameter in one list has delta 1.
func computeLevelDeltas(templates []Template, cat Catalogue) []leveledTemplate {
	out := make([]leveledTemplate, len(templates))
	for i, t := range templates {
		deepest := 0
		body := levelList(t.Body, 0, cat, &deepest)
		out[i] = leveledTemplate{Template: t.withBody(body), levelDelta: deepest}
	}
	return out
}

func levelList(list []Expr, level int, cat Catalogue, deepest *int) []Expr {
	if list == nil {
		return nil
	}
	out := make([]Expr, len(list))
	for i, e := range list {
		switch x := e.(type) {
		case *CompiledVariable:
			out[i] = &CompiledVariable{Slot: x.Slot, LevelDelta: level}
			if level > *deepest {
				*deepest = level
			}
		case *Container:
			inner := level
			if cat.raisesLevel(x.Kind) {
				inner++
			}
			out[i] = &Container{Kind: x.Kind, Children: levelList(x.Children, inner, cat, deepest)}
		default:
			out[i] = Clone(e)
		}
	}
	return out
}
