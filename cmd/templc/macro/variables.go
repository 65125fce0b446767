package macro

// convertVariables replaces every Variable with the CompiledVariable for the
// parameter's position. Well-formedness has already been checked, so an
// unknown name or a leftover call means the pipeline itself is broken.
func convertVariables(templates []Template) ([]Template, error) {
	out := make([]Template, len(templates))
	for i, t := range templates {
		body, err := convertList(t, t.Body)
		if err != nil {
			return nil, err
		}
		out[i] = t.withBody(body)
	}
	return out, nil
}

func convertList(t Template, list []Expr) ([]Expr, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]Expr, len(list))
	for i, e := range list {
		switch x := e.(type) {
		case *Variable:
			slot := t.paramIndex(x.Name)
			if slot < 0 {
				return nil, internalf(PhaseVariables, t.Name, "variable %s is not a parameter", x.Name)
			}
			out[i] = &CompiledVariable{Slot: slot}
		case *Container:
			children, err := convertList(t, x.Children)
			if err != nil {
				return nil, err
			}
			out[i] = &Container{Kind: x.Kind, Children: children}
		case *Apply:
			return nil, internalf(PhaseVariables, t.Name, "call to %s survived inlining", x.Template)
		case *CompiledVariable:
			return nil, internalf(PhaseVariables, t.Name, "slot %d compiled twice", x.Slot)
		default:
			out[i] = Clone(e)
		}
	}
	return out, nil
}

// computeUsePaths builds the per-slot occurrence table that instantiation
// uses instead of walking the body, and packages the final result.
func computeUsePaths(templates []leveledTemplate) ([]*CompiledTemplate, error) {
	out := make([]*CompiledTemplate, len(templates))
	for i, t := range templates {
		uses := map[int][]TreePath{}
		if err := collectUses(t.Name, t.Body, nil, uses); err != nil {
			return nil, err
		}
		for slot, paths := range uses {
			if slot >= len(t.Params) {
				return nil, internalf(PhaseUsePaths, t.Name, "slot %d out of range", slot)
			}
			for _, p := range paths {
				cv, ok := lookupVariable(t.Body, p)
				if !ok || cv.Slot != slot {
					return nil, internalf(PhaseUsePaths, t.Name, "path %v does not address slot %d", p, slot)
				}
			}
		}
		out[i] = &CompiledTemplate{
			name:             t.Name,
			paramCount:       len(t.Params),
			body:             t.Body,
			usePaths:         uses,
			nestedLevelDelta: t.levelDelta,
		}
	}
	return out, nil
}

func collectUses(name Identifier, list []Expr, prefix TreePath, uses map[int][]TreePath) error {
	for i, e := range list {
		switch x := e.(type) {
		case *CompiledVariable:
			uses[x.Slot] = append(uses[x.Slot], prefix.child(i))
		case *Container:
			if err := collectUses(name, x.Children, prefix.child(i), uses); err != nil {
				return err
			}
		case *Variable:
			return internalf(PhaseUsePaths, name, "unresolved variable %s", x.Name)
		case *Apply:
			return internalf(PhaseUsePaths, name, "unexpanded call to %s", x.Template)
		}
	}
	return nil
}

func lookupVariable(body []Expr, path TreePath) (*CompiledVariable, bool) {
	e, ok := Lookup(body, path)
	if !ok {
		return nil, false
	}
	cv, ok := e.(*CompiledVariable)
	return cv, ok
}
