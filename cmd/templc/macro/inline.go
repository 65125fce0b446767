package macro

// inlineCalls expands every call site, processing templates in the order
// produced by sortTemplates so that each callee is already free of calls
// when its callers are expanded.
func inlineCalls(sorted []annotatedTemplate) ([]Template, error) {
	done := make(map[Identifier]Template, len(sorted))
	out := make([]Template, 0, len(sorted))
	for _, t := range sorted {
		body, err := inlineList(t.Name, t.Body, done)
		if err != nil {
			return nil, err
		}
		expanded := t.Template.withBody(body)
		done[t.Name] = expanded
		out = append(out, expanded)
	}
	return out, nil
}

// inlineList returns a copy of list in which every Apply has been replaced by
// the expansion of its callee. An expansion may contribute any number of
// expressions, so the result length can differ from len(list).
func inlineList(caller Identifier, list []Expr, done map[Identifier]Template) ([]Expr, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]Expr, 0, len(list))
	for _, e := range list {
		switch x := e.(type) {
		case *Container:
			children, err := inlineList(caller, x.Children, done)
			if err != nil {
				return nil, err
			}
			out = append(out, &Container{Kind: x.Kind, Children: children})
		case *Apply:
			expanded, err := inlineApply(caller, x, done)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		default:
			out = append(out, Clone(e))
		}
	}
	return out, nil
}

func inlineApply(caller Identifier, apply *Apply, done map[Identifier]Template) ([]Expr, error) {
	callee, ok := done[apply.Template]
	if !ok {
		return nil, internalf(PhaseInline, caller, "callee %s not inlined before its caller", apply.Template)
	}
	if len(apply.Args) != len(callee.Params) {
		return nil, internalf(PhaseInline, caller, "call to %s with %d arguments, want %d",
			apply.Template, len(apply.Args), len(callee.Params))
	}

	// Arguments live in the caller's scope; expand their calls first so the
	// substituted copies are already call-free.
	env := make(map[Identifier][]Expr, len(callee.Params))
	for i, p := range callee.Params {
		arg, err := inlineList(caller, apply.Args[i], done)
		if err != nil {
			return nil, err
		}
		env[p] = arg
	}
	return substitute(callee.Name, callee.Body, env)
}

// substitute copies body, splicing a fresh copy of env[name] in place of
// each Variable(name). Argument expressions are never shared between
// occurrences.
func substitute(callee Identifier, body []Expr, env map[Identifier][]Expr) ([]Expr, error) {
	if body == nil {
		return nil, nil
	}
	out := make([]Expr, 0, len(body))
	for _, e := range body {
		switch x := e.(type) {
		case *Variable:
			arg, ok := env[x.Name]
			if !ok {
				return nil, internalf(PhaseInline, callee, "variable %s has no binding", x.Name)
			}
			out = append(out, CloneList(arg)...)
		case *Container:
			children, err := substitute(callee, x.Children, env)
			if err != nil {
				return nil, err
			}
			out = append(out, &Container{Kind: x.Kind, Children: children})
		case *Apply:
			return nil, internalf(PhaseInline, callee, "inlined body still calls %s", x.Template)
		default:
			out = append(out, Clone(e))
		}
	}
	return out, nil
}
