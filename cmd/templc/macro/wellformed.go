package macro

// checkWellFormedness indexes the template set and validates each template in
// isolation: template names are unique, parameter names are unique, and every
// variable, at any depth including call arguments, names a parameter of the
// template it appears in. The first violation is returned.
func checkWellFormedness(templates []Template) (*Registry, error) {
	reg := NewRegistry()
	for _, t := range templates {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
		if err := checkParams(t); err != nil {
			return nil, err
		}
		if err := checkVariables(t, t.Body); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func checkParams(t Template) error {
	seen := make(map[Identifier]struct{}, len(t.Params))
	for _, p := range t.Params {
		if _, dup := seen[p]; dup {
			return &Error{Phase: PhaseWellFormed, Kind: ErrDuplicateParam, Template: t.Name, Name: p}
		}
		seen[p] = struct{}{}
	}
	return nil
}

func checkVariables(t Template, list []Expr) error {
	for _, e := range list {
		switch x := e.(type) {
		case *Variable:
			if t.paramIndex(x.Name) < 0 {
				return &Error{Phase: PhaseWellFormed, Kind: ErrUnboundVariable, Template: t.Name, Name: x.Name}
			}
		case *Container:
			if err := checkVariables(t, x.Children); err != nil {
				return err
			}
		case *Apply:
			for _, arg := range x.Args {
				if err := checkVariables(t, arg); err != nil {
					return err
				}
			}
		case *CompiledVariable:
			return &Error{
				Phase: PhaseWellFormed, Kind: ErrUnboundVariable, Template: t.Name,
				Detail: "compiled variable in source template",
			}
		}
	}
	return nil
}
