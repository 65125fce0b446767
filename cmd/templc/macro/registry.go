package macro

// Registry collects templates by name before compilation.
// Templates are registered once, then handed to the engine in registration order.
type Registry struct {
	order     []Identifier
	templates map[Identifier]Template
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[Identifier]Template),
	}
}

// Register adds a template to the registry.
// Returns ErrDuplicateTemplate if a template with that name is already registered.
func (r *Registry) Register(t Template) error {
	if _, exists := r.templates[t.Name]; exists {
		return &Error{Phase: PhaseWellFormed, Kind: ErrDuplicateTemplate, Template: t.Name}
	}
	r.templates[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Get returns the template registered under name.
func (r *Registry) Get(name Identifier) (Template, bool) {
	t, ok := r.templates[name]
	return t, ok
}

// Names returns the registered names, in registration order.
func (r *Registry) Names() []Identifier {
	return append([]Identifier(nil), r.order...)
}

// Templates returns the registered templates, in registration order.
func (r *Registry) Templates() []Template {
	out := make([]Template, len(r.order))
	for i, name := range r.order {
		out[i] = r.templates[name]
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.order) }
