package macro

// Expression kinds known to StandardCatalogue.
const (
	KindText     = "text"
	KindContent  = "content"
	KindEmph     = "emph"
	KindStrong   = "strong"
	KindFraction = "fraction"
	KindList     = "list"
	KindItem     = "item"
	// KindArgument wraps each argument copy produced by Instantiate.
	KindArgument = "argument"
)

// Catalogue is the compiler's only view of the host's expression kinds.
// Every field is optional; a nil function answers "no".
type Catalogue struct {
	// Transparent reports whether a container of kind child is a redundant
	// wrapper when it appears directly inside parent. parent is "" for the
	// top level of a template body.
	Transparent func(parent, child string) bool

	// MergeLeaves combines two adjacent leaves, or reports false if they
	// must stay apart.
	MergeLeaves func(a, b *Leaf) (*Leaf, bool)

	// MergeContainers reports whether two adjacent containers of kind may be
	// fused into one by concatenating their children.
	MergeContainers func(kind string) bool

	// RaisesLevel reports whether a container of kind opens a new nesting
	// level. When nil, every container does.
	RaisesLevel func(kind string) bool
}

func (c Catalogue) transparent(parent, child string) bool {
	return c.Transparent != nil && c.Transparent(parent, child)
}

func (c Catalogue) mergeLeaves(a, b *Leaf) (*Leaf, bool) {
	if c.MergeLeaves == nil {
		return nil, false
	}
	return c.MergeLeaves(a, b)
}

func (c Catalogue) mergeContainers(a, b *Container) bool {
	return a.Kind == b.Kind && c.MergeContainers != nil && c.MergeContainers(a.Kind)
}

func (c Catalogue) raisesLevel(kind string) bool {
	if c.RaisesLevel == nil {
		return true
	}
	return c.RaisesLevel(kind)
}

// StandardCatalogue describes a small document model: "content" is a plain
// grouping wrapper, text runs concatenate, emphasis runs fuse, and
// fractions, lists and list items open a new nesting level.
func StandardCatalogue() Catalogue {
	return Catalogue{
		Transparent: func(_, child string) bool {
			return child == KindContent
		},
		MergeLeaves: func(a, b *Leaf) (*Leaf, bool) {
			if a.Kind != KindText || b.Kind != KindText {
				return nil, false
			}
			return &Leaf{Kind: KindText, Value: a.Value + b.Value}, true
		},
		MergeContainers: func(kind string) bool {
			return kind == KindEmph || kind == KindStrong
		},
		RaisesLevel: func(kind string) bool {
			switch kind {
			case KindFraction, KindList, KindItem:
				return true
			}
			return false
		},
	}
}
