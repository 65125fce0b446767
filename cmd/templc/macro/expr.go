package macro

// Identifier names a template or a template parameter.
type Identifier string

// Expr is the sealed interface for all nodes of an expression tree.
// Only the types in this file implement it.
// The unexported isExpr() method prevents external implementations.
type Expr interface {
	isExpr()
}

// Leaf is an opaque payload without children, e.g. a run of text.
// The pipeline only looks at Kind, and only to offer neighbouring leaves to
// the catalogue's merge rule.
type Leaf struct {
	Kind  string
	Value string
}

// Container owns an ordered list of children. Its Kind is carried through
// compilation untouched.
type Container struct {
	Kind     string
	Children []Expr
}

// Variable references a parameter of the enclosing template by name.
// It only exists before compilation.
type Variable struct {
	Name Identifier
}

// CompiledVariable is the positional form of Variable.
// Slot indexes the instantiation argument list. LevelDelta counts the
// level-raising containers between the body root and this occurrence.
type CompiledVariable struct {
	Slot       int
	LevelDelta int
}

// Apply calls a template. Args[i] is the expression list bound to the
// callee's i-th parameter and may be empty.
type Apply struct {
	Template Identifier
	Args     [][]Expr
}

func (*Leaf) isExpr()             {}
func (*Container) isExpr()        {}
func (*Variable) isExpr()         {}
func (*CompiledVariable) isExpr() {}
func (*Apply) isExpr()            {}

// Text returns a leaf of kind "text".
func Text(s string) *Leaf { return &Leaf{Kind: KindText, Value: s} }

// Wrap returns a container of the given kind.
func Wrap(kind string, children ...Expr) *Container {
	return &Container{Kind: kind, Children: children}
}

// Var returns a variable reference.
func Var(name Identifier) *Variable { return &Variable{Name: name} }

// Call returns an Apply node.
func Call(name Identifier, args ...[]Expr) *Apply {
	return &Apply{Template: name, Args: args}
}

// Clone returns a deep copy of e. The copy shares no nodes with e.
func Clone(e Expr) Expr {
	switch x := e.(type) {
	case *Leaf:
		c := *x
		return &c
	case *Container:
		return &Container{Kind: x.Kind, Children: CloneList(x.Children)}
	case *Variable:
		c := *x
		return &c
	case *CompiledVariable:
		c := *x
		return &c
	case *Apply:
		args := make([][]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = CloneList(a)
		}
		return &Apply{Template: x.Template, Args: args}
	default:
		return nil
	}
}

// CloneList deep-copies every expression in list.
// A nil list stays nil so that copies compare equal to their source.
func CloneList(list []Expr) []Expr {
	if list == nil {
		return nil
	}
	out := make([]Expr, len(list))
	for i, e := range list {
		out[i] = Clone(e)
	}
	return out
}

// Count returns the number of nodes in list, at any depth (Apply arguments
// included), for which pred holds.
func Count(list []Expr, pred func(Expr) bool) int {
	n := 0
	for _, e := range list {
		if pred(e) {
			n++
		}
		switch x := e.(type) {
		case *Container:
			n += Count(x.Children, pred)
		case *Apply:
			for _, a := range x.Args {
				n += Count(a, pred)
			}
		}
	}
	return n
}

// TreePath addresses a node inside a body: the first index selects the
// top-level expression, each following index selects a container child.
type TreePath []int

// Lookup follows path from the body root.
// The second return value is false if the path leaves the tree.
func Lookup(body []Expr, path TreePath) (Expr, bool) {
	if len(path) == 0 {
		return nil, false
	}
	list := body
	var cur Expr
	for i, idx := range path {
		if idx < 0 || idx >= len(list) {
			return nil, false
		}
		cur = list[idx]
		if i == len(path)-1 {
			break
		}
		c, ok := cur.(*Container)
		if !ok {
			return nil, false
		}
		list = c.Children
	}
	return cur, true
}

func (p TreePath) child(i int) TreePath {
	out := make(TreePath, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}
