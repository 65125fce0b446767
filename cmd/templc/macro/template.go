package macro

import "sort"

// Template is a named, parameterized fragment of document content as handed
// to the compiler. It is treated as immutable.
type Template struct {
	Name   Identifier
	Params []Identifier
	Body   []Expr
}

// paramIndex returns the slot of name in t.Params, or -1.
func (t Template) paramIndex(name Identifier) int {
	for i, p := range t.Params {
		if p == name {
			return i
		}
	}
	return -1
}

func (t Template) withBody(body []Expr) Template {
	t.Body = body
	return t
}

// CompiledTemplate is the output of the pipeline for one template.
// Its body holds no Apply and no Variable nodes, and every path stored in
// its use table resolves to a CompiledVariable of the matching slot.
// Values are never modified after compilation; accessors return copies.
type CompiledTemplate struct {
	name             Identifier
	paramCount       int
	body             []Expr
	usePaths         map[int][]TreePath
	nestedLevelDelta int
}

func (c *CompiledTemplate) Name() Identifier { return c.name }

func (c *CompiledTemplate) ParamCount() int { return c.paramCount }

// Body returns a deep copy of the compiled body.
func (c *CompiledTemplate) Body() []Expr { return CloneList(c.body) }

// UsePaths maps each slot that occurs in the body to the paths of its
// occurrences, in pre-order. Slots that never occur are absent.
func (c *CompiledTemplate) UsePaths() map[int][]TreePath {
	out := make(map[int][]TreePath, len(c.usePaths))
	for slot, paths := range c.usePaths {
		cp := make([]TreePath, len(paths))
		for i, p := range paths {
			cp[i] = append(TreePath(nil), p...)
		}
		out[slot] = cp
	}
	return out
}

// NestedLevelDelta is the deepest level delta of any parameter occurrence.
func (c *CompiledTemplate) NestedLevelDelta() int { return c.nestedLevelDelta }

// Table maps template names to their compiled form.
type Table map[Identifier]*CompiledTemplate

// Names returns the template names in lexical order.
func (t Table) Names() []Identifier {
	names := make([]Identifier, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
