package macro

import "fmt"

// Instantiate returns a fresh copy of the body with every parameter
// occurrence replaced by an "argument" container holding a copy of the
// matching argument list. Occurrences are located through the use table, so
// the body is never searched.
func (c *CompiledTemplate) Instantiate(args [][]Expr) ([]Expr, error) {
	if len(args) != c.paramCount {
		return nil, &Error{
			Phase: PhaseInstantiate, Kind: ErrArgumentCount, Template: c.name,
			Detail: fmt.Sprintf("want %d, got %d", c.paramCount, len(args)),
		}
	}
	body := CloneList(c.body)
	for slot, paths := range c.usePaths {
		for _, p := range paths {
			arg := &Container{Kind: KindArgument, Children: CloneList(args[slot])}
			if !replaceAt(body, p, arg) {
				return nil, internalf(PhaseInstantiate, c.name, "stale use path %v", p)
			}
		}
	}
	return body, nil
}

// replaceAt overwrites the node at path. Paths of other nodes stay valid
// because the replacement occupies exactly one position.
func replaceAt(body []Expr, path TreePath, e Expr) bool {
	if len(path) == 0 {
		return false
	}
	list := body
	for _, idx := range path[:len(path)-1] {
		if idx < 0 || idx >= len(list) {
			return false
		}
		c, ok := list[idx].(*Container)
		if !ok {
			return false
		}
		list = c.Children
	}
	last := path[len(path)-1]
	if last < 0 || last >= len(list) {
		return false
	}
	list[last] = e
	return true
}
