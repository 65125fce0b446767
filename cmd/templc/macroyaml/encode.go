package macroyaml

import (
	"fmt"

	"doctemplates/cmd/templc/macro"

	"gopkg.in/yaml.v3"
)

// yamlExpr is the output shape of one expression. Field order fixes key order.
type yamlExpr struct {
	Text      *string      `yaml:"text,omitempty"`
	Leaf      string       `yaml:"leaf,omitempty"`
	Value     string       `yaml:"value,omitempty"`
	Container string       `yaml:"container,omitempty"`
	Children  []yamlExpr   `yaml:"children,omitempty"`
	Var       string       `yaml:"var,omitempty"`
	Apply     string       `yaml:"apply,omitempty"`
	Args      [][]yamlExpr `yaml:"args,omitempty"`
	CVar      *int         `yaml:"cvar,omitempty"`
	Level     *int         `yaml:"level,omitempty"`
}

type yamlSource struct {
	Name   string     `yaml:"name"`
	Params []string   `yaml:"params,omitempty"`
	Body   []yamlExpr `yaml:"body"`
}

type yamlCompiled struct {
	Name       string          `yaml:"name"`
	Params     int             `yaml:"params"`
	LevelDelta int             `yaml:"level_delta"`
	UsePaths   map[int][][]int `yaml:"use_paths,omitempty"`
	Body       []yamlExpr      `yaml:"body"`
}

// EncodeTemplates renders source templates in mapping form. The result
// parses back to the same templates.
func EncodeTemplates(templates []macro.Template) ([]byte, error) {
	out := struct {
		Templates []yamlSource `yaml:"templates"`
	}{}
	for _, t := range templates {
		body, err := encodeList(t.Body)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", t.Name, err)
		}
		src := yamlSource{Name: string(t.Name), Body: body}
		for _, p := range t.Params {
			src.Params = append(src.Params, string(p))
		}
		out.Templates = append(out.Templates, src)
	}
	return yaml.Marshal(out)
}

// EncodeTable renders a compiled table, sorted by template name.
func EncodeTable(table macro.Table) ([]byte, error) {
	out := struct {
		Compiled []yamlCompiled `yaml:"compiled"`
	}{}
	for _, name := range table.Names() {
		c, err := encodeCompiled(table[name])
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		out.Compiled = append(out.Compiled, c)
	}
	return yaml.Marshal(out)
}

// EncodeCompiled renders a single compiled template.
func EncodeCompiled(c *macro.CompiledTemplate) ([]byte, error) {
	yc, err := encodeCompiled(c)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", c.Name(), err)
	}
	return yaml.Marshal(yc)
}

func encodeCompiled(c *macro.CompiledTemplate) (yamlCompiled, error) {
	body, err := encodeList(c.Body())
	if err != nil {
		return yamlCompiled{}, err
	}
	yc := yamlCompiled{
		Name:       string(c.Name()),
		Params:     c.ParamCount(),
		LevelDelta: c.NestedLevelDelta(),
		Body:       body,
	}
	paths := c.UsePaths()
	if len(paths) > 0 {
		yc.UsePaths = make(map[int][][]int, len(paths))
		for slot, ps := range paths {
			for _, p := range ps {
				yc.UsePaths[slot] = append(yc.UsePaths[slot], []int(p))
			}
		}
	}
	return yc, nil
}

func encodeList(list []macro.Expr) ([]yamlExpr, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]yamlExpr, 0, len(list))
	for _, e := range list {
		ye, err := encodeExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, ye)
	}
	return out, nil
}

func encodeExpr(e macro.Expr) (yamlExpr, error) {
	switch v := e.(type) {
	case *macro.Leaf:
		if v.Kind == macro.KindText {
			s := v.Value
			return yamlExpr{Text: &s}, nil
		}
		return yamlExpr{Leaf: v.Kind, Value: v.Value}, nil
	case *macro.Container:
		children, err := encodeList(v.Children)
		if err != nil {
			return yamlExpr{}, err
		}
		return yamlExpr{Container: v.Kind, Children: children}, nil
	case *macro.Variable:
		return yamlExpr{Var: string(v.Name)}, nil
	case *macro.CompiledVariable:
		slot, level := v.Slot, v.LevelDelta
		return yamlExpr{CVar: &slot, Level: &level}, nil
	case *macro.Apply:
		ya := yamlExpr{Apply: string(v.Template)}
		for _, arg := range v.Args {
			ea, err := encodeList(arg)
			if err != nil {
				return yamlExpr{}, err
			}
			if ea == nil {
				ea = []yamlExpr{}
			}
			ya.Args = append(ya.Args, ea)
		}
		return ya, nil
	default:
		return yamlExpr{}, fmt.Errorf("unsupported expression %T", e)
	}
}
