package macroyaml

import (
	"fmt"
	"sort"
	"strings"

	"doctemplates/cmd/templc/macro"

	"gopkg.in/yaml.v3"
)

// Document is the Go-level representation of a parsed template file.
//
// Two YAML forms are supported:
//   - Mapping form (preferred): a mapping with a "templates" key.
//   - Shorthand form: a bare sequence, interpreted as the template list.
type Document struct {
	Templates []macro.Template
}

// ---- Internal YAML parsing structs ----------------------------------------

// yamlDocument is the internal YAML parsing struct for a file in mapping form.
type yamlDocument struct {
	Templates []yamlTemplate `yaml:"templates"`
}

// yamlTemplate keeps the body as raw nodes: expressions are polymorphic and
// are decoded by hand in decodeExpr.
type yamlTemplate struct {
	Name   string      `yaml:"name"`
	Params []string    `yaml:"params,omitempty"`
	Body   []yaml.Node `yaml:"body"`
}

// Expression keys. Exactly one discriminating key may appear per mapping.
const (
	keyText      = "text"
	keyLeaf      = "leaf"
	keyValue     = "value"
	keyContainer = "container"
	keyChildren  = "children"
	keyVar       = "var"
	keyApply     = "apply"
	keyArgs      = "args"
)

// companions lists, per discriminating key, the other keys allowed next to it.
var companions = map[string][]string{
	keyText:      nil,
	keyLeaf:      {keyValue},
	keyContainer: {keyChildren},
	keyVar:       nil,
	keyApply:     {keyArgs},
}

// ---- Parse -----------------------------------------------------------------

// Parse parses a YAML template file in either mapping or shorthand form.
func Parse(in []byte) (Document, error) {
	var docNode yaml.Node
	if err := yaml.Unmarshal(in, &docNode); err != nil {
		return Document{}, err
	}
	if len(docNode.Content) == 0 {
		return Document{}, fmt.Errorf("phase=parse path=<doc>: empty YAML")
	}
	root := docNode.Content[0]

	var raw []yamlTemplate
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return Document{}, err
		}
	case yaml.MappingNode:
		var yd yamlDocument
		if err := root.Decode(&yd); err != nil {
			return Document{}, err
		}
		raw = yd.Templates
	default:
		return Document{}, fmt.Errorf("phase=parse path=<doc>: unexpected YAML root kind: %d", root.Kind)
	}

	templates, err := convertTemplates(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{Templates: templates}, nil
}

// ---- Convert: yaml types → macro types ------------------------------------

func convertTemplates(raw []yamlTemplate) ([]macro.Template, error) {
	out := make([]macro.Template, 0, len(raw))
	for i, yt := range raw {
		path := fmt.Sprintf("templates[%d]", i)
		if yt.Name == "" {
			return nil, fmt.Errorf("phase=parse path=%s: template is missing a name", path)
		}
		path = yt.Name
		t := macro.Template{Name: macro.Identifier(yt.Name)}
		for j, p := range yt.Params {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("phase=parse path=%s.params[%d]: parameter name must not be empty", path, j)
			}
			t.Params = append(t.Params, macro.Identifier(p))
		}
		body, err := decodeList(yt.Body, path+".body")
		if err != nil {
			return nil, err
		}
		t.Body = body
		out = append(out, t)
	}
	return out, nil
}

func decodeList(nodes []yaml.Node, path string) ([]macro.Expr, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]macro.Expr, len(nodes))
	for i := range nodes {
		e, err := decodeExpr(&nodes[i], fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeSequence(node *yaml.Node, path string) ([]macro.Expr, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make([]macro.Expr, 0, len(node.Content))
		for i, c := range node.Content {
			e, err := decodeExpr(c, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("phase=parse path=%s: expected a list of expressions, got YAML kind %d", path, node.Kind)
}

// decodeExpr converts one expression node. A bare scalar is shorthand for a
// text leaf.
func decodeExpr(node *yaml.Node, path string) (macro.Expr, error) {
	if node.Kind == yaml.ScalarNode {
		return macro.Text(node.Value), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("phase=parse path=%s: expression must be a mapping or a scalar, got YAML kind %d", path, node.Kind)
	}

	// MappingNode.Content is a flat list of alternating key / value nodes.
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = node.Content[i+1]
	}

	disc := ""
	for key := range companions {
		if _, ok := fields[key]; !ok {
			continue
		}
		if disc != "" {
			return nil, fmt.Errorf("phase=parse path=%s: expression cannot combine %s", path, strings.Join(presentKinds(fields), " and "))
		}
		disc = key
	}
	if disc == "" {
		return nil, fmt.Errorf("phase=parse path=%s: expression must define exactly one of: text, leaf, container, var, or apply", path)
	}
	for key := range fields {
		if key != disc && !allowed(disc, key) {
			return nil, fmt.Errorf("phase=parse path=%s: unknown key %q for %s expression", path, key, disc)
		}
	}

	head := fields[disc]
	if head.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("phase=parse path=%s: %s must be a scalar", path, disc)
	}

	switch disc {
	case keyText:
		return macro.Text(head.Value), nil

	case keyLeaf:
		leaf := &macro.Leaf{Kind: head.Value}
		if v, ok := fields[keyValue]; ok {
			leaf.Value = v.Value
		}
		return leaf, nil

	case keyContainer:
		c := &macro.Container{Kind: head.Value}
		if ch, ok := fields[keyChildren]; ok {
			children, err := decodeSequence(ch, path+".children")
			if err != nil {
				return nil, err
			}
			c.Children = children
		}
		return c, nil

	case keyVar:
		if head.Value == "" {
			return nil, fmt.Errorf("phase=parse path=%s: var name must not be empty", path)
		}
		return macro.Var(macro.Identifier(head.Value)), nil

	default: // keyApply
		if head.Value == "" {
			return nil, fmt.Errorf("phase=parse path=%s: apply needs a template name", path)
		}
		apply := &macro.Apply{Template: macro.Identifier(head.Value)}
		if a, ok := fields[keyArgs]; ok {
			if a.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("phase=parse path=%s.args: expected a list of argument lists, got YAML kind %d", path, a.Kind)
			}
			for i, argNode := range a.Content {
				arg, err := decodeSequence(argNode, fmt.Sprintf("%s.args[%d]", path, i))
				if err != nil {
					return nil, err
				}
				apply.Args = append(apply.Args, arg)
			}
		}
		return apply, nil
	}
}

func allowed(disc, key string) bool {
	for _, k := range companions[disc] {
		if k == key {
			return true
		}
	}
	return false
}

// presentKinds returns the discriminating keys present in fields, sorted,
// for error messages.
func presentKinds(fields map[string]*yaml.Node) []string {
	var out []string
	for key := range companions {
		if _, ok := fields[key]; ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// ---- Public build functions ------------------------------------------------

// NewRegistryFromDocuments collects the templates of all provided documents.
// Returns an error if the same template name appears twice.
func NewRegistryFromDocuments(docs ...Document) (*macro.Registry, error) {
	reg := macro.NewRegistry()
	for _, doc := range docs {
		for _, t := range doc.Templates {
			if err := reg.Register(t); err != nil {
				return nil, fmt.Errorf("phase=parse path=<doc>: register template %q: %w", t.Name, err)
			}
		}
	}
	return reg, nil
}

// ParseMany parses several files and merges their templates, in order.
func ParseMany(inputs ...[]byte) (*macro.Registry, error) {
	docs := make([]Document, 0, len(inputs))
	for _, in := range inputs {
		doc, err := Parse(in)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return NewRegistryFromDocuments(docs...)
}

// BuildMany parses several files and compiles all their templates together.
func BuildMany(eng *macro.Engine, inputs ...[]byte) (macro.Table, error) {
	reg, err := ParseMany(inputs...)
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("phase=parse path=<doc>: missing or empty 'templates'")
	}
	return eng.Compile(reg.Templates())
}
