package macro

import (
	"fmt"
	"strings"
)

// Synopsis renders e as an indented tree, one node per line:
//
//	strong
//	├ text "Hello"
//	└ cvar #0 +1
func Synopsis(e Expr) string {
	var b strings.Builder
	writeSynopsis(&b, e, "", "")
	return strings.TrimSuffix(b.String(), "\n")
}

// SynopsisList renders a body under a synthetic "body" root.
func SynopsisList(list []Expr) string {
	var b strings.Builder
	b.WriteString("body\n")
	writeChildren(&b, list, "")
	return strings.TrimSuffix(b.String(), "\n")
}

func writeSynopsis(b *strings.Builder, e Expr, lead, indent string) {
	b.WriteString(lead)
	switch x := e.(type) {
	case *Leaf:
		fmt.Fprintf(b, "%s %q\n", x.Kind, x.Value)
	case *Container:
		b.WriteString(x.Kind + "\n")
		writeChildren(b, x.Children, indent)
	case *Variable:
		fmt.Fprintf(b, "var %s\n", x.Name)
	case *CompiledVariable:
		fmt.Fprintf(b, "cvar #%d +%d\n", x.Slot, x.LevelDelta)
	case *Apply:
		fmt.Fprintf(b, "apply %s\n", x.Template)
		for i, arg := range x.Args {
			argLead, argIndent := "├ ", "│ "
			if i == len(x.Args)-1 {
				argLead, argIndent = "└ ", "  "
			}
			fmt.Fprintf(b, "%s%sarg %d\n", indent, argLead, i)
			writeChildren(b, arg, indent+argIndent)
		}
	default:
		fmt.Fprintf(b, "? %T\n", e)
	}
}

func writeChildren(b *strings.Builder, list []Expr, indent string) {
	for i, c := range list {
		if i == len(list)-1 {
			writeSynopsis(b, c, indent+"└ ", indent+"  ")
		} else {
			writeSynopsis(b, c, indent+"├ ", indent+"│ ")
		}
	}
}
