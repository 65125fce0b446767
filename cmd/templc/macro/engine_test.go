package macro

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func mustContain(t *testing.T, got string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(got, sub) {
			t.Fatalf("expected %q to contain %q", got, sub)
		}
	}
}

func requireCompileOK(t *testing.T, cat Catalogue, templates ...Template) Table {
	t.Helper()
	table, err := NewEngine(cat).Compile(templates)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if len(table) != len(templates) {
		t.Fatalf("expected %d compiled templates, got %d", len(templates), len(table))
	}
	return table
}

func requireCompileErr(t *testing.T, kind error, templates ...Template) *Error {
	t.Helper()
	table, err := NewEngine(StandardCatalogue()).Compile(templates)
	if err == nil {
		t.Fatalf("expected %v, got success", kind)
	}
	if table != nil {
		t.Fatalf("expected no output on failure, got %d templates", len(table))
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	return cerr
}

func atom(s string) *Leaf { return &Leaf{Kind: "atom", Value: s} }

// A small document library exercising nested calls, calls inside arguments,
// unused and repeated parameters.
func library() []Template {
	return []Template{
		{Name: "greet", Body: []Expr{Text("Hello, "), Call("bold", []Expr{Text("world")}), Text("!")}},
		{Name: "bold", Params: []Identifier{"x"}, Body: []Expr{Wrap(KindStrong, Var("x"))}},
		{Name: "half", Params: []Identifier{"n"}, Body: []Expr{
			Wrap(KindFraction, Wrap("num", Var("n")), Wrap("denom", Text("2"))),
		}},
		{Name: "quarter", Params: []Identifier{"n"}, Body: []Expr{
			Call("half", []Expr{Call("half", []Expr{Var("n")})}),
		}},
		{Name: "pair", Params: []Identifier{"a", "b", "unused"}, Body: []Expr{
			Text("("), Var("a"), Text(", "), Var("b"), Text(")"), Var("a"),
		}},
		{Name: "emphPair", Params: []Identifier{"x"}, Body: []Expr{
			Call("pair", []Expr{Wrap(KindEmph, Var("x"))}, []Expr{Call("bold", []Expr{Var("x")})}, nil),
		}},
	}
}

func TestEngine_SubstitutionCorrectness(t *testing.T) {
	table := requireCompileOK(t, Catalogue{},
		Template{Name: "bold", Params: []Identifier{"x"}, Body: []Expr{Wrap("box", Var("x"))}},
		Template{Name: "greet", Body: []Expr{Text("Hello, "), Call("bold", []Expr{Text("world")})}},
	)

	want := []Expr{Text("Hello, "), Wrap("box", Text("world"))}
	if got := table["greet"].Body(); !reflect.DeepEqual(got, want) {
		t.Fatalf("greet body:\n%s\nwant:\n%s", SynopsisList(got), SynopsisList(want))
	}

	bold := table["bold"]
	if bold.ParamCount() != 1 {
		t.Errorf("bold params: want 1, got %d", bold.ParamCount())
	}
	if bold.NestedLevelDelta() != 1 {
		t.Errorf("bold level delta: want 1, got %d", bold.NestedLevelDelta())
	}
	wantPaths := map[int][]TreePath{0: {{0, 0}}}
	if got := bold.UsePaths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("bold use paths: want %v, got %v", wantPaths, got)
	}
}

func TestEngine_SplicesMultiExpressionArguments(t *testing.T) {
	table := requireCompileOK(t, StandardCatalogue(),
		Template{Name: "one", Params: []Identifier{"x"}, Body: []Expr{atom("<"), Var("x"), atom(">")}},
		Template{Name: "use", Body: []Expr{Call("one", []Expr{atom("a"), atom("b")})}},
		Template{Name: "none", Body: []Expr{Call("one", nil)}},
	)

	if got, want := table["use"].Body(), []Expr{atom("<"), atom("a"), atom("b"), atom(">")}; !reflect.DeepEqual(got, want) {
		t.Fatalf("use body:\n%s", SynopsisList(got))
	}
	if got, want := table["none"].Body(), []Expr{atom("<"), atom(">")}; !reflect.DeepEqual(got, want) {
		t.Fatalf("none body:\n%s", SynopsisList(got))
	}
}

func TestEngine_LibraryInvariants(t *testing.T) {
	table := requireCompileOK(t, StandardCatalogue(), library()...)

	for _, name := range table.Names() {
		ct := table[name]
		t.Run(string(name), func(t *testing.T) {
			body := ct.Body()

			residual := Count(body, func(e Expr) bool {
				switch e.(type) {
				case *Apply, *Variable:
					return true
				}
				return false
			})
			if residual != 0 {
				t.Fatalf("%d Apply/Variable nodes left in\n%s", residual, SynopsisList(body))
			}

			occurrences := Count(body, func(e Expr) bool { _, ok := e.(*CompiledVariable); return ok })
			recorded := 0
			for slot, paths := range ct.UsePaths() {
				if slot < 0 || slot >= ct.ParamCount() {
					t.Fatalf("slot %d out of range", slot)
				}
				for _, p := range paths {
					recorded++
					e, ok := Lookup(body, p)
					if !ok {
						t.Fatalf("path %v does not resolve", p)
					}
					cv, ok := e.(*CompiledVariable)
					if !ok || cv.Slot != slot {
						t.Fatalf("path %v lands on %#v, want slot %d", p, e, slot)
					}
				}
			}
			if recorded != occurrences {
				t.Fatalf("use table records %d occurrences, body has %d", recorded, occurrences)
			}
		})
	}
}

func TestEngine_LibraryShapes(t *testing.T) {
	table := requireCompileOK(t, StandardCatalogue(), library()...)

	t.Run("greet merges text around the expansion", func(t *testing.T) {
		got := SynopsisList(table["greet"].Body())
		want := `body
├ text "Hello, "
├ strong
│ └ text "world"
└ text "!"`
		if got != want {
			t.Fatalf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("quarter nests two fractions", func(t *testing.T) {
		ct := table["quarter"]
		got := SynopsisList(ct.Body())
		want := `body
└ fraction
  ├ num
  │ └ fraction
  │   ├ num
  │   │ └ cvar #0 +2
  │   └ denom
  │     └ text "2"
  └ denom
    └ text "2"`
		if got != want {
			t.Fatalf("got:\n%s\nwant:\n%s", got, want)
		}
		if ct.NestedLevelDelta() != 2 {
			t.Errorf("level delta: want 2, got %d", ct.NestedLevelDelta())
		}
	})

	t.Run("pair leaves the unused slot out of the use table", func(t *testing.T) {
		ct := table["pair"]
		if ct.ParamCount() != 3 {
			t.Fatalf("params: want 3, got %d", ct.ParamCount())
		}
		want := map[int][]TreePath{0: {{1}, {5}}, 1: {{3}}}
		if got := ct.UsePaths(); !reflect.DeepEqual(got, want) {
			t.Fatalf("use paths: want %v, got %v", want, got)
		}
	})

	t.Run("emphPair resolves variables passed through calls", func(t *testing.T) {
		ct := table["emphPair"]
		want := map[int][]TreePath{0: {{1, 0}, {3, 0}, {5, 0}}}
		if got := ct.UsePaths(); !reflect.DeepEqual(got, want) {
			t.Fatalf("use paths: want %v, got %v\n%s", want, got, SynopsisList(ct.Body()))
		}
	})
}

func TestEngine_Idempotent(t *testing.T) {
	first := requireCompileOK(t, StandardCatalogue(), library()...)
	second := requireCompileOK(t, StandardCatalogue(), library()...)
	for _, name := range first.Names() {
		if !reflect.DeepEqual(first[name].Body(), second[name].Body()) {
			t.Errorf("%s: bodies differ between runs", name)
		}
		if !reflect.DeepEqual(first[name].UsePaths(), second[name].UsePaths()) {
			t.Errorf("%s: use paths differ between runs", name)
		}
	}
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	input := library()
	snapshot := make([]string, len(input))
	for i, tmpl := range input {
		snapshot[i] = SynopsisList(tmpl.Body)
	}
	requireCompileOK(t, StandardCatalogue(), input...)
	for i, tmpl := range input {
		if got := SynopsisList(tmpl.Body); got != snapshot[i] {
			t.Fatalf("%s was modified:\n%s", tmpl.Name, got)
		}
	}
}

func TestEngine_Errors(t *testing.T) {
	t.Run("cycle A -> B -> A", func(t *testing.T) {
		err := requireCompileErr(t, ErrCyclicDependency,
			Template{Name: "A", Body: []Expr{Call("B")}},
			Template{Name: "B", Body: []Expr{Call("A")}},
		)
		mustContain(t, err.Error(), "phase=sort", "A -> B -> A")
	})

	t.Run("self recursion", func(t *testing.T) {
		err := requireCompileErr(t, ErrCyclicDependency,
			Template{Name: "A", Params: []Identifier{"x"}, Body: []Expr{Wrap(KindEmph, Call("A", []Expr{Var("x")}))}},
		)
		if !reflect.DeepEqual(err.Cycle, []Identifier{"A", "A"}) {
			t.Fatalf("cycle: got %v", err.Cycle)
		}
	})

	t.Run("dangling call names caller and callee", func(t *testing.T) {
		err := requireCompileErr(t, ErrDanglingCall,
			Template{Name: "caller", Body: []Expr{Text("x"), Call("nonexistent")}},
		)
		mustContain(t, err.Error(), "phase=dangling", "caller", "nonexistent")
		if err.Template != "caller" || err.Name != "nonexistent" {
			t.Fatalf("got template=%s name=%s", err.Template, err.Name)
		}
	})

	t.Run("dangling call inside argument", func(t *testing.T) {
		requireCompileErr(t, ErrDanglingCall,
			Template{Name: "id", Params: []Identifier{"x"}, Body: []Expr{Var("x")}},
			Template{Name: "caller", Body: []Expr{Call("id", []Expr{Call("missing")})}},
		)
	})

	t.Run("dangling call suggests a close name", func(t *testing.T) {
		err := requireCompileErr(t, ErrDanglingCall,
			Template{Name: "heading", Body: []Expr{Text("h")}},
			Template{Name: "caller", Body: []Expr{Call("headin")}},
		)
		if err.Hint != "heading" {
			t.Fatalf("hint: want %q, got %q", "heading", err.Hint)
		}
		mustContain(t, err.Error(), `did you mean "heading"`)
	})

	t.Run("duplicate parameter wins over every later check", func(t *testing.T) {
		err := requireCompileErr(t, ErrDuplicateParam,
			Template{Name: "A", Params: []Identifier{"x", "x"}, Body: []Expr{Call("A"), Call("nonexistent")}},
		)
		mustContain(t, err.Error(), "phase=wellformed", "template=A", "duplicate parameter: x")
	})

	t.Run("unbound variable is checked before calls", func(t *testing.T) {
		err := requireCompileErr(t, ErrUnboundVariable,
			Template{Name: "A", Params: []Identifier{"x"}, Body: []Expr{Call("nonexistent", []Expr{Var("y")})}},
		)
		if err.Name != "y" {
			t.Fatalf("name: want y, got %s", err.Name)
		}
	})

	t.Run("variables do not leak across templates", func(t *testing.T) {
		requireCompileErr(t, ErrUnboundVariable,
			Template{Name: "A", Params: []Identifier{"x"}, Body: []Expr{Var("x")}},
			Template{Name: "B", Body: []Expr{Var("x")}},
		)
	})

	t.Run("duplicate template name", func(t *testing.T) {
		requireCompileErr(t, ErrDuplicateTemplate,
			Template{Name: "A"},
			Template{Name: "A"},
		)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		err := requireCompileErr(t, ErrArityMismatch,
			Template{Name: "one", Params: []Identifier{"x"}, Body: []Expr{Var("x")}},
			Template{Name: "caller", Body: []Expr{Call("one")}},
		)
		mustContain(t, err.Error(), "want 1, got 0")
	})

	t.Run("user errors are not internal", func(t *testing.T) {
		err := requireCompileErr(t, ErrDanglingCall, Template{Name: "a", Body: []Expr{Call("b")}})
		if IsInternal(err) {
			t.Fatal("dangling call reported as internal")
		}
	})
}

func TestEngine_CompileTemplate(t *testing.T) {
	eng := NewEngine(StandardCatalogue())

	ct, err := eng.CompileTemplate(Template{Name: "bold", Params: []Identifier{"x"}, Body: []Expr{Wrap(KindStrong, Var("x"))}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct.Name() != "bold" || ct.ParamCount() != 1 {
		t.Fatalf("got %s/%d", ct.Name(), ct.ParamCount())
	}

	_, err = eng.CompileTemplate(Template{Name: "greet", Body: []Expr{Call("bold", []Expr{Text("w")})}})
	if !errors.Is(err, ErrDanglingCall) {
		t.Fatalf("standalone template calling another: want ErrDanglingCall, got %v", err)
	}
}

func TestEngine_Trace(t *testing.T) {
	var buf bytes.Buffer
	eng := NewEngine(StandardCatalogue(), WithTrace(&buf))
	if _, err := eng.Compile(library()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	mustContain(t, out, "phase=wellformed templates=6", "phase=inline", "phase=usepaths templates=6")
	if n := strings.Count(out, "\n"); n != 10 {
		t.Fatalf("expected 10 trace lines, got %d:\n%s", n, out)
	}
}
