package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"doctemplates/cmd/templc/macro"

	tea "github.com/charmbracelet/bubbletea"
)

const testLibrary = `
templates:
  - name: bold
    params: [x]
    body:
      - container: strong
        children:
          - var: x
  - name: greet
    params: [who]
    body:
      - "Hello, "
      - apply: bold
        args:
          - - var: who
      - "!"
  - name: half
    params: [n]
    body:
      - container: fraction
        children:
          - var: n
          - "2"
`

func testWorkspace(t *testing.T, yml string) *workspace {
	t.Helper()
	ws, err := compileSources([][]byte{[]byte(yml)}, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return ws
}

func mustContain(t *testing.T, s string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			t.Errorf("%q does not contain %q", s, sub)
		}
	}
}

func TestExitCode(t *testing.T) {
	internal := &macro.Error{Phase: macro.PhaseUsePaths, Kind: macro.ErrInternal, Template: "t"}
	if got := exitCode(fmt.Errorf("compile: %w", internal)); got != 70 {
		t.Errorf("internal error: got exit code %d", got)
	}
	dangling := &macro.Error{Phase: macro.PhaseDangling, Kind: macro.ErrDanglingCall, Template: "t", Name: "u"}
	if got := exitCode(dangling); got != 1 {
		t.Errorf("input error: got exit code %d", got)
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestRenderDetail(t *testing.T) {
	ws := testWorkspace(t, testLibrary)

	tests := []struct {
		name string
		want string
	}{
		{"greet", `greet  params=1  level=+0
body
├ text "Hello, "
├ strong
│ └ cvar #0 +0
└ text "!"
use paths
  #0 who  [1 0]`},
		{"half", `half  params=1  level=+1
body
└ fraction
  ├ cvar #0 +1
  └ text "2"
use paths
  #0 n  [0 0]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ws.lookup(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if got := renderDetail(c, ws.source(c.Name())); got != tt.want {
				t.Fatalf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	ws := testWorkspace(t, testLibrary)
	rows := summarize(ws.table)
	want := []templateSummary{
		{name: "bold", params: 1, levelDelta: 0, uses: 1},
		{name: "greet", params: 1, levelDelta: 0, uses: 1},
		{name: "half", params: 1, levelDelta: 1, uses: 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows", len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, rows[i], want[i])
		}
	}

	out := renderList(rows)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("want header and 3 rows, got:\n%s", out)
	}
	mustContain(t, lines[0], "NAME", "PARAMS", "LEVEL", "USES")
	mustContain(t, lines[3], "half", "+1")

	if got := renderList(nil); got != "no templates found" {
		t.Fatalf("empty list: %q", got)
	}
}

func TestWriteTable(t *testing.T) {
	ws := testWorkspace(t, testLibrary)

	var synopsis bytes.Buffer
	if err := writeTable(&synopsis, ws.table, "synopsis"); err != nil {
		t.Fatal(err)
	}
	mustContain(t, synopsis.String(), "bold  params=1  level=+0", "half  params=1  level=+1", "  #0  [0 0]")

	var yml bytes.Buffer
	if err := writeTable(&yml, ws.table, "yaml"); err != nil {
		t.Fatal(err)
	}
	mustContain(t, yml.String(), "compiled:", "name: half", "level_delta: 1", "cvar: 0", "level: 1")
}

// ---------------------------------------------------------------------------
// expand / new
// ---------------------------------------------------------------------------

func TestExpand(t *testing.T) {
	ws := testWorkspace(t, testLibrary)

	got, err := expand(ws, "greet", []string{"world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `body
├ text "Hello, "
├ strong
│ └ argument
│   └ text "world"
└ text "!"`
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	if _, err := expand(ws, "greet", nil); !errors.Is(err, macro.ErrArgumentCount) {
		t.Fatalf("want ErrArgumentCount, got %v", err)
	}

	_, err = expand(ws, "nope", nil)
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
	mustContain(t, err.Error(), `template "nope" not found`, "available: bold, greet, half")
}

func TestSkeleton(t *testing.T) {
	t.Run("wrapped parameters", func(t *testing.T) {
		tmpl, err := skeleton("pair", "a, b", macro.KindStrong)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `body
└ strong
  ├ var a
  └ var b`
		if got := macro.SynopsisList(tmpl.Body); got != want {
			t.Fatalf("got:\n%s\nwant:\n%s", got, want)
		}
		if len(tmpl.Params) != 2 || tmpl.Params[1] != "b" {
			t.Fatalf("params: %v", tmpl.Params)
		}
	})

	t.Run("no parameters", func(t *testing.T) {
		tmpl, err := skeleton("rule", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tmpl.Params) != 0 || len(tmpl.Body) != 0 {
			t.Fatalf("unexpected template: %+v", tmpl)
		}
	})

	errCases := []struct {
		name, tmpl, params, want string
	}{
		{"empty name", "", "a", "must not be empty"},
		{"space in name", "two words", "", "must not contain spaces"},
		{"repeated parameter", "t", "a b a", `parameter "a" listed twice`},
		{"colon in parameter", "t", "a:b", "must not contain"},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := skeleton(tc.tmpl, tc.params, "")
			if err == nil {
				t.Fatal("expected error")
			}
			mustContain(t, err.Error(), tc.want)
		})
	}
}

// ---------------------------------------------------------------------------
// repl
// ---------------------------------------------------------------------------

func TestReplEval(t *testing.T) {
	s := &replSession{
		ws: testWorkspace(t, testLibrary),
		reload: func() (*workspace, error) {
			return compileSources([][]byte{[]byte("- name: only\n  body: [x]\n")}, nil)
		},
	}

	run := func(line string) (string, bool, error) {
		var out bytes.Buffer
		quit, err := s.eval(line, &out)
		return out.String(), quit, err
	}

	if out, _, err := run("list"); err != nil || !strings.Contains(out, "half") {
		t.Fatalf("list: (%q, %v)", out, err)
	}
	if out, _, err := run("paths greet"); err != nil || out != "#0 [1 0]\n" {
		t.Fatalf("paths: (%q, %v)", out, err)
	}
	if out, _, err := run("show half"); err != nil || !strings.Contains(out, "#0 n  [0 0]") {
		t.Fatalf("show: (%q, %v)", out, err)
	}
	if out, _, err := run("expand greet world"); err != nil || !strings.Contains(out, `text "world"`) {
		t.Fatalf("expand: (%q, %v)", out, err)
	}
	if out, quit, err := run("   "); out != "" || quit || err != nil {
		t.Fatalf("blank line: (%q, %v, %v)", out, quit, err)
	}

	if _, _, err := run("show"); err == nil || err.Error() != "show needs a template name" {
		t.Fatalf("show without name: %v", err)
	}
	if _, _, err := run("frobnicate"); err == nil || !strings.Contains(err.Error(), `unknown command "frobnicate"`) {
		t.Fatalf("unknown command: %v", err)
	}

	if out, _, err := run("reload"); err != nil || out != "1 templates\n" {
		t.Fatalf("reload: (%q, %v)", out, err)
	}
	if _, _, err := run("show greet"); err == nil {
		t.Fatal("greet should be gone after reload")
	}

	if _, quit, _ := run("quit"); !quit {
		t.Fatal("quit should end the session")
	}
}

// ---------------------------------------------------------------------------
// browse
// ---------------------------------------------------------------------------

func sendKey(t *testing.T, m browseModel, msg tea.KeyMsg) (browseModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(browseModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return bm, cmd
}

func TestBrowseModel(t *testing.T) {
	reloadErr := errors.New("phase=parse path=<doc>: empty YAML")
	m := newBrowseModel(testWorkspace(t, testLibrary), func() (*workspace, error) {
		return nil, reloadErr
	})
	if m.selected != "bold" {
		t.Fatalf("initial selection: %q", m.selected)
	}

	m, _ = sendKey(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != "greet" {
		t.Fatalf("after down: %q", m.selected)
	}

	m, _ = sendKey(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusDetail || m.table.Focused() {
		t.Fatal("tab should move focus to the detail pane")
	}
	m, _ = sendKey(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != "greet" {
		t.Fatalf("table moved while detail pane had focus: %q", m.selected)
	}

	m, _ = sendKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.errMsg != reloadErr.Error() || len(m.ws.table) != 3 {
		t.Fatalf("failed reload should keep the table: errMsg=%q", m.errMsg)
	}
	mustContain(t, m.View(), "3 templates", "empty YAML")

	_, cmd := sendKey(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}
