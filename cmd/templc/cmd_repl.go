package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"doctemplates/pkg/lib"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Inspect compiled templates from an interactive prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := load(flagFiles, traceWriter())
		if err != nil {
			return err
		}
		reload := func() (*workspace, error) { return load(flagFiles, nil) }
		return runRepl(&replSession{ws: ws, reload: reload})
	},
}

const replHelp = `commands:
  list                    list compiled templates
  show <name>             compiled body and use paths
  paths <name>            use paths only
  expand <name> [arg...]  instantiate with one text argument per word
  reload                  recompile the template files
  help                    this message
  quit                    leave`

// replSession is the state behind the prompt. ws is replaced on reload.
type replSession struct {
	ws     *workspace
	reload func() (*workspace, error)
}

func runRepl(s *replSession) error {
	names := func(string) []string {
		out := make([]string, 0, len(s.ws.table))
		for _, n := range s.ws.table.Names() {
			out = append(out, string(n))
		}
		return out
	}
	completer := readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("show", readline.PcItemDynamic(names)),
		readline.PcItem("paths", readline.PcItemDynamic(names)),
		readline.PcItem("expand", readline.PcItemDynamic(names)),
		readline.PcItem("reload"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)

	cfg := &readline.Config{
		Prompt:          appName + "> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	}
	if dir, err := resolveConfigDir(); err == nil {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			cfg.HistoryFile = filepath.Join(dir, "repl_history")
		}
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		quit, err := s.eval(line, rl.Stdout())
		if err != nil {
			lib.Report(rl.Stderr(), err)
		}
		if quit {
			return nil
		}
	}
}

// eval runs one prompt line and reports whether the session should end.
func (s *replSession) eval(line string, w io.Writer) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	needName := func() (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("%s needs a template name", cmd)
		}
		return args[0], nil
	}

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(w, replHelp)
	case "list":
		fmt.Fprintln(w, renderList(summarize(s.ws.table)))
	case "show":
		name, err := needName()
		if err != nil {
			return false, err
		}
		c, err := s.ws.lookup(name)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, renderDetail(c, s.ws.source(c.Name())))
	case "paths":
		name, err := needName()
		if err != nil {
			return false, err
		}
		c, err := s.ws.lookup(name)
		if err != nil {
			return false, err
		}
		paths := c.UsePaths()
		for slot := 0; slot < c.ParamCount(); slot++ {
			fmt.Fprintf(w, "#%d", slot)
			for _, p := range paths[slot] {
				fmt.Fprintf(w, " %v", []int(p))
			}
			fmt.Fprintln(w)
		}
	case "expand":
		name, err := needName()
		if err != nil {
			return false, err
		}
		out, err := expand(s.ws, name, args[1:])
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, out)
	case "reload":
		next, err := s.reload()
		if err != nil {
			return false, err
		}
		s.ws = next
		fmt.Fprintf(w, "%d templates\n", len(next.table))
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}
