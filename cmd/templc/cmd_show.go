package main

import (
	"errors"
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:               "show [template]",
	Short:             "Show a compiled template (pick one interactively when no name is given)",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTemplateNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := load(flagFiles, traceWriter())
		if err != nil {
			return err
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			name, err = pickTemplate(ws)
			if err != nil {
				return err
			}
		}

		c, err := ws.lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderDetail(c, ws.source(c.Name())))
		return nil
	},
}

// pickTemplate lets the user choose a template with go-fuzzyfinder, previewing
// the compiled body of the highlighted entry.
func pickTemplate(ws *workspace) (string, error) {
	names := ws.table.Names()
	if len(names) == 0 {
		return "", errors.New("no templates to choose from")
	}
	idx, err := fuzzyfinder.Find(
		names,
		func(i int) string {
			return string(names[i])
		},
		fuzzyfinder.WithPromptString("Select template: "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 {
				return ""
			}
			return renderDetail(ws.table[names[i]], ws.source(names[i]))
		}),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return "", errors.New("no template selected")
	}
	if err != nil {
		return "", err
	}
	return string(names[idx]), nil
}
