package main

import (
	"fmt"

	"doctemplates/cmd/templc/macro"

	"github.com/spf13/cobra"
)

var flagArgs []string

var expandCmd = &cobra.Command{
	Use:   "expand <template> [--arg text]...",
	Short: "Instantiate a compiled template with text arguments",
	Long: `Instantiate a compiled template. Each --arg fills the next slot with a
single text leaf; the expanded body is printed as a tree synopsis.`,
	Example:           "  " + appName + " expand greet --arg world",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTemplateNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := load(flagFiles, traceWriter())
		if err != nil {
			return err
		}
		out, err := expand(ws, args[0], flagArgs)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	expandCmd.Flags().StringArrayVar(&flagArgs, "arg", nil, "text argument for the next slot (repeatable)")
}

func expand(ws *workspace, name string, raw []string) (string, error) {
	c, err := ws.lookup(name)
	if err != nil {
		return "", err
	}
	body, err := c.Instantiate(textArgs(raw))
	if err != nil {
		return "", err
	}
	return macro.SynopsisList(body), nil
}

// textArgs turns each raw string into a one-leaf argument.
func textArgs(raw []string) [][]macro.Expr {
	args := make([][]macro.Expr, len(raw))
	for i, s := range raw {
		args[i] = []macro.Expr{macro.Text(s)}
	}
	return args
}
