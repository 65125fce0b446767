package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List compiled templates with their slot and level information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := load(flagFiles, traceWriter())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderList(summarize(ws.table)))
		return nil
	},
}
