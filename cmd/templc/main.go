package main

import (
	"doctemplates/cmd/templc/macro"
	"doctemplates/pkg/lib"
)

func main() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(replCmd)

	addSourceFlags(rootCmd.PersistentFlags())

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		lib.Exit(err, exitCode(err))
	}
}

// exitCode separates defects in the compiler from problems in the input.
func exitCode(err error) int {
	if macro.IsInternal(err) {
		return lib.ExitSoftware
	}
	return lib.ExitFailure
}
