package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagFiles   []string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   appName + " [command]",
	Short: "Compile and inspect document templates",
	Long: appName + ` compiles parameterized document templates: calls between templates
are inlined, bodies are normalized and parameters become numbered slots.

Templates are read from ~/.config/` + appName + `/templates/*.yml, from the
colon-separated list in $` + envTemplates + `, and from every --file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// addSourceFlags registers the flags every command uses to locate templates.
func addSourceFlags(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&flagFiles, "file", "f", nil,
		"template YAML file (repeatable; default: ~/.config/"+appName+"/templates/*.yml)")
	fs.BoolVarP(&flagVerbose, "verbose", "v", false,
		"print one line per compilation pass on stderr")
}

// traceWriter returns the pass trace destination, or nil when --verbose is off.
func traceWriter() io.Writer {
	if !flagVerbose {
		return nil
	}
	return os.Stderr
}

// completeTemplateNames offers compiled template names as the first argument.
func completeTemplateNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ws, err := load(flagFiles, nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var suggestions []string
	for _, name := range ws.table.Names() {
		if strings.HasPrefix(string(name), toComplete) {
			suggestions = append(suggestions, string(name))
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
