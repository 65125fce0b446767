package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"doctemplates/cmd/templc/macro"
	"doctemplates/cmd/templc/macroyaml"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/cobra"
)

var (
	flagOutput string
	flagStats  bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile all loaded templates and print the result",
	Long: `Compile every loaded template file as one set and print the compiled
templates sorted by name, as a tree synopsis (default) or as YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagOutput != "synopsis" && flagOutput != "yaml" {
			return fmt.Errorf("unknown output format %q (want synopsis or yaml)", flagOutput)
		}
		inputs, err := readSources(flagFiles)
		if err != nil {
			return err
		}

		start := time.Now()
		table, err := macroyaml.BuildMany(newEngine(traceWriter()), inputs...)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		if err := writeTable(cmd.OutOrStdout(), table, flagOutput); err != nil {
			return err
		}
		if flagStats {
			printStats(cmd.ErrOrStderr(), len(table), elapsed)
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&flagOutput, "output", "o", "synopsis", "output format: synopsis or yaml")
	compileCmd.Flags().BoolVar(&flagStats, "stats", false, "report compile time and process memory on stderr")
}

func writeTable(w io.Writer, table macro.Table, format string) error {
	if format == "yaml" {
		out, err := macroyaml.EncodeTable(table)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	for i, name := range table.Names() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, renderDetail(table[name], macro.Template{}))
	}
	return nil
}

// printStats reports resource usage of the current process. Probe failures
// are reported inline rather than failing the command.
func printStats(w io.Writer, templates int, elapsed time.Duration) {
	fmt.Fprintf(w, "templates=%d elapsed=%s", templates, elapsed.Round(time.Microsecond))
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		fmt.Fprintf(w, " stats=unavailable (%v)\n", err)
		return
	}
	if mem, err := p.MemoryInfo(); err == nil {
		fmt.Fprintf(w, " rss=%.1fMiB", float64(mem.RSS)/(1<<20))
	}
	if cpu, err := p.CPUPercent(); err == nil {
		fmt.Fprintf(w, " cpu=%.1f%%", cpu)
	}
	fmt.Fprintln(w)
}
