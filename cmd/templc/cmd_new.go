package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"doctemplates/cmd/templc/macro"
	"doctemplates/cmd/templc/macroyaml"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagNewOutput string

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold a new template file interactively",
	Long: `Ask for a template name, its parameters and an optional wrapping
container, then write a template file that uses every parameter once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			name   string
			params string
			kind   string
		)
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Template name").
					Value(&name).
					Validate(validateIdentifier),
				huh.NewInput().
					Title("Parameters").
					Description("Separated by spaces or commas.").
					Value(&params).
					Validate(func(s string) error {
						_, err := parseParams(s)
						return err
					}),
				huh.NewSelect[string]().
					Title("Wrap the body in").
					Options(
						huh.NewOption("nothing", ""),
						huh.NewOption(macro.KindEmph, macro.KindEmph),
						huh.NewOption(macro.KindStrong, macro.KindStrong),
						huh.NewOption(macro.KindFraction, macro.KindFraction),
						huh.NewOption(macro.KindList, macro.KindList),
					).
					Value(&kind),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return errors.New("aborted")
			}
			return err
		}

		t, err := skeleton(name, params, kind)
		if err != nil {
			return err
		}
		out, err := macroyaml.EncodeTemplates([]macro.Template{t})
		if err != nil {
			return err
		}
		if flagNewOutput == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(flagNewOutput, out, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", flagNewOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", flagNewOutput)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&flagNewOutput, "output", "", "write the template to this file instead of stdout")
}

func validateIdentifier(s string) error {
	if s == "" {
		return errors.New("name must not be empty")
	}
	if strings.ContainsAny(s, " \t\n,:") {
		return fmt.Errorf("%q must not contain spaces, commas or colons", s)
	}
	return nil
}

// parseParams splits a parameter list on spaces and commas and rejects
// repeated names.
func parseParams(s string) ([]macro.Identifier, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	seen := make(map[string]bool, len(fields))
	var out []macro.Identifier
	for _, f := range fields {
		if err := validateIdentifier(f); err != nil {
			return nil, err
		}
		if seen[f] {
			return nil, fmt.Errorf("parameter %q listed twice", f)
		}
		seen[f] = true
		out = append(out, macro.Identifier(f))
	}
	return out, nil
}

// skeleton builds a template whose body references each parameter once, in
// order, optionally wrapped in a single container of the given kind.
func skeleton(name, params, kind string) (macro.Template, error) {
	if err := validateIdentifier(name); err != nil {
		return macro.Template{}, err
	}
	ps, err := parseParams(params)
	if err != nil {
		return macro.Template{}, err
	}
	body := make([]macro.Expr, 0, len(ps))
	for _, p := range ps {
		body = append(body, macro.Var(p))
	}
	if kind != "" {
		body = []macro.Expr{macro.Wrap(kind, body...)}
	}
	t := macro.Template{Name: macro.Identifier(name), Params: ps, Body: body}

	// The skeleton must compile on its own.
	if _, err := newEngine(nil).CompileTemplate(t); err != nil {
		return macro.Template{}, err
	}
	return t, nil
}
