package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/babelbot/internal/language"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var hint string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect <text...>",
		Short: "Detect the language of a text",
		Long:  "Runs the language arbitrator on the given text and explains which rule decided.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			arbiter, err := newArbiter(cfg)
			if err != nil {
				return err
			}

			d := arbiter.Explain(cmd.Context(), strings.Join(args, " "), hint)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}

			if d.OK {
				fmt.Fprintf(out, "%s (%s)\n", d.Language, language.EnglishName(d.Language))
			} else {
				fmt.Fprintln(out, "undetected")
			}
			fmt.Fprintf(out, "rule:      %s\n", d.Rule)
			if d.Primary != "" || d.Secondary != "" {
				fmt.Fprintf(out, "primary:   %s\n", valueOr(d.Primary, "-"))
				fmt.Fprintf(out, "secondary: %s\n", valueOr(d.Secondary, "-"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hint, "hint", "", "Language already known for the text (e.g. from speech recognition)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decision as JSON")
	return cmd
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
