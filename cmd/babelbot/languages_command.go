package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nadzzz/babelbot/internal/language"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			speech := cfg.SpeechSet()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tNATIVE\tSPEECH")
			for _, code := range cfg.SupportedSet().Codes() {
				voiced := "-"
				if cfg.TTS.Enabled && speech.Contains(code) {
					voiced = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", code, language.EnglishName(code), language.NativeName(code), voiced)
			}
			return w.Flush()
		},
	}
}
