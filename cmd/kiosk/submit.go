package main

import (
	"strings"

	"github.com/spf13/cobra"

	"last-snow/internal/language"
)

var submitLang string

var submitCmd = &cobra.Command{
	Use:   "submit [sentence...]",
	Short: "Record one sentence",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := language.Parse(submitLang)
		if err != nil {
			return err
		}
		text := strings.Join(args, " ")
		if err := kiosk.submitter.Validate(text); err != nil {
			return err
		}
		return kiosk.submitter.Submit(cmd.Context(), lang.RecordCode(), text)
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitLang, "lang", language.Default.Code, "language code")
}
