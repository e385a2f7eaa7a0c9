package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"last-snow/internal/analytics"
	"last-snow/internal/language"
)

var statusDate string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the record log and current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		st, err := kiosk.records.Status()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "staging:  %s (%d rows)\n", kiosk.records.StagingPath(), st.StagingRows)
		fmt.Fprintf(out, "archive:  %s (%d files, last index %d)\n", kiosk.records.ArchivePath(), st.ArchiveCount, st.LastIndex)

		day := time.Now().UTC()
		if statusDate != "" {
			if day, err = time.Parse("2006-01-02", statusDate); err != nil {
				return err
			}
		}
		recs, err := kiosk.records.Records()
		if err != nil {
			return err
		}
		fmt.Fprint(out, analytics.AnalyzeDailyRecords(recs, day).Summary())

		store := kiosk.settings.Store()
		if err := store.Load(); err != nil {
			kiosk.logger.Warn("error loading settings", zap.Error(err))
		}
		entries := store.Entries()
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fmt.Fprintln(out, "settings:")
		for _, k := range keys {
			fmt.Fprintf(out, "  %s = %v\n", k, entries[k])
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusDate, "date", "", "day to summarize, YYYY-MM-DD (default today, UTC)")
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their input-method engines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, l := range language.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l.Code, l.Engine)
		}
		return nil
	},
}
