package analytics

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"last-snow/internal/storage"
)

// DailyStats summarizes the sentences recorded on one day. Rows whose
// timestamp cannot be parsed are skipped and counted in Unparsed.
type DailyStats struct {
	Date           string         `json:"date"`
	TotalSentences int            `json:"total_sentences"`
	Characters     int            `json:"characters"`
	ByLanguage     map[string]int `json:"by_language"`
	Unparsed       int            `json:"unparsed"`
}

// AnalyzeDailyRecords counts records captured on targetDate.
func AnalyzeDailyRecords(records []storage.Record, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:       startOfDay.Format("2006-01-02"),
		ByLanguage: make(map[string]int),
	}

	for _, rec := range records {
		ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			stats.Unparsed++
			continue
		}
		if ts.Before(startOfDay) || !ts.Before(endOfDay) {
			continue
		}
		stats.TotalSentences++
		stats.Characters += utf8.RuneCountInString(rec.Sentence)
		stats.ByLanguage[rec.Language]++
	}
	return stats
}

// Summary renders the stats as a few lines of text, languages sorted by code.
func (ds *DailyStats) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sentences on %s: %d (%d characters)\n", ds.Date, ds.TotalSentences, ds.Characters)

	langs := make([]string, 0, len(ds.ByLanguage))
	for l := range ds.ByLanguage {
		langs = append(langs, l)
	}
	slices.Sort(langs)
	for _, l := range langs {
		fmt.Fprintf(&sb, "- %s: %d\n", l, ds.ByLanguage[l])
	}
	if ds.Unparsed > 0 {
		fmt.Fprintf(&sb, "Rows with unreadable timestamps: %d\n", ds.Unparsed)
	}
	return sb.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
