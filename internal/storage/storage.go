package storage

import "time"

// Record is one submitted sentence. Rows are written once and never edited.
type Record struct {
	Language  string
	Sentence  string
	Timestamp string
}

// NewRecord stamps a record with the UTC capture time in RFC 3339 form.
func NewRecord(language, sentence string, now time.Time) Record {
	return Record{
		Language:  language,
		Sentence:  sentence,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}

func (r Record) row() []string {
	return []string{r.Language, r.Sentence, r.Timestamp}
}

var header = []string{"language", "sentence", "timestamp"}

// Status summarizes the log on disk.
type Status struct {
	ArchiveCount int
	LastIndex    uint64
	StagingRows  int
}
