package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"last-snow/internal/apperr"
)

const (
	DefaultStagingFile = "tmp.csv"
	DefaultArchiveDir  = "sentences"
	archiveExt         = ".csv"
)

var ErrInvalidName = errors.New("storage: invalid archive file name")

// Log is the staging file plus the numbered archive directory under baseDir.
// It keeps no rows in memory; every count is read back from disk. The mutex
// serializes writers inside this process only.
type Log struct {
	baseDir    string
	staging    string
	archiveDir string
	logger     *zap.Logger
	mu         sync.Mutex
}

type LogOption func(*Log)

func WithStagingFile(name string) LogOption {
	return func(l *Log) { l.staging = name }
}

func WithArchiveDir(name string) LogOption {
	return func(l *Log) { l.archiveDir = name }
}

func NewLog(baseDir string, logger *zap.Logger, opts ...LogOption) *Log {
	l := &Log{
		baseDir:    baseDir,
		staging:    DefaultStagingFile,
		archiveDir: DefaultArchiveDir,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) StagingPath() string { return filepath.Join(l.baseDir, l.staging) }

func (l *Log) ArchivePath() string { return filepath.Join(l.baseDir, l.archiveDir) }

// Tx exposes the log operations to code already holding the lock.
type Tx struct{ l *Log }

// Do runs fn with the log locked, so a count, write and rotate sequence is
// not interleaved with another writer in this process.
func (l *Log) Do(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(&Tx{l: l})
}

func (l *Log) Rows() (n int, err error) {
	err = l.Do(func(tx *Tx) error {
		n, err = tx.Rows()
		return err
	})
	return n, err
}

func (l *Log) Append(rec Record) (n int, err error) {
	err = l.Do(func(tx *Tx) error {
		n, err = tx.Append(rec)
		return err
	})
	return n, err
}

func (l *Log) RotateIfFull(rows, threshold int) (path string, err error) {
	err = l.Do(func(tx *Tx) error {
		path, err = tx.RotateIfFull(rows, threshold)
		return err
	})
	return path, err
}

func (l *Log) RemoveAll() (removed int) {
	_ = l.Do(func(tx *Tx) error {
		removed = tx.RemoveAll()
		return nil
	})
	return removed
}

func (l *Log) RemoveArchive(name string) error {
	return l.Do(func(tx *Tx) error { return tx.RemoveArchive(name) })
}

func (l *Log) RemoveStaging() error {
	return l.Do(func(tx *Tx) error { return tx.RemoveStaging() })
}

func (l *Log) Records() (recs []Record, err error) {
	err = l.Do(func(tx *Tx) error {
		recs, err = tx.Records()
		return err
	})
	return recs, err
}

func (l *Log) Status() (st Status, err error) {
	err = l.Do(func(tx *Tx) error {
		st, err = tx.Status()
		return err
	})
	return st, err
}

// Rows counts data rows in the staging file. A missing file has zero rows.
func (tx *Tx) Rows() (int, error) {
	return countRows(tx.l.StagingPath())
}

// Append writes rec to the staging file, creating it with a header row when it
// is new or empty, and returns the row count read back from disk. A staging
// file that no longer parses is moved aside first and a fresh one started.
func (tx *Tx) Append(rec Record) (int, error) {
	path := tx.l.StagingPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, apperr.Storage("ensure staging dir", err)
	}
	if _, err := tx.Rows(); err != nil {
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return 0, err
		}
		if err := tx.quarantineStaging(err); err != nil {
			return 0, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, apperr.Storage("open staging", err)
	}
	if err := writeRow(f, rec); err != nil {
		_ = f.Close()
		return 0, apperr.Storage("append record", err)
	}
	if err := f.Close(); err != nil {
		return 0, apperr.Storage("close staging", err)
	}
	return tx.Rows()
}

// quarantineStaging renames an unreadable staging file to
// <staging>.corrupt-<unix nanos> next to it, outside the archive directory.
func (tx *Tx) quarantineStaging(cause error) error {
	from := tx.l.StagingPath()
	to := from + ".corrupt-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	tx.l.logger.Warn("staging file unreadable, moving it aside",
		zap.String("from", from), zap.String("to", to), zap.Error(cause))
	if err := os.Rename(from, to); err != nil {
		return apperr.Storage("quarantine staging", err)
	}
	return nil
}

func writeRow(f *os.File, rec Record) error {
	st, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(rec.row()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// RotateIfFull moves the staging file into the archive under the next index
// once rows reaches threshold. It returns the archive path, or "" when the
// staging file stays put. Thresholds below 1 rotate on every row.
func (tx *Tx) RotateIfFull(rows, threshold int) (string, error) {
	if threshold < 1 {
		threshold = 1
	}
	if rows < threshold {
		return "", nil
	}
	next, err := tx.NextArchivePath()
	if err != nil {
		return "", err
	}
	tx.l.logger.Info("rotating staging file", zap.String("from", tx.l.StagingPath()), zap.String("to", next))
	if err := os.Rename(tx.l.StagingPath(), next); err != nil {
		return "", apperr.Storage("rotate staging", err)
	}
	return next, nil
}

// NextArchivePath returns archiveDir/{max+1}.csv, creating the directory if
// needed. Every entry must have a numeric base name.
func (tx *Tx) NextArchivePath() (string, error) {
	dir := tx.l.ArchivePath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Storage("ensure archive dir", err)
	}
	indices, err := archiveIndices(dir)
	if err != nil {
		return "", err
	}
	var last uint64
	for _, idx := range indices {
		last = max(last, idx)
	}
	return filepath.Join(dir, strconv.FormatUint(last+1, 10)+archiveExt), nil
}

func archiveIndices(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.Storage("scan archive dir", err)
	}
	out := make([]uint64, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		idx, err := strconv.ParseUint(strings.TrimSuffix(name, filepath.Ext(name)), 10, 64)
		if err != nil {
			return nil, apperr.Configuration(fmt.Sprintf("archive entry %q is not numbered", name), err)
		}
		out = append(out, idx)
	}
	return out, nil
}

// RemoveAll deletes every archive entry and the staging file. Failures are
// logged and skipped. It returns how many files were removed.
func (tx *Tx) RemoveAll() int {
	removed := 0
	entries, err := os.ReadDir(tx.l.ArchivePath())
	if err != nil {
		tx.l.logger.Warn("cannot list archive dir", zap.String("dir", tx.l.ArchivePath()), zap.Error(err))
	}
	for _, e := range entries {
		if ok, err := tx.removeIfExists(filepath.Join(tx.l.ArchivePath(), e.Name())); err != nil {
			tx.l.logger.Error("remove archive file", zap.String("name", e.Name()), zap.Error(err))
		} else if ok {
			removed++
		}
	}
	if ok, err := tx.removeIfExists(tx.l.StagingPath()); err != nil {
		tx.l.logger.Error("remove staging file", zap.Error(err))
	} else if ok {
		removed++
	}
	return removed
}

// RemoveArchive deletes one archive file by base name. A missing file is not
// an error.
func (tx *Tx) RemoveArchive(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	_, err := tx.removeIfExists(filepath.Join(tx.l.ArchivePath(), name))
	return err
}

func (tx *Tx) RemoveStaging() error {
	_, err := tx.removeIfExists(tx.l.StagingPath())
	return err
}

func (tx *Tx) Status() (Status, error) {
	var st Status
	indices, err := archiveIndices(tx.l.ArchivePath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return st, err
	}
	st.ArchiveCount = len(indices)
	for _, idx := range indices {
		st.LastIndex = max(st.LastIndex, idx)
	}
	if st.StagingRows, err = tx.Rows(); err != nil {
		return st, err
	}
	return st, nil
}

// Records reads every archived row in index order, followed by the staging
// rows.
func (tx *Tx) Records() ([]Record, error) {
	indices, err := archiveIndices(tx.l.ArchivePath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	slices.Sort(indices)

	var out []Record
	for _, idx := range indices {
		recs, err := readRecords(filepath.Join(tx.l.ArchivePath(), strconv.FormatUint(idx, 10)+archiveExt))
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	staged, err := readRecords(tx.l.StagingPath())
	if err != nil {
		return nil, err
	}
	return append(out, staged...), nil
}

func (tx *Tx) removeIfExists(path string) (bool, error) {
	tx.l.logger.Info("removing file", zap.String("path", path))
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			tx.l.logger.Info("file does not exist", zap.String("path", path))
			return false, nil
		}
		return false, apperr.Storage("remove file", err)
	}
	return true, nil
}

func readRecords(path string) ([]Record, error) {
	var out []Record
	err := scanRows(path, func(row []string) {
		out = append(out, Record{Language: row[0], Sentence: row[1], Timestamp: row[2]})
	})
	return out, err
}

func countRows(path string) (int, error) {
	n := 0
	err := scanRows(path, func([]string) { n++ })
	return n, err
}

// scanRows calls fn for every data row of the CSV file at path, skipping the
// header. A missing file has no rows.
func scanRows(path string, fn func(row []string)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return apperr.Storage("open records", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	for first := true; ; first = false {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return apperr.Storage("parse "+filepath.Base(path), err)
		}
		if !first {
			fn(row)
		}
	}
}
