// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps the bibliography table: an ordered sequence of
// PaperRecords mirrored to a four-column CSV file. Every successful Add
// appends one row and every successful Delete rewrites the file, so the
// in-memory sequence and the file agree whenever a call returns. A table
// whose columns are out of order is rewritten by the first Add instead.
//
// A Store has a single writer. It does no locking; callers sharing one
// Store across goroutines must serialize access themselves.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-manager/internal/identity"
	"github.com/pdiddy/paper-manager/internal/logging"
	"github.com/pdiddy/paper-manager/pkg/types"
)

const defaultSummaryLimit = 10

// ErrBadHeader is returned when an existing table does not carry the
// title, keywords, url and type columns.
var ErrBadHeader = errors.New("table header must contain title, keywords, url, type")

// Store is the in-memory bibliography bound to its CSV file.
type Store struct {
	path   string
	papers []types.PaperRecord
	log    *zap.Logger

	// rewrite is set when the file's header is not exactly Columns. Rows
	// cannot be appended under it, so the next Add rewrites the table.
	rewrite bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for duplicate and persistence messages.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the table at path. A missing file is an empty store, not an
// error; Open then tries to create the file with a header row and only
// logs a warning if that fails, leaving the error to the first write.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrNop(s.log)

	papers, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.papers = papers

	header, err := readHeader(path)
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if header != nil && !slices.Equal(header, types.Columns) {
		s.log.Info("table columns out of order, will rewrite on next add",
			zap.String("path", path), zap.Strings("header", header))
		s.rewrite = true
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeTable(path, nil); err != nil {
			s.log.Warn("could not initialize table", zap.String("path", path), zap.Error(err))
		}
	}

	s.log.Debug("table loaded", zap.String("path", path), zap.Int("papers", len(s.papers)))
	return s, nil
}

// Load reads the records in the table at path in file order. A missing or
// empty file yields no records and no error.
func Load(path string) ([]types.PaperRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer f.Close()

	papers, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return papers, nil
}

// ReadTable parses a CSV table with a header row. Columns are located by
// header name, so extra or reordered columns are tolerated; short rows are
// padded with empty fields.
func ReadTable(r io.Reader) ([]types.PaperRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[normalizeColumn(name)] = i
	}
	for _, col := range types.Columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: got %v", ErrBadHeader, header)
		}
	}

	field := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var papers []types.PaperRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		papers = append(papers, types.PaperRecord{
			Title:    field(row, "title"),
			Keywords: field(row, "keywords"),
			URL:      field(row, "url"),
			Type:     field(row, "type"),
		})
	}
	return papers, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.papers) }

// All returns a copy of the records in insertion order.
func (s *Store) All() []types.PaperRecord {
	return slices.Clone(s.papers)
}

// Add appends rec unless the store already holds the same paper, in which
// case it returns false and changes nothing. On success exactly one row is
// appended to the file, unless the file's columns differ from Columns, in
// which case the whole table is rewritten in Columns order once. If the
// write fails the in-memory record is removed again and the error returned.
func (s *Store) Add(rec types.PaperRecord) (bool, error) {
	for _, existing := range s.papers {
		if !identity.SamePaper(existing.Title, rec.Title) {
			continue
		}
		if strings.EqualFold(existing.Title, rec.Title) {
			s.log.Info("paper already exists", zap.String("title", rec.Title))
		} else {
			key, _ := identity.ExtractKey(rec.Title)
			s.log.Info("paper with arXiv ID already exists",
				zap.String("arxiv_id", key), zap.String("existing", existing.Title))
		}
		return false, nil
	}

	s.papers = append(s.papers, rec)
	if s.rewrite {
		if err := writeTable(s.path, s.papers); err != nil {
			s.papers = s.papers[:len(s.papers)-1]
			return false, fmt.Errorf("rewriting %s: %w", s.path, err)
		}
		s.rewrite = false
	} else if err := appendRow(s.path, rec); err != nil {
		s.papers = s.papers[:len(s.papers)-1]
		return false, fmt.Errorf("appending %q to %s: %w", rec.Title, s.path, err)
	}

	s.log.Debug("paper added", zap.String("title", rec.Title), zap.Int("papers", len(s.papers)))
	return true, nil
}

// Delete removes every record whose title equals title ignoring case.
// Identifiers are not consulted. It returns false when nothing matched.
// On success the whole file is rewritten from memory; a failed rewrite is
// returned as an error and may leave the file truncated.
func (s *Store) Delete(title string) (bool, error) {
	kept := s.papers[:0:0]
	for _, p := range s.papers {
		if !strings.EqualFold(p.Title, title) {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(s.papers) {
		return false, nil
	}

	removed := len(s.papers) - len(kept)
	s.papers = kept
	if err := writeTable(s.path, s.papers); err != nil {
		return true, fmt.Errorf("rewriting %s: %w", s.path, err)
	}
	s.rewrite = false

	s.log.Debug("paper deleted", zap.String("title", title), zap.Int("removed", removed))
	return true, nil
}

// Search returns the records whose title or keywords contain query,
// ignoring case, in insertion order. An empty query matches every record.
func (s *Store) Search(query string) []types.PaperRecord {
	q := strings.ToLower(query)
	var results []types.PaperRecord
	for _, p := range s.papers {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Keywords), q) {
			results = append(results, p)
		}
	}
	return results
}

// Summarize renders the record count followed by up to limit numbered
// "title (type)" lines. A limit of zero or less uses 10.
func (s *Store) Summarize(limit int) string {
	if len(s.papers) == 0 {
		return "No papers in the database."
	}
	if limit <= 0 {
		limit = defaultSummaryLimit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current papers in database (%d total):\n", len(s.papers))
	for i, p := range s.papers {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, p.Title, p.Type)
	}
	if len(s.papers) > limit {
		fmt.Fprintf(&b, "... and %d more papers.", len(s.papers)-limit)
	}
	return b.String()
}
