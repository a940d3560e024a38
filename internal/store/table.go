// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/paper-manager/pkg/types"
)

// WriteTable writes the header row followed by one row per record.
func WriteTable(w io.Writer, papers []types.PaperRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.Columns); err != nil {
		return err
	}
	for _, p := range papers {
		if err := cw.Write(p.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeTable truncates path and writes the full table. Writes go straight
// to the destination; there is no temporary file.
func writeTable(path string, papers []types.PaperRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTable(f, papers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// appendRow appends one record to path. An empty or missing file gets the
// header first, and a file whose last line is unterminated gets a newline so
// the new row starts on its own line.
func appendRow(path string, rec types.PaperRecord) error {
	size, lastByte, err := tail(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if size == 0 {
		if err := cw.Write(types.Columns); err != nil {
			f.Close()
			return err
		}
	} else if lastByte != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := cw.Write(rec.Row()); err != nil {
		f.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readHeader returns the normalized header of the table at path, or nil
// when the file is missing or empty.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, name := range header {
		header[i] = normalizeColumn(name)
	}
	return header, nil
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

// tail returns the size of path and its last byte. A missing file reports
// size zero.
func tail(path string) (int64, byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}
	if info.Size() == 0 {
		return 0, 0, nil
	}

	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, info.Size()-1); err != nil {
		return 0, 0, fmt.Errorf("reading last byte: %w", err)
	}
	return info.Size(), buf[0], nil
}
