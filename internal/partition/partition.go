// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package partition splits the bibliography table into one shard per paper
// type. Shards live under a root directory as <root>/<type>/papers.csv with
// the same columns as the canonical table. The canonical table is only read.
package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-manager/internal/logging"
	"github.com/pdiddy/paper-manager/internal/store"
	"github.com/pdiddy/paper-manager/pkg/types"
)

// ShardFile is the table filename inside each type directory.
const ShardFile = "papers.csv"

// ShardPath returns the shard location for paperType under root.
func ShardPath(root, paperType string) string {
	return filepath.Join(root, strings.ToLower(paperType), ShardFile)
}

// Repartition reads the table at tablePath and rewrites one shard per entry
// of paperTypes, in order. Records are matched on lower-cased type; records
// whose type is not configured are left out of every shard. A type with no
// records still gets a header-only shard. A table that does not exist yet
// counts as empty; one that exists but cannot be read is an error.
//
// On failure, shards written before the failing one remain on disk.
func Repartition(root, tablePath string, paperTypes []string, l *zap.Logger) error {
	l = logging.OrNop(l)

	papers, err := store.Load(tablePath)
	if err != nil {
		return fmt.Errorf("reading table: %w", err)
	}

	groups := Group(papers)
	for _, t := range paperTypes {
		key := strings.ToLower(t)
		path := ShardPath(root, t)
		if err := writeShard(path, groups[key]); err != nil {
			return fmt.Errorf("writing shard %s: %w", key, err)
		}
		l.Debug("shard written", zap.String("type", key), zap.String("path", path), zap.Int("papers", len(groups[key])))
	}

	l.Info("repartitioned table",
		zap.String("root", root),
		zap.Int("types", len(paperTypes)),
		zap.Int("papers", len(papers)))
	return nil
}

// Group buckets records by lower-cased type, keeping table order within
// each bucket.
func Group(papers []types.PaperRecord) map[string][]types.PaperRecord {
	groups := make(map[string][]types.PaperRecord)
	for _, p := range papers {
		key := strings.ToLower(p.Type)
		groups[key] = append(groups[key], p)
	}
	return groups
}

func writeShard(path string, papers []types.PaperRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := store.WriteTable(f, papers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
