// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: openrouter-api-key, hf-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-manager/internal/logging"
)

// Key names understood by paper-manager.
const (
	OpenRouterAPIKey = "openrouter-api-key"
	HFToken          = "hf-token"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets/"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir and returns them keyed by filename.
// A missing directory or missing files are not errors; Load returns an empty set.
// Unreadable files are logged as warnings on l (which may be nil) and skipped.
func Load(dir string, l *zap.Logger) (Secrets, error) {
	l = logging.OrNop(l)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			l.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			s[name] = value
		}
	}

	return s, nil
}

// Or returns override when it is non-empty, otherwise the secret stored
// under key, otherwise "".
func (s Secrets) Or(key, override string) string {
	if override != "" {
		return override
	}
	return s[key]
}

// Names returns the loaded key names in sorted order. Values are never exposed.
func (s Secrets) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
