// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity decides when two bibliography titles name the same paper.
// Titles match when they are equal ignoring case, or when both carry the same
// bracketed arXiv identifier (e.g. "[2210.01117] Omnigrok").
package identity

import (
	"regexp"
	"strings"
)

// keyPattern matches a bracketed arXiv identifier: "[2210.01117]", "[1706.03762]".
var keyPattern = regexp.MustCompile(`\[(\d{4}\.\d{4,5})\]`)

// ExtractKey returns the first bracketed arXiv identifier in title.
// The second return value is false when the title carries none.
func ExtractKey(title string) (string, bool) {
	m := keyPattern.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SamePaper reports whether titles a and b identify the same paper.
// Whole-title equality is checked first; identifiers are compared only when
// both titles yield one.
func SamePaper(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	ka, ok := ExtractKey(a)
	if !ok {
		return false
	}
	kb, ok := ExtractKey(b)
	return ok && ka == kb
}
