// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-manager.
// The bibliography table, the candidates parsed out of assistant replies,
// the conversation transcript, and the configuration file all live here so
// that internal packages agree on one shape for each.
package types

// Columns is the header row of the bibliography table, in file order.
var Columns = []string{"title", "keywords", "url", "type"}

// PaperRecord is one bibliography entry. Field order matches Columns.
type PaperRecord struct {
	// Title is usually "[<arxiv-id>] <free text>" but free text is legal.
	Title string `json:"title" yaml:"title"`

	// Keywords is comma-separated free text and may be empty.
	Keywords string `json:"keywords" yaml:"keywords"`

	// URL is expected to be an absolute link. It is not validated.
	URL string `json:"url" yaml:"url"`

	// Type is expected to be one of the configured paper types but is not
	// enforced by the store.
	Type string `json:"type" yaml:"type"`
}

// Row returns the record as a table row in Columns order.
func (p PaperRecord) Row() []string {
	return []string{p.Title, p.Keywords, p.URL, p.Type}
}

// Candidate is a partially populated PaperRecord produced by the block
// parser. Absent fields stay nil so that "missing" and "empty" are distinct.
type Candidate struct {
	Title    *string `json:"title,omitempty" yaml:"title,omitempty"`
	URL      *string `json:"url,omitempty" yaml:"url,omitempty"`
	Keywords *string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Type     *string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Complete reports whether the candidate carries both a title and a URL,
// the minimum needed to become a PaperRecord.
func (c Candidate) Complete() bool {
	return c.Title != nil && c.URL != nil
}

// Record promotes the candidate to a PaperRecord. Missing keywords and type
// default to the empty string.
func (c Candidate) Record() PaperRecord {
	return PaperRecord{
		Title:    deref(c.Title),
		Keywords: deref(c.Keywords),
		URL:      deref(c.URL),
		Type:     deref(c.Type),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
