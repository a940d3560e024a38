// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv looks up paper metadata on the arXiv API so that a paper
// can be added from its URL alone, with the title written in the
// "[arXiv_ID] Title" form used throughout the table.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-manager/internal/httputil"
)

// apiBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// ErrNotFound is returned when arXiv has no entry for an ID.
var ErrNotFound = errors.New("arXiv entry not found")

// idPattern matches a new-style arXiv identifier with optional version.
var idPattern = regexp.MustCompile(`(\d{4}\.\d{4,5})(v\d+)?`)

// Entry is the metadata paper-manager needs from one arXiv record.
type Entry struct {
	ID       string
	Title    string
	Summary  string
	Authors  []string
	Category string
}

// Client queries the arXiv API.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// ParseID extracts the arXiv identifier from a bare ID or an abs/pdf URL
// and drops any version suffix.
func ParseID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if u, err := url.Parse(s); err == nil && u.Host != "" && !strings.HasSuffix(u.Host, "arxiv.org") {
		return "", false
	}
	m := idPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// AbsURL returns the canonical abstract page for id.
func AbsURL(id string) string {
	return "https://arxiv.org/abs/" + id
}

// FormatTitle returns "[id] title" with runs of whitespace collapsed, as
// arXiv wraps long titles across lines.
func FormatTitle(id, title string) string {
	return fmt.Sprintf("[%s] %s", id, strings.Join(strings.Fields(title), " "))
}

// Lookup fetches the entry for id.
func (c *Client) Lookup(ctx context.Context, id string) (Entry, error) {
	q := url.Values{}
	q.Set("id_list", id)
	q.Set("max_results", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+q.Encode(), nil)
	if err != nil {
		return Entry{}, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return Entry{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Entry{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return Entry{}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	for _, e := range f.Entries {
		got, ok := ParseID(e.ID)
		if !ok || got != id {
			continue
		}
		out := Entry{
			ID:       got,
			Title:    strings.Join(strings.Fields(e.Title), " "),
			Summary:  strings.TrimSpace(e.Summary),
			Category: e.Category.Term,
		}
		for _, a := range e.Authors {
			out.Authors = append(out.Authors, strings.TrimSpace(a.Name))
		}
		return out, nil
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// arXiv Atom feed XML structures.
type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID       string   `xml:"id"`
	Title    string   `xml:"title"`
	Summary  string   `xml:"summary"`
	Authors  []author `xml:"author"`
	Category struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
}

type author struct {
	Name string `xml:"name"`
}
