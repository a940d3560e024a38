// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-manager/pkg/types"
)

// --- test helpers ---

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.csv")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

var attention = types.PaperRecord{
	Title:    "Attention Is All You Need",
	Keywords: "transformer, attention",
	URL:      "https://arxiv.org/abs/1706.03762",
	Type:     "Efficiency",
}

var bert = types.PaperRecord{
	Title:    "BERT: Pre-training of Deep Bidirectional Transformers",
	Keywords: "BERT, transformers, NLP",
	URL:      "https://arxiv.org/abs/1810.04805",
	Type:     "Interpretability",
}

var omnigrok = types.PaperRecord{
	Title:    "[2210.01117] Omnigrok: Grokking Beyond Algorithmic Data",
	Keywords: "grok, llm, interp",
	URL:      "https://arxiv.org/abs/2210.01117",
	Type:     "interpretability",
}

// --- load tests ---

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, path := openTemp(t)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, path, s.Path())
	assert.Equal(t, "title,keywords,url,type\n", readFile(t, path), "missing table is initialized with a header")
}

func TestOpenMissingDirectoryIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "papers.csv")
	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestOpenExistingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	content := "title,keywords,url,type\n" +
		"\"[2210.01117] Omnigrok: Grokking Beyond Algorithmic Data\",\"grok, llm, interp\",https://arxiv.org/abs/2210.01117,interpretability\n" +
		"Attention Is All You Need,\"transformer, attention\",https://arxiv.org/abs/1706.03762,Efficiency\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Open(path)
	require.NoError(t, err)

	want := []types.PaperRecord{omnigrok, attention}
	if diff := cmp.Diff(want, s.All()); diff != "" {
		t.Errorf("loaded records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []types.PaperRecord
		wantErr error
	}{
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "header only",
			input: "title,keywords,url,type\n",
		},
		{
			name:  "reordered columns",
			input: "url,type,title,keywords\nhttps://x,agent_rl,X,\"a, b\"\n",
			want:  []types.PaperRecord{{Title: "X", Keywords: "a, b", URL: "https://x", Type: "agent_rl"}},
		},
		{
			name:  "short row padded",
			input: "title,keywords,url,type\nOnly Title\n",
			want:  []types.PaperRecord{{Title: "Only Title"}},
		},
		{
			name:  "byte order mark tolerated",
			input: "\ufefftitle,keywords,url,type\nT,,U,\n",
			want:  []types.PaperRecord{{Title: "T", URL: "U"}},
		},
		{
			name:    "missing column",
			input:   "title,url\nT,U\n",
			wantErr: ErrBadHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTable(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,link\nX,Y\n"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrBadHeader)
}

// --- add tests ---

func TestAddScenario(t *testing.T) {
	s, _ := openTemp(t)

	ok, err := s.Add(attention)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())

	ok, err = s.Add(attention)
	require.NoError(t, err)
	assert.False(t, ok, "second add of the same title is rejected")
	assert.Equal(t, 1, s.Len())

	results := s.Search("attention")
	require.Len(t, results, 1)
	assert.Equal(t, attention, results[0])

	ok, err = s.Delete("Attention Is All You Need")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestAddRejectsCaseInsensitiveTitle(t *testing.T) {
	s, path := openTemp(t)
	_, err := s.Add(attention)
	require.NoError(t, err)
	before := readFile(t, path)

	dup := attention
	dup.Title = strings.ToUpper(attention.Title)
	dup.URL = "https://example.com/other"
	ok, err := s.Add(dup)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, readFile(t, path), "rejected add must not touch the file")
}

func TestAddRejectsSameArxivID(t *testing.T) {
	s, _ := openTemp(t)

	ok, err := s.Add(types.PaperRecord{Title: "[2210.01117] Title A", URL: "u1"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Add(types.PaperRecord{Title: "[2210.01117] Title B (different wording)", URL: "u2"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestAddAppendsOneRow(t *testing.T) {
	s, path := openTemp(t)
	_, err := s.Add(omnigrok)
	require.NoError(t, err)
	_, err = s.Add(attention)
	require.NoError(t, err)

	want := "title,keywords,url,type\n" +
		"[2210.01117] Omnigrok: Grokking Beyond Algorithmic Data,\"grok, llm, interp\",https://arxiv.org/abs/2210.01117,interpretability\n" +
		"Attention Is All You Need,\"transformer, attention\",https://arxiv.org/abs/1706.03762,Efficiency\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestAddFixesUnterminatedLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	require.NoError(t, os.WriteFile(path, []byte("title,keywords,url,type\nX,,Y,"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(attention)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	assert.Equal(t, "X", reloaded[0].Title)
	assert.Equal(t, attention, reloaded[1])
}

func TestAddWritesHeaderIntoEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(bert)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(readFile(t, path), "title,keywords,url,type\n"))
}

func TestAddUnwritableRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "papers.csv")
	s, err := Open(path)
	require.NoError(t, err)

	ok, err := s.Add(attention)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "failed append must not leave the record in memory")
	assert.Empty(t, s.Search(""))
}

// --- persistence tests ---

func TestRoundTripPersistence(t *testing.T) {
	s, path := openTemp(t)
	tricky := types.PaperRecord{
		Title:    `Quotes "inside", commas, and more`,
		Keywords: "a, b, c",
		URL:      "https://example.com/?q=1,2",
		Type:     "",
	}
	for _, rec := range []types.PaperRecord{omnigrok, attention, tricky, bert} {
		ok, err := s.Add(rec)
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, err := s.Delete(attention.Title)
	require.NoError(t, err)

	reloaded, err := Open(path)
	require.NoError(t, err)
	if diff := cmp.Diff(s.All(), reloaded.All()); diff != "" {
		t.Errorf("reloaded store differs (-memory +disk):\n%s", diff)
	}
}

func TestAddUnderReorderedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		row    string
	}{
		{name: "reordered", header: "url,type,title,keywords", row: "https://x,agent_rl,X,kx"},
		{name: "extra column", header: "title,notes,keywords,url,type", row: "X,seen,kx,https://x,agent_rl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "papers.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.header+"\n"+tt.row+"\n"), 0o644))

			s, err := Open(path)
			require.NoError(t, err)
			ok, err := s.Add(types.PaperRecord{Title: "Y", Keywords: "kw", URL: "https://y", Type: "efficiency"})
			require.NoError(t, err)
			require.True(t, ok)

			assert.Equal(t, "title,keywords,url,type\nX,kx,https://x,agent_rl\nY,kw,https://y,efficiency\n", readFile(t, path))

			reloaded, err := Open(path)
			require.NoError(t, err)
			if diff := cmp.Diff(s.All(), reloaded.All()); diff != "" {
				t.Errorf("reloaded store differs (-memory +disk):\n%s", diff)
			}

			ok, err = reloaded.Add(types.PaperRecord{Title: "y", URL: "https://y"})
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestAddAfterRewriteAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	require.NoError(t, os.WriteFile(path, []byte("url,type,title,keywords\n"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(omnigrok)
	require.NoError(t, err)
	_, err = s.Add(attention)
	require.NoError(t, err)

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []types.PaperRecord{omnigrok, attention}, reloaded.All())
}

// --- delete tests ---

func TestDeleteThenSearch(t *testing.T) {
	s, path := openTemp(t)
	for _, rec := range []types.PaperRecord{attention, bert, omnigrok} {
		_, err := s.Add(rec)
		require.NoError(t, err)
	}

	ok, err := s.Delete("bert: pre-training of deep bidirectional transformers")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Empty(t, s.Search("Pre-training"))
	assert.Len(t, s.Search("attention"), 1)
	assert.Len(t, s.Search("grok"), 1)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []types.PaperRecord{attention, omnigrok}, reloaded)
}

func TestDeleteIsExactNotIdentifierBased(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.Add(omnigrok)
	require.NoError(t, err)

	ok, err := s.Delete("[2210.01117] Something Else")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete("Omnigrok")
	require.NoError(t, err)
	assert.False(t, ok, "substring does not delete")
	assert.Equal(t, 1, s.Len())
}

func TestDeleteRemovesAllMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	content := "title,keywords,url,type\nX,,u1,\nx,,u2,\nY,,u3,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	s, err := Open(path)
	require.NoError(t, err)

	ok, err := s.Delete("X")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "title,keywords,url,type\nY,,u3,\n", readFile(t, path))
}

func TestDeleteMissingReturnsFalse(t *testing.T) {
	s, path := openTemp(t)
	_, err := s.Add(attention)
	require.NoError(t, err)
	before := readFile(t, path)

	ok, err := s.Delete("Nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, readFile(t, path))
}

// --- search and summary tests ---

func TestSearch(t *testing.T) {
	s, _ := openTemp(t)
	for _, rec := range []types.PaperRecord{attention, bert, omnigrok} {
		_, err := s.Add(rec)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		query  string
		titles []string
	}{
		{"empty query matches all", "", []string{attention.Title, bert.Title, omnigrok.Title}},
		{"keyword match", "nlp", []string{bert.Title}},
		{"title or keyword preserves order", "transformer", []string{attention.Title, bert.Title}},
		{"identifier substring", "2210.01117", []string{omnigrok.Title}},
		{"no match", "diffusion", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range s.Search(tt.query) {
				got = append(got, r.Title)
			}
			assert.Equal(t, tt.titles, got)
		})
	}
}

func TestSummarize(t *testing.T) {
	s, _ := openTemp(t)
	assert.Equal(t, "No papers in the database.", s.Summarize(10))

	for i := 0; i < 12; i++ {
		_, err := s.Add(types.PaperRecord{Title: "Paper " + string(rune('A'+i)), URL: "u", Type: "efficiency"})
		require.NoError(t, err)
	}

	out := s.Summarize(10)
	assert.True(t, strings.HasPrefix(out, "Current papers in database (12 total):\n1. Paper A (efficiency)\n"))
	assert.Contains(t, out, "10. Paper J (efficiency)\n")
	assert.NotContains(t, out, "Paper K")
	assert.True(t, strings.HasSuffix(out, "... and 2 more papers."))

	full := s.Summarize(20)
	assert.Contains(t, full, "12. Paper L (efficiency)")
	assert.NotContains(t, full, "more papers")

	assert.Equal(t, out, s.Summarize(0), "non-positive limit uses the default")
}

func TestAllReturnsCopy(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.Add(attention)
	require.NoError(t, err)

	all := s.All()
	all[0].Title = "mutated"
	assert.Equal(t, attention.Title, s.All()[0].Title)
}
