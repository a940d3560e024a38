// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const omnigrokFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/2210.01117v2</id>
    <title>Omnigrok: Grokking Beyond
  Algorithmic Data</title>
    <summary>  Grokking, the unusual phenomenon ...  </summary>
    <author><name>Ziming Liu</name></author>
    <author><name> Eric J. Michaud </name></author>
    <arxiv:primary_category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

func withServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })
	return &Client{HTTP: ts.Client(), UserAgent: "paper-manager-test"}
}

func TestLookup(t *testing.T) {
	var gotQuery, gotUA string
	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("id_list")
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, omnigrokFeed)
	})

	e, err := c.Lookup(context.Background(), "2210.01117")
	require.NoError(t, err)

	assert.Equal(t, "2210.01117", gotQuery)
	assert.Equal(t, "paper-manager-test", gotUA)
	assert.Equal(t, Entry{
		ID:       "2210.01117",
		Title:    "Omnigrok: Grokking Beyond Algorithmic Data",
		Summary:  "Grokking, the unusual phenomenon ...",
		Authors:  []string{"Ziming Liu", "Eric J. Michaud"},
		Category: "cs.LG",
	}, e)
	assert.Equal(t, "[2210.01117] Omnigrok: Grokking Beyond Algorithmic Data", FormatTitle(e.ID, e.Title))
}

func TestLookup_NotFound(t *testing.T) {
	c := withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	})

	_, err := c.Lookup(context.Background(), "9999.99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_HTTPError(t *testing.T) {
	c := withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Lookup(context.Background(), "2210.01117")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestLookup_BadXML(t *testing.T) {
	c := withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<feed><entry>")
	})

	_, err := c.Lookup(context.Background(), "2210.01117")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing arXiv response")
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2210.01117", "2210.01117", true},
		{"2210.01117v3", "2210.01117", true},
		{"https://arxiv.org/abs/2210.01117", "2210.01117", true},
		{"https://arxiv.org/pdf/2312.00752v2.pdf", "2312.00752", true},
		{"http://export.arxiv.org/abs/2308.10248v1", "2308.10248", true},
		{"  2308.10248 ", "2308.10248", true},
		{"https://example.com/2210.01117", "", false},
		{"hep-th/9901001", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTitle(t *testing.T) {
	assert.Equal(t, "[2312.00752] Mamba: Linear-Time", FormatTitle("2312.00752", " Mamba:\n  Linear-Time "))
}

func TestAbsURL(t *testing.T) {
	assert.Equal(t, "https://arxiv.org/abs/2210.01117", AbsURL("2210.01117"))
}
