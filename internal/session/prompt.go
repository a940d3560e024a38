// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"bytes"
	"strings"
	"text/template"
)

// preambleTmpl is the system message sent ahead of the transcript on every
// request. It teaches the model the <add> block format and shows it the
// current contents of the table.
var preambleTmpl = template.Must(template.New("preamble").Parse(`You are an assistant that helps the user keep a bibliography of research papers.
The bibliography is a table with the columns title, keywords, url and type.

Titles: when a paper comes from arXiv, write the title as "[arXiv_ID] Paper Title",
taking the ID from the URL. For https://arxiv.org/abs/2210.01117 the title is
"[2210.01117] Omnigrok: Grokking Beyond Algorithmic Data".

Keywords: at most four short, comma-separated keywords. Prefer abbreviations
such as "llm", "interp", "CoT", "SAE", "steer".

Type: exactly one of {{.Types}}.

Only the title and URL are required. If the user gives no keywords or type,
choose them from the title and URL.

To add papers, include one block per paper in your reply:

<add>
Title: [2308.10248] Steering Language Models With Activation Engineering
URL: https://arxiv.org/abs/2308.10248
Keywords: steer, llm
Type: {{.FirstType}}
</add>

Every block with a title and URL is saved. Papers already in the table are
skipped, matched by exact title or by arXiv ID.

Current database status:
{{.Summary}}
`))

// renderPreamble executes the preamble template.
func renderPreamble(paperTypes []string, summary string) (string, error) {
	first := "other"
	if len(paperTypes) > 0 {
		first = paperTypes[0]
	}
	var buf bytes.Buffer
	err := preambleTmpl.Execute(&buf, struct {
		Types     string
		FirstType string
		Summary   string
	}{
		Types:     strings.Join(paperTypes, ", "),
		FirstType: first,
		Summary:   summary,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
