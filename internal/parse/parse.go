// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts add-requests from free-form assistant replies.
//
// A reply may contain any number of blocks of the form
//
//	<add>
//	    Title: <text>
//	    URL: <text>
//	    Keywords: <text>
//	    Type: <text>
//	</add>
//
// Tags and labels are case-insensitive, labels may appear in any order, and
// unrecognized lines are ignored. A block becomes a candidate only when it
// has both a title and a URL; other blocks are dropped and counted.
package parse

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-manager/internal/logging"
	"github.com/pdiddy/paper-manager/pkg/types"
)

// blockPattern matches one <add>...</add> region, non-greedy so adjacent
// blocks stay separate.
var blockPattern = regexp.MustCompile(`(?is)<add>\s*(.*?)\s*</add>`)

// Label patterns capture everything after the colon up to end of line.
var (
	titlePattern    = regexp.MustCompile(`(?i)Title:[ \t]*([^\n]*)`)
	urlPattern      = regexp.MustCompile(`(?i)URL:[ \t]*([^\n]*)`)
	keywordsPattern = regexp.MustCompile(`(?i)Keywords:[ \t]*([^\n]*)`)
	typePattern     = regexp.MustCompile(`(?i)Type:[ \t]*([^\n]*)`)
)

// Result holds the candidates found in one reply along with block counts.
type Result struct {
	// Candidates are the complete blocks in source order.
	Candidates []types.Candidate

	// Blocks is the number of <add> regions found.
	Blocks int

	// Dropped lists the blocks that lacked a title or a URL, as far as
	// they could be read.
	Dropped []types.Candidate
}

// Parser extracts candidates and logs dropped blocks.
type Parser struct {
	log *zap.Logger
}

// New returns a Parser that logs to l. A nil logger discards output.
func New(l *zap.Logger) *Parser {
	return &Parser{log: logging.OrNop(l)}
}

// Parse returns the complete candidates in text.
func Parse(text string) []types.Candidate {
	return ParseBlocks(text).Candidates
}

// ParseBlocks scans text for <add> blocks and reports candidates and drops.
// Zero blocks is an empty result, not an error.
func ParseBlocks(text string) Result {
	var res Result
	for _, m := range blockPattern.FindAllStringSubmatch(text, -1) {
		res.Blocks++
		c := parseBlock(m[1])
		if c.Complete() {
			res.Candidates = append(res.Candidates, c)
		} else {
			res.Dropped = append(res.Dropped, c)
		}
	}
	return res
}

// Parse is the logging form of the package-level ParseBlocks.
func (p *Parser) Parse(text string) Result {
	res := ParseBlocks(text)
	for _, c := range res.Dropped {
		p.log.Debug("skipping incomplete paper block",
			zap.Bool("has_title", c.Title != nil),
			zap.Bool("has_url", c.URL != nil),
			zap.Any("block", c))
	}
	p.log.Debug("parsed add blocks",
		zap.Int("papers", len(res.Candidates)),
		zap.Int("blocks", res.Blocks))
	return res
}

// parseBlock looks for each label independently within one block body.
func parseBlock(body string) types.Candidate {
	return types.Candidate{
		Title:    field(titlePattern, body),
		URL:      field(urlPattern, body),
		Keywords: field(keywordsPattern, body),
		Type:     field(typePattern, body),
	}
}

// field returns the trimmed value of the first line matching pattern, or
// nil if the label is absent. A label with nothing after the colon counts
// as absent.
func field(pattern *regexp.Regexp, body string) *string {
	m := pattern.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}
