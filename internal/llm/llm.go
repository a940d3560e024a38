// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm defines the contract between a chat session and the language
// model that answers it, and provides an OpenRouter backend.
//
// A Provider streams a reply as a sequence of Chunks on a channel. The
// channel is closed by the producer. A chunk with Done set is the explicit
// end marker; a chunk with Err set reports a transport failure and is always
// the last chunk sent. An empty reply is a Done chunk with no preceding
// content, which callers can tell apart from a failure.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-manager/pkg/types"
)

// ErrTransport marks failures to reach the model or read its reply:
// network errors, non-success statuses, malformed streams.
var ErrTransport = errors.New("model transport failure")

// ErrNoAPIKey is returned when a backend that requires credentials has none.
// It is a transport failure.
var ErrNoAPIKey = fmt.Errorf("%w: no API key configured", ErrTransport)

// Message is one entry of the request sent to the model.
type Message struct {
	Role    types.Role
	Content string
}

// Params tunes a single request.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Chunk is one element of a streamed reply.
type Chunk struct {
	Content string
	Done    bool
	Err     error
}

// Provider is a language model backend.
type Provider interface {
	// Stream starts a request and returns the reply as a channel of chunks.
	// An error return means the request could not be started.
	Stream(ctx context.Context, messages []Message, p Params) (<-chan Chunk, error)

	// Complete performs a non-streaming request and returns the whole reply.
	Complete(ctx context.Context, messages []Message, p Params) (string, error)
}

// Collect drains ch and concatenates its content. It stops at the first
// Done chunk or when ch is closed, and returns the first Err it sees.
func Collect(ch <-chan Chunk) (string, error) {
	var b strings.Builder
	for c := range ch {
		if c.Err != nil {
			return "", c.Err
		}
		b.WriteString(c.Content)
		if c.Done {
			break
		}
	}
	return b.String(), nil
}
