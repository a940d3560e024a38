// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-manager/internal/httputil"
	"github.com/pdiddy/paper-manager/internal/logging"
	"github.com/pdiddy/paper-manager/pkg/types"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// streamBuffer is the capacity of the chunk channel returned by Stream.
const streamBuffer = 16

// maxLineSize bounds a single SSE line.
const maxLineSize = 1 << 20

// OpenRouter talks to an OpenAI-compatible chat completions endpoint,
// OpenRouter by default.
type OpenRouter struct {
	APIKey  string
	BaseURL string
	Client  *http.Client

	// Referer and Title are sent as the HTTP-Referer and X-Title headers
	// OpenRouter uses to attribute traffic. Both are optional.
	Referer string
	Title   string

	// MaxRetries bounds retries on 429 and 503. Zero uses the httputil default.
	MaxRetries int

	Log *zap.Logger
}

// chatRequest is the request body for POST /chat/completions.
type chatRequest struct {
	Model       string                                   `json:"model"`
	Messages    []openai.ChatCompletionMessageParamUnion `json:"messages"`
	Temperature float64                                  `json:"temperature"`
	MaxTokens   int                                      `json:"max_tokens,omitempty"`
	Stream      bool                                     `json:"stream"`
}

// streamEvent is one SSE data payload of a streamed completion.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// toParams converts messages to the OpenAI wire shape. Unknown roles are
// sent as user messages.
func toParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case types.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// Stream sends a streaming request. The returned channel yields content
// fragments in arrival order, then a Done chunk when the server sends
// [DONE]. A mid-stream failure yields one Err chunk. The channel is closed
// when the reply ends or ctx is done.
func (o *OpenRouter) Stream(ctx context.Context, messages []Message, p Params) (<-chan Chunk, error) {
	resp, err := o.post(ctx, messages, p, true)
	if err != nil {
		return nil, err
	}

	ch := make(chan Chunk, streamBuffer)
	go o.readStream(ctx, resp.Body, ch)
	return ch, nil
}

// Complete sends a non-streaming request and returns the first choice.
func (o *OpenRouter) Complete(ctx context.Context, messages []Message, p Params) (string, error) {
	resp, err := o.post(ctx, messages, p, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var completion openai.ChatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("%w: decoding completion: %v", ErrTransport, err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// post builds and sends the request, returning the response only for a 200.
func (o *OpenRouter) post(ctx context.Context, messages []Message, p Params, stream bool) (*http.Response, error) {
	if o.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	log := logging.OrNop(o.Log)

	body, err := json.Marshal(chatRequest{
		Model:       p.Model,
		Messages:    toParams(messages),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	url := strings.TrimRight(baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if o.Referer != "" {
		req.Header.Set("HTTP-Referer", o.Referer)
	}
	if o.Title != "" {
		req.Header.Set("X-Title", o.Title)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	log.Debug("model request",
		zap.String("model", p.Model),
		zap.Int("messages", len(messages)),
		zap.Bool("stream", stream))

	resp, err := httputil.DoWithRetry(ctx, client, req, o.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: calling %s: %v", ErrTransport, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: model API returned %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp, nil
}

// readStream parses SSE lines from body onto ch and closes both.
func (o *OpenRouter) readStream(ctx context.Context, body io.ReadCloser, ch chan<- Chunk) {
	defer close(ch)
	defer body.Close()
	log := logging.OrNop(o.Log)

	send := func(c Chunk) bool {
		select {
		case ch <- c:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		if data == "[DONE]" {
			send(Chunk{Done: true})
			return
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			log.Debug("skipping malformed stream event", zap.Error(err))
			continue
		}
		if ev.Error != nil {
			send(Chunk{Err: fmt.Errorf("%w: %s", ErrTransport, ev.Error.Message)})
			return
		}
		if len(ev.Choices) == 0 {
			continue
		}
		if content := ev.Choices[0].Delta.Content; content != "" {
			if !send(Chunk{Content: content}) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		send(Chunk{Err: fmt.Errorf("%w: reading stream: %v", ErrTransport, err)})
	}
}
