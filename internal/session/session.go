// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session drives one conversation with the model and applies the
// papers it proposes to the store.
//
// A Send moves the session through Streaming, where reply fragments are
// forwarded to the caller as they arrive, and Applying, where the finished
// reply is parsed and every complete <add> block is offered to the store.
// A transport failure moves it to Failed instead. Either way the session is
// Idle again by the time the notification channel is closed.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-manager/internal/llm"
	"github.com/pdiddy/paper-manager/internal/logging"
	"github.com/pdiddy/paper-manager/internal/parse"
	"github.com/pdiddy/paper-manager/internal/partition"
	"github.com/pdiddy/paper-manager/internal/store"
	"github.com/pdiddy/paper-manager/pkg/types"
)

// ErrBusy is reported when Send is called while a request is in flight.
var ErrBusy = errors.New("request already in progress")

// notifyBuffer is the capacity of the channel returned by Send.
const notifyBuffer = 16

// State is the phase of the session.
type State int

const (
	Idle State = iota
	Streaming
	Applying
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Applying:
		return "applying"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Kind classifies a Notification.
type Kind int

const (
	// KindChunk carries a reply fragment exactly as the model sent it.
	KindChunk Kind = iota
	// KindInfo reports an outcome such as "2 paper(s) added".
	KindInfo
	// KindError reports a failure the caller should see.
	KindError
)

// Notification is one message to the caller of Send.
type Notification struct {
	Kind Kind
	Text string
}

// Recorder receives every turn appended to the transcript.
type Recorder interface {
	Record(ctx context.Context, turn types.Turn) error
}

// Session holds the transcript and the collaborators of one conversation.
type Session struct {
	store    *store.Store
	provider llm.Provider
	parser   *parse.Parser

	params     llm.Params
	paperTypes []string
	shardRoot  string
	recorder   Recorder
	noStream   bool
	log        *zap.Logger

	mu         sync.Mutex
	state      State
	transcript []types.Turn
}

// Option configures a Session.
type Option func(*Session)

// WithParams sets the model, temperature and token limit of each request.
func WithParams(p llm.Params) Option {
	return func(s *Session) { s.params = p }
}

// WithPaperTypes sets the paper types offered to the model and used for
// shards.
func WithPaperTypes(t []string) Option {
	return func(s *Session) { s.paperTypes = slices.Clone(t) }
}

// WithShardRoot enables repartitioning into root after papers are added.
func WithShardRoot(root string) Option {
	return func(s *Session) { s.shardRoot = root }
}

// WithRecorder archives every transcript turn.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithoutStreaming makes the session request whole replies with
// Provider.Complete. The reply is then forwarded as a single chunk.
func WithoutStreaming() Option {
	return func(s *Session) { s.noStream = true }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New returns an idle session with an empty transcript.
func New(st *store.Store, p llm.Provider, opts ...Option) *Session {
	s := &Session{store: st, provider: p}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrNop(s.log)
	s.parser = parse.New(s.log)
	return s
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the user and assistant turns so far.
func (s *Session) Transcript() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

// Reset clears the transcript. It fails with ErrBusy while a request is in
// flight.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return ErrBusy
	}
	s.transcript = nil
	return nil
}

// Send submits prompt and returns the notifications it produces. The
// channel is closed when the request is fully handled.
//
// An empty or whitespace-only prompt does nothing and returns a closed
// channel. A Send while another is in flight yields a single KindError
// notification and changes nothing.
//
// Cancelling ctx only stops delivery: the model call, the store updates and
// the transcript still run to completion in the background. Callers that
// keep ctx alive must drain the channel.
func (s *Session) Send(ctx context.Context, prompt string) <-chan Notification {
	out := make(chan Notification, notifyBuffer)

	if strings.TrimSpace(prompt) == "" {
		close(out)
		return out
	}

	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		out <- Notification{Kind: KindError, Text: ErrBusy.Error()}
		close(out)
		return out
	}
	s.state = Streaming
	user := types.Turn{Role: types.RoleUser, Content: prompt}
	s.transcript = append(s.transcript, user)
	history := slices.Clone(s.transcript)
	s.mu.Unlock()

	upstream := context.WithoutCancel(ctx)
	d := &deliverer{ctx: ctx, out: out}

	go func() {
		defer close(out)
		defer s.setState(Idle)

		s.record(upstream, user)

		messages, err := s.messages(history)
		if err != nil {
			s.fail(d, err)
			return
		}

		text, err := s.stream(upstream, messages, d)
		if err != nil {
			s.fail(d, err)
			return
		}

		assistant := types.Turn{Role: types.RoleAssistant, Content: text}
		s.mu.Lock()
		s.transcript = append(s.transcript, assistant)
		s.state = Applying
		s.mu.Unlock()
		s.record(upstream, assistant)

		s.apply(text, d)
	}()

	return out
}

// Apply runs only the applying phase on text, as if the model had replied
// with it. The transcript is left alone. Busy and cancellation behave as in
// Send.
func (s *Session) Apply(ctx context.Context, text string) <-chan Notification {
	out := make(chan Notification, notifyBuffer)

	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		out <- Notification{Kind: KindError, Text: ErrBusy.Error()}
		close(out)
		return out
	}
	s.state = Applying
	s.mu.Unlock()

	d := &deliverer{ctx: ctx, out: out}
	go func() {
		defer close(out)
		defer s.setState(Idle)
		s.apply(text, d)
	}()
	return out
}

// messages builds the request: the preamble followed by the transcript.
func (s *Session) messages(history []types.Turn) ([]llm.Message, error) {
	preamble, err := renderPreamble(s.paperTypes, s.store.Summarize(0))
	if err != nil {
		return nil, fmt.Errorf("rendering preamble: %w", err)
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: types.RoleSystem, Content: preamble})
	for _, t := range history {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs, nil
}

// stream runs the model call and forwards fragments. It returns the whole
// reply, or an error if the call could not start or failed midway.
func (s *Session) stream(ctx context.Context, messages []llm.Message, d *deliverer) (string, error) {
	if s.noStream {
		text, err := s.provider.Complete(ctx, messages, s.params)
		if err != nil {
			return "", err
		}
		if text != "" {
			d.emit(Notification{Kind: KindChunk, Text: text})
		}
		return text, nil
	}

	ch, err := s.provider.Stream(ctx, messages, s.params)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for c := range ch {
		if c.Err != nil {
			go drain(ch)
			return "", c.Err
		}
		if c.Content != "" {
			buf.WriteString(c.Content)
			d.emit(Notification{Kind: KindChunk, Text: c.Content})
		}
		if c.Done {
			go drain(ch)
			break
		}
	}
	return buf.String(), nil
}

// apply parses the reply and adds every complete candidate to the store.
func (s *Session) apply(text string, d *deliverer) {
	res := s.parser.Parse(text)

	added := 0
	for _, c := range res.Candidates {
		rec := c.Record()
		ok, err := s.store.Add(rec)
		if err != nil {
			s.log.Error("saving paper", zap.String("title", rec.Title), zap.Error(err))
			d.emit(Notification{Kind: KindError, Text: fmt.Sprintf("could not save %q: %v", rec.Title, err)})
			continue
		}
		if ok {
			added++
		}
	}

	if added > 0 && s.shardRoot != "" {
		if err := partition.Repartition(s.shardRoot, s.store.Path(), s.paperTypes, s.log); err != nil {
			s.log.Error("repartition failed", zap.Error(err))
			d.emit(Notification{Kind: KindError, Text: fmt.Sprintf("repartition failed: %v", err)})
		} else {
			d.emit(Notification{Kind: KindInfo, Text: fmt.Sprintf("shards updated under %s", s.shardRoot)})
		}
	}

	if added == 0 {
		d.emit(Notification{Kind: KindInfo, Text: "no papers added"})
	} else {
		d.emit(Notification{Kind: KindInfo, Text: fmt.Sprintf("%d paper(s) added", added)})
	}

	s.log.Info("reply applied",
		zap.Int("blocks", res.Blocks),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("added", added))
}

// fail reports a transport failure. The partial reply is discarded and the
// user turn stays in the transcript.
func (s *Session) fail(d *deliverer, err error) {
	s.setState(Failed)
	s.log.Error("model request failed", zap.Error(err))
	d.emit(Notification{Kind: KindError, Text: fmt.Sprintf("model request failed: %v", err)})
}

func (s *Session) record(ctx context.Context, t types.Turn) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, t); err != nil {
		s.log.Warn("could not archive turn", zap.String("role", string(t.Role)), zap.Error(err))
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// deliverer forwards notifications until the caller's context ends, then
// drops them.
type deliverer struct {
	ctx context.Context
	out chan<- Notification
}

func (d *deliverer) emit(n Notification) {
	if d.ctx.Err() != nil {
		return
	}
	select {
	case d.out <- n:
	case <-d.ctx.Done():
	}
}

func drain(ch <-chan llm.Chunk) {
	for range ch {
	}
}
