// session.go implements stateful multi-turn conversations. History only ever
// grows by matched user/model pairs: the outgoing user message rides on a
// local copy, and both messages are appended only after the round trip
// succeeds. A failed call leaves the session exactly as it was.
package gemini

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChatSession is an ordered conversation owned by the caller that created
// it. Sessions are never merged and live only in memory.
type ChatSession struct {
	id         string
	svc        *Service
	genConfig  *GenerationConfig
	maxHistory int
	createdAt  time.Time

	mu      sync.Mutex
	history []Content
}

// SessionOptions tunes a new session. The zero value uses service defaults.
type SessionOptions struct {
	// InitialHistory seeds the conversation, e.g. a restored transcript.
	InitialHistory []Content

	// MaxHistory bounds the history length in messages; once exceeded the
	// oldest messages are dropped (sliding window). Odd values round down
	// so the window holds whole user/model pairs; values below 2 mean
	// unbounded.
	MaxHistory int

	// GenerationConfig overrides the service defaults for this session.
	GenerationConfig *GenerationConfig
}

// NewSession creates a session with a default generation configuration.
func (s *Service) NewSession(opts SessionOptions) *ChatSession {
	history := cloneContents(opts.InitialHistory)

	genConfig := opts.GenerationConfig
	if genConfig == nil {
		genConfig = s.defaultGenConfig()
	}

	return &ChatSession{
		id:         uuid.NewString(),
		svc:        s,
		genConfig:  genConfig,
		maxHistory: opts.MaxHistory,
		createdAt:  time.Now(),
		history:    history,
	}
}

// ID returns the session's unique identifier.
func (cs *ChatSession) ID() string { return cs.id }

// CreatedAt returns when the session was created.
func (cs *ChatSession) CreatedAt() time.Time { return cs.createdAt }

// History returns a copy of the conversation so far.
func (cs *ChatSession) History() []Content {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cloneContents(cs.history)
}

// cloneContents deep-copies messages so session history stays immutable no
// matter what callers do with the slices they handed in or got back.
func cloneContents(in []Content) []Content {
	out := make([]Content, len(in))
	for i, c := range in {
		parts := make([]Part, len(c.Parts))
		copy(parts, c.Parts)
		out[i] = Content{Role: c.Role, Parts: parts}
	}
	return out
}

// HistoryLen returns the number of messages in the session.
func (cs *ChatSession) HistoryLen() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.history)
}

// SendMessage appends text as a user message on a local copy of the history,
// sends the whole conversation through the shared scheduler, and on success
// commits both the user message and the model reply to the session, trimming
// to MaxHistory from the front. On failure the session is unchanged.
func (cs *ChatSession) SendMessage(ctx context.Context, text string) (string, error) {
	userMsg := TextContent(RoleUser, text)

	cs.mu.Lock()
	outgoing := make([]Content, 0, len(cs.history)+1)
	outgoing = append(outgoing, cs.history...)
	outgoing = append(outgoing, userMsg)
	cs.mu.Unlock()

	resp, err := cs.svc.generate(ctx, outgoing, cs.genConfig)
	if err != nil {
		return "", err
	}

	reply := resp.Candidates[0].Content
	if reply.Role == "" {
		reply.Role = RoleModel
	}

	cs.mu.Lock()
	cs.history = append(cs.history, userMsg, reply)
	if window := cs.maxHistory &^ 1; window > 0 && len(cs.history) > window {
		// The window rounds down to an even count so the trimmed history
		// still starts on a user message.
		cs.history = cs.history[len(cs.history)-window:]
	}
	cs.mu.Unlock()

	return resp.Text(), nil
}
