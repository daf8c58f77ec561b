// ABOUTME: Conversation engine owning the append-only message log.
// ABOUTME: Appends user messages immediately and schedules one delayed reply per submission.

package assistant

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultReplyDelay is how long the assistant waits before replying.
const DefaultReplyDelay = 1000 * time.Millisecond

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	ReplyDelay  time.Duration
	Scheduler   Scheduler
	Clock       func() time.Time
	Broadcaster *Broadcaster
	Logger      *slog.Logger
}

// Engine maintains the message log and computes a reply for each submission.
// All methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	messages []Message
	nextID   uint64
	pending  map[string]Task // keyed by the triggering user message ID
	closed   bool

	sessionID   string
	delay       time.Duration
	scheduler   Scheduler
	clock       func() time.Time
	broadcaster *Broadcaster
	logger      *slog.Logger
}

// New creates an Engine whose log holds only the greeting.
func New(opts Options) *Engine {
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	sessionID := uuid.New().String()
	e := &Engine{
		pending:     make(map[string]Task),
		sessionID:   sessionID,
		delay:       opts.ReplyDelay,
		scheduler:   opts.Scheduler,
		clock:       opts.Clock,
		broadcaster: opts.Broadcaster,
		logger:      opts.Logger.With("component", "assistant", "session_id", sessionID),
	}
	e.appendLocked(Greeting, false)
	return e
}

// SessionID identifies this engine's log in logs and API responses.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Submit appends rawText as a user message and schedules the reply.
// Whitespace-only input, or any input after Close, is ignored and reported
// as ok=false.
func (e *Engine) Submit(rawText string) (Message, bool) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Message{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Message{}, false
	}

	user := e.appendLocked(text, true)
	reply := Match(text)
	e.pending[user.ID] = e.scheduler.Schedule(e.delay, func() {
		e.deliver(user.ID, reply.Reply)
	})

	e.logger.Debug("message submitted",
		"message_id", user.ID,
		"topic", reply.Topic,
		"pending", len(e.pending))

	return user, true
}

// SubmitSuggestion submits a pre-selected suggestion exactly as typed input.
func (e *Engine) SubmitSuggestion(suggestion string) (Message, bool) {
	return e.Submit(suggestion)
}

// Cancel drops the pending reply to the user message with the given ID.
// It reports whether a reply was pending.
func (e *Engine) Cancel(userMessageID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, ok := e.pending[userMessageID]
	if !ok {
		return false
	}
	delete(e.pending, userMessageID)
	task.Cancel()
	return true
}

// deliver appends a scheduled reply unless it was cancelled in the meantime.
func (e *Engine) deliver(userMessageID, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if _, ok := e.pending[userMessageID]; !ok {
		return
	}
	delete(e.pending, userMessageID)

	msg := e.appendLocked(text, false)
	e.logger.Debug("reply delivered",
		"message_id", msg.ID,
		"in_reply_to", userMessageID)
}

// appendLocked adds a message to the log and publishes it. Must be called
// with mu held, or before the engine is shared.
func (e *Engine) appendLocked(text string, isUser bool) Message {
	e.nextID++
	msg := Message{
		ID:        strconv.FormatUint(e.nextID, 10),
		Text:      text,
		IsUser:    isUser,
		Timestamp: FormatTimestamp(e.clock()),
	}
	e.messages = append(e.messages, msg)

	if e.broadcaster != nil {
		e.broadcaster.Publish(msg)
	}
	return msg
}

// Messages returns a snapshot of the log in append order.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Len returns the number of messages in the log.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.messages)
}

// Pending returns the number of replies still waiting to be delivered.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// SuggestionsVisible reports whether quick suggestions should be offered,
// which is only while the log holds nothing but the greeting.
func (e *Engine) SuggestionsVisible() bool {
	return e.Len() == 1
}

// Close tears the engine down. Pending replies are cancelled and never
// delivered, and later submissions are ignored. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true

	for id, task := range e.pending {
		task.Cancel()
		delete(e.pending, id)
	}
	e.logger.Debug("engine closed", "messages", len(e.messages))
}
