// ABOUTME: Interactive terminal chat against an in-process assistant engine
// ABOUTME: Replies arrive through the broadcaster and print as they land

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/2389/lehmate/internal/assistant"
	"github.com/2389/lehmate/internal/content"
	"github.com/2389/lehmate/internal/store"
)

func runChat(ctx context.Context) error {
	cfg, err := loadConfig(getConfigPath())
	if err != nil {
		return err
	}
	logger := setupLogger(chatLogLevel(cfg.Logging), os.Stderr)

	storeOpts := cfg.StoreOptions()
	storeOpts.Logger = logger
	kv, err := store.Open(storeOpts)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()

	first, err := store.IsFirstLaunch(ctx, kv)
	if err != nil {
		return err
	}

	broadcaster := assistant.NewBroadcaster(logger)
	defer broadcaster.Close()
	engine := assistant.New(assistant.Options{
		ReplyDelay:  cfg.Assistant.ReplyDelay,
		Broadcaster: broadcaster,
		Logger:      logger,
	})
	defer engine.Close()

	c := newChatSession(engine, broadcaster, content.Default(), os.Stdout)
	if first {
		c.println(color.GreenString("Welcome to lehmate! Your Ladakh travel buddy is ready."))
	}
	c.println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	c.println("")

	if err := c.run(ctx, os.Stdin); err != nil {
		return err
	}
	fmt.Println("\nGoodbye!")
	return nil
}

// chatSession renders the conversation log to out. Writes from the reply
// feed and the input loop are serialised through mu.
type chatSession struct {
	engine      *assistant.Engine
	broadcaster *assistant.Broadcaster
	catalog     *content.Catalog

	mu  sync.Mutex
	out io.Writer
}

func newChatSession(engine *assistant.Engine, b *assistant.Broadcaster, catalog *content.Catalog, out io.Writer) *chatSession {
	return &chatSession{
		engine:      engine,
		broadcaster: b,
		catalog:     catalog,
		out:         out,
	}
}

// run prints the log so far, then reads lines from in until EOF, /quit, or
// ctx is done.
func (c *chatSession) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)

	feed, _ := c.broadcaster.Subscribe(ctx)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for msg := range feed {
			// user entries are echoed by the terminal already
			if !msg.IsUser {
				c.printMessage(msg)
			}
		}
	}()
	defer func() {
		cancel()
		<-printed
	}()

	for _, msg := range c.engine.Messages() {
		c.printMessage(msg)
	}
	if c.engine.SuggestionsVisible() {
		c.printSuggestions()
	}

	lines, errs := readLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			return fmt.Errorf("reading input: %w", err)
		case line, ok := <-lines:
			if !ok {
				// a read error is queued before lines closes
				select {
				case err := <-errs:
					return fmt.Errorf("reading input: %w", err)
				default:
					return nil
				}
			}
			if c.handle(line) {
				return nil
			}
		}
	}
}

// maxLineBytes bounds how much of one input line is kept. It always holds
// more than MaxInputLength runes, so ClampInput still sees an overlong line.
const maxLineBytes = assistant.MaxInputLength*utf8.UTFMax + 1

// readLines reads in on its own goroutine so the caller can stop on ctx.
// Lines of any length are accepted; bytes past maxLineBytes are discarded.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := readLine(reader)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					errs <- err
				}
				close(lines)
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				close(lines)
				return
			}
		}
	}()

	return lines, errs
}

// readLine returns the next line without its terminator, keeping at most
// maxLineBytes of it. A final line without a newline is still returned.
func readLine(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				return string(buf), nil
			}
			return "", err
		}
		if room := maxLineBytes - len(buf); room > 0 {
			buf = append(buf, chunk[:min(room, len(chunk))]...)
		}
		if !isPrefix {
			return string(buf), nil
		}
	}
}

// handle processes one line of input and reports whether the session should end.
func (c *chatSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		c.send(line)
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		c.println("Commands:")
		c.println("  /suggest      List quick suggestions")
		c.println("  /suggest N    Send suggestion N")
		c.println("  /history      Show the whole conversation")
		c.println("  /quit         Leave the chat")
	case "/history":
		for _, msg := range c.engine.Messages() {
			c.printMessage(msg)
		}
	case "/suggest":
		if len(fields) == 1 {
			c.printSuggestions()
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			c.println(color.YellowString("usage: /suggest N"))
			return false
		}
		suggestion, ok := c.catalog.Suggestion(n - 1)
		if !ok {
			c.println(color.YellowString("no suggestion %d", n))
			return false
		}
		if msg, ok := c.engine.SubmitSuggestion(suggestion); ok {
			c.printMessage(msg)
		}
	default:
		c.println(color.YellowString("unknown command %s (try /help)", fields[0]))
	}
	return false
}

func (c *chatSession) send(text string) {
	clamped := assistant.ClampInput(text)
	if len(clamped) != len(text) {
		c.println(color.YellowString("message shortened to %d characters", assistant.MaxInputLength))
	}
	c.engine.Submit(clamped)
}

func (c *chatSession) printSuggestions() {
	c.println(color.HiBlackString("Try asking:"))
	for i, s := range c.catalog.Suggestions {
		c.println(fmt.Sprintf("  %d. %s", i+1, s))
	}
}

func (c *chatSession) printMessage(msg assistant.Message) {
	who := color.New(color.FgCyan, color.Bold).Sprint("buddy")
	if msg.IsUser {
		who = color.New(color.FgGreen, color.Bold).Sprint("you")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n  %s\n", who, color.HiBlackString(msg.Timestamp), msg.Text)
}

func (c *chatSession) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}
