// ABOUTME: Tests for the terminal chat session and command helpers
// ABOUTME: Drives the REPL over an io.Pipe with a manual reply scheduler

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lehmate/internal/assistant"
	"github.com/2389/lehmate/internal/config"
	"github.com/2389/lehmate/internal/content"
)

// syncBuffer is a bytes.Buffer safe for the reply feed and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestChat(t *testing.T) (*chatSession, *assistant.Engine, *assistant.ManualScheduler, *syncBuffer) {
	t.Helper()
	color.NoColor = true

	sched := assistant.NewManualScheduler()
	b := assistant.NewBroadcaster(nil)
	eng := assistant.New(assistant.Options{Scheduler: sched, Broadcaster: b})
	t.Cleanup(func() {
		eng.Close()
		b.Close()
	})

	out := &syncBuffer{}
	return newChatSession(eng, b, content.Default(), out), eng, sched, out
}

func TestChat_RunPrintsRepliesAsTheyArrive(t *testing.T) {
	c, eng, sched, out := newTestChat(t)

	pr, pw := io.Pipe()
	errCh := make(chan error, 1)
	go func() { errCh <- c.run(t.Context(), pr) }()

	_, err := fmt.Fprintln(pw, "tell me about pangong")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return eng.Len() == 2 }, time.Second, 5*time.Millisecond)

	assert.Contains(t, out.String(), assistant.Greeting)
	assert.Contains(t, out.String(), "Try asking:")
	assert.NotContains(t, out.String(), assistant.Match("lake").Reply)

	sched.Advance(assistant.DefaultReplyDelay)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), assistant.Match("lake").Reply)
	}, time.Second, 5*time.Millisecond)

	_, err = fmt.Fprintln(pw, "/quit")
	require.NoError(t, err)
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not return after /quit")
	}
}

func TestChat_RunEndsOnEOF(t *testing.T) {
	c, eng, _, _ := newTestChat(t)

	require.NoError(t, c.run(t.Context(), strings.NewReader("what to pack\n")))
	assert.Equal(t, 2, eng.Len())
}

func TestChat_Suggest(t *testing.T) {
	c, eng, _, out := newTestChat(t)
	catalog := content.Default()

	assert.False(t, c.handle("/suggest"))
	assert.Contains(t, out.String(), "1. "+catalog.Suggestions[0])

	assert.False(t, c.handle("/suggest 2"))
	msgs := eng.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, catalog.Suggestions[1], msgs[1].Text)
	assert.True(t, msgs[1].IsUser)

	c.handle("/suggest 0")
	c.handle("/suggest 99")
	c.handle("/suggest two")
	assert.Equal(t, 2, eng.Len())
	assert.Contains(t, out.String(), "no suggestion 99")
	assert.Contains(t, out.String(), "usage: /suggest N")
}

func TestChat_Commands(t *testing.T) {
	c, eng, _, out := newTestChat(t)

	assert.False(t, c.handle("   "))
	assert.False(t, c.handle("/history"))
	assert.Contains(t, out.String(), "buddy")
	assert.Contains(t, out.String(), assistant.Greeting)

	assert.False(t, c.handle("/dance"))
	assert.Contains(t, out.String(), "unknown command /dance")

	assert.True(t, c.handle("/quit"))
	assert.True(t, c.handle("/exit"))
	assert.Equal(t, 1, eng.Len())
}

func TestChat_LongInputIsShortened(t *testing.T) {
	c, eng, _, out := newTestChat(t)

	c.handle(strings.Repeat("x", assistant.MaxInputLength+20))

	msgs := eng.Messages()
	require.Len(t, msgs, 2)
	assert.Len(t, msgs[1].Text, assistant.MaxInputLength)
	assert.Contains(t, out.String(), "message shortened")
}

func TestChat_RunSurvivesVeryLongLine(t *testing.T) {
	c, eng, _, out := newTestChat(t)

	huge := strings.Repeat("x", 70_000) + " pack"
	input := huge + "\nwhat to eat\n"

	require.NoError(t, c.run(t.Context(), strings.NewReader(input)))

	msgs := eng.Messages()
	require.Len(t, msgs, 3, "both lines are submitted")
	assert.Len(t, msgs[1].Text, assistant.MaxInputLength)
	assert.Equal(t, "what to eat", msgs[2].Text)
	assert.Contains(t, out.String(), "message shortened")
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader(strings.Repeat("é", 5000)+"\r\nshort\nlast"), 16)

	long, err := readLine(r)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(long), maxLineBytes)
	assert.Equal(t, assistant.MaxInputLength, utf8.RuneCountInString(assistant.ClampInput(long)))

	line, err := readLine(r)
	require.NoError(t, err)
	assert.Equal(t, "short", line)

	line, err = readLine(r)
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = readLine(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestChat_RunReportsReadError(t *testing.T) {
	c, _, _, _ := newTestChat(t)

	err := c.run(t.Context(), iotest.ErrReader(errors.New("tty gone")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty gone")
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("LEHMATE_CONFIG", "/etc/lehmate.toml")
	assert.Equal(t, "/etc/lehmate.toml", getConfigPath())

	t.Setenv("LEHMATE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "lehmate", "config.yaml"), getConfigPath())
}

func TestGetDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "lehmate"), getDataPath())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(filepath.Join(dataHome, "lehmate")), cfg)
}

func TestLoadConfig_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestColorHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	logger.Info("hidden")
	logger.With("component", "store").Warn("slow write", "key", "hasLaunched")

	line := buf.String()
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "WRN slow write")
	assert.Contains(t, line, "component=store")
	assert.Contains(t, line, "key=hasLaunched")
}

func TestChatLogLevel(t *testing.T) {
	assert.Equal(t, "warn", chatLogLevel(config.LoggingConfig{Level: "info"}).Level)
	assert.Equal(t, "debug", chatLogLevel(config.LoggingConfig{Level: "debug"}).Level)
}
