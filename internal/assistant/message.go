// ABOUTME: Message type for the assistant's conversation log.
// ABOUTME: Holds the greeting and the clock-time label format used for every entry.

package assistant

import (
	"time"
	"unicode/utf8"
)

// TimestampLayout renders a two-digit hour and minute with an AM/PM marker.
const TimestampLayout = "03:04 PM"

// MaxInputLength is the longest submission, in characters, accepted from a
// client. Boundaries clamp with ClampInput before calling Submit.
const MaxInputLength = 500

// Greeting is the first entry of every fresh log.
const Greeting = "Hello! I'm your AI travel assistant for Ladakh. I can help you with places to visit, " +
	"weather information, local customs, and travel tips. What would you like to know?"

// Message is one entry in the conversation log.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsUser    bool   `json:"is_user"`
	Timestamp string `json:"timestamp"`
}

// FormatTimestamp returns the label stored on a message created at t.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ClampInput truncates s to at most MaxInputLength characters without
// splitting a multi-byte rune.
func ClampInput(s string) string {
	if utf8.RuneCountInString(s) <= MaxInputLength {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxInputLength {
			return s[:i]
		}
		n++
	}
	return s
}
