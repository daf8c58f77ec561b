// ABOUTME: Tests for the embedded content catalog
// ABOUTME: Validates shipped content and rejects malformed documents

package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lehmate/internal/assistant"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Suggestions)
	assert.Equal(t, "Tourist Helpline Ladakh", c.EmergencyContact.Title)
	assert.True(t, c.ModelStatus.Offline)
	assert.NotEmpty(t, c.Downloads)
}

func TestDefault_SuggestionsHitEveryTopic(t *testing.T) {
	topics := map[assistant.Topic]bool{}
	for _, s := range Default().Suggestions {
		topics[assistant.Match(s).Topic] = true
	}
	for _, r := range assistant.Rules() {
		assert.True(t, topics[r.Topic], "no suggestion reaches %s", r.Topic)
	}
}

func TestCatalog_Suggestion(t *testing.T) {
	c := Default()

	s, ok := c.Suggestion(0)
	assert.True(t, ok)
	assert.Equal(t, c.Suggestions[0], s)

	_, ok = c.Suggestion(-1)
	assert.False(t, ok)
	_, ok = c.Suggestion(len(c.Suggestions))
	assert.False(t, ok)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("suggestions: []"))
	assert.Error(t, err)

	_, err = Parse([]byte("suggestions: [a]\ndownloads:\n  - id: x\n    status: broken\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("suggestions: [a]\ndownloads:\n  - id: x\n    status: available\n    progress: 120\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("suggestions: [unterminated"))
	assert.Error(t, err)
}
