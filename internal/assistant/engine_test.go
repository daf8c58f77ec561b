// ABOUTME: Tests for the conversation engine's log, delayed replies, and teardown.
// ABOUTME: Drives replies through ManualScheduler so ordering is deterministic.

package assistant

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	clock := func() time.Time {
		return time.Date(2026, 7, 14, 10, 30, 0, 0, time.UTC)
	}
	eng := New(Options{Scheduler: sched, Clock: clock})
	t.Cleanup(eng.Close)
	return eng, sched
}

func TestEngine_StartsWithGreeting(t *testing.T) {
	eng, _ := newTestEngine(t)

	msgs := eng.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Greeting, msgs[0].Text)
	assert.False(t, msgs[0].IsUser)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, "10:30 AM", msgs[0].Timestamp)
	assert.True(t, eng.SuggestionsVisible())
}

func TestEngine_SubmitAppendsUserThenReply(t *testing.T) {
	eng, sched := newTestEngine(t)

	user, ok := eng.Submit("  What should I pack?  ")
	require.True(t, ok)
	assert.Equal(t, "What should I pack?", user.Text)
	assert.True(t, user.IsUser)

	msgs := eng.Messages()
	require.Len(t, msgs, 2, "user entry is appended synchronously")
	assert.Equal(t, user, msgs[1])
	assert.Equal(t, 1, eng.Pending())
	assert.False(t, eng.SuggestionsVisible())

	sched.Advance(999 * time.Millisecond)
	assert.Len(t, eng.Messages(), 2, "reply must not arrive before the delay")

	sched.Advance(time.Millisecond)
	msgs = eng.Messages()
	require.Len(t, msgs, 3)
	assert.False(t, msgs[2].IsUser)
	assert.Equal(t, Match("pack").Reply, msgs[2].Text)
	assert.NotEqual(t, msgs[1].ID, msgs[2].ID)
	assert.Equal(t, 0, eng.Pending())
}

func TestEngine_EmptyInputIsNoop(t *testing.T) {
	eng, sched := newTestEngine(t)

	for _, in := range []string{"", "   ", "\t\n", " \r\n "} {
		_, ok := eng.Submit(in)
		assert.False(t, ok)
	}

	assert.Len(t, eng.Messages(), 1)
	assert.Equal(t, 0, eng.Pending())
	assert.Equal(t, 0, sched.Pending(), "nothing may be scheduled for empty input")
}

func TestEngine_FirstRuleWinsThroughSubmit(t *testing.T) {
	eng, sched := newTestEngine(t)

	eng.Submit("pack food for the lake")
	sched.Advance(DefaultReplyDelay)

	msgs := eng.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Match("packing").Reply, msgs[2].Text)
}

func TestEngine_FallbackThroughSubmit(t *testing.T) {
	eng, sched := newTestEngine(t)

	eng.Submit("What language is spoken in Leh?")
	sched.Advance(DefaultReplyDelay)

	msgs := eng.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Fallback().Reply, msgs[2].Text)
}

func TestEngine_SuggestionBehavesLikeSubmit(t *testing.T) {
	eng, sched := newTestEngine(t)

	user, ok := eng.SubmitSuggestion("Best time to visit Nubra Valley?")
	require.True(t, ok)
	assert.True(t, user.IsUser)
	sched.Advance(DefaultReplyDelay)

	msgs := eng.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Match("nubra").Reply, msgs[2].Text)
}

func TestEngine_OverlappingSubmissions(t *testing.T) {
	eng, sched := newTestEngine(t)

	first, _ := eng.Submit("tell me about pangong")
	sched.Advance(400 * time.Millisecond)
	second, _ := eng.Submit("what do people eat")
	assert.Equal(t, 2, eng.Pending())

	sched.Advance(600 * time.Millisecond)
	sched.Advance(400 * time.Millisecond)

	msgs := eng.Messages()
	require.Len(t, msgs, 5)

	index := map[string]int{}
	for i, m := range msgs {
		index[m.ID] = i
	}
	// each reply lands after its own trigger; neither clobbers the other
	assert.Equal(t, Match("lake").Reply, msgs[3].Text)
	assert.Equal(t, Match("food").Reply, msgs[4].Text)
	assert.Less(t, index[first.ID], 3)
	assert.Less(t, index[second.ID], 4)
}

func TestEngine_IDsDistinctWithinSameInstant(t *testing.T) {
	eng, sched := newTestEngine(t) // frozen clock: every message shares one instant

	for i := 0; i < 50; i++ {
		eng.Submit("altitude?")
	}
	sched.Advance(DefaultReplyDelay)

	msgs := eng.Messages()
	require.Len(t, msgs, 101)
	seen := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestEngine_CancelDropsOnlyThatReply(t *testing.T) {
	eng, sched := newTestEngine(t)

	a, _ := eng.Submit("nubra")
	b, _ := eng.Submit("food")

	assert.True(t, eng.Cancel(a.ID))
	assert.False(t, eng.Cancel(a.ID), "second cancel finds nothing pending")
	assert.False(t, eng.Cancel("no-such-id"))

	sched.Advance(DefaultReplyDelay)

	msgs := eng.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, b.ID, msgs[2].ID)
	assert.Equal(t, Match("food").Reply, msgs[3].Text)
}

func TestEngine_CloseCancelsPendingReplies(t *testing.T) {
	eng, sched := newTestEngine(t)

	eng.Submit("pack")
	eng.Submit("lake")
	eng.Close()

	assert.Equal(t, 0, eng.Pending())
	assert.Equal(t, 0, sched.Pending())
	sched.Advance(DefaultReplyDelay)
	assert.Len(t, eng.Messages(), 3, "replies never arrive after teardown")

	_, ok := eng.Submit("food")
	assert.False(t, ok, "closed engine ignores submissions")
	eng.Close()
}

func TestEngine_SnapshotIsReadOnly(t *testing.T) {
	eng, _ := newTestEngine(t)

	snap := eng.Messages()
	snap[0].Text = "tampered"
	assert.Equal(t, Greeting, eng.Messages()[0].Text)
}

func TestEngine_PublishesToBroadcaster(t *testing.T) {
	sched := NewManualScheduler()
	b := NewBroadcaster(nil)
	defer b.Close()

	eng := New(Options{Scheduler: sched, Broadcaster: b})
	defer eng.Close()

	ch, _ := b.Subscribe(t.Context())

	user, _ := eng.Submit("valley views")
	sched.Advance(DefaultReplyDelay)

	got := []Message{<-ch, <-ch}
	assert.Equal(t, user.ID, got[0].ID)
	assert.False(t, got[1].IsUser)
	assert.Equal(t, Match("valley").Reply, got[1].Text)
}

func TestEngine_TimerScheduler(t *testing.T) {
	eng := New(Options{ReplyDelay: 10 * time.Millisecond})
	defer eng.Close()

	eng.Submit("altitude sickness tips")
	assert.Len(t, eng.Messages(), 2)

	require.Eventually(t, func() bool {
		return eng.Len() == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, Match("sickness").Reply, eng.Messages()[2].Text)
}

func TestEngine_ConcurrentSubmissions(t *testing.T) {
	eng := New(Options{ReplyDelay: 5 * time.Millisecond})
	defer eng.Close()

	const n = 40
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			eng.Submit("pangong at sunrise")
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return eng.Len() == 1+2*n
	}, 2*time.Second, 5*time.Millisecond)

	// every reply follows at least as many user entries as replies before it
	users, replies := 0, 0
	for _, m := range eng.Messages()[1:] {
		if m.IsUser {
			users++
		} else {
			replies++
		}
		assert.LessOrEqual(t, replies, users)
	}
}
