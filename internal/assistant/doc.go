// Package assistant implements the travel assistant's conversation engine.
//
// # Overview
//
// An Engine owns a single append-only message log. The first entry is always
// the greeting. Each accepted submission appends the user's message at once
// and schedules the assistant's reply, which is appended after a fixed delay:
//
//	eng := assistant.New(assistant.Options{ReplyDelay: time.Second})
//	defer eng.Close()
//
//	eng.Submit("What should I pack?")
//	msgs := eng.Messages() // greeting, user message; reply follows later
//
// # Classification
//
// Replies come from an ordered rule table. Input is lower-cased and each
// rule's trigger words are tested as substrings; the first rule that matches
// wins and anything unmatched gets the fallback reply. Order matters: "pack
// food for the lake" is a packing question.
//
// # Scheduling
//
// Every pending reply is its own Task obtained from a Scheduler. Tasks share
// no state, so one submission can be cancelled (Engine.Cancel) without
// touching another. Close cancels everything still pending; those replies
// are never delivered.
//
// TimerScheduler backs tasks with time.AfterFunc. ManualScheduler runs tasks
// only when its clock is advanced, which keeps tests deterministic.
//
// # Observers
//
// A Broadcaster fans every appended message out to subscribers. Rendering
// layers (the HTTP websocket feed, the terminal chat) subscribe and never
// mutate the log themselves.
package assistant
