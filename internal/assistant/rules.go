// ABOUTME: Ordered keyword rule table that picks the assistant's canned reply.
// ABOUTME: Case-insensitive substring matching, first match wins, fallback otherwise.

package assistant

import (
	"slices"
	"strings"
)

// Topic identifies which rule produced a reply.
type Topic string

// Topics in evaluation order, followed by the fallback.
const (
	TopicPacking  Topic = "packing"
	TopicPangong  Topic = "pangong"
	TopicCuisine  Topic = "cuisine"
	TopicAltitude Topic = "altitude"
	TopicNubra    Topic = "nubra"
	TopicFallback Topic = "fallback"
)

// Rule maps a set of trigger substrings to a fixed reply.
type Rule struct {
	Topic    Topic
	Triggers []string
	Reply    string
}

// Matches reports whether any trigger appears in normalized (lower-cased) text.
func (r Rule) Matches(normalized string) bool {
	for _, trigger := range r.Triggers {
		if strings.Contains(normalized, trigger) {
			return true
		}
	}
	return false
}

var rules = []Rule{
	{
		Topic:    TopicPacking,
		Triggers: []string{"pack", "packing"},
		Reply: "For Ladakh, pack warm clothes even in summer! Essentials include: thermal wear, " +
			"windproof jacket, sunglasses, sunscreen (high SPF), comfortable trekking shoes, and a " +
			"first-aid kit. Don't forget your camera for those stunning landscapes!",
	},
	{
		Topic:    TopicPangong,
		Triggers: []string{"pangong", "lake"},
		Reply: "Pangong Lake is breathtaking! Best visited early morning or late afternoon for " +
			"photography. The lake changes colors throughout the day. Stay overnight at nearby camps " +
			"for the full experience. Remember, it's at 4,350m altitude, so take it easy.",
	},
	{
		Topic:    TopicCuisine,
		Triggers: []string{"food", "eat"},
		Reply: "Try these local delicacies: Momos (steamed dumplings), Thukpa (noodle soup), Skyu " +
			"(traditional pasta), Chang (barley beer), and butter tea. For vegetarians, Dal-rice and " +
			"local bread are always available. German Bakery in Leh is popular among travelers!",
	},
	{
		Topic:    TopicAltitude,
		Triggers: []string{"altitude", "sickness"},
		Reply: "Altitude sickness prevention: Arrive in Leh and rest for 24-48 hours. Drink 3-4 " +
			"liters of water daily, avoid alcohol initially, eat light meals, and don't overexert. If " +
			"you feel dizzy, nauseous, or have headaches, descend immediately and consult a doctor.",
	},
	{
		Topic:    TopicNubra,
		Triggers: []string{"nubra", "valley"},
		Reply: "Nubra Valley is magical! Famous for Bactrian camels at Hunder sand dunes, Diskit " +
			"Monastery with giant Buddha statue, and beautiful landscapes. Stay overnight for the best " +
			"experience. The road via Khardung La pass is an adventure itself!",
	},
}

var fallback = Rule{
	Topic: TopicFallback,
	Reply: "That's a great question about Ladakh! While I have extensive knowledge about the " +
		"region, I'd recommend checking with local guides for the most current information. Is " +
		"there anything specific about places to visit, weather, or local culture you'd like to know?",
}

// Rules returns the rule table in evaluation order. The fallback is not included.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Triggers = slices.Clone(r.Triggers)
		out[i] = r
	}
	return out
}

// Fallback returns the rule used when nothing else matches.
func Fallback() Rule {
	return fallback
}

// Match returns the first rule whose triggers occur in text, or the fallback.
func Match(text string) Rule {
	normalized := strings.ToLower(text)
	for _, r := range rules {
		if r.Matches(normalized) {
			return r
		}
	}
	return fallback
}

// Classify returns the reply for text. Every input maps to exactly one reply.
func Classify(text string) string {
	return Match(text).Reply
}
