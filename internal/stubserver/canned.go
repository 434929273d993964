package stubserver

import "strings"

// The hosted service generates prompts with an LLM; the stub rotates
// through fixed pools per activity type so behavior is deterministic.
var icebreakerPools = map[string][]string{
	"introductions": {
		"What's your name and what's something you're excited about this semester?",
		"Where are you from, and what's one thing everyone gets wrong about it?",
		"What class are you most looking forward to, and why?",
	},
	"getting_to_know": {
		"If you could have dinner with anyone, alive or dead, who would it be and why?",
		"What's a hobby you picked up recently that surprised you?",
		"What song have you had on repeat this week?",
	},
	"creative": {
		"If you could have any superpower for just one day, what would you do with it?",
		"You can instantly master one skill. Which one, and what's the first thing you do?",
		"If your life had a theme park ride, what would it be called?",
	},
	"reflection": {
		"What's one piece of advice you'd give to your freshman year self?",
		"What's a small decision that ended up changing a lot for you?",
		"What's something you believed strongly a year ago that you've changed your mind about?",
	},
}

const fallbackIcebreaker = "What's the most interesting thing that happened to you this week?"

func nextIcebreaker(activityType string, asked int) string {
	pool, ok := icebreakerPools[activityType]
	if !ok || len(pool) == 0 {
		return fallbackIcebreaker
	}
	return pool[asked%len(pool)]
}

// assistantReply produces a canned writing-assistant response keyed on the
// assistance type, echoing enough of the draft to be useful in manual
// testing.
func assistantReply(assistType, draft string) string {
	draft = strings.TrimSpace(draft)
	switch assistType {
	case "translation":
		return "Here's a clearer way to phrase that: \"" + draft + "\" — the meaning carries over well as written."
	case "tone":
		return "Your draft reads fine. To sound warmer, try opening with the other person's name and a quick acknowledgement before: \"" + draft + "\""
	default:
		return "That works! One tip: follow \"" + draft + "\" with a question so others have an easy way to respond."
	}
}
