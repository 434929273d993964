// Package narrative is the client side of the story-game endpoints: start a
// session, submit turns, and replay or download the transcript.
package narrative

import (
	"regexp"
	"strings"
)

// DialogueLine is one parsed "Speaker: text" entry from a dialogue segment.
type DialogueLine struct {
	Speaker string
	Content string
}

var speakerRe = regexp.MustCompile(`^(.+?):\s(.+)$`)

// ParseSegment splits a dialogue_segment into speaker lines. Lines without
// a speaker prefix are attributed to the GM, matching how the original
// playback screen renders narration.
func ParseSegment(segment string) []DialogueLine {
	var lines []DialogueLine
	for _, raw := range strings.Split(segment, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if m := speakerRe.FindStringSubmatch(raw); m != nil {
			lines = append(lines, DialogueLine{Speaker: m[1], Content: m[2]})
			continue
		}
		lines = append(lines, DialogueLine{Speaker: "GM", Content: raw})
	}
	return lines
}

// outcomeLabels maps scenario ids to the heading used for the survivor-ish
// list when a game ends.
var outcomeLabels = map[string]string{
	"lifeboat":            "Survivors",
	"bank_heist":          "Released",
	"mars_outpost":        "Oxygen Recipients",
	"submarine_leak":      "Dive Team",
	"expedition_blizzard": "Sheltered",
	"time_paradox":        "Stabilized",
}

// OutcomeLabel returns the display heading for a scenario's outcome list.
func OutcomeLabel(scenarioID string) string {
	if lbl, ok := outcomeLabels[scenarioID]; ok {
		return lbl
	}
	return "Outcome"
}
