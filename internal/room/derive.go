// Package room holds the room session view-model: reconciliation of server
// snapshots plus the pure derivations the UI renders from them. Nothing in
// here mutates server state.
package room

import (
	"math"
	"slices"
	"time"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

// overlayThreshold is the remaining-seconds cutoff below which the
// ready-countdown overlay becomes visible.
const overlayThreshold = 10

// OverlayVisible reports whether the ready-countdown overlay should show.
// It is a pure function of the latest snapshot: if the server stops
// reporting an active timer, the overlay disappears on the next poll no
// matter what number was displayed before.
func OverlayVisible(rs api.ReadyStatus) bool {
	return rs.TimerActive && rs.TimerRemaining != nil && *rs.TimerRemaining <= overlayThreshold
}

// IsReady scans the participant list for the local user's entry. The ready
// flag is always recomputed from the authoritative list, never cached from
// an optimistic toggle, so it cannot drift from server truth.
func IsReady(participants []api.Participant, selfID string) bool {
	for _, p := range participants {
		if p.GoogleSessionID == selfID {
			return p.IsReady
		}
	}
	return false
}

// HasVoted reports whether id appears in either voter set.
func HasVoted(vk api.Votekick, id string) bool {
	return slices.Contains(vk.VotesFor, id) || slices.Contains(vk.VotesAgainst, id)
}

// CanVote reports whether id may still cast a vote: eligible and not yet
// counted on either side.
func CanVote(vk api.Votekick, id string) bool {
	return slices.Contains(vk.EligibleVoters, id) && !HasVoted(vk, id)
}

// VoteTimeLeft computes the displayed countdown from wall-clock now, not a
// stored counter, so it is correct at whatever moment the view renders. An
// unparseable expiry counts as already expired.
func VoteTimeLeft(vk api.Votekick, now time.Time) int {
	expiry, err := parseWireTime(vk.ExpiryTime)
	if err != nil {
		return 0
	}
	secs := int(math.Ceil(expiry.Sub(now).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

// parseWireTime accepts both RFC3339 timestamps and the zone-less ISO
// variant some server builds emit.
func parseWireTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.Local)
}
