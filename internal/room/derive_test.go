package room

import (
	"testing"
	"time"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

func intPtr(n int) *int { return &n }

func TestOverlayVisible(t *testing.T) {
	cases := []struct {
		name string
		rs   api.ReadyStatus
		want bool
	}{
		{
			name: "timer active above threshold",
			rs:   api.ReadyStatus{TimerActive: true, TimerRemaining: intPtr(11)},
			want: false,
		},
		{
			name: "timer active at threshold",
			rs:   api.ReadyStatus{TimerActive: true, TimerRemaining: intPtr(10)},
			want: true,
		},
		{
			name: "timer active without remaining value",
			rs:   api.ReadyStatus{TimerActive: true, TimerRemaining: nil},
			want: false,
		},
		{
			name: "timer inactive with low remaining",
			rs:   api.ReadyStatus{TimerActive: false, TimerRemaining: intPtr(3)},
			want: false,
		},
		{
			name: "timer active at zero",
			rs:   api.ReadyStatus{TimerActive: true, TimerRemaining: intPtr(0)},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OverlayVisible(tc.rs); got != tc.want {
				t.Fatalf("OverlayVisible: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanVote(t *testing.T) {
	vk := api.Votekick{
		TargetID:       "t",
		EligibleVoters: []string{"a", "b", "c"},
		VotesFor:       []string{"a"},
		VotesAgainst:   []string{},
	}

	cases := []struct {
		name  string
		voter string
		want  bool
	}{
		{name: "eligible and not yet voted", voter: "b", want: true},
		{name: "already voted for", voter: "a", want: false},
		{name: "not eligible", voter: "d", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanVote(vk, tc.voter); got != tc.want {
				t.Fatalf("CanVote(%q): got %v, want %v", tc.voter, got, tc.want)
			}
		})
	}
}

func TestHasVotedCountsBothSides(t *testing.T) {
	vk := api.Votekick{
		VotesFor:     []string{"a"},
		VotesAgainst: []string{"b"},
	}
	if !HasVoted(vk, "a") || !HasVoted(vk, "b") {
		t.Fatalf("voters on either side should count as having voted")
	}
	if HasVoted(vk, "c") {
		t.Fatalf("non-voter reported as having voted")
	}
}

func TestIsReadyScansList(t *testing.T) {
	participants := []api.Participant{
		{GoogleSessionID: "u1", IsReady: false},
		{GoogleSessionID: "u2", IsReady: true},
	}
	if !IsReady(participants, "u2") {
		t.Fatalf("expected u2 ready")
	}
	if IsReady(participants, "u1") {
		t.Fatalf("expected u1 not ready")
	}
	if IsReady(participants, "missing") {
		t.Fatalf("absent user must derive as not ready")
	}
}

func TestVoteTimeLeft(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		expiry string
		want   int
	}{
		{name: "future expiry rounds up", expiry: now.Add(42500 * time.Millisecond).Format(time.RFC3339Nano), want: 43},
		{name: "past expiry clamps to zero", expiry: now.Add(-5 * time.Second).Format(time.RFC3339), want: 0},
		{name: "garbage expiry counts as expired", expiry: "not-a-time", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vk := api.Votekick{ExpiryTime: tc.expiry}
			if got := VoteTimeLeft(vk, now); got != tc.want {
				t.Fatalf("VoteTimeLeft: got %d, want %d", got, tc.want)
			}
		})
	}
}
