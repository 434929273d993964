package room

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

func snapshotFixture(readyCount int) api.RoomState {
	return api.RoomState{
		SessionID: "room-1",
		RoomTitle: "Coffee Chat",
		Participants: []api.Participant{
			{GoogleSessionID: "me", DisplayName: "Me", IsReady: readyCount > 0},
			{GoogleSessionID: "u2", DisplayName: "Sam", IsReady: readyCount > 1},
		},
		ReadyStatus: api.ReadyStatus{ReadyCount: readyCount, TotalParticipants: 2},
	}
}

func TestApplyMovesLoadingToReady(t *testing.T) {
	v := NewView("me")
	require.Equal(t, PhaseLoading, v.Phase())

	seq := v.StampFetch()
	require.True(t, v.Apply(snapshotFixture(0), seq))

	assert.Equal(t, PhaseReady, v.Phase())
	snap, ok := v.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Coffee Chat", snap.RoomTitle)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	v := NewView("me")

	seqA := v.StampFetch() // slow poll issued first
	seqB := v.StampFetch() // later poll

	newer := snapshotFixture(2)
	require.True(t, v.Apply(newer, seqB))

	// A resolves after B due to network delay; it must not win.
	older := snapshotFixture(0)
	assert.False(t, v.Apply(older, seqA))

	snap, _ := v.Snapshot()
	assert.Equal(t, 2, snap.ReadyStatus.ReadyCount)
	assert.True(t, v.SelfReady())
}

func TestPostAndPollConverge(t *testing.T) {
	// Applying a POST response's embedded room_state must leave the view in
	// the same shape as applying an equal GET snapshot.
	fromPoll := NewView("me")
	fromPost := NewView("me")

	snap := snapshotFixture(1)
	require.True(t, fromPoll.Apply(snap, fromPoll.StampFetch()))
	require.True(t, fromPost.Apply(snap, fromPost.StampFetch()))

	gotPoll, _ := fromPoll.Snapshot()
	gotPost, _ := fromPost.Snapshot()
	if diff := cmp.Diff(gotPoll, gotPost); diff != "" {
		t.Fatalf("snapshot mismatch (-poll +post):\n%s", diff)
	}
	assert.Equal(t, fromPoll.SelfReady(), fromPost.SelfReady())
	assert.Equal(t, fromPoll.ShowOverlay(), fromPost.ShowOverlay())
}

func TestReapplyingIdenticalSnapshotIsStable(t *testing.T) {
	v := NewView("me")
	snap := snapshotFixture(1)

	require.True(t, v.Apply(snap, v.StampFetch()))
	before := v.SelfReady()

	require.True(t, v.Apply(snap, v.StampFetch()))
	assert.Equal(t, before, v.SelfReady(), "ready flag flickered on identical input")
}

func TestFetchFailureKeepsLastGoodSnapshot(t *testing.T) {
	v := NewView("me")
	require.True(t, v.Apply(snapshotFixture(1), v.StampFetch()))

	seq := v.StampFetch()
	require.True(t, v.Fail(errors.New("connection refused"), seq))

	// Stale data stays visible and the phase remains renderable.
	snap, ok := v.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Coffee Chat", snap.RoomTitle)
	assert.Equal(t, PhaseReady, v.Phase())
	assert.Equal(t, "connection refused", v.Err())

	// Next successful poll self-heals.
	require.True(t, v.Apply(snapshotFixture(2), v.StampFetch()))
	assert.Empty(t, v.Err())
}

func TestFailureBeforeFirstSnapshotErrors(t *testing.T) {
	v := NewView("me")
	require.True(t, v.Fail(errors.New("boom"), v.StampFetch()))
	assert.Equal(t, PhaseErrored, v.Phase())

	require.True(t, v.Apply(snapshotFixture(0), v.StampFetch()))
	assert.Equal(t, PhaseReady, v.Phase())
}

func TestLateFailureFromSupersededFetchIsDropped(t *testing.T) {
	v := NewView("me")
	seqOld := v.StampFetch()
	require.True(t, v.Apply(snapshotFixture(1), v.StampFetch()))

	assert.False(t, v.Fail(errors.New("timeout"), seqOld))
	assert.Empty(t, v.Err())
}

func TestSuccessAfterNewerFailureStillLands(t *testing.T) {
	// Failures do not advance the applied sequence, so a slow success from
	// an earlier fetch may still be adopted over nothing.
	v := NewView("me")
	seqA := v.StampFetch()
	seqB := v.StampFetch()

	require.True(t, v.Fail(errors.New("timeout"), seqB))
	require.True(t, v.Apply(snapshotFixture(1), seqA))
	assert.Equal(t, PhaseReady, v.Phase())
}

func TestClientNeverResolvesVotekicks(t *testing.T) {
	v := NewView("me")

	withVote := snapshotFixture(0)
	withVote.ActiveVotekicks = []api.Votekick{{
		TargetID:       "u2",
		VotesFor:       []string{"me", "u3"},
		VotesNeeded:    2,
		EligibleVoters: []string{"me", "u3"},
	}}
	require.True(t, v.Apply(withVote, v.StampFetch()))

	// Threshold reached, but the view renders exactly what the snapshot
	// says until the server removes the votekick.
	snap, _ := v.Snapshot()
	require.Len(t, snap.ActiveVotekicks, 1)

	resolved := snapshotFixture(0)
	resolved.ActiveVotekicks = nil
	require.True(t, v.Apply(resolved, v.StampFetch()))
	snap, _ = v.Snapshot()
	assert.Empty(t, snap.ActiveVotekicks)
}
