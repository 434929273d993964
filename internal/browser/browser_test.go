package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

func TestRefreshReplacesWholeList(t *testing.T) {
	v := NewView()

	first := []api.RoomSummary{{SessionID: "a"}, {SessionID: "b"}}
	require.True(t, v.Apply(first, v.StampFetch()))

	second := []api.RoomSummary{{SessionID: "c"}}
	require.True(t, v.Apply(second, v.StampFetch()))

	require.Len(t, v.Rooms(), 1)
	assert.Equal(t, "c", v.Rooms()[0].SessionID)
}

func TestSlowRefreshCannotRevertNewerList(t *testing.T) {
	v := NewView()
	seqA := v.StampFetch()
	seqB := v.StampFetch()

	require.True(t, v.Apply([]api.RoomSummary{{SessionID: "new"}}, seqB))
	assert.False(t, v.Apply([]api.RoomSummary{{SessionID: "old"}}, seqA))
	assert.Equal(t, "new", v.Rooms()[0].SessionID)
}

func TestFailedRefreshKeepsListing(t *testing.T) {
	v := NewView()
	require.True(t, v.Apply([]api.RoomSummary{{SessionID: "a"}}, v.StampFetch()))
	require.True(t, v.Fail(errors.New("network down"), v.StampFetch()))

	assert.Len(t, v.Rooms(), 1)
	assert.Equal(t, "network down", v.Err())

	require.True(t, v.Apply([]api.RoomSummary{{SessionID: "a"}}, v.StampFetch()))
	assert.Empty(t, v.Err())
}

func TestCanJoinIsOnlyAHint(t *testing.T) {
	cases := []struct {
		name     string
		room     api.RoomSummary
		signedIn bool
		want     bool
	}{
		{name: "space and signed in", room: api.RoomSummary{HasSpace: true}, signedIn: true, want: true},
		{name: "full room", room: api.RoomSummary{HasSpace: false}, signedIn: true, want: false},
		{name: "signed out", room: api.RoomSummary{HasSpace: true}, signedIn: false, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanJoin(tc.room, tc.signedIn))
		})
	}
}
