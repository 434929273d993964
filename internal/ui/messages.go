package ui

import (
	"github.com/icebreak-chat/icebreak-go/internal/api"
)

// Poll ticks. Each active view owns its own tick loop; the generation
// stamp keeps a tick left over from a previous visit from re-arming a
// second loop next to the current one.
type roomTickMsg struct {
	gen int
}

type browseTickMsg struct {
	gen int
}

// roomSnapshotMsg carries one full room state plus the sequence number the
// fetch was stamped with. Both poll responses and POST-embedded states
// arrive as this message and converge on the same apply path.
type roomSnapshotMsg struct {
	seq   uint64
	state api.RoomState
}

type roomFetchErrMsg struct {
	seq uint64
	err error
}

// mutationErrMsg is a failed user action. Unlike poll errors it sticks
// until the user retries or dismisses it.
type mutationErrMsg struct {
	err error
}

type readyAckMsg struct {
	err error
}

type roomsMsg struct {
	seq   uint64
	rooms []api.RoomSummary
}

type roomsErrMsg struct {
	seq uint64
	err error
}

type authDoneMsg struct {
	user api.User
	err  error
}

type roomCreatedMsg struct {
	roomID string
	err    error
}

type roomJoinedMsg struct {
	roomID string
	title  string
	err    error
}

type roomLeftMsg struct {
	err error
}

type assistDoneMsg struct{}

type gameCatalogMsg struct {
	scenarios []api.Scenario
	gms       []api.GameMaster
	err       error
}

type gameStartedMsg struct {
	info api.GameInfo
	err  error
}

type turnResultMsg struct {
	result api.TurnResult
	err    error
}

type storyMsg struct {
	lines      []string
	transcript string
	err        error
}
