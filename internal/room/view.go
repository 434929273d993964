package room

import "github.com/icebreak-chat/icebreak-go/internal/api"

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseErrored Phase = "errored"
)

// View reconciles room snapshots into renderable state. There are two
// independent sources of snapshots — the periodic poll and the room_state
// embedded in mutation responses — and both go through Apply, which always
// replaces the whole snapshot and discards anything older than what is
// already applied. A fetch failure keeps the last good snapshot visible;
// stale-but-present beats a blank screen.
//
// Not safe for concurrent use. The UI event loop owns it.
type View struct {
	selfID string

	phase    Phase
	snapshot api.RoomState
	hasSnap  bool
	errMsg   string

	issued  uint64 // last sequence handed to a fetch
	applied uint64 // sequence of the applied snapshot
}

func NewView(selfID string) *View {
	return &View{selfID: selfID, phase: PhaseLoading}
}

// StampFetch reserves the sequence number for a fetch about to be issued.
// Both poll GETs and mutation POSTs stamp here so their responses are
// totally ordered against each other.
func (v *View) StampFetch() uint64 {
	v.issued++
	return v.issued
}

// Apply adopts a snapshot if it is newer than the applied one. Returns
// false when the snapshot was discarded as stale.
func (v *View) Apply(snap api.RoomState, seq uint64) bool {
	if seq <= v.applied {
		return false
	}
	v.applied = seq
	v.snapshot = snap
	v.hasSnap = true
	v.phase = PhaseReady
	v.errMsg = ""
	return true
}

// Fail records a fetch or mutation failure. Responses older than the
// applied snapshot are dropped outright; a late error from a superseded
// request should not disturb newer data. Failures never advance the applied
// sequence, so a success that raced the failed request can still land.
func (v *View) Fail(err error, seq uint64) bool {
	if seq <= v.applied {
		return false
	}
	v.errMsg = err.Error()
	if !v.hasSnap {
		v.phase = PhaseErrored
	}
	return true
}

// MutationError surfaces a failed user action without touching the
// snapshot or the polling state machine.
func (v *View) MutationError(err error) {
	v.errMsg = err.Error()
}

// ClearError drops the inline error string (e.g. when the user dismisses
// it). The snapshot is untouched.
func (v *View) ClearError() {
	v.errMsg = ""
	if v.phase == PhaseErrored && v.hasSnap {
		v.phase = PhaseReady
	}
}

func (v *View) Phase() Phase { return v.phase }

func (v *View) Err() string { return v.errMsg }

// Snapshot returns the last good snapshot, which may be stale while the
// view is errored.
func (v *View) Snapshot() (api.RoomState, bool) {
	return v.snapshot, v.hasSnap
}

// SelfReady derives the local user's ready flag from the participant list
// of the applied snapshot.
func (v *View) SelfReady() bool {
	if !v.hasSnap {
		return false
	}
	return IsReady(v.snapshot.Participants, v.selfID)
}

// ShowOverlay derives ready-overlay visibility from the applied snapshot.
func (v *View) ShowOverlay() bool {
	if !v.hasSnap {
		return false
	}
	return OverlayVisible(v.snapshot.ReadyStatus)
}

func (v *View) SelfID() string { return v.selfID }
