// Package browser holds the room-list view-model. Each refresh fully
// replaces the list; there is no client-side merging.
package browser

import "github.com/icebreak-chat/icebreak-go/internal/api"

// View is the room browser's local state. Like the room view-model it
// orders fetch responses by sequence number so a slow refresh cannot
// overwrite a newer one.
type View struct {
	rooms   []api.RoomSummary
	loaded  bool
	errMsg  string
	issued  uint64
	applied uint64
}

func NewView() *View { return &View{} }

func (v *View) StampFetch() uint64 {
	v.issued++
	return v.issued
}

// Apply replaces the whole listing. Stale responses are discarded.
func (v *View) Apply(rooms []api.RoomSummary, seq uint64) bool {
	if seq <= v.applied {
		return false
	}
	v.applied = seq
	v.rooms = rooms
	v.loaded = true
	v.errMsg = ""
	return true
}

// Fail records a refresh failure; the previous listing stays visible.
func (v *View) Fail(err error, seq uint64) bool {
	if seq <= v.applied {
		return false
	}
	v.errMsg = err.Error()
	return true
}

func (v *View) Rooms() []api.RoomSummary { return v.rooms }

func (v *View) Loaded() bool { return v.loaded }

func (v *View) Err() string { return v.errMsg }

// CanJoin is a UX hint only: it disables the join action locally, but the
// join endpoint remains the authority and may still reject.
func CanJoin(room api.RoomSummary, signedIn bool) bool {
	return signedIn && room.HasSpace
}
