package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

func TestLoadMissingReturnsNil(t *testing.T) {
	s := NewStore(t.TempDir())
	u, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested"))
	want := api.User{
		GoogleSessionID: "guest_abc",
		DisplayName:     "Ana",
		TotalMessages:   4,
		RoomsJoined:     2,
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestMalformedRecordIsDiscarded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, userFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewStore(dir)
	u, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, u)

	// The bad record is gone; the next load starts clean.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Clear())
	require.NoError(t, s.Save(api.User{GoogleSessionID: "x", DisplayName: "X"}))
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())

	u, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestGuestIdentity(t *testing.T) {
	id, avatar := GuestIdentity("Max Müller")
	assert.Regexp(t, `^guest_\d{13,}_[0-9a-f]{9}$`, id)
	assert.Contains(t, avatar, "ui-avatars.com")
	assert.Contains(t, avatar, "Max+M%C3%BCller")

	id2, _ := GuestIdentity("Max Müller")
	assert.NotEqual(t, id, id2, "guest ids must be unique per sign-in")
}
