// Package session persists the current-user record between runs. The file
// is a cache, not a source of truth: it is never revalidated proactively;
// staleness surfaces only when a server call rejects the cached identity.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

const userFile = "user.json"

// Store reads and writes the persisted user record under one state dir.
// There is a single writer: the record is read once per run and written
// only after a successful auth or guest-creation call.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the cached user, or nil when none is stored. A record that
// fails to parse is discarded on the spot and treated as absent.
func (s *Store) Load() (*api.User, error) {
	path := filepath.Join(s.dir, userFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user record: %w", err)
	}

	var u api.User
	if err := json.Unmarshal(data, &u); err != nil || u.GoogleSessionID == "" {
		_ = os.Remove(path)
		return nil, nil
	}
	return &u, nil
}

// Save writes the record after a successful sign-in.
func (s *Store) Save(u api.User) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	path := filepath.Join(s.dir, userFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write user record: %w", err)
	}
	return nil
}

// Clear removes the record on sign-out. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(filepath.Join(s.dir, userFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear user record: %w", err)
	}
	return nil
}

// GuestIdentity builds the throwaway identity used when the user skips the
// external OAuth flow: a guest_<unix-ms>_<random> session id plus a
// generated avatar.
func GuestIdentity(displayName string) (sessionID, avatarURL string) {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	sessionID = fmt.Sprintf("guest_%d_%s", time.Now().UnixMilli(), random)
	avatarURL = "https://ui-avatars.com/api/?name=" + url.QueryEscape(displayName) +
		"&background=6366f1&color=fff"
	return sessionID, avatarURL
}
