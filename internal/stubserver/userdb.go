package stubserver

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

// UserDB persists user records and their counters in an embedded SQLite
// database, matching the hosted service's storage. Use ":memory:" in tests.
type UserDB struct {
	db *sql.DB
}

func OpenUserDB(path string) (*UserDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open user db: %w", err)
	}
	// The registry serializes writes; a single connection keeps the
	// in-memory variant from seeing separate databases per conn.
	db.SetMaxOpenConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS users (
	google_session_id   TEXT PRIMARY KEY,
	display_name        TEXT NOT NULL,
	profile_picture_url TEXT,
	total_messages      INTEGER DEFAULT 0,
	rooms_joined        INTEGER DEFAULT 0
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init user db: %w", err)
	}
	return &UserDB{db: db}, nil
}

func (u *UserDB) Close() error { return u.db.Close() }

// Upsert creates or refreshes a user record, preserving counters, and
// returns the stored row.
func (u *UserDB) Upsert(sessionID, displayName, pictureURL string) (api.User, error) {
	_, err := u.db.Exec(`
INSERT INTO users (google_session_id, display_name, profile_picture_url)
VALUES (?, ?, ?)
ON CONFLICT(google_session_id) DO UPDATE SET
	display_name = excluded.display_name,
	profile_picture_url = excluded.profile_picture_url`,
		sessionID, displayName, pictureURL)
	if err != nil {
		return api.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u.Get(sessionID)
}

func (u *UserDB) Get(sessionID string) (api.User, error) {
	var user api.User
	var picture sql.NullString
	err := u.db.QueryRow(`
SELECT google_session_id, display_name, profile_picture_url, total_messages, rooms_joined
FROM users WHERE google_session_id = ?`, sessionID).
		Scan(&user.GoogleSessionID, &user.DisplayName, &picture, &user.TotalMessages, &user.RoomsJoined)
	if err != nil {
		return api.User{}, fmt.Errorf("get user: %w", err)
	}
	user.ProfilePictureURL = picture.String
	return user, nil
}

func (u *UserDB) BumpMessages(sessionID string) error {
	_, err := u.db.Exec(`UPDATE users SET total_messages = total_messages + 1 WHERE google_session_id = ?`, sessionID)
	return err
}

func (u *UserDB) BumpRoomsJoined(sessionID string) error {
	_, err := u.db.Exec(`UPDATE users SET rooms_joined = rooms_joined + 1 WHERE google_session_id = ?`, sessionID)
	return err
}
