// Package api is the typed HTTP/JSON client for the icebreaker session
// service. All durable state lives on the server; the structs here are
// transient copies of whatever the last response carried.
package api

// User is the record the server keeps per signed-in or guest identity.
type User struct {
	GoogleSessionID   string `json:"google_session_id"`
	DisplayName       string `json:"display_name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	TotalMessages     int    `json:"total_messages"`
	RoomsJoined       int    `json:"rooms_joined"`
}

// RoomSummary is one row of the room browser listing.
type RoomSummary struct {
	SessionID        string `json:"session_id"`
	RoomTitle        string `json:"room_title"`
	ParticipantCount int    `json:"participant_count"`
	MaxParticipants  int    `json:"max_participants"`
	ActivityType     string `json:"activity_type"`
	CreatedAt        string `json:"created_at"`
	HasSpace         bool   `json:"has_space"`
}

type Participant struct {
	GoogleSessionID string `json:"google_session_id"`
	DisplayName     string `json:"display_name"`
	ProfilePicture  string `json:"profile_picture,omitempty"`
	MessageCount    int    `json:"message_count"`
	IsReady         bool   `json:"is_ready"`
	JoinedAt        string `json:"joined_at"`
}

// Message types on the wire.
const (
	MessageTypeUser       = "user_message"
	MessageTypeSystem     = "system_message"
	MessageTypeIcebreaker = "icebreaker"
)

type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
}

// Votekick is a time-boxed poll to remove a participant. The for/against
// voter sets are disjoint and the eligible set is fixed at creation;
// resolution happens server-side only.
type Votekick struct {
	TargetID       string   `json:"target_id"`
	TargetName     string   `json:"target_name"`
	InitiatorName  string   `json:"initiator_name"`
	Reason         string   `json:"reason"`
	VotesFor       []string `json:"votes_for"`
	VotesAgainst   []string `json:"votes_against"`
	EligibleVoters []string `json:"eligible_voters"`
	VotesNeeded    int      `json:"votes_needed"`
	ExpiryTime     string   `json:"expiry_time"`
}

// ReadyStatus is recomputed by the server on every snapshot. The client
// treats it as a full replacement, never a field-level patch.
type ReadyStatus struct {
	ReadyCount        int     `json:"ready_count"`
	TotalParticipants int     `json:"total_participants"`
	ReadyPercentage   float64 `json:"ready_percentage"`
	TimerActive       bool    `json:"timer_active"`
	TimerRemaining    *int    `json:"timer_remaining"`
}

// RoomState is a full, self-consistent snapshot of one room.
type RoomState struct {
	SessionID         string        `json:"session_id"`
	RoomTitle         string        `json:"room_title"`
	FacilitatorName   string        `json:"facilitator_name,omitempty"`
	Participants      []Participant `json:"participants"`
	ParticipantCount  int           `json:"participant_count"`
	MaxParticipants   int           `json:"max_participants"`
	IsActive          bool          `json:"is_active"`
	CurrentIcebreaker string        `json:"current_icebreaker"`
	ActivityType      string        `json:"activity_type"`
	ChatHistory       []Message     `json:"chat_history"`
	ReadyStatus       ReadyStatus   `json:"ready_status"`
	ActiveVotekicks   []Votekick    `json:"active_votekicks"`
	CreatedAt         string        `json:"created_at"`
}

// Writing assistant request tags.
const (
	AssistGeneral     = "general"
	AssistTranslation = "translation"
	AssistTone        = "tone"
)

// Narrative game types.

type Scenario struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type GameMaster struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
}

type CastMember struct {
	Name    string `json:"name"`
	Persona string `json:"persona"`
}

// GameInfo describes one narrative session, both in the game listing and as
// the start_game response.
type GameInfo struct {
	SessionID     string       `json:"session_id"`
	ScenarioTitle string       `json:"scenario_title"`
	InitialSetup  string       `json:"initial_setup,omitempty"`
	GMName        string       `json:"gm_name"`
	GMDifficulty  string       `json:"gm_difficulty,omitempty"`
	Phase         string       `json:"phase,omitempty"`
	Agents        []CastMember `json:"agents"`
	GameOver      bool         `json:"game_over"`
	Outcome       []string     `json:"outcome,omitempty"`
}

// TurnResult is the response to a submitted narrative turn.
type TurnResult struct {
	DialogueSegment string   `json:"dialogue_segment"`
	PhaseLabel      string   `json:"phase_label"`
	Summary         string   `json:"summary"`
	GameOver        bool     `json:"game_over"`
	Outcome         []string `json:"outcome,omitempty"`
	OutcomeLabel    string   `json:"outcome_label,omitempty"`
}
