package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client talks to one session service. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	// Coalesces concurrent snapshot GETs for the same room so an overdue
	// poll tick rides an already in-flight request instead of stacking a
	// second one.
	snapshots singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := errorFromResponse(resp)
		c.log.Debug("request failed",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// SyncUser creates or refreshes the server-side user record after an
// external auth (or guest) identity is established.
func (c *Client) SyncUser(ctx context.Context, sessionID, displayName, pictureURL string) (User, error) {
	req := map[string]string{
		"google_session_id": sessionID,
		"display_name":      displayName,
	}
	if pictureURL != "" {
		req["profile_picture_url"] = pictureURL
	}
	var resp struct {
		User User `json:"user"`
	}
	if err := c.postJSON(ctx, "/auth/google", req, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	var rooms []RoomSummary
	if err := c.getJSON(ctx, "/icebreaker_rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateRoom returns the new room's session id. The creator is the first
// participant.
func (c *Client) CreateRoom(ctx context.Context, title, displayName, sessionID string, maxParticipants int) (string, error) {
	req := map[string]any{
		"room_title":        title,
		"display_name":      displayName,
		"google_session_id": sessionID,
		"max_participants":  maxParticipants,
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := c.postJSON(ctx, "/create_icebreaker_room", req, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// JoinRoom asks the server to admit the user. The server is the authority:
// it can reject even when the browser listing said there was space.
func (c *Client) JoinRoom(ctx context.Context, roomID string, u User) error {
	req := map[string]string{
		"session_id":        roomID,
		"display_name":      u.DisplayName,
		"google_session_id": u.GoogleSessionID,
	}
	if u.ProfilePictureURL != "" {
		req["profile_picture_url"] = u.ProfilePictureURL
	}
	return c.postJSON(ctx, "/join_icebreaker_room", req, nil)
}

func (c *Client) LeaveRoom(ctx context.Context, roomID, userID string) error {
	req := map[string]string{
		"session_id":        roomID,
		"google_session_id": userID,
	}
	return c.postJSON(ctx, "/leave_icebreaker_room", req, nil)
}

// RoomState fetches one room's full snapshot. Concurrent calls for the same
// room share a single request.
func (c *Client) RoomState(ctx context.Context, roomID string) (RoomState, error) {
	v, err, _ := c.snapshots.Do(roomID, func() (any, error) {
		var state RoomState
		if err := c.getJSON(ctx, "/icebreaker_room/"+roomID, &state); err != nil {
			return RoomState{}, err
		}
		return state, nil
	})
	if err != nil {
		return RoomState{}, err
	}
	return v.(RoomState), nil
}

// SendMessage posts a chat message. On success the response embeds the
// room_state the server computed after the append.
func (c *Client) SendMessage(ctx context.Context, roomID, userID, message string) (RoomState, error) {
	req := map[string]string{
		"session_id":        roomID,
		"google_session_id": userID,
		"message":           message,
	}
	var resp struct {
		RoomState RoomState `json:"room_state"`
	}
	if err := c.postJSON(ctx, "/send_icebreaker_message", req, &resp); err != nil {
		return RoomState{}, err
	}
	return resp.RoomState, nil
}

// SetReady toggles the caller's ready flag. The response carries only a
// ready_status summary, not a full snapshot, so callers should let the next
// poll pick up the authoritative state rather than patching fields locally.
func (c *Client) SetReady(ctx context.Context, roomID, userID string, ready bool) (ReadyStatus, error) {
	req := map[string]any{
		"session_id":        roomID,
		"google_session_id": userID,
		"is_ready":          ready,
	}
	var resp struct {
		ReadyStatus ReadyStatus `json:"ready_status"`
	}
	if err := c.postJSON(ctx, "/set_ready_status", req, &resp); err != nil {
		return ReadyStatus{}, err
	}
	return resp.ReadyStatus, nil
}

func (c *Client) StartVotekick(ctx context.Context, roomID, initiatorID, targetID, reason string) (RoomState, error) {
	req := map[string]string{
		"session_id":   roomID,
		"initiator_id": initiatorID,
		"target_id":    targetID,
		"reason":       reason,
	}
	var resp struct {
		RoomState RoomState `json:"room_state"`
	}
	if err := c.postJSON(ctx, "/start_votekick", req, &resp); err != nil {
		return RoomState{}, err
	}
	return resp.RoomState, nil
}

func (c *Client) VoteOnKick(ctx context.Context, roomID, voterID, targetID string, vote bool) (RoomState, error) {
	req := map[string]any{
		"session_id": roomID,
		"voter_id":   voterID,
		"target_id":  targetID,
		"vote":       vote,
	}
	var resp struct {
		RoomState RoomState `json:"room_state"`
	}
	if err := c.postJSON(ctx, "/vote_on_kick", req, &resp); err != nil {
		return RoomState{}, err
	}
	return resp.RoomState, nil
}

// WritingHelp sends a single draft string to the assistant. Each call is
// independent; no conversation state crosses the wire.
func (c *Client) WritingHelp(ctx context.Context, roomID, displayName, draft, assistType string) (string, error) {
	req := map[string]string{
		"session_id":      roomID,
		"display_name":    displayName,
		"draft_message":   draft,
		"assistance_type": assistType,
	}
	var resp struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/writing_assistant", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *Client) ListScenarios(ctx context.Context) ([]Scenario, error) {
	var scenarios []Scenario
	if err := c.getJSON(ctx, "/scenarios", &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func (c *Client) ListGMs(ctx context.Context) ([]GameMaster, error) {
	var gms []GameMaster
	if err := c.getJSON(ctx, "/gms", &gms); err != nil {
		return nil, err
	}
	return gms, nil
}

func (c *Client) StartGame(ctx context.Context, scenarioID, gmID, name, persona string) (GameInfo, error) {
	req := map[string]string{
		"scenario_id": scenarioID,
		"gm_id":       gmID,
		"name":        name,
		"persona":     persona,
	}
	var info GameInfo
	if err := c.postJSON(ctx, "/start_game", req, &info); err != nil {
		return GameInfo{}, err
	}
	return info, nil
}

func (c *Client) ListGames(ctx context.Context) ([]GameInfo, error) {
	var games []GameInfo
	if err := c.getJSON(ctx, "/rooms", &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) SubmitTurn(ctx context.Context, sessionID, instruction, agentName string) (TurnResult, error) {
	req := map[string]string{
		"session_id":  sessionID,
		"instruction": instruction,
		"agent_name":  agentName,
	}
	var result TurnResult
	if err := c.postJSON(ctx, "/submit_turn", req, &result); err != nil {
		return TurnResult{}, err
	}
	return result, nil
}

// MakeStory returns the session's dialogue lines. The server sometimes
// responds with a single string and sometimes with a list; both normalize
// to a slice here.
func (c *Client) MakeStory(ctx context.Context, sessionID string) ([]string, error) {
	req := map[string]string{"session_id": sessionID}
	var resp struct {
		Story json.RawMessage `json:"story"`
	}
	if err := c.postJSON(ctx, "/make_story", req, &resp); err != nil {
		return nil, err
	}
	var lines []string
	if err := json.Unmarshal(resp.Story, &lines); err == nil {
		return lines, nil
	}
	var single string
	if err := json.Unmarshal(resp.Story, &single); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	return []string{single}, nil
}

// Download fetches the session transcript as a markdown blob.
func (c *Client) Download(ctx context.Context, sessionID string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/download", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp)
	}
	return io.ReadAll(resp.Body)
}
