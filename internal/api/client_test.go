package api_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreak-chat/icebreak-go/internal/api"
	"github.com/icebreak-chat/icebreak-go/internal/stubserver"
)

func newTestClient(t *testing.T) *api.Client {
	t.Helper()
	users, err := stubserver.OpenUserDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { users.Close() })

	srv := httptest.NewServer(stubserver.New(users).Routes())
	t.Cleanup(srv.Close)
	return api.New(srv.URL)
}

func TestRoomLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	host, err := c.SyncUser(ctx, "sess-host", "Ana", "")
	require.NoError(t, err)
	assert.Equal(t, "Ana", host.DisplayName)

	roomID, err := c.CreateRoom(ctx, "Friday Hangout", "Ana", "sess-host", 6)
	require.NoError(t, err)
	require.NotEmpty(t, roomID)

	guest, err := c.SyncUser(ctx, "sess-guest", "Bo", "")
	require.NoError(t, err)
	require.NoError(t, c.JoinRoom(ctx, roomID, guest))

	rooms, err := c.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Friday Hangout", rooms[0].RoomTitle)
	assert.Equal(t, 2, rooms[0].ParticipantCount)
	assert.True(t, rooms[0].HasSpace)

	state, err := c.RoomState(ctx, roomID)
	require.NoError(t, err)
	assert.Len(t, state.Participants, 2)
	assert.NotEmpty(t, state.CurrentIcebreaker)

	require.NoError(t, c.LeaveRoom(ctx, roomID, guest.GoogleSessionID))
	state, err = c.RoomState(ctx, roomID)
	require.NoError(t, err)
	assert.Len(t, state.Participants, 1)
}

func TestSendMessageReturnsFreshState(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.SyncUser(ctx, "sess-host", "Ana", "")
	require.NoError(t, err)
	roomID, err := c.CreateRoom(ctx, "Chat", "Ana", "sess-host", 4)
	require.NoError(t, err)

	state, err := c.SendMessage(ctx, roomID, "sess-host", "hello everyone")
	require.NoError(t, err)

	last := state.ChatHistory[len(state.ChatHistory)-1]
	assert.Equal(t, "hello everyone", last.Content)
	assert.Equal(t, api.MessageTypeUser, last.Type)
	assert.Equal(t, "sess-host", last.SenderID)

	user, err := c.SyncUser(ctx, "sess-host", "Ana", "")
	require.NoError(t, err)
	assert.Equal(t, 1, user.TotalMessages)
}

func TestSetReadyReturnsStatusOnly(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.SyncUser(ctx, "sess-host", "Ana", "")
	require.NoError(t, err)
	roomID, err := c.CreateRoom(ctx, "Chat", "Ana", "sess-host", 4)
	require.NoError(t, err)
	guest, err := c.SyncUser(ctx, "sess-guest", "Bo", "")
	require.NoError(t, err)
	require.NoError(t, c.JoinRoom(ctx, roomID, guest))

	status, err := c.SetReady(ctx, roomID, "sess-host", true)
	require.NoError(t, err)
	assert.Equal(t, 1, status.ReadyCount)
	assert.Equal(t, 2, status.TotalParticipants)
	assert.True(t, status.TimerActive, "half the room ready should arm the timer")
}

func TestServerErrorsSurfaceVerbatim(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	u, err := c.SyncUser(ctx, "sess-1", "Ana", "")
	require.NoError(t, err)

	err = c.JoinRoom(ctx, "missing-room", u)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "room not found", apiErr.Message)

	roomID, err := c.CreateRoom(ctx, "Chat", "Ana", "sess-1", 4)
	require.NoError(t, err)
	_, err = c.SendMessage(ctx, roomID, "sess-1", "   ")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestVotekickOverHTTP(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	ids := []string{"sess-a", "sess-b", "sess-c", "sess-d"}
	names := []string{"Ana", "Bo", "Cyd", "Dee"}
	users := make([]api.User, len(ids))
	for i := range ids {
		u, err := c.SyncUser(ctx, ids[i], names[i], "")
		require.NoError(t, err)
		users[i] = u
	}
	roomID, err := c.CreateRoom(ctx, "Chat", "Ana", "sess-a", 8)
	require.NoError(t, err)
	for _, u := range users[1:] {
		require.NoError(t, c.JoinRoom(ctx, roomID, u))
	}

	state, err := c.StartVotekick(ctx, roomID, "sess-a", "sess-b", "spamming")
	require.NoError(t, err)
	require.Len(t, state.ActiveVotekicks, 1)
	vk := state.ActiveVotekicks[0]
	assert.Contains(t, vk.VotesFor, "sess-a")
	assert.NotContains(t, vk.EligibleVoters, "sess-b")

	// Second yes reaches the threshold; the target drops out of the state
	// the response carries.
	state, err = c.VoteOnKick(ctx, roomID, "sess-c", "sess-b", true)
	require.NoError(t, err)
	assert.Empty(t, state.ActiveVotekicks)
	for _, p := range state.Participants {
		assert.NotEqual(t, "sess-b", p.GoogleSessionID)
	}
}

func TestWritingHelp(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	reply, err := c.WritingHelp(ctx, "general", "Ana", "hey whats up", api.AssistTone)
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestNarrativeGameFlow(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	scenarios, err := c.ListScenarios(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)
	gms, err := c.ListGMs(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, gms)

	info, err := c.StartGame(ctx, scenarios[0].ID, gms[0].ID, "Ana", "a calm medic")
	require.NoError(t, err)
	require.NotEmpty(t, info.SessionID)
	assert.False(t, info.GameOver)
	require.NotEmpty(t, info.Agents)

	games, err := c.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, info.SessionID, games[0].SessionID)

	var last api.TurnResult
	for i := 0; i < 12 && !last.GameOver; i++ {
		last, err = c.SubmitTurn(ctx, info.SessionID, "stay calm and help", "Ana")
		require.NoError(t, err)
		assert.NotEmpty(t, last.DialogueSegment)
	}
	require.True(t, last.GameOver, "scripted session should end within its beat budget")
	assert.NotEmpty(t, last.Outcome)
	assert.NotEmpty(t, last.OutcomeLabel)

	story, err := c.MakeStory(ctx, info.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, story)

	md, err := c.Download(ctx, info.SessionID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# "), "transcript should be markdown")
}

func TestMakeStoryUnknownSession(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.MakeStory(ctx, "nope")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}
