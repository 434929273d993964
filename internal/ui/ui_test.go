package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/api"
	"github.com/icebreak-chat/icebreak-go/internal/config"
	"github.com/icebreak-chat/icebreak-go/internal/session"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Config{
		RoomPollInterval:    2 * time.Second,
		BrowserPollInterval: 10 * time.Second,
	}
	client := api.New("http://127.0.0.1:0")
	return NewApp(context.Background(), cfg, client, session.NewStore(t.TempDir()), zap.NewNop(), nil)
}

func appInRoom(t *testing.T) *App {
	t.Helper()
	a := testApp(t)
	a.user = api.User{GoogleSessionID: "u1", DisplayName: "Ana"}
	a.signedIn = true
	ctx, cancel := context.WithCancel(a.ctx)
	t.Cleanup(cancel)
	a.room = newRoomModel(ctx, cancel, "room-1", "Test Room", a.user, a.client)
	a.state = viewRoom
	return a
}

func enterKey() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestBlankDraftNeverSends(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "spaces", input: "   "},
		{name: "tabs and newline-ish whitespace", input: " \t "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := appInRoom(t)
			a.room.input = tc.input

			_, cmd := a.Update(enterKey())
			assert.Nil(t, cmd, "a blank draft must not produce a request")
			assert.Equal(t, tc.input, a.room.input, "the buffer is left alone for editing")
		})
	}
}

func TestNonBlankDraftSends(t *testing.T) {
	a := appInRoom(t)
	a.room.input = "  hello there  "

	_, cmd := a.Update(enterKey())
	require.NotNil(t, cmd)
	assert.Empty(t, a.room.input, "a dispatched draft clears the buffer")
}

func TestGameDialogueAccumulates(t *testing.T) {
	a := testApp(t)
	a.state = viewGame
	a.game = newGameModel()
	a.game.name = "Ana"

	_, _ = a.Update(gameStartedMsg{info: api.GameInfo{
		SessionID:     "g1",
		ScenarioTitle: "The Lifeboat",
		GMName:        "Aulis",
		InitialSetup:  "The ship is going down.",
	}})
	require.Equal(t, gamePlay, a.game.phase)
	require.Len(t, a.game.lines, 1)
	assert.Equal(t, "GM", a.game.lines[0].Speaker)
	assert.Equal(t, "The ship is going down.", a.game.lines[0].Content)

	_, _ = a.Update(turnResultMsg{result: api.TurnResult{
		DialogueSegment: "Ana: grab the oars\nBo: I'm on it",
		PhaseLabel:      "Active Chat",
	}})
	require.Len(t, a.game.lines, 3)
	assert.Equal(t, "Ana", a.game.lines[1].Speaker)
	assert.Equal(t, "grab the oars", a.game.lines[1].Content)

	out := a.viewGame()
	assert.Contains(t, out, "grab the oars")
	assert.Contains(t, out, "I'm on it")
	assert.Contains(t, out, "The Lifeboat")
}

func TestGameOverShowsOutcome(t *testing.T) {
	a := testApp(t)
	a.state = viewGame
	a.game = newGameModel()
	a.game.phase = gamePlay
	a.game.sessionID = "g1"
	a.game.scenario = "The Lifeboat"

	_, _ = a.Update(turnResultMsg{result: api.TurnResult{
		DialogueSegment: "GM: And that is how it ends.",
		GameOver:        true,
		Outcome:         []string{"Ana", "Cyd"},
		OutcomeLabel:    "Survivors",
	}})
	require.True(t, a.game.over)

	out := a.viewGame()
	assert.Contains(t, out, "Survivors")
	assert.Contains(t, out, "Ana, Cyd")
}
