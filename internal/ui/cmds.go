package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/icebreak-chat/icebreak-go/internal/api"
	"github.com/icebreak-chat/icebreak-go/internal/assistant"
	"github.com/icebreak-chat/icebreak-go/internal/session"
)

func roomTick(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return roomTickMsg{gen: gen} })
}

func browseTick(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return browseTickMsg{gen: gen} })
}

// fetchRoom runs one stamped snapshot fetch. The seq is assigned in Update
// before the command is dispatched, so ordering is decided on the UI
// goroutine and the response merely reports back under its stamp.
func fetchRoom(ctx context.Context, c *api.Client, roomID string, seq uint64) tea.Cmd {
	return func() tea.Msg {
		state, err := c.RoomState(ctx, roomID)
		if err != nil {
			return roomFetchErrMsg{seq: seq, err: err}
		}
		return roomSnapshotMsg{seq: seq, state: state}
	}
}

func fetchRooms(ctx context.Context, c *api.Client, seq uint64) tea.Cmd {
	return func() tea.Msg {
		rooms, err := c.ListRooms(ctx)
		if err != nil {
			return roomsErrMsg{seq: seq, err: err}
		}
		return roomsMsg{seq: seq, rooms: rooms}
	}
}

func signIn(ctx context.Context, c *api.Client, store *session.Store, displayName string) tea.Cmd {
	return func() tea.Msg {
		sessionID, avatar := session.GuestIdentity(displayName)
		user, err := c.SyncUser(ctx, sessionID, displayName, avatar)
		if err != nil {
			return authDoneMsg{err: err}
		}
		if err := store.Save(user); err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{user: user}
	}
}

// resumeSession re-syncs a persisted identity with the server so counters
// are fresh. The sign-in screen is skipped entirely when this succeeds.
func resumeSession(ctx context.Context, c *api.Client, u api.User) tea.Cmd {
	return func() tea.Msg {
		user, err := c.SyncUser(ctx, u.GoogleSessionID, u.DisplayName, u.ProfilePictureURL)
		if err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{user: user}
	}
}

func createRoom(ctx context.Context, c *api.Client, u api.User, title string, maxParticipants int) tea.Cmd {
	return func() tea.Msg {
		roomID, err := c.CreateRoom(ctx, title, u.DisplayName, u.GoogleSessionID, maxParticipants)
		return roomCreatedMsg{roomID: roomID, err: err}
	}
}

func joinRoom(ctx context.Context, c *api.Client, u api.User, room api.RoomSummary) tea.Cmd {
	return func() tea.Msg {
		err := c.JoinRoom(ctx, room.SessionID, u)
		return roomJoinedMsg{roomID: room.SessionID, title: room.RoomTitle, err: err}
	}
}

func leaveRoom(c *api.Client, roomID, userID string) tea.Cmd {
	return func() tea.Msg {
		// Detached from the room context: the poll loop is being torn
		// down but the leave itself must still reach the server.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return roomLeftMsg{err: c.LeaveRoom(ctx, roomID, userID)}
	}
}

func sendMessage(ctx context.Context, c *api.Client, roomID, userID, text string, seq uint64) tea.Cmd {
	return func() tea.Msg {
		state, err := c.SendMessage(ctx, roomID, userID, text)
		if err != nil {
			return mutationErrMsg{err: err}
		}
		return roomSnapshotMsg{seq: seq, state: state}
	}
}

// setReady acknowledges but adopts nothing: the response carries only a
// ready summary and the next poll is the authority for the full state.
func setReady(ctx context.Context, c *api.Client, roomID, userID string, ready bool) tea.Cmd {
	return func() tea.Msg {
		_, err := c.SetReady(ctx, roomID, userID, ready)
		return readyAckMsg{err: err}
	}
}

func startVotekick(ctx context.Context, c *api.Client, roomID, initiatorID, targetID, reason string, seq uint64) tea.Cmd {
	return func() tea.Msg {
		state, err := c.StartVotekick(ctx, roomID, initiatorID, targetID, reason)
		if err != nil {
			return mutationErrMsg{err: err}
		}
		return roomSnapshotMsg{seq: seq, state: state}
	}
}

func voteOnKick(ctx context.Context, c *api.Client, roomID, voterID, targetID string, vote bool, seq uint64) tea.Cmd {
	return func() tea.Msg {
		state, err := c.VoteOnKick(ctx, roomID, voterID, targetID, vote)
		if err != nil {
			return mutationErrMsg{err: err}
		}
		return roomSnapshotMsg{seq: seq, state: state}
	}
}

func askAssistant(ctx context.Context, h *assistant.Helper, draft, assistType string) tea.Cmd {
	return func() tea.Msg {
		h.Ask(ctx, draft, assistType)
		return assistDoneMsg{}
	}
}

func fetchGameCatalog(ctx context.Context, c *api.Client) tea.Cmd {
	return func() tea.Msg {
		scenarios, err := c.ListScenarios(ctx)
		if err != nil {
			return gameCatalogMsg{err: err}
		}
		gms, err := c.ListGMs(ctx)
		if err != nil {
			return gameCatalogMsg{err: err}
		}
		return gameCatalogMsg{scenarios: scenarios, gms: gms}
	}
}

func startGame(ctx context.Context, c *api.Client, scenarioID, gmID, name, persona string) tea.Cmd {
	return func() tea.Msg {
		info, err := c.StartGame(ctx, scenarioID, gmID, name, persona)
		return gameStartedMsg{info: info, err: err}
	}
}

func submitTurn(ctx context.Context, c *api.Client, sessionID, instruction, agentName string) tea.Cmd {
	return func() tea.Msg {
		result, err := c.SubmitTurn(ctx, sessionID, instruction, agentName)
		return turnResultMsg{result: result, err: err}
	}
}

func fetchStory(ctx context.Context, c *api.Client, sessionID string, render func(string) string) tea.Cmd {
	return func() tea.Msg {
		lines, err := c.MakeStory(ctx, sessionID)
		if err != nil {
			return storyMsg{err: err}
		}
		md, err := c.Download(ctx, sessionID)
		if err != nil {
			return storyMsg{err: err}
		}
		return storyMsg{lines: lines, transcript: render(string(md))}
	}
}
