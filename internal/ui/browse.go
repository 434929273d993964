package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/browser"
)

// browseModel is the room listing. The list refreshes every browser poll
// interval and on demand; stale responses are discarded by the view's
// sequence guard so a slow refresh never clobbers a newer one.
type browseModel struct {
	view   *browser.View
	cursor int
	status string
	busy   bool
}

func newBrowseModel() browseModel {
	return browseModel{view: browser.NewView()}
}

func (a *App) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case browseTickMsg:
		if a.state != viewBrowse || msg.gen != a.browseGen {
			return a, nil
		}
		seq := a.browse.view.StampFetch()
		return a, tea.Batch(
			fetchRooms(a.ctx, a.client, seq),
			browseTick(a.cfg.BrowserPollInterval, a.browseGen),
		)

	case roomsMsg:
		if a.browse.view.Apply(msg.rooms, msg.seq) {
			if a.browse.cursor >= len(msg.rooms) {
				a.browse.cursor = max(0, len(msg.rooms)-1)
			}
		}
		return a, nil

	case roomsErrMsg:
		a.browse.view.Fail(msg.err, msg.seq)
		return a, nil

	case roomLeftMsg:
		if msg.err != nil {
			a.log.Warn("leave room failed", zap.Error(msg.err))
		}
		return a, nil

	case roomJoinedMsg:
		a.browse.busy = false
		if msg.err != nil {
			a.browse.status = msg.err.Error()
			return a, nil
		}
		a.log.Info("joined room", zap.String("session_id", msg.roomID))
		return a.enterRoom(msg.roomID, msg.title)

	case tea.KeyMsg:
		if a.browse.busy {
			return a, nil
		}
		rooms := a.browse.view.Rooms()
		switch msg.String() {
		case "q", "esc":
			return a, tea.Quit
		case "up", "k":
			if a.browse.cursor > 0 {
				a.browse.cursor--
			}
		case "down", "j":
			if a.browse.cursor < len(rooms)-1 {
				a.browse.cursor++
			}
		case "r":
			seq := a.browse.view.StampFetch()
			return a, fetchRooms(a.ctx, a.client, seq)
		case "c":
			a.create = createModel{maxStr: "12"}
			a.state = viewCreate
			return a, nil
		case "g":
			a.state = viewGame
			return a, a.enterGameSetup()
		case "enter":
			if len(rooms) == 0 {
				return a, nil
			}
			room := rooms[a.browse.cursor]
			if !browser.CanJoin(room, a.signedIn) {
				a.browse.status = "That room is full."
				return a, nil
			}
			a.browse.busy = true
			a.browse.status = ""
			return a, joinRoom(a.ctx, a.client, a.user, room)
		}
	}
	return a, nil
}

func (a *App) viewBrowse() string {
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Rooms") + "  ")
	b.WriteString(a.styles.subtle.Render("signed in as "+a.user.DisplayName) + "\n\n")

	rooms := a.browse.view.Rooms()
	switch {
	case !a.browse.view.Loaded():
		b.WriteString("Loading rooms…\n")
	case len(rooms) == 0:
		b.WriteString(a.styles.subtle.Render("No open rooms. Press c to start one.") + "\n")
	default:
		for i, r := range rooms {
			line := fmt.Sprintf("%-30s %2d/%-2d  %s",
				truncate(r.RoomTitle, 30), r.ParticipantCount, r.MaxParticipants, r.ActivityType)
			if !r.HasSpace {
				line += "  (full)"
			}
			if i == a.browse.cursor {
				line = a.styles.selected.Render(line)
			}
			b.WriteString("  " + line + "\n")
		}
	}

	if err := a.browse.view.Err(); err != "" {
		b.WriteString("\n" + a.styles.errLine.Render(err) + "\n")
	}
	if a.browse.status != "" {
		b.WriteString("\n" + a.styles.errLine.Render(a.browse.status) + "\n")
	}
	if a.browse.busy {
		b.WriteString("\nJoining…\n")
	}
	b.WriteString("\n" + a.styles.subtle.Render("enter join · c create · g story game · r refresh · q quit") + "\n")
	return b.String()
}
