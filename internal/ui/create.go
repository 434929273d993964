package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// createModel is the two-field room form. The server assigns the room id
// and seats the creator, so success goes straight into the room view.
type createModel struct {
	title  string
	maxStr string
	focus  int // 0 = title, 1 = max participants
	status string
	busy   bool
}

func (a *App) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case roomCreatedMsg:
		a.create.busy = false
		if msg.err != nil {
			a.create.status = msg.err.Error()
			return a, nil
		}
		a.log.Info("room created", zap.String("session_id", msg.roomID))
		return a.enterRoom(msg.roomID, strings.TrimSpace(a.create.title))

	case tea.KeyMsg:
		if a.create.busy {
			return a, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			return a.enterBrowse()
		case tea.KeyTab, tea.KeyDown, tea.KeyUp:
			a.create.focus = 1 - a.create.focus
		case tea.KeyEnter:
			title := strings.TrimSpace(a.create.title)
			if title == "" {
				a.create.status = "A room needs a title."
				return a, nil
			}
			maxParticipants, err := strconv.Atoi(strings.TrimSpace(a.create.maxStr))
			if err != nil || maxParticipants < 2 || maxParticipants > 50 {
				a.create.status = "Max participants must be between 2 and 50."
				return a, nil
			}
			a.create.busy = true
			a.create.status = ""
			return a, createRoom(a.ctx, a.client, a.user, title, maxParticipants)
		default:
			if a.create.focus == 0 {
				a.create.title = editLine(a.create.title, msg)
			} else {
				a.create.maxStr = editLine(a.create.maxStr, msg)
			}
		}
	}
	return a, nil
}

func (a *App) viewCreate() string {
	cursor := func(field int) string {
		if a.create.focus == field {
			return "█"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(a.styles.title.Render("New room") + "\n\n")
	b.WriteString(fmt.Sprintf("  Title            > %s%s\n", a.create.title, cursor(0)))
	b.WriteString(fmt.Sprintf("  Max participants > %s%s\n", a.create.maxStr, cursor(1)))
	if a.create.busy {
		b.WriteString("\nCreating…\n")
	}
	if a.create.status != "" {
		b.WriteString("\n" + a.styles.errLine.Render(a.create.status) + "\n")
	}
	b.WriteString("\n" + a.styles.subtle.Render("tab switch field · enter create · esc back") + "\n")
	return b.String()
}
