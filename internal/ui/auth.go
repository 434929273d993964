package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

// authModel is the sign-in screen. Identity is a guest session: the user
// picks a display name and everything else is generated client-side.
type authModel struct {
	name      string
	status    string
	busy      bool
	resuming  bool
	savedUser *api.User
}

func (a *App) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		a.auth.busy = false
		a.auth.resuming = false
		if msg.err != nil {
			a.log.Warn("sign-in failed", zap.Error(msg.err))
			a.auth.status = msg.err.Error()
			return a, nil
		}
		a.user = msg.user
		a.signedIn = true
		a.log.Info("signed in",
			zap.String("session_id", msg.user.GoogleSessionID),
			zap.String("display_name", msg.user.DisplayName))
		return a.enterBrowse()

	case tea.KeyMsg:
		if a.auth.busy || a.auth.resuming {
			return a, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			name := strings.TrimSpace(a.auth.name)
			if name == "" {
				a.auth.status = "Pick a display name first."
				return a, nil
			}
			a.auth.busy = true
			a.auth.status = ""
			return a, signIn(a.ctx, a.client, a.store, name)
		case tea.KeyEsc:
			return a, tea.Quit
		default:
			a.auth.name = editLine(a.auth.name, msg)
		}
	}
	return a, nil
}

func (a *App) viewAuth() string {
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Icebreak") + "\n\n")

	switch {
	case a.auth.resuming:
		b.WriteString("Resuming your session…\n")
	case a.auth.busy:
		b.WriteString("Signing in…\n")
	default:
		b.WriteString("Join as a guest. Display name:\n\n")
		b.WriteString(fmt.Sprintf("  > %s█\n\n", a.auth.name))
		b.WriteString(a.styles.subtle.Render("enter to continue · esc to quit") + "\n")
	}
	if a.auth.status != "" {
		b.WriteString("\n" + a.styles.errLine.Render(a.auth.status) + "\n")
	}
	return b.String()
}
