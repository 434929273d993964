package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// storyModel replays a finished narrative session line by line, with the
// full markdown transcript one keypress away.
type storyModel struct {
	sessionID  string
	lines      []string
	transcript string
	shown      int
	full       bool
	status     string
	loading    bool
}

func (a *App) enterStory(sessionID string) tea.Cmd {
	a.story = storyModel{sessionID: sessionID, loading: true}
	return fetchStory(a.ctx, a.client, sessionID, a.renderMarkdown)
}

func (a *App) updateStory(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &a.story

	switch msg := msg.(type) {
	case storyMsg:
		s.loading = false
		if msg.err != nil {
			s.status = msg.err.Error()
			return a, nil
		}
		s.lines = msg.lines
		s.transcript = msg.transcript
		if len(s.lines) > 0 {
			s.shown = 1
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return a.enterBrowse()
		case "t":
			s.full = !s.full
		case "enter", " ", "right":
			if s.shown < len(s.lines) {
				s.shown++
			}
		case "left":
			if s.shown > 1 {
				s.shown--
			}
		case "a":
			s.shown = len(s.lines)
		}
	}
	return a, nil
}

func (a *App) viewStory() string {
	s := &a.story
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Story playback") + "\n\n")

	switch {
	case s.loading:
		b.WriteString("Assembling the story…\n")
	case s.status != "":
		b.WriteString(a.styles.errLine.Render(s.status) + "\n")
	case s.full:
		b.WriteString(s.transcript + "\n")
		b.WriteString(a.styles.subtle.Render("t back to playback · esc leave") + "\n")
	case len(s.lines) == 0:
		b.WriteString(a.styles.subtle.Render("Nothing happened in this story.") + "\n")
	default:
		for _, line := range s.lines[:s.shown] {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + a.styles.subtle.Render(fmt.Sprintf("%d/%d", s.shown, len(s.lines))) + "\n")
		b.WriteString(a.styles.subtle.Render("enter next line · a all · t transcript · esc leave") + "\n")
	}
	return b.String()
}
