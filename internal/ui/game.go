package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/icebreak-chat/icebreak-go/internal/api"
	"github.com/icebreak-chat/icebreak-go/internal/narrative"
)

type gamePhase int

const (
	gameLoading gamePhase = iota
	gameSetup
	gamePlay
)

// gameModel drives the narrative story game: pick a scenario and a game
// master, name a character, then trade turns with the GM until the session
// ends in an outcome.
type gameModel struct {
	phase  gamePhase
	status string
	busy   bool

	scenarios []api.Scenario
	gms       []api.GameMaster
	scCursor  int
	gmCursor  int
	name      string
	persona   string
	focus     int // 0 scenario, 1 gm, 2 name, 3 persona

	sessionID    string
	scenario     string
	gmName       string
	lines        []narrative.DialogueLine
	phaseLabel   string
	summary      string
	input        string
	over         bool
	outcome      []string
	outcomeLabel string
}

func newGameModel() gameModel {
	return gameModel{phase: gameLoading}
}

func (a *App) enterGameSetup() tea.Cmd {
	a.game = newGameModel()
	return fetchGameCatalog(a.ctx, a.client)
}

func (a *App) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	g := &a.game

	switch msg := msg.(type) {
	case gameCatalogMsg:
		if msg.err != nil {
			g.status = msg.err.Error()
			g.phase = gameSetup
			return a, nil
		}
		g.scenarios = msg.scenarios
		g.gms = msg.gms
		g.phase = gameSetup
		return a, nil

	case gameStartedMsg:
		g.busy = false
		if msg.err != nil {
			g.status = msg.err.Error()
			return a, nil
		}
		g.sessionID = msg.info.SessionID
		g.scenario = msg.info.ScenarioTitle
		g.gmName = msg.info.GMName
		g.phase = gamePlay
		g.status = ""
		if msg.info.InitialSetup != "" {
			g.lines = append(g.lines, narrative.DialogueLine{Speaker: "GM", Content: msg.info.InitialSetup})
		}
		return a, nil

	case turnResultMsg:
		g.busy = false
		if msg.err != nil {
			g.status = msg.err.Error()
			return a, nil
		}
		g.status = ""
		g.lines = append(g.lines, narrative.ParseSegment(msg.result.DialogueSegment)...)
		g.phaseLabel = msg.result.PhaseLabel
		g.summary = msg.result.Summary
		if msg.result.GameOver {
			g.over = true
			g.outcome = msg.result.Outcome
			g.outcomeLabel = msg.result.OutcomeLabel
		}
		return a, nil

	case tea.KeyMsg:
		if g.phase == gameSetup {
			return a.updateGameSetup(msg)
		}
		return a.updateGamePlay(msg)
	}
	return a, nil
}

func (a *App) updateGameSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := &a.game
	if g.busy {
		return a, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return a.enterBrowse()
	case tea.KeyTab:
		g.focus = (g.focus + 1) % 4
		return a, nil
	case tea.KeyUp, tea.KeyDown:
		delta := 1
		if msg.Type == tea.KeyUp {
			delta = -1
		}
		switch g.focus {
		case 0:
			g.scCursor = clamp(g.scCursor+delta, 0, len(g.scenarios)-1)
		case 1:
			g.gmCursor = clamp(g.gmCursor+delta, 0, len(g.gms)-1)
		}
		return a, nil
	case tea.KeyEnter:
		if len(g.scenarios) == 0 || len(g.gms) == 0 {
			g.status = "Catalog is still loading. Try again in a moment."
			return a, nil
		}
		name := strings.TrimSpace(g.name)
		persona := strings.TrimSpace(g.persona)
		if name == "" || persona == "" {
			g.status = "Give your character a name and a persona."
			return a, nil
		}
		g.busy = true
		g.status = ""
		return a, startGame(a.ctx, a.client,
			g.scenarios[g.scCursor].ID, g.gms[g.gmCursor].ID, name, persona)
	}

	switch g.focus {
	case 2:
		g.name = editLine(g.name, msg)
	case 3:
		g.persona = editLine(g.persona, msg)
	}
	return a, nil
}

func (a *App) updateGamePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := &a.game

	if g.over {
		switch msg.String() {
		case "s":
			a.state = viewStory
			return a, a.enterStory(g.sessionID)
		case "esc", "q":
			return a.enterBrowse()
		}
		return a, nil
	}

	if g.busy {
		return a, nil
	}
	switch msg.String() {
	case "esc":
		return a.enterBrowse()
	case "enter":
		instruction := strings.TrimSpace(g.input)
		if instruction == "" {
			return a, nil
		}
		g.input = ""
		g.busy = true
		return a, submitTurn(a.ctx, a.client, g.sessionID, instruction, strings.TrimSpace(g.name))
	}
	g.input = editLine(g.input, msg)
	return a, nil
}

func (a *App) viewGame() string {
	g := &a.game
	var b strings.Builder

	switch g.phase {
	case gameLoading:
		b.WriteString(a.styles.title.Render("Story game") + "\n\nLoading scenarios…\n")

	case gameSetup:
		b.WriteString(a.styles.title.Render("Story game — setup") + "\n\n")
		b.WriteString(a.renderPicker("Scenario", scenarioTitles(g.scenarios), g.scCursor, g.focus == 0))
		b.WriteString(a.renderPicker("Game master", gmTitles(g.gms), g.gmCursor, g.focus == 1))
		b.WriteString(a.renderField("Character name", g.name, g.focus == 2))
		b.WriteString(a.renderField("Persona", g.persona, g.focus == 3))
		if g.busy {
			b.WriteString("\nStarting…\n")
		}
		b.WriteString("\n" + a.styles.subtle.Render("tab next field · arrows pick · enter start · esc back") + "\n")

	case gamePlay:
		header := a.styles.title.Render(g.scenario) + "  " + a.styles.subtle.Render("GM: "+g.gmName)
		if g.phaseLabel != "" {
			header += a.styles.subtle.Render(" · " + g.phaseLabel)
		}
		b.WriteString(header + "\n\n")

		for _, line := range g.lines {
			speaker := line.Speaker
			if speaker == strings.TrimSpace(g.name) {
				speaker = a.styles.self.Render(speaker)
			} else if line.Speaker == "GM" {
				speaker = a.styles.prompt.Render(speaker)
			}
			b.WriteString(fmt.Sprintf("%s: %s\n", speaker, line.Content))
		}
		if g.summary != "" {
			b.WriteString("\n" + a.styles.subtle.Render(g.summary) + "\n")
		}

		if g.over {
			b.WriteString("\n" + a.styles.title.Render("The story is over.") + "\n")
			if len(g.outcome) > 0 {
				label := g.outcomeLabel
				if label == "" {
					label = "Outcome"
				}
				b.WriteString(fmt.Sprintf("%s: %s\n", label, strings.Join(g.outcome, ", ")))
			}
			b.WriteString("\n" + a.styles.subtle.Render("s replay the story · esc back") + "\n")
		} else {
			b.WriteString(fmt.Sprintf("\n> %s█\n", g.input))
			if g.busy {
				b.WriteString(a.styles.subtle.Render("the GM is writing…") + "\n")
			}
			b.WriteString(a.styles.subtle.Render("enter act · esc abandon") + "\n")
		}
	}

	if g.status != "" {
		b.WriteString("\n" + a.styles.errLine.Render(g.status) + "\n")
	}
	return b.String()
}

func (a *App) renderPicker(label string, options []string, cursor int, focused bool) string {
	if len(options) == 0 {
		return fmt.Sprintf("  %s: —\n", label)
	}
	if cursor >= len(options) {
		cursor = len(options) - 1
	}
	value := options[cursor]
	if focused {
		value = a.styles.selected.Render("‹ " + value + " ›")
	}
	return fmt.Sprintf("  %-15s %s\n", label+":", value)
}

func (a *App) renderField(label, value string, focused bool) string {
	cursor := ""
	if focused {
		cursor = "█"
	}
	return fmt.Sprintf("  %-15s %s%s\n", label+":", value, cursor)
}

func scenarioTitles(scenarios []api.Scenario) []string {
	out := make([]string, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.Title
	}
	return out
}

func gmTitles(gms []api.GameMaster) []string {
	out := make([]string, len(gms))
	for i, gm := range gms {
		out[i] = fmt.Sprintf("%s (%s)", gm.Name, gm.Difficulty)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
