// Package ui is the terminal frontend. One root model owns the signed-in
// identity and switches between the sign-in screen, the room browser, the
// create form, the live room, the narrative game, and story playback.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/api"
	"github.com/icebreak-chat/icebreak-go/internal/config"
	"github.com/icebreak-chat/icebreak-go/internal/session"
)

type viewState int

const (
	viewAuth viewState = iota
	viewBrowse
	viewCreate
	viewRoom
	viewGame
	viewStory
)

// App is the bubbletea root model. Sub-views keep their own state; the
// root holds what outlives a view switch: the identity, the client, and
// the configuration.
type App struct {
	ctx    context.Context
	cfg    config.Config
	client *api.Client
	store  *session.Store
	log    *zap.Logger
	styles styleSet

	state    viewState
	user     api.User
	signedIn bool

	auth   authModel
	browse browseModel
	create createModel
	room   *roomModel
	game   gameModel
	story  storyModel

	// Tick-loop generations; see messages.go.
	browseGen int
	roomGen   int

	width  int
	height int
}

func NewApp(ctx context.Context, cfg config.Config, client *api.Client, store *session.Store, log *zap.Logger, saved *api.User) *App {
	a := &App{
		ctx:    ctx,
		cfg:    cfg,
		client: client,
		store:  store,
		log:    log,
		styles: newStyles(),
		state:  viewAuth,
		browse: newBrowseModel(),
		game:   newGameModel(),
	}
	if saved != nil {
		a.auth = authModel{resuming: true, savedUser: saved}
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.auth.resuming {
		return resumeSession(a.ctx, a.client, *a.auth.savedUser)
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
	}

	switch a.state {
	case viewAuth:
		return a.updateAuth(msg)
	case viewBrowse:
		return a.updateBrowse(msg)
	case viewCreate:
		return a.updateCreate(msg)
	case viewRoom:
		return a.updateRoom(msg)
	case viewGame:
		return a.updateGame(msg)
	case viewStory:
		return a.updateStory(msg)
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewAuth:
		body = a.viewAuth()
	case viewBrowse:
		body = a.viewBrowse()
	case viewCreate:
		body = a.viewCreate()
	case viewRoom:
		body = a.viewRoom()
	case viewGame:
		body = a.viewGame()
	case viewStory:
		body = a.viewStory()
	}
	return body
}

// quit leaves the current room first so the server does not keep a ghost
// participant until the votekick crowd notices.
func (a *App) quit() tea.Cmd {
	if a.state == viewRoom && a.room != nil {
		a.room.cancel()
		return tea.Sequence(leaveRoom(a.client, a.room.roomID, a.user.GoogleSessionID), tea.Quit)
	}
	return tea.Quit
}

// enterBrowse (re)starts the browser poll loop with a fresh stamped fetch.
func (a *App) enterBrowse() (tea.Model, tea.Cmd) {
	a.state = viewBrowse
	a.browseGen++
	seq := a.browse.view.StampFetch()
	return a, tea.Batch(
		fetchRooms(a.ctx, a.client, seq),
		browseTick(a.cfg.BrowserPollInterval, a.browseGen),
	)
}

// enterRoom builds a room model with its own context and starts polling.
func (a *App) enterRoom(roomID, title string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(a.ctx)
	a.room = newRoomModel(ctx, cancel, roomID, title, a.user, a.client)
	a.state = viewRoom
	a.roomGen++
	seq := a.room.view.StampFetch()
	return a, tea.Batch(
		fetchRoom(ctx, a.client, roomID, seq),
		roomTick(a.cfg.RoomPollInterval, a.roomGen),
	)
}

// renderMarkdown is the story view's transcript renderer. Glamour failures
// fall back to the raw markdown rather than hiding the story.
func (a *App) renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(a.contentWidth()))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (a *App) contentWidth() int {
	if a.width <= 0 || a.width > 100 {
		return 100
	}
	return a.width
}

// editLine applies one key press to a plain text buffer. Good enough for
// single-line prompts; the TUI has no multi-line input.
func editLine(buf string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes:
		return buf + string(msg.Runes)
	case tea.KeySpace:
		return buf + " "
	case tea.KeyBackspace:
		if buf == "" {
			return buf
		}
		r := []rune(buf)
		return string(r[:len(r)-1])
	}
	return buf
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
