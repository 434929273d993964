package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/api"
	"github.com/icebreak-chat/icebreak-go/internal/assistant"
	"github.com/icebreak-chat/icebreak-go/internal/room"
)

type roomMode int

const (
	modeChat roomMode = iota
	modeKick
	modeAssist
)

const maxVisibleMessages = 14

// roomModel is the live chat room. All server state flows through the
// sequence-guarded view; everything rendered here is derived from the
// latest applied snapshot plus local input buffers.
type roomModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	roomID string
	title  string

	view  *room.View
	input string
	mode  roomMode

	// kick flow: pick a target, then type a reason.
	kickCursor int
	kickTarget string
	kickReason string

	assist      *assistant.Helper
	assistInput string
	assistType  string
	assistBusy  bool
}

func newRoomModel(ctx context.Context, cancel context.CancelFunc, roomID, title string, self api.User, client *api.Client) *roomModel {
	return &roomModel{
		ctx:        ctx,
		cancel:     cancel,
		roomID:     roomID,
		title:      title,
		view:       room.NewView(self.GoogleSessionID),
		assist:     assistant.New(client, roomID, self.DisplayName),
		assistType: api.AssistGeneral,
	}
}

func (a *App) updateRoom(msg tea.Msg) (tea.Model, tea.Cmd) {
	r := a.room
	if r == nil {
		return a, nil
	}

	switch msg := msg.(type) {
	case roomTickMsg:
		if a.state != viewRoom || msg.gen != a.roomGen {
			return a, nil
		}
		seq := r.view.StampFetch()
		return a, tea.Batch(
			fetchRoom(r.ctx, a.client, r.roomID, seq),
			roomTick(a.cfg.RoomPollInterval, a.roomGen),
		)

	case roomSnapshotMsg:
		r.view.Apply(msg.state, msg.seq)
		return a, nil

	case roomFetchErrMsg:
		if r.view.Fail(msg.err, msg.seq) {
			a.log.Warn("room poll failed", zap.String("session_id", r.roomID), zap.Error(msg.err))
		}
		return a, nil

	case mutationErrMsg:
		r.view.MutationError(msg.err)
		return a, nil

	case readyAckMsg:
		if msg.err != nil {
			r.view.MutationError(msg.err)
		}
		return a, nil

	case assistDoneMsg:
		r.assistBusy = false
		return a, nil

	case tea.KeyMsg:
		switch r.mode {
		case modeKick:
			return a.updateRoomKick(msg)
		case modeAssist:
			return a.updateRoomAssist(msg)
		default:
			return a.updateRoomChat(msg)
		}
	}
	return a, nil
}

func (a *App) updateRoomChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := a.room
	snap, haveSnap := r.view.Snapshot()

	switch msg.String() {
	case "esc":
		r.cancel()
		roomID := r.roomID
		a.room = nil
		model, cmd := a.enterBrowse()
		return model, tea.Batch(leaveRoom(a.client, roomID, a.user.GoogleSessionID), cmd)

	case "enter":
		// Empty or whitespace-only drafts never reach the wire.
		text := strings.TrimSpace(r.input)
		if text == "" {
			return a, nil
		}
		r.input = ""
		r.view.ClearError()
		seq := r.view.StampFetch()
		return a, sendMessage(r.ctx, a.client, r.roomID, a.user.GoogleSessionID, text, seq)

	case "ctrl+r":
		if !haveSnap {
			return a, nil
		}
		r.view.ClearError()
		return a, setReady(r.ctx, a.client, r.roomID, a.user.GoogleSessionID, !r.view.SelfReady())

	case "ctrl+k":
		if !haveSnap || len(snap.Participants) < 3 {
			r.view.MutationError(fmt.Errorf("votekicks need at least 3 participants"))
			return a, nil
		}
		r.mode = modeKick
		r.kickCursor = 0
		r.kickTarget = ""
		r.kickReason = ""
		return a, nil

	case "ctrl+y", "ctrl+n":
		if !haveSnap {
			return a, nil
		}
		for _, vk := range snap.ActiveVotekicks {
			if room.CanVote(vk, a.user.GoogleSessionID) {
				r.view.ClearError()
				seq := r.view.StampFetch()
				return a, voteOnKick(r.ctx, a.client, r.roomID, a.user.GoogleSessionID, vk.TargetID, msg.String() == "ctrl+y", seq)
			}
		}
		return a, nil

	case "tab":
		r.mode = modeAssist
		return a, nil
	}

	r.input = editLine(r.input, msg)
	return a, nil
}

func (a *App) updateRoomKick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := a.room
	snap, _ := r.view.Snapshot()
	targets := kickableTargets(snap, a.user.GoogleSessionID)

	if r.kickTarget == "" {
		switch msg.String() {
		case "esc":
			r.mode = modeChat
		case "up", "k":
			if r.kickCursor > 0 {
				r.kickCursor--
			}
		case "down", "j":
			if r.kickCursor < len(targets)-1 {
				r.kickCursor++
			}
		case "enter":
			if len(targets) == 0 {
				r.mode = modeChat
				return a, nil
			}
			if r.kickCursor >= len(targets) {
				r.kickCursor = len(targets) - 1
			}
			r.kickTarget = targets[r.kickCursor].GoogleSessionID
		}
		return a, nil
	}

	switch msg.String() {
	case "esc":
		r.kickTarget = ""
	case "enter":
		reason := strings.TrimSpace(r.kickReason)
		if reason == "" {
			reason = "disruptive behavior"
		}
		target := r.kickTarget
		r.mode = modeChat
		r.kickTarget = ""
		r.kickReason = ""
		r.view.ClearError()
		seq := r.view.StampFetch()
		return a, startVotekick(r.ctx, a.client, r.roomID, a.user.GoogleSessionID, target, reason, seq)
	default:
		r.kickReason = editLine(r.kickReason, msg)
	}
	return a, nil
}

func (a *App) updateRoomAssist(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := a.room

	switch msg.String() {
	case "esc", "tab":
		r.mode = modeChat
		return a, nil
	case "ctrl+t":
		r.assistType = nextAssistType(r.assistType)
		return a, nil
	case "enter":
		if r.assistBusy {
			return a, nil
		}
		draft := strings.TrimSpace(r.assistInput)
		if draft == "" {
			return a, nil
		}
		r.assistInput = ""
		r.assistBusy = true
		return a, askAssistant(r.ctx, r.assist, draft, r.assistType)
	}

	r.assistInput = editLine(r.assistInput, msg)
	return a, nil
}

func nextAssistType(t string) string {
	switch t {
	case api.AssistGeneral:
		return api.AssistTranslation
	case api.AssistTranslation:
		return api.AssistTone
	default:
		return api.AssistGeneral
	}
}

// kickableTargets is everyone except the viewer, in participant order.
func kickableTargets(snap api.RoomState, selfID string) []api.Participant {
	out := make([]api.Participant, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		if p.GoogleSessionID != selfID {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) viewRoom() string {
	r := a.room
	if r == nil {
		return ""
	}

	snap, haveSnap := r.view.Snapshot()
	var b strings.Builder

	title := r.title
	if haveSnap && snap.RoomTitle != "" {
		title = snap.RoomTitle
	}
	header := a.styles.title.Render(title)
	if haveSnap {
		header += "  " + a.styles.subtle.Render(fmt.Sprintf("%s · %d people", snap.ActivityType, len(snap.Participants)))
	}
	b.WriteString(header + "\n")

	switch r.view.Phase() {
	case room.PhaseLoading:
		b.WriteString("\nLoading room…\n")
		return b.String()
	case room.PhaseErrored:
		b.WriteString("\n" + a.styles.errLine.Render(r.view.Err()) + "\n")
		b.WriteString(a.styles.subtle.Render("retrying automatically · esc to leave") + "\n")
		return b.String()
	}

	if snap.CurrentIcebreaker != "" {
		b.WriteString(a.styles.prompt.Render("❄ "+snap.CurrentIcebreaker) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(a.renderMessages(snap))
	b.WriteString("\n" + a.renderParticipants(snap) + "\n")
	b.WriteString(a.renderVotekicks(snap))

	if r.view.ShowOverlay() && snap.ReadyStatus.TimerRemaining != nil {
		b.WriteString(a.styles.overlay.Render(fmt.Sprintf("New topic in %d…", *snap.ReadyStatus.TimerRemaining)) + "\n")
	}

	switch r.mode {
	case modeKick:
		b.WriteString(a.renderKickPrompt(snap))
	case modeAssist:
		b.WriteString(a.renderAssistPane())
	default:
		b.WriteString(fmt.Sprintf("\n> %s█\n", r.input))
		ready := "ready up"
		if r.view.SelfReady() {
			ready = "unready"
		}
		b.WriteString(a.styles.subtle.Render(
			"enter send · ctrl+r "+ready+" · ctrl+k votekick · tab assistant · esc leave") + "\n")
	}

	if err := r.view.Err(); err != "" {
		b.WriteString(a.styles.errLine.Render(err) + "\n")
	}
	return b.String()
}

func (a *App) renderMessages(snap api.RoomState) string {
	msgs := snap.ChatHistory
	if len(msgs) > maxVisibleMessages {
		msgs = msgs[len(msgs)-maxVisibleMessages:]
	}

	var b strings.Builder
	for _, m := range msgs {
		switch m.Type {
		case api.MessageTypeSystem:
			b.WriteString(a.styles.system.Render("· "+m.Content) + "\n")
		case api.MessageTypeIcebreaker:
			b.WriteString(a.styles.prompt.Render("❄ "+m.Content) + "\n")
		default:
			name := m.SenderName
			if m.SenderID == a.user.GoogleSessionID {
				name = a.styles.self.Render(name)
			}
			b.WriteString(fmt.Sprintf("%s: %s\n", name, m.Content))
		}
	}
	return b.String()
}

func (a *App) renderParticipants(snap api.RoomState) string {
	parts := make([]string, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		name := p.DisplayName
		if p.GoogleSessionID == a.user.GoogleSessionID {
			name = name + " (you)"
		}
		if p.IsReady {
			name = a.styles.ready.Render("✓ " + name)
		}
		parts = append(parts, name)
	}
	rs := snap.ReadyStatus
	label := fmt.Sprintf("ready %d/%d", rs.ReadyCount, rs.TotalParticipants)
	return a.styles.subtle.Render(label+" · ") + strings.Join(parts, ", ")
}

func (a *App) renderVotekicks(snap api.RoomState) string {
	if len(snap.ActiveVotekicks) == 0 {
		return ""
	}
	now := time.Now()
	var b strings.Builder
	for _, vk := range snap.ActiveVotekicks {
		line := fmt.Sprintf("Votekick %s (%s): %d yes / %d no, %d needed, %ds left",
			vk.TargetName, vk.Reason, len(vk.VotesFor), len(vk.VotesAgainst),
			vk.VotesNeeded, room.VoteTimeLeft(vk, now))
		if room.CanVote(vk, a.user.GoogleSessionID) {
			line += "  — ctrl+y yes / ctrl+n no"
		} else if room.HasVoted(vk, a.user.GoogleSessionID) {
			line += "  — voted"
		}
		b.WriteString(a.styles.kick.Render(line) + "\n")
	}
	return b.String()
}

func (a *App) renderKickPrompt(snap api.RoomState) string {
	r := a.room
	var b strings.Builder

	if r.kickTarget == "" {
		b.WriteString("\n" + a.styles.kick.Render("Votekick whom?") + "\n")
		for i, p := range kickableTargets(snap, a.user.GoogleSessionID) {
			line := "  " + p.DisplayName
			if i == r.kickCursor {
				line = a.styles.selected.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(a.styles.subtle.Render("enter select · esc cancel") + "\n")
		return b.String()
	}

	b.WriteString("\n" + a.styles.kick.Render("Reason:") + fmt.Sprintf(" %s█\n", r.kickReason))
	b.WriteString(a.styles.subtle.Render("enter start the vote · esc back") + "\n")
	return b.String()
}

func (a *App) renderAssistPane() string {
	r := a.room
	var b strings.Builder
	b.WriteString("\n" + a.styles.title.Render("Writing assistant") + "  ")
	b.WriteString(a.styles.subtle.Render("mode: "+r.assistType) + "\n")

	for _, line := range r.assist.Lines() {
		if line.Role == assistant.RoleUser {
			b.WriteString(a.styles.self.Render("you: ") + line.Content + "\n")
		} else {
			b.WriteString("assistant: " + line.Content + "\n")
		}
	}
	if r.assistBusy {
		b.WriteString(a.styles.subtle.Render("thinking…") + "\n")
	}
	b.WriteString(fmt.Sprintf("\n? %s█\n", r.assistInput))
	b.WriteString(a.styles.subtle.Render("enter ask · ctrl+t mode · tab back to chat") + "\n")
	return b.String()
}
