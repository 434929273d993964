// Package assistant keeps the writing-assistant transcript. Every request
// is independent: only the single draft string crosses the wire, never the
// conversation history.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

// apology is appended when a request fails. There is no retry policy; the
// user simply asks again.
const apology = "Sorry, I had trouble helping with that. Try again?"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Line struct {
	Role    Role
	Type    string // assistance type for user lines
	Content string
	At      time.Time
}

// Helper is the client-side assistant state for one room (or the general
// context when no room is open).
type Helper struct {
	client      *api.Client
	roomID      string
	displayName string

	lines []Line
}

func New(client *api.Client, roomID, displayName string) *Helper {
	if roomID == "" {
		roomID = "general"
	}
	return &Helper{client: client, roomID: roomID, displayName: displayName}
}

// Ask sends one draft to the assistant and appends both sides to the
// transcript. A failure appends a single apology line instead of a reply.
func (h *Helper) Ask(ctx context.Context, draft, assistType string) {
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return
	}
	if assistType == "" {
		assistType = api.AssistGeneral
	}

	h.lines = append(h.lines, Line{Role: RoleUser, Type: assistType, Content: draft, At: time.Now()})

	reply, err := h.client.WritingHelp(ctx, h.roomID, h.displayName, draft, assistType)
	if err != nil {
		h.lines = append(h.lines, Line{Role: RoleAssistant, Content: apology, At: time.Now()})
		return
	}
	h.lines = append(h.lines, Line{Role: RoleAssistant, Content: reply, At: time.Now()})
}

func (h *Helper) Lines() []Line { return h.lines }
