// Package stubserver is a local, in-memory implementation of the session
// service contract. It exists so the client can be developed and tested
// without the hosted backend; the hosted service stays authoritative in
// production. Room lifecycle, ready timers, and votekick resolution follow
// the original service's rules.
package stubserver

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

const (
	readyTimerDuration = 60 * time.Second
	votekickDuration   = 60 * time.Second
	votekickThreshold  = 0.6
	minVotekickSize    = 3
)

type participant struct {
	api.Participant
	joinedAt   time.Time
	lastActive time.Time
	limiter    *rate.Limiter
}

type votekick struct {
	targetID      string
	targetName    string
	initiatorID   string
	initiatorName string
	reason        string
	votes         map[string]bool // voter id -> yes/no
	startedAt     time.Time
	expiresAt     time.Time
}

// room is one icebreaker session. Callers must hold the registry lock.
type room struct {
	sessionID       string
	title           string
	facilitatorName string
	maxParticipants int
	createdAt       time.Time

	participants []*participant
	chatHistory  []api.Message

	currentIcebreaker string
	icebreakerHistory []string
	activityType      string

	readyTimerStart *time.Time

	votekicks map[string]*votekick // target id -> active vote

	now func() time.Time
}

func newRoom(title string, maxParticipants int, now func() time.Time) *room {
	r := &room{
		sessionID:       uuid.NewString(),
		title:           title,
		facilitatorName: "Icebreaker Bot",
		maxParticipants: maxParticipants,
		createdAt:       now(),
		activityType:    "introductions",
		votekicks:       make(map[string]*votekick),
		now:             now,
	}
	r.pushIcebreaker(nextIcebreaker(r.activityType, len(r.icebreakerHistory)))
	return r
}

func (r *room) participantByID(id string) *participant {
	for _, p := range r.participants {
		if p.GoogleSessionID == id {
			return p
		}
	}
	return nil
}

func (r *room) addParticipant(id, name, picture string) error {
	if len(r.participants) >= r.maxParticipants {
		return fmt.Errorf("room is full (%d/%d)", len(r.participants), r.maxParticipants)
	}
	if r.participantByID(id) != nil {
		return fmt.Errorf("already in this room")
	}
	now := r.now()
	p := &participant{
		Participant: api.Participant{
			GoogleSessionID: id,
			DisplayName:     name,
			ProfilePicture:  picture,
			JoinedAt:        now.Format(time.RFC3339),
		},
		joinedAt:   now,
		lastActive: now,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
	}
	r.participants = append(r.participants, p)
	r.addSystemMessage(name + " joined the chat")
	return nil
}

func (r *room) removeParticipant(id string) bool {
	for i, p := range r.participants {
		if p.GoogleSessionID == id {
			r.addSystemMessage(p.DisplayName + " left the chat")
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			r.dropVotesOf(id)
			return true
		}
	}
	return false
}

func (r *room) addMessage(senderID, content string) (api.Message, error) {
	p := r.participantByID(senderID)
	if p == nil {
		return api.Message{}, fmt.Errorf("participant not found")
	}
	if !p.limiter.Allow() {
		return api.Message{}, fmt.Errorf("slow down, you are sending messages too fast")
	}
	msg := api.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		SenderName: p.DisplayName,
		Content:    content,
		Timestamp:  r.now().Format(time.RFC3339),
		Type:       api.MessageTypeUser,
	}
	r.chatHistory = append(r.chatHistory, msg)
	p.MessageCount++
	p.lastActive = r.now()
	return msg, nil
}

func (r *room) addSystemMessage(content string) {
	r.chatHistory = append(r.chatHistory, api.Message{
		ID:         uuid.NewString(),
		SenderID:   "system",
		SenderName: "System",
		Content:    content,
		Timestamp:  r.now().Format(time.RFC3339),
		Type:       api.MessageTypeSystem,
	})
}

// pushIcebreaker introduces a new prompt and resets everyone's ready flag
// and the ready timer.
func (r *room) pushIcebreaker(question string) {
	r.currentIcebreaker = question
	r.icebreakerHistory = append(r.icebreakerHistory, question)
	r.chatHistory = append(r.chatHistory, api.Message{
		ID:         uuid.NewString(),
		SenderID:   "icebreaker_bot",
		SenderName: r.facilitatorName,
		Content:    question,
		Timestamp:  r.now().Format(time.RFC3339),
		Type:       api.MessageTypeIcebreaker,
	})
	for _, p := range r.participants {
		p.IsReady = false
	}
	r.readyTimerStart = nil
}

// advanceActivityType mirrors the original progression: introductions,
// then getting-to-know, creative, and reflection as prompts accumulate.
func (r *room) advanceActivityType() {
	n := len(r.icebreakerHistory)
	switch {
	case n == 0:
		r.activityType = "introductions"
	case n <= 2:
		r.activityType = "getting_to_know"
	case n <= 4:
		r.activityType = "creative"
	default:
		r.activityType = "reflection"
	}
}

func (r *room) generateIcebreaker() {
	r.advanceActivityType()
	r.pushIcebreaker(nextIcebreaker(r.activityType, len(r.icebreakerHistory)))
}

func (r *room) readyCount() int {
	n := 0
	for _, p := range r.participants {
		if p.IsReady {
			n++
		}
	}
	return n
}

func (r *room) timerRemaining() *int {
	if r.readyTimerStart == nil {
		return nil
	}
	left := readyTimerDuration - r.now().Sub(*r.readyTimerStart)
	secs := int(left.Seconds())
	if secs < 0 {
		secs = 0
	}
	return &secs
}

// setReady records the flag and drives the ready flow: everyone ready (in a
// room of at least two) produces a new prompt immediately; half ready
// starts the 60 second timer.
func (r *room) setReady(id string, ready bool) (api.ReadyStatus, error) {
	p := r.participantByID(id)
	if p == nil {
		return api.ReadyStatus{}, fmt.Errorf("participant not found")
	}
	p.IsReady = ready

	readyCount := r.readyCount()
	total := len(r.participants)

	if readyCount == total && total > 1 {
		r.addSystemMessage("Everyone's ready! Here's a new icebreaker topic.")
		r.generateIcebreaker()
		return r.readyStatus(), nil
	}

	if readyCount >= max(1, total/2) && r.readyTimerStart == nil {
		now := r.now()
		r.readyTimerStart = &now
		r.addSystemMessage(fmt.Sprintf("%d/%d participants are ready. New topic in 60 seconds!", readyCount, total))
	}

	return r.readyStatus(), nil
}

func (r *room) readyStatus() api.ReadyStatus {
	readyCount := r.readyCount()
	total := len(r.participants)
	pct := 0.0
	if total > 0 {
		pct = float64(readyCount) / float64(total) * 100
	}
	return api.ReadyStatus{
		ReadyCount:        readyCount,
		TotalParticipants: total,
		ReadyPercentage:   pct,
		TimerActive:       r.readyTimerStart != nil,
		TimerRemaining:    r.timerRemaining(),
	}
}

// tick runs time-driven transitions: an expired ready timer produces the
// next prompt, expired votekicks are dropped. Called before every snapshot
// is built.
func (r *room) tick() {
	if remaining := r.timerRemaining(); remaining != nil && *remaining == 0 {
		r.generateIcebreaker()
	}
	now := r.now()
	for targetID, vk := range r.votekicks {
		if now.After(vk.expiresAt) {
			if p := r.participantByID(targetID); p != nil {
				r.addSystemMessage(fmt.Sprintf("Vote to remove %s expired without reaching threshold", p.DisplayName))
			}
			delete(r.votekicks, targetID)
		}
	}
}

func (r *room) votesNeeded() int {
	// The target cannot vote on their own removal.
	eligible := len(r.participants) - 1
	return max(2, int(float64(eligible)*votekickThreshold))
}

func (r *room) startVotekick(initiatorID, targetID, reason string) error {
	initiator := r.participantByID(initiatorID)
	target := r.participantByID(targetID)

	switch {
	case initiator == nil:
		return fmt.Errorf("initiator not found")
	case target == nil:
		return fmt.Errorf("target participant not found")
	case initiatorID == targetID:
		return fmt.Errorf("cannot vote to kick yourself")
	case len(r.participants) < minVotekickSize:
		return fmt.Errorf("need at least %d participants to start a votekick", minVotekickSize)
	}
	if _, ok := r.votekicks[targetID]; ok {
		return fmt.Errorf("votekick already in progress for this participant")
	}

	if reason == "" {
		reason = "No reason provided"
	}
	if len(reason) > 100 {
		reason = reason[:100]
	}
	now := r.now()
	r.votekicks[targetID] = &votekick{
		targetID:      targetID,
		targetName:    target.DisplayName,
		initiatorID:   initiatorID,
		initiatorName: initiator.DisplayName,
		reason:        reason,
		votes:         map[string]bool{initiatorID: true},
		startedAt:     now,
		expiresAt:     now.Add(votekickDuration),
	}
	r.addSystemMessage(fmt.Sprintf("%s started a vote to remove %s. Vote within 60 seconds.",
		initiator.DisplayName, target.DisplayName))
	return nil
}

// voteOnKick records a vote and resolves the kick when the threshold is
// reached or mathematically out of reach. Resolution is server-side by
// design; clients only ever see the result in the next snapshot.
func (r *room) voteOnKick(voterID, targetID string, vote bool) error {
	if r.participantByID(voterID) == nil {
		return fmt.Errorf("voter not found")
	}
	vk, ok := r.votekicks[targetID]
	if !ok {
		return fmt.Errorf("no active votekick for this participant")
	}
	if r.now().After(vk.expiresAt) {
		delete(r.votekicks, targetID)
		return fmt.Errorf("votekick has expired")
	}
	if voterID == targetID {
		return fmt.Errorf("target cannot vote on their own removal")
	}

	vk.votes[voterID] = vote

	yes := 0
	for _, v := range vk.votes {
		if v {
			yes++
		}
	}
	needed := r.votesNeeded()

	if yes >= needed {
		if target := r.participantByID(targetID); target != nil {
			r.removeParticipant(targetID)
			r.addSystemMessage(fmt.Sprintf("%s has been removed from the room by vote (%d voted yes)", vk.targetName, yes))
		}
		delete(r.votekicks, targetID)
		return nil
	}

	// Too many no votes: the threshold can no longer be reached.
	maxPossibleYes := yes + (len(r.participants) - 1 - len(vk.votes))
	if maxPossibleYes < needed {
		r.addSystemMessage(fmt.Sprintf("Vote to remove %s failed - not enough support", vk.targetName))
		delete(r.votekicks, targetID)
	}
	return nil
}

// dropVotesOf clears a departing participant out of the votekick state.
func (r *room) dropVotesOf(id string) {
	delete(r.votekicks, id)
	for _, vk := range r.votekicks {
		delete(vk.votes, id)
	}
}

func (r *room) activeVotekicks() []api.Votekick {
	out := make([]api.Votekick, 0, len(r.votekicks))
	for targetID, vk := range r.votekicks {
		votesFor := []string{}
		votesAgainst := []string{}
		for voterID, v := range vk.votes {
			if v {
				votesFor = append(votesFor, voterID)
			} else {
				votesAgainst = append(votesAgainst, voterID)
			}
		}
		sort.Strings(votesFor)
		sort.Strings(votesAgainst)
		eligible := []string{}
		for _, p := range r.participants {
			if p.GoogleSessionID != targetID {
				eligible = append(eligible, p.GoogleSessionID)
			}
		}
		out = append(out, api.Votekick{
			TargetID:       targetID,
			TargetName:     vk.targetName,
			InitiatorName:  vk.initiatorName,
			Reason:         vk.reason,
			VotesFor:       votesFor,
			VotesAgainst:   votesAgainst,
			EligibleVoters: eligible,
			VotesNeeded:    r.votesNeeded(),
			ExpiryTime:     vk.expiresAt.Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetID < out[j].TargetID })
	return out
}

// snapshot builds the full room state document. Time-driven transitions run
// first so every snapshot is self-consistent.
func (r *room) snapshot() api.RoomState {
	r.tick()

	parts := make([]api.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		parts = append(parts, p.Participant)
	}
	return api.RoomState{
		SessionID:         r.sessionID,
		RoomTitle:         r.title,
		FacilitatorName:   r.facilitatorName,
		Participants:      parts,
		ParticipantCount:  len(parts),
		MaxParticipants:   r.maxParticipants,
		IsActive:          true,
		CurrentIcebreaker: r.currentIcebreaker,
		ActivityType:      r.activityType,
		ChatHistory:       r.chatHistory,
		ReadyStatus:       r.readyStatus(),
		ActiveVotekicks:   r.activeVotekicks(),
		CreatedAt:         r.createdAt.Format(time.RFC3339),
	}
}

func (r *room) summary() api.RoomSummary {
	return api.RoomSummary{
		SessionID:        r.sessionID,
		RoomTitle:        r.title,
		ParticipantCount: len(r.participants),
		MaxParticipants:  r.maxParticipants,
		ActivityType:     r.activityType,
		CreatedAt:        r.createdAt.Format(time.RFC3339),
		HasSpace:         len(r.participants) < r.maxParticipants,
	}
}
