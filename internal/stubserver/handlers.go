package stubserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GoogleSessionID   string `json:"google_session_id"`
		DisplayName       string `json:"display_name"`
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.GoogleSessionID == "" || strings.TrimSpace(req.DisplayName) == "" {
		writeError(w, http.StatusBadRequest, "google_session_id and display_name required")
		return
	}
	user, err := s.users.Upsert(req.GoogleSessionID, strings.TrimSpace(req.DisplayName), req.ProfilePictureURL)
	if err != nil {
		s.log.Error("user upsert failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to sync user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]api.User{"user": user})
}

func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.RoomSummary, 0, len(s.rooms))
	for _, rm := range s.rooms {
		out = append(out, rm.summary())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomTitle       string `json:"room_title"`
		DisplayName     string `json:"display_name"`
		GoogleSessionID string `json:"google_session_id"`
		MaxParticipants int    `json:"max_participants"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RoomTitle) == "" || req.GoogleSessionID == "" {
		writeError(w, http.StatusBadRequest, "room_title and google_session_id required")
		return
	}
	if req.MaxParticipants <= 0 {
		req.MaxParticipants = 12
	}

	s.mu.Lock()
	rm := newRoom(strings.TrimSpace(req.RoomTitle), req.MaxParticipants, s.now)
	if err := rm.addParticipant(req.GoogleSessionID, req.DisplayName, ""); err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.rooms[rm.sessionID] = rm
	s.mu.Unlock()

	if err := s.users.BumpRoomsJoined(req.GoogleSessionID); err != nil {
		s.log.Warn("rooms_joined bump failed", zap.Error(err))
	}
	s.log.Info("room created",
		zap.String("session_id", rm.sessionID),
		zap.String("title", rm.title))
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": rm.sessionID})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID         string `json:"session_id"`
		DisplayName       string `json:"display_name"`
		GoogleSessionID   string `json:"google_session_id"`
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	rm, ok := s.rooms[req.SessionID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	err := rm.addParticipant(req.GoogleSessionID, req.DisplayName, req.ProfilePictureURL)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if err := s.users.BumpRoomsJoined(req.GoogleSessionID); err != nil {
		s.log.Warn("rooms_joined bump failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID       string `json:"session_id"`
		GoogleSessionID string `json:"google_session_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if !rm.removeParticipant(req.GoogleSessionID) {
		writeError(w, http.StatusNotFound, "participant not found")
		return
	}
	// Empty rooms disappear from the browser immediately.
	if len(rm.participants) == 0 {
		delete(s.rooms, req.SessionID)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[sessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, rm.snapshot())
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID       string `json:"session_id"`
		GoogleSessionID string `json:"google_session_id"`
		Message         string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	s.mu.Lock()
	rm, ok := s.rooms[req.SessionID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	_, err := rm.addMessage(req.GoogleSessionID, strings.TrimSpace(req.Message))
	var snap api.RoomState
	if err == nil {
		snap = rm.snapshot()
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.users.BumpMessages(req.GoogleSessionID); err != nil {
		s.log.Warn("total_messages bump failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]api.RoomState{"room_state": snap})
}

func (s *Server) handleSetReady(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID       string `json:"session_id"`
		GoogleSessionID string `json:"google_session_id"`
		IsReady         bool   `json:"is_ready"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	status, err := rm.setReady(req.GoogleSessionID, req.IsReady)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]api.ReadyStatus{"ready_status": status})
}

func (s *Server) handleStartVotekick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID   string `json:"session_id"`
		InitiatorID string `json:"initiator_id"`
		TargetID    string `json:"target_id"`
		Reason      string `json:"reason"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err := rm.startVotekick(req.InitiatorID, req.TargetID, strings.TrimSpace(req.Reason)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]api.RoomState{"room_state": rm.snapshot()})
}

func (s *Server) handleVoteOnKick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		VoterID   string `json:"voter_id"`
		TargetID  string `json:"target_id"`
		Vote      bool   `json:"vote"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err := rm.voteOnKick(req.VoterID, req.TargetID, req.Vote); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]api.RoomState{"room_state": rm.snapshot()})
}

func (s *Server) handleWritingAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID      string `json:"session_id"`
		DisplayName    string `json:"display_name"`
		DraftMessage   string `json:"draft_message"`
		AssistanceType string `json:"assistance_type"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DraftMessage) == "" {
		writeError(w, http.StatusBadRequest, "draft_message required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"response": assistantReply(req.AssistanceType, req.DraftMessage),
	})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	out := make([]api.Scenario, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, api.Scenario{ID: sc.ID, Title: sc.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListGMs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, gameMasters)
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.GameInfo, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g.info())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
		GMID       string `json:"gm_id"`
		Name       string `json:"name"`
		Persona    string `json:"persona"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.ScenarioID == "" || req.GMID == "" || req.Name == "" || req.Persona == "" {
		writeError(w, http.StatusBadRequest, "missing scenario, GM, name, or persona")
		return
	}
	g, err := newGameSession(req.ScenarioID, req.GMID, req.Name, req.Persona)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.mu.Lock()
	s.games[g.sessionID] = g
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, g.info())
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID   string `json:"session_id"`
		Instruction string `json:"instruction"`
		AgentName   string `json:"agent_name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.Instruction == "" || req.AgentName == "" {
		writeError(w, http.StatusBadRequest, "missing parameters")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "invalid session ID")
		return
	}
	result := g.submitTurn(req.AgentName, req.Instruction)
	if result.GameOver {
		result.OutcomeLabel = outcomeLabel(g.scenarioID)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMakeStory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "invalid session ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"story": append([]string{}, g.dialogue...)})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	g, ok := s.games[req.SessionID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "invalid session ID")
		return
	}

	md := g.markdown()
	w.Header().Set("Content-Type", "text/markdown")
	w.Header().Set("Content-Disposition", `attachment; filename="`+g.scenarioID+`_simulation.md"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}
