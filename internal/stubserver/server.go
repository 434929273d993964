package stubserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server owns the in-memory registries and the SQLite user store. One
// mutex guards all room and game state; traffic here is a handful of
// polling clients, not production load.
type Server struct {
	mu    sync.Mutex
	rooms map[string]*room
	games map[string]*gameSession

	users *UserDB
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Server)

// WithClock overrides wall-clock time, letting tests drive ready-timer and
// votekick expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

func New(users *UserDB, opts ...Option) *Server {
	s := &Server{
		rooms: make(map[string]*room),
		games: make(map[string]*gameSession),
		users: users,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the chi router covering the full client contract.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/google", s.handleAuth)

	r.Get("/icebreaker_rooms", s.handleListRooms)
	r.Post("/create_icebreaker_room", s.handleCreateRoom)
	r.Post("/join_icebreaker_room", s.handleJoinRoom)
	r.Post("/leave_icebreaker_room", s.handleLeaveRoom)
	r.Get("/icebreaker_room/{sessionID}", s.handleRoomState)
	r.Post("/send_icebreaker_message", s.handleSendMessage)
	r.Post("/set_ready_status", s.handleSetReady)
	r.Post("/start_votekick", s.handleStartVotekick)
	r.Post("/vote_on_kick", s.handleVoteOnKick)
	r.Post("/writing_assistant", s.handleWritingAssistant)

	r.Get("/scenarios", s.handleListScenarios)
	r.Get("/gms", s.handleListGMs)
	r.Get("/rooms", s.handleListGames)
	r.Post("/start_game", s.handleStartGame)
	r.Post("/submit_turn", s.handleSubmitTurn)
	r.Post("/make_story", s.handleMakeStory)
	r.Post("/download", s.handleDownload)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}
