package play

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/daemonn69/somnia-jump/internal/platform/random"
	"github.com/daemonn69/somnia-jump/internal/services/game/engine"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/client"
	"github.com/gorilla/websocket"
)

// Path is where the handler is mounted.
const Path = "/play/ws"

// DefaultFrameInterval is one display refresh at 60 Hz.
const DefaultFrameInterval = time.Second / 60

// Config wires play sessions.
type Config struct {
	// Sink receives final scores of identified players. Nil disables
	// submission.
	Sink client.Sink
	// Tuning overrides the engine constants; zero uses the defaults.
	Tuning engine.Tuning
	// FrameInterval is the tick period; zero uses DefaultFrameInterval.
	FrameInterval time.Duration
	// NewRandom builds a platform source per session; nil seeds one from
	// crypto/rand.
	NewRandom func() (engine.Random, error)
	// CheckOrigin overrides the upgrader origin check.
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades connections and runs one session per socket.
type Handler struct {
	cfg       Config
	upgrader  websocket.Upgrader
	submitter *client.Submitter
	sessions  sync.WaitGroup
}

// NewHandler builds a handler.
func NewHandler(cfg Config) *Handler {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.NewRandom == nil {
		cfg.NewRandom = func() (engine.Random, error) {
			return random.NewRand()
		}
	}
	h := &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
	if cfg.Sink != nil {
		h.submitter = client.NewSubmitter(cfg.Sink)
	}
	return h
}

// Register mounts the handler on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(Path, h)
}

// Wait blocks until live sessions end and then until their background score
// submissions finish. Callers must first stop new requests and cancel the
// request contexts of hijacked sockets.
func (h *Handler) Wait() {
	h.sessions.Wait()
	if h.submitter != nil {
		h.submitter.Wait()
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Counted before the upgrade so http.Server.Shutdown still sees the
	// connection as active until the session is registered.
	h.sessions.Add(1)
	defer h.sessions.Done()

	rng, err := h.cfg.NewRandom()
	if err != nil {
		log.Printf("play: seed random: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("play: upgrade: %v", err)
		return
	}

	identity := strings.TrimSpace(r.URL.Query().Get("address"))
	engineCfg := engine.Config{
		Tuning:   h.cfg.Tuning,
		Random:   rng,
		Identity: identity,
	}
	if h.submitter != nil {
		engineCfg.Submitter = h.submitter
	}
	s := newSession(conn, engineCfg, h.cfg.FrameInterval)
	s.run(r.Context())
}
