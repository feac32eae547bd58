package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/pokerhall/pokerhall/internal/actor"
	"github.com/pokerhall/pokerhall/internal/auth"
	"github.com/pokerhall/pokerhall/internal/bank"
)

// Server owns the process-wide pieces: the room and player registries, the
// chip source, the verifier, and the HTTP listener that upgrades clients
// into player actors.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	verifier auth.Verifier
	chips    bank.ChipSource
	clock    quartz.Clock

	upgrader websocket.Upgrader

	rooms   *actor.Registry[string, *actor.Room]
	players *actor.Registry[string, *actor.Player]

	bankCloser io.Closer
}

// Option adjusts server construction. Tests use these to inject mock
// clocks and canned chip sources.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithVerifier overrides the verifier chosen from configuration.
func WithVerifier(v auth.Verifier) Option {
	return func(s *Server) { s.verifier = v }
}

// WithChipSource overrides the chip source chosen from configuration.
func WithChipSource(src bank.ChipSource) Option {
	return func(s *Server) { s.chips = src }
}

// WithClock sets the clock driving room turn timers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// New builds a server from validated configuration.
func New(cfg *Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: log.Default(),
		clock:  quartz.NewReal(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.verifier == nil {
		if cfg.Server.AuthSecret != "" {
			s.verifier = auth.NewTokenVerifier(cfg.Server.AuthSecret)
		} else {
			s.logger.Warn("no auth_secret configured, allowing guest access")
			s.verifier = auth.GuestVerifier{}
		}
	}

	if s.chips == nil {
		switch cfg.Bank.Driver {
		case "sqlite":
			db, err := bank.Open(cfg.Bank.Path,
				bank.WithDBLogger(s.logger.WithPrefix("bank")),
				bank.WithSignupChips(cfg.Bank.DefaultChips))
			if err != nil {
				return nil, err
			}
			s.chips = db
			s.bankCloser = db
		default:
			s.chips = bank.Fixed(cfg.Bank.DefaultChips)
		}
	}
	return s, nil
}

// Handler starts the registries and room actors and returns the HTTP
// handler serving them. It is called once, by Run or by a test mounting
// the server on a local listener; the actors stop when ctx is cancelled.
func (s *Server) Handler(ctx context.Context) http.Handler {
	s.rooms = actor.NewRegistry[string, *actor.Room](ctx)
	s.players = actor.NewRegistry[string, *actor.Player](ctx)
	directory := actor.NewDirectory(s.players)

	for _, table := range s.cfg.Tables {
		room := actor.NewRoom(ctx, table.GameConfig(), directory,
			actor.WithLogger(s.logger),
			actor.WithClock(s.clock),
			actor.WithTurnTimeout(s.cfg.TurnTimeoutDuration()),
			actor.WithChannelSize(s.cfg.Server.ChannelSize),
			actor.WithStartingChips(s.cfg.Bank.DefaultChips))
		s.rooms.Set(ctx, table.ID, room)
		s.logger.Info("table open", "table", table.ID, "name", table.Name,
			"blinds", table.BigBlind)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket(ctx))
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run serves until ctx is cancelled, then shuts the listener down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if s.bankCloser != nil {
			_ = s.bankCloser.Close()
		}
	}()

	httpServer := &http.Server{
		Addr:    s.cfg.ListenAddress(),
		Handler: s.Handler(ctx),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", "addr", s.cfg.ListenAddress())
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleWebSocket verifies the request, upgrades it, and hands the socket
// to a fresh player actor.
func (s *Server) handleWebSocket(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := s.verifier.Verify(r)
		if err != nil {
			s.logger.Debug("rejected connection", "err", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, connected := s.players.Get(r.Context(), player.ID); connected {
			s.logger.Debug("duplicate connection", "player", player.Username)
			http.Error(w, "already connected", http.StatusConflict)
			return
		}
		if enroller, ok := s.chips.(bank.Enroller); ok {
			if err := enroller.EnsurePlayer(r.Context(), player.ID, player.Username); err != nil {
				s.logger.Error("enrolment failed", "player", player.Username, "err", err)
			}
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Error("failed to upgrade connection", "err", err)
			return
		}

		p := actor.NewPlayer(ctx, player, s.rooms, s.players, s.chips, s.logger)
		NewConnection(conn, p, s.logger).Start(ctx)
		s.logger.Info("client connected", "player", player.Username)
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
