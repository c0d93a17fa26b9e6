package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/physics2d/internal/core/events/bus"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/resolver"
)

// Server runs a world at its fixed time step and streams the result to
// websocket viewers.
type Server struct {
	config Config
	logger log.Log

	world  *resolver.World
	events bus.EventBus
	subs   []bus.Subscription

	// latest is the last broadcast snapshot, served over plain HTTP too.
	latest atomic.Pointer[resolver.Snapshot]
	hub    *hub

	httpServer *http.Server
	listener   net.Listener

	// Server state
	running atomic.Bool
	closed  atomic.Bool

	// Background workers
	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Config holds server configuration
type Config struct {
	ListenAddr string `yaml:"listenAddr"`
	// SnapshotEvery is the number of ticks between snapshot broadcasts.
	SnapshotEvery int `yaml:"snapshotEvery"`
	MaxClients    int `yaml:"maxClients"`
	// WriteTimeout bounds a single websocket write; slower clients are
	// dropped.
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	// SendBuffer is the number of messages queued per client.
	SendBuffer int `yaml:"sendBuffer"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:    "127.0.0.1:8080",
		SnapshotEvery: 1,
		MaxClients:    64,
		WriteTimeout:  time.Second,
		SendBuffer:    256,
	}
}

func (c Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	case c.SnapshotEvery < 1:
		return fmt.Errorf("%w: snapshotEvery must be at least 1", ErrInvalidConfig)
	case c.MaxClients < 1:
		return fmt.Errorf("%w: maxClients must be at least 1", ErrInvalidConfig)
	case c.WriteTimeout <= 0:
		return fmt.Errorf("%w: writeTimeout must be positive", ErrInvalidConfig)
	case c.SendBuffer < 1:
		return fmt.Errorf("%w: sendBuffer must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// NewServer wires a server around world. Collision events published on
// events are forwarded to viewers; events may be nil.
func NewServer(config Config, world *resolver.World, events bus.EventBus, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		config:   config,
		logger:   logger.With(log.String("component", "server")),
		world:    world,
		events:   events,
		stopChan: make(chan struct{}),
	}
	s.hub = newHub(config, s.logger)

	snapshot := world.Snapshot()
	s.latest.Store(&snapshot)

	if events != nil {
		for _, eventType := range []string{physics.EventCollisionBegin, physics.EventCollisionEnd} {
			sub, err := events.Subscribe(eventType, s.forwardCollision)
			if err != nil {
				s.logger.Warn("Failed to subscribe to collisions", log.String("event", eventType), log.Error(err))
				continue
			}
			s.subs = append(s.subs, sub)
		}
	}

	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))

	return s
}

// Handler serves /ws (viewer stream) and /snapshot (latest state as JSON).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.ListenAddr
	}
	return s.listener.Addr().String()
}

// Start binds the listener and starts the simulation loop. It returns once
// both are running; ctx cancellation stops the loop.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()
	go func() {
		defer s.workerGroup.Done()
		s.loop(ctx)
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Stop stops the loop, disconnects every viewer and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")
	close(s.stopChan)

	err := s.httpServer.Shutdown(ctx)
	s.hub.closeAll()
	s.workerGroup.Wait()

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if needed and detaches it from the event bus.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.running.Load() {
		_ = s.Stop(context.Background())
	}
	for _, sub := range s.subs {
		_ = sub.Cancel()
	}
	s.hub.closeAll()
	return nil
}

func (s *Server) loop(ctx context.Context) {
	step := time.Duration(s.world.Config().TimeStep * float64(time.Second))
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances the world once and broadcasts a snapshot when due. Only one
// goroutine may drive the world; the loop started by Start is that
// goroutine while the server runs.
func (s *Server) Tick() resolver.Frame {
	frame := s.world.Step()
	if frame.Tick%uint64(s.config.SnapshotEvery) == 0 {
		snapshot := s.world.Snapshot()
		s.latest.Store(&snapshot)
		s.hub.broadcast(Message{Type: MessageSnapshot, Tick: frame.Tick, Snapshot: &snapshot})
	}
	return frame
}

func (s *Server) forwardCollision(e bus.Event) error {
	ev, ok := e.Data().(resolver.CollisionEvent)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", e.Type(), e.Data())
	}

	msg := Message{
		Type: MessageCollisionBegin,
		Tick: ev.Tick,
		Collision: &Collision{
			Body: ev.Body.ID(),
			Name: ev.Body.Name(),
		},
	}
	if e.Type() == physics.EventCollisionEnd {
		msg.Type = MessageCollisionEnd
	}
	for _, other := range ev.Others {
		msg.Collision.Others = append(msg.Collision.Others, other.ID())
	}
	s.hub.broadcast(msg)
	return nil
}
