package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/game"
)

// FeedServer streams simulation frames to websocket spectators.
// It is read-only: anything a client sends is discarded.
type FeedServer struct {
	config Config
	logger log.Log

	httpServer *http.Server
	listener   net.Listener

	clients     sync.Map // map[string]*clientSession
	clientCount int64    // atomic

	lastFrame atomic.Pointer[[]byte]

	broadcasts int64 // atomic
	dropped    int64 // atomic

	running int32 // atomic bool
	closed  int32 // atomic bool
}

// Config holds feed server configuration
type Config struct {
	ListenAddr string
	MaxClients int

	// ClientBuffer is how many frames may queue per client before it is dropped.
	ClientBuffer int
	WriteTimeout time.Duration
}

// DefaultConfig returns default feed configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8080",
		MaxClients:   64,
		ClientBuffer: 16,
		WriteTimeout: 5 * time.Second,
	}
}

// NewFeedServer creates a feed server listening on addr with default limits.
func NewFeedServer(addr string, logger log.Log) *FeedServer {
	cfg := DefaultConfig()
	if addr != "" {
		cfg.ListenAddr = addr
	}
	return NewFeedServerWithConfig(cfg, logger)
}

func NewFeedServerWithConfig(config Config, logger log.Log) *FeedServer {
	def := DefaultConfig()
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.ClientBuffer <= 0 {
		config.ClientBuffer = def.ClientBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if logger == nil {
		logger = log.Nop()
	}

	s := &FeedServer{
		config: config,
		logger: logger.With(log.String("component", "feed")),
	}
	s.logger.Debug("Feed server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))
	return s
}

// Start binds the listener and serves in the background.
func (s *FeedServer) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return errors.Join(ErrListenerFailed, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Feed server stopped unexpectedly", log.Error(err))
		}
	}()

	s.logger.Info("Feed server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Stop shuts the HTTP server down and disconnects every client.
func (s *FeedServer) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	atomic.StoreInt32(&s.closed, 1)

	err := s.httpServer.Shutdown(ctx)
	s.clients.Range(func(_, value any) bool {
		value.(*clientSession).close()
		return true
	})

	s.logger.Info("Feed server stopped")
	return err
}

// Addr returns the bound address, or the configured one before Start.
func (s *FeedServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddr
}

// Broadcast encodes frame once and queues it for every client. Clients
// whose queue is full are disconnected rather than slowing the caller.
func (s *FeedServer) Broadcast(frame game.Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error("Failed to encode frame", log.Error(err))
		return
	}
	s.lastFrame.Store(&payload)
	atomic.AddInt64(&s.broadcasts, 1)

	s.clients.Range(func(_, value any) bool {
		session := value.(*clientSession)
		if !session.enqueue(payload) {
			atomic.AddInt64(&s.dropped, 1)
			s.logger.Warn("Dropping slow client", log.String("client_id", session.id))
			session.close()
		}
		return true
	})
}

// GetStats returns feed statistics
func (s *FeedServer) GetStats() Stats {
	return Stats{
		ClientCount: atomic.LoadInt64(&s.clientCount),
		Broadcasts:  atomic.LoadInt64(&s.broadcasts),
		Dropped:     atomic.LoadInt64(&s.dropped),
		Running:     atomic.LoadInt32(&s.running) == 1,
	}
}

// Stats contains feed statistics
type Stats struct {
	ClientCount int64
	Broadcasts  int64
	Dropped     int64
	Running     bool
}
