// Package client watches a dropchooser frame feed over websocket.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/game"
)

// Client is a read-only spectator of one feed.
type Client struct {
	conn *websocket.Conn

	frameHandlers []FrameHandler
	eventHandlers map[EventType][]EventHandler
	handlerMutex  sync.RWMutex

	last   atomic.Pointer[game.Frame]
	frames atomic.Uint64

	connected int32 // atomic bool
	closed    int32 // atomic bool
	done      chan struct{}
	winner    chan game.Frame

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
}

// Config holds configuration for the client
type Config struct {
	ServerAddr     string
	Path           string
	ConnectTimeout time.Duration
	MaxFrameSize   int64
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerAddr:     "127.0.0.1:8080",
		Path:           "/frames",
		ConnectTimeout: 10 * time.Second,
		MaxFrameSize:   4 << 20,
	}
}

// FrameHandler is called, in order, for every decoded frame.
type FrameHandler func(frame game.Frame) error

// EventHandler defines a function type for handling client events
type EventHandler func(event Event) error

// EventType represents different types of client events
type EventType string

const (
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeWinner       EventType = "winner"
	EventTypeError        EventType = "error"
)

// Event represents a client event
type Event struct {
	Type      EventType
	Timestamp time.Time
	Frame     *game.Frame
	Error     error
}

func NewClient(config Config, logger log.Log) *Client {
	def := DefaultClientConfig()
	if config.Path == "" {
		config.Path = def.Path
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = def.ConnectTimeout
	}
	if config.MaxFrameSize <= 0 {
		config.MaxFrameSize = def.MaxFrameSize
	}
	if logger == nil {
		logger = log.Nop()
	}

	return &Client{
		eventHandlers: make(map[EventType][]EventHandler),
		done:          make(chan struct{}),
		winner:        make(chan game.Frame, 1),
		config:        config,
		logger:        logger.With(log.String("component", "client")),
	}
}

// URL returns the websocket address the client dials.
func (c *Client) URL() (string, error) {
	if c.config.ServerAddr == "" {
		return "", fmt.Errorf("%w: empty server address", ErrInvalidConfig)
	}
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	return u.String(), nil
}

// Connect dials the feed and starts decoding frames in the background.
func (c *Client) Connect(ctx context.Context) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	if atomic.LoadInt32(&c.connected) == 1 {
		return ErrAlreadyConnected
	}
	target, err := c.URL()
	if err != nil {
		return err
	}

	c.logger.Info("Connecting to feed", log.String("url", target))

	connectCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(connectCtx, target, nil)
	if err != nil {
		if errors.Is(connectCtx.Err(), context.DeadlineExceeded) {
			err = errors.Join(ErrConnectionTimeout, err)
		}
		c.logger.Error("Failed to connect to feed", log.String("url", target), log.Error(err))
		return err
	}
	conn.SetReadLimit(c.config.MaxFrameSize)

	c.conn = conn
	atomic.StoreInt32(&c.connected, 1)
	c.logger.Info("Connected to feed", log.String("remote_addr", conn.RemoteAddr().String()))

	c.workerGroup.Add(1)
	go func() {
		defer c.workerGroup.Done()
		c.frameReceiver()
	}()

	c.emitEvent(Event{Type: EventTypeConnected, Timestamp: time.Now()})
	return nil
}

// Close disconnects and waits for the receiver to stop.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.conn.Close()
	}
	c.workerGroup.Wait()

	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.logger.Info("Client closed", log.Uint64("frames", c.frames.Load()))
	return nil
}

// OnFrame registers a frame handler. Handlers run on the receiver goroutine.
func (c *Client) OnFrame(handler FrameHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.frameHandlers = append(c.frameHandlers, handler)
}

// OnEvent registers an event handler
func (c *Client) OnEvent(eventType EventType, handler EventHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.eventHandlers[eventType] = append(c.eventHandlers[eventType], handler)
}

// Last returns the most recent frame.
func (c *Client) Last() (game.Frame, bool) {
	if f := c.last.Load(); f != nil {
		return *f, true
	}
	return game.Frame{}, false
}

// Frames returns how many frames have been decoded.
func (c *Client) Frames() uint64 { return c.frames.Load() }

func (c *Client) IsConnected() bool { return atomic.LoadInt32(&c.connected) == 1 }

func (c *Client) IsClosed() bool { return atomic.LoadInt32(&c.closed) == 1 }

// Done is closed once the feed connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// WaitWinner blocks until a frame carrying a banner arrives, the feed ends
// or ctx is done.
func (c *Client) WaitWinner(ctx context.Context) (game.Frame, error) {
	select {
	case f := <-c.winner:
		return f, nil
	case <-c.done:
		select {
		case f := <-c.winner:
			return f, nil
		default:
			return game.Frame{}, ErrNotConnected
		}
	case <-ctx.Done():
		return game.Frame{}, ctx.Err()
	}
}

func (c *Client) frameReceiver() {
	c.logger.Debug("Frame receiver started")
	defer func() {
		atomic.StoreInt32(&c.connected, 0)
		select {
		case <-c.done:
		default:
			close(c.done)
		}
		c.emitEvent(Event{Type: EventTypeDisconnected, Timestamp: time.Now()})
		c.logger.Debug("Frame receiver stopped")
	}()

	announced := false
	for {
		var frame game.Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if atomic.LoadInt32(&c.closed) == 0 && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("Feed read failed", log.Error(err))
				c.emitEvent(Event{Type: EventTypeError, Timestamp: time.Now(), Error: err})
			}
			return
		}
		c.handleFrame(frame)

		if frame.Banner != nil && !announced {
			announced = true
			c.winner <- frame
			c.emitEvent(Event{Type: EventTypeWinner, Timestamp: time.Now(), Frame: &frame})
		}
	}
}

func (c *Client) handleFrame(frame game.Frame) {
	c.last.Store(&frame)
	c.frames.Add(1)

	c.handlerMutex.RLock()
	handlers := c.frameHandlers
	c.handlerMutex.RUnlock()

	for _, handler := range handlers {
		if err := handler(frame); err != nil {
			c.logger.Error("Frame handler error", log.Uint64("tick", frame.Tick), log.Error(err))
		}
	}
}

// emitEvent emits an event to registered handlers
func (c *Client) emitEvent(event Event) {
	c.handlerMutex.RLock()
	handlers := c.eventHandlers[event.Type]
	c.handlerMutex.RUnlock()

	for _, handler := range handlers {
		go func(h EventHandler) {
			if err := h(event); err != nil {
				c.logger.Error("Event handler error", log.Error(err))
			}
		}(handler)
	}
}
