package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/dropchooser/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Any origin may watch.
	CheckOrigin: func(*http.Request) bool { return true },
}

type clientSession struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *clientSession) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *clientSession) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (s *FeedServer) handleFrames(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt64(&s.clientCount) >= int64(s.config.MaxClients) {
		s.logger.Warn("Maximum clients reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	session := &clientSession{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.config.ClientBuffer),
		done: make(chan struct{}),
	}
	if last := s.lastFrame.Load(); last != nil {
		session.send <- *last
	}

	s.clients.Store(session.id, session)
	atomic.AddInt64(&s.clientCount, 1)
	s.logger.Info("Client connected",
		log.String("client_id", session.id),
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))

	go s.writePump(session)
	s.readPump(session)
}

// readPump discards client messages until the connection fails.
func (s *FeedServer) readPump(session *clientSession) {
	defer func() {
		session.close()
		s.clients.Delete(session.id)
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Info("Client disconnected",
			log.String("client_id", session.id),
			log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))
	}()

	session.conn.SetReadLimit(1024)
	for {
		if _, _, err := session.conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *FeedServer) writePump(session *clientSession) {
	for {
		select {
		case <-session.done:
			return
		case payload := <-session.send:
			_ = session.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := session.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debug("Write failed", log.String("client_id", session.id), log.Error(err))
				session.close()
				return
			}
		}
	}
}
