package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teamboard-dev/teamboard-server/internal/logger"
	"github.com/teamboard-dev/teamboard-server/internal/relay"
)

var errConnClosed = errors.New("connection already closed")

// client is one live websocket session. It implements relay.Sender; the
// send channel decouples the broadcast path from slow sockets.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) ID() string {
	return c.id
}

// Send queues an outbound frame. A full buffer drops the frame instead of
// blocking the broadcaster; the receiver re-syncs over REST.
func (c *client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- data:
	default:
		logger.WarnF("[%s] Send buffer full, dropping event", c.id)
	}
	return nil
}

// closeSend stops further queuing and lets writePump drain out. Sends
// racing a disconnect get errConnClosed instead of a panic.
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WSHandler upgrades HTTP requests to relay connections.
type WSHandler struct {
	dispatcher   *relay.Dispatcher
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	sendBuffer   int
	sem          chan struct{}
}

type WSConfig struct {
	PingInterval   time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	SendBuffer     int
	MaxConnections int
}

func NewWSHandler(dispatcher *relay.Dispatcher, cfg WSConfig) *WSHandler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 54 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = time.Minute
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 10000
	}
	return &WSHandler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			// internal tool, every origin is trusted
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pingInterval: cfg.PingInterval,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		sendBuffer:   cfg.SendBuffer,
		sem:          make(chan struct{}, cfg.MaxConnections),
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
	default:
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-h.sem
		logger.WarnF("Fail to upgrade connection, details: %v", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}
	logger.InfoF("[%s] Client connected from %s", c.id, conn.RemoteAddr().String())

	go h.writePump(c)
	go func() {
		h.readPump(c)
		<-h.sem
	}()
}

func (h *WSHandler) readPump(c *client) {
	defer func() {
		h.dispatcher.HandleDisconnect(c.id)
		c.closeSend()
		if err := c.conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			logger.DebugF("[%s] Error occured while closing connection, details: %v", c.id, err)
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			handleReadError(c.id, err)
			return
		}
		h.dispatcher.HandleEvent(c, frame)
	}
}

func (h *WSHandler) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.DebugF("[%s] Fail to write frame, details: %v", c.id, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func handleReadError(connID string, err error) {
	switch {
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		logger.InfoF("[%s] Client close connection", connID)
	case errors.Is(err, io.EOF):
		logger.InfoF("[%s] Client close connection", connID)
	case os.IsTimeout(err):
		logger.WarnF("[%s] Reading timeout", connID)
	case websocket.IsUnexpectedCloseError(err):
		logger.WarnF("[%s] Connection closed unexpectedly, details: %v", connID, err)
	default:
		logger.ErrorF("[%s] Error occured while reading frame, details: %v", connID, err)
	}
}
