package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Connection wraps one WebSocket client. The first message must be a
// hello; after that every inbound message is dispatched through the
// handler under the client's user ID.
type Connection struct {
	conn    *websocket.Conn
	send    chan *Message
	handler *Handler
	logger  *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu     sync.RWMutex
	userID string
}

// NewConnection wraps an upgraded WebSocket connection.
func NewConnection(conn *websocket.Conn, handler *Handler, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 16),
		handler: handler,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the connection down once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// UserID returns the identity set by the hello exchange.
func (c *Connection) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Connection) setUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

func (c *Connection) enqueue(msg *Message) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("send buffer full, dropping connection")
		_ = c.Close()
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", "err", err)
			}
			return
		}

		reply, err := c.route(&msg)
		if err != nil {
			c.logger.Error("message handling failed", "type", msg.Type, "err", err)
			return
		}
		if reply != nil {
			c.enqueue(reply)
		}
	}
}

func (c *Connection) route(msg *Message) (*Message, error) {
	if msg.Type == TypeHello {
		var data HelloData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return nil, err
			}
		}
		userID, reply, err := c.handler.Hello(c.ctx, data)
		if err != nil {
			return nil, err
		}
		c.setUserID(userID)
		return reply, nil
	}

	userID := c.UserID()
	if userID == "" {
		return NewMessage(TypeError, ErrorData{
			Code:    "not_identified",
			Message: "send hello first",
		})
	}
	return c.handler.Handle(c.ctx, userID, msg)
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
