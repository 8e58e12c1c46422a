package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zaqqye/seb_proctor/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// ExamEvent is pushed to supervisors after every applied mutation.
type ExamEvent struct {
	Type     string              `json:"type"`
	UserID   models.UserID       `json:"user_id"`
	Outcome  string              `json:"outcome"`
	Metadata models.ExamMetadata `json:"metadata"`
	At       time.Time           `json:"at"`
}

// MonitoringHub fans exam events out to connected supervisor dashboards.
type MonitoringHub struct {
	register   chan *monitoringClient
	unregister chan *monitoringClient
	broadcast  chan []byte
	clients    map[*monitoringClient]struct{}
	log        *zap.Logger
}

func NewMonitoringHub() *MonitoringHub {
	return &MonitoringHub{
		register:   make(chan *monitoringClient),
		unregister: make(chan *monitoringClient),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*monitoringClient]struct{}),
		log:        zap.NewNop(),
	}
}

// WithLogger replaces the hub logger. Call before Run.
func (h *MonitoringHub) WithLogger(log *zap.Logger) *MonitoringHub {
	if log != nil {
		h.log = log
	}
	return h
}

func (h *MonitoringHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.conn.Close()
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					h.log.Warn("monitoring client too slow, dropping")
					delete(h.clients, client)
					close(client.send)
					client.conn.Close()
				}
			}
		}
	}
}

// Broadcast pushes an event to every connected supervisor.
func (h *MonitoringHub) Broadcast(event ExamEvent) {
	if h == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws: failed to marshal exam event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("ws: monitoring broadcast queue full, event dropped", zap.Stringer("user", event.UserID))
	}
}

type monitoringClient struct {
	hub  *MonitoringHub
	conn *websocket.Conn
	send chan []byte
}

func newMonitoringClient(hub *MonitoringHub, conn *websocket.Conn) *monitoringClient {
	return &monitoringClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *monitoringClient) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *monitoringClient) writePump() {
	writePump(c.conn, c.send)
}

// writePump drains send into conn and keeps the connection alive with pings.
func writePump(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
