package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zaqqye/seb_proctor/internal/models"
)

const (
	StudentStatusUpdate = "status_update"
	StudentKicked       = "kicked"
)

// StudentMessage is sent to the monitored client about its own record.
type StudentMessage struct {
	Type       string                         `json:"type"`
	Kicked     bool                           `json:"kicked"`
	StartTime  *uint64                        `json:"start_time,omitempty"`
	EndTime    *uint64                        `json:"end_time,omitempty"`
	Violations [models.ViolationSlots]*uint64 `json:"violations"`
	Message    string                         `json:"message,omitempty"`
}

type studentNotification struct {
	studentID models.UserID
	payload   []byte
}

type StudentHub struct {
	register   chan *studentClient
	unregister chan *studentClient
	notify     chan studentNotification
	clients    map[models.UserID]*studentClient
}

func NewStudentHub() *StudentHub {
	return &StudentHub{
		register:   make(chan *studentClient),
		unregister: make(chan *studentClient),
		notify:     make(chan studentNotification, 256),
		clients:    make(map[models.UserID]*studentClient),
	}
}

func (h *StudentHub) Run() {
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.userID]; ok {
				existing.conn.Close()
			}
			h.clients[client.userID] = client
		case client := <-h.unregister:
			if stored, ok := h.clients[client.userID]; ok && stored == client {
				delete(h.clients, client.userID)
			}
		case msg := <-h.notify:
			if client, ok := h.clients[msg.studentID]; ok {
				select {
				case client.send <- msg.payload:
				default:
					client.conn.Close()
					delete(h.clients, msg.studentID)
				}
			}
		}
	}
}

func (h *StudentHub) Notify(studentID models.UserID, message StudentMessage) {
	if h == nil {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case h.notify <- studentNotification{studentID: studentID, payload: data}:
	default:
	}
}

type studentClient struct {
	hub    *StudentHub
	conn   *websocket.Conn
	send   chan []byte
	userID models.UserID
}

func newStudentClient(hub *StudentHub, conn *websocket.Conn, userID models.UserID) *studentClient {
	return &studentClient{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
	}
}

func (c *studentClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
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

func (c *studentClient) writePump() {
	writePump(c.conn, c.send)
}
