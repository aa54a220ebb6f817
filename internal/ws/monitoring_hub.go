package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AttendanceUpdate is pushed to staff dashboards as scans resolve.
type AttendanceUpdate struct {
	Type        string    `json:"type"`
	Outcome     string    `json:"outcome"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	SessionID   uint      `json:"session_id"`
	Status      string    `json:"status"`
	IsLate      bool      `json:"is_late"`
	MinutesLate int       `json:"minutes_late"`
	At          time.Time `json:"at"`
}

// MonitoringHub fans attendance updates out to connected dashboards.
type MonitoringHub struct {
	register   chan *monitoringClient
	unregister chan *monitoringClient
	broadcast  chan []byte
	clients    map[*monitoringClient]struct{}
	log        *zap.Logger
}

func NewMonitoringHub(log *zap.Logger) *MonitoringHub {
	return &MonitoringHub{
		register:   make(chan *monitoringClient),
		unregister: make(chan *monitoringClient),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*monitoringClient]struct{}),
		log:        log,
	}
}

func (h *MonitoringHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.log.Debug("dashboard connected", zap.String("client_id", client.id), zap.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.conn.Close()
				h.log.Debug("dashboard disconnected", zap.String("client_id", client.id), zap.Int("clients", len(h.clients)))
			}
		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					delete(h.clients, client)
					close(client.send)
					client.conn.Close()
				}
			}
		}
	}
}

// Broadcast pushes an update to every connected dashboard.
func (h *MonitoringHub) Broadcast(update AttendanceUpdate) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(update)
	if err != nil {
		h.log.Error("monitoring broadcast: marshal", zap.Error(err))
		return
	}
	h.broadcast <- payload
}

type monitoringClient struct {
	id   string
	hub  *MonitoringHub
	conn *websocket.Conn
	send chan []byte
}

func newMonitoringClient(hub *MonitoringHub, conn *websocket.Conn) *monitoringClient {
	return &monitoringClient{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *monitoringClient) readPump() {
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

func (c *monitoringClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
