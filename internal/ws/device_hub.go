package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
	maxFrameSize   = 4096
)

// DeviceHub tracks connected reader devices by device id. A device that
// reconnects displaces its previous connection.
type DeviceHub struct {
	register   chan *deviceClient
	unregister chan *deviceClient
	clients    map[string]*deviceClient
}

func NewDeviceHub() *DeviceHub {
	return &DeviceHub{
		register:   make(chan *deviceClient),
		unregister: make(chan *deviceClient),
		clients:    make(map[string]*deviceClient),
	}
}

func (h *DeviceHub) Run() {
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.deviceID]; ok && existing != client {
				existing.conn.Close()
			}
			h.clients[client.deviceID] = client
		case client := <-h.unregister:
			if stored, ok := h.clients[client.deviceID]; ok && stored == client {
				delete(h.clients, client.deviceID)
			}
		}
	}
}

type deviceClient struct {
	hub      *DeviceHub
	conn     *websocket.Conn
	send     chan []byte
	deviceID string
}

func newDeviceClient(hub *DeviceHub, conn *websocket.Conn) *deviceClient {
	return &deviceClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// bind associates the connection with a device id after the first
// registration frame; only bound clients are tracked in the hub.
func (c *deviceClient) bind(deviceID string) {
	if c.deviceID != "" || deviceID == "" {
		return
	}
	c.deviceID = deviceID
	c.hub.register <- c
}

func (c *deviceClient) queue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.conn.Close()
	}
}

func (c *deviceClient) writePump() {
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
