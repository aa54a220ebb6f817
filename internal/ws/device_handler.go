package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Devices connect from the classroom LAN; registration is the
		// gate, not the origin header.
		return true
	},
}

const handleTimeout = 5 * time.Second

// DeviceHandler upgrades /iot connections and dispatches the device
// message contract onto the coordinator.
func DeviceHandler(hub *DeviceHub, coord *engine.Coordinator, hubs *Hubs, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newDeviceClient(hub, conn)
		go client.writePump()

		client.reply(welcomeMessage{Type: TypeWelcome, Message: "connected to presence server"})
		client.readPump(coord, hubs, log)
	}
}

func (c *deviceClient) readPump(coord *engine.Coordinator, hubs *Hubs, log *zap.Logger) {
	defer func() {
		if c.deviceID != "" {
			c.hub.unregister <- c
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			// Connection loss is not an error; the staleness sweep
			// handles the device's liveness state.
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleFrame(raw, coord, hubs, log)
	}
}

func (c *deviceClient) handleFrame(raw []byte, coord *engine.Coordinator, hubs *Hubs, log *zap.Logger) {
	var frame deviceFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.reply(errorMessage{Type: TypeError, Message: "invalid message"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	switch frame.Type {
	case TypeDeviceRegister:
		result, err := coord.Register(ctx, engine.RegisterRequest{
			DeviceID:     frame.DeviceID,
			DeviceType:   frame.DeviceType,
			IPAddress:    frame.IPAddress,
			MACAddress:   frame.MACAddress,
			Capabilities: frame.Capabilities,
			CurrentMode:  frame.CurrentMode,
		})
		if err != nil {
			c.reply(errorMessage{Type: TypeError, Message: engine.DeviceMessage(err)})
			return
		}
		c.bind(frame.DeviceID)
		success := registrationSuccess{Type: TypeRegistrationSuccess}
		if result.Classroom != nil {
			success.ClassroomName = result.Classroom.Name
		}
		c.reply(success)

	case TypeHeartbeat:
		// Fire and forget: no reply, device retries are a pure
		// timestamp update.
		mode := frame.Mode
		if mode == "" {
			mode = frame.CurrentMode
		}
		if err := coord.Heartbeat(ctx, frame.DeviceID, engine.Heartbeat{
			Mode:             mode,
			PresenceDetected: frame.PresenceDetected,
		}); err != nil && !engine.IsKind(err, engine.KindDeviceNotRegistered) {
			log.Warn("heartbeat failed", zap.String("device_id", frame.DeviceID), zap.Error(err))
		}

	case TypePresenceDetected:
		// Presence updates ride the heartbeat path; they refresh
		// liveness and the presence flag, nothing else.
		_ = coord.Heartbeat(ctx, frame.DeviceID, engine.Heartbeat{
			PresenceDetected: frame.PresenceDetected,
		})

	case TypeRFIDScan:
		result, err := coord.HandleScan(ctx, frame.DeviceID, frame.RFIDCardID)
		if err != nil {
			c.reply(scanResult{Type: TypeScanResult, Status: "error", Message: engine.DeviceMessage(err)})
			return
		}
		if result.Outcome == engine.OutcomeSuppressed {
			// Duplicate interrupt from one physical tap; no reply.
			return
		}
		c.reply(scanResult{
			Type:        TypeScanResult,
			Status:      string(result.Outcome),
			StudentName: result.Student.Name,
			IsLate:      result.IsLate,
			MinutesLate: result.MinutesLate,
		})
		hubs.BroadcastAttendance(result)

	default:
		c.reply(errorMessage{Type: TypeError, Message: "unknown message type: " + frame.Type})
	}
}

func (c *deviceClient) reply(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.queue(payload)
}
