package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/models"
)

// livenessEvent is the payload published on liveness transitions; the
// external alerting service consumes it.
type livenessEvent struct {
	DeviceID    string `json:"device_id"`
	ClassroomID *uint  `json:"classroom_id,omitempty"`
	Online      bool   `json:"online"`
	At          string `json:"at"`
}

// RedisNotifier publishes liveness transitions on a Redis channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisNotifier(addr, password string, db int, channel string, log *zap.Logger) *RedisNotifier {
	if channel == "" {
		channel = "presence:liveness"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisNotifier{client: client, channel: channel, log: log}
}

func (n *RedisNotifier) LivenessChanged(ctx context.Context, device *models.Device, online bool) {
	event := livenessEvent{
		DeviceID:    device.DeviceID,
		ClassroomID: device.ClassroomID,
		Online:      online,
		At:          time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Error("liveness notify: marshal", zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.log.Error("liveness notify: publish",
			zap.String("device_id", device.DeviceID),
			zap.Error(err),
		)
	}
}

// Close releases the Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// LogNotifier is the fallback when no Redis address is configured; it
// only records the transition in the service log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) LivenessChanged(_ context.Context, device *models.Device, online bool) {
	n.log.Info("device liveness changed",
		zap.String("device_id", device.DeviceID),
		zap.Bool("online", online),
	)
}
