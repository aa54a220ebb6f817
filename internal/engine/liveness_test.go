package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clirdec/presence/internal/models"
)

func livenessEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, Config{StalenessThreshold: 90 * time.Second, SweepInterval: 10 * time.Second})
	_, err := env.coord.Register(context.Background(), RegisterRequest{
		DeviceID:     "ESP32-001",
		DeviceType:   "hybrid_scanner",
		Capabilities: []string{"rfid_scan"},
	})
	require.NoError(t, err)
	return env
}

func TestHeartbeatUpdatesTimestamp(t *testing.T) {
	env := livenessEnv(t)
	ctx := context.Background()

	env.clock.Advance(30 * time.Second)
	presence := true
	require.NoError(t, env.coord.Heartbeat(ctx, "ESP32-001", Heartbeat{
		Mode:             "attendance",
		PresenceDetected: &presence,
	}))

	device, err := env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now(), *device.LastHeartbeat)
	assert.Equal(t, "attendance", device.CurrentMode)
	assert.True(t, device.PresenceDetected)
}

func TestHeartbeatFromUnregisteredDevice(t *testing.T) {
	env := newTestEnv(t, Config{})

	err := env.coord.Heartbeat(context.Background(), "ghost", Heartbeat{})
	require.Error(t, err)
	assert.Equal(t, KindDeviceNotRegistered, KindOf(err))
}

func TestSweepMarksStaleDeviceOffline(t *testing.T) {
	env := livenessEnv(t)
	ctx := context.Background()

	// Just inside the threshold: still online.
	env.clock.Advance(90 * time.Second)
	env.coord.liveness.Sweep(ctx)
	device, err := env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceRegistered, device.State)
	assert.Empty(t, env.notifier.Calls())

	// 95s without a heartbeat: offline, one notification.
	env.clock.Advance(5 * time.Second)
	env.coord.liveness.Sweep(ctx)
	device, err = env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceDisconnected, device.State)

	calls := env.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ESP32-001", calls[0].deviceID)
	assert.False(t, calls[0].online)
}

func TestSweepNotifiesOncePerTransition(t *testing.T) {
	env := livenessEnv(t)
	ctx := context.Background()

	env.clock.Advance(120 * time.Second)
	env.coord.liveness.Sweep(ctx)
	env.coord.liveness.Sweep(ctx)
	env.coord.liveness.Sweep(ctx)

	assert.Len(t, env.notifier.Calls(), 1, "a disconnected device is not re-flagged")
}

func TestHeartbeatRestoresDisconnectedDevice(t *testing.T) {
	env := livenessEnv(t)
	ctx := context.Background()

	env.clock.Advance(120 * time.Second)
	env.coord.liveness.Sweep(ctx)

	require.NoError(t, env.coord.Heartbeat(ctx, "ESP32-001", Heartbeat{}))
	device, err := env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceRegistered, device.State)

	calls := env.notifier.Calls()
	require.Len(t, calls, 2)
	assert.False(t, calls[0].online)
	assert.True(t, calls[1].online)
}

func TestSweepIgnoresDeviceWithRecentHeartbeat(t *testing.T) {
	env := livenessEnv(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		env.clock.Advance(30 * time.Second)
		require.NoError(t, env.coord.Heartbeat(ctx, "ESP32-001", Heartbeat{}))
		env.coord.liveness.Sweep(ctx)
	}

	device, err := env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceRegistered, device.State)
	assert.Empty(t, env.notifier.Calls())
}

func TestHeartbeatFromDeactivatedDevice(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.coord.Register(ctx, RegisterRequest{
		DeviceID:     "ESP32-001",
		Capabilities: []string{"rfid_scan"},
	})
	require.NoError(t, err)

	device, err := env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	device.Active = false
	device.State = models.DeviceDisconnected
	require.NoError(t, env.devices.Save(ctx, device))

	err = env.coord.Heartbeat(ctx, "ESP32-001", Heartbeat{Mode: "rfid"})
	require.Error(t, err)
	assert.Equal(t, KindDeviceNotRegistered, KindOf(err))

	device, err = env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceDisconnected, device.State, "heartbeat must not restore a deactivated device")
}
