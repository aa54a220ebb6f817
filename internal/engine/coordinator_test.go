package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clirdec/presence/internal/models"
)

func coordinatorEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, Config{
		CooldownWindow:     2 * time.Second,
		StalenessThreshold: 90 * time.Second,
		SweepInterval:      10 * time.Second,
		GracePeriod:        15 * time.Minute,
	})
	env.seedClassroom(t)
	return env
}

func TestScanChecksStudentIn(t *testing.T) {
	env := coordinatorEnv(t)
	ctx := context.Background()

	env.clock.Advance(5 * time.Minute)
	res, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.NoError(t, err)

	assert.Equal(t, OutcomeCheckedIn, res.Outcome)
	require.NotNil(t, res.Student)
	assert.Equal(t, "Juan Dela Cruz", res.Student.Name)
	require.NotNil(t, res.Session)
	assert.Equal(t, models.SessionActive, res.Session.Status)
	assert.False(t, res.IsLate)
	assert.Equal(t, 5, res.MinutesLate)
}

func TestScanTogglesToCheckOut(t *testing.T) {
	env := coordinatorEnv(t)
	ctx := context.Background()

	env.clock.Advance(time.Minute)
	first, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.NoError(t, err)
	require.Equal(t, OutcomeCheckedIn, first.Outcome)

	env.clock.Advance(time.Hour)
	second, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedOut, second.Outcome)
	require.NotNil(t, second.Record.CheckoutTime)
	assert.Equal(t, env.clock.Now(), *second.Record.CheckoutTime)

	// Third tap hits the immutable closed record.
	env.clock.Advance(time.Minute)
	_, err = env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.Error(t, err)
	assert.Equal(t, KindAlreadyCheckedOut, KindOf(err))
}

func TestScanBounceIsSuppressed(t *testing.T) {
	env := coordinatorEnv(t)
	ctx := context.Background()

	env.clock.Advance(time.Minute)
	first, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.NoError(t, err)
	require.Equal(t, OutcomeCheckedIn, first.Outcome)

	// The reader fires again for the same physical tap.
	env.clock.Advance(300 * time.Millisecond)
	second, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, second.Outcome)
	assert.Nil(t, second.Record, "suppressed scans change nothing")

	// The student is still checked in, not toggled out.
	record, err := env.records.ByStudentAndSession(ctx, 1, first.Session.ID)
	require.NoError(t, err)
	assert.Nil(t, record.CheckoutTime)
}

func TestScanFromUnknownDevice(t *testing.T) {
	env := coordinatorEnv(t)

	_, err := env.coord.HandleScan(context.Background(), "ghost", "RFID001")
	require.Error(t, err)
	assert.Equal(t, KindDeviceNotRegistered, KindOf(err))
}

func TestScanFromDisconnectedDevice(t *testing.T) {
	env := coordinatorEnv(t)
	ctx := context.Background()

	env.clock.Advance(120 * time.Second)
	env.coord.liveness.Sweep(ctx)

	_, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.Error(t, err)
	assert.Equal(t, KindDeviceNotRegistered, KindOf(err))

	// A heartbeat restores the device and scans flow again.
	require.NoError(t, env.coord.Heartbeat(ctx, "ESP32-001", Heartbeat{}))
	res, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedIn, res.Outcome)
}

func TestScanWithUnknownTag(t *testing.T) {
	env := coordinatorEnv(t)

	env.clock.Advance(time.Minute)
	_, err := env.coord.HandleScan(context.Background(), "ESP32-001", "RFID999")
	require.Error(t, err)
	assert.Equal(t, KindUnknownTag, KindOf(err))
}

func TestScanOutsideScheduleWindow(t *testing.T) {
	env := coordinatorEnv(t)

	env.clock.Advance(6 * time.Hour)
	_, err := env.coord.HandleScan(context.Background(), "ESP32-001", "RFID001")
	require.Error(t, err)
	assert.Equal(t, KindNoActiveSession, KindOf(err))
}

func TestScanFromUnassignedDevice(t *testing.T) {
	env := coordinatorEnv(t)
	ctx := context.Background()

	_, err := env.coord.Register(ctx, RegisterRequest{
		DeviceID:     "ESP32-002",
		Capabilities: []string{"rfid_scan"},
	})
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	_, err = env.coord.HandleScan(ctx, "ESP32-002", "RFID001")
	require.Error(t, err)
	assert.Equal(t, KindNoActiveSession, KindOf(err))
}

func TestScanLateArrival(t *testing.T) {
	env := coordinatorEnv(t)

	env.clock.Advance(25 * time.Minute)
	res, err := env.coord.HandleScan(context.Background(), "ESP32-001", "RFID001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedIn, res.Outcome)
	assert.True(t, res.IsLate)
	assert.Equal(t, 25, res.MinutesLate)
	assert.Equal(t, models.AttendanceLate, res.Record.Status)
}

func TestScanUsesEngineClockNotDeviceTime(t *testing.T) {
	env := coordinatorEnv(t)
	ctx := context.Background()

	env.clock.Advance(2 * time.Minute)
	res, err := env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now(), *res.Record.CheckinTime)
}

func TestScanFromDeactivatedDevice(t *testing.T) {
	env := coordinatorEnv(t)
	ctx := context.Background()

	device, err := env.devices.ByDeviceID(ctx, "ESP32-001")
	require.NoError(t, err)
	device.Active = false
	device.State = models.DeviceDisconnected
	require.NoError(t, env.devices.Save(ctx, device))

	// Re-registration must not restore scan access either.
	_, err = env.coord.Register(ctx, RegisterRequest{
		DeviceID:     "ESP32-001",
		DeviceType:   "hybrid_scanner",
		Capabilities: []string{"rfid_scan", "presence_detection"},
	})
	require.Error(t, err)
	assert.Equal(t, KindDeviceNotRegistered, KindOf(err))

	_, err = env.coord.HandleScan(ctx, "ESP32-001", "RFID001")
	require.Error(t, err)
	assert.Equal(t, KindDeviceNotRegistered, KindOf(err))
}
