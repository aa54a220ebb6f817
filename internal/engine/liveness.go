package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/metrics"
	"github.com/clirdec/presence/internal/models"
)

// Heartbeat carries the metadata of a heartbeat message.
type Heartbeat struct {
	Mode             string
	PresenceDetected *bool
}

// Monitor consumes heartbeats and sweeps registered devices for
// staleness. A device whose last heartbeat is older than the threshold
// transitions to Disconnected until it heartbeats or re-registers.
type Monitor struct {
	devices   DeviceStore
	notifier  Notifier
	clock     Clock
	locks     *keyMutex
	threshold time.Duration
	interval  time.Duration
	log       *zap.Logger
}

func NewMonitor(devices DeviceStore, notifier Notifier, clock Clock, locks *keyMutex, threshold, interval time.Duration, log *zap.Logger) *Monitor {
	if threshold <= 0 {
		threshold = 90 * time.Second
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		devices:   devices,
		notifier:  notifier,
		clock:     clock,
		locks:     locks,
		threshold: threshold,
		interval:  interval,
		log:       log,
	}
}

// RecordHeartbeat stamps the device's last heartbeat. A Disconnected
// device is restored to Registered. Retried heartbeats are a pure
// timestamp update, so retries are harmless.
func (m *Monitor) RecordHeartbeat(ctx context.Context, deviceID string, hb Heartbeat) error {
	mu := m.locks.Lock(deviceKey(deviceID))
	restored := false
	var device *models.Device

	err := func() error {
		defer mu.Unlock()

		var err error
		device, err = m.devices.ByDeviceID(ctx, deviceID)
		if err != nil {
			return storageError(err)
		}
		if device == nil {
			return newError(KindDeviceNotRegistered, "heartbeat from unregistered device %s", deviceID)
		}
		if !device.Active {
			return newError(KindDeviceNotRegistered, "heartbeat from deactivated device %s", deviceID)
		}

		now := m.clock.Now()
		device.LastHeartbeat = &now
		if hb.Mode != "" {
			device.CurrentMode = hb.Mode
		}
		if hb.PresenceDetected != nil {
			device.PresenceDetected = *hb.PresenceDetected
		}
		if device.State == models.DeviceDisconnected {
			device.State = models.DeviceRegistered
			restored = true
		}
		return m.devices.Save(ctx, device)
	}()
	if err != nil {
		if _, ok := err.(*Error); ok {
			return err
		}
		return storageError(err)
	}

	if restored {
		m.log.Info("device back online", zap.String("device_id", deviceID))
		m.notifier.LivenessChanged(ctx, device, true)
	}
	return nil
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep marks stale registered devices Disconnected. Devices are
// evaluated one at a time under their own key lock; no lock is held
// across the full sweep.
func (m *Monitor) Sweep(ctx context.Context) {
	devices, err := m.devices.ListByState(ctx, models.DeviceRegistered)
	if err != nil {
		m.log.Error("liveness sweep: list devices", zap.Error(err))
		return
	}

	for i := range devices {
		id := devices[i].DeviceID
		stale, device := m.markIfStale(ctx, id)
		if stale {
			metrics.DevicesOffline.Inc()
			m.log.Warn("device went offline",
				zap.String("device_id", id),
				zap.Duration("threshold", m.threshold),
			)
			m.notifier.LivenessChanged(ctx, device, false)
		}
	}
}

func (m *Monitor) markIfStale(ctx context.Context, deviceID string) (bool, *models.Device) {
	mu := m.locks.Lock(deviceKey(deviceID))
	defer mu.Unlock()

	device, err := m.devices.ByDeviceID(ctx, deviceID)
	if err != nil {
		m.log.Error("liveness sweep: load device", zap.String("device_id", deviceID), zap.Error(err))
		return false, nil
	}
	if device == nil || device.State != models.DeviceRegistered {
		return false, nil
	}
	if device.LastHeartbeat != nil && m.clock.Now().Sub(*device.LastHeartbeat) <= m.threshold {
		return false, nil
	}

	device.State = models.DeviceDisconnected
	if err := m.devices.Save(ctx, device); err != nil {
		m.log.Error("liveness sweep: save device", zap.String("device_id", deviceID), zap.Error(err))
		return false, nil
	}
	return true, device
}
