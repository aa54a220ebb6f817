package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/metrics"
	"github.com/clirdec/presence/internal/models"
)

// Config carries the engine tunables.
type Config struct {
	CooldownWindow     time.Duration
	StalenessThreshold time.Duration
	SweepInterval      time.Duration
	GracePeriod        time.Duration
}

// Outcome of a handled scan.
type Outcome string

const (
	OutcomeCheckedIn  Outcome = "checked_in"
	OutcomeCheckedOut Outcome = "checked_out"
	OutcomeSuppressed Outcome = "suppressed"
)

// ScanResult is returned to the device transport for a handled scan.
// Suppressed scans carry only the outcome.
type ScanResult struct {
	Outcome     Outcome
	Student     *models.Student
	Session     *models.ClassSession
	Record      *models.AttendanceRecord
	IsLate      bool
	MinutesLate int
}

// Coordinator is the engine's single public entry point. It owns the
// wiring between registry, liveness, deduplication and the attendance
// state machine, and applies the tap toggle policy.
type Coordinator struct {
	registry   *Registry
	liveness   *Monitor
	dedup      *Deduplicator
	attendance *StateMachine
	resolver   *Resolver
	clock      Clock
	log        *zap.Logger
}

func New(stores Stores, notifier Notifier, cfg Config, clock Clock, log *zap.Logger) *Coordinator {
	if clock == nil {
		clock = SystemClock()
	}
	locks := newKeyMutex()
	resolver := NewResolver(stores.Schedules, stores.Sessions, locks, log)
	return &Coordinator{
		registry:   NewRegistry(stores.Devices, stores.Classrooms, clock, locks, log),
		liveness:   NewMonitor(stores.Devices, notifier, clock, locks, cfg.StalenessThreshold, cfg.SweepInterval, log),
		dedup:      NewDeduplicator(cfg.CooldownWindow, clock),
		attendance: NewStateMachine(stores, resolver, cfg.GracePeriod, locks, log),
		resolver:   resolver,
		clock:      clock,
		log:        log,
	}
}

// Start launches the liveness sweep until ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) {
	go c.liveness.Run(ctx)
}

// Register handles a device_register message.
func (c *Coordinator) Register(ctx context.Context, req RegisterRequest) (RegistrationResult, error) {
	return c.registry.Register(ctx, req)
}

// Heartbeat handles a heartbeat message.
func (c *Coordinator) Heartbeat(ctx context.Context, deviceID string, hb Heartbeat) error {
	if err := c.liveness.RecordHeartbeat(ctx, deviceID, hb); err != nil {
		return err
	}
	metrics.HeartbeatsTotal.Inc()
	return nil
}

// AssignClassroom is the administrative classroom binding operation.
func (c *Coordinator) AssignClassroom(ctx context.Context, deviceID string, classroomID uint) error {
	return c.registry.AssignClassroom(ctx, deviceID, classroomID)
}

// LookupDevice returns the device or a DeviceNotRegistered error.
func (c *Coordinator) LookupDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	return c.registry.Lookup(ctx, deviceID)
}

// HandleScan processes an rfid_scan from a device. The scan time is
// taken from the engine clock, not the device's tick counter. Toggle
// policy: a student already checked in is checked out; otherwise the
// scan is a check-in. Failures are returned, never retried here.
func (c *Coordinator) HandleScan(ctx context.Context, deviceID, tagUID string) (ScanResult, error) {
	device, err := c.registry.Lookup(ctx, deviceID)
	if err != nil {
		return c.scanError(err, deviceID, tagUID)
	}
	if !device.Active {
		err := newError(KindDeviceNotRegistered, "device %s is deactivated", deviceID)
		return c.scanError(err, deviceID, tagUID)
	}
	if device.State != models.DeviceRegistered {
		err := newError(KindDeviceNotRegistered, "device %s is %s", deviceID, device.State)
		return c.scanError(err, deviceID, tagUID)
	}

	if !c.dedup.Accept(deviceID, tagUID) {
		metrics.ScansSuppressed.Inc()
		c.log.Debug("scan suppressed",
			zap.String("device_id", deviceID),
			zap.String("tag_uid", tagUID),
		)
		return ScanResult{Outcome: OutcomeSuppressed}, nil
	}

	req := TapRequest{
		TagUID:      tagUID,
		ClassroomID: device.ClassroomID,
		DeviceRef:   &device.ID,
		At:          c.clock.Now(),
	}

	outcome := OutcomeCheckedIn
	res, err := c.attendance.CheckIn(ctx, req)
	if IsKind(err, KindAlreadyCheckedIn) {
		outcome = OutcomeCheckedOut
		res, err = c.attendance.CheckOut(ctx, req)
	}
	if err != nil {
		return c.scanError(err, deviceID, tagUID)
	}

	metrics.ScansAccepted.Inc()
	return ScanResult{
		Outcome:     outcome,
		Student:     res.Student,
		Session:     res.Session,
		Record:      res.Record,
		IsLate:      res.Record.IsLate,
		MinutesLate: res.Record.MinutesLate,
	}, nil
}

func (c *Coordinator) scanError(err error, deviceID, tagUID string) (ScanResult, error) {
	kind := KindOf(err)
	if kind == "" {
		kind = KindPersistenceFailure
	}
	metrics.ScanErrors.WithLabelValues(string(kind)).Inc()
	c.log.Warn("scan rejected",
		zap.String("device_id", deviceID),
		zap.String("tag_uid", tagUID),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return ScanResult{}, err
}
