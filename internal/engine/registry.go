package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/models"
)

// RegisterRequest carries the fields of a device_register message.
type RegisterRequest struct {
	DeviceID     string
	DeviceType   string
	IPAddress    string
	MACAddress   string
	Capabilities []string
	CurrentMode  string
}

// RegistrationResult reports the registered device and its classroom
// assignment, if provisioned.
type RegistrationResult struct {
	Device    *models.Device
	Classroom *models.Classroom
}

// Registry tracks known reader devices and their classroom assignment.
type Registry struct {
	devices    DeviceStore
	classrooms ClassroomStore
	clock      Clock
	locks      *keyMutex
	log        *zap.Logger
}

func NewRegistry(devices DeviceStore, classrooms ClassroomStore, clock Clock, locks *keyMutex, log *zap.Logger) *Registry {
	return &Registry{
		devices:    devices,
		classrooms: classrooms,
		clock:      clock,
		locks:      locks,
		log:        log,
	}
}

// Register creates or updates the device row, moves it to Registered and
// stamps the heartbeat. Registration is idempotent; devices re-register
// on every reconnect.
func (r *Registry) Register(ctx context.Context, req RegisterRequest) (RegistrationResult, error) {
	if req.DeviceID == "" {
		return RegistrationResult{}, newError(KindUnknownDeviceType, "device id required")
	}
	if len(req.Capabilities) == 0 {
		return RegistrationResult{}, newError(KindUnknownDeviceType, "device %s declared no capabilities", req.DeviceID)
	}

	mu := r.locks.Lock(deviceKey(req.DeviceID))
	defer mu.Unlock()

	device, err := r.devices.ByDeviceID(ctx, req.DeviceID)
	if err != nil {
		return RegistrationResult{}, storageError(err)
	}
	if device == nil {
		device = &models.Device{DeviceID: req.DeviceID, Active: true}
	}
	if !device.Active {
		// Deactivation is an administrative decision; a reconnect
		// must not undo it.
		return RegistrationResult{}, newError(KindDeviceNotRegistered, "device %s is deactivated", req.DeviceID)
	}

	device.DeviceType = req.DeviceType
	device.IPAddress = req.IPAddress
	device.MACAddress = req.MACAddress
	device.CurrentMode = req.CurrentMode
	device.SetCapabilities(req.Capabilities)
	if device.Capabilities == "" {
		return RegistrationResult{}, newError(KindUnknownDeviceType, "device %s declared no capabilities", req.DeviceID)
	}
	device.State = models.DeviceRegistered
	now := r.clock.Now()
	device.LastHeartbeat = &now

	if err := r.devices.Save(ctx, device); err != nil {
		return RegistrationResult{}, storageError(err)
	}

	result := RegistrationResult{Device: device}
	if device.ClassroomID != nil {
		classroom, err := r.classrooms.ByID(ctx, *device.ClassroomID)
		if err != nil {
			return RegistrationResult{}, storageError(err)
		}
		result.Classroom = classroom
	}

	r.log.Info("device registered",
		zap.String("device_id", device.DeviceID),
		zap.String("device_type", device.DeviceType),
		zap.Strings("capabilities", device.CapabilityList()),
	)
	return result, nil
}

// Lookup returns the device or a DeviceNotRegistered error.
func (r *Registry) Lookup(ctx context.Context, deviceID string) (*models.Device, error) {
	device, err := r.devices.ByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, storageError(err)
	}
	if device == nil {
		return nil, newError(KindDeviceNotRegistered, "device %s is not registered", deviceID)
	}
	return device, nil
}

// AssignClassroom binds a device to a classroom. Idempotent; repeated
// assignment to the same classroom is a no-op.
func (r *Registry) AssignClassroom(ctx context.Context, deviceID string, classroomID uint) error {
	classroom, err := r.classrooms.ByID(ctx, classroomID)
	if err != nil {
		return storageError(err)
	}
	if classroom == nil {
		return fmt.Errorf("classroom %d not found", classroomID)
	}

	mu := r.locks.Lock(deviceKey(deviceID))
	defer mu.Unlock()

	device, err := r.devices.ByDeviceID(ctx, deviceID)
	if err != nil {
		return storageError(err)
	}
	if device == nil {
		return newError(KindDeviceNotRegistered, "device %s is not registered", deviceID)
	}
	if device.ClassroomID != nil && *device.ClassroomID == classroomID {
		return nil
	}
	device.ClassroomID = &classroomID
	if err := r.devices.Save(ctx, device); err != nil {
		return storageError(err)
	}
	r.log.Info("device assigned to classroom",
		zap.String("device_id", deviceID),
		zap.Uint("classroom_id", classroomID),
	)
	return nil
}

func deviceKey(deviceID string) string {
	return "device:" + deviceID
}
