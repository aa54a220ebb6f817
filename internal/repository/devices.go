package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/models"
)

// Devices implements engine.DeviceStore on GORM.
type Devices struct {
	db *gorm.DB
}

func NewDevices(db *gorm.DB) *Devices {
	return &Devices{db: db}
}

func (r *Devices) ByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *Devices) ListByState(ctx context.Context, state string) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).Where("state = ? AND active = ?", state, true).Find(&devices).Error
	return devices, err
}

func (r *Devices) Save(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}
