package models

import (
	"strings"
	"time"
)

// Device is a reader unit (ESP32 or test client). Rows are created on
// first registration and never deleted, only deactivated. Connection
// and liveness state are owned by the engine.
type Device struct {
	ID               uint   `gorm:"primaryKey"`
	DeviceID         string `gorm:"uniqueIndex"`
	DeviceType       string
	IPAddress        string
	MACAddress       string
	Capabilities     string `gorm:"type:text"`
	CurrentMode      string
	ClassroomID      *uint  `gorm:"index"`
	State            string `gorm:"index"`
	LastHeartbeat    *time.Time
	PresenceDetected bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const (
	DeviceDisconnected = "disconnected"
	DeviceConnected    = "connected"
	DeviceRegistered   = "registered"
)

// CapabilityList splits the stored comma-separated capability set.
func (d *Device) CapabilityList() []string {
	if d.Capabilities == "" {
		return nil
	}
	return strings.Split(d.Capabilities, ",")
}

// SetCapabilities stores the capability set, dropping empty entries.
func (d *Device) SetCapabilities(caps []string) {
	clean := make([]string, 0, len(caps))
	for _, c := range caps {
		c = strings.TrimSpace(c)
		if c != "" {
			clean = append(clean, c)
		}
	}
	d.Capabilities = strings.Join(clean, ",")
}

// HasCapability reports whether the device declared the capability.
func (d *Device) HasCapability(name string) bool {
	for _, c := range d.CapabilityList() {
		if c == name {
			return true
		}
	}
	return false
}
