package ws

import (
	"time"

	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/engine"
)

type Hubs struct {
	Devices    *DeviceHub
	Monitoring *MonitoringHub
}

func NewHubs(log *zap.Logger) *Hubs {
	return &Hubs{
		Devices:    NewDeviceHub(),
		Monitoring: NewMonitoringHub(log),
	}
}

// Run starts both hub loops.
func (h *Hubs) Run() {
	go h.Devices.Run()
	go h.Monitoring.Run()
}

// BroadcastAttendance forwards a resolved scan to the dashboards.
func (h *Hubs) BroadcastAttendance(result engine.ScanResult) {
	if h == nil || result.Student == nil || result.Record == nil {
		return
	}
	h.Monitoring.Broadcast(AttendanceUpdate{
		Type:        "attendance_update",
		Outcome:     string(result.Outcome),
		StudentID:   result.Student.StudentID,
		StudentName: result.Student.Name,
		SessionID:   result.Record.ClassSessionID,
		Status:      result.Record.Status,
		IsLate:      result.IsLate,
		MinutesLate: result.MinutesLate,
		At:          time.Now().UTC(),
	})
}
