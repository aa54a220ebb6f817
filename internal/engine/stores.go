package engine

import (
	"context"
	"time"

	"github.com/clirdec/presence/internal/models"
)

// The engine reads and mutates persistent state only through these
// narrow interfaces. Lookups return (nil, nil) when no row exists; any
// non-nil error is a storage failure.

type DeviceStore interface {
	ByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
	ListByState(ctx context.Context, state string) ([]models.Device, error)
	Save(ctx context.Context, device *models.Device) error
}

type StudentStore interface {
	ByCardID(ctx context.Context, cardID string) (*models.Student, error)
}

type ClassroomStore interface {
	ByID(ctx context.Context, id uint) (*models.Classroom, error)
}

type ScheduleStore interface {
	ByID(ctx context.Context, id uint) (*models.Schedule, error)
	ActiveByClassroom(ctx context.Context, classroomID uint) ([]models.Schedule, error)
}

type SessionStore interface {
	ByID(ctx context.Context, id uint) (*models.ClassSession, error)
	ByScheduleAndDate(ctx context.Context, scheduleID uint, date time.Time) (*models.ClassSession, error)
	Save(ctx context.Context, session *models.ClassSession) error
}

type AttendanceStore interface {
	ByStudentAndSession(ctx context.Context, studentID, sessionID uint) (*models.AttendanceRecord, error)
	Save(ctx context.Context, record *models.AttendanceRecord) error
}

// Stores bundles every store the coordinator needs.
type Stores struct {
	Devices    DeviceStore
	Students   StudentStore
	Classrooms ClassroomStore
	Schedules  ScheduleStore
	Sessions   SessionStore
	Records    AttendanceStore
}

// Notifier receives liveness transitions for operator alerting. Calls
// must not block scan handling; implementations own their delivery.
type Notifier interface {
	LivenessChanged(ctx context.Context, device *models.Device, online bool)
}
