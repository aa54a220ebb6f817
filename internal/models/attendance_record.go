package models

import "time"

// AttendanceRecord is the per-(student, session) check-in/check-out
// record. At most one row exists per pair; a row with CheckoutTime set
// is immutable.
type AttendanceRecord struct {
	ID             uint `gorm:"primaryKey"`
	StudentID      uint `gorm:"index:idx_attendance_student_session,unique"`
	ClassSessionID uint `gorm:"index:idx_attendance_student_session,unique"`
	CheckinTime    *time.Time
	CheckoutTime   *time.Time
	Status         string `gorm:"index"`
	IsLate         bool
	MinutesLate    int
	DeviceID       *uint `gorm:"index"`
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)
