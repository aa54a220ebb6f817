package models

import "time"

// ClassSession is a concrete dated occurrence of a Schedule. One session
// per (schedule, date); created lazily by the resolver on the first scan
// or explicitly via the admin API.
type ClassSession struct {
	ID              uint      `gorm:"primaryKey"`
	ScheduleID      uint      `gorm:"index:idx_session_schedule_date,unique"`
	Date            time.Time `gorm:"type:date;index:idx_session_schedule_date,unique"`
	ActualStartTime *time.Time
	ActualEndTime   *time.Time
	Status          string `gorm:"index"`
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const (
	SessionScheduled = "scheduled"
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)
