package models

import (
	"fmt"
	"time"
)

// Schedule is a recurring weekly class slot. DayOfWeek follows the
// 0=Monday .. 6=Sunday convention; StartTime/EndTime are "HH:MM"
// times of day within that weekday.
type Schedule struct {
	ID           uint `gorm:"primaryKey"`
	SubjectID    uint `gorm:"index"`
	ClassroomID  uint `gorm:"index"`
	DayOfWeek    int  `gorm:"index"`
	StartTime    string `gorm:"size:5"`
	EndTime      string `gorm:"size:5"`
	Section      string `gorm:"index"`
	Semester     string
	AcademicYear string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StartMinutes returns StartTime as minutes since midnight.
func (s *Schedule) StartMinutes() (int, error) {
	return parseTimeOfDay(s.StartTime)
}

// EndMinutes returns EndTime as minutes since midnight.
func (s *Schedule) EndMinutes() (int, error) {
	return parseTimeOfDay(s.EndTime)
}

// StartOn anchors the schedule's start time-of-day onto a concrete date,
// in that date's location.
func (s *Schedule) StartOn(date time.Time) (time.Time, error) {
	mins, err := s.StartMinutes()
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, mins/60, mins%60, 0, 0, date.Location()), nil
}

// EndOn anchors the schedule's end time-of-day onto a concrete date.
func (s *Schedule) EndOn(date time.Time) (time.Time, error) {
	mins, err := s.EndMinutes()
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, mins/60, mins%60, 0, 0, date.Location()), nil
}

// Weekday converts time.Weekday (0=Sunday) to the schedule convention
// (0=Monday).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func parseTimeOfDay(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return h*60 + m, nil
}

// ValidTimeOfDay reports whether s parses as "HH:MM".
func ValidTimeOfDay(s string) bool {
	_, err := parseTimeOfDay(s)
	return err == nil
}
