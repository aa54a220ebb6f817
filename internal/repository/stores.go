package repository

import (
	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/engine"
)

// NewStores wires every engine store onto one GORM handle.
func NewStores(db *gorm.DB) engine.Stores {
	return engine.Stores{
		Devices:    NewDevices(db),
		Students:   NewStudents(db),
		Classrooms: NewClassrooms(db),
		Schedules:  NewSchedules(db),
		Sessions:   NewSessions(db),
		Records:    NewRecords(db),
	}
}
