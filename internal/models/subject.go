package models

import "time"

type Subject struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"uniqueIndex"`
	Name        string
	Description string
	Credits     int
	ProfessorID *uint `gorm:"index"`
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
