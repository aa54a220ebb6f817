package models

import "time"

type Classroom struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex"`
	Location    string
	Capacity    int
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
