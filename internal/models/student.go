package models

import "time"

// Student is managed by the admin API and read-only to the engine.
// RFIDCardID is the tag credential presented at a reader.
type Student struct {
	ID          uint   `gorm:"primaryKey"`
	StudentID   string `gorm:"uniqueIndex"`
	Name        string
	Email       string `gorm:"index"`
	Phone       string
	ParentEmail string
	ParentPhone string
	RFIDCardID  string `gorm:"column:rfid_card_id;uniqueIndex"`
	Program     string
	YearLevel   int
	Section     string `gorm:"index"`
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
