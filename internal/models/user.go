package models

import (
	"time"
)

// User is an administrative account (admin or faculty). Reader devices do
// not authenticate as users; they register over the IoT socket instead.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex"`
	Name      string
	Password  string
	Role      string `gorm:"index"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
)
