package database

import (
	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/config"
	"github.com/clirdec/presence/internal/models"
	"github.com/clirdec/presence/internal/utils"
)

// SeedAdmin ensures at least one admin account exists.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: hashed,
		Role:     models.RoleAdmin,
		Active:   true,
	}
	return db.Create(&admin).Error
}

// SeedDemo loads a small demo data set for development: a faculty
// account, two rooms, two subjects with weekday schedules, and three
// students carrying known RFID cards. Idempotent; it skips entirely when
// any student already exists.
func SeedDemo(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.Student{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword("faculty123")
	if err != nil {
		return err
	}
	faculty := models.User{
		Name:     "Prof. Maria Santos",
		Email:    "faculty@example.com",
		Password: hashed,
		Role:     models.RoleFaculty,
		Active:   true,
	}
	if err := db.Create(&faculty).Error; err != nil {
		return err
	}

	lab := models.Classroom{Name: "Lab 204", Location: "Engineering Building, 2nd Floor", Capacity: 40, Active: true}
	room := models.Classroom{Name: "Room 301", Location: "Main Building, 3rd Floor", Capacity: 50, Active: true}
	if err := db.Create(&lab).Error; err != nil {
		return err
	}
	if err := db.Create(&room).Error; err != nil {
		return err
	}

	cs101 := models.Subject{Code: "CS101", Name: "Introduction to Computing", Credits: 3, ProfessorID: &faculty.ID, Active: true}
	cs201 := models.Subject{Code: "CS201", Name: "Data Structures and Algorithms", Credits: 3, ProfessorID: &faculty.ID, Active: true}
	if err := db.Create(&cs101).Error; err != nil {
		return err
	}
	if err := db.Create(&cs201).Error; err != nil {
		return err
	}

	schedules := []models.Schedule{
		{SubjectID: cs101.ID, ClassroomID: lab.ID, DayOfWeek: 0, StartTime: "08:00", EndTime: "10:00", Section: "A", Semester: "1st", AcademicYear: "2025-2026", Active: true},
		{SubjectID: cs101.ID, ClassroomID: lab.ID, DayOfWeek: 2, StartTime: "08:00", EndTime: "10:00", Section: "A", Semester: "1st", AcademicYear: "2025-2026", Active: true},
		{SubjectID: cs201.ID, ClassroomID: room.ID, DayOfWeek: 1, StartTime: "13:00", EndTime: "15:00", Section: "B", Semester: "1st", AcademicYear: "2025-2026", Active: true},
		{SubjectID: cs201.ID, ClassroomID: room.ID, DayOfWeek: 3, StartTime: "13:00", EndTime: "15:00", Section: "B", Semester: "1st", AcademicYear: "2025-2026", Active: true},
	}
	for i := range schedules {
		if err := db.Create(&schedules[i]).Error; err != nil {
			return err
		}
	}

	students := []models.Student{
		{StudentID: "2024-0001", Name: "Juan Dela Cruz", Email: "juan@example.com", ParentEmail: "parent.juan@example.com", RFIDCardID: "RFID001", Program: "BSIT", YearLevel: 2, Section: "A", Active: true},
		{StudentID: "2024-0002", Name: "Ana Reyes", Email: "ana@example.com", ParentEmail: "parent.ana@example.com", RFIDCardID: "RFID002", Program: "BSIT", YearLevel: 2, Section: "A", Active: true},
		{StudentID: "2024-0003", Name: "Carlo Mendoza", Email: "carlo@example.com", ParentEmail: "parent.carlo@example.com", RFIDCardID: "RFID003", Program: "BSCS", YearLevel: 3, Section: "B", Active: true},
	}
	for i := range students {
		if err := db.Create(&students[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
