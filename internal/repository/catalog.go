package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/models"
)

// Students, Classrooms and Schedules are read-only to the engine; the
// admin API mutates them directly through GORM.

type Students struct {
	db *gorm.DB
}

func NewStudents(db *gorm.DB) *Students {
	return &Students{db: db}
}

func (r *Students) ByCardID(ctx context.Context, cardID string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("rfid_card_id = ? AND active = ?", cardID, true).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

type Classrooms struct {
	db *gorm.DB
}

func NewClassrooms(db *gorm.DB) *Classrooms {
	return &Classrooms{db: db}
}

func (r *Classrooms) ByID(ctx context.Context, id uint) (*models.Classroom, error) {
	var classroom models.Classroom
	err := r.db.WithContext(ctx).First(&classroom, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &classroom, nil
}

type Schedules struct {
	db *gorm.DB
}

func NewSchedules(db *gorm.DB) *Schedules {
	return &Schedules{db: db}
}

func (r *Schedules) ByID(ctx context.Context, id uint) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.db.WithContext(ctx).First(&schedule, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *Schedules) ActiveByClassroom(ctx context.Context, classroomID uint) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.db.WithContext(ctx).
		Where("classroom_id = ? AND active = ?", classroomID, true).
		Find(&schedules).Error
	return schedules, err
}
