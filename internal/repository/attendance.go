package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clirdec/presence/internal/models"
)

// Sessions implements engine.SessionStore on GORM.
type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

func (r *Sessions) ByID(ctx context.Context, id uint) (*models.ClassSession, error) {
	var session models.ClassSession
	err := r.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *Sessions) ByScheduleAndDate(ctx context.Context, scheduleID uint, date time.Time) (*models.ClassSession, error) {
	var session models.ClassSession
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND date = ?", scheduleID, date.Format("2006-01-02")).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *Sessions) Save(ctx context.Context, session *models.ClassSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// Records implements engine.AttendanceStore on GORM. Save writes the
// whole row in one statement, so a record is never half-updated.
type Records struct {
	db *gorm.DB
}

func NewRecords(db *gorm.DB) *Records {
	return &Records{db: db}
}

func (r *Records) ByStudentAndSession(ctx context.Context, studentID, sessionID uint) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND class_session_id = ?", studentID, sessionID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Records) Save(ctx context.Context, record *models.AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}
