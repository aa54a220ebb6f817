package engine

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/models"
)

// TapRequest identifies the student and target session for a check-in
// or check-out. SessionID takes precedence when set; otherwise the
// session is resolved from ClassroomID and At.
type TapRequest struct {
	TagUID      string
	SessionID   *uint
	ClassroomID *uint
	DeviceRef   *uint
	At          time.Time
}

// TapResult is the outcome of a state machine transition.
type TapResult struct {
	Record   *models.AttendanceRecord
	Student  *models.Student
	Session  *models.ClassSession
	Schedule *models.Schedule
}

// StateMachine drives the per-(student, session) attendance lifecycle:
// no record (Absent) -> checked in (Present/Late) -> checked out.
type StateMachine struct {
	students  StudentStore
	schedules ScheduleStore
	sessions  SessionStore
	records   AttendanceStore
	resolver  *Resolver
	grace     time.Duration
	locks     *keyMutex
	log       *zap.Logger
}

func NewStateMachine(stores Stores, resolver *Resolver, grace time.Duration, locks *keyMutex, log *zap.Logger) *StateMachine {
	return &StateMachine{
		students:  stores.Students,
		schedules: stores.Schedules,
		sessions:  stores.Sessions,
		records:   stores.Records,
		resolver:  resolver,
		grace:     grace,
		locks:     locks,
		log:       log,
	}
}

// CheckIn records a check-in and computes lateness against the
// schedule's start on the session date. A student already checked in
// fails with AlreadyCheckedIn; a record that was checked out is
// immutable and fails with AlreadyCheckedOut.
func (sm *StateMachine) CheckIn(ctx context.Context, req TapRequest) (TapResult, error) {
	res, err := sm.resolveTarget(ctx, req)
	if err != nil {
		return TapResult{}, err
	}

	mu := sm.locks.Lock(recordKey(res.Student.ID, res.Session.ID))
	defer mu.Unlock()

	record, err := sm.records.ByStudentAndSession(ctx, res.Student.ID, res.Session.ID)
	if err != nil {
		return TapResult{}, storageError(err)
	}
	if record != nil {
		if record.CheckoutTime != nil {
			return TapResult{}, newError(KindAlreadyCheckedOut, "student %s already checked out of session %d", res.Student.StudentID, res.Session.ID)
		}
		if record.CheckinTime != nil {
			return TapResult{}, newError(KindAlreadyCheckedIn, "student %s already checked in to session %d", res.Student.StudentID, res.Session.ID)
		}
	}
	if record == nil {
		record = &models.AttendanceRecord{
			StudentID:      res.Student.ID,
			ClassSessionID: res.Session.ID,
		}
	}

	at := req.At
	record.CheckinTime = &at
	record.DeviceID = req.DeviceRef
	record.MinutesLate, record.IsLate = sm.lateness(res.Schedule, res.Session, at)
	if record.IsLate {
		record.Status = models.AttendanceLate
	} else {
		record.Status = models.AttendancePresent
	}

	if err := sm.records.Save(ctx, record); err != nil {
		return TapResult{}, storageError(err)
	}
	sm.log.Info("student checked in",
		zap.String("student", res.Student.StudentID),
		zap.Uint("session_id", res.Session.ID),
		zap.Bool("late", record.IsLate),
		zap.Int("minutes_late", record.MinutesLate),
	)
	res.Record = record
	return res, nil
}

// CheckOut closes the open record for the student and session. The
// status computed at check-in is left untouched.
func (sm *StateMachine) CheckOut(ctx context.Context, req TapRequest) (TapResult, error) {
	res, err := sm.resolveTarget(ctx, req)
	if err != nil {
		return TapResult{}, err
	}

	mu := sm.locks.Lock(recordKey(res.Student.ID, res.Session.ID))
	defer mu.Unlock()

	record, err := sm.records.ByStudentAndSession(ctx, res.Student.ID, res.Session.ID)
	if err != nil {
		return TapResult{}, storageError(err)
	}
	if record == nil || record.CheckinTime == nil {
		return TapResult{}, newError(KindNoCheckInRecord, "student %s has no open record for session %d", res.Student.StudentID, res.Session.ID)
	}
	if record.CheckoutTime != nil {
		return TapResult{}, newError(KindAlreadyCheckedOut, "student %s already checked out of session %d", res.Student.StudentID, res.Session.ID)
	}

	at := req.At
	record.CheckoutTime = &at
	if err := sm.records.Save(ctx, record); err != nil {
		return TapResult{}, storageError(err)
	}
	sm.log.Info("student checked out",
		zap.String("student", res.Student.StudentID),
		zap.Uint("session_id", res.Session.ID),
	)
	res.Record = record
	return res, nil
}

// resolveTarget maps the tag to a student and picks the target session,
// either the explicit one or the classroom's active slot.
func (sm *StateMachine) resolveTarget(ctx context.Context, req TapRequest) (TapResult, error) {
	student, err := sm.students.ByCardID(ctx, req.TagUID)
	if err != nil {
		return TapResult{}, storageError(err)
	}
	if student == nil {
		return TapResult{}, newError(KindUnknownTag, "no student owns tag %s", req.TagUID)
	}

	var session *models.ClassSession
	var schedule *models.Schedule
	switch {
	case req.SessionID != nil:
		session, err = sm.sessions.ByID(ctx, *req.SessionID)
		if err != nil {
			return TapResult{}, storageError(err)
		}
		if session == nil || session.Status == models.SessionCompleted || session.Status == models.SessionCancelled {
			return TapResult{}, newError(KindNoActiveSession, "session %d is not active", *req.SessionID)
		}
		schedule, err = sm.schedules.ByID(ctx, session.ScheduleID)
		if err != nil {
			return TapResult{}, storageError(err)
		}
	case req.ClassroomID != nil:
		session, schedule, err = sm.resolver.Resolve(ctx, *req.ClassroomID, req.At)
		if err != nil {
			return TapResult{}, err
		}
	default:
		return TapResult{}, newError(KindNoActiveSession, "scan has neither session nor classroom to resolve against")
	}

	return TapResult{Student: student, Session: session, Schedule: schedule}, nil
}

// lateness computes whole minutes past the schedule start on the
// session date; arrivals within the grace period count as on time.
func (sm *StateMachine) lateness(schedule *models.Schedule, session *models.ClassSession, at time.Time) (int, bool) {
	if schedule == nil {
		return 0, false
	}
	start, err := schedule.StartOn(session.Date)
	if err != nil {
		sm.log.Warn("lateness: invalid schedule start", zap.Uint("schedule_id", schedule.ID), zap.Error(err))
		return 0, false
	}
	late := at.Sub(start)
	if late <= 0 {
		return 0, false
	}
	minutes := int(late / time.Minute)
	return minutes, minutes > int(sm.grace/time.Minute)
}

func recordKey(studentID, sessionID uint) string {
	return "record:" + strconv.FormatUint(uint64(studentID), 10) + ":" + strconv.FormatUint(uint64(sessionID), 10)
}
