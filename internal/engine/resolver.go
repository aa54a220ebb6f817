package engine

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/models"
)

// Resolver maps a classroom and a point in time to the single active
// class session, creating today's session lazily when a schedule slot
// is in progress.
type Resolver struct {
	schedules ScheduleStore
	sessions  SessionStore
	locks     *keyMutex
	log       *zap.Logger
}

func NewResolver(schedules ScheduleStore, sessions SessionStore, locks *keyMutex, log *zap.Logger) *Resolver {
	return &Resolver{schedules: schedules, sessions: sessions, locks: locks, log: log}
}

// Resolve finds the schedule slot covering at for the classroom and
// returns its session for at's date together with the schedule. Zero
// matching schedules yield NoActiveSession; more than one yields
// AmbiguousSchedule, which is treated as unresolvable rather than
// guessing. Sessions already past their window are completed in
// passing.
func (r *Resolver) Resolve(ctx context.Context, classroomID uint, at time.Time) (*models.ClassSession, *models.Schedule, error) {
	schedules, err := r.schedules.ActiveByClassroom(ctx, classroomID)
	if err != nil {
		return nil, nil, storageError(err)
	}

	weekday := models.Weekday(at)
	minute := at.Hour()*60 + at.Minute()

	var matches []models.Schedule
	for _, s := range schedules {
		if s.DayOfWeek != weekday {
			continue
		}
		start, err := s.StartMinutes()
		if err != nil {
			r.log.Warn("schedule has invalid start time", zap.Uint("schedule_id", s.ID), zap.Error(err))
			continue
		}
		end, err := s.EndMinutes()
		if err != nil {
			r.log.Warn("schedule has invalid end time", zap.Uint("schedule_id", s.ID), zap.Error(err))
			continue
		}
		if minute < start || minute > end {
			// Outside the slot: complete a leftover active session so it
			// does not linger past its window.
			if minute > end {
				r.expireElapsed(ctx, &s, at)
			}
			continue
		}
		matches = append(matches, s)
	}

	if len(matches) == 0 {
		return nil, nil, newError(KindNoActiveSession, "no schedule covers classroom %d at %s", classroomID, at.Format("Mon 15:04"))
	}
	if len(matches) > 1 {
		return nil, nil, newError(KindAmbiguousSchedule, "classroom %d has %d overlapping schedules at %s", classroomID, len(matches), at.Format("Mon 15:04"))
	}

	schedule := matches[0]
	session, err := r.activeSession(ctx, &schedule, at)
	if err != nil {
		return nil, nil, err
	}
	return session, &schedule, nil
}

// activeSession finds or creates the Active session for the schedule on
// at's date. Cancelled and completed sessions are not resurrected.
func (r *Resolver) activeSession(ctx context.Context, schedule *models.Schedule, at time.Time) (*models.ClassSession, error) {
	date := dateOnly(at)

	mu := r.locks.Lock(sessionKey(schedule.ID, date))
	defer mu.Unlock()

	session, err := r.sessions.ByScheduleAndDate(ctx, schedule.ID, date)
	if err != nil {
		return nil, storageError(err)
	}

	switch {
	case session == nil:
		start := at
		session = &models.ClassSession{
			ScheduleID:      schedule.ID,
			Date:            date,
			Status:          models.SessionActive,
			ActualStartTime: &start,
		}
		if err := r.sessions.Save(ctx, session); err != nil {
			return nil, storageError(err)
		}
		r.log.Info("class session opened",
			zap.Uint("session_id", session.ID),
			zap.Uint("schedule_id", schedule.ID),
			zap.String("date", date.Format("2006-01-02")),
		)
	case session.Status == models.SessionCancelled || session.Status == models.SessionCompleted:
		return nil, newError(KindNoActiveSession, "session %d for schedule %d is %s", session.ID, schedule.ID, session.Status)
	case session.Status == models.SessionScheduled:
		start := at
		session.Status = models.SessionActive
		session.ActualStartTime = &start
		if err := r.sessions.Save(ctx, session); err != nil {
			return nil, storageError(err)
		}
	}
	return session, nil
}

// expireElapsed completes a session whose window end has passed with no
// explicit end call. Failures are logged; expiry is best effort.
func (r *Resolver) expireElapsed(ctx context.Context, schedule *models.Schedule, at time.Time) {
	date := dateOnly(at)

	mu := r.locks.Lock(sessionKey(schedule.ID, date))
	defer mu.Unlock()

	session, err := r.sessions.ByScheduleAndDate(ctx, schedule.ID, date)
	if err != nil || session == nil {
		return
	}
	if session.Status != models.SessionActive && session.Status != models.SessionScheduled {
		return
	}
	end, err := schedule.EndOn(date)
	if err != nil {
		return
	}
	session.Status = models.SessionCompleted
	session.ActualEndTime = &end
	if err := r.sessions.Save(ctx, session); err != nil {
		r.log.Error("auto-complete session", zap.Uint("session_id", session.ID), zap.Error(err))
		return
	}
	r.log.Info("class session auto-completed", zap.Uint("session_id", session.ID))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sessionKey(scheduleID uint, date time.Time) string {
	return "session:" + date.Format("2006-01-02") + ":" + strconv.FormatUint(uint64(scheduleID), 10)
}
