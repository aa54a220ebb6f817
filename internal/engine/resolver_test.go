package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clirdec/presence/internal/models"
)

func resolverEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, Config{})
	env.classrooms.add(models.Classroom{ID: 1, Name: "Lab 204", Active: true})
	env.schedules.add(models.Schedule{
		ID: 1, SubjectID: 1, ClassroomID: 1,
		DayOfWeek: 0, StartTime: "08:00", EndTime: "10:00", Active: true,
	})
	return env
}

func TestResolveCreatesSessionLazily(t *testing.T) {
	env := resolverEnv(t)
	ctx := context.Background()

	at := mondayMorning.Add(5 * time.Minute)
	session, schedule, err := env.coord.resolver.Resolve(ctx, 1, at)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, schedule)
	assert.Equal(t, uint(1), schedule.ID)
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, at, *session.ActualStartTime)
	assert.Equal(t, dateOnly(at), session.Date)

	// A second resolve reuses the same session.
	again, _, err := env.coord.resolver.Resolve(ctx, 1, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, session.ID, again.ID)
}

func TestResolveOutsideAnySlot(t *testing.T) {
	env := resolverEnv(t)
	ctx := context.Background()

	_, _, err := env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(4*time.Hour))
	require.Error(t, err)
	assert.Equal(t, KindNoActiveSession, KindOf(err))

	// Same time of day on the wrong weekday.
	_, _, err = env.coord.resolver.Resolve(ctx, 1, mondayMorning.AddDate(0, 0, 1))
	require.Error(t, err)
	assert.Equal(t, KindNoActiveSession, KindOf(err))
}

func TestResolveAmbiguousSchedules(t *testing.T) {
	env := resolverEnv(t)
	env.schedules.add(models.Schedule{
		ID: 2, SubjectID: 2, ClassroomID: 1,
		DayOfWeek: 0, StartTime: "09:00", EndTime: "11:00", Active: true,
	})
	ctx := context.Background()

	// 09:30 falls inside both slots; refusing beats guessing.
	_, _, err := env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(90*time.Minute))
	require.Error(t, err)
	assert.Equal(t, KindAmbiguousSchedule, KindOf(err))

	// 08:30 is covered by only the first slot.
	session, schedule, err := env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, uint(1), schedule.ID)
	assert.NotNil(t, session)
}

func TestResolveActivatesScheduledSession(t *testing.T) {
	env := resolverEnv(t)
	ctx := context.Background()

	pre := models.ClassSession{
		ScheduleID: 1,
		Date:       dateOnly(mondayMorning),
		Status:     models.SessionScheduled,
	}
	require.NoError(t, env.sessions.Save(ctx, &pre))

	session, _, err := env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, pre.ID, session.ID)
	assert.Equal(t, models.SessionActive, session.Status)
	require.NotNil(t, session.ActualStartTime)
}

func TestResolveRefusesClosedSession(t *testing.T) {
	env := resolverEnv(t)
	ctx := context.Background()

	closed := models.ClassSession{
		ScheduleID: 1,
		Date:       dateOnly(mondayMorning),
		Status:     models.SessionCancelled,
	}
	require.NoError(t, env.sessions.Save(ctx, &closed))

	_, _, err := env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(time.Minute))
	require.Error(t, err)
	assert.Equal(t, KindNoActiveSession, KindOf(err))
}

func TestResolveAutoCompletesElapsedSession(t *testing.T) {
	env := resolverEnv(t)
	ctx := context.Background()

	// Open the morning session, then resolve well after its end.
	opened, _, err := env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(time.Minute))
	require.NoError(t, err)

	_, _, err = env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(5*time.Hour))
	require.Error(t, err)
	assert.Equal(t, KindNoActiveSession, KindOf(err))

	session, err := env.sessions.ByID(ctx, opened.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status)
	require.NotNil(t, session.ActualEndTime)
	end, err := (&models.Schedule{StartTime: "08:00", EndTime: "10:00"}).EndOn(dateOnly(mondayMorning))
	require.NoError(t, err)
	assert.Equal(t, end, *session.ActualEndTime)
}

func TestResolveSkipsInactiveSchedules(t *testing.T) {
	env := resolverEnv(t)
	env.schedules.add(models.Schedule{
		ID: 3, SubjectID: 3, ClassroomID: 1,
		DayOfWeek: 0, StartTime: "08:00", EndTime: "10:00", Active: false,
	})
	ctx := context.Background()

	_, schedule, err := env.coord.resolver.Resolve(ctx, 1, mondayMorning.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, uint(1), schedule.ID, "inactive duplicate slot must not cause ambiguity")
}
