package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clirdec/presence/internal/models"
)

// In-memory stores for engine tests. Each returns copies so mutations
// only land through Save, same as a real database round trip.

type memDevices struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]models.Device
}

func newMemDevices() *memDevices {
	return &memDevices{rows: make(map[string]models.Device)}
}

func (m *memDevices) ByDeviceID(_ context.Context, deviceID string) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deviceID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memDevices) ListByState(_ context.Context, state string) ([]models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Device
	for _, row := range m.rows {
		if row.State == state {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memDevices) Save(_ context.Context, device *models.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if device.ID == 0 {
		m.nextID++
		device.ID = m.nextID
	}
	m.rows[device.DeviceID] = *device
	return nil
}

type memStudents struct {
	mu   sync.Mutex
	rows map[string]models.Student // keyed by RFID card
}

func newMemStudents() *memStudents {
	return &memStudents{rows: make(map[string]models.Student)}
}

func (m *memStudents) add(s models.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.RFIDCardID] = s
}

func (m *memStudents) ByCardID(_ context.Context, cardID string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[cardID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

type memClassrooms struct {
	mu   sync.Mutex
	rows map[uint]models.Classroom
}

func newMemClassrooms() *memClassrooms {
	return &memClassrooms{rows: make(map[uint]models.Classroom)}
}

func (m *memClassrooms) add(c models.Classroom) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[c.ID] = c
}

func (m *memClassrooms) ByID(_ context.Context, id uint) (*models.Classroom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

type memSchedules struct {
	mu   sync.Mutex
	rows map[uint]models.Schedule
}

func newMemSchedules() *memSchedules {
	return &memSchedules{rows: make(map[uint]models.Schedule)}
}

func (m *memSchedules) add(s models.Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = s
}

func (m *memSchedules) ByID(_ context.Context, id uint) (*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memSchedules) ActiveByClassroom(_ context.Context, classroomID uint) ([]models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Schedule
	for _, row := range m.rows {
		if row.ClassroomID == classroomID && row.Active {
			out = append(out, row)
		}
	}
	return out, nil
}

type memSessions struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.ClassSession
}

func newMemSessions() *memSessions {
	return &memSessions{rows: make(map[uint]models.ClassSession)}
}

func (m *memSessions) ByID(_ context.Context, id uint) (*models.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memSessions) ByScheduleAndDate(_ context.Context, scheduleID uint, date time.Time) (*models.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ScheduleID == scheduleID && row.Date.Equal(date) {
			out := row
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memSessions) Save(_ context.Context, session *models.ClassSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.ID == 0 {
		m.nextID++
		session.ID = m.nextID
	}
	m.rows[session.ID] = *session
	return nil
}

type memRecords struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.AttendanceRecord
}

func newMemRecords() *memRecords {
	return &memRecords{rows: make(map[uint]models.AttendanceRecord)}
}

func (m *memRecords) ByStudentAndSession(_ context.Context, studentID, sessionID uint) (*models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.StudentID == studentID && row.ClassSessionID == sessionID {
			out := row
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memRecords) Save(_ context.Context, record *models.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == 0 {
		m.nextID++
		record.ID = m.nextID
	}
	m.rows[record.ID] = *record
	return nil
}

// fakeClock is a settable engine clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

type livenessCall struct {
	deviceID string
	online   bool
}

// recordingNotifier captures liveness transitions for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []livenessCall
}

func (n *recordingNotifier) LivenessChanged(_ context.Context, device *models.Device, online bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, livenessCall{deviceID: device.DeviceID, online: online})
}

func (n *recordingNotifier) Calls() []livenessCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]livenessCall, len(n.calls))
	copy(out, n.calls)
	return out
}

// testEnv wires a coordinator over in-memory stores and a fake clock.
type testEnv struct {
	devices    *memDevices
	students   *memStudents
	classrooms *memClassrooms
	schedules  *memSchedules
	sessions   *memSessions
	records    *memRecords
	notifier   *recordingNotifier
	clock      *fakeClock
	coord      *Coordinator
}

// mondayMorning is a Monday (weekday 0) at 08:00 UTC.
var mondayMorning = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	env := &testEnv{
		devices:    newMemDevices(),
		students:   newMemStudents(),
		classrooms: newMemClassrooms(),
		schedules:  newMemSchedules(),
		sessions:   newMemSessions(),
		records:    newMemRecords(),
		notifier:   &recordingNotifier{},
		clock:      newFakeClock(mondayMorning),
	}
	stores := Stores{
		Devices:    env.devices,
		Students:   env.students,
		Classrooms: env.classrooms,
		Schedules:  env.schedules,
		Sessions:   env.sessions,
		Records:    env.records,
	}
	env.coord = New(stores, env.notifier, cfg, env.clock, zap.NewNop())
	return env
}

// seedClassroom installs a classroom with a Monday 08:00-10:00 schedule
// and one student, then registers and binds a reader.
func (env *testEnv) seedClassroom(t *testing.T) {
	t.Helper()
	env.classrooms.add(models.Classroom{ID: 1, Name: "Lab 204", Active: true})
	env.schedules.add(models.Schedule{
		ID: 1, SubjectID: 1, ClassroomID: 1,
		DayOfWeek: 0, StartTime: "08:00", EndTime: "10:00", Section: "A", Active: true,
	})
	env.students.add(models.Student{
		ID: 1, StudentID: "2024-0001", Name: "Juan Dela Cruz",
		RFIDCardID: "RFID001", Section: "A", Active: true,
	})

	ctx := context.Background()
	_, err := env.coord.Register(ctx, RegisterRequest{
		DeviceID:     "ESP32-001",
		DeviceType:   "hybrid_scanner",
		Capabilities: []string{"rfid_scan", "presence_detection"},
		CurrentMode:  "attendance",
	})
	if err != nil {
		t.Fatalf("register device: %v", err)
	}
	if err := env.coord.AssignClassroom(ctx, "ESP32-001", 1); err != nil {
		t.Fatalf("assign classroom: %v", err)
	}
}
