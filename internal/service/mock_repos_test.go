package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"routine-hub/backend/internal/model"
	"routine-hub/backend/internal/repository"
	"routine-hub/backend/internal/schedule"
	"routine-hub/backend/internal/syncer"
)

// ── Mock RoutineRepository ──

type mockRoutineRepo struct {
	rows    []model.Routine
	nextID  int64
	failErr error
}

func newMockRoutineRepo() *mockRoutineRepo {
	return &mockRoutineRepo{nextID: 1}
}

func (m *mockRoutineRepo) ListAll(_ context.Context) ([]model.Routine, error) {
	return append([]model.Routine(nil), m.rows...), nil
}

func (m *mockRoutineRepo) BatchCreate(_ context.Context, rows []model.Routine) error {
	if m.failErr != nil {
		return m.failErr
	}
	for i := range rows {
		rows[i].ID = m.nextID
		m.nextID++
	}
	m.rows = append(m.rows, rows...)
	return nil
}

// ── Mock MetadataRepository ──

type mockMetadataRepo struct {
	rows    []model.Metadata
	failErr error
}

func newMockMetadataRepo() *mockMetadataRepo {
	return &mockMetadataRepo{}
}

func (m *mockMetadataRepo) GetLatest(_ context.Context) (*model.Metadata, error) {
	if len(m.rows) == 0 {
		return nil, nil
	}
	latest := m.rows[len(m.rows)-1]
	return &latest, nil
}

func (m *mockMetadataRepo) Create(_ context.Context, meta *model.Metadata) error {
	if m.failErr != nil {
		return m.failErr
	}
	meta.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *meta)
	return nil
}

func newMockRepository() (*repository.Repository, *mockRoutineRepo, *mockMetadataRepo) {
	routineRepo := newMockRoutineRepo()
	metaRepo := newMockMetadataRepo()
	return &repository.Repository{Routine: routineRepo, Metadata: metaRepo}, routineRepo, metaRepo
}

var errMockDB = errors.New("mock db error")

// ── Mock SyncController ──

type mockController struct {
	mu        sync.Mutex
	snap      syncer.Snapshot
	triggers  []bool
	syncs     []bool
	dismissed bool
}

func newMockController(classes ...schedule.ClassSession) *mockController {
	return &mockController{snap: syncer.Snapshot{Classes: classes, Status: syncer.StatusIdle}}
}

func (m *mockController) State() syncer.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snap
	snap.Classes = schedule.CloneSessions(m.snap.Classes)
	return snap
}

func (m *mockController) Sync(_ context.Context, isInitial bool) syncer.Snapshot {
	m.mu.Lock()
	m.syncs = append(m.syncs, isInitial)
	m.mu.Unlock()
	return m.State()
}

func (m *mockController) Trigger(isInitial bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, isInitial)
}

func (m *mockController) DismissWelcome() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = true
	m.snap.ShowWelcome = false
}

// ── 测试数据 ──

// 2026-10-18 为周日
var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func testOptions() RoutineOptions {
	return RoutineOptions{
		OffDay:         schedule.Friday,
		Slots:          schedule.DefaultTimeSlots,
		BreakThreshold: schedule.DefaultBreakThreshold,
		Location:       time.UTC,
		Now:            func() time.Time { return testNow },
	}
}

func testDefaults() syncer.Defaults {
	return syncer.Defaults{
		Batch:            "69",
		Section:          "69_F",
		Version:          "1.0",
		WelcomeMsg:       "Routine Hub is ready.",
		PhotoURLTemplate: "https://api.dicebear.com/7.x/initials/svg?seed=%s",
		Location:         time.UTC,
	}
}

func sampleClasses() []schedule.ClassSession {
	return []schedule.ClassSession{
		{ID: "1", Subject: "Data Structure", Code: "CSE123", Teacher: "A.A. Rahman", TeacherInitial: "AAR",
			StartTime: "10:20", EndTime: "11:30", Room: "KT-802", Day: schedule.Sunday, Section: "69_F", Type: schedule.Lecture},
		{ID: "2", Subject: "Physics", Code: "PHY102", Teacher: "R.K. Roy", TeacherInitial: "RKR",
			StartTime: "08:30", EndTime: "10:00", Room: "KT-305", Day: schedule.Sunday, Section: "69_F", Type: schedule.Lecture},
		{ID: "3", Subject: "Data Structure Lab", Code: "CSE123", Teacher: "A.A. Rahman", TeacherInitial: "AAR",
			StartTime: "13:00", EndTime: "14:30", Room: "Lab-3", Day: schedule.Monday, Section: "69_F", SubSection: "F1", Type: schedule.Lab},
		{ID: "4", Subject: "Friday Seminar", Code: "GEN100", Teacher: "S. Akter", TeacherInitial: "SA",
			StartTime: "10:00", EndTime: "11:30", Room: "Hall", Day: schedule.Friday, Section: "69_F"},
	}
}
