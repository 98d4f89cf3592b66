package main

import (
	"strings"
	"testing"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/schedule"
)

func TestRenderDaily(t *testing.T) {
	gap := 20
	resp := &dto.DailyResponse{
		Day:     schedule.Sunday,
		IsToday: true,
		Count:   2,
		Classes: []dto.AgendaItemResponse{
			{
				ClassSession:    schedule.ClassSession{Subject: "Physics", Code: "PHY102", TeacherInitial: "RKR", Room: "KT-305"},
				DisplayStart:    "8:30",
				StartPeriod:     "AM",
				DisplayEnd:      "10:00",
				EndPeriod:       "AM",
				GapAfterMinutes: &gap,
				IsBreak:         true,
			},
			{
				ClassSession: schedule.ClassSession{Subject: "Data Structure", Code: "CSE123", TeacherInitial: "AAR", Room: "KT-802"},
				DisplayStart: "10:20",
				StartPeriod:  "AM",
			},
		},
		Teachers: []schedule.TeacherSummary{{Initial: "RKR"}, {Initial: "AAR"}},
	}

	out := renderDaily(resp)
	for _, want := range []string{"Sunday (today)", "8:30 AM", "Physics (PHY102)", "20 min break", "Teachers: RKR, AAR"} {
		if !strings.Contains(out, want) {
			t.Errorf("期望输出包含 %q，实际:\n%s", want, out)
		}
	}
}

func TestRenderDaily_OffDay(t *testing.T) {
	out := renderDaily(&dto.DailyResponse{Day: schedule.Friday, IsOffDay: true})
	if !strings.Contains(out, "Off day") {
		t.Errorf("期望提示休息日，实际:\n%s", out)
	}
}

func TestRenderWeekly(t *testing.T) {
	resp := &dto.WeeklyResponse{
		Slots: []schedule.TimeSlot{{Label: "08:30-10:00", Start: "08:30"}},
		Rows: []dto.WeeklyRowResponse{
			{Day: schedule.Saturday, Cells: [][]schedule.ClassSession{{}}},
			{Day: schedule.Sunday, Cells: [][]schedule.ClassSession{{{Code: "PHY102", Room: "KT-305"}}}},
		},
		Total:   1,
		Busiest: &schedule.DayCount{Day: schedule.Sunday, Count: 1},
		OffGrid: 2,
	}

	out := renderWeekly(resp)
	for _, want := range []string{"08:30-10:00", "Sun", "PHY102 KT-305", "Busiest: Sunday (1)", "Lightest: N/A", "2 class(es)"} {
		if !strings.Contains(out, want) {
			t.Errorf("期望输出包含 %q，实际:\n%s", want, out)
		}
	}
}

func TestStateError(t *testing.T) {
	if err := stateError(&dto.StateResponse{}); err != nil {
		t.Errorf("无错误时应返回 nil，实际 %v", err)
	}
	err := stateError(&dto.StateResponse{Error: &dto.SyncErrorResponse{Title: "Offline", Message: "No cached data"}})
	if err == nil || !strings.HasPrefix(err.Error(), "Offline") {
		t.Errorf("期望 Offline 错误，实际 %v", err)
	}
}
