package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/extractor"
	"routine-hub/backend/internal/schedule"
	apperrors "routine-hub/backend/pkg/errors"
)

// ── Mock Extractor ──

type mockExtractor struct {
	rows  []extractor.Row
	err   error
	calls int
}

func (m *mockExtractor) Extract(_ context.Context, _ string) ([]extractor.Row, error) {
	m.calls++
	return m.rows, m.err
}

func strPtr(s string) *string { return &s }

func validRows() []extractor.Row {
	return []extractor.Row{
		{Subject: "Data Structure", Code: "CSE123", Teacher: "A.A. Rahman", TeacherInitial: "AAR",
			StartTime: "08:30:00", EndTime: "10:00", Room: "KT-802", Day: "sun", Type: "Lecture", Section: "69_F"},
		{Subject: "Data Structure Lab", Code: "CSE124", Teacher: "A.A. Rahman", TeacherInitial: "AAR",
			StartTime: "13:00", EndTime: "14:30", Room: "Lab-3", Day: "Monday", Type: "Lab", Section: "69_F", SubSection: strPtr("F1")},
	}
}

func setupTestImportService(ex Extractor) (ImportService, *mockRoutineRepo, *mockController) {
	repo, routineRepo, _ := newMockRepository()
	ctrl := newMockController()
	svc := NewImportService(repo, ctrl, ex, testOptions(), 1024, zap.NewNop())
	return svc, routineRepo, ctrl
}

// ── ImportText 测试 ──

func TestImportService_ImportText_Success(t *testing.T) {
	ex := &mockExtractor{rows: validRows()}
	svc, routineRepo, ctrl := setupTestImportService(ex)

	resp, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "some routine"})
	if err != nil {
		t.Fatalf("ImportText 应成功: %v", err)
	}
	if resp.Inserted != 2 || resp.Message != "Successfully parsed and saved 2 classes!" {
		t.Errorf("期望写入 2 行，实际 %d (%s)", resp.Inserted, resp.Message)
	}
	if len(routineRepo.rows) != 2 {
		t.Fatalf("期望仓库中 2 行，实际 %d", len(routineRepo.rows))
	}
	if routineRepo.rows[0].Day != "Sunday" || routineRepo.rows[0].StartTime != "08:30" {
		t.Errorf("期望归一化为 Sunday 08:30，实际 %s %s", routineRepo.rows[0].Day, routineRepo.rows[0].StartTime)
	}
	if len(ctrl.triggers) != 1 {
		t.Errorf("期望触发一次后台同步，实际 %d", len(ctrl.triggers))
	}
}

func TestImportService_ImportText_DryRun(t *testing.T) {
	svc, routineRepo, ctrl := setupTestImportService(&mockExtractor{rows: validRows()})

	resp, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "x", DryRun: true})
	if err != nil {
		t.Fatalf("dry run 应成功: %v", err)
	}
	if !resp.DryRun || resp.Inserted != 0 || len(resp.Rows) != 2 {
		t.Errorf("期望仅返回 2 行预览，实际 %+v", resp)
	}
	if len(routineRepo.rows) != 0 || len(ctrl.triggers) != 0 {
		t.Error("dry run 不应写入或触发同步")
	}
}

func TestImportService_ImportText_Errors(t *testing.T) {
	t.Run("未启用", func(t *testing.T) {
		svc, _, _ := setupTestImportService(nil)
		_, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "x"})
		if !errors.Is(err, ErrImportDisabled) {
			t.Errorf("期望 ErrImportDisabled，实际 %v", err)
		}
	})

	t.Run("过长", func(t *testing.T) {
		ex := &mockExtractor{}
		svc, _, _ := setupTestImportService(ex)
		_, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: strings.Repeat("a", 2048)})
		if !errors.Is(err, ErrImportTooLarge) {
			t.Errorf("期望 ErrImportTooLarge，实际 %v", err)
		}
		if ex.calls != 0 {
			t.Error("超长文本不应调用模型")
		}
	})

	t.Run("空结果", func(t *testing.T) {
		svc, _, _ := setupTestImportService(&mockExtractor{rows: []extractor.Row{}})
		_, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "x"})
		if !errors.Is(err, apperrors.ErrMalformedImport) || !errors.Is(err, ErrNoClassesFound) {
			t.Errorf("期望 MalformedImport(ErrNoClassesFound)，实际 %v", err)
		}
	})

	t.Run("模型返回非法 JSON", func(t *testing.T) {
		svc, _, _ := setupTestImportService(&mockExtractor{err: extractor.ErrUnparsableJSON})
		_, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "x"})
		if !errors.Is(err, apperrors.ErrMalformedImport) {
			t.Errorf("期望 MalformedImport，实际 %v", err)
		}
	})

	t.Run("网络错误", func(t *testing.T) {
		svc, _, _ := setupTestImportService(&mockExtractor{err: errors.New("dial tcp: timeout")})
		_, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "x"})
		if !errors.Is(err, ErrExtractFailed) || errors.Is(err, apperrors.ErrMalformedImport) {
			t.Errorf("期望 ErrExtractFailed，实际 %v", err)
		}
	})
}

func TestImportService_RejectsWholeBatchOnInvalidRow(t *testing.T) {
	rows := validRows()
	rows[1].EndTime = "25:00"
	rows[1].Teacher = ""
	svc, routineRepo, _ := setupTestImportService(&mockExtractor{rows: rows})

	_, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "x"})
	var mErr *MalformedImportError
	if !errors.As(err, &mErr) {
		t.Fatalf("期望 MalformedImportError，实际 %v", err)
	}
	if mErr.Fields["rows[1].EndTime"] != "hhmm" || mErr.Fields["rows[1].Teacher"] != "required" {
		t.Errorf("期望字段错误 EndTime=hhmm Teacher=required，实际 %v", mErr.Fields)
	}
	if len(routineRepo.rows) != 0 {
		t.Error("任意一行非法时整批不应写入")
	}
}

func TestImportService_RemoteRejects(t *testing.T) {
	svc, routineRepo, ctrl := setupTestImportService(&mockExtractor{rows: validRows()})
	routineRepo.failErr = errMockDB

	_, err := svc.ImportText(context.Background(), &dto.ImportRequest{Text: "x"})
	if !errors.Is(err, apperrors.ErrMalformedImport) || !errors.Is(err, ErrImportRejected) {
		t.Errorf("期望 MalformedImport(ErrImportRejected)，实际 %v", err)
	}
	if len(ctrl.triggers) != 0 {
		t.Error("写入失败时不应触发同步")
	}
}

// ── ImportICS 测试 ──

func TestImportService_ImportICS_RoundTrip(t *testing.T) {
	classes := sampleClasses()[:3]
	for i := range classes {
		classes[i].Section = "69_F"
	}
	content := EncodeICS(classes, nil, testNow)

	svc, routineRepo, _ := setupTestImportService(nil)
	resp, err := svc.ImportICS(context.Background(), strings.NewReader(content), false)
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	if resp.Source != "ics" || resp.Inserted != 3 {
		t.Fatalf("期望从 ICS 导入 3 行，实际 %+v", resp)
	}

	byCode := make(map[string]string)
	for _, r := range routineRepo.rows {
		byCode[r.Code+"/"+r.Day] = r.StartTime + "-" + r.EndTime
	}
	if byCode["PHY102/Sunday"] != "08:30-10:00" {
		t.Errorf("期望 PHY102 周日 08:30-10:00，实际 %v", byCode)
	}
	if byCode["CSE123/Monday"] != "13:00-14:30" {
		t.Errorf("期望 CSE123 周一 13:00-14:30，实际 %v", byCode)
	}

	for _, r := range routineRepo.rows {
		if r.Day == string(schedule.Monday) {
			if r.SubSection == nil || *r.SubSection != "F1" {
				t.Errorf("期望保留 sub_section=F1，实际 %v", r.SubSection)
			}
			if r.TeacherInitial != "AAR" {
				t.Errorf("期望 teacher_initial=AAR，实际 %s", r.TeacherInitial)
			}
		}
	}
}

func TestImportService_ImportICS_Invalid(t *testing.T) {
	svc, _, _ := setupTestImportService(nil)

	_, err := svc.ImportICS(context.Background(), strings.NewReader("not a calendar"), false)
	if !errors.Is(err, apperrors.ErrMalformedImport) {
		t.Errorf("期望 MalformedImport，实际 %v", err)
	}
}

func TestImportService_ImportICS_KeepsCreditsAndSections(t *testing.T) {
	credits := 3.0
	classes := []schedule.ClassSession{
		{ID: "11", Subject: "Physics", Code: "PHY102", Teacher: "R.K. Roy", TeacherInitial: "RKR",
			StartTime: "08:30", EndTime: "10:00", Room: "KT-305", Day: schedule.Sunday, Section: "69_F",
			Type: schedule.Lecture, Credits: &credits},
		{ID: "12", Subject: "Physics", Code: "PHY102", Teacher: "R.K. Roy", TeacherInitial: "RKR",
			StartTime: "08:30", EndTime: "10:00", Room: "KT-305", Day: schedule.Sunday, Section: "69_G",
			Type: schedule.Lecture},
	}
	content := EncodeICS(classes, nil, testNow)
	if !strings.Contains(content, "X-ROUTINE-CREDITS:3") {
		t.Fatalf("导出的日历应包含学分属性:\n%s", content)
	}

	svc, routineRepo, _ := setupTestImportService(nil)
	resp, err := svc.ImportICS(context.Background(), strings.NewReader(content), false)
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	if resp.Inserted != 2 {
		t.Fatalf("不同班级的同时段课程应各自保留，期望 2 行，实际 %d", resp.Inserted)
	}

	bySection := make(map[string]*float64)
	for _, r := range routineRepo.rows {
		bySection[r.Section] = r.Credits
	}
	if c, ok := bySection["69_F"]; !ok || c == nil || *c != 3.0 {
		t.Errorf("期望 69_F 学分为 3，实际 %v", c)
	}
	if c, ok := bySection["69_G"]; !ok || c != nil {
		t.Errorf("期望 69_G 存在且无学分，实际 ok=%v credits=%v", ok, c)
	}
}

func TestDecodeICS_MergesRepeatedEvents(t *testing.T) {
	// 同一课程以不同 UID 导出两次，模拟按周展开的日历
	first := sampleClasses()[0]
	second := first
	second.ID = "1b"
	twice := []schedule.ClassSession{first, second}
	content := EncodeICS(twice, nil, testNow)

	rows, err := DecodeICS(strings.NewReader(content), time.UTC)
	if err != nil {
		t.Fatalf("DecodeICS 应成功: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("相同课程的重复事件应合并为 1 行，实际 %d", len(rows))
	}
}
