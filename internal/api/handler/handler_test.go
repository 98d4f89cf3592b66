package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/schedule"
	"routine-hub/backend/internal/service"
	"routine-hub/backend/pkg/response"
	"routine-hub/backend/pkg/validate"
)

func init() {
	gin.SetMode(gin.TestMode)
	validate.RegisterGin()
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock RoutineService ──

type mockRoutineService struct {
	state       *dto.StateResponse
	syncInitial *bool
	dismissed   bool
	daily       *dto.DailyResponse
	dailyDay    string
	dailyErr    error
	weekly      *dto.WeeklyResponse
	courses     *dto.CoursesResponse
	teachers    *dto.TeachersResponse
	teachersErr error
}

func (m *mockRoutineService) State(_ context.Context) *dto.StateResponse { return m.state }
func (m *mockRoutineService) Sync(_ context.Context, initial bool) *dto.StateResponse {
	m.syncInitial = &initial
	return m.state
}
func (m *mockRoutineService) DismissWelcome(_ context.Context) { m.dismissed = true }
func (m *mockRoutineService) Daily(_ context.Context, day string) (*dto.DailyResponse, error) {
	m.dailyDay = day
	return m.daily, m.dailyErr
}
func (m *mockRoutineService) Weekly(_ context.Context) *dto.WeeklyResponse   { return m.weekly }
func (m *mockRoutineService) Courses(_ context.Context) *dto.CoursesResponse { return m.courses }
func (m *mockRoutineService) Teachers(_ context.Context, _ string) (*dto.TeachersResponse, error) {
	return m.teachers, m.teachersErr
}

// ── Mock AdminService ──

type mockAdminService struct {
	createResult  *dto.CreateClassResponse
	createErr     error
	publishResult *dto.PublishMetadataResponse
	publishErr    error
	called        bool
}

func (m *mockAdminService) CreateClass(_ context.Context, _ *dto.CreateClassRequest) (*dto.CreateClassResponse, error) {
	m.called = true
	return m.createResult, m.createErr
}
func (m *mockAdminService) PublishMetadata(_ context.Context, _ *dto.PublishMetadataRequest) (*dto.PublishMetadataResponse, error) {
	m.called = true
	return m.publishResult, m.publishErr
}

// ── Mock ImportService ──

type mockImportService struct {
	result    *dto.ImportResponse
	err       error
	icsBody   string
	icsDryRun bool
}

func (m *mockImportService) ImportText(_ context.Context, _ *dto.ImportRequest) (*dto.ImportResponse, error) {
	return m.result, m.err
}
func (m *mockImportService) ImportICS(_ context.Context, r io.Reader, dryRun bool) (*dto.ImportResponse, error) {
	b, _ := io.ReadAll(r)
	m.icsBody = string(b)
	m.icsDryRun = dryRun
	return m.result, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	data     []byte
	filename string
	err      error
}

func (m *mockExportService) WeeklyExcel(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) Calendar(_ context.Context) ([]byte, string, error) {
	return m.data, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// 测试辅助
// ═══════════════════════════════════════════════════════════

func serve(method, path, route string, h gin.HandlerFunc, body io.Reader, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.Handle(method, route, h)

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// RoutineHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRoutineHandler_GetState(t *testing.T) {
	mock := &mockRoutineService{state: &dto.StateResponse{Status: "idle", Classes: []schedule.ClassSession{}}}
	h := NewRoutineHandler(mock)

	w := serve("GET", "/routine/state", "/routine/state", h.GetState, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if resp.Code != 0 || data["status"] != "idle" {
		t.Errorf("期望 code=0 status=idle，实际 %+v", resp)
	}
}

func TestRoutineHandler_Sync(t *testing.T) {
	mock := &mockRoutineService{state: &dto.StateResponse{
		Status: "error",
		Error:  &dto.SyncErrorResponse{Kind: "offline", Title: "Offline"},
	}}
	h := NewRoutineHandler(mock)

	w := serve("POST", "/routine/sync?initial=true", "/routine/sync", h.Sync, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("同步错误体现在快照中，期望 200，实际 %d", w.Code)
	}
	if mock.syncInitial == nil || !*mock.syncInitial {
		t.Error("期望以首次加载模式同步")
	}

	w = serve("POST", "/routine/sync?initial=maybe", "/routine/sync", h.Sync, nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法 initial 期望 400，实际 %d", w.Code)
	}
}

func TestRoutineHandler_DismissWelcome(t *testing.T) {
	mock := &mockRoutineService{}
	h := NewRoutineHandler(mock)

	w := serve("POST", "/routine/welcome/dismiss", "/routine/welcome/dismiss", h.DismissWelcome, nil, "")
	if w.Code != http.StatusOK || !mock.dismissed {
		t.Errorf("期望 200 且提示已关闭，实际 %d dismissed=%v", w.Code, mock.dismissed)
	}
}

func TestRoutineHandler_GetDaily(t *testing.T) {
	mock := &mockRoutineService{daily: &dto.DailyResponse{Day: schedule.Monday}}
	h := NewRoutineHandler(mock)

	w := serve("GET", "/routine/daily?day=mon", "/routine/daily", h.GetDaily, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.dailyDay != "mon" {
		t.Errorf("期望透传 day=mon，实际 %q", mock.dailyDay)
	}
}

func TestRoutineHandler_GetDaily_InvalidDay(t *testing.T) {
	mock := &mockRoutineService{dailyErr: service.ErrInvalidDay}
	h := NewRoutineHandler(mock)

	w := serve("GET", "/routine/daily?day=xyz", "/routine/daily", h.GetDaily, nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20001 {
		t.Errorf("期望错误码 20001，实际 %d", resp.Code)
	}
}

func TestRoutineHandler_RejectsUnknownDayQuery(t *testing.T) {
	mock := &mockRoutineService{daily: &dto.DailyResponse{}, teachers: &dto.TeachersResponse{}}
	h := NewRoutineHandler(mock)

	for _, tc := range []struct {
		path  string
		route string
		fn    gin.HandlerFunc
	}{
		{"/routine/daily?day=someday", "/routine/daily", h.GetDaily},
		{"/routine/teachers?day=someday", "/routine/teachers", h.GetTeachers},
	} {
		w := serve("GET", tc.path, tc.route, tc.fn, nil, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: 期望 400，实际 %d", tc.path, w.Code)
			continue
		}
		if resp := parseResponse(w); resp.Code != 20001 {
			t.Errorf("%s: 期望错误码 20001，实际 %d", tc.path, resp.Code)
		}
	}
	if mock.dailyDay != "" {
		t.Errorf("参数校验失败时不应调用服务，实际 day=%q", mock.dailyDay)
	}
}

func TestRoutineHandler_WeeklyCoursesTeachers(t *testing.T) {
	mock := &mockRoutineService{
		weekly:   &dto.WeeklyResponse{Total: 3},
		courses:  &dto.CoursesResponse{Total: 2},
		teachers: &dto.TeachersResponse{},
	}
	h := NewRoutineHandler(mock)

	cases := []struct {
		path string
		fn   gin.HandlerFunc
	}{
		{"/routine/weekly", h.GetWeekly},
		{"/routine/courses", h.GetCourses},
		{"/routine/teachers", h.GetTeachers},
	}
	for _, tc := range cases {
		w := serve("GET", tc.path, tc.path, tc.fn, nil, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s 期望 200，实际 %d", tc.path, w.Code)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// AdminHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAdminHandler_CreateClass_Success(t *testing.T) {
	mock := &mockAdminService{createResult: &dto.CreateClassResponse{ID: 7}}
	h := NewAdminHandler(mock)

	body := jsonBody(dto.CreateClassRequest{
		Subject: "Data Structure", Code: "CSE123", Teacher: "A.A. Rahman",
		TeacherInitial: "AAR", Room: "KT-802", StartTime: "08:30", EndTime: "10:00", Day: "Sunday",
	})
	w := serve("POST", "/admin/classes", "/admin/classes", h.CreateClass, body, "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminHandler_CreateClass_ValidationError(t *testing.T) {
	mock := &mockAdminService{}
	h := NewAdminHandler(mock)

	body := jsonBody(dto.CreateClassRequest{
		Subject: "X", Code: "X", Teacher: "X", TeacherInitial: "X", Room: "X",
		StartTime: "8.30", Day: "Funday",
	})
	w := serve("POST", "/admin/classes", "/admin/classes", h.CreateClass, body, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际 %d", w.Code)
	}
	resp := parseResponse(w)
	if !strings.Contains(resp.Details, "StartTime=hhmm") || !strings.Contains(resp.Details, "Day=weekday") {
		t.Errorf("期望字段明细包含 hhmm 与 weekday，实际 %q", resp.Details)
	}
	if mock.called {
		t.Error("校验失败时不应调用 Service")
	}
}

func TestAdminHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantBiz  int
	}{
		{service.ErrInvalidPeriod, http.StatusBadRequest, 21001},
		{service.ErrRemoteWrite, http.StatusServiceUnavailable, 21002},
		{errors.New("boom"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		h := NewAdminHandler(&mockAdminService{publishErr: tt.err})
		body := jsonBody(dto.PublishMetadataRequest{Batch: "69", Section: "F", Version: "2.0"})
		w := serve("POST", "/admin/metadata", "/admin/metadata", h.PublishMetadata, body, "application/json")
		if w.Code != tt.wantCode || parseResponse(w).Code != tt.wantBiz {
			t.Errorf("%v: 期望 %d/%d，实际 %d/%d", tt.err, tt.wantCode, tt.wantBiz, w.Code, parseResponse(w).Code)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// ImportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestImportHandler_Disabled(t *testing.T) {
	h := NewImportHandler(&mockImportService{}, false)

	w := serve("POST", "/admin/import", "/admin/import", h.ImportText, jsonBody(dto.ImportRequest{Text: "x"}), "application/json")
	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际 %d", w.Code)
	}
}

func TestImportHandler_ImportText(t *testing.T) {
	t.Run("写入成功", func(t *testing.T) {
		h := NewImportHandler(&mockImportService{result: &dto.ImportResponse{Inserted: 2}}, true)
		w := serve("POST", "/admin/import", "/admin/import", h.ImportText, jsonBody(dto.ImportRequest{Text: "x"}), "application/json")
		if w.Code != http.StatusCreated {
			t.Errorf("期望 201，实际 %d", w.Code)
		}
	})

	t.Run("dry run", func(t *testing.T) {
		h := NewImportHandler(&mockImportService{result: &dto.ImportResponse{DryRun: true}}, true)
		w := serve("POST", "/admin/import", "/admin/import", h.ImportText, jsonBody(dto.ImportRequest{Text: "x", DryRun: true}), "application/json")
		if w.Code != http.StatusOK {
			t.Errorf("期望 200，实际 %d", w.Code)
		}
	})

	t.Run("缺少 text", func(t *testing.T) {
		h := NewImportHandler(&mockImportService{}, true)
		w := serve("POST", "/admin/import", "/admin/import", h.ImportText, strings.NewReader(`{}`), "application/json")
		if w.Code != http.StatusBadRequest {
			t.Errorf("期望 400，实际 %d", w.Code)
		}
	})
}

func TestImportHandler_ErrorMapping(t *testing.T) {
	malformed := &service.MalformedImportError{
		Reason: "存在缺失或非法字段",
		Fields: map[string]string{"rows[0].Day": "weekday"},
	}
	tests := []struct {
		err      error
		wantCode int
		wantBiz  int
	}{
		{service.ErrImportDisabled, http.StatusServiceUnavailable, 22001},
		{service.ErrImportTooLarge, http.StatusRequestEntityTooLarge, 22002},
		{service.ErrExtractFailed, http.StatusBadGateway, 22003},
		{malformed, http.StatusUnprocessableEntity, 22004},
	}
	for _, tt := range tests {
		h := NewImportHandler(&mockImportService{err: tt.err}, true)
		w := serve("POST", "/admin/import", "/admin/import", h.ImportText, jsonBody(dto.ImportRequest{Text: "x"}), "application/json")
		resp := parseResponse(w)
		if w.Code != tt.wantCode || resp.Code != tt.wantBiz {
			t.Errorf("%v: 期望 %d/%d，实际 %d/%d", tt.err, tt.wantCode, tt.wantBiz, w.Code, resp.Code)
		}
		if tt.err == malformed && !strings.Contains(resp.Details, "rows[0].Day=weekday") {
			t.Errorf("期望 details 包含字段明细，实际 %q", resp.Details)
		}
	}
}

func TestImportHandler_ImportICS(t *testing.T) {
	mock := &mockImportService{result: &dto.ImportResponse{DryRun: true, Source: "ics"}}
	h := NewImportHandler(mock, true)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "routine.ics")
	fw.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	mw.WriteField("dry_run", "true")
	mw.Close()

	w := serve("POST", "/admin/import/ics", "/admin/import/ics", h.ImportICS, &buf, mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if !mock.icsDryRun || !strings.HasPrefix(mock.icsBody, "BEGIN:VCALENDAR") {
		t.Errorf("期望以 dry_run 透传文件内容，实际 dry_run=%v body=%q", mock.icsDryRun, mock.icsBody)
	}
}

func TestImportHandler_ImportICS_MissingFile(t *testing.T) {
	h := NewImportHandler(&mockImportService{}, true)

	w := serve("POST", "/admin/import/ics", "/admin/import/ics", h.ImportICS, strings.NewReader(""), "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_WeeklyExcel(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("excel content"), filename: "routine_69_F_v1.0.xlsx"}
	h := NewExportHandler(mock)

	w := serve("GET", "/export/weekly.xlsx", "/export/weekly.xlsx", h.ExportWeeklyExcel, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("期望 xlsx Content-Type，实际 %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "routine_69_F_v1.0.xlsx") {
		t.Errorf("期望 Content-Disposition 包含文件名，实际 %s", cd)
	}
}

func TestExportHandler_Calendar(t *testing.T) {
	mock := &mockExportService{data: []byte("BEGIN:VCALENDAR"), filename: "routine.ics"}
	h := NewExportHandler(mock)

	w := serve("GET", "/export/routine.ics", "/export/routine.ics", h.ExportCalendar, nil, "")
	if w.Code != http.StatusOK || w.Body.String() != "BEGIN:VCALENDAR" {
		t.Errorf("期望 200 与日历内容，实际 %d %q", w.Code, w.Body.String())
	}
}

func TestExportHandler_NoClasses(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoClasses})

	w := serve("GET", "/export/weekly.xlsx", "/export/weekly.xlsx", h.ExportWeeklyExcel, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
}
