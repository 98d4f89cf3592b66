package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"routine-hub/backend/internal/schedule"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoClasses    = errors.New("当前没有可导出的课程")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 数据来自控制器快照（离线时即本地缓存），不直接查询远程数据库。
type ExportService interface {
	// WeeklyExcel 周网格导出为 Excel
	WeeklyExcel(ctx context.Context) (*bytes.Buffer, string, error)
	// Calendar 每周重复的 iCalendar 订阅
	Calendar(ctx context.Context) ([]byte, string, error)
}

type exportService struct {
	ctrl   SyncController
	opts   RoutineOptions
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(ctrl SyncController, opts RoutineOptions, logger *zap.Logger) ExportService {
	return &exportService{ctrl: ctrl, opts: opts, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// WeeklyExcel — 周视图导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Weekly Routine"，第 1 行标题（batch_section + 版本）
//   - 第 2 行表头：Day | 时间段 1 … 时间段 N
//   - 每个非休息日一行，单元格内多节课以换行分隔
//   - 末尾附每日课程数与最忙/最闲日统计

func (s *exportService) WeeklyExcel(_ context.Context) (*bytes.Buffer, string, error) {
	snap := s.ctrl.State()
	if len(snap.Classes) == 0 {
		return nil, "", ErrExportNoClasses
	}

	grid := schedule.BuildWeeklyGrid(snap.Classes, s.opts.Slots, s.opts.OffDay)
	summary := schedule.Summarize(snap.Classes, s.opts.OffDay)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Weekly Routine"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	lastCol := colName(len(grid.Slots))

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", lastCol, 28)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", routineTitle(snap.Metadata))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Day")
	for i, slot := range grid.Slots {
		f.SetCellValue(sheetName, cell(colName(i+1), row), slot.Label)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	// 数据行
	row = 3
	for _, r := range grid.Rows {
		f.SetCellValue(sheetName, cell("A", row), string(r.Day))
		for i, sessions := range r.Cells {
			text := "-"
			if len(sessions) > 0 {
				parts := make([]string, 0, len(sessions))
				for _, cs := range sessions {
					parts = append(parts, cellText(cs))
				}
				text = strings.Join(parts, "\n")
			}
			f.SetCellValue(sheetName, cell(colName(i+1), row), text)
		}
		f.SetCellStyle(sheetName, cell("B", row), cell(lastCol, row), cellStyle)
		row++
	}

	// 统计
	row++
	f.SetCellValue(sheetName, cell("A", row), "Total")
	f.SetCellValue(sheetName, cell("B", row), summary.Total)
	row++
	f.SetCellValue(sheetName, cell("A", row), "Busiest")
	f.SetCellValue(sheetName, cell("B", row), dayCountText(summary.Busiest))
	row++
	f.SetCellValue(sheetName, cell("A", row), "Lightest")
	f.SetCellValue(sheetName, cell("B", row), dayCountText(summary.Lightest))

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("routine_%s.xlsx", fileTag(snap.Metadata)), nil
}

// ═══════════════════════════════════════════════════════════
// Calendar — iCalendar 导出
// ═══════════════════════════════════════════════════════════

func (s *exportService) Calendar(_ context.Context) ([]byte, string, error) {
	snap := s.ctrl.State()
	if len(snap.Classes) == 0 {
		return nil, "", ErrExportNoClasses
	}
	content := EncodeICS(snap.Classes, snap.Metadata, s.opts.now())
	return []byte(content), fmt.Sprintf("routine_%s.ics", fileTag(snap.Metadata)), nil
}

// ── 辅助函数 ──

func cellText(s schedule.ClassSession) string {
	text := fmt.Sprintf("%s (%s)\n%s | %s", s.Subject, s.Code, s.TeacherInitial, s.Room)
	if s.SubSection != "" {
		text += " | " + s.SubSection
	}
	return text
}

func dayCountText(dc *schedule.DayCount) string {
	if dc == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%d)", dc.Day, dc.Count)
}

func routineTitle(meta *schedule.RoutineMetadata) string {
	if meta == nil {
		return "Class Routine"
	}
	return fmt.Sprintf("Class Routine %s_%s (v%s, updated %s)", meta.Batch, meta.Section, meta.Version, meta.LastUpdated)
}

func fileTag(meta *schedule.RoutineMetadata) string {
	if meta == nil {
		return "routine"
	}
	return fmt.Sprintf("%s_%s_v%s", meta.Batch, meta.Section, meta.Version)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
