package schedule

import "sort"

// DefaultBreakThreshold 间隔达到该分钟数才显示为"课间休息"
const DefaultBreakThreshold = 15

// DefaultTimeSlots 周视图默认时间段（90 分钟一节）
var DefaultTimeSlots = []TimeSlot{
	{Label: "08:30-10:00", Start: "08:30"},
	{Label: "10:00-11:30", Start: "10:00"},
	{Label: "11:30-13:00", Start: "11:30"},
	{Label: "13:00-14:30", Start: "13:00"},
	{Label: "14:30-16:00", Start: "14:30"},
}

// ════════════════════════════════════════════════════════════
// 日视图
// ════════════════════════════════════════════════════════════

// DailyAgenda 过滤出某天的课程并按开始时间稳定升序排列
// 无法解析开始时间的记录排在最后，彼此保持原顺序
func DailyAgenda(classes []ClassSession, day Day) []ClassSession {
	agenda := make([]ClassSession, 0)
	for _, c := range classes {
		if c.Day == day {
			agenda = append(agenda, c)
		}
	}
	sort.SliceStable(agenda, func(i, j int) bool {
		ci, okI := agenda[i].Start()
		cj, okJ := agenda[j].Start()
		if okI != okJ {
			return okI
		}
		return ci < cj
	})
	return agenda
}

// BreakBetween 计算 a 结束到 b 开始的分钟数，可为负（重叠）
// 无法解析的时间按 00:00 计
func BreakBetween(a, b ClassSession) int {
	end, _ := a.End()
	start, _ := b.Start()
	return int(start) - int(end)
}

// IsBreak 间隔是否达到展示阈值；小于阈值（含负数）不标记，也不视为错误
func IsBreak(minutes, threshold int) bool {
	return minutes >= threshold
}

// AgendaEntry 日程中的一项，附带与下一节课的间隔
type AgendaEntry struct {
	Session  ClassSession
	GapAfter *int // 当天最后一节为 nil
	IsBreak  bool
}

// Timeline 生成带间隔信息的日程
func Timeline(classes []ClassSession, day Day, threshold int) []AgendaEntry {
	agenda := DailyAgenda(classes, day)
	entries := make([]AgendaEntry, 0, len(agenda))
	for i, s := range agenda {
		entry := AgendaEntry{Session: s}
		if i+1 < len(agenda) {
			gap := BreakBetween(s, agenda[i+1])
			entry.GapAfter = &gap
			entry.IsBreak = IsBreak(gap, threshold)
		}
		entries = append(entries, entry)
	}
	return entries
}

// DailyTeachers 按日程顺序对 teacherInitial 去重，首次出现者保留
func DailyTeachers(agenda []ClassSession) []TeacherSummary {
	return uniqueTeachers(agenda)
}

// Teachers 全周教师列表，去重规则同 DailyTeachers
func Teachers(classes []ClassSession) []TeacherSummary {
	return uniqueTeachers(classes)
}

func uniqueTeachers(classes []ClassSession) []TeacherSummary {
	seen := make(map[string]bool)
	teachers := make([]TeacherSummary, 0)
	for _, c := range classes {
		if seen[c.TeacherInitial] {
			continue
		}
		seen[c.TeacherInitial] = true
		teachers = append(teachers, TeacherSummary{
			Initial: c.TeacherInitial,
			Name:    c.Teacher,
			Photo:   c.TeacherPhoto,
		})
	}
	return teachers
}

// ════════════════════════════════════════════════════════════
// 周视图
// ════════════════════════════════════════════════════════════

// GridRow 周网格中的一天；Cells[i] 对应 WeeklyGrid.Slots[i]
type GridRow struct {
	Day   Day
	Cells [][]ClassSession
}

// WeeklyGrid 天 × 时间段
type WeeklyGrid struct {
	Slots []TimeSlot
	Rows  []GridRow
}

// BuildWeeklyGrid 将课程按 (天, 时间段) 分桶
//
// 课程开始时间须与时间段起点完全一致才会落入单元格；
// 不在任何时间段起点开始的课程不出现在网格中（见 OffGrid）。
func BuildWeeklyGrid(classes []ClassSession, slots []TimeSlot, offDay Day) WeeklyGrid {
	slotStarts := make([]*Clock, len(slots))
	for i, sl := range slots {
		if c, err := ParseClock(sl.Start); err == nil {
			slotStarts[i] = &c
		}
	}

	grid := WeeklyGrid{Slots: append([]TimeSlot(nil), slots...)}
	for _, day := range Days {
		if day == offDay {
			continue
		}
		row := GridRow{Day: day, Cells: make([][]ClassSession, len(slots))}
		for i := range row.Cells {
			row.Cells[i] = make([]ClassSession, 0)
		}
		for _, c := range classes {
			if c.Day != day {
				continue
			}
			start, ok := c.Start()
			if !ok {
				continue
			}
			for i, ss := range slotStarts {
				if ss != nil && *ss == start {
					row.Cells[i] = append(row.Cells[i], c)
					break
				}
			}
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// OffGrid 返回非休息日中开始时间不落在任何时间段起点的课程
func OffGrid(classes []ClassSession, slots []TimeSlot, offDay Day) []ClassSession {
	starts := make(map[Clock]bool, len(slots))
	for _, sl := range slots {
		if c, err := ParseClock(sl.Start); err == nil {
			starts[c] = true
		}
	}
	out := make([]ClassSession, 0)
	for _, c := range classes {
		if c.Day == offDay {
			continue
		}
		start, ok := c.Start()
		if !ok || !starts[start] {
			out = append(out, c)
		}
	}
	return out
}

// DayCount 某天的课程数
type DayCount struct {
	Day   Day `json:"day"`
	Count int `json:"count"`
}

// DayCounts 按规范顺序统计每天课程数（排除休息日）
func DayCounts(classes []ClassSession, offDay Day) []DayCount {
	counts := make(map[Day]int)
	for _, c := range classes {
		counts[c.Day]++
	}
	out := make([]DayCount, 0, len(Days))
	for _, d := range Days {
		if d == offDay {
			continue
		}
		out = append(out, DayCount{Day: d, Count: counts[d]})
	}
	return out
}

// BusiestDay 课程最多的一天；并列时取规范顺序中靠前者。全周无课时 ok=false
func BusiestDay(counts []DayCount) (DayCount, bool) {
	best := DayCount{}
	for _, c := range counts {
		if c.Count > best.Count {
			best = c
		}
	}
	return best, best.Count > 0
}

// LightestDay 有课的日子中课程最少的一天；并列时取规范顺序中靠前者
func LightestDay(counts []DayCount) (DayCount, bool) {
	best, ok := BusiestDay(counts)
	if !ok {
		return DayCount{}, false
	}
	for _, c := range counts {
		if c.Count > 0 && c.Count < best.Count {
			best = c
		}
	}
	return best, true
}

// WeeklySummary 周统计
type WeeklySummary struct {
	Total    int
	Counts   []DayCount
	Busiest  *DayCount
	Lightest *DayCount
}

// Summarize 生成周统计
func Summarize(classes []ClassSession, offDay Day) WeeklySummary {
	counts := DayCounts(classes, offDay)
	summary := WeeklySummary{Total: len(classes), Counts: counts}
	if b, ok := BusiestDay(counts); ok {
		summary.Busiest = &b
	}
	if l, ok := LightestDay(counts); ok {
		summary.Lightest = &l
	}
	return summary
}

// UniqueCourses 按 code 去重，课程名取第一条记录的 subject
func UniqueCourses(classes []ClassSession) []Course {
	seen := make(map[string]bool)
	courses := make([]Course, 0)
	for _, c := range classes {
		if seen[c.Code] {
			continue
		}
		seen[c.Code] = true
		name := c.Subject
		if name == "" {
			name = "Unknown"
		}
		courses = append(courses, Course{Code: c.Code, Name: name})
	}
	return courses
}
