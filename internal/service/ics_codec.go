package service

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"routine-hub/backend/internal/extractor"
	"routine-hub/backend/internal/schedule"
)

// ── iCalendar 编解码 ────────────────────────────────────────
//
// 导出：每节课一个每周重复（RRULE:FREQ=WEEKLY）的 VEVENT，锚定在当前教学周。
// 课程字段写入 X-ROUTINE-* 扩展属性，导入时优先读取，缺失时回退到 SUMMARY/LOCATION。
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize = 5 * 1024 * 1024 // 5MB

	propCode           = "X-ROUTINE-CODE"
	propTeacher        = "X-ROUTINE-TEACHER"
	propTeacherInitial = "X-ROUTINE-TEACHER-INITIAL"
	propSection        = "X-ROUTINE-SECTION"
	propSubSection     = "X-ROUTINE-SUB-SECTION"
	propType           = "X-ROUTINE-TYPE"
	propCredits        = "X-ROUTINE-CREDITS"
)

// "Data Structure (CSE123)"
var summaryCodePattern = regexp.MustCompile(`^(.*?)\s*\(([^()]+)\)\s*$`)

// weekAnchor 返回 now 所在教学周的第一天（周六）零点
func weekAnchor(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	offset := schedule.Today(now).Index()
	return midnight.AddDate(0, 0, -offset)
}

// EncodeICS 生成每周重复的课表日历
func EncodeICS(classes []schedule.ClassSession, meta *schedule.RoutineMetadata, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//routine-hub//routine export//EN")
	cal.SetXWRTimezone(now.Location().String())
	name := "Class Routine"
	if meta != nil {
		name = fmt.Sprintf("Class Routine %s_%s (v%s)", meta.Batch, meta.Section, meta.Version)
	}
	cal.SetXWRCalName(name)

	anchor := weekAnchor(now)
	for _, s := range classes {
		idx := s.Day.Index()
		start, okStart := s.Start()
		end, okEnd := s.End()
		if idx < 0 || !okStart || !okEnd {
			continue
		}
		date := anchor.AddDate(0, 0, idx)

		event := cal.AddEvent(fmt.Sprintf("routine-%s@routine-hub", s.ID))
		event.SetDtStampTime(now)
		event.SetStartAt(date.Add(time.Duration(start) * time.Minute))
		event.SetEndAt(date.Add(time.Duration(end) * time.Minute))
		event.AddRrule("FREQ=WEEKLY")
		event.SetSummary(fmt.Sprintf("%s (%s)", s.Subject, s.Code))
		event.SetLocation(s.Room)
		event.SetDescription(describeSession(s))

		event.SetProperty(ics.ComponentProperty(propCode), s.Code)
		event.SetProperty(ics.ComponentProperty(propTeacher), s.Teacher)
		event.SetProperty(ics.ComponentProperty(propTeacherInitial), s.TeacherInitial)
		event.SetProperty(ics.ComponentProperty(propSection), s.Section)
		if s.SubSection != "" {
			event.SetProperty(ics.ComponentProperty(propSubSection), s.SubSection)
		}
		if s.Type != "" {
			event.SetProperty(ics.ComponentProperty(propType), string(s.Type))
		}
		if s.Credits != nil {
			event.SetProperty(ics.ComponentProperty(propCredits), strconv.FormatFloat(*s.Credits, 'f', -1, 64))
		}
	}
	return cal.Serialize()
}

func describeSession(s schedule.ClassSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Teacher: %s (%s)", s.Teacher, s.TeacherInitial)
	section := s.Section
	if s.SubSection != "" {
		section += " / " + s.SubSection
	}
	fmt.Fprintf(&b, "\nSection: %s", section)
	if s.Type != "" {
		fmt.Fprintf(&b, "\nType: %s", s.Type)
	}
	return b.String()
}

// DecodeICS 将日历事件还原为导入行
// 同一课程按周展开的多个单独事件会被合并；不同班级、教室或课程代码的同时段课程各自保留
func DecodeICS(reader io.Reader, loc *time.Location) ([]extractor.Row, error) {
	if loc == nil {
		loc = time.UTC
	}
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	type key struct {
		subject, code, day, start, end, room, section, sub string
	}
	seen := make(map[key]bool)
	rows := make([]extractor.Row, 0)

	for _, evt := range cal.Events() {
		row, ok := decodeVEvent(evt, loc)
		if !ok {
			continue
		}
		sub := ""
		if row.SubSection != nil {
			sub = *row.SubSection
		}
		k := key{row.Subject, row.Code, row.Day, row.StartTime, row.EndTime, row.Room, row.Section, sub}
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeVEvent(evt *ics.VEvent, loc *time.Location) (extractor.Row, bool) {
	summary := propValue(evt, ics.ComponentPropertySummary)
	if summary == "" {
		return extractor.Row{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return extractor.Row{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		return extractor.Row{}, false
	}

	subject, code := summary, ""
	if m := summaryCodePattern.FindStringSubmatch(summary); len(m) == 3 {
		subject, code = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if v := propValue(evt, ics.ComponentProperty(propCode)); v != "" {
		code = v
	}

	row := extractor.Row{
		Subject:        subject,
		Code:           code,
		Teacher:        propValue(evt, ics.ComponentProperty(propTeacher)),
		TeacherInitial: propValue(evt, ics.ComponentProperty(propTeacherInitial)),
		StartTime:      dtStart.Format("15:04"),
		EndTime:        dtEnd.Format("15:04"),
		Room:           propValue(evt, ics.ComponentPropertyLocation),
		Day:            string(schedule.Today(dtStart)),
		Type:           propValue(evt, ics.ComponentProperty(propType)),
		Section:        propValue(evt, ics.ComponentProperty(propSection)),
	}
	if v := propValue(evt, ics.ComponentProperty(propSubSection)); v != "" {
		row.SubSection = &v
	}
	if v := propValue(evt, ics.ComponentProperty(propCredits)); v != "" {
		if credits, err := strconv.ParseFloat(v, 64); err == nil {
			row.Credits = &credits
		}
	}
	return row, true
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	prop := evt.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

// parseICSDateTime 解析 DTSTART/DTEND：UTC、带 TZID 的本地时间或浮动时间
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), nil
	}

	target := loc
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if tz, err := time.LoadLocation(v[0]); err == nil {
				target = tz
			}
		}
	}
	t, err := time.ParseInLocation("20060102T150405", val, target)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析时间 %q: %w", val, err)
	}
	return t.In(loc), nil
}
