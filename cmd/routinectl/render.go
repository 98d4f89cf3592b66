package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/schedule"
)

var (
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGray   = lipgloss.Color("#666666")
	colorGreen  = lipgloss.Color("#00FF00")
	colorYellow = lipgloss.Color("#FFFF00")
	colorRed    = lipgloss.Color("#FF0000")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	dimStyle     = lipgloss.NewStyle().Foreground(colorGray)
	okStyle      = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	breakStyle   = lipgloss.NewStyle().Foreground(colorYellow)
	warnStyle    = lipgloss.NewStyle().Foreground(colorRed)
	timeStyle    = lipgloss.NewStyle().Bold(true).Width(9)
	welcomeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
)

// renderStatus 版本提示与同步时间
func renderStatus(state *dto.StateResponse) string {
	var b strings.Builder
	if state.ShowWelcome && state.WelcomeMsg != "" {
		b.WriteString(welcomeStyle.Render(state.WelcomeMsg))
		b.WriteString("\n")
	}
	if state.Metadata != nil {
		line := fmt.Sprintf("%s_%s · v%s · updated %s",
			state.Metadata.Batch, state.Metadata.Section, state.Metadata.Version, state.Metadata.LastUpdated)
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// renderDaily 日程：时间、课程、教室、与下一节的间隔
func renderDaily(resp *dto.DailyResponse) string {
	var b strings.Builder
	title := string(resp.Day)
	if resp.IsToday {
		title += " (today)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if resp.Count == 0 {
		msg := "No classes."
		if resp.IsOffDay {
			msg = "Off day. No classes."
		}
		b.WriteString(dimStyle.Render(msg))
		b.WriteString("\n")
		return b.String()
	}

	for _, item := range resp.Classes {
		start := strings.TrimSpace(item.DisplayStart + " " + item.StartPeriod)
		end := strings.TrimSpace(item.DisplayEnd + " " + item.EndPeriod)
		b.WriteString(timeStyle.Render(start))
		fmt.Fprintf(&b, "%s (%s)", item.Subject, item.Code)
		if item.SubSection != "" {
			fmt.Fprintf(&b, " [%s]", item.SubSection)
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%9s%s · %s · until %s", "", item.TeacherInitial, item.Room, end)))
		b.WriteString("\n")
		if item.GapAfterMinutes != nil && item.IsBreak {
			b.WriteString(breakStyle.Render(fmt.Sprintf("%9s%d min break", "", *item.GapAfterMinutes)))
			b.WriteString("\n")
		}
	}

	if len(resp.Teachers) > 0 {
		initials := make([]string, 0, len(resp.Teachers))
		for _, t := range resp.Teachers {
			initials = append(initials, t.Initial)
		}
		b.WriteString(dimStyle.Render("Teachers: " + strings.Join(initials, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

// renderWeekly 周网格表格与统计
func renderWeekly(resp *dto.WeeklyResponse) string {
	headers := []string{"Day"}
	for _, s := range resp.Slots {
		headers = append(headers, s.Label)
	}

	rows := make([][]string, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		row := []string{r.Day.Short()}
		for _, cell := range r.Cells {
			row = append(row, gridCell(cell))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...)

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total: %d · Busiest: %s · Lightest: %s\n",
		resp.Total, dayCount(resp.Busiest), dayCount(resp.Lightest))
	if resp.OffGrid > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d class(es) start outside the time slots and are not shown.", resp.OffGrid)))
		b.WriteString("\n")
	}
	return b.String()
}

func gridCell(sessions []schedule.ClassSession) string {
	if len(sessions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(sessions))
	for _, s := range sessions {
		p := s.Code + " " + s.Room
		if s.SubSection != "" {
			p += " " + s.SubSection
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "\n")
}

func dayCount(dc *schedule.DayCount) string {
	if dc == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%d)", dc.Day, dc.Count)
}

func renderCourses(resp *dto.CoursesResponse) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d courses", resp.Total)))
	b.WriteString("\n")
	for _, c := range resp.Courses {
		fmt.Fprintf(&b, "%-10s %s\n", c.Code, c.Name)
	}
	return b.String()
}

func renderTeachers(resp *dto.TeachersResponse) string {
	var b strings.Builder
	title := "Teachers"
	if resp.Day != "" {
		title += " on " + string(resp.Day)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, t := range resp.Teachers {
		fmt.Fprintf(&b, "%-6s %s\n", t.Initial, t.Name)
	}
	return b.String()
}

func renderImport(resp *dto.ImportResponse) string {
	var b strings.Builder
	b.WriteString(okStyle.Render(resp.Message))
	b.WriteString("\n")
	for _, r := range resp.Rows {
		fmt.Fprintf(&b, "%-9s %s-%s  %s (%s) %s\n", r.Day, r.StartTime, r.EndTime, r.Subject, r.Code, r.Room)
	}
	return b.String()
}
