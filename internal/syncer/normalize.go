package syncer

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"routine-hub/backend/config"
	"routine-hub/backend/internal/model"
	"routine-hub/backend/internal/schedule"
)

// lastUpdated 的展示格式（月/日/年）
const lastUpdatedLayout = "1/2/2006"

// Defaults 远程记录缺失字段时的回退值
type Defaults struct {
	Batch            string
	Section          string
	Version          string
	WelcomeMsg       string
	PhotoURLTemplate string // 含一个 %s，填入教师缩写或姓名
	Location         *time.Location
}

// DefaultsFromConfig 由课表配置构建回退值；时区非法时使用 UTC
func DefaultsFromConfig(cfg *config.RoutineConfig) Defaults {
	loc := time.UTC
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		}
	}
	return Defaults{
		Batch:            cfg.DefaultBatch,
		Section:          cfg.DefaultSection,
		Version:          cfg.DefaultVersion,
		WelcomeMsg:       cfg.WelcomeFallback,
		PhotoURLTemplate: cfg.PhotoURLTemplate,
		Location:         loc,
	}
}

// NormalizeMetadata 用默认值补齐元数据
func NormalizeMetadata(row *model.Metadata, d Defaults) schedule.RoutineMetadata {
	meta := schedule.RoutineMetadata{
		Batch:          orDefault(row.Batch, d.Batch),
		Section:        orDefault(row.Section, d.Section),
		Version:        orDefault(row.Version, d.Version),
		WelcomeMsg:     orDefault(row.WelcomeMsg, d.WelcomeMsg),
		TotalCourses:   intOrZero(row.TotalCourses),
		ClassesPerWeek: intOrZero(row.ClassesPerWeek),
		LastUpdated:    "N/A",
	}
	if row.LastUpdated != nil {
		loc := d.Location
		if loc == nil {
			loc = time.UTC
		}
		meta.LastUpdated = row.LastUpdated.In(loc).Format(lastUpdatedLayout)
	}
	return meta
}

// NormalizeSession 将远程行转换为 ClassSession
func NormalizeSession(row model.Routine, d Defaults) schedule.ClassSession {
	s := schedule.ClassSession{
		ID:             strconv.FormatInt(row.ID, 10),
		Subject:        row.Subject,
		Code:           row.Code,
		Teacher:        row.Teacher,
		TeacherInitial: row.TeacherInitial,
		StartTime:      schedule.TruncateHHMM(row.StartTime),
		EndTime:        schedule.TruncateHHMM(row.EndTime),
		Room:           row.Room,
		Day:            schedule.Day(row.Day),
		Section:        row.Section,
		Credits:        row.Credits,
	}
	if row.SubSection != nil {
		s.SubSection = *row.SubSection
	}
	if row.Type != nil {
		s.Type = schedule.SessionType(*row.Type)
	}
	if row.TeacherPhoto != nil && strings.TrimSpace(*row.TeacherPhoto) != "" {
		s.TeacherPhoto = *row.TeacherPhoto
	} else {
		s.TeacherPhoto = PlaceholderPhoto(d.PhotoURLTemplate, row.TeacherInitial, row.Teacher)
	}
	return s
}

// NormalizeSessions 批量转换
func NormalizeSessions(rows []model.Routine, d Defaults) []schedule.ClassSession {
	out := make([]schedule.ClassSession, 0, len(rows))
	for _, r := range rows {
		out = append(out, NormalizeSession(r, d))
	}
	return out
}

// PlaceholderPhoto 生成头像占位 URL，优先使用教师缩写
func PlaceholderPhoto(template, initial, name string) string {
	seed := initial
	if seed == "" {
		seed = name
	}
	if template == "" {
		return ""
	}
	return fmt.Sprintf(template, url.QueryEscape(seed))
}

func orDefault(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
