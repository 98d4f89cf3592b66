package dto

import "routine-hub/backend/internal/schedule"

// ── 管理端 DTO ──

// CreateClassRequest 新增一节课
//
// start_time / end_time / day / type 缺省时分别为 08:30、10:00、Sunday、Lecture
type CreateClassRequest struct {
	Subject        string   `json:"subject"         binding:"required,max=200"`
	Code           string   `json:"code"            binding:"required,max=50"`
	Teacher        string   `json:"teacher"         binding:"required,max=200"`
	TeacherInitial string   `json:"teacher_initial" binding:"required,max=20"`
	TeacherPhoto   string   `json:"teacher_photo"   binding:"omitempty,url"`
	StartTime      string   `json:"start_time"      binding:"omitempty,hhmm"`
	EndTime        string   `json:"end_time"        binding:"omitempty,hhmm"`
	Room           string   `json:"room"            binding:"required,max=100"`
	Day            string   `json:"day"             binding:"omitempty,weekday"`
	Type           string   `json:"type"            binding:"omitempty,oneof=Lecture Lab Workshop"`
	Section        string   `json:"section"         binding:"omitempty,max=20"`
	SubSection     string   `json:"sub_section"     binding:"omitempty,max=20"`
	Credits        *float64 `json:"credits"         binding:"omitempty,gte=0"`
}

// CreateClassResponse 新增结果
type CreateClassResponse struct {
	ID      int64                 `json:"id"`
	Session schedule.ClassSession `json:"session"`
}

// PublishMetadataRequest 发布新的元数据版本
type PublishMetadataRequest struct {
	Batch          string `json:"batch"            binding:"required,max=20"`
	Section        string `json:"section"          binding:"required,max=20"`
	Version        string `json:"version"          binding:"required,max=50"`
	WelcomeMsg     string `json:"welcome_msg"`
	TotalCourses   int    `json:"total_courses"    binding:"gte=0"`
	ClassesPerWeek int    `json:"classes_per_week" binding:"gte=0"`
}

// PublishMetadataResponse 发布结果
type PublishMetadataResponse struct {
	ID       int64                    `json:"id"`
	Metadata schedule.RoutineMetadata `json:"metadata"`
}

// ── AI 导入 DTO ──

// ImportRequest 粘贴文本导入
type ImportRequest struct {
	Text   string `json:"text"    binding:"required"`
	DryRun bool   `json:"dry_run"`
}

// ImportRowResponse 一行抽取结果
type ImportRowResponse struct {
	Subject        string   `json:"subject"`
	Code           string   `json:"code"`
	Teacher        string   `json:"teacher"`
	TeacherInitial string   `json:"teacher_initial"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	Room           string   `json:"room"`
	Day            string   `json:"day"`
	Type           string   `json:"type,omitempty"`
	Section        string   `json:"section"`
	SubSection     *string  `json:"sub_section"`
	Credits        *float64 `json:"credits,omitempty"`
}

// ImportResponse 导入结果
type ImportResponse struct {
	DryRun   bool                `json:"dry_run"`
	Source   string              `json:"source"` // text | ics
	Inserted int                 `json:"inserted"`
	Rows     []ImportRowResponse `json:"rows"`
	Message  string              `json:"message"`
}
