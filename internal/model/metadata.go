package model

import "time"

// Metadata 课表版本描述表 — 对应 metadata
// 只追加不更新：最新一行（按 id 倒序）即当前版本
type Metadata struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Batch          *string    `gorm:"type:varchar(20)"          json:"batch,omitempty"`
	Section        *string    `gorm:"type:varchar(20)"          json:"section,omitempty"`
	TotalCourses   *int       `gorm:"type:integer"              json:"total_courses,omitempty"`
	Version        *string    `gorm:"type:varchar(50)"          json:"version,omitempty"`
	ClassesPerWeek *int       `gorm:"type:integer"              json:"classes_per_week,omitempty"`
	LastUpdated    *time.Time `gorm:"type:timestamptz"          json:"last_updated,omitempty"`
	WelcomeMsg     *string    `gorm:"type:text"                 json:"welcome_msg,omitempty"`
}

// TableName 指定表名
func (Metadata) TableName() string { return "metadata" }
