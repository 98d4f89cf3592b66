package model

// Routine 课程安排表 — 对应 routine
// 可空列使用指针，归一化在同步控制器中完成
type Routine struct {
	ID             int64    `gorm:"primaryKey;autoIncrement"          json:"id"`
	Subject        string   `gorm:"type:varchar(200);not null"        json:"subject"`
	Code           string   `gorm:"type:varchar(50);not null"         json:"code"`
	Teacher        string   `gorm:"type:varchar(200);not null"        json:"teacher"`
	TeacherInitial string   `gorm:"type:varchar(20);not null"         json:"teacher_initial"`
	TeacherPhoto   *string  `gorm:"type:text"                         json:"teacher_photo,omitempty"`
	StartTime      string   `gorm:"type:time;not null"                json:"start_time"` // 08:30:00
	EndTime        string   `gorm:"type:time;not null"                json:"end_time"`
	Room           string   `gorm:"type:varchar(100);not null"        json:"room"`
	Day            string   `gorm:"type:varchar(10);not null"         json:"day"` // Saturday … Friday
	Section        string   `gorm:"type:varchar(20);not null"         json:"section"`
	SubSection     *string  `gorm:"type:varchar(20)"                  json:"sub_section,omitempty"` // F1 | F2
	Type           *string  `gorm:"type:varchar(20)"                  json:"type,omitempty"`        // Lecture | Lab | Workshop
	Credits        *float64 `gorm:"type:numeric(4,1)"                 json:"credits,omitempty"`
}

// TableName 指定表名
func (Routine) TableName() string { return "routine" }
