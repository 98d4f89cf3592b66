// Package schedule 课表领域模型与纯函数派生视图（日程、间隔、周网格、统计）。
// 包内不做任何 I/O，可在每次渲染时重复计算。
package schedule

// SessionType 课程类型，仅影响展示
type SessionType string

const (
	Lecture  SessionType = "Lecture"
	Lab      SessionType = "Lab"
	Workshop SessionType = "Workshop"
)

// ClassSession 一次排定的课程
// JSON 字段即本地缓存的序列化格式
type ClassSession struct {
	ID             string      `json:"id"`
	Subject        string      `json:"subject"`
	Code           string      `json:"code"`
	Teacher        string      `json:"teacher"`
	TeacherInitial string      `json:"teacherInitial"`
	TeacherPhoto   string      `json:"teacherPhoto,omitempty"`
	StartTime      string      `json:"startTime"`
	EndTime        string      `json:"endTime"`
	Room           string      `json:"room"`
	Day            Day         `json:"day"`
	Section        string      `json:"section"`
	SubSection     string      `json:"subSection,omitempty"`
	Type           SessionType `json:"type,omitempty"`
	Credits        *float64    `json:"credits,omitempty"`
}

// Start 开始时间；无法解析时 ok=false
func (s ClassSession) Start() (Clock, bool) {
	c, err := ParseClock(s.StartTime)
	return c, err == nil
}

// End 结束时间；无法解析时 ok=false
func (s ClassSession) End() (Clock, bool) {
	c, err := ParseClock(s.EndTime)
	return c, err == nil
}

// Clone 深拷贝
func (s ClassSession) Clone() ClassSession {
	if s.Credits != nil {
		v := *s.Credits
		s.Credits = &v
	}
	return s
}

// CloneSessions 深拷贝切片，nil 输入返回空切片
func CloneSessions(in []ClassSession) []ClassSession {
	out := make([]ClassSession, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

// RoutineMetadata 当前课表版本描述
type RoutineMetadata struct {
	Batch          string `json:"batch"`
	Section        string `json:"section"`
	TotalCourses   int    `json:"totalCourses"`
	Version        string `json:"version"` // 不透明字符串，仅比较相等
	ClassesPerWeek int    `json:"classesPerWeek"`
	LastUpdated    string `json:"lastUpdated"`
	WelcomeMsg     string `json:"welcomeMsg,omitempty"`
}

// TeacherSummary 教师简要信息
type TeacherSummary struct {
	Initial string `json:"initial"`
	Name    string `json:"name"`
	Photo   string `json:"photo,omitempty"`
}

// Course 课程（按 code 去重）
type Course struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TimeSlot 周视图的一个时间段边界
type TimeSlot struct {
	Label string `json:"label"`
	Start string `json:"start"`
}
