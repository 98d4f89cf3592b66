package schedule

import (
	"strings"
	"time"
)

// Day 星期（英文全称，与远程 routine.day 列一致）
type Day string

const (
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

// Days 学校教学周的规范顺序：周六为一周第一天
var Days = []Day{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayToDay = map[time.Weekday]Day{
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
}

// Index 返回在规范顺序中的位置；未知值返回 -1
func (d Day) Index() int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid 是否为七个合法星期之一
func (d Day) Valid() bool { return d.Index() >= 0 }

// Short 三字母缩写，如 Sat
func (d Day) Short() string {
	if len(d) < 3 {
		return string(d)
	}
	return string(d[:3])
}

// ParseDay 宽松解析星期：忽略大小写与首尾空白，接受至少三个字母的前缀（sat / Satur）
func ParseDay(s string) (Day, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return "", false
	}
	for _, d := range Days {
		if strings.HasPrefix(strings.ToLower(string(d)), s) {
			return d, true
		}
	}
	return "", false
}

// Today 返回 now 所在时区的当天星期
func Today(now time.Time) Day {
	return weekdayToDay[now.Weekday()]
}
