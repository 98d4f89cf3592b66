package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidClock 时间格式非法
var ErrInvalidClock = errors.New("时间格式应为 HH:MM")

// Clock 当天零点起的分钟数
//
// 所有排序与间隔计算都基于 Clock，不依赖 "HH:MM" 字符串的字典序。
type Clock int

// ParseClock 解析 "H:MM"、"HH:MM" 或 "HH:MM:SS"（秒被忽略）
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(h*60 + m), nil
}

// String 格式化为 "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Format12h 12 小时制显示：("8:30", "AM")
func (c Clock) Format12h() (string, string) {
	h, m := int(c)/60, int(c)%60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d", display, m), period
}

// TruncateHHMM 截取远程 TIME 列的前五位（"08:30:00" → "08:30"），空值回退为 "00:00"
func TruncateHHMM(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		s = s[:5]
	}
	if s == "" {
		return "00:00"
	}
	return s
}
