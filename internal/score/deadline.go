package score

import (
	"fmt"
	"regexp"
	"time"
)

// --- 起床截止时间策略 ---
//
// 起床打卡的有效窗口是当天本地时间的 [00:00:00, 05:00:00)。
// 05:00:00 及之后的提交仍会被存储，但不再有资格获得起床分。
// 资格判定在提交时刻完成并冻结到记录上，之后的重算一律使用
// 冻结的结果，保证分数不随重算时间漂移。

// WakeupDeadlineHour 是起床打卡截止的小时（本地时间，不含）。
const WakeupDeadlineHour = 5

// loc 是计分使用的时区，由启动阶段根据配置注入。
var loc = time.UTC

// SetLocation 设置计分时区。必须在处理任何请求之前调用。
func SetLocation(l *time.Location) {
	if l != nil {
		loc = l
	}
}

// Location 返回当前计分时区。
func Location() *time.Location {
	return loc
}

// IsWakeupEligible 判断一次提交是否在起床截止时间之前。
// 仅比较提交时刻在计分时区下的时钟部分：04:59:59.999 有效，05:00:00 无效。
func IsWakeupEligible(submittedAt time.Time) bool {
	return submittedAt.In(loc).Hour() < WakeupDeadlineHour
}

// IsPlanningEligible 判断一次计划提交是否有效。
// 计划记录在当天任意时刻提交都有效，不受起床截止时间约束。
func IsPlanningEligible(submittedAt time.Time) bool {
	return true
}

// --- 日期键与月份键 ---

var (
	dayKeyPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// DayKey 把时间格式化为 "YYYY-MM-DD" 形式的日期键（计分时区）。
func DayKey(t time.Time) string {
	return t.In(loc).Format("2006-01-02")
}

// MonthKey 把时间格式化为 "YYYY-MM" 形式的月份键（计分时区）。
func MonthKey(t time.Time) string {
	return t.In(loc).Format("2006-01")
}

// MonthOfDay 从日期键中截取月份键。
func MonthOfDay(dayKey string) string {
	if len(dayKey) < 7 {
		return dayKey
	}
	return dayKey[:7]
}

// ParseDayKey 校验并解析 "YYYY-MM-DD" 日期键。
func ParseDayKey(dayKey string) (time.Time, error) {
	if !dayKeyPattern.MatchString(dayKey) {
		return time.Time{}, fmt.Errorf("日期格式必须为YYYY-MM-DD: %q", dayKey)
	}
	t, err := time.ParseInLocation("2006-01-02", dayKey, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q: %w", dayKey, err)
	}
	return t, nil
}

// ParseMonthKey 校验并解析 "YYYY-MM" 月份键，返回该月第一天。
func ParseMonthKey(monthKey string) (time.Time, error) {
	if !monthKeyPattern.MatchString(monthKey) {
		return time.Time{}, fmt.Errorf("月份格式必须为YYYY-MM: %q", monthKey)
	}
	t, err := time.ParseInLocation("2006-01", monthKey, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的月份 %q: %w", monthKey, err)
	}
	return t, nil
}

// DaysInMonth 返回月份键对应月份的天数（闰年二月为29天）。
func DaysInMonth(monthKey string) (int, error) {
	first, err := ParseMonthKey(monthKey)
	if err != nil {
		return 0, err
	}
	return first.AddDate(0, 1, -1).Day(), nil
}
