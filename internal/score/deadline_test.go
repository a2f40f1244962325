package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestIsWakeupEligibleBoundary(t *testing.T) {
	loc := seoul(t)
	SetLocation(loc)
	defer SetLocation(time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"午夜整点", time.Date(2025, 9, 10, 0, 0, 0, 0, loc), true},
		{"凌晨四点半", time.Date(2025, 9, 10, 4, 30, 0, 0, loc), true},
		{"截止前最后一毫秒", time.Date(2025, 9, 10, 4, 59, 59, 999000000, loc), true},
		{"五点整", time.Date(2025, 9, 10, 5, 0, 0, 0, loc), false},
		{"五点十分", time.Date(2025, 9, 10, 5, 10, 0, 0, loc), false},
		{"深夜", time.Date(2025, 9, 10, 23, 30, 0, 0, loc), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsWakeupEligible(tt.at))
		})
	}
}

func TestIsWakeupEligibleUsesConfiguredZone(t *testing.T) {
	loc := seoul(t)
	SetLocation(loc)
	defer SetLocation(time.UTC)

	// UTC 19:30 是首尔时间次日凌晨4:30，应当有效
	at := time.Date(2025, 9, 9, 19, 30, 0, 0, time.UTC)
	require.True(t, IsWakeupEligible(at))

	// UTC 20:00 是首尔时间次日凌晨5:00，应当无效
	at = time.Date(2025, 9, 9, 20, 0, 0, 0, time.UTC)
	require.False(t, IsWakeupEligible(at))
}

func TestDayAndMonthKeys(t *testing.T) {
	SetLocation(time.UTC)
	at := time.Date(2025, 9, 10, 4, 30, 0, 0, time.UTC)

	require.Equal(t, "2025-09-10", DayKey(at))
	require.Equal(t, "2025-09", MonthKey(at))
	require.Equal(t, "2025-09", MonthOfDay("2025-09-10"))
}

func TestParseDayKey(t *testing.T) {
	SetLocation(time.UTC)

	parsed, err := ParseDayKey("2025-09-10")
	require.NoError(t, err)
	require.Equal(t, "2025-09-10", DayKey(parsed))

	for _, bad := range []string{"", "2025-9-1", "20250910", "2025-13-01", "not-a-date"} {
		_, err := ParseDayKey(bad)
		require.Error(t, err, "输入: %q", bad)
	}
}

func TestDaysInMonth(t *testing.T) {
	SetLocation(time.UTC)

	tests := []struct {
		month string
		want  int
	}{
		{"2025-09", 30},
		{"2025-10", 31},
		{"2025-02", 28},
		{"2024-02", 29}, // 闰年
	}
	for _, tt := range tests {
		days, err := DaysInMonth(tt.month)
		require.NoError(t, err)
		require.Equal(t, tt.want, days, "月份: %s", tt.month)
	}

	_, err := DaysInMonth("2025-9")
	require.Error(t, err)
}
