package record

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/config"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// 测试不依赖Redis，标记为不可用让所有缓存写入走跳过分支
	database.UpdateStatus(false, "")
	database.InitDB(config.SqliteConfig{Path: ":memory:"})
	if err := database.DB.AutoMigrate(&member.Member{}, &WakeupRecord{}, &PlanningRecord{}); err != nil {
		panic(err)
	}
	score.SetLocation(time.UTC)
	os.Exit(m.Run())
}

var memberSeq int

// newTestMember 为每个测试创建一个独立的成员，避免测试间的数据干扰
func newTestMember(t *testing.T) string {
	t.Helper()
	memberSeq++
	code := fmt.Sprintf("T%03d", memberSeq)
	_, err := member.CreateMember(code, "测试成员"+code, false)
	require.NoError(t, err)
	return code
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 9, 10, hour, minute, 0, 0, time.UTC)
}

func TestUpsertWakeupEligibleBeforeDeadline(t *testing.T) {
	code := newTestMember(t)

	rec, err := UpsertWakeupRecord(code, "2025-09-10", score.StatusSuccess, "", at(4, 30))
	require.NoError(t, err)
	require.True(t, rec.Eligible)

	b, err := ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, 1, b.Wakeup)
}

func TestUpsertWakeupOverwriteInvalidatesCredit(t *testing.T) {
	code := newTestMember(t)

	_, err := UpsertWakeupRecord(code, "2025-09-10", score.StatusSuccess, "", at(4, 30))
	require.NoError(t, err)

	// 同一天在5:10再次提交，覆盖后按新的提交时刻判定资格
	rec, err := UpsertWakeupRecord(code, "2025-09-10", score.StatusSuccess, "", at(5, 10))
	require.NoError(t, err)
	require.False(t, rec.Eligible)

	b, err := ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, 0, b.Wakeup)

	// 覆盖是upsert，不产生重复行
	var count int64
	require.NoError(t, database.DB.Model(&WakeupRecord{}).
		Where("member_code = ? AND date = ?", code, "2025-09-10").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUpsertWakeupIdempotent(t *testing.T) {
	code := newTestMember(t)

	for i := 0; i < 3; i++ {
		_, err := UpsertWakeupRecord(code, "2025-09-10", score.StatusSuccess, "", at(4, 30))
		require.NoError(t, err)
	}

	b, err := ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, 1, b.Total)
}

func TestUpsertWakeupValidation(t *testing.T) {
	code := newTestMember(t)

	_, err := UpsertWakeupRecord("NOBODY", "2025-09-10", score.StatusSuccess, "", at(4, 30))
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = UpsertWakeupRecord(code, "2025/09/10", score.StatusSuccess, "", at(4, 30))
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = UpsertWakeupRecord(code, "2025-09-10", "overslept", "", at(4, 30))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPlanningScoring(t *testing.T) {
	code := newTestMember(t)

	// 只填了一条优先任务、青蛙任务全空的一天得1分
	_, err := UpsertPlanningRecord(code, "2025-09-10",
		[]string{"buy milk", "", "", "", ""}, []string{"", "", ""}, "", at(9, 0))
	require.NoError(t, err)

	b, err := ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, score.Breakdown{Wakeup: 0, Priorities: 1, Frogs: 0, Total: 1}, b)
}

func TestPlanningValidation(t *testing.T) {
	code := newTestMember(t)

	_, err := UpsertPlanningRecord(code, "2025-09-10",
		[]string{"1", "2", "3", "4", "5", "6"}, nil, "", at(9, 0))
	require.ErrorIs(t, err, ErrTooManyPriorities)

	_, err = UpsertPlanningRecord(code, "2025-09-10",
		nil, []string{"1", "2", "3", "4"}, "", at(9, 0))
	require.ErrorIs(t, err, ErrTooManyFrogs)

	long := make([]rune, MaxRetroLen+1)
	for i := range long {
		long[i] = '가'
	}
	_, err = UpsertPlanningRecord(code, "2025-09-10", nil, nil, string(long), at(9, 0))
	require.ErrorIs(t, err, ErrRetroTooLong)
}

func TestPlanningOverwrite(t *testing.T) {
	code := newTestMember(t)

	_, err := UpsertPlanningRecord(code, "2025-09-10",
		[]string{"task"}, []string{"frog"}, "第一版", at(9, 0))
	require.NoError(t, err)

	// 覆盖成全空列表后，两个计划子分都应消失
	_, err = UpsertPlanningRecord(code, "2025-09-10",
		[]string{""}, []string{""}, "第二版", at(10, 0))
	require.NoError(t, err)

	rec, err := GetPlanningRecord(code, "2025-09-10")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "第二版", rec.Retro)

	b, err := ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, 0, b.Total)
}

func TestDeleteRetractsScore(t *testing.T) {
	code := newTestMember(t)

	_, err := UpsertWakeupRecord(code, "2025-09-10", score.StatusSuccess, "", at(4, 30))
	require.NoError(t, err)
	_, err = UpsertPlanningRecord(code, "2025-09-10",
		[]string{"task"}, []string{"frog"}, "", at(9, 0))
	require.NoError(t, err)

	b, err := ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, 3, b.Total)

	deleted, err := DeletePlanningRecord(code, "2025-09-10")
	require.NoError(t, err)
	require.True(t, deleted)

	b, err = ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, score.Breakdown{Wakeup: 1, Priorities: 0, Frogs: 0, Total: 1}, b)

	deleted, err = DeleteWakeupRecord(code, "2025-09-10")
	require.NoError(t, err)
	require.True(t, deleted)

	b, err = ComputeDailyScore(code, "2025-09-10")
	require.NoError(t, err)
	require.Equal(t, 0, b.Total)
}

func TestDeleteMissingRecord(t *testing.T) {
	code := newTestMember(t)

	deleted, err := DeleteWakeupRecord(code, "2025-09-10")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestMonthsWithData(t *testing.T) {
	code := newTestMember(t)

	_, err := UpsertWakeupRecord(code, "2025-09-10", score.StatusSuccess, "", at(4, 30))
	require.NoError(t, err)
	_, err = UpsertPlanningRecord(code, "2025-10-01", []string{"task"}, nil, "", at(9, 0))
	require.NoError(t, err)

	months, err := MonthsWithData(code)
	require.NoError(t, err)
	require.Equal(t, []string{"2025-09", "2025-10"}, months)
}

func TestPurgeMemberData(t *testing.T) {
	code := newTestMember(t)

	_, err := UpsertWakeupRecord(code, "2025-09-10", score.StatusSuccess, "", at(4, 30))
	require.NoError(t, err)
	_, err = UpsertPlanningRecord(code, "2025-09-10", []string{"task"}, nil, "", at(9, 0))
	require.NoError(t, err)

	require.NoError(t, PurgeMemberData(code))

	w, err := GetWakeupRecord(code, "2025-09-10")
	require.NoError(t, err)
	require.Nil(t, w)
	p, err := GetPlanningRecord(code, "2025-09-10")
	require.NoError(t, err)
	require.Nil(t, p)
}
