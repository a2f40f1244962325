package report

import (
	"os"
	"testing"
	"time"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/config"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/record"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.Cfg = &config.Config{
		Scoring: config.ScoringConfig{
			Timezone:   "UTC",
			EpochMonth: "2025-09",
		},
	}
	score.SetLocation(time.UTC)

	// 测试不依赖Redis，标记为不可用让所有缓存写入走跳过分支
	database.UpdateStatus(false, "")
	database.InitDB(config.SqliteConfig{Path: ":memory:"})
	err := database.DB.AutoMigrate(
		&member.Member{},
		&record.WakeupRecord{},
		&record.PlanningRecord{},
	)
	if err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestGetMonthlyAggregateFromRecords(t *testing.T) {
	_, err := member.CreateMember("R001", "报告成员", false)
	require.NoError(t, err)

	morning := time.Date(2025, 9, 1, 4, 30, 0, 0, time.UTC)
	_, err = record.UpsertWakeupRecord("R001", "2025-09-01", score.StatusSuccess, "", morning)
	require.NoError(t, err)
	_, err = record.UpsertWakeupRecord("R001", "2025-09-02", score.StatusFail, "", morning.AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = record.UpsertPlanningRecord("R001", "2025-09-01",
		[]string{"task"}, []string{"frog"}, "", morning.Add(5*time.Hour))
	require.NoError(t, err)

	agg, err := GetMonthlyAggregate("R001", "2025-09")
	require.NoError(t, err)
	require.Equal(t, 1, agg.SuccessCount)
	require.Equal(t, 1, agg.FailCount)
	require.Equal(t, 2, agg.TotalAttempts)
	require.Equal(t, 50, agg.Rate)
	require.Equal(t, 3, agg.Score)
}

func TestGetMonthlyAggregateEmptyMonthIsNotAnError(t *testing.T) {
	_, err := member.CreateMember("R002", "新成员", false)
	require.NoError(t, err)

	agg, err := GetMonthlyAggregate("R002", "2025-11")
	require.NoError(t, err)
	require.Equal(t, 0, agg.TotalAttempts)
	require.Equal(t, 0, agg.Rate)
	require.Equal(t, 0, agg.Score)
}

func TestGetMonthlyAggregateUnknownMember(t *testing.T) {
	_, err := GetMonthlyAggregate("NOBODY", "2025-09")
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestGetMonthlyAggregateMonthOutOfRange(t *testing.T) {
	_, err := member.CreateMember("R003", "早鸟", false)
	require.NoError(t, err)

	_, err = GetMonthlyAggregate("R003", "2025-08")
	require.ErrorIs(t, err, ErrMonthOutOfRange)

	_, err = GetMonthlyAggregate("R003", "2025-9")
	require.Error(t, err)
}

func TestGetLeaderboardUnavailableWithoutRedis(t *testing.T) {
	// Redis不可用时排行榜必须显式失败，而不是返回全零榜单
	_, err := GetLeaderboard("2025-09")
	require.ErrorIs(t, err, ErrLeaderboardUnavailable)
}
