package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/record"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"github.com/stretchr/testify/require"
)

func wakeupOn(date, status string, eligible bool) record.WakeupRecord {
	return record.WakeupRecord{MemberCode: "A001", Date: date, Status: status, Eligible: eligible}
}

func planningOn(date string, priorities, frogs []string) record.PlanningRecord {
	return record.PlanningRecord{
		MemberCode:     "A001",
		Date:           date,
		PrioritiesJSON: mustJSON(priorities),
		FrogsJSON:      mustJSON(frogs),
	}
}

func mustJSON(list []string) string {
	if list == nil {
		list = []string{}
	}
	raw, _ := json.Marshal(list)
	return string(raw)
}

func TestBuildMonthlyAggregate(t *testing.T) {
	wakeups := []record.WakeupRecord{
		wakeupOn("2025-09-01", score.StatusSuccess, true),
		wakeupOn("2025-09-02", score.StatusSuccess, true),
		wakeupOn("2025-09-03", score.StatusFail, false),
	}
	plannings := []record.PlanningRecord{
		planningOn("2025-09-01", []string{"task", "", ""}, []string{"frog"}),
		planningOn("2025-09-05", []string{"", ""}, []string{""}),
	}

	agg := BuildMonthlyAggregate("A001", "2025-09", wakeups, plannings)

	require.Equal(t, 2, agg.SuccessCount)
	require.Equal(t, 1, agg.FailCount)
	require.Equal(t, 3, agg.TotalAttempts)
	// round(2/3*100) = 67
	require.Equal(t, 67, agg.Rate)
	// 09-01: 起床1+优先1+青蛙1，09-02: 起床1，09-03和09-05: 0
	require.Equal(t, 4, agg.Score)
}

func TestBuildMonthlyAggregateEmptyMonth(t *testing.T) {
	agg := BuildMonthlyAggregate("A001", "2025-09", nil, nil)
	require.Equal(t, 0, agg.SuccessCount)
	require.Equal(t, 0, agg.FailCount)
	require.Equal(t, 0, agg.TotalAttempts)
	require.Equal(t, 0, agg.Rate)
	require.Equal(t, 0, agg.Score)
}

func TestBuildMonthlyAggregateSkipsEmptyDays(t *testing.T) {
	// 没有任何记录的天既不算成功也不算失败
	wakeups := []record.WakeupRecord{wakeupOn("2025-09-15", score.StatusSuccess, true)}
	agg := BuildMonthlyAggregate("A001", "2025-09", wakeups, nil)

	require.Equal(t, 1, agg.TotalAttempts)
	require.Equal(t, 100, agg.Rate)
}

func TestBuildMonthlyAggregateLeapFebruary(t *testing.T) {
	// 闰年二月的最后一天也要被遍历到
	wakeups := []record.WakeupRecord{wakeupOn("2024-02-29", score.StatusSuccess, true)}
	agg := BuildMonthlyAggregate("A001", "2024-02", wakeups, nil)

	require.Equal(t, 1, agg.SuccessCount)
	require.Equal(t, 1, agg.Score)
}

func TestBuildMonthlyAggregatePostDeadlineNotCounted(t *testing.T) {
	// 超过截止的成功打卡不得分，出勤上记为失败
	wakeups := []record.WakeupRecord{wakeupOn("2025-09-10", score.StatusSuccess, false)}
	agg := BuildMonthlyAggregate("A001", "2025-09", wakeups, nil)

	require.Equal(t, 0, agg.SuccessCount)
	require.Equal(t, 1, agg.FailCount)
	require.Equal(t, 0, agg.Score)
}

func TestRankMembersCompetitionRanking(t *testing.T) {
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	entries := []MemberScore{
		{MemberCode: "A", Name: "甲", Score: 10, CreatedAt: base},
		{MemberCode: "B", Name: "乙", Score: 7, CreatedAt: base.Add(time.Hour)},
		{MemberCode: "C", Name: "丙", Score: 7, CreatedAt: base.Add(2 * time.Hour)},
	}

	ranked := RankMembers(entries)
	require.Len(t, ranked, 3)
	require.Equal(t, []int{1, 2, 2}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
	require.Equal(t, "A", ranked[0].MemberCode)
}

func TestRankMembersRankSkipsAfterTie(t *testing.T) {
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	entries := []MemberScore{
		{MemberCode: "A", Score: 10, CreatedAt: base},
		{MemberCode: "B", Score: 10, CreatedAt: base},
		{MemberCode: "C", Score: 5, CreatedAt: base},
	}

	ranked := RankMembers(entries)
	// 并列第一之后，下一个不同分数取序列位置3
	require.Equal(t, []int{1, 1, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
}

func TestRankMembersMonotonic(t *testing.T) {
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	entries := []MemberScore{
		{MemberCode: "A", Score: 3, CreatedAt: base},
		{MemberCode: "B", Score: 9, CreatedAt: base},
		{MemberCode: "C", Score: 0, CreatedAt: base},
		{MemberCode: "D", Score: 9, CreatedAt: base},
	}

	ranked := RankMembers(entries)
	for i := 1; i < len(ranked); i++ {
		require.LessOrEqual(t, ranked[i].Score, ranked[i-1].Score)
		if ranked[i].Score == ranked[i-1].Score {
			require.Equal(t, ranked[i-1].Rank, ranked[i].Rank)
		}
	}
}

func TestRankMembersDeterministicTieOrder(t *testing.T) {
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	entries := []MemberScore{
		{MemberCode: "C", Score: 7, CreatedAt: base.Add(2 * time.Hour)},
		{MemberCode: "B", Score: 7, CreatedAt: base.Add(time.Hour)},
	}

	first := RankMembers(entries)
	// 同分按加入时间排序，且相同输入的输出完全一致
	require.Equal(t, "B", first[0].MemberCode)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, RankMembers(entries))
	}
}

func TestRankMembersEmpty(t *testing.T) {
	require.Empty(t, RankMembers(nil))
}
