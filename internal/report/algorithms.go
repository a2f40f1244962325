package report

import (
	"math"
	"sort"
	"time"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/record"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
)

// MonthlyAggregate 是一个成员单月的出勤与得分汇总。
type MonthlyAggregate struct {
	MemberCode    string `json:"memberCode"`
	Month         string `json:"month"`
	SuccessCount  int    `json:"successCount"`
	FailCount     int    `json:"failCount"`
	TotalAttempts int    `json:"totalAttempts"`
	Rate          int    `json:"rate"`
	Score         int    `json:"score"`
}

// BuildMonthlyAggregate 从一个成员某月的原始记录构建月度汇总。
// 出勤口径与计分口径一致：只有在截止时间内成功打卡的天记为成功，
// 有打卡记录但未得分的天记为失败；完全没有记录的天不计入出勤
// （删除记录后该天回到"未尝试"，两个计数都不包含它）。
// Rate 是成功天数占出勤天数的四舍五入百分比，无出勤时为0。
func BuildMonthlyAggregate(memberCode, monthKey string, wakeups []record.WakeupRecord, plannings []record.PlanningRecord) MonthlyAggregate {
	agg := MonthlyAggregate{MemberCode: memberCode, Month: monthKey}

	wakeupByDay := make(map[string]*record.WakeupRecord, len(wakeups))
	for i := range wakeups {
		wakeupByDay[wakeups[i].Date] = &wakeups[i]
	}
	planningByDay := make(map[string]*record.PlanningRecord, len(plannings))
	for i := range plannings {
		planningByDay[plannings[i].Date] = &plannings[i]
	}

	// 按月份的实际天数逐日遍历（闰年二月为29天）
	days, err := score.DaysInMonth(monthKey)
	if err != nil {
		return agg
	}
	first, _ := score.ParseMonthKey(monthKey)
	for d := 0; d < days; d++ {
		dayKey := score.DayKey(first.AddDate(0, 0, d))
		w := wakeupByDay[dayKey]
		p := planningByDay[dayKey]
		if w == nil && p == nil {
			continue
		}

		wf, pf := record.DayFacts(w, p)
		b := score.ComputeBreakdown(wf, pf)
		agg.Score += b.Total

		if w != nil {
			if b.Wakeup == 1 {
				agg.SuccessCount++
			} else {
				agg.FailCount++
			}
		}
	}

	agg.TotalAttempts = agg.SuccessCount + agg.FailCount
	if agg.TotalAttempts > 0 {
		agg.Rate = int(math.Round(float64(agg.SuccessCount) / float64(agg.TotalAttempts) * 100))
	}
	return agg
}

// MemberScore 是排行榜排序的输入条目。
// CreatedAt 用于同分时的稳定次序（先加入的排在前面）。
type MemberScore struct {
	MemberCode string
	Name       string
	Score      int
	CreatedAt  time.Time
}

// RankedEntry 是排行榜的输出条目。
type RankedEntry struct {
	Rank       int    `json:"rank"`
	MemberCode string `json:"memberCode"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
}

// RankMembers 按总分降序排名，同分共享名次，
// 其后的不同分数按1起算的序列位置取名次（{10,7,7}得到[1,2,2]）。
// 同分内部按加入时间、再按Code排序，保证输出对相同输入完全确定。
func RankMembers(entries []MemberScore) []RankedEntry {
	sorted := make([]MemberScore, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].MemberCode < sorted[j].MemberCode
	})

	ranked := make([]RankedEntry, 0, len(sorted))
	for i, e := range sorted {
		rank := i + 1
		if i > 0 && e.Score == sorted[i-1].Score {
			rank = ranked[i-1].Rank
		}
		ranked = append(ranked, RankedEntry{
			Rank:       rank,
			MemberCode: e.MemberCode,
			Name:       e.Name,
			Score:      e.Score,
		})
	}
	return ranked
}
