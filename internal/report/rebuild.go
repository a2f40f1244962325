package report

import (
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/record"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
)

// --- 台账重建 ---
//
// SQLite中的原始记录是唯一事实来源，Redis台账随时可以从头重建。
// 重建是原子覆盖：先清空旧键再整体写入，期间持有score模块的写锁，
// 保证并发的记录写入不会与重建交错产生脏数据。

// RebuildMonth 从SQLite重建某一个月的分数台账。
func RebuildMonth(monthKey string) error {
	wakeups, err := record.ListAllWakeupForMonth(monthKey)
	if err != nil {
		return err
	}
	plannings, err := record.ListAllPlanningForMonth(monthKey)
	if err != nil {
		return err
	}

	wakeupByKey := make(map[string]*record.WakeupRecord, len(wakeups))
	memberDays := map[string]bool{}
	for i := range wakeups {
		key := score.DayField(wakeups[i].MemberCode, wakeups[i].Date)
		wakeupByKey[key] = &wakeups[i]
		memberDays[key] = true
	}
	planningByKey := make(map[string]*record.PlanningRecord, len(plannings))
	for i := range plannings {
		key := score.DayField(plannings[i].MemberCode, plannings[i].Date)
		planningByKey[key] = &plannings[i]
		memberDays[key] = true
	}

	dayFields := make(map[string]interface{}, len(memberDays))
	totals := map[string]int{}
	for key := range memberDays {
		w := wakeupByKey[key]
		p := planningByKey[key]
		wf, pf := record.DayFacts(w, p)
		b := score.ComputeBreakdown(wf, pf)

		breakdownJSON, _ := json.Marshal(b)
		dayFields[key] = breakdownJSON

		var memberCode string
		if w != nil {
			memberCode = w.MemberCode
		} else {
			memberCode = p.MemberCode
		}
		totals[memberCode] += b.Total
	}

	boardMembers := make([]redis.Z, 0, len(totals))
	for memberCode, total := range totals {
		boardMembers = append(boardMembers, redis.Z{Score: float64(total), Member: memberCode})
	}

	score.LockRepository()
	defer score.UnlockRepository()

	pipe := database.RDB.TxPipeline()
	pipe.Del(database.Ctx, score.DaysKey(monthKey), score.BoardKey(monthKey))
	if len(dayFields) > 0 {
		pipe.HSet(database.Ctx, score.DaysKey(monthKey), dayFields)
	}
	if len(boardMembers) > 0 {
		pipe.ZAdd(database.Ctx, score.BoardKey(monthKey), boardMembers...)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("重建 %s 的分数台账失败: %w", monthKey, err)
	}

	fmt.Printf("已重建 %s 的分数台账：%d个成员日，%d个成员。\n", monthKey, len(dayFields), len(totals))
	return nil
}

// RebuildScoreboard 从SQLite重建全部有记录月份的分数台账。
// 启动预热和Redis故障恢复时调用。
func RebuildScoreboard() error {
	months, err := record.AllMonths()
	if err != nil {
		return err
	}
	for _, monthKey := range months {
		if err := RebuildMonth(monthKey); err != nil {
			return err
		}
	}
	fmt.Printf("分数台账整体重建完成，共 %d 个月份。\n", len(months))
	return nil
}
