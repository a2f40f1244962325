package score

import (
	"encoding/json"
	"fmt"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// --- 分数台账 ---
//
// 台账的写入以"最终状态"为准：先读出该成员-日已入账的明细，
// 再写入新明细，并按新旧总分之差调整月度总分。重复提交相同
// 状态时差值为0，是天然的幂等空操作；删除记录则把之前入账的
// 分数原样退回。

// ApplyDayScore 把一个成员-日的最终得分明细写入台账。
// Redis不可用时直接跳过：恢复后的热重建会从SQLite重算全部台账。
func ApplyDayScore(memberCode, dayKey string, b Breakdown) error {
	if !database.IsRedisHealthy() {
		return nil
	}

	monthKey := MonthOfDay(dayKey)
	field := DayField(memberCode, dayKey)

	LockRepository()
	defer UnlockRepository()

	prev, err := readBreakdown(monthKey, field)
	if err != nil {
		return err
	}

	delta := b.Total
	if prev != nil {
		delta = b.Total - prev.Total
	}

	breakdownJSON, _ := json.Marshal(b)
	pipe := database.RDB.TxPipeline()
	pipe.HSet(database.Ctx, DaysKey(monthKey), field, breakdownJSON)
	if delta != 0 {
		pipe.ZIncrBy(database.Ctx, BoardKey(monthKey), float64(delta), memberCode)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("写入分数台账失败: %w", err)
	}
	return nil
}

// RetractDayScore 从台账中撤销一个成员-日的全部入账分数。
// 该成员-日没有入账时是空操作。
func RetractDayScore(memberCode, dayKey string) error {
	if !database.IsRedisHealthy() {
		return nil
	}

	monthKey := MonthOfDay(dayKey)
	field := DayField(memberCode, dayKey)

	LockRepository()
	defer UnlockRepository()

	prev, err := readBreakdown(monthKey, field)
	if err != nil {
		return err
	}
	if prev == nil {
		return nil
	}

	pipe := database.RDB.TxPipeline()
	pipe.HDel(database.Ctx, DaysKey(monthKey), field)
	if prev.Total != 0 {
		pipe.ZIncrBy(database.Ctx, BoardKey(monthKey), float64(-prev.Total), memberCode)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("撤销台账分数失败: %w", err)
	}
	return nil
}

// readBreakdown 读取台账中已入账的明细。未入账返回(nil, nil)。
// 调用方需持有锁。
func readBreakdown(monthKey, field string) (*Breakdown, error) {
	val, err := database.RDB.HGet(database.Ctx, DaysKey(monthKey), field).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取台账明细失败: %w", err)
	}
	var b Breakdown
	if err := json.Unmarshal([]byte(val), &b); err != nil {
		return nil, fmt.Errorf("解析台账明细失败: %w", err)
	}
	return &b, nil
}

// PurgeMember 从指定月份的台账中清除一个成员的全部数据。
// 成员级联删除时由record模块调用。
func PurgeMember(monthKeys []string, memberCode string) error {
	if !database.IsRedisHealthy() {
		return nil
	}

	LockRepository()
	defer UnlockRepository()

	for _, monthKey := range monthKeys {
		fields, err := memberFields(monthKey, memberCode)
		if err != nil {
			return err
		}

		pipe := database.RDB.TxPipeline()
		if len(fields) > 0 {
			pipe.HDel(database.Ctx, DaysKey(monthKey), fields...)
		}
		pipe.ZRem(database.Ctx, BoardKey(monthKey), memberCode)
		if _, err := pipe.Exec(database.Ctx); err != nil {
			return fmt.Errorf("清除成员 %s 在 %s 的台账失败: %w", memberCode, monthKey, err)
		}
	}
	return nil
}

// memberFields 扫描某月明细Hash中属于指定成员的所有Field。
func memberFields(monthKey, memberCode string) ([]string, error) {
	var fields []string
	var cursor uint64
	match := memberCode + ":*"
	for {
		keys, next, err := database.RDB.HScan(database.Ctx, DaysKey(monthKey), cursor, match, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("扫描台账明细失败: %w", err)
		}
		// HScan返回field和value交替排列的切片
		for i := 0; i < len(keys); i += 2 {
			fields = append(fields, keys[i])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return fields, nil
}
