package report

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/config"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/record"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
)

var (
	// ErrMonthOutOfRange 表示请求的月份早于系统起始月份。
	ErrMonthOutOfRange = errors.New("月份超出可查询范围")

	// ErrMemberNotFound 表示月度报告指向的成员不存在。
	ErrMemberNotFound = errors.New("成员不存在")

	// ErrLeaderboardUnavailable 表示排行榜依赖的Redis不可用。
	// 存储故障必须显式暴露，绝不能伪装成一张全零的排行榜。
	ErrLeaderboardUnavailable = errors.New("排行榜服务暂时不可用")
)

// validateMonthKey 校验月份格式并拦截早于起始月份的请求。
// yyyy-mm格式下字符串比较与时间先后一致。
func validateMonthKey(monthKey string) error {
	if _, err := score.ParseMonthKey(monthKey); err != nil {
		return err
	}
	if monthKey < config.Cfg.Scoring.EpochMonth {
		return ErrMonthOutOfRange
	}
	return nil
}

// GetMonthlyAggregate 计算一个成员某月的出勤与得分汇总。
// 汇总只依赖SQLite中的原始记录，Redis不可用时依然可用。
// 没有任何记录的月份返回全零汇总，这是新成员的正常状态而非错误。
func GetMonthlyAggregate(memberCode, monthKey string) (*MonthlyAggregate, error) {
	if err := validateMonthKey(monthKey); err != nil {
		return nil, err
	}
	known, err := member.IsKnownMember(memberCode)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, ErrMemberNotFound
	}

	wakeups, err := record.ListWakeupRecordsForMonth(memberCode, monthKey)
	if err != nil {
		return nil, err
	}
	plannings, err := record.ListPlanningRecordsForMonth(memberCode, monthKey)
	if err != nil {
		return nil, err
	}

	agg := BuildMonthlyAggregate(memberCode, monthKey, wakeups, plannings)
	return &agg, nil
}

// GetLeaderboard 返回某月全体非管理员成员的排行榜。
// 当月没有记录的成员也会出现在榜上，得分为0。
// 总分从Redis台账读取，Redis不可用时显式返回不可用错误。
func GetLeaderboard(monthKey string) ([]RankedEntry, error) {
	if err := validateMonthKey(monthKey); err != nil {
		return nil, err
	}
	if !database.IsRedisHealthy() {
		return nil, ErrLeaderboardUnavailable
	}

	members, err := member.ListMembers(false)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []RankedEntry{}, nil
	}

	score.RLockRepository()
	pipe := database.RDB.Pipeline()
	cmds := make([]*redis.FloatCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.ZScore(database.Ctx, score.BoardKey(monthKey), m.Code)
	}
	_, execErr := pipe.Exec(database.Ctx)
	score.RUnlockRepository()
	if execErr != nil && execErr != redis.Nil {
		return nil, fmt.Errorf("读取排行榜总分失败: %w", execErr)
	}

	entries := make([]MemberScore, 0, len(members))
	for i, m := range members {
		total := 0
		if val, err := cmds[i].Result(); err == nil {
			total = int(val)
		}
		entries = append(entries, MemberScore{
			MemberCode: m.Code,
			Name:       m.Name,
			Score:      total,
			CreatedAt:  m.CreatedAt,
		})
	}
	return RankMembers(entries), nil
}
