package report

import (
	"fmt"
	"time"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"github.com/rocketgetup/wakeup-scoreboard-backend/pkg/lifecycle"
)

// patrolInterval 是台账巡检的周期。
const patrolInterval = 1 * time.Hour

// StartPatroller 启动台账巡检后台服务。
// 它周期性地用SQLite中的原始记录重建当月台账，
// 消除增量写入路径上可能累积的任何偏差。
func StartPatroller(lm *lifecycle.Manager) error {
	handle, err := lm.NewServiceHandle("ScoreboardPatroller")
	if err != nil {
		return err
	}

	go runPatrolLoop(handle)
	return nil
}

func runPatrolLoop(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("台账巡检服务已启动。")

	for {
		if err := handle.Sleep(patrolInterval); err != nil {
			fmt.Println("台账巡检服务已停止。")
			return
		}

		if !database.IsRedisHealthy() {
			continue
		}

		monthKey := score.MonthKey(time.Now())
		if err := RebuildMonth(monthKey); err != nil {
			fmt.Printf("警告: 台账巡检重建 %s 失败: %v\n", monthKey, err)
		}
	}
}
