package startup

import (
	"fmt"
	"time"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/metadata"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/record"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/report"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/session"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := member.PrimeCachedDB(); err != nil {
		return err
	}
	if err := record.PrimeCachedDB(); err != nil {
		return err
	}
	if err := session.PrimeCachedDB(); err != nil {
		return err
	}
	if err := report.RebuildScoreboard(); err != nil {
		return err
	}
	if err := metadata.SetLastRebuildAt(database.DB, time.Now()); err != nil {
		fmt.Printf("警告: 记录重建时刻失败: %v\n", err)
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// SQLite是唯一事实来源，重建会整体覆盖成员缓存和分数台账。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	err := func() error {
		member.LockRepository()
		defer member.UnlockRepository()
		if err := member.WarmupCache(); err != nil {
			return err
		}
		return nil
	}()
	if err != nil {
		return err
	}

	if err := report.RebuildScoreboard(); err != nil {
		return err
	}

	if err := metadata.SetLastRebuildAt(database.DB, time.Now()); err != nil {
		fmt.Printf("警告: 记录重建时刻失败: %v\n", err)
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
