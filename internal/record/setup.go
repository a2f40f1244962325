package record

import (
	"fmt"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
)

// migrateDB 负责自动迁移两张记录表的结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&WakeupRecord{}, &PlanningRecord{}); err != nil {
		return fmt.Errorf("无法迁移record表: %w", err)
	}
	fmt.Println("Record数据库表迁移成功。")
	return nil
}

// PrimeCachedDB 是record模块的初始化总入口。
// 分数台账的预热由report模块的整体重建统一完成，这里不重复做。
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	member.RegisterPurgeHook("records", PurgeMemberData)
	return nil
}
