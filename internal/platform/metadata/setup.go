package metadata

import (
	"fmt"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
)

// PrimeDB 负责初始化metadata模块的数据库部分，
// 并校验已有数据的表结构版本与当前代码兼容。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}

	version, err := GetSchemaVersion(database.DB)
	if err != nil {
		return err
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("数据库表结构版本 %d 高于当前代码支持的版本 %d", version, CurrentSchemaVersion)
	}
	if err := SetSchemaVersion(database.DB, CurrentSchemaVersion); err != nil {
		return err
	}

	fmt.Println("Metadata数据库表迁移成功。")
	return nil
}
