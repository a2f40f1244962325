package member

import (
	"encoding/json"
	"fmt"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Member{}); err != nil {
		return fmt.Errorf("无法迁移member表: %w", err)
	}
	fmt.Println("Member数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载所有成员，并预热到Redis的Set和Hash中
func WarmupCache() error {
	members, err := ListMembers(true)
	if err != nil {
		return err
	}

	pipe := database.RDB.Pipeline()
	// 先清空旧的缓存，确保数据一致性
	pipe.Del(database.Ctx, KnownMembersKey, InfoKey)

	if len(members) == 0 {
		if _, err := pipe.Exec(database.Ctx); err != nil {
			return fmt.Errorf("清空成员缓存失败: %w", err)
		}
		fmt.Println("无现有成员数据，无需预热成员缓存。")
		return nil
	}

	codes := make([]interface{}, len(members))
	infoMap := make(map[string]interface{}, len(members))
	for i, m := range members {
		codes[i] = m.Code
		infoJSON, _ := json.Marshal(MemberInfo{Name: m.Name, IsAdmin: m.IsAdmin, CreatedAt: m.CreatedAt})
		infoMap[m.Code] = infoJSON
	}

	pipe.SAdd(database.Ctx, KnownMembersKey, codes...)
	pipe.HSet(database.Ctx, InfoKey, infoMap)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热成员缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个成员到Redis。\n", len(members))
	return nil
}

// PrimeCachedDB 是member模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
