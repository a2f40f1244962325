package session

import (
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/pkg/token"
)

// PrimeCachedDB 是session模块的初始化总入口。
// 会话不落SQLite，这里只生成签名密钥并挂接级联删除回调。
func PrimeCachedDB() error {
	token.GenerateSecretKey()
	member.RegisterPurgeHook("sessions", PurgeMemberSessions)
	return nil
}
