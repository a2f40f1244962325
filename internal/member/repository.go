package member

import (
	"sync"
	"time"
)

// --- Redis 键名常量 ---

const (
	// KnownMembersKey 是一个 Redis Set 的键，缓存所有已注册成员的Code。
	// 用于在写入记录前快速校验成员是否存在。
	KnownMembersKey = "member:known"

	// InfoKey 是一个 Redis Hash 的键，用于缓存成员的展示信息。
	// Field: 成员Code
	// Value: MemberInfo 结构体的JSON序列化字符串
	InfoKey = "member:info"
)

// --- Redis 数据结构 ---

// MemberInfo 定义了在 member:info 哈希表中以JSON格式缓存的成员信息。
// CreatedAt 用于排行榜同分时的稳定次序（按加入顺序）。
type MemberInfo struct {
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- 并发控制 ---

// repoMutex 是一个模块内部的、不导出的全局读写锁，
// 用于保护对本模块管理的Redis键的并发访问。
var repoMutex sync.RWMutex

// LockRepository 封装了对模块全局锁的写锁定操作。
func LockRepository() {
	repoMutex.Lock()
}

// UnlockRepository 封装了对模块全局锁的写解锁操作。
func UnlockRepository() {
	repoMutex.Unlock()
}

// RLockRepository 封装了对模块全局锁的读锁定操作。
func RLockRepository() {
	repoMutex.RLock()
}

// RUnlockRepository 封装了对模块全局锁的读解锁操作。
func RUnlockRepository() {
	repoMutex.RUnlock()
}
