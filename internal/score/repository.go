package score

import "sync"

// --- Redis 键名 ---
//
// 分数台账按月份分键。SQLite中的原始记录是唯一事实来源，
// 这里的台账只是可以随时从SQLite整体重建的派生缓存。

const (
	// boardKeyPrefix + 月份键 是一个 Redis ZSet 的键。
	// Member: 成员Code
	// Score: 该成员当月的总分
	boardKeyPrefix = "score:board:"

	// daysKeyPrefix + 月份键 是一个 Redis Hash 的键，按成员-日存放得分明细。
	// Field: "<成员Code>:<日期键>"
	// Value: Breakdown 结构体的JSON序列化字符串
	daysKeyPrefix = "score:days:"
)

// BoardKey 返回某月排行榜ZSet的键名。
func BoardKey(monthKey string) string {
	return boardKeyPrefix + monthKey
}

// DaysKey 返回某月得分明细Hash的键名。
func DaysKey(monthKey string) string {
	return daysKeyPrefix + monthKey
}

// DayField 返回明细Hash中成员-日对应的Field名。
func DayField(memberCode, dayKey string) string {
	return memberCode + ":" + dayKey
}

// --- 并发控制 ---

// repoMutex 保护本模块管理的Redis键。写台账的"读旧明细、写新明细、
// 按差值调整总分"三步必须在写锁内完成，避免并发写入互相覆盖。
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
