package session

import "sync"

// --- Redis 键名 ---
//
// 会话与配对码都只存活在Redis中，不落SQLite。
// Redis不可用时会话校验退化为只验证签名令牌本身。

const (
	// sessionKeyPrefix + 会话ID 是一个 Redis String 的键，
	// 值为会话JSON，带TTL。存在性即会话有效性（支持服务端吊销）。
	sessionKeyPrefix = "session:id:"

	// memberSessionsPrefix + 成员Code 是一个 Redis Set 的键，
	// 存放该成员名下所有会话ID，用于级联删除时整体吊销。
	memberSessionsPrefix = "session:member:"

	// pairingKeyPrefix + 配对码 是一个 Redis String 的键，
	// 值为成员Code，带TTL。移动端用配对码换取登录会话。
	pairingKeyPrefix = "pairing:code:"

	// memberPairingPrefix + 成员Code 是一个 Redis Set 的键，
	// 存放该成员尚未过期的配对码。
	memberPairingPrefix = "pairing:member:"
)

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func memberSessionsKey(memberCode string) string {
	return memberSessionsPrefix + memberCode
}

func pairingKey(code string) string {
	return pairingKeyPrefix + code
}

func memberPairingKey(memberCode string) string {
	return memberPairingPrefix + memberCode
}

// --- 并发控制 ---

var repoMutex sync.RWMutex

// LockRepository 封装了对模块全局锁的写锁定操作。
func LockRepository() {
	repoMutex.Lock()
}

// UnlockRepository 封装了对模块全局锁的写解锁操作。
func UnlockRepository() {
	repoMutex.Unlock()
}
