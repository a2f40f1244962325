package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/config"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/pkg/token"
)

// CookieName 是浏览器端会话cookie的名称。
const CookieName = "rocketgetup_session"

var (
	// ErrLoginFailed 表示登录凭据无效。不区分"成员不存在"和
	// "密码错误"，避免暴露账号枚举信息。
	ErrLoginFailed = errors.New("登录失败")

	// ErrPairingUnavailable 表示配对码功能依赖的Redis不可用。
	ErrPairingUnavailable = errors.New("配对码服务暂时不可用")

	// ErrInvalidPairingCode 表示配对码不存在或已过期。
	ErrInvalidPairingCode = errors.New("配对码无效或已过期")
)

// Session 是一次已验证登录的运行时表示。
type Session struct {
	SessionID  string    `json:"sessionId"`
	MemberCode string    `json:"memberCode"`
	Name       string    `json:"name"`
	IsAdmin    bool      `json:"isAdmin"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func sessionTTL() time.Duration {
	return time.Duration(config.Cfg.Auth.SessionTTLHours) * time.Hour
}

func pairingTTL() time.Duration {
	return time.Duration(config.Cfg.Auth.PairingCodeTTLHours) * time.Hour
}

// LoginWithCode 用成员Code登录，成功后签发会话令牌。
func LoginWithCode(code string) (string, *Session, error) {
	m, err := member.GetMemberByCode(code)
	if err != nil {
		return "", nil, err
	}
	if m == nil {
		return "", nil, ErrLoginFailed
	}
	return createSession(m.Code, m.Name, m.IsAdmin)
}

// LoginAdmin 用配置中的管理员ID和密码登录。
// 凭据比较使用恒定时间算法。
func LoginAdmin(id, password string) (string, *Session, error) {
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(config.Cfg.Auth.AdminID))
	pwOK := subtle.ConstantTimeCompare([]byte(password), []byte(config.Cfg.Auth.AdminPassword))
	if idOK&pwOK != 1 {
		return "", nil, ErrLoginFailed
	}
	return createSession(config.Cfg.Auth.AdminID, config.Cfg.Auth.AdminID, true)
}

// createSession 生成会话、写入Redis（若可用）并编码签名令牌。
// Redis不可用时会话退化为纯无状态令牌，不支持服务端吊销。
func createSession(memberCode, name string, isAdmin bool) (string, *Session, error) {
	s := &Session{
		SessionID:  uuid.NewString(),
		MemberCode: memberCode,
		Name:       name,
		IsAdmin:    isAdmin,
		ExpiresAt:  time.Now().Add(sessionTTL()),
	}

	if database.IsRedisHealthy() {
		sessionJSON, _ := json.Marshal(s)
		LockRepository()
		pipe := database.RDB.TxPipeline()
		pipe.Set(database.Ctx, sessionKey(s.SessionID), sessionJSON, sessionTTL())
		pipe.SAdd(database.Ctx, memberSessionsKey(memberCode), s.SessionID)
		pipe.Expire(database.Ctx, memberSessionsKey(memberCode), sessionTTL())
		_, cacheErr := pipe.Exec(database.Ctx)
		UnlockRepository()
		if cacheErr != nil {
			fmt.Printf("警告: 无法写入会话缓存: %v\n", cacheErr)
		}
	}

	tokenStr, err := token.EncodeSessionToken(token.SessionPayload{
		SessionID:  s.SessionID,
		MemberCode: s.MemberCode,
		IsAdmin:    s.IsAdmin,
		ExpiresAt:  s.ExpiresAt.Unix(),
	})
	if err != nil {
		return "", nil, err
	}
	return tokenStr, s, nil
}

// ValidateToken 验证会话令牌并还原会话。
// Redis可用时额外校验会话未被吊销；不可用时只信任签名与有效期。
func ValidateToken(tokenStr string) (*Session, bool) {
	payload, ok := token.DecodeSessionToken(tokenStr)
	if !ok {
		return nil, false
	}

	if database.IsRedisHealthy() {
		val, err := database.RDB.Get(database.Ctx, sessionKey(payload.SessionID)).Result()
		if err == redis.Nil {
			return nil, false
		}
		if err == nil {
			var s Session
			if json.Unmarshal([]byte(val), &s) == nil {
				return &s, true
			}
		}
		// Redis读取异常时继续走无状态路径，不因缓存故障把用户全部登出
	}

	s := &Session{
		SessionID:  payload.SessionID,
		MemberCode: payload.MemberCode,
		Name:       payload.MemberCode,
		IsAdmin:    payload.IsAdmin,
		ExpiresAt:  time.Unix(payload.ExpiresAt, 0),
	}
	if m, err := member.GetMemberByCode(payload.MemberCode); err == nil && m != nil {
		s.Name = m.Name
	}
	return s, true
}

// DestroySession 吊销一个会话（登出）。
func DestroySession(s *Session) {
	if s == nil || !database.IsRedisHealthy() {
		return
	}
	LockRepository()
	defer UnlockRepository()
	pipe := database.RDB.TxPipeline()
	pipe.Del(database.Ctx, sessionKey(s.SessionID))
	pipe.SRem(database.Ctx, memberSessionsKey(s.MemberCode), s.SessionID)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		fmt.Printf("警告: 吊销会话失败: %v\n", err)
	}
}

// --- 移动端配对码 ---

// GeneratePairingCode 为成员生成一个6位数字配对码。
// 配对码存活在Redis中并带TTL，Redis不可用时该功能整体不可用。
func GeneratePairingCode(memberCode string) (string, error) {
	known, err := member.IsKnownMember(memberCode)
	if err != nil {
		return "", err
	}
	if !known {
		return "", ErrLoginFailed
	}
	if !database.IsRedisHealthy() {
		return "", ErrPairingUnavailable
	}

	LockRepository()
	defer UnlockRepository()

	// 最多重试几次以避开已被占用的配对码
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomPairingCode()
		if err != nil {
			return "", err
		}
		ok, err := database.RDB.SetNX(database.Ctx, pairingKey(code), memberCode, pairingTTL()).Result()
		if err != nil {
			return "", fmt.Errorf("写入配对码失败: %w", err)
		}
		if !ok {
			continue
		}
		pipe := database.RDB.TxPipeline()
		pipe.SAdd(database.Ctx, memberPairingKey(memberCode), code)
		pipe.Expire(database.Ctx, memberPairingKey(memberCode), pairingTTL())
		if _, err := pipe.Exec(database.Ctx); err != nil {
			fmt.Printf("警告: 记录成员配对码失败: %v\n", err)
		}
		return code, nil
	}
	return "", errors.New("配对码生成冲突次数过多")
}

// randomPairingCode 生成密码学安全的6位数字码。
func randomPairingCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("无法生成配对码: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RedeemPairingCode 用配对码换取登录会话。配对码一次性有效。
func RedeemPairingCode(code string) (string, *Session, error) {
	if !database.IsRedisHealthy() {
		return "", nil, ErrPairingUnavailable
	}

	LockRepository()
	memberCode, err := database.RDB.GetDel(database.Ctx, pairingKey(code)).Result()
	if err == nil {
		database.RDB.SRem(database.Ctx, memberPairingKey(memberCode), code)
	}
	UnlockRepository()

	if err == redis.Nil {
		return "", nil, ErrInvalidPairingCode
	}
	if err != nil {
		return "", nil, fmt.Errorf("核销配对码失败: %w", err)
	}
	return LoginWithCode(memberCode)
}

// PurgeMemberSessions 吊销成员名下的所有会话与配对码。
// 成员级联删除时通过purge hook调用。
func PurgeMemberSessions(memberCode string) error {
	if !database.IsRedisHealthy() {
		return nil
	}

	LockRepository()
	defer UnlockRepository()

	sessionIDs, err := database.RDB.SMembers(database.Ctx, memberSessionsKey(memberCode)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("读取成员会话列表失败: %w", err)
	}
	pairingCodes, err := database.RDB.SMembers(database.Ctx, memberPairingKey(memberCode)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("读取成员配对码列表失败: %w", err)
	}

	pipe := database.RDB.TxPipeline()
	for _, id := range sessionIDs {
		pipe.Del(database.Ctx, sessionKey(id))
	}
	for _, code := range pairingCodes {
		pipe.Del(database.Ctx, pairingKey(code))
	}
	pipe.Del(database.Ctx, memberSessionsKey(memberCode), memberPairingKey(memberCode))
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("吊销成员会话失败: %w", err)
	}
	return nil
}
