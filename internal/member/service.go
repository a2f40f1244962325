package member

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"gorm.io/gorm"
)

var (
	// ErrCodeExists 表示创建成员时Code已被占用。
	ErrCodeExists = errors.New("成员代码已存在")

	// ErrInvalidMember 表示创建成员的入参不合法。
	ErrInvalidMember = errors.New("成员代码和姓名不能为空")
)

// CreateMember 创建一个新成员并写入缓存。
// Code冲突返回ErrCodeExists，由调用方映射为409。
func CreateMember(code, name string, isAdmin bool) (*Member, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, ErrInvalidMember
	}

	newMember := Member{Code: code, Name: name, IsAdmin: isAdmin}
	if err := database.DB.Create(&newMember).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrCodeExists
		}
		return nil, fmt.Errorf("无法在SQLite中创建成员: %w", err)
	}

	// 缓存写入是尽力而为：Redis不可用时跳过，
	// 恢复后的热重建会从SQLite重新预热全部成员。
	if database.IsRedisHealthy() {
		LockRepository()
		defer UnlockRepository()
		if err := cacheMember(&newMember); err != nil {
			fmt.Printf("警告: 无法缓存新成员 %s: %v\n", code, err)
		}
	}

	return &newMember, nil
}

// cacheMember 将单个成员写入Redis缓存。调用方需持有写锁。
func cacheMember(m *Member) error {
	infoJSON, _ := json.Marshal(MemberInfo{Name: m.Name, IsAdmin: m.IsAdmin, CreatedAt: m.CreatedAt})
	pipe := database.RDB.TxPipeline()
	pipe.SAdd(database.Ctx, KnownMembersKey, m.Code)
	pipe.HSet(database.Ctx, InfoKey, m.Code, infoJSON)
	_, err := pipe.Exec(database.Ctx)
	return err
}

// GetMemberByCode 按Code查找成员。
// 未找到不是错误，返回(nil, nil)。
func GetMemberByCode(code string) (*Member, error) {
	var m Member
	err := database.DB.Where("code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法从SQLite查询成员 %s: %w", code, err)
	}
	return &m, nil
}

// IsKnownMember 校验成员是否存在。优先查询Redis缓存，
// 缓存不可用时回落到SQLite。
func IsKnownMember(code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	if database.IsRedisHealthy() {
		RLockRepository()
		exists, err := database.RDB.SIsMember(database.Ctx, KnownMembersKey, code).Result()
		RUnlockRepository()
		if err == nil {
			return exists, nil
		}
		fmt.Printf("警告: 查询成员缓存失败，回落到SQLite: %v\n", err)
	}
	m, err := GetMemberByCode(code)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// ListMembers 返回按创建时间升序排列的成员列表。
// includeAdmin为false时过滤掉管理员账号（计分和排行榜场景）。
func ListMembers(includeAdmin bool) ([]Member, error) {
	var members []Member
	query := database.DB.Order("created_at asc, code asc")
	if !includeAdmin {
		query = query.Where("is_admin = ?", false)
	}
	if err := query.Find(&members).Error; err != nil {
		return nil, fmt.Errorf("无法从SQLite读取成员列表: %w", err)
	}
	return members, nil
}

// --- 级联删除 ---

// PurgeHook 是其他模块注册的、按成员Code清除其数据的回调。
type PurgeHook func(memberCode string) error

type purgeHookEntry struct {
	kind string
	fn   PurgeHook
}

var purgeHooks []purgeHookEntry

// RegisterPurgeHook 注册一个级联删除回调。
// record、score、session等模块在各自的setup阶段调用，
// 避免member模块反向依赖它们。
func RegisterPurgeHook(kind string, fn PurgeHook) {
	purgeHooks = append(purgeHooks, purgeHookEntry{kind: kind, fn: fn})
}

// CascadeReport 记录级联删除中每一步的结果。
// 某一步失败不会中止后续步骤，失败的种类会被逐一上报。
type CascadeReport struct {
	MemberDeleted bool              `json:"memberDeleted"`
	Purged        []string          `json:"purged"`
	Failures      map[string]string `json:"failures,omitempty"`
}

// DeleteMember 删除一个成员，并按注册顺序清除其名下的所有记录。
// 成员本体删除失败时直接返回错误；各级联步骤的失败汇总在报告中。
func DeleteMember(code string) (*CascadeReport, error) {
	m, err := GetMemberByCode(code)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	if err := database.DB.Delete(&Member{}, "code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("无法删除成员 %s: %w", code, err)
	}

	report := &CascadeReport{MemberDeleted: true, Failures: map[string]string{}}

	if database.IsRedisHealthy() {
		LockRepository()
		pipe := database.RDB.TxPipeline()
		pipe.SRem(database.Ctx, KnownMembersKey, code)
		pipe.HDel(database.Ctx, InfoKey, code)
		_, cacheErr := pipe.Exec(database.Ctx)
		UnlockRepository()
		if cacheErr != nil {
			report.Failures["memberCache"] = cacheErr.Error()
		}
	}

	for _, hook := range purgeHooks {
		if err := hook.fn(code); err != nil {
			report.Failures[hook.kind] = err.Error()
			continue
		}
		report.Purged = append(report.Purged, hook.kind)
	}
	sort.Strings(report.Purged)

	if len(report.Failures) == 0 {
		report.Failures = nil
	}
	return report, nil
}
