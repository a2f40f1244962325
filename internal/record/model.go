package record

import (
	"encoding/json"
	"time"
)

// WakeupRecord 定义了起床打卡记录在SQLite中的持久化模型。
// (MemberCode, Date) 上的唯一索引保证每个成员每天至多一条记录，
// 重复提交通过upsert覆盖旧记录而不是新增。
// 记录的删除是硬删除（删除后该天回到"未尝试"状态），
// 因此不使用DeletedAt软删除列。
type WakeupRecord struct {
	ID uint `gorm:"primarykey"`

	MemberCode string `gorm:"not null;type:varchar(10);uniqueIndex:idx_wakeup_member_date"`

	// Date 是打卡归属的日历日，格式YYYY-MM-DD，不含时间部分。
	Date string `gorm:"not null;type:varchar(10);uniqueIndex:idx_wakeup_member_date"`

	// Status 取值为 success 或 fail。
	Status string `gorm:"not null;type:varchar(10)"`

	// Eligible 是提交时刻按截止时间策略判定并冻结的结果。
	// 之后的任何重算都使用这个冻结值，不再对照当前时间重新评估。
	Eligible bool `gorm:"not null"`

	Note string `gorm:"type:varchar(200)"`

	// RecordedAt 是本次提交的时刻（覆盖提交时更新为最新一次）。
	RecordedAt time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlanningRecord 定义了每日计划（MUST）记录的持久化模型。
// 唯一性约束与WakeupRecord一致：每个成员每天至多一条，upsert覆盖。
type PlanningRecord struct {
	ID uint `gorm:"primarykey"`

	MemberCode string `gorm:"not null;type:varchar(10);uniqueIndex:idx_planning_member_date"`

	Date string `gorm:"not null;type:varchar(10);uniqueIndex:idx_planning_member_date"`

	// PrioritiesJSON 是优先任务列表（至多5项）的JSON序列化，
	// 列表中允许出现空串占位。
	PrioritiesJSON string `gorm:"not null;type:text;column:priorities"`

	// FrogsJSON 是"青蛙"任务列表（至多3项）的JSON序列化。
	FrogsJSON string `gorm:"not null;type:text;column:frogs"`

	// Retro 是自由文本复盘，可为空。
	Retro string `gorm:"type:varchar(500)"`

	RecordedAt time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Priorities 反序列化优先任务列表。存储损坏时返回空列表。
func (p *PlanningRecord) Priorities() []string {
	return decodeList(p.PrioritiesJSON)
}

// Frogs 反序列化青蛙任务列表。
func (p *PlanningRecord) Frogs() []string {
	return decodeList(p.FrogsJSON)
}

func decodeList(raw string) []string {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []string{}
	}
	return list
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	raw, _ := json.Marshal(list)
	return string(raw)
}
