package record

import (
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// MaxPriorities 是单日优先任务的条数上限。
	MaxPriorities = 5
	// MaxFrogs 是单日青蛙任务的条数上限。
	MaxFrogs = 3
	// MaxRetroLen 是复盘文本的字符数上限。
	MaxRetroLen = 500
)

var (
	// ErrMemberNotFound 表示记录指向的成员不存在。
	ErrMemberNotFound = errors.New("成员不存在")

	// ErrInvalidDate 表示日期键不符合YYYY-MM-DD格式。
	ErrInvalidDate = errors.New("日期格式无效")

	// ErrInvalidStatus 表示起床状态取值非法。
	ErrInvalidStatus = errors.New("起床状态必须为success或fail")

	// ErrTooManyPriorities 表示优先任务条数超过上限。
	ErrTooManyPriorities = fmt.Errorf("优先任务最多%d项", MaxPriorities)

	// ErrTooManyFrogs 表示青蛙任务条数超过上限。
	ErrTooManyFrogs = fmt.Errorf("青蛙任务最多%d项", MaxFrogs)

	// ErrRetroTooLong 表示复盘文本超过长度上限。
	ErrRetroTooLong = fmt.Errorf("复盘文本最多%d个字符", MaxRetroLen)
)

// validateMemberAndDate 是两种记录写入共用的前置校验。
func validateMemberAndDate(memberCode, dayKey string) error {
	known, err := member.IsKnownMember(memberCode)
	if err != nil {
		return err
	}
	if !known {
		return ErrMemberNotFound
	}
	if _, err := score.ParseDayKey(dayKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return nil
}

// --- 起床打卡记录 ---

// UpsertWakeupRecord 写入或覆盖一个成员-日的起床记录。
// 截止时间资格在此刻判定并随记录冻结；写入后按最终状态刷新分数台账。
func UpsertWakeupRecord(memberCode, dayKey, status, note string, recordedAt time.Time) (*WakeupRecord, error) {
	if err := validateMemberAndDate(memberCode, dayKey); err != nil {
		return nil, err
	}
	if !score.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	rec := WakeupRecord{
		MemberCode: memberCode,
		Date:       dayKey,
		Status:     status,
		Eligible:   score.IsWakeupEligible(recordedAt),
		Note:       note,
		RecordedAt: recordedAt,
	}

	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_code"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "eligible", "note", "recorded_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("无法写入起床记录: %w", err)
	}

	// upsert命中冲突分支时Create返回的是插入尝试的副本，
	// 重新读取以获得数据库中的最终状态。
	final, err := GetWakeupRecord(memberCode, dayKey)
	if err != nil {
		return nil, err
	}

	if err := refreshDayScore(memberCode, dayKey); err != nil {
		fmt.Printf("警告: 刷新 %s/%s 的分数台账失败: %v\n", memberCode, dayKey, err)
	}
	return final, nil
}

// GetWakeupRecord 查询一个成员-日的起床记录。未找到返回(nil, nil)。
func GetWakeupRecord(memberCode, dayKey string) (*WakeupRecord, error) {
	var rec WakeupRecord
	err := database.DB.Where("member_code = ? AND date = ?", memberCode, dayKey).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法查询起床记录: %w", err)
	}
	return &rec, nil
}

// DeleteWakeupRecord 删除一个成员-日的起床记录并回退其入账分数。
// 删除后该天从出勤统计中消失（回到"未尝试"，而不是记为失败）。
// 返回是否确实删除了记录。
func DeleteWakeupRecord(memberCode, dayKey string) (bool, error) {
	result := database.DB.Where("member_code = ? AND date = ?", memberCode, dayKey).Delete(&WakeupRecord{})
	if result.Error != nil {
		return false, fmt.Errorf("无法删除起床记录: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := refreshDayScore(memberCode, dayKey); err != nil {
		fmt.Printf("警告: 刷新 %s/%s 的分数台账失败: %v\n", memberCode, dayKey, err)
	}
	return true, nil
}

// ListWakeupRecordsForMonth 按日期升序返回成员某月的全部起床记录。
func ListWakeupRecordsForMonth(memberCode, monthKey string) ([]WakeupRecord, error) {
	if _, err := score.ParseMonthKey(monthKey); err != nil {
		return nil, err
	}
	var records []WakeupRecord
	err := database.DB.
		Where("member_code = ? AND date LIKE ?", memberCode, monthKey+"-%").
		Order("date asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询起床记录列表: %w", err)
	}
	return records, nil
}

// --- 计划（MUST）记录 ---

// UpsertPlanningRecord 写入或覆盖一个成员-日的计划记录。
func UpsertPlanningRecord(memberCode, dayKey string, priorities, frogs []string, retro string, recordedAt time.Time) (*PlanningRecord, error) {
	if err := validateMemberAndDate(memberCode, dayKey); err != nil {
		return nil, err
	}
	if len(priorities) > MaxPriorities {
		return nil, ErrTooManyPriorities
	}
	if len(frogs) > MaxFrogs {
		return nil, ErrTooManyFrogs
	}
	if utf8.RuneCountInString(retro) > MaxRetroLen {
		return nil, ErrRetroTooLong
	}

	rec := PlanningRecord{
		MemberCode:     memberCode,
		Date:           dayKey,
		PrioritiesJSON: encodeList(priorities),
		FrogsJSON:      encodeList(frogs),
		Retro:          retro,
		RecordedAt:     recordedAt,
	}

	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_code"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"priorities", "frogs", "retro", "recorded_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("无法写入计划记录: %w", err)
	}

	final, err := GetPlanningRecord(memberCode, dayKey)
	if err != nil {
		return nil, err
	}

	if err := refreshDayScore(memberCode, dayKey); err != nil {
		fmt.Printf("警告: 刷新 %s/%s 的分数台账失败: %v\n", memberCode, dayKey, err)
	}
	return final, nil
}

// GetPlanningRecord 查询一个成员-日的计划记录。未找到返回(nil, nil)。
func GetPlanningRecord(memberCode, dayKey string) (*PlanningRecord, error) {
	var rec PlanningRecord
	err := database.DB.Where("member_code = ? AND date = ?", memberCode, dayKey).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法查询计划记录: %w", err)
	}
	return &rec, nil
}

// DeletePlanningRecord 删除一个成员-日的计划记录并回退其入账分数。
// priorities和frogs两个子分（若曾授予）一并收回。
func DeletePlanningRecord(memberCode, dayKey string) (bool, error) {
	result := database.DB.Where("member_code = ? AND date = ?", memberCode, dayKey).Delete(&PlanningRecord{})
	if result.Error != nil {
		return false, fmt.Errorf("无法删除计划记录: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := refreshDayScore(memberCode, dayKey); err != nil {
		fmt.Printf("警告: 刷新 %s/%s 的分数台账失败: %v\n", memberCode, dayKey, err)
	}
	return true, nil
}

// ListRecentPlanningRecords 按日期降序返回成员最近的计划记录。
func ListRecentPlanningRecords(memberCode string, limit int) ([]PlanningRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var records []PlanningRecord
	err := database.DB.
		Where("member_code = ?", memberCode).
		Order("date desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询计划记录列表: %w", err)
	}
	return records, nil
}

// ListPlanningRecordsForMonth 按日期升序返回成员某月的全部计划记录。
func ListPlanningRecordsForMonth(memberCode, monthKey string) ([]PlanningRecord, error) {
	if _, err := score.ParseMonthKey(monthKey); err != nil {
		return nil, err
	}
	var records []PlanningRecord
	err := database.DB.
		Where("member_code = ? AND date LIKE ?", memberCode, monthKey+"-%").
		Order("date asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询计划记录列表: %w", err)
	}
	return records, nil
}

// --- 全量读取（重建与月度汇总用） ---

// ListAllWakeupForMonth 返回某月全部成员的起床记录。
func ListAllWakeupForMonth(monthKey string) ([]WakeupRecord, error) {
	if _, err := score.ParseMonthKey(monthKey); err != nil {
		return nil, err
	}
	var records []WakeupRecord
	err := database.DB.
		Where("date LIKE ?", monthKey+"-%").
		Order("member_code asc, date asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取当月起床记录: %w", err)
	}
	return records, nil
}

// ListAllPlanningForMonth 返回某月全部成员的计划记录。
func ListAllPlanningForMonth(monthKey string) ([]PlanningRecord, error) {
	if _, err := score.ParseMonthKey(monthKey); err != nil {
		return nil, err
	}
	var records []PlanningRecord
	err := database.DB.
		Where("date LIKE ?", monthKey+"-%").
		Order("member_code asc, date asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取当月计划记录: %w", err)
	}
	return records, nil
}

// AllMonths 返回整个系统有记录的所有月份键（升序去重）。
func AllMonths() ([]string, error) {
	monthSet := map[string]bool{}
	for _, model := range []interface{}{&WakeupRecord{}, &PlanningRecord{}} {
		var months []string
		err := database.DB.Model(model).
			Distinct().
			Pluck("substr(date, 1, 7)", &months).Error
		if err != nil {
			return nil, fmt.Errorf("无法统计记录月份: %w", err)
		}
		for _, m := range months {
			monthSet[m] = true
		}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)
	return months, nil
}

// --- 分数刷新与级联清除 ---

// DayFacts 把一个成员-日的两类记录换算成计分所需的事实。
func DayFacts(w *WakeupRecord, p *PlanningRecord) (*score.WakeupFacts, *score.PlanningFacts) {
	var wf *score.WakeupFacts
	var pf *score.PlanningFacts
	if w != nil {
		wf = &score.WakeupFacts{Status: w.Status, Eligible: w.Eligible}
	}
	if p != nil {
		pf = &score.PlanningFacts{Priorities: p.Priorities(), Frogs: p.Frogs()}
	}
	return wf, pf
}

// ComputeDailyScore 按最终存储状态计算一个成员-日的得分明细。
// 记录缺失不是错误，对应子分为0。
func ComputeDailyScore(memberCode, dayKey string) (score.Breakdown, error) {
	w, err := GetWakeupRecord(memberCode, dayKey)
	if err != nil {
		return score.Breakdown{}, err
	}
	p, err := GetPlanningRecord(memberCode, dayKey)
	if err != nil {
		return score.Breakdown{}, err
	}
	wf, pf := DayFacts(w, p)
	return score.ComputeBreakdown(wf, pf), nil
}

// refreshDayScore 在任一记录变更后，按最终状态刷新分数台账。
// 两类记录都不存在时撤销入账，否则以最新明细覆盖。
func refreshDayScore(memberCode, dayKey string) error {
	w, err := GetWakeupRecord(memberCode, dayKey)
	if err != nil {
		return err
	}
	p, err := GetPlanningRecord(memberCode, dayKey)
	if err != nil {
		return err
	}
	if w == nil && p == nil {
		return score.RetractDayScore(memberCode, dayKey)
	}
	wf, pf := DayFacts(w, p)
	return score.ApplyDayScore(memberCode, dayKey, score.ComputeBreakdown(wf, pf))
}

// MonthsWithData 返回成员有记录的所有月份键（升序去重）。
func MonthsWithData(memberCode string) ([]string, error) {
	monthSet := map[string]bool{}
	for _, model := range []interface{}{&WakeupRecord{}, &PlanningRecord{}} {
		var months []string
		err := database.DB.Model(model).
			Where("member_code = ?", memberCode).
			Distinct().
			Pluck("substr(date, 1, 7)", &months).Error
		if err != nil {
			return nil, fmt.Errorf("无法统计成员记录月份: %w", err)
		}
		for _, m := range months {
			monthSet[m] = true
		}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)
	return months, nil
}

// PurgeMemberData 删除成员名下的全部记录并清除台账。
// 成员级联删除时通过purge hook调用。
func PurgeMemberData(memberCode string) error {
	months, err := MonthsWithData(memberCode)
	if err != nil {
		return err
	}
	if err := database.DB.Where("member_code = ?", memberCode).Delete(&WakeupRecord{}).Error; err != nil {
		return fmt.Errorf("无法删除成员起床记录: %w", err)
	}
	if err := database.DB.Where("member_code = ?", memberCode).Delete(&PlanningRecord{}).Error; err != nil {
		return fmt.Errorf("无法删除成员计划记录: %w", err)
	}
	return score.PurgeMember(months, memberCode)
}
