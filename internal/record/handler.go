package record

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/session"
)

// --- 响应模型 ---

// WakeupResponse 是起床记录的API响应模型。
type WakeupResponse struct {
	MemberCode string    `json:"memberCode"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	Eligible   bool      `json:"eligible"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// PlanningResponse 是计划记录的API响应模型。
type PlanningResponse struct {
	MemberCode string    `json:"memberCode"`
	Date       string    `json:"date"`
	Priorities []string  `json:"priorities"`
	Frogs      []string  `json:"frogs"`
	Retro      string    `json:"retro"`
	RecordedAt time.Time `json:"recordedAt"`
}

func formatWakeup(r *WakeupRecord) WakeupResponse {
	return WakeupResponse{
		MemberCode: r.MemberCode,
		Date:       r.Date,
		Status:     r.Status,
		Eligible:   r.Eligible,
		Note:       r.Note,
		RecordedAt: r.RecordedAt,
	}
}

func formatPlanning(r *PlanningRecord) PlanningResponse {
	return PlanningResponse{
		MemberCode: r.MemberCode,
		Date:       r.Date,
		Priorities: r.Priorities(),
		Frogs:      r.Frogs(),
		Retro:      r.Retro,
		RecordedAt: r.RecordedAt,
	}
}

// writeRecordError 把service层的校验错误映射为对应的HTTP状态码。
func writeRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "成员不存在"})
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrTooManyPriorities),
		errors.Is(err, ErrTooManyFrogs),
		errors.Is(err, ErrRetroTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "存储操作失败"})
	}
}

// targetMemberCode 解析请求针对的成员：普通成员只能操作自己，
// 管理员可以通过memberCode参数指定任意成员。
func targetMemberCode(c *gin.Context, requested string) (string, bool) {
	s, _ := session.CurrentSession(c)
	if requested == "" || requested == s.MemberCode {
		return s.MemberCode, true
	}
	if !s.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权操作其他成员的记录"})
		return "", false
	}
	return requested, true
}

// --- 起床打卡 ---

// CheckinRequestBody 是成员自助打卡的请求体。
type CheckinRequestBody struct {
	Note string `json:"note"`
}

// CheckinHandler 处理成员的实时起床打卡。
// 打卡归属"现在"所在的日历日；是否成功由截止时间策略当场判定。
func CheckinHandler(c *gin.Context) {
	// 请求体整体可选，解析失败时按空备注处理
	var body CheckinRequestBody
	_ = c.ShouldBindJSON(&body)

	s, _ := session.CurrentSession(c)
	now := time.Now().In(score.Location())

	status := score.StatusFail
	if score.IsWakeupEligible(now) {
		status = score.StatusSuccess
	}

	rec, err := UpsertWakeupRecord(s.MemberCode, score.DayKey(now), status, body.Note, now)
	if err != nil {
		writeRecordError(c, err)
		return
	}

	breakdown, err := ComputeDailyScore(s.MemberCode, rec.Date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "计算当日得分失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record": formatWakeup(rec),
		"score":  breakdown,
	})
}

// UpsertWakeupRequestBody 是管理员代录起床记录的请求体。
type UpsertWakeupRequestBody struct {
	MemberCode string     `json:"memberCode" binding:"required"`
	Date       string     `json:"date" binding:"required"`
	Status     string     `json:"status" binding:"required"`
	Note       string     `json:"note"`
	RecordedAt *time.Time `json:"recordedAt"`
}

// UpsertWakeupHandler 处理管理员提交或修正的起床记录。
// 未提供recordedAt时按当前时间判定截止资格。
func UpsertWakeupHandler(c *gin.Context) {
	var body UpsertWakeupRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	recordedAt := time.Now().In(score.Location())
	if body.RecordedAt != nil {
		recordedAt = body.RecordedAt.In(score.Location())
	}

	rec, err := UpsertWakeupRecord(body.MemberCode, body.Date, body.Status, body.Note, recordedAt)
	if err != nil {
		writeRecordError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatWakeup(rec))
}

// ListWakeupHandler 返回一个成员某月的起床记录列表。
func ListWakeupHandler(c *gin.Context) {
	memberCode, ok := targetMemberCode(c, c.Query("memberCode"))
	if !ok {
		return
	}
	monthKey := c.Query("month")
	if monthKey == "" {
		monthKey = score.MonthKey(time.Now())
	}

	records, err := ListWakeupRecordsForMonth(memberCode, monthKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	responses := make([]WakeupResponse, 0, len(records))
	for i := range records {
		responses = append(responses, formatWakeup(&records[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteWakeupHandler 删除一个成员-日的起床记录（管理员修正用）。
func DeleteWakeupHandler(c *gin.Context) {
	memberCode := c.Query("memberCode")
	dayKey := c.Query("date")
	if memberCode == "" || dayKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少memberCode或date参数"})
		return
	}
	if _, err := score.ParseDayKey(dayKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := DeleteWakeupRecord(memberCode, dayKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除起床记录失败"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到该记录"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "记录已删除"})
}

// --- 计划（MUST）记录 ---

// UpsertPlanningRequestBody 是提交计划记录的请求体。
type UpsertPlanningRequestBody struct {
	Date       string   `json:"date" binding:"required"`
	Priorities []string `json:"priorities"`
	Frogs      []string `json:"frogs"`
	Retro      string   `json:"retro"`
}

// UpsertPlanningHandler 处理成员提交的当日计划。
func UpsertPlanningHandler(c *gin.Context) {
	var body UpsertPlanningRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	s, _ := session.CurrentSession(c)
	now := time.Now().In(score.Location())

	rec, err := UpsertPlanningRecord(s.MemberCode, body.Date, body.Priorities, body.Frogs, body.Retro, now)
	if err != nil {
		writeRecordError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatPlanning(rec))
}

// GetPlanningHandler 查询一个成员-日的计划记录。
func GetPlanningHandler(c *gin.Context) {
	memberCode, ok := targetMemberCode(c, c.Query("memberCode"))
	if !ok {
		return
	}
	dayKey := c.Param("date")
	if _, err := score.ParseDayKey(dayKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := GetPlanningRecord(memberCode, dayKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询计划记录失败"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到该记录"})
		return
	}
	c.JSON(http.StatusOK, formatPlanning(rec))
}

// PlanningHistoryHandler 返回成员最近的计划记录历史。
func PlanningHistoryHandler(c *gin.Context) {
	memberCode, ok := targetMemberCode(c, c.Query("memberCode"))
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	records, err := ListRecentPlanningRecords(memberCode, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询计划历史失败"})
		return
	}

	responses := make([]PlanningResponse, 0, len(records))
	for i := range records {
		responses = append(responses, formatPlanning(&records[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// DeletePlanningHandler 删除一个成员-日的计划记录（管理员修正用）。
func DeletePlanningHandler(c *gin.Context) {
	memberCode := c.Query("memberCode")
	dayKey := c.Query("date")
	if memberCode == "" || dayKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少memberCode或date参数"})
		return
	}
	if _, err := score.ParseDayKey(dayKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := DeletePlanningRecord(memberCode, dayKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除计划记录失败"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到该记录"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "记录已删除"})
}

// --- 单日得分 ---

// DailyScoreHandler 返回一个成员-日的得分明细。
// 明细永远按最终存储状态即时计算，记录缺失时各子分为0。
func DailyScoreHandler(c *gin.Context) {
	memberCode, ok := targetMemberCode(c, c.Query("memberCode"))
	if !ok {
		return
	}
	dayKey := c.Query("date")
	if dayKey == "" {
		dayKey = score.DayKey(time.Now())
	}
	if _, err := score.ParseDayKey(dayKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	breakdown, err := ComputeDailyScore(memberCode, dayKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "计算当日得分失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"memberCode": memberCode,
		"date":       dayKey,
		"score":      breakdown,
	})
}
