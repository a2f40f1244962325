package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/session"
)

// MonthlyReportHandler 返回一个成员某月的出勤与得分汇总。
// 普通成员只能查询自己，管理员可以查询任意成员。
func MonthlyReportHandler(c *gin.Context) {
	s, _ := session.CurrentSession(c)
	memberCode := c.Query("memberCode")
	if memberCode == "" {
		memberCode = s.MemberCode
	}
	if memberCode != s.MemberCode && !s.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "无权查询其他成员的报告"})
		return
	}

	monthKey := c.Query("month")
	if monthKey == "" {
		monthKey = score.MonthKey(time.Now())
	}

	agg, err := GetMonthlyAggregate(memberCode, monthKey)
	if err != nil {
		switch {
		case errors.Is(err, ErrMonthOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "月份超出可查询范围"})
		case errors.Is(err, ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "成员不存在"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, agg)
}

// LeaderboardHandler 返回某月的排行榜。
// Redis不可用时返回503，而不是一张静默全零的榜单。
func LeaderboardHandler(c *gin.Context) {
	monthKey := c.Query("month")
	if monthKey == "" {
		monthKey = score.MonthKey(time.Now())
	}

	entries, err := GetLeaderboard(monthKey)
	if err != nil {
		switch {
		case errors.Is(err, ErrMonthOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "月份超出可查询范围"})
		case errors.Is(err, ErrLeaderboardUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "排行榜服务暂时不可用，请稍后再试"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month":   monthKey,
		"entries": entries,
	})
}
