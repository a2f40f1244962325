package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/member"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/record"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/report"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/session"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	// 所有请求先尝试还原会话，是否放行由各路由的Require中间件决定
	router.Use(session.LoadSessionMiddleware())

	api := router.Group("/api")
	{
		// 登录与会话相关的路由
		auth := api.Group("/auth")
		{
			auth.POST("/login", session.LoginHandler)
			auth.POST("/admin-login", session.AdminLoginHandler)
			auth.POST("/mobile-login", session.MobileLoginHandler)
			auth.POST("/logout", session.LogoutHandler)
			auth.GET("/me", session.MeHandler)
			auth.POST("/pairing-code", session.RequireMemberMiddleware(), session.PairingCodeHandler)
		}

		// 成员管理的路由，写操作仅限管理员
		members := api.Group("/members")
		{
			members.GET("", session.RequireMemberMiddleware(), member.ListMembersHandler)
			members.GET("/:code", session.RequireMemberMiddleware(), member.GetMemberHandler)
			members.POST("", session.RequireAdminMiddleware(), member.CreateMemberHandler)
			members.DELETE("/:code", session.RequireAdminMiddleware(), member.DeleteMemberHandler)
		}

		// 起床打卡相关的路由
		wakeup := api.Group("/wakeup", session.RequireMemberMiddleware())
		{
			wakeup.POST("/checkin", record.CheckinHandler)
			wakeup.GET("", record.ListWakeupHandler)
			wakeup.POST("", session.RequireAdminMiddleware(), record.UpsertWakeupHandler)
			wakeup.DELETE("", session.RequireAdminMiddleware(), record.DeleteWakeupHandler)
		}

		// 每日计划（MUST）相关的路由
		must := api.Group("/must", session.RequireMemberMiddleware())
		{
			must.POST("", record.UpsertPlanningHandler)
			must.GET("/history", record.PlanningHistoryHandler)
			must.GET("/:date", record.GetPlanningHandler)
			must.DELETE("", session.RequireAdminMiddleware(), record.DeletePlanningHandler)
		}

		// 得分与报告相关的路由
		api.GET("/score/daily", session.RequireMemberMiddleware(), record.DailyScoreHandler)
		api.GET("/report/monthly", session.RequireMemberMiddleware(), report.MonthlyReportHandler)
		api.GET("/leaderboard", session.RequireMemberMiddleware(), report.LeaderboardHandler)
	}
}
