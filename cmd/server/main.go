package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rocketgetup/wakeup-scoreboard-backend/api"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/config"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/database"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/health"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/shutdown"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/platform/startup"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/report"
	"github.com/rocketgetup/wakeup-scoreboard-backend/internal/score"
	"github.com/rocketgetup/wakeup-scoreboard-backend/pkg/lifecycle"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}
	score.SetLocation(cfg.Location())

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 阻塞式获取初始Run ID，Redis必须在启动时可用
	health.InitializeRunID()

	// 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 两阶段停机：第一阶段优雅等待，第二阶段强制退出
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)

	// 启动后台服务
	if err := health.StartRedisHealthCheck(gracefulManager); err != nil {
		panic(fmt.Sprintf("无法启动健康检查器: %v", err))
	}
	if err := report.StartPatroller(gracefulManager); err != nil {
		panic(fmt.Sprintf("无法启动台账巡检服务: %v", err))
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 阻塞等待停机信号，并编排完整的停机流程
	coordinator.ListenForSignalsAndShutdown(server)
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
