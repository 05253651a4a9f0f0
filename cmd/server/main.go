package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/HabitForge/habitforge-backend/api"
	"github.com/HabitForge/habitforge-backend/internal/assistant"
	"github.com/HabitForge/habitforge-backend/internal/habit"
	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/config"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/platform/health"
	"github.com/HabitForge/habitforge-backend/internal/platform/shutdown"
	"github.com/HabitForge/habitforge-backend/internal/platform/startup"
	"github.com/HabitForge/habitforge-backend/internal/reminder"
	"github.com/HabitForge/habitforge-backend/pkg/lifecycle"
	"github.com/HabitForge/habitforge-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	token.GenerateSecretKey()
	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 1. 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 2. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 3. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 4. 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	// 5. 创建生命周期管理器并启动后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	dispatcherGraceful, err := gracefulManager.NewServiceHandle("notification-dispatcher")
	if err != nil {
		panic(err)
	}
	dispatcherForceful, err := forcefulManager.NewServiceHandle("notification-dispatcher")
	if err != nil {
		panic(err)
	}
	notification.StartDispatcher(dispatcherGraceful, dispatcherForceful)

	refresherHandle, err := gracefulManager.NewServiceHandle("streak-refresher")
	if err != nil {
		panic(err)
	}
	habit.StartStreakRefresher(refresherHandle, cfg.Workers)

	reminderHandle, err := gracefulManager.NewServiceHandle("reminder-scheduler")
	if err != nil {
		panic(err)
	}
	reminder.StartScheduler(reminderHandle, cfg.Workers)

	assistant.InitHandler(cfg.Assistant)

	// 6. 组装HTTP服务
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
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

	// 7. 阻塞等待停机信号
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
