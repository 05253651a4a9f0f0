package api

import (
	"github.com/HabitForge/habitforge-backend/internal/assistant"
	"github.com/HabitForge/habitforge-backend/internal/billing"
	"github.com/HabitForge/habitforge-backend/internal/export"
	"github.com/HabitForge/habitforge-backend/internal/habit"
	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/reminder"
	"github.com/HabitForge/habitforge-backend/internal/social"
	"github.com/HabitForge/habitforge-backend/internal/state"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 认证相关的路由组 /api/auth
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", user.SignUpHandler)
			authRoutes.POST("/signin", user.SignInHandler)
		}

		// 以下全部路由需要携带会话令牌
		authed := api.Group("")
		authed.Use(user.RequireAuthMiddleware())
		{
			// 整体状态轮询
			authed.GET("/state", state.GetStateHandler)

			// 账户相关的路由组 /api/profile
			authed.GET("/profile", user.GetProfileHandler)
			authed.PUT("/profile/settings", user.UpdateSettingsHandler)

			// 习惯相关的路由组 /api/habits
			habitRoutes := authed.Group("/habits")
			{
				habitRoutes.GET("", habit.ListHandler)
				habitRoutes.POST("", habit.CreateHandler)
				habitRoutes.PUT("/:id", habit.UpdateHandler)
				habitRoutes.DELETE("/:id", habit.DeleteHandler)
				habitRoutes.POST("/:id/complete", habit.CompleteHandler)
				habitRoutes.POST("/:id/share", habit.ShareHandler)
				habitRoutes.POST("/:id/unshare", habit.UnshareHandler)
			}

			// 通知相关的路由组 /api/notifications
			notificationRoutes := authed.Group("/notifications")
			{
				notificationRoutes.GET("", notification.ListHandler)
				notificationRoutes.POST("/mark-read", notification.MarkReadHandler)
				notificationRoutes.POST("/mark-all-read", notification.MarkAllReadHandler)
			}

			// 共享记录相关的路由组 /api/social
			socialRoutes := authed.Group("/social")
			{
				socialRoutes.GET("/shared/:id", social.GetRecordHandler)
				socialRoutes.POST("/shared/:id/comments", social.AddCommentHandler)
			}

			// 生成式AI代理
			authed.POST("/scan-food", assistant.ScanFoodHandler)
			authed.POST("/refine-goal", assistant.RefineGoalHandler)

			// 数据导出
			authed.POST("/export/csv", export.ExportCSVHandler)

			// 模拟支付相关的路由组 /api/billing
			billingRoutes := authed.Group("/billing")
			{
				billingRoutes.POST("/create-order", billing.CreateOrderHandler)
				billingRoutes.POST("/capture-order", billing.CaptureOrderHandler)
				billingRoutes.POST("/cancel-subscription", billing.CancelSubscriptionHandler)
			}

			// 模拟邮件提醒
			authed.POST("/reminders/send-test", reminder.SendTestHandler)
		}
	}
}
