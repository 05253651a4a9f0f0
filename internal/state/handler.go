package state

import (
	"net/http"
	"strconv"

	"github.com/HabitForge/habitforge-backend/internal/habit"
	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/platform/metadata"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Response 是客户端单次轮询拿到的完整状态。
// 客户端不再各自持有权威副本，打开页面或轮询时整体拉取一次。
type Response struct {
	User          user.AccountResponse                `json:"user"`
	Habits        []habit.HabitResponse               `json:"habits"`
	Notifications []notification.NotificationResponse `json:"notifications"`
	UnreadCount   int64                               `json:"unreadCount"`
}

// unreadCount 优先读Redis里的未读数哈希，不可用或未命中时查SQLite
func unreadCount(email string) (int64, error) {
	if database.IsRedisHealthy() {
		val, err := database.RDB.HGet(database.Ctx, metadata.RedisUnreadCountsKey, email).Result()
		if err == nil {
			if count, convErr := strconv.ParseInt(val, 10, 64); convErr == nil {
				return count, nil
			}
		}
	}
	return notification.UnreadCount(email)
}

// GetStateHandler 处理 GET /api/state 请求
func GetStateHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	account, err := user.GetAccount(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取账户"})
		return
	}

	habits, err := habit.ListForAccount(database.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取习惯列表"})
		return
	}
	habitResponses := make([]habit.HabitResponse, 0, len(habits))
	for i := range habits {
		history, err := habit.CompletionTimes(database.DB, habits[i].UUID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取打卡记录"})
			return
		}
		habitResponses = append(habitResponses, habit.FormatHabit(&habits[i], history))
	}

	ns, err := notification.ListForAccount(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取通知列表"})
		return
	}
	notificationResponses := make([]notification.NotificationResponse, 0, len(ns))
	for _, n := range ns {
		notificationResponses = append(notificationResponses, notification.FormatNotification(n))
	}

	count, err := unreadCount(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法统计未读通知"})
		return
	}

	c.JSON(http.StatusOK, Response{
		User:          user.FormatAccount(account),
		Habits:        habitResponses,
		Notifications: notificationResponses,
		UnreadCount:   count,
	})
}
