package notification

import (
	"net/http"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// --- API响应模型 ---

type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

type MarkReadRequestBody struct {
	IDs []string `json:"ids" binding:"required"`
}

func FormatNotification(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.UUID,
		Type:      n.Type,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		IsRead:    n.IsRead,
	}
}

// --- 控制器函数 ---

// ListHandler 返回当前账户的全部通知
func ListHandler(c *gin.Context) {
	ns, err := ListForAccount(user.CurrentEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取通知列表失败"})
		return
	}

	responses := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		responses = append(responses, FormatNotification(n))
	}
	c.JSON(http.StatusOK, responses)
}

// MarkReadHandler 把指定的通知标记为已读
func MarkReadHandler(c *gin.Context) {
	var body MarkReadRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := MarkRead(user.CurrentEmail(c), body.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "标记已读失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已标记为已读"})
}

// MarkAllReadHandler 把当前账户的全部通知标记为已读
func MarkAllReadHandler(c *gin.Context) {
	if err := MarkAllRead(user.CurrentEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "标记已读失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已全部标记为已读"})
}
