package reminder

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SendTestRequestBody 定义了测试提醒接口的请求体
type SendTestRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

// SendTestResponse 是测试提醒的结果
type SendTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendTestHandler 处理 POST /api/reminders/send-test 请求
func SendTestHandler(c *gin.Context) {
	var body SendTestRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	message, err := SendTest(body.Email)
	if errors.Is(err, ErrUnknownAccount) {
		c.JSON(http.StatusNotFound, SendTestResponse{Success: false, Message: "账户不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, SendTestResponse{Success: false, Message: "发送失败"})
		return
	}
	c.JSON(http.StatusOK, SendTestResponse{Success: true, Message: message})
}
