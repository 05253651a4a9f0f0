package habit

import (
	"errors"
	"net/http"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SharingDetailsResponse 是习惯共享信息的对外形式
type SharingDetailsResponse struct {
	SharedID   string   `json:"sharedId"`
	Owner      string   `json:"owner"`
	SharedWith []string `json:"sharedWith"`
}

// HabitResponse 是习惯的对外形式
type HabitResponse struct {
	ID                string                  `json:"id"`
	Name              string                  `json:"name"`
	Emoji             string                  `json:"emoji"`
	Color             string                  `json:"color"`
	Type              Type                    `json:"type"`
	Streak            int                     `json:"streak"`
	CompletionHistory []string                `json:"completionHistory"`
	CreatedAt         time.Time               `json:"createdAt"`
	SharingDetails    *SharingDetailsResponse `json:"sharingDetails,omitempty"`
}

// CompleteResponse 是打卡动作的对外结果
type CompleteResponse struct {
	Habit         HabitResponse        `json:"habit"`
	Duplicate     bool                 `json:"duplicate"`
	PointsAwarded int                  `json:"pointsAwarded"`
	SharedBonus   bool                 `json:"sharedBonus"`
	Milestone     int                  `json:"milestone,omitempty"`
	NewlyUnlocked []string             `json:"newlyUnlocked"`
	User          user.AccountResponse `json:"user"`
}

// CreateHabitRequestBody 定义了创建习惯接口的请求体
type CreateHabitRequestBody struct {
	Name  string `json:"name" binding:"required"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
	Type  string `json:"type" binding:"required,oneof=GOOD BAD"`
}

// UpdateHabitRequestBody 定义了更新习惯接口的请求体
type UpdateHabitRequestBody struct {
	Name  string `json:"name" binding:"required"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// ShareRequestBody 定义了分享/取消分享接口的请求体
type ShareRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

// FormatHabit 把持久化模型转换为对外形式
func FormatHabit(h *Habit, history []time.Time) HabitResponse {
	raw := make([]string, 0, len(history))
	for _, t := range history {
		raw = append(raw, t.UTC().Format(time.RFC3339))
	}
	resp := HabitResponse{
		ID:                h.UUID,
		Name:              h.Name,
		Emoji:             h.Emoji,
		Color:             h.Color,
		Type:              h.Type,
		Streak:            h.Streak,
		CompletionHistory: raw,
		CreatedAt:         h.CreatedAt,
	}
	if h.IsShared() {
		sharedWith := h.SharedWithEmails()
		if sharedWith == nil {
			sharedWith = []string{}
		}
		resp.SharingDetails = &SharingDetailsResponse{
			SharedID:   h.SharedHabitUUID,
			Owner:      h.SharedOwnerEmail,
			SharedWith: sharedWith,
		}
	}
	return resp
}

// formatWithHistory 读取打卡历史并格式化一个习惯
func formatWithHistory(h *Habit) (HabitResponse, error) {
	history, err := CompletionTimes(database.DB, h.UUID)
	if err != nil {
		return HabitResponse{}, err
	}
	return FormatHabit(h, history), nil
}

// ListHandler 处理 GET /api/habits 请求
func ListHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	habits, err := ListForAccount(database.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取习惯列表"})
		return
	}

	responses := make([]HabitResponse, 0, len(habits))
	for i := range habits {
		resp, err := formatWithHistory(&habits[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取打卡记录"})
			return
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// CreateHandler 处理 POST /api/habits 请求
func CreateHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	var body CreateHabitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	h, newly, err := Create(email, body.Name, body.Emoji, body.Color, Type(body.Type))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法创建习惯"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"habit":         FormatHabit(h, nil),
		"newlyUnlocked": newly,
	})
}

// UpdateHandler 处理 PUT /api/habits/:id 请求
func UpdateHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	var body UpdateHabitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	h, err := Rename(email, c.Param("id"), body.Name, body.Emoji, body.Color)
	if errors.Is(err, ErrHabitNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "习惯不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法更新习惯"})
		return
	}

	resp, err := formatWithHistory(h)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取打卡记录"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteHandler 处理 DELETE /api/habits/:id 请求
func DeleteHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	err := Delete(email, c.Param("id"))
	if errors.Is(err, ErrHabitNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "习惯不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法删除习惯"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CompleteHandler 处理 POST /api/habits/:id/complete 请求
func CompleteHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	result, err := Complete(email, c.Param("id"), time.Now())
	if errors.Is(err, ErrHabitNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "习惯不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "打卡失败"})
		return
	}

	habitResp, err := formatWithHistory(result.Habit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取打卡记录"})
		return
	}

	c.JSON(http.StatusOK, CompleteResponse{
		Habit:         habitResp,
		Duplicate:     result.Duplicate,
		PointsAwarded: result.PointsAwarded,
		SharedBonus:   result.SharedBonus,
		Milestone:     result.Milestone,
		NewlyUnlocked: result.NewlyUnlocked,
		User:          user.FormatAccount(result.Account),
	})
}

// ShareHandler 处理 POST /api/habits/:id/share 请求
func ShareHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	var body ShareRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	h, err := Share(email, c.Param("id"), body.Email)
	switch {
	case errors.Is(err, ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "习惯不存在"})
		return
	case errors.Is(err, ErrSelfShare):
		c.JSON(http.StatusBadRequest, gin.H{"error": "不能把习惯分享给自己"})
		return
	case errors.Is(err, ErrUnknownAccount):
		c.JSON(http.StatusNotFound, gin.H{"error": "分享目标账户不存在"})
		return
	case errors.Is(err, ErrNotSharingOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "只有共享发起者可以管理成员"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分享失败"})
		return
	}

	resp, err := formatWithHistory(h)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取打卡记录"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UnshareHandler 处理 POST /api/habits/:id/unshare 请求
func UnshareHandler(c *gin.Context) {
	email := user.CurrentEmail(c)

	var body ShareRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	h, err := Unshare(email, c.Param("id"), body.Email)
	switch {
	case errors.Is(err, ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "习惯不存在"})
		return
	case errors.Is(err, ErrNotShared):
		c.JSON(http.StatusBadRequest, gin.H{"error": "该习惯未处于共享状态"})
		return
	case errors.Is(err, ErrNotSharingOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "只有共享发起者可以管理成员"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "取消分享失败"})
		return
	}

	resp, err := formatWithHistory(h)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取打卡记录"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
