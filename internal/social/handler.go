package social

import (
	"errors"
	"net/http"

	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// AddCommentRequestBody 定义了发表留言接口的请求体
type AddCommentRequestBody struct {
	Text string `json:"text" binding:"required"`
}

// GetRecordHandler 处理 GET /api/social/shared/:id 请求，
// 返回一条共享记录的完整视图。只有记录成员可以查看。
func GetRecordHandler(c *gin.Context) {
	email := user.CurrentEmail(c)
	sharedID := c.Param("id")

	view, err := GetRecordView(sharedID)
	if errors.Is(err, ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "共享记录不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取共享记录"})
		return
	}

	isMember := false
	for _, m := range view.Members {
		if m.Email == email {
			isMember = true
			break
		}
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "不是该共享记录的成员"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddCommentHandler 处理 POST /api/social/shared/:id/comments 请求
func AddCommentHandler(c *gin.Context) {
	email := user.CurrentEmail(c)
	sharedID := c.Param("id")

	var body AddCommentRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	account, err := user.GetAccount(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取账户"})
		return
	}

	comment, err := AddComment(sharedID, email, account.Name, body.Text)
	if errors.Is(err, ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "共享记录不存在"})
		return
	}
	if errors.Is(err, ErrNotMember) {
		c.JSON(http.StatusForbidden, gin.H{"error": "不是该共享记录的成员"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法发表留言"})
		return
	}

	c.JSON(http.StatusCreated, CommentView{
		ID:          comment.UUID,
		AuthorEmail: comment.AuthorEmail,
		AuthorName:  comment.AuthorName,
		Text:        comment.Text,
		CreatedAt:   comment.CreatedAt,
	})
}
