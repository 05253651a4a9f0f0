package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- API请求/响应模型 ---

type SignUpRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type SignInRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AccountResponse struct {
	Email           string       `json:"email"`
	Name            string       `json:"name"`
	WillpowerPoints int          `json:"willpowerPoints"`
	Level           int          `json:"level"`
	IsPremium       bool         `json:"isPremium"`
	UnlockedIDs     []string     `json:"unlockedAchievementIds"`
	Settings        SettingsData `json:"settings"`
}

type SignInResponse struct {
	Token string          `json:"token"`
	User  AccountResponse `json:"user"`
}

// FormatAccount 把账户模型格式化为API响应
func FormatAccount(a *Account) AccountResponse {
	ids := a.UnlockedIDs()
	if ids == nil {
		ids = []string{}
	}
	return AccountResponse{
		Email:           a.Email,
		Name:            a.Name,
		WillpowerPoints: a.WillpowerPoints,
		Level:           a.Level,
		IsPremium:       a.IsPremium,
		UnlockedIDs:     ids,
		Settings:        a.GetSettings(),
	}
}

// --- 控制器函数 ---

// SignUpHandler 处理账户注册
func SignUpHandler(c *gin.Context) {
	var body SignUpRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	account, err := SignUp(body.Name, body.Email, body.Password)
	if errors.Is(err, ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败"})
		return
	}

	sessionToken, _, err := SignIn(body.Email, body.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册成功但无法签发会话"})
		return
	}
	c.JSON(http.StatusCreated, SignInResponse{Token: sessionToken, User: FormatAccount(account)})
}

// SignInHandler 处理登录
func SignInHandler(c *gin.Context) {
	var body SignInRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	sessionToken, account, err := SignIn(body.Email, body.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败"})
		return
	}
	c.JSON(http.StatusOK, SignInResponse{Token: sessionToken, User: FormatAccount(account)})
}

// GetProfileHandler 返回当前账户的资料
func GetProfileHandler(c *gin.Context) {
	account, err := GetAccount(CurrentEmail(c))
	if errors.Is(err, ErrAccountNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询账户失败"})
		return
	}
	c.JSON(http.StatusOK, FormatAccount(account))
}

// UpdateSettingsHandler 整体替换当前账户的偏好设置
func UpdateSettingsHandler(c *gin.Context) {
	var body SettingsData
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	account, err := UpdateSettings(CurrentEmail(c), body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新设置失败"})
		return
	}
	c.JSON(http.StatusOK, FormatAccount(account))
}
