package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HabitForge/habitforge-backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// 包级客户端实例，由 InitHandler 在启动时注入
var client *Client

// InitHandler 在路由注册前初始化上游客户端
func InitHandler(cfg config.AssistantConfig) {
	client = NewClient(cfg)
}

// ScanFoodRequestBody 定义了食物识别接口的请求体
type ScanFoodRequestBody struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
}

// ScanFoodResponse 是食物识别的结构化结果
type ScanFoodResponse struct {
	FoodItemName      string  `json:"food_item_name"`
	CaloriesValueKcal float64 `json:"calories_value_kcals"`
}

// HabitDatum 是习惯数据在目标优化请求中的精简形式
type HabitDatum struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Streak            int      `json:"streak"`
	CompletionHistory []string `json:"completionHistory"`
}

// RefineGoalRequestBody 定义了目标优化接口的请求体
type RefineGoalRequestBody struct {
	HabitData []HabitDatum `json:"habitData" binding:"required"`
}

// RefineGoalResponse 是目标优化的结构化结果
type RefineGoalResponse struct {
	HabitToRefine        string  `json:"habit_to_refine"`
	FailureRatePercent   float64 `json:"failure_rate_percent"`
	RefinementSuggestion string  `json:"refinement_suggestion"`
	Rationale            string  `json:"rationale"`
}

var scanFoodSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"food_item_name": {"type": "string"},
		"calories_value_kcals": {"type": "number"}
	},
	"required": ["food_item_name", "calories_value_kcals"]
}`)

var refineGoalSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"habit_to_refine": {"type": "string"},
		"failure_rate_percent": {"type": "number"},
		"refinement_suggestion": {"type": "string"},
		"rationale": {"type": "string"}
	},
	"required": ["habit_to_refine", "failure_rate_percent", "refinement_suggestion", "rationale"]
}`)

// ScanFoodHandler 处理 POST /api/scan-food 请求，
// 把一张食物图片交给上游识别名称和热量。
func ScanFoodHandler(c *gin.Context) {
	var body ScanFoodRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	raw, err := client.Analyze(c.Request.Context(), AnalyzeRequest{
		Prompt:      "Identify the food item in this image and estimate its calories.",
		Schema:      scanFoodSchema,
		ImageBase64: body.ImageBase64,
	})
	if errors.Is(err, ErrUpstream) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "分析服务暂不可用"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分析失败"})
		return
	}

	var resp ScanFoodResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "分析服务返回了无法解析的结果"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefineGoalHandler 处理 POST /api/refine-goal 请求，
// 把习惯数据交给上游，找出最容易失败的习惯并给出调整建议。
func RefineGoalHandler(c *gin.Context) {
	var body RefineGoalRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	habitJSON, err := json.Marshal(body.HabitData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分析失败"})
		return
	}

	raw, err := client.Analyze(c.Request.Context(), AnalyzeRequest{
		Prompt: "Given the following habit data, identify the habit with the highest failure rate and suggest a smaller, more achievable version: " + string(habitJSON),
		Schema: refineGoalSchema,
	})
	if errors.Is(err, ErrUpstream) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "分析服务暂不可用"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分析失败"})
		return
	}

	var resp RefineGoalResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "分析服务返回了无法解析的结果"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
