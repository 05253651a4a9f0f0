package billing

import (
	"errors"
	"net/http"

	"github.com/HabitForge/habitforge-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// CreateOrderRequestBody 定义了创建订单接口的请求体
type CreateOrderRequestBody struct {
	PlanID string `json:"planId" binding:"required"`
}

// CaptureOrderRequestBody 定义了支付确认接口的请求体
type CaptureOrderRequestBody struct {
	OrderID string `json:"orderId" binding:"required"`
}

// OrderResponse 是订单的对外形式
type OrderResponse struct {
	OrderID     string `json:"orderId"`
	Status      Status `json:"status"`
	PlanID      string `json:"planId"`
	AmountCents int    `json:"amountCents"`
}

func formatOrder(o *Order) OrderResponse {
	return OrderResponse{
		OrderID:     o.UUID,
		Status:      o.Status,
		PlanID:      o.PlanID,
		AmountCents: o.AmountCents,
	}
}

// CreateOrderHandler 处理 POST /api/billing/create-order 请求
func CreateOrderHandler(c *gin.Context) {
	var body CreateOrderRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	order, err := CreateOrder(user.CurrentEmail(c), body.PlanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法创建订单"})
		return
	}
	c.JSON(http.StatusCreated, formatOrder(order))
}

// CaptureOrderHandler 处理 POST /api/billing/capture-order 请求
func CaptureOrderHandler(c *gin.Context) {
	var body CaptureOrderRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	order, err := CaptureOrder(user.CurrentEmail(c), body.OrderID)
	if errors.Is(err, ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}
	if errors.Is(err, ErrOrderNotPayable) {
		c.JSON(http.StatusConflict, gin.H{"error": "订单不在可支付状态"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "支付确认失败"})
		return
	}
	c.JSON(http.StatusOK, formatOrder(order))
}

// CancelSubscriptionHandler 处理 POST /api/billing/cancel-subscription 请求
func CancelSubscriptionHandler(c *gin.Context) {
	if err := CancelSubscription(user.CurrentEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "取消订阅失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}
