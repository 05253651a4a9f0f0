package billing

import (
	"time"

	"github.com/google/uuid"
)

// Status 是订单的状态枚举
type Status string

const (
	// StatusCreated 表示订单已创建但未支付
	StatusCreated Status = "CREATED"
	// StatusCompleted 表示订单已完成
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled 表示订单已取消
	StatusCancelled Status = "CANCELLED"
)

// Order 定义了模拟支付订单的持久化模型。
// 整个支付流程是模拟的：不接入任何真实支付渠道，
// capture动作直接把订单置为完成并点亮账户的高级标记。
type Order struct {
	UUID         string `gorm:"primarykey;type:varchar(36)"`
	AccountEmail string `gorm:"index;not null;type:varchar(255)"`
	Status       Status `gorm:"type:varchar(16);not null"`
	PlanID       string `gorm:"type:varchar(64)"`
	// AmountCents 是订单金额（美分）
	AmountCents int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrderUUID 生成一个时间有序的订单号，失败时回落到随机UUID
func NewOrderUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
