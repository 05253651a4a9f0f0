package billing

import (
	"errors"
	"fmt"

	"github.com/HabitForge/habitforge-backend/internal/notification"
	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"github.com/HabitForge/habitforge-backend/internal/user"
	"gorm.io/gorm"
)

const premiumPlanCents = 499

var (
	// ErrOrderNotFound 表示订单不存在或不属于操作者
	ErrOrderNotFound = errors.New("订单不存在")
	// ErrOrderNotPayable 表示订单不在可支付状态
	ErrOrderNotPayable = errors.New("订单不在可支付状态")
)

// CreateOrder 为账户创建一个待支付的订阅订单
func CreateOrder(email, planID string) (*Order, error) {
	order := Order{
		UUID:         NewOrderUUID(),
		AccountEmail: email,
		Status:       StatusCreated,
		PlanID:       planID,
		AmountCents:  premiumPlanCents,
	}
	if err := database.DB.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("无法创建订单: %w", err)
	}
	return &order, nil
}

// CaptureOrder 模拟完成支付：订单置为完成，账户点亮高级标记，
// 并写入一条欢迎通知。
func CaptureOrder(email, orderUUID string) (*Order, error) {
	var order Order
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("uuid = ? AND account_email = ?", orderUUID, email).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("查询订单失败: %w", err)
		}
		if order.Status != StatusCreated {
			return ErrOrderNotPayable
		}

		order.Status = StatusCompleted
		if err := tx.Model(&Order{}).Where("uuid = ?", orderUUID).
			Update("status", StatusCompleted).Error; err != nil {
			return fmt.Errorf("无法更新订单状态: %w", err)
		}
		if err := tx.Model(&user.Account{}).Where("email = ?", email).
			Update("is_premium", true).Error; err != nil {
			return fmt.Errorf("无法更新高级标记: %w", err)
		}

		n := notification.New(email, notification.TypeAchievement,
			"欢迎加入 HabitForge Premium！高级功能已全部解锁 🎉")
		return notification.Append(tx, n)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelSubscription 取消账户的订阅：清除高级标记并写入一条通知。
// 未完成的订单一并置为取消。
func CancelSubscription(email string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user.Account{}).Where("email = ?", email).
			Update("is_premium", false).Error; err != nil {
			return fmt.Errorf("无法清除高级标记: %w", err)
		}
		if err := tx.Model(&Order{}).
			Where("account_email = ? AND status = ?", email, StatusCreated).
			Update("status", StatusCancelled).Error; err != nil {
			return fmt.Errorf("无法取消未完成订单: %w", err)
		}

		n := notification.New(email, notification.TypeAchievement,
			"你的 HabitForge Premium 订阅已取消。")
		return notification.Append(tx, n)
	})
}
