package notification

import (
	"fmt"

	"github.com/HabitForge/habitforge-backend/internal/platform/database"
	"gorm.io/gorm"
)

// Append 在给定的数据库句柄（通常是调用方的事务）中追加一条通知，
// 并向分发器提交一次未读数重算。跨账户通知也走这里：
// 本服务持有所有账户的状态，写入任何账户的通知表都是普通的本地写。
func Append(db *gorm.DB, n Notification) error {
	if err := db.Create(&n).Error; err != nil {
		return fmt.Errorf("无法写入通知: %w", err)
	}
	submitRecount(n.AccountEmail)
	return nil
}

// AppendAll 批量追加通知
func AppendAll(db *gorm.DB, ns []Notification) error {
	for _, n := range ns {
		if err := Append(db, n); err != nil {
			return err
		}
	}
	return nil
}

// ListForAccount 返回账户的全部通知，按创建时间升序
func ListForAccount(email string) ([]Notification, error) {
	var ns []Notification
	if err := database.DB.Where("account_email = ?", email).Order("created_at asc").Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("无法读取通知列表: %w", err)
	}
	return ns, nil
}

// MarkRead 把指定ID的通知标记为已读。只允许操作自己账户的通知。
func MarkRead(email string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := database.DB.Model(&Notification{}).
		Where("account_email = ? AND uuid IN ?", email, ids).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("无法标记通知为已读: %w", err)
	}
	submitRecount(email)
	return nil
}

// MarkAllRead 把账户的全部通知标记为已读
func MarkAllRead(email string) error {
	err := database.DB.Model(&Notification{}).
		Where("account_email = ? AND is_read = ?", email, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("无法标记全部通知为已读: %w", err)
	}
	submitRecount(email)
	return nil
}

// UnreadCount 返回账户的未读通知数（直接查SQLite，作为缓存失效时的权威值）
func UnreadCount(email string) (int64, error) {
	var count int64
	err := database.DB.Model(&Notification{}).
		Where("account_email = ? AND is_read = ?", email, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("无法统计未读通知: %w", err)
	}
	return count, nil
}
