package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type 定义了通知的类型标签
type Type string

const (
	// TypeAchievement 表示成就解锁类通知
	TypeAchievement Type = "ACHIEVEMENT"
	// TypeStreakMilestone 表示连击里程碑通知
	TypeStreakMilestone Type = "STREAK_MILESTONE"
	// TypeSocialInvite 表示共享习惯邀请通知
	TypeSocialInvite Type = "SOCIAL_INVITE"
	// TypeSocialCompletion 表示共享习惯的他人打卡通知
	TypeSocialCompletion Type = "SOCIAL_COMPLETION"
	// TypeSocialComment 表示共享习惯的评论通知
	TypeSocialComment Type = "SOCIAL_COMMENT"
)

// Notification 定义了通知在SQLite数据库中的持久化模型。
// 通知列表只追加；唯一允许的修改是把 IsRead 翻转为true。
type Notification struct {
	// UUID 是通知的主键
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// AccountEmail 是通知所属账户
	AccountEmail string `gorm:"index;not null;type:varchar(255)"`

	// Type 是通知的类型标签
	Type Type `gorm:"type:varchar(32)"`

	// Message 是通知的展示文本
	Message string

	// IsRead 标记已读状态
	IsRead bool

	CreatedAt time.Time
}

// New 构造一条未读通知。UUID v7按时间有序，列表天然按创建顺序排列。
func New(accountEmail string, t Type, message string) Notification {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Notification{
		UUID:         id.String(),
		AccountEmail: accountEmail,
		Type:         t,
		Message:      message,
		IsRead:       false,
		CreatedAt:    time.Now(),
	}
}
