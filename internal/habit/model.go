package habit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Type 区分习惯的两种计量方向
type Type string

const (
	// TypeGood 是正向习惯：连击统计连续打卡的日历日数
	TypeGood Type = "GOOD"
	// TypeBad 是戒除型习惯：连击统计距离上次破戒经过的日历日数
	TypeBad Type = "BAD"
)

// Habit 定义了习惯在SQLite数据库中的持久化模型。
// Streak 是 completions 和 Type 的纯函数的缓存值，每次变更后重算，
// 永远不作为数据源使用。
type Habit struct {
	// UUID 是习惯的主键
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// OwnerEmail 是习惯所属账户
	OwnerEmail string `gorm:"index;not null;type:varchar(255)"`

	// Name 是展示名称
	Name string `gorm:"not null"`

	// Emoji 是展示图标
	Emoji string `gorm:"type:varchar(16)"`

	// Color 是展示颜色
	Color string `gorm:"type:varchar(32)"`

	// Type 是习惯的计量方向
	Type Type `gorm:"type:varchar(8);not null"`

	// Streak 是缓存的连击值
	Streak int

	// SharedHabitUUID 指向social模块的共享记录；未共享时为空
	SharedHabitUUID string `gorm:"type:varchar(36);index"`

	// SharedOwnerEmail 是发起这次共享的账户
	SharedOwnerEmail string `gorm:"type:varchar(255)"`

	// SharedWith 是被邀请账户邮箱的JSON数组
	SharedWith datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Completion 是一条打卡记录。BAD习惯的"打卡"是一次破戒记录。
// 插入顺序即记录顺序，与日历日顺序无关。
type Completion struct {
	ID uint `gorm:"primarykey"`

	// HabitUUID 是所属习惯
	HabitUUID string `gorm:"index;not null;type:varchar(36)"`

	// OwnerEmail 冗余存储所属账户，供导出按账户直查
	OwnerEmail string `gorm:"index;not null;type:varchar(255)"`

	// CompletedAt 是打卡时间戳
	CompletedAt time.Time `gorm:"not null"`

	// PointsAwarded 是这次打卡获得的意志点数，BAD习惯恒为0
	PointsAwarded int
}

// NewUUID 生成一个时间有序的UUID，失败时回落到随机UUID
func NewUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// IsShared 判断习惯是否挂在某条共享记录上
func (h *Habit) IsShared() bool {
	return h.SharedHabitUUID != ""
}

// SharedWithEmails 解析被邀请账户的邮箱列表
func (h *Habit) SharedWithEmails() []string {
	if len(h.SharedWith) == 0 {
		return nil
	}
	var emails []string
	if err := json.Unmarshal(h.SharedWith, &emails); err != nil {
		return nil
	}
	return emails
}

// SetSharedWithEmails 序列化邮箱列表写回习惯
func (h *Habit) SetSharedWithEmails(emails []string) {
	if emails == nil {
		emails = []string{}
	}
	data, err := json.Marshal(emails)
	if err != nil {
		return
	}
	h.SharedWith = datatypes.JSON(data)
}

// ClearSharing 清除习惯上的全部共享信息
func (h *Habit) ClearSharing() {
	h.SharedHabitUUID = ""
	h.SharedOwnerEmail = ""
	h.SharedWith = datatypes.JSON("[]")
}
