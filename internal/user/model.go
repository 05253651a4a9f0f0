package user

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Account 定义了用户账户在SQLite数据库中的持久化模型。
// 每个账户的全部状态都由本服务唯一持有；客户端不再各自保存状态副本。
type Account struct {
	// Email 是账户的主键，也是社交功能中互相引用的身份标识。
	Email string `gorm:"primarykey;type:varchar(255)"`

	// Name 是展示用昵称
	Name string

	// PasswordHash 是bcrypt哈希后的密码，绝不持久化明文
	PasswordHash string `json:"-"`

	// WillpowerPoints 是游戏化货币，只增不减
	WillpowerPoints int

	// Level 永远等于 WillpowerPoints / 100 向下取整。
	// 它是缓存值，每次加分后重新计算。
	Level int

	// IsPremium 标记付费订阅状态
	IsPremium bool

	// Unlocked 是已解锁成就ID的JSON数组，只追加
	Unlocked datatypes.JSON

	// Settings 是展示/通知偏好的JSON对象
	Settings datatypes.JSON

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Settings 是账户偏好设置的固定小结构
type SettingsData struct {
	StartOfWeek  string `json:"startOfWeek"`
	SoundEnabled bool   `json:"soundEnabled"`
	ReminderTime string `json:"reminderTime"`
	EmailNotifs  bool   `json:"emailNotifs"`
	SocialNotifs bool   `json:"socialNotifs"`
}

// DefaultSettings 返回新账户的默认偏好
func DefaultSettings() SettingsData {
	return SettingsData{
		StartOfWeek:  "Sun",
		SoundEnabled: true,
		ReminderTime: "09:00",
		EmailNotifs:  true,
		SocialNotifs: true,
	}
}

// LevelForPoints 是等级的唯一计算函数
func LevelForPoints(points int) int {
	return points / 100
}

// UnlockedIDs 解析账户已解锁的成就ID列表
func (a *Account) UnlockedIDs() []string {
	if len(a.Unlocked) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(a.Unlocked, &ids); err != nil {
		return nil
	}
	return ids
}

// SetUnlockedIDs 序列化成就ID列表写回账户
func (a *Account) SetUnlockedIDs(ids []string) {
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	a.Unlocked = datatypes.JSON(data)
}

// GetSettings 解析账户偏好，解析失败时回落到默认值
func (a *Account) GetSettings() SettingsData {
	if len(a.Settings) == 0 {
		return DefaultSettings()
	}
	var s SettingsData
	if err := json.Unmarshal(a.Settings, &s); err != nil {
		return DefaultSettings()
	}
	return s
}

// SetSettings 序列化偏好写回账户
func (a *Account) SetSettings(s SettingsData) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	a.Settings = datatypes.JSON(data)
}
